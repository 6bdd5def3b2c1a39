package weather

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	apphttp "farmlink_backend/internal/http"
	"farmlink_backend/platform/config"
	"farmlink_backend/platform/httpkit"
	"farmlink_backend/platform/logger"
)

// Module is the weather module implementing http.Module.
type Module struct {
	service *Service
}

// NewModule creates the weather module. rdb may be nil when Redis is not
// configured; forecasts are then fetched uncached.
func NewModule(cfg config.WeatherConfig, rdb *redis.Client, log *logger.Logger) *Module {
	var client *Client
	if cfg.IsWeatherEnabled() {
		client = NewClient(cfg.GetWeatherAPIURL())
	}
	cache := NewCache(rdb, cfg.GetWeatherCacheTTL(), log)

	return &Module{
		service: NewService(client, cache, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "weather" }

// RegisterRoutes mounts the forecast route on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/weather/forecast", m.forecast)
}

// forecast handles GET /api/v1/weather/forecast?lat=&lon=&days=
func (m *Module) forecast(c *gin.Context) {
	if identity := httpkit.MustGetIdentity(c); identity == nil {
		return
	}

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		httpkit.Error(c, http.StatusBadRequest, "lat and lon query parameters are required", nil)
		return
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "5"))

	forecasts, err := m.service.Forecast(c.Request.Context(), lat, lon, days)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"days": forecasts})
}

var _ apphttp.Module = (*Module)(nil)
