// Package exchange provides the labor exchange ledger bounded context: one
// append-only pairwise balance of work units per unordered household pair.
package exchange

import (
	"farmlink_backend/internal/exchange/handler"
	"farmlink_backend/internal/exchange/repository"
	"farmlink_backend/internal/exchange/service"
	apphttp "farmlink_backend/internal/http"
	"farmlink_backend/platform/events"
	"farmlink_backend/platform/logger"
	"farmlink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the exchange bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the exchange module with all its dependencies.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "exchange"
}

// Service returns the service layer for adapters and the scheduler.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts exchange routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	exchanges := ctx.Protected.Group("/exchanges")
	exchanges.GET("", m.handler.List)
	exchanges.GET("/:id", m.handler.Get)
	exchanges.GET("/balance/:householdId", m.handler.Balance)
	exchanges.POST("/:id/reset", m.handler.Reset)
	exchanges.POST("/:id/adjust", m.handler.Adjust)
	exchanges.POST("/:id/recalculate", m.handler.Recalculate)
	exchanges.POST("/recalculate-all", m.handler.RecalculateAll)
}

var _ apphttp.Module = (*Module)(nil)
