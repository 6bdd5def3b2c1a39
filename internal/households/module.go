// Package households provides the household bounded context: farm household
// profiles, memberships and worker rosters.
package households

import (
	"farmlink_backend/internal/households/handler"
	"farmlink_backend/internal/households/repository"
	"farmlink_backend/internal/households/service"
	apphttp "farmlink_backend/internal/http"
	"farmlink_backend/platform/logger"
	"farmlink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the households bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the households module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "households"
}

// Service returns the service layer for adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts household routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	households := ctx.Protected.Group("/households")
	households.POST("", m.handler.Create)
	households.GET("/me", m.handler.GetOwn)
	households.PUT("/me", m.handler.Update)
	households.GET("/:id", m.handler.Get)
	households.POST("/me/workers", m.handler.AddWorker)
	households.GET("/me/workers", m.handler.ListWorkers)
	households.PATCH("/me/workers/:workerId/availability", m.handler.SetAvailability)
	households.DELETE("/me/workers/:workerId", m.handler.RemoveWorker)
}

var _ apphttp.Module = (*Module)(nil)
