// Package activities provides the farm activity bounded context: planned and
// ongoing farm work, optionally linked to a labor request whose lifecycle it
// mirrors.
package activities

import (
	"farmlink_backend/internal/activities/handler"
	"farmlink_backend/internal/activities/ports"
	"farmlink_backend/internal/activities/repository"
	"farmlink_backend/internal/activities/service"
	apphttp "farmlink_backend/internal/http"
	"farmlink_backend/platform/logger"
	"farmlink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the activities bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the activities module with all its dependencies.
func NewModule(pool *pgxpool.Pool, labor ports.RequestStatusWriter, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, labor, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "activities"
}

// Service returns the service layer for adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts activity routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	activities := ctx.Protected.Group("/activities")
	activities.POST("", m.handler.Create)
	activities.GET("", m.handler.List)
	activities.GET("/:id", m.handler.Get)
	activities.PUT("/:id", m.handler.Update)
	activities.PATCH("/:id/status", m.handler.UpdateStatus)
	activities.DELETE("/:id", m.handler.Delete)
}

var _ apphttp.Module = (*Module)(nil)
