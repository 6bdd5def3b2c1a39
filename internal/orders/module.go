// Package orders provides the marketplace orders module.
package orders

import (
	apphttp "farmlink_backend/internal/http"
	"farmlink_backend/internal/orders/handler"
	"farmlink_backend/internal/orders/ports"
	"farmlink_backend/internal/orders/repository"
	"farmlink_backend/internal/orders/service"
	"farmlink_backend/platform/events"
	"farmlink_backend/platform/logger"
	"farmlink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the orders bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the orders module.
func NewModule(pool *pgxpool.Pool, catalog ports.ProductCatalog, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, catalog, bus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "orders" }

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service { return m.service }

// RegisterRoutes mounts order routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	orders := ctx.Protected.Group("/orders")
	orders.POST("", m.handler.Place)
	orders.GET("/placed", m.handler.ListPlaced)
	orders.GET("/received", m.handler.ListReceived)
	orders.GET("/:id", m.handler.Get)
	orders.PATCH("/:id/status", m.handler.UpdateStatus)
}

var _ apphttp.Module = (*Module)(nil)
