// Package products provides the marketplace product listing module.
package products

import (
	"farmlink_backend/internal/adapters/storage"
	apphttp "farmlink_backend/internal/http"
	"farmlink_backend/internal/products/handler"
	"farmlink_backend/internal/products/repository"
	"farmlink_backend/internal/products/service"
	"farmlink_backend/platform/logger"
	"farmlink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the products bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the products module. storageSvc may be
// nil when MinIO is not configured; photo endpoints then return an error.
func NewModule(pool *pgxpool.Pool, storageSvc storage.Service, bucket string, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, storageSvc, bucket, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "products" }

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service { return m.service }

// RegisterRoutes mounts product routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	products := ctx.Protected.Group("/products")
	products.GET("", m.handler.ListMarket)
	products.GET("/mine", m.handler.ListOwn)
	products.POST("", m.handler.Create)
	products.GET("/:id", m.handler.Get)
	products.PUT("/:id", m.handler.Update)
	products.DELETE("/:id", m.handler.Delete)
	products.POST("/:id/photo/presign", m.handler.PresignPhoto)
	products.POST("/:id/photo", m.handler.AttachPhoto)
}

var _ apphttp.Module = (*Module)(nil)
