// Package labor provides the labor exchange bounded context module: labor
// requests between households, worker assignments with conflict detection,
// and completion flows feeding the pairwise work-unit ledger.
package labor

import (
	apphttp "farmlink_backend/internal/http"
	"farmlink_backend/internal/labor/handler"
	"farmlink_backend/internal/labor/ports"
	"farmlink_backend/internal/labor/repository"
	"farmlink_backend/internal/labor/service"
	"farmlink_backend/platform/events"
	"farmlink_backend/platform/logger"
	"farmlink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the labor bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the labor module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	households ports.HouseholdDirectory,
	ledger ports.LedgerPoster,
	activities ports.ActivityStatusWriter,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, households, ledger, activities, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "labor"
}

// Service returns the service layer for adapters and the scheduler.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts labor routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	requests := ctx.Protected.Group("/labor/requests")
	requests.POST("", m.handler.CreateRequest)
	requests.GET("", m.handler.ListRequests)
	requests.GET("/public", m.handler.ListPublicRequests)
	requests.GET("/:id", m.handler.GetRequest)
	requests.POST("/:id/accept", m.handler.AcceptRequest)
	requests.POST("/:id/decline", m.handler.DeclineRequest)
	requests.POST("/:id/cancel", m.handler.CancelRequest)
	requests.POST("/:id/complete", m.handler.CompleteRequest)
	requests.POST("/:id/join", m.handler.JoinRequest)
	requests.GET("/:id/group-status", m.handler.GroupStatus)
	requests.GET("/:id/assignments", m.handler.ListAssignments)
	requests.POST("/:id/assignments", m.handler.CreateAssignment)
	requests.POST("/:id/assignments/batch", m.handler.BatchAssign)

	assignments := ctx.Protected.Group("/labor/assignments")
	assignments.GET("/check-conflict", m.handler.CheckConflict)
	assignments.POST("/:id/report", m.handler.WorkerReport)
	assignments.POST("/:id/complete", m.handler.CompleteAssignment)
	assignments.POST("/:id/missed", m.handler.MarkMissed)
	assignments.POST("/:id/reject", m.handler.RejectAssignment)
	assignments.POST("/:id/rate-worker", m.handler.RateWorker)
	assignments.POST("/:id/rate-farmer", m.handler.RateFarmer)

	ctx.Protected.GET("/labor/workers/forecast", m.handler.AvailabilityForecast)
}

var _ apphttp.Module = (*Module)(nil)
