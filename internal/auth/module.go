// Package auth provides the authentication bounded context: user accounts,
// bcrypt credentials, JWT access tokens carrying the acting household and
// rotating refresh tokens.
package auth

import (
	"farmlink_backend/internal/auth/handler"
	"farmlink_backend/internal/auth/ports"
	"farmlink_backend/internal/auth/repository"
	"farmlink_backend/internal/auth/service"
	apphttp "farmlink_backend/internal/http"
	"farmlink_backend/platform/config"
	"farmlink_backend/platform/logger"
	"farmlink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	cfg config.AuthServiceConfig,
	households ports.HouseholdResolver,
	mailer ports.WelcomeMailer,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, households, mailer, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts auth routes on the provided router context. Login and
// register sit behind the stricter auth rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/auth")
	public.Use(ctx.AuthRateLimiter.RateLimit())
	public.POST("/register", m.handler.Register)
	public.POST("/login", m.handler.Login)
	public.POST("/refresh", m.handler.Refresh)
	public.POST("/logout", m.handler.Logout)

	ctx.Protected.GET("/auth/me", m.handler.Me)
}

var _ apphttp.Module = (*Module)(nil)
