package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "callcenter_backend/internal/http"
	"callcenter_backend/platform/config"
	"callcenter_backend/platform/logger"
)

// Module is the auth bounded context implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, cfg, log)
	return &Module{handler: NewHandler(svc), service: svc}
}

func (m *Module) Name() string { return "auth" }

// Service exposes the auth service to the composition root, which wires it
// into the session guard and the password-verified admin operations.
func (m *Module) Service() *Service { return m.service }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.POST("/login", ctx.AuthRateLimiter.RateLimit(), m.handler.Login)
	authGroup.POST("/logout", ctx.AuthMiddleware, m.handler.Logout)
}

var _ apphttp.Module = (*Module)(nil)
