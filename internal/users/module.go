package users

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"callcenter_backend/internal/events"
	apphttp "callcenter_backend/internal/http"
	"callcenter_backend/platform/logger"
)

// Module is the users bounded context implementing http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
}

func NewModule(pool *pgxpool.Pool, leads LeadPool, bus events.Bus, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, leads, bus, log)
	return &Module{handler: NewHandler(svc), repo: repo}
}

func (m *Module) Name() string { return "users" }

// Repo exposes the repository to the composition root, which wires it into
// the disposition service (stat counters) and the reporting service.
func (m *Module) Repo() *Repository { return m.repo }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/users/me", m.handler.Me)

	ctx.Agent.GET("/progress", m.handler.Progress)
	ctx.Agent.PUT("/progress", m.handler.SetProgress)

	ctx.Admin.POST("/users", m.handler.Create)
	ctx.Admin.GET("/users", m.handler.List)
	ctx.Admin.GET("/agents", m.handler.ListAgents)
	ctx.Admin.PATCH("/users/:id", m.handler.Update)
	ctx.Admin.DELETE("/users/:id", m.handler.Delete)
	ctx.Admin.POST("/users/:id/stats/reset", m.handler.ResetStats)
}

var _ apphttp.Module = (*Module)(nil)
