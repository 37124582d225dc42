// Package leads is the lead management bounded context: the agent call
// flow, admin management, dedup, reporting, and the import pipeline.
package leads

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"callcenter_backend/internal/events"
	apphttp "callcenter_backend/internal/http"
	"callcenter_backend/internal/leads/assignment"
	"callcenter_backend/internal/leads/dedup"
	"callcenter_backend/internal/leads/disposition"
	"callcenter_backend/internal/leads/handler"
	"callcenter_backend/internal/leads/importing"
	"callcenter_backend/internal/leads/reporting"
	"callcenter_backend/internal/leads/repository"
	"callcenter_backend/internal/leads/scheduling"
	"callcenter_backend/platform/config"
	"callcenter_backend/platform/logger"
	"callcenter_backend/platform/validator"
)

// UserDirectory is everything the leads context needs to know about user
// accounts: the running counters and the set of agents. The users module's
// repository satisfies it through a small adapter in the composition root.
type UserDirectory interface {
	IncrementStat(ctx context.Context, userID uuid.UUID, disposition string) error
	DecrementStat(ctx context.Context, userID uuid.UUID, disposition string) error
	UserStats(ctx context.Context, userID uuid.UUID) (map[string]int64, error)
	AgentExists(ctx context.Context, id uuid.UUID) (bool, error)
	ListAgents(ctx context.Context) ([]reporting.AgentRef, error)
}

// Deps are the cross-context dependencies the leads module is wired with.
type Deps struct {
	Pool       *pgxpool.Pool
	Users      UserDirectory
	SessionLog disposition.SessionLog
	Verifier   assignment.PasswordVerifier
	Objects    importing.ObjectStore
	Queue      importing.Enqueuer
	Bus        events.Bus
	Reporting  config.ReportingConfig
	Validator  *validator.Validator
	Log        *logger.Logger
}

// Module is the leads bounded context implementing http.Module.
type Module struct {
	repo      *repository.Repository
	importing *importing.Service
	agent     *handler.AgentHandler
	admin     *handler.AdminHandler
}

func NewModule(deps Deps) *Module {
	repo := repository.New(deps.Pool)

	dispositionSvc := disposition.NewService(repo, deps.Users, deps.SessionLog, deps.Bus, deps.Log)
	assignmentSvc := assignment.NewService(repo, deps.Users, deps.Verifier, deps.Bus, deps.Log)
	dedupSvc := dedup.NewService(repo, deps.Verifier, deps.Log)
	reportingSvc := reporting.NewService(repo, deps.Users, deps.Users, deps.Reporting, deps.Log)
	schedulingSvc := scheduling.NewService(repo)
	importingSvc := importing.NewService(repo, deps.Objects, deps.Queue, deps.Bus, deps.Validator, deps.Log)

	return &Module{
		repo:      repo,
		importing: importingSvc,
		agent:     handler.NewAgentHandler(repo, dispositionSvc, schedulingSvc, reportingSvc),
		admin:     handler.NewAdminHandler(repo, assignmentSvc, dedupSvc, reportingSvc, importingSvc),
	}
}

func (m *Module) Name() string { return "leads" }

// Repo exposes the repository for cross-context wiring (user deletion
// releases leads; exports stream them).
func (m *Module) Repo() *repository.Repository { return m.repo }

// Importing exposes the import pipeline for the background worker.
func (m *Module) Importing() *importing.Service { return m.importing }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Agent.GET("/leads", m.agent.Leads)
	ctx.Agent.GET("/leads/:id", m.agent.Lead)
	ctx.Agent.GET("/leads/:id/history", m.agent.History)
	ctx.Agent.POST("/leads/:id/disposition", m.agent.Disposition)
	ctx.Agent.GET("/callbacks", m.agent.Callbacks)
	ctx.Agent.GET("/stats", m.agent.Stats)
	ctx.Agent.GET("/stats/today", m.agent.StatsToday)

	ctx.Admin.GET("/leads", m.admin.List)
	ctx.Admin.GET("/leads/filters", m.admin.FilterOptions)
	ctx.Admin.GET("/leads/unassigned", m.admin.Unassigned)
	ctx.Admin.GET("/leads/:id", m.admin.Get)
	ctx.Admin.PATCH("/leads/:id", m.admin.Update)
	ctx.Admin.GET("/leads/:id/history", m.admin.History)
	ctx.Admin.POST("/leads/reassign", m.admin.Reassign)
	ctx.Admin.POST("/leads/delete", m.admin.BulkDelete)
	ctx.Admin.GET("/dedup/preview", m.admin.DedupPreview)
	ctx.Admin.POST("/dedup/apply", m.admin.DedupApply)
	ctx.Admin.GET("/stats", m.admin.GlobalStats)
	ctx.Admin.GET("/users/:id/stats", m.admin.AgentStats)
	ctx.Admin.GET("/summary", m.admin.UserSummary)
	ctx.Admin.POST("/imports", m.admin.Import)
	ctx.Admin.GET("/imports", m.admin.Imports)
	ctx.Admin.GET("/imports/:id", m.admin.ImportStatus)
}

var _ apphttp.Module = (*Module)(nil)
