// Package reporting computes the dashboard numbers: per-agent call rates,
// pool-wide totals, and the all-agents daily summary.
package reporting

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"callcenter_backend/internal/leads/domain"
	"callcenter_backend/internal/leads/repository"
	"callcenter_backend/internal/leads/transport"
	"callcenter_backend/platform/apperr"
	"callcenter_backend/platform/config"
	"callcenter_backend/platform/logger"
)

// LeadStore is the slice of the lead repository this service needs.
type LeadStore interface {
	GetGlobalStats(ctx context.Context, from, to *time.Time) (repository.GlobalStats, error)
	DispositionedBetween(ctx context.Context, agentID uuid.UUID, from, to *time.Time) (map[string]int64, error)
}

// StatStore reads the per-agent running counters.
type StatStore interface {
	UserStats(ctx context.Context, userID uuid.UUID) (map[string]int64, error)
}

// AgentRef identifies one agent in the summary.
type AgentRef struct {
	ID       uuid.UUID
	Username string
}

// AgentDirectory lists the accounts the summary covers.
type AgentDirectory interface {
	ListAgents(ctx context.Context) ([]AgentRef, error)
}

type Service struct {
	leads  LeadStore
	stats  StatStore
	agents AgentDirectory
	cfg    config.ReportingConfig
	log    *logger.Logger
	now    func() time.Time
}

func NewService(leads LeadStore, stats StatStore, agents AgentDirectory, cfg config.ReportingConfig, log *logger.Logger) *Service {
	return &Service{leads: leads, stats: stats, agents: agents, cfg: cfg, log: log, now: time.Now}
}

// Round1 rounds a percentage to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Rates derives the three dashboard percentages from raw disposition counts.
// Every rate is 0 when its denominator is 0; no division ever yields NaN.
func Rates(counts map[string]int64) transport.AgentStatsResponse {
	resp := transport.AgentStatsResponse{Counts: counts}
	for disposition, count := range counts {
		resp.TotalCalls += count
		d := domain.Disposition(disposition)
		if !d.NonContact() {
			resp.Contacts += count
		}
		if d.QualifiedLead() {
			resp.Leads += count
		}
		if d == domain.Sale {
			resp.Sales += count
		}
	}
	if resp.TotalCalls > 0 {
		resp.ContactRate = Round1(float64(resp.Contacts) / float64(resp.TotalCalls) * 100)
	}
	if resp.Contacts > 0 {
		resp.LeadConversionRate = Round1(float64(resp.Leads) / float64(resp.Contacts) * 100)
		resp.SaleRate = Round1(float64(resp.Sales) / float64(resp.Contacts) * 100)
	}
	return resp
}

// DayStart returns the beginning of "today" under the configured reporting
// offset. An offset of -4h makes days roll over at 04:00 UTC, i.e. midnight
// in the call floor's timezone.
func DayStart(now time.Time, offset time.Duration) time.Time {
	shifted := now.UTC().Add(offset)
	day := time.Date(shifted.Year(), shifted.Month(), shifted.Day(), 0, 0, 0, 0, time.UTC)
	return day.Add(-offset)
}

// GlobalStats reports pool-wide totals for the admin dashboard. A nil bound
// leaves that side of the disposition rollup window open.
func (s *Service) GlobalStats(ctx context.Context, from, to *time.Time) (transport.GlobalStatsResponse, error) {
	stats, err := s.leads.GetGlobalStats(ctx, from, to)
	if err != nil {
		return transport.GlobalStatsResponse{}, apperr.Storage("reporting.global", err)
	}
	return transport.GlobalStatsResponse{
		TotalLeads:     stats.Total,
		AssignedLeads:  stats.Assigned,
		CompletedLeads: stats.Completed,
		ByDisposition:  stats.ByDisposition,
	}, nil
}

// AgentStats returns the agent's counters with derived rates. Without a
// window it reads the running counters; with one it recomputes from the
// history log so re-dispositioned leads stay in the window they were worked.
func (s *Service) AgentStats(ctx context.Context, agentID uuid.UUID, from, to *time.Time) (transport.AgentStatsResponse, error) {
	if from == nil && to == nil {
		counts, err := s.stats.UserStats(ctx, agentID)
		if err != nil {
			return transport.AgentStatsResponse{}, apperr.Storage("reporting.agent", err)
		}
		return Rates(counts), nil
	}
	counts, err := s.leads.DispositionedBetween(ctx, agentID, from, to)
	if err != nil {
		return transport.AgentStatsResponse{}, apperr.Storage("reporting.agent", err)
	}
	return Rates(counts), nil
}

// AgentStatsToday recomputes the agent's counters from the history log for
// the current reporting day.
func (s *Service) AgentStatsToday(ctx context.Context, agentID uuid.UUID) (transport.AgentStatsResponse, error) {
	since := DayStart(s.now(), s.cfg.GetReportingDayOffset())
	counts, err := s.leads.DispositionedBetween(ctx, agentID, &since, nil)
	if err != nil {
		return transport.AgentStatsResponse{}, apperr.Storage("reporting.today", err)
	}
	return Rates(counts), nil
}

// AgentSummary is one row of the all-agents dashboard table.
type AgentSummary struct {
	AgentID  uuid.UUID                    `json:"agentId"`
	Username string                       `json:"username"`
	Today    transport.AgentStatsResponse `json:"today"`
	Overall  transport.AgentStatsResponse `json:"overall"`
}

// UserSummary builds the dashboard table, one row per agent, fanning the
// per-agent queries out concurrently. Row order is stable by username.
func (s *Service) UserSummary(ctx context.Context) ([]AgentSummary, error) {
	agents, err := s.agents.ListAgents(ctx)
	if err != nil {
		return nil, apperr.Storage("reporting.summary", err)
	}
	since := DayStart(s.now(), s.cfg.GetReportingDayOffset())

	summaries := make([]AgentSummary, len(agents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, agent := range agents {
		g.Go(func() error {
			today, err := s.leads.DispositionedBetween(gctx, agent.ID, &since, nil)
			if err != nil {
				return err
			}
			overall, err := s.stats.UserStats(gctx, agent.ID)
			if err != nil {
				return err
			}
			summaries[i] = AgentSummary{
				AgentID:  agent.ID,
				Username: agent.Username,
				Today:    Rates(today),
				Overall:  Rates(overall),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperr.Storage("reporting.summary", err)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Username < summaries[j].Username
	})
	return summaries, nil
}
