// Package disposition applies call outcomes to leads: the field update, the
// history entry, per-agent stat counters, and any follow-up scheduling.
package disposition

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"callcenter_backend/internal/events"
	"callcenter_backend/internal/leads/domain"
	"callcenter_backend/internal/leads/repository"
	"callcenter_backend/internal/leads/transport"
	"callcenter_backend/platform/apperr"
	"callcenter_backend/platform/logger"
)

// LeadStore is the slice of the lead repository this service needs.
type LeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	ApplyDisposition(ctx context.Context, params repository.ApplyDispositionParams) (repository.Lead, error)
}

// StatStore maintains the per-agent disposition counters.
type StatStore interface {
	IncrementStat(ctx context.Context, userID uuid.UUID, disposition string) error
	DecrementStat(ctx context.Context, userID uuid.UUID, disposition string) error
}

// SessionLog remembers which disposition an agent already recorded for a
// lead within the current login session, so re-dispositioning the same lead
// moves a counter instead of inflating two.
type SessionLog interface {
	Record(ctx context.Context, agentID uuid.UUID, sessionID string, leadID uuid.UUID, disposition string) (previous string, err error)
}

type Service struct {
	leads   LeadStore
	stats   StatStore
	session SessionLog
	bus     events.Bus
	log     *logger.Logger
}

func NewService(leads LeadStore, stats StatStore, session SessionLog, bus events.Bus, log *logger.Logger) *Service {
	return &Service{leads: leads, stats: stats, session: session, bus: bus, log: log}
}

// Apply records the outcome of a call. The lead must belong to the acting
// agent. Callback scheduling requires both a date and a time; a partial pair
// is ignored rather than rejected, matching how agents actually submit the
// form. Any disposition that does not carry a callback clears an existing one.
func (s *Service) Apply(ctx context.Context, agentID uuid.UUID, sessionID string, leadID uuid.UUID, req transport.DispositionRequest) (transport.LeadResponse, error) {
	if req.Disposition == "" {
		return transport.LeadResponse{}, apperr.Validation("disposition is required")
	}
	// Values outside the well-known vocabulary pass through unchanged; the
	// classification methods treat them as plain contact outcomes.
	disp := domain.Disposition(req.Disposition)

	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		if err == repository.ErrNotFound {
			return transport.LeadResponse{}, apperr.NotFound("lead")
		}
		return transport.LeadResponse{}, apperr.Storage("disposition.get", err)
	}
	if lead.AssignedTo == nil || *lead.AssignedTo != agentID {
		return transport.LeadResponse{}, apperr.Forbidden("lead is not assigned to you")
	}

	callbackAt, err := ComputeCallback(disp, req.CallbackDate, req.CallbackTime)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	var language *string
	if req.Language != "" {
		language = &req.Language
	}

	historyNote := req.Notes
	if callbackAt != nil {
		historyNote = fmt.Sprintf("%s (callback %s)", req.Notes, callbackAt.Format("2006-01-02 15:04"))
	}

	updated, err := s.leads.ApplyDisposition(ctx, repository.ApplyDispositionParams{
		LeadID:      leadID,
		Disposition: string(disp),
		Notes:       req.Notes,
		Language:    language,
		CallbackAt:  callbackAt,
		AgentID:     agentID,
		Action:      "disposition",
		HistoryNote: historyNote,
	})
	if err != nil {
		return transport.LeadResponse{}, apperr.Storage("disposition.apply", err)
	}

	if err := s.updateStats(ctx, agentID, sessionID, leadID, string(disp)); err != nil {
		// The lead itself is updated; a counter glitch is not worth failing
		// the agent's call flow over.
		s.log.Error("disposition stat update failed", "error", err, "lead_id", leadID)
	}

	s.log.DispositionApplied(leadID.String(), agentID.String(), string(disp))
	s.bus.Publish(ctx, events.LeadDispositioned{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      leadID,
		AgentID:     agentID,
		Disposition: string(disp),
	})

	return transport.ToLeadResponse(updated), nil
}

// updateStats counts the outcome once per lead per login session. A repeat
// disposition of the same lead swaps the counter from the old value to the
// new one.
func (s *Service) updateStats(ctx context.Context, agentID uuid.UUID, sessionID string, leadID uuid.UUID, disposition string) error {
	previous, err := s.session.Record(ctx, agentID, sessionID, leadID, disposition)
	if err != nil {
		return err
	}
	if previous == disposition {
		return nil
	}
	if previous != "" {
		if err := s.stats.DecrementStat(ctx, agentID, previous); err != nil {
			return err
		}
	}
	return s.stats.IncrementStat(ctx, agentID, disposition)
}

// ComputeCallback derives the scheduled follow-up time, if any. Only
// dispositions that carry callbacks schedule one, and only when both the
// date and time fields are present.
func ComputeCallback(disp domain.Disposition, date, clock string) (*time.Time, error) {
	if !disp.CarriesCallback() || date == "" || clock == "" {
		return nil, nil
	}
	at, err := time.Parse("2006-01-02T15:04", date+"T"+clock)
	if err != nil {
		return nil, apperr.Validation("invalid callback date or time")
	}
	return &at, nil
}
