// Package scheduling serves each agent's callback queue.
package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"callcenter_backend/internal/leads/repository"
	"callcenter_backend/internal/leads/transport"
	"callcenter_backend/platform/apperr"
)

// LeadStore is the slice of the lead repository this service needs.
type LeadStore interface {
	PendingCallbacks(ctx context.Context, agentID uuid.UUID) ([]repository.Lead, error)
}

type Service struct {
	leads LeadStore
	now   func() time.Time
}

func NewService(leads LeadStore) *Service {
	return &Service{leads: leads, now: time.Now}
}

// Pending returns the agent's scheduled follow-ups soonest first, flagging
// the ones whose time has already passed.
func (s *Service) Pending(ctx context.Context, agentID uuid.UUID) ([]transport.CallbackResponse, error) {
	leads, err := s.leads.PendingCallbacks(ctx, agentID)
	if err != nil {
		return nil, apperr.Storage("scheduling.pending", err)
	}

	now := s.now()
	out := make([]transport.CallbackResponse, 0, len(leads))
	for _, lead := range leads {
		if lead.CallbackAt == nil {
			continue
		}
		out = append(out, transport.CallbackResponse{
			Lead:       transport.ToLeadResponse(lead),
			CallbackAt: *lead.CallbackAt,
			Overdue:    lead.CallbackAt.Before(now),
		})
	}
	return out, nil
}
