// Package assignment moves leads between agents and the unassigned pool,
// and handles the password-guarded bulk delete.
package assignment

import (
	"context"

	"github.com/google/uuid"

	"callcenter_backend/internal/events"
	"callcenter_backend/internal/leads/repository"
	"callcenter_backend/internal/leads/transport"
	"callcenter_backend/platform/apperr"
	"callcenter_backend/platform/logger"
)

// LeadStore is the slice of the lead repository this service needs.
type LeadStore interface {
	Reassign(ctx context.Context, leadIDs []uuid.UUID, target *uuid.UUID) (int64, error)
	Delete(ctx context.Context, leadIDs []uuid.UUID) (int64, error)
	ListUnassigned(ctx context.Context, limit, offset int) ([]repository.Lead, int64, error)
}

// AgentDirectory answers whether a reassignment target is a real agent.
type AgentDirectory interface {
	AgentExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// PasswordVerifier re-checks the acting admin's password before destructive
// operations.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, userID uuid.UUID, password string) error
}

type Service struct {
	leads    LeadStore
	agents   AgentDirectory
	verifier PasswordVerifier
	bus      events.Bus
	log      *logger.Logger
}

func NewService(leads LeadStore, agents AgentDirectory, verifier PasswordVerifier, bus events.Bus, log *logger.Logger) *Service {
	return &Service{leads: leads, agents: agents, verifier: verifier, bus: bus, log: log}
}

// Reassign moves the given leads to the target agent, or back to the pool
// when the target is nil. IDs that no longer exist are skipped silently, so
// two admins racing on the same selection both succeed.
func (s *Service) Reassign(ctx context.Context, req transport.ReassignRequest) (int64, error) {
	if len(req.LeadIDs) == 0 {
		return 0, apperr.Validation("no leads selected")
	}

	if req.TargetID != nil {
		exists, err := s.agents.AgentExists(ctx, *req.TargetID)
		if err != nil {
			return 0, apperr.Storage("assignment.target", err)
		}
		if !exists {
			return 0, apperr.NotFound("target agent")
		}
	}

	moved, err := s.leads.Reassign(ctx, req.LeadIDs, req.TargetID)
	if err != nil {
		return 0, apperr.Storage("assignment.reassign", err)
	}

	s.log.Info("leads reassigned", "count", moved, "target", req.TargetID)
	s.bus.Publish(ctx, events.LeadsReassigned{
		BaseEvent: events.NewBaseEvent(),
		LeadCount: moved,
		TargetID:  req.TargetID,
	})
	return moved, nil
}

// BulkDelete permanently removes the selected leads after re-verifying the
// acting admin's password. History rows go with them.
func (s *Service) BulkDelete(ctx context.Context, adminID uuid.UUID, req transport.BulkDeleteRequest) (int64, error) {
	if len(req.LeadIDs) == 0 {
		return 0, apperr.Validation("no leads selected")
	}
	if err := s.verifier.VerifyPassword(ctx, adminID, req.Password); err != nil {
		return 0, err
	}

	removed, err := s.leads.Delete(ctx, req.LeadIDs)
	if err != nil {
		return 0, apperr.Storage("assignment.delete", err)
	}
	s.log.Info("leads deleted", "count", removed, "admin_id", adminID)
	return removed, nil
}

// ListUnassigned pages through the pool of leads no agent currently owns.
func (s *Service) ListUnassigned(ctx context.Context, page, pageSize int) (transport.LeadPageResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	leads, total, err := s.leads.ListUnassigned(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return transport.LeadPageResponse{}, apperr.Storage("assignment.unassigned", err)
	}
	return transport.NewLeadPage(leads, total, page, pageSize), nil
}
