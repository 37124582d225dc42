package assignment

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"callcenter_backend/internal/events"
	"callcenter_backend/internal/leads/repository"
	"callcenter_backend/internal/leads/transport"
	"callcenter_backend/platform/apperr"
	"callcenter_backend/platform/logger"
)

type fakeLeadStore struct {
	reassigned []uuid.UUID
	target     *uuid.UUID
	deleted    []uuid.UUID
}

func (f *fakeLeadStore) Reassign(_ context.Context, ids []uuid.UUID, target *uuid.UUID) (int64, error) {
	f.reassigned = ids
	f.target = target
	return int64(len(ids)), nil
}

func (f *fakeLeadStore) Delete(_ context.Context, ids []uuid.UUID) (int64, error) {
	f.deleted = ids
	return int64(len(ids)), nil
}

func (f *fakeLeadStore) ListUnassigned(context.Context, int, int) ([]repository.Lead, int64, error) {
	return nil, 0, nil
}

type fakeAgents struct {
	known map[uuid.UUID]bool
}

func (f *fakeAgents) AgentExists(_ context.Context, id uuid.UUID) (bool, error) {
	return f.known[id], nil
}

type fakeVerifier struct {
	password string
}

func (f *fakeVerifier) VerifyPassword(_ context.Context, _ uuid.UUID, password string) error {
	if password != f.password {
		return apperr.Unauthorized("invalid password")
	}
	return nil
}

type nopBus struct{}

func (nopBus) Publish(context.Context, events.Event)           {}
func (nopBus) PublishSync(context.Context, events.Event) error { return nil }
func (nopBus) Subscribe(string, events.Handler)                {}

func newTestService(agentID uuid.UUID) (*Service, *fakeLeadStore) {
	leads := &fakeLeadStore{}
	agents := &fakeAgents{known: map[uuid.UUID]bool{agentID: true}}
	svc := NewService(leads, agents, &fakeVerifier{password: "hunter2"}, nopBus{}, logger.New("test"))
	return svc, leads
}

func TestReassignEmptySelection(t *testing.T) {
	svc, _ := newTestService(uuid.New())

	_, err := svc.Reassign(context.Background(), transport.ReassignRequest{})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReassignUnknownTarget(t *testing.T) {
	svc, leads := newTestService(uuid.New())
	bogus := uuid.New()

	_, err := svc.Reassign(context.Background(), transport.ReassignRequest{
		LeadIDs:  []uuid.UUID{uuid.New()},
		TargetID: &bogus,
	})
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if leads.reassigned != nil {
		t.Error("no leads should move when the target does not exist")
	}
}

func TestReassignToPool(t *testing.T) {
	svc, leads := newTestService(uuid.New())
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	moved, err := svc.Reassign(context.Background(), transport.ReassignRequest{LeadIDs: ids})
	if err != nil {
		t.Fatalf("Reassign: %v", err)
	}
	if moved != 2 {
		t.Errorf("moved = %d, want 2", moved)
	}
	if leads.target != nil {
		t.Error("nil target should unassign, not assign")
	}
}

func TestReassignToAgent(t *testing.T) {
	agentID := uuid.New()
	svc, leads := newTestService(agentID)

	_, err := svc.Reassign(context.Background(), transport.ReassignRequest{
		LeadIDs:  []uuid.UUID{uuid.New()},
		TargetID: &agentID,
	})
	if err != nil {
		t.Fatalf("Reassign: %v", err)
	}
	if leads.target == nil || *leads.target != agentID {
		t.Errorf("target = %v, want %v", leads.target, agentID)
	}
}

func TestBulkDeleteWrongPassword(t *testing.T) {
	svc, leads := newTestService(uuid.New())

	_, err := svc.BulkDelete(context.Background(), uuid.New(), transport.BulkDeleteRequest{
		LeadIDs:  []uuid.UUID{uuid.New()},
		Password: "wrong",
	})
	if apperr.GetKind(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if leads.deleted != nil {
		t.Error("nothing should be deleted on a failed password check")
	}
}

func TestBulkDelete(t *testing.T) {
	svc, leads := newTestService(uuid.New())
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	removed, err := svc.BulkDelete(context.Background(), uuid.New(), transport.BulkDeleteRequest{
		LeadIDs:  ids,
		Password: "hunter2",
	})
	if err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
	if len(leads.deleted) != 3 {
		t.Errorf("deleted %d leads, want 3", len(leads.deleted))
	}
}
