package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"callcenter_backend/internal/leads/repository"
)

type fakeLeadStore struct {
	leads []repository.Lead
}

func (f *fakeLeadStore) PendingCallbacks(context.Context, uuid.UUID) ([]repository.Lead, error) {
	return f.leads, nil
}

func TestPendingFlagsOverdue(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	svc := NewService(&fakeLeadStore{leads: []repository.Lead{
		{ID: uuid.New(), CallbackAt: &past},
		{ID: uuid.New(), CallbackAt: &future},
	}})
	svc.now = func() time.Time { return now }

	callbacks, err := svc.Pending(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(callbacks) != 2 {
		t.Fatalf("got %d callbacks, want 2", len(callbacks))
	}
	if !callbacks[0].Overdue {
		t.Error("past callback should be flagged overdue")
	}
	if callbacks[1].Overdue {
		t.Error("future callback should not be overdue")
	}
}

func TestPendingSkipsNilCallback(t *testing.T) {
	svc := NewService(&fakeLeadStore{leads: []repository.Lead{
		{ID: uuid.New()},
	}})

	callbacks, err := svc.Pending(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(callbacks) != 0 {
		t.Errorf("got %d callbacks, want 0", len(callbacks))
	}
}
