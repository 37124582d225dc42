package disposition

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"callcenter_backend/internal/events"
	"callcenter_backend/internal/leads/domain"
	"callcenter_backend/internal/leads/repository"
	"callcenter_backend/internal/leads/transport"
	"callcenter_backend/platform/apperr"
	"callcenter_backend/platform/logger"
)

type fakeLeadStore struct {
	lead    repository.Lead
	applied *repository.ApplyDispositionParams
}

func (f *fakeLeadStore) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	if id != f.lead.ID {
		return repository.Lead{}, repository.ErrNotFound
	}
	return f.lead, nil
}

func (f *fakeLeadStore) ApplyDisposition(_ context.Context, params repository.ApplyDispositionParams) (repository.Lead, error) {
	f.applied = &params
	lead := f.lead
	lead.Disposition = &params.Disposition
	lead.CallbackAt = params.CallbackAt
	return lead, nil
}

type fakeStatStore struct {
	incremented []string
	decremented []string
}

func (f *fakeStatStore) IncrementStat(_ context.Context, _ uuid.UUID, d string) error {
	f.incremented = append(f.incremented, d)
	return nil
}

func (f *fakeStatStore) DecrementStat(_ context.Context, _ uuid.UUID, d string) error {
	f.decremented = append(f.decremented, d)
	return nil
}

type fakeSessionLog struct {
	entries map[string]string
}

func (f *fakeSessionLog) Record(_ context.Context, agentID uuid.UUID, sessionID string, leadID uuid.UUID, disposition string) (string, error) {
	if f.entries == nil {
		f.entries = make(map[string]string)
	}
	key := agentID.String() + ":" + sessionID + ":" + leadID.String()
	previous := f.entries[key]
	f.entries[key] = disposition
	return previous, nil
}

type nopBus struct{}

func (nopBus) Publish(context.Context, events.Event)           {}
func (nopBus) PublishSync(context.Context, events.Event) error { return nil }
func (nopBus) Subscribe(string, events.Handler)                {}

func newTestService(agentID uuid.UUID) (*Service, *fakeLeadStore, *fakeStatStore) {
	leads := &fakeLeadStore{
		lead: repository.Lead{
			ID:         uuid.New(),
			Name:       "Pat Doe",
			Phone:      "+15555551000",
			AssignedTo: &agentID,
		},
	}
	stats := &fakeStatStore{}
	svc := NewService(leads, stats, &fakeSessionLog{}, nopBus{}, logger.New("test"))
	return svc, leads, stats
}

func TestApplyEmptyDisposition(t *testing.T) {
	agentID := uuid.New()
	svc, leads, _ := newTestService(agentID)

	_, err := svc.Apply(context.Background(), agentID, "sess", leads.lead.ID, transport.DispositionRequest{
		Disposition: "",
	})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if leads.applied != nil {
		t.Error("lead should not be updated on an empty disposition")
	}
}

func TestApplyNewDispositionCode(t *testing.T) {
	agentID := uuid.New()
	svc, leads, stats := newTestService(agentID)

	resp, err := svc.Apply(context.Background(), agentID, "sess", leads.lead.ID, transport.DispositionRequest{
		Disposition: "Spanish Line",
	})
	if err != nil {
		t.Fatalf("a code outside the fixed vocabulary must be accepted: %v", err)
	}
	if resp.Disposition == nil || *resp.Disposition != "Spanish Line" {
		t.Errorf("disposition = %v, want Spanish Line", resp.Disposition)
	}
	if len(stats.incremented) != 1 || stats.incremented[0] != "Spanish Line" {
		t.Errorf("incremented = %v, want the new code counted", stats.incremented)
	}
}

func TestApplyNotOwnLead(t *testing.T) {
	agentID := uuid.New()
	svc, leads, _ := newTestService(agentID)

	_, err := svc.Apply(context.Background(), uuid.New(), "sess", leads.lead.ID, transport.DispositionRequest{
		Disposition: "Sale",
	})
	if apperr.GetKind(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestApplySchedulesCallback(t *testing.T) {
	agentID := uuid.New()
	svc, leads, _ := newTestService(agentID)

	resp, err := svc.Apply(context.Background(), agentID, "sess", leads.lead.ID, transport.DispositionRequest{
		Disposition:  "Callback",
		CallbackDate: "2026-09-02",
		CallbackTime: "14:30",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if resp.CallbackAt == nil {
		t.Fatal("expected a scheduled callback")
	}
	want := time.Date(2026, 9, 2, 14, 30, 0, 0, time.UTC)
	if !resp.CallbackAt.Equal(want) {
		t.Errorf("callback at %v, want %v", resp.CallbackAt, want)
	}
	if leads.applied.HistoryNote == "" {
		t.Error("history note should mention the callback")
	}
}

func TestApplyPartialCallbackPairIgnored(t *testing.T) {
	agentID := uuid.New()
	svc, leads, _ := newTestService(agentID)

	resp, err := svc.Apply(context.Background(), agentID, "sess", leads.lead.ID, transport.DispositionRequest{
		Disposition:  "Callback",
		CallbackDate: "2026-09-02",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if resp.CallbackAt != nil {
		t.Error("date without time must not schedule a callback")
	}
}

func TestApplyNonCallbackDispositionIgnoresSchedule(t *testing.T) {
	agentID := uuid.New()
	svc, leads, _ := newTestService(agentID)

	resp, err := svc.Apply(context.Background(), agentID, "sess", leads.lead.ID, transport.DispositionRequest{
		Disposition:  "Sale",
		CallbackDate: "2026-09-02",
		CallbackTime: "14:30",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if resp.CallbackAt != nil {
		t.Error("Sale must not carry a callback even when times are supplied")
	}
}

func TestStatsCountOncePerSession(t *testing.T) {
	agentID := uuid.New()
	svc, leads, stats := newTestService(agentID)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Apply(ctx, agentID, "sess", leads.lead.ID, transport.DispositionRequest{Disposition: "NA"}); err != nil {
			t.Fatalf("Apply %d: %v", i, err)
		}
	}
	if got := len(stats.incremented); got != 1 {
		t.Errorf("repeat dispositions incremented %d times, want 1", got)
	}
	if len(stats.decremented) != 0 {
		t.Errorf("unexpected decrements: %v", stats.decremented)
	}
}

func TestStatsSwapOnRedisposition(t *testing.T) {
	agentID := uuid.New()
	svc, leads, stats := newTestService(agentID)
	ctx := context.Background()

	if _, err := svc.Apply(ctx, agentID, "sess", leads.lead.ID, transport.DispositionRequest{Disposition: "NA"}); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if _, err := svc.Apply(ctx, agentID, "sess", leads.lead.ID, transport.DispositionRequest{Disposition: "Sale"}); err != nil {
		t.Fatalf("second Apply: %v", err)
	}

	if len(stats.incremented) != 2 || stats.incremented[1] != "Sale" {
		t.Errorf("increments = %v, want [NA Sale]", stats.incremented)
	}
	if len(stats.decremented) != 1 || stats.decremented[0] != "NA" {
		t.Errorf("decrements = %v, want [NA]", stats.decremented)
	}
}

func TestStatsCountAgainInNewSession(t *testing.T) {
	agentID := uuid.New()
	svc, leads, stats := newTestService(agentID)
	ctx := context.Background()

	if _, err := svc.Apply(ctx, agentID, "sess-1", leads.lead.ID, transport.DispositionRequest{Disposition: "NA"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, err := svc.Apply(ctx, agentID, "sess-2", leads.lead.ID, transport.DispositionRequest{Disposition: "NA"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := len(stats.incremented); got != 2 {
		t.Errorf("new session should count again, got %d increments", got)
	}
}

func TestComputeCallbackInvalidTime(t *testing.T) {
	_, err := ComputeCallback(domain.Callback, "2026-09-02", "25:99")
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
