package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"callcenter_backend/internal/leads/repository"
	"callcenter_backend/platform/logger"
)

func TestRatesContactRate(t *testing.T) {
	// 10 dispositions, 3 non-contact.
	counts := map[string]int64{
		"NA":   2,
		"VM":   1,
		"Sale": 3,
		"NI":   4,
	}
	stats := Rates(counts)
	if stats.TotalCalls != 10 {
		t.Fatalf("total = %d, want 10", stats.TotalCalls)
	}
	if stats.Contacts != 7 {
		t.Fatalf("contacts = %d, want 7", stats.Contacts)
	}
	if stats.ContactRate != 70.0 {
		t.Errorf("contact rate = %v, want 70.0", stats.ContactRate)
	}
}

func TestRatesLeadConversionRounding(t *testing.T) {
	// 7 contacts, 2 qualified leads: 2/7 = 28.571... rounds to 28.6.
	counts := map[string]int64{
		"FUTURE": 1,
		"ND/SD":  1,
		"NI":     5,
	}
	stats := Rates(counts)
	if stats.Contacts != 7 {
		t.Fatalf("contacts = %d, want 7", stats.Contacts)
	}
	if stats.LeadConversionRate != 28.6 {
		t.Errorf("lead conversion rate = %v, want 28.6", stats.LeadConversionRate)
	}
}

func TestRatesZeroDenominators(t *testing.T) {
	stats := Rates(map[string]int64{})
	if stats.ContactRate != 0 || stats.LeadConversionRate != 0 || stats.SaleRate != 0 {
		t.Errorf("empty window must yield zero rates, got %+v", stats)
	}

	// All non-contact: contacts = 0, so the conversion rates stay 0.
	stats = Rates(map[string]int64{"NA": 4, "VM": 2})
	if stats.ContactRate != 0 {
		t.Errorf("contact rate = %v, want 0", stats.ContactRate)
	}
	if stats.LeadConversionRate != 0 || stats.SaleRate != 0 {
		t.Errorf("zero contacts must yield zero conversion rates, got %+v", stats)
	}
}

func TestRatesBounded(t *testing.T) {
	counts := map[string]int64{"Sale": 5, "FUTURE": 5}
	stats := Rates(counts)
	if stats.ContactRate < 0 || stats.ContactRate > 100 {
		t.Errorf("contact rate out of range: %v", stats.ContactRate)
	}
	if stats.LeadConversionRate < 0 || stats.LeadConversionRate > 100 {
		t.Errorf("conversion rate out of range: %v", stats.LeadConversionRate)
	}
}

func TestDayStart(t *testing.T) {
	offset := -4 * time.Hour

	// 02:00 UTC is still "yesterday" on a UTC-4 floor.
	now := time.Date(2026, 8, 31, 2, 0, 0, 0, time.UTC)
	got := DayStart(now, offset)
	want := time.Date(2026, 8, 30, 4, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DayStart(%v) = %v, want %v", now, got, want)
	}

	// 05:00 UTC has crossed the boundary into the new day.
	now = time.Date(2026, 8, 31, 5, 0, 0, 0, time.UTC)
	got = DayStart(now, offset)
	want = time.Date(2026, 8, 31, 4, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DayStart(%v) = %v, want %v", now, got, want)
	}
}

func TestDayStartZeroOffset(t *testing.T) {
	now := time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)
	got := DayStart(now, 0)
	want := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DayStart = %v, want %v", got, want)
	}
}

type fakeLeadStore struct {
	since map[uuid.UUID]map[string]int64
}

func (f *fakeLeadStore) GetGlobalStats(context.Context, *time.Time, *time.Time) (repository.GlobalStats, error) {
	return repository.GlobalStats{}, nil
}

func (f *fakeLeadStore) DispositionedBetween(_ context.Context, agentID uuid.UUID, _, _ *time.Time) (map[string]int64, error) {
	return f.since[agentID], nil
}

type fakeStatStore struct {
	overall map[uuid.UUID]map[string]int64
}

func (f *fakeStatStore) UserStats(_ context.Context, userID uuid.UUID) (map[string]int64, error) {
	return f.overall[userID], nil
}

type fakeAgents struct{ agents []AgentRef }

func (f *fakeAgents) ListAgents(context.Context) ([]AgentRef, error) {
	return f.agents, nil
}

type fixedReportingConfig struct{ offset time.Duration }

func (c fixedReportingConfig) GetReportingDayOffset() time.Duration { return c.offset }

func TestUserSummaryOrderedByUsername(t *testing.T) {
	zed, abe := uuid.New(), uuid.New()
	svc := NewService(
		&fakeLeadStore{since: map[uuid.UUID]map[string]int64{
			zed: {"Sale": 1},
			abe: {"NA": 2},
		}},
		&fakeStatStore{overall: map[uuid.UUID]map[string]int64{
			zed: {"Sale": 10},
			abe: {"NA": 20},
		}},
		&fakeAgents{agents: []AgentRef{
			{ID: zed, Username: "zed"},
			{ID: abe, Username: "abe"},
		}},
		fixedReportingConfig{offset: -4 * time.Hour},
		logger.New("test"),
	)

	summaries, err := svc.UserSummary(context.Background())
	if err != nil {
		t.Fatalf("UserSummary: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d rows, want 2", len(summaries))
	}
	if summaries[0].Username != "abe" || summaries[1].Username != "zed" {
		t.Errorf("rows out of order: %s, %s", summaries[0].Username, summaries[1].Username)
	}
	if summaries[1].Today.Sales != 1 {
		t.Errorf("zed today sales = %d, want 1", summaries[1].Today.Sales)
	}
	if summaries[1].Overall.Sales != 10 {
		t.Errorf("zed overall sales = %d, want 10", summaries[1].Overall.Sales)
	}
}

func TestAgentStatsWindowReadsHistory(t *testing.T) {
	agent := uuid.New()
	svc := NewService(
		&fakeLeadStore{since: map[uuid.UUID]map[string]int64{
			agent: {"Sale": 2, "NA": 1},
		}},
		&fakeStatStore{overall: map[uuid.UUID]map[string]int64{
			agent: {"Sale": 50},
		}},
		&fakeAgents{},
		fixedReportingConfig{offset: -4 * time.Hour},
		logger.New("test"),
	)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	windowed, err := svc.AgentStats(context.Background(), agent, &from, nil)
	if err != nil {
		t.Fatalf("AgentStats windowed: %v", err)
	}
	if windowed.TotalCalls != 3 {
		t.Errorf("windowed total = %d, want 3 from history", windowed.TotalCalls)
	}

	overall, err := svc.AgentStats(context.Background(), agent, nil, nil)
	if err != nil {
		t.Fatalf("AgentStats overall: %v", err)
	}
	if overall.TotalCalls != 50 {
		t.Errorf("overall total = %d, want 50 from running counters", overall.TotalCalls)
	}
}
