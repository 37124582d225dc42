package telephony

import (
	"context"
	"errors"
	"testing"
	"time"

	"callcenter_backend/platform/logger"
)

type fakeCallLog struct {
	records map[string][]CallRecord
	fail    map[string]bool
}

func (f *fakeCallLog) CallLog(_ context.Context, extensionID string, _, _ time.Time) ([]CallRecord, error) {
	if f.fail[extensionID] {
		return nil, errors.New("upstream timeout")
	}
	return f.records[extensionID], nil
}

type fakeExtensions struct{ extensions []Extension }

func (f *fakeExtensions) ListExtensions(context.Context) ([]Extension, error) {
	return f.extensions, nil
}

type fixedTelephonyConfig struct{ hours float64 }

func (c fixedTelephonyConfig) GetTelephonyBaseURL() string      { return "http://example.invalid" }
func (c fixedTelephonyConfig) GetTelephonyToken() string        { return "token" }
func (c fixedTelephonyConfig) GetEffectiveHoursPerDay() float64 { return c.hours }
func (c fixedTelephonyConfig) IsTelephonyEnabled() bool         { return true }

func TestDailyActivityUtilization(t *testing.T) {
	calls := &fakeCallLog{records: map[string][]CallRecord{
		"101": {
			{ExtensionID: "101", DurationSec: 3 * 3600},
			{ExtensionID: "101", DurationSec: 3600},
		},
	}}
	svc := NewService(calls, &fakeExtensions{extensions: []Extension{
		{Username: "pat", ExtensionID: "101"},
	}}, fixedTelephonyConfig{hours: 6}, logger.New("test"))

	activities, err := svc.DailyActivity(context.Background(), time.Now().Truncate(24*time.Hour))
	if err != nil {
		t.Fatalf("DailyActivity: %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("got %d rows, want 1", len(activities))
	}

	row := activities[0]
	if row.CallCount != 2 {
		t.Errorf("call count = %d, want 2", row.CallCount)
	}
	if row.TalkTimeSec != 4*3600 {
		t.Errorf("talk time = %d, want %d", row.TalkTimeSec, 4*3600)
	}
	// 4 hours of 6 effective hours.
	if row.Utilization != 66.7 {
		t.Errorf("utilization = %v, want 66.7", row.Utilization)
	}
	if row.CallsPerHour != 0.3 {
		t.Errorf("calls per hour = %v, want 0.3", row.CallsPerHour)
	}
	// 2 calls spread over the 6 effective hours.
	if row.AvgSecBetweenCall != 10800 {
		t.Errorf("avg sec between calls = %v, want 10800", row.AvgSecBetweenCall)
	}
}

func TestDailyActivityIsolatesFailures(t *testing.T) {
	calls := &fakeCallLog{
		records: map[string][]CallRecord{
			"102": {{ExtensionID: "102", DurationSec: 600}},
		},
		fail: map[string]bool{"101": true},
	}
	svc := NewService(calls, &fakeExtensions{extensions: []Extension{
		{Username: "pat", ExtensionID: "101"},
		{Username: "sam", ExtensionID: "102"},
	}}, fixedTelephonyConfig{hours: 6}, logger.New("test"))

	activities, err := svc.DailyActivity(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("one bad extension must not fail the report: %v", err)
	}
	if !activities[0].Unavailable {
		t.Error("failed extension should be marked unavailable")
	}
	if activities[1].Unavailable || activities[1].CallCount != 1 {
		t.Errorf("healthy extension affected: %+v", activities[1])
	}
}

func TestDailyActivityZeroEffectiveHours(t *testing.T) {
	calls := &fakeCallLog{records: map[string][]CallRecord{
		"101": {{ExtensionID: "101", DurationSec: 3600}},
	}}
	svc := NewService(calls, &fakeExtensions{extensions: []Extension{
		{Username: "pat", ExtensionID: "101"},
	}}, fixedTelephonyConfig{hours: 0}, logger.New("test"))

	activities, err := svc.DailyActivity(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("DailyActivity: %v", err)
	}
	if activities[0].Utilization != 0 {
		t.Errorf("utilization = %v, want 0 with no effective hours", activities[0].Utilization)
	}
}
