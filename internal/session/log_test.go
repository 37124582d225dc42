package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type fixedSessionConfig struct{ ttl time.Duration }

func (c fixedSessionConfig) GetSessionLogTTL() time.Duration { return c.ttl }

func newTestLog(t *testing.T) (*Log, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLog(client, fixedSessionConfig{ttl: time.Hour}), mr
}

func TestRecordFirstTime(t *testing.T) {
	log, _ := newTestLog(t)

	previous, err := log.Record(context.Background(), uuid.New(), "sess", uuid.New(), "NA")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if previous != "" {
		t.Errorf("previous = %q, want empty on first record", previous)
	}
}

func TestRecordReturnsPrevious(t *testing.T) {
	log, _ := newTestLog(t)
	ctx := context.Background()
	agentID, leadID := uuid.New(), uuid.New()

	if _, err := log.Record(ctx, agentID, "sess", leadID, "NA"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	previous, err := log.Record(ctx, agentID, "sess", leadID, "Sale")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if previous != "NA" {
		t.Errorf("previous = %q, want NA", previous)
	}
}

func TestRecordSessionsIsolated(t *testing.T) {
	log, _ := newTestLog(t)
	ctx := context.Background()
	agentID, leadID := uuid.New(), uuid.New()

	if _, err := log.Record(ctx, agentID, "sess-1", leadID, "NA"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	previous, err := log.Record(ctx, agentID, "sess-2", leadID, "NA")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if previous != "" {
		t.Errorf("previous = %q, want empty in a fresh session", previous)
	}
}

func TestRecordEntriesExpire(t *testing.T) {
	log, mr := newTestLog(t)
	ctx := context.Background()
	agentID, leadID := uuid.New(), uuid.New()

	if _, err := log.Record(ctx, agentID, "sess", leadID, "NA"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	mr.FastForward(2 * time.Hour)

	previous, err := log.Record(ctx, agentID, "sess", leadID, "NA")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if previous != "" {
		t.Errorf("previous = %q, want empty after expiry", previous)
	}
}
