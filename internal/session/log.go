// Package session tracks which leads an agent has already dispositioned in
// the current login session, backed by Redis so every API instance sees the
// same log.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"callcenter_backend/platform/config"
)

// Log stores one entry per (agent, session, lead). Entries expire on their
// own so an abandoned session leaves nothing behind.
type Log struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLog(client *redis.Client, cfg config.SessionConfig) *Log {
	return &Log{client: client, ttl: cfg.GetSessionLogTTL()}
}

func key(agentID uuid.UUID, sessionID string, leadID uuid.UUID) string {
	return fmt.Sprintf("sesslog:%s:%s:%s", agentID, sessionID, leadID)
}

// Record stores the disposition and returns the one previously recorded for
// this lead in this session, or "" on the first call. The swap is a single
// SET ... GET round trip, so two racing applies cannot both read "first".
func (l *Log) Record(ctx context.Context, agentID uuid.UUID, sessionID string, leadID uuid.UUID, disposition string) (string, error) {
	previous, err := l.client.SetArgs(ctx, key(agentID, sessionID, leadID), disposition, redis.SetArgs{
		TTL: l.ttl,
		Get: true,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session log record: %w", err)
	}
	return previous, nil
}
