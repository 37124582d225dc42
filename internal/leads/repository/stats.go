package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// GlobalStats summarizes the whole lead pool.
type GlobalStats struct {
	Total         int64
	Assigned      int64
	Completed     int64
	ByDisposition map[string]int64
}

// GetGlobalStats counts the pool in one pass plus a per-disposition rollup.
// A nil bound leaves that side of the rollup window open; the headline counts
// are always pool-wide.
func (r *Repository) GetGlobalStats(ctx context.Context, from, to *time.Time) (GlobalStats, error) {
	stats := GlobalStats{ByDisposition: make(map[string]int64)}

	err := r.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE assigned_to IS NOT NULL),
		       count(*) FILTER (WHERE disposition IS NOT NULL)
		FROM leads
	`).Scan(&stats.Total, &stats.Assigned, &stats.Completed)
	if err != nil {
		return GlobalStats{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT disposition, count(*) FROM leads
		WHERE disposition IS NOT NULL
		  AND ($1::timestamptz IS NULL OR last_activity_at >= $1)
		  AND ($2::timestamptz IS NULL OR last_activity_at < $2)
		GROUP BY disposition
	`, from, to)
	if err != nil {
		return GlobalStats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var disposition string
		var count int64
		if err := rows.Scan(&disposition, &count); err != nil {
			return GlobalStats{}, err
		}
		stats.ByDisposition[disposition] = count
	}
	return stats, rows.Err()
}

// DispositionedBetween counts an agent's history entries per disposition
// inside the window; nil bounds are open. Reading the history log rather
// than lead rows means a re-dispositioned lead still counts toward the day
// it was first worked.
func (r *Repository) DispositionedBetween(ctx context.Context, agentID uuid.UUID, from, to *time.Time) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT disposition, count(*) FROM lead_history
		WHERE agent_id = $1 AND disposition IS NOT NULL
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at < $3)
		GROUP BY disposition
	`, agentID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var disposition string
		var count int64
		if err := rows.Scan(&disposition, &count); err != nil {
			return nil, err
		}
		counts[disposition] = count
	}
	return counts, rows.Err()
}

// CompletedCount counts the agent's leads that already carry a disposition.
func (r *Repository) CompletedCount(ctx context.Context, agentID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM leads
		WHERE assigned_to = $1 AND disposition IS NOT NULL
	`, agentID).Scan(&count)
	return count, err
}

// AssignedCount counts the agent's total assigned leads.
func (r *Repository) AssignedCount(ctx context.Context, agentID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM leads WHERE assigned_to = $1
	`, agentID).Scan(&count)
	return count, err
}
