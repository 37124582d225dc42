package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is one append-only log row for a lead. Entries are never
// updated or deleted while the lead exists.
type HistoryEntry struct {
	ID          int64
	LeadID      uuid.UUID
	Action      string
	Disposition *string
	Note        string
	AgentID     *uuid.UUID
	AgentName   *string
	CreatedAt   time.Time
}

// AppendHistory records an action outside a disposition change (imports,
// reassignments, admin edits).
func (r *Repository) AppendHistory(ctx context.Context, leadID uuid.UUID, action, note string, agentID *uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_history (lead_id, action, note, agent_id)
		VALUES ($1, $2, $3, $4)
	`, leadID, action, note, agentID)
	return err
}

// History returns a page of a lead's log, newest first, with the acting
// agent's username resolved when the account still exists.
func (r *Repository) History(ctx context.Context, leadID uuid.UUID, limit, offset int) ([]HistoryEntry, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM lead_history WHERE lead_id = $1
	`, leadID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT h.id, h.lead_id, h.action, h.disposition, h.note, h.agent_id, u.username, h.created_at
		FROM lead_history h
		LEFT JOIN users u ON u.id = h.agent_id
		WHERE h.lead_id = $1
		ORDER BY h.id DESC
		LIMIT $2 OFFSET $3
	`, leadID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var entry HistoryEntry
		if err := rows.Scan(
			&entry.ID, &entry.LeadID, &entry.Action, &entry.Disposition,
			&entry.Note, &entry.AgentID, &entry.AgentName, &entry.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}
	return entries, total, rows.Err()
}
