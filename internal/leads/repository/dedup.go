package repository

import (
	"context"
)

// DuplicateCandidates returns every lead whose phone_key is shared with at
// least one other lead, grouped together by ordering on the key. Leads with
// a blank phone_key never match anything and are excluded here.
func (r *Repository) DuplicateCandidates(ctx context.Context) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE phone_key <> '' AND phone_key IN (
			SELECT phone_key FROM leads
			WHERE phone_key <> ''
			GROUP BY phone_key
			HAVING count(*) > 1
		)
		ORDER BY phone_key, last_activity_at DESC, created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}
