// Package repository provides data access for leads, their history log,
// and import jobs.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Lead is a prospective customer record worked by an agent.
type Lead struct {
	ID             uuid.UUID
	Name           string
	Phone          string
	PhoneKey       string
	Address        string
	AltContact     string
	Product        string
	PrevCompany    string
	ListName       string
	CustomID       string
	AssignedTo     *uuid.UUID
	Disposition    *string
	Language       *string
	Notes          string
	CallbackAt     *time.Time
	LastActivityAt time.Time
	CreatedAt      time.Time
}

const leadColumns = `id, name, phone, phone_key, address, alt_contact, product, prev_company,
	list_name, custom_id, assigned_to, disposition, language, notes, callback_at,
	last_activity_at, created_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Phone, &lead.PhoneKey, &lead.Address, &lead.AltContact,
		&lead.Product, &lead.PrevCompany, &lead.ListName, &lead.CustomID, &lead.AssignedTo,
		&lead.Disposition, &lead.Language, &lead.Notes, &lead.CallbackAt,
		&lead.LastActivityAt, &lead.CreatedAt,
	)
	return lead, err
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// GetByID retrieves a single lead.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// ApplyDispositionParams carries the fields a disposition change writes.
type ApplyDispositionParams struct {
	LeadID      uuid.UUID
	Disposition string
	Notes       string
	Language    *string
	CallbackAt  *time.Time
	AgentID     uuid.UUID
	Action      string
	HistoryNote string
}

// ApplyDisposition updates the lead's disposition fields and appends the
// matching history entry in a single transaction, so a concurrent writer can
// never observe the field update without its history row or vice versa.
// last_activity_at is always advanced; callback_at is overwritten, clearing
// any stale follow-up when the new disposition does not carry one.
func (r *Repository) ApplyDisposition(ctx context.Context, params ApplyDispositionParams) (Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	lead, err := scanLead(tx.QueryRow(ctx, `
		UPDATE leads
		SET disposition = $2, notes = $3, language = COALESCE($4, language),
		    callback_at = $5, last_activity_at = $6
		WHERE id = $1
		RETURNING `+leadColumns+`
	`, params.LeadID, params.Disposition, params.Notes, params.Language, params.CallbackAt, now))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO lead_history (lead_id, action, disposition, note, agent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, params.LeadID, params.Action, params.Disposition, params.HistoryNote, params.AgentID, now)
	if err != nil {
		return Lead{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Lead{}, err
	}
	return lead, nil
}

// UpdateLeadParams carries optional admin edits. Nil pointers leave the
// column untouched.
type UpdateLeadParams struct {
	Name        *string
	Phone       *string
	PhoneKey    *string
	Address     *string
	AltContact  *string
	Product     *string
	PrevCompany *string
	ListName    *string
	CustomID    *string
	Notes       *string
	Language    *string
}

// Update applies an admin field edit. Disposition changes go through
// ApplyDisposition so they cannot bypass the history log.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads
		SET name = COALESCE($2, name),
		    phone = COALESCE($3, phone),
		    phone_key = COALESCE($4, phone_key),
		    address = COALESCE($5, address),
		    alt_contact = COALESCE($6, alt_contact),
		    product = COALESCE($7, product),
		    prev_company = COALESCE($8, prev_company),
		    list_name = COALESCE($9, list_name),
		    custom_id = COALESCE($10, custom_id),
		    notes = COALESCE($11, notes),
		    language = COALESCE($12, language)
		WHERE id = $1
		RETURNING `+leadColumns+`
	`, id, params.Name, params.Phone, params.PhoneKey, params.Address, params.AltContact,
		params.Product, params.PrevCompany, params.ListName, params.CustomID,
		params.Notes, params.Language))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// Reassign points every given lead at the target agent (nil = back to the
// unassigned pool) in one statement. Unknown IDs are skipped, not errors.
func (r *Repository) Reassign(ctx context.Context, leadIDs []uuid.UUID, target *uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET assigned_to = $2 WHERE id = ANY($1)
	`, leadIDs, target)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// UnassignAgent returns all of an agent's leads to the pool. Used when an
// agent account is deleted; the leads themselves survive.
func (r *Repository) UnassignAgent(ctx context.Context, agentID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET assigned_to = NULL WHERE assigned_to = $1
	`, agentID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Delete permanently removes the given leads and their history rows
// (FK cascade). Unknown IDs are skipped.
func (r *Repository) Delete(ctx context.Context, leadIDs []uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM leads WHERE id = ANY($1)
	`, leadIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListUnassigned returns a page of the unassigned pool, newest activity first.
func (r *Repository) ListUnassigned(ctx context.Context, limit, offset int) ([]Lead, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM leads WHERE assigned_to IS NULL
	`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE assigned_to IS NULL
		ORDER BY last_activity_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	leads, err := collectLeads(rows)
	return leads, total, err
}

// AgentLeads returns every lead assigned to the agent, oldest first so the
// ordering matches the agent's working position in the list.
func (r *Repository) AgentLeads(ctx context.Context, agentID uuid.UUID) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE assigned_to = $1
		ORDER BY created_at ASC, id ASC
	`, agentID)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

// AgentLeadsByDisposition filters the agent's leads to one disposition value.
func (r *Repository) AgentLeadsByDisposition(ctx context.Context, agentID uuid.UUID, disposition string) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE assigned_to = $1 AND disposition = $2
		ORDER BY last_activity_at DESC
	`, agentID, disposition)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

// PendingCallbacks returns the agent's leads with a scheduled follow-up,
// soonest first. Overdue callbacks sort to the front by construction.
func (r *Repository) PendingCallbacks(ctx context.Context, agentID uuid.UUID) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE assigned_to = $1 AND callback_at IS NOT NULL
		ORDER BY callback_at ASC
	`, agentID)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}
