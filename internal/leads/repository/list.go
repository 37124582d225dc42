package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ListParams drives the admin lead browser. Nil / zero-value fields are
// ignored. Dispositions may contain the sentinel "null" to include leads
// that were never dispositioned.
type ListParams struct {
	Dispositions []string
	AssignedTo   *uuid.UUID
	Unassigned   bool
	Product      *string
	PrevCompany  *string
	ListName     *string
	CustomID     *string
	Language     *string
	Search       string
	ActivityFrom *time.Time
	ActivityTo   *time.Time
	Limit        int
	Offset       int
}

// List returns one page of leads matching the filters plus the total match
// count for pagination.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int64, error) {
	where, args := buildLeadListWhere(params)

	var total int64
	countQuery := "SELECT count(*) FROM leads" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT "+leadColumns+" FROM leads%s ORDER BY last_activity_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2,
	)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	leads, err := collectLeads(rows)
	return leads, total, err
}

func buildLeadListWhere(params ListParams) (string, []interface{}) {
	var whereClauses []string
	var args []interface{}
	argIdx := 1

	addEquals := func(column string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if len(params.Dispositions) > 0 {
		values := make([]string, 0, len(params.Dispositions))
		includeNull := false
		for _, d := range params.Dispositions {
			if d == "null" {
				includeNull = true
				continue
			}
			values = append(values, d)
		}
		switch {
		case includeNull && len(values) > 0:
			whereClauses = append(whereClauses,
				fmt.Sprintf("(disposition = ANY($%d) OR disposition IS NULL)", argIdx))
			args = append(args, values)
			argIdx++
		case includeNull:
			whereClauses = append(whereClauses, "disposition IS NULL")
		default:
			whereClauses = append(whereClauses, fmt.Sprintf("disposition = ANY($%d)", argIdx))
			args = append(args, values)
			argIdx++
		}
	}

	if params.Unassigned {
		whereClauses = append(whereClauses, "assigned_to IS NULL")
	} else if params.AssignedTo != nil {
		addEquals("assigned_to", *params.AssignedTo)
	}
	if params.Product != nil {
		addEquals("product", *params.Product)
	}
	if params.PrevCompany != nil {
		addEquals("prev_company", *params.PrevCompany)
	}
	if params.ListName != nil {
		addEquals("list_name", *params.ListName)
	}
	if params.CustomID != nil {
		addEquals("custom_id", *params.CustomID)
	}
	if params.Language != nil {
		addEquals("language", *params.Language)
	}
	if params.Search != "" {
		whereClauses = append(whereClauses,
			fmt.Sprintf("(name ILIKE $%d OR phone ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.ActivityFrom != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("last_activity_at >= $%d", argIdx))
		args = append(args, *params.ActivityFrom)
		argIdx++
	}
	if params.ActivityTo != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("last_activity_at < $%d", argIdx))
		args = append(args, *params.ActivityTo)
		argIdx++
	}

	if len(whereClauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(whereClauses, " AND "), args
}

// FilterOptions holds the distinct values the admin filter dropdowns offer.
type FilterOptions struct {
	Products      []string
	PrevCompanies []string
	ListNames     []string
	CustomIDs     []string
	Languages     []string
}

// GetFilterOptions gathers the distinct non-empty values per filterable column.
func (r *Repository) GetFilterOptions(ctx context.Context) (FilterOptions, error) {
	var options FilterOptions

	columns := []struct {
		query  string
		target *[]string
	}{
		{"SELECT DISTINCT product FROM leads WHERE product <> '' ORDER BY product", &options.Products},
		{"SELECT DISTINCT prev_company FROM leads WHERE prev_company <> '' ORDER BY prev_company", &options.PrevCompanies},
		{"SELECT DISTINCT list_name FROM leads WHERE list_name <> '' ORDER BY list_name", &options.ListNames},
		{"SELECT DISTINCT custom_id FROM leads WHERE custom_id <> '' ORDER BY custom_id", &options.CustomIDs},
		{"SELECT DISTINCT language FROM leads WHERE language IS NOT NULL AND language <> '' ORDER BY language", &options.Languages},
	}

	for _, col := range columns {
		rows, err := r.pool.Query(ctx, col.query)
		if err != nil {
			return FilterOptions{}, err
		}
		for rows.Next() {
			var value string
			if err := rows.Scan(&value); err != nil {
				rows.Close()
				return FilterOptions{}, err
			}
			*col.target = append(*col.target, value)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return FilterOptions{}, err
		}
	}

	return options, nil
}
