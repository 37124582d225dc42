package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrJobNotFound = errors.New("import job not found")

// ImportJob tracks one uploaded CSV through the background pipeline.
type ImportJob struct {
	ID           uuid.UUID
	ListName     string
	CustomID     string
	ObjectKey    string
	Status       string
	TotalRows    int64
	InsertedRows int64
	Error        *string
	CreatedBy    uuid.UUID
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// Import job states.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

const jobColumns = `id, list_name, custom_id, object_key, status, total_rows,
	inserted_rows, error, created_by, created_at, completed_at`

func scanJob(row pgx.Row) (ImportJob, error) {
	var job ImportJob
	err := row.Scan(
		&job.ID, &job.ListName, &job.CustomID, &job.ObjectKey, &job.Status,
		&job.TotalRows, &job.InsertedRows, &job.Error, &job.CreatedBy,
		&job.CreatedAt, &job.CompletedAt,
	)
	return job, err
}

// CreateImportJob registers a pending job for an uploaded file.
func (r *Repository) CreateImportJob(ctx context.Context, listName, customID, objectKey string, createdBy uuid.UUID) (ImportJob, error) {
	return scanJob(r.pool.QueryRow(ctx, `
		INSERT INTO import_jobs (list_name, custom_id, object_key, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING `+jobColumns+`
	`, listName, customID, objectKey, createdBy))
}

// GetImportJob retrieves one job.
func (r *Repository) GetImportJob(ctx context.Context, id uuid.UUID) (ImportJob, error) {
	job, err := scanJob(r.pool.QueryRow(ctx, `
		SELECT `+jobColumns+` FROM import_jobs WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return ImportJob{}, ErrJobNotFound
	}
	return job, err
}

// ListImportJobs returns the most recent jobs, newest first.
func (r *Repository) ListImportJobs(ctx context.Context, limit int) ([]ImportJob, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+jobColumns+` FROM import_jobs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]ImportJob, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// MarkJobRunning transitions a pending job to running.
func (r *Repository) MarkJobRunning(ctx context.Context, id uuid.UUID, totalRows int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE import_jobs SET status = $2, total_rows = $3 WHERE id = $1
	`, id, JobStatusRunning, totalRows)
	return err
}

// MarkJobCompleted finalizes a successful run.
func (r *Repository) MarkJobCompleted(ctx context.Context, id uuid.UUID, insertedRows int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE import_jobs SET status = $2, inserted_rows = $3, completed_at = now()
		WHERE id = $1
	`, id, JobStatusCompleted, insertedRows)
	return err
}

// MarkJobFailed records the failure reason.
func (r *Repository) MarkJobFailed(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE import_jobs SET status = $2, error = $3, completed_at = now()
		WHERE id = $1
	`, id, JobStatusFailed, reason)
	return err
}

// ImportedLead is one parsed CSV row ready for bulk insert.
type ImportedLead struct {
	Name        string
	Phone       string
	PhoneKey    string
	Address     string
	AltContact  string
	Product     string
	PrevCompany string
	ListName    string
	CustomID    string
}

// BulkInsert loads parsed rows with COPY for throughput. All rows land or
// none do.
func (r *Repository) BulkInsert(ctx context.Context, leads []ImportedLead) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"leads"},
		[]string{"name", "phone", "phone_key", "address", "alt_contact", "product", "prev_company", "list_name", "custom_id"},
		pgx.CopyFromSlice(len(leads), func(i int) ([]interface{}, error) {
			l := leads[i]
			return []interface{}{
				l.Name, l.Phone, l.PhoneKey, l.Address, l.AltContact,
				l.Product, l.PrevCompany, l.ListName, l.CustomID,
			}, nil
		}),
	)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return copied, nil
}
