package importing

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"callcenter_backend/internal/events"
	"callcenter_backend/internal/leads/repository"
	"callcenter_backend/internal/leads/transport"
	"callcenter_backend/platform/apperr"
	"callcenter_backend/platform/logger"
	"callcenter_backend/platform/validator"
)

// JobStore is the slice of the lead repository this pipeline needs.
type JobStore interface {
	CreateImportJob(ctx context.Context, listName, customID, objectKey string, createdBy uuid.UUID) (repository.ImportJob, error)
	GetImportJob(ctx context.Context, id uuid.UUID) (repository.ImportJob, error)
	ListImportJobs(ctx context.Context, limit int) ([]repository.ImportJob, error)
	MarkJobRunning(ctx context.Context, id uuid.UUID, totalRows int64) error
	MarkJobCompleted(ctx context.Context, id uuid.UUID, insertedRows int64) error
	MarkJobFailed(ctx context.Context, id uuid.UUID, reason string) error
	BulkInsert(ctx context.Context, leads []repository.ImportedLead) (int64, error)
}

// ObjectStore stages uploaded CSVs until the worker picks them up.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Enqueuer hands a staged job to the background worker.
type Enqueuer interface {
	EnqueueImport(ctx context.Context, jobID uuid.UUID) error
}

type Service struct {
	jobs    JobStore
	objects ObjectStore
	queue   Enqueuer
	bus     events.Bus
	val     *validator.Validator
	log     *logger.Logger
}

func NewService(jobs JobStore, objects ObjectStore, queue Enqueuer, bus events.Bus, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{jobs: jobs, objects: objects, queue: queue, bus: bus, val: val, log: log}
}

// UploadRequest carries the multipart form fields of an import upload.
// These arrive outside gin's body binding, so the service validates them.
type UploadRequest struct {
	ListName string `validate:"required,min=1,max=120"`
	CustomID string `validate:"max=120"`
}

// Upload stages the CSV in object storage, records a pending job, and hands
// it to the worker. The HTTP request returns as soon as the job is queued;
// parsing and loading happen out of band.
func (s *Service) Upload(ctx context.Context, adminID uuid.UUID, req UploadRequest, file io.Reader, size int64) (transport.ImportJobResponse, error) {
	if err := s.val.Struct(req); err != nil {
		return transport.ImportJobResponse{}, apperr.Validation("list name is required")
	}
	listName, customID := req.ListName, req.CustomID

	objectKey := fmt.Sprintf("imports/%s/%s.csv", listName, uuid.New())
	if err := s.objects.Upload(ctx, objectKey, file, size, "text/csv"); err != nil {
		return transport.ImportJobResponse{}, apperr.Storage("import.upload", err)
	}

	job, err := s.jobs.CreateImportJob(ctx, listName, customID, objectKey, adminID)
	if err != nil {
		return transport.ImportJobResponse{}, apperr.Storage("import.job", err)
	}

	if err := s.queue.EnqueueImport(ctx, job.ID); err != nil {
		reason := fmt.Sprintf("enqueue failed: %v", err)
		if markErr := s.jobs.MarkJobFailed(ctx, job.ID, reason); markErr != nil {
			s.log.Error("mark job failed", "error", markErr, "job_id", job.ID)
		}
		return transport.ImportJobResponse{}, apperr.Internal("queue import", err)
	}

	s.log.ImportEvent(job.ID.String(), "queued", 0)
	return transport.ToImportJobResponse(job), nil
}

// Process runs one staged job to completion. It is the worker-side half of
// Upload and is retried by the queue on transient failure; every step is
// safe to repeat because a re-run starts from the staged object again.
func (s *Service) Process(ctx context.Context, jobID uuid.UUID) error {
	job, err := s.jobs.GetImportJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if job.Status == repository.JobStatusCompleted {
		return nil
	}

	object, err := s.objects.Download(ctx, job.ObjectKey)
	if err != nil {
		return fmt.Errorf("download %s: %w", job.ObjectKey, err)
	}
	defer object.Close()

	leads, skipped, err := ParseLeads(object, job.ListName, job.CustomID)
	if err != nil {
		// A malformed file will not fix itself on retry.
		if markErr := s.jobs.MarkJobFailed(ctx, jobID, err.Error()); markErr != nil {
			return markErr
		}
		s.publishCompleted(ctx, job, 0, true)
		return nil
	}

	total := int64(len(leads) + len(skipped))
	if err := s.jobs.MarkJobRunning(ctx, jobID, total); err != nil {
		return err
	}
	s.log.ImportEvent(jobID.String(), "parsing done", int64(len(leads)))

	inserted, err := s.jobs.BulkInsert(ctx, leads)
	if err != nil {
		return fmt.Errorf("bulk insert: %w", err)
	}

	if err := s.jobs.MarkJobCompleted(ctx, jobID, inserted); err != nil {
		return err
	}
	if err := s.objects.Delete(ctx, job.ObjectKey); err != nil {
		s.log.Warn("staged import object not cleaned up", "key", job.ObjectKey, "error", err)
	}

	s.log.ImportEvent(jobID.String(), "completed", inserted)
	s.publishCompleted(ctx, job, inserted, false)
	return nil
}

func (s *Service) publishCompleted(ctx context.Context, job repository.ImportJob, inserted int64, failed bool) {
	s.bus.Publish(ctx, events.ImportCompleted{
		BaseEvent:    events.NewBaseEvent(),
		JobID:        job.ID,
		ListName:     job.ListName,
		InsertedRows: inserted,
		Failed:       failed,
	})
}

// Status reports one job's progress.
func (s *Service) Status(ctx context.Context, jobID uuid.UUID) (transport.ImportJobResponse, error) {
	job, err := s.jobs.GetImportJob(ctx, jobID)
	if err != nil {
		if err == repository.ErrJobNotFound {
			return transport.ImportJobResponse{}, apperr.NotFound("import job")
		}
		return transport.ImportJobResponse{}, apperr.Storage("import.status", err)
	}
	return transport.ToImportJobResponse(job), nil
}

// Recent lists the latest jobs for the admin import screen.
func (s *Service) Recent(ctx context.Context) ([]transport.ImportJobResponse, error) {
	jobs, err := s.jobs.ListImportJobs(ctx, 50)
	if err != nil {
		return nil, apperr.Storage("import.list", err)
	}
	out := make([]transport.ImportJobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, transport.ToImportJobResponse(job))
	}
	return out, nil
}
