package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"callcenter_backend/platform/config"
	"callcenter_backend/platform/logger"
)

// ImportProcessor runs one staged import job to completion.
type ImportProcessor interface {
	Process(ctx context.Context, jobID uuid.UUID) error
}

// Worker consumes background jobs in the worker process.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	imports ImportProcessor
	log     *logger.Logger
}

func NewWorker(cfg config.RedisConfig, imports ImportProcessor, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}
	queue := cfg.GetImportQueueName()
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 4,
		Queues:      map[string]int{queue: 1},
	})

	w := &Worker{server: server, mux: asynq.NewServeMux(), imports: imports, log: log}
	w.mux.HandleFunc(TaskLeadImport, w.handleLeadImport)
	return w, nil
}

func (w *Worker) handleLeadImport(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadImportPayload(task)
	if err != nil {
		return fmt.Errorf("parse import payload: %w", err)
	}
	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		return fmt.Errorf("parse job id %q: %w", payload.JobID, err)
	}

	if err := w.imports.Process(ctx, jobID); err != nil {
		w.log.Error("import job failed", "job_id", jobID, "error", err)
		return err
	}
	return nil
}

// Run blocks processing jobs until the server is shut down.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Shutdown stops the server, waiting for in-flight jobs.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}
