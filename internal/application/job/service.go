package job

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	splitapp "streamsplit/internal/application/split"
	"streamsplit/internal/config"
	"streamsplit/internal/domain/job"
)

// Store is the persistence port for job records. The in-memory map is
// the default implementation; a durable store can be swapped in without
// touching the pipeline.
type Store interface {
	Create(ctx context.Context, j job.Job) error
	Get(ctx context.Context, id string) (job.Job, error)
	List(ctx context.Context) ([]job.Job, error)
	Update(ctx context.Context, id string, fn func(*job.Job)) error
}

// UploadStore resolves uploaded inputs and per-job output locations.
type UploadStore interface {
	ResolveUpload(raw string) (string, string, error)
	UploadExists(name string) bool
	JobOutputDir(jobID string) (string, error)
	JobFilePath(jobID, filename string) (string, error)
}

// Pipeline runs one configured split end to end.
type Pipeline interface {
	Run(ctx context.Context, cfg config.Config, onProgress func(completed, total int)) (splitapp.Result, error)
}

// SplitRequest carries the per-job knobs accepted by the API.
type SplitRequest struct {
	Filename      string
	MaxLength     int
	Quality       string
	Format        string
	NamingPattern string
}

// Service creates and tracks background split jobs.
type Service struct {
	store    Store
	files    UploadStore
	pipeline Pipeline
	logger   *slog.Logger

	// DefaultMaxLength, when positive, overrides the stock segment
	// length for requests that do not specify one.
	DefaultMaxLength int

	now func() time.Time
}

// NewService wires the job use cases with injected ports.
func NewService(store Store, files UploadStore, pipeline Pipeline, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		files:    files,
		pipeline: pipeline,
		logger:   logger,
		now:      time.Now,
	}
}

// StartSplit validates the request, records a pending job and kicks off
// the pipeline in the background. Returns the new job's ID.
func (s *Service) StartSplit(ctx context.Context, req SplitRequest) (string, error) {
	name, inputPath, err := s.files.ResolveUpload(req.Filename)
	if err != nil {
		return "", err
	}
	if !s.files.UploadExists(name) {
		return "", fmt.Errorf("input file not found: %s", name)
	}

	id := uuid.NewString()
	record := job.Job{
		ID:        id,
		Status:    job.StatePending,
		Message:   "Initializing video splitting...",
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, record); err != nil {
		return "", err
	}

	cfg := config.Default()
	cfg.InputPath = inputPath
	if s.DefaultMaxLength > 0 {
		cfg.Output.MaxSegmentLength = s.DefaultMaxLength
	}
	if req.MaxLength > 0 {
		cfg.Output.MaxSegmentLength = req.MaxLength
	}
	if req.Quality != "" {
		cfg.Processing.Quality = req.Quality
	}
	if req.Format != "" {
		cfg.Output.Format = req.Format
	}
	if req.NamingPattern != "" {
		cfg.Output.NamingPattern = req.NamingPattern
	}

	outputDir, err := s.files.JobOutputDir(id)
	if err != nil {
		return "", err
	}
	cfg.Output.Directory = outputDir

	s.logger.Info("split job started", "job", id, "input", name)
	go s.process(context.Background(), id, cfg)

	return id, nil
}

// Get returns one job's status.
func (s *Service) Get(ctx context.Context, id string) (job.Job, error) {
	return s.store.Get(ctx, id)
}

// List returns every known job in creation order.
func (s *Service) List(ctx context.Context) ([]job.Job, error) {
	return s.store.List(ctx)
}

// OutputFile resolves one produced file for download, refusing names the
// job did not produce.
func (s *Service) OutputFile(ctx context.Context, jobID, filename string) (string, error) {
	record, err := s.store.Get(ctx, jobID)
	if err != nil {
		return "", err
	}

	known := false
	for _, f := range record.OutputFiles {
		if f == filename {
			known = true
			break
		}
	}
	if !known {
		return "", job.ErrNotFound
	}

	return s.files.JobFilePath(jobID, filename)
}

func (s *Service) process(ctx context.Context, id string, cfg config.Config) {
	s.setState(ctx, id, func(j *job.Job) {
		j.Status = job.StateProcessing
		j.Message = "Splitting video into segments..."
		j.Progress = 10
	})

	result, err := s.pipeline.Run(ctx, cfg, func(completed, total int) {
		if total <= 0 {
			return
		}
		// Scale pipeline progress into the 10-90 band; the endpoints are
		// reserved for setup and finalization.
		progress := 10 + completed*80/total
		s.setState(ctx, id, func(j *job.Job) {
			if progress > j.Progress {
				j.Progress = progress
			}
		})
	})

	completedAt := s.now().UTC()
	if err != nil {
		s.logger.Error("split job failed", "job", id, "error", err)
		s.setState(ctx, id, func(j *job.Job) {
			j.Status = job.StateFailed
			j.Error = err.Error()
			j.Message = "Error: " + err.Error()
			j.CompletedAt = &completedAt
		})
		return
	}

	names := make([]string, 0, len(result.OutputFiles))
	for _, f := range result.OutputFiles {
		names = append(names, filepath.Base(f))
	}

	s.logger.Info("split job completed", "job", id, "segments", len(names))
	s.setState(ctx, id, func(j *job.Job) {
		j.Status = job.StateCompleted
		j.Progress = 100
		j.Message = fmt.Sprintf("Successfully created %d segments", len(names))
		j.OutputFiles = names
		j.CompletedAt = &completedAt
	})
}

func (s *Service) setState(ctx context.Context, id string, fn func(*job.Job)) {
	if err := s.store.Update(ctx, id, fn); err != nil {
		s.logger.Error("job update failed", "job", id, "error", err)
	}
}
