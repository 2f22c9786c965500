package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"whatsapp-catalog-service/internal/apierrors"
	"whatsapp-catalog-service/internal/catalog"
	"whatsapp-catalog-service/internal/config"
	"whatsapp-catalog-service/internal/models"
	"whatsapp-catalog-service/internal/repository"
)

var (
	ErrImportRunning = errors.New("an import job is already running for this catalog")
	ErrJobNotFound   = errors.New("import job not found")
	ErrJobNotRunning = errors.New("job not found or not running")
)

// itemFlushSize is how many item outcomes are buffered before they are stored.
const itemFlushSize = 25

// ImportService runs batch creates as background jobs and stores their outcomes.
// Only one job per catalog runs at a time since all jobs share one rate window.
type ImportService struct {
	repo       repository.ImportRepositoryInterface
	manager    CatalogManager
	publisher  EventPublisher
	config     *config.Config
	logger     *logrus.Entry
	activeJobs map[uuid.UUID]context.CancelFunc
	mu         sync.Mutex
	startMu    sync.Mutex
	wg         sync.WaitGroup
}

// NewImportService creates a new import service. publisher may be nil.
func NewImportService(
	repo repository.ImportRepositoryInterface,
	manager CatalogManager,
	publisher EventPublisher,
	cfg *config.Config,
	logger *logrus.Logger,
) *ImportService {
	return &ImportService{
		repo:       repo,
		manager:    manager,
		publisher:  publisher,
		config:     cfg,
		logger:     logger.WithField("component", "import_service"),
		activeJobs: make(map[uuid.UUID]context.CancelFunc),
	}
}

// CreateImportRequest contains the data for creating a new import job
type CreateImportRequest struct {
	Products       []models.ProductRecord `json:"products" binding:"required"`
	ChunkSize      int                    `json:"chunkSize,omitempty" binding:"omitempty,min=1,max=1000"`
	IdempotencyKey string                 `json:"idempotencyKey,omitempty"`
	CreatedBy      string                 `json:"createdBy,omitempty"`
}

// CreateJob stores a new import job and starts it in the background.
// A known idempotency key returns the existing job instead.
func (s *ImportService) CreateJob(ctx context.Context, req *CreateImportRequest) (*models.ImportJob, error) {
	if len(req.Products) == 0 {
		return nil, &apierrors.ValidationError{Errors: []string{"products must not be empty"}}
	}
	catalogID := s.manager.Config().CatalogID
	if catalogID == "" {
		return nil, &apierrors.ConfigurationError{Field: "catalog ID", Operation: "import products"}
	}

	s.startMu.Lock()
	defer s.startMu.Unlock()

	// Check idempotency key if provided
	if req.IdempotencyKey != "" {
		existing, err := s.repo.GetJobByIdempotencyKey(ctx, catalogID, req.IdempotencyKey)
		if err == nil && existing != nil {
			return existing, nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
	}

	running, err := s.repo.GetRunningJobs(ctx, catalogID)
	if err != nil {
		return nil, fmt.Errorf("failed to check running jobs: %w", err)
	}
	if len(running) > 0 {
		return nil, ErrImportRunning
	}

	chunkSize := req.ChunkSize
	if chunkSize <= 0 {
		chunkSize = s.config.MaxBatchSize
	}
	job := &models.ImportJob{
		ID:             uuid.New(),
		CatalogID:      catalogID,
		Status:         models.ImportStatusPending,
		ChunkSize:      chunkSize,
		IdempotencyKey: req.IdempotencyKey,
		CreatedBy:      req.CreatedBy,
	}
	job.SetProgress(&models.ImportProgress{TotalItems: len(req.Products)})

	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	// Start import in background
	jobCtx, cancel := context.WithTimeout(context.Background(), s.config.ImportJobTimeout)
	s.mu.Lock()
	s.activeJobs[job.ID] = cancel
	s.mu.Unlock()

	products := make([]models.ProductRecord, len(req.Products))
	copy(products, req.Products)

	s.wg.Add(1)
	go s.runImport(jobCtx, job, products)

	s.logger.WithFields(logrus.Fields{
		"job_id":   job.ID,
		"products": len(products),
	}).Info("Import job started")
	return job, nil
}

// GetJob retrieves an import job by ID
func (s *ImportService) GetJob(ctx context.Context, id uuid.UUID) (*models.ImportJob, error) {
	job, err := s.repo.GetJobByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	return job, err
}

// ListJobs lists import jobs of the configured catalog
func (s *ImportService) ListJobs(ctx context.Context, opts *repository.ImportListOptions) ([]models.ImportJob, int64, error) {
	if opts == nil {
		opts = &repository.ImportListOptions{}
	}
	opts.CatalogID = s.manager.Config().CatalogID
	return s.repo.ListJobs(ctx, *opts)
}

// ListItems returns the stored outcomes of a job
func (s *ImportService) ListItems(ctx context.Context, jobID uuid.UUID, opts *repository.ItemListOptions) ([]models.ImportJobItem, int64, error) {
	if _, err := s.GetJob(ctx, jobID); err != nil {
		return nil, 0, err
	}
	if opts == nil {
		opts = &repository.ItemListOptions{Limit: 100}
	}
	return s.repo.ListItems(ctx, jobID, *opts)
}

// CancelJob stops a running job. Records not yet sent are stored as failed.
func (s *ImportService) CancelJob(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	cancel, exists := s.activeJobs[id]
	s.mu.Unlock()

	if !exists {
		return ErrJobNotRunning
	}
	cancel()
	return nil
}

// RecoverInterrupted fails jobs left pending or running by a previous process,
// so they no longer block new imports. Call it once before serving.
func (s *ImportService) RecoverInterrupted(ctx context.Context) (int, error) {
	catalogID := s.manager.Config().CatalogID
	if catalogID == "" {
		return 0, nil
	}
	jobs, err := s.repo.GetRunningJobs(ctx, catalogID)
	if err != nil {
		return 0, fmt.Errorf("failed to list running jobs: %w", err)
	}
	for _, job := range jobs {
		if err := s.repo.UpdateJobStatus(ctx, job.ID, models.ImportStatusFailed, "interrupted by restart"); err != nil {
			return 0, fmt.Errorf("failed to fail job %s: %w", job.ID, err)
		}
	}
	if len(jobs) > 0 {
		s.logger.WithField("jobs", len(jobs)).Warn("Marked interrupted import jobs as failed")
	}
	return len(jobs), nil
}

// Wait blocks until every background job has finished.
func (s *ImportService) Wait() {
	s.wg.Wait()
}

// Shutdown cancels all running jobs and waits for them until ctx is done.
func (s *ImportService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, cancel := range s.activeJobs {
		cancel()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runImport executes the batch. Outcomes are stored on a background context so
// that cancelling the job does not lose them.
func (s *ImportService) runImport(ctx context.Context, job *models.ImportJob, products []models.ProductRecord) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		if cancel, ok := s.activeJobs[job.ID]; ok {
			cancel()
			delete(s.activeJobs, job.ID)
		}
		s.mu.Unlock()
	}()

	store := context.Background()
	log := s.logger.WithField("job_id", job.ID)

	if err := s.repo.UpdateJobStatus(store, job.ID, models.ImportStatusRunning, ""); err != nil {
		log.WithError(err).Warn("Failed to mark import job running")
	}

	progress := job.GetProgress()
	var pending []models.ImportJobItem
	flush := func() {
		if len(pending) > 0 {
			if err := s.repo.CreateItems(store, pending); err != nil {
				log.WithError(err).Error("Failed to store import items")
			}
			pending = pending[:0]
		}
		if err := s.repo.UpdateJobProgress(store, job.ID, progress); err != nil {
			log.WithError(err).Warn("Failed to update import progress")
		}
	}

	_, batchErr := s.manager.BatchCreate(ctx, products,
		catalog.WithChunkSize(job.ChunkSize),
		catalog.WithProgress(func(index int, r models.BatchResult) {
			progress.Record(r.Success)
			pending = append(pending, models.NewImportJobItem(job.ID, index, r))
			if len(pending) >= itemFlushSize {
				flush()
			}
		}),
	)
	flush()

	status, message := importOutcome(batchErr)
	if err := s.repo.UpdateJobStatus(store, job.ID, status, message); err != nil {
		log.WithError(err).Error("Failed to update import job status")
	}

	log.WithFields(logrus.Fields{
		"status":    status,
		"succeeded": progress.SuccessfulItems,
		"failed":    progress.FailedItems,
	}).Info("Import job finished")

	publishEvent(s.publisher, s.logger, "import_completed", func(ctx context.Context) error {
		return s.publisher.PublishImportCompleted(ctx, job.CatalogID, job.ID.String(), string(status),
			progress.TotalItems, progress.SuccessfulItems, progress.FailedItems)
	})
}

func importOutcome(err error) (models.ImportStatus, string) {
	switch {
	case err == nil:
		return models.ImportStatusCompleted, ""
	case errors.Is(err, context.Canceled):
		return models.ImportStatusCancelled, "Cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return models.ImportStatusFailed, "import timed out"
	}
	return models.ImportStatusFailed, err.Error()
}
