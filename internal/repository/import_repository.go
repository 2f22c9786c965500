package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"whatsapp-catalog-service/internal/models"
)

// ImportRepositoryInterface is the storage used by the import service.
type ImportRepositoryInterface interface {
	CreateJob(ctx context.Context, job *models.ImportJob) error
	GetJobByID(ctx context.Context, id uuid.UUID) (*models.ImportJob, error)
	GetJobByIdempotencyKey(ctx context.Context, catalogID, idempotencyKey string) (*models.ImportJob, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status models.ImportStatus, errorMessage string) error
	UpdateJobProgress(ctx context.Context, id uuid.UUID, progress *models.ImportProgress) error
	ListJobs(ctx context.Context, opts ImportListOptions) ([]models.ImportJob, int64, error)
	GetRunningJobs(ctx context.Context, catalogID string) ([]models.ImportJob, error)
	CreateItems(ctx context.Context, items []models.ImportJobItem) error
	ListItems(ctx context.Context, jobID uuid.UUID, opts ItemListOptions) ([]models.ImportJobItem, int64, error)
}

// ImportRepository handles database operations for import jobs
type ImportRepository struct {
	db *gorm.DB
}

var _ ImportRepositoryInterface = (*ImportRepository)(nil)

// NewImportRepository creates a new import repository
func NewImportRepository(db *gorm.DB) *ImportRepository {
	return &ImportRepository{db: db}
}

// CreateJob creates a new import job
func (r *ImportRepository) CreateJob(ctx context.Context, job *models.ImportJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetJobByID retrieves an import job by ID
func (r *ImportRepository) GetJobByID(ctx context.Context, id uuid.UUID) (*models.ImportJob, error) {
	var job models.ImportJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJobByIdempotencyKey retrieves an import job of a catalog by idempotency key
func (r *ImportRepository) GetJobByIdempotencyKey(ctx context.Context, catalogID, idempotencyKey string) (*models.ImportJob, error) {
	var job models.ImportJob
	err := r.db.WithContext(ctx).
		Where("catalog_id = ? AND idempotency_key = ?", catalogID, idempotencyKey).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateJobStatus updates the job status. Terminal states also set completed_at.
func (r *ImportRepository) UpdateJobStatus(ctx context.Context, id uuid.UUID, status models.ImportStatus, errorMessage string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":        status,
		"error_message": errorMessage,
		"updated_at":    now,
	}
	if status == models.ImportStatusRunning {
		updates["started_at"] = &now
	}
	if status.IsTerminal() {
		updates["completed_at"] = &now
	}
	return r.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateJobProgress updates the job progress
func (r *ImportRepository) UpdateJobProgress(ctx context.Context, id uuid.UUID, progress *models.ImportProgress) error {
	progressJSON := models.JSONB{
		"totalItems":      progress.TotalItems,
		"processedItems":  progress.ProcessedItems,
		"successfulItems": progress.SuccessfulItems,
		"failedItems":     progress.FailedItems,
		"percentage":      progress.Percentage,
	}
	return r.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"progress":   progressJSON,
			"updated_at": time.Now(),
		}).Error
}

// ListJobs retrieves import jobs with pagination and filtering
func (r *ImportRepository) ListJobs(ctx context.Context, opts ImportListOptions) ([]models.ImportJob, int64, error) {
	var jobs []models.ImportJob
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ImportJob{})

	if opts.CatalogID != "" {
		query = query.Where("catalog_id = ?", opts.CatalogID)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}

	// Get total count
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply pagination and ordering
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	if err := query.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

// GetRunningJobs retrieves pending or running jobs of a catalog
func (r *ImportRepository) GetRunningJobs(ctx context.Context, catalogID string) ([]models.ImportJob, error) {
	var jobs []models.ImportJob
	err := r.db.WithContext(ctx).
		Where("catalog_id = ? AND status IN ?", catalogID, []models.ImportStatus{
			models.ImportStatusPending,
			models.ImportStatusRunning,
		}).
		Find(&jobs).Error
	return jobs, err
}

// CreateItems stores item outcomes in batches of 100
func (r *ImportRepository) CreateItems(ctx context.Context, items []models.ImportJobItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(items, 100).Error
}

// ListItems retrieves the stored outcomes of a job in input order
func (r *ImportRepository) ListItems(ctx context.Context, jobID uuid.UUID, opts ItemListOptions) ([]models.ImportJobItem, int64, error) {
	var items []models.ImportJobItem
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ImportJobItem{}).Where("import_job_id = ?", jobID)
	if opts.FailedOnly {
		query = query.Where("success = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	if err := query.Order("position ASC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ImportListOptions contains options for listing import jobs
type ImportListOptions struct {
	CatalogID string
	Status    string
	Limit     int
	Offset    int
}

// ItemListOptions contains options for listing job items
type ItemListOptions struct {
	FailedOnly bool
	Limit      int
	Offset     int
}
