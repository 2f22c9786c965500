package models

import (
	"time"

	"github.com/google/uuid"
)

// ImportStatus represents the status of an import job
type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "PENDING"
	ImportStatusRunning   ImportStatus = "RUNNING"
	ImportStatusCompleted ImportStatus = "COMPLETED"
	ImportStatusFailed    ImportStatus = "FAILED"
	ImportStatusCancelled ImportStatus = "CANCELLED"
)

// IsTerminal reports whether the job can no longer change state.
func (s ImportStatus) IsTerminal() bool {
	return s == ImportStatusCompleted || s == ImportStatusFailed || s == ImportStatusCancelled
}

// ImportProgress tracks the progress of an import job
type ImportProgress struct {
	TotalItems      int     `json:"totalItems"`
	ProcessedItems  int     `json:"processedItems"`
	SuccessfulItems int     `json:"successfulItems"`
	FailedItems     int     `json:"failedItems"`
	Percentage      float64 `json:"percentage"`
}

// Record counts one finished item and recomputes the percentage.
func (p *ImportProgress) Record(success bool) {
	p.ProcessedItems++
	if success {
		p.SuccessfulItems++
	} else {
		p.FailedItems++
	}
	if p.TotalItems > 0 {
		p.Percentage = float64(p.ProcessedItems) / float64(p.TotalItems) * 100
	}
}

// ImportJob is an asynchronous batch create against one catalog.
// Only outcome metadata is stored; product payloads are not persisted.
type ImportJob struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CatalogID string       `gorm:"type:varchar(255);not null;index:idx_import_jobs_catalog" json:"catalogId"`
	Status    ImportStatus `gorm:"type:varchar(50);not null;default:'PENDING';index:idx_import_jobs_status" json:"status"`

	Progress  JSONB `gorm:"type:jsonb;default:'{\"totalItems\":0,\"processedItems\":0,\"successfulItems\":0,\"failedItems\":0,\"percentage\":0}'" json:"progress"`
	ChunkSize int   `gorm:"default:50" json:"chunkSize"`

	IdempotencyKey string `gorm:"type:varchar(255);index:idx_import_jobs_idempotency" json:"idempotencyKey,omitempty"`

	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	ErrorMessage string `gorm:"type:text" json:"errorMessage,omitempty"`
	CreatedBy    string `gorm:"type:varchar(255)" json:"createdBy,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	Items []ImportJobItem `gorm:"foreignKey:ImportJobID" json:"items,omitempty"`
}

// TableName specifies the table name for ImportJob
func (ImportJob) TableName() string {
	return "catalog_import_jobs"
}

// GetProgress returns the progress as a structured object
func (j *ImportJob) GetProgress() *ImportProgress {
	progress := &ImportProgress{}
	if j.Progress != nil {
		progress.TotalItems = j.Progress.intValue("totalItems")
		progress.ProcessedItems = j.Progress.intValue("processedItems")
		progress.SuccessfulItems = j.Progress.intValue("successfulItems")
		progress.FailedItems = j.Progress.intValue("failedItems")
		progress.Percentage = j.Progress.floatValue("percentage")
	}
	return progress
}

// SetProgress sets the progress from a structured object
func (j *ImportJob) SetProgress(progress *ImportProgress) {
	j.Progress = JSONB{
		"totalItems":      progress.TotalItems,
		"processedItems":  progress.ProcessedItems,
		"successfulItems": progress.SuccessfulItems,
		"failedItems":     progress.FailedItems,
		"percentage":      progress.Percentage,
	}
}

// ImportJobItem is the stored outcome of one record of an import job.
type ImportJobItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ImportJobID uuid.UUID `gorm:"type:uuid;not null;index:idx_import_items_job" json:"importJobId"`
	Position    int       `gorm:"not null" json:"position"`

	RetailerID string `gorm:"type:varchar(255);index:idx_import_items_retailer" json:"retailerId"`
	Success    bool   `gorm:"not null" json:"success"`
	RemoteID   string `gorm:"type:varchar(255)" json:"remoteId,omitempty"`
	Error      string `gorm:"type:text" json:"error,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for ImportJobItem
func (ImportJobItem) TableName() string {
	return "catalog_import_items"
}

// NewImportJobItem converts a batch outcome into a stored item.
func NewImportJobItem(jobID uuid.UUID, position int, r BatchResult) ImportJobItem {
	item := ImportJobItem{
		ImportJobID: jobID,
		Position:    position,
		RetailerID:  r.RetailerID,
		Success:     r.Success,
		Error:       r.Error,
		StatusCode:  r.StatusCode,
	}
	if id, ok := r.Result["id"].(string); ok {
		item.RemoteID = id
	}
	return item
}
