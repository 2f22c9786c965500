package catalog

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"whatsapp-catalog-service/internal/apierrors"
	"whatsapp-catalog-service/internal/metrics"
	"whatsapp-catalog-service/internal/models"
)

const defaultChunkSize = 50

type batchOptions struct {
	chunkSize int
	onResult  func(index int, result models.BatchResult)
}

// BatchOption configures BatchCreate.
type BatchOption func(*batchOptions)

// WithChunkSize overrides the configured MaxBatchSize.
func WithChunkSize(n int) BatchOption {
	return func(o *batchOptions) { o.chunkSize = n }
}

// WithProgress is called after every record, in input order.
func WithProgress(fn func(index int, result models.BatchResult)) BatchOption {
	return func(o *batchOptions) { o.onResult = fn }
}

// BatchCreate adds records sequentially in chunks, pausing between chunks.
// The result has exactly one entry per input record, in input order; a
// failing record never stops the batch. Only missing configuration aborts
// before anything is sent. When ctx is cancelled the remaining records are
// reported as failed and ctx.Err() is returned with the full result list.
func (m *Manager) BatchCreate(ctx context.Context, records []models.ProductRecord, opts ...BatchOption) ([]models.BatchResult, error) {
	if err := m.require("add products", needCatalog); err != nil {
		return nil, err
	}

	o := batchOptions{chunkSize: m.cfg.MaxBatchSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.chunkSize <= 0 {
		o.chunkSize = defaultChunkSize
	}

	results := make([]models.BatchResult, 0, len(records))
	emit := func(r models.BatchResult) {
		results = append(results, r)
		if o.onResult != nil {
			o.onResult(len(results)-1, r)
		}
	}
	chunks := (len(records) + o.chunkSize - 1) / o.chunkSize

	for start := 0; start < len(records); start += o.chunkSize {
		end := start + o.chunkSize
		if end > len(records) {
			end = len(records)
		}
		chunk := start/o.chunkSize + 1

		if start > 0 && m.cfg.BatchChunkPause > 0 {
			if err := m.sleep(ctx, m.cfg.BatchChunkPause); err != nil {
				m.cancelRemaining(records[start:], err, emit)
				return results, err
			}
		}

		m.logger.WithFields(logrus.Fields{
			"chunk":  chunk,
			"chunks": chunks,
			"size":   end - start,
		}).Info("Processing product chunk")

		for i, record := range records[start:end] {
			if err := ctx.Err(); err != nil {
				m.cancelRemaining(records[start+i:], err, emit)
				return results, err
			}
			result := m.createOne(ctx, record)
			metrics.RecordBatchItem(result.Success)
			emit(result)
		}
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	m.logger.WithFields(logrus.Fields{
		"total":     len(results),
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	}).Info("Batch create finished")

	return results, nil
}

func (m *Manager) createOne(ctx context.Context, record models.ProductRecord) models.BatchResult {
	result := models.BatchResult{RetailerID: record.RetailerID()}
	data, err := m.create(ctx, record)
	if err != nil {
		result.Error = err.Error()
		result.StatusCode = apierrors.StatusCode(err)
		return result
	}
	result.Success = true
	result.Result = data
	return result
}

func (m *Manager) cancelRemaining(records []models.ProductRecord, cause error, emit func(models.BatchResult)) {
	for _, record := range records {
		emit(models.BatchResult{
			RetailerID: record.RetailerID(),
			Error:      fmt.Sprintf("batch cancelled: %v", cause),
		})
	}
	m.logger.WithError(cause).WithField("skipped", len(records)).Warn("Batch create cancelled")
}
