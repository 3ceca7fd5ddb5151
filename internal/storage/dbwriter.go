package storage

import (
	"github.com/rs/zerolog"

	"github.com/afroash/roomsim/internal/models"
)

// BatchWriter is a listener that buffers events and writes them to the
// store in batches. It runs on the notifying goroutine; the first failed
// batch stops further writes and is reported by Flush and Err.
type BatchWriter struct {
	store     *SQLiteStore
	runID     string
	logger    zerolog.Logger
	batch     []models.Event
	batchSize int
	err       error

	totalWritten int64
	totalBatches int64
	totalErrors  int64
}

// BatchWriterConfig holds configuration for the batch writer
type BatchWriterConfig struct {
	BatchSize int // Number of events to buffer before writing (default: 100)
}

// DefaultBatchWriterConfig returns sensible defaults
func DefaultBatchWriterConfig() BatchWriterConfig {
	return BatchWriterConfig{BatchSize: 100}
}

// BatchWriterStats contains statistics about the writer
type BatchWriterStats struct {
	RunID        string `json:"run_id"`
	TotalWritten int64  `json:"total_written"`
	TotalBatches int64  `json:"total_batches"`
	TotalErrors  int64  `json:"total_errors"`
	Pending      int    `json:"pending"`
}

// NewBatchWriter creates a writer storing events under runID
func NewBatchWriter(store *SQLiteStore, runID string, config BatchWriterConfig, logger zerolog.Logger) *BatchWriter {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchWriterConfig().BatchSize
	}

	logger.Debug().
		Str("run_id", runID).
		Int("batch_size", config.BatchSize).
		Msg("BatchWriter created")

	return &BatchWriter{
		store:     store,
		runID:     runID,
		logger:    logger,
		batch:     make([]models.Event, 0, config.BatchSize),
		batchSize: config.BatchSize,
	}
}

// Notify buffers an event and writes the batch once it is full
func (w *BatchWriter) Notify(e models.Event) {
	if w.err != nil {
		return
	}
	w.batch = append(w.batch, e)
	if len(w.batch) >= w.batchSize {
		w.flush()
	}
}

// Flush writes any buffered events and returns the first write error
func (w *BatchWriter) Flush() error {
	if w.err == nil && len(w.batch) > 0 {
		w.flush()
	}
	return w.err
}

// Err returns the first write error, if any
func (w *BatchWriter) Err() error {
	return w.err
}

func (w *BatchWriter) flush() {
	err := w.store.InsertBatch(w.runID, w.batch)
	if err != nil {
		w.totalErrors++
		w.err = err
		w.logger.Error().Err(err).Int("batch_size", len(w.batch)).Msg("Failed to write batch")
	} else {
		w.totalWritten += int64(len(w.batch))
		w.totalBatches++
		w.logger.Debug().Int("count", len(w.batch)).Msg("Flushed batch")
	}
	w.batch = w.batch[:0]
}

// Stats returns current writer statistics
func (w *BatchWriter) Stats() BatchWriterStats {
	return BatchWriterStats{
		RunID:        w.runID,
		TotalWritten: w.totalWritten,
		TotalBatches: w.totalBatches,
		TotalErrors:  w.totalErrors,
		Pending:      len(w.batch),
	}
}
