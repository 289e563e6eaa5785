// Package service coordinates the ingestion pipeline for one upload:
// decompress, decode, persist, notify.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cortexa-systems/cortexa-ingest/internal/logging"
	"github.com/cortexa-systems/cortexa-ingest/internal/metrics"
	"github.com/cortexa-systems/cortexa-ingest/internal/models"
	"github.com/cortexa-systems/cortexa-ingest/internal/packet"
)

// PersistenceError wraps a failed bulk write. The request fails and no
// partial data is committed.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist samples: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Decompressor turns a compressed payload back into raw frame bytes.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// SampleStore durably appends a batch of samples as one atomic
// operation.
type SampleStore interface {
	InsertSamples(ctx context.Context, samples []models.Sample) (int, error)
}

// Publisher makes a single best-effort publish attempt per block.
type Publisher interface {
	PublishBlock(ctx context.Context, n models.BlockNotification) error
}

type IngestService struct {
	decomp    Decompressor
	store     SampleStore
	publisher Publisher
	logger    *logging.Logger
}

func NewIngestService(decomp Decompressor, store SampleStore, publisher Publisher, logger *logging.Logger) *IngestService {
	return &IngestService{
		decomp:    decomp,
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// IngestBlock runs one upload through the pipeline. Decompression and
// persistence failures abort the request; a zero-record payload
// short-circuits before the store is touched; a notification failure is
// logged and absorbed, reported only through Notified on the result.
func (s *IngestService) IngestBlock(ctx context.Context, u models.Upload) (models.IngestResult, error) {
	decompressStart := time.Now()
	raw, err := s.decomp.Decompress(u.Payload)
	if err != nil {
		metrics.BlocksTotal.WithLabelValues("decompression_error").Inc()
		return models.IngestResult{}, err
	}
	metrics.DecompressDuration.Observe(time.Since(decompressStart).Seconds())

	receivedAt := time.Now().UTC()
	samples, dropped := packet.Decode(raw, packet.BlockMeta{
		SessionID: u.SessionID,
		UserID:    u.UserID,
		DeviceID:  u.DeviceID,
	}, receivedAt)

	if dropped > 0 {
		metrics.TruncatedBytesTotal.Add(float64(dropped))
		s.logger.WarnContext(ctx, "dropped trailing partial record",
			logging.SessionID(u.SessionID),
			logging.DeviceID(u.DeviceID),
			logging.Bytes(dropped),
		)
	}

	if len(samples) == 0 {
		metrics.BlocksTotal.WithLabelValues("empty").Inc()
		s.logger.InfoContext(ctx, "payload contained no complete records",
			logging.SessionID(u.SessionID),
			logging.DeviceID(u.DeviceID),
		)
		return models.IngestResult{}, nil
	}

	storeStart := time.Now()
	inserted, err := s.store.InsertSamples(ctx, samples)
	if err != nil {
		metrics.BlocksTotal.WithLabelValues("persistence_error").Inc()
		return models.IngestResult{}, &PersistenceError{Err: err}
	}
	metrics.StorageDuration.Observe(time.Since(storeStart).Seconds())
	metrics.SamplesWrittenTotal.Add(float64(inserted))

	result := models.IngestResult{InsertedSamples: inserted, Notified: true}

	notification := models.BlockNotification{
		Type:       models.NotificationTypeNewBlock,
		SessionID:  u.SessionID,
		UserID:     u.UserID,
		NumRecords: inserted,
		ReceivedAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishBlock(ctx, notification); err != nil {
		// Best-effort: the samples are already durable, so the request
		// still succeeds. The gap is visible in metrics and logs.
		metrics.NotifyFailuresTotal.Inc()
		s.logger.ErrorContext(ctx, "block notification publish failed",
			logging.SessionID(u.SessionID),
			logging.UserID(u.UserID),
			logging.Samples(inserted),
			logging.Error(err),
		)
		result.Notified = false
	}

	metrics.BlocksTotal.WithLabelValues("ok").Inc()
	s.logger.InfoContext(ctx, "block ingested",
		logging.SessionID(u.SessionID),
		logging.UserID(u.UserID),
		logging.DeviceID(u.DeviceID),
		logging.Samples(inserted),
	)
	return result, nil
}
