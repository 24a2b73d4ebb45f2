// Package pipeline relays computed impact assessments to an event sink
// without putting the sink on the request path.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/neo-impact-service/internal/domain"
	"github.com/couchcryptid/neo-impact-service/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second

	// queueBatches is the buffer capacity in batches.
	queueBatches = 4

	finalFlushTimeout = 5 * time.Second
)

// BatchLoader writes multiple assessments to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, assessments []domain.Assessment) error
}

// Relay buffers assessments and loads them in batches.
type Relay struct {
	loader        BatchLoader
	logger        *slog.Logger
	metrics       *observability.Metrics
	batchSize     int
	flushInterval time.Duration
	queue         chan domain.Assessment
}

// New creates a Relay. The buffer holds a few batches; beyond that Enqueue drops.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration) *Relay {
	return &Relay{
		loader:        l,
		logger:        logger,
		metrics:       metrics,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		queue:         make(chan domain.Assessment, batchSize*queueBatches),
	}
}

// Enqueue hands an assessment to the relay. It never blocks: when the buffer
// is full the assessment is dropped and counted.
func (r *Relay) Enqueue(a domain.Assessment) {
	select {
	case r.queue <- a:
	default:
		r.metrics.EventsDropped.Inc()
		r.logger.Warn("relay buffer full, dropping assessment", "id", a.ID, "variant", a.Variant)
	}
}

// Run drains the buffer until the context is cancelled, then flushes what is
// left with a short grace period.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("relay started", "batch_size", r.batchSize, "flush_interval", r.flushInterval)
	r.metrics.RelayRunning.Set(1)
	defer r.metrics.RelayRunning.Set(0)

	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.Assessment, 0, r.batchSize)
	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("relay stopping", "reason", ctx.Err())
			r.finalFlush(ctx, batch)
			return nil
		case a := <-r.queue:
			batch = append(batch, a)
			if len(batch) >= r.batchSize {
				batch = r.flush(ctx, batch, &backoff)
			}
		case <-ticker.C:
			batch = r.flush(ctx, batch, &backoff)
		}
	}
}

// flush loads the batch. On success it returns an empty batch; on failure it
// sleeps with the current backoff and returns the batch for another attempt,
// trimmed to the buffer capacity.
func (r *Relay) flush(ctx context.Context, batch []domain.Assessment, backoff *time.Duration) []domain.Assessment {
	if len(batch) == 0 {
		return batch
	}

	if err := r.loader.LoadBatch(ctx, batch); err != nil {
		if ctx.Err() != nil {
			return batch
		}
		r.metrics.PublishErrors.Inc()
		r.logger.Error("load batch failed", "error", err, "batch_size", len(batch), "retry_in", *backoff)

		if limit := cap(r.queue); len(batch) > limit {
			dropped := len(batch) - limit
			r.metrics.EventsDropped.Add(float64(dropped))
			batch = append(batch[:0], batch[dropped:]...)
		}
		sleepWithContext(ctx, *backoff)
		*backoff = nextBackoff(*backoff, maxBackoff)
		return batch
	}

	r.metrics.EventsPublished.Add(float64(len(batch)))
	r.metrics.RelayBatchSize.Observe(float64(len(batch)))
	*backoff = initialBackoff
	return batch[:0]
}

// finalFlush drains whatever is still buffered and makes one load attempt.
func (r *Relay) finalFlush(parent context.Context, batch []domain.Assessment) {
drain:
	for {
		select {
		case a := <-r.queue:
			batch = append(batch, a)
		default:
			break drain
		}
	}
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), finalFlushTimeout)
	defer cancel()

	if err := r.loader.LoadBatch(ctx, batch); err != nil {
		r.metrics.PublishErrors.Inc()
		r.metrics.EventsDropped.Add(float64(len(batch)))
		r.logger.Error("final flush failed", "error", err, "batch_size", len(batch))
		return
	}
	r.metrics.EventsPublished.Add(float64(len(batch)))
	r.metrics.RelayBatchSize.Observe(float64(len(batch)))
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
