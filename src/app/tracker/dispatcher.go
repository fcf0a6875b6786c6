package tracker

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/bapt252/commitment-tracking/src/domain/tracking"
)

// batchEnvelope is the wire shape of POST {apiURL}/track-batch.
type batchEnvelope struct {
	Events []*tracking.Event `json:"events"`
}

// dispatcher delivers detached batches to the collector. It never retries
// eagerly: a failed batch goes back to the front of the queue and waits for
// the next periodic or explicit flush.
type dispatcher struct {
	cfg       Config
	transport tracking.Transport
	queue     *eventQueue
	log       *zap.Logger

	// mu serializes flushes. An ordinary flush that finds one outstanding
	// is a no-op rather than an interleaving; the teardown flush waits its
	// turn instead, so events enqueued after the running detach still get
	// a final handoff attempt.
	mu sync.Mutex
}

func newDispatcher(cfg Config, platform tracking.Platform, queue *eventQueue) *dispatcher {
	return &dispatcher{
		cfg:       cfg,
		transport: platform.Transport(),
		queue:     queue,
		log:       cfg.Logger,
	}
}

// Flush attempts to deliver everything currently queued as one batch.
//
// With bestEffort set (page teardown) the fire-and-forget transport is tried
// first and its acceptance counts as delivery, optimistically, since it has
// no feedback channel. Ordinary flushes share that preference unless
// DisableBestEffortPreference is set. When the best-effort primitive is
// unavailable the reliable transport is used; its failure requeues the batch
// at the front.
func (d *dispatcher) Flush(ctx context.Context, bestEffort bool) bool {
	if d.queue.Len() == 0 {
		return true
	}
	if !d.mu.TryLock() {
		// Another flush owns the detached batch; nothing to interleave.
		return true
	}
	defer d.mu.Unlock()
	return d.deliver(ctx, bestEffort)
}

// FlushFinal is the teardown variant of Flush: it blocks until any
// outstanding flush completes and then delivers whatever remains queued.
func (d *dispatcher) FlushFinal(ctx context.Context, bestEffort bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.queue.Len() == 0 {
		return true
	}
	return d.deliver(ctx, bestEffort)
}

// deliver detaches and sends one batch. Callers hold d.mu.
func (d *dispatcher) deliver(ctx context.Context, bestEffort bool) bool {
	batch := d.queue.Detach()
	if len(batch) == 0 {
		return true
	}

	body, err := json.Marshal(batchEnvelope{Events: batch})
	if err != nil {
		d.queue.RequeueFront(batch)
		d.log.Error("batch encode failed", zap.Error(err), zap.Int("events", len(batch)))
		return false
	}

	url := d.cfg.trackBatchURL()
	if bestEffort || !d.cfg.DisableBestEffortPreference {
		if d.transport.SendBestEffort(url, body) {
			d.log.Debug("batch handed to best-effort transport", zap.Int("events", len(batch)))
			return true
		}
	}

	if err := d.transport.SendReliable(ctx, url, body); err != nil {
		d.queue.RequeueFront(batch)
		d.log.Warn("batch delivery failed, requeued", zap.Error(err), zap.Int("events", len(batch)))
		return false
	}
	d.log.Debug("batch delivered", zap.Int("events", len(batch)))
	return true
}
