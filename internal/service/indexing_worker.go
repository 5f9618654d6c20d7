package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"jobmatch-be/internal/pkg/logger"
	"jobmatch-be/internal/repository/unitofwork"
	"jobmatch-be/pkg/lock"

	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/sync/errgroup"
)

// minNudgeGap keeps a burst of indexing requests from turning into a burst of ticks.
const minNudgeGap = 500 * time.Millisecond

type WorkerConfig struct {
	InstanceId     string
	PollInterval   time.Duration
	BatchSize      int
	MaxConcurrency int
	// LeaseTTL bounds how long a claimed record may stay in processing before
	// the reaper fails it.
	LeaseTTL time.Duration
}

type TickResult struct {
	Claimed   int
	Succeeded int
	Failed    int
	Released  int64
	// Skipped is set when another instance holds the leader lease.
	Skipped bool
}

// IndexingWorker drains the pending queue on a fixed interval. Records of one
// batch are processed concurrently and independently: a failure or panic in
// one never affects its siblings.
type IndexingWorker struct {
	cfg        WorkerConfig
	uowFactory unitofwork.RepositoryFactory
	processor  IDocumentProcessor
	lease      lock.Lease
	nudges     message.Subscriber
	nudgeTopic string
	logger     logger.ILogger
	clock      func() time.Time

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	done     chan struct{}
	lastTick time.Time
}

func NewIndexingWorker(
	cfg WorkerConfig,
	uowFactory unitofwork.RepositoryFactory,
	processor IDocumentProcessor,
	lease lock.Lease,
	log logger.ILogger,
) *IndexingWorker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 5
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 5 * time.Minute
	}
	if lease == nil {
		lease = lock.NoopLease{}
	}
	return &IndexingWorker{
		cfg:        cfg,
		uowFactory: uowFactory,
		processor:  processor,
		lease:      lease,
		logger:     log,
		clock:      time.Now,
	}
}

// WithNudges makes the worker tick early whenever a message arrives on topic.
func (w *IndexingWorker) WithNudges(subscriber message.Subscriber, topic string) *IndexingWorker {
	w.nudges = subscriber
	w.nudgeTopic = topic
	return w
}

// Start runs the loop and blocks until ctx is cancelled or Stop is called.
// A batch already in flight is finished before Start returns.
func (w *IndexingWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("indexing worker already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.done = make(chan struct{})
	stopCh, done := w.stopCh, w.done
	w.mu.Unlock()

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := w.lease.Release(releaseCtx, w.cfg.InstanceId); err != nil {
			w.logger.Warn("WORKER", "Failed to release leader lease", map[string]interface{}{"error": err.Error()})
		}

		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(done)
	}()

	var nudgeCh <-chan *message.Message
	if w.nudges != nil {
		ch, err := w.nudges.Subscribe(ctx, w.nudgeTopic)
		if err != nil {
			w.logger.Warn("WORKER", "Nudge subscription failed, relying on ticker only", map[string]interface{}{"error": err.Error()})
		} else {
			nudgeCh = ch
		}
	}

	w.logger.Info("WORKER", "Indexing worker started", map[string]interface{}{
		"instance_id":     w.cfg.InstanceId,
		"poll_interval":   w.cfg.PollInterval.String(),
		"batch_size":      w.cfg.BatchSize,
		"max_concurrency": w.cfg.MaxConcurrency,
	})

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		// Stop wins over a due tick.
		select {
		case <-ctx.Done():
			w.logger.Info("WORKER", "Indexing worker cancelled", nil)
			return ctx.Err()
		case <-stopCh:
			w.logger.Info("WORKER", "Indexing worker stopped", nil)
			return nil
		default:
		}

		select {
		case <-ctx.Done():
			w.logger.Info("WORKER", "Indexing worker cancelled", nil)
			return ctx.Err()
		case <-stopCh:
			w.logger.Info("WORKER", "Indexing worker stopped", nil)
			return nil
		case <-ticker.C:
			w.RunOnce(ctx)
		case msg, ok := <-nudgeCh:
			if !ok {
				nudgeCh = nil
				continue
			}
			msg.Ack()
			if w.clock().Sub(w.lastTick) >= minNudgeGap {
				w.RunOnce(ctx)
			}
		}
	}
}

// Stop signals the loop and waits for it to exit. It is a no-op when the
// worker is not running.
func (w *IndexingWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
	done := w.done
	w.mu.Unlock()

	<-done
}

// RunOnce performs a single tick. Errors are logged, never returned: the next
// tick starts from scratch.
func (w *IndexingWorker) RunOnce(ctx context.Context) (result TickResult) {
	w.lastTick = w.clock()

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("WORKER", "Tick panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
		}
	}()

	leader, err := w.lease.Acquire(ctx, w.cfg.InstanceId, 3*w.cfg.PollInterval)
	if err != nil {
		w.logger.Error("WORKER", "Leader lease check failed", map[string]interface{}{"error": err.Error()})
		return TickResult{Skipped: true}
	}
	if !leader {
		return TickResult{Skipped: true}
	}

	uow := w.uowFactory.NewUnitOfWork(ctx)
	records := uow.EmbeddingRecordRepository()

	now := w.clock()
	released, err := records.ReleaseStale(ctx, now)
	if err != nil {
		w.logger.Error("WORKER", "Failed to release stale leases", map[string]interface{}{"error": err.Error()})
	} else if released > 0 {
		result.Released = released
		w.logger.Warn("WORKER", "Released records with expired leases", map[string]interface{}{"count": released})
	}

	batch, err := records.ClaimPending(ctx, w.cfg.InstanceId, w.cfg.BatchSize, now.Add(w.cfg.LeaseTTL))
	if err != nil {
		w.logger.Error("WORKER", "Failed to claim pending records", map[string]interface{}{"error": err.Error()})
		return result
	}
	if len(batch) == 0 {
		return result
	}
	result.Claimed = len(batch)

	// In-flight records run to completion even if ctx is cancelled meanwhile.
	batchCtx := context.WithoutCancel(ctx)

	var succeeded, failed atomic.Int32
	g := new(errgroup.Group)
	g.SetLimit(w.cfg.MaxConcurrency)

	for _, record := range batch {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					failed.Add(1)
					w.logger.Error("WORKER", "Processing panicked", map[string]interface{}{
						"document_id":   record.DocumentId.String(),
						"document_type": record.DocumentType.String(),
						"panic":         fmt.Sprint(r),
					})
				}
			}()

			if err := w.processor.Process(batchCtx, record.DocumentId, record.DocumentType); err != nil {
				failed.Add(1)
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	result.Succeeded = int(succeeded.Load())
	result.Failed = int(failed.Load())

	w.logger.Info("WORKER", "Batch processed", map[string]interface{}{
		"claimed":   result.Claimed,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	})
	return result
}

// Drain ticks until a tick claims nothing, ctx ends, or maxTicks is reached.
// Used by the operator CLI.
func (w *IndexingWorker) Drain(ctx context.Context, maxTicks int) TickResult {
	var total TickResult
	for i := 0; maxTicks <= 0 || i < maxTicks; i++ {
		if ctx.Err() != nil {
			break
		}
		res := w.RunOnce(ctx)
		total.Claimed += res.Claimed
		total.Succeeded += res.Succeeded
		total.Failed += res.Failed
		total.Released += res.Released
		if res.Skipped {
			total.Skipped = true
			break
		}
		if res.Claimed == 0 {
			break
		}
	}
	return total
}
