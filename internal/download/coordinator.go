package download

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ytget/yt-batch-downloader/internal/cache"
	"github.com/ytget/yt-batch-downloader/internal/model"
)

// Config wires the collaborators of a Coordinator
type Config struct {
	Extractor Extractor
	Fetcher   Fetcher
	Cache     *cache.MetadataCache
	Presenter Presenter
	Recorder  Recorder // optional
	Logger    *zap.Logger

	// ProgressInterval is the minimum spacing of per-item progress events
	ProgressInterval time.Duration
	// ItemTimeout fails an item that runs longer; zero means no limit
	ItemTimeout time.Duration
}

// Coordinator runs one batch at a time over a fixed pool of workers
type Coordinator struct {
	worker    *ItemWorker
	presenter Presenter
	recorder  Recorder
	logger    *zap.Logger

	// mu serializes every item transition, counter update and presenter call
	mu      sync.Mutex
	running *Batch
}

// NewCoordinator creates a coordinator
func NewCoordinator(cfg Config) (*Coordinator, error) {
	if cfg.Extractor == nil || cfg.Fetcher == nil {
		return nil, errors.New("extractor and fetcher are required")
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewMetadataCache(cache.DefaultTTL)
	}
	if cfg.Presenter == nil {
		cfg.Presenter = NopPresenter{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	worker := NewItemWorker(cfg.Extractor, cfg.Fetcher, cfg.Cache, &singleflight.Group{}, cfg.Logger)
	if cfg.ProgressInterval > 0 {
		worker.SetProgressInterval(cfg.ProgressInterval)
	}
	worker.SetItemTimeout(cfg.ItemTimeout)

	return &Coordinator{
		worker:    worker,
		presenter: cfg.Presenter,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger,
	}, nil
}

// Running returns the batch in progress, or nil
func (c *Coordinator) Running() *Batch {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Start launches a batch over the selected items, in the given order, with at
// most maxParallel items downloading at once. It returns immediately.
// An item listed more than once joins the batch once.
// Selected items left in a terminal state by an earlier batch are reset to Pending.
func (c *Coordinator) Start(ctx context.Context, items []*model.MediaItem, opts model.DownloadOptions, maxParallel int) (*Batch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running != nil {
		return nil, ErrBatchRunning
	}

	var selected []*model.MediaItem
	seen := make(map[*model.MediaItem]bool, len(items))
	for _, item := range items {
		if item == nil || seen[item] || !item.Selected() {
			continue
		}
		seen[item] = true
		selected = append(selected, item)
	}
	if len(selected) == 0 {
		return nil, ErrNothingSelected
	}
	if maxParallel < 1 {
		return nil, ErrInvalidParallelism
	}
	opts, err := opts.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid download options: %w", err)
	}
	for _, item := range selected {
		if item.State() == model.StatePending {
			continue
		}
		if err := item.Reset(); err != nil {
			return nil, fmt.Errorf("item %s: %w", item.Source, err)
		}
	}

	batchCtx, cancel := context.WithCancel(ctx)
	b := &Batch{
		ID:        generateBatchID(),
		StartedAt: time.Now(),
		coord:     c,
		items:     selected,
		index:     make(map[*model.MediaItem]int, len(selected)),
		opts:      opts,
		ctx:       batchCtx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	b.summary.Total = len(selected)

	queue := make(chan *model.MediaItem, len(selected))
	for i, item := range selected {
		item.Freeze()
		b.index[item] = i
		queue <- item
	}
	close(queue)

	c.running = b
	b.stopParent = context.AfterFunc(ctx, b.Cancel)

	workers := min(maxParallel, len(selected))
	c.logger.Info("batch started",
		zap.String("batch", b.ID),
		zap.Int("items", len(selected)),
		zap.Int("workers", workers),
		zap.String("mode", string(opts.Mode)),
	)
	c.notify(Event{Kind: EventBatchStarted, BatchID: b.ID, Summary: b.summary})

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range queue {
				c.worker.Execute(batchCtx, item, opts, batchReporter{b})
			}
		}()
	}
	go func() {
		wg.Wait()
		b.finish()
	}()

	return b, nil
}

// Cancel cancels b. It is equivalent to b.Cancel.
func (c *Coordinator) Cancel(b *Batch) {
	if b != nil {
		b.Cancel()
	}
}

// notify delivers e to the presenter. The caller holds c.mu.
func (c *Coordinator) notify(e Event) {
	defer func() {
		if p := recover(); p != nil {
			c.logger.Error("presenter panic", zap.Any("panic", p), zap.String("event", string(e.Kind)))
		}
	}()
	c.presenter.Notify(e)
}

// Batch is the handle of a running or finished batch
type Batch struct {
	ID        string
	StartedAt time.Time

	coord      *Coordinator
	items      []*model.MediaItem
	index      map[*model.MediaItem]int
	opts       model.DownloadOptions
	ctx        context.Context
	cancel     context.CancelFunc
	stopParent func() bool
	done       chan struct{}

	// guarded by coord.mu
	cancelled  bool
	summary    model.Summary
	finishedAt time.Time
}

// Cancel stops the batch. Queued items become Cancelled without being
// dispatched and in-flight fetches are asked to stop. Repeated calls and
// calls after completion have no effect.
func (b *Batch) Cancel() {
	c := b.coord
	c.mu.Lock()
	if b.cancelled || !b.finishedAt.IsZero() {
		c.mu.Unlock()
		return
	}
	b.cancelled = true
	c.mu.Unlock()

	c.logger.Info("batch cancellation requested", zap.String("batch", b.ID))
	b.cancel()
}

// Cancelled reports whether cancellation was requested
func (b *Batch) Cancelled() bool {
	b.coord.mu.Lock()
	defer b.coord.mu.Unlock()
	return b.cancelled
}

// Done is closed once every item is terminal and the final event was delivered
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until the batch finishes or ctx is done
func (b *Batch) Wait(ctx context.Context) (model.Summary, error) {
	select {
	case <-b.done:
		return b.Summary(), nil
	case <-ctx.Done():
		return b.Summary(), ctx.Err()
	}
}

// Summary returns the current counts
func (b *Batch) Summary() model.Summary {
	b.coord.mu.Lock()
	defer b.coord.mu.Unlock()
	return b.summary
}

// Items returns the selected items in dispatch order
func (b *Batch) Items() []*model.MediaItem {
	out := make([]*model.MediaItem, len(b.items))
	copy(out, b.items)
	return out
}

// Snapshot returns a copy of every item in dispatch order
func (b *Batch) Snapshot() []model.ItemSnapshot {
	b.coord.mu.Lock()
	defer b.coord.mu.Unlock()
	out := make([]model.ItemSnapshot, len(b.items))
	for i, item := range b.items {
		out[i] = item.Snapshot()
	}
	return out
}

// finish runs once all workers have drained the queue
func (b *Batch) finish() {
	c := b.coord

	c.mu.Lock()
	b.finishedAt = time.Now()
	for _, item := range b.items {
		item.Unfreeze()
	}
	c.running = nil
	summary := b.summary
	c.notify(Event{Kind: EventBatchFinished, BatchID: b.ID, Summary: summary})
	rec := b.record()
	c.mu.Unlock()

	b.stopParent()
	b.cancel()

	c.logger.Info("batch finished",
		zap.String("batch", b.ID),
		zap.Int("completed", summary.Completed),
		zap.Int("failed", summary.Failed),
		zap.Int("cancelled", summary.Cancelled),
		zap.Duration("elapsed", b.finishedAt.Sub(b.StartedAt)),
	)

	if c.recorder != nil {
		if err := c.recorder.RecordBatch(rec); err != nil {
			c.logger.Warn("failed to record batch", zap.String("batch", b.ID), zap.Error(err))
		}
	}
	close(b.done)
}

// record builds the persisted form of the batch. The caller holds coord.mu.
func (b *Batch) record() BatchRecord {
	rec := BatchRecord{
		ID:         b.ID,
		Mode:       b.opts.Mode,
		Directory:  b.opts.Directory,
		StartedAt:  b.StartedAt,
		FinishedAt: b.finishedAt,
		Summary:    b.summary,
		Items:      make([]ItemRecord, 0, len(b.items)),
	}
	for _, item := range b.items {
		s := item.Snapshot()
		rec.Items = append(rec.Items, ItemRecord{
			Source:     s.Source,
			Title:      s.Title,
			State:      s.State,
			OutputPath: s.OutputPath,
			Error:      s.Error,
			Category:   s.Category,
		})
	}
	return rec
}

// batchReporter applies worker transitions under the coordinator lock
type batchReporter struct {
	b *Batch
}

func (r batchReporter) Begin(item *model.MediaItem) bool {
	b := r.b
	c := b.coord
	c.mu.Lock()
	defer c.mu.Unlock()

	if b.cancelled || b.ctx.Err() != nil {
		if err := item.Cancel(); err != nil {
			c.logger.Error("cancel transition rejected", zap.String("source", item.Source), zap.Error(err))
			return false
		}
		b.terminal(item)
		return false
	}

	if err := item.Start(); err != nil {
		c.logger.Warn("item left pending before dispatch", zap.String("source", item.Source), zap.Error(err))
		b.settle(item, err)
		return false
	}
	b.changed(item)
	return true
}

// settle counts an item that left Pending outside the batch. The caller holds coord.mu.
func (b *Batch) settle(item *model.MediaItem, cause error) {
	if !item.State().IsTerminal() {
		if err := item.Fail(model.CategoryDownloadFailed, Describe(cause)); err != nil {
			return
		}
	}
	b.terminal(item)
}

func (r batchReporter) Resolved(item *model.MediaItem, md model.Metadata) {
	c := r.b.coord
	c.mu.Lock()
	defer c.mu.Unlock()
	item.ApplyMetadata(md)
	r.b.changed(item)
}

func (r batchReporter) Progress(item *model.MediaItem, fraction float64) {
	c := r.b.coord
	c.mu.Lock()
	defer c.mu.Unlock()
	if item.SetProgress(fraction) {
		r.b.changed(item)
	}
}

func (r batchReporter) Finish(item *model.MediaItem, out Outcome) {
	b := r.b
	c := b.coord
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	switch out.State {
	case model.StateCompleted:
		err = item.Complete(out.OutputPath)
	case model.StateCancelled:
		err = item.Cancel()
	default:
		err = item.Fail(out.Category, out.Detail)
	}
	if err != nil {
		c.logger.Error("terminal transition rejected", zap.String("source", item.Source), zap.Error(err))
		if item.State().IsTerminal() {
			return
		}
		if err := item.Fail(model.CategoryDownloadFailed, Describe(err)); err != nil {
			return
		}
	}
	b.terminal(item)
}

// changed publishes an item update. The caller holds coord.mu.
func (b *Batch) changed(item *model.MediaItem) {
	b.coord.notify(Event{
		Kind:    EventItemChanged,
		BatchID: b.ID,
		Index:   b.index[item],
		Item:    item.Snapshot(),
		Summary: b.summary,
	})
}

// terminal counts a terminal transition and publishes it. The caller holds coord.mu.
func (b *Batch) terminal(item *model.MediaItem) {
	b.summary.Add(item.State())
	b.changed(item)
	b.coord.notify(Event{Kind: EventAggregateChanged, BatchID: b.ID, Summary: b.summary})
}

// generateBatchID generates a unique batch ID
func generateBatchID() string {
	if id, err := uuid.NewV7(); err == nil {
		return "batch-" + id.String()
	}
	return fmt.Sprintf("batch-%d", time.Now().UnixNano())
}
