package download

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ytget/yt-batch-downloader/internal/cache"
	"github.com/ytget/yt-batch-downloader/internal/model"
	"github.com/ytget/yt-batch-downloader/internal/progress"
)

// ItemWorker drives a single item from Pending to a terminal state
type ItemWorker struct {
	extractor        Extractor
	fetcher          Fetcher
	cache            *cache.MetadataCache
	flight           *singleflight.Group
	logger           *zap.Logger
	progressInterval time.Duration
	itemTimeout      time.Duration
}

// NewItemWorker creates a worker. flight may be shared between workers so
// that concurrent lookups of the same source resolve only once.
func NewItemWorker(extractor Extractor, fetcher Fetcher, mc *cache.MetadataCache, flight *singleflight.Group, logger *zap.Logger) *ItemWorker {
	if flight == nil {
		flight = &singleflight.Group{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemWorker{
		extractor:        extractor,
		fetcher:          fetcher,
		cache:            mc,
		flight:           flight,
		logger:           logger,
		progressInterval: progress.DefaultInterval,
	}
}

// SetProgressInterval sets the minimum spacing of progress notifications
func (w *ItemWorker) SetProgressInterval(d time.Duration) {
	w.progressInterval = d
}

// SetItemTimeout bounds the time spent on one item; zero disables the bound
func (w *ItemWorker) SetItemTimeout(d time.Duration) {
	w.itemTimeout = d
}

// Execute runs item to completion. ctx is the batch cancellation token.
// Every error, panics included, ends in a terminal transition reported to r;
// nothing is returned to the caller.
func (w *ItemWorker) Execute(ctx context.Context, item *model.MediaItem, opts model.DownloadOptions, r Reporter) {
	if !r.Begin(item) {
		w.logger.Debug("item cancelled before dispatch", zap.String("source", item.Source))
		return
	}

	itemCtx := ctx
	if w.itemTimeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, w.itemTimeout)
		defer cancel()
	}

	out := w.run(ctx, itemCtx, item, opts, r)
	r.Finish(item, out)

	fields := []zap.Field{
		zap.String("source", item.Source),
		zap.String("state", out.State.String()),
	}
	switch out.State {
	case model.StateFailed:
		w.logger.Warn("item failed", append(fields, zap.String("category", string(out.Category)), zap.Error(out.Err))...)
	case model.StateCompleted:
		w.logger.Info("item completed", append(fields, zap.String("path", out.OutputPath))...)
	default:
		w.logger.Info("item cancelled", fields...)
	}
}

func (w *ItemWorker) run(batchCtx, itemCtx context.Context, item *model.MediaItem, opts model.DownloadOptions, r Reporter) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			err := &FetchError{Err: fmt.Errorf("internal error: %v", p)}
			out = w.failure(batchCtx, itemCtx, err)
		}
	}()

	md, err := w.resolve(itemCtx, item.Source)
	if err != nil {
		return w.failure(batchCtx, itemCtx, err)
	}
	r.Resolved(item, md)

	if err := itemCtx.Err(); err != nil {
		return w.failure(batchCtx, itemCtx, err)
	}

	debouncer := progress.New(w.progressInterval)
	report := func(fraction float64) {
		if itemCtx.Err() != nil {
			return
		}
		if fraction < 0 {
			fraction = 0
		}
		if debouncer.ShouldUpdate(fraction) {
			r.Progress(item, fraction)
		}
	}

	path, err := w.fetcher.Download(itemCtx, md, opts, report)
	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			err = &FetchError{Err: err}
		}
		return w.failure(batchCtx, itemCtx, err)
	}
	if path == "" {
		return w.failure(batchCtx, itemCtx, &FetchError{Err: errors.New("fetcher returned no output path")})
	}
	return Outcome{State: model.StateCompleted, OutputPath: path}
}

// resolve returns cached metadata or resolves it once per source across workers.
// A follower whose leader gave up on its own context joins a fresh lookup.
func (w *ItemWorker) resolve(ctx context.Context, source string) (model.Metadata, error) {
	key := cache.Key(source)
	for {
		if w.cache != nil {
			if md, ok := w.cache.Get(key); ok {
				return md, nil
			}
		}

		led := false
		ch := w.flight.DoChan(key, func() (v any, err error) {
			led = true
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("extractor panic: %v", p)
				}
			}()
			md, err := w.extractor.Resolve(ctx, source)
			if err != nil {
				return nil, err
			}
			if w.cache != nil {
				w.cache.Set(key, md)
			}
			return md, nil
		})

		var res singleflight.Result
		select {
		case <-ctx.Done():
			return model.Metadata{}, ctx.Err()
		case res = <-ch:
		}

		if res.Err == nil {
			return res.Val.(model.Metadata), nil
		}
		if !led && ctx.Err() == nil && isContextError(res.Err) {
			w.logger.Debug("shared resolution abandoned, retrying", zap.String("source", source))
			continue
		}
		var re *ResolutionError
		if errors.As(res.Err, &re) {
			return model.Metadata{}, res.Err
		}
		return model.Metadata{}, &ResolutionError{URL: source, Err: res.Err}
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (w *ItemWorker) failure(batchCtx, itemCtx context.Context, err error) Outcome {
	state, category := classify(batchCtx, itemCtx, err)
	out := Outcome{State: state, Category: category, Err: err}
	if state == model.StateFailed {
		if category == model.CategoryTimedOut {
			out.Detail = fmt.Sprintf("no result within %s", w.itemTimeout)
		} else {
			out.Detail = Describe(err)
		}
	}
	return out
}
