package download

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/ytget/yt-batch-downloader/internal/cache"
	"github.com/ytget/yt-batch-downloader/internal/model"
)

type fakeExtractor struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
	panic map[string]bool
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{
		calls: make(map[string]int),
		fail:  make(map[string]error),
		panic: make(map[string]bool),
	}
}

func (f *fakeExtractor) Resolve(_ context.Context, url string) (model.Metadata, error) {
	f.mu.Lock()
	f.calls[url]++
	err := f.fail[url]
	shouldPanic := f.panic[url]
	f.mu.Unlock()

	if shouldPanic {
		panic("extractor exploded")
	}
	if err != nil {
		return model.Metadata{}, err
	}
	return model.Metadata{ID: url, Title: "Title of " + url, URL: url}, nil
}

func (f *fakeExtractor) Calls(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

type fakeFetcher struct {
	fn func(ctx context.Context, md model.Metadata, progress func(float64)) (string, error)

	mu        sync.Mutex
	order     []string
	active    atomic.Int32
	maxActive atomic.Int32
}

func (f *fakeFetcher) Download(ctx context.Context, md model.Metadata, _ model.DownloadOptions, progress func(float64)) (string, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxActive.Load()
		if n <= m || f.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.order = append(f.order, md.ID)
	f.mu.Unlock()

	if f.fn != nil {
		return f.fn(ctx, md, progress)
	}
	progress(0.5)
	time.Sleep(5 * time.Millisecond)
	return "/downloads/" + md.ID + ".mp4", nil
}

func (f *fakeFetcher) Order() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

type recordingPresenter struct {
	mu       sync.Mutex
	events   []Event
	inFlight atomic.Int32
	overlap  atomic.Bool
}

func (p *recordingPresenter) Notify(e Event) {
	if p.inFlight.Add(1) > 1 {
		p.overlap.Store(true)
	}
	defer p.inFlight.Add(-1)

	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *recordingPresenter) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

// Kinds filters recorded events by kind
func (p *recordingPresenter) Kinds(kind EventKind) []Event {
	var out []Event
	for _, e := range p.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// everDownloading returns the batch indexes that were ever reported as Downloading
func (p *recordingPresenter) everDownloading() map[int]bool {
	seen := make(map[int]bool)
	for _, e := range p.Kinds(EventItemChanged) {
		if e.Item.State == model.StateDownloading {
			seen[e.Index] = true
		}
	}
	return seen
}

type memoryRecorder struct {
	mu      sync.Mutex
	records []BatchRecord
}

func (r *memoryRecorder) RecordBatch(rec BatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func source(i int) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=vid%d", i)
}

func newItems(n int) []*model.MediaItem {
	items := make([]*model.MediaItem, n)
	for i := range items {
		items[i] = model.NewMediaItem(source(i+1), fmt.Sprintf("vid%d", i+1), "", 0)
	}
	return items
}

type harness struct {
	extractor *fakeExtractor
	fetcher   *fakeFetcher
	presenter *recordingPresenter
	recorder  *memoryRecorder
	cache     *cache.MetadataCache
	coord     *Coordinator
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	h := &harness{
		extractor: newFakeExtractor(),
		fetcher:   &fakeFetcher{},
		presenter: &recordingPresenter{},
		recorder:  &memoryRecorder{},
		cache:     cache.NewMetadataCache(time.Minute),
	}
	cfg := Config{
		Extractor:        h.extractor,
		Fetcher:          h.fetcher,
		Cache:            h.cache,
		Presenter:        h.presenter,
		Recorder:         h.recorder,
		Logger:           zaptest.NewLogger(t),
		ProgressInterval: time.Nanosecond,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	coord, err := NewCoordinator(cfg)
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	h.coord = coord
	return h
}

func testOptions(t *testing.T) model.DownloadOptions {
	return model.DownloadOptions{Mode: model.ModeVideo, Directory: t.TempDir()}
}

func waitBatch(t *testing.T, b *Batch) model.Summary {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := b.Wait(ctx)
	if err != nil {
		t.Fatalf("batch did not finish: %v", err)
	}
	return s
}

var errUnreachable = errors.New("HTTP 404: not found")

type blockingExtractor struct {
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingExtractor) Resolve(ctx context.Context, url string) (model.Metadata, error) {
	b.calls.Add(1)
	select {
	case <-b.release:
	case <-ctx.Done():
		return model.Metadata{}, ctx.Err()
	}
	return model.Metadata{ID: "vid1", Title: "One", URL: url}, nil
}

// stallingExtractor blocks the first lookup of stall until its context is done
type stallingExtractor struct {
	stall   string
	stalled atomic.Bool
	calls   atomic.Int32
}

func (s *stallingExtractor) Resolve(ctx context.Context, url string) (model.Metadata, error) {
	if url == s.stall {
		s.calls.Add(1)
		if s.stalled.CompareAndSwap(false, true) {
			<-ctx.Done()
			return model.Metadata{}, ctx.Err()
		}
	}
	return model.Metadata{ID: url, Title: "Title of " + url, URL: url}, nil
}
