package download

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/singleflight"

	"github.com/ytget/yt-batch-downloader/internal/cache"
	"github.com/ytget/yt-batch-downloader/internal/model"
)

// directReporter applies transitions without a coordinator
type directReporter struct {
	mu        sync.Mutex
	cancelled bool
	outcomes  []Outcome
	progress  []float64
}

func (r *directReporter) Begin(item *model.MediaItem) bool {
	if r.cancelled {
		_ = item.Cancel()
		return false
	}
	return item.Start() == nil
}

func (r *directReporter) Resolved(item *model.MediaItem, md model.Metadata) {
	item.ApplyMetadata(md)
}

func (r *directReporter) Progress(item *model.MediaItem, fraction float64) {
	r.mu.Lock()
	r.progress = append(r.progress, fraction)
	r.mu.Unlock()
	item.SetProgress(fraction)
}

func (r *directReporter) Finish(item *model.MediaItem, out Outcome) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, out)
	r.mu.Unlock()
	switch out.State {
	case model.StateCompleted:
		_ = item.Complete(out.OutputPath)
	case model.StateCancelled:
		_ = item.Cancel()
	default:
		_ = item.Fail(out.Category, out.Detail)
	}
}

func TestItemWorker_CacheHitSkipsExtractor(t *testing.T) {
	ext := newFakeExtractor()
	mc := cache.NewMetadataCache(time.Minute)
	mc.Set(cache.Key(source(1)), model.Metadata{ID: "cached", Title: "Cached title"})

	w := NewItemWorker(ext, &fakeFetcher{}, mc, nil, zaptest.NewLogger(t))
	item := model.NewMediaItem(source(1), "vid1", "", 0)
	r := &directReporter{}

	w.Execute(context.Background(), item, model.DownloadOptions{Directory: t.TempDir()}, r)

	assert.Equal(t, 0, ext.Calls(source(1)))
	snap := item.Snapshot()
	assert.Equal(t, model.StateCompleted, snap.State)
	assert.Equal(t, "Cached title", snap.Title)
	assert.Equal(t, "/downloads/cached.mp4", snap.OutputPath)
}

func TestItemWorker_CancelledBeforeDispatch(t *testing.T) {
	ext := newFakeExtractor()
	fetcher := &fakeFetcher{}
	w := NewItemWorker(ext, fetcher, nil, nil, nil)
	item := model.NewMediaItem(source(1), "vid1", "", 0)
	r := &directReporter{cancelled: true}

	w.Execute(context.Background(), item, model.DownloadOptions{}, r)

	assert.Equal(t, model.StateCancelled, item.State())
	assert.Equal(t, 0, ext.Calls(source(1)))
	assert.Empty(t, fetcher.Order())
	assert.Empty(t, r.outcomes)
}

func TestItemWorker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewItemWorker(newFakeExtractor(), &fakeFetcher{}, nil, nil, nil)
	item := model.NewMediaItem(source(1), "vid1", "", 0)
	r := &directReporter{}
	w.Execute(ctx, item, model.DownloadOptions{}, r)

	require.Len(t, r.outcomes, 1)
	assert.Equal(t, model.StateCancelled, r.outcomes[0].State)
	assert.Equal(t, model.StateCancelled, item.State())
}

func TestItemWorker_SingleResolutionPerSource(t *testing.T) {
	release := make(chan struct{})
	ext := &blockingExtractor{release: release}
	flight := &singleflight.Group{}
	mc := cache.NewMetadataCache(time.Minute)
	w := NewItemWorker(ext, &fakeFetcher{}, mc, flight, nil)

	var wg sync.WaitGroup
	items := []*model.MediaItem{
		model.NewMediaItem(source(1), "vid1", "", 0),
		model.NewMediaItem("https://youtu.be/vid1", "vid1", "", 0),
	}
	for _, item := range items {
		wg.Add(1)
		go func(item *model.MediaItem) {
			defer wg.Done()
			w.Execute(context.Background(), item, model.DownloadOptions{}, &directReporter{})
		}(item)
	}

	assert.Eventually(t, func() bool { return ext.calls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, ext.calls.Load())
	for _, item := range items {
		assert.Equal(t, model.StateCompleted, item.State())
	}
}

func TestClassify(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancel2 := context.WithTimeout(context.Background(), -time.Second)
	defer cancel2()
	live := context.Background()

	tests := []struct {
		name     string
		batch    context.Context
		item     context.Context
		err      error
		state    model.ItemState
		category model.FailureCategory
	}{
		{"batch cancelled", cancelled, cancelled, &FetchError{Err: context.Canceled}, model.StateCancelled, model.CategoryNone},
		{"explicit cancel", live, live, &FetchError{Err: ErrCancelled}, model.StateCancelled, model.CategoryNone},
		{"timeout", live, expired, &FetchError{Err: context.DeadlineExceeded}, model.StateFailed, model.CategoryTimedOut},
		{"resolution", live, live, &ResolutionError{URL: "u", Err: errUnreachable}, model.StateFailed, model.CategorySourceUnreachable},
		{"fetch", live, live, &FetchError{Err: errUnreachable}, model.StateFailed, model.CategoryDownloadFailed},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			state, category := classify(test.batch, test.item, test.err)
			assert.Equal(t, test.state, state)
			assert.Equal(t, test.category, category)
		})
	}
}

func TestDescribe(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}

	tests := []struct {
		err      error
		expected string
	}{
		{nil, ""},
		{&FetchError{Err: errString("HTTP Error 403: Forbidden")}, "access denied by the server (HTTP 403)"},
		{&ResolutionError{URL: "https://x/403", Err: errString("video is private")}, "video is private"},
		{errString("Sign in to confirm your age"), "video is age-restricted and requires sign-in"},
		{errString("exec: \"ffmpeg\": executable file not found in $PATH"), "ffmpeg is missing or failed; install ffmpeg and retry"},
		{errString("dial tcp: lookup youtube.com: no such host"), "network error, check your connection"},
		{errString("first line\nsecond line"), "first line"},
		{errString(string(long)), string(long[:117]) + "..."},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, Describe(test.err))
	}
}

type errString string

func (e errString) Error() string { return string(e) }
