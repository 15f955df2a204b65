package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/yt-batch-downloader/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMetadataCache_TTL(t *testing.T) {
	clock := newFakeClock()
	c := NewMetadataCache(10*time.Second, WithClock(clock.Now))

	c.Set("k", model.Metadata{Title: "t"})

	clock.Advance(9 * time.Second)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "t", got.Title)

	clock.Advance(time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry must expire once age reaches the TTL")
	assert.Equal(t, 0, c.Len(), "expired entry should be removed on lookup")
}

func TestMetadataCache_SetRefreshesTimestamp(t *testing.T) {
	clock := newFakeClock()
	c := NewMetadataCache(10*time.Second, WithClock(clock.Now))

	c.Set("k", model.Metadata{Title: "old"})
	clock.Advance(8 * time.Second)
	c.Set("k", model.Metadata{Title: "new"})
	clock.Advance(8 * time.Second)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", got.Title)
}

func TestMetadataCache_ClearExpired(t *testing.T) {
	clock := newFakeClock()
	c := NewMetadataCache(10*time.Second, WithClock(clock.Now))

	c.Set("a", model.Metadata{})
	c.Set("b", model.Metadata{})
	clock.Advance(6 * time.Second)
	c.Set("c", model.Metadata{})
	clock.Advance(5 * time.Second)

	assert.Equal(t, 2, c.ClearExpired())
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("c")
	assert.True(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestMetadataCache_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, NewMetadataCache(0).TTL())
	assert.Equal(t, time.Minute, NewMetadataCache(time.Minute).TTL())
}

func TestMetadataCache_Concurrent(t *testing.T) {
	c := NewMetadataCache(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%10)
				c.Set(key, model.Metadata{ID: key})
				if md, ok := c.Get(key); ok {
					assert.Equal(t, key, md.ID)
				}
				if j%25 == 0 {
					c.ClearExpired()
				}
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, c.Len())
}

func TestMetadataCache_Janitor(t *testing.T) {
	clock := newFakeClock()
	c := NewMetadataCache(time.Second, WithClock(clock.Now))
	c.Set("k", model.Metadata{})
	clock.Advance(2 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.StartJanitor(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestKey(t *testing.T) {
	const canonical = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

	tests := []struct {
		in       string
		expected string
	}{
		{"", ""},
		{"dQw4w9WgXcQ", canonical},
		{"  https://www.youtube.com/watch?v=dQw4w9WgXcQ  ", canonical},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&list=PL1#t=10", canonical},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", canonical},
		{"https://youtu.be/dQw4w9WgXcQ", canonical},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", canonical},
		{"HTTPS://Example.COM/a/B?x=1#frag", "https://example.com/a/B?x=1"},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			assert.Equal(t, test.expected, Key(test.in))
		})
	}
}
