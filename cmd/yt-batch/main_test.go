package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ytget/yt-batch-downloader/internal/config"
	"github.com/ytget/yt-batch-downloader/internal/download"
	"github.com/ytget/yt-batch-downloader/internal/history"
	"github.com/ytget/yt-batch-downloader/internal/model"
)

func TestApplyFlags(t *testing.T) {
	cfg := &config.File{Batch: config.BatchConfig{MaxParallel: 2, Mode: "video", SubtitleLang: "en"}}

	applyFlags(cfg, options{parallel: 40, audio: true, dir: "/tmp/out", subs: true, lang: "de", timeout: time.Minute})

	assert.Equal(t, config.MaxMaxParallel, cfg.Batch.MaxParallel)
	assert.Equal(t, "audio", cfg.Batch.Mode)
	assert.Equal(t, "/tmp/out", cfg.Batch.Directory)
	assert.True(t, cfg.Batch.Subtitles)
	assert.Equal(t, "de", cfg.Batch.SubtitleLang)
	assert.Equal(t, time.Minute, cfg.Batch.ItemTimeout)
}

func TestApplyFlags_KeepsConfigWhenUnset(t *testing.T) {
	cfg := &config.File{Batch: config.BatchConfig{MaxParallel: 3, Mode: "video", Directory: "/music"}}

	applyFlags(cfg, options{})

	assert.Equal(t, 3, cfg.Batch.MaxParallel)
	assert.Equal(t, "video", cfg.Batch.Mode)
	assert.Equal(t, "/music", cfg.Batch.Directory)
}

func TestFailedPlaylist(t *testing.T) {
	store, err := history.Open("")
	require.NoError(t, err)

	require.NoError(t, store.RecordBatch(download.BatchRecord{
		ID: "batch-1",
		Items: []download.ItemRecord{
			{Source: "a", State: model.StateCompleted},
			{Source: "b", State: model.StateFailed},
		},
	}))
	require.NoError(t, store.RecordBatch(download.BatchRecord{ID: "batch-2"}))

	playlist, err := failedPlaylist(store, "batch-1")
	require.NoError(t, err)
	require.Equal(t, 1, playlist.Len())
	assert.Equal(t, "b", playlist.Items[0].Source)
	assert.True(t, playlist.Items[0].Selected())

	_, err = failedPlaylist(store, "batch-2")
	assert.Error(t, err)
}

func TestConsolePresenter(t *testing.T) {
	var out bytes.Buffer
	p := newConsolePresenter(&out, zaptest.NewLogger(t))

	p.Notify(download.Event{Kind: download.EventBatchStarted, Summary: model.Summary{Total: 2}})
	p.Notify(download.Event{
		Kind:    download.EventItemChanged,
		Item:    model.ItemSnapshot{Title: "First", State: model.StateDownloading, Progress: 0.5},
		Summary: model.Summary{Total: 2},
	})
	p.Notify(download.Event{
		Kind:    download.EventItemChanged,
		Item:    model.ItemSnapshot{Title: "First", State: model.StateCompleted, OutputPath: "/out/First.mp4"},
		Summary: model.Summary{Total: 2, Completed: 1},
	})
	p.Notify(download.Event{
		Kind:    download.EventItemChanged,
		Item:    model.ItemSnapshot{Title: "Second", State: model.StateFailed, Category: model.CategorySourceUnreachable, Error: "video is private"},
		Summary: model.Summary{Total: 2, Completed: 1, Failed: 1},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Downloading: 0/2", lines[0])
	assert.Contains(t, lines[1], "[1/2]")
	assert.Contains(t, lines[1], "/out/First.mp4")
	assert.Contains(t, lines[2], "[2/2]")
	assert.Contains(t, lines[2], "source unreachable: video is private")
}
