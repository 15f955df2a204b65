package platform

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kkdai/youtube/v2"

	"github.com/ytget/yt-batch-downloader/internal/model"
	"github.com/ytget/yt-batch-downloader/internal/transcode"
)

var _ AudioTranscoder = (*transcode.Service)(nil)

func TestProgressWriter(t *testing.T) {
	var got []float64
	pw := &progressWriter{total: 10, report: func(f float64) { got = append(got, f) }}

	if _, err := io.Copy(pw, strings.NewReader("0123456789")); err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 || got[len(got)-1] != 1.0 {
		t.Errorf("final fraction = %v, expected 1.0", got)
	}

	silent := &progressWriter{report: func(float64) { t.Error("unknown total must not report") }}
	_, _ = silent.Write([]byte("abc"))
}

func TestContextReader(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &contextReader{ctx: ctx, r: strings.NewReader("data")}

	buf := make([]byte, 2)
	if _, err := r.Read(buf); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	cancel()
	if _, err := r.Read(buf); !errors.Is(err, context.Canceled) {
		t.Errorf("Read() after cancel = %v, expected context.Canceled", err)
	}
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		err      error
		contains string
	}{
		{youtube.ErrVideoPrivate, "private"},
		{youtube.ErrLoginRequired, "age-restricted"},
		{youtube.ErrUnexpectedStatusCode(403), "HTTP 403"},
		{youtube.ErrPlayabiltyStatus{Status: "ERROR", Reason: "This video has been removed"}, "unavailable"},
	}

	for _, test := range tests {
		got := translateError(test.err)
		if !strings.Contains(got.Error(), test.contains) {
			t.Errorf("translateError(%v) = %q, expected to contain %q", test.err, got, test.contains)
		}
		if !errors.Is(got, test.err) {
			t.Errorf("translateError(%v) lost the original error", test.err)
		}
	}

	plain := errors.New("plain")
	if translateError(plain) != plain {
		t.Error("unknown errors should pass through")
	}
}

func TestMetadataFromVideo(t *testing.T) {
	v := &youtube.Video{ID: "dQw4w9WgXcQ", Title: "Song", Author: "Artist"}
	md := metadataFromVideo(v)

	if md.URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("URL = %q", md.URL)
	}
	if md.Payload != v {
		t.Error("payload should carry the resolved video")
	}
}

func TestDownload_NoFormat(t *testing.T) {
	y := NewYouTube(nil, nil, nil)
	md := model.Metadata{Payload: &youtube.Video{ID: "x", Title: "x"}}

	_, err := y.Download(context.Background(), md, model.DownloadOptions{Directory: t.TempDir(), Mode: model.ModeAudio}, func(float64) {})
	if err == nil {
		t.Error("expected error when no format is available")
	}
}
