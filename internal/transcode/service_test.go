package transcode

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBuildFFmpegArgs(t *testing.T) {
	args := BuildFFmpegArgs("/input.m4a", "/output.mp3")

	expectedArgs := []string{
		"-y",
		"-i", "/input.m4a",
		"-vn",
		"-c:a", AudioCodec,
		"-b:a", AudioBitrate,
		"-progress", "pipe:2",
		"-nostats",
		"/output.mp3",
	}

	if len(args) != len(expectedArgs) {
		t.Fatalf("Expected %d args, got %d", len(expectedArgs), len(args))
	}
	for i, expected := range expectedArgs {
		if args[i] != expected {
			t.Errorf("Arg %d: expected %s, got %s", i, expected, args[i])
		}
	}
}

func TestAudioOutputPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/path/to/song.m4a", "/path/to/song.mp3"},
		{"/path/to/song.webm", "/path/to/song.mp3"},
		{"song", "song.mp3"},
	}

	for _, test := range tests {
		if result := AudioOutputPath(test.input); result != test.expected {
			t.Errorf("AudioOutputPath(%s) = %s, expected %s", test.input, result, test.expected)
		}
	}
}

func TestParseProgressLine(t *testing.T) {
	tests := []struct {
		line     string
		total    float64
		expected float64
		ok       bool
	}{
		{"out_time_us=5000000", 10, 0.5, true},
		{"  out_time_us=10000000  ", 10, 1.0, true},
		{"out_time_us=20000000", 10, 1.0, true},
		{"out_time_us=N/A", 10, 0, false},
		{"out_time_us=-1", 10, 0, false},
		{"progress=continue", 10, 0, false},
		{"out_time_us=5000000", 0, 0, false},
	}

	for _, test := range tests {
		got, ok := ParseProgressLine(test.line, test.total)
		if ok != test.ok || got != test.expected {
			t.Errorf("ParseProgressLine(%q, %v) = %v, %v; expected %v, %v", test.line, test.total, got, ok, test.expected, test.ok)
		}
	}
}

func TestMonitorProgress(t *testing.T) {
	input := "frame=1\nout_time_us=1000000\nprogress=continue\nout_time_us=2000000\nprogress=end\n"
	var got []float64
	monitorProgress(strings.NewReader(input), 4, func(f float64) { got = append(got, f) })

	if len(got) != 2 || got[0] != 0.25 || got[1] != 0.5 {
		t.Errorf("monitorProgress reported %v, expected [0.25 0.5]", got)
	}
}

func TestAvailable_MissingBinary(t *testing.T) {
	s := NewService(nil)
	s.ffmpeg = "definitely-not-ffmpeg-binary"

	if err := s.Available(); !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("Available() = %v, expected ErrFFmpegNotFound", err)
	}
}

func TestExtractAudio_MissingInput(t *testing.T) {
	s := NewService(nil)
	missing := filepath.Join(t.TempDir(), "missing.m4a")

	err := s.ExtractAudio(context.Background(), missing, AudioOutputPath(missing), time.Second, nil)
	if err == nil {
		t.Error("Expected error for missing input")
	}
}

func TestTagAudio_MissingFile(t *testing.T) {
	s := NewService(nil)
	if err := s.TagAudio(filepath.Join(t.TempDir(), "absent.mp3"), "Title", "Artist"); err == nil {
		t.Error("expected an error for a missing file")
	}
}
