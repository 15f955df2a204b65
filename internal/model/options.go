package model

import (
	"fmt"
	"strings"
)

// DownloadMode selects which streams are fetched for an item
type DownloadMode string

const (
	// ModeVideo downloads a progressive stream with video and audio
	ModeVideo DownloadMode = "video"
	// ModeAudio downloads the best audio stream only
	ModeAudio DownloadMode = "audio"
)

// DefaultSubtitleLang is used when subtitles are requested without a language
const DefaultSubtitleLang = "en"

// ParseDownloadMode converts a user supplied string into a DownloadMode
func ParseDownloadMode(s string) (DownloadMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "video", "mp4":
		return ModeVideo, nil
	case "audio", "mp3":
		return ModeAudio, nil
	default:
		return "", fmt.Errorf("unknown download mode %q", s)
	}
}

// DownloadOptions is the immutable per-batch configuration handed to every worker
type DownloadOptions struct {
	Mode         DownloadMode
	Directory    string
	Subtitles    bool
	SubtitleLang string
}

// Validate checks the options and fills defaults for optional fields
func (o DownloadOptions) Validate() (DownloadOptions, error) {
	if o.Directory == "" {
		return o, fmt.Errorf("download directory is required")
	}
	if o.Mode == "" {
		o.Mode = ModeVideo
	}
	if o.Mode != ModeVideo && o.Mode != ModeAudio {
		return o, fmt.Errorf("unknown download mode %q", o.Mode)
	}
	if o.Subtitles && o.SubtitleLang == "" {
		o.SubtitleLang = DefaultSubtitleLang
	}
	return o, nil
}
