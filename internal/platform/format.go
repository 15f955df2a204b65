package platform

import (
	"fmt"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/ytget/yt-batch-downloader/internal/model"
)

// SelectFormat picks the stream to fetch for mode and returns it with the
// file extension matching its container.
// Video mode prefers the tallest progressive mp4 with an audio track; audio
// mode prefers the highest bitrate audio/mp4 stream, then any audio stream.
func SelectFormat(formats youtube.FormatList, mode model.DownloadMode) (*youtube.Format, string, error) {
	var candidates youtube.FormatList
	switch mode {
	case model.ModeAudio:
		candidates = formats.Type("audio/mp4")
		if len(candidates) == 0 {
			candidates = formats.Type("audio")
		}
	default:
		withAudio := formats.WithAudioChannels()
		candidates = withAudio.Type("video/mp4")
		if len(candidates) == 0 {
			candidates = withAudio.Type("video")
		}
	}
	if len(candidates) == 0 {
		return nil, "", fmt.Errorf("no %s format available", mode)
	}

	best := candidates[0]
	for _, f := range candidates[1:] {
		if better(f, best, mode) {
			best = f
		}
	}
	return &best, extensionFor(best.MimeType), nil
}

func better(a, b youtube.Format, mode model.DownloadMode) bool {
	if mode != model.ModeAudio && a.Height != b.Height {
		return a.Height > b.Height
	}
	return a.Bitrate > b.Bitrate
}

// extensionFor maps a MIME type such as `audio/mp4; codecs="mp4a.40.2"` to a file extension
func extensionFor(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	switch strings.TrimSpace(base) {
	case "audio/mp4":
		return ".m4a"
	case "audio/webm", "video/webm":
		return ".webm"
	case "video/3gpp":
		return ".3gp"
	default:
		return ".mp4"
	}
}
