package platform

import (
	"testing"

	"github.com/kkdai/youtube/v2"

	"github.com/ytget/yt-batch-downloader/internal/model"
)

func testFormats() youtube.FormatList {
	return youtube.FormatList{
		{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Height: 360, Bitrate: 500, AudioChannels: 2},
		{ItagNo: 22, MimeType: `video/mp4; codecs="avc1.64001F, mp4a.40.2"`, Height: 720, Bitrate: 1500, AudioChannels: 2},
		{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`, Height: 1080, Bitrate: 4000},
		{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 128000, AudioChannels: 2},
		{ItagNo: 139, MimeType: `audio/mp4; codecs="mp4a.40.5"`, Bitrate: 48000, AudioChannels: 2},
		{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, Bitrate: 160000, AudioChannels: 2},
	}
}

func TestSelectFormat(t *testing.T) {
	tests := []struct {
		name    string
		formats youtube.FormatList
		mode    model.DownloadMode
		itag    int
		ext     string
		wantErr bool
	}{
		{"video prefers tallest progressive", testFormats(), model.ModeVideo, 22, ".mp4", false},
		{"audio prefers mp4 audio", testFormats(), model.ModeAudio, 140, ".m4a", false},
		{"audio falls back to webm", testFormats()[5:], model.ModeAudio, 251, ".webm", false},
		{"video without audio track", testFormats()[2:3], model.ModeVideo, 0, "", true},
		{"empty", nil, model.ModeAudio, 0, "", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f, ext, err := SelectFormat(test.formats, test.mode)
			if (err != nil) != test.wantErr {
				t.Fatalf("SelectFormat() error = %v, wantErr %v", err, test.wantErr)
			}
			if test.wantErr {
				return
			}
			if f.ItagNo != test.itag || ext != test.ext {
				t.Errorf("SelectFormat() = itag %d %q, expected itag %d %q", f.ItagNo, ext, test.itag, test.ext)
			}
		})
	}
}

func TestExtensionFor(t *testing.T) {
	tests := map[string]string{
		`audio/mp4; codecs="mp4a.40.2"`: ".m4a",
		`audio/webm; codecs="opus"`:     ".webm",
		`video/webm; codecs="vp9"`:      ".webm",
		`video/3gpp`:                    ".3gp",
		`video/mp4`:                     ".mp4",
		``:                              ".mp4",
	}
	for in, expected := range tests {
		if got := extensionFor(in); got != expected {
			t.Errorf("extensionFor(%q) = %q, expected %q", in, got, expected)
		}
	}
}
