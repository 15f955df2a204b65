package platform

import (
	"errors"
	"testing"
)

func TestValidateYouTubeURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr error
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", nil},
		{"https://youtube.com/playlist?list=PL123", nil},
		{"http://m.youtube.com/watch?v=abc", nil},
		{"https://music.youtube.com/watch?v=abc", nil},
		{"https://youtu.be/dQw4w9WgXcQ", nil},
		{"youtube.com/watch?v=abc", nil},
		{"   ", ErrEmptyURL},
		{"", ErrEmptyURL},
		{"https://vimeo.com/123", ErrNotYouTubeURL},
		{"https://youtube.com.evil.io/watch?v=1", ErrNotYouTubeURL},
		{"ftp://youtube.com/x", ErrNotYouTubeURL},
	}

	for _, test := range tests {
		t.Run(test.url, func(t *testing.T) {
			err := ValidateYouTubeURL(test.url)
			if test.wantErr == nil && err != nil {
				t.Errorf("ValidateYouTubeURL(%q) = %v, expected nil", test.url, err)
			}
			if test.wantErr != nil && !errors.Is(err, test.wantErr) {
				t.Errorf("ValidateYouTubeURL(%q) = %v, expected %v", test.url, err, test.wantErr)
			}
		})
	}
}

func TestExtractPlaylistID(t *testing.T) {
	tests := []struct {
		url      string
		expected string
		wantErr  bool
	}{
		{"https://www.youtube.com/playlist?list=PLrAXtmRdnEQy6nuLMH", "PLrAXtmRdnEQy6nuLMH", false},
		{"https://www.youtube.com/watch?v=abc&list=PL42&start_radio=1", "PL42", false},
		{"https://www.youtube.com/playlist?list=PL42#top", "PL42", false},
		{"https://www.youtube.com/watch?v=abc", "", true},
		{"https://www.youtube.com/playlist?list=", "", true},
	}

	for _, test := range tests {
		got, err := ExtractPlaylistID(test.url)
		if (err != nil) != test.wantErr {
			t.Errorf("ExtractPlaylistID(%q) error = %v, wantErr %v", test.url, err, test.wantErr)
			continue
		}
		if got != test.expected {
			t.Errorf("ExtractPlaylistID(%q) = %q, expected %q", test.url, got, test.expected)
		}
	}
}

func TestVideoURL(t *testing.T) {
	if got := VideoURL("abc123"); got != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("VideoURL(id) = %q", got)
	}
	if got := VideoURL("https://youtu.be/abc"); got != "https://youtu.be/abc" {
		t.Errorf("VideoURL(url) = %q", got)
	}
}
