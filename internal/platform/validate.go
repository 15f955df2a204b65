package platform

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// URL parameters
const (
	PlaylistURLParam       = "list="
	PlaylistParamSeparator = "&"
)

// YouTubeVideoURLTemplate builds a watch URL from a video id
const YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"

var (
	// ErrEmptyURL is returned for blank input
	ErrEmptyURL = errors.New("enter a URL")
	// ErrNotYouTubeURL is returned for URLs outside the YouTube hosts
	ErrNotYouTubeURL = errors.New("not a YouTube URL")
)

var youtubeHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

// ValidateYouTubeURL checks that raw is an http(s) URL on a YouTube host.
// A scheme-less "youtube.com/..." input is accepted.
func ValidateYouTubeURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrEmptyURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotYouTubeURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrNotYouTubeURL
	}
	if !youtubeHosts[strings.ToLower(u.Hostname())] {
		return ErrNotYouTubeURL
	}
	return nil
}

// IsPlaylistURL reports whether the URL carries a playlist id
func IsPlaylistURL(raw string) bool {
	return strings.Contains(raw, PlaylistURLParam)
}

// ExtractPlaylistID extracts the playlist ID from a YouTube playlist URL.
// Supported forms include
//   - https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID&start_radio=1
//   - https://www.youtube.com/playlist?list=PLAYLIST_ID
func ExtractPlaylistID(raw string) (string, error) {
	if !strings.Contains(raw, PlaylistURLParam) {
		return "", fmt.Errorf("URL does not contain playlist parameter")
	}

	parts := strings.SplitN(raw, PlaylistURLParam, 2)
	playlistID := parts[1]
	if i := strings.Index(playlistID, PlaylistParamSeparator); i >= 0 {
		playlistID = playlistID[:i]
	}
	if i := strings.Index(playlistID, "#"); i >= 0 {
		playlistID = playlistID[:i]
	}

	if playlistID == "" {
		return "", fmt.Errorf("empty playlist ID")
	}
	return playlistID, nil
}

// VideoURL expands a bare video id to a watch URL and leaves URLs untouched
func VideoURL(idOrURL string) string {
	if strings.HasPrefix(idOrURL, "http://") || strings.HasPrefix(idOrURL, "https://") {
		return idOrURL
	}
	return fmt.Sprintf(YouTubeVideoURLTemplate, idOrURL)
}
