package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/ytget/ytdlp/v2"
	"go.uber.org/zap"

	"github.com/ytget/yt-batch-downloader/internal/model"
)

// Timeout constants
const (
	DefaultPlaylistParseTimeout = 60 * time.Second
)

// Default values
const (
	DefaultPlaylistTitle = "Untitled Playlist"
	DefaultTitleSuffix   = " - Playlist"
	MaxTitleLength       = 50
	TitleTruncateSuffix  = "..."
	MinPrefixLength      = 10
)

// playlistEntry is one listed video
type playlistEntry struct {
	ID       string
	Title    string
	Duration time.Duration
}

// listFunc lists a playlist and returns its title (possibly empty) and entries
type listFunc func(ctx context.Context, playlistURL, playlistID string) (string, []playlistEntry, error)

// resolver is the subset of the Extractor used for single-video URLs
type resolver interface {
	Resolve(ctx context.Context, url string) (model.Metadata, error)
}

// PlaylistParserService turns a URL into a selectable playlist
type PlaylistParserService struct {
	timeout  time.Duration
	primary  listFunc
	fallback listFunc
	videos   resolver
	logger   *zap.Logger
}

// NewPlaylistParserService creates a parser listing through ytdlp first and
// the kkdai client second. videos resolves single-video URLs.
func NewPlaylistParserService(client *youtube.Client, videos resolver, logger *zap.Logger) *PlaylistParserService {
	if client == nil {
		client = &youtube.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlaylistParserService{
		timeout:  DefaultPlaylistParseTimeout,
		primary:  listWithYTDLP,
		fallback: listWithClient(client),
		videos:   videos,
		logger:   logger,
	}
}

// SetTimeout sets the timeout for playlist parsing
func (p *PlaylistParserService) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// ParsePlaylist resolves url into a playlist whose items are all selected.
// A plain video URL yields a playlist with one item.
func (p *PlaylistParserService) ParsePlaylist(ctx context.Context, url string) (*model.Playlist, error) {
	url = strings.TrimSpace(url)
	if err := ValidateYouTubeURL(url); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	playlist := model.NewPlaylist(url)

	if !IsPlaylistURL(url) {
		if p.videos == nil {
			return nil, errors.New("single video lookup is not configured")
		}
		md, err := p.videos.Resolve(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve video: %w", err)
		}
		playlist.ID = md.ID
		playlist.Title = md.Title
		playlist.Add(model.NewMediaItem(VideoURL(md.ID), md.ID, md.Title, md.Duration))
		return playlist, nil
	}

	playlistID, err := ExtractPlaylistID(url)
	if err != nil {
		return nil, err
	}
	playlist.ID = playlistID

	title, entries, err := p.primary(ctx, url, playlistID)
	if err != nil || len(entries) == 0 {
		p.logger.Warn("primary playlist listing failed, trying fallback",
			zap.String("playlist", playlistID), zap.Int("entries", len(entries)), zap.Error(err))
		var fbErr error
		title, entries, fbErr = p.fallback(ctx, url, playlistID)
		if fbErr != nil {
			return nil, fmt.Errorf("failed to get playlist items: %w", errors.Join(err, fbErr))
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("playlist %s has no videos", playlistID)
	}

	for _, e := range entries {
		playlist.Add(model.NewMediaItem(VideoURL(e.ID), e.ID, e.Title, e.Duration))
	}
	if title == "" {
		title = extractPlaylistTitle(entries)
	}
	playlist.Title = title

	p.logger.Info("playlist parsed", zap.String("playlist", playlistID), zap.Int("videos", len(entries)))
	return playlist, nil
}

func listWithYTDLP(ctx context.Context, _ string, playlistID string) (string, []playlistEntry, error) {
	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return "", nil, err
	}
	entries := make([]playlistEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, playlistEntry{ID: it.VideoID, Title: it.Title})
	}
	return "", entries, nil
}

func listWithClient(client *youtube.Client) listFunc {
	return func(ctx context.Context, playlistURL, _ string) (string, []playlistEntry, error) {
		pl, err := client.GetPlaylistContext(ctx, playlistURL)
		if err != nil {
			return "", nil, translateError(err)
		}
		entries := make([]playlistEntry, 0, len(pl.Videos))
		for _, v := range pl.Videos {
			entries = append(entries, playlistEntry{ID: v.ID, Title: v.Title, Duration: v.Duration})
		}
		return pl.Title, entries, nil
	}
}

// extractPlaylistTitle derives a title from the common prefix of the first
// two video titles, or from the first title alone
func extractPlaylistTitle(entries []playlistEntry) string {
	if len(entries) == 0 {
		return DefaultPlaylistTitle
	}

	if len(entries) > 1 {
		prefix := strings.TrimSpace(findCommonPrefix(entries[0].Title, entries[1].Title))
		prefix = strings.TrimRight(prefix, " -|:")
		if len(prefix) >= MinPrefixLength {
			return prefix + DefaultTitleSuffix
		}
	}

	first := entries[0].Title
	if runes := []rune(first); len(runes) > MaxTitleLength {
		first = string(runes[:MaxTitleLength]) + TitleTruncateSuffix
	}
	return first + DefaultTitleSuffix
}

func findCommonPrefix(s1, s2 string) string {
	r1, r2 := []rune(s1), []rune(s2)
	n := min(len(r1), len(r2))
	i := 0
	for i < n && r1[i] == r2[i] {
		i++
	}
	return string(r1[:i])
}
