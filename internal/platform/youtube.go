package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"github.com/ytget/yt-batch-downloader/internal/cache"
	"github.com/ytget/yt-batch-downloader/internal/model"
)

// Progress share of the stream download when audio is transcoded afterwards
const streamShareWithTranscode = 0.9

// AudioTranscoder converts a downloaded audio stream into the final format
type AudioTranscoder interface {
	Available() error
	ExtractAudio(ctx context.Context, input, output string, duration time.Duration, progress func(float64)) error
	TagAudio(path, title, artist string) error
}

// YouTube resolves and fetches YouTube media. It implements both the
// Extractor and the Fetcher used by the download coordinator.
type YouTube struct {
	client     *youtube.Client
	transcoder AudioTranscoder
	logger     *zap.Logger
}

// NewYouTube creates the adapter. transcoder may be nil, in which case
// audio is kept in its original container.
func NewYouTube(client *youtube.Client, transcoder AudioTranscoder, logger *zap.Logger) *YouTube {
	if client == nil {
		client = &youtube.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YouTube{client: client, transcoder: transcoder, logger: logger}
}

// Resolve fetches the video metadata for url
func (y *YouTube) Resolve(ctx context.Context, url string) (model.Metadata, error) {
	video, err := y.client.GetVideoContext(ctx, VideoURL(url))
	if err != nil {
		return model.Metadata{}, translateError(err)
	}
	return metadataFromVideo(video), nil
}

func metadataFromVideo(v *youtube.Video) model.Metadata {
	return model.Metadata{
		ID:       v.ID,
		Title:    v.Title,
		Author:   v.Author,
		Duration: v.Duration,
		URL:      cache.Key(v.ID),
		Payload:  v,
	}
}

// Download fetches the stream selected by opts, optionally transcodes it to
// mp3 and writes subtitles next to it. It returns the final file path.
func (y *YouTube) Download(ctx context.Context, md model.Metadata, opts model.DownloadOptions, progress func(float64)) (string, error) {
	video, ok := md.Payload.(*youtube.Video)
	if !ok || video == nil {
		v, err := y.client.GetVideoContext(ctx, VideoURL(md.URL))
		if err != nil {
			return "", translateError(err)
		}
		video = v
	}

	format, ext, err := SelectFormat(video.Formats, opts.Mode)
	if err != nil {
		return "", err
	}
	if err := CreateDirectoryIfNotExists(opts.Directory); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	base := SanitizeFilename(video.Title)
	if base == "" {
		base = video.ID
	}

	transcode := opts.Mode == model.ModeAudio && y.transcoder != nil
	if transcode {
		if err := y.transcoder.Available(); err != nil {
			y.logger.Warn("ffmpeg unavailable, keeping original audio container", zap.Error(err))
			transcode = false
		}
	}

	share := 1.0
	if transcode {
		share = streamShareWithTranscode
	}

	target := UniquePath(filepath.Join(opts.Directory, base+ext))
	if err := y.fetchStream(ctx, video, format, target, func(f float64) { progress(f * share) }); err != nil {
		return "", err
	}

	if transcode {
		mp3 := UniquePath(filepath.Join(opts.Directory, base+".mp3"))
		err := y.transcoder.ExtractAudio(ctx, target, mp3, video.Duration, func(f float64) {
			progress(share + (1-share)*f)
		})
		if err != nil {
			_ = os.Remove(mp3)
			return "", fmt.Errorf("ffmpeg conversion failed: %w", err)
		}
		if err := os.Remove(target); err != nil {
			y.logger.Warn("failed to remove intermediate audio", zap.String("path", target), zap.Error(err))
		}
		if err := y.transcoder.TagAudio(mp3, video.Title, video.Author); err != nil {
			y.logger.Warn("failed to tag audio", zap.String("path", mp3), zap.Error(err))
		}
		target = mp3
	}

	if opts.Subtitles {
		y.writeSubtitles(ctx, video, opts.SubtitleLang, filepath.Join(opts.Directory, base))
	}

	return target, nil
}

// fetchStream copies the stream into target through a ".part" file
func (y *YouTube) fetchStream(ctx context.Context, video *youtube.Video, format *youtube.Format, target string, progress func(float64)) error {
	stream, size, err := y.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return translateError(err)
	}
	defer stream.Close()

	part := target + PartialSuffix
	f, err := os.OpenFile(part, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	pw := &progressWriter{total: size, report: progress}
	_, err = io.Copy(io.MultiWriter(f, pw), &contextReader{ctx: ctx, r: stream})
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(part)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("stream copy failed: %w", err)
	}

	if err := os.Rename(part, target); err != nil {
		return fmt.Errorf("failed to finalize file: %w", err)
	}
	return nil
}

// writeSubtitles stores the transcript as "<base>.<lang>.txt". Missing
// transcripts do not fail the item.
func (y *YouTube) writeSubtitles(ctx context.Context, video *youtube.Video, lang, base string) {
	if lang == "" {
		lang = model.DefaultSubtitleLang
	}
	transcript, err := y.client.GetTranscriptCtx(ctx, video, lang)
	if err != nil {
		y.logger.Warn("subtitles unavailable", zap.String("video", video.ID), zap.String("lang", lang), zap.Error(err))
		return
	}
	path := fmt.Sprintf("%s.%s.txt", base, lang)
	if err := os.WriteFile(path, []byte(transcript.String()), DefaultFilePermissions); err != nil {
		y.logger.Warn("failed to write subtitles", zap.String("path", path), zap.Error(err))
	}
}

// progressWriter reports the written fraction of a known total
type progressWriter struct {
	total   int64
	written int64
	report  func(float64)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.total > 0 && p.report != nil {
		p.report(float64(p.written) / float64(p.total))
	}
	return len(b), nil
}

// contextReader stops reading once ctx is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// translateError rewords library errors so they describe the cause plainly
func translateError(err error) error {
	var status youtube.ErrUnexpectedStatusCode
	var playability youtube.ErrPlayabiltyStatus
	switch {
	case errors.Is(err, youtube.ErrVideoPrivate):
		return fmt.Errorf("video is private: %w", err)
	case errors.Is(err, youtube.ErrLoginRequired):
		return fmt.Errorf("video is age-restricted: %w", err)
	case errors.Is(err, youtube.ErrNotPlayableInEmbed):
		return fmt.Errorf("video is blocked for embedded playback: %w", err)
	case errors.As(err, &status):
		return fmt.Errorf("HTTP %d: %w", int(status), err)
	case errors.As(err, &playability):
		return fmt.Errorf("video unavailable (%s): %w", playability.Reason, err)
	}
	return err
}
