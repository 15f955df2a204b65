package transcode

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// FFmpeg constants for audio extraction
const (
	AudioCodec   = "libmp3lame"
	AudioBitrate = "192k"

	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressPipeTarget  = "pipe:2"
	ProgressTimePrefix  = "out_time_us="
	OutputExtensionMP3  = ".mp3"
)

// ErrFFmpegNotFound is returned when ffmpeg is not on PATH
var ErrFFmpegNotFound = errors.New("ffmpeg not found in PATH")

// Service runs ffmpeg conversions
type Service struct {
	ffmpeg  string
	ffprobe string
	logger  *zap.Logger
}

// NewService creates a transcoder using ffmpeg and ffprobe from PATH
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ffmpeg:  FFmpegCommand,
		ffprobe: FFprobeCommand,
		logger:  logger,
	}
}

// Available reports whether ffmpeg can be executed
func (s *Service) Available() error {
	if _, err := exec.LookPath(s.ffmpeg); err != nil {
		return fmt.Errorf("%w: %v", ErrFFmpegNotFound, err)
	}
	return nil
}

// ExtractAudio converts input into an mp3 at output. duration is used to
// compute progress; when zero it is probed with ffprobe. The partial output
// is removed on failure or cancellation.
func (s *Service) ExtractAudio(ctx context.Context, input, output string, duration time.Duration, progress func(float64)) error {
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("input file does not exist: %w", err)
	}

	total := duration.Seconds()
	if total <= 0 {
		probed, err := s.probeDuration(ctx, input)
		if err != nil {
			s.logger.Debug("ffprobe failed, progress disabled", zap.String("input", input), zap.Error(err))
		}
		total = probed
	}

	cmd := exec.CommandContext(ctx, s.ffmpeg, BuildFFmpegArgs(input, output)...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		monitorProgress(stderr, total, progress)
	}()

	<-done
	err = cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		_ = os.Remove(output)
		return ctxErr
	}
	if err != nil {
		_ = os.Remove(output)
		return fmt.Errorf("ffmpeg failed: %w", err)
	}

	s.logger.Debug("audio extracted", zap.String("output", output))
	return nil
}

// BuildFFmpegArgs builds the ffmpeg command arguments
func BuildFFmpegArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-c:a", AudioCodec,
		"-b:a", AudioBitrate,
		"-progress", ProgressPipeTarget,
		"-nostats",
		outputPath,
	}
}

// AudioOutputPath returns inputPath with its extension replaced by .mp3
func AudioOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + OutputExtensionMP3
}

// probeDuration gets the duration of a media file in seconds using ffprobe
func (s *Service) probeDuration(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, s.ffprobe, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}

// monitorProgress reads ffmpeg -progress output until EOF
func monitorProgress(r io.Reader, totalSeconds float64, report func(float64)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if f, ok := ParseProgressLine(scanner.Text(), totalSeconds); ok && report != nil {
			report(f)
		}
	}
}

// ParseProgressLine parses an "out_time_us=N" line into a fraction of totalSeconds
func ParseProgressLine(line string, totalSeconds float64) (float64, bool) {
	line = strings.TrimSpace(line)
	if totalSeconds <= 0 || !strings.HasPrefix(line, ProgressTimePrefix) {
		return 0, false
	}

	us, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
	if err != nil || us < 0 {
		return 0, false
	}

	fraction := float64(us) / 1e6 / totalSeconds
	if fraction > 1.0 {
		fraction = 1.0
	}
	return fraction, true
}
