package config

import (
	"time"

	"fyne.io/fyne/v2"

	"github.com/ytget/yt-batch-downloader/internal/model"
	"github.com/ytget/yt-batch-downloader/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyDownloadDir  = "download_directory"
	KeyMaxParallel  = "max_parallel_downloads"
	KeyMode         = "download_mode"
	KeySubtitles    = "subtitles_enabled"
	KeySubtitleLang = "subtitle_language"
	KeyLanguage     = "app_language"
	KeyItemTimeout  = "item_timeout_seconds"
	KeyMetadataTTL  = "metadata_ttl_seconds"
	KeyHistoryDir   = "history_directory"
)

// Default values
const (
	DefaultMaxParallel = 2
	MinMaxParallel     = 1
	MaxMaxParallel     = 10
	DefaultMode        = model.ModeVideo
	DefaultLanguage    = "system"
	DefaultMetadataTTL = 300 * time.Second
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.app.Preferences().String(KeyDownloadDir)
	if dir == "" {
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = "/tmp/downloads"
		}
		s.SetDownloadDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.app.Preferences().SetString(KeyDownloadDir, dir)
}

// GetMaxParallelDownloads returns the maximum number of parallel downloads
func (s *Settings) GetMaxParallelDownloads() int {
	value := s.app.Preferences().Int(KeyMaxParallel)
	if value <= 0 {
		s.SetMaxParallelDownloads(DefaultMaxParallel)
		return DefaultMaxParallel
	}
	return value
}

// SetMaxParallelDownloads sets the maximum number of parallel downloads
func (s *Settings) SetMaxParallelDownloads(count int) {
	s.app.Preferences().SetInt(KeyMaxParallel, ClampParallel(count))
}

// ClampParallel bounds count to the supported parallelism range
func ClampParallel(count int) int {
	if count < MinMaxParallel {
		return MinMaxParallel
	}
	if count > MaxMaxParallel {
		return MaxMaxParallel
	}
	return count
}

// GetMode returns the configured download mode
func (s *Settings) GetMode() model.DownloadMode {
	mode, err := model.ParseDownloadMode(s.app.Preferences().String(KeyMode))
	if err != nil {
		s.SetMode(DefaultMode)
		return DefaultMode
	}
	return mode
}

// SetMode sets the download mode
func (s *Settings) SetMode(mode model.DownloadMode) {
	s.app.Preferences().SetString(KeyMode, string(mode))
}

// GetSubtitles returns whether subtitle transcripts are saved
func (s *Settings) GetSubtitles() bool {
	return s.app.Preferences().BoolWithFallback(KeySubtitles, false)
}

// SetSubtitles enables or disables subtitle transcripts
func (s *Settings) SetSubtitles(enabled bool) {
	s.app.Preferences().SetBool(KeySubtitles, enabled)
}

// GetSubtitleLanguage returns the transcript language code
func (s *Settings) GetSubtitleLanguage() string {
	return s.app.Preferences().StringWithFallback(KeySubtitleLang, model.DefaultSubtitleLang)
}

// SetSubtitleLanguage sets the transcript language code
func (s *Settings) SetSubtitleLanguage(lang string) {
	if lang == "" {
		lang = model.DefaultSubtitleLang
	}
	s.app.Preferences().SetString(KeySubtitleLang, lang)
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetItemTimeout returns the per-item time limit, zero meaning none
func (s *Settings) GetItemTimeout() time.Duration {
	seconds := s.app.Preferences().Int(KeyItemTimeout)
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// SetItemTimeout sets the per-item time limit, rounded down to whole seconds
func (s *Settings) SetItemTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.app.Preferences().SetInt(KeyItemTimeout, int(d/time.Second))
}

// GetMetadataTTL returns how long resolved metadata stays cached
func (s *Settings) GetMetadataTTL() time.Duration {
	seconds := s.app.Preferences().Int(KeyMetadataTTL)
	if seconds <= 0 {
		return DefaultMetadataTTL
	}
	return time.Duration(seconds) * time.Second
}

// SetMetadataTTL sets the metadata cache lifetime
func (s *Settings) SetMetadataTTL(d time.Duration) {
	s.app.Preferences().SetInt(KeyMetadataTTL, int(d/time.Second))
}

// GetHistoryDirectory returns where batch history is stored, empty for memory only
func (s *Settings) GetHistoryDirectory() string {
	return s.app.Preferences().String(KeyHistoryDir)
}

// SetHistoryDirectory sets the batch history directory
func (s *Settings) SetHistoryDirectory(dir string) {
	s.app.Preferences().SetString(KeyHistoryDir, dir)
}

// BatchDefaults returns the download options a new batch starts from
func (s *Settings) BatchDefaults() model.DownloadOptions {
	return model.DownloadOptions{
		Mode:         s.GetMode(),
		Directory:    s.GetDownloadDirectory(),
		Subtitles:    s.GetSubtitles(),
		SubtitleLang: s.GetSubtitleLanguage(),
	}
}

// GetModeOptions returns the selectable download modes
func (s *Settings) GetModeOptions() []model.DownloadMode {
	return []model.DownloadMode{model.ModeVideo, model.ModeAudio}
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
		"pt":     "Português",
	}
}
