package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ytget/yt-batch-downloader/internal/logging"
	"github.com/ytget/yt-batch-downloader/internal/platform"
)

// EnvPrefix prefixes environment overrides, e.g. YTB_BATCH_MAX_PARALLEL
const EnvPrefix = "YTB"

// File is the configuration read by the command line tool
type File struct {
	Batch   BatchConfig    `mapstructure:"batch"`
	Logging logging.Config `mapstructure:"logging"`
	History HistoryConfig  `mapstructure:"history"`
}

// BatchConfig holds the defaults for a batch run
type BatchConfig struct {
	Directory    string        `mapstructure:"directory"`
	MaxParallel  int           `mapstructure:"max_parallel"`
	Mode         string        `mapstructure:"mode"`
	Subtitles    bool          `mapstructure:"subtitles"`
	SubtitleLang string        `mapstructure:"subtitle_lang"`
	ItemTimeout  time.Duration `mapstructure:"item_timeout"`
	MetadataTTL  time.Duration `mapstructure:"metadata_ttl"`
}

// HistoryConfig locates the batch history database
type HistoryConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoadFile reads path (YAML) when given, or config.yaml from the working
// directory and ~/.config/yt-batch otherwise. A missing default file is not
// an error. Environment variables override file values.
func LoadFile(path string) (*File, error) {
	v := viper.New()

	v.SetDefault("batch.directory", "~/Downloads")
	v.SetDefault("batch.max_parallel", DefaultMaxParallel)
	v.SetDefault("batch.mode", string(DefaultMode))
	v.SetDefault("batch.subtitles", false)
	v.SetDefault("batch.subtitle_lang", "en")
	v.SetDefault("batch.item_timeout", "0s")
	v.SetDefault("batch.metadata_ttl", DefaultMetadataTTL.String())
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("history.dir", "~/.local/share/yt-batch")

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(platform.ExpandHome(path))
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath(platform.ExpandHome("~/.config/yt-batch"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg File
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.Batch.Directory = platform.ExpandHome(cfg.Batch.Directory)
	cfg.Batch.MaxParallel = ClampParallel(cfg.Batch.MaxParallel)
	cfg.History.Dir = platform.ExpandHome(cfg.History.Dir)
	if cfg.Batch.MetadataTTL <= 0 {
		cfg.Batch.MetadataTTL = DefaultMetadataTTL
	}
	return &cfg, nil
}
