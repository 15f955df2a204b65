// Command yt-batch downloads a YouTube playlist without the desktop UI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"github.com/ytget/yt-batch-downloader/internal/cache"
	"github.com/ytget/yt-batch-downloader/internal/config"
	"github.com/ytget/yt-batch-downloader/internal/download"
	"github.com/ytget/yt-batch-downloader/internal/history"
	"github.com/ytget/yt-batch-downloader/internal/logging"
	"github.com/ytget/yt-batch-downloader/internal/model"
	"github.com/ytget/yt-batch-downloader/internal/platform"
	"github.com/ytget/yt-batch-downloader/internal/transcode"
)

// Version is set at build time via -ldflags
var Version = "dev"

type options struct {
	url         string
	parallel    int
	audio       bool
	dir         string
	subs        bool
	lang        string
	timeout     time.Duration
	configPath  string
	showHistory bool
	retry       string
	version     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.url, "url", "", "playlist or video URL")
	flag.IntVar(&opts.parallel, "parallel", 0, "concurrent downloads (1-10)")
	flag.BoolVar(&opts.audio, "audio", false, "download audio only (mp3)")
	flag.StringVar(&opts.dir, "dir", "", "download directory")
	flag.BoolVar(&opts.subs, "subs", false, "save subtitle transcripts")
	flag.StringVar(&opts.lang, "lang", "", "subtitle language code")
	flag.DurationVar(&opts.timeout, "timeout", 0, "per-item time limit, 0 for none")
	flag.StringVar(&opts.configPath, "config", "", "config file (YAML)")
	flag.BoolVar(&opts.showHistory, "history", false, "list recent batches and exit")
	flag.StringVar(&opts.retry, "retry", "", "re-run the failed items of a recorded batch")
	flag.BoolVar(&opts.version, "version", false, "print version")
	flag.Parse()

	if opts.version {
		fmt.Printf("yt-batch %s\n", Version)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cfg, opts)

	logger := logging.OrNop(cfg.Logging)
	defer logger.Sync()
	logger.Info("starting yt-batch", zap.String("version", Version))

	store, err := history.Open(cfg.History.Dir)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	if opts.showHistory {
		return printHistory(store)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := &youtube.Client{}
	yt := platform.NewYouTube(client, transcode.NewService(logger), logger)

	var playlist *model.Playlist
	switch {
	case opts.retry != "":
		playlist, err = failedPlaylist(store, opts.retry)
	case opts.url != "":
		if err := platform.ValidateYouTubeURL(opts.url); err != nil {
			return err
		}
		parser := platform.NewPlaylistParserService(client, yt, logger)
		playlist, err = parser.ParsePlaylist(ctx, opts.url)
	default:
		flag.Usage()
		return errors.New("-url or -retry is required")
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d items\n", playlist.Title, playlist.Len())

	mode, err := model.ParseDownloadMode(cfg.Batch.Mode)
	if err != nil {
		return err
	}
	dlOpts := model.DownloadOptions{
		Mode:         mode,
		Directory:    cfg.Batch.Directory,
		Subtitles:    cfg.Batch.Subtitles,
		SubtitleLang: cfg.Batch.SubtitleLang,
	}
	if err := platform.CreateDirectoryIfNotExists(dlOpts.Directory); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	coordinator, err := download.NewCoordinator(download.Config{
		Extractor:   yt,
		Fetcher:     yt,
		Cache:       cache.NewMetadataCache(cfg.Batch.MetadataTTL),
		Presenter:   newConsolePresenter(os.Stdout, logger),
		Recorder:    store,
		Logger:      logger,
		ItemTimeout: cfg.Batch.ItemTimeout,
	})
	if err != nil {
		return err
	}

	batch, err := coordinator.Start(ctx, playlist.Items, dlOpts, cfg.Batch.MaxParallel)
	if err != nil {
		return err
	}

	<-batch.Done()
	summary := batch.Summary()
	fmt.Printf("%s (batch %s)\n", summary, batch.ID)

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d items failed", summary.Failed, summary.Total)
	}
	return nil
}

// applyFlags lets explicit command line flags override the config file
func applyFlags(cfg *config.File, opts options) {
	if opts.parallel > 0 {
		cfg.Batch.MaxParallel = config.ClampParallel(opts.parallel)
	}
	if opts.audio {
		cfg.Batch.Mode = string(model.ModeAudio)
	}
	if opts.dir != "" {
		cfg.Batch.Directory = platform.ExpandHome(opts.dir)
	}
	if opts.subs {
		cfg.Batch.Subtitles = true
	}
	if opts.lang != "" {
		cfg.Batch.SubtitleLang = opts.lang
	}
	if opts.timeout > 0 {
		cfg.Batch.ItemTimeout = opts.timeout
	}
}

func failedPlaylist(store *history.Store, id string) (*model.Playlist, error) {
	sources, err := store.FailedSources(id)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("batch %s has no failed items", id)
	}
	playlist := model.NewPlaylist("")
	playlist.ID = id
	playlist.Title = "retry " + id
	for _, source := range sources {
		playlist.Add(model.NewMediaItem(source, "", "", 0))
	}
	return playlist, nil
}

func printHistory(store *history.Store) error {
	records, err := store.Recent(20)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no recorded batches")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tMODE\tRESULT")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rec.ID, rec.StartedAt.Local().Format(time.DateTime), rec.Mode, rec.Summary)
	}
	return w.Flush()
}
