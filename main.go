package main

import (
	"context"
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"github.com/ytget/yt-batch-downloader/internal/cache"
	"github.com/ytget/yt-batch-downloader/internal/config"
	"github.com/ytget/yt-batch-downloader/internal/download"
	"github.com/ytget/yt-batch-downloader/internal/history"
	"github.com/ytget/yt-batch-downloader/internal/logging"
	"github.com/ytget/yt-batch-downloader/internal/platform"
	"github.com/ytget/yt-batch-downloader/internal/transcode"
	"github.com/ytget/yt-batch-downloader/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.yt-batch-downloader"
	AppName = "YT Batch Downloader"
	LogFile = "yt-batch.log"

	WindowWidth  = 960
	WindowHeight = 640
)

func main() {
	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	storageRoot := myApp.Storage().RootURI().Path()
	logger := logging.OrNop(logging.Config{File: filepath.Join(storageRoot, LogFile), Level: "info"})
	defer logger.Sync()
	logger.Info("starting", zap.String("app", AppName), zap.String("version", version))

	settings := config.NewSettings(myApp)
	if err := platform.CreateDirectoryIfNotExists(platform.ExpandHome(settings.GetDownloadDirectory())); err != nil {
		logger.Warn("failed to ensure downloads dir", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	client := &youtube.Client{}
	yt := platform.NewYouTube(client, transcode.NewService(logger), logger)
	parser := platform.NewPlaylistParserService(client, yt, logger)

	metadata := cache.NewMetadataCache(settings.GetMetadataTTL())
	metadata.StartJanitor(ctx, settings.GetMetadataTTL())

	deps := ui.Deps{
		Settings:  settings,
		Presenter: ui.NewPresenter(),
		Playlists: parser,
		Logger:    logger,
	}

	var recorder download.Recorder
	historyDir := settings.GetHistoryDirectory()
	if historyDir == "" {
		historyDir = filepath.Join(storageRoot, "history")
	}
	store, err := history.Open(platform.ExpandHome(historyDir))
	if err != nil {
		logger.Warn("history disabled", zap.String("dir", historyDir), zap.Error(err))
	} else {
		defer store.Close()
		recorder = store
		deps.History = store
	}

	coordinator, err := download.NewCoordinator(download.Config{
		Extractor:   yt,
		Fetcher:     yt,
		Cache:       metadata,
		Presenter:   deps.Presenter,
		Recorder:    recorder,
		Logger:      logger,
		ItemTimeout: settings.GetItemTimeout(),
	})
	if err != nil {
		logger.Fatal("failed to create coordinator", zap.Error(err))
	}
	deps.Coordinator = coordinator

	window := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	window.Resize(fyne.NewSize(WindowWidth, WindowHeight))
	window.SetOnClosed(func() {
		if b := coordinator.Running(); b != nil {
			b.Cancel()
		}
	})

	ui.NewRootUI(window, deps)
	window.ShowAndRun()
}
