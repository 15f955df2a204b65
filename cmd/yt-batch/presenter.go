package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ytget/yt-batch-downloader/internal/download"
	"github.com/ytget/yt-batch-downloader/internal/model"
)

// consolePresenter prints one line per terminal item and logs every transition
type consolePresenter struct {
	out    io.Writer
	logger *zap.Logger
}

func newConsolePresenter(out io.Writer, logger *zap.Logger) download.Presenter {
	return &consolePresenter{out: out, logger: logger}
}

func (p *consolePresenter) Notify(e download.Event) {
	switch e.Kind {
	case download.EventItemChanged:
		if e.Item.State == model.StateDownloading {
			p.logger.Debug("item progress",
				zap.Int("index", e.Index),
				zap.Float64("progress", e.Item.Progress),
			)
			return
		}
		if !e.Item.State.IsTerminal() {
			return
		}
		line := fmt.Sprintf("[%d/%d] %-9s %s", e.Summary.Finished(), e.Summary.Total, e.Item.State, e.Item.DisplayTitle())
		switch e.Item.State {
		case model.StateCompleted:
			line += " -> " + e.Item.OutputPath
		case model.StateFailed:
			line += fmt.Sprintf(" (%s: %s)", e.Item.Category, e.Item.Error)
		}
		fmt.Fprintln(p.out, line)
	case download.EventBatchStarted:
		fmt.Fprintf(p.out, "Downloading: 0/%d\n", e.Summary.Total)
	}
}
