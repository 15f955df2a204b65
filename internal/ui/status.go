package ui

import (
	"fmt"
	"math"
	"strings"

	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-batch-downloader/internal/model"
)

// itemStatusText renders the state column of a row
func itemStatusText(s model.ItemSnapshot) string {
	switch s.State {
	case model.StateDownloading:
		return fmt.Sprintf("%s "+ProgressLabelFormat, IconPlay, percent(s.Progress))
	case model.StateCompleted:
		return IconDone + " " + s.State.String()
	case model.StateFailed:
		if s.Category != model.CategoryNone {
			return IconError + " " + string(s.Category)
		}
		return IconError + " " + s.State.String()
	case model.StateCancelled:
		return IconStopped + " " + s.State.String()
	default:
		return IconPending + " " + s.State.String()
	}
}

// stateImportance maps an item state to the label importance used to colour it
func stateImportance(state model.ItemState) widget.Importance {
	switch state {
	case model.StateCompleted:
		return widget.SuccessImportance
	case model.StateFailed:
		return widget.DangerImportance
	case model.StateDownloading:
		return widget.HighImportance
	case model.StateCancelled:
		return widget.WarningImportance
	default:
		return widget.MediumImportance
	}
}

// batchStatusText is the footer line: "Downloading: N/M" while a batch runs,
// the summary once it has finished, otherwise the selection count.
func batchStatusText(l *Localization, sum model.Summary, running bool, selected, total int) string {
	switch {
	case running:
		return l.Format(KeyStatusDownloading, sum.Finished(), sum.Total)
	case sum.Total > 0:
		return sum.String()
	default:
		return l.Format(KeyStatusSelected, selected, total)
	}
}

// singleLine collapses control whitespace so titles render on one row
func singleLine(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(s))
}

func percent(fraction float64) int {
	return int(math.Floor(fraction*100 + 0.5))
}
