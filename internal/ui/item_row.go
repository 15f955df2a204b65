package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-batch-downloader/internal/model"
)

// ItemRow renders one playlist item: selection box, title, duration, state,
// progress and file actions.
type ItemRow struct {
	widget.BaseWidget

	localization *Localization
	lang         string
	index        int
	snapshot     model.ItemSnapshot

	check         *widget.Check
	titleLabel    *widget.Label
	detailLabel   *widget.Label
	durationLabel *widget.Label
	statusLabel   *widget.Label
	progress      *widget.ProgressBar
	showBtn       *widget.Button
	playBtn       *widget.Button

	onToggle func(index int, selected bool)
	onShow   func(path string)
	onPlay   func(path string)
}

// NewItemRow creates an empty row; Bind fills it
func NewItemRow(localization *Localization) *ItemRow {
	r := &ItemRow{localization: localization, lang: localization.GetCurrentLanguage(), index: -1}
	r.ExtendBaseWidget(r)
	r.createUI()
	return r
}

// SetCallbacks sets the row actions
func (r *ItemRow) SetCallbacks(onToggle func(int, bool), onShow, onPlay func(string)) {
	r.onToggle = onToggle
	r.onShow = onShow
	r.onPlay = onPlay
}

func (r *ItemRow) createUI() {
	r.check = widget.NewCheck("", nil)

	r.titleLabel = widget.NewLabel("")
	r.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	r.titleLabel.Truncation = fyne.TextTruncateEllipsis

	r.detailLabel = widget.NewLabel("")
	r.detailLabel.Truncation = fyne.TextTruncateEllipsis
	r.detailLabel.Importance = widget.DangerImportance
	r.detailLabel.SizeName = theme.SizeNameCaptionText

	r.durationLabel = widget.NewLabel("")
	r.durationLabel.Alignment = fyne.TextAlignTrailing
	r.durationLabel.TextStyle = fyne.TextStyle{Monospace: true}

	r.statusLabel = widget.NewLabel("")
	r.statusLabel.Alignment = fyne.TextAlignLeading

	r.progress = widget.NewProgressBar()

	r.showBtn = widget.NewButton(r.localization.GetText(KeyShow), func() {
		if r.onShow != nil && r.snapshot.OutputPath != "" {
			r.onShow(r.snapshot.OutputPath)
		}
	})
	r.showBtn.Importance = widget.LowImportance

	r.playBtn = widget.NewButton(r.localization.GetText(KeyPlay), func() {
		if r.onPlay != nil && r.snapshot.OutputPath != "" {
			r.onPlay(r.snapshot.OutputPath)
		}
	})
	r.playBtn.Importance = widget.LowImportance
}

// Bind shows snap at list position index. frozen disables the selection box.
func (r *ItemRow) Bind(index int, snap model.ItemSnapshot, frozen bool) {
	r.index = index
	r.snapshot = snap
	if r.lang != r.localization.GetCurrentLanguage() {
		r.RefreshTexts()
	}

	// SetChecked fires OnChanged; detach while syncing from the model
	r.check.OnChanged = nil
	r.check.SetChecked(snap.Selected)
	r.check.OnChanged = func(checked bool) {
		if r.onToggle != nil {
			r.onToggle(r.index, checked)
		}
	}
	if frozen {
		r.check.Disable()
	} else {
		r.check.Enable()
	}

	r.titleLabel.SetText(singleLine(snap.DisplayTitle()))
	r.durationLabel.SetText(snap.DurationText())

	r.statusLabel.Importance = stateImportance(snap.State)
	r.statusLabel.SetText(itemStatusText(snap))

	if snap.Error != "" {
		r.detailLabel.SetText(singleLine(snap.Error))
		r.detailLabel.Show()
	} else {
		r.detailLabel.Hide()
	}

	r.progress.SetValue(snap.Progress)
	if snap.State == model.StateDownloading {
		r.progress.Show()
	} else {
		r.progress.Hide()
	}

	if snap.State == model.StateCompleted && snap.OutputPath != "" {
		r.showBtn.Show()
		r.playBtn.Show()
	} else {
		r.showBtn.Hide()
		r.playBtn.Hide()
	}
}

// RefreshTexts re-reads button captions after a language change
func (r *ItemRow) RefreshTexts() {
	r.lang = r.localization.GetCurrentLanguage()
	r.showBtn.SetText(r.localization.GetText(KeyShow))
	r.playBtn.SetText(r.localization.GetText(KeyPlay))
}

// CreateRenderer lays the row out as check | title+detail | duration status progress actions
func (r *ItemRow) CreateRenderer() fyne.WidgetRenderer {
	status := container.NewGridWrap(fyne.NewSize(StatusLabelWidth, r.statusLabel.MinSize().Height), r.statusLabel)
	duration := container.NewGridWrap(fyne.NewSize(DurationLabelWidth, r.durationLabel.MinSize().Height), r.durationLabel)
	bar := container.NewGridWrap(fyne.NewSize(ProgressBarWidth, r.progress.MinSize().Height), r.progress)

	right := container.NewHBox(duration, status, bar, r.showBtn, r.playBtn)
	center := container.NewVBox(r.titleLabel, r.detailLabel)

	return widget.NewSimpleRenderer(container.NewBorder(nil, nil, r.check, right, container.New(layout.NewStackLayout(), center)))
}
