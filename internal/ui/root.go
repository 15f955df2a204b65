package ui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/ytget/yt-batch-downloader/internal/config"
	"github.com/ytget/yt-batch-downloader/internal/download"
	"github.com/ytget/yt-batch-downloader/internal/model"
	"github.com/ytget/yt-batch-downloader/internal/platform"
)

// PlaylistSource resolves a URL into a selectable playlist
type PlaylistSource interface {
	ParsePlaylist(ctx context.Context, url string) (*model.Playlist, error)
}

// HistorySource lists finished batches
type HistorySource interface {
	Recent(n int) ([]download.BatchRecord, error)
	FailedSources(id string) ([]string, error)
}

// Deps are the services the window drives
type Deps struct {
	Settings    *config.Settings
	Coordinator *download.Coordinator
	Presenter   *Presenter
	Playlists   PlaylistSource
	History     HistorySource // optional
	Logger      *zap.Logger
}

// RootUI represents the main window. Its fields are only touched on the Fyne goroutine.
type RootUI struct {
	window       fyne.Window
	settings     *config.Settings
	localization *Localization
	coordinator  *download.Coordinator
	presenter    *Presenter
	playlists    PlaylistSource
	history      HistorySource
	logger       *zap.Logger

	playlist *model.Playlist
	batch    *download.Batch
	summary  model.Summary

	urlEntry       *widget.Entry
	fetchBtn       *widget.Button
	settingsBtn    *widget.Button
	selectAllCheck *widget.Check
	modeRadio      *widget.RadioGroup
	subtitlesCheck *widget.Check
	subLangEntry   *widget.Entry
	parallelLabel  *widget.Label
	parallelSelect *widget.Select
	downloadBtn    *widget.Button
	cancelBtn      *widget.Button
	retryBtn       *widget.Button
	playlistLabel  *widget.Label
	statusLabel    *widget.Label
	list           *widget.List

	notificationContainer *fyne.Container
	notificationLabel     *widget.Label
	notificationSpinner   *widget.ProgressBarInfinite
}

// NewRootUI builds the window content and attaches it to deps.Presenter
func NewRootUI(window fyne.Window, deps Deps) *RootUI {
	localization := NewLocalization()
	localization.SetLanguage(deps.Settings.GetLanguage())

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ui := &RootUI{
		window:       window,
		settings:     deps.Settings,
		localization: localization,
		coordinator:  deps.Coordinator,
		presenter:    deps.Presenter,
		playlists:    deps.Playlists,
		history:      deps.History,
		logger:       logger,
	}

	window.SetTitle(localization.GetText(KeyAppTitle))
	ui.setupUI()
	ui.presenter.attach(ui)
	return ui
}

func (ui *RootUI) setupUI() {
	l := ui.localization
	ui.createMenu()

	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder(l.GetText(KeyEnterURL))
	ui.urlEntry.OnSubmitted = func(string) { ui.onFetchClick() }

	ui.fetchBtn = widget.NewButton(l.GetText(KeyFetch), ui.onFetchClick)
	ui.fetchBtn.Importance = widget.HighImportance

	ui.settingsBtn = widget.NewButton(IconSettings, ui.onShowSettings)
	ui.settingsBtn.Importance = widget.LowImportance

	left := container.NewHBox(ui.settingsBtn)
	if logo, err := LoadLogoResource(); err == nil {
		img := canvas.NewImageFromResource(logo)
		img.SetMinSize(fyne.NewSize(LogoSize, LogoSize))
		img.FillMode = canvas.ImageFillContain
		left = container.NewHBox(img, ui.settingsBtn)
	}
	urlRow := container.NewBorder(nil, nil, left, ui.fetchBtn, ui.urlEntry)

	ui.notificationLabel = widget.NewLabel("")
	ui.notificationSpinner = widget.NewProgressBarInfinite()
	ui.notificationSpinner.Hide()
	ui.notificationContainer = container.NewHBox(ui.notificationSpinner, container.NewPadded(ui.notificationLabel))
	ui.notificationContainer.Hide()

	ui.selectAllCheck = widget.NewCheck(l.GetText(KeySelectAll), ui.onSelectAll)
	ui.modeRadio = widget.NewRadioGroup(ui.modeLabels(), nil)
	ui.modeRadio.Horizontal = true
	ui.modeRadio.Required = true
	ui.subtitlesCheck = widget.NewCheck(l.GetText(KeySubtitles), nil)
	ui.subLangEntry = widget.NewEntry()
	ui.subLangEntry.SetPlaceHolder(model.DefaultSubtitleLang)

	parallelOptions := make([]string, 0, config.MaxMaxParallel)
	for i := config.MinMaxParallel; i <= config.MaxMaxParallel; i++ {
		parallelOptions = append(parallelOptions, strconv.Itoa(i))
	}
	ui.parallelLabel = widget.NewLabel(l.GetText(KeyParallel))
	ui.parallelSelect = widget.NewSelect(parallelOptions, nil)

	optionsRow := container.NewHBox(
		ui.selectAllCheck,
		widget.NewSeparator(),
		ui.modeRadio,
		widget.NewSeparator(),
		ui.subtitlesCheck,
		container.NewGridWrap(fyne.NewSize(48, ui.subLangEntry.MinSize().Height), ui.subLangEntry),
		widget.NewSeparator(),
		ui.parallelLabel,
		ui.parallelSelect,
	)

	ui.playlistLabel = widget.NewLabel("")
	ui.playlistLabel.TextStyle = fyne.TextStyle{Bold: true}
	ui.playlistLabel.Truncation = fyne.TextTruncateEllipsis

	top := container.NewVBox(urlRow, ui.notificationContainer, optionsRow, ui.playlistLabel)

	ui.list = widget.NewList(
		func() int {
			if ui.playlist == nil {
				return 0
			}
			return ui.playlist.Len()
		},
		func() fyne.CanvasObject {
			row := NewItemRow(ui.localization)
			row.SetCallbacks(ui.onToggleItem, ui.onShowFile, ui.onPlayFile)
			return row
		},
		ui.updateItemRow,
	)

	ui.downloadBtn = widget.NewButton(l.GetText(KeyDownload), ui.onDownloadClick)
	ui.downloadBtn.Importance = widget.HighImportance
	ui.cancelBtn = widget.NewButton(l.GetText(KeyCancel), ui.onCancelClick)
	ui.cancelBtn.Importance = widget.DangerImportance
	ui.retryBtn = widget.NewButton(l.GetText(KeyRetryFailed), ui.onRetryFailed)

	ui.statusLabel = widget.NewLabel("")
	bottom := container.NewBorder(nil, nil, ui.statusLabel, container.NewHBox(ui.retryBtn, ui.cancelBtn, ui.downloadBtn))

	ui.window.SetContent(container.NewBorder(top, bottom, nil, nil, ui.list))

	ui.applyDefaults()
	ui.setRunning(false)
	ui.updateStatus()
}

func (ui *RootUI) createMenu() {
	l := ui.localization
	settingsItem := fyne.NewMenuItem(l.GetText(KeySettings), ui.onShowSettings)
	historyItem := fyne.NewMenuItem(l.GetText(KeyHistory), ui.onShowHistory)

	languageMenu := fyne.NewMenu(l.GetText(KeyLanguage))
	codes := make([]string, 0, 3)
	for code := range l.GetAvailableLanguages() {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		langCode := code
		item := fyne.NewMenuItem(l.GetAvailableLanguages()[code], func() {
			ui.onLanguageChange(langCode)
		})
		item.Checked = l.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, item)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(l.GetText(KeyFile), settingsItem, historyItem),
		languageMenu,
	))
}

func (ui *RootUI) onLanguageChange(langCode string) {
	mode := ui.selectedMode()
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.refreshUITexts(mode)
	ui.createMenu()
}

func (ui *RootUI) refreshUITexts(mode model.DownloadMode) {
	l := ui.localization
	ui.window.SetTitle(l.GetText(KeyAppTitle))
	ui.urlEntry.SetPlaceHolder(l.GetText(KeyEnterURL))
	ui.fetchBtn.SetText(l.GetText(KeyFetch))
	ui.selectAllCheck.Text = l.GetText(KeySelectAll)
	ui.selectAllCheck.Refresh()
	ui.subtitlesCheck.Text = l.GetText(KeySubtitles)
	ui.subtitlesCheck.Refresh()
	ui.parallelLabel.SetText(l.GetText(KeyParallel))
	ui.modeRadio.Options = ui.modeLabels()
	ui.setMode(mode)
	ui.downloadBtn.SetText(l.GetText(KeyDownload))
	ui.cancelBtn.SetText(l.GetText(KeyCancel))
	ui.retryBtn.SetText(l.GetText(KeyRetryFailed))
	ui.updatePlaylistLabel()
	ui.updateStatus()
	ui.list.Refresh()
}

// applyDefaults loads the persisted batch options into the controls
func (ui *RootUI) applyDefaults() {
	defaults := ui.settings.BatchDefaults()
	ui.setMode(defaults.Mode)
	ui.subtitlesCheck.SetChecked(defaults.Subtitles)
	ui.subLangEntry.SetText(defaults.SubtitleLang)
	ui.parallelSelect.SetSelected(strconv.Itoa(ui.settings.GetMaxParallelDownloads()))
}

func (ui *RootUI) modeLabels() []string {
	return []string{ui.localization.GetText(KeyModeVideo), ui.localization.GetText(KeyModeAudio)}
}

func (ui *RootUI) setMode(mode model.DownloadMode) {
	labels := ui.modeLabels()
	if mode == model.ModeAudio {
		ui.modeRadio.SetSelected(labels[1])
		return
	}
	ui.modeRadio.SetSelected(labels[0])
}

func (ui *RootUI) selectedMode() model.DownloadMode {
	if ui.modeRadio.Selected == ui.localization.GetText(KeyModeAudio) {
		return model.ModeAudio
	}
	return model.ModeVideo
}

// currentOptions reads the batch options from the controls and persists them
func (ui *RootUI) currentOptions() (model.DownloadOptions, int) {
	opts := model.DownloadOptions{
		Mode:         ui.selectedMode(),
		Directory:    platform.ExpandHome(ui.settings.GetDownloadDirectory()),
		Subtitles:    ui.subtitlesCheck.Checked,
		SubtitleLang: strings.TrimSpace(ui.subLangEntry.Text),
	}
	parallel, err := strconv.Atoi(ui.parallelSelect.Selected)
	if err != nil {
		parallel = config.DefaultMaxParallel
	}

	ui.settings.SetMode(opts.Mode)
	ui.settings.SetSubtitles(opts.Subtitles)
	ui.settings.SetSubtitleLanguage(opts.SubtitleLang)
	ui.settings.SetMaxParallelDownloads(parallel)
	return opts, parallel
}

func (ui *RootUI) onFetchClick() {
	l := ui.localization
	raw := strings.TrimSpace(ui.urlEntry.Text)
	if raw == "" {
		ui.showNotification(l.GetText(KeyPleaseEnterURL), false)
		return
	}
	if err := platform.ValidateYouTubeURL(raw); err != nil {
		ui.showNotification(l.GetText(KeyInvalidURL)+": "+err.Error(), false)
		return
	}
	if ui.batch != nil {
		ui.showNotification(l.GetText(KeyBatchRunning), false)
		return
	}

	ui.fetchBtn.Disable()
	ui.showNotification(l.GetText(KeyFetchingPlaylist), true)
	ui.logger.Info("fetching playlist", zap.String("url", raw))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PlaylistFetchTimeout)
		defer cancel()
		playlist, err := ui.playlists.ParsePlaylist(ctx, raw)

		fyne.Do(func() {
			ui.fetchBtn.Enable()
			if err != nil {
				ui.logger.Warn("playlist fetch failed", zap.String("url", raw), zap.Error(err))
				ui.showNotification(download.Describe(err), false)
				return
			}
			ui.urlEntry.SetText("")
			ui.setPlaylist(playlist)
		})
	}()
}

func (ui *RootUI) setPlaylist(playlist *model.Playlist) {
	ui.playlist = playlist
	ui.summary = model.Summary{}

	ui.selectAllCheck.OnChanged = nil
	ui.selectAllCheck.SetChecked(playlist.SelectedCount() == playlist.Len())
	ui.selectAllCheck.OnChanged = ui.onSelectAll

	ui.updatePlaylistLabel()
	ui.hideNotification()
	ui.list.ScrollToTop()
	ui.list.Refresh()
	ui.updateStatus()
}

func (ui *RootUI) updatePlaylistLabel() {
	if ui.playlist == nil {
		ui.playlistLabel.SetText("")
		return
	}
	title := ui.playlist.Title
	if title == "" {
		title = ui.playlist.URL
	}
	ui.playlistLabel.SetText(ui.localization.Format(KeyPlaylistLoaded, singleLine(title), ui.playlist.Len()))
}

func (ui *RootUI) updateItemRow(id widget.ListItemID, obj fyne.CanvasObject) {
	row, ok := obj.(*ItemRow)
	if !ok || ui.playlist == nil || id >= ui.playlist.Len() {
		return
	}
	row.Bind(id, ui.playlist.Items[id].Snapshot(), ui.batch != nil)
}

func (ui *RootUI) onSelectAll(checked bool) {
	if ui.playlist == nil || ui.batch != nil {
		return
	}
	if err := ui.playlist.SelectAll(checked); err != nil {
		ui.showNotification(err.Error(), false)
	}
	ui.summary = model.Summary{}
	ui.list.Refresh()
	ui.updateStatus()
}

func (ui *RootUI) onToggleItem(index int, selected bool) {
	if ui.playlist == nil || index < 0 || index >= ui.playlist.Len() {
		return
	}
	if err := ui.playlist.Items[index].SetSelected(selected); err != nil {
		ui.logger.Debug("selection change rejected", zap.Int("index", index), zap.Error(err))
		ui.list.RefreshItem(index)
		return
	}
	ui.summary = model.Summary{}
	ui.updateStatus()
}

func (ui *RootUI) onDownloadClick() {
	l := ui.localization
	if ui.playlist == nil {
		ui.showNotification(l.GetText(KeyNothingSelected), false)
		return
	}

	opts, parallel := ui.currentOptions()
	if err := platform.CreateDirectoryIfNotExists(opts.Directory); err != nil {
		ui.logger.Error("failed to ensure download directory", zap.String("dir", opts.Directory), zap.Error(err))
		ui.showNotification(err.Error(), false)
		return
	}

	var rows []int
	for i, item := range ui.playlist.Items {
		if item.Selected() {
			rows = append(rows, i)
		}
	}
	ui.presenter.expect(rows)

	batch, err := ui.coordinator.Start(context.Background(), ui.playlist.Items, opts, parallel)
	switch {
	case errors.Is(err, download.ErrNothingSelected):
		ui.showNotification(l.GetText(KeyNothingSelected), false)
		return
	case errors.Is(err, download.ErrBatchRunning):
		ui.showNotification(l.GetText(KeyBatchRunning), false)
		return
	case err != nil:
		ui.showNotification(err.Error(), false)
		return
	}

	ui.batch = batch
	ui.summary = batch.Summary()
	ui.hideNotification()
	ui.setRunning(true)
	ui.list.Refresh()
	ui.updateStatus()
}

func (ui *RootUI) onCancelClick() {
	if ui.batch == nil {
		return
	}
	ui.coordinator.Cancel(ui.batch)
	ui.showNotification(ui.localization.GetText(KeyCancelling), true)
}

func (ui *RootUI) onRetryFailed() {
	if ui.playlist == nil || ui.batch != nil {
		return
	}
	n, err := ui.playlist.SelectFailed()
	if err != nil {
		ui.showNotification(err.Error(), false)
		return
	}
	if n == 0 {
		ui.showNotification(ui.localization.GetText(KeyNoFailedItems), false)
		return
	}
	ui.selectAllCheck.OnChanged = nil
	ui.selectAllCheck.SetChecked(n == ui.playlist.Len())
	ui.selectAllCheck.OnChanged = ui.onSelectAll
	ui.onDownloadClick()
}

func (ui *RootUI) setRunning(running bool) {
	for _, w := range []fyne.Disableable{ui.fetchBtn, ui.downloadBtn, ui.retryBtn, ui.selectAllCheck, ui.modeRadio, ui.subtitlesCheck, ui.subLangEntry, ui.parallelSelect} {
		if running {
			w.Disable()
		} else {
			w.Enable()
		}
	}
	if running {
		ui.cancelBtn.Enable()
	} else {
		ui.cancelBtn.Disable()
	}
}

func (ui *RootUI) updateStatus() {
	selected, total := 0, 0
	if ui.playlist != nil {
		selected, total = ui.playlist.SelectedCount(), ui.playlist.Len()
	}
	ui.statusLabel.SetText(batchStatusText(ui.localization, ui.summary, ui.batch != nil, selected, total))
}

func (ui *RootUI) itemChanged(row int, snap model.ItemSnapshot) {
	if ui.playlist == nil || row >= ui.playlist.Len() {
		return
	}
	if snap.State.IsTerminal() {
		ui.logger.Debug("item finished", zap.Int("row", row), zap.String("state", snap.State.String()))
	}
	ui.list.RefreshItem(row)
}

func (ui *RootUI) aggregateChanged(sum model.Summary) {
	ui.summary = sum
	ui.updateStatus()
}

func (ui *RootUI) batchFinished(sum model.Summary) {
	ui.summary = sum
	ui.batch = nil
	ui.hideNotification()
	ui.setRunning(false)
	ui.list.Refresh()
	ui.updateStatus()
}

func (ui *RootUI) onShowSettings() {
	ShowSettingsDialog(ui.window, ui.settings, ui.localization, func() {
		ui.localization.SetLanguage(ui.settings.GetLanguage())
		ui.createMenu()
		if ui.batch == nil {
			ui.applyDefaults()
		}
		ui.refreshUITexts(ui.selectedMode())
	})
}

func (ui *RootUI) onShowHistory() {
	l := ui.localization
	if ui.history == nil {
		ui.showNotification(l.GetText(KeyNoHistory), false)
		return
	}
	records, err := ui.history.Recent(HistoryListLimit)
	if err != nil {
		ui.logger.Warn("failed to read history", zap.Error(err))
		ui.showNotification(err.Error(), false)
		return
	}
	if len(records) == 0 {
		ui.showNotification(l.GetText(KeyNoHistory), false)
		return
	}

	var d dialog.Dialog
	rows := container.NewVBox()
	for _, rec := range records {
		text := strings.Join([]string{
			rec.StartedAt.Local().Format("2006-01-02 15:04"),
			string(rec.Mode),
			rec.Summary.String(),
		}, MiddleDotSeparator)
		label := widget.NewLabel(text)
		var retry fyne.CanvasObject
		if rec.Summary.Failed > 0 {
			id := rec.ID
			btn := widget.NewButton(l.GetText(KeyRetryFailed), func() {
				if ui.loadFailedFromHistory(id) {
					d.Hide()
				}
			})
			btn.Importance = widget.LowImportance
			retry = btn
		}
		rows.Add(container.NewBorder(nil, nil, nil, retry, label))
	}

	d = dialog.NewCustom(IconHistory+" "+l.GetText(KeyHistory), l.GetText(KeyClose), container.NewVScroll(rows), ui.window)
	d.Resize(fyne.NewSize(HistoryDialogWidth, HistoryDialogHeight))
	d.Show()
}

// loadFailedFromHistory replaces the list with the failed items of a past batch
func (ui *RootUI) loadFailedFromHistory(id string) bool {
	if ui.batch != nil {
		ui.showNotification(ui.localization.GetText(KeyBatchRunning), false)
		return false
	}
	sources, err := ui.history.FailedSources(id)
	if err != nil {
		ui.showNotification(err.Error(), false)
		return false
	}
	if len(sources) == 0 {
		ui.showNotification(ui.localization.GetText(KeyNoFailedItems), false)
		return false
	}

	playlist := model.NewPlaylist("")
	playlist.ID = id
	playlist.Title = fmt.Sprintf("%s (%s)", ui.localization.GetText(KeyRetryFailed), id)
	for _, source := range sources {
		playlist.Add(model.NewMediaItem(source, "", "", 0))
	}
	ui.setPlaylist(playlist)
	return true
}

func (ui *RootUI) onShowFile(path string) {
	if err := platform.OpenFileInManager(path); err != nil {
		ui.logger.Warn("failed to reveal file", zap.String("path", path), zap.Error(err))
		ui.showNotification(ui.localization.GetText(KeyErrorOpeningFile)+": "+err.Error(), false)
	}
}

func (ui *RootUI) onPlayFile(path string) {
	if err := platform.OpenFileWithDefaultApp(path); err != nil {
		ui.logger.Warn("failed to open file", zap.String("path", path), zap.Error(err))
		ui.showNotification(ui.localization.GetText(KeyErrorOpeningFile)+": "+err.Error(), false)
	}
}

// showNotification displays a message under the URL row. spinning shows
// background activity.
func (ui *RootUI) showNotification(message string, spinning bool) {
	ui.notificationLabel.SetText(message)
	if spinning {
		ui.notificationSpinner.Show()
	} else {
		ui.notificationSpinner.Hide()
	}
	ui.notificationContainer.Show()
	ui.notificationContainer.Refresh()
}

func (ui *RootUI) hideNotification() {
	ui.notificationSpinner.Hide()
	ui.notificationContainer.Hide()
}
