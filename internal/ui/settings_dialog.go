package ui

import (
	"sort"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-batch-downloader/internal/config"
	"github.com/ytget/yt-batch-downloader/internal/model"
)

// SettingsDialog edits the persisted batch defaults
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	onSaved      func()

	downloadDirEntry  *widget.Entry
	maxParallelSelect *widget.Select
	modeSelect        *widget.RadioGroup
	subtitlesCheck    *widget.Check
	subtitleLangEntry *widget.Entry
	timeoutEntry      *widget.Entry
	ttlEntry          *widget.Entry
	historyDirEntry   *widget.Entry
	languageSelect    *widget.Select
}

// ShowSettingsDialog opens the settings dialog; onSaved runs after a save
func ShowSettingsDialog(window fyne.Window, settings *config.Settings, localization *Localization, onSaved func()) {
	sd := &SettingsDialog{
		settings:     settings,
		localization: localization,
		window:       window,
		onSaved:      onSaved,
	}
	sd.createUI()
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

func (sd *SettingsDialog) createUI() {
	l := sd.localization

	sd.downloadDirEntry = widget.NewEntry()
	browseDirBtn := widget.NewButton(l.GetText(KeyBrowse), func() {
		sd.browseInto(sd.downloadDirEntry)
	})
	downloadDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.downloadDirEntry)

	parallelOptions := make([]string, 0, config.MaxMaxParallel)
	for i := config.MinMaxParallel; i <= config.MaxMaxParallel; i++ {
		parallelOptions = append(parallelOptions, strconv.Itoa(i))
	}
	sd.maxParallelSelect = widget.NewSelect(parallelOptions, nil)

	modes := make([]string, 0, 2)
	for _, mode := range sd.settings.GetModeOptions() {
		modes = append(modes, string(mode))
	}
	sd.modeSelect = widget.NewRadioGroup(modes, nil)
	sd.modeSelect.Horizontal = true

	sd.subtitlesCheck = widget.NewCheck(l.GetText(KeySubtitles), nil)
	sd.subtitleLangEntry = widget.NewEntry()
	sd.subtitleLangEntry.SetPlaceHolder(model.DefaultSubtitleLang)

	sd.timeoutEntry = widget.NewEntry()
	sd.timeoutEntry.SetPlaceHolder("0")
	sd.ttlEntry = widget.NewEntry()
	sd.ttlEntry.SetPlaceHolder(strconv.Itoa(int(config.DefaultMetadataTTL / time.Second)))

	sd.historyDirEntry = widget.NewEntry()
	browseHistoryBtn := widget.NewButton(l.GetText(KeyBrowse), func() {
		sd.browseInto(sd.historyDirEntry)
	})
	historyDirRow := container.NewBorder(nil, nil, nil, browseHistoryBtn, sd.historyDirEntry)

	languageOptions := []string{}
	for code := range sd.settings.GetLanguageOptions() {
		languageOptions = append(languageOptions, code)
	}
	sort.Strings(languageOptions)
	sd.languageSelect = widget.NewSelect(languageOptions, nil)

	form := widget.NewForm(
		widget.NewFormItem(l.GetText(KeyDownloadDirectory), downloadDirRow),
		widget.NewFormItem(l.GetText(KeyMaxParallel), sd.maxParallelSelect),
		widget.NewFormItem(l.GetText(KeyDownloadMode), sd.modeSelect),
		widget.NewFormItem("", sd.subtitlesCheck),
		widget.NewFormItem(l.GetText(KeySubtitleLanguage), sd.subtitleLangEntry),
		widget.NewFormItem(l.GetText(KeyItemTimeout), sd.timeoutEntry),
		widget.NewFormItem(l.GetText(KeyMetadataTTL), sd.ttlEntry),
		widget.NewFormItem(l.GetText(KeyHistoryDirectory), historyDirRow),
		widget.NewFormItem(l.GetText(KeyLanguage), sd.languageSelect),
	)

	sd.dialog = dialog.NewCustomConfirm(
		l.GetText(KeySettings),
		l.GetText(KeySave),
		l.GetText(KeyCancel),
		form,
		sd.onSave,
		sd.window,
	)
	sd.dialog.Resize(fyne.NewSize(SettingsDialogWidth, form.MinSize().Height+120))
}

func (sd *SettingsDialog) loadCurrentSettings() {
	sd.downloadDirEntry.SetText(sd.settings.GetDownloadDirectory())
	sd.maxParallelSelect.SetSelected(strconv.Itoa(sd.settings.GetMaxParallelDownloads()))
	sd.modeSelect.SetSelected(string(sd.settings.GetMode()))
	sd.subtitlesCheck.SetChecked(sd.settings.GetSubtitles())
	sd.subtitleLangEntry.SetText(sd.settings.GetSubtitleLanguage())
	sd.timeoutEntry.SetText(strconv.Itoa(int(sd.settings.GetItemTimeout() / time.Second)))
	sd.ttlEntry.SetText(strconv.Itoa(int(sd.settings.GetMetadataTTL() / time.Second)))
	sd.historyDirEntry.SetText(sd.settings.GetHistoryDirectory())
	sd.languageSelect.SetSelected(sd.settings.GetLanguage())
}

func (sd *SettingsDialog) browseInto(entry *widget.Entry) {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		entry.SetText(uri.Path())
	}, sd.window)
}

func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}

	if dir := sd.downloadDirEntry.Text; dir != "" {
		sd.settings.SetDownloadDirectory(dir)
	}
	if n, err := strconv.Atoi(sd.maxParallelSelect.Selected); err == nil {
		sd.settings.SetMaxParallelDownloads(n)
	}
	if mode, err := model.ParseDownloadMode(sd.modeSelect.Selected); err == nil {
		sd.settings.SetMode(mode)
	}
	sd.settings.SetSubtitles(sd.subtitlesCheck.Checked)
	sd.settings.SetSubtitleLanguage(sd.subtitleLangEntry.Text)
	if secs, err := strconv.Atoi(sd.timeoutEntry.Text); err == nil {
		sd.settings.SetItemTimeout(time.Duration(secs) * time.Second)
	}
	if secs, err := strconv.Atoi(sd.ttlEntry.Text); err == nil && secs > 0 {
		sd.settings.SetMetadataTTL(time.Duration(secs) * time.Second)
	}
	sd.settings.SetHistoryDirectory(sd.historyDirEntry.Text)
	if sd.languageSelect.Selected != "" {
		sd.settings.SetLanguage(sd.languageSelect.Selected)
	}

	dialog.ShowInformation(sd.localization.GetText(KeySettings), sd.localization.GetText(KeySettingsSaved), sd.window)
	if sd.onSaved != nil {
		sd.onSaved()
	}
}
