package ui

import (
	"fmt"
	"os"
	"strings"
)

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeyFetch             = "fetch"
	KeyDownload          = "download"
	KeyCancel            = "cancel"
	KeyRetryFailed       = "retry_failed"
	KeySelectAll         = "select_all"
	KeySubtitles         = "subtitles"
	KeyParallel          = "parallel"
	KeyModeVideo         = "mode_video"
	KeyModeAudio         = "mode_audio"
	KeySettings          = "settings"
	KeyHistory           = "history"
	KeyFile              = "file"
	KeyLanguage          = "language"
	KeyDownloadDirectory = "download_directory"
	KeyMaxParallel       = "max_parallel"
	KeyDownloadMode      = "download_mode"
	KeySubtitleLanguage  = "subtitle_language"
	KeyItemTimeout       = "item_timeout"
	KeyMetadataTTL       = "metadata_ttl"
	KeyHistoryDirectory  = "history_directory"
	KeySave              = "save"
	KeyClose             = "close"
	KeyBrowse            = "browse"
	KeyEnterURL          = "enter_url"
	KeySettingsSaved     = "settings_saved"
	KeyFetchingPlaylist  = "fetching_playlist"
	KeyPlaylistLoaded    = "playlist_loaded"
	KeyStatusDownloading = "status_downloading"
	KeyStatusSelected    = "status_selected"
	KeyCancelling        = "cancelling"
	KeyNothingSelected   = "nothing_selected"
	KeyBatchRunning      = "batch_running"
	KeyNoFailedItems     = "no_failed_items"
	KeyNoHistory         = "no_history"
	KeyInvalidURL        = "invalid_url"
	KeyPleaseEnterURL    = "please_enter_url"
	KeyErrorOpeningFile  = "error_opening_file"
	KeyShow              = "show"
	KeyPlay              = "play"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		lang = systemLanguage()
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// systemLanguage derives a two-letter code from LANG, e.g. "ru_RU.UTF-8" -> "ru"
func systemLanguage() string {
	lang := os.Getenv("LANG")
	if len(lang) < 2 {
		return "en"
	}
	return strings.ToLower(lang[:2])
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	return key
}

// Format returns the localized format string for key applied to args
func (l *Localization) Format(key string, args ...any) string {
	return fmt.Sprintf(l.GetText(key), args...)
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "YT Batch Downloader",
		KeyFetch:             "Fetch",
		KeyDownload:          "Download",
		KeyCancel:            "Cancel",
		KeyRetryFailed:       "Retry failed",
		KeySelectAll:         "Select all",
		KeySubtitles:         "Subtitles",
		KeyParallel:          "Parallel",
		KeyModeVideo:         "Video",
		KeyModeAudio:         "Audio (mp3)",
		KeySettings:          "Settings",
		KeyHistory:           "History",
		KeyFile:              "File",
		KeyLanguage:          "Language",
		KeyDownloadDirectory: "Download Directory",
		KeyMaxParallel:       "Max Parallel Downloads",
		KeyDownloadMode:      "Download Mode",
		KeySubtitleLanguage:  "Subtitle Language",
		KeyItemTimeout:       "Item Timeout (seconds, 0 = none)",
		KeyMetadataTTL:       "Metadata Cache (seconds)",
		KeyHistoryDirectory:  "History Directory",
		KeySave:              "Save",
		KeyClose:             "Close",
		KeyBrowse:            "Browse",
		KeyEnterURL:          "Enter YouTube playlist or video URL",
		KeySettingsSaved:     "Settings saved successfully!",
		KeyFetchingPlaylist:  "Fetching playlist...",
		KeyPlaylistLoaded:    "%s: %d items",
		KeyStatusDownloading: "Downloading: %d/%d",
		KeyStatusSelected:    "%d of %d selected",
		KeyCancelling:        "Cancelling...",
		KeyNothingSelected:   "Nothing selected",
		KeyBatchRunning:      "A batch is already running",
		KeyNoFailedItems:     "No failed items",
		KeyNoHistory:         "No finished batches yet",
		KeyInvalidURL:        "Invalid URL",
		KeyPleaseEnterURL:    "Please enter a URL",
		KeyErrorOpeningFile:  "Error opening file",
		KeyShow:              "show",
		KeyPlay:              "play",
	}

	l.texts["ru"] = map[string]string{
		KeyAppTitle:          "YT Пакетный загрузчик",
		KeyFetch:             "Получить",
		KeyDownload:          "Скачать",
		KeyCancel:            "Отмена",
		KeyRetryFailed:       "Повторить ошибки",
		KeySelectAll:         "Выбрать все",
		KeySubtitles:         "Субтитры",
		KeyParallel:          "Потоки",
		KeyModeVideo:         "Видео",
		KeyModeAudio:         "Аудио (mp3)",
		KeySettings:          "Настройки",
		KeyHistory:           "История",
		KeyFile:              "Файл",
		KeyLanguage:          "Язык",
		KeyDownloadDirectory: "Папка загрузки",
		KeyMaxParallel:       "Макс. параллельных",
		KeyDownloadMode:      "Режим загрузки",
		KeySubtitleLanguage:  "Язык субтитров",
		KeyItemTimeout:       "Таймаут элемента (сек, 0 = нет)",
		KeyMetadataTTL:       "Кэш метаданных (сек)",
		KeyHistoryDirectory:  "Папка истории",
		KeySave:              "Сохранить",
		KeyClose:             "Закрыть",
		KeyBrowse:            "Обзор",
		KeyEnterURL:          "Введите URL плейлиста или видео YouTube",
		KeySettingsSaved:     "Настройки успешно сохранены!",
		KeyFetchingPlaylist:  "Получение плейлиста...",
		KeyPlaylistLoaded:    "%s: %d элементов",
		KeyStatusDownloading: "Загрузка: %d/%d",
		KeyStatusSelected:    "Выбрано %d из %d",
		KeyCancelling:        "Отмена...",
		KeyNothingSelected:   "Ничего не выбрано",
		KeyBatchRunning:      "Загрузка уже идёт",
		KeyNoFailedItems:     "Нет элементов с ошибками",
		KeyNoHistory:         "История пуста",
		KeyInvalidURL:        "Неверный URL",
		KeyPleaseEnterURL:    "Пожалуйста, введите URL",
		KeyErrorOpeningFile:  "Ошибка открытия файла",
		KeyShow:              "показать",
		KeyPlay:              "открыть",
	}

	l.texts["pt"] = map[string]string{
		KeyAppTitle:          "YT Batch Downloader",
		KeyFetch:             "Buscar",
		KeyDownload:          "Baixar",
		KeyCancel:            "Cancelar",
		KeyRetryFailed:       "Repetir falhas",
		KeySelectAll:         "Selecionar tudo",
		KeySubtitles:         "Legendas",
		KeyParallel:          "Paralelos",
		KeyModeVideo:         "Vídeo",
		KeyModeAudio:         "Áudio (mp3)",
		KeySettings:          "Configurações",
		KeyHistory:           "Histórico",
		KeyFile:              "Arquivo",
		KeyLanguage:          "Idioma",
		KeyDownloadDirectory: "Diretório de Download",
		KeyMaxParallel:       "Max Downloads Paralelos",
		KeyDownloadMode:      "Modo de Download",
		KeySubtitleLanguage:  "Idioma da Legenda",
		KeyItemTimeout:       "Tempo limite por item (s, 0 = nenhum)",
		KeyMetadataTTL:       "Cache de metadados (s)",
		KeyHistoryDirectory:  "Diretório do Histórico",
		KeySave:              "Salvar",
		KeyClose:             "Fechar",
		KeyBrowse:            "Navegar",
		KeyEnterURL:          "Digite a URL da playlist ou vídeo do YouTube",
		KeySettingsSaved:     "Configurações salvas com sucesso!",
		KeyFetchingPlaylist:  "Buscando playlist...",
		KeyPlaylistLoaded:    "%s: %d itens",
		KeyStatusDownloading: "Baixando: %d/%d",
		KeyStatusSelected:    "%d de %d selecionados",
		KeyCancelling:        "Cancelando...",
		KeyNothingSelected:   "Nada selecionado",
		KeyBatchRunning:      "Um lote já está em execução",
		KeyNoFailedItems:     "Nenhum item com falha",
		KeyNoHistory:         "Nenhum lote concluído ainda",
		KeyInvalidURL:        "URL inválida",
		KeyPleaseEnterURL:    "Por favor, digite uma URL",
		KeyErrorOpeningFile:  "Erro ao abrir arquivo",
		KeyShow:              "mostrar",
		KeyPlay:              "abrir",
	}
}
