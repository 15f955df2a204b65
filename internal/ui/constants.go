package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconPlay     = "▶"
	IconFolder   = "📁"
	IconError    = "❌"
	IconDone     = "✔"
	IconPending  = "⏳"
	IconStopped  = "⏹"
	IconHistory  = "🕘"
)

// Text fragments
const (
	MiddleDotSeparator  = " · "
	ProgressLabelFormat = "%d%%"
)

// Layout sizing
const (
	StatusLabelWidth   float32 = 150
	DurationLabelWidth float32 = 64
	ProgressBarWidth   float32 = 140
	LogoSize           float32 = 32

	HistoryDialogWidth  float32 = 560
	HistoryDialogHeight float32 = 420
	SettingsDialogWidth float32 = 500
)

// Batch behaviour
const (
	// PlaylistFetchTimeout bounds a single playlist listing
	PlaylistFetchTimeout = 60 * time.Second
	// HistoryListLimit is the number of past batches shown
	HistoryListLimit = 20
)
