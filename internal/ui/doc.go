// Package ui contains the Fyne-based desktop user interface for the application.
// It lists the items of a resolved playlist, lets the user pick which ones to
// fetch, and renders batch progress delivered through Presenter. All UI strings
// are localized via Localization.
package ui
