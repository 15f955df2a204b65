package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	// ErrInvalidTransition is returned when a state change is not allowed
	// from the item's current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrSelectionFrozen is returned when selection is changed while a batch owns the item.
	ErrSelectionFrozen = errors.New("selection is frozen while a batch is running")
)

// MaxInFlightProgress caps progress while downloading; 1.0 is reserved for Completed.
const MaxInFlightProgress = 0.99

// Metadata is the resolved description of a media source
type Metadata struct {
	ID       string
	Title    string
	Author   string
	Duration time.Duration
	URL      string // canonical source URL
	Payload  any    // extractor specific, opaque to the coordinator
}

// MediaItem is one downloadable unit of a playlist
type MediaItem struct {
	Source string // URL or opaque video id
	ID     string

	mu         sync.Mutex
	title      string
	duration   time.Duration
	selected   bool
	frozen     bool
	state      ItemState
	progress   float64
	outputPath string
	errText    string
	category   FailureCategory
	startedAt  time.Time
	finishedAt time.Time
}

// ItemSnapshot is a point-in-time copy of a MediaItem
type ItemSnapshot struct {
	Source     string
	ID         string
	Title      string
	Duration   time.Duration
	Selected   bool
	State      ItemState
	Progress   float64
	OutputPath string
	Error      string
	Category   FailureCategory
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewMediaItem creates a selected, pending item
func NewMediaItem(source, id, title string, duration time.Duration) *MediaItem {
	return &MediaItem{
		Source:   source,
		ID:       id,
		title:    title,
		duration: duration,
		selected: true,
		state:    StatePending,
	}
}

// Title returns the current title
func (m *MediaItem) Title() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.title
}

// ApplyMetadata fills title and duration from resolved metadata when they are unknown
func (m *MediaItem) ApplyMetadata(md Metadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.title == "" || strings.HasPrefix(m.title, "http") {
		m.title = md.Title
	}
	if m.duration == 0 {
		m.duration = md.Duration
	}
}

// Selected reports whether the item is part of the next batch
func (m *MediaItem) Selected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// SetSelected changes selection unless a running batch owns the item
func (m *MediaItem) SetSelected(selected bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frozen {
		return ErrSelectionFrozen
	}
	m.selected = selected
	return nil
}

// Freeze locks the selection flag for the lifetime of a batch
func (m *MediaItem) Freeze() {
	m.mu.Lock()
	m.frozen = true
	m.mu.Unlock()
}

// Unfreeze releases the selection flag
func (m *MediaItem) Unfreeze() {
	m.mu.Lock()
	m.frozen = false
	m.mu.Unlock()
}

// State returns the lifecycle state
func (m *MediaItem) State() ItemState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Progress returns the progress fraction in [0, 1]
func (m *MediaItem) Progress() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

// Start moves a pending item to Downloading
func (m *MediaItem) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, StateDownloading)
	}
	m.state = StateDownloading
	m.progress = 0
	m.startedAt = time.Now()
	return nil
}

// SetProgress records a new progress fraction. Values are clamped below 1.0
// and only increases are accepted; the return value reports whether the
// stored progress changed.
func (m *MediaItem) SetProgress(fraction float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateDownloading {
		return false
	}
	if fraction > MaxInFlightProgress {
		fraction = MaxInFlightProgress
	}
	if fraction <= m.progress {
		return false
	}
	m.progress = fraction
	return true
}

// Complete marks a downloading item as finished with the given result path
func (m *MediaItem) Complete(outputPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateDownloading {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, StateCompleted)
	}
	if outputPath == "" {
		return errors.New("completed item requires an output path")
	}
	m.state = StateCompleted
	m.progress = 1.0
	m.outputPath = outputPath
	m.finishedAt = time.Now()
	return nil
}

// Fail marks a downloading item as failed
func (m *MediaItem) Fail(category FailureCategory, detail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateDownloading {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, StateFailed)
	}
	if detail == "" {
		detail = string(category)
	}
	if detail == "" {
		detail = "unknown error"
	}
	m.state = StateFailed
	m.errText = detail
	m.category = category
	m.finishedAt = time.Now()
	return nil
}

// Cancel marks a pending or downloading item as cancelled
func (m *MediaItem) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePending && m.state != StateDownloading {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, StateCancelled)
	}
	m.state = StateCancelled
	m.finishedAt = time.Now()
	return nil
}

// Reset returns an idle item to Pending so it can join a new batch
func (m *MediaItem) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frozen || m.state == StateDownloading {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, StatePending)
	}
	m.state = StatePending
	m.progress = 0
	m.outputPath = ""
	m.errText = ""
	m.category = CategoryNone
	m.startedAt = time.Time{}
	m.finishedAt = time.Time{}
	return nil
}

// Snapshot returns a copy of the item's current fields
func (m *MediaItem) Snapshot() ItemSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ItemSnapshot{
		Source:     m.Source,
		ID:         m.ID,
		Title:      m.title,
		Duration:   m.duration,
		Selected:   m.selected,
		State:      m.state,
		Progress:   m.progress,
		OutputPath: m.outputPath,
		Error:      m.errText,
		Category:   m.category,
		StartedAt:  m.startedAt,
		FinishedAt: m.finishedAt,
	}
}

// DisplayTitle returns title, filename, or source in order of preference
func (s ItemSnapshot) DisplayTitle() string {
	if s.Title != "" && !strings.HasPrefix(s.Title, "http") {
		return s.Title
	}

	if s.OutputPath != "" {
		parts := strings.FieldsFunc(s.OutputPath, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			filename := parts[len(parts)-1]
			if idx := strings.LastIndex(filename, "."); idx > 0 {
				filename = filename[:idx]
			}
			return filename
		}
	}

	return s.Source
}

// DurationText returns the nominal duration as m:ss or h:mm:ss, empty if unknown
func (s ItemSnapshot) DurationText() string {
	return FormatDuration(s.Duration)
}

// FormatDuration formats d as m:ss or h:mm:ss. Zero and negative durations yield "".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	total := int(d.Round(time.Second).Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
