package download

import (
	"context"
	"time"

	"github.com/ytget/yt-batch-downloader/internal/model"
)

// Extractor resolves a source URL into metadata.
// Failures are reported as errors and become ResolutionError.
type Extractor interface {
	Resolve(ctx context.Context, url string) (model.Metadata, error)
}

// Fetcher retrieves and finalizes media for resolved metadata.
// progress receives fractions in [0, 1]; the returned path locates the final file.
// Implementations must return promptly once ctx is done.
type Fetcher interface {
	Download(ctx context.Context, md model.Metadata, opts model.DownloadOptions, progress func(float64)) (string, error)
}

// EventKind identifies a presenter notification
type EventKind string

const (
	EventBatchStarted     EventKind = "batch_started"
	EventItemChanged      EventKind = "item_changed"
	EventAggregateChanged EventKind = "aggregate_changed"
	EventBatchFinished    EventKind = "batch_finished"
)

// Event is a notification delivered to the Presenter.
// Item and Index are set for EventItemChanged; Summary is set for every kind.
type Event struct {
	Kind    EventKind
	BatchID string
	Index   int
	Item    model.ItemSnapshot
	Summary model.Summary
}

// Presenter receives batch notifications. Calls are serialized by the
// coordinator and made while its lock is held, so Notify must not block on
// or call back into the coordinator.
type Presenter interface {
	Notify(Event)
}

// PresenterFunc adapts a function to Presenter
type PresenterFunc func(Event)

// Notify calls f(e)
func (f PresenterFunc) Notify(e Event) { f(e) }

// NopPresenter discards all events
type NopPresenter struct{}

// Notify does nothing
func (NopPresenter) Notify(Event) {}

// ItemRecord is the persisted outcome of one item
type ItemRecord struct {
	Source     string                `json:"source"`
	Title      string                `json:"title"`
	State      model.ItemState       `json:"state"`
	OutputPath string                `json:"output_path,omitempty"`
	Error      string                `json:"error,omitempty"`
	Category   model.FailureCategory `json:"category,omitempty"`
}

// BatchRecord is the persisted outcome of a finished batch
type BatchRecord struct {
	ID         string             `json:"id"`
	Mode       model.DownloadMode `json:"mode"`
	Directory  string             `json:"directory"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Summary    model.Summary      `json:"summary"`
	Items      []ItemRecord       `json:"items"`
}

// Recorder stores finished batches
type Recorder interface {
	RecordBatch(rec BatchRecord) error
}

// Reporter receives the transitions of a single item from an ItemWorker
type Reporter interface {
	// Begin moves the item to Downloading. It returns false when the batch was
	// cancelled, in which case the item has already been marked Cancelled.
	Begin(item *model.MediaItem) bool
	// Resolved publishes metadata learned for the item
	Resolved(item *model.MediaItem, md model.Metadata)
	// Progress publishes an accepted progress fraction
	Progress(item *model.MediaItem, fraction float64)
	// Finish applies the terminal outcome
	Finish(item *model.MediaItem, out Outcome)
}

// Outcome is the terminal result of one item
type Outcome struct {
	State      model.ItemState
	OutputPath string
	Category   model.FailureCategory
	Detail     string
	Err        error
}
