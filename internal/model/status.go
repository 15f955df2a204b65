package model

// ItemState represents the lifecycle state of a single media item
type ItemState string

const (
	// StatePending means the item is selected (or idle) and not yet dispatched
	StatePending ItemState = "Pending"

	// StateDownloading means a worker owns the item
	StateDownloading ItemState = "Downloading"

	// StateCompleted means the item was fetched and finalized
	StateCompleted ItemState = "Completed"

	// StateFailed means resolution or fetching raised an error
	StateFailed ItemState = "Failed"

	// StateCancelled means the batch was cancelled before the item finished
	StateCancelled ItemState = "Cancelled"
)

// String returns the string representation of ItemState
func (s ItemState) String() string {
	return string(s)
}

// IsActive returns true if a worker currently owns the item
func (s ItemState) IsActive() bool {
	return s == StateDownloading
}

// IsTerminal returns true for Completed, Failed and Cancelled.
// Terminal states are never left during a batch.
func (s ItemState) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// FailureCategory is the coarse user-facing reason attached to a failed item
type FailureCategory string

const (
	CategoryNone              FailureCategory = ""
	CategorySourceUnreachable FailureCategory = "source unreachable"
	CategoryDownloadFailed    FailureCategory = "download failed"
	CategoryTimedOut          FailureCategory = "timed out"
)
