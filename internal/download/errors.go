package download

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ytget/yt-batch-downloader/internal/model"
)

var (
	// ErrNothingSelected is returned by Start when no item is selected
	ErrNothingSelected = errors.New("no items selected")

	// ErrBatchRunning is returned by Start while another batch is in progress
	ErrBatchRunning = errors.New("a batch is already running")

	// ErrInvalidParallelism is returned by Start for a parallelism below one
	ErrInvalidParallelism = errors.New("max parallel downloads must be at least 1")

	// ErrCancelled signals that work stopped because the batch was cancelled
	ErrCancelled = errors.New("download cancelled")
)

// ResolutionError reports that metadata for a source could not be resolved
type ResolutionError struct {
	URL string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.URL, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// FetchError reports a failure while fetching or finalizing media
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

const maxDetailRunes = 120

// classify maps an item error onto its terminal state and failure category
func classify(batchCtx, itemCtx context.Context, err error) (model.ItemState, model.FailureCategory) {
	if batchCtx.Err() != nil || errors.Is(err, ErrCancelled) {
		return model.StateCancelled, model.CategoryNone
	}
	if errors.Is(itemCtx.Err(), context.DeadlineExceeded) {
		return model.StateFailed, model.CategoryTimedOut
	}
	if errors.Is(err, context.Canceled) {
		return model.StateCancelled, model.CategoryNone
	}
	var re *ResolutionError
	if errors.As(err, &re) {
		return model.StateFailed, model.CategorySourceUnreachable
	}
	return model.StateFailed, model.CategoryDownloadFailed
}

var describeRules = []struct {
	needles []string
	text    string
}{
	{[]string{"ffmpeg"}, "ffmpeg is missing or failed; install ffmpeg and retry"},
	{[]string{"403", "forbidden"}, "access denied by the server (HTTP 403)"},
	{[]string{"404", "not found", "unavailable"}, "video not found or unavailable"},
	{[]string{"private"}, "video is private"},
	{[]string{"age-restricted", "age restricted", "confirm your age", "login required"}, "video is age-restricted and requires sign-in"},
	{[]string{"copyright", "blocked"}, "video is blocked in your region or for copyright reasons"},
	{[]string{"network", "connection", "no such host", "dial tcp", "timeout", "deadline exceeded"}, "network error, check your connection"},
}

// Describe returns a short single-line description of err suitable for display
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var re *ResolutionError
	var fe *FetchError
	switch {
	case errors.As(err, &re) && re.Err != nil:
		err = re.Err
	case errors.As(err, &fe) && fe.Err != nil:
		err = fe.Err
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, rule := range describeRules {
		for _, needle := range rule.needles {
			if strings.Contains(lower, needle) {
				return rule.text
			}
		}
	}

	if i := strings.IndexAny(msg, "\r\n"); i >= 0 {
		msg = msg[:i]
	}
	msg = strings.TrimSpace(msg)
	if utf8.RuneCountInString(msg) > maxDetailRunes {
		runes := []rune(msg)
		msg = string(runes[:maxDetailRunes-3]) + "..."
	}
	if msg == "" {
		return "unknown error"
	}
	return msg
}
