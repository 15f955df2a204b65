package ui

import (
	"sync"

	"fyne.io/fyne/v2"

	"github.com/ytget/yt-batch-downloader/internal/download"
	"github.com/ytget/yt-batch-downloader/internal/model"
)

// batchView is the part of the window a Presenter drives
type batchView interface {
	itemChanged(row int, snap model.ItemSnapshot)
	aggregateChanged(sum model.Summary)
	batchFinished(sum model.Summary)
}

// Presenter forwards coordinator events to the window. Notify is called with
// the coordinator lock held, so it only copies the event and schedules the
// widget update on the Fyne goroutine.
type Presenter struct {
	mu   sync.Mutex
	view batchView
	rows []int // batch index -> list row
	do   func(func())
}

// NewPresenter creates a presenter that updates widgets through fyne.Do
func NewPresenter() *Presenter {
	return &Presenter{do: fyne.Do}
}

func (p *Presenter) attach(view batchView) {
	p.mu.Lock()
	p.view = view
	p.mu.Unlock()
}

// expect records which list rows the next batch's items occupy
func (p *Presenter) expect(rows []int) {
	p.mu.Lock()
	p.rows = rows
	p.mu.Unlock()
}

// Notify implements download.Presenter
func (p *Presenter) Notify(e download.Event) {
	p.mu.Lock()
	view := p.view
	row := -1
	if e.Index >= 0 && e.Index < len(p.rows) {
		row = p.rows[e.Index]
	}
	p.mu.Unlock()

	if view == nil {
		return
	}

	switch e.Kind {
	case download.EventItemChanged:
		if row < 0 {
			return
		}
		snap := e.Item
		p.do(func() { view.itemChanged(row, snap) })
	case download.EventBatchStarted, download.EventAggregateChanged:
		sum := e.Summary
		p.do(func() { view.aggregateChanged(sum) })
	case download.EventBatchFinished:
		sum := e.Summary
		p.do(func() { view.batchFinished(sum) })
	}
}
