package model

import "fmt"

// Summary counts the terminal outcomes of a batch
type Summary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// Finished returns the number of items in a terminal state
func (s Summary) Finished() int {
	return s.Completed + s.Failed + s.Cancelled
}

// Add counts one terminal state
func (s *Summary) Add(state ItemState) {
	switch state {
	case StateCompleted:
		s.Completed++
	case StateFailed:
		s.Failed++
	case StateCancelled:
		s.Cancelled++
	}
}

// String renders the summary as "X completed, Y failed, Z cancelled"
func (s Summary) String() string {
	return fmt.Sprintf("%d completed, %d failed, %d cancelled", s.Completed, s.Failed, s.Cancelled)
}
