// Package task tracks the observable status of background import jobs.
package task

import "time"

type State string

const (
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Progress reports how far the per-city publication loop has advanced.
type Progress struct {
	Current     int    `json:"current"`
	Total       int    `json:"total"`
	CurrentCity string `json:"current_city,omitempty"`
}

// CityError is one recorded failure, attributed to a city (or "Общие" for
// run-level warnings).
type CityError struct {
	City    string `json:"city"`
	Message string `json:"message"`
}

// Status is the full observable record of one import job. It is owned and
// mutated by exactly one job; pollers get copies.
type Status struct {
	State        State       `json:"status"`
	Progress     Progress    `json:"progress"`
	Errors       []CityError `json:"errors"`
	Success      []string    `json:"success"`
	Error        string      `json:"error,omitempty"`
	ErrorDetails string      `json:"error_details,omitempty"`

	UpdatedAt time.Time `json:"-"`
}

// clone returns a deep copy so concurrent pollers never alias the slices
// the owning job keeps appending to. The copies stay non-nil so the
// status always serializes with "errors" and "success" arrays.
func (s *Status) clone() *Status {
	out := *s
	out.Errors = make([]CityError, len(s.Errors))
	copy(out.Errors, s.Errors)
	out.Success = make([]string, len(s.Success))
	copy(out.Success, s.Success)
	return &out
}
