package server

import (
	"encoding/json"

	"github.com/lawnchairsociety/killrate/internal/results"
)

// Request types accepted from subscribers.
const (
	RequestRecompute  = "recompute"
	RequestSetRates   = "set_rates"
	RequestApplyRates = "apply_rates"
	RequestCancel     = "cancel"

	requestInvalid = "invalid"
)

// Request is an inbound frame.
type Request struct {
	Type string `json:"type"`

	// Targets restricts a recompute; empty means everything.
	Targets []results.Key `json:"targets,omitempty"`

	// Rates is a consumable cost export for set_rates.
	Rates json.RawMessage `json:"rates,omitempty"`

	// Apply toggles amortization for apply_rates.
	Apply *bool `json:"apply,omitempty"`

	// Error is set locally when the frame could not be decoded.
	Error string `json:"-"`
}

// Event types pushed to subscribers.
const (
	EventStarted   = "started"
	EventProgress  = "progress"
	EventBatch     = "batch"
	EventCancelled = "cancelled"
	EventRates     = "rates"
	EventError     = "error"
)

// Event is an outbound frame.
type Event struct {
	Type    string `json:"type"`
	BatchID string `json:"batch_id,omitempty"`

	Key     *results.Key `json:"key,omitempty"`
	Done    int          `json:"done,omitempty"`
	Total   int          `json:"total,omitempty"`
	Success *bool        `json:"success,omitempty"`
	Reason  string       `json:"reason,omitempty"`

	Results *results.Set    `json:"results,omitempty"`
	Rates   json.RawMessage `json:"rates,omitempty"`
	Message string          `json:"message,omitempty"`
}
