package amqp

import (
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

// EventType names a ledger change.
type EventType string

const (
	EventCreated EventType = "ledger.created"
	EventUpdated EventType = "ledger.updated"
	EventDeleted EventType = "ledger.deleted"
)

// LedgerEvent describes one change to the ledger. It carries ids and affected months
// only; consumers read the records themselves when they need them.
type LedgerEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	RecordIDs  []string  `json:"recordIds,omitempty"`
	SeriesID   string    `json:"seriesId,omitempty"`
	Months     []string  `json:"months,omitempty"` // YYYY-MM, sorted
	OccurredAt time.Time `json:"occurredAt"`
}

// NewLedgerEvent stamps a new event with a fresh id and the current time.
func NewLedgerEvent(t EventType, recordIDs []string, seriesID string, months []string) *LedgerEvent {
	months = slices.Clone(months)
	slices.Sort(months)
	return &LedgerEvent{
		ID:         uuid.NewString(),
		Type:       t,
		RecordIDs:  slices.Clone(recordIDs),
		SeriesID:   seriesID,
		Months:     slices.Compact(months),
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event and rejects ones without id or known type.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.ID == "" {
		return nil, errors.New("ledger event without id")
	}
	switch e.Type {
	case EventCreated, EventUpdated, EventDeleted:
	default:
		return nil, errors.New("unknown ledger event type " + string(e.Type))
	}
	return &e, nil
}
