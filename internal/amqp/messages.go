package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"garagetracker/internal/core"
)

// EventAction says what happened to a ledger row.
type EventAction string

const (
	ActionCreated EventAction = "created"
	ActionDeleted EventAction = "deleted"
)

// LedgerEvent announces a change to one ledger row. Created events carry the
// whole row so consumers never read the store; deleted events carry ID and
// Kind only.
type LedgerEvent struct {
	Action      EventAction     `json:"action"`
	Kind        core.LedgerKind `json:"kind"`
	ID          string          `json:"id"`
	Date        core.Date       `json:"date"`
	Label       string          `json:"label"`
	AmountCents int64           `json:"amount_cents"`
	Timestamp   time.Time       `json:"timestamp"`
}

// NewLedgerEvent creates an event for entry stamped with the current time.
func NewLedgerEvent(action EventAction, entry core.LedgerEntry) *LedgerEvent {
	return &LedgerEvent{
		Action:      action,
		Kind:        entry.Kind,
		ID:          entry.ID,
		Date:        entry.Date,
		Label:       entry.Label,
		AmountCents: entry.Amount.Cents,
		Timestamp:   time.Now(),
	}
}

// Entry converts the event back into a ledger row.
func (m *LedgerEvent) Entry() core.LedgerEntry {
	return core.LedgerEntry{
		ID:     m.ID,
		Kind:   m.Kind,
		Date:   m.Date,
		Label:  m.Label,
		Amount: core.Money{Cents: m.AmountCents},
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes and sanity-checks a message body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("ledger event without id")
	}
	switch msg.Action {
	case ActionCreated, ActionDeleted:
	default:
		return nil, fmt.Errorf("unknown ledger event action %q", msg.Action)
	}
	return &msg, nil
}
