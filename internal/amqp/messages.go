package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RecomputeKind selects which derived cache a message refreshes
type RecomputeKind string

const (
	// RecomputeKindBudget refreshes the spent cache of the budgets covering
	// one category on one date
	RecomputeKindBudget RecomputeKind = "budget"
	// RecomputeKindProgress recalculates the Baby Steps progress record
	RecomputeKindProgress RecomputeKind = "progress"
)

// RecomputeMessage asks the worker to refresh a derived cache. It carries only
// identifiers; the worker reads current state from the database, so stale or
// duplicate deliveries are harmless.
type RecomputeMessage struct {
	Kind       RecomputeKind `json:"kind"`
	UserID     uuid.UUID     `json:"userId"`
	CategoryID *uuid.UUID    `json:"categoryId,omitempty"`
	Date       *time.Time    `json:"date,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// NewBudgetRecomputeMessage creates a budget recompute message
func NewBudgetRecomputeMessage(userID, categoryID uuid.UUID, date time.Time) *RecomputeMessage {
	return &RecomputeMessage{
		Kind:       RecomputeKindBudget,
		UserID:     userID,
		CategoryID: &categoryID,
		Date:       &date,
		Timestamp:  time.Now().UTC(),
	}
}

// NewProgressRecomputeMessage creates a progress recompute message
func NewProgressRecomputeMessage(userID uuid.UUID) *RecomputeMessage {
	return &RecomputeMessage{
		Kind:      RecomputeKindProgress,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecomputeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecomputeMessageFromJSON creates a message from JSON bytes
func RecomputeMessageFromJSON(data []byte) (*RecomputeMessage, error) {
	var msg RecomputeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
