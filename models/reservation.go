package models

import "time"

// Status is a reservation lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusRefunded  Status = "refunded"
)

// Active reports whether the status counts against resource capacity.
// Pending reservations hold capacity until resolved or expired.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Terminal reports whether no further transitions are permitted.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusCompleted, StatusRefunded:
		return true
	}
	return false
}

// Reservation is the central booking record. QuotedAmount is fixed at
// creation and never recomputed, so later base-rate changes do not affect
// existing bookings.
type Reservation struct {
	ID              string       `bson:"id" json:"id"`
	ResourceID      string       `bson:"resource_id" json:"resource_id"`
	ResourceKind    ResourceKind `bson:"resource_kind" json:"resource_kind"`
	RequesterID     string       `bson:"requester_id" json:"requester_id"`
	Interval        Interval     `bson:"interval" json:"interval"`
	Quantity        int          `bson:"quantity" json:"quantity"`
	PartySize       int          `bson:"party_size" json:"party_size"`
	DurationUnits   int          `bson:"duration_units" json:"duration_units"` // hours for guides, nights for rooms
	Status          Status       `bson:"status" json:"status"`
	QuotedAmount    Money        `bson:"quoted_amount" json:"quoted_amount"`
	PaymentIntentID string       `bson:"payment_intent_id,omitempty" json:"payment_intent_id,omitempty"`
	Notes           string       `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `bson:"updated_at" json:"updated_at"`
}
