package models

import "time"

// Review is feedback left by a requester after a completed reservation.
type Review struct {
	ID            string    `bson:"id" json:"id"`
	ReservationID string    `bson:"reservation_id" json:"reservation_id"`
	ResourceID    string    `bson:"resource_id" json:"resource_id"`
	ReviewerID    string    `bson:"reviewer_id" json:"reviewer_id"`
	Rating        int       `bson:"rating" json:"rating"` // 1..5
	Comment       string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

// RatingAggregate is the derived rating state carried on a resource. It is
// recomputed from a full rescan of the resource's reviews, never maintained
// incrementally.
type RatingAggregate struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}
