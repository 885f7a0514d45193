package models

import "time"

// ResourceKind discriminates the two bookable entity types.
type ResourceKind string

const (
	KindRoom  ResourceKind = "room"
	KindGuide ResourceKind = "guide"
)

// Resource is a bookable capacity-bearing entity: a hotel room type or a
// guide slot. Guides always have capacity 1 per overlapping interval;
// room types carry the hotel's unit count.
type Resource struct {
	ID          string       `bson:"id" json:"id"`
	Kind        ResourceKind `bson:"kind" json:"kind"`
	OwnerID     string       `bson:"owner_id" json:"owner_id"` // hotel or guide account that manages the resource
	Name        string       `bson:"name" json:"name"`
	City        string       `bson:"city" json:"city"`
	TotalUnits  int          `bson:"total_units" json:"total_units"`
	BaseRate    Money        `bson:"base_rate" json:"base_rate"`                             // per hour for guides, per night for rooms
	VehicleRate Money        `bson:"vehicle_rate,omitempty" json:"vehicle_rate,omitempty"`   // optional paired vehicle, flat amount per booking
	Rating      float64      `bson:"rating" json:"rating"`
	ReviewCount int          `bson:"review_count" json:"review_count"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `bson:"updated_at" json:"updated_at"`
}

// Capacity returns the number of units the resource can hold for any
// overlapping interval. Guides are capacity 1 regardless of TotalUnits.
func (r *Resource) Capacity() int {
	if r.Kind == KindGuide {
		return 1
	}
	return r.TotalUnits
}
