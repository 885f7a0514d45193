package models

import "time"

// ResourceStats is the owner dashboard summary for a single resource.
// Revenue counts completed reservations only.
type ResourceStats struct {
	ResourceID        string    `bson:"resource_id" json:"resource_id"`
	TotalReservations int       `bson:"total_reservations" json:"total_reservations"`
	Pending           int       `bson:"pending" json:"pending"`
	Confirmed         int       `bson:"confirmed" json:"confirmed"`
	Completed         int       `bson:"completed" json:"completed"`
	Cancelled         int       `bson:"cancelled" json:"cancelled"`
	CompletedRevenue  Money     `bson:"completed_revenue" json:"completed_revenue"`
	ComputedAt        time.Time `bson:"computed_at" json:"computed_at"`
}
