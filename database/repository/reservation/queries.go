package reservationRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tourspot/models"
)

// SumOverlapping aggregates the total booked quantity of capacity-holding
// reservations (pending or confirmed) on a resource whose interval overlaps
// the requested one. Half-open semantics: stored [start, end) overlaps the
// requested [s, e) iff start < e AND end > s, so a checkout date equal to
// the next check-in does not collide.
func (repo *MongoReservationRepo) SumOverlapping(ctx context.Context, resourceID string, iv models.Interval) (int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"resource_id":    resourceID,
			"status":         bson.M{"$in": []models.Status{models.StatusPending, models.StatusConfirmed}},
			"interval.start": bson.M{"$lt": iv.End},
			"interval.end":   bson.M{"$gt": iv.Start},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$quantity"},
		}}},
	}

	cursor, err := repo.reservationColl.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("overlap aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Total int `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("error decoding overlap sum: %w", err)
		}
	}
	return result.Total, cursor.Err()
}

// StatsByResource computes the owner dashboard summary: reservation counts
// per status and completed revenue, in a single aggregation pass.
func (repo *MongoReservationRepo) StatsByResource(ctx context.Context, resourceID string) (*models.ResourceStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"resource_id": resourceID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": 1},
			"pending": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.StatusPending}}, 1, 0},
			}},
			"confirmed": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.StatusConfirmed}}, 1, 0},
			}},
			"completed": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.StatusCompleted}}, 1, 0},
			}},
			"cancelled": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.StatusCancelled}}, 1, 0},
			}},
			"revenue": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.StatusCompleted}}, "$quoted_amount", 0},
			}},
		}}},
	}

	cursor, err := repo.reservationColl.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("stats aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	var row struct {
		Total     int          `bson:"total"`
		Pending   int          `bson:"pending"`
		Confirmed int          `bson:"confirmed"`
		Completed int          `bson:"completed"`
		Cancelled int          `bson:"cancelled"`
		Revenue   models.Money `bson:"revenue"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("error decoding stats: %w", err)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return &models.ResourceStats{
		ResourceID:        resourceID,
		TotalReservations: row.Total,
		Pending:           row.Pending,
		Confirmed:         row.Confirmed,
		Completed:         row.Completed,
		Cancelled:         row.Cancelled,
		CompletedRevenue:  row.Revenue,
		ComputedAt:        time.Now(),
	}, nil
}
