package reviewRepo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tourspot/database"
	"tourspot/models"
)

// MongoReviewRepo implements Repository using MongoDB.
type MongoReviewRepo struct {
	reviewColl *mongo.Collection
}

// NewMongoReviewRepo constructs a new instance of MongoReviewRepo.
func NewMongoReviewRepo() Repository {
	db := database.MongoClient.Database(database.Name())
	return &MongoReviewRepo{
		reviewColl: db.Collection("reviews"),
	}
}

func (repo *MongoReviewRepo) Insert(ctx context.Context, review *models.Review) error {
	if _, err := repo.reviewColl.InsertOne(ctx, review); err != nil {
		return fmt.Errorf("insert review failed: %w", err)
	}
	return nil
}

func (repo *MongoReviewRepo) ListByResource(ctx context.Context, resourceID string) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := repo.reviewColl.Find(ctx, bson.M{"resource_id": resourceID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Review
	for cursor.Next(ctx) {
		var r models.Review
		if err := cursor.Decode(&r); err != nil {
			return nil, fmt.Errorf("error decoding review: %w", err)
		}
		out = append(out, r)
	}
	return out, cursor.Err()
}

func (repo *MongoReviewRepo) Aggregate(ctx context.Context, resourceID string) (models.RatingAggregate, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"resource_id": resourceID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"average": bson.M{"$avg": "$rating"},
			"count":   bson.M{"$sum": 1},
		}}},
	}

	cursor, err := repo.reviewColl.Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingAggregate{}, fmt.Errorf("rating aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	var agg models.RatingAggregate
	if cursor.Next(ctx) {
		if err := cursor.Decode(&agg); err != nil {
			return models.RatingAggregate{}, fmt.Errorf("error decoding rating aggregate: %w", err)
		}
	}
	return agg, cursor.Err()
}
