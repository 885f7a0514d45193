package resourceRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tourspot/database"
	"tourspot/models"
)

// MongoResourceRepo implements Repository using MongoDB.
type MongoResourceRepo struct {
	resourceColl *mongo.Collection
}

// NewMongoResourceRepo constructs a new instance of MongoResourceRepo.
func NewMongoResourceRepo() Repository {
	db := database.MongoClient.Database(database.Name())
	return &MongoResourceRepo{
		resourceColl: db.Collection("resources"),
	}
}

func (repo *MongoResourceRepo) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	var r models.Resource
	if err := repo.resourceColl.FindOne(ctx, bson.M{"id": id}).Decode(&r); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching resource %s: %w", id, err)
	}
	return &r, nil
}

func (repo *MongoResourceRepo) Create(ctx context.Context, r *models.Resource) error {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	if _, err := repo.resourceColl.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("insert resource failed: %w", err)
	}
	return nil
}

func (repo *MongoResourceRepo) UpdateBaseRate(ctx context.Context, id string, rate models.Money) error {
	update := bson.M{"$set": bson.M{"base_rate": rate, "updated_at": time.Now()}}
	res, err := repo.resourceColl.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("update base rate failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (repo *MongoResourceRepo) UpdateRating(ctx context.Context, id string, agg models.RatingAggregate) error {
	update := bson.M{"$set": bson.M{
		"rating":       agg.Average,
		"review_count": agg.Count,
		"updated_at":   time.Now(),
	}}
	res, err := repo.resourceColl.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("update rating aggregate failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
