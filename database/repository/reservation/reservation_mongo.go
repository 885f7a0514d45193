package reservationRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tourspot/database"
	"tourspot/models"
)

// MongoReservationRepo implements Repository using MongoDB.
type MongoReservationRepo struct {
	reservationColl *mongo.Collection
}

// NewMongoReservationRepo constructs a new instance of MongoReservationRepo.
func NewMongoReservationRepo() Repository {
	db := database.MongoClient.Database(database.Name())
	return &MongoReservationRepo{
		reservationColl: db.Collection("reservations"),
	}
}

func (repo *MongoReservationRepo) Insert(ctx context.Context, r *models.Reservation) error {
	if _, err := repo.reservationColl.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("insert reservation failed: %w", err)
	}
	return nil
}

func (repo *MongoReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	var r models.Reservation
	if err := repo.reservationColl.FindOne(ctx, bson.M{"id": id}).Decode(&r); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching reservation %s: %w", id, err)
	}
	return &r, nil
}

func (repo *MongoReservationRepo) UpdateStatus(ctx context.Context, id string, from, to models.Status, at time.Time) (*models.Reservation, error) {
	filter := bson.M{"id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var r models.Reservation
	err := repo.reservationColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&r)
	if err == mongo.ErrNoDocuments {
		// Distinguish a missing row from a concurrent transition.
		if _, getErr := repo.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrStatusConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update reservation status failed: %w", err)
	}
	return &r, nil
}

func (repo *MongoReservationRepo) SetPaymentIntent(ctx context.Context, id, intentID string) error {
	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{"payment_intent_id": intentID, "updated_at": time.Now()}}
	res, err := repo.reservationColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("set payment intent failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (repo *MongoReservationRepo) ListByRequester(ctx context.Context, requesterID string, status models.Status, page, limit int) ([]models.Reservation, error) {
	filter := bson.M{"requester_id": requesterID}
	if status != "" {
		filter["status"] = status
	}
	return repo.list(ctx, filter, page, limit)
}

func (repo *MongoReservationRepo) ListByResource(ctx context.Context, resourceID string, status models.Status, page, limit int) ([]models.Reservation, error) {
	filter := bson.M{"resource_id": resourceID}
	if status != "" {
		filter["status"] = status
	}
	return repo.list(ctx, filter, page, limit)
}

func (repo *MongoReservationRepo) list(ctx context.Context, filter bson.M, page, limit int) ([]models.Reservation, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := repo.reservationColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Reservation
	for cursor.Next(ctx) {
		var r models.Reservation
		if err := cursor.Decode(&r); err != nil {
			return nil, fmt.Errorf("error decoding reservation: %w", err)
		}
		out = append(out, r)
	}
	return out, cursor.Err()
}

func (repo *MongoReservationRepo) ListExpiredPending(ctx context.Context, cutoff time.Time) ([]models.Reservation, error) {
	filter := bson.M{
		"status":     models.StatusPending,
		"created_at": bson.M{"$lt": cutoff},
	}
	return repo.list(ctx, filter, 1, 100)
}
