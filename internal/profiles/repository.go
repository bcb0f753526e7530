package profiles

import (
	"context"
	"errors"
	"time"

	"barbershop-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CompletionPoints   = 10
	CompletionBookings = 1
)

var ErrNotFound = errors.New("profile not found")

type Repository interface {
	Get(ctx context.Context, userID string) (models.UserProfile, error)
	// AwardCompletion adds the completion reward, creating the profile on
	// first use.
	AwardCompletion(ctx context.Context, userID string, now time.Time) (models.UserProfile, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Get(ctx context.Context, userID string) (models.UserProfile, error) {
	var p models.UserProfile
	if err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.UserProfile{}, ErrNotFound
		}
		return models.UserProfile{}, err
	}
	return p, nil
}

func (r *MongoRepository) AwardCompletion(ctx context.Context, userID string, now time.Time) (models.UserProfile, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	update := bson.M{
		"$inc": bson.M{"loyaltyPoints": CompletionPoints, "totalBookings": CompletionBookings},
		"$set": bson.M{"updatedAt": now},
	}

	var p models.UserProfile
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&p); err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}
