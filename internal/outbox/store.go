package outbox

import (
	"context"
	"errors"
	"time"

	"barbershop-backend/internal/notifications"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	StatePending   = "pending"
	StateDelivered = "delivered"
	StateFailed    = "failed"
)

type Record struct {
	ID            string              `bson:"_id" json:"id"`
	Event         notifications.Event `bson:"event" json:"event"`
	State         string              `bson:"state" json:"state"`
	Attempts      int                 `bson:"attempts" json:"attempts"`
	NextAttemptAt time.Time           `bson:"nextAttemptAt" json:"nextAttemptAt"`
	LastError     string              `bson:"lastError,omitempty" json:"lastError,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

type Store interface {
	Enqueue(ctx context.Context, ev notifications.Event) error
	// ClaimDue leases up to limit pending records due at now; a leased
	// record is hidden from other claimers until now+lease.
	ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]Record, error)
	MarkDelivered(ctx context.Context, id string, now time.Time) error
	MarkRetry(ctx context.Context, id string, attempts int, next time.Time, lastErr string) error
	MarkFailed(ctx context.Context, id string, attempts int, lastErr string, now time.Time) error
}

type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

func (s *MongoStore) Enqueue(ctx context.Context, ev notifications.Event) error {
	now := ev.OccurredAt
	if now.IsZero() {
		now = time.Now()
	}
	rec := Record{
		ID:            primitive.NewObjectID().Hex(),
		Event:         ev,
		State:         StatePending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err := s.col.InsertOne(ctx, rec)
	return err
}

func (s *MongoStore) ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]Record, error) {
	filter := bson.M{
		"state":         StatePending,
		"nextAttemptAt": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{"nextAttemptAt": now.Add(lease), "updatedAt": now}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "nextAttemptAt", Value: 1}}).
		SetReturnDocument(options.After)

	out := make([]Record, 0, limit)
	for len(out) < limit {
		var rec Record
		err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rec)
		if errors.Is(err, mongo.ErrNoDocuments) {
			break
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *MongoStore) MarkDelivered(ctx context.Context, id string, now time.Time) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"state": StateDelivered, "updatedAt": now},
		"$inc": bson.M{"attempts": 1},
	})
	return err
}

func (s *MongoStore) MarkRetry(ctx context.Context, id string, attempts int, next time.Time, lastErr string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"attempts":      attempts,
		"nextAttemptAt": next,
		"lastError":     lastErr,
		"updatedAt":     time.Now(),
	}})
	return err
}

func (s *MongoStore) MarkFailed(ctx context.Context, id string, attempts int, lastErr string, now time.Time) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"state":     StateFailed,
		"attempts":  attempts,
		"lastError": lastErr,
		"updatedAt": now,
	}})
	return err
}
