package bookings

import (
	"context"
	"errors"
	"time"

	"barbershop-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StatusChange describes a conditional status write.
type StatusChange struct {
	From        []models.Status
	To          models.Status
	CancelledBy string
	Now         time.Time
}

type Repository interface {
	Create(ctx context.Context, b models.Booking) error
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]models.Booking, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	ListByCustomer(ctx context.Context, phoneKey, userID string) ([]models.Booking, error)
	GetByID(ctx context.Context, id string) (models.Booking, error)
	// Transition applies change only while the stored status is one of
	// change.From and returns the updated booking.
	Transition(ctx context.Context, id string, change StatusChange) (models.Booking, error)
	Reschedule(ctx context.Context, id, date, slot string, now time.Time) (models.Booking, error)
	Delete(ctx context.Context, id string) error
	// ListByDateRange returns bookings with from <= date <= to.
	ListByDateRange(ctx context.Context, from, to string) ([]models.Booking, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, b models.Booking) error {
	if _, err := r.col.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotTaken
		}
		return err
	}
	return nil
}

// BackfillPhoneKeys sets phoneKey on bookings stored before the field existed.
func (r *MongoRepository) BackfillPhoneKeys(ctx context.Context) (int, error) {
	cur, err := r.col.Find(ctx, bson.M{"phoneKey": bson.M{"$exists": false}},
		options.Find().SetProjection(bson.M{"_id": 1, "customerPhone": 1}))
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	updated := 0
	for cur.Next(ctx) {
		var doc struct {
			ID    string `bson:"_id"`
			Phone string `bson:"customerPhone"`
		}
		if err := cur.Decode(&doc); err != nil {
			return updated, err
		}
		_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": bson.M{"phoneKey": models.PhoneKey(doc.Phone)}})
		if err != nil {
			return updated, err
		}
		updated++
	}
	return updated, cur.Err()
}

func listQuery(filter ListFilter) bson.M {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return query
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]models.Booking, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)
	return r.find(ctx, listQuery(filter), opts)
}

func (r *MongoRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return r.col.CountDocuments(ctx, listQuery(filter))
}

func (r *MongoRepository) ListByCustomer(ctx context.Context, phoneKey, userID string) ([]models.Booking, error) {
	or := bson.A{}
	if phoneKey != "" {
		or = append(or, bson.M{"phoneKey": phoneKey})
	}
	if userID != "" {
		or = append(or, bson.M{"userId": userID})
	}
	if len(or) == 0 {
		return []models.Booking{}, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(200)
	return r.find(ctx, bson.M{"$or": or}, opts)
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (models.Booking, error) {
	var b models.Booking
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Booking{}, ErrNotFound
		}
		return models.Booking{}, err
	}
	return b, nil
}

func (r *MongoRepository) Transition(ctx context.Context, id string, change StatusChange) (models.Booking, error) {
	set := bson.M{
		"status":    change.To,
		"occupied":  change.To.Occupies(),
		"updatedAt": change.Now,
	}
	if change.CancelledBy != "" {
		set["cancelledAt"] = change.Now
		set["cancelledBy"] = change.CancelledBy
	}
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": change.From},
	}
	return r.conditionalUpdate(ctx, id, filter, bson.M{"$set": set, "$inc": bson.M{"version": 1}})
}

func (r *MongoRepository) Reschedule(ctx context.Context, id, date, slot string, now time.Time) (models.Booking, error) {
	update := bson.M{
		"$set": bson.M{
			"date":          date,
			"time":          slot,
			"status":        models.StatusPending,
			"occupied":      true,
			"rescheduledAt": now,
			"updatedAt":     now,
		},
		"$inc": bson.M{"version": 1},
	}
	b, err := r.conditionalUpdate(ctx, id, bson.M{"_id": id}, update)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return models.Booking{}, ErrSlotTaken
	}
	return b, err
}

func (r *MongoRepository) conditionalUpdate(ctx context.Context, id string, filter, update bson.M) (models.Booking, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Booking
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Booking{}, err
	}
	// nothing matched: either the booking is gone or its status moved on
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return models.Booking{}, getErr
	}
	return models.Booking{}, ErrInvalidTransition
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) ListByDateRange(ctx context.Context, from, to string) ([]models.Booking, error) {
	query := bson.M{"date": bson.M{"$gte": from, "$lte": to}}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}})
	return r.find(ctx, query, opts)
}

func (r *MongoRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]models.Booking, 0)
	for cursor.Next(ctx) {
		var item models.Booking
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
