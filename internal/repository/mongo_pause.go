package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPauseRepository implements domain.PauseRepository
type MongoPauseRepository struct {
	collection *mongo.Collection
}

// NewMongoPauseRepository creates a new delivery-pause repository
func NewMongoPauseRepository(db *mongo.Database) *MongoPauseRepository {
	return &MongoPauseRepository{
		collection: db.Collection("delivery_pauses"),
	}
}

func (r *MongoPauseRepository) Create(ctx context.Context, pause *domain.DeliveryPause) error {
	pause.CreatedAt = time.Now().UTC()

	objID := primitive.NewObjectID()
	pause.ID = objID.Hex()

	doc := bson.M{
		"_id":             objID,
		"user_id":         pause.UserID,
		"subscription_id": pause.SubscriptionID,
		"start_date":      pause.StartDate,
		"end_date":        pause.EndDate,
		"pause_days":      pause.PauseDays,
		"status":          pause.Status,
		"created_at":      pause.CreatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create pause: %w", err)
	}
	return nil
}

func (r *MongoPauseRepository) GetByID(ctx context.Context, id string) (*domain.DeliveryPause, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid pause id: %w", err)
	}

	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pause: %w", err)
	}
	return mapBsonToPause(raw), nil
}

func (r *MongoPauseRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.DeliveryPause, error) {
	opts := options.Find().SetSort(bson.M{"start_date": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pauses by user: %w", err)
	}
	defer cursor.Close(ctx)

	return decodePauses(ctx, cursor)
}

func (r *MongoPauseRepository) GetActiveBySubscription(ctx context.Context, subscriptionID string) ([]*domain.DeliveryPause, error) {
	filter := bson.M{
		"subscription_id": subscriptionID,
		"status":          domain.PauseStatusActive,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list active pauses: %w", err)
	}
	defer cursor.Close(ctx)

	return decodePauses(ctx, cursor)
}

func (r *MongoPauseRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid pause id: %w", err)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to update pause status: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoPauseRepository) GetActiveInWindow(ctx context.Context, start, end time.Time) ([]*domain.DeliveryPause, error) {
	filter := bson.M{
		"status":     domain.PauseStatusActive,
		"start_date": bson.M{"$lte": end},
		"end_date":   bson.M{"$gte": start},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query pauses in window: %w", err)
	}
	defer cursor.Close(ctx)

	return decodePauses(ctx, cursor)
}

func decodePauses(ctx context.Context, cursor *mongo.Cursor) ([]*domain.DeliveryPause, error) {
	var pauses []*domain.DeliveryPause
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		pauses = append(pauses, mapBsonToPause(raw))
	}
	return pauses, nil
}

func mapBsonToPause(raw bson.M) *domain.DeliveryPause {
	pause := &domain.DeliveryPause{}

	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		pause.ID = oid.Hex()
	}
	if userID, ok := raw["user_id"].(string); ok {
		pause.UserID = userID
	}
	if subscriptionID, ok := raw["subscription_id"].(string); ok {
		pause.SubscriptionID = subscriptionID
	}
	if start, ok := raw["start_date"].(primitive.DateTime); ok {
		pause.StartDate = start.Time()
	}
	if end, ok := raw["end_date"].(primitive.DateTime); ok {
		pause.EndDate = end.Time()
	}
	switch days := raw["pause_days"].(type) {
	case int32:
		pause.PauseDays = int(days)
	case int64:
		pause.PauseDays = int(days)
	}
	if status, ok := raw["status"].(string); ok {
		pause.Status = status
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		pause.CreatedAt = created.Time()
	}

	return pause
}
