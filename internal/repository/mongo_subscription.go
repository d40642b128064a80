package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoSubscriptionRepository implements domain.SubscriptionRepository
type MongoSubscriptionRepository struct {
	collection *mongo.Collection
}

// NewMongoSubscriptionRepository creates a new subscription repository
func NewMongoSubscriptionRepository(db *mongo.Database) *MongoSubscriptionRepository {
	return &MongoSubscriptionRepository{
		collection: db.Collection("subscriptions"),
	}
}

func (r *MongoSubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	objID := primitive.NewObjectID()
	sub.ID = objID.Hex()

	doc := bson.M{
		"_id":         objID,
		"user_id":     sub.UserID,
		"plan_id":     sub.PlanID,
		"start_date":  sub.StartDate,
		"end_date":    sub.EndDate,
		"status":      sub.Status,
		"meal_type":   sub.MealType,
		"amount_paid": sub.AmountPaid,
		"plan_value":  sub.PlanValue,
		"created_at":  sub.CreatedAt,
		"updated_at":  sub.UpdatedAt,
	}
	if sub.LunchAddress != nil {
		doc["lunch_address"] = addressDoc(sub.LunchAddress)
	}
	if sub.DinnerAddress != nil {
		doc["dinner_address"] = addressDoc(sub.DinnerAddress)
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (r *MongoSubscriptionRepository) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid subscription id: %w", err)
	}

	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return mapBsonToSubscription(raw), nil
}

func (r *MongoSubscriptionRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Subscription, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions by user: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []*domain.Subscription
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		subs = append(subs, mapBsonToSubscription(raw))
	}
	return subs, nil
}

func (r *MongoSubscriptionRepository) GetActiveByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	filter := bson.M{
		"user_id": userID,
		"status":  domain.SubscriptionStatusActive,
	}

	var raw bson.M
	if err := r.collection.FindOne(ctx, filter).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}
	return mapBsonToSubscription(raw), nil
}

func (r *MongoSubscriptionRepository) Update(ctx context.Context, sub *domain.Subscription) error {
	objID, err := primitive.ObjectIDFromHex(sub.ID)
	if err != nil {
		return fmt.Errorf("invalid subscription id: %w", err)
	}

	sub.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"meal_type":   sub.MealType,
		"amount_paid": sub.AmountPaid,
		"plan_value":  sub.PlanValue,
		"status":      sub.Status,
		"updated_at":  sub.UpdatedAt,
	}
	if sub.LunchAddress != nil {
		set["lunch_address"] = addressDoc(sub.LunchAddress)
	}
	if sub.DinnerAddress != nil {
		set["dinner_address"] = addressDoc(sub.DinnerAddress)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoSubscriptionRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid subscription id: %w", err)
	}

	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetForDeliveryDay matches subscriptions whose term intersects the day. Rows in
// a terminal status still match if their last update (the status change) landed
// on or after dayStart, which keeps past dispatch days reconstructable.
func (r *MongoSubscriptionRepository) GetForDeliveryDay(ctx context.Context, dayStart, dayEnd time.Time) ([]*domain.Subscription, error) {
	filter := bson.M{
		"start_date": bson.M{"$lte": dayEnd},
		"end_date":   bson.M{"$gte": dayStart},
		"$or": []bson.M{
			{"status": domain.SubscriptionStatusActive},
			{"updated_at": bson.M{"$gte": dayStart}},
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery-day subscriptions: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []*domain.Subscription
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		subs = append(subs, mapBsonToSubscription(raw))
	}
	return subs, nil
}

func (r *MongoSubscriptionRepository) MarkLapsedExpired(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"status":   domain.SubscriptionStatusActive,
		"end_date": bson.M{"$lt": now},
	}
	update := bson.M{"$set": bson.M{
		"status":     domain.SubscriptionStatusExpired,
		"updated_at": now,
	}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to expire lapsed subscriptions: %w", err)
	}
	return result.ModifiedCount, nil
}

func addressDoc(a *domain.Address) bson.M {
	return bson.M{"street": a.Street, "city": a.City, "zip": a.Zip}
}

func mapBsonToAddress(raw interface{}) *domain.Address {
	doc, ok := raw.(bson.M)
	if !ok {
		return nil
	}
	addr := &domain.Address{}
	if street, ok := doc["street"].(string); ok {
		addr.Street = street
	}
	if city, ok := doc["city"].(string); ok {
		addr.City = city
	}
	if zip, ok := doc["zip"].(string); ok {
		addr.Zip = zip
	}
	return addr
}

func mapBsonToSubscription(raw bson.M) *domain.Subscription {
	sub := &domain.Subscription{}

	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		sub.ID = oid.Hex()
	}
	if userID, ok := raw["user_id"].(string); ok {
		sub.UserID = userID
	}
	if planID, ok := raw["plan_id"].(string); ok {
		sub.PlanID = planID
	}
	if start, ok := raw["start_date"].(primitive.DateTime); ok {
		sub.StartDate = start.Time()
	}
	if end, ok := raw["end_date"].(primitive.DateTime); ok {
		sub.EndDate = end.Time()
	}
	if status, ok := raw["status"].(string); ok {
		sub.Status = status
	}
	if mealType, ok := raw["meal_type"].(string); ok {
		sub.MealType = mealType
	}
	sub.AmountPaid = asFloat(raw["amount_paid"])
	sub.PlanValue = asFloat(raw["plan_value"])
	sub.LunchAddress = mapBsonToAddress(raw["lunch_address"])
	sub.DinnerAddress = mapBsonToAddress(raw["dinner_address"])
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		sub.CreatedAt = created.Time()
	}
	if updated, ok := raw["updated_at"].(primitive.DateTime); ok {
		sub.UpdatedAt = updated.Time()
	}

	return sub
}

// asFloat tolerates the numeric types the driver may hand back for a money field.
func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
