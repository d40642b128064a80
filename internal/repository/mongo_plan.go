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

// MongoPlanRepository implements domain.PlanRepository
type MongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new plan repository
func NewMongoPlanRepository(db *mongo.Database) *MongoPlanRepository {
	return &MongoPlanRepository{
		collection: db.Collection("plans"),
	}
}

func (r *MongoPlanRepository) Create(ctx context.Context, plan *domain.Plan) error {
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	objID := primitive.NewObjectID()
	plan.ID = objID.Hex()

	doc := bson.M{
		"_id":        objID,
		"name":       plan.Name,
		"price":      plan.Price,
		"duration":   plan.Duration,
		"active":     plan.Active,
		"created_at": plan.CreatedAt,
		"updated_at": plan.UpdatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}
	return nil
}

func (r *MongoPlanRepository) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid plan id: %w", err)
	}

	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return mapBsonToPlan(raw), nil
}

func (r *MongoPlanRepository) GetActivePlans(ctx context.Context) ([]*domain.Plan, error) {
	opts := options.Find().SetSort(bson.M{"price": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list active plans: %w", err)
	}
	defer cursor.Close(ctx)

	var plans []*domain.Plan
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		plans = append(plans, mapBsonToPlan(raw))
	}
	return plans, nil
}

func (r *MongoPlanRepository) Update(ctx context.Context, plan *domain.Plan) error {
	objID, err := primitive.ObjectIDFromHex(plan.ID)
	if err != nil {
		return fmt.Errorf("invalid plan id: %w", err)
	}

	plan.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":       plan.Name,
		"price":      plan.Price,
		"duration":   plan.Duration,
		"active":     plan.Active,
		"updated_at": plan.UpdatedAt,
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapBsonToPlan(raw bson.M) *domain.Plan {
	plan := &domain.Plan{}

	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		plan.ID = oid.Hex()
	}
	if name, ok := raw["name"].(string); ok {
		plan.Name = name
	}
	plan.Price = asFloat(raw["price"])
	if duration, ok := raw["duration"].(string); ok {
		plan.Duration = duration
	}
	if active, ok := raw["active"].(bool); ok {
		plan.Active = active
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		plan.CreatedAt = created.Time()
	}
	if updated, ok := raw["updated_at"].(primitive.DateTime); ok {
		plan.UpdatedAt = updated.Time()
	}

	return plan
}
