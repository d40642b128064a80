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

// MongoMenuRepository implements domain.MenuRepository
type MongoMenuRepository struct {
	collection *mongo.Collection
}

// NewMongoMenuRepository creates a new menu repository
func NewMongoMenuRepository(db *mongo.Database) *MongoMenuRepository {
	return &MongoMenuRepository{
		collection: db.Collection("menus"),
	}
}

// Upsert writes the menu for (date, plan type), replacing any existing document
// for the same slot.
func (r *MongoMenuRepository) Upsert(ctx context.Context, menu *domain.Menu) error {
	now := time.Now().UTC()
	menu.UpdatedAt = now

	filter := bson.M{
		"date":      menu.Date,
		"plan_type": menu.PlanType,
	}
	set := bson.M{
		"date":         menu.Date,
		"plan_type":    menu.PlanType,
		"lunch_items":  menu.LunchItems,
		"dinner_items": menu.DinnerItems,
		"updated_at":   now,
	}
	if menu.ImageURL != "" {
		set["image_url"] = menu.ImageURL
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}

	opts := options.Update().SetUpsert(true)
	result, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert menu: %w", err)
	}
	if result.UpsertedID != nil {
		if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
			menu.ID = oid.Hex()
		}
	}
	return nil
}

func (r *MongoMenuRepository) GetByDateAndPlan(ctx context.Context, dayStart, dayEnd time.Time, planType string) (*domain.Menu, error) {
	filter := bson.M{
		"date":      bson.M{"$gte": dayStart, "$lte": dayEnd},
		"plan_type": planType,
	}

	var raw bson.M
	if err := r.collection.FindOne(ctx, filter).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get menu: %w", err)
	}
	return mapBsonToMenu(raw), nil
}

func (r *MongoMenuRepository) ListByDate(ctx context.Context, dayStart, dayEnd time.Time) ([]*domain.Menu, error) {
	filter := bson.M{
		"date": bson.M{"$gte": dayStart, "$lte": dayEnd},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list menus by date: %w", err)
	}
	defer cursor.Close(ctx)

	var menus []*domain.Menu
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		menus = append(menus, mapBsonToMenu(raw))
	}
	return menus, nil
}

func mapBsonToMenu(raw bson.M) *domain.Menu {
	menu := &domain.Menu{}

	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		menu.ID = oid.Hex()
	}
	if date, ok := raw["date"].(primitive.DateTime); ok {
		menu.Date = date.Time()
	}
	if planType, ok := raw["plan_type"].(string); ok {
		menu.PlanType = planType
	}
	menu.LunchItems = asStringSlice(raw["lunch_items"])
	menu.DinnerItems = asStringSlice(raw["dinner_items"])
	if imageURL, ok := raw["image_url"].(string); ok {
		menu.ImageURL = imageURL
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		menu.CreatedAt = created.Time()
	}
	if updated, ok := raw["updated_at"].(primitive.DateTime); ok {
		menu.UpdatedAt = updated.Time()
	}

	return menu
}

func asStringSlice(v interface{}) []string {
	arr, ok := v.(bson.A)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, entry := range arr {
		if s, ok := entry.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
