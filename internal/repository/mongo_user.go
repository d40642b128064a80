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

// MongoUserRepository implements domain.UserRepository
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new user repository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		collection: db.Collection("users"),
	}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	objID := primitive.NewObjectID()
	user.ID = objID.Hex()

	doc := bson.M{
		"_id":           objID,
		"name":          user.Name,
		"email":         user.Email,
		"phone":         user.Phone,
		"password_hash": user.PasswordHash,
		"role":          user.Role,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return mapBsonToUser(raw), nil
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return mapBsonToUser(raw), nil
}

func (r *MongoUserRepository) Update(ctx context.Context, user *domain.User) error {
	objID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	user.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":       user.Name,
		"phone":      user.Phone,
		"updated_at": user.UpdatedAt,
	}
	if user.PasswordHash != "" {
		set["password_hash"] = user.PasswordHash
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) SetCurrentSubscription(ctx context.Context, userID, subscriptionID string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	update := bson.M{"$set": bson.M{
		"current_subscription_id": subscriptionID,
		"updated_at":              time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to set current subscription: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) ClearCurrentSubscription(ctx context.Context, userID, subscriptionID string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	// Conditional on the pointer still referencing this subscription so a
	// concurrent upgrade that already moved it is left alone.
	filter := bson.M{
		"_id":                     objID,
		"current_subscription_id": subscriptionID,
	}
	update := bson.M{
		"$unset": bson.M{"current_subscription_id": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	}

	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to clear current subscription: %w", err)
	}
	return nil
}

func mapBsonToUser(raw bson.M) *domain.User {
	user := &domain.User{}

	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	if name, ok := raw["name"].(string); ok {
		user.Name = name
	}
	if email, ok := raw["email"].(string); ok {
		user.Email = email
	}
	if phone, ok := raw["phone"].(string); ok {
		user.Phone = phone
	}
	if hash, ok := raw["password_hash"].(string); ok {
		user.PasswordHash = hash
	}
	if role, ok := raw["role"].(string); ok {
		user.Role = role
	}
	if subID, ok := raw["current_subscription_id"].(string); ok {
		user.CurrentSubscriptionID = subID
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		user.CreatedAt = created.Time()
	}
	if updated, ok := raw["updated_at"].(primitive.DateTime); ok {
		user.UpdatedAt = updated.Time()
	}

	return user
}
