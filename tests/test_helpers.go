package tests

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/KUSHAL0100/payals-kitchen/internal/auth"
	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupTestDB spins up a fresh MongoDB container and returns the database connection
// along with a cleanup function.
func SetupTestDB(t *testing.T) (*mongo.Database, func()) {
	ctx := context.Background()

	mongodbContainer, err := mongodb.Run(ctx, "mongo:latest")
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	endpoint, err := mongodbContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	return mongoClient.Database("test_db"), func() {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Printf("failed to disconnect mongo: %v", err)
		}
		if err := mongodbContainer.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	}
}

// SeedAdmin inserts an admin account directly into the users collection.
// Registration only mints customers, so tests bootstrap their admin this way.
func SeedAdmin(t *testing.T, db *mongo.Database, email, password string) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash admin password: %v", err)
	}

	now := time.Now().UTC()
	_, err = db.Collection("users").InsertOne(context.Background(), bson.M{
		"_id":           primitive.NewObjectID(),
		"name":          "Kitchen Admin",
		"email":         email,
		"phone":         "9800000000",
		"password_hash": hash,
		"role":          domain.RoleAdmin,
		"created_at":    now,
		"updated_at":    now,
	})
	if err != nil {
		t.Fatalf("failed to seed admin user: %v", err)
	}
}
