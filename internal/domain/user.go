package domain

import (
	"context"
	"time"
)

// User roles
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is an account holder. CurrentSubscriptionID points at the user's Active
// subscription, if any; it is cleared on cancellation and overwritten on upgrade.
type User struct {
	ID                    string    `bson:"_id,omitempty" json:"id"`
	Name                  string    `bson:"name,omitempty" json:"name"`
	Email                 string    `bson:"email,omitempty" json:"email"`
	Phone                 string    `bson:"phone,omitempty" json:"phone"`
	PasswordHash          string    `bson:"password_hash,omitempty" json:"-"`
	Role                  string    `bson:"role,omitempty" json:"role"`
	CurrentSubscriptionID string    `bson:"current_subscription_id,omitempty" json:"current_subscription_id,omitempty"`
	CreatedAt             time.Time `bson:"created_at,omitempty" json:"created_at"`
	UpdatedAt             time.Time `bson:"updated_at,omitempty" json:"updated_at"`
}

// UserRepository defines operations for managing users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	SetCurrentSubscription(ctx context.Context, userID, subscriptionID string) error
	// ClearCurrentSubscription unsets the pointer only if it still references
	// subscriptionID, so a concurrent upgrade is not clobbered.
	ClearCurrentSubscription(ctx context.Context, userID, subscriptionID string) error
}
