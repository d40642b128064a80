package domain

import (
	"context"
	"time"
)

// Subscription status constants. Active is the only non-terminal state.
const (
	SubscriptionStatusActive    = "Active"
	SubscriptionStatusUpgraded  = "Upgraded"
	SubscriptionStatusCancelled = "Cancelled"
	SubscriptionStatusExpired   = "Expired"
)

// Meal type constants
const (
	MealTypeBoth   = "both"
	MealTypeLunch  = "lunch"
	MealTypeDinner = "dinner"
)

// Address is a delivery address slot.
type Address struct {
	Street string `bson:"street,omitempty" json:"street"`
	City   string `bson:"city,omitempty" json:"city"`
	Zip    string `bson:"zip,omitempty" json:"zip"`
}

// Subscription is the record of a paid plan term. Records are never deleted:
// a superseded or cancelled subscription keeps its row for history and for
// reconstructing past delivery schedules.
//
// AmountPaid is the cash actually collected after any pro-rata credit.
// PlanValue is the market price at the selected meal type when the record was
// written, and is the basis for future credit calculations.
type Subscription struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	UserID        string    `bson:"user_id,omitempty" json:"user_id"`
	PlanID        string    `bson:"plan_id,omitempty" json:"plan_id"`
	StartDate     time.Time `bson:"start_date,omitempty" json:"start_date"`
	EndDate       time.Time `bson:"end_date,omitempty" json:"end_date"`
	Status        string    `bson:"status,omitempty" json:"status"`
	MealType      string    `bson:"meal_type,omitempty" json:"meal_type"`
	AmountPaid    float64   `bson:"amount_paid" json:"amount_paid"`
	PlanValue     float64   `bson:"plan_value" json:"plan_value"`
	LunchAddress  *Address  `bson:"lunch_address,omitempty" json:"lunch_address,omitempty"`
	DinnerAddress *Address  `bson:"dinner_address,omitempty" json:"dinner_address,omitempty"`
	CreatedAt     time.Time `bson:"created_at,omitempty" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at,omitempty" json:"updated_at"`
}

// SyncAddresses enforces the address invariant: a single-meal subscription keeps
// both address slots populated identically. Must run on every write path, not in
// a persistence hook.
func (s *Subscription) SyncAddresses() {
	switch s.MealType {
	case MealTypeLunch:
		if s.LunchAddress != nil {
			addr := *s.LunchAddress
			s.DinnerAddress = &addr
		}
	case MealTypeDinner:
		if s.DinnerAddress != nil {
			addr := *s.DinnerAddress
			s.LunchAddress = &addr
		}
	}
}

// IsValidMealType reports whether mt is one of both/lunch/dinner.
func IsValidMealType(mt string) bool {
	return mt == MealTypeBoth || mt == MealTypeLunch || mt == MealTypeDinner
}

// SubscriptionStatusPriority resolves which of a user's overlapping subscription
// rows represents the day: Active > Cancelled > Upgraded > Expired.
func SubscriptionStatusPriority(status string) int {
	switch status {
	case SubscriptionStatusActive:
		return 4
	case SubscriptionStatusCancelled:
		return 3
	case SubscriptionStatusUpgraded:
		return 2
	case SubscriptionStatusExpired:
		return 1
	}
	return 0
}

// SubscriptionRepository defines operations for managing subscriptions
type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *Subscription) error
	GetByID(ctx context.Context, id string) (*Subscription, error)
	GetByUserID(ctx context.Context, userID string) ([]*Subscription, error)
	GetActiveByUserID(ctx context.Context, userID string) (*Subscription, error)
	Update(ctx context.Context, subscription *Subscription) error
	UpdateStatus(ctx context.Context, id string, status string) error
	// GetForDeliveryDay returns subscriptions whose [start,end] window intersects
	// the day, including terminal-status rows whose status change happened on or
	// after dayStart, so historical schedules stay reconstructable.
	GetForDeliveryDay(ctx context.Context, dayStart, dayEnd time.Time) ([]*Subscription, error)
	// MarkLapsedExpired transitions Active rows whose end date has passed.
	MarkLapsedExpired(ctx context.Context, now time.Time) (int64, error)
}
