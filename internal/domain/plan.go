package domain

import (
	"context"
	"time"
)

// Plan tiers, lowest to highest
const (
	PlanBasic   = "Basic"
	PlanPremium = "Premium"
	PlanExotic  = "Exotic"
)

// Billing periods
const (
	DurationMonthly = "monthly"
	DurationYearly  = "yearly"
)

// Plan is a purchasable meal plan. Price is the full-period price in rupees for
// both meals; single-meal pricing is derived, never stored. Plans referenced by a
// subscription are deactivated rather than deleted.
type Plan struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name,omitempty" json:"name"`
	Price     float64   `bson:"price,omitempty" json:"price"`
	Duration  string    `bson:"duration,omitempty" json:"duration"`
	Active    bool      `bson:"active" json:"active"`
	CreatedAt time.Time `bson:"created_at,omitempty" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"updated_at"`
}

// TierRank orders plan tiers: Basic < Premium < Exotic. Unknown tiers rank 0.
func TierRank(name string) int {
	switch name {
	case PlanBasic:
		return 1
	case PlanPremium:
		return 2
	case PlanExotic:
		return 3
	}
	return 0
}

// DurationRank orders billing periods: monthly < yearly.
func DurationRank(duration string) int {
	switch duration {
	case DurationMonthly:
		return 1
	case DurationYearly:
		return 2
	}
	return 0
}

// PeriodEnd returns the subscription end date for a plan duration.
func PeriodEnd(start time.Time, duration string) time.Time {
	if duration == DurationYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

// PlanRepository defines operations for managing plans
type PlanRepository interface {
	Create(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, id string) (*Plan, error)
	GetActivePlans(ctx context.Context) ([]*Plan, error)
	Update(ctx context.Context, plan *Plan) error
}
