package domain

import (
	"context"
	"errors"
	"math"
	"time"
)

// Pause status constants. "Completed" is display-only, derived from the end date,
// never stored.
const (
	PauseStatusActive    = "Active"
	PauseStatusCancelled = "Cancelled"
	PauseStatusCompleted = "Completed"
)

// Pause errors
var (
	ErrPauseOverlap = errors.New("pause overlaps an existing pause on this subscription")
	ErrPauseTooLate = errors.New("pause can no longer be cancelled once it has started")
)

// DeliveryPause suspends subscription deliveries for an inclusive date range.
type DeliveryPause struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	UserID         string    `bson:"user_id,omitempty" json:"user_id"`
	SubscriptionID string    `bson:"subscription_id,omitempty" json:"subscription_id"`
	StartDate      time.Time `bson:"start_date,omitempty" json:"start_date"`
	EndDate        time.Time `bson:"end_date,omitempty" json:"end_date"`
	PauseDays      int       `bson:"pause_days,omitempty" json:"pause_days"`
	Status         string    `bson:"status,omitempty" json:"status"`
	CreatedAt      time.Time `bson:"created_at,omitempty" json:"created_at"`
}

// Overlaps reports whether the pause range intersects [start,end], boundary
// inclusive: sharing a single day counts as overlap.
func (p *DeliveryPause) Overlaps(start, end time.Time) bool {
	return !p.StartDate.After(end) && !p.EndDate.Before(start)
}

// DisplayStatus derives the status shown to the user. An Active pause whose end
// date has passed reads as Completed without a stored transition.
func (p *DeliveryPause) DisplayStatus(now time.Time) string {
	if p.Status == PauseStatusActive && now.After(p.EndDate) {
		return PauseStatusCompleted
	}
	return p.Status
}

// InclusiveDays counts the days covered by [start,end] including both endpoints.
func InclusiveDays(start, end time.Time) int {
	diff := end.Sub(start).Hours() / 24
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff)) + 1
}

// PauseRepository defines operations for managing delivery pauses
type PauseRepository interface {
	Create(ctx context.Context, pause *DeliveryPause) error
	GetByID(ctx context.Context, id string) (*DeliveryPause, error)
	GetByUserID(ctx context.Context, userID string) ([]*DeliveryPause, error)
	GetActiveBySubscription(ctx context.Context, subscriptionID string) ([]*DeliveryPause, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	// GetActiveInWindow returns Active pauses whose range intersects [start,end].
	GetActiveInWindow(ctx context.Context, start, end time.Time) ([]*DeliveryPause, error)
}
