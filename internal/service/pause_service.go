package service

import (
	"context"
	"fmt"
	"time"

	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
)

// PauseService validates and stores delivery-pause requests against a
// subscription's active window.
type PauseService struct {
	pauseRepo domain.PauseRepository
	subRepo   domain.SubscriptionRepository
}

// NewPauseService creates a new pause service
func NewPauseService(pauseRepo domain.PauseRepository, subRepo domain.SubscriptionRepository) *PauseService {
	return &PauseService{
		pauseRepo: pauseRepo,
		subRepo:   subRepo,
	}
}

// Create schedules a pause on [start,end], inclusive. A pause needs at least one
// full day's notice, must sit inside the subscription's term, and may not touch
// any existing Active pause on the same subscription, even on a shared boundary
// day.
func (s *PauseService) Create(ctx context.Context, userID, subscriptionID string, start, end time.Time) (*domain.DeliveryPause, error) {
	sub, err := s.subRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if sub.Status != domain.SubscriptionStatusActive {
		return nil, &domain.PolicyError{Reason: "delivery pauses require an active subscription"}
	}

	now := time.Now().UTC()
	tomorrow := startOfDay(now).AddDate(0, 0, 1)
	if start.Before(tomorrow) {
		return nil, &domain.PolicyError{Reason: "pause must start tomorrow or later"}
	}
	if end.Before(start) {
		return nil, domain.NewValidationError("pause end date %s is before start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	if end.After(sub.EndDate) {
		return nil, &domain.PolicyError{Reason: "pause cannot extend past the subscription end date"}
	}

	existing, err := s.pauseRepo.GetActiveBySubscription(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing pauses: %w", err)
	}
	for _, p := range existing {
		if p.Overlaps(start, end) {
			return nil, domain.ErrPauseOverlap
		}
	}

	pause := &domain.DeliveryPause{
		UserID:         userID,
		SubscriptionID: subscriptionID,
		StartDate:      start,
		EndDate:        end,
		PauseDays:      domain.InclusiveDays(start, end),
		Status:         domain.PauseStatusActive,
	}
	if err := s.pauseRepo.Create(ctx, pause); err != nil {
		return nil, fmt.Errorf("failed to create pause: %w", err)
	}
	return pause, nil
}

// Cancel withdraws a pause that has not started yet. Once the pause's first day
// arrives the kitchen has already dropped the delivery, so same-day-or-later
// cancellation is refused.
func (s *PauseService) Cancel(ctx context.Context, userID, pauseID string) error {
	pause, err := s.pauseRepo.GetByID(ctx, pauseID)
	if err != nil {
		return err
	}
	if pause.UserID != userID {
		return domain.ErrForbidden
	}
	if pause.Status != domain.PauseStatusActive {
		return &domain.PolicyError{Reason: "pause is not active"}
	}

	today := startOfDay(time.Now().UTC())
	if !today.Before(startOfDay(pause.StartDate)) {
		return domain.ErrPauseTooLate
	}

	return s.pauseRepo.UpdateStatus(ctx, pauseID, domain.PauseStatusCancelled)
}

// List returns the user's pauses with display statuses resolved (an Active pause
// whose range has passed reads as Completed).
func (s *PauseService) List(ctx context.Context, userID string) ([]*domain.DeliveryPause, error) {
	pauses, err := s.pauseRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	for _, p := range pauses {
		p.Status = p.DisplayStatus(now)
	}
	return pauses, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
