package service

import (
	"testing"
	"time"

	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestPriceFor(t *testing.T) {
	plan := &domain.Plan{Name: domain.PlanPremium, Price: 5000}

	assert.Equal(t, 5000.0, PriceFor(plan, domain.MealTypeBoth))
	assert.Equal(t, 2500.0, PriceFor(plan, domain.MealTypeLunch))
	assert.Equal(t, 2500.0, PriceFor(plan, domain.MealTypeDinner))

	// A single-meal price is always exactly half, even for odd amounts
	odd := &domain.Plan{Name: domain.PlanBasic, Price: 3333}
	assert.Equal(t, 1666.5, PriceFor(odd, domain.MealTypeLunch))
}

func TestCancellationFee(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name       string
		order      *domain.Order
		wantFee    float64
		wantRefund float64
	}{
		{
			name: "subscription purchase forfeits everything",
			order: &domain.Order{
				Type:        domain.OrderTypeSubscriptionNew,
				Status:      domain.OrderStatusConfirmed,
				TotalAmount: 3000,
			},
			wantFee:    3000,
			wantRefund: 0,
		},
		{
			name: "subscription upgrade forfeits everything",
			order: &domain.Order{
				Type:        domain.OrderTypeSubscriptionUpgrade,
				Status:      domain.OrderStatusConfirmed,
				TotalAmount: 1200,
			},
			wantFee:    1200,
			wantRefund: 0,
		},
		{
			name: "pending order refunds in full",
			order: &domain.Order{
				Type:        domain.OrderTypeEvent,
				Status:      domain.OrderStatusPending,
				TotalAmount: 2000,
				Items:       []domain.OrderItem{{DeliveryDate: now.Add(1 * time.Hour)}},
			},
			wantFee:    0,
			wantRefund: 2000,
		},
		{
			name: "confirmed event 3h out forfeits everything",
			order: &domain.Order{
				Type:        domain.OrderTypeEvent,
				Status:      domain.OrderStatusConfirmed,
				TotalAmount: 2000,
				Items:       []domain.OrderItem{{DeliveryDate: now.Add(3 * time.Hour)}},
			},
			wantFee:    2000,
			wantRefund: 0,
		},
		{
			name: "confirmed event 10h out pays 20%",
			order: &domain.Order{
				Type:        domain.OrderTypeEvent,
				Status:      domain.OrderStatusConfirmed,
				TotalAmount: 2000,
				Items:       []domain.OrderItem{{DeliveryDate: now.Add(10 * time.Hour)}},
			},
			wantFee:    400,
			wantRefund: 1600,
		},
		{
			name: "confirmed single 1h out forfeits everything",
			order: &domain.Order{
				Type:        domain.OrderTypeSingle,
				Status:      domain.OrderStatusConfirmed,
				TotalAmount: 250,
				Items:       []domain.OrderItem{{DeliveryDate: now.Add(1 * time.Hour)}},
			},
			wantFee:    250,
			wantRefund: 0,
		},
		{
			name: "confirmed single 6h out pays 20%",
			order: &domain.Order{
				Type:        domain.OrderTypeSingle,
				Status:      domain.OrderStatusConfirmed,
				TotalAmount: 250,
				Items:       []domain.OrderItem{{DeliveryDate: now.Add(6 * time.Hour)}},
			},
			wantFee:    50,
			wantRefund: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, refund := CancellationFee(tt.order, now)
			assert.Equal(t, tt.wantFee, fee)
			assert.Equal(t, tt.wantRefund, refund)
			// Fee and refund always partition the total exactly
			assert.Equal(t, tt.order.TotalAmount, fee+refund)
		})
	}
}

func TestValidateOrderTime(t *testing.T) {
	// Fix "now" at 06:00 UTC so deadline arithmetic is predictable
	base := time.Now().UTC().AddDate(0, 0, 7)
	now := time.Date(base.Year(), base.Month(), base.Day(), 6, 0, 0, 0, time.UTC)

	t.Run("lunch same day at 06:00 is too late", func(t *testing.T) {
		// Lunch deadline 12:00, only 6 hours away
		err := ValidateOrderTime(now, domain.MealTimeLunch, now)
		assert.Error(t, err)
		var validationErr *domain.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("dinner same day at 06:00 is allowed", func(t *testing.T) {
		// Dinner deadline 20:00, 14 hours away
		assert.NoError(t, ValidateOrderTime(now, domain.MealTimeDinner, now))
	})

	t.Run("lunch tomorrow is allowed", func(t *testing.T) {
		assert.NoError(t, ValidateOrderTime(now.AddDate(0, 0, 1), domain.MealTimeLunch, now))
	})
}

func TestValidateEventTime(t *testing.T) {
	now := time.Now().UTC()

	assert.Error(t, ValidateEventTime(now.Add(24*time.Hour), now))
	assert.Error(t, ValidateEventTime(now.Add(47*time.Hour), now))
	assert.NoError(t, ValidateEventTime(now.Add(49*time.Hour), now))
}
