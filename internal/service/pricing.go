package service

import (
	"time"

	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"github.com/shopspring/decimal"
)

// Order timing rules. Meal orders must be placed at least minOrderLeadHours
// before the meal deadline on the delivery day; event orders need two full days.
const (
	lunchDeadlineHour  = 12
	dinnerDeadlineHour = 20
	minOrderLeadHours  = 12
	eventMinLeadHours  = 48
)

// Cancellation fee tiers. Inside the late window the full amount is forfeited;
// outside it a flat 20% applies. Event kitchens commit earlier, so their late
// window is wider.
const (
	eventLateCancelHours  = 5
	singleLateCancelHours = 2
)

var lateCancelRate = decimal.NewFromFloat(0.20)

var halfMultiplier = decimal.NewFromFloat(0.5)

// MealMultiplier scales a plan's full price by meal selection: 1.0 for both
// meals, 0.5 for lunch-only or dinner-only.
func MealMultiplier(mealType string) decimal.Decimal {
	if mealType == domain.MealTypeLunch || mealType == domain.MealTypeDinner {
		return halfMultiplier
	}
	return decimal.NewFromInt(1)
}

// PriceFor returns the market price, in rupees, of a plan at a meal selection.
func PriceFor(plan *domain.Plan, mealType string) float64 {
	price := decimal.NewFromFloat(plan.Price)
	return price.Mul(MealMultiplier(mealType)).InexactFloat64()
}

// CancellationFee computes the fee and refund, in rupees, for cancelling an
// order at time now. The two always sum exactly to the order's total:
//
//   - subscription purchase/upgrade orders forfeit 100% regardless of timing
//   - Pending orders (not yet confirmed by the kitchen) refund in full
//   - Confirmed orders pay by time-to-delivery: events forfeit everything inside
//     5 hours, single tiffins inside 2 hours, otherwise a flat 20% applies
func CancellationFee(order *domain.Order, now time.Time) (fee, refund float64) {
	total := decimal.NewFromFloat(order.TotalAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	var f decimal.Decimal
	switch {
	case order.Type == domain.OrderTypeSubscriptionNew || order.Type == domain.OrderTypeSubscriptionUpgrade:
		f = total
	case order.Status == domain.OrderStatusPending:
		f = decimal.Zero
	default:
		hoursUntilDelivery := order.EarliestDelivery().Sub(now).Hours()
		switch order.Type {
		case domain.OrderTypeEvent:
			if hoursUntilDelivery < eventLateCancelHours {
				f = total
			} else {
				f = total.Mul(lateCancelRate)
			}
		case domain.OrderTypeSingle:
			if hoursUntilDelivery < singleLateCancelHours {
				f = total
			} else {
				f = total.Mul(lateCancelRate)
			}
		default:
			f = total.Mul(lateCancelRate)
		}
	}

	f = f.Round(2)
	if f.IsNegative() {
		f = decimal.Zero
	}
	if f.GreaterThan(total) {
		f = total
	}

	return f.InexactFloat64(), total.Sub(f).InexactFloat64()
}

// ValidateOrderTime checks that a meal order is placed early enough. The meal
// deadline is 12:00 on the delivery day for lunch and 20:00 for dinner; orders
// must land at least 12 hours before it.
func ValidateOrderTime(deliveryDate time.Time, mealTime string, now time.Time) error {
	deadlineHour := lunchDeadlineHour
	if mealTime == domain.MealTimeDinner {
		deadlineHour = dinnerDeadlineHour
	}

	y, m, d := deliveryDate.Date()
	deadline := time.Date(y, m, d, deadlineHour, 0, 0, 0, deliveryDate.Location())

	if deadline.Sub(now) < minOrderLeadHours*time.Hour {
		return domain.NewValidationError(
			"%s orders for %s must be placed at least %d hours before %02d:00",
			mealTime, deliveryDate.Format("2006-01-02"), minOrderLeadHours, deadlineHour)
	}
	return nil
}

// ValidateEventTime checks the 48-hour lead required for event orders.
func ValidateEventTime(deliveryDate time.Time, now time.Time) error {
	if deliveryDate.Sub(now) < eventMinLeadHours*time.Hour {
		return domain.NewValidationError(
			"event orders must be placed at least %d hours before delivery", eventMinLeadHours)
	}
	return nil
}
