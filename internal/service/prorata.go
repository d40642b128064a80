package service

import (
	"math"
	"time"

	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"github.com/shopspring/decimal"
)

// ProRataCredit converts the unused remainder of a paid subscription into a
// rupee credit: floor(amountPaid / totalDays * remainingDays). The proration is
// over cash actually collected, not the plan's face price, so a user who entered
// with a discount can never recover more than they paid.
//
// This is the single credit implementation; checkout, payment verification and
// the client-facing preview all call it, so the quoted and charged numbers can
// never drift apart.
func ProRataCredit(sub *domain.Subscription, now time.Time) float64 {
	totalDays := int64(math.Ceil(sub.EndDate.Sub(sub.StartDate).Hours() / 24))
	if totalDays < 1 {
		totalDays = 1
	}

	usedDays := int64(math.Ceil(now.Sub(sub.StartDate).Hours() / 24))
	remainingDays := totalDays - usedDays
	if remainingDays <= 0 {
		return 0
	}

	credit := decimal.NewFromFloat(sub.AmountPaid).
		Div(decimal.NewFromInt(totalDays)).
		Mul(decimal.NewFromInt(remainingDays)).
		Floor()
	return credit.InexactFloat64()
}
