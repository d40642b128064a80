package service

import (
	"testing"
	"time"

	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestProRataCredit(t *testing.T) {
	now := time.Now().UTC()

	t.Run("mid-term 30 day example", func(t *testing.T) {
		// Paid 300 for a 30-day term, cancelling on day 15: credit is
		// floor(300/30*15) = 150. Offsetting start by an extra 12 hours makes
		// ceil land used days exactly on 15.
		sub := &domain.Subscription{
			AmountPaid: 300,
			StartDate:  now.Add(-(14*24 + 12) * time.Hour),
		}
		sub.EndDate = sub.StartDate.Add(30 * 24 * time.Hour)

		assert.Equal(t, 150.0, ProRataCredit(sub, now))
	})

	t.Run("zero at term end", func(t *testing.T) {
		sub := &domain.Subscription{
			AmountPaid: 300,
			StartDate:  now.Add(-30 * 24 * time.Hour),
			EndDate:    now,
		}
		assert.Equal(t, 0.0, ProRataCredit(sub, now))
	})

	t.Run("zero past term end", func(t *testing.T) {
		sub := &domain.Subscription{
			AmountPaid: 300,
			StartDate:  now.Add(-60 * 24 * time.Hour),
			EndDate:    now.Add(-30 * 24 * time.Hour),
		}
		assert.Equal(t, 0.0, ProRataCredit(sub, now))
	})

	t.Run("credit never exceeds amount paid", func(t *testing.T) {
		sub := &domain.Subscription{
			AmountPaid: 300,
			StartDate:  now.Add(-1 * time.Hour),
		}
		sub.EndDate = sub.StartDate.Add(30 * 24 * time.Hour)

		credit := ProRataCredit(sub, now)
		assert.LessOrEqual(t, credit, 300.0)
		assert.Greater(t, credit, 0.0)
	})

	t.Run("monotonically non-increasing over the term", func(t *testing.T) {
		sub := &domain.Subscription{AmountPaid: 1000}
		sub.StartDate = now
		sub.EndDate = now.Add(30 * 24 * time.Hour)

		prev := ProRataCredit(sub, now)
		for d := 1; d <= 30; d++ {
			credit := ProRataCredit(sub, now.Add(time.Duration(d)*24*time.Hour))
			assert.LessOrEqual(t, credit, prev, "credit rose at day %d", d)
			prev = credit
		}
		assert.Equal(t, 0.0, prev)
	})

	t.Run("credit prorates cash paid, not plan value", func(t *testing.T) {
		// User paid only 100 of a 3000-value plan after credits; their
		// future credit derives from the 100.
		sub := &domain.Subscription{
			AmountPaid: 100,
			PlanValue:  3000,
			StartDate:  now.Add(-(14*24 + 12) * time.Hour),
		}
		sub.EndDate = sub.StartDate.Add(30 * 24 * time.Hour)

		assert.Equal(t, 50.0, ProRataCredit(sub, now))
	})
}
