package service

import (
	"context"
	"testing"
	"time"

	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"github.com/KUSHAL0100/payals-kitchen/internal/infrastructure/razorpay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderService() (*OrderService, *fakeOrderRepo) {
	repo := newFakeOrderRepo()
	return NewOrderService(repo, &MockGateway{}), repo
}

// nextWeekLunch is far enough out that every timing rule passes.
func nextWeekLunch() OrderItemInput {
	return OrderItemInput{
		Name:         "Veg Thali",
		Quantity:     2,
		UnitPrice:    150,
		MealTime:     domain.MealTimeLunch,
		DeliveryDate: time.Now().UTC().AddDate(0, 0, 7),
	}
}

func TestOrderCheckout(t *testing.T) {
	t.Run("creates pending unpaid order", func(t *testing.T) {
		svc, repo := newOrderService()
		result, err := svc.Checkout(context.Background(), "user-1", domain.OrderTypeSingle,
			[]OrderItemInput{nextWeekLunch()}, &domain.Address{Street: "12 MG Road", City: "Pune", Zip: "411001"}, 0)
		require.NoError(t, err)

		assert.NotEmpty(t, result.GatewayOrderID)
		assert.Equal(t, "INR", result.Currency)
		assert.Equal(t, int64(30000), result.AmountPaise)

		order := repo.orders[result.Order.ID]
		assert.Equal(t, domain.OrderStatusPending, order.Status)
		assert.Equal(t, domain.PaymentStatusUnpaid, order.PaymentStatus)
		assert.Equal(t, 300.0, order.TotalAmount)
		assert.Equal(t, result.GatewayOrderID, order.GatewayOrderID)
	})

	t.Run("discount reduces the total", func(t *testing.T) {
		svc, _ := newOrderService()
		result, err := svc.Checkout(context.Background(), "user-1", domain.OrderTypeSingle,
			[]OrderItemInput{nextWeekLunch()}, nil, 50)
		require.NoError(t, err)

		assert.Equal(t, 300.0, result.Order.Price)
		assert.Equal(t, 250.0, result.Order.TotalAmount)
		assert.Equal(t, int64(25000), result.AmountPaise)
	})

	t.Run("validation failures", func(t *testing.T) {
		svc, repo := newOrderService()
		item := nextWeekLunch()

		tests := []struct {
			name     string
			run      func() error
		}{
			{"unknown type", func() error {
				_, err := svc.Checkout(context.Background(), "user-1", "bulk", []OrderItemInput{item}, nil, 0)
				return err
			}},
			{"no items", func() error {
				_, err := svc.Checkout(context.Background(), "user-1", domain.OrderTypeSingle, nil, nil, 0)
				return err
			}},
			{"zero quantity", func() error {
				bad := item
				bad.Quantity = 0
				_, err := svc.Checkout(context.Background(), "user-1", domain.OrderTypeSingle, []OrderItemInput{bad}, nil, 0)
				return err
			}},
			{"negative price", func() error {
				bad := item
				bad.UnitPrice = -10
				_, err := svc.Checkout(context.Background(), "user-1", domain.OrderTypeSingle, []OrderItemInput{bad}, nil, 0)
				return err
			}},
			{"missing delivery date", func() error {
				bad := item
				bad.DeliveryDate = time.Time{}
				_, err := svc.Checkout(context.Background(), "user-1", domain.OrderTypeSingle, []OrderItemInput{bad}, nil, 0)
				return err
			}},
			{"missing name", func() error {
				bad := item
				bad.Name = ""
				_, err := svc.Checkout(context.Background(), "user-1", domain.OrderTypeSingle, []OrderItemInput{bad}, nil, 0)
				return err
			}},
			{"negative discount", func() error {
				_, err := svc.Checkout(context.Background(), "user-1", domain.OrderTypeSingle, []OrderItemInput{item}, nil, -1)
				return err
			}},
			{"discount exceeds price", func() error {
				_, err := svc.Checkout(context.Background(), "user-1", domain.OrderTypeSingle, []OrderItemInput{item}, nil, 500)
				return err
			}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var validationErr *domain.ValidationError
				assert.ErrorAs(t, tt.run(), &validationErr)
			})
		}
		assert.Empty(t, repo.orders)
	})

	t.Run("event needs two days notice", func(t *testing.T) {
		svc, _ := newOrderService()
		item := OrderItemInput{
			Name:         "Wedding buffet",
			Quantity:     50,
			UnitPrice:    200,
			DeliveryDate: time.Now().UTC().Add(24 * time.Hour),
		}
		_, err := svc.Checkout(context.Background(), "user-1", domain.OrderTypeEvent, []OrderItemInput{item}, nil, 0)
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)

		item.DeliveryDate = time.Now().UTC().Add(72 * time.Hour)
		_, err = svc.Checkout(context.Background(), "user-1", domain.OrderTypeEvent, []OrderItemInput{item}, nil, 0)
		assert.NoError(t, err)
	})
}

func TestOrderVerifyPayment(t *testing.T) {
	svc, repo := newOrderService()
	result, err := svc.Checkout(context.Background(), "user-1", domain.OrderTypeSingle,
		[]OrderItemInput{nextWeekLunch()}, nil, 0)
	require.NoError(t, err)

	orderID := result.Order.ID
	paymentID := "pay_TEST42"
	signature := razorpay.Sign(result.GatewayOrderID, paymentID, MockSecret)

	t.Run("wrong owner", func(t *testing.T) {
		_, err := svc.VerifyPayment(context.Background(), "user-2", orderID, paymentID, signature)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("bad signature", func(t *testing.T) {
		_, err := svc.VerifyPayment(context.Background(), "user-1", orderID, paymentID, "deadbeef")
		assert.ErrorIs(t, err, domain.ErrSignatureMismatch)
		assert.Equal(t, domain.PaymentStatusUnpaid, repo.orders[orderID].PaymentStatus)
	})

	t.Run("valid signature marks paid but stays pending", func(t *testing.T) {
		order, err := svc.VerifyPayment(context.Background(), "user-1", orderID, paymentID, signature)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
		assert.Equal(t, paymentID, order.PaymentID)
		assert.Equal(t, domain.OrderStatusPending, order.Status)
	})

	t.Run("re-verify is idempotent", func(t *testing.T) {
		order, err := svc.VerifyPayment(context.Background(), "user-1", orderID, paymentID, signature)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
	})
}

// paidOrder pushes an order through checkout and payment verification.
func paidOrder(t *testing.T, svc *OrderService, orderType string, items []OrderItemInput) *domain.Order {
	t.Helper()
	result, err := svc.Checkout(context.Background(), "user-1", orderType, items, nil, 0)
	require.NoError(t, err)

	paymentID := "pay_TEST1"
	signature := razorpay.Sign(result.GatewayOrderID, paymentID, MockSecret)
	order, err := svc.VerifyPayment(context.Background(), "user-1", result.Order.ID, paymentID, signature)
	require.NoError(t, err)
	return order
}

func TestOrderCancel(t *testing.T) {
	t.Run("early single order pays the standard fee", func(t *testing.T) {
		svc, repo := newOrderService()
		order := paidOrder(t, svc, domain.OrderTypeSingle, []OrderItemInput{nextWeekLunch()})
		_, err := svc.Confirm(context.Background(), order.ID)
		require.NoError(t, err)

		result, err := svc.Cancel(context.Background(), "user-1", order.ID)
		require.NoError(t, err)

		// 20% of 300
		assert.Equal(t, 60.0, result.Fee)
		assert.Equal(t, 240.0, result.Refund)
		assert.Empty(t, result.RefundError)

		stored := repo.orders[order.ID]
		assert.Equal(t, domain.OrderStatusCancelled, stored.Status)
		assert.Equal(t, domain.PaymentStatusRefunded, stored.PaymentStatus)
	})

	t.Run("unpaid pending order cancels free", func(t *testing.T) {
		svc, repo := newOrderService()
		result, err := svc.Checkout(context.Background(), "user-1", domain.OrderTypeSingle,
			[]OrderItemInput{nextWeekLunch()}, nil, 0)
		require.NoError(t, err)

		cancel, err := svc.Cancel(context.Background(), "user-1", result.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, 0.0, cancel.Fee)
		// Nothing was paid, so nothing moves through the gateway
		assert.Equal(t, domain.PaymentStatusUnpaid, repo.orders[result.Order.ID].PaymentStatus)
	})

	t.Run("already cancelled", func(t *testing.T) {
		svc, _ := newOrderService()
		order := paidOrder(t, svc, domain.OrderTypeSingle, []OrderItemInput{nextWeekLunch()})
		_, err := svc.Cancel(context.Background(), "user-1", order.ID)
		require.NoError(t, err)

		_, err = svc.Cancel(context.Background(), "user-1", order.ID)
		var policyErr *domain.PolicyError
		assert.ErrorAs(t, err, &policyErr)
	})

	t.Run("superseded subscription order", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc := NewOrderService(repo, &MockGateway{})
		order := &domain.Order{
			UserID: "user-1",
			Type:   domain.OrderTypeSubscriptionUpgrade,
			Status: domain.OrderStatusUpgraded,
		}
		require.NoError(t, repo.Create(context.Background(), order))

		_, err := svc.Cancel(context.Background(), "user-1", order.ID)
		var policyErr *domain.PolicyError
		assert.ErrorAs(t, err, &policyErr)
	})

	t.Run("not the owner", func(t *testing.T) {
		svc, _ := newOrderService()
		order := paidOrder(t, svc, domain.OrderTypeSingle, []OrderItemInput{nextWeekLunch()})
		_, err := svc.Cancel(context.Background(), "user-2", order.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("refund failure does not roll back the cancellation", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc := NewOrderService(repo, &failingGateway{})
		order := paidOrder(t, svc, domain.OrderTypeSingle, []OrderItemInput{nextWeekLunch()})

		result, err := svc.Cancel(context.Background(), "user-1", order.ID)
		require.NoError(t, err)

		assert.Contains(t, result.RefundError, "gateway unavailable")
		stored := repo.orders[order.ID]
		assert.Equal(t, domain.OrderStatusCancelled, stored.Status)
		// Refund never landed, so the payment is still recorded as paid
		assert.Equal(t, domain.PaymentStatusPaid, stored.PaymentStatus)
	})
}

func TestOrderConfirmReject(t *testing.T) {
	t.Run("confirm paid pending order", func(t *testing.T) {
		svc, _ := newOrderService()
		order := paidOrder(t, svc, domain.OrderTypeSingle, []OrderItemInput{nextWeekLunch()})

		confirmed, err := svc.Confirm(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusConfirmed, confirmed.Status)

		// A confirmed order cannot be confirmed again
		_, err = svc.Confirm(context.Background(), order.ID)
		var policyErr *domain.PolicyError
		assert.ErrorAs(t, err, &policyErr)
	})

	t.Run("confirm refuses unpaid order", func(t *testing.T) {
		svc, _ := newOrderService()
		result, err := svc.Checkout(context.Background(), "user-1", domain.OrderTypeSingle,
			[]OrderItemInput{nextWeekLunch()}, nil, 0)
		require.NoError(t, err)

		_, err = svc.Confirm(context.Background(), result.Order.ID)
		var policyErr *domain.PolicyError
		assert.ErrorAs(t, err, &policyErr)
	})

	t.Run("reject refunds in full with no fee", func(t *testing.T) {
		svc, repo := newOrderService()
		order := paidOrder(t, svc, domain.OrderTypeSingle, []OrderItemInput{nextWeekLunch()})

		result, err := svc.Reject(context.Background(), order.ID)
		require.NoError(t, err)

		assert.Equal(t, 0.0, result.Fee)
		assert.Equal(t, 300.0, result.Refund)
		stored := repo.orders[order.ID]
		assert.Equal(t, domain.OrderStatusRejected, stored.Status)
		assert.Equal(t, domain.PaymentStatusRefunded, stored.PaymentStatus)
	})

	t.Run("reject refuses confirmed order", func(t *testing.T) {
		svc, _ := newOrderService()
		order := paidOrder(t, svc, domain.OrderTypeSingle, []OrderItemInput{nextWeekLunch()})
		_, err := svc.Confirm(context.Background(), order.ID)
		require.NoError(t, err)

		_, err = svc.Reject(context.Background(), order.ID)
		var policyErr *domain.PolicyError
		assert.ErrorAs(t, err, &policyErr)
	})
}

func TestOrderListAll(t *testing.T) {
	svc, _ := newOrderService()
	order := paidOrder(t, svc, domain.OrderTypeSingle, []OrderItemInput{nextWeekLunch()})
	_, err := svc.Confirm(context.Background(), order.ID)
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), "user-2", domain.OrderTypeSingle,
		[]OrderItemInput{nextWeekLunch()}, nil, 0)
	require.NoError(t, err)

	all, err := svc.ListAll(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.ListAll(context.Background(), domain.OrderStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "user-2", pending[0].UserID)

	mine, err := svc.ListForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
