package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// OrderService handles one-off tiffin and event-catering orders: checkout,
// payment verification, cancellation with fee/refund, and the admin
// confirm/reject transitions.
type OrderService struct {
	orderRepo domain.OrderRepository
	payments  PaymentProvider
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo domain.OrderRepository, payments PaymentProvider) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		payments:  payments,
	}
}

// OrderItemInput is one requested line item.
type OrderItemInput struct {
	Name         string      `json:"name"`
	Quantity     int         `json:"quantity"`
	UnitPrice    float64     `json:"unit_price"`
	PlanType     string      `json:"plan_type"`
	MealTime     string      `json:"meal_time"`
	DeliveryDate time.Time   `json:"delivery_date"`
	Detail       interface{} `json:"detail"`
}

// OrderCheckoutResult pairs the persisted order with the gateway order the
// client must pay.
type OrderCheckoutResult struct {
	Order          *domain.Order `json:"order"`
	GatewayOrderID string        `json:"gateway_order_id"`
	Currency       string        `json:"currency"`
	AmountPaise    int64         `json:"amount_paise"`
}

// CancelResult reports the fee split of a cancellation. RefundError is set when
// the gateway refund call failed; the cancellation itself still stands.
type CancelResult struct {
	Order       *domain.Order `json:"order"`
	Fee         float64       `json:"cancellation_fee"`
	Refund      float64       `json:"refund_amount"`
	RefundError string        `json:"refund_error,omitempty"`
}

// Checkout validates timing and pricing for a one-off order, creates the gateway
// order, and persists the order as Pending/unpaid.
func (s *OrderService) Checkout(ctx context.Context, userID, orderType string, items []OrderItemInput, address *domain.Address, discount float64) (*OrderCheckoutResult, error) {
	if orderType != domain.OrderTypeSingle && orderType != domain.OrderTypeEvent {
		return nil, domain.NewValidationError("invalid order type %q", orderType)
	}
	if len(items) == 0 {
		return nil, domain.NewValidationError("order needs at least one item")
	}

	now := time.Now().UTC()
	price := decimal.Zero
	orderItems := make([]domain.OrderItem, 0, len(items))
	for _, in := range items {
		if in.Name == "" {
			return nil, domain.NewValidationError("order item is missing a name")
		}
		if in.Quantity <= 0 {
			return nil, domain.NewValidationError("item %q has a non-positive quantity", in.Name)
		}
		if in.UnitPrice < 0 {
			return nil, domain.NewValidationError("item %q has a negative price", in.Name)
		}
		if in.DeliveryDate.IsZero() {
			return nil, domain.NewValidationError("item %q is missing a delivery date", in.Name)
		}

		if orderType == domain.OrderTypeEvent {
			if err := ValidateEventTime(in.DeliveryDate, now); err != nil {
				return nil, err
			}
		} else {
			mealTime := in.MealTime
			if mealTime == "" {
				mealTime = domain.MealTimeLunch
			}
			if err := ValidateOrderTime(in.DeliveryDate, mealTime, now); err != nil {
				return nil, err
			}
		}

		price = price.Add(decimal.NewFromFloat(in.UnitPrice).Mul(decimal.NewFromInt(int64(in.Quantity))))
		orderItems = append(orderItems, domain.OrderItem{
			Name:         in.Name,
			Quantity:     in.Quantity,
			UnitPrice:    in.UnitPrice,
			PlanType:     in.PlanType,
			MealTime:     in.MealTime,
			DeliveryDate: in.DeliveryDate,
			Detail:       in.Detail,
		})
	}

	if discount < 0 {
		return nil, domain.NewValidationError("discount cannot be negative")
	}
	total := price.Sub(decimal.NewFromFloat(discount))
	if total.IsNegative() {
		return nil, domain.NewValidationError("discount exceeds order price")
	}

	receipt := "ord_" + ulid.Make().String()
	gwOrder, err := s.payments.CreateOrder(ctx, ToPaise(total.InexactFloat64()), receipt)
	if err != nil {
		return nil, fmt.Errorf("payment gateway order creation failed: %w", err)
	}

	order := &domain.Order{
		UserID:          userID,
		Items:           orderItems,
		Price:           price.InexactFloat64(),
		DiscountAmount:  discount,
		TotalAmount:     total.InexactFloat64(),
		Status:          domain.OrderStatusPending,
		Type:            orderType,
		PaymentStatus:   domain.PaymentStatusUnpaid,
		GatewayOrderID:  gwOrder.ID,
		DeliveryAddress: address,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return &OrderCheckoutResult{
		Order:          order,
		GatewayOrderID: gwOrder.ID,
		Currency:       gwOrder.Currency,
		AmountPaise:    gwOrder.Amount,
	}, nil
}

// VerifyPayment marks an order paid after the gateway signature checks out. The
// order stays Pending until the kitchen confirms it.
func (s *OrderService) VerifyPayment(ctx context.Context, userID, orderID, paymentID, signature string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if !s.payments.VerifySignature(order.GatewayOrderID, paymentID, signature) {
		return nil, domain.ErrSignatureMismatch
	}
	if order.PaymentStatus == domain.PaymentStatusPaid {
		return order, nil
	}

	order.PaymentStatus = domain.PaymentStatusPaid
	order.PaymentID = paymentID
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return order, nil
}

// Cancel cancels a one-off order, computing the fee/refund split and attempting
// the gateway refund. A failed refund call never rolls back the cancellation;
// it is logged and reported in RefundError so the caller always knows whether
// the refund succeeded, failed, or did not apply.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID string) (*CancelResult, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrForbidden
	}
	switch order.Status {
	case domain.OrderStatusCancelled, domain.OrderStatusRejected:
		return nil, &domain.PolicyError{Reason: "order is already cancelled"}
	case domain.OrderStatusUpgraded:
		return nil, &domain.PolicyError{Reason: "superseded subscription orders cannot be cancelled"}
	}

	fee, refund := CancellationFee(order, time.Now().UTC())

	order.Status = domain.OrderStatusCancelled
	order.CancellationFee = fee
	order.RefundAmount = refund

	result := &CancelResult{Fee: fee, Refund: refund}

	if refund > 0 && order.PaymentStatus == domain.PaymentStatusPaid {
		if _, err := s.payments.ProcessRefund(ctx, order.PaymentID, ToPaise(refund)); err != nil {
			log.Printf("[Order] Refund failed for order %s payment %s: %v", order.ID, order.PaymentID, err)
			result.RefundError = err.Error()
		} else {
			order.PaymentStatus = domain.PaymentStatusRefunded
		}
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	result.Order = order
	return result, nil
}

// Confirm moves a paid Pending order to Confirmed (admin).
func (s *OrderService) Confirm(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusPending {
		return nil, &domain.PolicyError{Reason: "only pending orders can be confirmed"}
	}
	if order.PaymentStatus != domain.PaymentStatusPaid {
		return nil, &domain.PolicyError{Reason: "order has not been paid"}
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, domain.OrderStatusConfirmed); err != nil {
		return nil, fmt.Errorf("failed to confirm order: %w", err)
	}
	order.Status = domain.OrderStatusConfirmed
	return order, nil
}

// Reject declines a Pending order (admin) and refunds any payment in full; the
// customer pays no fee for a kitchen-side rejection.
func (s *OrderService) Reject(ctx context.Context, orderID string) (*CancelResult, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusPending {
		return nil, &domain.PolicyError{Reason: "only pending orders can be rejected"}
	}

	order.Status = domain.OrderStatusRejected
	order.CancellationFee = 0
	order.RefundAmount = order.TotalAmount

	result := &CancelResult{Fee: 0, Refund: order.RefundAmount}

	if order.RefundAmount > 0 && order.PaymentStatus == domain.PaymentStatusPaid {
		if _, err := s.payments.ProcessRefund(ctx, order.PaymentID, ToPaise(order.RefundAmount)); err != nil {
			log.Printf("[Order] Refund failed for rejected order %s: %v", order.ID, err)
			result.RefundError = err.Error()
		} else {
			order.PaymentStatus = domain.PaymentStatusRefunded
		}
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	result.Order = order
	return result, nil
}

// ListForUser returns the caller's orders.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.orderRepo.GetByUserID(ctx, userID)
}

// ListAll returns orders, optionally filtered by status (admin).
func (s *OrderService) ListAll(ctx context.Context, status string) ([]*domain.Order, error) {
	orders, err := s.orderRepo.List(ctx, status)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return orders, nil
}
