package domain

import (
	"context"
	"time"
)

// Order status constants
const (
	OrderStatusPending   = "Pending"
	OrderStatusConfirmed = "Confirmed"
	OrderStatusCancelled = "Cancelled"
	OrderStatusRejected  = "Rejected"
	OrderStatusUpgraded  = "Upgraded"
)

// Order type constants
const (
	OrderTypeSingle              = "single"
	OrderTypeEvent               = "event"
	OrderTypeSubscriptionNew     = "subscription_purchase"
	OrderTypeSubscriptionUpgrade = "subscription_upgrade"
)

// Payment status constants
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Meal time constants for one-off tiffin orders
const (
	MealTimeLunch  = "Lunch"
	MealTimeDinner = "Dinner"
)

// OrderItem is a single line of an order. Detail carries free-form structured
// data from the client (event menus arrive as nested lists); the dispatch
// aggregator normalizes it, so its shape is deliberately left open.
type OrderItem struct {
	Name         string      `bson:"name,omitempty" json:"name"`
	Quantity     int         `bson:"quantity,omitempty" json:"quantity"`
	UnitPrice    float64     `bson:"unit_price,omitempty" json:"unit_price"`
	PlanType     string      `bson:"plan_type,omitempty" json:"plan_type,omitempty"`
	MealTime     string      `bson:"meal_time,omitempty" json:"meal_time,omitempty"`
	DeliveryDate time.Time   `bson:"delivery_date,omitempty" json:"delivery_date"`
	Detail       interface{} `bson:"detail,omitempty" json:"detail,omitempty"`
}

// Order is both a one-off purchase (single tiffin, event catering) and the audit
// record of every subscription purchase/upgrade. Subscription audit orders are
// never the unit of fulfilment; they exist so money movements survive the
// subscription rows they describe.
type Order struct {
	ID              string      `bson:"_id,omitempty" json:"id"`
	UserID          string      `bson:"user_id,omitempty" json:"user_id"`
	Items           []OrderItem `bson:"items,omitempty" json:"items"`
	Price           float64     `bson:"price" json:"price"`
	DiscountAmount  float64     `bson:"discount_amount" json:"discount_amount"`
	ProRataCredit   float64     `bson:"pro_rata_credit" json:"pro_rata_credit"`
	TotalAmount     float64     `bson:"total_amount" json:"total_amount"`
	Status          string      `bson:"status,omitempty" json:"status"`
	Type            string      `bson:"type,omitempty" json:"type"`
	PaymentStatus   string      `bson:"payment_status,omitempty" json:"payment_status"`
	PaymentID       string      `bson:"payment_id,omitempty" json:"payment_id,omitempty"`
	GatewayOrderID  string      `bson:"gateway_order_id,omitempty" json:"gateway_order_id,omitempty"`
	SubscriptionID  string      `bson:"subscription_id,omitempty" json:"subscription_id,omitempty"`
	DeliveryAddress *Address    `bson:"delivery_address,omitempty" json:"delivery_address,omitempty"`
	CancellationFee float64     `bson:"cancellation_fee" json:"cancellation_fee"`
	RefundAmount    float64     `bson:"refund_amount" json:"refund_amount"`
	CreatedAt       time.Time   `bson:"created_at,omitempty" json:"created_at"`
	UpdatedAt       time.Time   `bson:"updated_at,omitempty" json:"updated_at"`
}

// EarliestDelivery returns the soonest line-item delivery date, or the zero time
// for an order with no dated items.
func (o *Order) EarliestDelivery() time.Time {
	var earliest time.Time
	for _, item := range o.Items {
		if item.DeliveryDate.IsZero() {
			continue
		}
		if earliest.IsZero() || item.DeliveryDate.Before(earliest) {
			earliest = item.DeliveryDate
		}
	}
	return earliest
}

// OrderRepository defines operations for managing orders
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByUserID(ctx context.Context, userID string) ([]*Order, error)
	Update(ctx context.Context, order *Order) error
	UpdateStatus(ctx context.Context, id string, status string) error
	// MarkBySubscription bulk-updates the status of every order referencing a
	// subscription; used when a subscription is upgraded or cancelled.
	MarkBySubscription(ctx context.Context, subscriptionID, status string) error
	// GetForDeliveryDay returns Confirmed, paid, single/event orders with at
	// least one line item delivering inside the day.
	GetForDeliveryDay(ctx context.Context, dayStart, dayEnd time.Time) ([]*Order, error)
	List(ctx context.Context, status string) ([]*Order, error)
}
