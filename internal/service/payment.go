package service

import (
	"context"
	"log"
	"os"

	"github.com/KUSHAL0100/payals-kitchen/internal/infrastructure/razorpay"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// PaymentOrder is a gateway-side order awaiting client checkout.
type PaymentOrder struct {
	ID       string
	Amount   int64 // paise
	Currency string
}

// RefundResult is the gateway's acknowledgement of a refund.
type RefundResult struct {
	ID        string
	PaymentID string
	Amount    int64 // paise
	Status    string
}

// PaymentProvider defines the interface for payment gateway integrations.
// Amounts cross this boundary in paise; everything inside the service layer is
// rupees.
type PaymentProvider interface {
	CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*PaymentOrder, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
	ProcessRefund(ctx context.Context, paymentID string, amountPaise int64) (*RefundResult, error)
}

// MockSecret signs mock-gateway checkout callbacks so the full verify flow is
// exercisable without credentials.
const MockSecret = "payals-kitchen-mock-secret"

// MockGateway is a PaymentProvider for development and tests.
type MockGateway struct{}

// RazorpayAdapter adapts the razorpay.Client to PaymentProvider.
type RazorpayAdapter struct {
	client *razorpay.Client
}

// NewPaymentProvider returns the appropriate PaymentProvider based on environment
// config. If RAZORPAY_KEY_SECRET is empty, returns a mock gateway for development.
func NewPaymentProvider() PaymentProvider {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	baseURL := os.Getenv("RAZORPAY_BASE_URL")

	if keyID == "" || keySecret == "" {
		log.Println("[Payment] Using mock gateway (no Razorpay credentials configured)")
		return &MockGateway{}
	}

	log.Printf("[Payment] Using Razorpay gateway (key: %s)", keyID)
	client := razorpay.NewClient(razorpay.Config{
		KeyID:     keyID,
		KeySecret: keySecret,
		BaseURL:   baseURL,
	})
	return &RazorpayAdapter{client: client}
}

// ToPaise converts a rupee amount to paise for the gateway boundary.
func ToPaise(rupees float64) int64 {
	return decimal.NewFromFloat(rupees).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (m *MockGateway) CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*PaymentOrder, error) {
	return &PaymentOrder{
		ID:       "order_MOCK" + ulid.Make().String(),
		Amount:   amountPaise,
		Currency: "INR",
	}, nil
}

func (m *MockGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	if signature == "" {
		return false
	}
	expected := razorpay.Sign(gatewayOrderID, paymentID, MockSecret)
	return expected == signature
}

func (m *MockGateway) ProcessRefund(ctx context.Context, paymentID string, amountPaise int64) (*RefundResult, error) {
	return &RefundResult{
		ID:        "rfnd_MOCK" + ulid.Make().String(),
		PaymentID: paymentID,
		Amount:    amountPaise,
		Status:    "processed",
	}, nil
}

func (a *RazorpayAdapter) CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*PaymentOrder, error) {
	order, err := a.client.CreateOrder(ctx, amountPaise, receipt)
	if err != nil {
		log.Printf("[Payment] Razorpay create order error: %v", err)
		return nil, err
	}
	return &PaymentOrder{ID: order.ID, Amount: order.Amount, Currency: order.Currency}, nil
}

func (a *RazorpayAdapter) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return a.client.VerifyPaymentSignature(gatewayOrderID, paymentID, signature)
}

func (a *RazorpayAdapter) ProcessRefund(ctx context.Context, paymentID string, amountPaise int64) (*RefundResult, error) {
	refund, err := a.client.ProcessRefund(ctx, paymentID, amountPaise)
	if err != nil {
		log.Printf("[Payment] Razorpay refund error: %v", err)
		return nil, err
	}
	return &RefundResult{ID: refund.ID, PaymentID: refund.PaymentID, Amount: refund.Amount, Status: refund.Status}, nil
}
