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

// SubscriptionService orchestrates the subscription lifecycle: subscribe,
// upgrade, renew, cancel and meal-type changes. A subscription row moves
// Active -> {Upgraded, Cancelled, Expired} and never comes back; history is
// kept, not deleted.
//
// The at-most-one-Active-per-user invariant is enforced by a read-then-write
// check, not a unique index, so it is racy under concurrent requests from the
// same user. The multi-document activation sequence is likewise not
// transactional; a crash mid-sequence can leave the old row marked Upgraded
// without a successor.
type SubscriptionService struct {
	subRepo   domain.SubscriptionRepository
	planRepo  domain.PlanRepository
	orderRepo domain.OrderRepository
	userRepo  domain.UserRepository
	payments  PaymentProvider
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(
	subRepo domain.SubscriptionRepository,
	planRepo domain.PlanRepository,
	orderRepo domain.OrderRepository,
	userRepo domain.UserRepository,
	payments PaymentProvider,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo:   subRepo,
		planRepo:  planRepo,
		orderRepo: orderRepo,
		userRepo:  userRepo,
		payments:  payments,
	}
}

// CheckoutInput describes a subscribe, upgrade or renew attempt.
type CheckoutInput struct {
	UserID        string
	PlanID        string
	MealType      string
	LunchAddress  *domain.Address
	DinnerAddress *domain.Address
	// Renew re-runs the purchase of the caller's current plan without the
	// upgrade eligibility gate.
	Renew bool
}

// CheckoutResult is either an activated subscription (free switch) or a gateway
// order the client must pay.
type CheckoutResult struct {
	FreeSwitch     bool                 `json:"free_switch"`
	Subscription   *domain.Subscription `json:"subscription,omitempty"`
	GatewayOrderID string               `json:"gateway_order_id,omitempty"`
	Currency       string               `json:"currency,omitempty"`
	Price          float64              `json:"price"`
	Credit         float64              `json:"credit"`
	AmountDue      float64              `json:"amount_due"`
	AmountDuePaise int64                `json:"amount_due_paise,omitempty"`
}

// VerifyInput carries the gateway callback for a paid checkout. Plan and meal
// selection are re-submitted and re-priced; the credit computation is the same
// one used at checkout, so the verified charge cannot drift from the quote.
type VerifyInput struct {
	UserID         string
	PlanID         string
	MealType       string
	LunchAddress   *domain.Address
	DinnerAddress  *domain.Address
	Renew          bool
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

// quote is the shared pricing snapshot behind checkout, verification and the
// client preview.
type quote struct {
	plan     *domain.Plan
	existing *domain.Subscription
	price    float64
	credit   float64
	payable  float64
}

func (s *SubscriptionService) quote(ctx context.Context, userID, planID, mealType string, renew bool) (*quote, error) {
	if !domain.IsValidMealType(mealType) {
		return nil, domain.NewValidationError("invalid meal type %q", mealType)
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, &domain.PolicyError{Reason: "plan is no longer offered"}
	}

	existing, err := s.subRepo.GetActiveByUserID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		if renew {
			// A renewal re-purchases the current subscription as-is; any other
			// plan or meal selection must pass the upgrade gate instead.
			if plan.ID != existing.PlanID || mealType != existing.MealType {
				return nil, &domain.PolicyError{Reason: "renewal must use the current plan and meal type"}
			}
		} else {
			currentPlan, err := s.planRepo.GetByID(ctx, existing.PlanID)
			if err != nil {
				return nil, fmt.Errorf("failed to load current plan: %w", err)
			}
			if err := CheckUpgradeEligibility(existing, currentPlan, plan, mealType); err != nil {
				return nil, err
			}
		}
	}

	q := &quote{
		plan:     plan,
		existing: existing,
		price:    PriceFor(plan, mealType),
	}
	if existing != nil {
		q.credit = ProRataCredit(existing, time.Now().UTC())
	}

	payable := decimal.NewFromFloat(q.price).Sub(decimal.NewFromFloat(q.credit))
	if payable.IsNegative() {
		payable = decimal.Zero
	}
	q.payable = payable.InexactFloat64()
	return q, nil
}

// Checkout prices the requested plan against any active subscription's pro-rata
// credit. When nothing is payable the switch is free: the subscription activates
// immediately and no gateway order is created. Otherwise a gateway order is
// returned for client-side payment; nothing is persisted until the payment
// verifies.
func (s *SubscriptionService) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	q, err := s.quote(ctx, in.UserID, in.PlanID, in.MealType, in.Renew)
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{
		Price:     q.price,
		Credit:    q.credit,
		AmountDue: q.payable,
	}

	if q.payable == 0 {
		sub, err := s.activate(ctx, q, in, "", "")
		if err != nil {
			return nil, err
		}
		log.Printf("[Subscription] Free switch for user %s to plan %s", in.UserID, q.plan.Name)
		result.FreeSwitch = true
		result.Subscription = sub
		return result, nil
	}

	receipt := "sub_" + ulid.Make().String()
	gwOrder, err := s.payments.CreateOrder(ctx, ToPaise(q.payable), receipt)
	if err != nil {
		return nil, fmt.Errorf("payment gateway order creation failed: %w", err)
	}

	result.GatewayOrderID = gwOrder.ID
	result.Currency = gwOrder.Currency
	result.AmountDuePaise = gwOrder.Amount
	return result, nil
}

// VerifyAndActivate validates the gateway signature, re-derives the quote and
// activates the subscription.
func (s *SubscriptionService) VerifyAndActivate(ctx context.Context, in VerifyInput) (*domain.Subscription, error) {
	if !s.payments.VerifySignature(in.GatewayOrderID, in.PaymentID, in.Signature) {
		return nil, domain.ErrSignatureMismatch
	}

	q, err := s.quote(ctx, in.UserID, in.PlanID, in.MealType, in.Renew)
	if err != nil {
		return nil, err
	}

	sub, err := s.activate(ctx, q, CheckoutInput{
		UserID:        in.UserID,
		PlanID:        in.PlanID,
		MealType:      in.MealType,
		LunchAddress:  in.LunchAddress,
		DinnerAddress: in.DinnerAddress,
		Renew:         in.Renew,
	}, in.PaymentID, in.GatewayOrderID)
	if err != nil {
		return nil, err
	}

	log.Printf("[Subscription] Activated %s for user %s (paid %.2f, credit %.2f)",
		sub.ID, in.UserID, q.payable, q.credit)
	return sub, nil
}

// activate runs the state transition: supersede the old Active row and its
// orders, create the new subscription, repoint the user, and write the audit
// order. Sequential writes, no transaction.
func (s *SubscriptionService) activate(ctx context.Context, q *quote, in CheckoutInput, paymentID, gatewayOrderID string) (*domain.Subscription, error) {
	now := time.Now().UTC()

	if q.existing != nil {
		if err := s.subRepo.UpdateStatus(ctx, q.existing.ID, domain.SubscriptionStatusUpgraded); err != nil {
			return nil, fmt.Errorf("failed to supersede subscription %s: %w", q.existing.ID, err)
		}
		if err := s.orderRepo.MarkBySubscription(ctx, q.existing.ID, domain.OrderStatusUpgraded); err != nil {
			log.Printf("[Subscription] Failed to mark orders of %s upgraded: %v", q.existing.ID, err)
		}
	}

	sub := &domain.Subscription{
		UserID:        in.UserID,
		PlanID:        q.plan.ID,
		StartDate:     now,
		EndDate:       domain.PeriodEnd(now, q.plan.Duration),
		Status:        domain.SubscriptionStatusActive,
		MealType:      in.MealType,
		AmountPaid:    q.payable,
		PlanValue:     q.price,
		LunchAddress:  in.LunchAddress,
		DinnerAddress: in.DinnerAddress,
	}
	if sub.LunchAddress == nil && q.existing != nil {
		sub.LunchAddress = q.existing.LunchAddress
	}
	if sub.DinnerAddress == nil && q.existing != nil {
		sub.DinnerAddress = q.existing.DinnerAddress
	}
	sub.SyncAddresses()

	if err := s.subRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := s.userRepo.SetCurrentSubscription(ctx, in.UserID, sub.ID); err != nil {
		log.Printf("[Subscription] Failed to repoint user %s: %v", in.UserID, err)
	}

	orderType := domain.OrderTypeSubscriptionNew
	if q.existing != nil {
		orderType = domain.OrderTypeSubscriptionUpgrade
	}
	paymentStatus := domain.PaymentStatusPaid
	audit := &domain.Order{
		UserID: in.UserID,
		Items: []domain.OrderItem{{
			Name:         fmt.Sprintf("%s plan (%s, %s)", q.plan.Name, q.plan.Duration, in.MealType),
			Quantity:     1,
			UnitPrice:    q.price,
			PlanType:     q.plan.Name,
			DeliveryDate: now,
		}},
		Price:          q.price,
		ProRataCredit:  q.credit,
		TotalAmount:    q.payable,
		Status:         domain.OrderStatusConfirmed,
		Type:           orderType,
		PaymentStatus:  paymentStatus,
		PaymentID:      paymentID,
		GatewayOrderID: gatewayOrderID,
		SubscriptionID: sub.ID,
	}
	if err := s.orderRepo.Create(ctx, audit); err != nil {
		log.Printf("[Subscription] Failed to write audit order for %s: %v", sub.ID, err)
	}

	return sub, nil
}

// CheckUpgradeEligibility decides whether current may move to (newPlan,
// newMealType). Used for both UI gating and server-side enforcement.
//
// Same plan: only widening a single-meal subscription to both meals is allowed.
// Different plan: the tier must increase, or the tier stay equal with a longer
// billing period.
func CheckUpgradeEligibility(current *domain.Subscription, currentPlan, newPlan *domain.Plan, newMealType string) error {
	if currentPlan.ID == newPlan.ID {
		if current.MealType == newMealType {
			return &domain.PolicyError{Reason: "you are already subscribed to this plan and meal type"}
		}
		if current.MealType != domain.MealTypeBoth && newMealType == domain.MealTypeBoth {
			return nil
		}
		return &domain.PolicyError{Reason: "on the same plan only upgrading to both meals is allowed; to reduce meals, cancel and resubscribe"}
	}

	curTier, newTier := domain.TierRank(currentPlan.Name), domain.TierRank(newPlan.Name)
	if newTier > curTier {
		return nil
	}
	if newTier == curTier && domain.DurationRank(newPlan.Duration) > domain.DurationRank(currentPlan.Duration) {
		return nil
	}
	return &domain.PolicyError{Reason: "upgrades must move to a higher tier, or to a longer duration on the same tier"}
}

// PreviewResult is the client-displayed upgrade quote.
type PreviewResult struct {
	Eligible  bool    `json:"eligible"`
	Reason    string  `json:"reason,omitempty"`
	Price     float64 `json:"price"`
	Credit    float64 `json:"credit"`
	AmountDue float64 `json:"amount_due"`
}

// Preview quotes an upgrade without side effects, using the same credit
// computation as checkout.
func (s *SubscriptionService) Preview(ctx context.Context, userID, planID, mealType string) (*PreviewResult, error) {
	q, err := s.quote(ctx, userID, planID, mealType, false)
	if err != nil {
		var policyErr *domain.PolicyError
		if errors.As(err, &policyErr) {
			return &PreviewResult{Eligible: false, Reason: policyErr.Reason}, nil
		}
		return nil, err
	}
	return &PreviewResult{
		Eligible:  true,
		Price:     q.price,
		Credit:    q.credit,
		AmountDue: q.payable,
	}, nil
}

// Current returns the caller's Active subscription.
func (s *SubscriptionService) Current(ctx context.Context, userID string) (*domain.Subscription, error) {
	return s.subRepo.GetActiveByUserID(ctx, userID)
}

// ChangeMealType applies an immediate meal-type downgrade (both -> lunch or
// both -> dinner). There is no refund for the forfeited meal; PlanValue is
// re-snapshotted to the new meal type's market price so future credits reflect
// the current service level. Widening to both meals is a paid upgrade and is
// rejected here.
func (s *SubscriptionService) ChangeMealType(ctx context.Context, userID, newType string) (*domain.Subscription, error) {
	if !domain.IsValidMealType(newType) {
		return nil, domain.NewValidationError("invalid meal type %q", newType)
	}

	sub, err := s.subRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if sub.MealType == newType {
		return nil, &domain.PolicyError{Reason: "subscription already uses this meal type"}
	}
	if newType == domain.MealTypeBoth {
		return nil, &domain.PolicyError{Reason: "upgrading to both meals goes through the paid upgrade flow"}
	}
	if sub.MealType != domain.MealTypeBoth {
		return nil, &domain.PolicyError{Reason: "meal type can only be reduced from a both-meals subscription"}
	}

	plan, err := s.planRepo.GetByID(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	sub.MealType = newType
	sub.PlanValue = PriceFor(plan, newType)
	sub.SyncAddresses()

	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}
	return sub, nil
}

// UpdateAddresses replaces the delivery addresses on the caller's Active
// subscription, re-applying the single-meal duplication invariant.
func (s *SubscriptionService) UpdateAddresses(ctx context.Context, userID string, lunch, dinner *domain.Address) (*domain.Subscription, error) {
	sub, err := s.subRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if lunch != nil {
		sub.LunchAddress = lunch
	}
	if dinner != nil {
		sub.DinnerAddress = dinner
	}
	sub.SyncAddresses()

	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}
	return sub, nil
}

// Cancel terminates the caller's Active subscription with zero refund:
// subscriptions are non-refundable by policy, unlike one-off orders. The user's
// current-subscription pointer is cleared and associated orders are bulk-marked
// Cancelled for the audit trail.
func (s *SubscriptionService) Cancel(ctx context.Context, userID string) error {
	sub, err := s.subRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.subRepo.UpdateStatus(ctx, sub.ID, domain.SubscriptionStatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	if err := s.userRepo.ClearCurrentSubscription(ctx, userID, sub.ID); err != nil {
		log.Printf("[Subscription] Failed to clear pointer for user %s: %v", userID, err)
	}
	if err := s.orderRepo.MarkBySubscription(ctx, sub.ID, domain.OrderStatusCancelled); err != nil {
		log.Printf("[Subscription] Failed to mark orders of %s cancelled: %v", sub.ID, err)
	}
	return nil
}

// ExpireLapsed transitions Active subscriptions whose end date has passed.
// Invoked from the admin surface; there is no background worker.
func (s *SubscriptionService) ExpireLapsed(ctx context.Context) (int64, error) {
	return s.subRepo.MarkLapsedExpired(ctx, time.Now().UTC())
}
