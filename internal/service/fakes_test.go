package service

import (
	"context"
	"fmt"
	"time"

	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
)

// In-memory repository fakes. No locking: service tests are single-goroutine
// except the manifest fetch, which only reads.

type fakeUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now().UTC()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) SetCurrentSubscription(ctx context.Context, userID, subscriptionID string) error {
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.CurrentSubscriptionID = subscriptionID
	return nil
}

func (r *fakeUserRepo) ClearCurrentSubscription(ctx context.Context, userID, subscriptionID string) error {
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if user.CurrentSubscriptionID == subscriptionID {
		user.CurrentSubscriptionID = ""
	}
	return nil
}

type fakePlanRepo struct {
	plans  map[string]*domain.Plan
	nextID int
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[string]*domain.Plan)}
}

func (r *fakePlanRepo) Create(ctx context.Context, plan *domain.Plan) error {
	r.nextID++
	plan.ID = fmt.Sprintf("plan-%d", r.nextID)
	r.plans[plan.ID] = plan
	return nil
}

func (r *fakePlanRepo) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	if plan, ok := r.plans[id]; ok {
		return plan, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakePlanRepo) GetActivePlans(ctx context.Context) ([]*domain.Plan, error) {
	var active []*domain.Plan
	for _, plan := range r.plans {
		if plan.Active {
			active = append(active, plan)
		}
	}
	return active, nil
}

func (r *fakePlanRepo) Update(ctx context.Context, plan *domain.Plan) error {
	if _, ok := r.plans[plan.ID]; !ok {
		return domain.ErrNotFound
	}
	r.plans[plan.ID] = plan
	return nil
}

type fakeSubRepo struct {
	subs   map[string]*domain.Subscription
	nextID int
}

func newFakeSubRepo() *fakeSubRepo {
	return &fakeSubRepo{subs: make(map[string]*domain.Subscription)}
}

func (r *fakeSubRepo) Create(ctx context.Context, sub *domain.Subscription) error {
	r.nextID++
	sub.ID = fmt.Sprintf("sub-%d", r.nextID)
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	r.subs[sub.ID] = sub
	return nil
}

func (r *fakeSubRepo) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	if sub, ok := r.subs[id]; ok {
		return sub, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeSubRepo) GetByUserID(ctx context.Context, userID string) ([]*domain.Subscription, error) {
	var out []*domain.Subscription
	for _, sub := range r.subs {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *fakeSubRepo) GetActiveByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	for _, sub := range r.subs {
		if sub.UserID == userID && sub.Status == domain.SubscriptionStatusActive {
			return sub, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeSubRepo) Update(ctx context.Context, sub *domain.Subscription) error {
	if _, ok := r.subs[sub.ID]; !ok {
		return domain.ErrNotFound
	}
	sub.UpdatedAt = time.Now().UTC()
	r.subs[sub.ID] = sub
	return nil
}

func (r *fakeSubRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	sub, ok := r.subs[id]
	if !ok {
		return domain.ErrNotFound
	}
	sub.Status = status
	sub.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeSubRepo) GetForDeliveryDay(ctx context.Context, dayStart, dayEnd time.Time) ([]*domain.Subscription, error) {
	var out []*domain.Subscription
	for _, sub := range r.subs {
		if sub.StartDate.After(dayEnd) || sub.EndDate.Before(dayStart) {
			continue
		}
		if sub.Status == domain.SubscriptionStatusActive || !sub.UpdatedAt.Before(dayStart) {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *fakeSubRepo) MarkLapsedExpired(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	for _, sub := range r.subs {
		if sub.Status == domain.SubscriptionStatusActive && sub.EndDate.Before(now) {
			sub.Status = domain.SubscriptionStatusExpired
			sub.UpdatedAt = now
			count++
		}
	}
	return count, nil
}

type fakeOrderRepo struct {
	orders map[string]*domain.Order
	nextID int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	r.nextID++
	order.ID = fmt.Sprintf("order-%d", r.nextID)
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if order, ok := r.orders[id]; ok {
		return order, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeOrderRepo) GetByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, order *domain.Order) error {
	if _, ok := r.orders[order.ID]; !ok {
		return domain.ErrNotFound
	}
	order.UpdatedAt = time.Now().UTC()
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	order, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeOrderRepo) MarkBySubscription(ctx context.Context, subscriptionID, status string) error {
	for _, order := range r.orders {
		if order.SubscriptionID == subscriptionID {
			order.Status = status
			order.UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}

func (r *fakeOrderRepo) GetForDeliveryDay(ctx context.Context, dayStart, dayEnd time.Time) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range r.orders {
		if order.Status != domain.OrderStatusConfirmed || order.PaymentStatus != domain.PaymentStatusPaid {
			continue
		}
		if order.Type != domain.OrderTypeSingle && order.Type != domain.OrderTypeEvent {
			continue
		}
		for _, item := range order.Items {
			if !item.DeliveryDate.Before(dayStart) && !item.DeliveryDate.After(dayEnd) {
				out = append(out, order)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) List(ctx context.Context, status string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range r.orders {
		if status == "" || order.Status == status {
			out = append(out, order)
		}
	}
	return out, nil
}

type fakePauseRepo struct {
	pauses map[string]*domain.DeliveryPause
	nextID int
}

func newFakePauseRepo() *fakePauseRepo {
	return &fakePauseRepo{pauses: make(map[string]*domain.DeliveryPause)}
}

func (r *fakePauseRepo) Create(ctx context.Context, pause *domain.DeliveryPause) error {
	r.nextID++
	pause.ID = fmt.Sprintf("pause-%d", r.nextID)
	pause.CreatedAt = time.Now().UTC()
	r.pauses[pause.ID] = pause
	return nil
}

func (r *fakePauseRepo) GetByID(ctx context.Context, id string) (*domain.DeliveryPause, error) {
	if pause, ok := r.pauses[id]; ok {
		return pause, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakePauseRepo) GetByUserID(ctx context.Context, userID string) ([]*domain.DeliveryPause, error) {
	var out []*domain.DeliveryPause
	for _, pause := range r.pauses {
		if pause.UserID == userID {
			out = append(out, pause)
		}
	}
	return out, nil
}

func (r *fakePauseRepo) GetActiveBySubscription(ctx context.Context, subscriptionID string) ([]*domain.DeliveryPause, error) {
	var out []*domain.DeliveryPause
	for _, pause := range r.pauses {
		if pause.SubscriptionID == subscriptionID && pause.Status == domain.PauseStatusActive {
			out = append(out, pause)
		}
	}
	return out, nil
}

func (r *fakePauseRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	pause, ok := r.pauses[id]
	if !ok {
		return domain.ErrNotFound
	}
	pause.Status = status
	return nil
}

func (r *fakePauseRepo) GetActiveInWindow(ctx context.Context, start, end time.Time) ([]*domain.DeliveryPause, error) {
	var out []*domain.DeliveryPause
	for _, pause := range r.pauses {
		if pause.Status == domain.PauseStatusActive && pause.Overlaps(start, end) {
			out = append(out, pause)
		}
	}
	return out, nil
}

type fakeMenuRepo struct {
	menus []*domain.Menu
}

func newFakeMenuRepo() *fakeMenuRepo {
	return &fakeMenuRepo{}
}

func (r *fakeMenuRepo) Upsert(ctx context.Context, menu *domain.Menu) error {
	for i, existing := range r.menus {
		if existing.Date.Equal(menu.Date) && existing.PlanType == menu.PlanType {
			r.menus[i] = menu
			return nil
		}
	}
	r.menus = append(r.menus, menu)
	return nil
}

func (r *fakeMenuRepo) GetByDateAndPlan(ctx context.Context, dayStart, dayEnd time.Time, planType string) (*domain.Menu, error) {
	for _, menu := range r.menus {
		if menu.PlanType == planType && !menu.Date.Before(dayStart) && !menu.Date.After(dayEnd) {
			return menu, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeMenuRepo) ListByDate(ctx context.Context, dayStart, dayEnd time.Time) ([]*domain.Menu, error) {
	var out []*domain.Menu
	for _, menu := range r.menus {
		if !menu.Date.Before(dayStart) && !menu.Date.After(dayEnd) {
			out = append(out, menu)
		}
	}
	return out, nil
}

// failingGateway simulates a gateway whose refund endpoint is down.
type failingGateway struct {
	MockGateway
}

func (g *failingGateway) ProcessRefund(ctx context.Context, paymentID string, amountPaise int64) (*RefundResult, error) {
	return nil, fmt.Errorf("gateway unavailable")
}
