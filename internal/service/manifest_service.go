package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"golang.org/x/sync/errgroup"
)

// ManifestService resolves the day's active subscriptions, delivery pauses and
// confirmed one-off orders into a single dispatch manifest grouped by plan tier.
type ManifestService struct {
	subRepo   domain.SubscriptionRepository
	pauseRepo domain.PauseRepository
	orderRepo domain.OrderRepository
	menuRepo  domain.MenuRepository
	planRepo  domain.PlanRepository
	userRepo  domain.UserRepository
}

// NewManifestService creates a new manifest service
func NewManifestService(
	subRepo domain.SubscriptionRepository,
	pauseRepo domain.PauseRepository,
	orderRepo domain.OrderRepository,
	menuRepo domain.MenuRepository,
	planRepo domain.PlanRepository,
	userRepo domain.UserRepository,
) *ManifestService {
	return &ManifestService{
		subRepo:   subRepo,
		pauseRepo: pauseRepo,
		orderRepo: orderRepo,
		menuRepo:  menuRepo,
		planRepo:  planRepo,
		userRepo:  userRepo,
	}
}

// BuildManifest assembles the dispatch manifest for the calendar day containing
// day. Subscriptions paused for the day are dropped entirely; a user with two
// subscription rows spanning a transition day contributes exactly one entry,
// chosen by status priority and latest update.
func (s *ManifestService) BuildManifest(ctx context.Context, day time.Time) (*domain.DispatchManifest, error) {
	dayStart := startOfDay(day)
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Millisecond)

	var (
		subs   []*domain.Subscription
		pauses []*domain.DeliveryPause
		orders []*domain.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		subs, err = s.subRepo.GetForDeliveryDay(gctx, dayStart, dayEnd)
		return err
	})
	g.Go(func() error {
		var err error
		pauses, err = s.pauseRepo.GetActiveInWindow(gctx, dayStart, dayEnd)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.orderRepo.GetForDeliveryDay(gctx, dayStart, dayEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load delivery data: %w", err)
	}

	paused := make(map[string]bool, len(pauses))
	for _, p := range pauses {
		paused[p.SubscriptionID] = true
	}

	manifest := &domain.DispatchManifest{Date: dayStart}

	for _, sub := range resolveDuplicates(subs) {
		if paused[sub.ID] {
			continue
		}
		entry, bucket, err := s.subscriptionEntry(ctx, sub, dayStart, dayEnd)
		if err != nil {
			log.Printf("[Manifest] Skipping subscription %s: %v", sub.ID, err)
			continue
		}
		manifest.Add(bucket, entry)
	}

	for _, order := range orders {
		entry, bucket, err := s.orderEntry(ctx, order, dayStart, dayEnd)
		if err != nil {
			log.Printf("[Manifest] Skipping order %s: %v", order.ID, err)
			continue
		}
		manifest.Add(bucket, entry)
	}

	return manifest, nil
}

// resolveDuplicates keeps one subscription row per user, preferring the higher
// status priority and, on a tie, the most recently updated row.
func resolveDuplicates(subs []*domain.Subscription) []*domain.Subscription {
	byUser := make(map[string]*domain.Subscription, len(subs))
	for _, sub := range subs {
		best, ok := byUser[sub.UserID]
		if !ok {
			byUser[sub.UserID] = sub
			continue
		}
		subPrio := domain.SubscriptionStatusPriority(sub.Status)
		bestPrio := domain.SubscriptionStatusPriority(best.Status)
		if subPrio > bestPrio || (subPrio == bestPrio && sub.UpdatedAt.After(best.UpdatedAt)) {
			byUser[sub.UserID] = sub
		}
	}

	resolved := make([]*domain.Subscription, 0, len(byUser))
	for _, sub := range subs {
		if byUser[sub.UserID] == sub {
			resolved = append(resolved, sub)
		}
	}
	return resolved
}

func (s *ManifestService) subscriptionEntry(ctx context.Context, sub *domain.Subscription, dayStart, dayEnd time.Time) (domain.ManifestEntry, string, error) {
	user, err := s.userRepo.GetByID(ctx, sub.UserID)
	if err != nil {
		return domain.ManifestEntry{}, "", fmt.Errorf("user lookup: %w", err)
	}
	plan, err := s.planRepo.GetByID(ctx, sub.PlanID)
	if err != nil {
		return domain.ManifestEntry{}, "", fmt.Errorf("plan lookup: %w", err)
	}

	items := []string{"Menu not set"}
	menu, err := s.menuRepo.GetByDateAndPlan(ctx, dayStart, dayEnd, plan.Name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.ManifestEntry{}, "", fmt.Errorf("menu lookup: %w", err)
	}
	if menu != nil {
		if menuItems := menu.ItemsFor(sub.MealType); len(menuItems) > 0 {
			items = menuItems
		}
	}

	entry := domain.ManifestEntry{
		CustomerName:   user.Name,
		CustomerPhone:  user.Phone,
		MealType:       sub.MealType,
		LunchAddress:   sub.LunchAddress,
		DinnerAddress:  sub.DinnerAddress,
		Items:          items,
		Quantity:       1,
		SubscriptionID: sub.ID,
	}
	return entry, plan.Name, nil
}

func (s *ManifestService) orderEntry(ctx context.Context, order *domain.Order, dayStart, dayEnd time.Time) (domain.ManifestEntry, string, error) {
	user, err := s.userRepo.GetByID(ctx, order.UserID)
	if err != nil {
		return domain.ManifestEntry{}, "", fmt.Errorf("user lookup: %w", err)
	}

	var dayItems []domain.OrderItem
	for _, item := range order.Items {
		if !item.DeliveryDate.Before(dayStart) && !item.DeliveryDate.After(dayEnd) {
			dayItems = append(dayItems, item)
		}
	}
	if len(dayItems) == 0 {
		return domain.ManifestEntry{}, "", fmt.Errorf("no items due on the day")
	}

	totalPersons := 0
	var names []string
	for _, item := range dayItems {
		totalPersons += item.Quantity
		names = append(names, flattenItemNames(item)...)
	}

	bucket := domain.BucketEvents
	if order.Type != domain.OrderTypeEvent {
		bucket = resolveOrderBucket(dayItems)
	}

	entry := domain.ManifestEntry{
		CustomerName:  user.Name,
		CustomerPhone: user.Phone,
		LunchAddress:  order.DeliveryAddress,
		Items:         names,
		Quantity:      totalPersons,
		OrderID:       order.ID,
	}
	return entry, bucket, nil
}

// flattenItemNames normalizes one line item into flat item names: comma-joined
// name strings are split, and nested detail payloads (arrays of strings or of
// {name: ...} objects, as event menus arrive from the client) are unwrapped.
func flattenItemNames(item domain.OrderItem) []string {
	var names []string
	names = appendSplitNames(names, item.Name)
	names = appendDetailNames(names, item.Detail)
	return names
}

func appendSplitNames(names []string, raw string) []string {
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

func appendDetailNames(names []string, detail interface{}) []string {
	switch v := detail.(type) {
	case nil:
		return names
	case string:
		return appendSplitNames(names, v)
	case []string:
		for _, s := range v {
			names = appendSplitNames(names, s)
		}
		return names
	case []interface{}:
		for _, elem := range v {
			names = appendDetailNames(names, elem)
		}
		return names
	case map[string]interface{}:
		if name, ok := v["name"].(string); ok {
			names = appendSplitNames(names, name)
		}
		if nested, ok := v["items"]; ok {
			names = appendDetailNames(names, nested)
		}
		return names
	}
	return names
}

// resolveOrderBucket infers a non-event order's tier from its line items. An
// item's stored plan type takes precedence; otherwise a name-substring match
// decides, defaulting to Basic. The order lands in the highest tier any line
// item implies.
func resolveOrderBucket(items []domain.OrderItem) string {
	maxRank := 0
	for _, item := range items {
		rank := 0
		if item.PlanType != "" {
			rank = domain.TierRank(item.PlanType)
		}
		if rank == 0 {
			name := strings.ToLower(item.Name)
			switch {
			case strings.Contains(name, "exotic"):
				rank = domain.TierRank(domain.PlanExotic)
			case strings.Contains(name, "premium"):
				rank = domain.TierRank(domain.PlanPremium)
			default:
				rank = domain.TierRank(domain.PlanBasic)
			}
		}
		if rank > maxRank {
			maxRank = rank
		}
	}

	switch maxRank {
	case domain.TierRank(domain.PlanExotic):
		return domain.BucketExotic
	case domain.TierRank(domain.PlanPremium):
		return domain.BucketPremium
	}
	return domain.BucketBasic
}
