package domain

import (
	"context"
	"time"
)

// Menu is the day's menu for one plan tier. One document per (date, plan type).
type Menu struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Date        time.Time `bson:"date,omitempty" json:"date"`
	PlanType    string    `bson:"plan_type,omitempty" json:"plan_type"`
	LunchItems  []string  `bson:"lunch_items,omitempty" json:"lunch_items"`
	DinnerItems []string  `bson:"dinner_items,omitempty" json:"dinner_items"`
	ImageURL    string    `bson:"image_url,omitempty" json:"image_url,omitempty"`
	CreatedAt   time.Time `bson:"created_at,omitempty" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at,omitempty" json:"updated_at"`
}

// ItemsFor returns the item names relevant to a meal type. "both" concatenates
// lunch then dinner.
func (m *Menu) ItemsFor(mealType string) []string {
	switch mealType {
	case MealTypeLunch:
		return m.LunchItems
	case MealTypeDinner:
		return m.DinnerItems
	}
	items := make([]string, 0, len(m.LunchItems)+len(m.DinnerItems))
	items = append(items, m.LunchItems...)
	items = append(items, m.DinnerItems...)
	return items
}

// MenuRepository defines operations for managing menus
type MenuRepository interface {
	Upsert(ctx context.Context, menu *Menu) error
	GetByDateAndPlan(ctx context.Context, dayStart, dayEnd time.Time, planType string) (*Menu, error)
	ListByDate(ctx context.Context, dayStart, dayEnd time.Time) ([]*Menu, error)
}

// FileRepository stores uploaded files (menu photos) and returns a public URL.
type FileRepository interface {
	Upload(ctx context.Context, file []byte, filename string, contentType string) (string, error)
}
