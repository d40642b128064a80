package domain

import "time"

// Manifest bucket names
const (
	BucketBasic   = "Basic"
	BucketPremium = "Premium"
	BucketExotic  = "Exotic"
	BucketEvents  = "Events"
)

// ManifestEntry is one delivery the kitchen must fulfil on the manifest day:
// either a subscription household (Quantity 1) or a one-off order (Quantity is
// the summed head count of that day's line items).
type ManifestEntry struct {
	CustomerName   string   `json:"customer_name"`
	CustomerPhone  string   `json:"customer_phone"`
	MealType       string   `json:"meal_type,omitempty"`
	LunchAddress   *Address `json:"lunch_address,omitempty"`
	DinnerAddress  *Address `json:"dinner_address,omitempty"`
	Items          []string `json:"items"`
	Quantity       int      `json:"quantity"`
	SubscriptionID string   `json:"subscription_id,omitempty"`
	OrderID        string   `json:"order_id,omitempty"`
}

// DispatchManifest groups a day's deliveries by plan tier for the operations team.
type DispatchManifest struct {
	Date    time.Time       `json:"date"`
	Basic   []ManifestEntry `json:"Basic"`
	Premium []ManifestEntry `json:"Premium"`
	Exotic  []ManifestEntry `json:"Exotic"`
	Events  []ManifestEntry `json:"Events"`
}

// Add appends an entry to the named bucket. Unknown buckets fall into Basic.
func (m *DispatchManifest) Add(bucket string, entry ManifestEntry) {
	switch bucket {
	case BucketPremium:
		m.Premium = append(m.Premium, entry)
	case BucketExotic:
		m.Exotic = append(m.Exotic, entry)
	case BucketEvents:
		m.Events = append(m.Events, entry)
	default:
		m.Basic = append(m.Basic, entry)
	}
}
