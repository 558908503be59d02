package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/sevadesk/internal/catalog"
)

// Frequency is how often a service is performed for one payment.
type Frequency string

const (
	FrequencySingle  Frequency = "SINGLE"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
)

var (
	weeklyMultiplier  = decimal.NewFromInt(7)
	monthlyMultiplier = decimal.NewFromInt(30)
)

// ParseFrequency normalizes raw input. Empty input means SINGLE.
func ParseFrequency(raw string) (Frequency, bool) {
	switch Frequency(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", FrequencySingle:
		return FrequencySingle, true
	case FrequencyWeekly:
		return FrequencyWeekly, true
	case FrequencyMonthly:
		return FrequencyMonthly, true
	default:
		return "", false
	}
}

// Resolver derives amounts from the catalog.
type Resolver struct {
	catalog *catalog.Catalog
}

func NewResolver(c *catalog.Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// ResolveAmount returns base price x7 for WEEKLY, x30 for MONTHLY and x1
// for anything else. Unknown categories fail with catalog.ErrUnknownCategory.
func (r *Resolver) ResolveAmount(category catalog.Category, frequency Frequency) (decimal.Decimal, error) {
	entry, err := r.catalog.Lookup(category)
	if err != nil {
		return decimal.Zero, err
	}

	switch frequency {
	case FrequencyWeekly:
		return entry.BasePrice.Mul(weeklyMultiplier), nil
	case FrequencyMonthly:
		return entry.BasePrice.Mul(monthlyMultiplier), nil
	default:
		return entry.BasePrice, nil
	}
}

// ResolveValidity returns the instant a service issued at now stops being valid.
func ResolveValidity(frequency Frequency, now time.Time) time.Time {
	switch frequency {
	case FrequencyWeekly:
		return now.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return now.AddDate(0, 0, 30)
	default:
		return now.AddDate(0, 0, 1)
	}
}
