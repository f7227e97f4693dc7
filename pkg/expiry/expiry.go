package expiry

import (
	"errors"
	"sort"
	"time"

	"FreshKeeper/entities"
)

var ErrUnparseableDate = errors.New("expiration date is not a valid calendar date")

type Urgency string

const (
	UrgencyExpired  Urgency = "Expired"
	UrgencyCritical Urgency = "Critical"
	UrgencyWarning  Urgency = "Warning"
	UrgencySafe     Urgency = "Safe"
)

type SortMode string

const (
	SortExpiringFirst  SortMode = "expiring_first"
	SortExpiringLast   SortMode = "expiring_last"
	SortInsertionOrder SortMode = "insertion_order"
)

// Predicate filters a snapshot. All set fields are AND-ed together; unset
// fields impose no constraint. Min and max may be combined.
type Predicate struct {
	AmountMin *float64
	AmountMax *float64
	Unit      string
	Category  string
}

// DaysRemaining is the difference in whole calendar days between the
// expiration date and asOf, both truncated to midnight. Negative means
// already expired; the signed value is what sorting needs, presentation
// clamps it separately.
func DaysRemaining(dateStr string, asOf time.Time) (int, error) {
	expiration, err := parseDate(dateStr)
	if err != nil {
		return 0, ErrUnparseableDate
	}

	from := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	return int(expiration.Sub(from).Hours() / 24), nil
}

func Filter(items []entities.FoodItem, pred Predicate) []entities.FoodItem {
	filtered := make([]entities.FoodItem, 0, len(items))
	for _, item := range items {
		if pred.AmountMin != nil && item.Amount < *pred.AmountMin {
			continue
		}
		if pred.AmountMax != nil && item.Amount > *pred.AmountMax {
			continue
		}
		if pred.Unit != "" && item.Unit != pred.Unit {
			continue
		}
		if pred.Category != "" && item.Category != pred.Category {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

// Sort reorders a snapshot without mutating it. Both expiry modes are stable,
// so ties keep their insertion order; items with unparseable dates sort after
// every valid one.
func Sort(items []entities.FoodItem, mode SortMode, asOf time.Time) []entities.FoodItem {
	sorted := make([]entities.FoodItem, len(items))
	copy(sorted, items)

	if mode == SortInsertionOrder || mode == "" {
		return sorted
	}

	type ranked struct {
		days  int
		valid bool
	}
	ranks := make([]ranked, len(sorted))
	for i, item := range sorted {
		days, err := DaysRemaining(item.ExpirationDate, asOf)
		ranks[i] = ranked{days: days, valid: err == nil}
	}

	// sort.SliceStable reorders ranks and items through the same index
	// permutation, so rank lookups stay aligned with the slice being
	// sorted.
	indexes := make([]int, len(sorted))
	for i := range indexes {
		indexes[i] = i
	}
	sort.SliceStable(indexes, func(a, b int) bool {
		ra, rb := ranks[indexes[a]], ranks[indexes[b]]
		if ra.valid != rb.valid {
			return ra.valid
		}
		if !ra.valid {
			return false
		}
		if mode == SortExpiringLast {
			return ra.days > rb.days
		}
		return ra.days < rb.days
	})

	result := make([]entities.FoodItem, len(sorted))
	for i, idx := range indexes {
		result[i] = sorted[idx]
	}
	return result
}

// MaxDays is the largest DaysRemaining across items with parseable dates,
// and 0 for an empty or all-invalid set.
func MaxDays(items []entities.FoodItem, asOf time.Time) int {
	max := 0
	first := true
	for _, item := range items {
		days, err := DaysRemaining(item.ExpirationDate, asOf)
		if err != nil {
			continue
		}
		if first || days > max {
			max = days
			first = false
		}
	}
	if max < 0 {
		return 0
	}
	return max
}

// Bucket classifies remaining shelf life relative to the longest-lived item
// in the same set. Derived for presentation only, never stored.
func Bucket(daysRemaining, maxDays int) Urgency {
	if daysRemaining <= 0 {
		return UrgencyExpired
	}

	var ratio float64
	if maxDays > 0 {
		ratio = float64(daysRemaining) / float64(maxDays)
	}

	switch {
	case ratio > 0.66:
		return UrgencySafe
	case ratio > 0.33:
		return UrgencyWarning
	default:
		return UrgencyCritical
	}
}

// Status is the presentation form of Bucket with unparseable dates degraded
// to "Unknown" instead of an error.
func Status(dateStr string, asOf time.Time, maxDays int) string {
	days, err := DaysRemaining(dateStr, asOf)
	if err != nil {
		return "Unknown"
	}
	return string(Bucket(days, maxDays))
}

func parseDate(dateStr string) (time.Time, error) {
	// Dates may arrive as plain dates or full timestamps depending on how
	// the analysis backend read the label.
	if t, err := time.Parse("2006-01-02", dateStr); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, ErrUnparseableDate
}
