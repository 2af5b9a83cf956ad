package inventory

import "time"

// DefaultFallbackDays is used for products without a configured shelf life.
const DefaultFallbackDays = 7

// ShelfLife maps canonical ids to the number of days they keep.
type ShelfLife struct {
	Days         map[string]int `mapstructure:"days"`
	FallbackDays int            `mapstructure:"fallback_days"`
}

// For returns the shelf life of id in days.
func (s ShelfLife) For(id string) int {
	if d, ok := s.Days[id]; ok && d >= 0 {
		return d
	}
	if s.FallbackDays > 0 {
		return s.FallbackDays
	}
	return DefaultFallbackDays
}

// Expiry estimates when an item of id acquired on acquiredOn spoils.
func (s ShelfLife) Expiry(id string, acquiredOn time.Time) time.Time {
	return Day(acquiredOn).AddDate(0, 0, s.For(id))
}
