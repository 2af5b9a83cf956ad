// Package inventory keeps each user's pantry: what was bought, how much, and
// when it is expected to spoil.
package inventory

import "time"

// Item is one canonical product held by a user.
type Item struct {
	CanonicalID     string    `json:"canonical_id"`
	DisplayName     string    `json:"display_name"`
	Quantity        int       `json:"quantity"`
	AcquiredOn      time.Time `json:"acquired_on"`
	EstimatedExpiry time.Time `json:"estimated_expiry"`
	SourceReceiptID string    `json:"source_receipt_id"`
}

// DaysUntilExpiry counts whole calendar days from now to the estimated
// expiry. It is zero on the expiry day and negative afterwards.
func (i Item) DaysUntilExpiry(now time.Time) int {
	return int(Day(i.EstimatedExpiry).Sub(Day(now)).Hours() / 24)
}

// Expired reports whether the item is past its estimated expiry.
func (i Item) Expired(now time.Time) bool {
	return i.DaysUntilExpiry(now) < 0
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
