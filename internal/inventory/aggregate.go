package inventory

import (
	"time"

	"github.com/zombor/pantry/internal/receipt"
)

// Update is the result of merging one receipt into an inventory.
type Update struct {
	// Items is the full inventory after the merge.
	Items []Item `json:"items"`
	// Changed holds the items the receipt created or restocked.
	Changed []Item `json:"changed"`
	// Unmatched holds records without a canonical id. They are reported
	// back to the caller and never stored.
	Unmatched []receipt.ProductRecord `json:"unmatched"`
}

// Aggregate merges the records of one receipt into current. Matched records
// restock an existing item or create a new one; current is not modified.
func Aggregate(current []Item, records []receipt.ProductRecord, receiptID string, acquiredOn time.Time, shelf ShelfLife) Update {
	acquired := Day(acquiredOn)
	items := make([]Item, len(current))
	copy(items, current)

	index := make(map[string]int, len(items))
	for i, it := range items {
		index[it.CanonicalID] = i
	}

	u := Update{Unmatched: []receipt.ProductRecord{}}
	changed := make(map[string]bool)
	var order []string

	for _, rec := range records {
		if !rec.Matched() {
			u.Unmatched = append(u.Unmatched, rec)
			continue
		}
		qty := rec.Quantity
		if qty < 1 {
			qty = 1
		}

		i, ok := index[rec.CanonicalID]
		if !ok {
			items = append(items, Item{CanonicalID: rec.CanonicalID, DisplayName: rec.DisplayName})
			i = len(items) - 1
			index[rec.CanonicalID] = i
		}
		it := &items[i]
		it.Quantity += qty
		it.AcquiredOn = acquired
		it.EstimatedExpiry = shelf.Expiry(rec.CanonicalID, acquired)
		it.SourceReceiptID = receiptID
		if it.DisplayName == "" {
			it.DisplayName = rec.DisplayName
		}

		if !changed[rec.CanonicalID] {
			changed[rec.CanonicalID] = true
			order = append(order, rec.CanonicalID)
		}
	}

	u.Items = items
	for _, id := range order {
		u.Changed = append(u.Changed, items[index[id]])
	}
	return u
}
