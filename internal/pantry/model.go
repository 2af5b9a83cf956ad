// Package pantry wires the receipt parser, the inventory and the recipe
// recommender into a service with persistence and an HTTP API.
package pantry

import (
	"time"

	"github.com/zombor/pantry/internal/inventory"
	"github.com/zombor/pantry/internal/receipt"
	"github.com/zombor/pantry/internal/recipe"
)

// Receipt sources.
const (
	SourceText = "text"
	SourceScan = "scan"
)

// Receipt is a processed receipt as stored
type Receipt struct {
	ID          string                  `json:"id"`
	User        string                  `json:"user"`
	Source      string                  `json:"source"`
	TextFile    string                  `json:"text_file"`           // archived OCR lines
	Filename    string                  `json:"filename,omitempty"`  // original upload, scans only
	ContentType string                  `json:"content_type,omitempty"`
	Products    []receipt.ProductRecord `json:"products"`
	Summary     receipt.Summary         `json:"summary"`
	Total       receipt.Cents           `json:"total"` // sum of product prices
	CreatedAt   time.Time               `json:"created_at"`
}

// ProcessResult is what processing a receipt returns to the caller
type ProcessResult struct {
	ReceiptID string                  `json:"receipt_id"`
	Products  []receipt.ProductRecord `json:"products"`
	Unmatched []receipt.ProductRecord `json:"unmatched"`
	Inventory []inventory.Item        `json:"inventory"` // items created or restocked
	Summary   receipt.Summary         `json:"summary"`
	Message   string                  `json:"message"`
}

// Recommendations is the response of a recommendation request
type Recommendations struct {
	User            string                  `json:"user"`
	Recommendations []recipe.Recommendation `json:"recommendations"`
	Summary         recipe.ScoreSummary     `json:"summary"`
}
