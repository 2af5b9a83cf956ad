package receipt

// ProductRecord is one purchased product read off a receipt line.
type ProductRecord struct {
	Line           int     `json:"line"`
	RawText        string  `json:"raw_text"`
	RawName        string  `json:"name"`
	NormalizedName string  `json:"normalized_name"`
	DisplayName    string  `json:"normalized_text_en"`
	CanonicalID    string  `json:"canonical_id,omitempty"`
	Price          Cents   `json:"price"`
	Quantity       int     `json:"quantity"`
	Confidence     float64 `json:"confidence"`
	NeedsReview    bool    `json:"needs_review"`
	Issue          string  `json:"issue,omitempty"`
}

// Matched reports whether the record resolved to a canonical product.
func (r ProductRecord) Matched() bool {
	return r.CanonicalID != ""
}

// ClassifiedLine pairs an input line with its class.
type ClassifiedLine struct {
	RawLine
	Class LineClass `json:"class"`
}

// Summary counts what the parser saw on one receipt.
type Summary struct {
	TotalLines         int `json:"total_lines"`
	ProductLines       int `json:"product_lines"`
	NoiseLines         int `json:"noise_lines"`
	TotalMarkerLines   int `json:"total_marker_lines"`
	UnknownLines       int `json:"unknown_lines"`
	LowConfidenceCount int `json:"low_confidence_count"`
	ExtractionFailures int `json:"extraction_failures"`
	UnmatchedCount     int `json:"unmatched_count"`
}

// Result is the parse of one receipt.
type Result struct {
	Records []ProductRecord  `json:"products"`
	Lines   []ClassifiedLine `json:"lines"`
	Summary Summary          `json:"summary"`
}

// Empty reports that no product lines were found. An empty receipt is a
// valid outcome, not an error.
func (r *Result) Empty() bool {
	return r.Summary.ProductLines == 0
}

// Matched returns the records that resolved to a canonical product.
func (r *Result) Matched() []ProductRecord {
	var out []ProductRecord
	for _, rec := range r.Records {
		if rec.Matched() {
			out = append(out, rec)
		}
	}
	return out
}
