package receipt

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLines is returned when a receipt carries no lines at all.
	ErrNoLines = errors.New("receipt has no lines")
	// ErrNoPrice means a product line has no recognizable price token.
	ErrNoPrice = errors.New("no price token")
	// ErrNegativePrice marks void and refund lines, which are not purchases.
	ErrNegativePrice = errors.New("negative amount")
	// ErrNoName means nothing resembling a product name survived extraction.
	ErrNoName = errors.New("no product name")
)

// ExtractionError reports a product line whose fields could not be pulled
// out. The parser keeps such lines as records flagged for review.
type ExtractionError struct {
	Line int
	Text string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
