package receipt

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/zombor/pantry/internal/normalize"
)

// DefaultReviewThreshold is the confidence below which a record is flagged
// for review.
const DefaultReviewThreshold = 0.6

// Options tune the parser.
type Options struct {
	ReviewThreshold float64
	MaxQuantity     int
}

// Parser turns receipt lines into product records. It holds only immutable
// state and is safe for concurrent use.
type Parser struct {
	classifier *Classifier
	normalizer *normalize.Normalizer
	opts       Options
}

// NewParser creates a parser over a classifier and a normalizer.
func NewParser(classifier *Classifier, normalizer *normalize.Normalizer, opts Options) *Parser {
	if opts.MaxQuantity < 1 {
		opts.MaxQuantity = DefaultMaxQuantity
	}
	return &Parser{classifier: classifier, normalizer: normalizer, opts: opts}
}

// ParseText splits an OCR text block into lines and parses them.
func (p *Parser) ParseText(text string) (*Result, error) {
	return p.Parse(Lines(text))
}

// Parse classifies every line and emits one record per product line, in
// receipt order.
func (p *Parser) Parse(lines []RawLine) (*Result, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}

	res := &Result{
		Records: []ProductRecord{},
		Lines:   make([]ClassifiedLine, 0, len(lines)),
	}
	res.Summary.TotalLines = len(lines)

	for _, line := range lines {
		class := p.classifier.Classify(line)
		res.Lines = append(res.Lines, ClassifiedLine{RawLine: line, Class: class})

		switch class {
		case LineNoise:
			res.Summary.NoiseLines++
			continue
		case LineTotal:
			res.Summary.TotalMarkerLines++
			continue
		case LineUnknown:
			res.Summary.UnknownLines++
			continue
		}

		res.Summary.ProductLines++
		rec := p.record(line)
		if rec.Issue != "" {
			res.Summary.ExtractionFailures++
		}
		if rec.NeedsReview {
			res.Summary.LowConfidenceCount++
		}
		if !rec.Matched() {
			res.Summary.UnmatchedCount++
		}
		res.Records = append(res.Records, rec)
	}

	return res, nil
}

func (p *Parser) record(line RawLine) ProductRecord {
	fields, err := Extract(line, p.opts.MaxQuantity)
	if err != nil {
		issue := err.Error()
		var extractErr *ExtractionError
		if errors.As(err, &extractErr) {
			issue = extractErr.Err.Error()
		}
		raw := strings.TrimSpace(line.Text)
		return ProductRecord{
			Line:           line.Index,
			RawText:        line.Text,
			RawName:        raw,
			NormalizedName: normalize.Fold(raw),
			DisplayName:    raw,
			Price:          0,
			Quantity:       1,
			Confidence:     0,
			NeedsReview:    true,
			Issue:          issue,
		}
	}

	n := p.normalizer.Normalize(fields.Name)
	return ProductRecord{
		Line:           line.Index,
		RawText:        line.Text,
		RawName:        fields.Name,
		NormalizedName: n.Normalized,
		DisplayName:    n.DisplayName,
		CanonicalID:    n.CanonicalID,
		Price:          fields.Price,
		Quantity:       fields.Quantity,
		Confidence:     n.Confidence,
		NeedsReview:    n.Confidence < p.opts.ReviewThreshold,
	}
}

// ParseAll parses independent receipts concurrently. Results keep the input
// order; the first failure cancels the rest.
func (p *Parser) ParseAll(ctx context.Context, receipts [][]RawLine) ([]*Result, error) {
	results := make([]*Result, len(receipts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, lines := range receipts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := p.Parse(lines)
			if err != nil {
				return fmt.Errorf("parsing receipt %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
