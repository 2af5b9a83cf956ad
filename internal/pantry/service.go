package pantry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/pantry/internal/catalog"
	"github.com/zombor/pantry/internal/inventory"
	"github.com/zombor/pantry/internal/receipt"
	"github.com/zombor/pantry/internal/recipe"
	"github.com/zombor/pantry/internal/scanning"
)

// ErrScanningDisabled is returned by ScanReceipt when no OCR reader is
// configured
var ErrScanningDisabled = errors.New("receipt scanning is not configured")

// messageEmpty is returned when a receipt carries no product lines.
const messageEmpty = "no products detected"

// IDGenerator generates unique IDs for receipts
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Engine holds the pure pipeline stages the service drives
type Engine struct {
	Parser    *receipt.Parser
	ShelfLife inventory.ShelfLife
	Scorer    recipe.Scorer
	Policy    recipe.Policy
}

// Service handles receipt, inventory and recommendation operations
type Service struct {
	db          DB
	storage     Storage
	reader      scanning.LineReader
	catalog     catalog.Source
	engine      Engine
	inventory   *inventory.Manager
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source.
// reader may be nil, in which case image scanning is disabled.
func NewService(db DB, storage Storage, reader scanning.LineReader, source catalog.Source, engine Engine) *Service {
	return NewServiceWithDeps(db, storage, reader, source, engine, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, storage Storage, reader scanning.LineReader, source catalog.Source, engine Engine, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		storage:     storage,
		reader:      reader,
		catalog:     source,
		engine:      engine,
		inventory:   inventory.NewManager(db, engine.ShelfLife),
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// sanitizeFilename cleans up a filename by removing special characters and
// truncating length
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`).ReplaceAllString(base, "")
	base = strings.Join(strings.Fields(base), "_")
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "receipt"
	}
	return base + ext
}

// ProcessReceipt parses receipt lines, archives them and merges the matched
// products into the user's inventory
func (s *Service) ProcessReceipt(ctx context.Context, user string, lines []receipt.RawLine) (*ProcessResult, error) {
	return s.process(ctx, user, lines, &Receipt{Source: SourceText})
}

// ScanReceipt runs OCR over an uploaded receipt image or PDF and processes
// the recognized lines
func (s *Service) ScanReceipt(ctx context.Context, user, filename string, data []byte, contentType string) (*ProcessResult, error) {
	if s.reader == nil {
		return nil, ErrScanningDisabled
	}

	texts, err := s.reader.ReadLines(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to scan receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, fmt.Errorf("scanning receipt: %w", err)
	}

	return s.process(ctx, user, receipt.NewLines(texts), &Receipt{
		Source:      SourceScan,
		Filename:    sanitizeFilename(filename),
		ContentType: contentType,
	}, data)
}

// process runs the pipeline for one receipt. upload, when given, is the
// original scanned file and is archived next to the OCR text.
func (s *Service) process(ctx context.Context, user string, lines []receipt.RawLine, rec *Receipt, upload ...[]byte) (*ProcessResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := s.engine.Parser.Parse(lines)
	if err != nil {
		return nil, fmt.Errorf("parsing receipt: %w", err)
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	rec.ID = id
	rec.User = user
	rec.Products = res.Records
	rec.Summary = res.Summary
	rec.CreatedAt = now
	for _, p := range res.Records {
		rec.Total += p.Price
	}

	var saved []string
	cleanup := func() {
		for _, name := range saved {
			if err := s.storage.Delete(name); err != nil {
				slog.Warn("Failed to delete file", "filename", name, "error", err)
			}
		}
	}

	rec.TextFile, err = s.storage.Save(id+".txt", []byte(joinLines(lines)))
	if err != nil {
		return nil, fmt.Errorf("archiving receipt text: %w", err)
	}
	saved = append(saved, rec.TextFile)

	if len(upload) > 0 {
		rec.Filename, err = s.storage.Save(fmt.Sprintf("%s_%s", id, rec.Filename), upload[0])
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("saving file: %w", err)
		}
		saved = append(saved, rec.Filename)
	}

	if err := s.db.SaveReceipt(rec); err != nil {
		cleanup()
		return nil, fmt.Errorf("saving receipt to database: %w", err)
	}

	update, err := s.inventory.Apply(user, id, now, res.Records)
	if err != nil {
		if delErr := s.db.DeleteReceipt(id); delErr != nil {
			slog.Warn("Failed to delete receipt", "id", id, "error", delErr)
		}
		cleanup()
		return nil, fmt.Errorf("updating inventory: %w", err)
	}

	out := &ProcessResult{
		ReceiptID: id,
		Products:  res.Records,
		Unmatched: update.Unmatched,
		Inventory: update.Changed,
		Summary:   res.Summary,
		Message:   resultMessage(res),
	}
	if out.Inventory == nil {
		out.Inventory = []inventory.Item{}
	}

	slog.Info("Processed receipt",
		"id", id,
		"user", user,
		"source", rec.Source,
		"products", res.Summary.ProductLines,
		"unmatched", res.Summary.UnmatchedCount,
		"needs_review", res.Summary.LowConfidenceCount,
	)
	return out, nil
}

func resultMessage(res *receipt.Result) string {
	if res.Empty() {
		return messageEmpty
	}
	msg := fmt.Sprintf("%d products detected", res.Summary.ProductLines)
	if n := res.Summary.LowConfidenceCount; n > 0 {
		msg += fmt.Sprintf(", %d need review", n)
	}
	return msg
}

func joinLines(lines []receipt.RawLine) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// Inventory returns the user's inventory
func (s *Service) Inventory(user string) ([]inventory.Item, error) {
	items, err := s.inventory.List(user)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	return items, nil
}

// Recommend ranks catalog recipes against the user's inventory. A positive
// limit overrides the configured one.
func (s *Service) Recommend(ctx context.Context, user string, limit int) (*Recommendations, error) {
	items, err := s.inventory.List(user)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}

	out := &Recommendations{User: user, Recommendations: []recipe.Recommendation{}}
	var ids []string
	for _, it := range items {
		if it.Quantity > 0 {
			ids = append(ids, it.CanonicalID)
		}
	}
	if len(ids) == 0 {
		return out, nil
	}

	candidates, err := s.catalog.FetchCandidates(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching recipes: %w", err)
	}

	policy := s.engine.Policy
	if limit > 0 {
		policy.Limit = limit
	}
	recs, summary := recipe.Recommend(items, candidates, s.engine.Scorer, policy, s.timeSource.Now())
	out.Recommendations = recs
	out.Summary = summary

	if summary.Invalid > 0 {
		slog.Warn("Catalog returned invalid recipes", "user", user, "invalid", summary.Invalid)
	}
	return out, nil
}

// GetReceipt retrieves a receipt by ID
func (s *Service) GetReceipt(id string) (*Receipt, error) {
	rec, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	return rec, nil
}

// ListReceipts returns the receipts of a user
func (s *Service) ListReceipts(user string) ([]*Receipt, error) {
	receipts, err := s.db.ListReceipts(user)
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	return receipts, nil
}

// GetReceiptText returns the archived OCR lines of a receipt
func (s *Service) GetReceiptText(id string) ([]byte, error) {
	rec, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	data, err := s.storage.Get(rec.TextFile)
	if err != nil {
		return nil, fmt.Errorf("getting receipt text: %w", err)
	}
	return data, nil
}

// GetReceiptFile retrieves the uploaded file of a scanned receipt
func (s *Service) GetReceiptFile(id string) ([]byte, string, error) {
	rec, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt: %w", err)
	}
	if rec.Filename == "" {
		return nil, "", fmt.Errorf("receipt %s has no file: %w", id, ErrNotFound)
	}

	data, err := s.storage.Get(rec.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}
	return data, rec.ContentType, nil
}

// DeleteReceipt removes a receipt and its archived files. Inventory already
// merged from the receipt is kept.
func (s *Service) DeleteReceipt(id string) error {
	rec, err := s.db.GetReceipt(id)
	if err != nil {
		return fmt.Errorf("getting receipt for deletion: %w", err)
	}

	for _, name := range []string{rec.TextFile, rec.Filename} {
		if name == "" {
			continue
		}
		if err := s.storage.Delete(name); err != nil {
			slog.Warn("Failed to delete file", "filename", name, "error", err)
		}
	}

	if err := s.db.DeleteReceipt(id); err != nil {
		return fmt.Errorf("deleting receipt from database: %w", err)
	}
	return nil
}
