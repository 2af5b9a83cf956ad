package pantry

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zombor/pantry/internal/receipt"
	"github.com/zombor/pantry/internal/scanning"
)

const (
	maxUploadSize = int64(50 << 20) // scanned photos
	maxTextSize   = int64(1 << 20)  // OCR text bodies
)

// processRequest is the JSON body of a text receipt upload. Either Lines or
// Text may be given.
type processRequest struct {
	Lines []string `json:"lines"`
	Text  string   `json:"text"`
}

// corsError writes a plain error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes a JSON error response with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes v with the given status
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// processErrorStatus maps pipeline errors to HTTP status codes
func processErrorStatus(err error) int {
	switch {
	case errors.Is(err, receipt.ErrNoLines):
		return http.StatusBadRequest
	case errors.Is(err, scanning.ErrNoText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrScanningDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readLines decodes the receipt lines of a text upload. JSON bodies carry
// {"lines": [...]} or {"text": "..."}; anything else is read as plain text.
func readLines(r *http.Request) ([]receipt.RawLine, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return receipt.Lines(string(body)), nil
	}

	var req processRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}
	if len(req.Lines) > 0 {
		return receipt.NewLines(req.Lines), nil
	}
	return receipt.Lines(req.Text), nil
}

// handleProcessReceipt parses OCR text and merges it into the inventory
func (s *Server) handleProcessReceipt(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")
	r.Body = http.MaxBytesReader(w, r.Body, maxTextSize)

	lines, err := readLines(r)
	if err != nil {
		slog.Error("Error reading receipt body", "user", user, "error", err)
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.service.ProcessReceipt(r.Context(), user, lines)
	if err != nil {
		slog.Error("Error processing receipt", "user", user, "error", err)
		jsonError(w, err.Error(), processErrorStatus(err))
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// contentTypeFor guesses a MIME type from a file extension
func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleScanReceipt runs OCR over an uploaded receipt image
func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		msg := "Error parsing form"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = "File is too large. Maximum size is 50MB."
		}
		jsonError(w, msg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		jsonError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFor(header.Filename)
	}

	result, err := s.service.ScanReceipt(r.Context(), user, header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error scanning receipt", "user", user, "filename", header.Filename, "error", err)
		jsonError(w, err.Error(), processErrorStatus(err))
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleListReceipts returns the receipts of a user
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.service.ListReceipts(r.PathValue("user"))
	if err != nil {
		slog.Error("Error listing receipts", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if receipts == nil {
		receipts = []*Receipt{}
	}
	writeJSON(w, http.StatusOK, receipts)
}

// handleInventory returns the inventory of a user
func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	items, err := s.service.Inventory(r.PathValue("user"))
	if err != nil {
		slog.Error("Error listing inventory", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleRecommendations ranks recipes for a user. ?limit= overrides the
// configured result cap.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	recs, err := s.service.Recommend(r.Context(), user, limit)
	if err != nil {
		slog.Error("Error recommending recipes", "user", user, "error", err)
		jsonError(w, "Recipe catalog unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleGetReceipt returns a single receipt
func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.GetReceipt(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			corsError(w, "Receipt not found", http.StatusNotFound)
			return
		}
		slog.Error("Error getting receipt", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleGetReceiptText returns the archived OCR lines of a receipt
func (s *Server) handleGetReceiptText(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.GetReceiptText(r.PathValue("id"))
	if err != nil {
		corsError(w, "Text not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(data)
}

// handleGetReceiptFile returns the uploaded file of a scanned receipt
func (s *Server) handleGetReceiptFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetReceiptFile(r.PathValue("id"))
	if err != nil {
		corsError(w, "File not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteReceipt deletes a receipt
func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteReceipt(r.PathValue("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			corsError(w, "Receipt not found", http.StatusNotFound)
			return
		}
		slog.Error("Error deleting receipt", "error", err)
		corsError(w, "Error deleting receipt", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
