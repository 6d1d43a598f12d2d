package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"refurrm/internal/app"
	"refurrm/pkg/domain"
)

const maxReceiptBytes = 10 << 20

// /api/expenses: POST records an expense, GET lists them. Admin only,
// enforced by the app layer.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodPost:
		var req app.RecordExpenseInput
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		entry, err := s.app.RecordExpense(user, req)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	case http.MethodGet:
		entries, err := s.app.ListExpenses(user)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": entries, "count": len(entries)})
	default:
		methodNotAllowed(w)
	}
}

// /api/expenses/summary
func (s *Server) handleExpenseSummary(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	summary, err := s.app.SummarizeExpenses(user)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// /api/expenses/{id}/receipt: POST uploads (multipart), GET returns a
// short-lived download URL.
func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/expenses/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "receipt" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	id := parts[0]

	switch r.Method {
	case http.MethodPost:
		if err := r.ParseMultipartForm(maxReceiptBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		file, header, err := r.FormFile("receipt")
		if err != nil {
			writeError(w, http.StatusBadRequest, "receipt file is required")
			return
		}
		defer file.Close()
		if header.Size > maxReceiptBytes {
			writeError(w, http.StatusRequestEntityTooLarge, "receipt exceeds size limit")
			return
		}
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := s.app.AttachReceipt(r.Context(), user, id, file, header.Size, contentType); err != nil {
			writeAppError(w, err)
			return
		}
		s.audit(r, "portal.expense.receipt", "success", "expense_id", id, "user_id", user.ID)
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		url, err := s.app.ReceiptURL(r.Context(), user, id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
	default:
		methodNotAllowed(w)
	}
}
