package server

import (
	"encoding/json"
	"io"
	"net/http"

	"refurrm/internal/app"
	"refurrm/pkg/domain"
)

func sessionQuery(r *http.Request) app.SessionQuery {
	q := r.URL.Query()
	return app.SessionQuery{
		From:    q.Get("from"),
		To:      q.Get("to"),
		ActType: q.Get("actType"),
		Search:  q.Get("search"),
	}
}

// /api/sessions: POST appends a journal entry, GET lists visible entries.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodPost:
		var req app.RecordSessionInput
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		entry, err := s.app.RecordSession(user, req)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	case http.MethodGet:
		entries, err := s.app.ListSessions(user, sessionQuery(r))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": entries, "count": len(entries)})
	default:
		methodNotAllowed(w)
	}
}

// /api/sessions/summary
func (s *Server) handleSessionSummary(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	summary, err := s.app.SummarizeSessions(user, sessionQuery(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
