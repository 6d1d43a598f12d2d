package server

import (
	"encoding/json"
	"io"
	"net/http"

	"refurrm/internal/app"
	"refurrm/pkg/domain"
)

// /api/profile: GET returns the acting notary's profile, PUT replaces it.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		profile, err := s.app.GetMyProfile(user)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	case http.MethodPut:
		var req app.UpsertProfileInput
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		profile, err := s.app.UpsertMyProfile(user, req)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	default:
		methodNotAllowed(w)
	}
}
