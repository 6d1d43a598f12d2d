package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"refurrm/internal/app"
	"refurrm/pkg/domain"
)

// /api/jobs: POST posts a job (admin), GET lists every job (admin).
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodPost:
		var req app.CreateJobInput
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		job, err := s.app.CreateJob(user, req)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, job)
	case http.MethodGet:
		jobs, err := s.app.ListAllJobs(user)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": jobs, "count": len(jobs)})
	default:
		methodNotAllowed(w)
	}
}

// /api/jobs/open: the claimable pool, soonest first.
func (s *Server) handleOpenJobs(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	jobs, err := s.app.ListOpenJobs()
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": jobs, "count": len(jobs)})
}

// /api/jobs/{id} and /api/jobs/{id}/{claim|complete|cancel}.
func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		if id == "open" {
			s.handleOpenJobs(w, r, user)
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		job, err := s.app.GetJob(user, id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, job)
		return
	}

	if len(parts) != 2 || r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var (
		job domain.Job
		err error
	)
	switch parts[1] {
	case "claim":
		job, err = s.app.ClaimJob(user, id)
	case "complete":
		job, err = s.app.CompleteJob(user, id)
	case "cancel":
		job, err = s.app.CancelJob(user, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		s.audit(r, "portal.job."+parts[1], "fail", "job_id", id, "user_id", user.ID, "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "portal.job."+parts[1], "success", "job_id", id, "user_id", user.ID)
	writeJSON(w, http.StatusOK, job)
}

// /api/my-jobs?status=
func (s *Server) handleMyJobs(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	jobs, err := s.app.ListMyJobs(user, r.URL.Query().Get("status"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": jobs, "count": len(jobs)})
}
