package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"refurrm/internal/assistant"
	"refurrm/internal/booking"
)

type bookingRequest struct {
	Service  string `json:"service"`
	Date     string `json:"date"` // YYYY-MM-DD
	TimeSlot string `json:"timeSlot"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Notes    string `json:"notes"`
}

// /api/bookings: the public website submits a finished booking wizard in
// one request; the draft stages validate it piece by piece.
func (s *Server) handleBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.bookingLimiter, "too many booking requests") {
		s.audit(r, "portal.booking", "rate_limited")
		return
	}
	var req bookingRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	d := booking.NewDraft()
	steps := []func() error{
		func() error { return d.Service(req.Service) },
		func() error { return d.Schedule(req.Date, req.TimeSlot) },
		func() error { return d.Location(req.Address, req.City, req.State, req.ZipCode) },
		func() error { return d.Contact(req.Name, req.Email, req.Phone, req.Notes) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			var se *booking.StageError
			if errors.As(err, &se) {
				writeError(w, http.StatusBadRequest, se.Error())
				return
			}
			writeAppError(w, err)
			return
		}
	}

	job, err := d.Build(time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.app.PublishJob(job); err != nil {
		writeAppError(w, err)
		return
	}
	s.audit(r, "portal.booking", "success", "job_id", job.ID)
	writeJSON(w, http.StatusCreated, job)
}

type assistantChatRequest struct {
	Messages []assistant.Message `json:"messages"`
}

// /api/assistant/chat: relays the conversation to the AI gateway and
// streams the SSE response straight through.
func (s *Server) handleAssistantChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.assistantLimiter, "too many assistant requests") {
		s.audit(r, "portal.assistant", "rate_limited")
		return
	}
	if s.assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}
	var req assistantChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages is required")
		return
	}

	stream, err := s.assistant.StreamChat(r.Context(), req.Messages)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, assistant.MsgRateLimited)
		case errors.Is(err, assistant.ErrCreditsExhausted):
			writeError(w, http.StatusPaymentRequired, assistant.MsgCreditsExhausted)
		default:
			writeError(w, http.StatusInternalServerError, "assistant request failed")
		}
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			return
		}
	}
}
