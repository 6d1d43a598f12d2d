package app

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"refurrm/internal/store"
	"refurrm/internal/util"
	"refurrm/pkg/domain"
)

// Statutory default fee for a standard notarial act, in cents, plus the
// default travel surcharge applied when the entry leaves travelFee unset.
const (
	defaultNotaryFeeCents = domain.Cents(600)
	defaultTravelFeeCents = domain.Cents(0)
)

// RecordSessionInput is the payload for a new journal entry.
type RecordSessionInput struct {
	JobID         *string       `json:"jobId"`
	ActType       string        `json:"actType"`
	DocumentType  string        `json:"documentType"`
	SessionDate   string        `json:"sessionDate"` // YYYY-MM-DD
	SessionTime   string        `json:"sessionTime"`
	SignerName    string        `json:"signerName"`
	SignerAddress string        `json:"signerAddress"`
	IDType        string        `json:"idType"`
	IDLastFour    string        `json:"idLastFour"`
	IDExpiry      *string       `json:"idExpiry"` // YYYY-MM-DD
	NotaryFee     *domain.Cents `json:"notaryFee"`
	TravelFee     *domain.Cents `json:"travelFee"`
	Mileage       float64       `json:"mileage"`
	Notes         string        `json:"notes"`
}

// RecordSession appends one entry to the acting notary's journal. The total
// fee is always notaryFee + travelFee; callers cannot set it directly.
func (a *App) RecordSession(actor domain.User, in RecordSessionInput) (domain.SessionLogEntry, error) {
	act, ok := domain.ParseNotarialAct(in.ActType)
	if !ok {
		return domain.SessionLogEntry{}, &ValidationError{Field: "actType (valid notarial act)"}
	}
	if strings.TrimSpace(in.DocumentType) == "" {
		return domain.SessionLogEntry{}, missing("documentType")
	}
	day, err := time.Parse("2006-01-02", in.SessionDate)
	if err != nil {
		return domain.SessionLogEntry{}, &ValidationError{Field: "sessionDate (YYYY-MM-DD)"}
	}
	if strings.TrimSpace(in.SessionTime) == "" {
		return domain.SessionLogEntry{}, missing("sessionTime")
	}
	if strings.TrimSpace(in.SignerName) == "" {
		return domain.SessionLogEntry{}, missing("signerName")
	}
	if strings.TrimSpace(in.IDType) == "" {
		return domain.SessionLogEntry{}, missing("idType")
	}
	if strings.TrimSpace(in.IDLastFour) == "" {
		return domain.SessionLogEntry{}, missing("idLastFour")
	}

	var idExpiry *time.Time
	if in.IDExpiry != nil && *in.IDExpiry != "" {
		t, err := time.Parse("2006-01-02", *in.IDExpiry)
		if err != nil {
			return domain.SessionLogEntry{}, &ValidationError{Field: "idExpiry (YYYY-MM-DD)"}
		}
		idExpiry = &t
	}

	notaryFee := defaultNotaryFeeCents
	if in.NotaryFee != nil {
		notaryFee = *in.NotaryFee
	}
	travelFee := defaultTravelFeeCents
	if in.TravelFee != nil {
		travelFee = *in.TravelFee
	}
	if notaryFee < 0 || travelFee < 0 {
		return domain.SessionLogEntry{}, &ValidationError{Field: "notaryFee (non-negative)"}
	}
	if in.Mileage < 0 {
		return domain.SessionLogEntry{}, &ValidationError{Field: "mileage (non-negative)"}
	}

	if in.JobID != nil && *in.JobID != "" {
		if _, ok, err := a.store.GetJob(*in.JobID); err != nil {
			return domain.SessionLogEntry{}, fmt.Errorf("check job: %w", err)
		} else if !ok {
			return domain.SessionLogEntry{}, &ValidationError{Field: "jobId (existing job)"}
		}
	}

	e := domain.SessionLogEntry{
		ID:            util.NewID(),
		NotaryID:      actor.ID,
		JobID:         in.JobID,
		ActType:       act,
		DocumentType:  strings.TrimSpace(in.DocumentType),
		SessionDate:   day,
		SessionTime:   strings.TrimSpace(in.SessionTime),
		SignerName:    strings.TrimSpace(in.SignerName),
		SignerAddress: strings.TrimSpace(in.SignerAddress),
		IDType:        strings.TrimSpace(in.IDType),
		IDLastFour:    strings.TrimSpace(in.IDLastFour),
		IDExpiry:      idExpiry,
		NotaryFee:     notaryFee,
		TravelFee:     travelFee,
		TotalFee:      notaryFee + travelFee,
		Mileage:       in.Mileage,
		Notes:         in.Notes,
		CreatedAt:     a.now(),
	}
	if err := a.store.AppendSession(e); err != nil {
		return domain.SessionLogEntry{}, fmt.Errorf("append session: %w", err)
	}
	slog.Info("session recorded", "session_id", e.ID, "notary_id", e.NotaryID, "act", e.ActType)
	return e, nil
}

// SessionQuery selects journal entries for listing and summarizing.
type SessionQuery struct {
	From    string // YYYY-MM-DD, inclusive
	To      string // YYYY-MM-DD, inclusive
	ActType string
	Search  string
}

func (a *App) sessionFilter(actor domain.User, q SessionQuery) (store.SessionFilter, error) {
	f := store.SessionFilter{Search: strings.TrimSpace(q.Search)}
	// Notaries only ever see their own journal; admins see all of them.
	if actor.Role != domain.RoleAdmin {
		f.NotaryID = actor.ID
	}
	if q.From != "" {
		t, err := time.Parse("2006-01-02", q.From)
		if err != nil {
			return f, &ValidationError{Field: "from (YYYY-MM-DD)"}
		}
		f.From = &t
	}
	if q.To != "" {
		t, err := time.Parse("2006-01-02", q.To)
		if err != nil {
			return f, &ValidationError{Field: "to (YYYY-MM-DD)"}
		}
		f.To = &t
	}
	if q.ActType != "" {
		act, ok := domain.ParseNotarialAct(q.ActType)
		if !ok {
			return f, &ValidationError{Field: "actType (valid notarial act)"}
		}
		f.ActType = act
	}
	return f, nil
}

// ListSessions returns journal entries visible to the actor, newest first.
func (a *App) ListSessions(actor domain.User, q SessionQuery) ([]domain.SessionLogEntry, error) {
	f, err := a.sessionFilter(actor, q)
	if err != nil {
		return nil, err
	}
	return a.store.ListSessions(f)
}

// SessionSummary aggregates the entries a query matches.
type SessionSummary struct {
	Count        int          `json:"count"`
	TotalRevenue domain.Cents `json:"totalRevenue"`
	TotalMileage float64      `json:"totalMileage"`
}

// SummarizeSessions totals count, revenue, and mileage over the matching
// journal entries.
func (a *App) SummarizeSessions(actor domain.User, q SessionQuery) (SessionSummary, error) {
	entries, err := a.ListSessions(actor, q)
	if err != nil {
		return SessionSummary{}, err
	}
	var s SessionSummary
	for _, e := range entries {
		s.Count++
		s.TotalRevenue += e.TotalFee
		s.TotalMileage += e.Mileage
	}
	return s, nil
}
