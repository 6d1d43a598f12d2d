package app

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"refurrm/internal/util"
	"refurrm/pkg/domain"
)

// CreateJobInput is the admin payload for posting a job to the board.
type CreateJobInput struct {
	ClientName    string       `json:"clientName"`
	ClientEmail   string       `json:"clientEmail"`
	ClientPhone   string       `json:"clientPhone"`
	ServiceType   string       `json:"serviceType"`
	Address       string       `json:"address"`
	City          string       `json:"city"`
	State         string       `json:"state"`
	ZipCode       string       `json:"zipCode"`
	Latitude      *float64     `json:"latitude"`
	Longitude     *float64     `json:"longitude"`
	ScheduledDate string       `json:"scheduledDate"` // YYYY-MM-DD
	ScheduledTime string       `json:"scheduledTime"`
	Fee           domain.Cents `json:"fee"`
	TravelFee     domain.Cents `json:"travelFee"`
	Notes         string       `json:"notes"`
}

// CreateJob posts a new open job. Admin only.
func (a *App) CreateJob(actor domain.User, in CreateJobInput) (domain.Job, error) {
	if actor.Role != domain.RoleAdmin {
		return domain.Job{}, ErrForbidden
	}
	if strings.TrimSpace(in.ClientName) == "" {
		return domain.Job{}, missing("clientName")
	}
	act, ok := domain.ParseNotarialAct(in.ServiceType)
	if !ok {
		return domain.Job{}, &ValidationError{Field: "serviceType (valid notarial act)"}
	}
	if strings.TrimSpace(in.Address) == "" {
		return domain.Job{}, missing("address")
	}
	if strings.TrimSpace(in.City) == "" {
		return domain.Job{}, missing("city")
	}
	day, err := time.Parse("2006-01-02", in.ScheduledDate)
	if err != nil {
		return domain.Job{}, &ValidationError{Field: "scheduledDate (YYYY-MM-DD)"}
	}
	if strings.TrimSpace(in.ScheduledTime) == "" {
		return domain.Job{}, missing("scheduledTime")
	}
	if in.Fee < 0 || in.TravelFee < 0 {
		return domain.Job{}, &ValidationError{Field: "fee (non-negative)"}
	}

	now := a.now()
	j := domain.Job{
		ID:            util.NewID(),
		ClientName:    strings.TrimSpace(in.ClientName),
		ClientEmail:   strings.TrimSpace(in.ClientEmail),
		ClientPhone:   strings.TrimSpace(in.ClientPhone),
		ServiceType:   act,
		Address:       strings.TrimSpace(in.Address),
		City:          strings.TrimSpace(in.City),
		State:         strings.TrimSpace(in.State),
		ZipCode:       strings.TrimSpace(in.ZipCode),
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		ScheduledDate: day,
		ScheduledTime: strings.TrimSpace(in.ScheduledTime),
		Fee:           in.Fee,
		TravelFee:     in.TravelFee,
		Notes:         in.Notes,
		Status:        domain.JobOpen,
		CreatedBy:     actor.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := a.store.CreateJob(j); err != nil {
		return domain.Job{}, fmt.Errorf("create job: %w", err)
	}
	slog.Info("job posted", "job_id", j.ID, "city", j.City, "service", j.ServiceType)
	return j, nil
}

// PublishJob puts an already-built open job on the board. Used by the
// public booking flow, which has no authenticated actor.
func (a *App) PublishJob(j domain.Job) error {
	if j.Status != domain.JobOpen {
		return &ValidationError{Field: "status (open)"}
	}
	if err := a.store.CreateJob(j); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	slog.Info("booking received", "job_id", j.ID, "city", j.City, "service", j.ServiceType)
	return nil
}

// ListOpenJobs returns the claimable pool, soonest scheduled first.
func (a *App) ListOpenJobs() ([]domain.Job, error) {
	return a.store.ListOpenJobs()
}

// GetJob returns one job. Notaries may only see jobs they claimed; admins
// see everything.
func (a *App) GetJob(actor domain.User, id string) (domain.Job, error) {
	j, ok, err := a.store.GetJob(id)
	if err != nil {
		return domain.Job{}, fmt.Errorf("get job: %w", err)
	}
	if !ok {
		return domain.Job{}, ErrNotFound
	}
	if actor.Role != domain.RoleAdmin {
		if j.ClaimedBy == nil || *j.ClaimedBy != actor.ID {
			return domain.Job{}, ErrForbidden
		}
	}
	return j, nil
}

// ClaimJob assigns an open job to the acting notary. Under contention
// exactly one caller wins; the rest get ErrClaimConflict.
func (a *App) ClaimJob(actor domain.User, id string) (domain.Job, error) {
	ok, err := a.store.ClaimJob(id, actor.ID, a.now())
	if err != nil {
		return domain.Job{}, fmt.Errorf("claim job: %w", err)
	}
	if !ok {
		return domain.Job{}, ErrClaimConflict
	}
	slog.Info("job claimed", "job_id", id, "notary_id", actor.ID)
	j, _, err := a.store.GetJob(id)
	if err != nil {
		return domain.Job{}, fmt.Errorf("reload job: %w", err)
	}
	return j, nil
}

// CompleteJob marks one of the actor's claimed jobs as done.
func (a *App) CompleteJob(actor domain.User, id string) (domain.Job, error) {
	return a.finishJob(actor, id, a.store.CompleteJob)
}

// CancelJob releases one of the actor's claimed jobs. Cancelled jobs do not
// return to the open pool; the claimant stays on record.
func (a *App) CancelJob(actor domain.User, id string) (domain.Job, error) {
	return a.finishJob(actor, id, a.store.CancelJob)
}

func (a *App) finishJob(actor domain.User, id string, transition func(string, time.Time) (bool, error)) (domain.Job, error) {
	j, ok, err := a.store.GetJob(id)
	if err != nil {
		return domain.Job{}, fmt.Errorf("get job: %w", err)
	}
	if !ok {
		return domain.Job{}, ErrNotFound
	}
	if j.Status != domain.JobClaimed {
		return domain.Job{}, ErrInvalidTransition
	}
	if actor.Role != domain.RoleAdmin {
		if j.ClaimedBy == nil || *j.ClaimedBy != actor.ID {
			return domain.Job{}, ErrForbidden
		}
	}
	ok, err = transition(id, a.now())
	if err != nil {
		return domain.Job{}, fmt.Errorf("transition job: %w", err)
	}
	if !ok {
		return domain.Job{}, ErrInvalidTransition
	}
	j, _, err = a.store.GetJob(id)
	if err != nil {
		return domain.Job{}, fmt.Errorf("reload job: %w", err)
	}
	slog.Info("job transitioned", "job_id", id, "status", j.Status)
	return j, nil
}

// ListMyJobs returns jobs the actor has claimed, optionally filtered by
// status ("" means all of the actor's jobs).
func (a *App) ListMyJobs(actor domain.User, status string) ([]domain.Job, error) {
	var st domain.JobStatus
	if status != "" {
		parsed, ok := domain.ParseJobStatus(status)
		if !ok {
			return nil, &ValidationError{Field: "status (valid job status)"}
		}
		st = parsed
	}
	return a.store.ListJobsByClaimant(actor.ID, st)
}

// ListAllJobs returns every job regardless of status. Admin only.
func (a *App) ListAllJobs(actor domain.User) ([]domain.Job, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	return a.store.ListJobs()
}
