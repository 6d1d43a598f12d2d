package app

import (
	"fmt"
	"strings"
	"time"

	"refurrm/pkg/domain"
)

// UpsertProfileInput is the payload for creating or replacing the acting
// notary's commission profile.
type UpsertProfileInput struct {
	FullName         string   `json:"fullName"`
	Phone            string   `json:"phone"`
	Address          string   `json:"address"`
	City             string   `json:"city"`
	State            string   `json:"state"`
	ZipCode          string   `json:"zipCode"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	CommissionNumber string   `json:"commissionNumber"`
	CommissionExpiry *string  `json:"commissionExpiry"` // YYYY-MM-DD
	Available        bool     `json:"available"`
}

// GetMyProfile returns the actor's profile. A notary who has never saved
// one gets a skeleton seeded from the account.
func (a *App) GetMyProfile(actor domain.User) (domain.NotaryProfile, error) {
	p, ok, err := a.store.GetProfile(actor.ID)
	if err != nil {
		return domain.NotaryProfile{}, fmt.Errorf("get profile: %w", err)
	}
	if !ok {
		return domain.NotaryProfile{
			UserID:   actor.ID,
			FullName: actor.FullName,
			Email:    actor.Email,
		}, nil
	}
	return p, nil
}

// UpsertMyProfile creates or replaces the actor's profile. Email always
// mirrors the account and cannot be changed here.
func (a *App) UpsertMyProfile(actor domain.User, in UpsertProfileInput) (domain.NotaryProfile, error) {
	if strings.TrimSpace(in.FullName) == "" {
		return domain.NotaryProfile{}, missing("fullName")
	}

	var expiry *time.Time
	if in.CommissionExpiry != nil && *in.CommissionExpiry != "" {
		t, err := time.Parse("2006-01-02", *in.CommissionExpiry)
		if err != nil {
			return domain.NotaryProfile{}, &ValidationError{Field: "commissionExpiry (YYYY-MM-DD)"}
		}
		expiry = &t
	}

	now := a.now()
	createdAt := now
	if existing, ok, err := a.store.GetProfile(actor.ID); err != nil {
		return domain.NotaryProfile{}, fmt.Errorf("get profile: %w", err)
	} else if ok {
		createdAt = existing.CreatedAt
	}

	p := domain.NotaryProfile{
		UserID:           actor.ID,
		FullName:         strings.TrimSpace(in.FullName),
		Email:            actor.Email,
		Phone:            strings.TrimSpace(in.Phone),
		Address:          strings.TrimSpace(in.Address),
		City:             strings.TrimSpace(in.City),
		State:            strings.TrimSpace(in.State),
		ZipCode:          strings.TrimSpace(in.ZipCode),
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		CommissionNumber: strings.TrimSpace(in.CommissionNumber),
		CommissionExpiry: expiry,
		Available:        in.Available,
		CreatedAt:        createdAt,
		UpdatedAt:        now,
	}
	if err := a.store.SaveProfile(p); err != nil {
		return domain.NotaryProfile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}
