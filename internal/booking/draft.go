// Package booking builds public booking requests stage by stage and turns
// a finished draft into an open job on the board.
package booking

import (
	"fmt"
	"strings"
	"time"

	"refurrm/internal/util"
	"refurrm/pkg/domain"
)

// Stage identifies how far a draft has progressed. Stages are completed in
// order: service, schedule, location, contact.
type Stage int

const (
	StageService Stage = iota
	StageSchedule
	StageLocation
	StageContact
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageService:
		return "service"
	case StageSchedule:
		return "schedule"
	case StageLocation:
		return "location"
	case StageContact:
		return "contact"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Base fees per notarial act, in cents. Loan signings carry the premium
// package rate; everything else is the standard appointment rate.
var baseFees = map[domain.NotarialAct]domain.Cents{
	domain.ActAcknowledgment:      600,
	domain.ActJurat:               600,
	domain.ActCopyCertification:   600,
	domain.ActOathAffirmation:     600,
	domain.ActSignatureWitnessing: 600,
	domain.ActLoanSigning:         15000,
}

// Standard travel surcharge for a mobile appointment, in cents.
const travelFee = domain.Cents(5000)

// StageError reports input rejected by a stage, or a stage attempted out
// of order.
type StageError struct {
	Stage  Stage
	Reason string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("booking %s: %s", e.Stage, e.Reason)
}

// Draft accumulates a booking across stages. The zero value is not usable;
// start with NewDraft.
type Draft struct {
	stage Stage

	service domain.NotarialAct

	date time.Time
	slot string

	address string
	city    string
	state   string
	zipCode string

	name  string
	email string
	phone string
	notes string
}

func NewDraft() *Draft {
	return &Draft{stage: StageService}
}

// Stage returns the next stage awaiting input.
func (d *Draft) Stage() Stage { return d.stage }

func (d *Draft) require(s Stage) error {
	if d.stage != s {
		return &StageError{Stage: s, Reason: fmt.Sprintf("draft is at stage %s", d.stage)}
	}
	return nil
}

// Service records the requested notarial act and advances the draft.
func (d *Draft) Service(act string) error {
	if err := d.require(StageService); err != nil {
		return err
	}
	parsed, ok := domain.ParseNotarialAct(act)
	if !ok {
		return &StageError{Stage: StageService, Reason: "unknown service type"}
	}
	d.service = parsed
	d.stage = StageSchedule
	return nil
}

// Schedule records the appointment date (YYYY-MM-DD) and time slot.
func (d *Draft) Schedule(date, slot string) error {
	if err := d.require(StageSchedule); err != nil {
		return err
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return &StageError{Stage: StageSchedule, Reason: "date must be YYYY-MM-DD"}
	}
	if strings.TrimSpace(slot) == "" {
		return &StageError{Stage: StageSchedule, Reason: "time slot is required"}
	}
	d.date = day
	d.slot = strings.TrimSpace(slot)
	d.stage = StageLocation
	return nil
}

// Location records where the notary should travel to.
func (d *Draft) Location(address, city, state, zipCode string) error {
	if err := d.require(StageLocation); err != nil {
		return err
	}
	if strings.TrimSpace(address) == "" {
		return &StageError{Stage: StageLocation, Reason: "address is required"}
	}
	if strings.TrimSpace(city) == "" {
		return &StageError{Stage: StageLocation, Reason: "city is required"}
	}
	d.address = strings.TrimSpace(address)
	d.city = strings.TrimSpace(city)
	d.state = strings.TrimSpace(state)
	d.zipCode = strings.TrimSpace(zipCode)
	d.stage = StageContact
	return nil
}

// Contact records who asked for the appointment and completes the draft.
func (d *Draft) Contact(name, email, phone, notes string) error {
	if err := d.require(StageContact); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return &StageError{Stage: StageContact, Reason: "name is required"}
	}
	if strings.TrimSpace(email) == "" && strings.TrimSpace(phone) == "" {
		return &StageError{Stage: StageContact, Reason: "an email or phone number is required"}
	}
	d.name = strings.TrimSpace(name)
	d.email = strings.TrimSpace(email)
	d.phone = strings.TrimSpace(phone)
	d.notes = strings.TrimSpace(notes)
	d.stage = StageDone
	return nil
}

// Quote returns the base and travel fee for the selected service. Valid
// once the service stage is complete.
func (d *Draft) Quote() (base, travel domain.Cents, err error) {
	if d.stage == StageService {
		return 0, 0, &StageError{Stage: StageService, Reason: "no service selected yet"}
	}
	return baseFees[d.service], travelFee, nil
}

// Build turns a completed draft into an open job ready for the board.
func (d *Draft) Build(now time.Time) (domain.Job, error) {
	if d.stage != StageDone {
		return domain.Job{}, &StageError{Stage: d.stage, Reason: "draft is incomplete"}
	}
	return domain.Job{
		ID:            util.NewID(),
		ClientName:    d.name,
		ClientEmail:   d.email,
		ClientPhone:   d.phone,
		ServiceType:   d.service,
		Address:       d.address,
		City:          d.city,
		State:         d.state,
		ZipCode:       d.zipCode,
		ScheduledDate: d.date,
		ScheduledTime: d.slot,
		Fee:           baseFees[d.service],
		TravelFee:     travelFee,
		Notes:         d.notes,
		Status:        domain.JobOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
