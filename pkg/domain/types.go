package domain

import (
	"strings"
	"time"
)

type JobStatus string

const (
	JobOpen      JobStatus = "open"
	JobClaimed   JobStatus = "claimed"
	JobCompleted JobStatus = "completed"
	JobCancelled JobStatus = "cancelled"
)

// ParseJobStatus validates a wire-level job status value.
func ParseJobStatus(s string) (JobStatus, bool) {
	switch JobStatus(strings.ToLower(strings.TrimSpace(s))) {
	case JobOpen:
		return JobOpen, true
	case JobClaimed:
		return JobClaimed, true
	case JobCompleted:
		return JobCompleted, true
	case JobCancelled:
		return JobCancelled, true
	default:
		return "", false
	}
}

// Terminal reports whether no further transition is defined from the status.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobCancelled
}

type NotarialAct string

const (
	ActAcknowledgment      NotarialAct = "acknowledgment"
	ActJurat               NotarialAct = "jurat"
	ActCopyCertification   NotarialAct = "copy_certification"
	ActOathAffirmation     NotarialAct = "oath_affirmation"
	ActSignatureWitnessing NotarialAct = "signature_witnessing"
	ActLoanSigning         NotarialAct = "loan_signing"
)

// ParseNotarialAct validates a wire-level service/act type value.
func ParseNotarialAct(s string) (NotarialAct, bool) {
	switch NotarialAct(strings.ToLower(strings.TrimSpace(s))) {
	case ActAcknowledgment:
		return ActAcknowledgment, true
	case ActJurat:
		return ActJurat, true
	case ActCopyCertification:
		return ActCopyCertification, true
	case ActOathAffirmation:
		return ActOathAffirmation, true
	case ActSignatureWitnessing:
		return ActSignatureWitnessing, true
	case ActLoanSigning:
		return ActLoanSigning, true
	default:
		return "", false
	}
}

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleNotary Role = "notary"
)

// ParseRole validates a wire-level role value.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleNotary:
		return RoleNotary, true
	default:
		return "", false
	}
}

type ExpenseCategory string

const (
	ExpenseSupplies         ExpenseCategory = "Supplies"
	ExpenseSoftware         ExpenseCategory = "Software"
	ExpenseMarketing        ExpenseCategory = "Marketing"
	ExpenseInsurance        ExpenseCategory = "Insurance"
	ExpenseEducation        ExpenseCategory = "Education"
	ExpenseProfessionalFees ExpenseCategory = "Professional Fees"
	ExpenseOther            ExpenseCategory = "Other"
)

// ParseExpenseCategory validates an expense category value.
func ParseExpenseCategory(s string) (ExpenseCategory, bool) {
	for _, c := range []ExpenseCategory{
		ExpenseSupplies, ExpenseSoftware, ExpenseMarketing, ExpenseInsurance,
		ExpenseEducation, ExpenseProfessionalFees, ExpenseOther,
	} {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, true
		}
	}
	return "", false
}

// User is an authenticated account. Email doubles as the login identity and
// is immutable after signup.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Job is a notarization appointment on the job board.
//
// Invariants: ClaimedBy and ClaimedAt are both nil iff Status == open;
// CompletedAt is non-nil iff Status == completed; completed and cancelled
// are terminal.
type Job struct {
	ID            string      `json:"id"`
	ClientName    string      `json:"clientName"`
	ClientEmail   string      `json:"clientEmail,omitempty"`
	ClientPhone   string      `json:"clientPhone,omitempty"`
	ServiceType   NotarialAct `json:"serviceType"`
	Address       string      `json:"address"`
	City          string      `json:"city"`
	State         string      `json:"state,omitempty"`
	ZipCode       string      `json:"zipCode,omitempty"`
	Latitude      *float64    `json:"latitude,omitempty"`
	Longitude     *float64    `json:"longitude,omitempty"`
	ScheduledDate time.Time   `json:"scheduledDate"`
	ScheduledTime string      `json:"scheduledTime"`
	Fee           Cents       `json:"fee"`
	TravelFee     Cents       `json:"travelFee"`
	Notes         string      `json:"notes,omitempty"`
	Status        JobStatus   `json:"status"`
	ClaimedBy     *string     `json:"claimedBy,omitempty"`
	ClaimedAt     *time.Time  `json:"claimedAt,omitempty"`
	CompletedAt   *time.Time  `json:"completedAt,omitempty"`
	CreatedBy     string      `json:"createdBy,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// NotaryProfile is the commission record a notary keeps about themselves,
// one per account. Email mirrors the login identity.
type NotaryProfile struct {
	UserID           string     `json:"userId"`
	FullName         string     `json:"fullName"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone,omitempty"`
	Address          string     `json:"address,omitempty"`
	City             string     `json:"city,omitempty"`
	State            string     `json:"state,omitempty"`
	ZipCode          string     `json:"zipCode,omitempty"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	CommissionNumber string     `json:"commissionNumber,omitempty"`
	CommissionExpiry *time.Time `json:"commissionExpiry,omitempty"`
	Available        bool       `json:"available"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// SessionLogEntry is one line of the statutory notary journal. Entries are
// append-only: once written they are never updated or deleted.
type SessionLogEntry struct {
	ID            string      `json:"id"`
	NotaryID      string      `json:"notaryId"`
	JobID         *string     `json:"jobId,omitempty"`
	ActType       NotarialAct `json:"actType"`
	DocumentType  string      `json:"documentType"`
	SessionDate   time.Time   `json:"sessionDate"`
	SessionTime   string      `json:"sessionTime"`
	SignerName    string      `json:"signerName"`
	SignerAddress string      `json:"signerAddress,omitempty"`
	IDType        string      `json:"idType"`
	IDLastFour    string      `json:"idLastFour"`
	IDExpiry      *time.Time  `json:"idExpiry,omitempty"`
	NotaryFee     Cents       `json:"notaryFee"`
	TravelFee     Cents       `json:"travelFee"`
	TotalFee      Cents       `json:"totalFee"`
	Mileage       float64     `json:"mileage,omitempty"`
	Notes         string      `json:"notes,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// ExpenseEntry is a bookkeeping record used only for aggregate reporting.
type ExpenseEntry struct {
	ID          string          `json:"id"`
	CreatedBy   string          `json:"createdBy"`
	Date        time.Time       `json:"date"`
	Category    ExpenseCategory `json:"category"`
	Description string          `json:"description"`
	Amount      Cents           `json:"amount"`
	Mileage     float64         `json:"mileage,omitempty"`
	ReceiptKey  string          `json:"-"`
	HasReceipt  bool            `json:"hasReceipt"`
	CreatedAt   time.Time       `json:"createdAt"`
}
