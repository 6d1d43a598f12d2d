package store

import (
	"time"

	"refurrm/pkg/domain"
)

// SessionFilter narrows journal queries. Zero values mean "no constraint".
type SessionFilter struct {
	NotaryID string
	From     *time.Time
	To       *time.Time
	ActType  domain.NotarialAct
	Search   string // free-text match over signer name and document type
}

// Store defines persistence operations for users, jobs, profiles, the
// session journal, and expenses.
//
// The journal is append-only: there is deliberately no update or delete
// method for session log entries.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)
	UserCount() (int, error)

	// jobs
	CreateJob(domain.Job) error
	GetJob(id string) (domain.Job, bool, error)
	ListOpenJobs() ([]domain.Job, error)
	ListJobs() ([]domain.Job, error)
	ListJobsByClaimant(notaryID string, status domain.JobStatus) ([]domain.Job, error)
	// ClaimJob transitions open -> claimed as one conditional update whose
	// precondition ("current status = open") is evaluated by the store, not
	// by a prior read. Returns false when the precondition failed.
	ClaimJob(id, notaryID string, at time.Time) (bool, error)
	// CompleteJob / CancelJob transition claimed -> completed/cancelled,
	// conditionally on the row still being claimed. False means the job was
	// not in claimed status (or does not exist); nothing was written.
	CompleteJob(id string, at time.Time) (bool, error)
	CancelJob(id string, at time.Time) (bool, error)

	// profiles
	SaveProfile(domain.NotaryProfile) error
	GetProfile(userID string) (domain.NotaryProfile, bool, error)

	// session journal (append-only)
	AppendSession(domain.SessionLogEntry) error
	ListSessions(filter SessionFilter) ([]domain.SessionLogEntry, error)

	// expenses
	SaveExpense(domain.ExpenseEntry) error
	GetExpense(id string) (domain.ExpenseEntry, bool, error)
	SetExpenseReceipt(id, receiptKey string) error
	ListExpenses() ([]domain.ExpenseEntry, error)
}

// SessionStore persists login session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}
