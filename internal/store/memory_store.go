package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"refurrm/pkg/domain"
)

// MemoryStore keeps everything in-process. It implements the same Store
// interface as GormStore, including the conditional claim semantics: the
// status precondition is checked and applied under one lock.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	emails   map[string]string // email -> user ID
	jobs     map[string]domain.Job
	profiles map[string]domain.NotaryProfile
	sessions []domain.SessionLogEntry
	expenses map[string]domain.ExpenseEntry
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]domain.User),
		emails:   make(map[string]string),
		jobs:     make(map[string]domain.Job),
		profiles: make(map[string]domain.NotaryProfile),
		expenses: make(map[string]domain.ExpenseEntry),
	}
}

// SaveUser registers or updates a user.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.emails[u.Email] = u.ID
	return nil
}

// HasUserEmail checks if the email is already registered.
func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.emails[email]
	return ok, nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.emails[email]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// UserCount returns the number of registered users.
func (m *MemoryStore) UserCount() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

// CreateJob stores a new job.
func (m *MemoryStore) CreateJob(j domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = j
	return nil
}

// GetJob retrieves a job by ID.
func (m *MemoryStore) GetJob(id string) (domain.Job, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	return j, ok, nil
}

// ListOpenJobs returns open jobs ordered by scheduled date ascending.
func (m *MemoryStore) ListOpenJobs() ([]domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.Job
	for _, j := range m.jobs {
		if j.Status == domain.JobOpen {
			res = append(res, j)
		}
	}
	sortJobsBySchedule(res)
	return res, nil
}

// ListJobs returns every job, newest first.
func (m *MemoryStore) ListJobs() ([]domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		res = append(res, j)
	}
	sort.Slice(res, func(i, k int) bool { return res[i].CreatedAt.After(res[k].CreatedAt) })
	return res, nil
}

// ListJobsByClaimant returns jobs claimed by the notary, optionally
// filtered by status.
func (m *MemoryStore) ListJobsByClaimant(notaryID string, status domain.JobStatus) ([]domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.Job
	for _, j := range m.jobs {
		if j.ClaimedBy == nil || *j.ClaimedBy != notaryID {
			continue
		}
		if status != "" && j.Status != status {
			continue
		}
		res = append(res, j)
	}
	sortJobsBySchedule(res)
	return res, nil
}

// ClaimJob checks and applies the open -> claimed transition under the
// write lock, mirroring the conditional UPDATE of the SQL store.
func (m *MemoryStore) ClaimJob(id, notaryID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Status != domain.JobOpen {
		return false, nil
	}
	j.Status = domain.JobClaimed
	j.ClaimedBy = &notaryID
	j.ClaimedAt = &at
	j.UpdatedAt = at
	m.jobs[id] = j
	return true, nil
}

// CompleteJob applies claimed -> completed, conditionally.
func (m *MemoryStore) CompleteJob(id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Status != domain.JobClaimed {
		return false, nil
	}
	j.Status = domain.JobCompleted
	j.CompletedAt = &at
	j.UpdatedAt = at
	m.jobs[id] = j
	return true, nil
}

// CancelJob applies claimed -> cancelled, conditionally.
func (m *MemoryStore) CancelJob(id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Status != domain.JobClaimed {
		return false, nil
	}
	j.Status = domain.JobCancelled
	j.UpdatedAt = at
	m.jobs[id] = j
	return true, nil
}

// SaveProfile upserts a notary profile.
func (m *MemoryStore) SaveProfile(p domain.NotaryProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
	return nil
}

// GetProfile returns the profile for a user ID.
func (m *MemoryStore) GetProfile(userID string) (domain.NotaryProfile, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	return p, ok, nil
}

// AppendSession records a journal entry. Append-only by construction.
func (m *MemoryStore) AppendSession(e domain.SessionLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, e)
	return nil
}

// ListSessions returns journal entries matching the filter, most recent
// session first.
func (m *MemoryStore) ListSessions(filter SessionFilter) ([]domain.SessionLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.SessionLogEntry
	for _, e := range m.sessions {
		if !matchSession(e, filter) {
			continue
		}
		res = append(res, e)
	}
	sort.Slice(res, func(i, k int) bool {
		if !res[i].SessionDate.Equal(res[k].SessionDate) {
			return res[i].SessionDate.After(res[k].SessionDate)
		}
		return res[i].SessionTime > res[k].SessionTime
	})
	return res, nil
}

func matchSession(e domain.SessionLogEntry, f SessionFilter) bool {
	if f.NotaryID != "" && e.NotaryID != f.NotaryID {
		return false
	}
	if f.ActType != "" && e.ActType != f.ActType {
		return false
	}
	if f.From != nil && e.SessionDate.Before(*f.From) {
		return false
	}
	if f.To != nil && e.SessionDate.After(*f.To) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.SignerName), needle) &&
			!strings.Contains(strings.ToLower(e.DocumentType), needle) {
			return false
		}
	}
	return true
}

// SaveExpense stores an expense entry.
func (m *MemoryStore) SaveExpense(e domain.ExpenseEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[e.ID] = e
	return nil
}

// GetExpense returns an expense by ID.
func (m *MemoryStore) GetExpense(id string) (domain.ExpenseEntry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.expenses[id]
	return e, ok, nil
}

// SetExpenseReceipt records an uploaded receipt's object key.
func (m *MemoryStore) SetExpenseReceipt(id, receiptKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.ReceiptKey = receiptKey
	e.HasReceipt = receiptKey != ""
	m.expenses[id] = e
	return nil
}

// ListExpenses returns all expenses, newest date first.
func (m *MemoryStore) ListExpenses() ([]domain.ExpenseEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.ExpenseEntry, 0, len(m.expenses))
	for _, e := range m.expenses {
		res = append(res, e)
	}
	sort.Slice(res, func(i, k int) bool {
		if !res[i].Date.Equal(res[k].Date) {
			return res[i].Date.After(res[k].Date)
		}
		return res[i].CreatedAt.After(res[k].CreatedAt)
	})
	return res, nil
}

func sortJobsBySchedule(jobs []domain.Job) {
	sort.Slice(jobs, func(i, k int) bool {
		if !jobs[i].ScheduledDate.Equal(jobs[k].ScheduledDate) {
			return jobs[i].ScheduledDate.Before(jobs[k].ScheduledDate)
		}
		return jobs[i].ScheduledTime < jobs[k].ScheduledTime
	})
}
