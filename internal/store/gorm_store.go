package store

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"refurrm/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(
		&UserModel{}, &JobModel{}, &ProfileModel{}, &SessionLogModel{}, &ExpenseModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser registers a user. Email is immutable and excluded from updates.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Save(&model).Error
}

// HasUserEmail checks if the email is already registered.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	u, err := userFromModel(model)
	return u, err == nil, err
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	u, err := userFromModel(model)
	return u, err == nil, err
}

// UserCount returns the number of registered users.
func (s *GormStore) UserCount() (int, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// CreateJob inserts a new job row.
func (s *GormStore) CreateJob(j domain.Job) error {
	model := jobToModel(j)
	return s.db.Create(&model).Error
}

// GetJob retrieves a job by ID.
func (s *GormStore) GetJob(id string) (domain.Job, bool, error) {
	var model JobModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Job{}, false, nil
		}
		return domain.Job{}, false, err
	}
	j, err := jobFromModel(model)
	return j, err == nil, err
}

// ListOpenJobs returns open jobs ordered by scheduled date ascending.
func (s *GormStore) ListOpenJobs() ([]domain.Job, error) {
	return s.listJobs("scheduled_date ASC, scheduled_time ASC", "status = ?", string(domain.JobOpen))
}

// ListJobs returns every job, newest first. Admin reporting only.
func (s *GormStore) ListJobs() ([]domain.Job, error) {
	return s.listJobs("created_at DESC")
}

// ListJobsByClaimant returns jobs claimed by the notary, optionally filtered
// by status, ordered by scheduled date ascending.
func (s *GormStore) ListJobsByClaimant(notaryID string, status domain.JobStatus) ([]domain.Job, error) {
	if status == "" {
		return s.listJobs("scheduled_date ASC, scheduled_time ASC", "claimed_by = ?", notaryID)
	}
	return s.listJobs("scheduled_date ASC, scheduled_time ASC", "claimed_by = ? AND status = ?", notaryID, string(status))
}

func (s *GormStore) listJobs(order string, conds ...any) ([]domain.Job, error) {
	var models []JobModel
	tx := s.db.Order(order)
	if len(conds) > 0 {
		tx = tx.Where(conds[0], conds[1:]...)
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Job, 0, len(models))
	for _, m := range models {
		j, err := jobFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, j)
	}
	return res, nil
}

// ClaimJob applies the open -> claimed transition as a single conditional
// update. The WHERE clause carries the precondition; zero rows affected
// means another notary won the race (or the job is gone) and no state was
// touched.
func (s *GormStore) ClaimJob(id, notaryID string, at time.Time) (bool, error) {
	res := s.db.Model(&JobModel{}).
		Where("id = ? AND status = ?", id, string(domain.JobOpen)).
		Updates(map[string]any{
			"status":     string(domain.JobClaimed),
			"claimed_by": notaryID,
			"claimed_at": at,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CompleteJob applies claimed -> completed, conditionally.
func (s *GormStore) CompleteJob(id string, at time.Time) (bool, error) {
	res := s.db.Model(&JobModel{}).
		Where("id = ? AND status = ?", id, string(domain.JobClaimed)).
		Updates(map[string]any{
			"status":       string(domain.JobCompleted),
			"completed_at": at,
			"updated_at":   at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CancelJob applies claimed -> cancelled, conditionally. The claim fields
// are kept so the record shows who abandoned it.
func (s *GormStore) CancelJob(id string, at time.Time) (bool, error) {
	res := s.db.Model(&JobModel{}).
		Where("id = ? AND status = ?", id, string(domain.JobClaimed)).
		Updates(map[string]any{
			"status":     string(domain.JobCancelled),
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SaveProfile upserts the notary's profile row.
func (s *GormStore) SaveProfile(p domain.NotaryProfile) error {
	model := profileToModel(p)
	return s.db.Save(&model).Error
}

// GetProfile returns the profile for a user ID.
func (s *GormStore) GetProfile(userID string) (domain.NotaryProfile, bool, error) {
	var model ProfileModel
	if err := s.db.First(&model, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.NotaryProfile{}, false, nil
		}
		return domain.NotaryProfile{}, false, err
	}
	p, err := profileFromModel(model)
	return p, err == nil, err
}

// AppendSession inserts a journal entry. There is no corresponding update.
func (s *GormStore) AppendSession(e domain.SessionLogEntry) error {
	model := sessionToModel(e)
	return s.db.Create(&model).Error
}

// ListSessions returns journal entries matching the filter, most recent
// session first.
func (s *GormStore) ListSessions(filter SessionFilter) ([]domain.SessionLogEntry, error) {
	tx := s.db.Model(&SessionLogModel{}).Order("session_date DESC, session_time DESC")
	if filter.NotaryID != "" {
		tx = tx.Where("notary_id = ?", filter.NotaryID)
	}
	if filter.ActType != "" {
		tx = tx.Where("act_type = ?", string(filter.ActType))
	}
	if filter.From != nil {
		tx = tx.Where("session_date >= ?", datatypes.Date(*filter.From))
	}
	if filter.To != nil {
		tx = tx.Where("session_date <= ?", datatypes.Date(*filter.To))
	}
	if filter.Search != "" {
		pat := "%" + filter.Search + "%"
		tx = tx.Where("signer_name ILIKE ? OR document_type ILIKE ?", pat, pat)
	}
	var models []SessionLogModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.SessionLogEntry, 0, len(models))
	for _, m := range models {
		e, err := sessionFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, nil
}

// SaveExpense inserts an expense row.
func (s *GormStore) SaveExpense(e domain.ExpenseEntry) error {
	model := expenseToModel(e)
	return s.db.Create(&model).Error
}

// GetExpense returns an expense by ID.
func (s *GormStore) GetExpense(id string) (domain.ExpenseEntry, bool, error) {
	var model ExpenseModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ExpenseEntry{}, false, nil
		}
		return domain.ExpenseEntry{}, false, err
	}
	e, err := expenseFromModel(model)
	return e, err == nil, err
}

// SetExpenseReceipt records the object key of an uploaded receipt.
func (s *GormStore) SetExpenseReceipt(id, receiptKey string) error {
	res := s.db.Model(&ExpenseModel{}).Where("id = ?", id).Update("receipt_key", receiptKey)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListExpenses returns all expenses, newest date first.
func (s *GormStore) ListExpenses() ([]domain.ExpenseEntry, error) {
	var models []ExpenseModel
	if err := s.db.Order("date DESC, created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.ExpenseEntry, 0, len(models))
	for _, m := range models {
		e, err := expenseFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, nil
}

// Conversions between domain records and GORM models. Rows read back from
// the store are validated here: unknown enum values are rejected rather
// than passed through.

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) (domain.User, error) {
	role, ok := domain.ParseRole(m.Role)
	if !ok {
		return domain.User{}, fmt.Errorf("user %s: unknown role %q", m.ID, m.Role)
	}
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FullName:     m.FullName,
		Role:         role,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}

func jobToModel(j domain.Job) JobModel {
	return JobModel{
		ID:             j.ID,
		ClientName:     j.ClientName,
		ClientEmail:    j.ClientEmail,
		ClientPhone:    j.ClientPhone,
		ServiceType:    string(j.ServiceType),
		Address:        j.Address,
		City:           j.City,
		State:          j.State,
		ZipCode:        j.ZipCode,
		Latitude:       j.Latitude,
		Longitude:      j.Longitude,
		ScheduledDate:  datatypes.Date(j.ScheduledDate),
		ScheduledTime:  j.ScheduledTime,
		FeeCents:       int64(j.Fee),
		TravelFeeCents: int64(j.TravelFee),
		Notes:          j.Notes,
		Status:         string(j.Status),
		ClaimedBy:      j.ClaimedBy,
		ClaimedAt:      j.ClaimedAt,
		CompletedAt:    j.CompletedAt,
		CreatedBy:      j.CreatedBy,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

func jobFromModel(m JobModel) (domain.Job, error) {
	status, ok := domain.ParseJobStatus(m.Status)
	if !ok {
		return domain.Job{}, fmt.Errorf("job %s: unknown status %q", m.ID, m.Status)
	}
	act, ok := domain.ParseNotarialAct(m.ServiceType)
	if !ok {
		return domain.Job{}, fmt.Errorf("job %s: unknown service type %q", m.ID, m.ServiceType)
	}
	return domain.Job{
		ID:            m.ID,
		ClientName:    m.ClientName,
		ClientEmail:   m.ClientEmail,
		ClientPhone:   m.ClientPhone,
		ServiceType:   act,
		Address:       m.Address,
		City:          m.City,
		State:         m.State,
		ZipCode:       m.ZipCode,
		Latitude:      m.Latitude,
		Longitude:     m.Longitude,
		ScheduledDate: time.Time(m.ScheduledDate),
		ScheduledTime: m.ScheduledTime,
		Fee:           domain.Cents(m.FeeCents),
		TravelFee:     domain.Cents(m.TravelFeeCents),
		Notes:         m.Notes,
		Status:        status,
		ClaimedBy:     m.ClaimedBy,
		ClaimedAt:     m.ClaimedAt,
		CompletedAt:   m.CompletedAt,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

func profileToModel(p domain.NotaryProfile) ProfileModel {
	var expiry *datatypes.Date
	if p.CommissionExpiry != nil {
		d := datatypes.Date(*p.CommissionExpiry)
		expiry = &d
	}
	return ProfileModel{
		UserID:           p.UserID,
		FullName:         p.FullName,
		Email:            p.Email,
		Phone:            p.Phone,
		Address:          p.Address,
		City:             p.City,
		State:            p.State,
		ZipCode:          p.ZipCode,
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		CommissionNumber: p.CommissionNumber,
		CommissionExpiry: expiry,
		Available:        p.Available,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func profileFromModel(m ProfileModel) (domain.NotaryProfile, error) {
	var expiry *time.Time
	if m.CommissionExpiry != nil {
		t := time.Time(*m.CommissionExpiry)
		expiry = &t
	}
	return domain.NotaryProfile{
		UserID:           m.UserID,
		FullName:         m.FullName,
		Email:            m.Email,
		Phone:            m.Phone,
		Address:          m.Address,
		City:             m.City,
		State:            m.State,
		ZipCode:          m.ZipCode,
		Latitude:         m.Latitude,
		Longitude:        m.Longitude,
		CommissionNumber: m.CommissionNumber,
		CommissionExpiry: expiry,
		Available:        m.Available,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}, nil
}

func sessionToModel(e domain.SessionLogEntry) SessionLogModel {
	var expiry *datatypes.Date
	if e.IDExpiry != nil {
		d := datatypes.Date(*e.IDExpiry)
		expiry = &d
	}
	return SessionLogModel{
		ID:             e.ID,
		NotaryID:       e.NotaryID,
		JobID:          e.JobID,
		ActType:        string(e.ActType),
		DocumentType:   e.DocumentType,
		SessionDate:    datatypes.Date(e.SessionDate),
		SessionTime:    e.SessionTime,
		SignerName:     e.SignerName,
		SignerAddress:  e.SignerAddress,
		IDType:         e.IDType,
		IDLastFour:     e.IDLastFour,
		IDExpiry:       expiry,
		NotaryFeeCents: int64(e.NotaryFee),
		TravelFeeCents: int64(e.TravelFee),
		Mileage:        e.Mileage,
		Notes:          e.Notes,
		CreatedAt:      e.CreatedAt,
	}
}

func sessionFromModel(m SessionLogModel) (domain.SessionLogEntry, error) {
	act, ok := domain.ParseNotarialAct(m.ActType)
	if !ok {
		return domain.SessionLogEntry{}, fmt.Errorf("session %s: unknown act type %q", m.ID, m.ActType)
	}
	var expiry *time.Time
	if m.IDExpiry != nil {
		t := time.Time(*m.IDExpiry)
		expiry = &t
	}
	notaryFee := domain.Cents(m.NotaryFeeCents)
	travelFee := domain.Cents(m.TravelFeeCents)
	return domain.SessionLogEntry{
		ID:            m.ID,
		NotaryID:      m.NotaryID,
		JobID:         m.JobID,
		ActType:       act,
		DocumentType:  m.DocumentType,
		SessionDate:   time.Time(m.SessionDate),
		SessionTime:   m.SessionTime,
		SignerName:    m.SignerName,
		SignerAddress: m.SignerAddress,
		IDType:        m.IDType,
		IDLastFour:    m.IDLastFour,
		IDExpiry:      expiry,
		NotaryFee:     notaryFee,
		TravelFee:     travelFee,
		// Total is derived on read, never stored as ground truth.
		TotalFee:  notaryFee + travelFee,
		Mileage:   m.Mileage,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
	}, nil
}

func expenseToModel(e domain.ExpenseEntry) ExpenseModel {
	return ExpenseModel{
		ID:          e.ID,
		CreatedBy:   e.CreatedBy,
		Date:        datatypes.Date(e.Date),
		Category:    string(e.Category),
		Description: e.Description,
		AmountCents: int64(e.Amount),
		Mileage:     e.Mileage,
		ReceiptKey:  e.ReceiptKey,
		CreatedAt:   e.CreatedAt,
	}
}

func expenseFromModel(m ExpenseModel) (domain.ExpenseEntry, error) {
	cat, ok := domain.ParseExpenseCategory(m.Category)
	if !ok {
		return domain.ExpenseEntry{}, fmt.Errorf("expense %s: unknown category %q", m.ID, m.Category)
	}
	return domain.ExpenseEntry{
		ID:          m.ID,
		CreatedBy:   m.CreatedBy,
		Date:        time.Time(m.Date),
		Category:    cat,
		Description: m.Description,
		Amount:      domain.Cents(m.AmountCents),
		Mileage:     m.Mileage,
		ReceiptKey:  m.ReceiptKey,
		HasReceipt:  m.ReceiptKey != "",
		CreatedAt:   m.CreatedAt,
	}, nil
}
