package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence. Money columns are integer cents.

type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	FullName     string
	Role         string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type JobModel struct {
	ID             string `gorm:"primaryKey"`
	ClientName     string `gorm:"not null"`
	ClientEmail    string
	ClientPhone    string
	ServiceType    string `gorm:"not null"`
	Address        string `gorm:"not null"`
	City           string `gorm:"not null"`
	State          string
	ZipCode        string
	Latitude       *float64
	Longitude      *float64
	ScheduledDate  datatypes.Date `gorm:"not null;index"`
	ScheduledTime  string         `gorm:"not null"`
	FeeCents       int64          `gorm:"not null"`
	TravelFeeCents int64          `gorm:"not null"`
	Notes          string
	Status         string  `gorm:"not null;index"`
	ClaimedBy      *string `gorm:"index"`
	ClaimedAt      *time.Time
	CompletedAt    *time.Time
	CreatedBy      string
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

type ProfileModel struct {
	UserID           string `gorm:"primaryKey"`
	FullName         string `gorm:"not null"`
	Email            string `gorm:"uniqueIndex;not null"`
	Phone            string
	Address          string
	City             string
	State            string
	ZipCode          string
	Latitude         *float64
	Longitude        *float64
	CommissionNumber string
	CommissionExpiry *datatypes.Date
	Available        bool
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

type SessionLogModel struct {
	ID             string  `gorm:"primaryKey"`
	NotaryID       string  `gorm:"not null;index"`
	JobID          *string `gorm:"index"`
	ActType        string  `gorm:"not null;index"`
	DocumentType   string  `gorm:"not null"`
	SessionDate    datatypes.Date `gorm:"not null;index"`
	SessionTime    string         `gorm:"not null"`
	SignerName     string         `gorm:"not null"`
	SignerAddress  string
	IDType         string `gorm:"not null"`
	IDLastFour     string `gorm:"not null"`
	IDExpiry       *datatypes.Date
	NotaryFeeCents int64 `gorm:"not null"`
	TravelFeeCents int64 `gorm:"not null"`
	Mileage        float64
	Notes          string
	CreatedAt      time.Time `gorm:"not null"`
}

type ExpenseModel struct {
	ID          string         `gorm:"primaryKey"`
	CreatedBy   string         `gorm:"not null;index"`
	Date        datatypes.Date `gorm:"not null;index"`
	Category    string         `gorm:"not null"`
	Description string         `gorm:"not null"`
	AmountCents int64          `gorm:"not null"`
	Mileage     float64
	ReceiptKey  string
	CreatedAt   time.Time `gorm:"not null"`
}
