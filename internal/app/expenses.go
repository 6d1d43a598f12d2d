package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"refurrm/internal/util"
	"refurrm/pkg/domain"
)

// RecordExpenseInput is the payload for a bookkeeping expense.
type RecordExpenseInput struct {
	Date        string       `json:"date"` // YYYY-MM-DD
	Category    string       `json:"category"`
	Description string       `json:"description"`
	Amount      domain.Cents `json:"amount"`
	Mileage     float64      `json:"mileage"`
}

// RecordExpense stores a business expense. Admin only.
func (a *App) RecordExpense(actor domain.User, in RecordExpenseInput) (domain.ExpenseEntry, error) {
	if actor.Role != domain.RoleAdmin {
		return domain.ExpenseEntry{}, ErrForbidden
	}
	day, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return domain.ExpenseEntry{}, &ValidationError{Field: "date (YYYY-MM-DD)"}
	}
	cat, ok := domain.ParseExpenseCategory(in.Category)
	if !ok {
		return domain.ExpenseEntry{}, &ValidationError{Field: "category (valid expense category)"}
	}
	if strings.TrimSpace(in.Description) == "" {
		return domain.ExpenseEntry{}, missing("description")
	}
	if in.Amount < 0 {
		return domain.ExpenseEntry{}, &ValidationError{Field: "amount (non-negative)"}
	}
	if in.Mileage < 0 {
		return domain.ExpenseEntry{}, &ValidationError{Field: "mileage (non-negative)"}
	}

	e := domain.ExpenseEntry{
		ID:          util.NewID(),
		CreatedBy:   actor.ID,
		Date:        day,
		Category:    cat,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Mileage:     in.Mileage,
		CreatedAt:   a.now(),
	}
	if err := a.store.SaveExpense(e); err != nil {
		return domain.ExpenseEntry{}, fmt.Errorf("save expense: %w", err)
	}
	slog.Info("expense recorded", "expense_id", e.ID, "category", e.Category)
	return e, nil
}

// ListExpenses returns all expenses, newest date first. Admin only.
func (a *App) ListExpenses(actor domain.User) ([]domain.ExpenseEntry, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	return a.store.ListExpenses()
}

// ExpenseSummary aggregates spend per category plus overall totals.
type ExpenseSummary struct {
	Count        int                                     `json:"count"`
	TotalAmount  domain.Cents                            `json:"totalAmount"`
	TotalMileage float64                                 `json:"totalMileage"`
	ByCategory   map[domain.ExpenseCategory]domain.Cents `json:"byCategory"`
}

// SummarizeExpenses totals all recorded expenses. Admin only.
func (a *App) SummarizeExpenses(actor domain.User) (ExpenseSummary, error) {
	entries, err := a.ListExpenses(actor)
	if err != nil {
		return ExpenseSummary{}, err
	}
	s := ExpenseSummary{ByCategory: make(map[domain.ExpenseCategory]domain.Cents)}
	for _, e := range entries {
		s.Count++
		s.TotalAmount += e.Amount
		s.TotalMileage += e.Mileage
		s.ByCategory[e.Category] += e.Amount
	}
	return s, nil
}

// AttachReceipt uploads a receipt file for an expense and links it to the
// record. Admin only.
func (a *App) AttachReceipt(ctx context.Context, actor domain.User, expenseID string, r io.Reader, size int64, contentType string) error {
	if actor.Role != domain.RoleAdmin {
		return ErrForbidden
	}
	if a.receipts == nil {
		return fmt.Errorf("receipt storage is not configured")
	}
	if _, ok, err := a.store.GetExpense(expenseID); err != nil {
		return fmt.Errorf("get expense: %w", err)
	} else if !ok {
		return ErrNotFound
	}
	key := "receipts/" + expenseID
	if err := a.receipts.Put(ctx, key, r, size, contentType); err != nil {
		return fmt.Errorf("upload receipt: %w", err)
	}
	if err := a.store.SetExpenseReceipt(expenseID, key); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("link receipt: %w", err)
	}
	slog.Info("receipt attached", "expense_id", expenseID)
	return nil
}

// ReceiptURL returns a short-lived download URL for an expense receipt.
// Admin only.
func (a *App) ReceiptURL(ctx context.Context, actor domain.User, expenseID string) (string, error) {
	if actor.Role != domain.RoleAdmin {
		return "", ErrForbidden
	}
	if a.receipts == nil {
		return "", fmt.Errorf("receipt storage is not configured")
	}
	e, ok, err := a.store.GetExpense(expenseID)
	if err != nil {
		return "", fmt.Errorf("get expense: %w", err)
	}
	if !ok || e.ReceiptKey == "" {
		return "", ErrNotFound
	}
	return a.receipts.PresignGet(ctx, e.ReceiptKey, 15*time.Minute)
}
