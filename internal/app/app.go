package app

import (
	"time"

	"refurrm/internal/storage"
	"refurrm/internal/store"
)

// App carries the business operations of the portal: accounts, the job
// board, the session journal, expenses, and notary profiles. HTTP handlers
// call into App; App talks to the stores.
type App struct {
	store    store.Store
	sessions store.SessionStore
	receipts storage.ReceiptStore
	now      func() time.Time
}

// Config wires an App.
type Config struct {
	Store    store.Store
	Sessions store.SessionStore
	Receipts storage.ReceiptStore
}

func New(cfg Config) *App {
	return &App{
		store:    cfg.Store,
		sessions: cfg.Sessions,
		receipts: cfg.Receipts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}
