package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"refurrm/internal/store"
	"refurrm/pkg/domain"
)

// memReceipts is an in-memory ReceiptStore for tests.
type memReceipts struct {
	objects map[string][]byte
}

func newMemReceipts() *memReceipts {
	return &memReceipts{objects: make(map[string][]byte)}
}

func (m *memReceipts) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = b
	return nil
}

func (m *memReceipts) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if _, ok := m.objects[key]; !ok {
		return "", errors.New("no such object")
	}
	return "https://receipts.test/" + key, nil
}

func newTestApp(t *testing.T) (*App, *memReceipts) {
	t.Helper()
	receipts := newMemReceipts()
	a := New(Config{
		Store:    store.NewMemoryStore(),
		Sessions: store.NewJWTSessionStore("test-secret", time.Hour),
		Receipts: receipts,
	})
	return a, receipts
}

func signUp(t *testing.T, a *App, email string) domain.User {
	t.Helper()
	u, _, err := a.SignUp(SignUpInput{Email: email, Password: "correct-horse", FullName: "Test User"})
	if err != nil {
		t.Fatalf("sign up %s: %v", email, err)
	}
	return u
}

func postJob(t *testing.T, a *App, admin domain.User) domain.Job {
	t.Helper()
	j, err := a.CreateJob(admin, CreateJobInput{
		ClientName:    "Acme Title",
		ServiceType:   "loan_signing",
		Address:       "42 Elm St",
		City:          "Austin",
		State:         "TX",
		ScheduledDate: "2026-09-15",
		ScheduledTime: "14:30",
		Fee:           600,
		TravelFee:     5000,
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return j
}

func TestSignUpFirstUserIsAdmin(t *testing.T) {
	a, _ := newTestApp(t)

	first := signUp(t, a, "owner@refurrm.test")
	if first.Role != domain.RoleAdmin {
		t.Fatalf("first user role = %s, want admin", first.Role)
	}
	second := signUp(t, a, "notary@refurrm.test")
	if second.Role != domain.RoleNotary {
		t.Fatalf("second user role = %s, want notary", second.Role)
	}

	if _, _, err := a.SignUp(SignUpInput{Email: "owner@refurrm.test", Password: "longenough", FullName: "Dup"}); err == nil {
		t.Fatal("duplicate email should be rejected")
	}
	var ve *ValidationError
	_, _, err := a.SignUp(SignUpInput{Email: "x@y.test", Password: "short", FullName: "X"})
	if !errors.As(err, &ve) {
		t.Fatalf("short password: got %v, want ValidationError", err)
	}
}

func TestLoginAndSessionRoundTrip(t *testing.T) {
	a, _ := newTestApp(t)
	signUp(t, a, "owner@refurrm.test")

	u, token, err := a.Login("Owner@Refurrm.Test", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	got, ok, err := a.UserFromToken(token)
	if err != nil || !ok || got.ID != u.ID {
		t.Fatalf("resolve token: ok=%v err=%v", ok, err)
	}

	if _, _, err := a.Login("owner@refurrm.test", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password: got %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := a.Login("ghost@refurrm.test", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}

func TestClaimJobConflict(t *testing.T) {
	a, _ := newTestApp(t)
	admin := signUp(t, a, "owner@refurrm.test")
	alice := signUp(t, a, "alice@refurrm.test")
	bob := signUp(t, a, "bob@refurrm.test")
	job := postJob(t, a, admin)

	claimed, err := a.ClaimJob(alice, job.ID)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if claimed.Status != domain.JobClaimed || claimed.ClaimedBy == nil || *claimed.ClaimedBy != alice.ID {
		t.Fatalf("claim result malformed: %+v", claimed)
	}

	if _, err := a.ClaimJob(bob, job.ID); !errors.Is(err, ErrClaimConflict) {
		t.Fatalf("second claim: got %v, want ErrClaimConflict", err)
	}
	if _, err := a.ClaimJob(bob, "no-such-job"); !errors.Is(err, ErrClaimConflict) {
		t.Fatalf("claim of missing job: got %v, want ErrClaimConflict", err)
	}
}

func TestCompleteJobOwnershipAndTransitions(t *testing.T) {
	a, _ := newTestApp(t)
	admin := signUp(t, a, "owner@refurrm.test")
	alice := signUp(t, a, "alice@refurrm.test")
	bob := signUp(t, a, "bob@refurrm.test")
	job := postJob(t, a, admin)

	// Completing an unclaimed job is a bad transition regardless of actor.
	if _, err := a.CompleteJob(alice, job.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("complete unclaimed: got %v, want ErrInvalidTransition", err)
	}

	if _, err := a.ClaimJob(alice, job.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := a.CompleteJob(bob, job.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("complete by non-claimant: got %v, want ErrForbidden", err)
	}

	done, err := a.CompleteJob(alice, job.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != domain.JobCompleted || done.CompletedAt == nil {
		t.Fatalf("completed job malformed: %+v", done)
	}

	// Terminal state: even the claimant cannot transition again.
	if _, err := a.CancelJob(alice, job.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancel after complete: got %v, want ErrInvalidTransition", err)
	}
}

func TestCancelledJobStaysOffTheBoard(t *testing.T) {
	a, _ := newTestApp(t)
	admin := signUp(t, a, "owner@refurrm.test")
	alice := signUp(t, a, "alice@refurrm.test")
	job := postJob(t, a, admin)

	if _, err := a.ClaimJob(alice, job.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	cancelled, err := a.CancelJob(alice, job.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.JobCancelled || cancelled.ClaimedBy == nil {
		t.Fatalf("cancelled job malformed: %+v", cancelled)
	}

	open, err := a.ListOpenJobs()
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("cancelled job leaked back into the pool: %+v", open)
	}
}

func TestGetJobVisibility(t *testing.T) {
	a, _ := newTestApp(t)
	admin := signUp(t, a, "owner@refurrm.test")
	alice := signUp(t, a, "alice@refurrm.test")
	bob := signUp(t, a, "bob@refurrm.test")
	job := postJob(t, a, admin)

	if _, err := a.GetJob(alice, job.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("unclaimed job visible to notary: got %v", err)
	}
	if _, err := a.GetJob(admin, job.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if _, err := a.ClaimJob(alice, job.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := a.GetJob(alice, job.ID); err != nil {
		t.Fatalf("claimant get: %v", err)
	}
	if _, err := a.GetJob(bob, job.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("other notary get: got %v, want ErrForbidden", err)
	}
	if _, err := a.GetJob(admin, "no-such-job"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing job: got %v, want ErrNotFound", err)
	}
}

func TestRecordSessionDefaultsAndTotal(t *testing.T) {
	a, _ := newTestApp(t)
	signUp(t, a, "owner@refurrm.test")
	alice := signUp(t, a, "alice@refurrm.test")

	travel := domain.Cents(5000)
	e, err := a.RecordSession(alice, RecordSessionInput{
		ActType:      "acknowledgment",
		DocumentType: "Deed of Trust",
		SessionDate:  "2026-08-20",
		SessionTime:  "10:15",
		SignerName:   "Jane Roe",
		IDType:       "Driver License",
		IDLastFour:   "1234",
		TravelFee:    &travel,
		Mileage:      12.5,
	})
	if err != nil {
		t.Fatalf("record session: %v", err)
	}
	if e.NotaryFee.String() != "6.00" {
		t.Fatalf("default notary fee = %s, want 6.00", e.NotaryFee)
	}
	if e.TotalFee.String() != "56.00" {
		t.Fatalf("total fee = %s, want 56.00", e.TotalFee)
	}
	if e.NotaryID != alice.ID {
		t.Fatalf("entry attributed to %s, want %s", e.NotaryID, alice.ID)
	}

	var ve *ValidationError
	_, err = a.RecordSession(alice, RecordSessionInput{
		ActType:     "acknowledgment",
		SessionDate: "2026-08-20",
		SessionTime: "10:15",
		SignerName:  "Jane Roe",
		IDType:      "Driver License",
		IDLastFour:  "1234",
	})
	if !errors.As(err, &ve) || ve.Field != "documentType" {
		t.Fatalf("missing documentType: got %v", err)
	}
}

func TestSessionListingIsScopedPerNotary(t *testing.T) {
	a, _ := newTestApp(t)
	admin := signUp(t, a, "owner@refurrm.test")
	alice := signUp(t, a, "alice@refurrm.test")
	bob := signUp(t, a, "bob@refurrm.test")

	record := func(actor domain.User, signer string) {
		t.Helper()
		_, err := a.RecordSession(actor, RecordSessionInput{
			ActType:      "jurat",
			DocumentType: "Affidavit",
			SessionDate:  "2026-08-20",
			SessionTime:  "09:00",
			SignerName:   signer,
			IDType:       "Passport",
			IDLastFour:   "9876",
		})
		if err != nil {
			t.Fatalf("record for %s: %v", actor.Email, err)
		}
	}
	record(alice, "Signer A")
	record(alice, "Signer B")
	record(bob, "Signer C")

	mine, err := a.ListSessions(alice, SessionQuery{})
	if err != nil || len(mine) != 2 {
		t.Fatalf("alice sees %d entries (err=%v), want 2", len(mine), err)
	}
	all, err := a.ListSessions(admin, SessionQuery{})
	if err != nil || len(all) != 3 {
		t.Fatalf("admin sees %d entries (err=%v), want 3", len(all), err)
	}

	sum, err := a.SummarizeSessions(alice, SessionQuery{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Count != 2 || sum.TotalRevenue.String() != "12.00" {
		t.Fatalf("summary = %+v, want count 2 revenue 12.00", sum)
	}
}

func TestExpensesAdminOnlyWithReceipts(t *testing.T) {
	a, receipts := newTestApp(t)
	admin := signUp(t, a, "owner@refurrm.test")
	alice := signUp(t, a, "alice@refurrm.test")

	if _, err := a.RecordExpense(alice, RecordExpenseInput{Date: "2026-08-01", Category: "Supplies", Description: "Stamps", Amount: 1250}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("notary recording expense: got %v, want ErrForbidden", err)
	}

	e, err := a.RecordExpense(admin, RecordExpenseInput{Date: "2026-08-01", Category: "supplies", Description: "Stamps", Amount: 1250, Mileage: 3})
	if err != nil {
		t.Fatalf("record expense: %v", err)
	}
	if e.Category != domain.ExpenseSupplies {
		t.Fatalf("category normalized to %q, want %q", e.Category, domain.ExpenseSupplies)
	}
	if _, err := a.RecordExpense(admin, RecordExpenseInput{Date: "2026-08-02", Category: "Gadgets", Description: "X", Amount: 1}); err == nil {
		t.Fatal("unknown category should be rejected")
	}

	if _, err := a.ReceiptURL(context.Background(), admin, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("receipt URL without upload: got %v, want ErrNotFound", err)
	}
	body := bytes.NewReader([]byte("%PDF-1.4 receipt"))
	if err := a.AttachReceipt(context.Background(), admin, e.ID, body, int64(body.Len()), "application/pdf"); err != nil {
		t.Fatalf("attach receipt: %v", err)
	}
	if _, ok := receipts.objects["receipts/"+e.ID]; !ok {
		t.Fatal("receipt object not stored")
	}
	url, err := a.ReceiptURL(context.Background(), admin, e.ID)
	if err != nil || url == "" {
		t.Fatalf("receipt URL: %q err=%v", url, err)
	}

	sum, err := a.SummarizeExpenses(admin)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Count != 1 || sum.TotalAmount != 1250 || sum.ByCategory[domain.ExpenseSupplies] != 1250 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestProfileUpsertKeepsAccountEmail(t *testing.T) {
	a, _ := newTestApp(t)
	signUp(t, a, "owner@refurrm.test")
	alice := signUp(t, a, "alice@refurrm.test")

	skeleton, err := a.GetMyProfile(alice)
	if err != nil {
		t.Fatalf("get fresh profile: %v", err)
	}
	if skeleton.Email != alice.Email || skeleton.FullName != alice.FullName {
		t.Fatalf("skeleton not seeded from account: %+v", skeleton)
	}

	p, err := a.UpsertMyProfile(alice, UpsertProfileInput{
		FullName:         "Alice A. Notary",
		Phone:            "512-555-0101",
		City:             "Austin",
		State:            "TX",
		CommissionNumber: "TX-133700",
		Available:        true,
	})
	if err != nil {
		t.Fatalf("upsert profile: %v", err)
	}
	if p.Email != alice.Email {
		t.Fatalf("profile email = %s, want account email %s", p.Email, alice.Email)
	}

	again, err := a.UpsertMyProfile(alice, UpsertProfileInput{FullName: "Alice A. Notary", Available: false})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if !again.CreatedAt.Equal(p.CreatedAt) {
		t.Fatalf("createdAt changed across upserts: %v vs %v", again.CreatedAt, p.CreatedAt)
	}
}
