package store

import (
	"sync"
	"testing"
	"time"

	"refurrm/pkg/domain"
)

// The compiler holds MemoryStore to the same contract as GormStore.
var _ Store = (*MemoryStore)(nil)
var _ Store = (*GormStore)(nil)

var _ SessionStore = (*JWTSessionStore)(nil)
var _ SessionStore = (*RedisSessionStore)(nil)

func openJob(id string, day int) domain.Job {
	now := time.Now().UTC()
	return domain.Job{
		ID:            id,
		ClientName:    "Client " + id,
		ServiceType:   domain.ActAcknowledgment,
		Address:       "100 Main St",
		City:          "Austin",
		State:         "TX",
		ScheduledDate: time.Date(2026, 9, day, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "10:00",
		Fee:           1000,
		TravelFee:     5000,
		Status:        domain.JobOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestListOpenJobsOrderAndFilter(t *testing.T) {
	m := NewMemoryStore()
	for id, day := range map[string]int{"j-late": 20, "j-early": 5, "j-mid": 12} {
		if err := m.CreateJob(openJob(id, day)); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if ok, err := m.ClaimJob("j-mid", "notary-1", time.Now().UTC()); err != nil || !ok {
		t.Fatalf("claim j-mid: ok=%v err=%v", ok, err)
	}

	open, err := m.ListOpenJobs()
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 2 || open[0].ID != "j-early" || open[1].ID != "j-late" {
		t.Fatalf("unexpected open jobs: %+v", open)
	}
	for _, j := range open {
		if j.Status != domain.JobOpen {
			t.Fatalf("open listing leaked status %s", j.Status)
		}
	}
}

func TestClaimJobIsExclusiveUnderConcurrency(t *testing.T) {
	m := NewMemoryStore()
	if err := m.CreateJob(openJob("j-1", 10)); err != nil {
		t.Fatalf("create: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]bool, 2)
	claimants := []string{"notary-a", "notary-b"}
	for i := range claimants {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := m.ClaimJob("j-1", claimants[i], time.Now().UTC())
			if err != nil {
				t.Errorf("claim by %s: %v", claimants[i], err)
			}
			results[i] = ok
		}(i)
	}
	wg.Wait()

	if results[0] == results[1] {
		t.Fatalf("exactly one claim must win, got %v", results)
	}
	j, ok, err := m.GetJob("j-1")
	if err != nil || !ok {
		t.Fatalf("get job: ok=%v err=%v", ok, err)
	}
	if j.Status != domain.JobClaimed || j.ClaimedBy == nil || j.ClaimedAt == nil {
		t.Fatalf("job not properly claimed: %+v", j)
	}
	winner := claimants[0]
	if results[1] {
		winner = claimants[1]
	}
	if *j.ClaimedBy != winner {
		t.Fatalf("claimed_by = %s, want %s", *j.ClaimedBy, winner)
	}
}

func TestCompleteAndCancelRequireClaimedStatus(t *testing.T) {
	m := NewMemoryStore()
	if err := m.CreateJob(openJob("j-1", 10)); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Not claimed yet: both transitions refuse and write nothing.
	if ok, _ := m.CompleteJob("j-1", time.Now().UTC()); ok {
		t.Fatalf("complete should fail for open job")
	}
	if ok, _ := m.CancelJob("j-1", time.Now().UTC()); ok {
		t.Fatalf("cancel should fail for open job")
	}
	j, _, _ := m.GetJob("j-1")
	if j.Status != domain.JobOpen || j.CompletedAt != nil {
		t.Fatalf("failed transition must not modify the row: %+v", j)
	}

	if ok, err := m.ClaimJob("j-1", "notary-a", time.Now().UTC()); err != nil || !ok {
		t.Fatalf("claim: ok=%v err=%v", ok, err)
	}
	if ok, err := m.CompleteJob("j-1", time.Now().UTC()); err != nil || !ok {
		t.Fatalf("complete: ok=%v err=%v", ok, err)
	}
	j, _, _ = m.GetJob("j-1")
	if j.Status != domain.JobCompleted || j.CompletedAt == nil {
		t.Fatalf("completed job malformed: %+v", j)
	}

	// Terminal: no way back.
	if ok, _ := m.ClaimJob("j-1", "notary-b", time.Now().UTC()); ok {
		t.Fatalf("claim should fail for completed job")
	}
	if ok, _ := m.CancelJob("j-1", time.Now().UTC()); ok {
		t.Fatalf("cancel should fail for completed job")
	}
}

func TestListSessionsFilterAndOrder(t *testing.T) {
	m := NewMemoryStore()
	entries := []domain.SessionLogEntry{
		{ID: "s-1", NotaryID: "n-1", ActType: domain.ActJurat, DocumentType: "Affidavit", SignerName: "Jane Roe",
			SessionDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), SessionTime: "09:00"},
		{ID: "s-2", NotaryID: "n-1", ActType: domain.ActAcknowledgment, DocumentType: "Deed", SignerName: "John Doe",
			SessionDate: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), SessionTime: "14:00"},
		{ID: "s-3", NotaryID: "n-2", ActType: domain.ActJurat, DocumentType: "Affidavit", SignerName: "Ann Smith",
			SessionDate: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), SessionTime: "11:00"},
	}
	for _, e := range entries {
		if err := m.AppendSession(e); err != nil {
			t.Fatalf("append %s: %v", e.ID, err)
		}
	}

	all, err := m.ListSessions(SessionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != "s-2" || all[1].ID != "s-3" || all[2].ID != "s-1" {
		t.Fatalf("wrong order: %+v", all)
	}

	mine, err := m.ListSessions(SessionFilter{NotaryID: "n-1"})
	if err != nil || len(mine) != 2 {
		t.Fatalf("notary filter: n=%d err=%v", len(mine), err)
	}

	jurats, err := m.ListSessions(SessionFilter{ActType: domain.ActJurat})
	if err != nil || len(jurats) != 2 {
		t.Fatalf("act filter: n=%d err=%v", len(jurats), err)
	}

	byText, err := m.ListSessions(SessionFilter{Search: "deed"})
	if err != nil || len(byText) != 1 || byText[0].ID != "s-2" {
		t.Fatalf("search filter: %+v err=%v", byText, err)
	}

	from := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	recent, err := m.ListSessions(SessionFilter{From: &from})
	if err != nil || len(recent) != 2 {
		t.Fatalf("date filter: n=%d err=%v", len(recent), err)
	}
}
