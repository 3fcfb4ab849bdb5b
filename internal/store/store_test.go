package store

import (
	"errors"
	"testing"
	"time"

	"github.com/sadopc/fundr/internal/projection"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fixedClock pins the store clock and returns a function that moves it.
func fixedClock(s *Store, start time.Time) func(d time.Duration) {
	now := start
	s.SetClock(func() time.Time { return now })
	return func(d time.Duration) { now = now.Add(d) }
}

func createProfile(t *testing.T, s *Store, name string, employment projection.EmploymentKind) *Profile {
	t.Helper()
	p, err := s.CreateProfile(projection.PayrollProfile{
		Name:         name,
		HourlyRate:   15,
		Employment:   employment,
		Frequency:    projection.Biweekly,
		PayDayAnchor: "2025-03-03",
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/fundr.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateAccount("Checking", projection.AccountDebit, 10, 0); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	accounts, _ := s2.ListAccounts()
	if len(accounts) != 1 {
		t.Fatalf("expected data to survive reopen, got %d accounts", len(accounts))
	}
}

func TestDefaultDBPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/tmp/xdg/fundr/fundr.db" {
		t.Fatalf("unexpected path %s", path)
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Accounts
// ============================================================

func TestCreateAndGetAccount(t *testing.T) {
	s := newTestStore(t)
	a, err := s.CreateAccount("Checking", projection.AccountDebit, 1250.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == "" || a.Name != "Checking" || a.Kind != projection.AccountDebit || a.Balance != 1250.5 {
		t.Fatalf("unexpected account %+v", a)
	}

	got, err := s.GetAccount(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *a {
		t.Fatalf("expected %+v, got %+v", a, got)
	}
}

func TestCreateAccountDuplicateName(t *testing.T) {
	s := newTestStore(t)
	s.CreateAccount("Wallet", projection.AccountCash, 0, 0)
	if _, err := s.CreateAccount("Wallet", projection.AccountCash, 0, 0); err == nil {
		t.Fatal("expected unique constraint error")
	}
}

func TestGetAccountNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetAccount("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAndDeleteAccount(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.CreateAccount("Card", projection.AccountDebit, 0, 0)

	if err := s.UpdateAccount(a.ID, "Visa", projection.AccountCredit, 2000); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetAccount(a.ID)
	if got.Name != "Visa" || got.Kind != projection.AccountCredit || got.CreditLimit != 2000 {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := s.DeleteAccount(a.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteAccount(a.ID); !IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestApplyTransaction(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.CreateAccount("Checking", projection.AccountDebit, 100, 0)

	if _, err := s.ApplyTransaction(a.ID, -20.105, "groceries"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ApplyTransaction(a.ID, 0.1, "interest"); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetAccount(a.ID)
	if got.Balance != 79.99 {
		t.Fatalf("expected 79.99, got %v", got.Balance)
	}

	txs, err := s.ListTransactions(a.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].Note != "interest" {
		t.Fatalf("expected newest first, got %s", txs[0].Note)
	}
}

func TestApplyTransactionUnknownAccount(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.ApplyTransaction("missing", 10, ""); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTotalBalance(t *testing.T) {
	s := newTestStore(t)
	total, err := s.TotalBalance()
	if err != nil || total != 0 {
		t.Fatalf("expected 0 for empty store, got %v (%v)", total, err)
	}

	s.CreateAccount("A", projection.AccountDebit, 600, 0)
	s.CreateAccount("B", projection.AccountCash, 400, 0)
	total, _ = s.TotalBalance()
	if total != 1000 {
		t.Fatalf("expected 1000, got %v", total)
	}
}

// ============================================================
// Payroll profiles
// ============================================================

func TestCreateAndGetProfile(t *testing.T) {
	s := newTestStore(t)
	p := createProfile(t, s, "Cafe", projection.PartTime)

	if p.ID == "" || p.Name != "Cafe" || p.Frequency != projection.Biweekly || p.WorkDays != 5 {
		t.Fatalf("unexpected profile %+v", p)
	}
	if p.CreatedAt.IsZero() {
		t.Fatal("expected created_at")
	}
}

func TestListProfilesArchived(t *testing.T) {
	s := newTestStore(t)
	a := createProfile(t, s, "Acme", projection.FullTime)
	createProfile(t, s, "Bakery", projection.PartTime)

	if err := s.ArchiveProfile(a.ID); err != nil {
		t.Fatal(err)
	}

	active, _ := s.ListProfiles(false)
	if len(active) != 1 || active[0].Name != "Bakery" {
		t.Fatalf("expected only Bakery, got %+v", active)
	}
	all, _ := s.ListProfiles(true)
	if len(all) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(all))
	}
}

func TestUpdateProfile(t *testing.T) {
	s := newTestStore(t)
	p := createProfile(t, s, "Cafe", projection.PartTime)

	p.HourlyRate = 18
	p.Frequency = projection.Monthly
	if err := s.UpdateProfile(p.PayrollProfile); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetProfile(p.ID)
	if got.HourlyRate != 18 || got.Frequency != projection.Monthly {
		t.Fatalf("update not applied: %+v", got)
	}

	p.ID = "missing"
	if err := s.UpdateProfile(p.PayrollProfile); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProfileUnknownFrequencyLoads(t *testing.T) {
	s := newTestStore(t)
	p := createProfile(t, s, "Cafe", projection.PartTime)
	s.db.Exec(`UPDATE payroll_profiles SET frequency = 'hourly' WHERE id = ?`, p.ID)

	got, err := s.GetProfile(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Frequency != projection.FrequencyUnknown {
		t.Fatalf("expected unknown frequency, got %v", got.Frequency)
	}
}

// ============================================================
// Work shifts
// ============================================================

func TestShiftClock(t *testing.T) {
	s := newTestStore(t)
	advance := fixedClock(s, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	p := createProfile(t, s, "Cafe", projection.PartTime)

	sh, err := s.StartShift(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !sh.Running() || sh.Date != "2025-03-10" {
		t.Fatalf("unexpected running shift %+v", sh)
	}

	running, _ := s.GetRunningShift()
	if running == nil || running.ID != sh.ID {
		t.Fatal("expected running shift")
	}

	advance(8*time.Hour + 30*time.Minute)
	done, err := s.StopShift(sh.ID)
	if err != nil {
		t.Fatal(err)
	}
	if done.Running() {
		t.Fatal("expected shift to be stopped")
	}
	if done.Hours != 8.5 || done.TotalPay != 127.5 {
		t.Fatalf("expected 8.5h / 127.5, got %vh / %v", done.Hours, done.TotalPay)
	}
	if done.PaymentDate != "2025-03-17" {
		t.Fatalf("expected payment 2025-03-17, got %s", done.PaymentDate)
	}
	if done.Status != projection.ShiftPending {
		t.Fatalf("expected pending, got %s", done.Status)
	}

	running, _ = s.GetRunningShift()
	if running != nil {
		t.Fatal("expected no running shift")
	}
}

func TestStartShiftWhileRunning(t *testing.T) {
	s := newTestStore(t)
	p := createProfile(t, s, "Cafe", projection.PartTime)

	if _, err := s.StartShift(p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.StartShift(p.ID); err == nil {
		t.Fatal("expected error starting a second shift")
	}
}

func TestStartShiftUnknownProfile(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.StartShift("missing"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStopShiftNotRunning(t *testing.T) {
	s := newTestStore(t)
	p := createProfile(t, s, "Cafe", projection.PartTime)
	sh, _ := s.AddShift(p.ID, "2025-03-10", 4, "")

	if _, err := s.StopShift(sh.ID); err == nil {
		t.Fatal("expected error stopping a manual shift")
	}
	if _, err := s.StopShift("missing"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddShift(t *testing.T) {
	s := newTestStore(t)
	p := createProfile(t, s, "Cafe", projection.PartTime)

	sh, err := s.AddShift(p.ID, "2025-03-10", 6.25, "")
	if err != nil {
		t.Fatal(err)
	}
	if sh.TotalPay != 93.75 || sh.PaymentDate != "2025-03-17" {
		t.Fatalf("unexpected shift %+v", sh)
	}

	explicit, _ := s.AddShift(p.ID, "2025-03-10", 1, "2025-04-01")
	if explicit.PaymentDate != "2025-04-01" {
		t.Fatalf("expected explicit payment date, got %s", explicit.PaymentDate)
	}
}

func TestListShiftsFilters(t *testing.T) {
	s := newTestStore(t)
	cafe := createProfile(t, s, "Cafe", projection.PartTime)
	bar := createProfile(t, s, "Bar", projection.PartTime)

	s.AddShift(cafe.ID, "2025-03-01", 4, "")
	paid, _ := s.AddShift(cafe.ID, "2025-03-02", 4, "")
	s.AddShift(bar.ID, "2025-03-03", 4, "")
	s.MarkShiftPaid(paid.ID)
	s.StartShift(bar.ID)

	tests := []struct {
		name   string
		filter ShiftFilter
		want   int
	}{
		{"all", ShiftFilter{}, 4},
		{"profile", ShiftFilter{ProfileID: cafe.ID}, 2},
		{"pending", ShiftFilter{PendingOnly: true}, 2},
		{"date range", ShiftFilter{From: "2025-03-02", To: "2025-03-03"}, 1},
		{"limit", ShiftFilter{Limit: 3}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListShifts(tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Fatalf("expected %d shifts, got %d", tt.want, len(got))
			}
		})
	}
}

func TestPendingDueAndSettle(t *testing.T) {
	s := newTestStore(t)
	p := createProfile(t, s, "Cafe", projection.PartTime)
	a, _ := s.CreateAccount("Checking", projection.AccountDebit, 100, 0)

	due, _ := s.AddShift(p.ID, "2025-03-10", 4, "")
	s.AddShift(p.ID, "2025-03-20", 4, "")

	pending, err := s.PendingDue("2025-03-17")
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != due.ID {
		t.Fatalf("expected one due shift, got %+v", pending)
	}

	if err := s.SettleShift(due.ID, a.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetAccount(a.ID)
	if got.Balance != 160 {
		t.Fatalf("expected balance 160, got %v", got.Balance)
	}
	if err := s.SettleShift(due.ID, a.ID); err == nil {
		t.Fatal("expected error settling twice")
	}

	pending, _ = s.PendingDue("2025-03-17")
	if len(pending) != 0 {
		t.Fatalf("expected nothing due, got %d", len(pending))
	}
}

func TestSettleShiftWithoutAccount(t *testing.T) {
	s := newTestStore(t)
	p := createProfile(t, s, "Cafe", projection.PartTime)
	sh, _ := s.AddShift(p.ID, "2025-03-10", 4, "")

	if err := s.SettleShift(sh.ID, ""); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetShift(sh.ID)
	if got.Status != projection.ShiftPaid {
		t.Fatalf("expected paid, got %s", got.Status)
	}
}

func TestSettleShiftRollsBackOnBadAccount(t *testing.T) {
	s := newTestStore(t)
	p := createProfile(t, s, "Cafe", projection.PartTime)
	sh, _ := s.AddShift(p.ID, "2025-03-10", 4, "")

	if err := s.SettleShift(sh.ID, "missing"); err == nil {
		t.Fatal("expected error for unknown account")
	}
	got, _ := s.GetShift(sh.ID)
	if got.Status != projection.ShiftPending {
		t.Fatalf("expected rollback to keep shift pending, got %s", got.Status)
	}
}

// ============================================================
// Budgets and subscriptions
// ============================================================

func TestBudgets(t *testing.T) {
	s := newTestStore(t)
	b, err := s.CreateBudget("Food", 300)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetBudgetActive(b.ID, false); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateBudget(b.ID, "Groceries", 320); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetBudget(b.ID)
	if !got.Paused || got.Category != "Groceries" || got.Limit != 320 {
		t.Fatalf("unexpected budget %+v", got)
	}

	if err := s.DeleteBudget(b.ID); err != nil {
		t.Fatal(err)
	}
	all, _ := s.ListBudgets()
	if len(all) != 0 {
		t.Fatalf("expected no budgets, got %d", len(all))
	}
}

func TestSubscriptions(t *testing.T) {
	s := newTestStore(t)
	s.CreateSubscription("Gym", 35, 28)
	music, _ := s.CreateSubscription("Music", 9.99, 5)

	subs, err := s.ListSubscriptions()
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 || subs[0].Name != "Music" {
		t.Fatalf("expected billing day order, got %+v", subs)
	}

	s.SetSubscriptionActive(music.ID, false)
	s.UpdateSubscription(music.ID, "Music Family", 14.99, 6)
	got, _ := s.GetSubscription(music.ID)
	if !got.Paused || got.Price != 14.99 || got.BillingDay != 6 {
		t.Fatalf("unexpected subscription %+v", got)
	}

	if err := s.DeleteSubscription("missing"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// ============================================================
// Goals
// ============================================================

func TestGoals(t *testing.T) {
	s := newTestStore(t)
	g, err := s.CreateGoal(projection.Goal{
		Name: "Laptop", Target: 1000, Installment: 250, Frequency: projection.Monthly, StartDate: "2025-01-01",
	})
	if err != nil {
		t.Fatal(err)
	}
	if g.Frequency != projection.Monthly || g.StartDate != "2025-01-01" {
		t.Fatalf("unexpected goal %+v", g)
	}

	g, err = s.Contribute(g.ID, 120.456)
	if err != nil {
		t.Fatal(err)
	}
	if g.Saved != 120.46 {
		t.Fatalf("expected 120.46 saved, got %v", g.Saved)
	}

	g, _ = s.Contribute(g.ID, -500)
	if g.Saved != 0 {
		t.Fatalf("expected withdrawals to stop at zero, got %v", g.Saved)
	}

	g.Installment = 100
	g.Frequency = projection.Weekly
	if err := s.UpdateGoal(*g); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetGoal(g.ID)
	if got.Installment != 100 || got.Frequency != projection.Weekly {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := s.DeleteGoal(g.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetGoal(g.ID); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// ============================================================
// Events
// ============================================================

func TestEventsWithItems(t *testing.T) {
	s := newTestStore(t)
	e, err := s.CreateEvent("Birthday", "2025-05-04")
	if err != nil {
		t.Fatal(err)
	}
	cake, _ := s.AddEventItem(e.ID, "Cake", 40)
	s.AddEventItem(e.ID, "Gift", 120)

	if err := s.SetItemChecked(cake.ID, true); err != nil {
		t.Fatal(err)
	}

	events, err := s.ListEvents()
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || len(events[0].Items) != 2 {
		t.Fatalf("expected one event with two items, got %+v", events)
	}
	if events[0].Items[0].Name != "Cake" || !events[0].Items[0].Checked {
		t.Fatalf("expected items in insertion order, got %+v", events[0].Items)
	}
	if cost := projection.UnsettledCost(events[0]); cost != 120 {
		t.Fatalf("expected unsettled cost 120, got %v", cost)
	}
}

func TestDeleteEventCascades(t *testing.T) {
	s := newTestStore(t)
	e, _ := s.CreateEvent("Trip", "2025-06-01")
	s.AddEventItem(e.ID, "Tickets", 200)

	if err := s.DeleteEvent(e.ID); err != nil {
		t.Fatal(err)
	}
	var n int
	s.db.QueryRow(`SELECT COUNT(*) FROM event_items`).Scan(&n)
	if n != 0 {
		t.Fatalf("expected items deleted with event, got %d", n)
	}
}

func TestAddEventItemUnknownEvent(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AddEventItem("missing", "Orphan", 1); err == nil {
		t.Fatal("expected foreign key error")
	}
}

// ============================================================
// Snapshot
// ============================================================

func TestSnapshot(t *testing.T) {
	s := newTestStore(t)
	s.CreateAccount("Checking", projection.AccountDebit, 600, 0)
	s.CreateAccount("Cash", projection.AccountCash, 400, 0)
	job := createProfile(t, s, "Acme", projection.FullTime)
	old := createProfile(t, s, "Old", projection.FullTime)
	s.ArchiveProfile(old.ID)

	s.AddShift(job.ID, "2025-03-10", 4, "")
	paid, _ := s.AddShift(job.ID, "2025-03-11", 4, "")
	s.MarkShiftPaid(paid.ID)

	s.CreateBudget("Food", 300)
	s.CreateSubscription("Music", 9.99, 5)
	s.CreateGoal(projection.Goal{Name: "Bike", Target: 500, Installment: 50, Frequency: projection.Weekly, StartDate: "2025-03-01"})
	e, _ := s.CreateEvent("Party", "2025-03-20")
	s.AddEventItem(e.ID, "Food", 80)

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.StartingBalance() != 1000 {
		t.Fatalf("expected 1000 starting balance, got %v", snap.StartingBalance())
	}
	if len(snap.Profiles) != 1 || snap.Profiles[0].ID != job.ID {
		t.Fatalf("expected only active profile, got %+v", snap.Profiles)
	}
	if len(snap.Shifts) != 1 {
		t.Fatalf("expected only pending shift, got %+v", snap.Shifts)
	}
	if len(snap.Budgets) != 1 || len(snap.Subscriptions) != 1 || len(snap.Goals) != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if len(snap.Events) != 1 || len(snap.Events[0].Items) != 1 {
		t.Fatalf("expected event with item, got %+v", snap.Events)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	defaults := map[string]string{
		SettingHorizonMonths:     "3",
		SettingExtraWeeklyIncome: "0",
		SettingExcludedIDs:       "",
		SettingPayoutAccount:     "",
	}

	for k, expected := range defaults {
		val, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if val != expected {
			t.Fatalf("GetSetting(%q) = %q, want %q", k, val, expected)
		}
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting("key", "v1")
	s.SetSetting("key", "v2")
	val, _ := s.GetSetting("key")
	if val != "v2" {
		t.Fatalf("expected v2, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 default settings, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("settings not sorted: %s >= %s", all[i-1].Key, all[i].Key)
		}
	}
}

func TestTypedSettings(t *testing.T) {
	s := newTestStore(t)

	if got := s.IntSetting(SettingHorizonMonths, 1); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	s.SetSetting(SettingHorizonMonths, "lots")
	if got := s.IntSetting(SettingHorizonMonths, 6); got != 6 {
		t.Fatalf("expected fallback 6, got %d", got)
	}

	s.SetSetting(SettingExtraWeeklyIncome, "42.5")
	if got := s.FloatSetting(SettingExtraWeeklyIncome, 0); got != 42.5 {
		t.Fatalf("expected 42.5, got %v", got)
	}
	if got := s.FloatSetting("missing", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %v", got)
	}
}

func TestExcludedIDs(t *testing.T) {
	s := newTestStore(t)

	ids, err := s.ExcludedIDs()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty set, got %v", ids)
	}

	if err := s.SetExcludedIDs(projection.NewIDSet("b", "a", projection.ExtraIncomeID)); err != nil {
		t.Fatal(err)
	}
	val, _ := s.GetSetting(SettingExcludedIDs)
	if val != "a,b,extra_income" {
		t.Fatalf("expected sorted ids, got %q", val)
	}
	ids, _ = s.ExcludedIDs()
	if !ids.Has("a") || !ids.Has(projection.ExtraIncomeID) || len(ids) != 3 {
		t.Fatalf("unexpected ids %v", ids)
	}
}

// ============================================================
// Foreign key constraints
// ============================================================

func TestForeignKeyShiftsProfile(t *testing.T) {
	s := newTestStore(t)
	_, err := s.db.Exec(`INSERT INTO work_shifts (id, profile_id, date) VALUES ('x', 'missing', '2025-01-01')`)
	if err == nil {
		t.Fatal("expected foreign key error")
	}
}

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
}
