package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sadopc/fundr/internal/logging"
	"github.com/sadopc/fundr/internal/planner"
	"github.com/sadopc/fundr/internal/projection"
	"github.com/sadopc/fundr/internal/store"
)

var today = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	s.SetClock(func() time.Time { return today })

	svc := planner.NewService(s, logging.Discard())
	svc.SetClock(func() time.Time { return today })
	srv := New(svc, logging.Discard(), func() planner.Options {
		return svc.Defaults(planner.Options{Months: 1})
	})
	return srv, s
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

// ============================================================
// Health
// ============================================================

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/api/nothing")
	if rec.Code != http.StatusNotFound || decodeError(t, rec) != "not found" {
		t.Fatalf("expected JSON 404, got %d", rec.Code)
	}
}

// ============================================================
// Forecast
// ============================================================

func TestForecast(t *testing.T) {
	srv, s := newTestServer(t)
	s.CreateAccount("Checking", projection.AccountDebit, 1000, 0)
	s.CreateSubscription("Streaming", 20, 5)

	rec := get(t, srv, "/api/forecast?months=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var f planner.Forecast
	if err := json.NewDecoder(rec.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	if len(f.Days) != 32 || f.Final != 980 {
		t.Fatalf("unexpected forecast: %d days, final %v", len(f.Days), f.Final)
	}
}

func TestForecastDefaultsFromSettings(t *testing.T) {
	srv, s := newTestServer(t)
	s.SetSetting(store.SettingHorizonMonths, "0")

	rec := get(t, srv, "/api/forecast")
	var f planner.Forecast
	json.NewDecoder(rec.Body).Decode(&f)
	if len(f.Days) != 1 {
		t.Fatalf("expected 1 day from persisted horizon, got %d", len(f.Days))
	}
}

func TestForecastExclude(t *testing.T) {
	srv, s := newTestServer(t)
	s.CreateAccount("Checking", projection.AccountDebit, 1000, 0)
	sub, _ := s.CreateSubscription("Streaming", 20, 5)
	s.SetExcludedIDs(projection.NewIDSet(sub.ID))

	var f planner.Forecast
	json.NewDecoder(get(t, srv, "/api/forecast?months=1").Body).Decode(&f)
	if f.Final != 1000 {
		t.Fatalf("expected persisted exclusion to apply, got %v", f.Final)
	}

	// an explicit empty exclude clears the persisted set
	f = planner.Forecast{}
	json.NewDecoder(get(t, srv, "/api/forecast?months=1&exclude=").Body).Decode(&f)
	if f.Final != 980 {
		t.Fatalf("expected exclusions cleared, got %v", f.Final)
	}
}

func TestForecastBadParams(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []string{
		"/api/forecast?months=abc",
		"/api/forecast?months=-2",
		"/api/forecast?extra=lots",
		"/api/forecast?extra=Inf",
		"/api/forecast?extra=-Inf",
		"/api/forecast?extra=NaN",
		"/api/forecast?extra=-500",
		"/api/forecast?months=121",
		"/api/forecast?months=2000000",
		"/api/goals?extra=Inf",
		"/api/goals?months=2000000",
	}
	for _, target := range tests {
		rec := get(t, srv, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
			continue
		}
		if decodeError(t, rec) == "" {
			t.Errorf("%s: expected error message", target)
		}
	}
}

func TestForecastHorizonLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, fmt.Sprintf("/api/forecast?months=%d", projection.MaxMonths))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 at the limit, got %d", rec.Code)
	}
	var f planner.Forecast
	if err := json.NewDecoder(rec.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	want := projection.DaysBetween(today, today.AddDate(0, projection.MaxMonths, 0)) + 1
	if len(f.Days) != want {
		t.Fatalf("expected %d days, got %d", want, len(f.Days))
	}
}

func TestForecastReportsOverdueShifts(t *testing.T) {
	srv, s := newTestServer(t)
	p, _ := s.CreateProfile(projection.PayrollProfile{
		Name: "Cafe", HourlyRate: 10, Employment: projection.PartTime, Frequency: projection.Immediate,
	})
	s.AddShift(p.ID, "2025-02-20", 3, "")

	var f planner.Forecast
	json.NewDecoder(get(t, srv, "/api/forecast?months=0").Body).Decode(&f)
	if f.Overdue != 1 || f.OverduePay != 30 {
		t.Fatalf("expected 1 overdue shift worth 30, got %d / %v", f.Overdue, f.OverduePay)
	}
}

// ============================================================
// Pay date
// ============================================================

func TestPayDate(t *testing.T) {
	srv, s := newTestServer(t)
	p, _ := s.CreateProfile(projection.PayrollProfile{
		Name: "Cafe", HourlyRate: 15, Employment: projection.PartTime,
		Frequency: projection.Biweekly, PayDayAnchor: "2025-03-03",
	})

	rec := get(t, srv, "/api/paydate?profile="+p.ID+"&date=2025-03-10")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["payment_date"] != "2025-03-17" {
		t.Fatalf("expected 2025-03-17, got %v", body)
	}
}

func TestPayDateErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		target string
		code   int
	}{
		{"/api/paydate", http.StatusBadRequest},
		{"/api/paydate?profile=x&date=03/10/2025", http.StatusBadRequest},
		{"/api/paydate?profile=missing&date=2025-03-10", http.StatusNotFound},
	}
	for _, tt := range tests {
		if rec := get(t, srv, tt.target); rec.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.target, tt.code, rec.Code)
		}
	}
}

// ============================================================
// Goals
// ============================================================

func TestGoals(t *testing.T) {
	srv, s := newTestServer(t)

	rec := get(t, srv, "/api/goals")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %s", rec.Body)
	}

	g, _ := s.CreateGoal(projection.Goal{
		Name: "Laptop", Target: 500, Installment: 250, Frequency: projection.Monthly, StartDate: "2025-03-01",
	})

	var reports []planner.GoalReport
	json.NewDecoder(get(t, srv, "/api/goals?months=3").Body).Decode(&reports)
	if len(reports) != 1 || reports[0].SimulatedDate != "2025-04-01" {
		t.Fatalf("unexpected reports %+v", reports)
	}

	var one planner.GoalReport
	rec = get(t, srv, "/api/goals/"+g.ID+"?months=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	json.NewDecoder(rec.Body).Decode(&one)
	if one.Goal.ID != g.ID || one.Progress.InstallmentsLeft != 2 {
		t.Fatalf("unexpected report %+v", one)
	}

	if rec := get(t, srv, "/api/goals/missing"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

// ============================================================
// Middleware
// ============================================================

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	s, _ := store.NewMemory()
	defer s.Close()
	svc := planner.NewService(s, logger)
	srv := New(svc, logger, func() planner.Options { return planner.Options{} })

	get(t, srv, "/healthz")
	out := buf.String()
	if !strings.Contains(out, `"path":"/healthz"`) || !strings.Contains(out, `"status":200`) {
		t.Fatalf("expected request log, got %q", out)
	}
}

func TestRecoverer(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestWriteJSONUnencodable(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	srv := &Server{log: logger}

	rec := httptest.NewRecorder()
	srv.writeJSON(rec, http.StatusOK, map[string]float64{"balance": math.Inf(1)})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if decodeError(t, rec) != "internal server error" {
		t.Fatal("expected JSON error body")
	}
	if !strings.Contains(buf.String(), "encode response") {
		t.Fatalf("expected encode failure in log, got %q", buf.String())
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	srv, _ := newTestServer(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, addr) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr + "/healthz")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
