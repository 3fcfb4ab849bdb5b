// Package server exposes the planner as a small read-only JSON API.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/sadopc/fundr/internal/planner"
	"github.com/sadopc/fundr/internal/projection"
	"github.com/sadopc/fundr/internal/store"
)

// Server ties the planner to a router.
type Server struct {
	svc      *planner.Service
	log      *logrus.Logger
	defaults func() planner.Options
	router   *mux.Router
}

// New builds the router. defaults supplies the options used for query
// parameters the caller leaves out.
func New(svc *planner.Service, log *logrus.Logger, defaults func() planner.Options) *Server {
	s := &Server{svc: svc, log: log, defaults: defaults}

	r := mux.NewRouter()
	r.Use(s.recoverer, s.logRequests)
	r.HandleFunc("/healthz", s.health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/forecast", s.forecast).Methods("GET")
	api.HandleFunc("/paydate", s.payDate).Methods("GET")
	api.HandleFunc("/goals", s.goals).Methods("GET")
	api.HandleFunc("/goals/{id}", s.goal).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	})

	s.router = r
	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/forecast?months=3&extra=100&exclude=a,b
func (s *Server) forecast(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f, err := s.svc.Forecast(opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, f)
}

// GET /api/paydate?profile=<id>&date=YYYY-MM-DD
func (s *Server) payDate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	profile, date := q.Get("profile"), q.Get("date")
	if profile == "" || date == "" {
		s.writeError(w, http.StatusBadRequest, "profile and date required")
		return
	}
	if _, ok := projection.ParseDate(date); !ok {
		s.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	paid, err := s.svc.PayDate(profile, date)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"profile":      profile,
		"work_date":    date,
		"payment_date": paid,
	})
}

func (s *Server) goals(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reports, err := s.svc.Goals(opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	if reports == nil {
		reports = []planner.GoalReport{}
	}
	s.writeJSON(w, http.StatusOK, reports)
}

func (s *Server) goal(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := s.svc.Goal(mux.Vars(r)["id"], opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// options overlays query parameters on the defaults.
func (s *Server) options(r *http.Request) (planner.Options, error) {
	opts := s.defaults()
	q := r.URL.Query()

	if v := q.Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || !planner.ValidMonths(n) {
			return opts, fmt.Errorf("months must be an integer from 0 to %d", projection.MaxMonths)
		}
		opts.Months = n
	}
	if v := q.Get("extra"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !planner.ValidExtra(f) {
			return opts, errors.New("extra must be a finite number, zero or more")
		}
		opts.ExtraWeeklyIncome = f
	}
	if q.Has("exclude") {
		opts.Excluded = projection.NewIDSet(strings.Split(q.Get("exclude"), ",")...)
	}
	return opts, nil
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if store.IsNotFound(err) {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.log.WithError(err).Error("request failed")
	s.writeError(w, http.StatusInternalServerError, "internal server error")
}

// writeJSON encodes v before the header is sent. A value that cannot be
// encoded is logged and answered with a 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.log.WithError(err).Error("encode response")
		buf.Reset()
		status = http.StatusInternalServerError
		json.NewEncoder(&buf).Encode(map[string]string{"error": "internal server error"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.log.WithError(err).Debug("write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
