// Package daemon provides the long-running background service that serves
// derived subscription views over HTTP and streams changes as server-sent
// events.
package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrackr/internal/log"
	"github.com/theirongolddev/subtrackr/internal/model"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
	"github.com/theirongolddev/subtrackr/internal/store"
)

// Backend is the state the daemon derives its views from.
type Backend interface {
	ListSubscriptions(ctx context.Context) ([]model.Subscription, error)
	LoadLedger(ctx context.Context) (pipeline.Ledger, error)
	ApplyTransition(ctx context.Context, id string, to model.Status, now time.Time) (model.Subscription, *model.SavingsEvent, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Addr          string
	Interval      time.Duration // how often views are rebuilt so day boundaries roll over
	EventsBuffer  int
	UpcomingLimit int
	DefaultSort   pipeline.SortKey
	Goal          decimal.Decimal
	GoalPeriod    pipeline.GoalPeriod
	Logger        *log.Logger
	Now           func() time.Time
}

// Event types published on /v1/events.
const (
	EventSnapshot        = "snapshot"
	EventStatusChanged   = "status_changed"
	EventSavingsRecorded = "savings_recorded"
)

// Event is emitted whenever derived state changes.
type Event struct {
	ID           int64               `json:"id"`
	Type         string              `json:"type"`
	Timestamp    time.Time           `json:"timestamp"`
	Snapshot     *Snapshot           `json:"snapshot,omitempty"`
	Subscription *SubscriptionView   `json:"subscription,omitempty"`
	Savings      *model.SavingsEvent `json:"savings,omitempty"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	backend Backend
	log     *log.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	subs        []model.Subscription
	snapshot    Snapshot
	hasSnapshot bool
	version     int64
	lastError   string
	nextEventID int64
	events      []Event

	nextSubID int
	listeners map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(backend Backend, cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.UpcomingLimit < 1 {
		cfg.UpcomingLimit = 3
	}
	if cfg.GoalPeriod == "" {
		cfg.GoalPeriod = pipeline.PeriodMonthly
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}

	return &Service{
		cfg:       cfg,
		backend:   backend,
		log:       logger.WithComponent(log.ComponentDaemon),
		startedAt: cfg.Now(),
		listeners: make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	v1.HandleFunc("/subscriptions", s.handleSubscriptions).Methods(http.MethodGet)
	v1.HandleFunc("/subscriptions/{id}/status", s.handleStatus).Methods(http.MethodPost)
	v1.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	return r
}

// Run serves the HTTP API and rebuilds views on every interval until ctx is
// canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("listening", log.FieldAddr, s.cfg.Addr)

	// Seed the first snapshot so the API is useful immediately.
	if err := s.Recompute(ctx); err != nil {
		s.log.Error("initial recompute failed", log.FieldError, err)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			if err := s.Recompute(ctx); err != nil {
				s.log.Warn("recompute failed", log.FieldError, err)
			}
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// Recompute reloads state from the backend and rebuilds every derived view.
// A snapshot event is published when the views changed.
func (s *Service) Recompute(ctx context.Context) error {
	subs, err := s.backend.ListSubscriptions(ctx)
	if err == nil {
		var ledger pipeline.Ledger
		ledger, err = s.backend.LoadLedger(ctx)
		if err == nil {
			return s.apply(subs, ledger)
		}
	}

	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
	return err
}

func (s *Service) apply(subs []model.Subscription, ledger pipeline.Ledger) error {
	now := s.cfg.Now()
	snap, err := buildSnapshot(subs, ledger, s.cfg, now)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()
		return err
	}

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	changed := !s.hasSnapshot || !sameView(s.snapshot, snap)
	if changed {
		s.version++
	}
	snap.Version = s.version
	s.snapshot = snap
	s.hasSnapshot = true
	s.subs = subs
	s.lastError = ""
	if changed {
		s.nextEventID++
		cp := snap
		ev = Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: now, Snapshot: &cp}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
	return nil
}

// sameView reports whether two snapshots carry the same derived content,
// ignoring the timestamp and version.
func sameView(a, b Snapshot) bool {
	a.At, b.At = time.Time{}, time.Time{}
	a.Version, b.Version = 0, 0
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}

// newEvent stamps an event with the next ID. Callers publish it.
func (s *Service) newEvent(typ string) Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEventID++
	return Event{ID: s.nextEventID, Type: typ, Timestamp: s.cfg.Now()}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

// Snapshot returns the current derived views.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// eventsAfter returns buffered events with an ID greater than after.
func (s *Service) eventsAfter(after int64) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bufferedAfter(after)
}

// bufferedAfter must be called with s.mu held.
func (s *Service) bufferedAfter(after int64) []Event {
	var out []Event
	for _, ev := range s.events {
		if ev.ID > after {
			out = append(out, ev)
		}
	}
	return out
}

// subscribe registers ch and returns the buffered events after the given ID
// in one critical section, so every event lands either in the backlog or on
// ch, never both. A negative after skips the backlog.
func (s *Service) subscribe(ch chan Event, after int64) (int, []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.listeners[id] = ch
	if after < 0 {
		return id, nil
	}
	return id, s.bufferedAfter(after)
}

func (s *Service) removeListener(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, id)
}

// ─── Handlers ───────────────────────────────────────────────────

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	httpLog := s.log.WithComponent(log.ComponentHTTP)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpLog.Debug("request",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rec.code,
			log.FieldDuration, time.Since(start).Milliseconds(),
		)
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	snap := s.snapshot
	lastErr := s.lastError
	has := s.hasSnapshot
	s.mu.RUnlock()

	if !has && lastErr != "" {
		writeError(w, http.StatusServiceUnavailable, errors.New(lastErr))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Service) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	category := q.Get("category")
	if category == "" {
		category = pipeline.AllCategories
	}
	key := s.cfg.DefaultSort
	if raw := q.Get("sort"); raw != "" {
		parsed, err := pipeline.ParseSortKey(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		key = parsed
	}

	s.mu.RLock()
	subs := s.subs
	s.mu.RUnlock()

	now := s.cfg.Now()
	view, err := pipeline.View(subs, category, key, now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	out := make([]SubscriptionView, 0, len(view))
	for _, sub := range view {
		out = append(out, subscriptionView(sub, now))
	}
	writeJSON(w, http.StatusOK, out)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding body: %w", err))
		return
	}
	to, err := model.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	now := s.cfg.Now()
	sub, saved, err := s.backend.ApplyTransition(ctx, id, to, now)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
		return
	case errors.Is(err, pipeline.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err)
		return
	case err != nil:
		s.log.Error("transition failed", log.FieldSubscriptionID, id, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.log.Info("status changed", log.FieldSubscriptionID, id, log.FieldStatus, string(to))

	view := subscriptionView(sub, now)
	ev := s.newEvent(EventStatusChanged)
	ev.Subscription = &view
	s.publishEvent(ev)

	if saved != nil {
		s.log.Info("savings recorded", log.FieldSubscriptionID, id, log.FieldAmount, saved.AmountSaved.StringFixed(2))
		ev := s.newEvent(EventSavingsRecorded)
		ev.Savings = saved
		s.publishEvent(ev)
	}

	if err := s.Recompute(ctx); err != nil {
		s.log.Warn("recompute after transition failed", log.FieldError, err)
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Reconnecting clients replay what they missed; new clients get the
	// current snapshot.
	last, err := strconv.ParseInt(r.Header.Get("Last-Event-ID"), 10, 64)
	if err != nil || last < 0 {
		last = -1
	}
	ch := make(chan Event, 16)
	id, backlog := s.subscribe(ch, last)
	defer s.removeListener(id)

	if last >= 0 {
		for _, ev := range backlog {
			writeSSE(w, ev)
			last = ev.ID
		}
	} else {
		snap := s.Snapshot()
		writeSSE(w, Event{Type: EventSnapshot, Timestamp: s.cfg.Now(), Snapshot: &snap})
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			if ev.ID > 0 && ev.ID <= last {
				continue
			}
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
