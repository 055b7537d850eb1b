package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"eventcal/internal/config"
	"eventcal/internal/export"
	appLog "eventcal/internal/log"
	"eventcal/internal/model"
	"eventcal/internal/prefs"
	"eventcal/internal/schedule"
	"eventcal/internal/store"
)

// eventsCacheTTL bounds how stale the served event list may get between the
// cron-driven refreshes.
const eventsCacheTTL = 30 * time.Second

// Server provides the HTTP API over the event schedule: the sorted list,
// the grouped view, the next featured event, calendar exports, and the
// view-mode preference.
type Server struct {
	cfg      *config.Config
	store    *store.Store
	prefs    prefs.Store
	exporter *export.Exporter
	loc      *time.Location
	mux      *http.ServeMux

	// In-memory cache for the fetched event list, so a burst of HTTP
	// requests does not re-run the whole source chain every time.
	eventsMu    sync.RWMutex
	eventsCache *eventsCache
}

type eventsCache struct {
	events    []model.Event
	updatedAt time.Time
}

// NewServer constructs a Server around the given source chain and
// preference store.
func NewServer(cfg *config.Config, st *store.Store, pr prefs.Store) *Server {
	loc := resolveLocationOrLocal(cfg.Timezone)
	s := &Server{
		cfg:      cfg,
		store:    st,
		prefs:    pr,
		exporter: export.New(loc),
		loc:      loc,
		mux:      http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for this server, wrapped with basic auth
// when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="eventcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/events/grouped", s.handleEventsGrouped)
	s.mux.HandleFunc("GET /api/events/next", s.handleNextEvent)
	s.mux.HandleFunc("GET /api/events/{id}/calendar.ics", s.handleEventICS)
	s.mux.HandleFunc("GET /api/events/{id}/google", s.handleEventGoogle)
	s.mux.HandleFunc("GET /api/prefs/view-mode", s.handleGetViewMode)
	s.mux.HandleFunc("PUT /api/prefs/view-mode", s.handlePutViewMode)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// loadEvents returns the current event list, served from the in-memory
// cache while it is fresh.
func (s *Server) loadEvents(ctx context.Context) []model.Event {
	now := time.Now()

	s.eventsMu.RLock()
	ec := s.eventsCache
	s.eventsMu.RUnlock()
	if ec != nil && now.Sub(ec.updatedAt) < eventsCacheTTL {
		return ec.events
	}

	return s.Refresh(ctx)
}

// Refresh re-runs the source chain and replaces the cache. It is also the
// cron refresh hook.
func (s *Server) Refresh(ctx context.Context) []model.Event {
	events := s.store.FetchEvents(ctx)

	s.eventsMu.Lock()
	s.eventsCache = &eventsCache{events: events, updatedAt: time.Now()}
	s.eventsMu.Unlock()

	appLog.Info("event cache refreshed", "count", len(events))
	return events
}

// handleEvents returns the full event list in chronological order.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events := schedule.SortChronologically(s.loadEvents(r.Context()))

	w.Header().Set("X-Event-Count", strconv.Itoa(len(events)))
	writeJSON(w, http.StatusOK, eventsResponse{Events: events})
}

type eventsResponse struct {
	Events []model.Event `json:"events"`
}

// groupedResponse mirrors the events page layout: years ascending, months
// ascending with the month-unknown bucket last.
type groupedResponse struct {
	Years []yearGroup `json:"years"`
}

type yearGroup struct {
	Year   int          `json:"year"`
	Months []monthGroup `json:"months"`
}

type monthGroup struct {
	Month  int           `json:"month"`
	Label  string        `json:"label"`
	Events []model.Event `json:"events"`
}

func (s *Server) handleEventsGrouped(w http.ResponseWriter, r *http.Request) {
	events := schedule.SortChronologically(s.loadEvents(r.Context()))
	grouped := schedule.GroupByYearMonth(events)

	resp := groupedResponse{Years: []yearGroup{}}
	for _, year := range sortedKeys(grouped) {
		yg := yearGroup{Year: year}
		for _, month := range sortedKeys(grouped[year]) {
			yg.Months = append(yg.Months, monthGroup{
				Month:  month,
				Label:  schedule.MonthName(month),
				Events: grouped[year][month],
			})
		}
		resp.Years = append(resp.Years, yg)
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleNextEvent returns the featured event nearest in the future, for the
// countdown display.
func (s *Server) handleNextEvent(w http.ResponseWriter, r *http.Request) {
	events := s.loadEvents(r.Context())

	next := schedule.NextFeaturedEvent(events, time.Now().In(s.loc))
	if next == nil {
		writeError(w, http.StatusNotFound, "no upcoming featured event")
		return
	}

	writeJSON(w, http.StatusOK, nextEventResponse{
		Event:              *next,
		DateLabel:          schedule.FormatDate(next.Date),
		RegistrationStatus: schedule.EventRegistrationStatus(*next).Label(),
	})
}

type nextEventResponse struct {
	Event              model.Event `json:"event"`
	DateLabel          string      `json:"dateLabel"`
	RegistrationStatus string      `json:"registrationStatus"`
}

// eventByID scans the current list; the collection is small so a linear
// search is fine.
func (s *Server) eventByID(ctx context.Context, id string) (model.Event, bool) {
	for _, ev := range s.loadEvents(ctx) {
		if ev.ID == id {
			return ev, true
		}
	}
	return model.Event{}, false
}

// handleEventICS serves a single event as a downloadable iCalendar file.
func (s *Server) handleEventICS(w http.ResponseWriter, r *http.Request) {
	ev, ok := s.eventByID(r.Context(), r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown event")
		return
	}

	doc := s.exporter.ICSDocument(ev, time.Now())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.ICSFilename(ev)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// handleEventGoogle redirects to the Google Calendar template link for a
// single event.
func (s *Server) handleEventGoogle(w http.ResponseWriter, r *http.Request) {
	ev, ok := s.eventByID(r.Context(), r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown event")
		return
	}

	http.Redirect(w, r, s.exporter.GoogleCalendarURL(ev), http.StatusFound)
}

type viewModeResponse struct {
	ViewMode string `json:"viewMode"`
}

func (s *Server) handleGetViewMode(w http.ResponseWriter, _ *http.Request) {
	mode, ok := s.prefs.Get(prefs.KeyViewMode)
	if !ok || !prefs.ValidViewMode(mode) {
		mode = prefs.ViewModes[0]
	}
	writeJSON(w, http.StatusOK, viewModeResponse{ViewMode: mode})
}

func (s *Server) handlePutViewMode(w http.ResponseWriter, r *http.Request) {
	var req viewModeResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !prefs.ValidViewMode(req.ViewMode) {
		writeError(w, http.StatusBadRequest, "unknown view mode")
		return
	}

	if err := s.prefs.Set(prefs.KeyViewMode, req.ViewMode); err != nil {
		appLog.Error("failed to persist view mode", err)
		writeError(w, http.StatusInternalServerError, "failed to save preference")
		return
	}
	writeJSON(w, http.StatusOK, viewModeResponse{ViewMode: req.ViewMode})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to encode JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}
