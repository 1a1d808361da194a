package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"schedrecur/internal/config"
	appLog "schedrecur/internal/log"
	"schedrecur/internal/pipeline"
	"schedrecur/internal/report"
)

// Refresher recomputes the report from scratch.
type Refresher func(ctx context.Context) (pipeline.Result, error)

// Server serves the latest analysis snapshot as an HTML grid, JSON and an
// iCalendar feed.
type Server struct {
	cfg     *config.Config
	log     appLog.Logger
	refresh Refresher
	days    report.Weekdays
	mux     *http.ServeMux

	// snap is swapped as a whole by Refresh; handlers never see a partial
	// result.
	mu   sync.RWMutex
	snap *snapshot
}

type snapshot struct {
	result    pipeline.Result
	updatedAt time.Time
}

// NewServer constructs a new Server. No analysis runs until Refresh or Run
// is called.
func NewServer(cfg *config.Config, refresh Refresher, days report.Weekdays, log appLog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		log:     log,
		refresh: refresh,
		days:    days,
		mux:     http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		s.log.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Refresh runs the Refresher and swaps in its result. On error the previous
// snapshot stays in place.
func (s *Server) Refresh(ctx context.Context) error {
	res, err := s.refresh(ctx)
	if err != nil {
		s.log.Error("refresh failed; keeping previous snapshot", err)
		return err
	}
	s.mu.Lock()
	s.snap = &snapshot{result: res, updatedAt: time.Now()}
	s.mu.Unlock()
	s.log.Info("snapshot updated", "entries", len(res.Entries), "dates", len(res.Window))
	return nil
}

func (s *Server) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Run refreshes once, schedules further refreshes on cfg.RefreshCron and
// serves HTTP on cfg.Listen until ctx is canceled. A failing first refresh
// is logged; the server still starts and answers 503 until a refresh
// succeeds.
func (s *Server) Run(ctx context.Context) error {
	loc := resolveLocationOrLocal(s.cfg.Timezone, s.log)

	_ = s.Refresh(ctx)

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(s.cfg.RefreshCron, func() { _ = s.Refresh(ctx) }); err != nil {
		return fmt.Errorf("schedule refresh %q: %w", s.cfg.RefreshCron, err)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen, "refresh", s.cfg.RefreshCron, "timezone", loc.String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("HTTP server stopped")
	return nil
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password disables auth.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
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
			w.Header().Set("WWW-Authenticate", `Basic realm="schedrecur", charset="UTF-8"`)
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
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/recurring", s.handleRecurring)
	s.mux.HandleFunc("/calendar.ics", s.handleCalendar)
	s.mux.HandleFunc(scriptPath, s.handleScript)
	s.mux.HandleFunc("/", s.handleGrid)
}

const scriptPath = "/schedule.js"

// handleScript serves the grid script. It does not depend on the snapshot.
func (s *Server) handleScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	_, _ = w.Write(report.ScheduleJS())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// ready returns the current snapshot, or writes 503 and returns nil.
func (s *Server) ready(w http.ResponseWriter) *snapshot {
	snap := s.current()
	if snap == nil {
		s.writeError(w, http.StatusServiceUnavailable, "analysis not ready")
		return nil
	}
	return snap
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	snap := s.ready(w)
	if snap == nil {
		return
	}
	res := snap.result

	// Render into a buffer so a template error does not leave a half
	// written 200 response.
	var buf bytes.Buffer
	err := report.RenderHTML(&buf, res.Entries, res.Window, report.HTMLOptions{
		Weekdays:  s.days,
		Today:     res.Today,
		Timezone:  s.cfg.Timezone,
		ScriptURL: scriptPath,
	})
	if err != nil {
		s.log.Error("render html failed", err)
		s.writeError(w, http.StatusInternalServerError, "failed to render grid")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Last-Modified", snap.updatedAt.UTC().Format(http.TimeFormat))
	_, _ = w.Write(buf.Bytes())
}

// handleRecurring returns the snapshot as JSON.
//
// GET /api/recurring
func (s *Server) handleRecurring(w http.ResponseWriter, _ *http.Request) {
	snap := s.ready(w)
	if snap == nil {
		return
	}
	res := snap.result
	doc, err := report.NewDocument(res.Entries, res.Window, s.days)
	if err != nil {
		s.log.Error("build json document failed", err)
		s.writeError(w, http.StatusInternalServerError, "failed to build document")
		return
	}
	s.writeJSON(w, http.StatusOK, recurringResponse{
		Document:        doc,
		GeneratedAt:     res.GeneratedAt,
		UpdatedAt:       snap.updatedAt,
		DisplayTimeZone: s.cfg.Timezone,
	})
}

// recurringResponse is the JSON response shape for /api/recurring.
type recurringResponse struct {
	report.Document
	GeneratedAt     time.Time `json:"generated_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	DisplayTimeZone string    `json:"display_timezone"`
}

func (s *Server) handleCalendar(w http.ResponseWriter, _ *http.Request) {
	snap := s.ready(w)
	if snap == nil {
		return
	}
	res := snap.result
	var buf bytes.Buffer
	err := report.WriteICS(&buf, res.Entries, report.ICSOptions{
		Location: res.Location,
		Now:      snap.updatedAt,
	})
	if err != nil {
		s.log.Error("write ics failed", err)
		s.writeError(w, http.StatusInternalServerError, "failed to build calendar")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func resolveLocationOrLocal(name string, log appLog.Logger) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to write JSON response", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	s.writeJSON(w, status, errResp{Error: msg})
}
