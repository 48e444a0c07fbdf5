package mock

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/studiowebux/usertabs/internal/types"
)

// maxLogs caps the in-memory request log
const maxLogs = 1000

// Server is a stand-in for the employee webhook: GET base+id reads a user,
// POST base with an envelope creates or updates one, an empty POST deletes
type Server struct {
	config     *Config
	routes     []route
	store      *Store
	logger     *slog.Logger
	httpServer *http.Server
	listener   net.Listener
	logs       []RequestLog
	logsMutex  sync.RWMutex
	notifyCh   chan struct{}
	nextID     int
	idMutex    sync.Mutex
	now        func() time.Time
}

// NewServer builds a server seeded from config. A nil config serves the
// default base path with no users.
func NewServer(config *Config, logger *slog.Logger) *Server {
	if config == nil {
		config = &Config{Logging: true}
	}
	applyDefaults(config)
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config:   config,
		routes:   compileRoutes(config.Routes, logger),
		store:    NewStore(config.Users, time.Now()),
		logger:   logger,
		logs:     make([]RequestLog, 0),
		notifyCh: make(chan struct{}, 100),
		now:      time.Now,
	}
}

// Store returns the user store
func (s *Server) Store() *Store {
	return s.store
}

// Handler returns the HTTP handler serving routes and the webhook
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	return mux
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("mock server error", "error", err)
		}
	}()

	s.logger.Info("mock webhook listening", "url", s.GetAddress())
	return nil
}

// Stop shuts the server down, waiting up to five seconds
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// handleRequest serves static routes first, then the webhook
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := s.now()
	body, _ := io.ReadAll(r.Body)
	r.Body.Close()

	var status int
	var rule string
	if rt := s.findMatchingRoute(r.Method, r.URL.Path); rt != nil {
		status, rule = rt.serve(w)
	} else {
		status, rule = s.serveWebhook(w, r, body)
	}

	elapsed := time.Since(start)
	s.logger.Debug("mock request", "method", r.Method, "path", r.URL.Path, "status", status, "rule", rule, "duration", elapsed)

	if s.config.Logging {
		s.logRequest(RequestLog{
			Timestamp:   start,
			Method:      r.Method,
			Path:        r.URL.Path,
			Body:        string(body),
			MatchedRule: rule,
			Status:      status,
			Duration:    elapsed,
		})
	}
}

// serveWebhook implements the employee webhook contract on the base path
func (s *Server) serveWebhook(w http.ResponseWriter, r *http.Request, body []byte) (int, string) {
	base := s.config.BasePath
	if !strings.HasPrefix(r.URL.Path, base) && r.URL.Path+"/" != base {
		return writeJSON(w, http.StatusNotFound, map[string]any{"error": "no route for " + r.URL.Path}), "none"
	}
	id := strings.TrimPrefix(r.URL.Path, base)

	switch r.Method {
	case http.MethodGet:
		if id == "" {
			return writeJSON(w, http.StatusBadRequest, map[string]any{"error": "user id required"}), "fetch"
		}
		user, ok := s.store.Get(id)
		if !ok {
			return writeJSON(w, http.StatusNotFound, map[string]any{"error": "user not found", "user_id": id}), "fetch"
		}
		return writeJSON(w, http.StatusOK, user), "fetch"

	case http.MethodPost:
		if len(bytes.TrimSpace(body)) == 0 {
			if deleted, ok := s.store.DeleteLast(); ok {
				s.logger.Info("mock user deleted", "user_id", deleted)
			}
			w.WriteHeader(http.StatusOK)
			return http.StatusOK, "delete"
		}
		return s.handleWrite(w, body)

	default:
		return writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"}), "none"
	}
}

func (s *Server) handleWrite(w http.ResponseWriter, body []byte) (int, string) {
	var env struct {
		Event     string         `json:"event"`
		Timestamp string         `json:"timestamp"`
		Data      map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Data == nil {
		return writeJSON(w, http.StatusBadRequest, map[string]any{"error": "body must be an envelope with a data object"}), "write"
	}

	switch env.Event {
	case types.EventUserCreated:
		if id, _ := env.Data["user_id"].(string); id == "" {
			env.Data["user_id"] = s.generateID()
		}
	case types.EventUserUpdated:
		if id, _ := env.Data["user_id"].(string); id == "" {
			return writeJSON(w, http.StatusBadRequest, map[string]any{"error": "data.user_id required for updates"}), "update"
		}
	default:
		return writeJSON(w, http.StatusBadRequest, map[string]any{"error": fmt.Sprintf("unknown event %q", env.Event)}), "write"
	}

	if env.Timestamp == "" {
		env.Timestamp = types.FormatTimestamp(s.now())
	}
	id := s.store.Put(env.Event, env.Timestamp, env.Data)
	s.logger.Info("mock user stored", "event", env.Event, "user_id", id)

	rule := "create"
	if env.Event == types.EventUserUpdated {
		rule = "update"
	}
	return writeJSON(w, http.StatusOK, map[string]any{"ok": true, "event": env.Event, "user_id": id}), rule
}

func (s *Server) generateID() string {
	s.idMutex.Lock()
	defer s.idMutex.Unlock()
	for {
		s.nextID++
		id := fmt.Sprintf("mock-%d", s.nextID)
		if !s.store.Has(id) {
			return id
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
	return status
}

// route is a configured static response with its matcher resolved
type route struct {
	Route
	re *regexp.Regexp
}

// compileRoutes drops regex routes that do not compile. LoadConfig already
// rejects those; this covers configs built in code.
func compileRoutes(routes []Route, logger *slog.Logger) []route {
	out := make([]route, 0, len(routes))
	for _, r := range routes {
		rt := route{Route: r}
		if r.PathType == "regex" {
			re, err := regexp.Compile(r.Path)
			if err != nil {
				logger.Warn("mock route skipped", "path", r.Path, "error", err)
				continue
			}
			rt.re = re
		}
		out = append(out, rt)
	}
	return out
}

func (rt *route) matches(method, path string) bool {
	if !strings.EqualFold(rt.Method, method) {
		return false
	}
	switch {
	case rt.re != nil:
		return rt.re.MatchString(path)
	case rt.PathType == "prefix":
		return strings.HasPrefix(path, rt.Path)
	default:
		return rt.Path == path
	}
}

func (rt *route) serve(w http.ResponseWriter) (int, string) {
	if rt.Delay > 0 {
		time.Sleep(time.Duration(rt.Delay) * time.Millisecond)
	}
	status := rt.Status
	if status == 0 {
		status = http.StatusOK
	}
	for k, v := range rt.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(status)
	io.WriteString(w, rt.Body)

	name := rt.Name
	if name == "" {
		name = rt.Method + " " + rt.Path
	}
	return status, name
}

// findMatchingRoute returns the first route matching method and path
func (s *Server) findMatchingRoute(method, path string) *route {
	for i := range s.routes {
		if s.routes[i].matches(method, path) {
			return &s.routes[i]
		}
	}
	return nil
}

// logRequest appends to the bounded log and wakes any listener
func (s *Server) logRequest(log RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, log)

	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}

	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// NotifyChannel receives a value after each logged request. Sends are
// dropped when nobody drains it.
func (s *Server) NotifyChannel() <-chan struct{} {
	return s.notifyCh
}

// GetLogs returns a copy of the request log
func (s *Server) GetLogs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// ClearLogs empties the request log
func (s *Server) ClearLogs() {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = make([]RequestLog, 0)
}

// GetAddress returns the webhook base URL
func (s *Server) GetAddress() string {
	host := s.config.Host
	port := s.config.Port
	if s.listener != nil {
		if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			port = addr.Port
		}
	}
	return fmt.Sprintf("http://%s%s", net.JoinHostPort(host, strconv.Itoa(port)), s.config.BasePath)
}
