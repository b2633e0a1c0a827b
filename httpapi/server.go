package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	chatgate "github.com/chatgate-io/chatgate"
	"github.com/chatgate-io/chatgate/middleware"
)

// Server wires the gateway engine to an HTTP mux.
type Server struct {
	engine *chatgate.Engine
	cfg    chatgate.Config
}

// New returns a server over the given engine. The config selects CORS and
// guard behavior; it should be the same config the engine was built with.
func New(engine *chatgate.Engine, cfg chatgate.Config) *Server {
	return &Server{engine: engine, cfg: cfg}
}

// Handler returns the fully assembled HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /create-session", s.handleCreateSession)
	mux.HandleFunc("GET /status/{id}", s.handleStatus)
	mux.HandleFunc("GET /qr/{id}", s.handleQR)
	mux.HandleFunc("POST /send-message", s.handleSendMessage)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /sessions", s.handleSessions)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	var h http.Handler = mux
	if s.cfg.Guard.Enabled {
		h = middleware.Guard([]byte(s.cfg.Guard.Secret))(h)
	}
	if s.cfg.Server.EnableCORS {
		h = middleware.CORS(h)
	}
	return withClientIP(h)
}

// withClientIP stamps the caller's IP into the request context for the rate
// limiter and audit trail.
func withClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		next.ServeHTTP(w, r.WithContext(chatgate.WithClientIP(r.Context(), host)))
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Session ID required", "")
		return
	}

	err := s.engine.CreateSession(r.Context(), body.ID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Session created",
			"id":      body.ID,
		})
	case errors.Is(err, chatgate.ErrSessionExists):
		// Not an error to the caller: the session is there, keep polling it.
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Session already exists",
			"id":      body.ID,
		})
	case errors.Is(err, chatgate.ErrSessionIDRequired):
		writeError(w, http.StatusBadRequest, "Session ID required", "")
	case errors.Is(err, chatgate.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "Too many requests", "")
	default:
		writeError(w, http.StatusInternalServerError, "Failed to create session", detail(err, nil))
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found", "")
		return
	}

	// External contract: a session is either authenticated or pending; the
	// awaiting-scan stage is visible only through a non-null qr field.
	status := "pending"
	if info.Ready {
		status = "authenticated"
	}

	var qrField any
	if info.QR != "" {
		qrField = info.QR
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"qr":     qrField,
	})
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	payload, err := s.engine.QR(r.Context(), r.PathValue("id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"qr": payload})
	case errors.Is(err, chatgate.ErrQRNotAvailable):
		writeError(w, http.StatusNotFound, "QR code not available", "")
	default:
		writeError(w, http.StatusNotFound, "Session not found", "")
	}
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID      string `json:"id"`
		Number  string `json:"number"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	err := s.engine.SendMessage(r.Context(), body.ID, body.Number, body.Message)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Message sent successfully"})
	case errors.Is(err, chatgate.ErrSessionIDRequired):
		writeError(w, http.StatusBadRequest, "Session ID required", "")
	case errors.Is(err, chatgate.ErrRecipientRequired):
		writeError(w, http.StatusBadRequest, "Recipient number required", "")
	case errors.Is(err, chatgate.ErrMessageRequired):
		writeError(w, http.StatusBadRequest, "Message body required", "")
	case errors.Is(err, chatgate.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Session not found", "")
	case errors.Is(err, chatgate.ErrSessionNotReady):
		writeError(w, http.StatusBadRequest, "Session not ready", "")
	case errors.Is(err, chatgate.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "Too many requests", "")
	default:
		writeError(w, http.StatusInternalServerError, "Failed to send message", detail(err, chatgate.ErrSendFailed))
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Session ID required", "")
		return
	}

	err := s.engine.Logout(r.Context(), body.ID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out and session destroyed"})
	case errors.Is(err, chatgate.ErrSessionIDRequired):
		writeError(w, http.StatusBadRequest, "Session ID required", "")
	case errors.Is(err, chatgate.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Session not found", "")
	case errors.Is(err, chatgate.ErrDestroyFailed):
		// The session is already gone from the registry; only the resource
		// teardown failed. Reported, never rolled back.
		writeError(w, http.StatusInternalServerError, "Failed to destroy client", detail(err, chatgate.ErrDestroyFailed))
	default:
		writeError(w, http.StatusInternalServerError, "Failed to logout session", detail(err, chatgate.ErrLogoutFailed))
	}
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	infos := s.engine.Sessions(r.Context())

	type item struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		CreatedAt string `json:"created_at"`
	}
	items := make([]item, 0, len(infos))
	for _, info := range infos {
		items = append(items, item{
			ID:        info.ID,
			Status:    info.Status,
			CreatedAt: info.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessions": items})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(s.engine.Uptime().Seconds()),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.MetricsSnapshot()

	counters := make(map[string]uint64, len(snap.Counters))
	for id, v := range snap.Counters {
		counters[id.String()] = v
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"counters":      counters,
		"audit_dropped": s.engine.AuditDropped(),
	})
}
