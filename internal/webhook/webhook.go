// Package webhook serves the Dialogflow fulfillment endpoint.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/suportenet-io/suportenet/pkg/protocol"
)

// Fulfiller produces a reply for a classified event.
type Fulfiller interface {
	Handle(ctx context.Context, req *protocol.WebhookRequest) *protocol.WebhookResponse
}

// Config holds webhook server configuration.
type Config struct {
	Host string
	Port int
	// Secret enables HMAC-SHA256 signature verification
	// (X-Hub-Signature-256 header). Takes precedence over BearerToken.
	Secret string
	// BearerToken enables Authorization header auth. Used if Secret is empty.
	BearerToken string
}

// Server is the fulfillment HTTP server. Dialogflow POSTs one event per
// conversational turn to /webhook and always gets a 200 reply back for
// well-formed JSON; only transport-level problems produce error statuses.
type Server struct {
	cfg     Config
	fulfill Fulfiller
	logger  *slog.Logger
	srv     *http.Server
}

// NewServer creates the fulfillment server.
func NewServer(cfg Config, fulfill Fulfiller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		fulfill: fulfill,
		logger:  logger,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.handleEvent)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.srv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start begins listening. Blocks until context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutCtx)
	}()

	s.logger.Info("webhook server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("webhook server: %w", err)
	}
	return nil
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if !s.authenticate(r, body) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req protocol.WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	// Missing nested fields are fine: the router treats an absent intent as
	// the fallback branch and still produces a reply.
	resp := s.fulfill.Handle(r.Context(), &req)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) authenticate(r *http.Request, body []byte) bool {
	if s.cfg.Secret != "" {
		sig := r.Header.Get("X-Hub-Signature-256")
		if sig == "" {
			sig = r.Header.Get("X-Signature-256")
		}
		return verifyHMAC(body, s.cfg.Secret, sig)
	}

	if s.cfg.BearerToken != "" {
		return r.Header.Get("Authorization") == "Bearer "+s.cfg.BearerToken
	}

	// No auth configured, the platform endpoint is open.
	return true
}

// verifyHMAC checks an HMAC-SHA256 signature.
// Signature format: "sha256=<hex>"
func verifyHMAC(body []byte, secret, signature string) bool {
	if signature == "" {
		return false
	}

	sig := strings.TrimPrefix(signature, "sha256=")
	expectedMAC, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), expectedMAC)
}

// ComputeSignature generates an HMAC-SHA256 signature for testing/external use.
func ComputeSignature(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
