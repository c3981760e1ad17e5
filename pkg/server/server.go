// Package server exposes napkin REPL sessions over websockets. Clients log
// in with a password, receive a signed token and open /repl with it. Every
// connection gets its own interpreter.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oarkflow/log"

	"napkin/pkg/repl"
)

type Options struct {
	Addr         string
	JWTSecret    string
	PasswordHash string
	TokenTTL     time.Duration
	Prompt       string
	Logger       *log.Logger
	// Now is the clock used for token issue times. Defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	opts   Options
	logger *log.Logger
	mux    *http.ServeMux
}

func New(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = &log.DefaultLogger
	}

	s := &Server{opts: opts, logger: logger, mux: http.NewServeMux()}
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/login", s.handleLogin)
	s.mux.HandleFunc("/repl", s.handleREPL)
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.opts.Addr).Msg("remote repl listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info().Msg("remote repl shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !VerifyPassword(s.opts.PasswordHash, req.Password) {
		s.logger.Warn().Str("remote", r.RemoteAddr).Msg("login rejected")
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	token, expiresAt, err := SignToken(s.opts.JWTSecret, s.opts.TokenTTL, s.opts.Now())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to sign token")
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	s.logger.Info().Str("remote", r.RemoteAddr).Str("expires_at", strconv.FormatInt(expiresAt.Unix(), 10)).Msg("login accepted")
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt.Unix()})
}

func (s *Server) handleREPL(w http.ResponseWriter, r *http.Request) {
	tokenString := bearerToken(r)
	if tokenString == "" {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}
	if _, err := VerifyToken(tokenString, s.opts.JWTSecret); err != nil {
		s.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("token rejected")
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		s.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	sessionID := uuid.NewString()
	s.logger.Info().Str("session", sessionID).Str("remote", r.RemoteAddr).Msg("session started")
	start := time.Now()

	stream := newWSStream(conn)
	session := repl.New(stream, stream, repl.Options{
		Prompt: s.opts.Prompt,
		Banner: true,
		Logger: s.logger,
	})
	code, err := session.Run()
	if err != nil {
		s.logger.Error().Err(err).Str("session", sessionID).Msg("session failed")
	}

	_ = stream.Close("exit status " + strconv.Itoa(code))
	s.logger.Info().Str("session", sessionID).Int("status", code).Dur("duration", time.Since(start)).Msg("session ended")
}

// bearerToken reads the token from the Authorization header, falling back
// to the token query parameter for clients that cannot set headers.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
