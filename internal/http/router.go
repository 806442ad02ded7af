package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"accountsvc/internal/repository"
	"accountsvc/internal/service/auth"
	"accountsvc/internal/service/user"
	"accountsvc/pkg/config"
)

const (
	refreshCookieName  = "refreshToken"
	refreshCookiePath  = "/api/auth"
	healthCheckTimeout = 2 * time.Second
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	auth     auth.Service
	users    user.Service
	cfg      config.APIConfig
	dbHealth func(context.Context) error
	started  time.Time
}

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, authSvc auth.Service, userSvc user.Service, cfg config.APIConfig, dbHealth func(context.Context) error) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		logger:   logger,
		auth:     authSvc,
		users:    userSvc,
		cfg:      cfg,
		dbHealth: dbHealth,
		started:  time.Now(),
	}
	r.register()
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) register() {
	r.mux.HandleFunc("/", r.wrap(r.handleRoot))
	r.mux.HandleFunc("/health", r.wrap(r.handleHealth))
	r.mux.HandleFunc("/api/auth/register", r.wrap(r.handleRegister))
	r.mux.HandleFunc("/api/auth/login", r.wrap(r.handleLogin))
	r.mux.HandleFunc("/api/auth/refresh", r.wrap(r.handleRefresh))
	r.mux.HandleFunc("/api/auth/logout", r.wrap(r.requireAuth(r.handleLogout)))
	r.mux.HandleFunc("/api/auth/me", r.wrap(r.requireAuth(r.handleMe)))
	r.mux.HandleFunc("/api/users", r.wrap(r.requireAuth(r.handleUserList)))
	r.mux.HandleFunc("/api/users/", r.wrap(r.handleUserSubroutes))
}

// wrap applies panic recovery and audit logging to every handler.
func (r *Router) wrap(next http.HandlerFunc) http.HandlerFunc {
	return r.audit(r.recovered(next))
}

func (r *Router) handleRoot(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		r.notFound(w)
		return
	}
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "accountsvc API",
		"endpoints": map[string]string{
			"health": "/health",
			"auth":   "/api/auth",
			"users":  "/api/users",
		},
	})
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	status := "ok"
	components := make(map[string]any)
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{"status": "down"}
			r.logger.Error("database health check failed", "error", err)
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"status":         status,
		"components":     components,
		"timestamp":      time.Now().UTC().Format(time.RFC3339Nano),
		"uptime_seconds": int64(time.Since(r.started) / time.Second),
	})
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload registerRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Email = strings.TrimSpace(payload.Email)
	if err := payload.Validate(); err != nil {
		writeInvalid(w, err)
		return
	}
	_, tokens, err := r.auth.Register(req.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "user already exists with this email")
			return
		}
		r.serverError(w, req, "registration failed", err)
		return
	}
	r.setRefreshCookie(w, tokens.RefreshToken)
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"message":     "user registered successfully",
		"accessToken": tokens.AccessToken,
	})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload loginRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	payload.Email = strings.TrimSpace(payload.Email)
	if err := payload.Validate(); err != nil {
		writeInvalid(w, err)
		return
	}
	_, tokens, err := r.auth.Login(req.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		r.serverError(w, req, "login failed", err)
		return
	}
	r.setRefreshCookie(w, tokens.RefreshToken)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "login successful",
		"accessToken": tokens.AccessToken,
	})
}

func (r *Router) handleRefresh(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	cookie, err := req.Cookie(refreshCookieName)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}
	_, tokens, err := r.auth.Refresh(req.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "invalid or expired refresh token")
			return
		}
		r.serverError(w, req, "token refresh failed", err)
		return
	}
	r.setRefreshCookie(w, tokens.RefreshToken)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"accessToken": tokens.AccessToken,
	})
}

func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing for logout", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	if err := r.auth.Logout(req.Context(), info.User.ID); err != nil {
		r.serverError(w, req, "logout failed", err)
		return
	}
	r.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "logged out successfully",
	})
}

func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing for me endpoint", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    info.User,
	})
}

func (r *Router) handleUserList(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	users, pagination, err := r.users.List(req.Context(), page, limit)
	if err != nil {
		r.serverError(w, req, "list users failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"users":      users,
		"pagination": pagination,
	})
}

func (r *Router) handleUserSubroutes(w http.ResponseWriter, req *http.Request) {
	id := strings.TrimPrefix(req.URL.Path, "/api/users/")
	if id == "" || strings.Contains(id, "/") {
		r.notFound(w)
		return
	}
	switch req.Method {
	case http.MethodGet:
		r.requireAuth(func(w http.ResponseWriter, req *http.Request) {
			r.handleUserGet(w, req, id)
		})(w, req)
	case http.MethodPut:
		r.requireAuth(func(w http.ResponseWriter, req *http.Request) {
			r.handleUserUpdate(w, req, id)
		})(w, req)
	case http.MethodDelete:
		r.requireAdmin(func(w http.ResponseWriter, req *http.Request) {
			r.handleUserDelete(w, req, id)
		})(w, req)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleUserGet(w http.ResponseWriter, req *http.Request, id string) {
	usr, err := r.users.Get(req.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		r.serverError(w, req, "get user failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    usr,
	})
}

func (r *Router) handleUserUpdate(w http.ResponseWriter, req *http.Request, id string) {
	var payload updateUserRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	payload.normalize()
	if err := payload.Validate(); err != nil {
		writeInvalid(w, err)
		return
	}
	usr, err := r.users.Update(req.Context(), id, user.UpdateInput{Name: payload.Name, Email: payload.Email})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, repository.ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, "user already exists with this email")
		default:
			r.serverError(w, req, "update user failed", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "user updated successfully",
		"user":    usr,
	})
}

func (r *Router) handleUserDelete(w http.ResponseWriter, req *http.Request, id string) {
	if err := r.users.SoftDelete(req.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		r.serverError(w, req, "delete user failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "user deleted successfully",
	})
}

func (r *Router) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		MaxAge:   int(r.cfg.RefreshTokenTTL / time.Second),
		HttpOnly: true,
		Secure:   r.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}

func (r *Router) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}

// serverError logs the internal cause and answers with a generic message.
func (r *Router) serverError(w http.ResponseWriter, req *http.Request, msg string, err error) {
	r.logger.Error(msg, "error", err, "path", req.URL.Path)
	writeError(w, http.StatusInternalServerError, "server error")
}

// recovered converts handler panics into 500 responses. The stack is always
// logged; it reaches the response body only outside production.
func (r *Router) recovered(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				stack := string(debug.Stack())
				r.logger.Error("handler panic", "panic", rec, "path", req.URL.Path, "stack", stack)
				if r.cfg.IsProduction() {
					writeError(w, http.StatusInternalServerError, "server error")
					return
				}
				writeJSON(w, http.StatusInternalServerError, map[string]any{
					"success": false,
					"message": "server error",
					"error":   fmt.Sprintf("%v", rec),
					"stack":   stack,
				})
			}
		}()
		next(w, req)
	}
}

func (r *Router) audit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		ctx := recorder.ctx
		if ctx == nil {
			ctx = req.Context()
		}
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if info, ok := authInfoFromContext(ctx); ok {
			fields = append(fields, "user_id", info.User.ID)
		}

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	ctx    context.Context
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) SetContext(ctx context.Context) {
	sr.ctx = ctx
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "route not found")
}
