package handlers

import (
	"context"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"motogiro/internal/auth"
	"motogiro/internal/logger"
	"motogiro/internal/models"
	"motogiro/internal/report"
	"motogiro/internal/storage"

	"github.com/pkg/errors"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// AccountContextKey is the context key for the authenticated account.
	AccountContextKey contextKey = "account"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
	// SessionDuration is how long sessions last (30 days).
	SessionDuration = 30 * 24 * time.Hour
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db           *storage.DB
	reports      *report.Generator
	templateDir  string
	secureCookie bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *storage.DB, reports *report.Generator, templateDir string, secureCookie bool) *Handlers {
	return &Handlers{db: db, reports: reports, templateDir: templateDir, secureCookie: secureCookie}
}

// GetAccountFromContext retrieves the authenticated account from request context.
func GetAccountFromContext(r *http.Request) *models.Account {
	if account, ok := r.Context().Value(AccountContextKey).(*models.Account); ok {
		return account
	}
	return nil
}

// AuthMiddleware wraps handlers to require authentication.
// It also implements rolling sessions: a session past the halfway point of
// its lifetime is automatically renewed.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		sessionInfo, err := h.db.ValidateSessionWithInfo(r.Context(), cookie.Value)
		if err != nil {
			// Invalid or expired session, clear the cookie
			h.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		// Rolling session: renew if past halfway point, so active couriers
		// stay logged in while inactive sessions still expire.
		now := time.Now()
		if sessionInfo.ExpiresAt.Sub(now) < SessionDuration/2 {
			newExpiresAt := now.Add(SessionDuration)
			if err := h.db.RenewSession(r.Context(), cookie.Value, newExpiresAt); err == nil {
				h.setSessionCookie(w, cookie.Value)
			}
			// If renewal fails, just continue with the current session
		}

		ctx := context.WithValue(r.Context(), AccountContextKey, sessionInfo.Account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoginViewModel holds data for the login page.
type LoginViewModel struct {
	Error string
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	// If already logged in, redirect to the dashboard
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if _, err := h.db.ValidateSession(r.Context(), cookie.Value); err == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
	}
	h.render(w, r, "login.html", LoginViewModel{})
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "login.html", LoginViewModel{Error: "Invalid form submission"})
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		h.render(w, r, "login.html", LoginViewModel{Error: "Email and password are required"})
		return
	}

	account, err := h.db.GetAccountByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Error("login lookup failed", zap.Error(err))
		h.render(w, r, "login.html", LoginViewModel{Error: "An error occurred. Please try again."})
		return
	}
	if err != nil || !auth.CheckPassword(password, account.PasswordHash) {
		h.render(w, r, "login.html", LoginViewModel{Error: "Invalid email or password"})
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		logger.Error("failed to generate session token", zap.Error(err))
		h.render(w, r, "login.html", LoginViewModel{Error: "An error occurred. Please try again."})
		return
	}

	expiresAt := time.Now().Add(SessionDuration)
	if err := h.db.CreateSession(r.Context(), token, account.ID, expiresAt); err != nil {
		logger.Error("failed to create session", zap.Error(err))
		h.render(w, r, "login.html", LoginViewModel{Error: "An error occurred. Please try again."})
		return
	}

	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusFound)
}

// RegisterViewModel holds data for the registration page.
type RegisterViewModel struct {
	Error string
	Name  string
	Email string
}

// RegisterForm renders the registration page.
func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", RegisterViewModel{})
}

// Register handles the registration form submission. A duplicate email is
// rejected with a message and nothing is committed.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "register.html", RegisterViewModel{Error: "Invalid form submission"})
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	vm := RegisterViewModel{Name: name, Email: email}
	if name == "" || email == "" || password == "" {
		vm.Error = "Name, email and password are required"
		h.render(w, r, "register.html", vm)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logger.Error("failed to hash password", zap.Error(err))
		vm.Error = "An error occurred. Please try again."
		h.render(w, r, "register.html", vm)
		return
	}

	if _, err := h.db.CreateAccount(r.Context(), name, email, hash); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			vm.Error = "This email is already registered"
			h.render(w, r, "register.html", vm)
			return
		}
		logger.Error("failed to create account", zap.Error(err), zap.String("email", email))
		vm.Error = "An error occurred. Please try again."
		h.render(w, r, "register.html", vm)
		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

// Logout handles account logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.db.DeleteSession(r.Context(), cookie.Value); err != nil {
			logger.Error("failed to delete session", zap.Error(err))
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, viewName string, data any) {
	tmpl, err := template.ParseFiles(filepath.Join(h.templateDir, "base.html"), filepath.Join(h.templateDir, viewName))
	if err != nil {
		logger.Error("template parse failed", zap.Error(err), zap.String("view", viewName))
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		logger.Error("template execution failed", zap.Error(err), zap.String("view", viewName))
	}
}
