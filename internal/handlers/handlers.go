// Package handlers wires the HTTP surface: session middleware, auth flows,
// the ledger CRUD routes and the statistics page.
package handlers

import (
	"context"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fgomezproyectos/gestor-gastos/internal/auth"
	"github.com/fgomezproyectos/gestor-gastos/internal/storage"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// principalKey is the context key for the authenticated username.
	principalKey contextKey = "principal"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db           *storage.DB
	templateDir  string
	secret       []byte
	secureCookie bool
}

// NewHandlers creates a new Handlers instance. secret signs session cookies.
func NewHandlers(db *storage.DB, templateDir string, secret []byte, secureCookie bool) *Handlers {
	return &Handlers{db: db, templateDir: templateDir, secret: secret, secureCookie: secureCookie}
}

// Principal retrieves the authenticated username from the request context.
// Empty outside the authenticated route group.
func Principal(r *http.Request) string {
	if username, ok := r.Context().Value(principalKey).(string); ok {
		return username
	}
	return ""
}

// AuthMiddleware resolves the session cookie to a principal and injects it
// into the request context. Anonymous requests are redirected to /login and
// the protected handler never runs.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		username, err := auth.ParseSessionToken(cookie.Value, h.secret)
		if err != nil {
			// Invalid or expired session, clear the cookie
			h.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthViewModel holds data for the login and register pages.
type AuthViewModel struct {
	Error string
	Msg   string
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	// If already logged in, go straight to the ledger
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if _, err := auth.ParseSessionToken(cookie.Value, h.secret); err == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
	}
	h.render(w, "login.html", AuthViewModel{Msg: r.URL.Query().Get("msg")})
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, "login.html", AuthViewModel{Error: "Formulario inválido."})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		h.render(w, "login.html", AuthViewModel{Error: "Usuario y contraseña requeridos."})
		return
	}

	user, err := h.db.GetUserByUsername(r.Context(), username)
	if err != nil || !auth.CheckPassword(password, user.PasswordHash) {
		// Unknown user and wrong password are indistinguishable on purpose
		h.render(w, "login.html", AuthViewModel{Error: "Usuario o contraseña incorrectos."})
		return
	}

	token, err := auth.NewSessionToken(user.Username, h.secret, time.Now())
	if err != nil {
		logrus.WithError(err).Error("failed to sign session token")
		h.render(w, "login.html", AuthViewModel{Error: "Ha ocurrido un error. Inténtalo de nuevo."})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusFound)
}

// RegisterForm renders the registration page.
func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, "register.html", AuthViewModel{})
}

// Register handles the registration form submission.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, "register.html", AuthViewModel{Error: "Formulario inválido."})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		h.render(w, "register.html", AuthViewModel{Error: "Usuario y contraseña requeridos."})
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password")
		h.render(w, "register.html", AuthViewModel{Error: "Ha ocurrido un error. Inténtalo de nuevo."})
		return
	}

	if err := h.db.CreateUser(r.Context(), username, hash); err != nil {
		if err == storage.ErrDuplicateUser {
			h.render(w, "register.html", AuthViewModel{Error: "El usuario ya existe."})
			return
		}
		logrus.WithError(err).WithField("username", username).Error("failed to create user")
		h.render(w, "register.html", AuthViewModel{Error: "Ha ocurrido un error. Inténtalo de nuevo."})
		return
	}

	http.Redirect(w, r, "/login?msg=Usuario+creado", http.StatusFound)
}

// Logout clears the session unconditionally.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
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

func (h *Handlers) render(w http.ResponseWriter, viewName string, data any) {
	tmpl, err := template.ParseFiles(filepath.Join(h.templateDir, "base.html"), filepath.Join(h.templateDir, viewName))
	if err != nil {
		logrus.WithError(err).WithField("view", viewName).Error("template parse failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		logrus.WithError(err).WithField("view", viewName).Error("template execution failed")
	}
}
