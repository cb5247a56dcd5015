package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/fgomezproyectos/gestor-gastos/internal/auth"
	"github.com/fgomezproyectos/gestor-gastos/internal/config"
	"github.com/fgomezproyectos/gestor-gastos/internal/handlers"
	"github.com/fgomezproyectos/gestor-gastos/internal/storage"
)

func main() {
	// .env is a dev convenience; absence is fine
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	setupLogger(cfg)

	if cfg.SecretKey == config.DevSecretKey {
		logrus.Warn("running with the default SECRET_KEY; set SECRET_KEY in production")
	}

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	if err := bootstrapAdmin(context.Background(), db, cfg); err != nil {
		logrus.WithError(err).Fatal("failed to bootstrap admin user")
	}

	h := handlers.NewHandlers(db, cfg.TemplateDir, []byte(cfg.SecretKey), cfg.SecureCookie)
	router := setupRouter(h, cfg.StaticDir)

	logrus.WithField("addr", cfg.Addr).Info("starting server")
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func setupLogger(cfg config.Config) {
	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
}

// bootstrapAdmin seeds the first account from ADMIN_USER/ADMIN_PASSWORD when
// the database has no users yet. Useful for fresh deployments and e2e runs.
func bootstrapAdmin(ctx context.Context, db *storage.DB, cfg config.Config) error {
	if cfg.AdminUser == "" || cfg.AdminPassword == "" {
		return nil
	}
	count, err := db.UserCount(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	if err := db.CreateUser(ctx, cfg.AdminUser, hash); err != nil {
		return err
	}
	logrus.WithField("username", cfg.AdminUser).Info("bootstrapped admin user")
	return nil
}

// setupRouter mounts middleware, public auth routes, static files and the
// authenticated ledger routes.
func setupRouter(h *handlers.Handlers, staticDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(handlers.RequestLog)
	r.Use(handlers.Recoverer)

	fs := http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir)))
	r.Handle("/static/*", fs)

	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.Register)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware)
		r.Get("/", h.Index)
		r.Post("/", h.AddGasto)
		r.Get("/modificar/{id}", h.EditGastoForm)
		r.Post("/modificar/{id}", h.UpdateGasto)
		r.Post("/eliminar/{id}", h.DeleteGasto)
		r.Get("/estadisticas", h.Estadisticas)
	})

	return r
}
