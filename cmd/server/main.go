package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"motogiro/internal/auth"
	"motogiro/internal/config"
	"motogiro/internal/handlers"
	"motogiro/internal/logger"
	"motogiro/internal/report"
	"motogiro/internal/storage"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Missing .env is fine, real env vars still apply.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer db.Close()

	if err := seedAdminAccount(db, cfg); err != nil {
		logger.Fatal("failed to seed admin account", zap.Error(err))
	}

	reports := report.NewGenerator(db)
	h := handlers.NewHandlers(db, reports, cfg.TemplateDir, cfg.SecureCookie)

	mux := setupRouter(h, cfg.StaticDir)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        mux,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
		cancel()
	}()

	logger.Info("starting server", zap.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}

	<-ctx.Done()
	logger.Info("server stopped")
}

// seedAdminAccount creates the account named by ADMIN_EMAIL when it does not
// exist yet, so a fresh deployment has a login without running adduser.
func seedAdminAccount(db *storage.DB, cfg *config.Config) error {
	if cfg.AdminEmail == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.GetAccountByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if err != storage.ErrNotFound {
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	if _, err := db.CreateAccount(ctx, cfg.AdminName, cfg.AdminEmail, hash); err != nil {
		return err
	}
	logger.Info("seeded admin account", zap.String("email", cfg.AdminEmail))
	return nil
}

func setupRouter(h *handlers.Handlers, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /register", h.RegisterForm)
	mux.HandleFunc("POST /register", h.Register)
	mux.HandleFunc("GET /logout", h.Logout)

	mux.Handle("GET /{$}", h.AuthMiddleware(http.HandlerFunc(h.Dashboard)))
	mux.Handle("POST /transactions", h.AuthMiddleware(http.HandlerFunc(h.AddTransaction)))
	mux.Handle("POST /transactions/{id}/delete", h.AuthMiddleware(http.HandlerFunc(h.DeleteTransaction)))
	mux.Handle("GET /settings", h.AuthMiddleware(http.HandlerFunc(h.SettingsForm)))
	mux.Handle("POST /settings/goal", h.AuthMiddleware(http.HandlerFunc(h.UpdateGoal)))
	mux.Handle("POST /settings/odometer", h.AuthMiddleware(http.HandlerFunc(h.UpdateOdometer)))
	mux.Handle("GET /chart/weekly", h.AuthMiddleware(http.HandlerFunc(h.WeeklyChart)))
	mux.Handle("GET /export.csv", h.AuthMiddleware(http.HandlerFunc(h.ExportCSV)))

	return mux
}
