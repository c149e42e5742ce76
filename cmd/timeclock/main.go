package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/timeclock/internal/application"
	"github.com/example/timeclock/internal/config"
	httptransport "github.com/example/timeclock/internal/http"
	"github.com/example/timeclock/internal/persistence/sqlite"
	"github.com/example/timeclock/internal/timeutil"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	clock := timeutil.NewSystemClock(cfg.Location())
	idGenerator := uuid.NewString

	employeeRepo := sqlite.NewEmployeeRepository(pool)
	directoryRepo := sqlite.NewDirectoryRepository(pool)
	shiftRepo := sqlite.NewShiftRepository(pool)
	entryRepo := sqlite.NewEntryRepository(pool)
	adminRepo := sqlite.NewAdminRepository(pool)

	employeeStore := newEmployeeStoreAdapter(employeeRepo)
	directoryStore := newDirectoryStoreAdapter(directoryRepo, directoryRepo)
	shiftStore := newShiftStoreAdapter(shiftRepo)
	entryStore := newEntryStoreAdapter(entryRepo, entryRepo)
	adminStore := newAdminStoreAdapter(adminRepo)

	employeeService := application.NewEmployeeService(employeeStore, clock, idGenerator, nil, logger)
	directoryService := application.NewDirectoryService(directoryStore, clock, idGenerator, logger)
	shiftService := application.NewShiftService(shiftStore, clock, idGenerator, logger)
	authService := application.NewAuthService(adminStore, clock, idGenerator, cfg.SessionTTL, logger)
	reportService := application.NewReportService(entryStore, employeeStore, directoryStore, shiftStore, logger)
	clockService := application.NewTimeAccountingServiceWithLogger(
		entryStore, entryStore, shiftStore, directoryService, clock, idGenerator,
		application.BreakLimits{
			PaidMinutes:   cfg.PaidBreakMinutes,
			UnpaidMinutes: cfg.UnpaidBreakMinutes,
		},
		logger,
	)

	if err := authService.BootstrapAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Error("failed to bootstrap admin credential", "error", err)
		os.Exit(1)
	}

	go purgeSessionsLoop(ctx, authService, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Clock:     httptransport.NewClockHandler(clockService, logger),
		Login:     httptransport.NewLoginHandler(employeeService, logger),
		Auth:      httptransport.NewAuthHandler(authService, logger),
		Employees: httptransport.NewEmployeeHandler(employeeService, logger),
		Directory: httptransport.NewDirectoryHandler(directoryService, logger),
		Shifts:    httptransport.NewShiftHandler(shiftService, logger),
		Entries:   httptransport.NewEntryHandler(clockService, logger),
		Reports:   httptransport.NewReportHandler(reportService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
		AdminMiddleware: []func(http.Handler) http.Handler{
			httptransport.RequireSession(authService, logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("timeclock API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// purgeSessionsLoop sweeps expired admin sessions hourly until shutdown.
func purgeSessionsLoop(ctx context.Context, auth *application.AuthService, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := auth.PurgeExpiredSessions(ctx); err != nil {
				logger.Warn("failed to purge expired sessions", "error", err)
			}
		}
	}
}
