package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mkondo/nexttrack/internal/config"
	"github.com/mkondo/nexttrack/internal/database"
	"github.com/mkondo/nexttrack/internal/demo"
	"github.com/mkondo/nexttrack/internal/handler"
	"github.com/mkondo/nexttrack/internal/logger"
	"github.com/mkondo/nexttrack/internal/metrics"
	"github.com/mkondo/nexttrack/internal/middleware"
	"github.com/mkondo/nexttrack/internal/opportunity"
	"github.com/mkondo/nexttrack/internal/repository"
)

// Init sets up logging and loads the configuration from the environment.
// Logs go to the given writer as structured JSON.
func Init(w io.Writer) (*config.Config, error) {
	logger.SetupDefault(w)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run is the application entry point. It resolves the subcommand from the
// arguments and starts the corresponding mode. Pass os.Args[1:] as args.
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck skips full initialization; it only needs the port.
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandSeed:
		return runSeed(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe starts the API server. It connects to the database, wires all
// dependencies and serves until SIGINT or SIGTERM, then shuts down
// gracefully.
func runServe(cfg *config.Config) error {
	db, err := connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established")

	// repositories and services
	oppRepo := repository.NewPostgresOpportunityRepo(db)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	oppService := opportunity.NewService(oppRepo, collector)

	rateLimiter := middleware.NewRateLimiter(
		middleware.ConfigForRequestsPerMinute(cfg.RateLimitGeneral),
	)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),

		OpportunityService: oppService,
		HealthChecker:      db,

		Metrics:         collector,
		MetricsGatherer: registry,
	}

	if cfg.DemoResetEnabled {
		deps.DemoResetter = demo.NewService(db)
		slog.Info("demo reset endpoint enabled")
	}

	router := handler.NewRouter(deps)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate applies all pending database migrations in order.
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runSeed clears all data and loads the demonstration data set.
func runSeed(cfg *config.Config) error {
	db, err := connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	count, err := demo.NewService(db).Reset(context.Background())
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	slog.Info("demo data seeded", slog.Int("opportunities", count))
	return nil
}

// runHealthcheck probes the /health endpoint of the local server.
// Used as the Docker health check subcommand in the distroless image.
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// connect opens the database with the configured pool settings, retrying
// the initial ping. Retries happen only here, never per request.
func connect(cfg *config.Config) (*sql.DB, error) {
	pool := database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	}

	db, err := database.Connect(cfg.DatabaseURL, pool, cfg.DBConnectRetry, cfg.DBConnectDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// maskDatabaseURL hides credentials before the URL is logged.
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
