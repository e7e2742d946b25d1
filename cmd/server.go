package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/access-bridge/internal"
	accesslogPostgres "github.com/frahmantamala/access-bridge/internal/accesslog/postgres"
	"github.com/frahmantamala/access-bridge/internal/core/events"
	"github.com/frahmantamala/access-bridge/internal/deviceapi"
	templatePostgres "github.com/frahmantamala/access-bridge/internal/facetemplate/postgres"
	"github.com/frahmantamala/access-bridge/internal/status"
	"github.com/frahmantamala/access-bridge/internal/syncengine"
	"github.com/frahmantamala/access-bridge/internal/synclog"
	synclogPostgres "github.com/frahmantamala/access-bridge/internal/synclog/postgres"
	"github.com/frahmantamala/access-bridge/internal/terminal"
	terminalPostgres "github.com/frahmantamala/access-bridge/internal/terminal/postgres"
	userPostgres "github.com/frahmantamala/access-bridge/internal/user/postgres"
	"github.com/frahmantamala/access-bridge/internal/transport/rest"
	"github.com/frahmantamala/access-bridge/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server that exposes sync triggers, the device list and status endpoints.`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config       *internal.Config
	TerminalDB   *gorm.DB
	DirectoryDB  *gorm.DB
	TerminalSQL  *sql.DB
	DirectorySQL *sql.DB
	Router       *chi.Mux
	Engine       *syncengine.Engine
	Registry     *terminalPostgres.TerminalRepository
	Audit        *synclogPostgres.SyncLogRepository
	Status       *status.Service
	Bus          *events.EventBus
	DeviceConfig deviceapi.Config
	Logger       *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		closeDatabases(deps)
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	syncHandler := syncengine.NewHandler(deps.Engine, deps.Logger)
	deviceHandler := terminal.NewHandler(deps.Registry, deps.Logger)
	statsHandler := synclog.NewHandler(deps.Audit, deps.Logger)
	statusHandler := status.NewHandler(deps.Status, deps.Logger)

	rest.RegisterAllRoutes(deps.Router,
		deps.TerminalSQL, deps.DirectorySQL,
		syncHandler, deviceHandler, statsHandler, statusHandler,
		deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	log := logger.LoggerWrapper()

	terminalDB, err := openDB(config.TerminalDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal database: %w", err)
	}
	directoryDB, err := openDB(config.DirectoryDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory database: %w", err)
	}

	terminalSQL, err := terminalDB.DB()
	if err != nil {
		return nil, fmt.Errorf("terminal database handle: %w", err)
	}
	directorySQL, err := directoryDB.DB()
	if err != nil {
		return nil, fmt.Errorf("directory database handle: %w", err)
	}

	registry := terminalPostgres.NewTerminalRepository(terminalDB)
	audit := synclogPostgres.NewSyncLogRepository(terminalDB)
	logs := accesslogPostgres.NewLogRepository(terminalDB, log)
	users := userPostgres.NewUserRepository(directoryDB, log)
	templates := templatePostgres.NewTemplateRepository(directoryDB, log)

	deviceCfg := deviceapi.Config{
		OverrideHost:       config.DeviceAPI.OverrideHost,
		Timeout:            config.DeviceAPI.Timeout,
		MaxRecordsPerFetch: config.Sync.MaxRecordsPerFetch,
	}
	channels := func(term *terminal.Terminal) syncengine.Channel {
		return deviceapi.NewClient(term, deviceCfg, log)
	}

	bus := events.NewEventBus(log)
	engine := syncengine.NewEngine(users, templates, logs, registry, audit, channels, bus, log)
	statusService := status.NewService(directoryDB, terminalDB, registry, audit, log)

	return &Dependencies{
		Config:       config,
		TerminalDB:   terminalDB,
		DirectoryDB:  directoryDB,
		TerminalSQL:  terminalSQL,
		DirectorySQL: directorySQL,
		Router:       chi.NewRouter(),
		Engine:       engine,
		Registry:     registry,
		Audit:        audit,
		Status:       statusService,
		Bus:          bus,
		DeviceConfig: deviceCfg,
		Logger:       log,
	}, nil
}

// openDB opens one of the two databases. Postgres goes through sqlx on the
// pgx stdlib driver so pool settings apply to the underlying *sql.DB; gorm
// then wraps that connection. Sqlite is opened directly.
func openDB(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case "postgres":
		dbConn, err := sqlx.Connect("pgx", cfg.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to open db connection: %w", err)
		}
		dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
		dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
		if cfg.ConnMaxLifetime > 0 {
			dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
		if err := dbConn.Ping(); err != nil {
			_ = dbConn.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: dbConn.DB}), &gorm.Config{})
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.Source), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func closeDatabases(deps *Dependencies) {
	if err := deps.TerminalSQL.Close(); err != nil {
		deps.Logger.Error("terminal database close error", "error", err)
	}
	if err := deps.DirectorySQL.Close(); err != nil {
		deps.Logger.Error("directory database close error", "error", err)
	}
}
