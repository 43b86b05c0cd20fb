package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rsecloud/research-management/internal"
	"github.com/rsecloud/research-management/internal/auth"
	authPostgres "github.com/rsecloud/research-management/internal/auth/postgres"
	"github.com/rsecloud/research-management/internal/dataset"
	datasetPostgres "github.com/rsecloud/research-management/internal/dataset/postgres"
	"github.com/rsecloud/research-management/internal/project"
	projectPostgres "github.com/rsecloud/research-management/internal/project/postgres"
	"github.com/rsecloud/research-management/internal/transport"
	"github.com/rsecloud/research-management/internal/transport/rest"
	"github.com/rsecloud/research-management/internal/user"
	userPostgres "github.com/rsecloud/research-management/internal/user/postgres"
	"github.com/rsecloud/research-management/pkg/logger"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	deps.Router.Use(chiMiddleware.RequestID)
	deps.Router.Use(chiMiddleware.Logger)
	deps.Router.Use(chiMiddleware.Recoverer)

	baseHandler := transport.NewBaseHandler(deps.Logger)

	authRepo := authPostgres.NewRepository(deps.GormDB)
	tokenGen := auth.NewJWTTokenGenerator(
		deps.Config.Security.AccessTokenSecret,
		deps.Config.Security.RefreshTokenSecret,
		deps.Config.Security.AccessTokenDuration,
		deps.Config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen, deps.Config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	userRepo := userPostgres.NewUserRepository(deps.GormDB)
	userService := user.NewService(userRepo, deps.Logger)
	userHandler := user.NewHandler(baseHandler, userService, auth.CurrentUser)

	datasetRepo := datasetPostgres.NewDatasetRepository(deps.GormDB)
	datasetService := dataset.NewService(datasetRepo, deps.Logger)
	datasetHandler := dataset.NewHandler(baseHandler, datasetService, auth.CurrentUser)

	projectRepo := projectPostgres.NewProjectRepository(deps.GormDB)
	projectService := project.NewService(projectRepo, datasetService, deps.Logger)
	projectHandler := project.NewHandler(baseHandler, projectService, auth.CurrentUser)

	rest.RegisterAllRoutes(deps.Router, rest.RouterDeps{
		DB:             deps.DB.DB,
		AuthHandler:    authHandler,
		UserHandler:    userHandler,
		ProjectHandler: projectHandler,
		DatasetHandler: datasetHandler,
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		Logger:         deps.Logger,
	})
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm shares the pgx connection pool opened through sqlx
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	router := chi.NewRouter()

	return &Dependencies{
		Config: config,
		Logger: logger.Default(),
		DB:     db,
		GormDB: gormDB,
		Router: router,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
