package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/manuscript-app/manuscript/internal/auth"
	"github.com/manuscript-app/manuscript/internal/config"
	"github.com/manuscript-app/manuscript/internal/messaging"
	"github.com/manuscript-app/manuscript/internal/notifications/consumer"
	"github.com/manuscript-app/manuscript/internal/notifications/handler"
	"github.com/manuscript-app/manuscript/internal/notifications/repository/postgres"
	"github.com/manuscript-app/manuscript/internal/notifications/service"
)

// App представляет сервис уведомлений со всеми зависимостями.
// Сервис ничего не публикует, поэтому broker используется только
// для потребления.
type App struct {
	config   *config.Config
	db       *pgxpool.Pool
	broker   messaging.MessageBroker
	consumer *consumer.Consumer
	server   *http.Server
	logger   *slog.Logger

	runCtx context.Context
	cancel context.CancelFunc
}

// New создает новый экземпляр приложения
func New(cfg *config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "notifications")

	app := &App{
		config: cfg,
		logger: logger,
	}

	return app, nil
}

// Initialize инициализирует все компоненты приложения
func (a *App) Initialize(ctx context.Context) error {
	a.runCtx, a.cancel = context.WithCancel(context.Background())

	if err := a.connectDB(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := a.connectBroker(ctx); err != nil {
		return fmt.Errorf("failed to connect to message broker: %w", err)
	}

	a.setupServer()

	a.logger.Info("Application initialized successfully")
	return nil
}

// connectDB устанавливает подключение к PostgreSQL с connection pool
func (a *App) connectDB(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(a.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = a.config.Database.MaxConns
	poolConfig.MinConns = a.config.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = pool
	a.logger.Info("Connected to database")
	return nil
}

// connectBroker подключается к RabbitMQ и настраивает consumer
func (a *App) connectBroker(ctx context.Context) error {
	broker := messaging.NewRabbitMQ(a.config.Broker.URL, a.config.Broker.Exchange, a.logger)
	if err := broker.Connect(ctx); err != nil {
		return err
	}

	a.broker = broker
	a.consumer = consumer.New(a.broker, postgres.NewUnitOfWork(a.db), a.logger)
	return nil
}

// setupServer инициализирует HTTP роутер и обработчики
func (a *App) setupServer() {
	tokens := auth.NewTokenManager(a.config.JWT.Secret, a.config.JWT.GetExpiration())

	uow := postgres.NewUnitOfWork(a.db)
	notificationService := service.NewNotificationService(uow, a.logger)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	authMiddleware := auth.Middleware(tokens)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Health check для мониторинга
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			a.logger.Error("Failed to write health check response", "error", err)
		}
	})

	// Защищенные эндпоинты (требуют JWT токен в заголовке Authorization)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/notifications", notificationHandler.List)
		r.Get("/notifications/{id}", notificationHandler.GetByID)
	})

	addr := fmt.Sprintf("%s:%s", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.logger.Info("HTTP server configured", "addr", addr)
}

// Run запускает цикл потребления и HTTP сервер
func (a *App) Run() error {
	go func() {
		if err := a.consumer.Start(a.runCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("Consumer stopped", "error", err)
		}
	}()

	a.logger.Info("Starting HTTP server", "addr", a.server.Addr)
	return a.server.ListenAndServe()
}

// Shutdown корректно останавливает приложение
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application")

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if a.cancel != nil {
		a.cancel()
	}

	if a.broker != nil {
		if err := a.broker.Disconnect(); err != nil {
			a.logger.Error("Failed to disconnect from message broker", "error", err)
		}
	}

	if a.db != nil {
		a.db.Close()
	}

	a.logger.Info("Application stopped gracefully")
	return nil
}
