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
	"github.com/manuscript-app/manuscript/internal/teams/consumer"
	"github.com/manuscript-app/manuscript/internal/teams/handler"
	"github.com/manuscript-app/manuscript/internal/teams/repository/postgres"
	"github.com/manuscript-app/manuscript/internal/teams/service"
)

// App представляет сервис команд со всеми зависимостями.
// Публикация и потребление используют отдельные подключения к брокеру:
// канал AMQP не потокобезопасен.
type App struct {
	config    *config.Config
	db        *pgxpool.Pool
	pubBroker messaging.MessageBroker
	subBroker messaging.MessageBroker
	relay     *messaging.Relay
	consumer  *consumer.Consumer
	server    *http.Server
	logger    *slog.Logger

	runCtx context.Context
	cancel context.CancelFunc
}

// New создает новый экземпляр приложения
func New(cfg *config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "teams")

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

// connectBroker подключается к RabbitMQ и настраивает relay и consumer
func (a *App) connectBroker(ctx context.Context) error {
	pub := messaging.NewRabbitMQ(a.config.Broker.URL, a.config.Broker.Exchange, a.logger)
	if err := pub.Connect(ctx); err != nil {
		return err
	}

	sub := messaging.NewRabbitMQ(a.config.Broker.URL, a.config.Broker.Exchange, a.logger)
	if err := sub.Connect(ctx); err != nil {
		return err
	}

	a.pubBroker = pub
	a.subBroker = sub
	a.relay = messaging.NewRelay(
		messaging.NewPostgresOutbox(a.db),
		a.pubBroker,
		a.logger,
		a.config.Broker.RelayInterval,
		a.config.Broker.RelayBatch,
	)
	a.consumer = consumer.New(a.subBroker, postgres.NewUnitOfWork(a.db), a.logger)
	return nil
}

// setupServer инициализирует HTTP роутер и обработчики
func (a *App) setupServer() {
	tokens := auth.NewTokenManager(a.config.JWT.Secret, a.config.JWT.GetExpiration())

	uow := postgres.NewUnitOfWork(a.db)
	teamService := service.NewTeamService(uow, a.config.Teams.AllowRejoin, a.logger)
	teamHandler := handler.NewTeamHandler(teamService)

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

	// Чтение доступно без токена
	r.Get("/teams", teamHandler.List)
	r.Get("/teams/{id}", teamHandler.GetByID)

	// Защищенные эндпоинты (требуют JWT токен в заголовке Authorization)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/teams", teamHandler.Create)
		r.Put("/teams/{id}", teamHandler.Edit)
		r.Delete("/teams/{id}", teamHandler.Deactivate)

		r.Post("/teams/{id}/participants", teamHandler.Join)
		r.Delete("/teams/{id}/participants", teamHandler.Leave)
		r.Put("/teams/{id}/participants/{pid}", teamHandler.ChangeStatus)
		r.Delete("/teams/{id}/participants/{pid}", teamHandler.Kick)
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

// Run запускает outbox relay, цикл потребления и HTTP сервер
func (a *App) Run() error {
	go a.relay.Run(a.runCtx)

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

	for _, broker := range []messaging.MessageBroker{a.pubBroker, a.subBroker} {
		if broker != nil {
			if err := broker.Disconnect(); err != nil {
				a.logger.Error("Failed to disconnect from message broker", "error", err)
			}
		}
	}

	if a.db != nil {
		a.db.Close()
	}

	a.logger.Info("Application stopped gracefully")
	return nil
}
