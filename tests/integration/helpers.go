package integration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/manuscript-app/manuscript/internal/config"
	eventsapp "github.com/manuscript-app/manuscript/internal/events/app"
	notificationsapp "github.com/manuscript-app/manuscript/internal/notifications/app"
	teamsapp "github.com/manuscript-app/manuscript/internal/teams/app"
	usersapp "github.com/manuscript-app/manuscript/internal/users/app"
)

// service это общий контракт всех четырех приложений платформы
type service interface {
	Initialize(ctx context.Context) error
	Run() error
	Shutdown(ctx context.Context) error
}

// Порты сервисов в тестовом окружении
const (
	UsersPort         = "18081"
	EventsPort        = "18082"
	TeamsPort         = "18083"
	NotificationsPort = "18084"
)

// TestEnvironment содержит все ресурсы необходимые для интеграционных тестов
type TestEnvironment struct {
	PostgresContainer *postgres.PostgresContainer
	RabbitContainer   *rabbitmq.RabbitMQContainer
	services          []service
	ctx               context.Context
}

// SetupTestEnvironment запускает контейнеры и все четыре сервиса платформы.
// У каждого сервиса собственная база в одном PostgreSQL контейнере и общий
// RabbitMQ exchange.
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	ctx := context.Background()

	// Запускаем PostgreSQL контейнер
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("manuscript_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	// Запускаем RabbitMQ контейнер
	rmqContainer, err := rabbitmq.Run(ctx, "rabbitmq:3.12-alpine")
	require.NoError(t, err, "Failed to start RabbitMQ container")

	amqpURL, err := rmqContainer.AmqpURL(ctx)
	require.NoError(t, err, "Failed to get AMQP URL")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	// Создаем по базе на сервис и применяем миграции
	adminConnStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")
	prepareDatabases(t, adminConnStr, pgHost, pgPort.Port())

	env := &TestEnvironment{
		PostgresContainer: pgContainer,
		RabbitContainer:   rmqContainer,
		ctx:               ctx,
	}

	baseConfig := func(dbName, port string) *config.Config {
		return &config.Config{
			Server: config.ServerConfig{
				Port: port,
				Host: "127.0.0.1",
			},
			Database: config.DatabaseConfig{
				Host:     pgHost,
				Port:     pgPort.Port(),
				User:     "test_user",
				Password: "test_password",
				Name:     dbName,
				SSLMode:  "disable",
				MaxConns: 5,
				MinConns: 1,
			},
			JWT: config.JWTConfig{
				Secret:          "test-jwt-secret-key-for-integration-tests",
				ExpirationHours: 24,
			},
			Broker: config.BrokerConfig{
				URL:           amqpURL,
				Exchange:      "manuscript.test",
				RelayInterval: 200 * time.Millisecond,
				RelayBatch:    100,
			},
		}
	}

	users, err := usersapp.New(baseConfig("manuscript_users", UsersPort))
	require.NoError(t, err)
	events, err := eventsapp.New(baseConfig("manuscript_events", EventsPort))
	require.NoError(t, err)
	teams, err := teamsapp.New(baseConfig("manuscript_teams", TeamsPort))
	require.NoError(t, err)
	notifications, err := notificationsapp.New(baseConfig("manuscript_notifications", NotificationsPort))
	require.NoError(t, err)

	for _, svc := range []service{users, events, teams, notifications} {
		svc := svc
		require.NoError(t, svc.Initialize(ctx), "Failed to initialize service")
		env.services = append(env.services, svc)

		go func() {
			if err := svc.Run(); err != nil && err != http.ErrServerClosed {
				t.Logf("Server error: %v", err)
			}
		}()
	}

	for _, port := range []string{UsersPort, EventsPort, TeamsPort, NotificationsPort} {
		env.WaitForHealthCheck(t, port)
	}

	return env
}

// Cleanup очищает все тестовые ресурсы
func (te *TestEnvironment) Cleanup(t *testing.T) {
	t.Helper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, svc := range te.services {
		_ = svc.Shutdown(shutdownCtx)
	}

	if te.RabbitContainer != nil {
		_ = te.RabbitContainer.Terminate(te.ctx)
	}
	if te.PostgresContainer != nil {
		_ = te.PostgresContainer.Terminate(te.ctx)
	}
}

// prepareDatabases создает по базе на сервис и применяет его миграции
func prepareDatabases(t *testing.T, adminConnStr, host, port string) {
	t.Helper()

	admin, err := sql.Open("pgx/v5", adminConnStr)
	require.NoError(t, err, "Failed to open admin connection")
	defer admin.Close()

	projectRoot := getProjectRoot(t)

	for _, name := range []string{"users", "events", "teams", "notifications"} {
		dbName := "manuscript_" + name

		_, err = admin.Exec("CREATE DATABASE " + dbName)
		require.NoError(t, err, "Failed to create database %s", dbName)

		migrationPath := filepath.Join(projectRoot, "migrations", name, "000001_init_schema.up.sql")
		migrationSQL, err := os.ReadFile(migrationPath)
		require.NoError(t, err, "Failed to read migration file")

		connStr := fmt.Sprintf(
			"postgres://test_user:test_password@%s:%s/%s?sslmode=disable",
			host, port, dbName,
		)
		db, err := sql.Open("pgx/v5", connStr)
		require.NoError(t, err, "Failed to open database connection")

		_, err = db.Exec(string(migrationSQL))
		db.Close()
		require.NoError(t, err, "Failed to apply migration for %s", name)
	}

	t.Log("Migrations applied successfully")
}

// getProjectRoot возвращает корневую директорию проекта
func getProjectRoot(t *testing.T) string {
	t.Helper()

	// Поднимаемся по директориям пока не найдем go.mod
	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("Could not find project root (go.mod not found)")
		}
		dir = parent
	}
}

// MakeRequest вспомогательная функция для HTTP запросов в тестах
func (te *TestEnvironment) MakeRequest(t *testing.T, method, port, path string, body io.Reader, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, "http://127.0.0.1:"+port+path, body)
	require.NoError(t, err, "Failed to create request")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	resp, err := client.Do(req)
	require.NoError(t, err, "Failed to make request")

	return resp
}

// WaitForHealthCheck ждет пока сервис станет доступным
func (te *TestEnvironment) WaitForHealthCheck(t *testing.T, port string) {
	t.Helper()

	maxRetries := 50
	for i := 0; i < maxRetries; i++ {
		resp, err := http.Get("http://127.0.0.1:" + port + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("Service on port %s did not become healthy in time", port)
}

func teamPath(id int64) string {
	return fmt.Sprintf("/teams/%d", id)
}

func participantPath(teamID, participantID int64) string {
	return fmt.Sprintf("/teams/%d/participants/%d", teamID, participantID)
}

func notificationPath(id int64) string {
	return fmt.Sprintf("/notifications/%d", id)
}

// Eventually повторяет fn до успеха: события между сервисами доставляются
// асинхронно, локальные копии сходятся с задержкой
func (te *TestEnvironment) Eventually(t *testing.T, timeout time.Duration, fn func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	t.Fatal("Condition was not met in time")
}
