package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Тестовые структуры данных соответствующие API
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type RegisterRequest struct {
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type EventRequest struct {
	Name      string   `json:"name"`
	Location  string   `json:"location"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Tags      []string `json:"tags"`
}

type Event struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Author   *User  `json:"author"`
	IsActive bool   `json:"is_active"`
}

type TeamRequest struct {
	Name    string `json:"name"`
	EventID int64  `json:"event_id"`
}

type Team struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	EventID  int64  `json:"event_id"`
	IsActive bool   `json:"is_active"`
}

type Participant struct {
	ID     int64  `json:"id"`
	TeamID int64  `json:"team_id"`
	User   User   `json:"user"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

type TeamResponse struct {
	Team         Team          `json:"team"`
	Participants []Participant `json:"participants"`
}

type Notification struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type NotificationList struct {
	Notifications []Notification `json:"notifications"`
}

// TestE2E_TeamLifecycle тестирует полный жизненный цикл команды через
// все четыре сервиса и брокер
func TestE2E_TeamLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := SetupTestEnvironment(t)
	defer env.Cleanup(t)

	register := func(t *testing.T, email string) AuthResponse {
		t.Helper()
		body, _ := json.Marshal(RegisterRequest{
			Email:           email,
			FirstName:       "Test",
			LastName:        "User",
			Password:        "secret123",
			ConfirmPassword: "secret123",
		})

		resp := env.MakeRequest(t, http.MethodPost, UsersPort, "/register", bytes.NewReader(body), "")
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode, "Registration should succeed")

		var auth AuthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&auth))
		require.NotEmpty(t, auth.Token)
		return auth
	}

	var leader, member AuthResponse
	t.Run("Register Users", func(t *testing.T) {
		leader = register(t, "leader@example.com")
		member = register(t, "member@example.com")
		assert.NotEqual(t, leader.User.ID, member.User.ID)
	})

	// user.created должен дойти до сервиса events прежде чем автор
	// сможет создать мероприятие
	var event Event
	t.Run("Create Event", func(t *testing.T) {
		body, _ := json.Marshal(EventRequest{
			Name:      "Хакатон",
			Location:  "Казань",
			StartDate: "2026-09-10",
			EndDate:   "2026-09-12",
			Tags:      []string{"go", "backend"},
		})

		env.Eventually(t, 15*time.Second, func() bool {
			resp := env.MakeRequest(t, http.MethodPost, EventsPort, "/events", bytes.NewReader(body), leader.Token)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				return false
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&event))
			return true
		})

		require.NotZero(t, event.ID)
		require.NotNil(t, event.Author)
		assert.Equal(t, leader.User.ID, event.Author.ID)
	})

	// event.created должен дойти до сервиса teams
	var team Team
	t.Run("Create Team", func(t *testing.T) {
		body, _ := json.Marshal(TeamRequest{Name: "alpha", EventID: event.ID})

		env.Eventually(t, 15*time.Second, func() bool {
			resp := env.MakeRequest(t, http.MethodPost, TeamsPort, "/teams", bytes.NewReader(body), leader.Token)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				return false
			}
			var created TeamResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
			team = created.Team

			require.Len(t, created.Participants, 1)
			assert.Equal(t, "LEADER", created.Participants[0].Role)
			assert.Equal(t, "APPLIED", created.Participants[0].Status)
			return true
		})

		require.NotZero(t, team.ID)
	})

	var joined Participant
	t.Run("Member Requests to Join", func(t *testing.T) {
		var resp *http.Response
		env.Eventually(t, 15*time.Second, func() bool {
			resp = env.MakeRequest(t, http.MethodPost, TeamsPort, teamPath(team.ID)+"/participants", nil, member.Token)
			if resp.StatusCode != http.StatusCreated {
				resp.Body.Close()
				return false
			}
			return true
		})
		defer resp.Body.Close()

		require.NoError(t, json.NewDecoder(resp.Body).Decode(&joined))
		assert.Equal(t, "MEMBER", joined.Role)
		assert.Equal(t, "PENDING", joined.Status)
	})

	t.Run("Second Join Request is Rejected", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodPost, TeamsPort, teamPath(team.ID)+"/participants", nil, member.Token)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("Leader Approves Request", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"status": "APPLIED"})
		resp := env.MakeRequest(t, http.MethodPut, TeamsPort, participantPath(team.ID, joined.ID), bytes.NewReader(body), leader.Token)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var updated Participant
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
		assert.Equal(t, "APPLIED", updated.Status)
	})

	t.Run("Member Cannot Approve", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"status": "DECLINED"})
		resp := env.MakeRequest(t, http.MethodPut, TeamsPort, participantPath(team.ID, joined.ID), bytes.NewReader(body), member.Token)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Leader Kicks Member", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodDelete, TeamsPort, participantPath(team.ID, joined.ID), nil, leader.Token)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var kicked Participant
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&kicked))
		assert.Equal(t, "KICKED", kicked.Status)
	})

	t.Run("Kicked Member Cannot Rejoin", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodPost, TeamsPort, teamPath(team.ID)+"/participants", nil, member.Token)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("Member Receives Notifications", func(t *testing.T) {
		env.Eventually(t, 15*time.Second, func() bool {
			resp := env.MakeRequest(t, http.MethodGet, NotificationsPort, "/notifications", nil, member.Token)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return false
			}
			var list NotificationList
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))

			// Одобрение заявки + исключение из команды
			return len(list.Notifications) >= 2
		})
	})

	t.Run("Notifications are Private", func(t *testing.T) {
		listResp := env.MakeRequest(t, http.MethodGet, NotificationsPort, "/notifications", nil, member.Token)
		defer listResp.Body.Close()
		require.Equal(t, http.StatusOK, listResp.StatusCode)

		var list NotificationList
		require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
		require.NotEmpty(t, list.Notifications)

		resp := env.MakeRequest(t, http.MethodGet, NotificationsPort,
			notificationPath(list.Notifications[0].ID), nil, leader.Token)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Sole Leader Leaves and Team is Deactivated", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodDelete, TeamsPort, teamPath(team.ID)+"/participants", nil, leader.Token)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var left Participant
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&left))
		assert.Equal(t, "LEFT", left.Status)

		teamResp := env.MakeRequest(t, http.MethodGet, TeamsPort, teamPath(team.ID), nil, "")
		defer teamResp.Body.Close()
		require.Equal(t, http.StatusOK, teamResp.StatusCode)

		var got TeamResponse
		require.NoError(t, json.NewDecoder(teamResp.Body).Decode(&got))
		assert.False(t, got.Team.IsActive, "team without active participants is deactivated")
	})
}

// TestE2E_Auth проверяет регистрацию, логин и защиту эндпоинтов
func TestE2E_Auth(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := SetupTestEnvironment(t)
	defer env.Cleanup(t)

	body, _ := json.Marshal(RegisterRequest{
		Email:           "auth@example.com",
		FirstName:       "Auth",
		LastName:        "User",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})

	resp := env.MakeRequest(t, http.MethodPost, UsersPort, "/register", bytes.NewReader(body), "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	t.Run("Login", func(t *testing.T) {
		loginBody, _ := json.Marshal(map[string]string{
			"email":    "auth@example.com",
			"password": "secret123",
		})
		resp := env.MakeRequest(t, http.MethodPost, UsersPort, "/login", bytes.NewReader(loginBody), "")
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var auth AuthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&auth))
		assert.NotEmpty(t, auth.Token)

		meResp := env.MakeRequest(t, http.MethodGet, UsersPort, "/users/me", nil, auth.Token)
		defer meResp.Body.Close()
		assert.Equal(t, http.StatusOK, meResp.StatusCode)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		loginBody, _ := json.Marshal(map[string]string{
			"email":    "auth@example.com",
			"password": "wrong",
		})
		resp := env.MakeRequest(t, http.MethodPost, UsersPort, "/login", bytes.NewReader(loginBody), "")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Protected Endpoint Without Token", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodGet, UsersPort, "/users/me", nil, "")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
