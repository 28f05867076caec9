package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manuscript-app/manuscript/internal/messaging"
	"github.com/manuscript-app/manuscript/internal/teams/domain"
	"github.com/manuscript-app/manuscript/internal/teams/repository"
	"github.com/manuscript-app/manuscript/internal/teams/repository/memory"
)

func newTestService(t *testing.T, allowRejoin bool) (*TeamService, *memory.UnitOfWork) {
	t.Helper()

	uow := memory.NewUnitOfWork()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTeamService(uow, allowRejoin, logger), uow
}

// seed наполняет локальные копии так, как это сделали бы обработчики событий
func seed(t *testing.T, uow *memory.UnitOfWork, eventID int64, userIDs ...int64) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, uow.Events.Upsert(ctx, &domain.Event{ID: eventID, Name: "hackathon", IsActive: true}))
	for _, id := range userIDs {
		require.NoError(t, uow.Users.Upsert(ctx, &domain.User{
			ID:       id,
			Username: "user",
			Email:    "user@example.com",
		}))
	}
}

func lastFact(t *testing.T, uow *memory.UnitOfWork) (string, messaging.TeamActionMessage) {
	t.Helper()

	all := uow.Outbox.All()
	require.NotEmpty(t, all, "expected a team fact in the outbox")

	var msg messaging.TeamActionMessage
	last := all[len(all)-1]
	require.NoError(t, json.Unmarshal(last.Body, &msg))
	return last.RoutingKey, msg
}

// TestCreateTeam проверяет создание команды и запись участия лидера
func TestCreateTeam(t *testing.T) {
	ctx := context.Background()

	t.Run("создает команду с лидером в статусе APPLIED", func(t *testing.T) {
		svc, uow := newTestService(t, false)
		seed(t, uow, 1, 10)

		team, participants, err := svc.CreateTeam(ctx, 10, 1, repository.TeamInput{Name: "alpha"})
		require.NoError(t, err)

		assert.True(t, team.IsActive)
		assert.Equal(t, int64(1), team.EventID)
		require.Len(t, participants, 1)
		assert.Equal(t, domain.RoleLeader, participants[0].Role)
		assert.Equal(t, domain.StatusApplied, participants[0].Status)
		assert.Equal(t, int64(10), participants[0].User.ID)
	})

	t.Run("отклоняет пустое имя", func(t *testing.T) {
		svc, uow := newTestService(t, false)
		seed(t, uow, 1, 10)

		_, _, err := svc.CreateTeam(ctx, 10, 1, repository.TeamInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidTeamData)
	})

	t.Run("отклоняет неизвестное мероприятие", func(t *testing.T) {
		svc, uow := newTestService(t, false)
		seed(t, uow, 1, 10)

		_, _, err := svc.CreateTeam(ctx, 10, 99, repository.TeamInput{Name: "alpha"})
		assert.ErrorIs(t, err, domain.ErrEventNotFound)
	})
}

// TestJoinTeamRequest проверяет создание заявки и защиту от повторной заявки
func TestJoinTeamRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("создает заявку в статусе PENDING и уведомляет лидера", func(t *testing.T) {
		svc, uow := newTestService(t, false)
		seed(t, uow, 1, 10, 20)

		team, _, err := svc.CreateTeam(ctx, 10, 1, repository.TeamInput{Name: "alpha"})
		require.NoError(t, err)

		participant, err := svc.JoinTeamRequest(ctx, team.ID, 20)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleMember, participant.Role)
		assert.Equal(t, domain.StatusPending, participant.Status)

		routingKey, msg := lastFact(t, uow)
		assert.Equal(t, messaging.RoutingKeyUserJoinedRequest, routingKey)
		assert.Equal(t, messaging.ActionJoinedRequest, msg.Action)
		assert.Equal(t, []int64{10}, msg.To)
		assert.Equal(t, int64(20), msg.User.ID)
	})

	t.Run("повторная заявка отклоняется", func(t *testing.T) {
		svc, uow := newTestService(t, false)
		seed(t, uow, 1, 10, 20)

		team, _, err := svc.CreateTeam(ctx, 10, 1, repository.TeamInput{Name: "alpha"})
		require.NoError(t, err)

		_, err = svc.JoinTeamRequest(ctx, team.ID, 20)
		require.NoError(t, err)

		_, err = svc.JoinTeamRequest(ctx, team.ID, 20)
		assert.ErrorIs(t, err, domain.ErrUserAlreadyHasParticipation)
	})

	t.Run("неизвестная команда", func(t *testing.T) {
		svc, uow := newTestService(t, false)
		seed(t, uow, 1, 20)

		_, err := svc.JoinTeamRequest(ctx, 99, 20)
		assert.ErrorIs(t, err, domain.ErrTeamNotFound)
	})

	t.Run("исключенный пользователь не может вступить повторно", func(t *testing.T) {
		svc, uow := newTestService(t, false)
		seed(t, uow, 1, 10, 20)

		team, _, err := svc.CreateTeam(ctx, 10, 1, repository.TeamInput{Name: "alpha"})
		require.NoError(t, err)

		joined, err := svc.JoinTeamRequest(ctx, team.ID, 20)
		require.NoError(t, err)

		_, err = svc.KickParticipant(ctx, team.ID, joined.ID, 10)
		require.NoError(t, err)

		_, err = svc.JoinTeamRequest(ctx, team.ID, 20)
		assert.ErrorIs(t, err, domain.ErrUserAlreadyHasParticipation)
	})

	t.Run("с allowRejoin исключенный пользователь может вступить повторно", func(t *testing.T) {
		svc, uow := newTestService(t, true)
		seed(t, uow, 1, 10, 20)

		team, _, err := svc.CreateTeam(ctx, 10, 1, repository.TeamInput{Name: "alpha"})
		require.NoError(t, err)

		joined, err := svc.JoinTeamRequest(ctx, team.ID, 20)
		require.NoError(t, err)

		_, err = svc.KickParticipant(ctx, team.ID, joined.ID, 10)
		require.NoError(t, err)

		again, err := svc.JoinTeamRequest(ctx, team.ID, 20)
		require.NoError(t, err)
		assert.NotEqual(t, joined.ID, again.ID, "rejoin creates a new participation row")
		assert.Equal(t, domain.StatusPending, again.Status)
	})
}

// TestChangeParticipationStatus проверяет смену статуса заявки лидером
func TestChangeParticipationStatus(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*TeamService, *memory.UnitOfWork, *domain.Team, *domain.Participant) {
		svc, uow := newTestService(t, false)
		seed(t, uow, 1, 10, 20)

		team, _, err := svc.CreateTeam(ctx, 10, 1, repository.TeamInput{Name: "alpha"})
		require.NoError(t, err)

		joined, err := svc.JoinTeamRequest(ctx, team.ID, 20)
		require.NoError(t, err)
		return svc, uow, team, joined
	}

	t.Run("лидер одобряет заявку", func(t *testing.T) {
		svc, uow, team, joined := setup(t)

		updated, err := svc.ChangeParticipationStatus(ctx, team.ID, joined.ID, domain.StatusApplied, 10)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusApplied, updated.Status)

		routingKey, msg := lastFact(t, uow)
		assert.Equal(t, messaging.RoutingKeyUserJoinRequestUpdated, routingKey)
		assert.Equal(t, []int64{20}, msg.To)
	})

	t.Run("не лидер получает отказ", func(t *testing.T) {
		svc, _, team, joined := setup(t)

		_, err := svc.ChangeParticipationStatus(ctx, team.ID, joined.ID, domain.StatusApplied, 20)
		assert.ErrorIs(t, err, domain.ErrUserIsNotTeamLeader)
	})

	t.Run("смена на текущий статус отклоняется и ничего не меняет", func(t *testing.T) {
		svc, _, team, joined := setup(t)

		_, err := svc.ChangeParticipationStatus(ctx, team.ID, joined.ID, domain.StatusPending, 10)
		assert.ErrorIs(t, err, domain.ErrParticipantAlreadyHasStatus)

		_, participants, err := svc.GetTeam(ctx, team.ID)
		require.NoError(t, err)
		for _, p := range participants {
			if p.ID == joined.ID {
				assert.Equal(t, domain.StatusPending, p.Status)
			}
		}
	})

	t.Run("неизвестный статус отклоняется", func(t *testing.T) {
		svc, _, team, joined := setup(t)

		_, err := svc.ChangeParticipationStatus(ctx, team.ID, joined.ID, "BANNED", 10)
		assert.ErrorIs(t, err, domain.ErrInvalidParticipantStatus)
	})

	t.Run("неизвестный участник", func(t *testing.T) {
		svc, _, team, _ := setup(t)

		_, err := svc.ChangeParticipationStatus(ctx, team.ID, 999, domain.StatusApplied, 10)
		assert.ErrorIs(t, err, domain.ErrParticipantNotFound)
	})
}

// TestKickParticipant проверяет исключение участника лидером
func TestKickParticipant(t *testing.T) {
	ctx := context.Background()

	t.Run("лидер исключает участника и тот получает уведомление", func(t *testing.T) {
		svc, uow := newTestService(t, false)
		seed(t, uow, 1, 10, 20)

		team, _, err := svc.CreateTeam(ctx, 10, 1, repository.TeamInput{Name: "alpha"})
		require.NoError(t, err)

		joined, err := svc.JoinTeamRequest(ctx, team.ID, 20)
		require.NoError(t, err)

		kicked, err := svc.KickParticipant(ctx, team.ID, joined.ID, 10)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusKicked, kicked.Status)

		routingKey, msg := lastFact(t, uow)
		assert.Equal(t, messaging.RoutingKeyUserKickedFromTeam, routingKey)
		assert.Equal(t, []int64{20}, msg.To)
	})

	t.Run("повторное исключение проходит без ошибки", func(t *testing.T) {
		svc, uow := newTestService(t, false)
		seed(t, uow, 1, 10, 20)

		team, _, err := svc.CreateTeam(ctx, 10, 1, repository.TeamInput{Name: "alpha"})
		require.NoError(t, err)

		joined, err := svc.JoinTeamRequest(ctx, team.ID, 20)
		require.NoError(t, err)

		_, err = svc.KickParticipant(ctx, team.ID, joined.ID, 10)
		require.NoError(t, err)

		kicked, err := svc.KickParticipant(ctx, team.ID, joined.ID, 10)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusKicked, kicked.Status)
	})

	t.Run("не лидер получает отказ", func(t *testing.T) {
		svc, uow := newTestService(t, false)
		seed(t, uow, 1, 10, 20, 30)

		team, _, err := svc.CreateTeam(ctx, 10, 1, repository.TeamInput{Name: "alpha"})
		require.NoError(t, err)

		joined, err := svc.JoinTeamRequest(ctx, team.ID, 20)
		require.NoError(t, err)

		_, err = svc.KickParticipant(ctx, team.ID, joined.ID, 30)
		assert.ErrorIs(t, err, domain.ErrUserIsNotTeamLeader)
	})
}

// TestLeaveTeam проверяет выход из команды и передачу лидерства
func TestLeaveTeam(t *testing.T) {
	ctx := context.Background()

	t.Run("единственный лидер уходит и команда деактивируется", func(t *testing.T) {
		svc, uow := newTestService(t, false)
		seed(t, uow, 1, 10)

		team, _, err := svc.CreateTeam(ctx, 10, 1, repository.TeamInput{Name: "alpha"})
		require.NoError(t, err)

		left, err := svc.LeaveTeam(ctx, team.ID, 10)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusLeft, left.Status)

		updated, _, err := svc.GetTeam(ctx, team.ID)
		require.NoError(t, err)
		assert.False(t, updated.IsActive)
	})

	t.Run("лидер уходит и лидерство переходит самому раннему участнику", func(t *testing.T) {
		svc, uow := newTestService(t, false)
		seed(t, uow, 1, 10, 20, 30)

		team, _, err := svc.CreateTeam(ctx, 10, 1, repository.TeamInput{Name: "alpha"})
		require.NoError(t, err)

		second, err := svc.JoinTeamRequest(ctx, team.ID, 20)
		require.NoError(t, err)
		third, err := svc.JoinTeamRequest(ctx, team.ID, 30)
		require.NoError(t, err)

		_, err = svc.LeaveTeam(ctx, team.ID, 10)
		require.NoError(t, err)

		updated, participants, err := svc.GetTeam(ctx, team.ID)
		require.NoError(t, err)
		assert.True(t, updated.IsActive, "team stays active while participants remain")

		var leaders []int64
		for _, p := range participants {
			if p.Role == domain.RoleLeader && !domain.IsTerminal(p.Status) {
				leaders = append(leaders, p.ID)
			}
		}
		require.Len(t, leaders, 1, "exactly one remaining participant is promoted")
		assert.Equal(t, second.ID, leaders[0])

		for _, p := range participants {
			if p.ID == third.ID {
				assert.Equal(t, domain.RoleMember, p.Role, "other participants keep their role")
			}
		}

		routingKey, msg := lastFact(t, uow)
		assert.Equal(t, messaging.RoutingKeyUserLeftTeam, routingKey)
		assert.ElementsMatch(t, []int64{20, 30}, msg.To)
	})

	t.Run("рядовой участник уходит без смены лидера", func(t *testing.T) {
		svc, uow := newTestService(t, false)
		seed(t, uow, 1, 10, 20)

		team, _, err := svc.CreateTeam(ctx, 10, 1, repository.TeamInput{Name: "alpha"})
		require.NoError(t, err)

		_, err = svc.JoinTeamRequest(ctx, team.ID, 20)
		require.NoError(t, err)

		left, err := svc.LeaveTeam(ctx, team.ID, 20)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusLeft, left.Status)

		updated, participants, err := svc.GetTeam(ctx, team.ID)
		require.NoError(t, err)
		assert.True(t, updated.IsActive)

		leader := participants[0]
		assert.Equal(t, domain.RoleLeader, leader.Role)
		assert.Equal(t, domain.StatusApplied, leader.Status)
	})

	t.Run("не участник получает отказ", func(t *testing.T) {
		svc, uow := newTestService(t, false)
		seed(t, uow, 1, 10, 20)

		team, _, err := svc.CreateTeam(ctx, 10, 1, repository.TeamInput{Name: "alpha"})
		require.NoError(t, err)

		_, err = svc.LeaveTeam(ctx, team.ID, 20)
		assert.ErrorIs(t, err, domain.ErrUserIsNotParticipant)
	})
}

// TestEditTeam проверяет права на редактирование и деактивацию команды
func TestEditTeam(t *testing.T) {
	ctx := context.Background()

	t.Run("лидер редактирует команду", func(t *testing.T) {
		svc, uow := newTestService(t, false)
		seed(t, uow, 1, 10)

		team, _, err := svc.CreateTeam(ctx, 10, 1, repository.TeamInput{Name: "alpha"})
		require.NoError(t, err)

		edited, err := svc.EditTeam(ctx, team.ID, 10, repository.TeamInput{Name: "beta"})
		require.NoError(t, err)
		assert.Equal(t, "beta", edited.Name)
	})

	t.Run("не лидер получает отказ", func(t *testing.T) {
		svc, uow := newTestService(t, false)
		seed(t, uow, 1, 10, 20)

		team, _, err := svc.CreateTeam(ctx, 10, 1, repository.TeamInput{Name: "alpha"})
		require.NoError(t, err)

		_, err = svc.EditTeam(ctx, team.ID, 20, repository.TeamInput{Name: "beta"})
		assert.ErrorIs(t, err, domain.ErrUserIsNotTeamLeader)

		_, err = svc.DeactivateTeam(ctx, team.ID, 20)
		assert.ErrorIs(t, err, domain.ErrUserIsNotTeamLeader)
	})
}
