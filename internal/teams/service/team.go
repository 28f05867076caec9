package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/manuscript-app/manuscript/internal/messaging"
	"github.com/manuscript-app/manuscript/internal/teams/domain"
	"github.com/manuscript-app/manuscript/internal/teams/repository"
)

// TeamService handles business logic for teams and participations
type TeamService struct {
	uow         repository.UnitOfWork
	allowRejoin bool
	logger      *slog.Logger
}

// NewTeamService creates a new TeamService.
// With allowRejoin enabled only a non-terminal participation blocks a new
// join request; otherwise any historical row does.
func NewTeamService(uow repository.UnitOfWork, allowRejoin bool, logger *slog.Logger) *TeamService {
	return &TeamService{
		uow:         uow,
		allowRejoin: allowRejoin,
		logger:      logger,
	}
}

func userSummary(user *domain.User) messaging.UserSummary {
	return messaging.UserSummary{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

func teamSummary(team *domain.Team) messaging.TeamSummary {
	return messaging.TeamSummary{
		ID:       team.ID,
		Name:     team.Name,
		EventID:  team.EventID,
		IsActive: team.IsActive,
	}
}

func appendTeamFact(ctx context.Context, outbox messaging.OutboxStore, routingKey string, to []int64, user *domain.User, team *domain.Team, action string) error {
	if len(to) == 0 {
		return nil
	}

	body, err := json.Marshal(messaging.TeamActionMessage{
		To:     to,
		User:   userSummary(user),
		Team:   teamSummary(team),
		Action: action,
	})
	if err != nil {
		return err
	}
	return outbox.Append(ctx, routingKey, body)
}

// activeLeader returns the current LEADER participation of the team,
// nil if the team has none.
func activeLeader(participants []*domain.Participant) *domain.Participant {
	for _, p := range participants {
		if p.Role == domain.RoleLeader && !domain.IsTerminal(p.Status) {
			return p
		}
	}
	return nil
}

func (s *TeamService) requireLeader(ctx context.Context, r repository.Repositories, teamID, actingUserID int64) error {
	participants, err := r.Participants.ListByTeam(ctx, teamID)
	if err != nil {
		return err
	}
	leader := activeLeader(participants)
	if leader == nil || leader.User.ID != actingUserID {
		return domain.ErrUserIsNotTeamLeader
	}
	return nil
}

// CreateTeam creates a team for an event with the acting user as leader.
// The leader's own participation starts as APPLIED.
func (s *TeamService) CreateTeam(ctx context.Context, actingUserID, eventID int64, input repository.TeamInput) (*domain.Team, []*domain.Participant, error) {
	if input.Name == "" {
		return nil, nil, domain.ErrInvalidTeamData
	}

	var (
		created      *domain.Team
		participants []*domain.Participant
	)
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		if _, err := r.Events.GetByID(ctx, eventID); err != nil {
			return err
		}
		if _, err := r.Users.GetByID(ctx, actingUserID); err != nil {
			return err
		}

		var err error
		created, err = r.Teams.Create(ctx, eventID, input)
		if err != nil {
			return err
		}

		leader, err := r.Participants.Create(ctx, created.ID, actingUserID, domain.RoleLeader, domain.StatusApplied)
		if err != nil {
			return err
		}
		participants = []*domain.Participant{leader}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Team created", "team_id", created.ID, "leader_id", actingUserID)
	return created, participants, nil
}

// GetTeam retrieves a team with its participant list
func (s *TeamService) GetTeam(ctx context.Context, id int64) (*domain.Team, []*domain.Participant, error) {
	var (
		team         *domain.Team
		participants []*domain.Participant
	)
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		var err error
		team, err = r.Teams.GetByID(ctx, id)
		if err != nil {
			return err
		}
		participants, err = r.Participants.ListByTeam(ctx, id)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return team, participants, nil
}

// ListTeams returns teams, optionally only active ones
func (s *TeamService) ListTeams(ctx context.Context, onlyActive bool) ([]*domain.Team, error) {
	var teams []*domain.Team
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		var err error
		teams, err = r.Teams.List(ctx, onlyActive)
		return err
	})
	return teams, err
}

// EditTeam updates a team; only the current leader may edit
func (s *TeamService) EditTeam(ctx context.Context, id, actingUserID int64, input repository.TeamInput) (*domain.Team, error) {
	if input.Name == "" {
		return nil, domain.ErrInvalidTeamData
	}

	var edited *domain.Team
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		if _, err := r.Teams.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.requireLeader(ctx, r, id, actingUserID); err != nil {
			return err
		}

		var err error
		edited, err = r.Teams.Edit(ctx, id, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return edited, nil
}

// DeactivateTeam clears the active flag; only the current leader may do it
func (s *TeamService) DeactivateTeam(ctx context.Context, id, actingUserID int64) (*domain.Team, error) {
	var deactivated *domain.Team
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		if _, err := r.Teams.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.requireLeader(ctx, r, id, actingUserID); err != nil {
			return err
		}

		var err error
		deactivated, err = r.Teams.Deactivate(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return deactivated, nil
}

// hasBlockingParticipation reports whether an existing participation row
// forbids a new join request for the user.
func (s *TeamService) hasBlockingParticipation(ctx context.Context, r repository.Repositories, teamID, userID int64) (bool, error) {
	var err error
	if s.allowRejoin {
		_, err = r.Participants.GetActiveByTeamAndUser(ctx, teamID, userID)
	} else {
		_, err = r.Participants.GetByTeamAndUser(ctx, teamID, userID)
	}
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrParticipantNotFound) {
		return false, nil
	}
	return false, err
}

// JoinTeamRequest creates a PENDING participation for the acting user and
// notifies the team leader via user.joined_request.
func (s *TeamService) JoinTeamRequest(ctx context.Context, teamID, actingUserID int64) (*domain.Participant, error) {
	var created *domain.Participant
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		team, err := r.Teams.GetByID(ctx, teamID)
		if err != nil {
			return err
		}

		blocked, err := s.hasBlockingParticipation(ctx, r, teamID, actingUserID)
		if err != nil {
			return err
		}
		if blocked {
			return domain.ErrUserAlreadyHasParticipation
		}

		created, err = r.Participants.Create(ctx, teamID, actingUserID, domain.RoleMember, domain.StatusPending)
		if err != nil {
			return err
		}

		participants, err := r.Participants.ListByTeam(ctx, teamID)
		if err != nil {
			return err
		}
		var to []int64
		if leader := activeLeader(participants); leader != nil {
			to = append(to, leader.User.ID)
		}

		return appendTeamFact(ctx, r.Outbox, messaging.RoutingKeyUserJoinedRequest, to, created.User, team, messaging.ActionJoinedRequest)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Join request created", "team_id", teamID, "user_id", actingUserID)
	return created, nil
}

// ChangeParticipationStatus sets a participant's status; only the current
// leader may do it. The affected user is notified via
// user.join_request_updated.
func (s *TeamService) ChangeParticipationStatus(ctx context.Context, teamID, participantID int64, newStatus string, actingUserID int64) (*domain.Participant, error) {
	var updated *domain.Participant
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		team, err := r.Teams.GetByID(ctx, teamID)
		if err != nil {
			return err
		}

		participant, err := r.Participants.GetByID(ctx, teamID, participantID)
		if err != nil {
			return err
		}
		if !domain.ValidStatus(newStatus) {
			return domain.ErrInvalidParticipantStatus
		}
		if participant.Status == newStatus {
			return domain.ErrParticipantAlreadyHasStatus
		}
		if err := s.requireLeader(ctx, r, teamID, actingUserID); err != nil {
			return err
		}

		updated, err = r.Participants.SetStatus(ctx, participant.ID, newStatus)
		if err != nil {
			return err
		}

		to := []int64{updated.User.ID}
		return appendTeamFact(ctx, r.Outbox, messaging.RoutingKeyUserJoinRequestUpdated, to, updated.User, team, messaging.ActionJoinRequestUpdated)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Participation status changed", "team_id", teamID, "participant_id", participantID, "status", newStatus)
	return updated, nil
}

// KickParticipant sets a participant's status to KICKED; only the current
// leader may do it. The status is set unconditionally, so kicking an already
// kicked participant succeeds again. The kicked user is notified via
// user.kicked_from_team.
func (s *TeamService) KickParticipant(ctx context.Context, teamID, participantID, actingUserID int64) (*domain.Participant, error) {
	var kicked *domain.Participant
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		team, err := r.Teams.GetByID(ctx, teamID)
		if err != nil {
			return err
		}

		participant, err := r.Participants.GetByID(ctx, teamID, participantID)
		if err != nil {
			return err
		}
		if err := s.requireLeader(ctx, r, teamID, actingUserID); err != nil {
			return err
		}

		kicked, err = r.Participants.SetStatus(ctx, participant.ID, domain.StatusKicked)
		if err != nil {
			return err
		}

		to := []int64{kicked.User.ID}
		return appendTeamFact(ctx, r.Outbox, messaging.RoutingKeyUserKickedFromTeam, to, kicked.User, team, messaging.ActionKickedFromTeam)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Participant kicked", "team_id", teamID, "participant_id", participantID)
	return kicked, nil
}

// LeaveTeam sets the acting user's participation to LEFT. When the leader
// leaves, leadership passes to the earliest joined remaining participant;
// a team left without participants is deactivated. Remaining participants
// are notified via user.left_team.
func (s *TeamService) LeaveTeam(ctx context.Context, teamID, actingUserID int64) (*domain.Participant, error) {
	var left *domain.Participant
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		team, err := r.Teams.GetByID(ctx, teamID)
		if err != nil {
			return err
		}

		participant, err := r.Participants.GetActiveByTeamAndUser(ctx, teamID, actingUserID)
		if err != nil {
			if errors.Is(err, domain.ErrParticipantNotFound) {
				return domain.ErrUserIsNotParticipant
			}
			return err
		}

		left, err = r.Participants.SetStatus(ctx, participant.ID, domain.StatusLeft)
		if err != nil {
			return err
		}

		participants, err := r.Participants.ListByTeam(ctx, teamID)
		if err != nil {
			return err
		}

		var remaining []*domain.Participant
		for _, p := range participants {
			if !domain.IsTerminal(p.Status) {
				remaining = append(remaining, p)
			}
		}

		if participant.Role == domain.RoleLeader {
			if len(remaining) == 0 {
				team, err = r.Teams.Deactivate(ctx, teamID)
				if err != nil {
					return err
				}
			} else {
				// ListByTeam orders by id, so the first remaining
				// row is the earliest joined.
				if _, err := r.Participants.SetRole(ctx, remaining[0].ID, domain.RoleLeader); err != nil {
					return err
				}
			}
		}

		var to []int64
		for _, p := range remaining {
			to = append(to, p.User.ID)
		}

		return appendTeamFact(ctx, r.Outbox, messaging.RoutingKeyUserLeftTeam, to, left.User, team, messaging.ActionLeftTeam)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Participant left team", "team_id", teamID, "user_id", actingUserID)
	return left, nil
}
