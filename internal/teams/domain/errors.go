package domain

import "errors"

// Ошибки бизнес-логики сервиса команд
var (
	ErrInvalidTeamData             = errors.New("invalid team data")
	ErrTeamNotFound                = errors.New("team not found")
	ErrEventNotFound               = errors.New("event not found")
	ErrUserNotFound                = errors.New("user not found")
	ErrUserIsNotTeamLeader         = errors.New("user is not team leader")
	ErrUserAlreadyHasParticipation = errors.New("user already has participation in team")
	ErrParticipantNotFound         = errors.New("participant not found")
	ErrInvalidParticipantStatus    = errors.New("invalid participant status")
	ErrParticipantAlreadyHasStatus = errors.New("participant already has this status")
	ErrUserIsNotParticipant        = errors.New("user is not a participant of team")
)
