package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/manuscript-app/manuscript/internal/events/domain"
	"github.com/manuscript-app/manuscript/internal/events/repository"
	"github.com/manuscript-app/manuscript/internal/messaging"
)

// EventService handles business logic for events
type EventService struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// NewEventService creates a new EventService
func NewEventService(uow repository.UnitOfWork, logger *slog.Logger) *EventService {
	return &EventService{
		uow:    uow,
		logger: logger,
	}
}

// eventMessage builds the broadcast body for an event.
// The shape matches the REST serialization of the event.
func eventMessage(event *domain.Event) messaging.EventMessage {
	msg := messaging.EventMessage{
		ID:              event.ID,
		Name:            event.Name,
		Image:           event.Image,
		Location:        event.Location,
		LocationURL:     event.LocationURL,
		Description:     event.Description,
		FullDescription: event.FullDescription,
		StartDate:       event.StartDate,
		EndDate:         event.EndDate,
		Tags:            event.Tags,
		IsActive:        event.IsActive,
	}
	if event.Author != nil {
		msg.Author = &messaging.UserSummary{
			ID:        event.Author.ID,
			Username:  event.Author.Username,
			FirstName: event.Author.FirstName,
			LastName:  event.Author.LastName,
		}
	}
	return msg
}

func appendEventFact(ctx context.Context, outbox messaging.OutboxStore, routingKey string, event *domain.Event) error {
	body, err := json.Marshal(eventMessage(event))
	if err != nil {
		return err
	}
	return outbox.Append(ctx, routingKey, body)
}

// Create creates a new event and broadcasts event.created
func (s *EventService) Create(ctx context.Context, authorID int64, input repository.EventInput) (*domain.Event, error) {
	if input.Name == "" {
		return nil, domain.ErrInvalidEventData
	}

	var created *domain.Event
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		if _, err := r.Users.GetByID(ctx, authorID); err != nil {
			return err
		}

		var err error
		created, err = r.Events.Create(ctx, authorID, input)
		if err != nil {
			return err
		}

		return appendEventFact(ctx, r.Outbox, messaging.RoutingKeyEventCreated, created)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Event created", "event_id", created.ID)
	return created, nil
}

// Edit updates an event owned by the acting user and broadcasts event.edited
func (s *EventService) Edit(ctx context.Context, id, actingUserID int64, input repository.EventInput) (*domain.Event, error) {
	if input.Name == "" {
		return nil, domain.ErrInvalidEventData
	}

	var edited *domain.Event
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		event, err := r.Events.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if event.Author == nil || event.Author.ID != actingUserID {
			return domain.ErrUserIsNotEventAuthor
		}

		edited, err = r.Events.Edit(ctx, id, input)
		if err != nil {
			return err
		}

		return appendEventFact(ctx, r.Outbox, messaging.RoutingKeyEventEdited, edited)
	})
	if err != nil {
		return nil, err
	}

	return edited, nil
}

// Deactivate clears the active flag of an event owned by the acting user.
// Downstream services observe the change as a regular event.edited fact.
func (s *EventService) Deactivate(ctx context.Context, id, actingUserID int64) (*domain.Event, error) {
	var deactivated *domain.Event
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		event, err := r.Events.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if event.Author == nil || event.Author.ID != actingUserID {
			return domain.ErrUserIsNotEventAuthor
		}

		deactivated, err = r.Events.Deactivate(ctx, id)
		if err != nil {
			return err
		}

		return appendEventFact(ctx, r.Outbox, messaging.RoutingKeyEventEdited, deactivated)
	})
	if err != nil {
		return nil, err
	}

	return deactivated, nil
}

// GetByID retrieves an event by ID
func (s *EventService) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	var event *domain.Event
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		var err error
		event, err = r.Events.GetByID(ctx, id)
		return err
	})
	return event, err
}

// List returns events, optionally only active ones
func (s *EventService) List(ctx context.Context, onlyActive bool) ([]*domain.Event, error) {
	var events []*domain.Event
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		var err error
		events, err = r.Events.List(ctx, onlyActive)
		return err
	})
	return events, err
}
