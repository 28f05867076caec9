package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/manuscript-app/manuscript/internal/auth"
	"github.com/manuscript-app/manuscript/internal/messaging"
	"github.com/manuscript-app/manuscript/internal/users/domain"
	"github.com/manuscript-app/manuscript/internal/users/repository"
)

// UserService handles registration, authentication and user lookups
type UserService struct {
	uow    repository.UnitOfWork
	tokens *auth.TokenManager
	logger *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(uow repository.UnitOfWork, tokens *auth.TokenManager, logger *slog.Logger) *UserService {
	return &UserService{
		uow:    uow,
		tokens: tokens,
		logger: logger,
	}
}

// RegisterInput carries the registration request fields
type RegisterInput struct {
	Email           string
	FirstName       string
	LastName        string
	Password        string
	ConfirmPassword string
}

// Register creates a new user and returns it with a signed JWT token.
// The user.created fact is appended to the outbox in the same transaction
// as the insert, so a committed registration is always eventually broadcast.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	if input.Password != input.ConfirmPassword {
		return nil, "", domain.ErrInvalidUserData
	}
	if input.Email == "" || input.FirstName == "" || input.LastName == "" || input.Password == "" {
		return nil, "", domain.ErrInvalidUserData
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	var created *domain.User
	err = s.uow.Do(ctx, func(r repository.Repositories) error {
		user := &domain.User{
			// Username duplicates the email, matching the REST serialization
			Username:  input.Email,
			Email:     input.Email,
			FirstName: input.FirstName,
			LastName:  input.LastName,
		}

		created, err = r.Users.Create(ctx, user, string(hash))
		if err != nil {
			return err
		}

		body, err := json.Marshal(messaging.UserCreatedMessage{
			ID:        created.ID,
			Username:  created.Username,
			Email:     created.Email,
			FirstName: created.FirstName,
			LastName:  created.LastName,
		})
		if err != nil {
			return err
		}

		return r.Outbox.Append(ctx, messaging.RoutingKeyUserCreated, body)
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(created.ID, created.Email)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("User registered", "user_id", created.ID)
	return created, token, nil
}

// Login verifies credentials and returns the user with a signed JWT token
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	var user *domain.User
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		hash, err := r.Users.PasswordHashByEmail(ctx, email)
		if err != nil {
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
			return domain.ErrAuthentication
		}
		user, err = r.Users.GetByEmail(ctx, email)
		return err
	})
	if err != nil {
		if err == domain.ErrUserNotFound {
			// Do not reveal whether the email is registered
			return nil, "", domain.ErrAuthentication
		}
		return nil, "", err
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		var err error
		user, err = r.Users.GetByID(ctx, id)
		return err
	})
	return user, err
}

// List returns all users
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		var err error
		users, err = r.Users.List(ctx)
		return err
	})
	return users, err
}
