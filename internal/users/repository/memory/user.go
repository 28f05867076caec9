package memory

import (
	"context"
	"sync"

	"github.com/manuscript-app/manuscript/internal/users/domain"
)

// UserRepository реализует repository.UserRepository в памяти для тестов
type UserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
	hashes map[string]string
}

// NewUserRepository создает новый экземпляр UserRepository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:  make(map[int64]*domain.User),
		hashes: make(map[string]string),
	}
}

// Create создает нового пользователя и возвращает его с присвоенным id
func (r *UserRepository) Create(ctx context.Context, user *domain.User, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}

	r.nextID++
	created := *user
	created.ID = r.nextID
	r.users[created.ID] = &created
	r.hashes[created.Email] = passwordHash

	out := created
	return &out, nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

// GetByEmail получает пользователя по email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// PasswordHashByEmail возвращает хеш пароля пользователя
func (r *UserRepository) PasswordHashByEmail(ctx context.Context, email string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash, ok := r.hashes[email]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return hash, nil
}

// List возвращает всех пользователей
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]*domain.User, 0, len(r.users))
	for id := int64(1); id <= r.nextID; id++ {
		if user, ok := r.users[id]; ok {
			out := *user
			users = append(users, &out)
		}
	}
	return users, nil
}
