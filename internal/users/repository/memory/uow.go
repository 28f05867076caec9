package memory

import (
	"context"

	"github.com/manuscript-app/manuscript/internal/messaging"
	"github.com/manuscript-app/manuscript/internal/users/repository"
)

// UnitOfWork реализует repository.UnitOfWork в памяти: транзакционность
// не моделируется, fn получает одни и те же репозитории
type UnitOfWork struct {
	Users  *UserRepository
	Outbox *messaging.MemoryOutbox
}

// NewUnitOfWork создает новый экземпляр UnitOfWork с пустыми репозиториями
func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{
		Users:  NewUserRepository(),
		Outbox: messaging.NewMemoryOutbox(),
	}
}

// Do выполняет fn с репозиториями в памяти
func (u *UnitOfWork) Do(ctx context.Context, fn func(r repository.Repositories) error) error {
	return fn(repository.Repositories{
		Users:  u.Users,
		Outbox: u.Outbox,
	})
}
