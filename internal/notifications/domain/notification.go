package domain

import "time"

// Статусы уведомления задают его оформление на клиенте
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusDanger  = "danger"
)

// Notification представляет уведомление пользователя.
// Записи создаются только обработчиками событий и никогда не изменяются.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// User представляет локальную копию пользователя.
// Запись обновляется только обработчиком события user.created.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
