package domain

// Роли участника команды
const (
	RoleLeader = "LEADER"
	RoleMember = "MEMBER"
)

// Статусы участия в команде
const (
	StatusPending  = "PENDING"
	StatusApplied  = "APPLIED"
	StatusDeclined = "DECLINED"
	StatusKicked   = "KICKED"
	StatusLeft     = "LEFT"
)

// Participant связывает пользователя с командой, ролью и статусом участия
type Participant struct {
	ID     int64  `json:"id"`
	TeamID int64  `json:"team_id"`
	User   *User  `json:"user"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// IsTerminal сообщает, что статус завершает жизненный цикл записи участия.
// Новая заявка на вступление создает новую запись.
func IsTerminal(status string) bool {
	return status == StatusDeclined || status == StatusKicked || status == StatusLeft
}

// ValidStatus проверяет, что значение входит в множество статусов участия
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusApplied, StatusDeclined, StatusKicked, StatusLeft:
		return true
	}
	return false
}
