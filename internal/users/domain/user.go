package domain

// User представляет учетную запись пользователя платформы.
// Это канонический источник идентичности: остальные сервисы хранят
// локальные копии, реплицируемые через событие user.created с тем же id.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
