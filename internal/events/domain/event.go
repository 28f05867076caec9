package domain

// Event представляет мероприятие платформы.
// Это канонический источник: остальные сервисы держат урезанные локальные
// копии, реплицируемые через события event.created и event.edited.
type Event struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Image           string   `json:"image"`
	Location        string   `json:"location"`
	LocationURL     string   `json:"location_url"`
	Description     string   `json:"description"`
	FullDescription string   `json:"full_description"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	Author          *User    `json:"author"`
	Tags            []string `json:"tags"`
	IsActive        bool     `json:"is_active"`
}

// User представляет локальную копию пользователя.
// Запись создается только обработчиком события user.created с каноническим id.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
