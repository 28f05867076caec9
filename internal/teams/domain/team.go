package domain

// Team представляет команду, привязанную к мероприятию
type Team struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	EventID  int64  `json:"event_id"`
	IsActive bool   `json:"is_active"`
}

// Event представляет локальную копию мероприятия.
// Запись обновляется только обработчиками событий event.created и event.edited.
type Event struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
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
