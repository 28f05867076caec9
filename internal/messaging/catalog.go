package messaging

// Routing keys всех доменных событий платформы.
// Каждому типу факта соответствует ровно один фиксированный ключ.
const (
	RoutingKeyUserCreated            = "user.created"
	RoutingKeyEventCreated           = "event.created"
	RoutingKeyEventEdited            = "event.edited"
	RoutingKeyUserJoinedRequest      = "user.joined_request"
	RoutingKeyUserJoinRequestUpdated = "user.join_request_updated"
	RoutingKeyUserLeftTeam           = "user.left_team"
	RoutingKeyUserKickedFromTeam     = "user.kicked_from_team"
)

// Действия в конверте командных событий
const (
	ActionJoinedRequest      = "joined_request"
	ActionJoinRequestUpdated = "join_request_updated"
	ActionLeftTeam           = "left_team"
	ActionKickedFromTeam     = "kicked_from_team"
)

// UserCreatedMessage это тело события user.created.
// Форма совпадает с REST-сериализацией пользователя в сервисе users.
// ID канонический: потребители создают локальную копию с тем же id.
type UserCreatedMessage struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// EventMessage это тело событий event.created и event.edited.
// Форма совпадает с REST-сериализацией события в сервисе events.
type EventMessage struct {
	ID              int64        `json:"id"`
	Name            string       `json:"name"`
	Image           string       `json:"image"`
	Location        string       `json:"location"`
	LocationURL     string       `json:"location_url"`
	Description     string       `json:"description"`
	FullDescription string       `json:"full_description"`
	StartDate       string       `json:"start_date"`
	EndDate         string       `json:"end_date"`
	Author          *UserSummary `json:"author,omitempty"`
	Tags            []string     `json:"tags"`
	IsActive        bool         `json:"is_active"`
}

// UserSummary это краткое представление пользователя внутри других событий
type UserSummary struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// TeamSummary это краткое представление команды внутри командных событий
type TeamSummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	EventID  int64  `json:"event_id"`
	IsActive bool   `json:"is_active"`
}

// TeamActionMessage это конверт командных событий (user.joined_request,
// user.join_request_updated, user.left_team, user.kicked_from_team).
// To содержит id пользователей-получателей, User - инициатора действия.
type TeamActionMessage struct {
	To     []int64     `json:"to"`
	User   UserSummary `json:"user"`
	Team   TeamSummary `json:"team"`
	Action string      `json:"action"`
}
