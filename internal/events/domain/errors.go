package domain

import "errors"

// Доменные ошибки сервиса мероприятий
var (
	// ErrInvalidEventData возвращается при пустом названии мероприятия
	ErrInvalidEventData = errors.New("invalid event data")

	// ErrEventNotFound возвращается когда мероприятие не найдено
	ErrEventNotFound = errors.New("event not found")

	// ErrUserNotFound возвращается когда локальная копия пользователя не найдена
	ErrUserNotFound = errors.New("user not found")

	// ErrUserIsNotEventAuthor возвращается при попытке изменить чужое мероприятие
	ErrUserIsNotEventAuthor = errors.New("user is not event author")
)
