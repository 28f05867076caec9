package domain

import "errors"

// Ошибки бизнес-логики сервиса уведомлений
var (
	ErrNotificationNotFound       = errors.New("notification not found")
	ErrUserIsNotNotificationOwner = errors.New("user is not notification owner")
	ErrUserNotFound               = errors.New("user not found")
)
