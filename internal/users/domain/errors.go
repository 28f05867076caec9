package domain

import "errors"

// Доменные ошибки сервиса пользователей
var (
	// ErrInvalidUserData возвращается при пустых обязательных полях
	// или несовпадении паролей при регистрации
	ErrInvalidUserData = errors.New("invalid user data")

	// ErrUserExists возвращается при попытке зарегистрировать занятый email
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound возвращается когда пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrAuthentication возвращается при неверном email или пароле
	ErrAuthentication = errors.New("authentication failed")
)
