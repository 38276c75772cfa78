package models

import "errors"

// Общие ошибки приложения
var (
	// Ошибки входных данных
	ErrValidation = errors.New("validation error")
	ErrBadRequest = errors.New("bad request")

	// Ошибки хранилища
	ErrNotFound          = errors.New("resource not found")
	ErrBookNotFound      = errors.New("book not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this username already exists")

	// Ошибки учетных записей
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Ошибки генерации
	ErrStoryGenerationFailed = errors.New("failed to generate story")
)
