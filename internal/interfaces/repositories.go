package interfaces

import (
	"context"

	"storybook-server/internal/models"
)

// BookRepository определяет хранилище сгенерированных книг.
type BookRepository interface {
	// CreateBook сохраняет книгу и присваивает ей ID. Возвращает сохраненную копию.
	CreateBook(ctx context.Context, book *models.Book) (*models.Book, error)

	// GetBookByID возвращает копию книги.
	// Returns models.ErrBookNotFound if the book does not exist.
	GetBookByID(ctx context.Context, id int64) (*models.Book, error)

	// UpdateBookFormat обновляет формат и цену книги при оформлении заказа.
	UpdateBookFormat(ctx context.Context, id int64, format, price string) (*models.Book, error)
}

// OrderRepository определяет хранилище заказов.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// Returns models.ErrOrderNotFound if the order does not exist.
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
}

// UserRepository определяет хранилище учетных записей.
type UserRepository interface {
	// CreateUser сохраняет пользователя.
	// Returns models.ErrUserAlreadyExists if the username is taken.
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)

	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// GetUserByUsername retrieves a user by their username.
	// Returns models.ErrUserNotFound if the user does not exist.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}
