package models

import "time"

// OrderStatusPending - начальный статус любого заказа.
const OrderStatusPending = "pending"

// CheckoutRequest - данные оформления заказа из последнего шага мастера.
// Платежные поля собираются, но не списываются.
type CheckoutRequest struct {
	BookID    int64  `json:"bookId" binding:"required,gt=0"`
	FirstName string `json:"firstName" binding:"required,notblank"`
	LastName  string `json:"lastName" binding:"required,notblank"`
	Email     string `json:"email" binding:"required,email"`
	Format    string `json:"format" binding:"required,notblank"`
	Total     string `json:"total" binding:"required,numeric,nonnegative"`

	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

// Order - сохраненный заказ на книгу.
type Order struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"bookId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	Zip       string    `json:"zip,omitempty"`
	Format    string    `json:"format"`
	Total     string    `json:"total"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// User - учетная запись. Имя пользователя уникально в пределах хранилища.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Не отдаем хеш пароля
	CreatedAt    time.Time `json:"createdAt"`
}
