package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"storybook-server/internal/interfaces"
	"storybook-server/internal/models"
)

// Compile-time проверки реализации интерфейсов
var (
	_ interfaces.BookRepository  = (*MemoryBookRepository)(nil)
	_ interfaces.OrderRepository = (*MemoryOrderRepository)(nil)
	_ interfaces.UserRepository  = (*MemoryUserRepository)(nil)
)

// Store объединяет in-memory хранилища всех сущностей.
// Создается один раз в main и передается в сервисы.
type Store struct {
	Books  *MemoryBookRepository
	Orders *MemoryOrderRepository
	Users  *MemoryUserRepository
}

// NewStore создает пустое хранилище.
func NewStore() *Store {
	return &Store{
		Books:  NewMemoryBookRepository(),
		Orders: NewMemoryOrderRepository(),
		Users:  NewMemoryUserRepository(),
	}
}

// --- Books ---

type MemoryBookRepository struct {
	mu     sync.RWMutex
	nextID int64
	books  map[int64]*models.Book
}

func NewMemoryBookRepository() *MemoryBookRepository {
	return &MemoryBookRepository{
		nextID: 1,
		books:  make(map[int64]*models.Book),
	}
}

func (r *MemoryBookRepository) CreateBook(_ context.Context, book *models.Book) (*models.Book, error) {
	if book == nil {
		return nil, fmt.Errorf("%w: book is nil", models.ErrBadRequest)
	}
	stored := book.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored.ID = r.nextID
	r.nextID++
	r.books[stored.ID] = stored

	return stored.Clone(), nil
}

func (r *MemoryBookRepository) GetBookByID(_ context.Context, id int64) (*models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.books[id]
	if !ok {
		return nil, models.ErrBookNotFound
	}
	return book.Clone(), nil
}

func (r *MemoryBookRepository) UpdateBookFormat(_ context.Context, id int64, format, price string) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[id]
	if !ok {
		return nil, models.ErrBookNotFound
	}
	book.Format = format
	book.Price = price
	return book.Clone(), nil
}

// --- Orders ---

type MemoryOrderRepository struct {
	mu     sync.RWMutex
	nextID int64
	orders map[int64]models.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		nextID: 1,
		orders: make(map[int64]models.Order),
	}
}

func (r *MemoryOrderRepository) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	if order == nil {
		return nil, fmt.Errorf("%w: order is nil", models.ErrBadRequest)
	}
	stored := *order
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored.ID = r.nextID
	r.nextID++
	r.orders[stored.ID] = stored

	return &stored, nil
}

func (r *MemoryOrderRepository) GetOrderByID(_ context.Context, id int64) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return &order, nil
}

// --- Users ---

type MemoryUserRepository struct {
	mu         sync.RWMutex
	nextID     int64
	users      map[int64]models.User
	byUsername map[string]int64
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		nextID:     1,
		users:      make(map[int64]models.User),
		byUsername: make(map[string]int64),
	}
}

func (r *MemoryUserRepository) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	if user == nil {
		return nil, fmt.Errorf("%w: user is nil", models.ErrBadRequest)
	}
	stored := *user
	key := usernameKey(stored.Username)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[key]; exists {
		return nil, models.ErrUserAlreadyExists
	}
	stored.ID = r.nextID
	r.nextID++
	r.users[stored.ID] = stored
	r.byUsername[key] = stored.ID

	return &stored, nil
}

func (r *MemoryUserRepository) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[usernameKey(username)]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	user := r.users[id]
	return &user, nil
}

// Имена пользователей сравниваются без учета регистра и крайних пробелов
func usernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
