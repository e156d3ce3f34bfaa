package services

import (
	"errors"
	"strings"

	"demobank/models"

	"golang.org/x/crypto/bcrypt"
)

// UserStore описывает хранилище пользователей
type UserStore interface {
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListUsersByRole(role models.Role) ([]models.User, error)
	CountUsers() (int64, error)
}

type UserService struct {
	store UserStore
}

type UserDTO struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type CreateUserRequest struct {
	FirstName string      `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string      `json:"lastName" validate:"required,min=2,max=50"`
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password" validate:"required,min=8"`
	Role      models.Role `json:"-"`
}

type UserResponse struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

// CreateUserInternal создает нового пользователя
func (h *UserService) CreateUserInternal(req CreateUserRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)

	// Проверяем, существует ли пользователь с таким email
	if _, err := h.store.GetUserByEmail(email); err == nil {
		return nil, errors.New("user with this email already exists")
	}

	// Хешируем пароль
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// Создаем нового пользователя
	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     email,
		Password:  string(hashedPassword),
		Role:      req.Role,
	}

	if err := h.store.CreateUser(user); err != nil {
		return nil, err
	}

	return user, nil
}

// FindByID ищет пользователя по ID
func (h *UserService) FindByID(id uint) (*models.User, error) {
	return h.store.GetUserByID(id)
}

// FindByEmail ищет пользователя по email (игнорируя регистр и пробелы)
func (h *UserService) FindByEmail(email string) (*models.User, error) {
	return h.store.GetUserByEmail(normalizeEmail(email))
}

// GetCustomers возвращает всех клиентов банка
func (h *UserService) GetCustomers() ([]UserDTO, error) {
	users, err := h.store.ListUsersByRole(models.RoleCustomer)
	if err != nil {
		return nil, err
	}

	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = UserDTO{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		}
	}
	return dtos, nil
}

// CountUsers возвращает общее количество пользователей
func (h *UserService) CountUsers() (int64, error) {
	return h.store.CountUsers()
}

// normalizeEmail приводит email к каноническому виду.
// Email хранится в нижнем регистре, поэтому поиск тоже нормализуется.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
