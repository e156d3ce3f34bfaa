package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Role представляет роль пользователя в системе
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleBanker   Role = "BANKER"
)

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	FirstName string    `gorm:"column:first_name;not null;size:50"`
	LastName  string    `gorm:"column:last_name;not null;size:50"`
	Email     string    `gorm:"column:email;unique;not null;size:100;index"`
	Password  string    `gorm:"column:password;not null;size:100"`
	Role      Role      `gorm:"column:role;type:varchar(20);not null;default:'CUSTOMER'"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string {
	return "users"
}

// IsBanker сообщает, является ли пользователь банковским работником
func (u *User) IsBanker() bool {
	return u.Role == RoleBanker
}

// BeforeCreate хук для валидации перед созданием
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if len(u.FirstName) < 2 || len(u.FirstName) > 50 {
		return errors.New("first name must be between 2 and 50 characters")
	}
	if len(u.LastName) < 2 || len(u.LastName) > 50 {
		return errors.New("last name must be between 2 and 50 characters")
	}
	if len(u.Email) < 3 || len(u.Email) > 100 {
		return errors.New("email must be between 3 and 100 characters")
	}
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	if u.Role != RoleCustomer && u.Role != RoleBanker {
		return errors.New("unknown user role")
	}
	return nil
}
