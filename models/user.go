package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        uint       `gorm:"primaryKey;column:id" json:"id"`
	Name      string     `gorm:"column:name" json:"name"`
	NIK       string     `gorm:"column:nik;size:16;uniqueIndex" json:"nik"`
	Email     string     `gorm:"column:email;uniqueIndex" json:"email"`
	Password  string     `gorm:"column:password" json:"-"`
	Phone     *string    `gorm:"column:phone" json:"phone,omitempty"`
	Address   *string    `gorm:"column:address" json:"address,omitempty"`
	BirthDate *time.Time `gorm:"column:birth_date;type:date" json:"birth_date,omitempty"`
	Job       *string    `gorm:"column:job" json:"job,omitempty"`
	Role      string     `gorm:"column:role;default:user" json:"role"`
	IsActive  bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user carries the administrator role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserSummary is the identity attached to status-history entries.
type UserSummary struct {
	ID    uint   `gorm:"primaryKey;column:id" json:"id"`
	Name  string `gorm:"column:name" json:"name"`
	Email string `gorm:"column:email" json:"email"`
	Role  string `gorm:"column:role" json:"role"`
}

func (UserSummary) TableName() string {
	return "users"
}
