package models

import (
	"time"

	"gorm.io/datatypes"
)

// Service is a catalog entry citizens can file complaints against.
type Service struct {
	ID                uint                        `gorm:"primaryKey;column:id" json:"id"`
	Name              string                      `gorm:"column:name" json:"name"`
	Description       string                      `gorm:"column:description" json:"description"`
	Category          *string                     `gorm:"column:category" json:"category"`
	RequiredDocuments datatypes.JSONSlice[string] `gorm:"column:required_documents" json:"required_documents"`
	IsActive          bool                        `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt         time.Time                   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time                   `gorm:"column:updated_at" json:"updated_at"`
}

func (Service) TableName() string {
	return "services"
}

// CategoryName returns the category or an empty string when unset.
func (s *Service) CategoryName() string {
	if s == nil || s.Category == nil {
		return ""
	}
	return *s.Category
}
