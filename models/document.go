package models

import (
	"time"
)

// ComplaintDocument is a file attached to a complaint at submission time.
type ComplaintDocument struct {
	ID           uint      `gorm:"primaryKey;column:id" json:"id"`
	ComplaintID  uint      `gorm:"column:complaint_id;index" json:"complaint_id"`
	DocumentName string    `gorm:"column:document_name" json:"document_name"`
	DocumentType string    `gorm:"column:document_type" json:"document_type"`
	FilePath     string    `gorm:"column:file_path" json:"file_path"`
	FileSize     int64     `gorm:"column:file_size" json:"file_size"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (ComplaintDocument) TableName() string {
	return "complaint_documents"
}

// GetFileSizeInKB is used by the admin listing.
func (d *ComplaintDocument) GetFileSizeInKB() float64 {
	return float64(d.FileSize) / 1024
}
