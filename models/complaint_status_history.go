package models

import "time"

// ComplaintStatusHistory is an append-only record of every status assignment.
type ComplaintStatusHistory struct {
	ID          uint            `gorm:"primaryKey;column:id" json:"id"`
	ComplaintID uint            `gorm:"column:complaint_id;index" json:"complaint_id"`
	Status      ComplaintStatus `gorm:"column:status" json:"status"`
	Notes       *string         `gorm:"column:notes" json:"notes"`
	UserID      uint            `gorm:"column:user_id" json:"user_id"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at" json:"updated_at"`

	User *UserSummary `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table for ComplaintStatusHistory.
func (ComplaintStatusHistory) TableName() string {
	return "complaint_status_histories"
}
