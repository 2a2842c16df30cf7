package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationKind tags the event a notification was raised for.
type NotificationKind string

const (
	KindComplaintCreated       NotificationKind = "ComplaintCreated"
	KindComplaintStatusChanged NotificationKind = "ComplaintStatusChanged"
)

type Notification struct {
	ID        string                               `gorm:"primaryKey;column:id;size:36" json:"id"`
	Type      NotificationKind                     `gorm:"column:type" json:"type"`
	UserID    uint                                 `gorm:"column:user_id;index" json:"user_id"`
	Data      datatypes.JSONType[NotificationData] `gorm:"column:data" json:"data"`
	ReadAt    *time.Time                           `gorm:"column:read_at" json:"read_at"`
	CreatedAt time.Time                            `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time                            `gorm:"column:updated_at" json:"updated_at"`
}

func (Notification) TableName() string { return "notifications" }

// NotificationData is the structured payload stored with each notification.
// Status is set for ComplaintCreated, OldStatus/NewStatus for ComplaintStatusChanged.
type NotificationData struct {
	ComplaintID        uint            `json:"complaint_id"`
	RegistrationNumber string          `json:"registration_number"`
	ApplicantName      string          `json:"applicant_name"`
	ServiceName        string          `json:"service_name"`
	Status             ComplaintStatus `json:"status,omitempty"`
	OldStatus          ComplaintStatus `json:"old_status,omitempty"`
	NewStatus          ComplaintStatus `json:"new_status,omitempty"`
}
