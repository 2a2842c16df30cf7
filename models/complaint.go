package models

import (
	"time"
)

// ComplaintStatus is the closed set of states a complaint may be in.
type ComplaintStatus string

const (
	StatusPending   ComplaintStatus = "pending"
	StatusReviewing ComplaintStatus = "reviewing"
	StatusApproved  ComplaintStatus = "approved"
	StatusRevision  ComplaintStatus = "revision"
	StatusCompleted ComplaintStatus = "completed"
	StatusRejected  ComplaintStatus = "rejected"
)

// ComplaintStatuses lists every status in display order.
var ComplaintStatuses = []ComplaintStatus{
	StatusPending,
	StatusReviewing,
	StatusApproved,
	StatusRevision,
	StatusCompleted,
	StatusRejected,
}

func (s ComplaintStatus) Valid() bool {
	for _, known := range ComplaintStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s ComplaintStatus) String() string { return string(s) }

// NIKLength is the fixed length of an Indonesian national identity number.
const NIKLength = 16

type Complaint struct {
	ID                 uint            `gorm:"primaryKey;column:id" json:"id"`
	RegistrationNumber string          `gorm:"column:registration_number;uniqueIndex" json:"registration_number"`
	UserID             uint            `gorm:"column:user_id;index" json:"user_id"`
	ServiceID          uint            `gorm:"column:service_id;index" json:"service_id"`
	ApplicantName      string          `gorm:"column:applicant_name" json:"applicant_name"`
	ApplicantNIK       string          `gorm:"column:applicant_nik;size:16" json:"applicant_nik"`
	ApplicantAddress   string          `gorm:"column:applicant_address" json:"applicant_address"`
	ApplicantPhone     *string         `gorm:"column:applicant_phone" json:"applicant_phone"`
	ApplicantJob       *string         `gorm:"column:applicant_job" json:"applicant_job"`
	ApplicantBirthDate *time.Time      `gorm:"column:applicant_birth_date;type:date" json:"applicant_birth_date"`
	Description        *string         `gorm:"column:description" json:"description"`
	Status             ComplaintStatus `gorm:"column:status;default:pending" json:"status"`
	Notes              *string         `gorm:"column:notes" json:"notes"`
	ResultDocument     *string         `gorm:"column:result_document" json:"result_document"`
	CreatedAt          time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Service         *Service                 `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	User            *UserSummary             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Documents       []ComplaintDocument      `gorm:"foreignKey:ComplaintID" json:"documents,omitempty"`
	StatusHistories []ComplaintStatusHistory `gorm:"foreignKey:ComplaintID" json:"status_histories,omitempty"`
}

func (Complaint) TableName() string {
	return "complaints"
}

// ServiceName returns the hydrated service name, or "-" when the relation is missing.
func (c *Complaint) ServiceName() string {
	if c.Service == nil || c.Service.Name == "" {
		return "-"
	}
	return c.Service.Name
}

// ComplaintFilter narrows complaint listings.
type ComplaintFilter struct {
	OwnerID   *uint
	Status    ComplaintStatus
	ServiceID uint
	Search    string
	Page      int
	PerPage   int
}

// ComplaintStatistics is the admin dashboard aggregate.
type ComplaintStatistics struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Reviewing int64 `json:"reviewing"`
	Approved  int64 `json:"approved"`
	Revision  int64 `json:"revision"`
	Completed int64 `json:"completed"`
	Rejected  int64 `json:"rejected"`
	ThisMonth int64 `json:"this_month"`
	ThisYear  int64 `json:"this_year"`
}
