package services

import (
	"context"
	"time"

	"public-complaint-api/models"
)

// ServiceQuery filters the service catalog.
type ServiceQuery struct {
	Category   string
	Search     string
	IncludeAll bool
	Page       int
	PerPage    int
}

type ServiceStore interface {
	List(ctx context.Context, q ServiceQuery) ([]models.Service, int64, error)
	Categories(ctx context.Context) ([]string, error)
	FindByID(ctx context.Context, id uint) (*models.Service, error)
	Create(ctx context.Context, s *models.Service) error
	Update(ctx context.Context, s *models.Service) error
	Delete(ctx context.Context, id uint) error
	CountComplaints(ctx context.Context, serviceID uint) (int64, error)
}

// ComplaintStore persists complaints with their documents and history.
// WithinTx runs fn against a store bound to a single transaction.
type ComplaintStore interface {
	WithinTx(ctx context.Context, fn func(tx ComplaintStore) error) error
	Create(ctx context.Context, c *models.Complaint) error
	CreateDocument(ctx context.Context, d *models.ComplaintDocument) error
	AppendHistory(ctx context.Context, h *models.ComplaintStatusHistory) error
	UpdateStatus(ctx context.Context, c *models.Complaint) error
	FindByID(ctx context.Context, id uint) (*models.Complaint, error)
	FindForUpdate(ctx context.Context, id uint) (*models.Complaint, error)
	FindDetail(ctx context.Context, id uint) (*models.Complaint, error)
	FindByRegistrationNumber(ctx context.Context, number string) (*models.Complaint, error)
	FindDocument(ctx context.Context, complaintID, documentID uint) (*models.ComplaintDocument, error)
	List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, int64, error)
	Statistics(ctx context.Context, monthStart, yearStart time.Time) (*models.ComplaintStatistics, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID uint, page, perPage int) ([]models.Notification, int64, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID uint, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID uint, at time.Time) (int64, error)
	Delete(ctx context.Context, userID uint, id string) error
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string, exceptID uint) (bool, error)
	ExistsByNIK(ctx context.Context, nik string, exceptID uint) (bool, error)
}

// DefaultPerPage is the fixed page size of every listing.
const DefaultPerPage = 10

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
