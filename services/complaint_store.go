package services

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"public-complaint-api/config"
	"public-complaint-api/models"
)

const complaintStatisticsSQL = `SELECT COUNT(*) AS total,
	COALESCE(SUM(status = 'pending'), 0) AS pending,
	COALESCE(SUM(status = 'reviewing'), 0) AS reviewing,
	COALESCE(SUM(status = 'approved'), 0) AS approved,
	COALESCE(SUM(status = 'revision'), 0) AS revision,
	COALESCE(SUM(status = 'completed'), 0) AS completed,
	COALESCE(SUM(status = 'rejected'), 0) AS rejected,
	COALESCE(SUM(created_at >= ?), 0) AS this_month,
	COALESCE(SUM(created_at >= ?), 0) AS this_year
FROM complaints`

// GormComplaintStore is the MySQL complaint store.
type GormComplaintStore struct {
	db *gorm.DB
}

func NewGormComplaintStore(db *gorm.DB) *GormComplaintStore {
	if db == nil {
		db = config.DB
	}
	return &GormComplaintStore{db: db}
}

func (s *GormComplaintStore) WithinTx(ctx context.Context, fn func(tx ComplaintStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormComplaintStore{db: tx})
	})
}

func (s *GormComplaintStore) Create(ctx context.Context, c *models.Complaint) error {
	return translateGormError(s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error)
}

func (s *GormComplaintStore) CreateDocument(ctx context.Context, d *models.ComplaintDocument) error {
	return translateGormError(s.db.WithContext(ctx).Create(d).Error)
}

func (s *GormComplaintStore) AppendHistory(ctx context.Context, h *models.ComplaintStatusHistory) error {
	return translateGormError(s.db.WithContext(ctx).Omit(clause.Associations).Create(h).Error)
}

// UpdateStatus writes only the fields an administrator may change.
func (s *GormComplaintStore) UpdateStatus(ctx context.Context, c *models.Complaint) error {
	res := s.db.WithContext(ctx).Model(&models.Complaint{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"status":          c.Status,
			"notes":           c.Notes,
			"result_document": c.ResultDocument,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return translateGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormComplaintStore) FindByID(ctx context.Context, id uint) (*models.Complaint, error) {
	var c models.Complaint
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &c, nil
}

func historiesNewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

// FindDetail loads the service, owner, documents and history with acting users.
// FindForUpdate reads the row with SELECT ... FOR UPDATE; call it inside WithinTx.
func (s *GormComplaintStore) FindForUpdate(ctx context.Context, id uint) (*models.Complaint, error) {
	var c models.Complaint
	err := s.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return &c, nil
}

func (s *GormComplaintStore) FindDetail(ctx context.Context, id uint) (*models.Complaint, error) {
	var c models.Complaint
	err := s.db.WithContext(ctx).
		Preload("Service").
		Preload("User").
		Preload("Documents").
		Preload("StatusHistories", historiesNewestFirst).
		Preload("StatusHistories.User").
		First(&c, id).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return &c, nil
}

func (s *GormComplaintStore) FindByRegistrationNumber(ctx context.Context, number string) (*models.Complaint, error) {
	var c models.Complaint
	err := s.db.WithContext(ctx).
		Preload("Service").
		Preload("StatusHistories", historiesNewestFirst).
		Preload("StatusHistories.User").
		Where("registration_number = ?", number).
		First(&c).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return &c, nil
}

func (s *GormComplaintStore) FindDocument(ctx context.Context, complaintID, documentID uint) (*models.ComplaintDocument, error) {
	var d models.ComplaintDocument
	err := s.db.WithContext(ctx).
		Where("id = ? AND complaint_id = ?", documentID, complaintID).
		First(&d).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return &d, nil
}

func (s *GormComplaintStore) List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Complaint{})
	if f.OwnerID != nil {
		query = query.Where("user_id = ?", *f.OwnerID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.ServiceID != 0 {
		query = query.Where("service_id = ?", f.ServiceID)
	}
	if f.Search != "" {
		query = query.Where("registration_number LIKE ?", "%"+f.Search+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Complaint
	offset := (f.Page - 1) * f.PerPage
	err := query.
		Preload("Service").
		Preload("User").
		Preload("Documents").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(f.PerPage).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Statistics computes every dashboard counter in a single scan.
func (s *GormComplaintStore) Statistics(ctx context.Context, monthStart, yearStart time.Time) (*models.ComplaintStatistics, error) {
	var stats models.ComplaintStatistics
	if err := s.db.WithContext(ctx).Raw(complaintStatisticsSQL, monthStart, yearStart).Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
