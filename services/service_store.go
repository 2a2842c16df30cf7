package services

import (
	"context"

	"gorm.io/gorm"

	"public-complaint-api/config"
	"public-complaint-api/models"
)

// GormServiceStore is the MySQL catalog store.
type GormServiceStore struct {
	db *gorm.DB
}

func NewGormServiceStore(db *gorm.DB) *GormServiceStore {
	if db == nil {
		db = config.DB
	}
	return &GormServiceStore{db: db}
}

func (s *GormServiceStore) List(ctx context.Context, q ServiceQuery) ([]models.Service, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Service{})
	if !q.IncludeAll {
		query = query.Where("is_active = ?", true)
	}
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if q.Search != "" {
		query = query.Where("name LIKE ?", "%"+q.Search+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Service
	offset := (q.Page - 1) * q.PerPage
	if err := query.Order("name ASC").Offset(offset).Limit(q.PerPage).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *GormServiceStore) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := s.db.WithContext(ctx).Model(&models.Service{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

func (s *GormServiceStore) FindByID(ctx context.Context, id uint) (*models.Service, error) {
	var svc models.Service
	if err := s.db.WithContext(ctx).First(&svc, id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &svc, nil
}

func (s *GormServiceStore) Create(ctx context.Context, svc *models.Service) error {
	return translateGormError(s.db.WithContext(ctx).Create(svc).Error)
}

func (s *GormServiceStore) Update(ctx context.Context, svc *models.Service) error {
	return translateGormError(s.db.WithContext(ctx).
		Model(svc).
		Select("name", "description", "category", "required_documents", "is_active").
		Updates(svc).Error)
}

func (s *GormServiceStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Service{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormServiceStore) CountComplaints(ctx context.Context, serviceID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Complaint{}).Where("service_id = ?", serviceID).Count(&count).Error
	return count, err
}
