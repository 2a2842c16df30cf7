package services

import (
	"context"

	"gorm.io/gorm"

	"public-complaint-api/config"
	"public-complaint-api/models"
)

type GormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	if db == nil {
		db = config.DB
	}
	return &GormUserStore{db: db}
}

func (s *GormUserStore) Create(ctx context.Context, u *models.User) error {
	return translateGormError(s.db.WithContext(ctx).Create(u).Error)
}

func (s *GormUserStore) Update(ctx context.Context, u *models.User) error {
	return translateGormError(s.db.WithContext(ctx).
		Model(u).
		Select("name", "email", "password", "phone", "address", "birth_date", "job", "role", "is_active").
		Updates(u).Error)
}

func (s *GormUserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &u, nil
}

func (s *GormUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &u, nil
}

func (s *GormUserStore) ExistsByEmail(ctx context.Context, email string, exceptID uint) (bool, error) {
	return s.exists(ctx, "email = ?", email, exceptID)
}

func (s *GormUserStore) ExistsByNIK(ctx context.Context, nik string, exceptID uint) (bool, error) {
	return s.exists(ctx, "nik = ?", nik, exceptID)
}

func (s *GormUserStore) exists(ctx context.Context, cond string, value string, exceptID uint) (bool, error) {
	query := s.db.WithContext(ctx).Model(&models.User{}).Where(cond, value)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, translateGormError(err)
	}
	return count > 0, nil
}
