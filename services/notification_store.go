package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"public-complaint-api/config"
	"public-complaint-api/models"
)

// GormNotificationStore persists in-app notifications.
type GormNotificationStore struct {
	db *gorm.DB
}

func NewGormNotificationStore(db *gorm.DB) *GormNotificationStore {
	if db == nil {
		db = config.DB
	}
	return &GormNotificationStore{db: db}
}

func (s *GormNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	return translateGormError(s.db.WithContext(ctx).Create(n).Error)
}

func (s *GormNotificationStore) ListForUser(ctx context.Context, userID uint, page, perPage int) ([]models.Notification, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Notification
	err := query.Order("created_at DESC").Offset((page - 1) * perPage).Limit(perPage).Find(&rows).Error
	return rows, total, err
}

func (s *GormNotificationStore) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// MarkRead is idempotent for notifications that are already read.
func (s *GormNotificationStore) MarkRead(ctx context.Context, userID uint, id string, at time.Time) error {
	var n models.Notification
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		return translateGormError(err)
	}
	if n.ReadAt != nil {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"read_at": at, "updated_at": at}).Error
}

func (s *GormNotificationStore) MarkAllRead(ctx context.Context, userID uint, at time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Updates(map[string]interface{}{"read_at": at, "updated_at": at})
	return res.RowsAffected, res.Error
}

func (s *GormNotificationStore) Delete(ctx context.Context, userID uint, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
