package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"public-complaint-api/models"
)

// NotificationService is the recipient-scoped inbox.
type NotificationService struct {
	store NotificationStore
	now   func() time.Time
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store, now: time.Now}
}

func (s *NotificationService) List(ctx context.Context, actor Actor, page int) (models.Page[models.Notification], error) {
	if err := RequireUser(actor); err != nil {
		return models.Page[models.Notification]{}, err
	}
	page = normalizePage(page)
	rows, total, err := s.store.ListForUser(ctx, actor.UserID, page, DefaultPerPage)
	if err != nil {
		return models.Page[models.Notification]{}, storageError("list notifications", err)
	}
	return models.NewPage(rows, page, DefaultPerPage, total), nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor Actor) (int64, error) {
	if err := RequireUser(actor); err != nil {
		return 0, err
	}
	count, err := s.store.UnreadCount(ctx, actor.UserID)
	if err != nil {
		return 0, storageError("count unread notifications", err)
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id string) error {
	if err := RequireUser(actor); err != nil {
		return err
	}
	return s.scoped(s.store.MarkRead(ctx, actor.UserID, strings.TrimSpace(id), s.now()), "mark notification read")
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor Actor) (int64, error) {
	if err := RequireUser(actor); err != nil {
		return 0, err
	}
	updated, err := s.store.MarkAllRead(ctx, actor.UserID, s.now())
	if err != nil {
		return 0, storageError("mark notifications read", err)
	}
	return updated, nil
}

func (s *NotificationService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := RequireUser(actor); err != nil {
		return err
	}
	return s.scoped(s.store.Delete(ctx, actor.UserID, strings.TrimSpace(id)), "delete notification")
}

func (s *NotificationService) scoped(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	default:
		return storageError(op, err)
	}
}
