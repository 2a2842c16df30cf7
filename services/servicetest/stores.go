package servicetest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"public-complaint-api/models"
	"public-complaint-api/services"
)

var errDocumentInsert = errors.New("document insert failed")

// NotificationStore is an in-memory services.NotificationStore.
type NotificationStore struct {
	db *DB
	// Err, when set, is returned by Create.
	Err error
}

func (db *DB) NotificationStore() *NotificationStore { return &NotificationStore{db: db} }

func (s *NotificationStore) Create(_ context.Context, n *models.Notification) error {
	if s.Err != nil {
		return s.Err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.db.clock.Now()
		n.UpdatedAt = n.CreatedAt
	}
	s.db.notifications[n.ID] = *n
	return nil
}

func (s *NotificationStore) ListForUser(_ context.Context, userID uint, page, perPage int) ([]models.Notification, int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var rows []models.Notification
	for _, n := range s.db.notifications {
		if n.UserID == userID {
			rows = append(rows, n)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return paginate(rows, page, perPage), int64(len(rows)), nil
}

func (s *NotificationStore) UnreadCount(_ context.Context, userID uint) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var count int64
	for _, n := range s.db.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, userID uint, id string, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n, ok := s.db.notifications[id]
	if !ok || n.UserID != userID {
		return services.ErrNotFound
	}
	if n.ReadAt == nil {
		n.ReadAt = &at
		s.db.notifications[id] = n
	}
	return nil
}

func (s *NotificationStore) MarkAllRead(_ context.Context, userID uint, at time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var updated int64
	for id, n := range s.db.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			readAt := at
			n.ReadAt = &readAt
			s.db.notifications[id] = n
			updated++
		}
	}
	return updated, nil
}

func (s *NotificationStore) Delete(_ context.Context, userID uint, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n, ok := s.db.notifications[id]
	if !ok || n.UserID != userID {
		return services.ErrNotFound
	}
	delete(s.db.notifications, id)
	return nil
}

// UserStore is an in-memory services.UserStore.
type UserStore struct{ db *DB }

func (db *DB) UserStore() *UserStore { return &UserStore{db: db} }

func (s *UserStore) Create(_ context.Context, u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.users {
		if strings.EqualFold(existing.Email, u.Email) || existing.NIK == u.NIK {
			return services.ErrConflict
		}
	}
	u.ID = s.db.id()
	now := s.db.clock.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.db.users[u.ID] = *u
	return nil
}

func (s *UserStore) Update(_ context.Context, u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[u.ID]; !ok {
		return services.ErrNotFound
	}
	for id, existing := range s.db.users {
		if id != u.ID && strings.EqualFold(existing.Email, u.Email) {
			return services.ErrConflict
		}
	}
	u.UpdatedAt = s.db.clock.Now()
	s.db.users[u.ID] = *u
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id uint) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, services.ErrNotFound
}

func (s *UserStore) ExistsByEmail(_ context.Context, email string, exceptID uint) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, u := range s.db.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *UserStore) ExistsByNIK(_ context.Context, nik string, exceptID uint) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, u := range s.db.users {
		if id != exceptID && u.NIK == nik {
			return true, nil
		}
	}
	return false, nil
}
