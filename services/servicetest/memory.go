// Package servicetest provides in-memory stores and fakes for exercising
// services and controllers without MySQL, SMTP, Redis or Kafka.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"public-complaint-api/models"
	"public-complaint-api/services"
)

// Clock is a controllable time source shared by the memory stores.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock { return &Clock{now: start} }

// Now returns the current instant and advances the clock by one second so
// that consecutive records have distinct timestamps.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(time.Second)
	return t
}

// DB is an in-memory database shared by every memory store.
type DB struct {
	mu    sync.Mutex
	clock *Clock
	// tx serializes WithinTx calls, standing in for row locks.
	tx sync.Mutex

	users         map[uint]models.User
	services      map[uint]models.Service
	complaints    map[uint]models.Complaint
	documents     map[uint]models.ComplaintDocument
	histories     map[uint]models.ComplaintStatusHistory
	notifications map[string]models.Notification
	nextID        uint
}

func NewDB(clock *Clock) *DB {
	if clock == nil {
		clock = NewClock(time.Date(2025, time.March, 10, 9, 0, 0, 0, time.Local))
	}
	return &DB{
		clock:         clock,
		users:         map[uint]models.User{},
		services:      map[uint]models.Service{},
		complaints:    map[uint]models.Complaint{},
		documents:     map[uint]models.ComplaintDocument{},
		histories:     map[uint]models.ComplaintStatusHistory{},
		notifications: map[string]models.Notification{},
	}
}

func (db *DB) Clock() *Clock { return db.clock }

func (db *DB) id() uint {
	db.nextID++
	return db.nextID
}

type snapshot struct {
	complaints map[uint]models.Complaint
	documents  map[uint]models.ComplaintDocument
	histories  map[uint]models.ComplaintStatusHistory
	nextID     uint
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (db *DB) snapshot() snapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	return snapshot{
		complaints: copyMap(db.complaints),
		documents:  copyMap(db.documents),
		histories:  copyMap(db.histories),
		nextID:     db.nextID,
	}
}

func (db *DB) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.complaints = s.complaints
	db.documents = s.documents
	db.histories = s.histories
	db.nextID = s.nextID
}

// AddUser inserts a user directly and returns it with its id.
func (db *DB) AddUser(u models.User) models.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	if u.ID == 0 {
		u.ID = db.id()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	now := db.clock.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	db.users[u.ID] = u
	return u
}

// AddService inserts a catalog entry directly.
func (db *DB) AddService(s models.Service) models.Service {
	db.mu.Lock()
	defer db.mu.Unlock()
	if s.ID == 0 {
		s.ID = db.id()
	}
	now := db.clock.Now()
	s.CreatedAt, s.UpdatedAt = now, now
	db.services[s.ID] = s
	return s
}

// Complaints returns every stored complaint ordered by id.
func (db *DB) Complaints() []models.Complaint {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]models.Complaint, 0, len(db.complaints))
	for _, c := range db.complaints {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Histories returns the history entries of a complaint, oldest first.
func (db *DB) Histories(complaintID uint) []models.ComplaintStatusHistory {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []models.ComplaintStatusHistory
	for _, h := range db.histories {
		if h.ComplaintID == complaintID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Notifications returns the notifications of a user, oldest first.
func (db *DB) Notifications(userID uint) []models.Notification {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []models.Notification
	for _, n := range db.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func summary(u models.User) *models.UserSummary {
	return &models.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func paginate[T any](rows []T, page, perPage int) []T {
	if perPage <= 0 {
		return rows
	}
	start := (page - 1) * perPage
	if start >= len(rows) || start < 0 {
		return []T{}
	}
	end := start + perPage
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// ServiceStore

type ServiceStore struct{ db *DB }

func (db *DB) ServiceStore() *ServiceStore { return &ServiceStore{db: db} }

func (s *ServiceStore) List(_ context.Context, q services.ServiceQuery) ([]models.Service, int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var rows []models.Service
	for _, svc := range s.db.services {
		if !q.IncludeAll && !svc.IsActive {
			continue
		}
		if q.Category != "" && svc.CategoryName() != q.Category {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(svc.Name), strings.ToLower(q.Search)) {
			continue
		}
		rows = append(rows, svc)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return paginate(rows, q.Page, q.PerPage), int64(len(rows)), nil
}

func (s *ServiceStore) Categories(context.Context) ([]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	seen := map[string]struct{}{}
	var out []string
	for _, svc := range s.db.services {
		c := svc.CategoryName()
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (s *ServiceStore) FindByID(_ context.Context, id uint) (*models.Service, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	svc, ok := s.db.services[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &svc, nil
}

func (s *ServiceStore) Create(_ context.Context, svc *models.Service) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	svc.ID = s.db.id()
	now := s.db.clock.Now()
	svc.CreatedAt, svc.UpdatedAt = now, now
	s.db.services[svc.ID] = *svc
	return nil
}

func (s *ServiceStore) Update(_ context.Context, svc *models.Service) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.services[svc.ID]; !ok {
		return services.ErrNotFound
	}
	svc.UpdatedAt = s.db.clock.Now()
	s.db.services[svc.ID] = *svc
	return nil
}

func (s *ServiceStore) Delete(_ context.Context, id uint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.services[id]; !ok {
		return services.ErrNotFound
	}
	delete(s.db.services, id)
	return nil
}

func (s *ServiceStore) CountComplaints(_ context.Context, serviceID uint) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, c := range s.db.complaints {
		if c.ServiceID == serviceID {
			n++
		}
	}
	return n, nil
}
