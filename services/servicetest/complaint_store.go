package servicetest

import (
	"context"
	"sort"
	"strings"
	"time"

	"public-complaint-api/models"
	"public-complaint-api/services"
)

// ComplaintStore is an in-memory services.ComplaintStore. WithinTx runs one
// transaction at a time and restores the complaint tables when fn fails.
type ComplaintStore struct {
	db *DB
	// FailDocumentAt makes CreateDocument fail on the n-th call (1-based) when set.
	FailDocumentAt int
	documentCalls  int
}

func (db *DB) ComplaintStore() *ComplaintStore { return &ComplaintStore{db: db} }

// DB returns the database backing the store.
func (s *ComplaintStore) DB() *DB { return s.db }

func (s *ComplaintStore) WithinTx(_ context.Context, fn func(tx services.ComplaintStore) error) error {
	s.db.tx.Lock()
	defer s.db.tx.Unlock()
	snap := s.db.snapshot()
	if err := fn(s); err != nil {
		s.db.restore(snap)
		return err
	}
	return nil
}

func (s *ComplaintStore) Create(_ context.Context, c *models.Complaint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.complaints {
		if existing.RegistrationNumber == c.RegistrationNumber {
			return services.ErrConflict
		}
	}
	c.ID = s.db.id()
	now := s.db.clock.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	stored := *c
	stored.Service, stored.User, stored.Documents, stored.StatusHistories = nil, nil, nil, nil
	s.db.complaints[c.ID] = stored
	return nil
}

func (s *ComplaintStore) CreateDocument(_ context.Context, d *models.ComplaintDocument) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.documentCalls++
	if s.FailDocumentAt > 0 && s.documentCalls == s.FailDocumentAt {
		return errDocumentInsert
	}
	d.ID = s.db.id()
	now := s.db.clock.Now()
	d.CreatedAt, d.UpdatedAt = now, now
	s.db.documents[d.ID] = *d
	return nil
}

func (s *ComplaintStore) AppendHistory(_ context.Context, h *models.ComplaintStatusHistory) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	h.ID = s.db.id()
	now := s.db.clock.Now()
	h.CreatedAt, h.UpdatedAt = now, now
	stored := *h
	stored.User = nil
	s.db.histories[h.ID] = stored
	return nil
}

func (s *ComplaintStore) UpdateStatus(_ context.Context, c *models.Complaint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stored, ok := s.db.complaints[c.ID]
	if !ok {
		return services.ErrNotFound
	}
	stored.Status = c.Status
	stored.Notes = c.Notes
	stored.ResultDocument = c.ResultDocument
	stored.UpdatedAt = s.db.clock.Now()
	s.db.complaints[c.ID] = stored
	return nil
}

func (s *ComplaintStore) FindByID(_ context.Context, id uint) (*models.Complaint, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.complaints[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &c, nil
}

func (s *ComplaintStore) FindForUpdate(ctx context.Context, id uint) (*models.Complaint, error) {
	return s.FindByID(ctx, id)
}

func (s *ComplaintStore) FindDetail(_ context.Context, id uint) (*models.Complaint, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.complaints[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	s.hydrate(&c, true, true)
	return &c, nil
}

func (s *ComplaintStore) FindByRegistrationNumber(_ context.Context, number string) (*models.Complaint, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.complaints {
		if c.RegistrationNumber == number {
			s.hydrate(&c, false, true)
			c.User = nil
			return &c, nil
		}
	}
	return nil, services.ErrNotFound
}

func (s *ComplaintStore) FindDocument(_ context.Context, complaintID, documentID uint) (*models.ComplaintDocument, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	d, ok := s.db.documents[documentID]
	if !ok || d.ComplaintID != complaintID {
		return nil, services.ErrNotFound
	}
	return &d, nil
}

func (s *ComplaintStore) List(_ context.Context, f models.ComplaintFilter) ([]models.Complaint, int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var rows []models.Complaint
	for _, c := range s.db.complaints {
		if f.OwnerID != nil && c.UserID != *f.OwnerID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.ServiceID != 0 && c.ServiceID != f.ServiceID {
			continue
		}
		if f.Search != "" && !strings.Contains(c.RegistrationNumber, f.Search) {
			continue
		}
		s.hydrate(&c, true, false)
		rows = append(rows, c)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return paginate(rows, f.Page, f.PerPage), int64(len(rows)), nil
}

func (s *ComplaintStore) Statistics(_ context.Context, monthStart, yearStart time.Time) (*models.ComplaintStatistics, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stats := &models.ComplaintStatistics{}
	for _, c := range s.db.complaints {
		stats.Total++
		switch c.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusReviewing:
			stats.Reviewing++
		case models.StatusApproved:
			stats.Approved++
		case models.StatusRevision:
			stats.Revision++
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusRejected:
			stats.Rejected++
		}
		if !c.CreatedAt.Before(monthStart) {
			stats.ThisMonth++
		}
		if !c.CreatedAt.Before(yearStart) {
			stats.ThisYear++
		}
	}
	return stats, nil
}

// hydrate attaches relations; callers hold db.mu.
func (s *ComplaintStore) hydrate(c *models.Complaint, withDocuments, withHistory bool) {
	if svc, ok := s.db.services[c.ServiceID]; ok {
		c.Service = &svc
	}
	if u, ok := s.db.users[c.UserID]; ok {
		c.User = summary(u)
	}
	if withDocuments {
		docs := []models.ComplaintDocument{}
		for _, d := range s.db.documents {
			if d.ComplaintID == c.ID {
				docs = append(docs, d)
			}
		}
		sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
		c.Documents = docs
	}
	if withHistory {
		hist := []models.ComplaintStatusHistory{}
		for _, h := range s.db.histories {
			if h.ComplaintID != c.ID {
				continue
			}
			if u, ok := s.db.users[h.UserID]; ok {
				h.User = summary(u)
			}
			hist = append(hist, h)
		}
		sort.Slice(hist, func(i, j int) bool { return hist[i].ID > hist[j].ID })
		c.StatusHistories = hist
	}
}
