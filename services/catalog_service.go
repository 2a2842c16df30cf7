package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"public-complaint-api/models"
	"public-complaint-api/utils"
)

// ServiceInput is the admin payload for creating or updating a catalog entry.
type ServiceInput struct {
	Name              string   `json:"name" validate:"required,max=255"`
	Description       string   `json:"description" validate:"required"`
	Category          *string  `json:"category" validate:"omitempty,max=255"`
	RequiredDocuments []string `json:"required_documents" validate:"omitempty,dive,required,max=255"`
	IsActive          *bool    `json:"is_active"`
}

// CatalogService manages the service catalog. Single-service lookups go
// through an expiring LRU cache that is invalidated on every mutation.
type CatalogService struct {
	store ServiceStore
	cache *expirable.LRU[uint, models.Service]
}

func NewCatalogService(store ServiceStore, cacheSize int, ttl time.Duration) *CatalogService {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogService{
		store: store,
		cache: expirable.NewLRU[uint, models.Service](cacheSize, nil, ttl),
	}
}

// List returns a page of services. Only administrators see inactive entries.
func (s *CatalogService) List(ctx context.Context, actor Actor, q ServiceQuery) (models.Page[models.Service], error) {
	q.Page = normalizePage(q.Page)
	q.PerPage = DefaultPerPage
	q.Category = strings.TrimSpace(q.Category)
	q.Search = strings.TrimSpace(q.Search)
	q.IncludeAll = actor.IsAdmin()

	rows, total, err := s.store.List(ctx, q)
	if err != nil {
		return models.Page[models.Service]{}, storageError("list services", err)
	}
	return models.NewPage(rows, q.Page, q.PerPage, total), nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return nil, storageError("list categories", err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// Get returns a single service through the cache.
func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Service, error) {
	if cached, ok := s.cache.Get(id); ok {
		svc := cached
		return &svc, nil
	}

	svc, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("find service", err)
	}
	s.cache.Add(id, *svc)
	return svc, nil
}

// ActiveService resolves a service for complaint submission.
func (s *CatalogService) ActiveService(ctx context.Context, id uint) (*models.Service, error) {
	svc, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewValidationError("service_id", "Layanan yang dipilih tidak ditemukan.")
		}
		return nil, err
	}
	if !svc.IsActive {
		return nil, NewValidationError("service_id", "Layanan yang dipilih sedang tidak aktif.")
	}
	return svc, nil
}

func (s *CatalogService) Create(ctx context.Context, actor Actor, in ServiceInput) (*models.Service, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateServiceInput(in); err != nil {
		return nil, err
	}

	svc := &models.Service{IsActive: true}
	applyServiceInput(svc, in)
	if err := s.store.Create(ctx, svc); err != nil {
		return nil, storageError("create service", err)
	}
	log.Printf("[catalog] service %d created by user %d", svc.ID, actor.UserID)
	return svc, nil
}

func (s *CatalogService) Update(ctx context.Context, actor Actor, id uint, in ServiceInput) (*models.Service, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateServiceInput(in); err != nil {
		return nil, err
	}

	svc, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("find service", err)
	}
	applyServiceInput(svc, in)
	if err := s.store.Update(ctx, svc); err != nil {
		return nil, storageError("update service", err)
	}
	s.cache.Remove(id)
	log.Printf("[catalog] service %d updated by user %d", svc.ID, actor.UserID)
	return svc, nil
}

// Delete refuses to remove a service that complaints still reference.
func (s *CatalogService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.store.FindByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return storageError("find service", err)
	}

	used, err := s.store.CountComplaints(ctx, id)
	if err != nil {
		return storageError("count service complaints", err)
	}
	if used > 0 {
		return NewValidationError("service_id", fmt.Sprintf("Layanan masih digunakan oleh %d pengaduan.", used))
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return storageError("delete service", err)
	}
	s.cache.Remove(id)
	log.Printf("[catalog] service %d deleted by user %d", id, actor.UserID)
	return nil
}

// ClearCache drops every cached service.
func (s *CatalogService) ClearCache() {
	s.cache.Purge()
}

func validateServiceInput(in ServiceInput) error {
	v := &ValidationError{}
	v.Merge(utils.ValidateStruct(in))
	return v.OrNil()
}

func applyServiceInput(svc *models.Service, in ServiceInput) {
	svc.Name = strings.TrimSpace(in.Name)
	svc.Description = strings.TrimSpace(in.Description)
	svc.Category = nil
	if in.Category != nil {
		if category := strings.TrimSpace(*in.Category); category != "" {
			svc.Category = &category
		}
	}
	docs := make([]string, 0, len(in.RequiredDocuments))
	for _, d := range in.RequiredDocuments {
		if d = strings.TrimSpace(d); d != "" {
			docs = append(docs, d)
		}
	}
	svc.RequiredDocuments = docs
	if in.IsActive != nil {
		svc.IsActive = *in.IsActive
	}
}
