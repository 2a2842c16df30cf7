package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"public-complaint-api/models"
	"public-complaint-api/utils"
)

const (
	initialHistoryNote = "Pengaduan telah diterima dan menunggu verifikasi"
	defaultUpdateNote  = "Status diperbarui oleh admin"
)

// SubmitComplaintInput is the citizen submission form.
type SubmitComplaintInput struct {
	ServiceID          uint   `form:"service_id" json:"service_id" validate:"required"`
	ApplicantName      string `form:"applicant_name" json:"applicant_name" validate:"required,max=255"`
	ApplicantNIK       string `form:"applicant_nik" json:"applicant_nik" validate:"required,len=16,nik"`
	ApplicantAddress   string `form:"applicant_address" json:"applicant_address" validate:"required"`
	ApplicantPhone     string `form:"applicant_phone" json:"applicant_phone" validate:"omitempty,max=20"`
	ApplicantJob       string `form:"applicant_job" json:"applicant_job" validate:"omitempty,max=255"`
	ApplicantBirthDate string `form:"applicant_birth_date" json:"applicant_birth_date" validate:"omitempty,date_ymd"`
	Description        string `form:"description" json:"description"`

	Documents []UploadedFile `form:"-" json:"-"`
}

// UpdateStatusInput is the administrator status change. A nil Notes clears
// the stored note.
type UpdateStatusInput struct {
	Status         string
	Notes          *string
	ResultDocument *UploadedFile
}

// ComplaintQuery filters complaint listings.
type ComplaintQuery struct {
	Status    string
	ServiceID uint
	Search    string
	Page      int
}

// Download describes a stored file ready to be streamed to the client.
type Download struct {
	Path        string
	Name        string
	ContentType string
}

// ComplaintDeps wires a ComplaintService.
type ComplaintDeps struct {
	Complaints   ComplaintStore
	Catalog      *CatalogService
	Files        FileStorage
	Policy       UploadPolicy
	Notifier     Notifier
	Registration RegistrationGenerator
	Now          func() time.Time
}

// ComplaintService owns the complaint lifecycle.
type ComplaintService struct {
	complaints   ComplaintStore
	catalog      *CatalogService
	files        FileStorage
	policy       UploadPolicy
	notifier     Notifier
	registration RegistrationGenerator
	now          func() time.Time
}

func NewComplaintService(deps ComplaintDeps) *ComplaintService {
	s := &ComplaintService{
		complaints:   deps.Complaints,
		catalog:      deps.Catalog,
		files:        deps.Files,
		policy:       deps.Policy,
		notifier:     deps.Notifier,
		registration: deps.Registration,
		now:          deps.Now,
	}
	if s.registration == nil {
		s.registration = NewRegistrationNumber
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.policy.MaxBytes == 0 {
		s.policy = NewUploadPolicy(0)
	}
	return s
}

// Submit validates and stores a complaint with its documents and initial
// history entry in one transaction, then notifies the submitter.
func (s *ComplaintService) Submit(ctx context.Context, actor Actor, in SubmitComplaintInput) (*models.Complaint, error) {
	if err := RequireUser(actor); err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	verr.Merge(utils.ValidateStruct(in))
	types := make([]string, len(in.Documents))
	for i, doc := range in.Documents {
		sniffed, msg := s.policy.Check(doc)
		if msg != "" {
			verr.Add(fmt.Sprintf("documents.%d", i), msg)
			continue
		}
		types[i] = declaredType(doc, sniffed)
	}
	if in.ServiceID != 0 {
		if _, err := s.catalog.ActiveService(ctx, in.ServiceID); err != nil {
			var fieldErr *ValidationError
			if !errors.As(err, &fieldErr) {
				return nil, err
			}
			verr.Merge(fieldErr.Fields)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := s.now()
	complaint := &models.Complaint{
		UserID:             actor.UserID,
		ServiceID:          in.ServiceID,
		ApplicantName:      strings.TrimSpace(in.ApplicantName),
		ApplicantNIK:       in.ApplicantNIK,
		ApplicantAddress:   strings.TrimSpace(in.ApplicantAddress),
		ApplicantPhone:     optionalString(in.ApplicantPhone),
		ApplicantJob:       optionalString(in.ApplicantJob),
		Description:        optionalString(in.Description),
		Status:             models.StatusPending,
		ApplicantBirthDate: parseDate(in.ApplicantBirthDate),
	}

	var written []string
	err := s.complaints.WithinTx(ctx, func(tx ComplaintStore) error {
		if err := s.createWithRegistration(ctx, tx, complaint, now); err != nil {
			return err
		}

		for i, doc := range in.Documents {
			rel := path.Join(DocumentsArea, fmt.Sprintf("%d_%d_%d_%s", now.Unix(), complaint.ID, i, safeFileName(doc.Name)))
			size, err := storeUpload(ctx, s.files, rel, doc)
			if err != nil {
				return err
			}
			written = append(written, rel)

			if err := tx.CreateDocument(ctx, &models.ComplaintDocument{
				ComplaintID:  complaint.ID,
				DocumentName: doc.Name,
				DocumentType: types[i],
				FilePath:     rel,
				FileSize:     size,
			}); err != nil {
				return storageError("create document", err)
			}
		}

		note := initialHistoryNote
		if err := tx.AppendHistory(ctx, &models.ComplaintStatusHistory{
			ComplaintID: complaint.ID,
			Status:      models.StatusPending,
			Notes:       &note,
			UserID:      actor.UserID,
		}); err != nil {
			return storageError("create status history", err)
		}
		return nil
	})
	if err != nil {
		removeFiles(s.files, written)
		log.Printf("[complaint] submission by user %d failed: %v", actor.UserID, err)
		return nil, err
	}

	created, err := s.complaints.FindDetail(ctx, complaint.ID)
	if err != nil {
		return nil, storageError("reload complaint", err)
	}

	complaintsSubmitted.WithLabelValues(created.ServiceName()).Inc()
	log.Printf("[complaint] %s submitted by user %d (%d document(s))", created.RegistrationNumber, actor.UserID, len(in.Documents))

	s.notify(ctx, ComplaintCreated(created))
	return created, nil
}

// createWithRegistration retries on registration number collisions.
func (s *ComplaintService) createWithRegistration(ctx context.Context, tx ComplaintStore, c *models.Complaint, now time.Time) error {
	for attempt := 1; attempt <= maxRegistrationAttempts; attempt++ {
		number, err := s.registration(now)
		if err != nil {
			return err
		}
		c.RegistrationNumber = number

		err = tx.Create(ctx, c)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrConflict) {
			return storageError("create complaint", err)
		}
		log.Printf("[complaint] registration number %s already taken (attempt %d)", number, attempt)
	}
	return storageError("create complaint", fmt.Errorf("no unique registration number after %d attempts", maxRegistrationAttempts))
}

// List returns a page of complaints. Non-administrators only see their own.
func (s *ComplaintService) List(ctx context.Context, actor Actor, q ComplaintQuery) (models.Page[models.Complaint], error) {
	if err := RequireUser(actor); err != nil {
		return models.Page[models.Complaint]{}, err
	}

	filter := models.ComplaintFilter{
		ServiceID: q.ServiceID,
		Search:    strings.TrimSpace(q.Search),
		Page:      normalizePage(q.Page),
		PerPage:   DefaultPerPage,
	}
	if raw := strings.TrimSpace(q.Status); raw != "" {
		// filters are lenient: labels resolve, anything else matches nothing
		status, err := utils.ParseComplaintStatus(raw)
		if err != nil {
			return models.NewPage([]models.Complaint{}, filter.Page, filter.PerPage, 0), nil
		}
		filter.Status = status
	}
	if !actor.IsAdmin() {
		owner := actor.UserID
		filter.OwnerID = &owner
	}

	rows, total, err := s.complaints.List(ctx, filter)
	if err != nil {
		return models.Page[models.Complaint]{}, storageError("list complaints", err)
	}
	return models.NewPage(rows, filter.Page, filter.PerPage, total), nil
}

// Get returns a hydrated complaint visible to the actor.
func (s *ComplaintService) Get(ctx context.Context, actor Actor, id uint) (*models.Complaint, error) {
	if err := RequireUser(actor); err != nil {
		return nil, err
	}
	c, err := s.findDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanViewComplaint(actor, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Track looks a complaint up by registration number without authentication.
func (s *ComplaintService) Track(ctx context.Context, registrationNumber string) (*models.Complaint, error) {
	number := strings.TrimSpace(registrationNumber)
	if number == "" {
		return nil, NewValidationError("registration_number", "Kolom registration_number wajib diisi.")
	}
	c, err := s.complaints.FindByRegistrationNumber(ctx, number)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("track complaint", err)
	}
	return c, nil
}

// UpdateStatus applies an administrator status change. The history entry is
// always appended; the owner is notified only when the status changed.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor Actor, id uint, in UpdateStatusInput) (*models.Complaint, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	newStatus := models.ComplaintStatus(in.Status)
	switch {
	case strings.TrimSpace(in.Status) == "":
		verr.Add("status", "Kolom status wajib diisi.")
	case !newStatus.Valid():
		verr.Add("status", "Status harus salah satu dari: pending, reviewing, approved, revision, completed, rejected.")
	}
	if in.ResultDocument != nil {
		if _, msg := s.policy.Check(*in.ResultDocument); msg != "" {
			verr.Add("result_document", msg)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var notes *string
	if in.Notes != nil && strings.TrimSpace(*in.Notes) != "" {
		note := strings.TrimSpace(*in.Notes)
		notes = &note
	}
	historyNote := defaultUpdateNote
	if notes != nil {
		historyNote = *notes
	}

	var resultPath string
	if in.ResultDocument != nil {
		resultPath = path.Join(ResultsArea, fmt.Sprintf("%d_result_%d_%s", s.now().Unix(), id, safeFileName(in.ResultDocument.Name)))
	}

	// The row is locked before the prior status is read so concurrent
	// updates each see the status the other committed.
	var (
		oldStatus models.ComplaintStatus
		previous  *string
		written   string
	)
	err := s.complaints.WithinTx(ctx, func(tx ComplaintStore) error {
		complaint, err := tx.FindForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrNotFound
			}
			return storageError("lock complaint", err)
		}
		oldStatus = complaint.Status
		previous = complaint.ResultDocument

		complaint.Status = newStatus
		complaint.Notes = notes
		if resultPath != "" {
			complaint.ResultDocument = &resultPath
		}
		if err := tx.UpdateStatus(ctx, complaint); err != nil {
			return storageError("update complaint", err)
		}
		if err := tx.AppendHistory(ctx, &models.ComplaintStatusHistory{
			ComplaintID: complaint.ID,
			Status:      newStatus,
			Notes:       &historyNote,
			UserID:      actor.UserID,
		}); err != nil {
			return storageError("create status history", err)
		}

		// the file follows the row so a committed row never points at a missing file
		if resultPath != "" {
			if _, err := storeUpload(ctx, s.files, resultPath, *in.ResultDocument); err != nil {
				return err
			}
			written = resultPath
		}
		return nil
	})
	if err != nil {
		if written != "" {
			removeFiles(s.files, []string{written})
		}
		return nil, err
	}
	if written != "" && previous != nil && *previous != written {
		removeFiles(s.files, []string{*previous})
	}

	updated, err := s.complaints.FindDetail(ctx, id)
	if err != nil {
		return nil, storageError("reload complaint", err)
	}

	complaintStatusChanges.WithLabelValues(string(oldStatus), string(newStatus)).Inc()
	log.Printf("[complaint] %s status %s -> %s by admin %d", updated.RegistrationNumber, oldStatus, newStatus, actor.UserID)

	if oldStatus != newStatus {
		s.notify(ctx, ComplaintStatusChanged(updated, oldStatus, newStatus))
	}
	return updated, nil
}

// Statistics returns the admin dashboard counters.
func (s *ComplaintService) Statistics(ctx context.Context, actor Actor) (*models.ComplaintStatistics, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	stats, err := s.complaints.Statistics(ctx, monthStart, yearStart)
	if err != nil {
		return nil, storageError("complaint statistics", err)
	}
	return stats, nil
}

// DocumentDownload resolves an attachment of a complaint visible to the actor.
func (s *ComplaintService) DocumentDownload(ctx context.Context, actor Actor, complaintID, documentID uint) (*Download, error) {
	if _, err := s.visible(ctx, actor, complaintID); err != nil {
		return nil, err
	}

	doc, err := s.complaints.FindDocument(ctx, complaintID, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("find document", err)
	}

	full, err := s.files.Path(doc.FilePath)
	if err != nil {
		log.Printf("[storage] document %d of complaint %d missing on disk: %s", doc.ID, complaintID, doc.FilePath)
		return nil, ErrNotFound
	}
	return &Download{Path: full, Name: doc.DocumentName, ContentType: doc.DocumentType}, nil
}

// ResultDownload resolves the result document of a complaint visible to the actor.
func (s *ComplaintService) ResultDownload(ctx context.Context, actor Actor, complaintID uint) (*Download, error) {
	c, err := s.visible(ctx, actor, complaintID)
	if err != nil {
		return nil, err
	}
	if c.ResultDocument == nil || *c.ResultDocument == "" {
		return nil, ErrNotFound
	}

	full, err := s.files.Path(*c.ResultDocument)
	if err != nil {
		log.Printf("[storage] result of complaint %d missing on disk: %s", complaintID, *c.ResultDocument)
		return nil, ErrNotFound
	}
	return &Download{
		Path: full,
		Name: "Result_" + c.RegistrationNumber + "_" + path.Base(*c.ResultDocument),
	}, nil
}

func (s *ComplaintService) visible(ctx context.Context, actor Actor, id uint) (*models.Complaint, error) {
	if err := RequireUser(actor); err != nil {
		return nil, err
	}
	c, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("find complaint", err)
	}
	if err := CanViewComplaint(actor, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ComplaintService) findDetail(ctx context.Context, id uint) (*models.Complaint, error) {
	c, err := s.complaints.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("find complaint", err)
	}
	return c, nil
}

func (s *ComplaintService) notify(ctx context.Context, ev ComplaintEvent) {
	if s.notifier == nil {
		return
	}
	s.notifier.Dispatch(ctx, ev)
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
