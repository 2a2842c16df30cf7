package services_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"public-complaint-api/models"
	"public-complaint-api/services"
	"public-complaint-api/services/servicetest"
)

var registrationShape = regexp.MustCompile(`^REG-\d{8}-[A-Z0-9]{6}$`)

type complaintFixture struct {
	db       *servicetest.DB
	store    *servicetest.ComplaintStore
	files    *services.DiskStorage
	notifier *servicetest.Notifier
	svc      *services.ComplaintService

	citizen  models.User
	neighbor models.User
	admin    models.User
	service  models.Service
	inactive models.Service
}

func newComplaintFixture(t *testing.T, customize ...func(*services.ComplaintDeps)) *complaintFixture {
	t.Helper()

	db := servicetest.NewDB(nil)
	files, err := services.NewDiskStorage(t.TempDir())
	require.NoError(t, err)

	f := &complaintFixture{
		db:       db,
		store:    db.ComplaintStore(),
		files:    files,
		notifier: &servicetest.Notifier{},
	}
	f.citizen = db.AddUser(models.User{Name: "Budi Santoso", Email: "budi@example.com", NIK: "5103010101010001", IsActive: true})
	f.neighbor = db.AddUser(models.User{Name: "Siti Rahayu", Email: "siti@example.com", NIK: "5103010101010002", IsActive: true})
	f.admin = db.AddUser(models.User{Name: "Administrator", Email: "admin@badung.go.id", NIK: "3301010101010001", Role: models.RoleAdmin, IsActive: true})

	category := "Kependudukan"
	f.service = db.AddService(models.Service{Name: "Permohonan KTP", Description: "KTP", Category: &category, IsActive: true})
	f.inactive = db.AddService(models.Service{Name: "Layanan Lama", Description: "Tidak aktif", IsActive: false})

	deps := services.ComplaintDeps{
		Complaints: f.store,
		Catalog:    services.NewCatalogService(db.ServiceStore(), 16, time.Minute),
		Files:      files,
		Policy:     services.NewUploadPolicy(2048),
		Notifier:   f.notifier,
		Now:        db.Clock().Now,
	}
	for _, fn := range customize {
		fn(&deps)
	}
	f.svc = services.NewComplaintService(deps)
	return f
}

func (f *complaintFixture) actor(u models.User) services.Actor {
	return services.Actor{UserID: u.ID, Role: u.Role}
}

func (f *complaintFixture) validInput(docs ...services.UploadedFile) services.SubmitComplaintInput {
	return services.SubmitComplaintInput{
		ServiceID:          f.service.ID,
		ApplicantName:      "Budi Santoso",
		ApplicantNIK:       "5103010101010001",
		ApplicantAddress:   "Jl. Raya Kuta No. 1, Badung",
		ApplicantPhone:     "081234567890",
		ApplicantBirthDate: "1990-05-17",
		Description:        "Permohonan KTP baru",
		Documents:          docs,
	}
}

func (f *complaintFixture) submit(t *testing.T, docs ...services.UploadedFile) *models.Complaint {
	t.Helper()
	c, err := f.svc.Submit(context.Background(), f.actor(f.citizen), f.validInput(docs...))
	require.NoError(t, err)
	return c
}

func storedFiles(t *testing.T, root, area string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(root, area))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	require.ErrorIs(t, err, services.ErrValidation)
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	return verr.Fields
}

func TestSubmitStoresComplaintDocumentsAndInitialHistory(t *testing.T) {
	f := newComplaintFixture(t)

	c := f.submit(t,
		servicetest.Upload("kk.pdf", "application/pdf", servicetest.PDFBytes),
		servicetest.Upload("foto ktp.png", "image/png", servicetest.PNGBytes),
	)

	assert.Regexp(t, registrationShape, c.RegistrationNumber)
	assert.True(t, strings.HasPrefix(c.RegistrationNumber, "REG-20250310-"), c.RegistrationNumber)
	assert.Equal(t, models.StatusPending, c.Status)
	assert.Equal(t, f.citizen.ID, c.UserID)
	require.NotNil(t, c.ApplicantBirthDate)
	assert.Equal(t, "1990-05-17", c.ApplicantBirthDate.Format("2006-01-02"))
	assert.Equal(t, "Permohonan KTP", c.ServiceName())

	require.Len(t, c.Documents, 2)
	assert.Equal(t, "kk.pdf", c.Documents[0].DocumentName)
	assert.Equal(t, "application/pdf", c.Documents[0].DocumentType)
	assert.EqualValues(t, len(servicetest.PDFBytes), c.Documents[0].FileSize)
	assert.True(t, strings.HasPrefix(c.Documents[1].FilePath, services.DocumentsArea+"/"))
	assert.True(t, strings.HasSuffix(c.Documents[1].FilePath, "foto_ktp.png"))
	for _, doc := range c.Documents {
		full, err := f.files.Path(doc.FilePath)
		require.NoError(t, err)
		assert.FileExists(t, full)
	}

	histories := f.db.Histories(c.ID)
	require.Len(t, histories, 1)
	assert.Equal(t, models.StatusPending, histories[0].Status)
	require.NotNil(t, histories[0].Notes)
	assert.Equal(t, "Pengaduan telah diterima dan menunggu verifikasi", *histories[0].Notes)
	assert.Equal(t, f.citizen.ID, histories[0].UserID)

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, models.KindComplaintCreated, events[0].Kind)
	assert.Equal(t, c.ID, events[0].Complaint.ID)
}

func TestSubmitRejectsInvalidNIKWithoutPersisting(t *testing.T) {
	f := newComplaintFixture(t)

	for _, nik := range []string{"123", "51030101010100012", "51030101A1010001"} {
		in := f.validInput()
		in.ApplicantNIK = nik
		_, err := f.svc.Submit(context.Background(), f.actor(f.citizen), in)
		assert.Contains(t, fieldErrors(t, err), "applicant_nik", nik)
	}

	assert.Empty(t, f.db.Complaints())
	assert.Empty(t, f.notifier.Events())
}

func TestSubmitRequiresMandatoryFields(t *testing.T) {
	f := newComplaintFixture(t)

	_, err := f.svc.Submit(context.Background(), f.actor(f.citizen), services.SubmitComplaintInput{})
	fields := fieldErrors(t, err)
	for _, key := range []string{"service_id", "applicant_name", "applicant_nik", "applicant_address"} {
		assert.Contains(t, fields, key)
	}
}

func TestSubmitRejectsInactiveService(t *testing.T) {
	f := newComplaintFixture(t)

	in := f.validInput()
	in.ServiceID = f.inactive.ID
	_, err := f.svc.Submit(context.Background(), f.actor(f.citizen), in)
	assert.Contains(t, fieldErrors(t, err), "service_id")
	assert.Empty(t, f.db.Complaints())
}

func TestSubmitRejectsUnsupportedAttachments(t *testing.T) {
	f := newComplaintFixture(t)

	in := f.validInput(
		servicetest.Upload("kk.pdf", "application/pdf", servicetest.PDFBytes),
		servicetest.Upload("setup.exe", "application/octet-stream", []byte("MZ\x90\x00")),
		servicetest.Upload("palsu.pdf", "application/pdf", []byte("bukan pdf sama sekali")),
	)
	_, err := f.svc.Submit(context.Background(), f.actor(f.citizen), in)
	fields := fieldErrors(t, err)
	assert.NotContains(t, fields, "documents.0")
	assert.Contains(t, fields, "documents.1")
	assert.Contains(t, fields, "documents.2")
	assert.Empty(t, storedFiles(t, f.files.Root(), services.DocumentsArea))
}

func TestSubmitRejectsOversizedAttachment(t *testing.T) {
	f := newComplaintFixture(t, func(d *services.ComplaintDeps) {
		d.Policy = services.NewUploadPolicy(1)
	})

	big := append(append([]byte(nil), servicetest.PDFBytes...), make([]byte, 2048)...)
	_, err := f.svc.Submit(context.Background(), f.actor(f.citizen), f.validInput(
		servicetest.Upload("besar.pdf", "application/pdf", big),
	))
	assert.Contains(t, fieldErrors(t, err), "documents.0")
}

func TestSubmitRequiresAuthenticatedActor(t *testing.T) {
	f := newComplaintFixture(t)

	_, err := f.svc.Submit(context.Background(), services.Guest, f.validInput())
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestSubmitRollsBackWhenDocumentInsertFails(t *testing.T) {
	f := newComplaintFixture(t)
	f.store.FailDocumentAt = 2

	_, err := f.svc.Submit(context.Background(), f.actor(f.citizen), f.validInput(
		servicetest.Upload("kk.pdf", "application/pdf", servicetest.PDFBytes),
		servicetest.Upload("akta.pdf", "application/pdf", servicetest.PDFBytes),
	))
	require.ErrorIs(t, err, services.ErrStorage)

	assert.Empty(t, f.db.Complaints())
	assert.Empty(t, storedFiles(t, f.files.Root(), services.DocumentsArea))
	assert.Empty(t, f.notifier.Events())
}

func TestSubmitRetriesRegistrationCollision(t *testing.T) {
	candidates := []string{"REG-20250310-AAAAAA", "REG-20250310-AAAAAA", "REG-20250310-BBBBBB"}
	f := newComplaintFixture(t, func(d *services.ComplaintDeps) {
		d.Registration = func(time.Time) (string, error) {
			next := candidates[0]
			if len(candidates) > 1 {
				candidates = candidates[1:]
			}
			return next, nil
		}
	})

	first := f.submit(t)
	second := f.submit(t)

	assert.Equal(t, "REG-20250310-AAAAAA", first.RegistrationNumber)
	assert.Equal(t, "REG-20250310-BBBBBB", second.RegistrationNumber)
	assert.Len(t, f.db.Complaints(), 2)
}

func TestSubmitGivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newComplaintFixture(t, func(d *services.ComplaintDeps) {
		d.Registration = func(time.Time) (string, error) { return "REG-20250310-AAAAAA", nil }
	})

	f.submit(t)
	_, err := f.svc.Submit(context.Background(), f.actor(f.citizen), f.validInput())
	assert.ErrorIs(t, err, services.ErrStorage)
	assert.Len(t, f.db.Complaints(), 1)
}

func TestUpdateStatusAppendsHistoryAndNotifiesOwner(t *testing.T) {
	f := newComplaintFixture(t)
	c := f.submit(t, servicetest.Upload("kk.pdf", "application/pdf", servicetest.PDFBytes))

	note := "Selesai diproses"
	result := servicetest.Upload("hasil.pdf", "application/pdf", servicetest.PDFBytes)
	updated, err := f.svc.UpdateStatus(context.Background(), f.actor(f.admin), c.ID, services.UpdateStatusInput{
		Status:         "completed",
		Notes:          &note,
		ResultDocument: &result,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, updated.Status)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, note, *updated.Notes)
	require.NotNil(t, updated.ResultDocument)
	assert.True(t, strings.HasPrefix(*updated.ResultDocument, services.ResultsArea+"/"))
	assert.Len(t, storedFiles(t, f.files.Root(), services.ResultsArea), 1)

	histories := f.db.Histories(c.ID)
	require.Len(t, histories, 2)
	assert.Equal(t, models.StatusCompleted, histories[1].Status)
	assert.Equal(t, note, *histories[1].Notes)
	assert.Equal(t, f.admin.ID, histories[1].UserID)
	assert.Equal(t, updated.Status, histories[1].Status)

	events := f.notifier.Events()
	require.Len(t, events, 2)
	assert.Equal(t, models.KindComplaintStatusChanged, events[1].Kind)
	assert.Equal(t, models.StatusPending, events[1].OldStatus)
	assert.Equal(t, models.StatusCompleted, events[1].NewStatus)
}

func TestUpdateStatusWithoutChangeRecordsHistoryOnly(t *testing.T) {
	f := newComplaintFixture(t)
	c := f.submit(t)

	updated, err := f.svc.UpdateStatus(context.Background(), f.actor(f.admin), c.ID, services.UpdateStatusInput{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Nil(t, updated.Notes)

	histories := f.db.Histories(c.ID)
	require.Len(t, histories, 2)
	assert.Equal(t, "Status diperbarui oleh admin", *histories[1].Notes)

	assert.Len(t, f.notifier.Events(), 1)
}

func TestUpdateStatusClearsNotesWhenOmitted(t *testing.T) {
	f := newComplaintFixture(t)
	c := f.submit(t)

	note := "Lengkapi dokumen KK"
	_, err := f.svc.UpdateStatus(context.Background(), f.actor(f.admin), c.ID, services.UpdateStatusInput{Status: "revision", Notes: &note})
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(context.Background(), f.actor(f.admin), c.ID, services.UpdateStatusInput{Status: "reviewing"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusReviewing, updated.Status)
	assert.Nil(t, updated.Notes)
}

func TestUpdateStatusGuards(t *testing.T) {
	f := newComplaintFixture(t)
	c := f.submit(t)
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, f.actor(f.citizen), c.ID, services.UpdateStatusInput{Status: "approved"})
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = f.svc.UpdateStatus(ctx, services.Guest, c.ID, services.UpdateStatusInput{Status: "approved"})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	for _, status := range []string{"archived", "SELESAI", "Ditolak", "  completed  ", "Completed"} {
		_, err = f.svc.UpdateStatus(ctx, f.actor(f.admin), c.ID, services.UpdateStatusInput{Status: status})
		assert.Contains(t, fieldErrors(t, err), "status", status)
	}
	assert.Equal(t, models.StatusPending, f.db.Complaints()[0].Status)

	_, err = f.svc.UpdateStatus(ctx, f.actor(f.admin), 9999, services.UpdateStatusInput{Status: "approved"})
	assert.ErrorIs(t, err, services.ErrNotFound)

	assert.Len(t, f.db.Histories(c.ID), 1)
}

func TestListScopesComplaintsToOwner(t *testing.T) {
	f := newComplaintFixture(t)
	ctx := context.Background()

	mine := f.submit(t)
	in := f.validInput()
	in.ApplicantName = "Siti Rahayu"
	theirs, err := f.svc.Submit(ctx, f.actor(f.neighbor), in)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, f.actor(f.admin), theirs.ID, services.UpdateStatusInput{Status: "approved"})
	require.NoError(t, err)

	page, err := f.svc.List(ctx, f.actor(f.citizen), services.ComplaintQuery{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, mine.ID, page.Data[0].ID)
	assert.EqualValues(t, 1, page.Total)

	all, err := f.svc.List(ctx, f.actor(f.admin), services.ComplaintQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)
	assert.Equal(t, services.DefaultPerPage, all.PerPage)

	approved, err := f.svc.List(ctx, f.actor(f.admin), services.ComplaintQuery{Status: "disetujui"})
	require.NoError(t, err)
	require.Len(t, approved.Data, 1)
	assert.Equal(t, theirs.ID, approved.Data[0].ID)

	none, err := f.svc.List(ctx, f.actor(f.admin), services.ComplaintQuery{Status: "unknown"})
	require.NoError(t, err)
	assert.Empty(t, none.Data)
	assert.Zero(t, none.Total)
}

func TestGetEnforcesOwnership(t *testing.T) {
	f := newComplaintFixture(t)
	ctx := context.Background()
	c := f.submit(t)

	got, err := f.svc.Get(ctx, f.actor(f.citizen), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.RegistrationNumber, got.RegistrationNumber)
	assert.Len(t, got.StatusHistories, 1)

	_, err = f.svc.Get(ctx, f.actor(f.neighbor), c.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = f.svc.Get(ctx, f.actor(f.admin), c.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, f.actor(f.admin), 4242)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestTrackByRegistrationNumber(t *testing.T) {
	f := newComplaintFixture(t)
	ctx := context.Background()
	c := f.submit(t)

	got, err := f.svc.Track(ctx, "  "+c.RegistrationNumber+" ")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.NotEmpty(t, got.StatusHistories)

	_, err = f.svc.Track(ctx, "REG-20990101-ZZZZZZ")
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = f.svc.Track(ctx, " ")
	assert.Contains(t, fieldErrors(t, err), "registration_number")
}

func TestStatisticsCountsByStatus(t *testing.T) {
	f := newComplaintFixture(t)
	ctx := context.Background()

	first := f.submit(t)
	f.submit(t)
	_, err := f.svc.UpdateStatus(ctx, f.actor(f.admin), first.ID, services.UpdateStatusInput{Status: "rejected"})
	require.NoError(t, err)

	stats, err := f.svc.Statistics(ctx, f.actor(f.admin))
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.Pending)
	assert.EqualValues(t, 1, stats.Rejected)
	assert.EqualValues(t, 2, stats.ThisMonth)
	assert.EqualValues(t, 2, stats.ThisYear)

	_, err = f.svc.Statistics(ctx, f.actor(f.citizen))
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestDownloadsAreOwnershipGated(t *testing.T) {
	f := newComplaintFixture(t)
	ctx := context.Background()
	c := f.submit(t, servicetest.Upload("kk.pdf", "application/pdf", servicetest.PDFBytes))

	doc, err := f.svc.DocumentDownload(ctx, f.actor(f.citizen), c.ID, c.Documents[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "kk.pdf", doc.Name)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.FileExists(t, doc.Path)

	_, err = f.svc.DocumentDownload(ctx, f.actor(f.neighbor), c.ID, c.Documents[0].ID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = f.svc.ResultDownload(ctx, f.actor(f.citizen), c.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	result := servicetest.Upload("hasil.pdf", "application/pdf", servicetest.PDFBytes)
	_, err = f.svc.UpdateStatus(ctx, f.actor(f.admin), c.ID, services.UpdateStatusInput{Status: "completed", ResultDocument: &result})
	require.NoError(t, err)

	dl, err := f.svc.ResultDownload(ctx, f.actor(f.citizen), c.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dl.Name, "Result_"+c.RegistrationNumber+"_"), dl.Name)
	assert.True(t, strings.HasSuffix(dl.Name, "hasil.pdf"), dl.Name)
}

func TestUpdateStatusReplacesPreviousResult(t *testing.T) {
	f := newComplaintFixture(t)
	c := f.submit(t, servicetest.Upload("kk.pdf", "application/pdf", servicetest.PDFBytes))
	ctx := context.Background()

	first := servicetest.Upload("hasil-1.pdf", "application/pdf", servicetest.PDFBytes)
	_, err := f.svc.UpdateStatus(ctx, f.actor(f.admin), c.ID, services.UpdateStatusInput{Status: "approved", ResultDocument: &first})
	require.NoError(t, err)

	second := servicetest.Upload("hasil-2.pdf", "application/pdf", servicetest.PDFBytes)
	updated, err := f.svc.UpdateStatus(ctx, f.actor(f.admin), c.ID, services.UpdateStatusInput{Status: "completed", ResultDocument: &second})
	require.NoError(t, err)

	files := storedFiles(t, f.files.Root(), services.ResultsArea)
	require.Len(t, files, 1)
	assert.True(t, strings.HasSuffix(*updated.ResultDocument, "hasil-2.pdf"))
}

func TestConcurrentIdenticalStatusUpdatesNotifyOnce(t *testing.T) {
	f := newComplaintFixture(t)
	c := f.submit(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.UpdateStatus(ctx, f.actor(f.admin), c.ID, services.UpdateStatusInput{Status: "completed"})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	assert.Len(t, f.db.Histories(c.ID), 5)
	var changes int
	for _, ev := range f.notifier.Events() {
		if ev.Kind == models.KindComplaintStatusChanged {
			changes++
			assert.Equal(t, models.StatusPending, ev.OldStatus)
		}
	}
	assert.Equal(t, 1, changes)
}

type brokenSaveStorage struct {
	services.FileStorage
}

func (brokenSaveStorage) Save(context.Context, string, io.Reader) (int64, error) {
	return 0, errors.New("disk full")
}

func TestUpdateStatusRollsBackWhenResultCannotBeStored(t *testing.T) {
	f := newComplaintFixture(t, func(deps *services.ComplaintDeps) {
		deps.Files = brokenSaveStorage{FileStorage: deps.Files}
	})
	c := f.submit(t)

	result := servicetest.Upload("hasil.pdf", "application/pdf", servicetest.PDFBytes)
	_, err := f.svc.UpdateStatus(context.Background(), f.actor(f.admin), c.ID, services.UpdateStatusInput{
		Status:         "completed",
		ResultDocument: &result,
	})
	require.ErrorIs(t, err, services.ErrStorage)

	stored := f.db.Complaints()[0]
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Nil(t, stored.ResultDocument)
	assert.Len(t, f.db.Histories(c.ID), 1)
	assert.Empty(t, storedFiles(t, f.files.Root(), services.ResultsArea))
}
