package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"public-complaint-api/models"
	"public-complaint-api/services"
	"public-complaint-api/services/servicetest"
)

var (
	catalogAdmin   = services.Actor{UserID: 1, Role: models.RoleAdmin}
	catalogCitizen = services.Actor{UserID: 2, Role: models.RoleUser}
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestCatalogListHidesInactiveServicesFromNonAdmins(t *testing.T) {
	db := servicetest.NewDB(nil)
	db.AddService(models.Service{Name: "Permohonan KTP", Category: strPtr("Kependudukan"), IsActive: true})
	db.AddService(models.Service{Name: "Bantuan Sosial", Category: strPtr("Sosial"), IsActive: true})
	db.AddService(models.Service{Name: "Layanan Lama", IsActive: false})
	catalog := services.NewCatalogService(db.ServiceStore(), 8, time.Minute)
	ctx := context.Background()

	page, err := catalog.List(ctx, services.Guest, services.ServiceQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, "Bantuan Sosial", page.Data[0].Name)

	page, err = catalog.List(ctx, catalogCitizen, services.ServiceQuery{IncludeAll: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = catalog.List(ctx, catalogAdmin, services.ServiceQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)

	page, err = catalog.List(ctx, services.Guest, services.ServiceQuery{Category: "Sosial"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Bantuan Sosial", page.Data[0].Name)

	categories, err := catalog.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kependudukan", "Sosial"}, categories)
}

func TestCatalogGetServesFromCacheUntilMutation(t *testing.T) {
	db := servicetest.NewDB(nil)
	svc := db.AddService(models.Service{Name: "Permohonan KTP", Description: "KTP", IsActive: true})
	store := db.ServiceStore()
	catalog := services.NewCatalogService(store, 8, time.Minute)
	ctx := context.Background()

	got, err := catalog.Get(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Permohonan KTP", got.Name)

	changed := svc
	changed.Name = "Permohonan e-KTP"
	require.NoError(t, store.Update(ctx, &changed))

	got, err = catalog.Get(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Permohonan KTP", got.Name, "lookup should be cached")

	_, err = catalog.Update(ctx, catalogAdmin, svc.ID, services.ServiceInput{Name: "Permohonan KTP Elektronik", Description: "KTP", IsActive: boolPtr(false)})
	require.NoError(t, err)

	got, err = catalog.Get(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Permohonan KTP Elektronik", got.Name)

	_, err = catalog.ActiveService(ctx, svc.ID)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = catalog.Get(ctx, 999)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCatalogCreateValidatesAndRequiresAdmin(t *testing.T) {
	db := servicetest.NewDB(nil)
	catalog := services.NewCatalogService(db.ServiceStore(), 8, time.Minute)
	ctx := context.Background()

	in := services.ServiceInput{
		Name:              "  Perizinan Usaha ",
		Description:       "Izin usaha mikro",
		Category:          strPtr(" Perizinan "),
		RequiredDocuments: []string{"KTP Pemilik Usaha", " NPWP "},
	}

	_, err := catalog.Create(ctx, catalogCitizen, in)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = catalog.Create(ctx, services.Guest, in)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = catalog.Create(ctx, catalogAdmin, services.ServiceInput{})
	fields := fieldErrors(t, err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "description")

	created, err := catalog.Create(ctx, catalogAdmin, in)
	require.NoError(t, err)
	assert.Equal(t, "Perizinan Usaha", created.Name)
	assert.Equal(t, "Perizinan", created.CategoryName())
	assert.Equal(t, []string{"KTP Pemilik Usaha", "NPWP"}, []string(created.RequiredDocuments))
	assert.True(t, created.IsActive)
}

func TestCatalogDeleteRefusesReferencedService(t *testing.T) {
	f := newComplaintFixture(t)
	catalog := services.NewCatalogService(f.db.ServiceStore(), 8, time.Minute)
	ctx := context.Background()
	f.submit(t)

	err := catalog.Delete(ctx, f.actor(f.admin), f.service.ID)
	assert.Contains(t, fieldErrors(t, err), "service_id")

	require.NoError(t, catalog.Delete(ctx, f.actor(f.admin), f.inactive.ID))
	_, err = catalog.Get(ctx, f.inactive.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	assert.ErrorIs(t, catalog.Delete(ctx, f.actor(f.admin), f.inactive.ID), services.ErrNotFound)
	assert.ErrorIs(t, catalog.Delete(ctx, f.actor(f.citizen), f.service.ID), services.ErrForbidden)
}
