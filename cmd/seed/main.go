// Command seed loads administrator accounts, the service catalog and,
// optionally, demo complaints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"public-complaint-api/config"
	"public-complaint-api/models"
	"public-complaint-api/services"
)

type seedUser struct {
	Name      string
	NIK       string
	Email     string
	Password  string
	Phone     string
	Address   string
	BirthDate string
	Job       string
	Role      string
}

var admins = []seedUser{
	{
		Name:      "Administrator",
		NIK:       "3301010101010001",
		Email:     "admin@badung.go.id",
		Password:  "admin123",
		Phone:     "081234567890",
		Address:   "Kantor Pemerintah Kabupaten Badung",
		BirthDate: "1980-01-01",
		Job:       "Administrator Sistem",
		Role:      models.RoleAdmin,
	},
	{
		Name:      "Operator Layanan",
		NIK:       "3301010101010002",
		Email:     "operator@badung.go.id",
		Password:  "operator123",
		Phone:     "081234567891",
		Address:   "Kantor Pemerintah Kabupaten Badung",
		BirthDate: "1985-01-01",
		Job:       "Operator Sistem",
		Role:      models.RoleAdmin,
	},
}

type seedService struct {
	Name        string
	Description string
	Category    string
	Documents   []string
}

var catalog = []seedService{
	{
		Name:        "Permohonan KTP",
		Description: "Layanan pembuatan atau perpanjangan Kartu Tanda Penduduk",
		Category:    "Kependudukan",
		Documents:   []string{"KK (Kartu Keluarga)", "Akta Kelahiran", "Ijazah terakhir", "Surat Nikah (jika sudah menikah)"},
	},
	{
		Name:        "Perizinan Usaha",
		Description: "Layanan pengurusan izin usaha mikro, kecil, dan menengah",
		Category:    "Perizinan",
		Documents:   []string{"KTP Pemilik Usaha", "KK (Kartu Keluarga)", "Surat Domisili Usaha", "Denah Lokasi Usaha", "NPWP"},
	},
	{
		Name:        "Surat Keterangan Domisili",
		Description: "Layanan penerbitan surat keterangan domisili",
		Category:    "Kependudukan",
		Documents:   []string{"KTP", "KK (Kartu Keluarga)", "Surat Pengantar RT/RW"},
	},
	{
		Name:        "Pengaduan Infrastruktur",
		Description: "Layanan pengaduan terkait infrastruktur jalan, jembatan, dan fasilitas umum",
		Category:    "Pengaduan",
		Documents:   []string{"KTP Pelapor", "Foto Kondisi Infrastruktur", "Surat Pengantar RT/RW (opsional)"},
	},
	{
		Name:        "Izin Mendirikan Bangunan (IMB)",
		Description: "Layanan pengurusan izin mendirikan bangunan",
		Category:    "Perizinan",
		Documents:   []string{"KTP Pemohon", "Sertifikat Tanah", "Gambar Rencana Bangunan", "Surat Pernyataan Tidak Keberatan Tetangga"},
	},
	{
		Name:        "Bantuan Sosial",
		Description: "Layanan permohonan bantuan sosial untuk masyarakat kurang mampu",
		Category:    "Sosial",
		Documents:   []string{"KTP", "KK (Kartu Keluarga)", "Surat Keterangan Tidak Mampu dari Kelurahan", "Foto Kondisi Rumah"},
	},
}

var demoNames = []string{
	"Budi Santoso", "Siti Rahayu", "Made Wirawan", "Ni Luh Putu Ayu", "Agus Pratama",
	"Dewi Lestari", "Komang Adi", "Rina Wulandari", "Eko Saputra", "Wayan Sudarma",
}

func main() {
	config.LoadEnv()
	cfg := config.Load()

	var (
		demo       bool
		complaints int
	)
	flag.BoolVar(&demo, "demo", false, "also create test users and sample complaints")
	flag.IntVar(&complaints, "complaints", 50, "number of demo complaints to create with -demo")
	flag.Parse()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect database: %v", err)
	}

	ctx := context.Background()
	users := services.NewGormUserStore(db)

	var adminIDs []uint
	for _, u := range admins {
		user, err := ensureUser(ctx, users, u)
		if err != nil {
			log.Fatalf("seed admin %s: %v", u.Email, err)
		}
		adminIDs = append(adminIDs, user.ID)
	}

	serviceIDs, err := seedCatalog(ctx, db)
	if err != nil {
		log.Fatalf("seed services: %v", err)
	}
	log.Printf("Seeded %d admins and %d services", len(adminIDs), len(serviceIDs))

	if !demo {
		return
	}

	var citizenIDs []uint
	for i := 1; i <= len(demoNames); i++ {
		user, err := ensureUser(ctx, users, seedUser{
			Name:     demoNames[i-1],
			NIK:      fmt.Sprintf("51030101%08d", i),
			Email:    fmt.Sprintf("user%d@test.com", i),
			Password: "password",
			Phone:    fmt.Sprintf("0812000000%02d", i),
			Address:  "Kabupaten Badung, Bali",
			Role:     models.RoleUser,
		})
		if err != nil {
			log.Fatalf("seed test user %d: %v", i, err)
		}
		citizenIDs = append(citizenIDs, user.ID)
	}

	created, err := seedComplaints(ctx, services.NewGormComplaintStore(db), complaints, citizenIDs, serviceIDs, adminIDs[0])
	if err != nil {
		log.Fatalf("seed complaints: %v", err)
	}
	log.Printf("Created %d test users and %d complaints with status histories", len(citizenIDs), created)
}

func ensureUser(ctx context.Context, store *services.GormUserStore, in seedUser) (*models.User, error) {
	existing, err := store.FindByEmail(ctx, in.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, services.ErrNotFound) {
		return nil, err
	}

	hashed, err := services.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:     in.Name,
		NIK:      in.NIK,
		Email:    in.Email,
		Password: hashed,
		Phone:    optional(in.Phone),
		Address:  optional(in.Address),
		Job:      optional(in.Job),
		Role:     in.Role,
		IsActive: true,
	}
	if in.BirthDate != "" {
		if t, err := time.ParseInLocation("2006-01-02", in.BirthDate, time.Local); err == nil {
			user.BirthDate = &t
		}
	}
	if err := store.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// seedCatalog inserts the catalog only into an empty services table.
func seedCatalog(ctx context.Context, db *gorm.DB) ([]uint, error) {
	store := services.NewGormServiceStore(db)
	existing, total, err := store.List(ctx, services.ServiceQuery{IncludeAll: true, Page: 1, PerPage: 100})
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(catalog))
	if total > 0 {
		for _, svc := range existing {
			ids = append(ids, svc.ID)
		}
		return ids, nil
	}

	for _, entry := range catalog {
		category := entry.Category
		svc := &models.Service{
			Name:              entry.Name,
			Description:       entry.Description,
			Category:          &category,
			RequiredDocuments: datatypes.NewJSONSlice(entry.Documents),
			IsActive:          true,
		}
		if err := store.Create(ctx, svc); err != nil {
			return nil, err
		}
		ids = append(ids, svc.ID)
	}
	return ids, nil
}

func seedComplaints(ctx context.Context, store *services.GormComplaintStore, n int, userIDs, serviceIDs []uint, adminID uint) (int, error) {
	if len(userIDs) == 0 || len(serviceIDs) == 0 {
		return 0, errors.New("no users or services to attach complaints to")
	}

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	now := time.Now()
	created := 0

	for i := 0; i < n; i++ {
		createdAt := now.Add(-time.Duration(rng.IntN(180*24)) * time.Hour)
		status := models.ComplaintStatuses[rng.IntN(len(models.ComplaintStatuses))]
		userID := userIDs[rng.IntN(len(userIDs))]
		applicant := demoNames[rng.IntN(len(demoNames))]

		complaint := &models.Complaint{
			UserID:           userID,
			ServiceID:        serviceIDs[rng.IntN(len(serviceIDs))],
			ApplicantName:    applicant,
			ApplicantNIK:     fmt.Sprintf("5103%012d", rng.Int64N(1_000_000_000_000)),
			ApplicantAddress: "Kabupaten Badung, Bali",
			Description:      optional("Permohonan layanan contoh untuk " + applicant),
			Status:           status,
			CreatedAt:        createdAt,
			UpdatedAt:        createdAt,
		}

		err := store.WithinTx(ctx, func(tx services.ComplaintStore) error {
			if err := createUnique(ctx, tx, complaint); err != nil {
				return err
			}
			return tx.AppendHistory(ctx, &models.ComplaintStatusHistory{
				ComplaintID: complaint.ID,
				Status:      status,
				Notes:       optional("Status awal dari data contoh"),
				UserID:      adminID,
				CreatedAt:   createdAt,
				UpdatedAt:   createdAt,
			})
		})
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func createUnique(ctx context.Context, tx services.ComplaintStore, c *models.Complaint) error {
	for attempt := 0; attempt < 5; attempt++ {
		number, err := services.NewRegistrationNumber(c.CreatedAt)
		if err != nil {
			return err
		}
		c.RegistrationNumber = number
		err = tx.Create(ctx, c)
		if !errors.Is(err, services.ErrConflict) {
			return err
		}
	}
	return errors.New("could not allocate a unique registration number")
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
