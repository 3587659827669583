package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"hospital-frontdesk-server/internal/config"
	"hospital-frontdesk-server/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := models.OpenDB(models.DatabaseConfig{
		Driver:       models.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestSeedIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	cfg := &config.Config{SeedAdminEmail: "admin@test.local", SeedAdminPassword: "s3cret-pass"}

	for i := 0; i < 2; i++ {
		if err := seed(db, cfg, zerolog.Nop()); err != nil {
			t.Fatalf("seed run %d: %v", i+1, err)
		}
	}

	var rooms, admins, doctors int64
	db.Model(&models.Room{}).Count(&rooms)
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins)
	db.Model(&models.User{}).Where("role = ?", models.RoleDoctor).Count(&doctors)
	if rooms != 4 || admins != 1 || doctors != 1 {
		t.Fatalf("unexpected counts rooms=%d admins=%d doctors=%d", rooms, admins, doctors)
	}

	var admin models.User
	if err := db.First(&admin, "email = ?", cfg.SeedAdminEmail).Error; err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if !admin.CheckPassword("s3cret-pass") {
		t.Fatal("admin password not set")
	}

	var doctor models.User
	if err := db.Preload("Room").First(&doctor, "email = ?", sampleDoctorEmail).Error; err != nil {
		t.Fatalf("load doctor: %v", err)
	}
	if doctor.Room == nil || doctor.Room.Number != "S001" {
		t.Fatalf("sample doctor should sit in S001, got %+v", doctor.Room)
	}
}

func TestNewRouterHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	cfg := &config.Config{Environment: "development", Origin: "http://localhost:4200", JWTSecret: "a", JWTRefreshSecret: "b"}

	router := newRouter(cfg, zerolog.Nop(), db)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("health returned %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a request id header")
	}
}
