package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/andrelucena/celebra-backend/pkg/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:users_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, email, name string) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "x",
		DisplayName:  name,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestGetByEmailNormalizesInput(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seeded := seedUser(t, conn, "ana@example.com", "Ana Silva")

	found, err := repo.GetByEmail(ctx, "  ANA@example.com ")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if found == nil || found.ID != seeded.ID {
		t.Fatalf("expected seeded user, got %+v", found)
	}
}

func TestGetByEmailReturnsNilOnMiss(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewRepository(conn)

	found, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if found != nil {
		t.Fatalf("expected nil for unknown email, got %+v", found)
	}
}

func TestDisplayNamesBatchesLookups(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	ana := seedUser(t, conn, "ana@example.com", "Ana Silva")
	bia := seedUser(t, conn, "bia@example.com", "Bia Souza")

	names, err := repo.DisplayNames(ctx, []uuid.UUID{ana.ID, bia.ID, uuid.New()})
	if err != nil {
		t.Fatalf("display names: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 resolved names, got %d", len(names))
	}
	if names[ana.ID] != "Ana Silva" || names[bia.ID] != "Bia Souza" {
		t.Fatalf("unexpected names map: %v", names)
	}

	empty, err := repo.DisplayNames(ctx, nil)
	if err != nil {
		t.Fatalf("display names empty: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty map, got %v", empty)
	}
}
