package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	db := bun.NewDB(mockDB, pgdialect.New())
	return NewRepository(db), mock
}

func userColumns() []string {
	return []string{"id", "full_name", "email", "phone", "dob", "username", "password_hash", "created_at", "updated_at"}
}

func TestRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepository(t)

	id := uuid.New()
	dob := time.Date(1990, 5, 14, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(id.String(), "Ada Stone", "ada@example.com", "555-0100", dob, "ada", "hash", now, now))

	created, err := repo.Create(context.Background(), &User{
		FullName:     "Ada Stone",
		Email:        "ada@example.com",
		Phone:        "555-0100",
		DateOfBirth:  dob,
		Username:     "ada",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if created.ID != id {
		t.Fatalf("expected id %s, got %s", id, created.ID)
	}
	if created.Username != "ada" {
		t.Fatalf("expected username ada, got %s", created.Username)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepositoryCreate_Duplicate(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "users_username_key"`))

	_, err := repo.Create(context.Background(), &User{
		FullName:     "Ada Stone",
		Email:        "ada@example.com",
		Phone:        "555-0100",
		DateOfBirth:  time.Now(),
		Username:     "ada",
		PasswordHash: "hash",
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestRepositoryGetByUsername(t *testing.T) {
	repo, mock := newMockRepository(t)

	id := uuid.New()
	dob := time.Date(1990, 5, 14, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(id.String(), "Ada Stone", "ada@example.com", "555-0100", dob, "ada", "hash", now, now))

	got, err := repo.GetByUsername(context.Background(), "ada")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if got.ID != id {
		t.Fatalf("expected id %s, got %s", id, got.ID)
	}
	if got.PasswordHash != "hash" {
		t.Fatal("expected password hash to be loaded for verification")
	}
}

func TestRepositoryGetByUsername_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryGetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
