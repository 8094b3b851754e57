package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var userColumns = []string{"id", "name", "email", "password", "is_active", "created_at", "updated_at"}

func TestPGUserStoreFindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("select id, name, email, password, is_active, created_at, updated_at from users where email=").
		WithArgs("aung@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("01ARZ3NDEKTSV4RRFFQ69G5FAV", "aung", "aung@example.com", "hash", true, now, now))

	store := NewPGUserStore(db)
	user, err := store.FindByEmail(context.Background(), "aung@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if user.Name != "aung" || !user.Active {
		t.Fatalf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGUserStoreFindByNameNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select id, name, email, password, is_active, created_at, updated_at from users where name=").
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(userColumns))

	store := NewPGUserStore(db)
	if _, err := store.FindByName(context.Background(), "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGUserStoreUpdatePassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("update users set password=").
		WithArgs("new-hash", "aung").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("update users set password=").
		WithArgs("new-hash", "nobody").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewPGUserStore(db)
	if err := store.UpdatePassword(context.Background(), "aung", "new-hash"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if err := store.UpdatePassword(context.Background(), "nobody", "new-hash"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
