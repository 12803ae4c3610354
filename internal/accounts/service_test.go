package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/fadakar85/bazaar/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(domain.Tables...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(db)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "fadakar", "fadakar@example.com", "s3cret77")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Password == "s3cret77" {
		t.Fatal("password stored in clear text")
	}

	got, err := svc.Authenticate(ctx, "fadakar", "s3cret77")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("authenticated wrong user: %d", got.ID)
	}

	if _, err := svc.Authenticate(ctx, "fadakar", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "s3cret77"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: err = %v", err)
	}
}

func TestRegisterUniqueness(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ali", "ali@example.com", "password"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(ctx, "ali", "other@example.com", "password"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("duplicate username: err = %v", err)
	}
	if _, err := svc.Register(ctx, "reza", "ali@example.com", "password"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate email: err = %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, c := range []struct{ u, e, p string }{
		{"", "a@b.c", "password"},
		{"ali", "", "password"},
		{"ali", "not-an-email", "password"},
		{"ali", "a@b.c", "short"},
	} {
		if _, err := svc.Register(ctx, c.u, c.e, c.p); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Register(%q,%q,%q): err = %v, want ErrInvalidInput", c.u, c.e, c.p, err)
		}
	}
}
