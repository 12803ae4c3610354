package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/fadakar85/bazaar/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
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
	db.Create(&domain.User{ID: 1, Username: "seller", Email: "s@example.com"})
	db.Create(&domain.User{ID: 2, Username: "buyer", Email: "b@example.com"})
	db.Create(&domain.Product{ID: 10, Name: "میز", UserId: 1})
	return NewService(db, nil), db
}

func TestSendAndList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Send(ctx, 2, 1, 10, "هنوز موجوده؟"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(ctx, 1, 2, 10, "بله"); err != nil {
		t.Fatalf("reply: %v", err)
	}

	inbox, err := svc.ListByUser(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(inbox) != 2 {
		t.Fatalf("seller inbox has %d rows, want 2", len(inbox))
	}

	conv, err := svc.Conversation(ctx, 10, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(conv) != 2 || conv[0].Content != "هنوز موجوده؟" {
		t.Fatalf("conversation order wrong: %+v", conv)
	}
}

func TestSendValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Send(ctx, 2, 1, 10, "   "); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("blank content: err = %v", err)
	}
	if _, err := svc.Send(ctx, 1, 1, 10, "hi"); !errors.Is(err, ErrSelfMessage) {
		t.Fatalf("self message: err = %v", err)
	}
	if _, err := svc.Send(ctx, 2, 404, 10, "hi"); !errors.Is(err, ErrUnknownTarget) {
		t.Fatalf("unknown receiver: err = %v", err)
	}
	if _, err := svc.Send(ctx, 2, 1, 404, "hi"); !errors.Is(err, ErrUnknownTarget) {
		t.Fatalf("unknown product: err = %v", err)
	}
}
