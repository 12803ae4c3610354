package messaging

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fadakar85/bazaar/internal/domain"
	"github.com/fadakar85/bazaar/internal/events"
	"github.com/fadakar85/bazaar/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrEmptyContent  = errors.New("message content is empty")
	ErrSelfMessage   = errors.New("cannot message yourself")
	ErrUnknownTarget = errors.New("receiver or product not found")
)

// Publisher is the event sink notified after a message is stored.
type Publisher interface {
	Publish(topic string, args ...interface{})
}

// Service is the append-only message log between buyers and sellers.
type Service struct {
	db  *gorm.DB
	bus Publisher
}

func NewService(db *gorm.DB, bus Publisher) *Service {
	return &Service{db: db, bus: bus}
}

// Send appends one message about a listing.
func (s *Service) Send(ctx context.Context, senderID, receiverID, productID int64, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if senderID == receiverID {
		return nil, ErrSelfMessage
	}

	var count int64
	s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", receiverID).Count(&count)
	if count == 0 {
		return nil, ErrUnknownTarget
	}
	s.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", productID).Count(&count)
	if count == 0 {
		return nil, ErrUnknownTarget
	}

	msg := &domain.Message{
		ID:         common.UUIDint64(),
		SenderId:   senderID,
		ReceiverId: receiverID,
		ProductId:  productID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}

	zap.L().Info("message sent",
		zap.Int64("sender_id", senderID),
		zap.Int64("receiver_id", receiverID),
		zap.Int64("product_id", productID))
	if s.bus != nil {
		s.bus.Publish(events.TopicMessageSent, msg.ID, receiverID)
	}
	return msg, nil
}

// ListByUser returns every message sent or received by the user, newest
// first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]domain.Message, error) {
	var rows []domain.Message
	err := s.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// Conversation returns the exchange between two users about one listing,
// oldest first.
func (s *Service) Conversation(ctx context.Context, productID, a, b int64) ([]domain.Message, error) {
	var rows []domain.Message
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
