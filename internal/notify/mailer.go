package notify

import (
	"fmt"

	"github.com/fadakar85/bazaar/config"
	"github.com/fadakar85/bazaar/internal/domain"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

// Mailer emails users when they receive a marketplace message. It stays
// inert unless SMTP is configured.
type Mailer struct {
	cfg config.SmtpConfig
	db  *gorm.DB
}

func NewMailer(cfg config.SmtpConfig, db *gorm.DB) *Mailer {
	return &Mailer{cfg: cfg, db: db}
}

func (m *Mailer) Enabled() bool {
	return m.cfg.Host != "" && m.cfg.From != ""
}

// HandleMessageSent is the events.TopicMessageSent subscriber. Failures
// are logged, never surfaced: notification mail is best effort.
func (m *Mailer) HandleMessageSent(messageID, receiverID int64) {
	if !m.Enabled() {
		return
	}

	var receiver domain.User
	if err := m.db.First(&receiver, receiverID).Error; err != nil {
		zap.L().Warn("mail notify: receiver not found",
			zap.Int64("receiver_id", receiverID), zap.Error(err))
		return
	}
	var message domain.Message
	if err := m.db.First(&message, messageID).Error; err != nil {
		zap.L().Warn("mail notify: message not found",
			zap.Int64("message_id", messageID), zap.Error(err))
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", receiver.Email)
	msg.SetHeader("Subject", "پیام جدید در بازار")
	msg.SetBody("text/plain", fmt.Sprintf(
		"%s عزیز،\nشما یک پیام جدید درباره یکی از آگهی‌ها دارید:\n\n%s\n",
		receiver.Username, message.Content))

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		zap.L().Warn("mail notify: send failed",
			zap.String("to", receiver.Email), zap.Error(err))
		return
	}
	zap.L().Info("mail notification sent", zap.Int64("receiver_id", receiverID))
}
