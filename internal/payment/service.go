package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/fadakar85/bazaar/config"
	"github.com/fadakar85/bazaar/internal/domain"
	"github.com/fadakar85/bazaar/internal/listing"
	"github.com/fadakar85/bazaar/pkg/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound   = errors.New("payment order not found")
	ErrOrderNotPending = errors.New("payment order is not pending")
	ErrProductNotFound = errors.New("product not found")
)

// DefaultPaidPromotionDays is the boost window granted per confirmed
// payment, independent of the 30-day standard grant.
const DefaultPaidPromotionDays = 7

// Service drives the paid-promotion lifecycle: create a pending order
// bound to the product and both identities, send the payer to the gateway,
// and on the verified callback grant the boost atomically with the order
// update.
type Service struct {
	db    *gorm.DB
	gw    Gateway
	cfg   config.PaymentConfig
	clock listing.Clock
	bus   listing.Publisher

	// PaidPromotionDays is tunable through runtime settings.
	PaidPromotionDays int
}

func NewService(db *gorm.DB, gw Gateway, cfg config.PaymentConfig, clock listing.Clock, bus listing.Publisher) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		db:                db,
		gw:                gw,
		cfg:               cfg,
		clock:             clock,
		bus:               bus,
		PaidPromotionDays: DefaultPaidPromotionDays,
	}
}

// Initiate starts a gateway transaction for boosting productID and records
// the pending order. It returns the gateway redirect URL. The owner id is
// captured here so the callback never has to trust request input.
func (s *Service) Initiate(ctx context.Context, productID, payerID int64) (string, error) {
	var product domain.Product
	err := s.db.WithContext(ctx).First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrProductNotFound
	} else if err != nil {
		return "", err
	}

	description := fmt.Sprintf("نردبان محصول %s", product.Name)
	trackID, err := s.gw.Request(ctx, s.cfg.AmountRials, s.cfg.CallbackUrl, description)
	if err != nil {
		return "", err
	}

	order := &domain.PaymentOrder{
		ID:          common.UUIDint64(),
		ProductId:   product.ID,
		PayerId:     payerID,
		OwnerId:     product.UserId,
		Amount:      s.cfg.AmountRials,
		TrackId:     trackID,
		Status:      domain.PaymentPending,
		Description: description,
		CreatedAt:   s.clock(),
		UpdatedAt:   s.clock(),
	}
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return "", err
	}

	zap.L().Info("payment initiated",
		zap.Int64("product_id", productID),
		zap.Int64("payer_id", payerID),
		zap.String("track_id", trackID))
	return fmt.Sprintf("%s/%s", s.cfg.GatewayUrl, trackID), nil
}

// Confirm resolves the pending order for trackID, verifies the payment
// server-side and grants the paid boost. Order update and promotion grant
// commit in one transaction; a gateway rejection marks the order failed
// and grants nothing.
func (s *Service) Confirm(ctx context.Context, trackID string) (*domain.PaymentOrder, error) {
	var order domain.PaymentOrder
	err := s.db.WithContext(ctx).Where("track_id = ?", trackID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	} else if err != nil {
		return nil, err
	}
	if order.Status != domain.PaymentPending {
		return nil, ErrOrderNotPending
	}

	if err := s.gw.Verify(ctx, trackID); err != nil {
		res := s.db.WithContext(ctx).Model(&domain.PaymentOrder{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"status":     domain.PaymentFailed,
				"updated_at": s.clock(),
			})
		if res.Error != nil {
			zap.L().Error("marking payment order failed did not persist",
				zap.Int64("order_id", order.ID),
				zap.Error(res.Error))
		}
		return nil, err
	}

	now := s.clock()
	duration := time.Duration(s.PaidPromotionDays) * 24 * time.Hour
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.PaymentOrder{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"status":      domain.PaymentPaid,
				"verified_at": now,
				"updated_at":  now,
			}).Error; err != nil {
			return err
		}
		lsvc := listing.NewService(listing.NewGormProductRepository(tx), s.clock, s.bus)
		_, err := lsvc.GrantPaidPromotion(ctx, order.ProductId, duration)
		return err
	})
	if err != nil {
		return nil, err
	}

	order.Status = domain.PaymentPaid
	order.VerifiedAt = &now
	zap.L().Info("payment confirmed, paid promotion granted",
		zap.Int64("product_id", order.ProductId),
		zap.String("track_id", trackID),
		zap.Int("days", s.PaidPromotionDays))
	return &order, nil
}

// ExpireStale marks pending orders older than maxAge as expired. Run from
// the scheduler.
func (s *Service) ExpireStale(ctx context.Context, maxAge time.Duration) error {
	cutoff := s.clock().Add(-maxAge)
	res := s.db.WithContext(ctx).Model(&domain.PaymentOrder{}).
		Where("status = ? AND created_at < ?", domain.PaymentPending, cutoff).
		Updates(map[string]interface{}{
			"status":     domain.PaymentExpired,
			"updated_at": s.clock(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		zap.L().Info("expired stale payment orders", zap.Int64("count", res.RowsAffected))
	}
	return nil
}
