package listing

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
	// ErrNotFound signals a missing product.
	ErrNotFound = errors.New("product not found")
	// ErrNotOwner signals an authorization failure: the caller does not
	// own the product it tries to mutate.
	ErrNotOwner = errors.New("caller is not the product owner")
	// ErrInvalidInput signals a missing name or a negative price.
	ErrInvalidInput = errors.New("missing or invalid product field")
)

// Clock supplies the current time. Browsing and promotion take one reading
// per operation so every row sees the same snapshot.
type Clock func() time.Time

// Publisher is the event sink the service notifies about promotions.
type Publisher interface {
	Publish(topic string, args ...interface{})
}

// Service implements the listing ranking and promotion operations.
type Service struct {
	repo  ProductRepository
	clock Clock
	bus   Publisher
}

func NewService(repo ProductRepository, clock Clock, bus Publisher) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{repo: repo, clock: clock, bus: bus}
}

// Browse returns the ordered, annotated listing for a search/filter request.
func (s *Service) Browse(ctx context.Context, q Query) ([]RankedProduct, error) {
	now := s.clock()
	rows, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return Rank(rows, now), nil
}

// Promote opens (or resets) the product's boost window to now+duration.
// A repeated grant overwrites the window, it never stacks.
func (s *Service) Promote(ctx context.Context, productID, ownerID int64, duration time.Duration) (*domain.Product, error) {
	p, err := s.getOwned(ctx, productID, ownerID)
	if err != nil {
		return nil, err
	}

	until := s.clock().Add(duration)
	if err := s.repo.UpdatePromotion(ctx, p.ID, &until); err != nil {
		return nil, err
	}
	p.PromotedUntil = &until

	zap.L().Info("product promoted",
		zap.Int64("product_id", productID),
		zap.Int64("owner_id", ownerID),
		zap.Time("promoted_until", until))
	if s.bus != nil {
		s.bus.Publish(events.TopicProductPromoted, p.ID, until)
	}
	return p, nil
}

// RemovePromotion clears the boost window. Clearing an absent window is a
// no-op, not an error.
func (s *Service) RemovePromotion(ctx context.Context, productID, ownerID int64) (*domain.Product, error) {
	p, err := s.getOwned(ctx, productID, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePromotion(ctx, p.ID, nil); err != nil {
		return nil, err
	}
	p.PromotedUntil = nil
	zap.L().Info("promotion removed",
		zap.Int64("product_id", productID),
		zap.Int64("owner_id", ownerID))
	return p, nil
}

// GrantPaidPromotion opens the boost window after a verified payment. The
// payer is not required to be the owner; callers must only reach this
// through a verified payment order.
func (s *Service) GrantPaidPromotion(ctx context.Context, productID int64, duration time.Duration) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	until := s.clock().Add(duration)
	if err := s.repo.UpdatePromotion(ctx, p.ID, &until); err != nil {
		return nil, err
	}
	p.PromotedUntil = &until

	zap.L().Info("paid promotion granted",
		zap.Int64("product_id", productID),
		zap.Time("promoted_until", until))
	if s.bus != nil {
		s.bus.Publish(events.TopicProductPromoted, p.ID, until)
	}
	return p, nil
}

func (s *Service) getOwned(ctx context.Context, productID, ownerID int64) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	if p.UserId != ownerID {
		return nil, ErrNotOwner
	}
	return p, nil
}

// Own returns the caller's own listings, newest first.
func (s *Service) Own(ctx context.Context, ownerID int64) ([]domain.Product, error) {
	return s.repo.FindByOwner(ctx, ownerID)
}

// Get retrieves a single product.
func (s *Service) Get(ctx context.Context, productID int64) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

// Create inserts a new listing owned by ownerID. The caller has already
// stored the image; ImagePath comes in on the product.
func (s *Service) Create(ctx context.Context, p *domain.Product, ownerID int64) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || p.Price < 0 {
		return ErrInvalidInput
	}
	p.ID = common.UUIDint64()
	p.UserId = ownerID
	p.PromotedUntil = nil
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	zap.L().Info("product created",
		zap.Int64("product_id", p.ID),
		zap.Int64("owner_id", ownerID))
	if s.bus != nil {
		s.bus.Publish(events.TopicProductCreated, p.ID, ownerID)
	}
	return nil
}

// Update applies field changes to an owned listing. Ownership and the
// promotion window are never touched here.
func (s *Service) Update(ctx context.Context, productID, ownerID int64, apply func(*domain.Product)) (*domain.Product, error) {
	p, err := s.getOwned(ctx, productID, ownerID)
	if err != nil {
		return nil, err
	}
	apply(p)
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || p.Price < 0 {
		return nil, ErrInvalidInput
	}
	p.UserId = ownerID
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes an owned listing and returns the deleted row so callers
// can clean up side resources like the stored image.
func (s *Service) Delete(ctx context.Context, productID, ownerID int64) (*domain.Product, error) {
	p, err := s.getOwned(ctx, productID, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return nil, err
	}
	zap.L().Info("product deleted",
		zap.Int64("product_id", productID),
		zap.Int64("owner_id", ownerID))
	return p, nil
}
