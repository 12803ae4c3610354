package listing

import (
	"context"
	"time"

	"github.com/fadakar85/bazaar/internal/domain"
	"gorm.io/gorm"
)

// Query holds the browse filters. Both are optional and compose with AND.
type Query struct {
	Search     string
	CategoryId *int64
}

// ProductRepository handles product persistence for the listing engine.
type ProductRepository interface {
	// Find returns all products matching the query, newest first. Ranking
	// is not the repository's job, see Rank.
	Find(ctx context.Context, q Query) ([]domain.Product, error)

	// FindByOwner returns a user's own products, newest first.
	FindByOwner(ctx context.Context, ownerID int64) ([]domain.Product, error)

	// GetByID retrieves one product
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// Create inserts a new product
	Create(ctx context.Context, p *domain.Product) error

	// Update persists field changes on an existing product
	Update(ctx context.Context, p *domain.Product) error

	// UpdatePromotion sets or clears promoted_until on a single row
	UpdatePromotion(ctx context.Context, id int64, until *time.Time) error

	// Delete removes a product row
	Delete(ctx context.Context, id int64) error
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Find(ctx context.Context, q Query) ([]domain.Product, error) {
	db := r.db.WithContext(ctx).Model(&domain.Product{})
	if term := NormalizeTerm(q.Search); term != "" {
		pattern := "%" + term + "%"
		if r.db.Name() == "postgres" {
			db = db.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
		} else {
			db = db.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
		}
	}
	if q.CategoryId != nil {
		db = db.Where("category_id = ?", *q.CategoryId)
	}
	var rows []domain.Product
	err := db.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *GormProductRepository) FindByOwner(ctx context.Context, ownerID int64) ([]domain.Product, error) {
	var rows []domain.Product
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *GormProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *GormProductRepository) Update(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *GormProductRepository) UpdatePromotion(ctx context.Context, id int64, until *time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"promoted_until": until,
			"updated_at":     time.Now(),
		}).Error
}

func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{}).Error
}
