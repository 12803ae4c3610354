package app

import (
	"errors"
	"time"

	"github.com/fadakar85/bazaar/internal/domain"
	"github.com/fadakar85/bazaar/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "bazaar"

	hashedPassword := common.Sha256HashWithSalt(defaultPassword, common.GetSecretSalt())

	var operator domain.SysOpr
	err := a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.SysOpr{
			ID:        common.UUIDint64(),
			Realname:  "administrator",
			Mobile:    "0000",
			Email:     "N/A",
			Username:  superUsername,
			Password:  hashedPassword,
			Level:     "super",
			Status:    common.ENABLED,
			Remark:    "super",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}
}

type configSchema struct {
	Category    string
	Name        string
	Default     string
	Description string
}

var configSchemas = []configSchema{
	{"promotion", "DefaultDays", "30", "Boost window in days for the standard owner promote flow"},
	{"promotion", "PaidDays", "7", "Boost window in days granted per confirmed payment"},
	{"promotion", "ManualDays", "3", "Boost window in days for the admin manual grant"},
	{"payment", "OrderTTLMinutes", "60", "Minutes before a pending payment order expires"},
	{"system", "OprLogRetentionDays", "365", "Days to keep admin audit log rows"},
}

func (a *Application) checkSettings() {
	for sortid, schema := range configSchemas {
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", schema.Category, schema.Name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     common.UUIDint64(),
				Sort:   sortid,
				Type:   schema.Category,
				Name:   schema.Name,
				Value:  schema.Default,
				Remark: schema.Description,
			})
			zap.L().Info("initialized config",
				zap.String("category", schema.Category),
				zap.String("name", schema.Name),
				zap.String("default", schema.Default))
		}
	}
}

var defaultCategories = []domain.Category{
	{Name: "الکترونیک", Slug: "electronics", Sort: 1},
	{Name: "خانه و آشپزخانه", Slug: "home-kitchen", Sort: 2},
	{Name: "پوشاک", Slug: "clothing", Sort: 3},
	{Name: "ورزشی", Slug: "sports", Sort: 4},
	{Name: "کتاب و لوازم تحریر", Slug: "books-stationery", Sort: 5},
	{Name: "سایر", Slug: "other", Sort: 99},
}

// checkCategories seeds the reference categories. Categories are not
// created through the normal marketplace flow.
func (a *Application) checkCategories() {
	for _, c := range defaultCategories {
		var count int64
		a.gormDB.Model(&domain.Category{}).Where("slug = ?", c.Slug).Count(&count)
		if count > 0 {
			continue
		}
		cat := c
		cat.ID = common.UUIDint64()
		cat.CreatedAt = time.Now()
		cat.UpdatedAt = time.Now()
		if err := a.gormDB.Create(&cat).Error; err != nil {
			zap.L().Error("failed to seed category", zap.String("slug", c.Slug), zap.Error(err))
		}
	}
}
