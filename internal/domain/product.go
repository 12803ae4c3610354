package domain

import "time"

// Product is a marketplace listing. UserId is the owner and is immutable
// after creation. PromotedUntil drives the boost window: the listing is
// promoted while PromotedUntil is set and in the future. The flag is always
// derived from the timestamp at read time, never stored.
type Product struct {
	ID            int64      `gorm:"primaryKey" json:"id,string" form:"id"`
	Name          string     `gorm:"index;size:100" json:"name" form:"name"`
	Description   string     `gorm:"type:text" json:"description" form:"description"`
	Price         float64    `json:"price" form:"price"`
	CategoryId    *int64     `gorm:"index" json:"category_id,string,omitempty" form:"category_id"`
	ImagePath     string     `gorm:"size:255" json:"image_path" form:"image_path"`
	UserId        int64      `gorm:"index" json:"user_id,string" form:"user_id"`
	PromotedUntil *time.Time `gorm:"index" json:"promoted_until,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "bzr_product"
}
