package domain

import "time"

// Category is seed/reference data; products reference zero or one category.
type Category struct {
	ID        int64     `gorm:"primaryKey" json:"id,string" form:"id"`
	Name      string    `gorm:"index;size:50" json:"name" form:"name"`
	Slug      string    `gorm:"uniqueIndex;size:50" json:"slug" form:"slug"`
	Sort      int       `json:"sort" form:"sort"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "bzr_category"
}
