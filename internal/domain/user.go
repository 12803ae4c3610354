package domain

import "time"

// User is a marketplace account. Password holds a bcrypt hash and is
// never serialized.
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id,string" form:"id"`
	Username  string    `gorm:"uniqueIndex;size:64" json:"username" form:"username"`
	Email     string    `gorm:"uniqueIndex;size:120" json:"email" form:"email"`
	Password  string    `gorm:"size:256" json:"-" form:"-"`
	Status    string    `gorm:"size:16" json:"status" form:"status"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (User) TableName() string {
	return "bzr_user"
}
