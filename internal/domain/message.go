package domain

import "time"

// Message is an append-only note between two users about a listing.
type Message struct {
	ID         int64     `gorm:"primaryKey" json:"id,string" form:"id"`
	SenderId   int64     `gorm:"index" json:"sender_id,string" form:"sender_id"`
	ReceiverId int64     `gorm:"index" json:"receiver_id,string" form:"receiver_id"`
	ProductId  int64     `gorm:"index" json:"product_id,string" form:"product_id"`
	Content    string    `gorm:"type:text" json:"content" form:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName Specify table name
func (Message) TableName() string {
	return "bzr_message"
}
