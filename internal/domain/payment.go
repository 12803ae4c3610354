package domain

import "time"

// PaymentOrder statuses.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
	PaymentExpired = "expired"
)

// PaymentOrder tracks one gateway round-trip for a paid promotion. The
// order binds the product and the identity captured at initiation so the
// verify callback never trusts a caller-supplied product id.
type PaymentOrder struct {
	ID          int64      `gorm:"primaryKey" json:"id,string" form:"id"`
	ProductId   int64      `gorm:"index" json:"product_id,string" form:"product_id"`
	PayerId     int64      `gorm:"index" json:"payer_id,string" form:"payer_id"`
	OwnerId     int64      `gorm:"index" json:"owner_id,string" form:"owner_id"`
	Amount      int64      `json:"amount" form:"amount"`
	TrackId     string     `gorm:"uniqueIndex;size:64" json:"track_id" form:"track_id"`
	Status      string     `gorm:"index;size:16" json:"status" form:"status"`
	Description string     `gorm:"size:255" json:"description" form:"description"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName Specify table name
func (PaymentOrder) TableName() string {
	return "bzr_payment_order"
}
