package models

import (
	"time"

	"gorm.io/datatypes"
)

// Plan is one purchasable subscription tier shown on the pricing page.
type Plan struct {
	ID         uint                        `json:"id" gorm:"primaryKey"`
	Name       string                      `json:"name" gorm:"not null;size:100" validate:"required,max=100"`
	PriceCents int                         `json:"price_cents" gorm:"not null" validate:"min=0"`
	Currency   string                      `json:"currency" gorm:"size:3;default:USD" validate:"omitempty,len=3"`
	Interval   string                      `json:"interval" gorm:"size:16;default:month" validate:"omitempty,oneof=month year"`
	Features   datatypes.JSONSlice[string] `json:"features" gorm:"type:jsonb"`
	Active     bool                        `json:"active" gorm:"default:true;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Plan) TableName() string {
	return "plans"
}

// CheckoutSession is the reference returned by the external payment gateway.
// Payment processing itself is out of scope; the service only hands the user
// off to the gateway's hosted page.
type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}
