package models

import "time"

type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "active"
	CouponStatusInactive CouponStatus = "inactive"
)

// Coupon codes are stored uppercase; lookups are case-insensitive.
type Coupon struct {
	ID                 uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Code               string       `gorm:"uniqueIndex;not null" json:"code"`
	DiscountPercentage float64      `gorm:"not null" json:"discount_percentage"` // 0-100
	Status             CouponStatus `gorm:"type:VARCHAR(20);default:'active'" json:"status"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}
