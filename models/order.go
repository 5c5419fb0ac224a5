package models

import "time"

type OrderStatus string
type PaymentMethod string

const (
	OrderStatusProcessing OrderStatus = "Processing" // Order placed, being prepared
	OrderStatusShipped    OrderStatus = "Shipped"    // Out for delivery
	OrderStatusDelivered  OrderStatus = "Delivered"  // Customer received the item
	OrderStatusCancelled  OrderStatus = "Cancelled"  // Terminal, set only by the cancel flow

	PaymentMethodCOD      PaymentMethod = "COD"
	PaymentMethodRazorpay PaymentMethod = "Razorpay"
)

// IsTerminal reports whether an order can no longer be cancelled.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusShipped || s == OrderStatusDelivered || s == OrderStatusCancelled
}

// OrderItem is a point-in-time snapshot. Name and price are frozen at
// checkout; later catalog edits never change historical orders.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"index" json:"order_id"`
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// ShippingAddress is embedded into Order as a snapshot of the chosen address.
type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type CancellationDetails struct {
	CancelledBy string     `json:"cancelled_by,omitempty"` // "User" or "Admin"
	Reason      string     `json:"reason,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

type RefundDetails struct {
	RefundID   string     `json:"refund_id,omitempty"`
	Amount     float64    `json:"amount,omitempty"`
	Status     string     `json:"status,omitempty"`
	RefundedAt *time.Time `json:"refunded_at,omitempty"`
}

type Order struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	OrderRef        string              `gorm:"uniqueIndex" json:"order_ref"`
	UserID          string              `gorm:"not null;index" json:"user_id"`
	User            User                `gorm:"foreignKey:UserID" json:"-"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	ShippingAddress ShippingAddress     `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`
	ItemsPrice      float64             `json:"items_price"`
	ShippingPrice   float64             `json:"shipping_price"`
	DiscountAmount  float64             `json:"discount_amount"`
	CouponCode      *string             `json:"coupon_code"`
	TotalPrice      float64             `json:"total_price"`
	PaymentMethod   PaymentMethod       `gorm:"type:VARCHAR(20)" json:"payment_method"`
	PaymentID       string              `json:"payment_id,omitempty"`
	ProviderOrderID string              `json:"provider_order_id,omitempty"`
	Status          OrderStatus         `gorm:"type:VARCHAR(20);default:'Processing'" json:"status"`
	Cancellation    CancellationDetails `gorm:"embedded;embeddedPrefix:cancel_" json:"cancellation,omitempty"`
	Refund          RefundDetails       `gorm:"embedded;embeddedPrefix:refund_" json:"refund,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}
