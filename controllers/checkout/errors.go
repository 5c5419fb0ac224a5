package checkoutControllers

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrAddressNotFound    = errors.New("shipping address not found")
	ErrProductUnavailable = errors.New("a product in your cart is no longer available")
	ErrInvalidCoupon      = errors.New("invalid or inactive coupon code")
	ErrPriceMismatch      = errors.New("price mismatch, please refresh and try again")
	ErrInvalidSignature   = errors.New("invalid payment signature")
)

// InsufficientStockError carries the product name so the client can tell the
// user which cart line to fix.
type InsufficientStockError struct {
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %q, only %d left", e.ProductName, e.Available)
}
