package checkoutControllers

import (
	"errors"
	"strings"

	"github.com/rahul-cmtai/nexa-bknd/models"
	"gorm.io/gorm"
)

// applyCoupon validates the code and returns the discount for the given
// subtotal plus the canonical (stored) code. Lookup is case-insensitive and
// only active coupons apply. A code the user supplied that turns out unknown
// or inactive fails the checkout outright; silently dropping a discount the
// user expected would be worse than aborting.
func applyCoupon(tx *gorm.DB, code string, subtotal float64) (float64, *string, error) {
	if code == "" {
		return 0, nil, nil
	}

	var coupon models.Coupon
	err := tx.Where("UPPER(code) = ? AND status = ?", strings.ToUpper(code), models.CouponStatusActive).
		First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, ErrInvalidCoupon
		}
		return 0, nil, err
	}

	discount := subtotal * coupon.DiscountPercentage / 100
	return discount, &coupon.Code, nil
}
