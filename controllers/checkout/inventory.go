package checkoutControllers

import (
	"errors"

	"github.com/rahul-cmtai/nexa-bknd/models"
	"gorm.io/gorm"
)

// checkoutLine pairs a cart quantity with the catalog row resolved at
// checkout time. Price and name come from here, never from the cart.
type checkoutLine struct {
	Product  models.Product
	Quantity int
}

// loadCartLines resolves every cart line against the catalog inside the
// transaction. A line whose product has been deleted aborts the checkout
// rather than being skipped, and an early stock check gives the caller a
// readable error before any write happens.
func loadCartLines(tx *gorm.DB, items []models.CartItem) ([]checkoutLine, float64, error) {
	lines := make([]checkoutLine, 0, len(items))
	var subtotal float64

	for _, item := range items {
		var product models.Product
		if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, ErrProductUnavailable
			}
			return nil, 0, err
		}

		if product.Stock < item.Quantity {
			return nil, 0, &InsufficientStockError{ProductName: product.Name, Available: product.Stock}
		}

		subtotal += product.Price * float64(item.Quantity)
		lines = append(lines, checkoutLine{Product: product, Quantity: item.Quantity})
	}

	return lines, subtotal, nil
}

// reserveStock decrements stock with the guard re-checked at write time:
//
//	UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?
//
// Zero rows affected means another checkout won the race (or the product
// vanished), so the whole transaction aborts. The earlier read in
// loadCartLines is advisory only; this write is the authority.
func reserveStock(tx *gorm.DB, productID uint, quantity int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductUnavailable
			}
			return err
		}
		return &InsufficientStockError{ProductName: product.Name, Available: product.Stock}
	}

	return nil
}

// RestoreStock is the unconditional counterpart used by cancellation.
// Unscoped so stock on a since-deleted product is still put back.
func RestoreStock(tx *gorm.DB, productID uint, quantity int) error {
	return tx.Unscoped().Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity)).Error
}
