package checkoutControllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/rahul-cmtai/nexa-bknd/models"
)

const (
	// FreeShippingThreshold: orders strictly above this subtotal ship free.
	FreeShippingThreshold = 2000.0
	// FlatShippingFee applies below the threshold.
	FlatShippingFee = 99.0
	// PriceTolerance absorbs client-side float rounding when reconciling the
	// declared total. Anything beyond it is a real disagreement.
	PriceTolerance = 1.0
)

type orderTotals struct {
	ItemsPrice     float64
	ShippingPrice  float64
	DiscountAmount float64
	TotalPrice     float64
}

// computeTotals derives shipping and the final amount. The discount is kept
// as the exact float used during computation so the stored fields always
// satisfy total == items + shipping - discount.
func computeTotals(itemsPrice, discountAmount float64) orderTotals {
	shipping := FlatShippingFee
	if itemsPrice > FreeShippingThreshold {
		shipping = 0
	}
	return orderTotals{
		ItemsPrice:     itemsPrice,
		ShippingPrice:  shipping,
		DiscountAmount: discountAmount,
		TotalPrice:     itemsPrice + shipping - discountAmount,
	}
}

// buildOrderItems freezes name and price at this instant.
func buildOrderItems(lines []checkoutLine) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Image:     line.Product.Image,
			Price:     line.Product.Price,
			Quantity:  line.Quantity,
		})
	}
	return items
}

func snapshotAddress(a models.Address) models.ShippingAddress {
	return models.ShippingAddress{
		FullName:   a.FullName,
		Phone:      a.Phone,
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func findAddress(addresses []models.Address, addressID uint) *models.Address {
	for i := range addresses {
		if addresses[i].ID == addressID {
			return &addresses[i]
		}
	}
	return nil
}

// newOrderRef generates a unique order reference.
func newOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}
