package checkoutControllers

import (
	"testing"

	"github.com/rahul-cmtai/nexa-bknd/models"
	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name     string
		items    float64
		discount float64
		want     orderTotals
	}{
		{
			name:  "below threshold pays flat shipping",
			items: 1500,
			want:  orderTotals{ItemsPrice: 1500, ShippingPrice: 99, TotalPrice: 1599},
		},
		{
			name:  "above threshold ships free",
			items: 2500,
			want:  orderTotals{ItemsPrice: 2500, ShippingPrice: 0, TotalPrice: 2500},
		},
		{
			name:  "exactly at threshold still pays shipping",
			items: 2000,
			want:  orderTotals{ItemsPrice: 2000, ShippingPrice: 99, TotalPrice: 2099},
		},
		{
			name:     "discount applies after shipping decision",
			items:    2500,
			discount: 250,
			want:     orderTotals{ItemsPrice: 2500, ShippingPrice: 0, DiscountAmount: 250, TotalPrice: 2250},
		},
		{
			name:     "discounted subtotal below threshold keeps free shipping",
			items:    2100,
			discount: 500,
			want:     orderTotals{ItemsPrice: 2100, ShippingPrice: 0, DiscountAmount: 500, TotalPrice: 1600},
		},
		{
			name:  "zero subtotal",
			items: 0,
			want:  orderTotals{ItemsPrice: 0, ShippingPrice: 99, TotalPrice: 99},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeTotals(tt.items, tt.discount)
			assert.Equal(t, tt.want, got)

			// Stored fields must always reconcile.
			assert.InDelta(t, got.TotalPrice, got.ItemsPrice+got.ShippingPrice-got.DiscountAmount, 1e-9)
		})
	}
}

func TestFindAddress(t *testing.T) {
	addresses := []models.Address{
		{ID: 1, City: "Mumbai"},
		{ID: 2, City: "Delhi"},
	}

	got := findAddress(addresses, 2)
	assert.NotNil(t, got)
	assert.Equal(t, "Delhi", got.City)

	assert.Nil(t, findAddress(addresses, 99))
	assert.Nil(t, findAddress(nil, 1))
}

func TestBuildOrderItemsSnapshotsCatalog(t *testing.T) {
	lines := []checkoutLine{
		{Product: models.Product{ID: 7, Name: "Mug", Image: "mug.png", Price: 249.5}, Quantity: 2},
		{Product: models.Product{ID: 9, Name: "Tee", Price: 799}, Quantity: 1},
	}

	items := buildOrderItems(lines)
	assert.Len(t, items, 2)
	assert.Equal(t, uint(7), items[0].ProductID)
	assert.Equal(t, "Mug", items[0].Name)
	assert.Equal(t, 249.5, items[0].Price)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "Tee", items[1].Name)
}

func TestNewOrderRefUnique(t *testing.T) {
	a, b := newOrderRef(), newOrderRef()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
