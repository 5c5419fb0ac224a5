package checkoutControllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rahul-cmtai/nexa-bknd/models"
	"github.com/rahul-cmtai/nexa-bknd/services/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// -------- Test Fixtures --------

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Product{},
		&models.Category{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Coupon{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string) (models.User, models.Address) {
	t.Helper()
	user := models.User{
		ID:       id,
		Email:    id + "@example.com",
		Name:     "Test Buyer",
		Provider: "google",
		Role:     "user",
		Cart:     models.Cart{UserID: id},
	}
	require.NoError(t, db.Create(&user).Error)

	address := models.Address{
		UserID:     id,
		FullName:   "Test Buyer",
		Phone:      "9999999999",
		Street:     "42 MG Road",
		City:       "Bengaluru",
		State:      "KA",
		PostalCode: "560001",
		Country:    "IN",
	}
	require.NoError(t, db.Create(&address).Error)
	return user, address
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) models.Product {
	t.Helper()
	product := models.Product{Name: name, Price: price, Stock: stock}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func addToCart(t *testing.T, db *gorm.DB, user models.User, product models.Product, quantity int) {
	t.Helper()
	require.NoError(t, db.Create(&models.CartItem{
		CartID:    user.Cart.CartID,
		ProductID: product.ID,
		Quantity:  quantity,
	}).Error)
}

// newCheckoutRouter wires the checkout handlers behind a stub auth layer that
// injects the given user id, the way the JWT middleware does in production.
func newCheckoutRouter(db *gorm.DB, pay *payment.Client, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	r.POST("/checkout/cod", PlaceCODOrderHandler(db, nil))
	if pay != nil {
		r.POST("/checkout/gateway-order", CreateGatewayOrderHandler(db, pay))
		r.POST("/checkout/gateway-confirm", ConfirmGatewayPaymentHandler(db, pay, nil))
	}
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeOrder(t *testing.T, w *httptest.ResponseRecorder) models.Order {
	t.Helper()
	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Order
}

func productStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var product models.Product
	require.NoError(t, db.Unscoped().First(&product, "id = ?", id).Error)
	return product.Stock
}

func cartItemCount(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var cart models.Cart
	require.NoError(t, db.First(&cart, "user_id = ?", userID).Error)
	var n int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", cart.CartID).Count(&n).Error)
	return n
}

func orderCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Order{}).Count(&n).Error)
	return n
}

// -------- COD Checkout --------

func TestCODCheckoutChargesFlatShipping(t *testing.T) {
	db := openTestDB(t)
	user, address := seedUser(t, db, "buyer-1")
	product := seedProduct(t, db, "Mug", 500, 10)
	addToCart(t, db, user, product, 3)

	r := newCheckoutRouter(db, nil, user.ID)
	w := postJSON(t, r, "/checkout/cod", CODOrderRequest{AddressID: address.ID})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decodeOrder(t, w)

	assert.InDelta(t, 1500, order.ItemsPrice, 1e-9)
	assert.InDelta(t, 99, order.ShippingPrice, 1e-9)
	assert.InDelta(t, 1599, order.TotalPrice, 1e-9)
	assert.Equal(t, models.PaymentMethodCOD, order.PaymentMethod)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	assert.NotEmpty(t, order.OrderRef)
	assert.Equal(t, "Bengaluru", order.ShippingAddress.City)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "Mug", order.Items[0].Name)
	assert.InDelta(t, 500, order.Items[0].Price, 1e-9)

	assert.Equal(t, 7, productStock(t, db, product.ID))
	assert.EqualValues(t, 0, cartItemCount(t, db, user.ID))
}

func TestCODCheckoutCouponAndFreeShipping(t *testing.T) {
	db := openTestDB(t)
	user, address := seedUser(t, db, "buyer-2")
	product := seedProduct(t, db, "Jacket", 1250, 5)
	addToCart(t, db, user, product, 2)
	require.NoError(t, db.Create(&models.Coupon{
		Code:               "SAVE10",
		DiscountPercentage: 10,
		Status:             models.CouponStatusActive,
	}).Error)

	r := newCheckoutRouter(db, nil, user.ID)
	w := postJSON(t, r, "/checkout/cod", CODOrderRequest{AddressID: address.ID, CouponCode: "SAVE10"})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decodeOrder(t, w)

	assert.InDelta(t, 2500, order.ItemsPrice, 1e-9)
	assert.InDelta(t, 0, order.ShippingPrice, 1e-9)
	assert.InDelta(t, 250, order.DiscountAmount, 1e-9)
	assert.InDelta(t, 2250, order.TotalPrice, 1e-9)
	require.NotNil(t, order.CouponCode)
	assert.Equal(t, "SAVE10", *order.CouponCode)
}

func TestCODCheckoutCouponCaseInsensitive(t *testing.T) {
	db := openTestDB(t)
	user, address := seedUser(t, db, "buyer-3")
	product := seedProduct(t, db, "Cap", 300, 5)
	addToCart(t, db, user, product, 1)
	require.NoError(t, db.Create(&models.Coupon{
		Code:               "SAVE10",
		DiscountPercentage: 10,
		Status:             models.CouponStatusActive,
	}).Error)

	r := newCheckoutRouter(db, nil, user.ID)
	w := postJSON(t, r, "/checkout/cod", CODOrderRequest{AddressID: address.ID, CouponCode: "save10"})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decodeOrder(t, w)
	assert.InDelta(t, 30, order.DiscountAmount, 1e-9)
	require.NotNil(t, order.CouponCode)
	assert.Equal(t, "SAVE10", *order.CouponCode)
}

func TestCODCheckoutEmptyCart(t *testing.T) {
	db := openTestDB(t)
	user, address := seedUser(t, db, "buyer-4")

	r := newCheckoutRouter(db, nil, user.ID)
	w := postJSON(t, r, "/checkout/cod", CODOrderRequest{AddressID: address.ID})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cart is empty")
}

func TestCODCheckoutUnknownAddress(t *testing.T) {
	db := openTestDB(t)
	user, _ := seedUser(t, db, "buyer-5")
	product := seedProduct(t, db, "Mug", 500, 10)
	addToCart(t, db, user, product, 1)

	r := newCheckoutRouter(db, nil, user.ID)
	w := postJSON(t, r, "/checkout/cod", CODOrderRequest{AddressID: 9999})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 10, productStock(t, db, product.ID))
	assert.EqualValues(t, 1, cartItemCount(t, db, user.ID))
}

func TestCODCheckoutInsufficientStockRollsBack(t *testing.T) {
	db := openTestDB(t)
	user, address := seedUser(t, db, "buyer-6")
	product := seedProduct(t, db, "Lamp", 700, 2)
	addToCart(t, db, user, product, 5)

	r := newCheckoutRouter(db, nil, user.ID)
	w := postJSON(t, r, "/checkout/cod", CODOrderRequest{AddressID: address.ID})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Lamp")

	// Nothing moved.
	assert.Equal(t, 2, productStock(t, db, product.ID))
	assert.EqualValues(t, 1, cartItemCount(t, db, user.ID))
	assert.EqualValues(t, 0, orderCount(t, db))
}

func TestCODCheckoutInvalidCouponRollsBack(t *testing.T) {
	db := openTestDB(t)
	user, address := seedUser(t, db, "buyer-7")
	product := seedProduct(t, db, "Desk", 1800, 4)
	addToCart(t, db, user, product, 1)
	require.NoError(t, db.Create(&models.Coupon{
		Code:               "EXPIRED20",
		DiscountPercentage: 20,
		Status:             models.CouponStatusInactive,
	}).Error)

	r := newCheckoutRouter(db, nil, user.ID)
	w := postJSON(t, r, "/checkout/cod", CODOrderRequest{AddressID: address.ID, CouponCode: "EXPIRED20"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "coupon")

	assert.Equal(t, 4, productStock(t, db, product.ID))
	assert.EqualValues(t, 1, cartItemCount(t, db, user.ID))
	assert.EqualValues(t, 0, orderCount(t, db))
}

func TestCODCheckoutDeletedProductAborts(t *testing.T) {
	db := openTestDB(t)
	user, address := seedUser(t, db, "buyer-8")
	product := seedProduct(t, db, "Ghost", 900, 3)
	addToCart(t, db, user, product, 1)
	require.NoError(t, db.Delete(&product).Error) // soft delete

	r := newCheckoutRouter(db, nil, user.ID)
	w := postJSON(t, r, "/checkout/cod", CODOrderRequest{AddressID: address.ID})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no longer available")
	assert.EqualValues(t, 0, orderCount(t, db))
}

func TestLastUnitGoesToOneBuyerOnly(t *testing.T) {
	db := openTestDB(t)
	product := seedProduct(t, db, "Limited", 1000, 1)

	first, firstAddr := seedUser(t, db, "fast-buyer")
	second, secondAddr := seedUser(t, db, "slow-buyer")
	addToCart(t, db, first, product, 1)
	addToCart(t, db, second, product, 1)

	w1 := postJSON(t, newCheckoutRouter(db, nil, first.ID), "/checkout/cod", CODOrderRequest{AddressID: firstAddr.ID})
	require.Equal(t, http.StatusCreated, w1.Code, w1.Body.String())

	w2 := postJSON(t, newCheckoutRouter(db, nil, second.ID), "/checkout/cod", CODOrderRequest{AddressID: secondAddr.ID})
	assert.Equal(t, http.StatusBadRequest, w2.Code)

	assert.Equal(t, 0, productStock(t, db, product.ID))
	assert.EqualValues(t, 1, orderCount(t, db))
	// Loser keeps their cart so they can adjust it.
	assert.EqualValues(t, 1, cartItemCount(t, db, second.ID))
}

// -------- Gateway Checkout --------

func signPayment(secret, providerOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(providerOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestGatewayOrderReconcilesAmount(t *testing.T) {
	db := openTestDB(t)
	user, address := seedUser(t, db, "buyer-9")
	product := seedProduct(t, db, "Chair", 500, 10)
	addToCart(t, db, user, product, 3) // 1500 + 99 shipping

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"order_test123","amount":159900,"currency":"INR","status":"created"}`)
	}))
	defer provider.Close()

	pay := payment.New("rzp_test_key", "secret", provider.URL)
	r := newCheckoutRouter(db, pay, user.ID)

	w := postJSON(t, r, "/checkout/gateway-order", GatewayOrderRequest{AddressID: address.ID, Amount: 1599})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		OrderID string `json:"order_id"`
		Amount  int64  `json:"amount"`
		Key     string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "order_test123", resp.OrderID)
	assert.EqualValues(t, 159900, resp.Amount)
	assert.Equal(t, "rzp_test_key", resp.Key)

	// Registering a provider order must not touch local state.
	assert.Equal(t, 10, productStock(t, db, product.ID))
	assert.EqualValues(t, 0, orderCount(t, db))
}

func TestGatewayOrderRejectsPriceMismatch(t *testing.T) {
	db := openTestDB(t)
	user, address := seedUser(t, db, "buyer-10")
	product := seedProduct(t, db, "Chair", 500, 10)
	addToCart(t, db, user, product, 3)

	pay := payment.New("rzp_test_key", "secret", "http://127.0.0.1:0")
	r := newCheckoutRouter(db, pay, user.ID)

	// Client claims a total beyond the tolerance window.
	w := postJSON(t, r, "/checkout/gateway-order", GatewayOrderRequest{AddressID: address.ID, Amount: 100})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "price mismatch")
}

func TestGatewayConfirmRejectsTamperedSignature(t *testing.T) {
	db := openTestDB(t)
	user, address := seedUser(t, db, "buyer-11")
	product := seedProduct(t, db, "Watch", 3000, 2)
	addToCart(t, db, user, product, 1)

	pay := payment.New("rzp_test_key", "secret", "")
	r := newCheckoutRouter(db, pay, user.ID)

	w := postJSON(t, r, "/checkout/gateway-confirm", GatewayConfirmRequest{
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: "deadbeef",
		AddressID:         address.ID,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "signature")

	// A forged callback must leave everything untouched.
	assert.Equal(t, 2, productStock(t, db, product.ID))
	assert.EqualValues(t, 1, cartItemCount(t, db, user.ID))
	assert.EqualValues(t, 0, orderCount(t, db))
}

func TestGatewayConfirmPlacesOrder(t *testing.T) {
	db := openTestDB(t)
	user, address := seedUser(t, db, "buyer-12")
	product := seedProduct(t, db, "Watch", 3000, 2)
	addToCart(t, db, user, product, 1)

	pay := payment.New("rzp_test_key", "secret", "")
	r := newCheckoutRouter(db, pay, user.ID)

	w := postJSON(t, r, "/checkout/gateway-confirm", GatewayConfirmRequest{
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: signPayment("secret", "order_abc", "pay_abc"),
		AddressID:         address.ID,
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decodeOrder(t, w)

	assert.Equal(t, models.PaymentMethodRazorpay, order.PaymentMethod)
	assert.Equal(t, "pay_abc", order.PaymentID)
	assert.Equal(t, "order_abc", order.ProviderOrderID)
	assert.InDelta(t, 3000, order.TotalPrice, 1e-9) // free shipping above threshold

	assert.Equal(t, 1, productStock(t, db, product.ID))
	assert.EqualValues(t, 0, cartItemCount(t, db, user.ID))
}
