package checkoutControllers

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rahul-cmtai/nexa-bknd/models"
	"github.com/rahul-cmtai/nexa-bknd/services/payment"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Mailer sends the post-commit confirmation. Failures are logged only.
type Mailer interface {
	SendOrderConfirmation(to string, order models.Order) error
}

// OrderPublisher pushes committed orders to live subscribers (websocket feed).
type OrderPublisher func(event string, order models.Order)

var publishOrder OrderPublisher

// SetOrderPublisher wires the live order feed. Optional; nil means no-op.
func SetOrderPublisher(p OrderPublisher) { publishOrder = p }

// -------- Request Structs --------

type GatewayOrderRequest struct {
	AddressID  uint    `json:"address_id" binding:"required"`
	Amount     float64 `json:"amount" binding:"required"`
	CouponCode string  `json:"coupon_code"`
}

type GatewayConfirmRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
	AddressID         uint   `json:"address_id" binding:"required"`
	CouponCode        string `json:"coupon_code"`
}

type CODOrderRequest struct {
	AddressID  uint   `json:"address_id" binding:"required"`
	CouponCode string `json:"coupon_code"`
}

// paymentInfo is what the coordinator records about how the order was paid.
type paymentInfo struct {
	Method          models.PaymentMethod
	PaymentID       string
	ProviderOrderID string
}

// -------- Core Logic --------

// placeOrder runs the whole checkout as one transaction: load cart, resolve
// the address, snapshot and stock-check every line, validate the coupon,
// compute totals, write the order, decrement stock, clear the cart. Any
// error rolls all of it back; there is no state where stock moved but no
// order exists or vice versa.
func placeOrder(db *gorm.DB, userID string, addressID uint, couponCode string, pay paymentInfo) (models.Order, models.User, error) {
	var order models.Order
	var user models.User

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Addresses").Preload("Cart.Items").
			First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		if len(user.Cart.Items) == 0 {
			return ErrEmptyCart
		}

		address := findAddress(user.Addresses, addressID)
		if address == nil {
			return ErrAddressNotFound
		}

		// Stock check first, then coupon. Both checkout variants follow the
		// same order so a failing coupon never hides a stock problem.
		lines, subtotal, err := loadCartLines(tx, user.Cart.Items)
		if err != nil {
			return err
		}

		discount, canonicalCode, err := applyCoupon(tx, couponCode, subtotal)
		if err != nil {
			return err
		}

		totals := computeTotals(subtotal, discount)

		order = models.Order{
			OrderRef:        newOrderRef(),
			UserID:          user.ID,
			Items:           buildOrderItems(lines),
			ShippingAddress: snapshotAddress(*address),
			ItemsPrice:      totals.ItemsPrice,
			ShippingPrice:   totals.ShippingPrice,
			DiscountAmount:  totals.DiscountAmount,
			CouponCode:      canonicalCode,
			TotalPrice:      totals.TotalPrice,
			PaymentMethod:   pay.Method,
			PaymentID:       pay.PaymentID,
			ProviderOrderID: pay.ProviderOrderID,
			Status:          models.OrderStatusProcessing,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, line := range lines {
			if err := reserveStock(tx, line.Product.ID, line.Quantity); err != nil {
				return err
			}
		}

		if err := tx.Where("cart_id = ?", user.Cart.CartID).
			Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"method":  pay.Method,
		}).WithError(err).Warn("checkout transaction rolled back")
		return models.Order{}, models.User{}, err
	}

	return order, user, nil
}

// quote recomputes the cart totals read-only, with the same stock and coupon
// checks as placeOrder but without touching anything. Used by the gateway
// order endpoint before money changes hands.
func quote(db *gorm.DB, userID string, addressID uint, couponCode string) (orderTotals, error) {
	var user models.User
	if err := db.Preload("Addresses").Preload("Cart.Items").
		First(&user, "id = ?", userID).Error; err != nil {
		return orderTotals{}, err
	}
	if len(user.Cart.Items) == 0 {
		return orderTotals{}, ErrEmptyCart
	}
	if findAddress(user.Addresses, addressID) == nil {
		return orderTotals{}, ErrAddressNotFound
	}

	_, subtotal, err := loadCartLines(db, user.Cart.Items)
	if err != nil {
		return orderTotals{}, err
	}
	discount, _, err := applyCoupon(db, couponCode, subtotal)
	if err != nil {
		return orderTotals{}, err
	}
	return computeTotals(subtotal, discount), nil
}

func sendConfirmation(mailer Mailer, user models.User, order models.Order) {
	if mailer == nil || user.Email == "" {
		return
	}
	go func() {
		if err := mailer.SendOrderConfirmation(user.Email, order); err != nil {
			logrus.WithFields(logrus.Fields{
				"order_ref": order.OrderRef,
				"user_id":   user.ID,
			}).WithError(err).Error("failed to send order confirmation email")
		}
	}()
}

func notifyOrderPlaced(order models.Order) {
	if publishOrder != nil {
		publishOrder("order.created", order)
	}
}

// -------- Handlers --------

// CreateGatewayOrderHandler reconciles the client-declared total against the
// server computation and registers a provider-side payment order. No local
// writes happen here.
func CreateGatewayOrderHandler(db *gorm.DB, pay *payment.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var req GatewayOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "address_id and amount are required"})
			return
		}

		totals, err := quote(db, userID.(string), req.AddressID, req.CouponCode)
		if err != nil {
			respondCheckoutError(c, err)
			return
		}

		if math.Abs(req.Amount-totals.TotalPrice) > PriceTolerance {
			respondCheckoutError(c, ErrPriceMismatch)
			return
		}

		providerOrder, err := pay.CreateOrder(toMinorUnits(totals.TotalPrice), "INR", payment.NewReceipt())
		if err != nil {
			logrus.WithError(err).Error("failed to create provider order")
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to create payment order"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"order_id":   providerOrder.ID,
			"amount":     providerOrder.Amount,
			"currency":   providerOrder.Currency,
			"key":        pay.KeyID(),
			"address_id": req.AddressID,
		})
	}
}

// ConfirmGatewayPaymentHandler verifies the provider signature and, only
// then, runs the checkout transaction. The signature gate sits before any
// database mutation; it is the sole proof the payment callback is genuine.
func ConfirmGatewayPaymentHandler(db *gorm.DB, pay *payment.Client, mailer Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var req GatewayConfirmRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required payment or address details"})
			return
		}

		if !pay.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
			respondCheckoutError(c, ErrInvalidSignature)
			return
		}

		order, user, err := placeOrder(db, userID.(string), req.AddressID, req.CouponCode, paymentInfo{
			Method:          models.PaymentMethodRazorpay,
			PaymentID:       req.RazorpayPaymentID,
			ProviderOrderID: req.RazorpayOrderID,
		})
		if err != nil {
			respondCheckoutError(c, err)
			return
		}

		sendConfirmation(mailer, user, order)
		notifyOrderPlaced(order)
		c.JSON(http.StatusCreated, gin.H{"order": order})
	}
}

// PlaceCODOrderHandler is the cash-on-delivery variant: no provider order,
// no signature, otherwise the identical transaction.
func PlaceCODOrderHandler(db *gorm.DB, mailer Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var req CODOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "address_id is required"})
			return
		}

		order, user, err := placeOrder(db, userID.(string), req.AddressID, req.CouponCode, paymentInfo{
			Method: models.PaymentMethodCOD,
		})
		if err != nil {
			respondCheckoutError(c, err)
			return
		}

		sendConfirmation(mailer, user, order)
		notifyOrderPlaced(order)
		c.JSON(http.StatusCreated, gin.H{"order": order})
	}
}

// toMinorUnits converts rupees to paise for the provider API.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// respondCheckoutError maps checkout failures onto HTTP statuses. Anything
// unrecognized is a server fault and gets a generic message.
func respondCheckoutError(c *gin.Context, err error) {
	var stockErr *InsufficientStockError

	switch {
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrPriceMismatch),
		errors.Is(err, ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": stockErr.Error()})
	case errors.Is(err, ErrAddressNotFound),
		errors.Is(err, ErrProductUnavailable),
		errors.Is(err, ErrInvalidCoupon):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		logrus.WithError(err).Error("checkout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to place order"})
	}
}
