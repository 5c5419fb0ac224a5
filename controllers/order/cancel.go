package orderControllers

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	checkoutControllers "github.com/rahul-cmtai/nexa-bknd/controllers/checkout"
	"github.com/rahul-cmtai/nexa-bknd/models"
	"github.com/rahul-cmtai/nexa-bknd/services/payment"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Refunder is the slice of the payment client cancellation needs.
type Refunder interface {
	Refund(paymentID string, amountMinorUnits int64) (*payment.RefundResult, error)
}

var (
	errNotOwner       = errors.New("not authorized to cancel this order")
	errOrderFinalized = errors.New("order can no longer be cancelled")
)

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// claimCancellation flips the order to Cancelled only while it is still
// cancellable, re-checking the status at write time:
//
//	UPDATE orders SET status = 'Cancelled' WHERE id = ? AND status NOT IN (...)
//
// Zero rows affected means another cancel (or a shipment) won the race. The
// earlier IsTerminal read is advisory; this write is the authority, so of two
// concurrent cancels exactly one refunds and restores stock.
func claimCancellation(tx *gorm.DB, orderID uint) error {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status NOT IN ?", orderID, []models.OrderStatus{
			models.OrderStatusShipped,
			models.OrderStatusDelivered,
			models.OrderStatusCancelled,
		}).
		UpdateColumn("status", models.OrderStatusCancelled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errOrderFinalized
	}
	return nil
}

// CancelOrderHandler reverses an order: owner or admin only, never past
// Shipped/Delivered/Cancelled. The cancellation is claimed with a conditional
// status write before anything else runs, so a repeat or concurrent cancel
// aborts instead of refunding or restocking twice. If a payment was captured
// the refund is issued after the claim but before any other local mutation;
// a failed refund rolls the claim back and leaves the order untouched.
func CancelOrderHandler(db *gorm.DB, pay Refunder) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)
		role, _ := c.Get("role")
		isAdmin := role == "admin"

		orderID := c.Param("orderID")
		if orderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}

		var req CancelOrderRequest
		_ = c.ShouldBindJSON(&req) // body is optional
		if req.Reason == "" {
			req.Reason = "Cancelled by request"
		}

		var cancelled models.Order
		err := db.Transaction(func(tx *gorm.DB) error {
			var order models.Order
			if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
				return err
			}

			if order.UserID != userID && !isAdmin {
				return errNotOwner
			}
			if order.Status.IsTerminal() {
				return errOrderFinalized
			}

			if err := claimCancellation(tx, order.ID); err != nil {
				return err
			}

			// Refund after the claim, before other local mutations. The
			// provider treats an already-refunded payment as success, so
			// retries cannot double-credit.
			if order.PaymentID != "" {
				refund, err := pay.Refund(order.PaymentID, int64(math.Round(order.TotalPrice*100)))
				if err != nil {
					return err
				}
				now := time.Now()
				order.Refund = models.RefundDetails{
					RefundID:   refund.ID,
					Amount:     float64(refund.Amount) / 100,
					Status:     refund.Status,
					RefundedAt: &now,
				}
			}

			for _, item := range order.Items {
				if err := checkoutControllers.RestoreStock(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}

			now := time.Now()
			order.Status = models.OrderStatusCancelled
			order.Cancellation = models.CancellationDetails{
				CancelledBy: actorLabel(isAdmin),
				Reason:      req.Reason,
				CancelledAt: &now,
			}

			if err := tx.Save(&order).Error; err != nil {
				return err
			}

			cancelled = order
			return nil
		})
		if err != nil {
			respondCancelError(c, orderID, err)
			return
		}

		PublishOrderEvent("order.cancelled", cancelled)
		c.JSON(http.StatusOK, gin.H{"order": cancelled})
	}
}

func actorLabel(isAdmin bool) string {
	if isAdmin {
		return "Admin"
	}
	return "User"
}

func respondCancelError(c *gin.Context, orderID string, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, errNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, errOrderFinalized):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logrus.WithField("order_id", orderID).WithError(err).
			Error("order cancellation rolled back")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order cancellation failed"})
	}
}
