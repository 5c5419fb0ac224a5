package couponControllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rahul-cmtai/nexa-bknd/models"
	"gorm.io/gorm"
)

// -------- Request Structs --------

type CreateCouponRequest struct {
	Code               string  `json:"code" binding:"required"`
	DiscountPercentage float64 `json:"discount_percentage" binding:"required,gt=0,lte=100"`
	Status             string  `json:"status"`
}

type UpdateCouponRequest struct {
	Code               *string  `json:"code"`
	DiscountPercentage *float64 `json:"discount_percentage"`
	Status             *string  `json:"status"`
}

func mapCouponStatus(status string) (models.CouponStatus, error) {
	switch strings.ToLower(status) {
	case "", string(models.CouponStatusActive):
		return models.CouponStatusActive, nil
	case string(models.CouponStatusInactive):
		return models.CouponStatusInactive, nil
	default:
		return "", errors.New("invalid coupon status")
	}
}

// -------- Handlers --------

// CreateCoupon registers a new discount code (admin). Codes are stored
// uppercase so checkout lookups stay case-insensitive.
func CreateCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "code and discount_percentage are required"})
			return
		}

		status, err := mapCouponStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		code := strings.ToUpper(strings.TrimSpace(req.Code))

		var existing models.Coupon
		if err := db.Where("UPPER(code) = ?", code).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "coupon with this code already exists"})
			return
		}

		coupon := models.Coupon{
			Code:               code,
			DiscountPercentage: req.DiscountPercentage,
			Status:             status,
		}
		if err := db.Create(&coupon).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create coupon"})
			return
		}

		c.JSON(http.StatusCreated, coupon)
	}
}

// GetAllCoupons lists coupons, optionally filtered by ?status= (admin).
func GetAllCoupons(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.Coupon{}).Order("created_at DESC")

		if status := c.Query("status"); status == string(models.CouponStatusActive) ||
			status == string(models.CouponStatusInactive) {
			query = query.Where("status = ?", status)
		}

		var coupons []models.Coupon
		if err := query.Find(&coupons).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coupons"})
			return
		}
		c.JSON(http.StatusOK, coupons)
	}
}

// UpdateCoupon patches code, percentage, or status (admin). Flipping status
// to inactive immediately invalidates the code for new checkouts.
func UpdateCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("couponID")

		var coupon models.Coupon
		if err := db.First(&coupon, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "coupon not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coupon"})
			return
		}

		var req UpdateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updates := make(map[string]interface{})
		if req.Code != nil {
			updates["code"] = strings.ToUpper(strings.TrimSpace(*req.Code))
		}
		if req.DiscountPercentage != nil {
			if *req.DiscountPercentage <= 0 || *req.DiscountPercentage > 100 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "discount_percentage must be in (0, 100]"})
				return
			}
			updates["discount_percentage"] = *req.DiscountPercentage
		}
		if req.Status != nil {
			status, err := mapCouponStatus(*req.Status)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			updates["status"] = status
		}

		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		if err := db.Model(&coupon).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update coupon"})
			return
		}

		c.JSON(http.StatusOK, coupon)
	}
}

// DeleteCoupon removes a code entirely (admin).
func DeleteCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("couponID")

		result := db.Delete(&models.Coupon{}, "id = ?", id)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete coupon"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "coupon not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Coupon deleted"})
	}
}

// ValidateCoupon is the cart-time preview: it reports the percentage for an
// active code without reserving anything. Checkout re-validates inside the
// transaction, so a code can still expire between preview and purchase.
func ValidateCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
		if code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "coupon code is required"})
			return
		}

		var coupon models.Coupon
		err := db.Where("UPPER(code) = ? AND status = ?", code, models.CouponStatusActive).
			First(&coupon).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "invalid or inactive coupon code"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate coupon"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"code":                coupon.Code,
			"discount_percentage": coupon.DiscountPercentage,
		})
	}
}
