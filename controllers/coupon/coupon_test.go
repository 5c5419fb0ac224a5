package couponControllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rahul-cmtai/nexa-bknd/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Coupon{}))
	return db
}

func newCouponRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/coupons", CreateCoupon(db))
	r.GET("/coupons", GetAllCoupons(db))
	r.PUT("/coupons/:couponID", UpdateCoupon(db))
	r.DELETE("/coupons/:couponID", DeleteCoupon(db))
	r.GET("/coupons/validate/:code", ValidateCoupon(db))
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateCouponStoresUppercase(t *testing.T) {
	db := openTestDB(t)
	r := newCouponRouter(db)

	w := do(t, r, http.MethodPost, "/coupons", CreateCouponRequest{Code: " save10 ", DiscountPercentage: 10})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var coupon models.Coupon
	require.NoError(t, db.First(&coupon).Error)
	assert.Equal(t, "SAVE10", coupon.Code)
	assert.Equal(t, models.CouponStatusActive, coupon.Status)
}

func TestCreateCouponDuplicateConflicts(t *testing.T) {
	db := openTestDB(t)
	r := newCouponRouter(db)

	require.Equal(t, http.StatusCreated,
		do(t, r, http.MethodPost, "/coupons", CreateCouponRequest{Code: "SAVE10", DiscountPercentage: 10}).Code)

	// Same code in a different case is still a duplicate.
	w := do(t, r, http.MethodPost, "/coupons", CreateCouponRequest{Code: "save10", DiscountPercentage: 15})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateCouponRejectsBadPercentage(t *testing.T) {
	db := openTestDB(t)
	r := newCouponRouter(db)

	for _, pct := range []float64{0, -5, 101} {
		w := do(t, r, http.MethodPost, "/coupons", map[string]interface{}{
			"code": "X", "discount_percentage": pct,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "percentage %v", pct)
	}
}

func TestValidateCoupon(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&models.Coupon{Code: "SAVE10", DiscountPercentage: 10, Status: models.CouponStatusActive}).Error)
	require.NoError(t, db.Create(&models.Coupon{Code: "DEAD20", DiscountPercentage: 20, Status: models.CouponStatusInactive}).Error)
	r := newCouponRouter(db)

	w := do(t, r, http.MethodGet, "/coupons/validate/save10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Code               string  `json:"code"`
		DiscountPercentage float64 `json:"discount_percentage"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "SAVE10", resp.Code)
	assert.InDelta(t, 10, resp.DiscountPercentage, 1e-9)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/coupons/validate/DEAD20", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/coupons/validate/NOPE", nil).Code)
}

func TestUpdateCouponDeactivates(t *testing.T) {
	db := openTestDB(t)
	coupon := models.Coupon{Code: "SAVE10", DiscountPercentage: 10, Status: models.CouponStatusActive}
	require.NoError(t, db.Create(&coupon).Error)
	r := newCouponRouter(db)

	inactive := "inactive"
	w := do(t, r, http.MethodPut, fmt.Sprintf("/coupons/%d", coupon.ID), UpdateCouponRequest{Status: &inactive})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Coupon
	require.NoError(t, db.First(&got, coupon.ID).Error)
	assert.Equal(t, models.CouponStatusInactive, got.Status)

	// Preview now refuses it.
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/coupons/validate/SAVE10", nil).Code)
}

func TestDeleteCoupon(t *testing.T) {
	db := openTestDB(t)
	coupon := models.Coupon{Code: "SAVE10", DiscountPercentage: 10}
	require.NoError(t, db.Create(&coupon).Error)
	r := newCouponRouter(db)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodDelete, fmt.Sprintf("/coupons/%d", coupon.ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, fmt.Sprintf("/coupons/%d", coupon.ID), nil).Code)
}
