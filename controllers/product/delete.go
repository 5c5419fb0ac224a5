package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rahul-cmtai/nexa-bknd/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DeleteProduct soft-deletes a product. Existing orders keep their snapshots;
// carts still referencing it fail checkout with a distinct error. The stored
// image is removed best-effort after the database change commits.
func DeleteProduct(db *gorm.DB, store ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
			return
		}

		var product models.Product
		if err := db.Preload("Categories").First(&product, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&product).Association("Categories").Clear(); err != nil {
				return err
			}
			return tx.Delete(&product).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}

		if product.ImageKey != "" && store != nil {
			if err := store.Delete(product.ImageKey); err != nil {
				logrus.WithField("key", product.ImageKey).WithError(err).
					Warn("failed to delete product image from storage")
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}
