package productcontroller

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rahul-cmtai/nexa-bknd/models"
	"gorm.io/gorm"
)

// ImageStore is the object-storage contract product images go through.
type ImageStore interface {
	Upload(key string, body io.Reader, contentType string) (string, error)
	Delete(key string) error
}

var (
	errImageRequired      = errors.New("image is required")
	errStorageUnavailable = errors.New("image storage is not configured")
)

// CreateProduct creates a new product with categories + image upload to
// object storage.
func CreateProduct(db *gorm.DB, store ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.PostForm("name")
		priceStr := c.PostForm("price")
		if name == "" || priceStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and price are required"})
			return
		}

		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
			return
		}

		description := c.PostForm("description")

		stock := 0
		if stockStr := c.PostForm("stock"); stockStr != "" {
			if s, parseErr := strconv.Atoi(stockStr); parseErr == nil && s >= 0 {
				stock = s
			} else {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stock"})
				return
			}
		}

		// Categories
		var categories []models.Category
		if categoryIDsStr := c.PostForm("category_ids"); categoryIDsStr != "" {
			var parsedIDs []uint
			for _, tok := range strings.Split(categoryIDsStr, ",") {
				tok = strings.TrimSpace(tok)
				if tok == "" {
					continue
				}
				if id64, parseErr := strconv.ParseUint(tok, 10, 64); parseErr == nil {
					parsedIDs = append(parsedIDs, uint(id64))
				} else {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_ids format"})
					return
				}
			}
			if len(parsedIDs) > 0 {
				if err := db.Where("id IN ?", parsedIDs).Find(&categories).Error; err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
					return
				}
			}
		}

		// Image upload
		imageURL, imageKey, err := uploadImage(c, store, true)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		newProduct := models.Product{
			Name:        name,
			Description: description,
			Price:       price,
			Stock:       stock,
			Image:       imageURL,
			ImageKey:    imageKey,
			Categories:  categories,
		}

		if err := db.Create(&newProduct).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}

		c.JSON(http.StatusCreated, newProduct)
	}
}

// uploadImage pushes the multipart "image" file to object storage and returns
// its public URL and key. With required=false a missing file is not an error.
func uploadImage(c *gin.Context, store ImageStore, required bool) (url, key string, err error) {
	file, err := c.FormFile("image")
	if err != nil {
		if !required {
			return "", "", nil
		}
		return "", "", errImageRequired
	}

	if store == nil {
		return "", "", errStorageUnavailable
	}

	src, err := file.Open()
	if err != nil {
		return "", "", err
	}
	defer src.Close()

	key = "products/" + uuid.NewString() + filepath.Ext(file.Filename)
	contentType := file.Header.Get("Content-Type")

	url, err = store.Upload(key, src, contentType)
	if err != nil {
		return "", "", err
	}
	return url, key, nil
}
