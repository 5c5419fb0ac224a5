package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rahul-cmtai/nexa-bknd/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// ImportProductsFromExcel upserts catalog rows from an uploaded sheet.
// Columns: ID (optional), Name, Description, Price, Stock.
func ImportProductsFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse Excel file"})
			return
		}

		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is empty or missing header row"})
			return
		}

		sheet := xlFile.Sheets[0]
		createdCount, updatedCount, skippedCount := 0, 0, 0

		for i := 1; i < sheet.MaxRow; i++ {
			row := sheet.Rows[i]

			get := func(index int) string {
				if index < len(row.Cells) {
					return strings.TrimSpace(row.Cells[index].String())
				}
				return ""
			}

			idStr := get(0)
			name := get(1)
			description := get(2)
			priceStr := get(3)
			stockStr := get(4)

			if name == "" || priceStr == "" {
				skippedCount++
				continue
			}

			price, err := strconv.ParseFloat(priceStr, 64)
			if err != nil || price < 0 {
				skippedCount++
				continue
			}
			stock := 0
			if stockStr != "" {
				if s, err := strconv.Atoi(stockStr); err == nil && s >= 0 {
					stock = s
				} else {
					skippedCount++
					continue
				}
			}

			// Rows with an ID update the matching product; the rest insert.
			if idStr != "" {
				id, err := strconv.ParseUint(idStr, 10, 64)
				if err != nil {
					skippedCount++
					continue
				}
				var product models.Product
				if err := db.First(&product, id).Error; err == nil {
					db.Model(&product).Updates(map[string]interface{}{
						"name":        name,
						"description": description,
						"price":       price,
						"stock":       stock,
					})
					updatedCount++
					continue
				}
			}

			db.Create(&models.Product{
				Name:        name,
				Description: description,
				Price:       price,
				Stock:       stock,
			})
			createdCount++
		}

		c.JSON(http.StatusOK, gin.H{
			"created": createdCount,
			"updated": updatedCount,
			"skipped": skippedCount,
		})
	}
}
