package orderControllers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/store"
	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
)

var exportHeaders = []string{
	"OrderID", "BuyerID", "BuyerName", "Status", "Products",
	"Amount", "Currency", "TransactionID", "PaymentStatus", "CreatedAt", "UpdatedAt",
}

// GET /auth/all-orders/export
func ExportOrdersHandler(s Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := listOrders(c.Request.Context(), s, store.OrderFilter{})
		if err != nil {
			log.Error("export orders failed", slog.Any("err", err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch orders", "error": err.Error()})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Orders")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create Excel sheet"})
			return
		}

		headerRow := sheet.AddRow()
		for _, h := range exportHeaders {
			headerRow.AddCell().SetValue(h)
		}

		for _, o := range orders {
			names := make([]string, 0, len(o.Products))
			for _, p := range o.Products {
				names = append(names, p.Name)
			}

			row := sheet.AddRow()
			row.AddCell().SetValue(o.ID)
			row.AddCell().SetValue(o.Buyer.ID)
			row.AddCell().SetValue(o.Buyer.Name)
			row.AddCell().SetValue(string(o.Status))
			row.AddCell().SetValue(strings.Join(names, ", "))
			row.AddCell().SetValue(o.Payment.Amount)
			row.AddCell().SetValue(o.Payment.Currency)
			row.AddCell().SetValue(o.Payment.TransactionID)
			row.AddCell().SetValue(o.Payment.Status)
			row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
			row.AddCell().SetValue(o.UpdatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			log.Error("write orders workbook failed", slog.Any("err", err))
		}
	}
}
