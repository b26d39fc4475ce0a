package adminapi

import (
	"fmt"
	"net/http"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/webserver"
	"github.com/eliotaldersonfsociety/tienlatoree/pkg/common"
)

func registerExportRoutes() {
	webserver.ApiGET("/shop/export/orders", exportOrders)
	webserver.ApiGET("/shop/export/products", exportProducts)
	webserver.ApiGET("/shop/export/customers", exportCustomers)
}

// orderExportRow flattens an order for spreadsheet export.
type orderExportRow struct {
	ID            int64   `csv:"id"`
	CustomerEmail string  `csv:"customer_email"`
	CustomerName  string  `csv:"customer_name"`
	City          string  `csv:"city"`
	Total         float64 `csv:"total"`
	Status        string  `csv:"status"`
	PaymentMethod string  `csv:"payment_method"`
	ItemCount     int     `csv:"item_count"`
	CreatedAt     string  `csv:"created_at"`
}

func exportOrders(c echo.Context) error {
	var orders []domain.Order
	if err := GetDB(c).Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	rows := make([]orderExportRow, 0, len(orders))
	for _, o := range orders {
		count := 0
		for _, it := range o.Items {
			count += it.Quantity
		}
		rows = append(rows, orderExportRow{
			ID:            o.ID,
			CustomerEmail: o.CustomerEmail,
			CustomerName:  o.CustomerName,
			City:          o.City,
			Total:         o.Total,
			Status:        o.Status,
			PaymentMethod: o.PaymentMethod,
			ItemCount:     count,
			CreatedAt:     common.FmtTime(o.CreatedAt),
		})
	}

	if c.QueryParam("format") == "csv" {
		return writeCSV(c, "orders.csv", &rows)
	}

	xlsx := excelize.NewFile()
	headers := []string{"ID", "Email", "Name", "City", "Total", "Status", "Payment", "Items", "Created"}
	for i, h := range headers {
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("%c1", 'A'+i), h)
	}
	for i, r := range rows {
		row := i + 2
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("A%d", row), r.ID)
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("B%d", row), r.CustomerEmail)
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("C%d", row), r.CustomerName)
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("D%d", row), r.City)
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("E%d", row), r.Total)
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("F%d", row), r.Status)
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("G%d", row), r.PaymentMethod)
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("H%d", row), r.ItemCount)
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("I%d", row), r.CreatedAt)
	}
	return writeXLSX(c, "orders.xlsx", xlsx)
}

type productExportRow struct {
	ID       string  `csv:"id"`
	Name     string  `csv:"name"`
	Price    float64 `csv:"price"`
	Category string  `csv:"category"`
	Stock    int     `csv:"stock"`
	Active   bool    `csv:"active"`
}

func exportProducts(c echo.Context) error {
	var products []domain.Product
	if err := GetDB(c).Order("id").Find(&products).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	rows := make([]productExportRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, productExportRow{
			ID: p.ID, Name: p.Name, Price: p.Price,
			Category: p.Category, Stock: p.Stock, Active: p.Active,
		})
	}
	return writeCSV(c, "products.csv", &rows)
}

type customerExportRow struct {
	ID        int64  `csv:"id"`
	Email     string `csv:"email"`
	Name      string `csv:"name"`
	City      string `csv:"city"`
	Role      string `csv:"role"`
	Status    string `csv:"status"`
	CreatedAt string `csv:"created_at"`
}

func exportCustomers(c echo.Context) error {
	var users []domain.User
	if err := GetDB(c).Order("created_at").Find(&users).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customers", err.Error())
	}
	rows := make([]customerExportRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, customerExportRow{
			ID: u.ID, Email: u.Email, Name: u.Name, City: u.City,
			Role: u.Role, Status: u.Status,
			CreatedAt: u.CreatedAt.Format("2006-01-02"),
		})
	}
	return writeCSV(c, "customers.csv", &rows)
}

func writeCSV(c echo.Context, filename string, rows interface{}) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().WriteHeader(http.StatusOK)
	if err := gocsv.Marshal(rows, c.Response()); err != nil {
		return err
	}
	return nil
}

func writeXLSX(c echo.Context, filename string, xlsx *excelize.File) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().WriteHeader(http.StatusOK)
	return xlsx.Write(c.Response())
}
