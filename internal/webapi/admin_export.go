package webapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/fadakar85/bazaar/internal/domain"
	"github.com/fadakar85/bazaar/internal/webserver"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func registerAdminExportRoutes() {
	webserver.ApiGET("/products/export/csv", exportProductsCsv)
	webserver.ApiGET("/products/export/xlsx", exportProductsXlsx)
}

// productExportRow flattens a product for spreadsheet consumers.
type productExportRow struct {
	ID            int64   `csv:"id"`
	Name          string  `csv:"name"`
	Price         float64 `csv:"price"`
	OwnerID       int64   `csv:"owner_id"`
	CategoryID    int64   `csv:"category_id"`
	PromotedUntil string  `csv:"promoted_until"`
	CreatedAt     string  `csv:"created_at"`
}

func exportRows(c echo.Context) ([]productExportRow, error) {
	var products []domain.Product
	if err := adminProductQuery(c).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}

	rows := make([]productExportRow, 0, len(products))
	for _, p := range products {
		row := productExportRow{
			ID:        p.ID,
			Name:      p.Name,
			Price:     p.Price,
			OwnerID:   p.UserId,
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		}
		if p.CategoryId != nil {
			row.CategoryID = *p.CategoryId
		}
		if p.PromotedUntil != nil {
			row.PromotedUntil = p.PromotedUntil.Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func exportProductsCsv(c echo.Context) error {
	rows, err := exportRows(c)
	if err != nil {
		zap.L().Error("product export failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}

	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		zap.L().Error("csv encoding failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}

	writeOprLog(c, oprName(c), "product_export", fmt.Sprintf("csv export, %d rows", len(rows)))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}

func exportProductsXlsx(c echo.Context) error {
	rows, err := exportRows(c)
	if err != nil {
		zap.L().Error("product export failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}

	f := excelize.NewFile()
	const sheet = "Sheet1"
	header := []string{"id", "name", "price", "owner_id", "category_id", "promoted_until", "created_at"}
	for col, title := range header {
		f.SetCellValue(sheet, fmt.Sprintf("%s1", excelize.ToAlphaString(col)), title)
	}
	for i, r := range rows {
		values := []interface{}{r.ID, r.Name, r.Price, r.OwnerID, r.CategoryID, r.PromotedUntil, r.CreatedAt}
		for col, v := range values {
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", excelize.ToAlphaString(col), i+2), v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		zap.L().Error("xlsx encoding failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}

	writeOprLog(c, oprName(c), "product_export", fmt.Sprintf("xlsx export, %d rows", len(rows)))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.xlsx"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
