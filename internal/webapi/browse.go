package webapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fadakar85/bazaar/internal/domain"
	"github.com/fadakar85/bazaar/internal/listing"
	"github.com/fadakar85/bazaar/internal/webserver"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func registerBrowseRoutes() {
	webserver.WebGET("/", browseProducts)
	webserver.WebGET("/products", browseProducts)
	webserver.WebGET("/products/:id", getProductDetail)
	webserver.WebGET("/categories", listCategories)
	webserver.WebGET("/users/:username", getSellerProfile)
}

// browseProducts is the storefront listing: optional free-text search and
// category filter, promoted listings first.
func browseProducts(c echo.Context) error {
	q := listing.Query{Search: c.QueryParam("q")}
	if raw := c.QueryParam("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, codeInvalidRequest, "دسته‌بندی نامعتبر است", nil)
		}
		q.CategoryId = &id
	}

	rows, err := GetApp(c).Listing().Browse(c.Request().Context(), q)
	if err != nil {
		zap.L().Error("browse failed", zap.String("q", q.Search), zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	return ok(c, rows)
}

type productDetail struct {
	domain.Product
	Promoted bool   `json:"promoted"`
	Views    uint64 `json:"views"`
}

func getProductDetail(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "شناسه محصول نامعتبر است", nil)
	}

	var p domain.Product
	if err := GetDB(c).First(&p, id).Error; err != nil {
		return fail(c, http.StatusNotFound, codeNotFound, "محصول یافت نشد", nil)
	}

	appCtx := GetApp(c)
	views, err := appCtx.Views().Bump(p.ID)
	if err != nil {
		zap.L().Warn("view counter bump failed", zap.Int64("product_id", p.ID), zap.Error(err))
	}

	return ok(c, productDetail{
		Product:  p,
		Promoted: listing.IsPromoted(&p, time.Now()),
		Views:    views,
	})
}

// getSellerProfile is the public storefront page of one seller: the account
// (password never serialized) and their listings.
func getSellerProfile(c echo.Context) error {
	appCtx := GetApp(c)
	user, err := appCtx.Accounts().GetByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return fail(c, http.StatusNotFound, codeNotFound, "کاربر یافت نشد", nil)
	}

	products, err := appCtx.Listing().Own(c.Request().Context(), user.ID)
	if err != nil {
		zap.L().Error("seller products query failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	return ok(c, echo.Map{"user": user, "products": products})
}

func listCategories(c echo.Context) error {
	var rows []domain.Category
	if err := GetDB(c).Order("sort ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	return ok(c, rows)
}
