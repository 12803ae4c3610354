package webapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/fadakar85/bazaar/internal/domain"
	"github.com/fadakar85/bazaar/internal/listing"
	"github.com/fadakar85/bazaar/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

func registerProductRoutes() {
	webserver.AuthGET("/my/products", listOwnProducts)
	webserver.AuthPOST("/products", createProduct)
	webserver.AuthPUT("/products/:id", updateProduct)
	webserver.AuthDELETE("/products/:id", deleteProduct)
}

func listOwnProducts(c echo.Context) error {
	rows, err := GetApp(c).Listing().Own(c.Request().Context(), currentUserID(c))
	if err != nil {
		zap.L().Error("own products query failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	return ok(c, rows)
}

// storeUploadedImage saves an optional multipart image and returns the stored
// filename, or "" when no file was sent.
func storeUploadedImage(c echo.Context, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		// absent field or non-multipart body both mean no upload
		return "", nil
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return GetApp(c).Images().Save(src, fh.Filename)
}

func createProduct(c echo.Context) error {
	name := c.FormValue("name")
	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "قیمت نامعتبر است", nil)
	}

	var categoryID *int64
	if raw := c.FormValue("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, codeInvalidRequest, "دسته‌بندی نامعتبر است", nil)
		}
		categoryID = &id
	}

	imagePath, err := storeUploadedImage(c, "image")
	if err != nil {
		zap.L().Warn("image upload rejected", zap.Error(err))
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "تصویر ارسالی قابل پردازش نیست", nil)
	}

	appCtx := GetApp(c)
	ownerID := currentUserID(c)
	p := &domain.Product{
		Name:        name,
		Description: c.FormValue("description"),
		Price:       price,
		CategoryId:  categoryID,
		ImagePath:   imagePath,
	}
	if err := appCtx.Listing().Create(c.Request().Context(), p, ownerID); err != nil {
		if imagePath != "" {
			_ = appCtx.Images().Delete(imagePath)
		}
		if errors.Is(err, listing.ErrInvalidInput) {
			return fail(c, http.StatusBadRequest, codeInvalidRequest, "نام و قیمت معتبر الزامی است", nil)
		}
		zap.L().Error("product create failed", zap.Int64("owner_id", ownerID), zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}

	// New listings can opt into the standard courtesy boost.
	if cast.ToBool(c.FormValue("promote")) {
		if boosted, err := appCtx.Listing().Promote(c.Request().Context(), p.ID, ownerID, appCtx.StandardPromotionDuration()); err == nil {
			p = boosted
		} else {
			zap.L().Warn("initial promotion failed", zap.Int64("product_id", p.ID), zap.Error(err))
		}
	}
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "شناسه محصول نامعتبر است", nil)
	}

	var newPrice *float64
	if v := strings.TrimSpace(c.FormValue("price")); v != "" {
		parsed, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return fail(c, http.StatusBadRequest, codeInvalidRequest, "قیمت نامعتبر است", nil)
		}
		newPrice = &parsed
	}

	newImage, err := storeUploadedImage(c, "image")
	if err != nil {
		zap.L().Warn("image upload rejected", zap.Error(err))
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "تصویر ارسالی قابل پردازش نیست", nil)
	}

	appCtx := GetApp(c)
	var oldImage string
	p, err := appCtx.Listing().Update(c.Request().Context(), id, currentUserID(c), func(p *domain.Product) {
		if v := c.FormValue("name"); v != "" {
			p.Name = v
		}
		if v := c.FormValue("description"); v != "" {
			p.Description = v
		}
		if newPrice != nil {
			p.Price = *newPrice
		}
		if v := strings.TrimSpace(c.FormValue("category_id")); v != "" {
			if cid, perr := strconv.ParseInt(v, 10, 64); perr == nil {
				p.CategoryId = &cid
			}
		}
		if newImage != "" {
			oldImage = p.ImagePath
			p.ImagePath = newImage
		}
	})
	if err != nil {
		if newImage != "" {
			_ = appCtx.Images().Delete(newImage)
		}
		return failListingError(c, err)
	}
	if oldImage != "" && oldImage != newImage {
		_ = appCtx.Images().Delete(oldImage)
	}
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "شناسه محصول نامعتبر است", nil)
	}

	appCtx := GetApp(c)
	p, err := appCtx.Listing().Delete(c.Request().Context(), id, currentUserID(c))
	if err != nil {
		return failListingError(c, err)
	}

	if p.ImagePath != "" {
		_ = appCtx.Images().Delete(p.ImagePath)
	}
	if err := appCtx.Views().Delete(p.ID); err != nil {
		zap.L().Warn("view counter cleanup failed", zap.Int64("product_id", p.ID), zap.Error(err))
	}
	return ok(c, echo.Map{"deleted": true})
}

// failListingError maps listing service errors onto HTTP responses.
func failListingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, listing.ErrNotFound):
		return fail(c, http.StatusNotFound, codeNotFound, "محصول یافت نشد", nil)
	case errors.Is(err, listing.ErrNotOwner):
		return fail(c, http.StatusForbidden, codeForbidden, "این آگهی متعلق به شما نیست", nil)
	case errors.Is(err, listing.ErrInvalidInput):
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "نام و قیمت معتبر الزامی است", nil)
	default:
		zap.L().Error("listing operation failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
}
