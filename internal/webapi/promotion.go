package webapi

import (
	"net/http"

	"github.com/fadakar85/bazaar/internal/webserver"
	"github.com/labstack/echo/v4"
)

func registerPromotionRoutes() {
	webserver.AuthPOST("/products/:id/promote", promoteProduct)
	webserver.AuthDELETE("/products/:id/promote", unpromoteProduct)
}

// promoteProduct opens the owner's standard boost window on a listing.
// Repeating the call resets the window instead of extending it.
func promoteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "شناسه محصول نامعتبر است", nil)
	}

	appCtx := GetApp(c)
	p, err := appCtx.Listing().Promote(c.Request().Context(), id, currentUserID(c), appCtx.StandardPromotionDuration())
	if err != nil {
		return failListingError(c, err)
	}
	return ok(c, p)
}

func unpromoteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "شناسه محصول نامعتبر است", nil)
	}

	p, err := GetApp(c).Listing().RemovePromotion(c.Request().Context(), id, currentUserID(c))
	if err != nil {
		return failListingError(c, err)
	}
	return ok(c, p)
}
