package webapi

import (
	"errors"
	"net/http"

	"github.com/fadakar85/bazaar/internal/domain"
	"github.com/fadakar85/bazaar/internal/payment"
	"github.com/fadakar85/bazaar/internal/webserver"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func registerPaymentRoutes() {
	webserver.AuthPOST("/products/:id/pay", initiatePayment)
	// the gateway calls back without a session, the order row carries identity
	webserver.WebGET("/payment/verify", verifyPayment)
}

// initiatePayment starts a gateway transaction for boosting the product and
// returns the URL the client must redirect the payer to.
func initiatePayment(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "شناسه محصول نامعتبر است", nil)
	}

	payerID := currentUserID(c)
	payURL, err := GetApp(c).Payments().Initiate(c.Request().Context(), id, payerID)
	switch {
	case errors.Is(err, payment.ErrProductNotFound):
		return fail(c, http.StatusNotFound, codeNotFound, "محصول یافت نشد", nil)
	case errors.Is(err, payment.ErrGateway):
		zap.L().Error("gateway request failed", zap.Int64("product_id", id), zap.Error(err))
		return fail(c, http.StatusBadGateway, codeGatewayError, "اتصال به درگاه پرداخت برقرار نشد", nil)
	case err != nil:
		zap.L().Error("payment initiation failed", zap.Int64("product_id", id), zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	return ok(c, echo.Map{"payment_url": payURL})
}

// verifyPayment is the gateway return leg. The order is resolved purely by
// trackId; success, rejection and replay each get their own response.
func verifyPayment(c echo.Context) error {
	trackID := c.QueryParam("trackId")
	if trackID == "" {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "شناسه پیگیری ارسال نشده است", nil)
	}

	order, err := GetApp(c).Payments().Confirm(c.Request().Context(), trackID)
	switch {
	case errors.Is(err, payment.ErrOrderNotFound):
		return fail(c, http.StatusNotFound, codeNotFound, "سفارش پرداخت یافت نشد", nil)
	case errors.Is(err, payment.ErrOrderNotPending):
		return fail(c, http.StatusConflict, codeInvalidRequest, "این سفارش قبلا پردازش شده است", nil)
	case errors.Is(err, payment.ErrPaymentRejected):
		return fail(c, http.StatusPaymentRequired, codeGatewayError, "پرداخت توسط درگاه تایید نشد", nil)
	case err != nil:
		zap.L().Error("payment confirmation failed", zap.String("track_id", trackID), zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}

	zap.L().Info("payment confirmed",
		zap.String("track_id", trackID),
		zap.Int64("product_id", order.ProductId))
	return ok(c, echo.Map{
		"status":     domain.PaymentPaid,
		"product_id": order.ProductId,
		"track_id":   order.TrackId,
	})
}
