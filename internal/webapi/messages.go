package webapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fadakar85/bazaar/internal/messaging"
	"github.com/fadakar85/bazaar/internal/webserver"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func registerMessageRoutes() {
	webserver.AuthPOST("/messages", sendMessage)
	webserver.AuthGET("/messages", listMessages)
	webserver.AuthGET("/messages/conversation", getConversation)
}

type sendMessagePayload struct {
	ReceiverId int64  `json:"receiver_id,string" form:"receiver_id"`
	ProductId  int64  `json:"product_id,string" form:"product_id"`
	Content    string `json:"content" form:"content"`
}

func sendMessage(c echo.Context) error {
	var payload sendMessagePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "درخواست نامعتبر است", nil)
	}

	senderID := currentUserID(c)
	msg, err := GetApp(c).Messaging().Send(c.Request().Context(), senderID, payload.ReceiverId, payload.ProductId, payload.Content)
	switch {
	case errors.Is(err, messaging.ErrEmptyContent):
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "متن پیام خالی است", nil)
	case errors.Is(err, messaging.ErrSelfMessage):
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "ارسال پیام به خودتان ممکن نیست", nil)
	case errors.Is(err, messaging.ErrUnknownTarget):
		return fail(c, http.StatusNotFound, codeNotFound, "گیرنده یا محصول یافت نشد", nil)
	case err != nil:
		zap.L().Error("message send failed", zap.Int64("sender_id", senderID), zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	return ok(c, msg)
}

// listMessages returns the caller's full in/out message log, newest first.
func listMessages(c echo.Context) error {
	rows, err := GetApp(c).Messaging().ListByUser(c.Request().Context(), currentUserID(c))
	if err != nil {
		zap.L().Error("message list failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	return ok(c, rows)
}

// getConversation returns the two-way thread between the caller and another
// user about one product, oldest first.
func getConversation(c echo.Context) error {
	productID, err := strconv.ParseInt(c.QueryParam("product_id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "شناسه محصول نامعتبر است", nil)
	}
	peerID, err := strconv.ParseInt(c.QueryParam("peer_id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "شناسه کاربر نامعتبر است", nil)
	}

	rows, err := GetApp(c).Messaging().Conversation(c.Request().Context(), productID, currentUserID(c), peerID)
	if err != nil {
		zap.L().Error("conversation query failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	return ok(c, rows)
}
