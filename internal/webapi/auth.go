package webapi

import (
	"errors"
	"net/http"

	"github.com/fadakar85/bazaar/internal/accounts"
	"github.com/fadakar85/bazaar/internal/webserver"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func registerAuthRoutes() {
	webserver.WebPOST("/register", registerUser)
	webserver.WebPOST("/login", loginUser, webserver.LoginRateLimit())
	webserver.WebPOST("/logout", logoutUser)
	webserver.AuthGET("/me", currentUser)
}

type registerPayload struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func registerUser(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "درخواست نامعتبر است", nil)
	}

	user, err := GetApp(c).Accounts().Register(c.Request().Context(), payload.Username, payload.Email, payload.Password)
	switch {
	case errors.Is(err, accounts.ErrInvalidInput):
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "نام کاربری، ایمیل و گذرواژه (حداقل ۶ حرف) الزامی است", nil)
	case errors.Is(err, accounts.ErrUsernameTaken):
		return fail(c, http.StatusConflict, "USERNAME_TAKEN", "این نام کاربری قبلا ثبت شده است", nil)
	case errors.Is(err, accounts.ErrEmailTaken):
		return fail(c, http.StatusConflict, "EMAIL_TAKEN", "این ایمیل قبلا ثبت شده است", nil)
	case err != nil:
		zap.L().Error("register failed", zap.String("username", payload.Username), zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}

	if err := webserver.StoreSessionUser(c, user.ID, user.Username); err != nil {
		zap.L().Error("session save failed", zap.Error(err))
	}
	return ok(c, user)
}

type loginPayload struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func loginUser(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "درخواست نامعتبر است", nil)
	}

	user, err := GetApp(c).Accounts().Authenticate(c.Request().Context(), payload.Username, payload.Password)
	if errors.Is(err, accounts.ErrInvalidCredentials) {
		return fail(c, http.StatusUnauthorized, codeUnauthorized, "نام کاربری یا رمز عبور نامعتبر است", nil)
	} else if err != nil {
		zap.L().Error("login failed", zap.String("username", payload.Username), zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}

	if err := webserver.StoreSessionUser(c, user.ID, user.Username); err != nil {
		zap.L().Error("session save failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	return ok(c, user)
}

func logoutUser(c echo.Context) error {
	if err := webserver.ClearSession(c); err != nil {
		zap.L().Warn("session clear failed", zap.Error(err))
	}
	return ok(c, echo.Map{"logged_out": true})
}

func currentUser(c echo.Context) error {
	user, err := GetApp(c).Accounts().Get(c.Request().Context(), currentUserID(c))
	if err != nil {
		return fail(c, http.StatusNotFound, codeNotFound, "کاربر یافت نشد", nil)
	}
	return ok(c, user)
}
