package webapi

import (
	"net/http"
	"strconv"

	"github.com/fadakar85/bazaar/internal/app"
	"github.com/fadakar85/bazaar/internal/webserver"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Error codes surfaced to clients. Messages sent to users are short
// Persian notices; diagnostic detail goes to the log, not the response.
const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeUnauthorized   = "UNAUTHORIZED"
	codeForbidden      = "NOT_OWNER"
	codeNotFound       = "NOT_FOUND"
	codeDatabaseError  = "DATABASE_ERROR"
	codeGatewayError   = "GATEWAY_ERROR"
)

// Register wires every marketplace and admin route.
func Register() {
	registerAuthRoutes()
	registerBrowseRoutes()
	registerProductRoutes()
	registerPromotionRoutes()
	registerMessageRoutes()
	registerPaymentRoutes()
	registerAdminRoutes()
	registerAdminExportRoutes()
}

// GetApp returns the application context for the request.
func GetApp(c echo.Context) app.AppContext {
	return webserver.GetAppContext(c)
}

// GetDB returns the request-scoped database handle.
func GetDB(c echo.Context) *gorm.DB {
	return webserver.GetAppContext(c).DB()
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, echo.Map{"data": data})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	resp := echo.Map{"code": code, "message": message}
	if detail != nil {
		resp["detail"] = detail
	}
	return c.JSON(status, resp)
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, echo.Map{
		"data":    rows,
		"total":   total,
		"page":    page,
		"perPage": pageSize,
	})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize = 20
	perPage := c.QueryParam("perPage")
	if perPage == "" {
		perPage = c.QueryParam("pageSize")
	}
	if ps, err := strconv.Atoi(perPage); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// currentUserID reads the session identity; guarded routes always have one.
func currentUserID(c echo.Context) int64 {
	id, _ := webserver.CurrentUserID(c)
	return id
}
