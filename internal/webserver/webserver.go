package webserver

import (
	"fmt"
	"net/http"

	"github.com/fadakar85/bazaar/internal/app"
	"github.com/fadakar85/bazaar/pkg/common"
	"github.com/gorilla/sessions"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const SessionName = "bazaar_session"

var server *WebServer

// WebServer wraps the echo engine plus the route groups: public web
// routes, session-guarded user routes and the JWT admin API.
type WebServer struct {
	appCtx app.AppContext
	root   *echo.Echo
	user   *echo.Group
	api    *echo.Group
}

// jsonSerializer plugs json-iterator into echo.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	err := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body").SetInternal(err)
	}
	return nil
}

func Init(appCtx app.AppContext) *WebServer {
	cfg := appCtx.Config()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}

	e.Use(middleware.Recover())
	e.Use(ZapLoggerMiddleware())
	e.Use(AppContextMiddleware(appCtx))

	secret := cfg.Web.Secret
	if secret == "" {
		// sessions signed with a throwaway key reset on restart
		secret = common.RandomString(32)
		zap.L().Warn("web secret not configured, generated a random one")
	}
	cookieStore := sessions.NewCookieStore([]byte(secret))
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
	}
	e.Use(session.Middleware(cookieStore))

	e.Static("/uploads", cfg.GetUploadDir())

	server = &WebServer{
		appCtx: appCtx,
		root:   e,
		user:   e.Group("", RequireSession),
		api:    e.Group("/api"),
	}

	server.api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(cfg.Web.JwtSecret),
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/login"
		},
	}))

	return server
}

// Listen starts serving until the listener fails or is closed.
func Listen() error {
	cfg := server.appCtx.Config()
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	zap.L().Info("web server listening", zap.String("addr", addr))
	return server.root.Start(addr)
}

// Shutdown closes the listener.
func Shutdown() error {
	return server.root.Close()
}

// Echo exposes the engine, used by handler tests.
func Echo() *echo.Echo {
	return server.root
}

// Public routes, no authentication.

func WebGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.GET(path, h, m...)
}

func WebPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.POST(path, h, m...)
}

// Session-guarded routes for marketplace users.

func AuthGET(path string, h echo.HandlerFunc) {
	server.user.GET(path, h)
}

func AuthPOST(path string, h echo.HandlerFunc) {
	server.user.POST(path, h)
}

func AuthPUT(path string, h echo.HandlerFunc) {
	server.user.PUT(path, h)
}

func AuthDELETE(path string, h echo.HandlerFunc) {
	server.user.DELETE(path, h)
}

// JWT admin API routes.

func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}
