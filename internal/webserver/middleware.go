package webserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/fadakar85/bazaar/internal/app"
	"github.com/fadakar85/bazaar/pkg/metrics"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const appContextKey = "bazaar_app_ctx"

// AppContextMiddleware injects the application context into every request.
func AppContextMiddleware(appCtx app.AppContext) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(appContextKey, appCtx)
			return next(c)
		}
	}
}

// GetAppContext returns the application context stored on the request.
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(appContextKey).(app.AppContext)
}

// ZapLoggerMiddleware logs one line per request with latency and status.
func ZapLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			metrics.Incr("http_requests_total")
			zap.L().Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.String("remote", c.RealIP()),
				zap.Duration("latency", time.Since(start)))
			return nil
		}
	}
}

// Session helpers.

const (
	sessionUserID   = "user_id"
	sessionUsername = "username"
)

// StoreSessionUser writes the logged-in identity into the cookie session.
func StoreSessionUser(c echo.Context, userID int64, username string) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Values[sessionUserID] = userID
	sess.Values[sessionUsername] = username
	return sess.Save(c.Request(), c.Response())
}

// ClearSession logs the user out.
func ClearSession(c echo.Context) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	delete(sess.Values, sessionUserID)
	delete(sess.Values, sessionUsername)
	return sess.Save(c.Request(), c.Response())
}

// CurrentUserID reads the logged-in user id from the session.
func CurrentUserID(c echo.Context) (int64, bool) {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return 0, false
	}
	id, ok := sess.Values[sessionUserID].(int64)
	return id, ok && id != 0
}

// RequireSession short-circuits requests without a logged-in session.
func RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := CurrentUserID(c); !ok {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"code":    "UNAUTHORIZED",
				"message": "ابتدا وارد شوید",
			})
		}
		return next(c)
	}
}

// ipRateLimiter keeps one token bucket per remote IP. Used on the login
// route to slow down password guessing.
type ipRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*rate.Limiter
	r        rate.Limit
	burst    int
}

func newIPRateLimiter(r rate.Limit, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		visitors: make(map[string]*rate.Limiter),
		r:        r,
		burst:    burst,
	}
}

func (l *ipRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.visitors[ip]
	if !ok {
		lim = rate.NewLimiter(l.r, l.burst)
		l.visitors[ip] = lim
	}
	return lim
}

// LoginRateLimit allows a handful of attempts per minute per IP.
func LoginRateLimit() echo.MiddlewareFunc {
	limiter := newIPRateLimiter(rate.Every(6*time.Second), 5)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.limiter(c.RealIP()).Allow() {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"code":    "RATE_LIMITED",
					"message": "تعداد تلاش بیش از حد مجاز است، کمی بعد دوباره امتحان کنید",
				})
			}
			return next(c)
		}
	}
}
