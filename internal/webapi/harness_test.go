package webapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fadakar85/bazaar/config"
	"github.com/fadakar85/bazaar/internal/accounts"
	"github.com/fadakar85/bazaar/internal/app"
	"github.com/fadakar85/bazaar/internal/domain"
	"github.com/fadakar85/bazaar/internal/events"
	"github.com/fadakar85/bazaar/internal/imagestore"
	"github.com/fadakar85/bazaar/internal/listing"
	"github.com/fadakar85/bazaar/internal/messaging"
	"github.com/fadakar85/bazaar/internal/payment"
	"github.com/fadakar85/bazaar/internal/viewcount"
	"github.com/fadakar85/bazaar/internal/webserver"
	"github.com/fadakar85/bazaar/pkg/common"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeGateway always accepts, handing out sequential track ids.
type fakeGateway struct {
	nextTrack int
	rejected  map[string]bool
}

func (g *fakeGateway) Request(_ context.Context, _ int64, _, _ string) (string, error) {
	g.nextTrack++
	return fmt.Sprintf("trk-%d", g.nextTrack), nil
}

func (g *fakeGateway) Verify(_ context.Context, trackID string) error {
	if g.rejected[trackID] {
		return payment.ErrPaymentRejected
	}
	return nil
}

// testApp wires real services over an in-memory database so the HTTP layer
// can be exercised end to end.
type testApp struct {
	db        *gorm.DB
	cfg       *config.AppConfig
	mgr       *app.ConfigManager
	bus       *events.Bus
	views     *viewcount.Store
	images    *imagestore.Store
	accounts  *accounts.Service
	listing   *listing.Service
	messaging *messaging.Service
	payments  *payment.Service
	gateway   *fakeGateway
}

func (a *testApp) DB() *gorm.DB                  { return a.db }
func (a *testApp) Config() *config.AppConfig     { return a.cfg }
func (a *testApp) ConfigMgr() *app.ConfigManager { return a.mgr }
func (a *testApp) Bus() *events.Bus              { return a.bus }
func (a *testApp) Views() *viewcount.Store       { return a.views }
func (a *testApp) Images() *imagestore.Store     { return a.images }
func (a *testApp) Accounts() *accounts.Service   { return a.accounts }
func (a *testApp) Listing() *listing.Service     { return a.listing }
func (a *testApp) Messaging() *messaging.Service { return a.messaging }
func (a *testApp) Payments() *payment.Service    { return a.payments }
func (a *testApp) MigrateDB(bool) error          { return nil }
func (a *testApp) InitDb()                       {}
func (a *testApp) DropAll()                      {}

func (a *testApp) GetSettingsStringValue(category, key string) string {
	return a.mgr.GetString(category, key)
}

func (a *testApp) GetSettingsInt64Value(category, key string) int64 {
	return a.mgr.GetInt64(category, key)
}

func (a *testApp) GetSettingsBoolValue(category, key string) bool {
	return a.mgr.GetBool(category, key)
}

func (a *testApp) StandardPromotionDuration() time.Duration {
	return 30 * 24 * time.Hour
}

func (a *testApp) ManualPromotionDuration() time.Duration {
	return 3 * 24 * time.Hour
}

func newTestServer(t *testing.T) (*echo.Echo, *testApp) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(domain.Tables...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	workdir := t.TempDir()
	images, err := imagestore.New(filepath.Join(workdir, "uploads"))
	if err != nil {
		t.Fatalf("imagestore: %v", err)
	}
	views, err := viewcount.Open(filepath.Join(workdir, "views.db"))
	if err != nil {
		t.Fatalf("viewcount: %v", err)
	}
	t.Cleanup(func() { views.Close() })

	cfg := *config.DefaultAppConfig
	cfg.System.Workdir = workdir

	repo := listing.NewGormProductRepository(db)
	gw := &fakeGateway{rejected: map[string]bool{}}
	ta := &testApp{
		db:        db,
		cfg:       &cfg,
		mgr:       app.NewConfigManager(db, time.Second),
		views:     views,
		images:    images,
		accounts:  accounts.NewService(db),
		listing:   listing.NewService(repo, nil, nil),
		messaging: messaging.NewService(db, nil),
		payments:  payment.NewService(db, gw, cfg.Payment, nil, nil),
		gateway:   gw,
	}

	webserver.Init(ta)
	Register()
	return webserver.Echo(), ta
}

func doJSON(e *echo.Echo, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doForm(e *echo.Echo, method, target string, form url.Values, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	if err := jsoniter.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

// registerAndLogin creates a marketplace user through the API and returns
// the session cookie header for follow-up requests.
func registerAndLogin(t *testing.T, e *echo.Echo, username string) map[string]string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"email":"%s@example.com","password":"secret1"}`, username, username)
	rec := doJSON(e, http.MethodPost, "/register", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("register set no session cookie")
	}
	parts := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return map[string]string{"Cookie": strings.Join(parts, "; ")}
}

func seedOperator(t *testing.T, ta *testApp, username, password string) {
	t.Helper()
	err := ta.db.Create(&domain.SysOpr{
		ID:       common.UUIDint64(),
		Username: username,
		Password: common.Sha256HashWithSalt(password, common.GetSecretSalt()),
		Level:    "super",
		Status:   common.ENABLED,
	}).Error
	if err != nil {
		t.Fatalf("seed operator: %v", err)
	}
}

// adminToken logs the operator in over HTTP and returns the bearer header.
func adminToken(t *testing.T, e *echo.Echo, username, password string) map[string]string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	rec := doJSON(e, http.MethodPost, "/api/login", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login status = %d, body %s", rec.Code, rec.Body.String())
	}
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("admin login returned no token")
	}
	return map[string]string{"Authorization": "Bearer " + token}
}
