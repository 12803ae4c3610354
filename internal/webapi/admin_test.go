package webapi

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/fadakar85/bazaar/internal/domain"
)

func TestAdminLoginIssuesToken(t *testing.T) {
	e, ta := newTestServer(t)
	seedOperator(t, ta, "admin", "bazaar")

	// wrong password is rejected
	rec := doJSON(e, http.MethodPost, "/api/login", `{"username":"admin","password":"nope"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad admin login status = %d, want 401", rec.Code)
	}

	headers := adminToken(t, e, "admin", "bazaar")

	// protected route without a token
	rec = doJSON(e, http.MethodGet, "/api/products", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("tokenless /api/products status = %d, want 401", rec.Code)
	}
	rec = doJSON(e, http.MethodGet, "/api/products", "", headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("/api/products status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestAdminProductListFiltersAndPaging(t *testing.T) {
	e, ta := newTestServer(t)
	seedOperator(t, ta, "admin", "bazaar")
	headers := adminToken(t, e, "admin", "bazaar")
	seller := registerAndLogin(t, e, "mahsa")

	names := []string{"فرش دستباف", "قالیچه", "فرش ماشینی"}
	for _, n := range names {
		form := url.Values{}
		form.Set("name", n)
		form.Set("price", "100")
		if rec := doForm(e, http.MethodPost, "/products", form, seller); rec.Code != http.StatusOK {
			t.Fatalf("create %s status = %d", n, rec.Code)
		}
	}

	rec := doJSON(e, http.MethodGet, "/api/products?q="+url.QueryEscape("فرش"), "", headers)
	body := decodeBody(t, rec)
	if total := body["total"].(float64); total != 2 {
		t.Fatalf("filtered total = %v, want 2", total)
	}

	rec = doJSON(e, http.MethodGet, "/api/products?perPage=2&page=2", "", headers)
	body = decodeBody(t, rec)
	if got := len(body["data"].([]interface{})); got != 1 {
		t.Fatalf("page 2 rows = %d, want 1", got)
	}
	if body["total"].(float64) != 3 {
		t.Fatalf("total = %v, want 3", body["total"])
	}
}

func TestAdminManualBoost(t *testing.T) {
	e, ta := newTestServer(t)
	seedOperator(t, ta, "admin", "bazaar")
	headers := adminToken(t, e, "admin", "bazaar")
	seller := registerAndLogin(t, e, "dariush")

	form := url.Values{}
	form.Set("name", "کتابخانه چوبی")
	form.Set("price", "700000")
	rec := doForm(e, http.MethodPost, "/products", form, seller)
	id := decodeBody(t, rec)["data"].(map[string]interface{})["id"].(string)

	// manual boost works without owning the listing
	rec = doJSON(e, http.MethodPost, "/api/products/"+id+"/promote", "", headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("manual promote status = %d, body %s", rec.Code, rec.Body.String())
	}

	var p domain.Product
	ta.db.First(&p)
	if p.PromotedUntil == nil {
		t.Fatal("manual boost not applied")
	}
	want := time.Now().Add(3 * 24 * time.Hour)
	if diff := p.PromotedUntil.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("manual boost window = %v, want about 3 days", p.PromotedUntil)
	}

	rec = doJSON(e, http.MethodDelete, "/api/products/"+id+"/promote", "", headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin unpromote status = %d", rec.Code)
	}
	// reload into a fresh struct: a NULL column leaves a reused pointer
	// field untouched
	var cleared domain.Product
	ta.db.First(&cleared, p.ID)
	if cleared.PromotedUntil != nil {
		t.Fatal("boost not cleared")
	}

	// operator actions are audited
	var logs int64
	ta.db.Model(&domain.SysOprLog{}).Count(&logs)
	if logs < 3 {
		t.Fatalf("operator log rows = %d, want at least 3", logs)
	}
}

func TestAdminStats(t *testing.T) {
	e, ta := newTestServer(t)
	seedOperator(t, ta, "admin", "bazaar")
	headers := adminToken(t, e, "admin", "bazaar")
	seller := registerAndLogin(t, e, "shadi")

	for _, price := range []string{"100", "200", "300"} {
		form := url.Values{}
		form.Set("name", "کالا "+price)
		form.Set("price", price)
		doForm(e, http.MethodPost, "/products", form, seller)
	}

	rec := doJSON(e, http.MethodGet, "/api/stats", "", headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d, body %s", rec.Code, rec.Body.String())
	}
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	if data["products"].(float64) != 3 {
		t.Fatalf("products = %v, want 3", data["products"])
	}
	if data["users"].(float64) != 1 {
		t.Fatalf("users = %v, want 1", data["users"])
	}
	if data["price_mean"].(float64) != 200 {
		t.Fatalf("price_mean = %v, want 200", data["price_mean"])
	}
	if data["price_median"].(float64) != 200 {
		t.Fatalf("price_median = %v, want 200", data["price_median"])
	}
}

func TestAdminSettingsRoundTrip(t *testing.T) {
	e, ta := newTestServer(t)
	seedOperator(t, ta, "admin", "bazaar")
	headers := adminToken(t, e, "admin", "bazaar")

	rec := doJSON(e, http.MethodPost, "/api/settings",
		`{"type":"promotion","name":"DefaultDays","value":"14"}`, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("settings update status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(e, http.MethodGet, "/api/settings", "", headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("settings get status = %d", rec.Code)
	}
	promo := decodeBody(t, rec)["data"].(map[string]interface{})["promotion"].(map[string]interface{})
	if promo["default_days"].(float64) != 14 {
		t.Fatalf("default_days = %v, want 14", promo["default_days"])
	}
	if ta.mgr.GetInt64("promotion", "DefaultDays") != 14 {
		t.Fatal("config manager did not pick up the new value")
	}
}

func TestAdminMetricsQuery(t *testing.T) {
	e, ta := newTestServer(t)
	seedOperator(t, ta, "admin", "bazaar")
	headers := adminToken(t, e, "admin", "bazaar")

	rec := doJSON(e, http.MethodGet, "/api/metrics/http_requests_total", "", headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics query status = %d, body %s", rec.Code, rec.Body.String())
	}
	if _, isArray := decodeBody(t, rec)["data"].([]interface{}); !isArray {
		t.Fatalf("metrics data is not an array: %s", rec.Body.String())
	}

	rec = doJSON(e, http.MethodGet, "/api/metrics/http_requests_total", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("tokenless metrics query status = %d, want 401", rec.Code)
	}
}

func TestAdminExports(t *testing.T) {
	e, ta := newTestServer(t)
	seedOperator(t, ta, "admin", "bazaar")
	headers := adminToken(t, e, "admin", "bazaar")
	seller := registerAndLogin(t, e, "kian")

	form := url.Values{}
	form.Set("name", "صندلی اداری")
	form.Set("price", "450000")
	doForm(e, http.MethodPost, "/products", form, seller)

	rec := doJSON(e, http.MethodGet, "/api/products/export/csv", "", headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("csv export status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "products.csv") {
		t.Fatalf("csv disposition = %q", got)
	}
	csvBody := rec.Body.String()
	if !strings.Contains(csvBody, "id,name,price") || !strings.Contains(csvBody, "صندلی اداری") {
		t.Fatalf("csv body missing expected content: %q", csvBody)
	}

	rec = doJSON(e, http.MethodGet, "/api/products/export/xlsx", "", headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("xlsx export status = %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("xlsx export is empty")
	}
}
