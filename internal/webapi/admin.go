package webapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/fadakar85/bazaar/internal/app"
	"github.com/fadakar85/bazaar/internal/domain"
	"github.com/fadakar85/bazaar/internal/listing"
	"github.com/fadakar85/bazaar/internal/webserver"
	"github.com/fadakar85/bazaar/pkg/common"
	"github.com/fadakar85/bazaar/pkg/metrics"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"
	"github.com/nakabonne/tstorage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerAdminRoutes() {
	webserver.ApiPOST("/login", adminLogin)
	webserver.ApiGET("/products", adminListProducts)
	webserver.ApiDELETE("/products/:id", adminDeleteProduct)
	webserver.ApiPOST("/products/:id/promote", adminPromoteProduct)
	webserver.ApiDELETE("/products/:id/promote", adminRemovePromotion)
	webserver.ApiGET("/users", adminListUsers)
	webserver.ApiGET("/payments", adminListPayments)
	webserver.ApiGET("/stats", adminStats)
	webserver.ApiGET("/settings", adminGetSettings)
	webserver.ApiPOST("/settings", adminUpdateSettings)
	webserver.ApiGET("/oprlog", adminListOprLog)
	webserver.ApiGET("/metrics/:name", adminQueryMetrics)
}

type adminLoginPayload struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// adminLogin authenticates an operator and issues the bearer token the
// /api group requires.
func adminLogin(c echo.Context) error {
	var payload adminLoginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "درخواست نامعتبر است", nil)
	}

	var opr domain.SysOpr
	err := GetDB(c).Where("username = ? AND status = ?", payload.Username, common.ENABLED).First(&opr).Error
	if err != nil || opr.Password != common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt()) {
		zap.L().Warn("operator login rejected",
			zap.String("username", payload.Username),
			zap.String("ip", c.RealIP()))
		return fail(c, http.StatusUnauthorized, codeUnauthorized, "نام کاربری یا رمز عبور نامعتبر است", nil)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": opr.ID,
		"usr": opr.Username,
		"lvl": opr.Level,
		"exp": time.Now().Add(8 * time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(GetApp(c).Config().Web.JwtSecret))
	if err != nil {
		zap.L().Error("token signing failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}

	GetDB(c).Model(&domain.SysOpr{}).Where("id = ?", opr.ID).Update("last_login", time.Now())
	writeOprLog(c, opr.Username, "login", "operator signed in")
	return ok(c, echo.Map{"token": signed, "username": opr.Username, "level": opr.Level})
}

// oprName reads the operator identity from the verified token.
func oprName(c echo.Context) string {
	token, _ := c.Get("user").(*jwt.Token)
	if token == nil {
		return ""
	}
	claims, _ := token.Claims.(jwt.MapClaims)
	name, _ := claims["usr"].(string)
	return name
}

func writeOprLog(c echo.Context, name, action, desc string) {
	err := GetDB(c).Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   name,
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	}).Error
	if err != nil {
		zap.L().Warn("operator log write failed", zap.Error(err))
	}
}

// productSortColumns whitelists sortable columns, anything else falls back
// to created_at.
var productSortColumns = map[string]string{
	"created_at":     "created_at",
	"price":          "price",
	"name":           "name",
	"promoted_until": "promoted_until",
}

// adminProductQuery applies the shared admin filters: free text, category,
// and a created_at date range parsed leniently.
func adminProductQuery(c echo.Context) *gorm.DB {
	db := GetDB(c).Model(&domain.Product{})
	if q := listing.NormalizeTerm(c.QueryParam("q")); q != "" {
		pattern := "%" + q + "%"
		if db.Name() == "postgres" {
			db = db.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
		} else {
			db = db.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
		}
	}
	if cid := c.QueryParam("category"); cid != "" {
		db = db.Where("category_id = ?", cid)
	}
	if raw := c.QueryParam("startDate"); raw != "" {
		if t, err := dateparse.ParseLocal(raw); err == nil {
			db = db.Where("created_at >= ?", t)
		}
	}
	if raw := c.QueryParam("endDate"); raw != "" {
		if t, err := dateparse.ParseLocal(raw); err == nil {
			db = db.Where("created_at <= ?", t)
		}
	}
	return db
}

func adminListProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := adminProductQuery(c)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}

	order := "created_at DESC"
	if col, okCol := productSortColumns[c.QueryParam("sort")]; okCol {
		dir := "ASC"
		if strings.EqualFold(c.QueryParam("dir"), "desc") {
			dir = "DESC"
		}
		order = col + " " + dir
	}

	var rows []domain.Product
	err := db.Order(order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	return paged(c, rows, total, page, pageSize)
}

func adminDeleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "شناسه محصول نامعتبر است", nil)
	}

	appCtx := GetApp(c)
	var p domain.Product
	if err := GetDB(c).First(&p, id).Error; err != nil {
		return fail(c, http.StatusNotFound, codeNotFound, "محصول یافت نشد", nil)
	}
	if err := GetDB(c).Delete(&domain.Product{}, id).Error; err != nil {
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	if p.ImagePath != "" {
		_ = appCtx.Images().Delete(p.ImagePath)
	}
	_ = appCtx.Views().Delete(p.ID)

	writeOprLog(c, oprName(c), "product_delete", "removed product "+p.Name)
	return ok(c, echo.Map{"deleted": true})
}

// adminPromoteProduct grants the short manual boost regardless of who owns
// the listing.
func adminPromoteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "شناسه محصول نامعتبر است", nil)
	}

	appCtx := GetApp(c)
	p, err := appCtx.Listing().GrantPaidPromotion(c.Request().Context(), id, appCtx.ManualPromotionDuration())
	if err != nil {
		return failListingError(c, err)
	}
	writeOprLog(c, oprName(c), "product_promote", "manual boost for "+p.Name)
	return ok(c, p)
}

func adminRemovePromotion(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "شناسه محصول نامعتبر است", nil)
	}

	err = GetDB(c).Model(&domain.Product{}).Where("id = ?", id).
		Update("promoted_until", nil).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	writeOprLog(c, oprName(c), "product_unpromote", "cleared boost")
	return ok(c, echo.Map{"cleared": true})
}

func adminListUsers(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := GetDB(c).Model(&domain.User{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		pattern := "%" + q + "%"
		db = db.Where("username LIKE ? OR email LIKE ?", pattern, pattern)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	var rows []domain.User
	err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	return paged(c, rows, total, page, pageSize)
}

func adminListPayments(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := GetDB(c).Model(&domain.PaymentOrder{})
	if status := c.QueryParam("status"); status != "" {
		db = db.Where("status = ?", status)
	}
	if raw := c.QueryParam("startDate"); raw != "" {
		if t, err := dateparse.ParseLocal(raw); err == nil {
			db = db.Where("created_at >= ?", t)
		}
	}
	if raw := c.QueryParam("endDate"); raw != "" {
		if t, err := dateparse.ParseLocal(raw); err == nil {
			db = db.Where("created_at <= ?", t)
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	var rows []domain.PaymentOrder
	err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	return paged(c, rows, total, page, pageSize)
}

// adminStats summarises the marketplace: row counts, active boosts, paid
// revenue and a price distribution snapshot.
func adminStats(c echo.Context) error {
	db := GetDB(c)

	var productCount, userCount, messageCount, promotedCount, paidCount int64
	db.Model(&domain.Product{}).Count(&productCount)
	db.Model(&domain.User{}).Count(&userCount)
	db.Model(&domain.Message{}).Count(&messageCount)
	db.Model(&domain.Product{}).Where("promoted_until > ?", time.Now()).Count(&promotedCount)
	db.Model(&domain.PaymentOrder{}).Where("status = ?", domain.PaymentPaid).Count(&paidCount)

	var revenue int64
	db.Model(&domain.PaymentOrder{}).Where("status = ?", domain.PaymentPaid).
		Select("COALESCE(SUM(amount), 0)").Scan(&revenue)

	var prices []float64
	db.Model(&domain.Product{}).Pluck("price", &prices)
	priceMean, _ := stats.Mean(prices)
	priceMedian, _ := stats.Median(prices)
	priceP90, _ := stats.Percentile(prices, 90)

	return ok(c, echo.Map{
		"products":       productCount,
		"users":          userCount,
		"messages":       messageCount,
		"promoted":       promotedCount,
		"paid_orders":    paidCount,
		"revenue_rials":  revenue,
		"price_mean":     priceMean,
		"price_median":   priceMedian,
		"price_p90":      priceP90,
		"total_views":    GetApp(c).Views().Total(),
	})
}

func adminGetSettings(c echo.Context) error {
	var promo app.PromotionSettings
	if err := GetApp(c).ConfigMgr().DecodeCategory("promotion", &promo); err != nil {
		zap.L().Error("settings decode failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}

	var rows []domain.SysConfig
	if err := GetDB(c).Order("type, sort").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	return ok(c, echo.Map{"promotion": promo, "entries": rows})
}

type settingUpdatePayload struct {
	Type  string `json:"type" form:"type"`
	Name  string `json:"name" form:"name"`
	Value string `json:"value" form:"value"`
}

func adminUpdateSettings(c echo.Context) error {
	var payload settingUpdatePayload
	if err := c.Bind(&payload); err != nil || payload.Type == "" || payload.Name == "" {
		return fail(c, http.StatusBadRequest, codeInvalidRequest, "درخواست نامعتبر است", nil)
	}

	if err := GetApp(c).ConfigMgr().SetValue(payload.Type, payload.Name, payload.Value); err != nil {
		zap.L().Error("setting update failed",
			zap.String("type", payload.Type),
			zap.String("name", payload.Name),
			zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	writeOprLog(c, oprName(c), "setting_update", payload.Type+"."+payload.Name+"="+payload.Value)
	return ok(c, echo.Map{"updated": true})
}

// adminQueryMetrics reads one time series from the local metrics store.
// start/end are unix seconds, defaulting to the last hour.
func adminQueryMetrics(c echo.Context) error {
	end := time.Now().Unix()
	start := end - 3600
	if v, err := strconv.ParseInt(c.QueryParam("start"), 10, 64); err == nil {
		start = v
	}
	if v, err := strconv.ParseInt(c.QueryParam("end"), 10, 64); err == nil {
		end = v
	}

	points, err := metrics.Query(c.Param("name"), start, end)
	if err != nil {
		zap.L().Warn("metrics query failed", zap.String("metric", c.Param("name")), zap.Error(err))
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	if points == nil {
		points = []*tstorage.DataPoint{}
	}
	return ok(c, points)
}

func adminListOprLog(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := GetDB(c).Model(&domain.SysOprLog{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	var rows []domain.SysOprLog
	err := db.Order("opt_time DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, codeDatabaseError, "خطایی رخ داد، دوباره تلاش کنید", nil)
	}
	return paged(c, rows, total, page, pageSize)
}
