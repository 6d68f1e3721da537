package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/Amanjain8795/matratv-connect-main-sub000/referral"
	"github.com/Amanjain8795/matratv-connect-main-sub000/web/db"
)

// testAuth stands in for the JWT middleware: the X-Test-User header names
// the profile to act as.
func testAuth(c *gin.Context) {
	var p db.UserProfile
	if err := db.DB.Where("user_ref = ?", c.GetHeader("X-Test-User")).First(&p).Error; err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Set("profile", p)
	c.Next()
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := gdb.AutoMigrate(&db.UserProfile{}, &db.ReferralCommission{}, &db.WithdrawalRequest{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db.DB = gdb
	Setup(referral.New(gdb, nil))

	r := gin.New()
	r.POST("/trigger", Trigger)
	r.POST("/profiles", CreateProfile)
	r.POST("/profiles/:user_ref/registration-number", AssignRegistrationNumber)
	r.GET("/me", testAuth, Me)
	r.GET("/me/stats", testAuth, MyStats)
	r.GET("/me/referrals", testAuth, MyReferrals)
	r.GET("/me/referrals/code", testAuth, MyReferralCode)
	r.GET("/me/referrals/qr", testAuth, ReferralQR)
	r.GET("/me/commissions", testAuth, MyCommissions)
	r.POST("/withdrawals", testAuth, CreateWithdrawal)
	r.GET("/withdrawals", testAuth, MyWithdrawals)
	r.GET("/admin/withdrawals", AdminListWithdrawals)
	r.POST("/admin/withdrawals/:id/approve", ApproveWithdrawal)
	r.POST("/admin/withdrawals/:id/reject", RejectWithdrawal)
	r.GET("/admin/reports/commissions", CommissionReport)
	return r, gdb
}

func doJSON(t *testing.T, r *gin.Engine, method, path, user string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(b)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseJSON(t *testing.T, body *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v", err)
	}
	return result
}

func createProfileHTTP(t *testing.T, r *gin.Engine, userRef, code string) map[string]interface{} {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/profiles", "", map[string]interface{}{
		"user_ref":      userRef,
		"full_name":     "User " + userRef,
		"email":         userRef + "@example.com",
		"referral_code": code,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create %s: status %d, body %s", userRef, w.Code, w.Body.String())
	}
	return parseJSON(t, w.Body)
}

func TestProfileAndTriggerFlow(t *testing.T) {
	r, _ := setupRouter(t)

	a := createProfileHTTP(t, r, "a", "")
	code, _ := a["referral_code"].(string)
	if !strings.HasPrefix(code, "MAT") {
		t.Errorf("expected MAT-prefixed referral code, got %v", a["referral_code"])
	}
	if a["registration_number"] != "MAT1001" {
		t.Errorf("expected registration number MAT1001, got %v", a["registration_number"])
	}

	createProfileHTTP(t, r, "b", code)

	w := doJSON(t, r, http.MethodPost, "/trigger", "", map[string]interface{}{
		"user_ref":     "b",
		"trigger_type": "order_purchase",
		"amount":       100000,
		"order_id":     "ord-1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("trigger: status %d, body %s", w.Code, w.Body.String())
	}
	resp := parseJSON(t, w.Body)
	if resp["levels_processed"].(float64) != 1 {
		t.Errorf("expected 1 level processed, got %v", resp["levels_processed"])
	}
	if resp["stopped_reason"] != "chain-end" {
		t.Errorf("expected chain-end, got %v", resp["stopped_reason"])
	}

	// stats reflect the credit
	w = doJSON(t, r, http.MethodGet, "/me/stats", "a", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: status %d", w.Code)
	}
	stats := parseJSON(t, w.Body)
	if stats["total_earnings"].(float64) != 10000 {
		t.Errorf("expected total_earnings 10000, got %v", stats["total_earnings"])
	}
	if stats["referral_count"].(float64) != 1 {
		t.Errorf("expected referral_count 1, got %v", stats["referral_count"])
	}

	// the same trigger again is a no-op
	w = doJSON(t, r, http.MethodPost, "/trigger", "", map[string]interface{}{
		"user_ref":     "b",
		"trigger_type": "order_purchase",
		"amount":       100000,
		"order_id":     "ord-1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("repeat trigger: status %d", w.Code)
	}
	resp = parseJSON(t, w.Body)
	if resp["stopped_reason"] != "already-processed" {
		t.Errorf("expected already-processed, got %v", resp["stopped_reason"])
	}

	// and the commission list shows exactly one row
	w = doJSON(t, r, http.MethodGet, "/me/commissions", "a", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("commissions: status %d", w.Code)
	}
	list := parseJSON(t, w.Body)["commissions"].([]interface{})
	if len(list) != 1 {
		t.Fatalf("expected 1 commission, got %d", len(list))
	}
	row := list[0].(map[string]interface{})
	if row["amount"].(float64) != 10000 || row["level"].(float64) != 1 {
		t.Errorf("unexpected commission row: %v", row)
	}
}

func TestTriggerRejectsBadInput(t *testing.T) {
	r, _ := setupRouter(t)
	createProfileHTTP(t, r, "a", "")

	w := doJSON(t, r, http.MethodPost, "/trigger", "", map[string]interface{}{
		"user_ref":     "a",
		"trigger_type": "bonus_rain",
		"amount":       100,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad trigger type: expected 400, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/trigger", "", map[string]interface{}{
		"user_ref":     "ghost",
		"trigger_type": "order_purchase",
		"amount":       100,
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown user: expected 404, got %d", w.Code)
	}
}

func TestSubscriptionTriggerActivates(t *testing.T) {
	r, _ := setupRouter(t)
	a := createProfileHTTP(t, r, "a", "")
	createProfileHTTP(t, r, "b", a["referral_code"].(string))

	w := doJSON(t, r, http.MethodPost, "/trigger", "", map[string]interface{}{
		"user_ref":     "b",
		"trigger_type": "subscription_activation",
		"amount":       50000,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("trigger: status %d, body %s", w.Code, w.Body.String())
	}
	if got := parseJSON(t, w.Body)["levels_processed"].(float64); got != 1 {
		t.Errorf("expected 1 level, got %v", got)
	}

	w = doJSON(t, r, http.MethodGet, "/me", "b", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: status %d", w.Code)
	}
	if got := parseJSON(t, w.Body)["subscription_status"]; got != "active" {
		t.Errorf("expected active subscription, got %v", got)
	}
}

func TestSubscriptionTriggerBadAmountDoesNotActivate(t *testing.T) {
	r, _ := setupRouter(t)
	a := createProfileHTTP(t, r, "a", "")
	createProfileHTTP(t, r, "b", a["referral_code"].(string))

	w := doJSON(t, r, http.MethodPost, "/trigger", "", map[string]interface{}{
		"user_ref":     "b",
		"trigger_type": "subscription_activation",
		"amount":       0,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("zero amount: expected 400, got %d", w.Code)
	}

	// the rejected event must leave the subscription untouched
	w = doJSON(t, r, http.MethodGet, "/me", "b", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: status %d", w.Code)
	}
	if got := parseJSON(t, w.Body)["subscription_status"]; got != "none" {
		t.Errorf("expected subscription still none, got %v", got)
	}
}

func TestCreateProfileConflicts(t *testing.T) {
	r, _ := setupRouter(t)
	createProfileHTTP(t, r, "a", "")

	w := doJSON(t, r, http.MethodPost, "/profiles", "", map[string]interface{}{
		"user_ref":  "a",
		"full_name": "Again",
		"email":     "again@example.com",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate user_ref: expected 409, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/profiles", "", map[string]interface{}{
		"user_ref":      "b",
		"full_name":     "B",
		"email":         "b@example.com",
		"referral_code": "MATXXXXX",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown code: expected 404, got %d", w.Code)
	}
}

func TestAssignRegistrationNumberIsIdempotent(t *testing.T) {
	r, _ := setupRouter(t)
	a := createProfileHTTP(t, r, "a", "")

	w := doJSON(t, r, http.MethodPost, "/profiles/a/registration-number", "", map[string]interface{}{})
	if w.Code != http.StatusOK {
		t.Fatalf("assign: status %d, body %s", w.Code, w.Body.String())
	}
	if got := parseJSON(t, w.Body)["registration_number"]; got != a["registration_number"] {
		t.Errorf("expected %v again, got %v", a["registration_number"], got)
	}

	w = doJSON(t, r, http.MethodPost, "/profiles/ghost/registration-number", "", map[string]interface{}{})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown profile: expected 404, got %d", w.Code)
	}
}

func TestWithdrawalFlowOverHTTP(t *testing.T) {
	r, gdb := setupRouter(t)
	createProfileHTTP(t, r, "a", "")
	if err := gdb.Model(&db.UserProfile{}).Where("user_ref = ?", "a").
		Update("available_balance", int64(50000)).Error; err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	// too big first: 402 and no hold
	w := doJSON(t, r, http.MethodPost, "/withdrawals", "a", map[string]interface{}{
		"amount":      60000,
		"destination": "upi:a@bank",
	})
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("overdraw: expected 402, got %d", w.Code)
	}
	resp := parseJSON(t, w.Body)
	if resp["available"].(float64) != 50000 || resp["requested"].(float64) != 60000 {
		t.Errorf("expected available/requested in body, got %v", resp)
	}

	w = doJSON(t, r, http.MethodPost, "/withdrawals", "a", map[string]interface{}{
		"amount":      20000,
		"destination": "upi:a@bank",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create: status %d, body %s", w.Code, w.Body.String())
	}
	created := parseJSON(t, w.Body)
	if created["status"] != "pending" {
		t.Errorf("expected pending, got %v", created["status"])
	}
	id := int(created["id"].(float64))

	w = doJSON(t, r, http.MethodGet, "/withdrawals", "a", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list mine: status %d", w.Code)
	}
	if mine := parseJSON(t, w.Body)["withdrawals"].([]interface{}); len(mine) != 1 {
		t.Errorf("expected 1 withdrawal, got %d", len(mine))
	}

	w = doJSON(t, r, http.MethodGet, "/admin/withdrawals?status=pending", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin list: status %d", w.Code)
	}
	if queue := parseJSON(t, w.Body)["withdrawals"].([]interface{}); len(queue) != 1 {
		t.Errorf("expected 1 pending, got %d", len(queue))
	}

	w = doJSON(t, r, http.MethodPost, "/admin/withdrawals/"+strconv.Itoa(id)+"/approve", "", map[string]interface{}{
		"admin_id": "admin-1",
		"notes":    "paid",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("approve: status %d, body %s", w.Code, w.Body.String())
	}
	if got := parseJSON(t, w.Body)["status"]; got != "approved" {
		t.Errorf("expected approved, got %v", got)
	}

	// approving twice conflicts
	w = doJSON(t, r, http.MethodPost, "/admin/withdrawals/"+strconv.Itoa(id)+"/approve", "", map[string]interface{}{
		"admin_id": "admin-2",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("double approve: expected 409, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/me/stats", "a", nil)
	stats := parseJSON(t, w.Body)
	if stats["available_balance"].(float64) != 30000 {
		t.Errorf("expected balance 30000, got %v", stats["available_balance"])
	}
	if stats["withdrawn_amount"].(float64) != 20000 {
		t.Errorf("expected withdrawn 20000, got %v", stats["withdrawn_amount"])
	}
}

func TestReferralCodeAndQR(t *testing.T) {
	r, _ := setupRouter(t)
	a := createProfileHTTP(t, r, "a", "")
	code := a["referral_code"].(string)

	w := doJSON(t, r, http.MethodGet, "/me/referrals/code", "a", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code: status %d", w.Code)
	}
	resp := parseJSON(t, w.Body)
	if resp["referral_code"] != code {
		t.Errorf("expected code %s, got %v", code, resp["referral_code"])
	}
	link, _ := resp["link"].(string)
	if !strings.Contains(link, "ref="+code) {
		t.Errorf("expected the link to carry the code, got %s", link)
	}

	w = doJSON(t, r, http.MethodGet, "/me/referrals/qr", "a", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("qr: status %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %s", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("expected a PNG body")
	}
}

func TestMyReferralsTreeOverHTTP(t *testing.T) {
	r, _ := setupRouter(t)
	a := createProfileHTTP(t, r, "a", "")
	b := createProfileHTTP(t, r, "b", a["referral_code"].(string))
	createProfileHTTP(t, r, "c", b["referral_code"].(string))

	w := doJSON(t, r, http.MethodGet, "/me/referrals", "a", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("referrals: status %d", w.Code)
	}
	if got := parseJSON(t, w.Body)["count"].(float64); got != 2 {
		t.Errorf("expected 2 members, got %v", got)
	}

	w = doJSON(t, r, http.MethodGet, "/me/referrals?levels=1", "a", nil)
	if got := parseJSON(t, w.Body)["count"].(float64); got != 1 {
		t.Errorf("expected 1 member within 1 level, got %v", got)
	}

	w = doJSON(t, r, http.MethodGet, "/me/referrals?levels=zero", "a", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad levels: expected 400, got %d", w.Code)
	}
}

func TestCommissionReportDownloads(t *testing.T) {
	r, _ := setupRouter(t)
	a := createProfileHTTP(t, r, "a", "")
	createProfileHTTP(t, r, "b", a["referral_code"].(string))
	doJSON(t, r, http.MethodPost, "/trigger", "", map[string]interface{}{
		"user_ref":     "b",
		"trigger_type": "order_purchase",
		"amount":       100000,
	})

	w := doJSON(t, r, http.MethodGet, "/admin/reports/commissions", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("report: status %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("expected attachment disposition, got %s", cd)
	}
	if w.Body.Len() == 0 {
		t.Error("expected a workbook body")
	}
}
