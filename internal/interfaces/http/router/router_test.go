package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/affiliate/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func get(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestRouter_Setup(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", ok("up"))

	payouts := NewDomainGroup("payouts", "/payouts").
		GET("", ok("list")).
		GET("/:id", ok("one")).
		POST("/:id/cancel", ok("cancelled"))
	settings := NewDomainGroup("payout-settings", "/payout-settings").
		PUT("", ok("saved")).
		PATCH("/x", ok("patched"))

	tagged := WithAPIMiddleware(func(c *gin.Context) {
		c.Header("X-API", "1")
		c.Next()
	})
	NewRouter(engine, tagged).Register(payouts, settings).Setup()

	tests := []struct {
		method, target, body string
	}{
		{http.MethodGet, "/api/v1/payouts", "list"},
		{http.MethodGet, "/api/v1/payouts/PY-1A2B3C4D", "one"},
		{http.MethodPost, "/api/v1/payouts/PY-1A2B3C4D/cancel", "cancelled"},
		{http.MethodPut, "/api/v1/payout-settings", "saved"},
		{http.MethodPatch, "/api/v1/payout-settings/x", "patched"},
	}
	for _, tt := range tests {
		w := get(engine, tt.method, tt.target)
		assert.Equal(t, http.StatusOK, w.Code, tt.target)
		assert.Equal(t, tt.body, w.Body.String(), tt.target)
		assert.Equal(t, "1", w.Header().Get("X-API"), tt.target)
	}

	w := get(engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-API"))
}

func TestRouter_Routes(t *testing.T) {
	g := NewDomainGroup("earnings", "/earnings").
		GET("", ok("")).
		POST("/:id/approve", ok(""))
	assert.Equal(t, "earnings", g.Name())

	r := NewRouter(gin.New()).Register(g)
	assert.Equal(t, []Route{
		{Method: http.MethodGet, Path: "/earnings"},
		{Method: http.MethodPost, Path: "/earnings/:id/approve"},
	}, r.Routes())
	assert.Equal(t, "POST /earnings/:id/approve", r.Routes()[1].String())
}

func stubHandlers() Handlers {
	return Handlers{
		System:         &handler.SystemHandler{},
		Partner:        &handler.PartnerHandler{},
		Product:        &handler.ProductHandler{},
		Referral:       &handler.ReferralHandler{},
		Earning:        &handler.EarningHandler{},
		Payout:         &handler.PayoutHandler{},
		PayoutSettings: &handler.PayoutSettingsHandler{},
	}
}

func TestDomainGroups_RouteTable(t *testing.T) {
	r := NewRouter(gin.New()).Register(DomainGroups(stubHandlers())...)

	seen := make(map[string]bool)
	for _, route := range r.Routes() {
		assert.False(t, seen[route.String()], "duplicate route %s", route)
		seen[route.String()] = true
	}

	for _, want := range []string{
		"POST /partners",
		"GET /partners/me",
		"PATCH /partners/:id/status",
		"POST /referrals",
		"GET /referrals/stats",
		"PATCH /referrals/:id/status",
		"POST /referrals/:id/timeline",
		"POST /referrals/:id/earning",
		"GET /earnings/summary",
		"POST /earnings/:id/mark-paid",
		"POST /payouts",
		"POST /payouts/:id/process",
		"POST /payouts/:id/cancel",
		"GET /payout-settings/methods",
		"PUT /payout-settings",
	} {
		assert.True(t, seen[want], "missing route %s", want)
	}

	require.NotPanics(t, r.Setup, "static and parameter segments must not conflict")
}
