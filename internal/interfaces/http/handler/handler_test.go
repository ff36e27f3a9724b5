package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	earningapp "github.com/affiliate/backend/internal/application/earning"
	partnerapp "github.com/affiliate/backend/internal/application/partner"
	payoutapp "github.com/affiliate/backend/internal/application/payout"
	referralapp "github.com/affiliate/backend/internal/application/referral"
	"github.com/affiliate/backend/internal/infrastructure/cache"
	"github.com/affiliate/backend/internal/infrastructure/payment"
	"github.com/affiliate/backend/internal/infrastructure/persistence"
	"github.com/affiliate/backend/internal/interfaces/http/middleware"
	"github.com/affiliate/backend/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Test-only identity headers. The JWT middleware is covered in the middleware package.
const (
	headerUser  = "X-Test-User"
	headerStaff = "X-Test-Staff"
)

type testServer struct {
	engine *gin.Engine
}

// newTestServer wires real services over SQLite and registers the API routes
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	txScope := persistence.NewGormTransactionScope(db)
	profileRepo := persistence.NewGormPartnerProfileRepository(db)
	productRepo := persistence.NewGormProductRepository(db)

	profiles := partnerapp.NewProfileService(profileRepo)
	products := referralapp.NewProductService(productRepo)
	referrals := referralapp.NewReferralService(txScope,
		persistence.NewGormReferralRepository(db),
		persistence.NewGormReferralTimelineRepository(db),
		productRepo, profileRepo)
	earnings := earningapp.NewEarningService(txScope, persistence.NewGormEarningRepository(db))

	processors, err := payment.NewDefaultRegistry(nil, zap.NewNop())
	require.NoError(t, err)
	payouts := payoutapp.NewPayoutService(txScope, persistence.NewGormPayoutRepository(db), processors)
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	payouts.SetIdempotencyStore(store, time.Hour)
	settings := payoutapp.NewSettingsService(txScope, persistence.NewGormPayoutSettingRepository(db))

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID(), testActor(profiles))

	partnerH := NewPartnerHandler(profiles)
	productH := NewProductHandler(products)
	referralH := NewReferralHandler(referrals)
	earningH := NewEarningHandler(earnings)
	payoutH := NewPayoutHandler(payouts)
	settingsH := NewPayoutSettingsHandler(settings)

	api := engine.Group("/api/v1")
	api.POST("/partners", partnerH.Register)
	api.GET("/partners/me", partnerH.Me)
	api.GET("/partners", partnerH.List)
	api.GET("/partners/:id", partnerH.Get)
	api.GET("/products", productH.List)
	api.POST("/products", productH.Create)
	api.POST("/referrals", referralH.Submit)
	api.GET("/referrals", referralH.List)
	api.GET("/referrals/stats", referralH.Stats)
	api.GET("/referrals/:id", referralH.Get)
	api.PATCH("/referrals/:id/status", referralH.UpdateStatus)
	api.GET("/referrals/:id/timeline", referralH.Timeline)
	api.POST("/referrals/:id/timeline", referralH.AddTimelineNote)
	api.POST("/referrals/:id/earning", referralH.CreateEarning)
	api.POST("/earnings", earningH.Create)
	api.GET("/earnings", earningH.List)
	api.GET("/earnings/summary", earningH.Summary)
	api.GET("/earnings/:id", earningH.Get)
	api.POST("/earnings/:id/approve", earningH.Approve)
	api.POST("/earnings/:id/reject", earningH.Reject)
	api.POST("/earnings/:id/cancel", earningH.Cancel)
	api.POST("/payouts", payoutH.Create)
	api.GET("/payouts", payoutH.List)
	api.GET("/payouts/summary", payoutH.Summary)
	api.GET("/payouts/:id", payoutH.Get)
	api.GET("/payouts/:id/timeline", payoutH.Timeline)
	api.POST("/payouts/:id/process", payoutH.Process)
	api.POST("/payouts/:id/complete", payoutH.Complete)
	api.POST("/payouts/:id/fail", payoutH.Fail)
	api.POST("/payouts/:id/cancel", payoutH.Cancel)
	api.GET("/payout-settings", settingsH.Get)
	api.PUT("/payout-settings", settingsH.Update)
	api.GET("/payout-settings/methods", settingsH.Methods)
	api.GET("/payout-settings/schedules", settingsH.Schedules)

	return &testServer{engine: engine}
}

// testActor resolves the caller from test headers the same way the JWT middleware does
func testActor(profiles *partnerapp.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(headerUser)
		if userID == "" {
			c.Next()
			return
		}
		actor, err := profiles.ResolveActor(c.Request.Context(), userID, c.GetHeader(headerStaff) == "true")
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Set(middleware.ActorKey, actor)
		c.Next()
	}
}

type caller struct {
	userID  string
	isStaff bool
}

var (
	anonymous = caller{}
	staff     = caller{userID: "admin", isStaff: true}
)

func partnerUser(id string) caller { return caller{userID: id} }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
		Details   []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	} `json:"meta"`
}

func (s *testServer) do(t *testing.T, who caller, method, path string, body any, headers ...string) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if who.userID != "" {
		req.Header.Set(headerUser, who.userID)
		if who.isStaff {
			req.Header.Set(headerStaff, "true")
		}
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}
