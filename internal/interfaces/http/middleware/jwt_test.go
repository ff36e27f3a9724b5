package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/infrastructure/auth"
	"github.com/affiliate/backend/internal/infrastructure/config"
	"github.com/affiliate/backend/internal/infrastructure/logger"
	"github.com/affiliate/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResolver struct {
	partners map[string]int64
	err      error
}

func (r stubResolver) ResolveActor(_ context.Context, userID string, isStaff bool) (shared.Actor, error) {
	if r.err != nil {
		return shared.Actor{}, r.err
	}
	actor := shared.Actor{ActorID: userID, IsStaff: isStaff}
	if id, ok := r.partners[userID]; ok {
		actor.PartnerID = &id
	}
	return actor, nil
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret: "test-secret-key-at-least-32-chars",
		Issuer: "test-issuer",
	})
}

func newAuthRouter(svc *auth.JWTService, resolver ActorResolver) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(JWTAuth(JWTMiddlewareConfig{
		JWTService: svc,
		Resolver:   resolver,
		SkipPaths:  []string{"/health"},
	}))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/me", func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"actor":       actor.ActorID,
			"staff":       actor.IsStaff,
			"partner":     actor.PartnerID,
			"claim_user":  GetJWTUserID(c),
			"ctx_user":    logger.GetUserID(c.Request.Context()),
			"ctx_partner": logger.GetPartnerID(c.Request.Context()),
		})
	})
	return router
}

func doAuth(router *gin.Engine, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set(AuthHeaderKey, header)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.NotEmpty(t, resp.Error.RequestID)
	return resp.Error.Code
}

func TestJWTAuth_ResolvesActor(t *testing.T) {
	svc := newTestJWTService()
	router := newAuthRouter(svc, stubResolver{partners: map[string]int64{"u-7": 7}})

	token, err := svc.IssueToken(auth.IssueInput{UserID: "u-7", Username: "ada"})
	require.NoError(t, err)

	rec := doAuth(router, "/me", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Actor     string `json:"actor"`
		Staff     bool   `json:"staff"`
		Partner   *int64 `json:"partner"`
		ClaimUser string `json:"claim_user"`
		CtxUser   string `json:"ctx_user"`
		CtxPart   int64  `json:"ctx_partner"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u-7", body.Actor)
	assert.False(t, body.Staff)
	require.NotNil(t, body.Partner)
	assert.Equal(t, int64(7), *body.Partner)
	assert.Equal(t, "u-7", body.ClaimUser)
	assert.Equal(t, "u-7", body.CtxUser)
	assert.Equal(t, int64(7), body.CtxPart)
}

func TestJWTAuth_StaffWithoutPartner(t *testing.T) {
	svc := newTestJWTService()
	router := newAuthRouter(svc, stubResolver{})

	token, err := svc.IssueToken(auth.IssueInput{UserID: "admin", IsStaff: true})
	require.NoError(t, err)

	rec := doAuth(router, "/me", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"staff":true`)
	assert.Contains(t, rec.Body.String(), `"partner":null`)
	assert.Contains(t, rec.Body.String(), `"ctx_partner":0`)
}

func TestJWTAuth_Rejections(t *testing.T) {
	svc := newTestJWTService()
	router := newAuthRouter(svc, stubResolver{})

	past := time.Now().Add(-2 * time.Hour)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		},
		UserID: "u-1",
	}).SignedString([]byte("test-secret-key-at-least-32-chars"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeUnauthorized},
		{"wrong scheme", "Basic abc", dto.ErrCodeUnauthorized},
		{"empty token", "Bearer ", dto.ErrCodeUnauthorized},
		{"garbage token", "Bearer not-a-jwt", dto.ErrCodeTokenInvalid},
		{"expired token", "Bearer " + expired, dto.ErrCodeTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doAuth(router, "/me", tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestJWTAuth_SkipPaths(t *testing.T) {
	router := newAuthRouter(newTestJWTService(), stubResolver{})
	assert.Equal(t, http.StatusOK, doAuth(router, "/health", "").Code)
}

func TestJWTAuth_ResolverFailure(t *testing.T) {
	svc := newTestJWTService()
	router := newAuthRouter(svc, stubResolver{err: assert.AnError})

	token, err := svc.IssueToken(auth.IssueInput{UserID: "u-7"})
	require.NoError(t, err)

	rec := doAuth(router, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, dto.ErrCodeInternal, errorCode(t, rec))
}
