package middleware

import (
	"net/http"

	"github.com/affiliate/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RequireStaff rejects callers that are not staff. Must run after JWTAuth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		if !actor.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Staff access required", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
