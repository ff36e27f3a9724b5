package dto

import (
	"net/http"
	"testing"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodePaymentProcessing, http.StatusUnprocessableEntity},
		{ErrCodeNoEligibleEarnings, http.StatusUnprocessableEntity},
		{ErrCodeBelowMinimumPayout, http.StatusUnprocessableEntity},
		{ErrCodeUnsupportedMethod, http.StatusBadRequest},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeDuplicateRequest, http.StatusConflict},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	t.Run("every domain code is mapped", func(t *testing.T) {
		for _, code := range []string{
			shared.CodeNotFound, shared.CodeAlreadyExists, shared.CodeValidation,
			shared.CodeInvalidInput, shared.CodeInvalidState, shared.CodeConcurrencyConflict,
			shared.CodeUnauthorized, shared.CodeForbidden, shared.CodePaymentProcessing,
			shared.CodeUnsupportedMethod, shared.CodeDuplicateRequest,
			shared.CodeNoEligibleEarnings, shared.CodeBelowMinimumPayout,
		} {
			normalized := NormalizeErrorCode(code)
			assert.NotEqual(t, code, normalized, code)
			_, ok := ErrorCodeHTTPStatus[normalized]
			assert.True(t, ok, "no status for %s", normalized)
		}
	})

	t.Run("api codes pass through", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode(ErrCodeNotFound))
		assert.Equal(t, "CUSTOM", NormalizeErrorCode("CUSTOM"))
	})
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 41, 2, 20)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Equal(t, 2, resp.Meta.Page)

	empty := NewSuccessResponseWithMeta([]int{}, 0, 0, 0)
	assert.Equal(t, 1, empty.Meta.Page)
	assert.Equal(t, 20, empty.Meta.PageSize)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1",
		[]ValidationDetail{{Field: "note", Message: "This field is required"}})
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 1)
}
