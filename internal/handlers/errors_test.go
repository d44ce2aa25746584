package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-authgate/realmgate/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{services.ErrInvalidAuthCode, 400, "invalid or expired authorization code"},
		{fmt.Errorf("exchange: %w", services.ErrPKCEVerificationFailed), 400, "PKCE verification failed"},
		{services.ErrInvalidAccessToken, 401, "invalid access token"},
		{services.ErrUserNotFound, 401, "invalid access token"},
		{realmNotFound("x"), 404, "realm 'x' not found"},
		{services.ErrNoSigningKey, 500, "internal server error"},
		{errors.New("disk on fire"), 500, "internal server error"},
	}

	for _, tt := range tests {
		ae := classify(tt.err)
		assert.Equal(t, tt.status, ae.kind.status(), tt.err.Error())
		assert.Equal(t, tt.message, ae.message)
	}
}

func TestRespondError_HidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, errors.New("pq: password authentication failed for user admin"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}
