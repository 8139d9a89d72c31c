package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mmtukut/propabridge-2/internal/api/handlers"
	"github.com/mmtukut/propabridge-2/internal/auth"
	"github.com/mmtukut/propabridge-2/internal/config"
	"github.com/mmtukut/propabridge-2/internal/models"
)

func authTestConfig() *config.Config {
	return &config.Config{
		JwtSecret: "test-secret",
		JwtTTL:    time.Hour,
	}
}

func setupAuthRouter(otp *MockOTPService, users *MockUserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewRestAuthHandler(otp, users, authTestConfig())
	r := gin.New()
	r.POST("/v1/auth/otp/request", handler.RequestOTP)
	r.POST("/v1/auth/otp/verify", handler.VerifyOTP)
	return r
}

func TestRequestOTP_NormalizesPhone(t *testing.T) {
	otp := new(MockOTPService)
	otp.On("RequestOTP", mock.Anything, "+2348012345678").Return(nil)
	r := setupAuthRouter(otp, new(MockUserService))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/otp/request",
		strings.NewReader(`{"phone": "0801 234 5678"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	otp.AssertExpectations(t)
}

func TestRequestOTP_BadPhone(t *testing.T) {
	r := setupAuthRouter(new(MockOTPService), new(MockUserService))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/otp/request",
		strings.NewReader(`{"phone": "12345"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyOTP_IssuesToken(t *testing.T) {
	otp := new(MockOTPService)
	otp.On("VerifyOTP", mock.Anything, "+2348012345678", "123456").Return(true, nil)

	users := new(MockUserService)
	users.On("FindOrCreateByPhone", mock.Anything, "+2348012345678").Return(&models.User{
		ID:    42,
		Phone: "+2348012345678",
	}, nil)

	r := setupAuthRouter(otp, users)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/otp/verify",
		strings.NewReader(`{"phone": "08012345678", "code": "123456"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(42), body.User.ID)

	claims, err := auth.ValidateJWT(body.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "+2348012345678", claims.Phone)
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	otp := new(MockOTPService)
	otp.On("VerifyOTP", mock.Anything, "+2348012345678", "999999").Return(false, nil)

	r := setupAuthRouter(otp, new(MockUserService))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/otp/verify",
		strings.NewReader(`{"phone": "08012345678", "code": "999999"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyOTP_SetsNameOnFirstLogin(t *testing.T) {
	otp := new(MockOTPService)
	otp.On("VerifyOTP", mock.Anything, "+2348012345678", "123456").Return(true, nil)

	users := new(MockUserService)
	users.On("FindOrCreateByPhone", mock.Anything, "+2348012345678").Return(&models.User{
		ID:    7,
		Phone: "+2348012345678",
	}, nil)
	users.On("UpdateName", mock.Anything, int64(7), "Amina").Return(nil)

	r := setupAuthRouter(otp, users)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/otp/verify",
		strings.NewReader(`{"phone": "08012345678", "code": "123456", "name": "Amina"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	users.AssertExpectations(t)
}
