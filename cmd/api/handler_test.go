package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tokendomain "classnest-backend/internal/token/domain"
	tokenusecase "classnest-backend/internal/token/usecase"
	"classnest-backend/pkg/config"
	"classnest-backend/pkg/sse"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// MockTokenRepository is a mock implementation of repository.TokenRepository
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) SaveToken(ctx context.Context, userID, token string, kind tokendomain.Kind, platform string) error {
	args := m.Called(ctx, userID, token, kind, platform)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteToken(ctx context.Context, userID string, kind tokendomain.Kind) error {
	args := m.Called(ctx, userID, kind)
	return args.Error(0)
}

func (m *MockTokenRepository) TokenByUserID(ctx context.Context, userID string, kind tokendomain.Kind) (string, error) {
	args := m.Called(ctx, userID, kind)
	return args.String(0), args.Error(1)
}

func (m *MockTokenRepository) TokensByUserID(ctx context.Context, userID string) ([]tokendomain.DeviceToken, error) {
	args := m.Called(ctx, userID)
	tokens, _ := args.Get(0).([]tokendomain.DeviceToken)
	return tokens, args.Error(1)
}

func (m *MockTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func signedToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func signedServiceToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": "service",
		"exp":  jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func testHandler(repo *MockTokenRepository) *Handler {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWTSecret: testSecret, Platform: "web"}
	store := tokenusecase.NewStore(repo)
	manager := sse.NewManager()
	go manager.Run()
	return NewHandler(store, nil, nil, nil, manager, cfg)
}

func TestHealthNoAuth(t *testing.T) {
	h := testHandler(new(MockTokenRepository))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	h.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterToken_RequiresAuth(t *testing.T) {
	h := testHandler(new(MockTokenRepository))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tokens/register", strings.NewReader(`{"token":"tok-A"}`))
	h.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterToken_SavesForCaller(t *testing.T) {
	repo := new(MockTokenRepository)
	repo.On("SaveToken", mock.Anything, "user-1", "tok-A", tokendomain.KindPush, "android").
		Return(nil).Once()

	h := testHandler(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tokens/register",
		strings.NewReader(`{"token":"tok-A","kind":"push","platform":"android"}`))
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "user-1"))
	req.Header.Set("Content-Type", "application/json")
	h.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestRegisterToken_RejectsBadBearer(t *testing.T) {
	h := testHandler(new(MockTokenRepository))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tokens/register", strings.NewReader(`{"token":"tok-A"}`))
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	h.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLookupToken(t *testing.T) {
	repo := new(MockTokenRepository)
	repo.On("TokenByUserID", mock.Anything, "user-2", tokendomain.KindVoIP).Return("tok-voip", nil).Once()

	h := testHandler(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tokens/user-2?kind=voip", nil)
	req.Header.Set("Authorization", "Bearer "+signedServiceToken(t, "notifier-svc"))
	h.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tok-voip")
}

func TestLookupToken_NotFound(t *testing.T) {
	repo := new(MockTokenRepository)
	repo.On("TokenByUserID", mock.Anything, "user-3", tokendomain.KindPush).Return("", nil).Once()

	h := testHandler(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tokens/user-3", nil)
	req.Header.Set("Authorization", "Bearer "+signedServiceToken(t, "notifier-svc"))
	h.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLookupToken_ForbiddenForEndUsers(t *testing.T) {
	repo := new(MockTokenRepository)

	h := testHandler(repo)

	// A valid end-user bearer must not be able to read another user's raw
	// device token; only service credentials may.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tokens/user-2", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "user-1"))
	h.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	repo.AssertNotCalled(t, "TokenByUserID")
}

func TestUnregisterToken(t *testing.T) {
	repo := new(MockTokenRepository)
	repo.On("DeleteToken", mock.Anything, "user-1", tokendomain.KindPush).Return(nil).Once()

	h := testHandler(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/tokens", strings.NewReader(`{"kind":"push"}`))
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "user-1"))
	req.Header.Set("Content-Type", "application/json")
	h.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}
