package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/myruppin/portal-companion/internal/models"
	"github.com/myruppin/portal-companion/internal/service"
	appErrors "github.com/myruppin/portal-companion/pkg/errors"
)

type mockLoginClient struct {
	token string
	err   error
	calls int
}

func (m *mockLoginClient) Login(ctx context.Context, studentID, password string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.token, nil
}

type mockCredentialStore struct {
	token     string
	studentID string
	password  string
	cleared   bool
}

func (m *mockCredentialStore) SaveCredentials(ctx context.Context, token, studentID, password string) error {
	m.token, m.studentID, m.password = token, studentID, password
	return nil
}

func (m *mockCredentialStore) Credentials(ctx context.Context) (string, string, error) {
	if m.studentID == "" {
		return "", "", appErrors.Clone(appErrors.ErrKeyNotFound, "")
	}
	return m.studentID, m.password, nil
}

func (m *mockCredentialStore) SaveToken(ctx context.Context, token string) error {
	m.token = token
	return nil
}

func (m *mockCredentialStore) TokenInfo(ctx context.Context) models.TokenInfo {
	return models.TokenInfo{Present: m.token != ""}
}

func (m *mockCredentialStore) Clear(ctx context.Context) error {
	m.cleared = true
	m.token, m.studentID, m.password = "", "", ""
	return nil
}

func newAuthRouter(client *mockLoginClient, store *mockCredentialStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(service.NewAuthService(client, store, nil, zap.NewNop()), nil)
	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.GET("/auth/status", h.Status)
	r.POST("/auth/logout", h.Logout)
	return r
}

func TestAuthHandlerLogin(t *testing.T) {
	client := &mockLoginClient{token: "tok-1"}
	store := &mockCredentialStore{}
	r := newAuthRouter(client, store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"student_id":"12345","password":"pw"}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok-1", store.token)
	assert.Equal(t, "12345", store.studentID)
	assert.Contains(t, w.Body.String(), `"present":true`)
}

func TestAuthHandlerLoginValidation(t *testing.T) {
	r := newAuthRouter(&mockLoginClient{token: "tok"}, &mockCredentialStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"student_id":"12345"}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestAuthHandlerLoginRejected(t *testing.T) {
	client := &mockLoginClient{err: appErrors.Clone(appErrors.ErrLoginFailed, "")}
	r := newAuthRouter(client, &mockCredentialStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"student_id":"12345","password":"bad"}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "LOGIN_FAILED")
}

func TestAuthHandlerRefreshUsesStoredCredentials(t *testing.T) {
	client := &mockLoginClient{token: "tok-2"}
	store := &mockCredentialStore{token: "tok-1", studentID: "12345", password: "pw"}
	r := newAuthRouter(client, store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, "tok-2", store.token)
}

func TestAuthHandlerRefreshWithoutCredentials(t *testing.T) {
	r := newAuthRouter(&mockLoginClient{}, &mockCredentialStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "NO_TOKEN")
}

func TestAuthHandlerStatusAndLogout(t *testing.T) {
	store := &mockCredentialStore{token: "tok"}
	r := newAuthRouter(&mockLoginClient{}, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/status", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"present":true`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.True(t, store.cleared)
}
