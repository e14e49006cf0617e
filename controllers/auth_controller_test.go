package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Riyogosaki/Crystal/controllers"
	"github.com/Riyogosaki/Crystal/middleware"
	"github.com/Riyogosaki/Crystal/models"
	"github.com/Riyogosaki/Crystal/services"
)

// memUserRepo keeps accounts in memory for controller scenarios.
type memUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uuid.UUID]*models.User{}}
}

func (m *memUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) Create(_ context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := services.NewTokenService("test-secret")
	auth := services.NewAuthService(newMemUserRepo(), tokens, zap.NewNop())
	ac := controllers.NewAuthController(auth, zap.NewNop())

	r := gin.New()
	api := r.Group("/api/auth")
	api.POST("/signup", ac.Signup)
	api.POST("/login", ac.Login)
	api.POST("/logout", ac.Logout)
	api.GET("/me", middleware.RequireSession(tokens), ac.Me)
	return r
}

func doJSON(r *gin.Engine, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName {
			return ck
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestSignupLoginMe_FullScenario(t *testing.T) {
	r := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/api/auth/signup", gin.H{
		"fullName": "Riyo Gosaki",
		"username": "riyo",
		"email":    "riyo@example.com",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	ck := sessionCookie(t, w)
	assert.True(t, ck.HttpOnly)
	assert.NotEmpty(t, ck.Value)

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "riyo", created["username"])
	assert.NotContains(t, created, "password")

	// A fresh login replaces the session and returns the same account.
	w = doJSON(r, http.MethodPost, "/api/auth/login", gin.H{
		"username": "riyo",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	loginCk := sessionCookie(t, w)

	var loggedIn map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loggedIn))
	assert.Equal(t, created["_id"], loggedIn["_id"])

	w = doJSON(r, http.MethodGet, "/api/auth/me", nil, []*http.Cookie{loginCk})
	require.Equal(t, http.StatusOK, w.Code)

	var me map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, created["_id"], me["_id"])
	assert.Equal(t, "riyo@example.com", me["email"])
}

func TestLogin_GenericFailureMessage(t *testing.T) {
	r := newAuthRouter(t)

	doJSON(r, http.MethodPost, "/api/auth/signup", gin.H{
		"fullName": "Riyo Gosaki",
		"username": "riyo",
		"email":    "riyo@example.com",
		"password": "secret123",
	}, nil)

	wrongPw := doJSON(r, http.MethodPost, "/api/auth/login", gin.H{
		"username": "riyo",
		"password": "wrongwrong",
	}, nil)
	unknownUser := doJSON(r, http.MethodPost, "/api/auth/login", gin.H{
		"username": "nobody",
		"password": "secret123",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	// Both failure modes must be indistinguishable to the caller.
	assert.Equal(t, wrongPw.Body.String(), unknownUser.Body.String())
}

func TestSignup_DuplicateUsernameConflicts(t *testing.T) {
	r := newAuthRouter(t)

	payload := gin.H{
		"fullName": "Riyo Gosaki",
		"username": "riyo",
		"email":    "riyo@example.com",
		"password": "secret123",
	}
	w := doJSON(r, http.MethodPost, "/api/auth/signup", payload, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	payload["email"] = "other@example.com"
	w = doJSON(r, http.MethodPost, "/api/auth/signup", payload, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMe_RejectsMissingAndBadTokens(t *testing.T) {
	r := newAuthRouter(t)

	w := doJSON(r, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/auth/me", nil, []*http.Cookie{
		{Name: middleware.SessionCookieName, Value: "not-a-token"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_ExpiresCookie(t *testing.T) {
	r := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/api/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	ck := sessionCookie(t, w)
	assert.Empty(t, ck.Value)
	assert.True(t, ck.MaxAge < 0)
}
