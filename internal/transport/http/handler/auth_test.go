package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-auth-service/internal/application/auth"
	"github.com/go-auth-service/internal/domain"
	jwtinfra "github.com/go-auth-service/internal/infrastructure/jwt"
	"github.com/go-auth-service/internal/infrastructure/memory"
	"github.com/go-auth-service/internal/pkg/hasher"
)

// captureMailer records the last message instead of sending it.
type captureMailer struct {
	mu      sync.Mutex
	subject string
	body    string
	sent    int
}

func (m *captureMailer) Send(_ domain.Email, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subject = subject
	m.body = body
	m.sent++
	return nil
}

var codeRE = regexp.MustCompile(`\d{6}`)

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	code := codeRE.FindString(m.body)
	require.NotEmpty(t, code, "no 2FA code in mail body %q", m.body)
	return code
}

func newTestRouter(t *testing.T) (http.Handler, *captureMailer) {
	t.Helper()
	tokens, err := jwtinfra.NewProvider("0123456789abcdef0123456789abcdef", 10*time.Minute)
	require.NoError(t, err)

	// Low-cost profile keeps the suite fast; the encoding is the same.
	h := hasher.NewArgon2(hasher.Params{MemoryKiB: 8, Iterations: 1, Parallelism: 1})
	mailer := &captureMailer{}

	svc := auth.NewService(auth.Deps{
		Users:      memory.NewUserStore(h),
		Challenges: memory.NewChallengeStore(),
		Banned:     memory.NewBannedTokenStore(),
		Hasher:     h,
		Tokens:     tokens,
		Mailer:     mailer,
	})
	authH := NewAuthHandler(svc)

	r := chi.NewRouter()
	r.Post("/signup", authH.Signup)
	r.Post("/login", authH.Login)
	r.Post("/verify-2fa", authH.Verify2FA)
	r.Post("/logout", authH.Logout)
	r.Post("/verify-token", authH.VerifyToken)
	return r, mailer
}

func doJSON(t *testing.T, r http.Handler, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %q cookie in response", SessionCookieName)
	return nil
}

func signup(t *testing.T, r http.Handler, email, password string, twoFA bool) {
	t.Helper()
	rec := doJSON(t, r, "/signup", map[string]interface{}{
		"email": email, "password": password, "requires2FA": twoFA,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestSignupEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, "/signup", map[string]interface{}{
		"email": "alice@example.com", "password": "password123", "requires2FA": false,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"User created successfully!"}`, rec.Body.String())

	rec = doJSON(t, r, "/signup", map[string]interface{}{
		"email": "alice@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, r, "/signup", map[string]interface{}{
		"email": "not-an-email", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, "/signup", map[string]interface{}{
		"email": "bob@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint_No2FA(t *testing.T) {
	r, _ := newTestRouter(t)
	signup(t, r, "alice@example.com", "password123", false)

	rec := doJSON(t, r, "/login", map[string]interface{}{
		"email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	c := sessionCookie(t, rec)
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestLoginEndpoint_BadCredentials(t *testing.T) {
	r, _ := newTestRouter(t)
	signup(t, r, "alice@example.com", "password123", false)

	for _, body := range []map[string]interface{}{
		{"email": "alice@example.com", "password": "wrongpassword"},
		{"email": "nobody@example.com", "password": "password123"},
		{"email": "not-an-email", "password": "password123"},
	} {
		rec := doJSON(t, r, "/login", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	}
}

func TestTwoFAFlow(t *testing.T) {
	r, mailer := newTestRouter(t)
	signup(t, r, "alice@example.com", "password123", true)

	rec := doJSON(t, r, "/login", map[string]interface{}{
		"email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	var env TwoFAEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "2FA required", env.Message)
	require.NotEmpty(t, env.LoginAttemptID)

	require.Equal(t, 1, mailer.sent)
	assert.Equal(t, "2FA Code", mailer.subject)
	code := mailer.lastCode(t)

	verify := map[string]interface{}{
		"email": "alice@example.com", "loginAttemptId": env.LoginAttemptID, "2FACode": code,
	}
	rec = doJSON(t, r, "/verify-2fa", verify)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c := sessionCookie(t, rec)
	assert.NotEmpty(t, c.Value)

	// The challenge is single-use.
	rec = doJSON(t, r, "/verify-2fa", verify)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTwoFAFlow_WrongCodeKeepsChallenge(t *testing.T) {
	r, mailer := newTestRouter(t)
	signup(t, r, "alice@example.com", "password123", true)

	rec := doJSON(t, r, "/login", map[string]interface{}{
		"email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusPartialContent, rec.Code)
	var env TwoFAEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	code := mailer.lastCode(t)
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	rec = doJSON(t, r, "/verify-2fa", map[string]interface{}{
		"email": "alice@example.com", "loginAttemptId": env.LoginAttemptID, "2FACode": wrong,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, r, "/verify-2fa", map[string]interface{}{
		"email": "alice@example.com", "loginAttemptId": env.LoginAttemptID, "2FACode": code,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTwoFAFlow_FreshLoginReplacesChallenge(t *testing.T) {
	r, mailer := newTestRouter(t)
	signup(t, r, "alice@example.com", "password123", true)

	login := map[string]interface{}{"email": "alice@example.com", "password": "password123"}

	rec := doJSON(t, r, "/login", login)
	require.Equal(t, http.StatusPartialContent, rec.Code)
	var first TwoFAEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	firstCode := mailer.lastCode(t)

	rec = doJSON(t, r, "/login", login)
	require.Equal(t, http.StatusPartialContent, rec.Code)
	var second TwoFAEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	// Stale attempt no longer verifies.
	rec = doJSON(t, r, "/verify-2fa", map[string]interface{}{
		"email": "alice@example.com", "loginAttemptId": first.LoginAttemptID, "2FACode": firstCode,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, r, "/verify-2fa", map[string]interface{}{
		"email": "alice@example.com", "loginAttemptId": second.LoginAttemptID, "2FACode": mailer.lastCode(t),
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVerify2FAEndpoint_MalformedInput(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, "/verify-2fa", map[string]interface{}{
		"email": "alice@example.com", "loginAttemptId": "not-a-uuid", "2FACode": "123456",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	signup(t, r, "alice@example.com", "password123", false)

	rec := doJSON(t, r, "/login", map[string]interface{}{
		"email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	c := sessionCookie(t, rec)

	rec = doJSON(t, r, "/logout", map[string]interface{}{}, c)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := sessionCookie(t, rec)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// The token is revoked for the rest of its lifetime.
	rec = doJSON(t, r, "/verify-token", map[string]interface{}{"token": c.Value})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, r, "/logout", map[string]interface{}{}, c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpoint_NoCookie(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := doJSON(t, r, "/logout", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyTokenEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	signup(t, r, "alice@example.com", "password123", false)

	rec := doJSON(t, r, "/login", map[string]interface{}{
		"email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := sessionCookie(t, rec).Value

	rec = doJSON(t, r, "/verify-token", map[string]interface{}{"token": token})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, "/verify-token", map[string]interface{}{"token": "not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, r, "/verify-token", map[string]interface{}{"token": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidRequestBodies(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{"/signup", "/login", "/verify-2fa", "/verify-token"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, fmt.Sprintf("path %s", path))
	}
}
