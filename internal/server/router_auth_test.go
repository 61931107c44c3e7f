package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/niteshj11/kudoboard/internal/auth"
	"github.com/niteshj11/kudoboard/internal/users"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRegisterThenLoginThroughAPI(t *testing.T) {
	server := newTestServer(t)

	registered, token := registerUser(t, server, "ada@example.com", "Ada")
	if token == "" {
		t.Fatal("expected a token on registration")
	}
	if registered.Email != "ada@example.com" {
		t.Fatalf("unexpected email %q", registered.Email)
	}

	recorder := server.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "s3cret+pass",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", recorder.Code, recorder.Body.String())
	}
	var response struct {
		User  users.User `json:"user"`
		Token string     `json:"token"`
	}
	decodeBody(t, recorder, &response)
	if response.User.ID != registered.ID {
		t.Fatalf("login returned different account: %s vs %s", response.User.ID, registered.ID)
	}
	if response.Token == "" {
		t.Fatal("expected a token on login")
	}
}

func TestLoginFailureMessageIsUniform(t *testing.T) {
	server := newTestServer(t)
	registerUser(t, server, "ada@example.com", "Ada")

	for _, payload := range []map[string]string{
		{"email": "nobody@example.com", "password": "s3cret+pass"},
		{"email": "ada@example.com", "password": "wrong-pass"},
	} {
		recorder := server.do(t, http.MethodPost, "/api/auth/login", "", payload)
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
		var body map[string]any
		decodeBody(t, recorder, &body)
		if body["message"] != "Invalid email or password" {
			t.Fatalf("expected uniform failure message, got %v", body["message"])
		}
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	server := newTestServer(t)
	registerUser(t, server, "ada@example.com", "Ada")

	recorder := server.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "ada@example.com",
		"password": "another-pass",
		"name":     "Ada Again",
	})
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestCurrentUserRequiresToken(t *testing.T) {
	server := newTestServer(t)

	recorder := server.do(t, http.MethodGet, "/api/auth/me", "", nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", recorder.Code)
	}

	_, token := registerUser(t, server, "ada@example.com", "Ada")
	recorder = server.do(t, http.MethodGet, "/api/auth/me", token, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var body struct {
		User users.User `json:"user"`
	}
	decodeBody(t, recorder, &body)
	if body.User.Email != "ada@example.com" {
		t.Fatalf("unexpected user %+v", body.User)
	}
}

func TestGoogleSignInUpsertsAccount(t *testing.T) {
	server := newTestServer(t)

	payload := map[string]string{
		"googleId": "google-123",
		"email":    "grace@example.com",
		"name":     "Grace",
	}
	first := server.do(t, http.MethodPost, "/api/auth/google", "", payload)
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", first.Code, first.Body.String())
	}
	var firstBody struct {
		User users.User `json:"user"`
	}
	decodeBody(t, first, &firstBody)

	second := server.do(t, http.MethodPost, "/api/auth/google", "", payload)
	var secondBody struct {
		User users.User `json:"user"`
	}
	decodeBody(t, second, &secondBody)
	if secondBody.User.ID != firstBody.User.ID {
		t.Fatal("repeat google sign-in must reuse the account")
	}

	missing := server.do(t, http.MethodPost, "/api/auth/google", "", map[string]string{"email": "x@example.com"})
	if missing.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without googleId, got %d", missing.Code)
	}
}

func TestAuthorizeRequestLogsExpiredTokenAtInfoLevel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)
	request := httptest.NewRequest(http.MethodGet, "/boards", http.NoBody)
	request.Header.Set("Authorization", "Bearer expired-token")
	ctx.Request = request

	core, logs := observer.New(zapcore.DebugLevel)
	handler := &httpHandler{
		tokens: stubTokenManager{validateErr: jwt.ErrTokenExpired},
		logger: zap.New(core),
	}

	handler.authorizeRequest(ctx)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status code: got %d, want %d", recorder.Code, http.StatusUnauthorized)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected exactly one log entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel {
		t.Fatalf("expected info level for expired token, got %s", entries[0].Level)
	}
}

func TestAuthorizeRequestLogsUnexpectedTokenErrorAtWarnLevel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)
	request := httptest.NewRequest(http.MethodGet, "/boards", http.NoBody)
	request.Header.Set("Authorization", "Bearer invalid-token")
	ctx.Request = request

	core, logs := observer.New(zapcore.DebugLevel)
	handler := &httpHandler{
		tokens: stubTokenManager{validateErr: errors.New("signature mismatch")},
		logger: zap.New(core),
	}

	handler.authorizeRequest(ctx)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status code: got %d, want %d", recorder.Code, http.StatusUnauthorized)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected exactly one log entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level for unexpected error, got %s", entries[0].Level)
	}
}

type stubTokenManager struct {
	validateErr error
}

func (s stubTokenManager) IssueToken(auth.Identity) (string, int64, error) {
	return "", 0, errors.New("not implemented")
}

func (s stubTokenManager) ValidateToken(string) (auth.Identity, error) {
	return auth.Identity{}, s.validateErr
}
