package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/niteshj11/kudoboard/internal/auth"
	"github.com/niteshj11/kudoboard/internal/boards"
	"github.com/niteshj11/kudoboard/internal/gifs"
	"github.com/niteshj11/kudoboard/internal/ids"
	"github.com/niteshj11/kudoboard/internal/messages"
	"github.com/niteshj11/kudoboard/internal/realtime"
	"github.com/niteshj11/kudoboard/internal/storage"
	"github.com/niteshj11/kudoboard/internal/users"
)

type testServer struct {
	handler http.Handler
	hub     *realtime.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gateway := storage.NewMemoryGateway()
	idProvider := ids.NewUUIDProvider()
	hub := realtime.NewHub(8)

	userService, err := users.NewService(users.ServiceConfig{Store: gateway.Users, IDProvider: idProvider})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	messageService, err := messages.NewService(messages.ServiceConfig{
		Store:       gateway.Messages,
		Broadcaster: hub,
		IDProvider:  idProvider,
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	boardService, err := boards.NewService(boards.ServiceConfig{
		Store:      gateway.Boards,
		Messages:   gateway.Messages,
		IDProvider: idProvider,
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	tokenManager := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte("test-secret"),
		Issuer:        "kudoboard-auth",
		Audience:      "kudoboard-api",
		TokenTTL:      time.Hour,
	})

	handler, err := NewHTTPHandler(Dependencies{
		TokenManager: tokenManager,
		Users:        userService,
		Boards:       boardService,
		Messages:     messageService,
		Gifs:         gifs.NewClient(gifs.ClientConfig{}),
		Socket:       realtime.NewSocketHandler(realtime.SocketHandlerConfig{Hub: hub}),
	})
	if err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}

	return &testServer{handler: handler, hub: hub}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	s.handler.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
}

// registerUser creates an account through the API and returns its token.
func registerUser(t *testing.T, server *testServer, email, name string) (users.User, string) {
	t.Helper()
	recorder := server.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "s3cret+pass",
		"name":     name,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("register failed with %d: %s", recorder.Code, recorder.Body.String())
	}
	var response struct {
		User  users.User `json:"user"`
		Token string     `json:"token"`
	}
	decodeBody(t, recorder, &response)
	return response.User, response.Token
}

func createTestBoard(t *testing.T, server *testServer, token string, payload map[string]any) boards.Board {
	t.Helper()
	recorder := server.do(t, http.MethodPost, "/api/boards", token, payload)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create board failed with %d: %s", recorder.Code, recorder.Body.String())
	}
	var board boards.Board
	decodeBody(t, recorder, &board)
	return board
}
