package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemsketch/api/internal/auth"
	"github.com/gemsketch/api/internal/config"
	"github.com/gemsketch/api/internal/logging"
	"github.com/gemsketch/api/internal/relay"
	"github.com/gemsketch/api/internal/upload"
	"github.com/gemsketch/api/internal/user"
)

type memoryStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func (s *memoryStore) Create(ctx context.Context, u *user.User) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, user.ErrDuplicate
		}
	}
	stored := *u
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	s.users[stored.ID] = &stored
	return &stored, nil
}

func (s *memoryStore) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *memoryStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

type echoProcessor struct{}

func (echoProcessor) Process(ctx context.Context, image []byte) ([]byte, error) {
	return image, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Env:            "prod",
			TrustedOrigins: []string{"http://localhost:3000"},
		},
	}

	logger := logging.NewLogger(true)

	tokenService, err := auth.NewPasetoService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	store := &memoryStore{users: map[uuid.UUID]*user.User{}}
	userService := user.NewService(store, nil, tokenService, logger, time.Hour)
	userHandler := user.NewHandler(userService, logger)

	blobStore, err := upload.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	uploadHandler := upload.NewHandler(blobStore, logger, 10)

	relayHandler := relay.NewHandler(echoProcessor{}, logger, 10)

	return NewRouter(cfg, userHandler, uploadHandler, relayHandler, auth.NewMiddleware(tokenService), logger)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "api is running")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/profile"},
		{http.MethodPost, "/upload"},
		{http.MethodPost, "/process-image"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	router := newTestRouter(t)

	createBody := `{"fullName":"Ada Stone","email":"ada@example.com","phone":"555-0100","dob":"1990-05-14","username":"ada","password":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/create", strings.NewReader(createBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"ada","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var loginResp user.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	require.NotEmpty(t, loginResp.Token)

	req = httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var profile map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "ada", profile["username"])
	assert.Equal(t, "Ada Stone", profile["fullName"])
	_, leaked := profile["passwordHash"]
	assert.False(t, leaked)
}

func TestProcessImageWithToken(t *testing.T) {
	router := newTestRouter(t)

	createBody := `{"fullName":"Ada Stone","email":"ada@example.com","phone":"555-0100","dob":"1990-05-14","username":"ada","password":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/create", strings.NewReader(createBody))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"ada","password":"secret"}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var loginResp user.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "sketch.png")
	require.NoError(t, err)
	payload := []byte("sketch bytes")
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req = httptest.NewRequest(http.MethodPost, "/process-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+loginResp.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, payload, w.Body.Bytes())
}

func TestClientIsServedAtRoot(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestSecurityHeadersApplied(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}
