package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/blogsphere/internal/blogservice"
	"github.com/sushihentaime/blogsphere/internal/commentservice"
	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/followservice"
	"github.com/sushihentaime/blogsphere/internal/likeservice"
	"github.com/sushihentaime/blogsphere/internal/mediaservice"
	"github.com/sushihentaime/blogsphere/internal/tokenservice"
	"github.com/sushihentaime/blogsphere/internal/userservice"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

type testEnv struct {
	app    *application
	db     *sql.DB
	broker *common.MessageBroker
	media  *mediaservice.MockMedia
	tokens *tokenservice.TokenService
}

func testConfig(t *testing.T) *Config {
	cfg := &Config{
		Environment:    "testing",
		Version:        "test",
		BaseURL:        "http://localhost:8080",
		TrustedOrigins: []string{"http://localhost:3000"},
		UploadDir:      t.TempDir(),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:       "test-access-secret",
		AccessExpiry:       15 * time.Minute,
		RefreshSecret:      "test-refresh-secret",
		RefreshExpiry:      24 * time.Hour,
		VerificationSecret: "test-verification-secret",
		VerificationExpiry: time.Hour,
		OTPExpiry:          10 * time.Minute,
	}

	return cfg
}

func tokenConfig(cfg *Config) tokenservice.Config {
	return tokenservice.Config{
		AccessSecret:       cfg.JWT.AccessSecret,
		AccessExpiry:       cfg.JWT.AccessExpiry,
		RefreshSecret:      cfg.JWT.RefreshSecret,
		RefreshExpiry:      cfg.JWT.RefreshExpiry,
		VerificationSecret: cfg.JWT.VerificationSecret,
		VerificationExpiry: cfg.JWT.VerificationExpiry,
	}
}

// newTestApplication wires every service against postgres and rabbitmq
// containers. Images go to a mock media host.
func newTestApplication(t *testing.T) *testEnv {
	db := common.TestDB("file://../migrations", t)

	broker, err := common.NewMessageBroker(common.TestRabbitMQ(t))
	require.NoError(t, err)
	require.NoError(t, common.SetupUserExchange(broker))

	t.Cleanup(func() {
		broker.Close()
	})

	cfg := testConfig(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	media := new(mediaservice.MockMedia)
	tokens := tokenservice.NewTokenService(tokenConfig(cfg))

	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: newMetrics(),
		userService: userservice.NewUserService(db, broker, cache, tokens, media, logger, userservice.Config{
			BaseURL:   cfg.BaseURL,
			OTPExpiry: cfg.JWT.OTPExpiry,
		}),
		blogService:    blogservice.NewBlogService(db, cache, media, logger),
		commentService: commentservice.NewCommentService(db),
		likeService:    likeservice.NewLikeService(db),
		followService:  followservice.NewFollowService(db),
		broker:         broker,
	}

	return &testEnv{app: app, db: db, broker: broker, media: media, tokens: tokens}
}

// routes builds the application handler for the duration of the test.
func (e *testEnv) routes(t *testing.T) http.Handler {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return e.app.routes(ctx)
}

// accessToken issues a token for a user inserted with common.InsertTestUser.
func (e *testEnv) accessToken(t *testing.T, id int64, username string) string {
	token, err := e.tokens.IssueAccessToken(tokenservice.Identity{
		ID:       id,
		Email:    username + "@example.com",
		Username: username,
		Fullname: "Test " + username,
	})
	require.NoError(t, err)

	return token
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))

	return res.StatusCode, res.Header, env
}

func (ts *testServer) do(t *testing.T, req *http.Request, token string) (int, http.Header, envelope) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Client().Do(req)
	require.NoError(t, err)

	return readResponse(t, res)
}

func (ts *testServer) request(t *testing.T, method, path string, payload any, token string) (int, http.Header, envelope) {
	var body io.Reader
	if payload != nil {
		js, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(js)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return ts.do(t, req, token)
}

func (ts *testServer) get(t *testing.T, path, token string) (int, http.Header, envelope) {
	return ts.request(t, http.MethodGet, path, nil, token)
}

// multipart sends fields and files (field name to file content) as multipart/form-data.
func (ts *testServer) multipart(t *testing.T, method, path string, fields map[string]string, files map[string]string, token string) (int, http.Header, envelope) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return ts.do(t, req, token)
}

// data returns the data member of a success envelope.
func data(t *testing.T, env envelope) map[string]any {
	d, ok := env["data"].(map[string]any)
	require.True(t, ok, "data is not an object: %v", env["data"])
	return d
}

func list(t *testing.T, v any) []any {
	l, ok := v.([]any)
	require.True(t, ok, "not a list: %v", v)
	return l
}
