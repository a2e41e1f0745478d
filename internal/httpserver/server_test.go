package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adboardhq/adboard/internal/auth"
	"github.com/adboardhq/adboard/internal/config"
	"github.com/adboardhq/adboard/internal/middleware"
	"github.com/adboardhq/adboard/internal/models"
)

// apiResponse mirrors the wire envelope with the data block left raw so
// each test decodes only what it asserts on.
type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Env: "test"},
		Stats:  config.StatsConfig{Backend: "postgres", CacheTTL: time.Minute},
		Auth: config.AuthConfig{
			Secret:     "test-secret",
			TokenTTL:   time.Hour,
			BcryptCost: 4,
			SkipPaths: []string{
				"/api/user/register",
				"/api/user/login",
				"/api/user/check-email",
				"/health",
				"/uploads/",
			},
		},
		Upload: config.UploadConfig{Dir: t.TempDir(), MaxBytes: 50 << 20},
		OAuth:  config.OAuthConfig{BaseURL: "http://localhost:8080", AppID: "adboard"},
	}

	api := NewServer(&Dependencies{Config: cfg, Logger: zap.NewNop()})
	tokens := auth.NewTokenProvider(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	authMW := middleware.NewAuthMiddleware(tokens, cfg.Auth, zap.NewNop())
	return authMW.Handler(api)
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp),
		"body: %s", rec.Body.String())
	return rec, resp
}

func registerAndLogin(t *testing.T, h http.Handler, username, email, phone string) string {
	t.Helper()
	rec, _ := doRequest(t, h, http.MethodPost, "/api/user/register", "", map[string]string{
		"username": username,
		"email":    email,
		"phone":    phone,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := doRequest(t, h, http.MethodPost, "/api/user/login", "", map[string]string{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestServerFullFlow(t *testing.T) {
	h := newTestHandler(t)
	token := registerAndLogin(t, h, "alice", "alice@example.com", "13800138000")

	// OAuth authorization URL for a supported platform.
	rec, resp := doRequest(t, h, http.MethodGet, "/api/ad-account/auth/url?platform=douyin", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var authData struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &authData))
	assert.Contains(t, authData.URL, "douyin")

	// Bind an ad account.
	rec, resp = doRequest(t, h, http.MethodPost, "/api/ad-account", token, map[string]interface{}{
		"platform":     "douyin",
		"accountName":  "Main DY account",
		"accountId":    "dy-10001",
		"accessToken":  "tok-abc",
		"refreshToken": "ref-abc",
		"expiresIn":    3600,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var account models.AdAccount
	require.NoError(t, json.Unmarshal(resp.Data, &account))
	require.NotEmpty(t, account.ID)

	// List accounts and check the pagination block.
	rec, resp = doRequest(t, h, http.MethodGet, "/api/ad-account?page=1&pageSize=10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var accountList struct {
		List       []models.AdAccount `json:"list"`
		Pagination struct {
			Total    int64 `json:"total"`
			Page     int   `json:"page"`
			PageSize int   `json:"pageSize"`
			Pages    int64 `json:"pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &accountList))
	assert.Len(t, accountList.List, 1)
	assert.Equal(t, int64(1), accountList.Pagination.Total)
	assert.Equal(t, int64(1), accountList.Pagination.Pages)

	// Create a plan under the account.
	rec, resp = doRequest(t, h, http.MethodPost, "/api/ad-plan", token, map[string]interface{}{
		"accountId": account.ID,
		"platform":  "douyin",
		"planName":  "Summer promo",
		"planId":    "dy-plan-1",
		"budget":    1000,
		"startDate": time.Now().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var plan models.AdPlan
	require.NoError(t, json.Unmarshal(resp.Data, &plan))
	require.NotEmpty(t, plan.ID)

	// Create a creative under the plan.
	rec, resp = doRequest(t, h, http.MethodPost, "/api/ad-creative", token, map[string]interface{}{
		"planId":       plan.ID,
		"creativeName": "Hero banner",
		"type":         "image",
		"materials":    []string{"/uploads/banner.png"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var creative models.AdCreative
	require.NoError(t, json.Unmarshal(resp.Data, &creative))

	// Creatives filtered by plan.
	rec, resp = doRequest(t, h, http.MethodGet, "/api/ad-creative?planId="+plan.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var creativeList struct {
		List []models.AdCreative `json:"list"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &creativeList))
	assert.Len(t, creativeList.List, 1)

	// Statistics with no ingested records come back zeroed.
	rec, resp = doRequest(t, h, http.MethodGet, "/api/statistics?timeRange=7d", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats models.Statistics
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, int64(0), stats.Summary.TotalImpressions)
	assert.Equal(t, "0.00", stats.Summary.CTR)
	assert.Equal(t, "0.00", stats.Summary.ROI)
	assert.Empty(t, stats.CostTrend.Dates)

	// Any platform value is accepted as a filter; one with no records
	// simply matches nothing.
	rec, resp = doRequest(t, h, http.MethodGet, "/api/statistics?platform=myspace", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, int64(0), stats.Summary.TotalImpressions)

	// Cleanup path: delete the creative.
	rec, _ = doRequest(t, h, http.MethodDelete, "/api/ad-creative/"+creative.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = doRequest(t, h, http.MethodGet, "/api/ad-creative/"+creative.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerRequiresToken(t *testing.T) {
	h := newTestHandler(t)

	rec, resp := doRequest(t, h, http.MethodGet, "/api/ad-account", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodGet, "/api/ad-account", nil)
	req.Header.Set("Authorization", "Token abc")
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusUnauthorized, rec2.Code)

	rec, _ = doRequest(t, h, http.MethodGet, "/api/ad-account", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServerForeignResourceHidden(t *testing.T) {
	h := newTestHandler(t)
	token1 := registerAndLogin(t, h, "alice", "alice@example.com", "13800138000")
	token2 := registerAndLogin(t, h, "bob", "bob@example.com", "13900139000")

	rec, resp := doRequest(t, h, http.MethodPost, "/api/ad-account", token1, map[string]interface{}{
		"platform":     "douyin",
		"accountName":  "Main DY account",
		"accountId":    "dy-10001",
		"accessToken":  "tok-abc",
		"refreshToken": "ref-abc",
		"expiresIn":    3600,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var account models.AdAccount
	require.NoError(t, json.Unmarshal(resp.Data, &account))

	rec, resp = doRequest(t, h, http.MethodGet, "/api/ad-account/"+account.ID, token2, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "resource not found", resp.Message)

	rec, _ = doRequest(t, h, http.MethodDelete, "/api/ad-account/"+account.ID, token2, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Still visible to the owner.
	rec, _ = doRequest(t, h, http.MethodGet, "/api/ad-account/"+account.ID, token1, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerCheckEmail(t *testing.T) {
	h := newTestHandler(t)
	registerAndLogin(t, h, "alice", "alice@example.com", "13800138000")

	rec, resp := doRequest(t, h, http.MethodGet, "/api/user/check-email?email=Alice@Example.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Exists bool   `json:"exists"`
		Email  string `json:"email"`
		User   *struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.True(t, data.Exists)
	assert.Equal(t, "alice@example.com", data.Email)
	require.NotNil(t, data.User)
	assert.Equal(t, "alice", data.User.Username)

	rec, resp = doRequest(t, h, http.MethodGet, "/api/user/check-email?email=nobody@example.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data.User = nil
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.False(t, data.Exists)
	assert.Nil(t, data.User)
}

func TestServerValidationErrors(t *testing.T) {
	h := newTestHandler(t)

	rec, resp := doRequest(t, h, http.MethodPost, "/api/user/register", "", map[string]string{
		"username": "alice",
		"email":    "not-an-email",
		"phone":    "13800138000",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.NotEmpty(t, resp.Message)

	req := httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader("{broken"))
	req.Header.Set("Content-Type", "application/json")
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)

	rec, _ = doRequest(t, h, http.MethodDelete, "/api/user/register", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServerUpload(t *testing.T) {
	h := newTestHandler(t)
	token := registerAndLogin(t, h, "alice", "alice@example.com", "13800138000")

	upload := func(filename, mimeType string, content []byte) (*httptest.ResponseRecorder, apiResponse) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
		hdr.Set("Content-Type", mimeType)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/ad-creative/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		var resp apiResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return rec, resp
	}

	rec, resp := upload("banner.png", "image/png", []byte("png-bytes"))
	require.Equal(t, http.StatusOK, rec.Code)
	var result models.UploadResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	// The URL carries the timestamp-prefixed stored name; the original
	// filename and MIME type are echoed back as-is.
	assert.True(t, strings.HasPrefix(result.URL, "/uploads/"))
	assert.Regexp(t, `^/uploads/\d+_banner\.png$`, result.URL)
	assert.Equal(t, "banner.png", result.Name)
	assert.Equal(t, "image/png", result.Type)
	assert.Equal(t, int64(len("png-bytes")), result.Size)

	rec, resp = upload("report.pdf", "application/pdf", []byte("pdf-bytes"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestServerHealth(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
