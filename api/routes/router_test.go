package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futamarket/market-backend/internal/media"
	product "github.com/futamarket/market-backend/internal/products"
	section "github.com/futamarket/market-backend/internal/sections"
	"github.com/futamarket/market-backend/pkg/auth"
	"github.com/futamarket/market-backend/pkg/config"
	"github.com/futamarket/market-backend/pkg/db/dbtest"
	"github.com/futamarket/market-backend/pkg/logger"
	"github.com/futamarket/market-backend/pkg/metrics"
	"github.com/futamarket/market-backend/pkg/storage/local"
)

const adminSecret = "campus-admin"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type testServer struct {
	*httptest.Server
	sections section.Repository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	cfg := &config.Config{
		App:   config.AppConfig{Env: "dev"},
		Admin: config.AdminConfig{Password: adminSecret, FailureLimit: 10, FailureWindow: time.Minute},
		CORS:  config.CORSConfig{AllowedOrigins: []string{"*"}},
		Media: config.MediaConfig{MaxUploadMB: 1},
	}

	db := dbtest.OpenSQLite(t)
	sectionRepo := section.NewGormRepository(db)
	sectionSvc, err := section.NewService(sectionRepo, logg)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	ts := &testServer{sections: sectionRepo}
	var disk *local.Disk
	mux := http.NewServeMux()
	ts.Server = httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	disk, err = local.New(t.TempDir(), ts.URL+MediaPrefix)
	require.NoError(t, err)
	uploader, err := media.NewUploader(media.UploaderParams{
		Backend: disk,
		Metrics: metrics.NewUploadMetrics(reg),
		Logger:  logg,
	})
	require.NoError(t, err)
	productSvc, err := product.NewService(product.ServiceParams{
		Repo:     product.NewGormRepository(db),
		Sections: sectionRepo,
		Media:    uploader,
		Logger:   logg,
	})
	require.NoError(t, err)

	mux.Handle("/", NewRouter(Params{
		Config:   cfg,
		Logger:   logg,
		Sections: sectionSvc,
		Products: productSvc,
		Guard:    auth.NewAdminGuard(adminSecret),
		Registry: reg,
		Media:    disk.Handler(MediaPrefix),
	}))
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body io.Reader, contentType string, admin bool) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if admin {
		req.Header.Set(auth.HeaderAdminPassword, adminSecret)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func productForm(t *testing.T, fields map[string]string, images int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for i := 0; i < images; i++ {
		part, err := mw.CreateFormFile("images", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(pngBytes)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestMutationsRequireAdminHeader(t *testing.T) {
	ts := newTestServer(t)

	body, ct := productForm(t, map[string]string{"title": "Fan"}, 1)
	resp, out := ts.do(t, http.MethodPost, "/products", body, ct, false)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Forbidden"}`, string(out))

	resp, _ = ts.do(t, http.MethodPost, "/sections", strings.NewReader(`{"title":"Books"}`), "application/json", false)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, out = ts.do(t, http.MethodGet, "/products", nil, "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(out))
}

func TestCreateProductWithImage(t *testing.T) {
	ts := newTestServer(t)

	body, ct := productForm(t, map[string]string{"title": "Fan", "price": "5000", "available": "true"}, 1)
	resp, out := ts.do(t, http.MethodPost, "/products", body, ct, true)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(out))

	var created map[string]any
	require.NoError(t, json.Unmarshal(out, &created))
	assert.Equal(t, true, created["available"])
	assert.Equal(t, "Fan", created["title"])
	assert.EqualValues(t, 5000, created["price"])
	assert.Nil(t, created["video"])
	images, ok := created["images"].([]any)
	require.True(t, ok)
	require.Len(t, images, 1)

	url := images[0].(string)
	require.True(t, strings.HasPrefix(url, ts.URL+MediaPrefix+"/"), url)
	mediaResp, data := ts.do(t, http.MethodGet, strings.TrimPrefix(url, ts.URL), nil, "", false)
	assert.Equal(t, http.StatusOK, mediaResp.StatusCode)
	assert.Equal(t, pngBytes, data)
}

func TestCreateProductRejectsNonImage(t *testing.T) {
	ts := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("images", "fake.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("this is plainly text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, _ := ts.do(t, http.MethodPost, "/products", &buf, mw.FormDataContentType(), true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSectionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, out := ts.do(t, http.MethodPost, "/sections", strings.NewReader(`{}`), "application/json", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Title required"}`, string(out))

	resp, out = ts.do(t, http.MethodPost, "/sections", strings.NewReader(`{"title":"Books"}`), "application/json", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created section.Section
	require.NoError(t, json.Unmarshal(out, &created))
	assert.Equal(t, "Books", created.Title)

	resp, _ = ts.do(t, http.MethodPut, "/sections/"+uuid.NewString(), strings.NewReader(`{"title":"x"}`), "application/json", true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	for i := 0; i < 2; i++ {
		resp, out = ts.do(t, http.MethodDelete, "/sections/"+created.ID, nil, "", true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"message":"Section deleted"}`, string(out))
	}
}

func TestDanglingSectionResolvesToNull(t *testing.T) {
	ts := newTestServer(t)

	_, out := ts.do(t, http.MethodPost, "/sections", strings.NewReader(`{"title":"Furniture"}`), "application/json", true)
	var sec section.Section
	require.NoError(t, json.Unmarshal(out, &sec))

	body, ct := productForm(t, map[string]string{"title": "Chair", "section": sec.ID}, 0)
	resp, out := ts.do(t, http.MethodPost, "/products", body, ct, true)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(out))
	var created product.Product
	require.NoError(t, json.Unmarshal(out, &created))

	_, out = ts.do(t, http.MethodGet, "/products/"+created.ID, nil, "", false)
	assert.Contains(t, string(out), `"title":"Furniture"`)

	ts.do(t, http.MethodDelete, "/sections/"+sec.ID, nil, "", true)

	resp, out = ts.do(t, http.MethodGet, "/products/"+created.ID, nil, "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Nil(t, got["section"])
}

func TestProductDeleteIsIdempotentAndGetMissingIs404(t *testing.T) {
	ts := newTestServer(t)

	id := uuid.NewString()
	for i := 0; i < 2; i++ {
		resp, out := ts.do(t, http.MethodDelete, "/products/"+id, nil, "", true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"message":"Product deleted everywhere"}`, string(out))
	}

	resp, out := ts.do(t, http.MethodGet, "/products/"+id, nil, "", false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Not found"}`, string(out))
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp, out := ts.do(t, http.MethodGet, "/health/live", nil, "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"live"}`, string(out))

	resp, _ = ts.do(t, http.MethodGet, "/health/ready", nil, "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, out = ts.do(t, http.MethodGet, "/metrics", nil, "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(out), "market_http_requests_total")
}
