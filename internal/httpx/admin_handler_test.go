package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dajiagoods/storefront/internal/admin"
)

func newAdminServer(t *testing.T, password string) *httptest.Server {
	t.Helper()
	router := NewRouter("local-only")
	h := &AdminHandler{
		Auth:  &admin.Auth{Password: password, Secret: []byte("test-secret"), TTL: time.Hour},
		Admin: &admin.Service{}, // no gateway
	}
	h.Register(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestAdminLoginDisabled(t *testing.T) {
	srv := newAdminServer(t, "")
	resp, _ := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/admin/login", map[string]any{"password": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAdminLoginWrongPassword(t *testing.T) {
	srv := newAdminServer(t, "s3cret")
	resp, _ := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/admin/login", map[string]any{"password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	srv := newAdminServer(t, "s3cret")
	resp, _ := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/admin/leads", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminTokenFlow(t *testing.T) {
	srv := newAdminServer(t, "s3cret")

	resp, body := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/admin/login", map[string]any{"password": "s3cret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/admin/leads", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	got, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = got.Body.Close() }()

	// authenticated, but no remote store behind the listing
	assert.Equal(t, http.StatusServiceUnavailable, got.StatusCode)
}

func TestAdminDeleteMediaNeedsRemoteStore(t *testing.T) {
	srv := newAdminServer(t, "s3cret")

	// unauthenticated first
	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/admin/media/m1", nil)
	require.NoError(t, err)
	got, err := srv.Client().Do(req)
	require.NoError(t, err)
	_ = got.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, got.StatusCode)

	resp, body := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/admin/login", map[string]any{"password": "s3cret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["token"].(string)

	req, err = http.NewRequest(http.MethodDelete, srv.URL+"/admin/media/m1", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	got, err = srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = got.Body.Close() }()
	assert.Equal(t, http.StatusServiceUnavailable, got.StatusCode)
}

func TestAdminDiagnostics(t *testing.T) {
	srv := newAdminServer(t, "s3cret")

	resp, body := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/admin/login", map[string]any{"password": "s3cret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["token"].(string)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/admin/diagnostics", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	got, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = got.Body.Close() }()
	require.Equal(t, http.StatusOK, got.StatusCode)
}
