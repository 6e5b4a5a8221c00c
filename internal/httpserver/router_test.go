package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"finitefield.org/heara-web/internal/api"
	"finitefield.org/heara-web/internal/devapi"
	"finitefield.org/heara-web/internal/platform/config"
	"finitefield.org/heara-web/internal/platform/idempotency"
)

type failingProducts struct{}

func (failingProducts) ListProducts(context.Context) ([]api.Product, error) {
	return nil, errors.New("catalogue offline")
}

func newTestRouter(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	store := devapi.NewStore()
	store.Seed()
	base := []Option{
		WithStaticFS(fstest.MapFS{"site.css": {Data: []byte("body{}")}}),
		WithAppFS(fstest.MapFS{"site.wasm": {Data: []byte("\x00asm")}}),
		WithAPIRoutes(devapi.NewHandler(store, devapi.WithIdempotency(idempotency.NewMemoryStore())).Routes),
		WithProducts(store, 0),
	}
	r, err := NewRouter(append(base, opts...)...)
	require.NoError(t, err)
	return r
}

func get(t *testing.T, h http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestLandingPageRendersInResolvedLocale(t *testing.T) {
	h := newTestRouter(t)

	rr := get(t, h, "/", http.Header{"Accept-Language": {"he-IL,he;q=0.9,en;q=0.5"}})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "he", rr.Header().Get("Content-Language"))
	require.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html"))

	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	require.Equal(t, "rtl", doc.Find("html").AttrOr("dir", ""))
	require.Equal(t, 1, doc.Find("#gallery-carousel .carousel-track").Length())
	// "Any product" plus the two seeded products.
	require.Equal(t, 3, doc.Find(`select[name="productInterest"] option`).Length())
}

func TestLandingSurvivesProductFailure(t *testing.T) {
	h := newTestRouter(t, WithProducts(failingProducts{}, time.Second))

	rr := get(t, h, "/?hl=en", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find(`select[name="productInterest"] option`).Length())
}

func TestAdminPageIsNotCached(t *testing.T) {
	rr := get(t, newTestRouter(t), "/admin", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find("#leads-table tbody").Length())
	require.Equal(t, 1, doc.Find("#lead-status-filter").Length())
}

func TestHealthAndAssets(t *testing.T) {
	h := newTestRouter(t)

	rr := get(t, h, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	require.Equal(t, "ok", payload["status"])

	rr = get(t, h, "/static/site.css", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "body{}", rr.Body.String())

	rr = get(t, h, "/app/site.wasm", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/wasm", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Header().Get("Cache-Control"), "max-age=300")
}

func TestDevAPIMounted(t *testing.T) {
	h := newTestRouter(t)

	rr := get(t, h, "/api/products", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var products []api.Product
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &products))
	require.Len(t, products, 2)

	rr = get(t, h, "/api/nope", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	var body struct {
		Detail    string `json:"detail"`
		RequestID string `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "Not Found", body.Detail)
	require.NotEmpty(t, body.RequestID)
}

func TestAPIProxyForwardsPathAndBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/leads", r.URL.Path)
		require.Equal(t, "closed", r.URL.Query().Get("status"))
		require.NotEmpty(t, r.Header.Get("X-Forwarded-For"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(upstream.Close)

	proxy, err := NewAPIProxy(upstream.URL, time.Second)
	require.NoError(t, err)
	r, err := NewRouter(WithAPIHandler(proxy))
	require.NoError(t, err)

	rr := get(t, r, "/api/leads?status=closed", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "[]", rr.Body.String())
}

func TestAPIProxyUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	addr := upstream.URL
	upstream.Close()

	proxy, err := NewAPIProxy(addr, time.Second)
	require.NoError(t, err)
	r, err := NewRouter(WithAPIHandler(proxy))
	require.NoError(t, err)

	rr := get(t, r, "/api/products", nil)
	require.Equal(t, http.StatusBadGateway, rr.Code)
	require.Contains(t, rr.Body.String(), `"detail":"Bad Gateway"`)
}

func TestNewAPIProxyRejectsBadUpstream(t *testing.T) {
	for _, upstream := range []string{"", "  ", "ftp://example.com", "://broken"} {
		_, err := NewAPIProxy(upstream, 0)
		require.Error(t, err, upstream)
	}
}

func TestServeDrainsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(config.ServerConfig{ReadTimeout: time.Second, WriteTimeout: time.Second}, http.HandlerFunc(health))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, srv, ln, time.Second, nil) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
