package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"finitefield.org/heara-web/internal/i18n"
)

func localeHandler(t *testing.T) http.Handler {
	t.Helper()
	bundle, err := i18n.Default()
	require.NoError(t, err)
	return Locale(bundle)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(Lang(r, "xx")))
	}))
}

func TestLocaleResolution(t *testing.T) {
	tests := []struct {
		name   string
		target string
		cookie string
		accept string
		want   string
	}{
		{name: "default", target: "/", want: "en"},
		{name: "accept language", target: "/", accept: "he-IL,he;q=0.9", want: "he"},
		{name: "cookie beats header", target: "/", cookie: "en", accept: "he", want: "en"},
		{name: "query beats cookie", target: "/?hl=he", cookie: "en", want: "he"},
		{name: "unknown query falls back", target: "/?hl=fr", want: "en"},
	}
	h := localeHandler(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LocaleCookie, Value: tc.cookie})
			}
			if tc.accept != "" {
				req.Header.Set("Accept-Language", tc.accept)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			require.Equal(t, tc.want, rr.Body.String())
			require.Equal(t, tc.want, rr.Header().Get("Content-Language"))
			require.Contains(t, rr.Header().Values("Vary"), "Accept-Language")
		})
	}
}

func TestLocaleQueryPersistsCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	localeHandler(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?hl=HE", nil))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, LocaleCookie, cookies[0].Name)
	require.Equal(t, "he", cookies[0].Value)
}

func TestLangWithoutMiddleware(t *testing.T) {
	require.Equal(t, "en", Lang(httptest.NewRequest(http.MethodGet, "/", nil), "en"))
}

func TestAssetsWithCache(t *testing.T) {
	fsys := fstest.MapFS{"site.css": {Data: []byte("body{}")}}
	h := AssetsWithCache("/static", fsys, "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/site.css", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "body{}", rr.Body.String())
	etag := rr.Header().Get("ETag")
	require.NotEmpty(t, etag)
	require.Contains(t, rr.Header().Get("Cache-Control"), "max-age=604800")

	req := httptest.NewRequest(http.MethodGet, "/static/site.css", nil)
	req.Header.Set("If-None-Match", etag)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotModified, rr.Code)
}

func TestNoStore(t *testing.T) {
	rr := httptest.NewRecorder()
	NoStore(http.NotFoundHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}
