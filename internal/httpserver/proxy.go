package httpserver

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"finitefield.org/heara-web/internal/platform/httpx"
	"finitefield.org/heara-web/internal/platform/observability"
)

// NewAPIProxy forwards requests to upstream unchanged, path included.
// Transport failures surface as a 502 in the API's error envelope.
func NewAPIProxy(upstream string, timeout time.Duration) (http.Handler, error) {
	upstream = strings.TrimSpace(upstream)
	if upstream == "" {
		return nil, errors.New("httpserver: upstream is required")
	}
	target, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("httpserver: parse upstream: %w", err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("httpserver: upstream must be http or https, got %q", target.Scheme)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if timeout > 0 {
		transport.ResponseHeaderTimeout = timeout
		transport.DialContext = (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			observability.FromContext(r.Context()).Warn("api upstream failed",
				zap.String("upstream", target.Host),
				zap.Error(err),
			)
			httpx.WriteError(r.Context(), w, httpx.NewError("Bad Gateway", http.StatusBadGateway))
		},
	}, nil
}
