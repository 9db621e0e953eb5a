package web

import (
	"context"
	"net"
	"net/http"

	"github.com/jbec2912-cell/csv-filter-tool/internal/core"
)

// clientIP returns the request's client address without the port.
// RemoteAddr has already been processed by the RealIP middleware.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// withRequestMetadata adds the client IP to ctx for conversion logging.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClientIP(ctx, clientIP(r))
}
