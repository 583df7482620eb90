package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the originating client IP, honoring X-Forwarded-For and
// X-Real-IP set by upstream proxies before falling back to the socket peer.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// TenantHost resolves the tenant host for a request: the Host header (or
// X-Forwarded-Host when present) with any port stripped and lowercased.
func TenantHost(r *http.Request) string {
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(strings.TrimSpace(host))
}

// FlattenHeaders converts an http.Header to a single-valued map using the
// first value of each header, the same shape the original sender saw.
func FlattenHeaders(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	flat := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) > 0 {
			flat[name] = values[0]
		}
	}
	return flat
}
