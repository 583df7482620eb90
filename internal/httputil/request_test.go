package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded-for wins", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.7"},
		{"real-ip next", map[string]string{"X-Real-IP": "203.0.113.8"}, "10.0.0.2:1234", "203.0.113.8"},
		{"falls back to peer without port", nil, "10.0.0.2:1234", "10.0.0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestTenantHost(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Host = "Shop1.Example:8080"
	assert.Equal(t, "shop1.example", TenantHost(r))

	r.Header.Set("X-Forwarded-Host", "shop2.example")
	assert.Equal(t, "shop2.example", TenantHost(r))
}

func TestFlattenHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Add("X-Multi", "first")
	h.Add("X-Multi", "second")

	flat := FlattenHeaders(h)
	assert.Equal(t, "application/json", flat["Content-Type"])
	assert.Equal(t, "first", flat["X-Multi"])

	assert.Nil(t, FlattenHeaders(http.Header{}))
}
