package clientip

import (
	"net/http/httptest"
	"testing"
)

func TestRealClientIP(t *testing.T) {
	tests := []struct {
		remoteAddr string
		forwarded  string
		expected   string
	}{
		{"10.0.0.7:52311", "", "10.0.0.7"},
		{"[2001:db8::1]:443", "", "2001:db8::1"},
		{"10.0.0.7", "", "10.0.0.7"},
		{"10.0.0.7:52311", "203.0.113.9", "10.0.0.7"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/api/consent", nil)
		r.RemoteAddr = tt.remoteAddr
		if tt.forwarded != "" {
			r.Header.Set("X-Forwarded-For", tt.forwarded)
		}
		if got := RealClientIP(r); got != tt.expected {
			t.Fatalf("%s: expected %s, got %s", tt.remoteAddr, tt.expected, got)
		}
	}
}
