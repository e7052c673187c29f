package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP is the peer address of r without its port. Forwarding headers are
// ignored, so a client cannot pick the key its rate limit or cookie consent is stored under.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}
