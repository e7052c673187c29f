package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// HostCheck returns 403 when r.Host does not match allowedHost.
// allowedHost should be the bare hostname without scheme or port.
func HostCheck(allowedHost string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedHost == "" {
				next.ServeHTTP(w, r)
				return
			}
			reqHost := r.Host
			if host, _, err := net.SplitHostPort(reqHost); err == nil {
				reqHost = host
			}
			if !strings.EqualFold(strings.TrimSpace(reqHost), strings.TrimSpace(allowedHost)) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte("Forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// limiterPool keeps one token bucket per IP and forgets idle IPs.
type limiterPool struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	once    sync.Once
}

func newLimiterPool(limit rate.Limit, burst int, ttl time.Duration) *limiterPool {
	return &limiterPool{entries: make(map[string]*limiterEntry), limit: limit, burst: burst, ttl: ttl}
}

func (p *limiterPool) get(ip string) *rate.Limiter {
	p.once.Do(func() { go p.cleanup(5 * time.Minute) })

	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.entries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func (p *limiterPool) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		p.mu.Lock()
		now := time.Now()
		for ip, e := range p.entries {
			if now.Sub(e.lastUse) > p.ttl {
				delete(p.entries, ip)
			}
		}
		p.mu.Unlock()
	}
}

func (p *limiterPool) middleware(applies func(*http.Request) bool, message string) func(http.Handler) http.Handler {
	body := `{"success":false,"message":"` + message + `"}`
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if applies(r) && !p.get(clientip.RealClientIP(r)).Allow() {
				tooMany(w, body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginPath is rate limited more strictly than the rest of the API.
const LoginPath = "/api/auth/login"

var (
	globalLimiters = newLimiterPool(rate.Limit(5), 20, 30*time.Minute)
	loginLimiters  = newLimiterPool(rate.Every(5*time.Second), 3, 30*time.Minute)
)

// GlobalRateLimit limits each IP to 5 req/s, burst 20. Returns 429 when exceeded.
var GlobalRateLimit = globalLimiters.middleware(func(*http.Request) bool { return true }, "Too many requests. Please slow down.")

// LoginRateLimit applies a stricter limit to the login route only. Use after GlobalRateLimit.
var LoginRateLimit = loginLimiters.middleware(func(r *http.Request) bool {
	return r.Method == http.MethodPost && r.URL.Path == LoginPath
}, "Too many login attempts. Please try again later.")

// ProductionSecurity returns middlewares for production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit.
func ProductionSecurity(allowedHost string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		HostCheck(allowedHost),
		GlobalRateLimit,
		LoginRateLimit,
	}
}
