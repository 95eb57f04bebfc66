package webui

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/time/rate"
)

// rateLimitedPaths are the form posts that reach the auth provider.
var rateLimitedPaths = map[string]bool{
	"/login":             true,
	"/register":          true,
	"/setup-admin-claim": true,
}

// defaultIdleTTL is used when the limit never refills a bucket.
const defaultIdleTTL = time.Hour

type clientLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// AuthLimiter limits auth form posts per client address.
type AuthLimiter struct {
	limit rate.Limit
	burst int

	// trustedProxyHops is the number of proxies in front of the server that
	// append to X-Forwarded-For.  Zero means the socket peer is the client.
	trustedProxyHops int

	// Limiters idle this long have refilled completely and are dropped.
	idleTTL time.Duration

	now func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

func NewAuthLimiter(limit rate.Limit, burst int, trustedProxyHops int) *AuthLimiter {
	idleTTL := defaultIdleTTL
	if limit > 0 && limit != rate.Inf {
		idleTTL = time.Duration(float64(burst) / float64(limit) * float64(time.Second))
	}
	if idleTTL < time.Minute {
		idleTTL = time.Minute
	}

	return &AuthLimiter{
		limit:            limit,
		burst:            burst,
		trustedProxyHops: trustedProxyHops,
		idleTTL:          idleTTL,
		now:              time.Now,
		clients:          map[string]*clientLimiter{},
	}
}

func (l *AuthLimiter) limiter(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		for addr, c := range l.clients {
			if now.Sub(c.lastSeen) >= l.idleTTL {
				delete(l.clients, addr)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[client]
	if !ok {
		c = &clientLimiter{lim: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = c
	}
	c.lastSeen = now
	return c.lim
}

func (l *AuthLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func peerHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// clientAddr returns the address the nearest trusted proxy saw the request
// come from.  Hops to the left of it are client-supplied and ignored.
func clientAddr(r *http.Request, trustedProxyHops int) string {
	if trustedProxyHops <= 0 {
		return peerHost(r)
	}

	var hops []string
	for _, v := range r.Header.Values("X-Forwarded-For") {
		for _, hop := range strings.Split(v, ",") {
			hops = append(hops, strings.TrimSpace(hop))
		}
	}
	if len(hops) < trustedProxyHops {
		return peerHost(r)
	}
	if hop := hops[len(hops)-trustedProxyHops]; hop != "" {
		return hop
	}
	return peerHost(r)
}

func (l *AuthLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && rateLimitedPaths[r.URL.Path] {
			client := clientAddr(r, l.trustedProxyHops)
			if !l.limiter(client).Allow() {
				glog.Warningf("Rate limited %s %s from %q", r.Method, r.URL.Path, client)
				http.Error(w, "Çok fazla deneme. Lütfen biraz sonra tekrar deneyin.", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
