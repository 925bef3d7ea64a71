package server

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/lawnchairsociety/killrate/internal/config"
)

var (
	errFeedFull      = errors.New("feed subscriber limit reached")
	errTooManyFromIP = errors.New("too many feed subscriptions from this address")
)

// subscriberGate caps feed subscriptions per client address and overall.
// A zero limit disables that cap.
type subscriberGate struct {
	mu       sync.Mutex
	perIP    map[string]int
	total    int
	maxPerIP int
	maxTotal int
}

func newSubscriberGate(cfg config.FeedConfig) *subscriberGate {
	return &subscriberGate{
		perIP:    make(map[string]int),
		maxPerIP: cfg.MaxPerIP,
		maxTotal: cfg.MaxTotal,
	}
}

// admit reserves a subscription for ip or returns the limit that refused it.
func (g *subscriberGate) admit(ip string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case g.maxTotal > 0 && g.total >= g.maxTotal:
		return errFeedFull
	case g.maxPerIP > 0 && g.perIP[ip] >= g.maxPerIP:
		return errTooManyFromIP
	}
	g.perIP[ip]++
	g.total++
	return nil
}

// leave returns a reservation. Unknown addresses are ignored.
func (g *subscriberGate) leave(ip string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.perIP[ip]
	if !ok {
		return
	}
	if n <= 1 {
		delete(g.perIP, ip)
	} else {
		g.perIP[ip] = n - 1
	}
	g.total--
}

// count reports active subscriptions and distinct client addresses.
func (g *subscriberGate) count() (subscribers, addresses int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.total, len(g.perIP)
}

// clientAddress identifies the subscriber behind r, trusting the first
// X-Forwarded-For hop, then X-Real-IP, then the socket peer.
func clientAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
