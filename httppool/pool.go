// Package httppool provides a process-wide pool of *http.Client instances
// keyed by (provider, base URL), backed by a single shared DNS cache. Every
// adapter goes through Get instead of constructing its own client, so
// connections and cached DNS lookups are reused across providers sharing a
// host (§4.9: "shared HTTP client").
package httppool

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/dnscache"
)

type key struct {
	provider string
	baseURL  string
}

var (
	mu        sync.Mutex
	clients   = make(map[key]*http.Client)
	resolver  = &dnscache.Resolver{}
	resolveCh chan struct{}
	initOnce  sync.Once
)

// initResolverRefresh starts the background DNS-cache refresh loop exactly
// once per process, regardless of how many times Get is called.
func initResolverRefresh() {
	initOnce.Do(func() {
		resolveCh = make(chan struct{})
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					resolver.Refresh(true)
				case <-resolveCh:
					return
				}
			}
		}()
	})
}

// Get returns the shared *http.Client for (provider, baseURL), constructing
// and caching one on first use. Subsequent calls with the same key return
// the identical client so idle connections are actually reused (§4.9:
// "init-once semantics").
func Get(provider, baseURL string) *http.Client {
	initResolverRefresh()

	k := key{provider: provider, baseURL: baseURL}

	mu.Lock()
	defer mu.Unlock()
	if c, ok := clients[k]; ok {
		return c
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: 100,
		MaxConnsPerHost:     200,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			ips, err := resolver.LookupHost(ctx, host)
			if err != nil {
				return nil, err
			}
			var d net.Dialer
			var lastErr error
			for _, ip := range ips {
				conn, err := d.DialContext(ctx, network, net.JoinHostPort(ip, port))
				if err == nil {
					return conn, nil
				}
				lastErr = err
			}
			return nil, lastErr
		},
	}

	c := &http.Client{Transport: transport}
	clients[k] = c
	return c
}

// Reset discards all cached clients and stops the DNS-refresh loop. It
// exists for tests that need a clean pool between cases; production
// callers never need it since the pool lives for the process lifetime.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	clients = make(map[key]*http.Client)
	if resolveCh != nil {
		close(resolveCh)
	}
	resolveCh = nil
	initOnce = sync.Once{}
	resolver = &dnscache.Resolver{}
}
