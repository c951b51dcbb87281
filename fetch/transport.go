package fetch

import (
	"context"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rs/dnscache"
	"github.com/wirvsvirus/landingzone/constants"
	"golang.org/x/sync/semaphore"
)

// DialContextFunc is the signature of http.Transport.DialContext
type DialContextFunc func(ctx context.Context, network, addr string) (net.Conn, error)

var (
	sharedResolver     *dnscache.Resolver
	sharedResolverOnce sync.Once
)

// NewTransport returns an http.Transport which caches DNS lookups and limits
// the number of parallel lookups. All datasets of a batch usually live on the
// same host, so a single cached lookup serves the whole batch.
func NewTransport() *http.Transport {
	tr := http.DefaultTransport.(*http.Transport).Clone()

	// 0 removes the limit
	if maxConns := readEnvVarToInt(constants.EnvHTTPMaxConnsPerHost, 64); maxConns > 0 {
		tr.MaxConnsPerHost = maxConns
	}
	// -1 disables the DNS cache
	if readEnvVarToInt(constants.EnvDNSCacheRefreshIntervalSecs, 300) >= 0 {
		tr.DialContext = NewDialContext(&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		})
	}
	return tr
}

// NewDialContext wraps dialer with the shared DNS cache
func NewDialContext(dialer *net.Dialer) DialContextFunc {
	resolver := resolver()
	sem := semaphore.NewWeighted(int64(readEnvVarToInt(constants.EnvDNSLookupMaxParallel, 25)))

	return func(ctx context.Context, network string, addr string) (conn net.Conn, err error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		ips, err := resolver.LookupHost(ctx, host)
		sem.Release(1)
		if err != nil {
			return nil, err
		}

		// try each address until one connects
		for _, ip := range ips {
			conn, err = dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
			if err == nil {
				break
			}
		}
		return
	}
}

func resolver() *dnscache.Resolver {
	sharedResolverOnce.Do(func() {
		sharedResolver = &dnscache.Resolver{}
		refresh := readEnvVarToInt(constants.EnvDNSCacheRefreshIntervalSecs, 300)
		if refresh > 0 {
			go func() {
				t := time.NewTicker(time.Duration(refresh) * time.Second)
				defer t.Stop()
				for range t.C {
					sharedResolver.Refresh(true)
				}
			}()
		}
	})
	return sharedResolver
}

func readEnvVarToInt(name string, defaultVal int) int {
	val := defaultVal
	if envValue := os.Getenv(name); envValue != "" {
		if i, err := strconv.Atoi(envValue); err == nil {
			val = i
		}
	}
	return val
}
