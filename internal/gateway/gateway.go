package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/florbal-stats/internal/cache"
	"github.com/fortuna/florbal-stats/internal/ingest/florbal"
)

// Prefix is the mount point of the gateway; everything after it is the upstream path.
const Prefix = "/api/florbal"

// DefaultCacheTTL is used when a cache is configured without a TTL.
const DefaultCacheTTL = 10 * time.Minute

var (
	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "florbal",
		Subsystem: "gateway",
		Name:      "upstream_duration_seconds",
		Help:      "Latency of upstream page requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})

	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "florbal",
		Subsystem: "gateway",
		Name:      "cache_requests_total",
		Help:      "Page cache lookups by result.",
	}, []string{"result"})
)

// ErrMethodNotAllowed is returned for anything but GET and HEAD.
var ErrMethodNotAllowed = errors.New("only GET is relayed")

// Upstream performs the actual request against the federation site.
type Upstream interface {
	Get(ctx context.Context, path string, query url.Values) (cache.Page, error)
}

// PageCache stores successful upstream responses.
type PageCache interface {
	GetPage(ctx context.Context, key string) (cache.Page, bool, error)
	SetPage(ctx context.Context, key string, page cache.Page, ttl time.Duration) error
}

// Gateway relays requests to the upstream site, optionally through a page cache.
type Gateway struct {
	upstream Upstream
	cache    PageCache
	ttl      time.Duration
	log      logrus.FieldLogger
}

var _ florbal.Fetcher = (*Gateway)(nil)

// Option customises a Gateway.
type Option func(*Gateway)

// WithCache enables the page cache.
func WithCache(c PageCache, ttl time.Duration) Option {
	return func(g *Gateway) {
		g.cache = c
		g.ttl = ttl
	}
}

// WithLogger overrides the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(g *Gateway) {
		g.log = log
	}
}

// New creates a gateway relaying to upstream.
func New(upstream Upstream, opts ...Option) *Gateway {
	g := &Gateway{
		upstream: upstream,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.cache != nil && g.ttl <= 0 {
		g.ttl = DefaultCacheTTL
	}
	g.log = g.log.WithField("component", "gateway")
	return g
}

// Relay returns the upstream response for path and query. Status and body are passed
// through untouched; an error means the upstream could not be reached.
func (g *Gateway) Relay(ctx context.Context, path string, query url.Values) (cache.Page, error) {
	key := cacheKey(path, query)

	if g.cache != nil {
		page, ok, err := g.cache.GetPage(ctx, key)
		switch {
		case err != nil:
			cacheRequests.WithLabelValues("error").Inc()
			g.log.WithError(err).WithField("key", key).Warn("page cache read failed")
		case ok:
			cacheRequests.WithLabelValues("hit").Inc()
			return page, nil
		default:
			cacheRequests.WithLabelValues("miss").Inc()
		}
	}

	start := time.Now()
	page, err := g.upstream.Get(ctx, path, query)
	if err != nil {
		upstreamDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return cache.Page{}, err
	}
	upstreamDuration.WithLabelValues(statusClass(page.Status)).Observe(time.Since(start).Seconds())

	g.log.WithFields(logrus.Fields{
		"path":     path,
		"status":   page.Status,
		"duration": time.Since(start),
	}).Debug("upstream response")

	if g.cache != nil && isSuccess(page.Status) {
		if err := g.cache.SetPage(ctx, key, page, g.ttl); err != nil {
			g.log.WithError(err).WithField("key", key).Warn("page cache write failed")
		}
	}

	return page, nil
}

// Fetch lets the gateway serve the roster client in-process.
func (g *Gateway) Fetch(ctx context.Context, path string, query url.Values) (int, []byte, error) {
	page, err := g.Relay(ctx, path, query)
	if err != nil {
		return 0, nil, err
	}
	return page.Status, page.Body, nil
}

// ServeHTTP relays Prefix + path to the upstream site.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, ErrMethodNotAllowed.Error(), http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, Prefix)
	if path == "" {
		path = "/"
	}

	page, err := g.Relay(r.Context(), path, r.URL.Query())
	if err != nil {
		g.log.WithError(err).WithField("path", path).Warn("upstream unreachable")
		http.Error(w, "upstream unreachable", http.StatusBadGateway)
		return
	}

	if page.ContentType != "" {
		w.Header().Set("Content-Type", page.ContentType)
	}
	w.WriteHeader(page.Status)
	if r.Method == http.MethodGet {
		_, _ = w.Write(page.Body)
	}
}

func cacheKey(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "invalid"
	}
	return strconv.Itoa(status/100) + "xx"
}
