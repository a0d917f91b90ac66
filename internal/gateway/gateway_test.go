package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/florbal-stats/internal/cache"
	"github.com/fortuna/florbal-stats/internal/ingest/florbal"
)

type stubUpstream struct {
	mu    sync.Mutex
	calls int
	page  cache.Page
	err   error
}

func (s *stubUpstream) Get(_ context.Context, _ string, _ url.Values) (cache.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.page, s.err
}

type memoryCache struct {
	mu      sync.Mutex
	pages   map[string]cache.Page
	ttls    map[string]time.Duration
	readErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{pages: map[string]cache.Page{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) GetPage(_ context.Context, key string) (cache.Page, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return cache.Page{}, false, m.readErr
	}
	page, ok := m.pages[key]
	return page, ok, nil
}

func (m *memoryCache) SetPage(_ context.Context, key string, page cache.Page, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[key] = page
	m.ttls[key] = ttl
	return nil
}

func newTestGateway(up Upstream, opts ...Option) *Gateway {
	log, _ := test.NewNullLogger()
	return New(up, append([]Option{WithLogger(log)}, opts...)...)
}

func TestGateway_CachesOnlySuccess(t *testing.T) {
	up := &stubUpstream{page: cache.Page{Status: http.StatusOK, ContentType: "text/html", Body: []byte("<p>ok</p>")}}
	pages := newMemoryCache()
	gw := newTestGateway(up, WithCache(pages, time.Minute))

	query := url.Values{"filter[search]": {"Tatran"}}
	for i := 0; i < 3; i++ {
		page, err := gw.Relay(context.Background(), "/directory/teams/", query)
		require.NoError(t, err)
		assert.Equal(t, "<p>ok</p>", string(page.Body))
	}
	assert.Equal(t, 1, up.calls)
	assert.Equal(t, time.Minute, pages.ttls["/directory/teams/?filter%5Bsearch%5D=Tatran"])

	up.page = cache.Page{Status: http.StatusNotFound, Body: []byte("missing")}
	for i := 0; i < 2; i++ {
		page, err := gw.Relay(context.Background(), "/match/detail/roster/1", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, page.Status)
	}
	assert.Equal(t, 3, up.calls, "error responses are never cached")
	assert.NotContains(t, pages.pages, "/match/detail/roster/1")
}

func TestGateway_CacheErrorIsAMiss(t *testing.T) {
	up := &stubUpstream{page: cache.Page{Status: http.StatusOK, Body: []byte("fresh")}}
	pages := newMemoryCache()
	pages.readErr = errors.New("connection reset")
	gw := newTestGateway(up, WithCache(pages, 0))

	page, err := gw.Relay(context.Background(), "/", nil)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(page.Body))
	assert.Equal(t, DefaultCacheTTL, pages.ttls["/"])
}

func TestGateway_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		upstream   *stubUpstream
		wantStatus int
		wantBody   string
		wantType   string
	}{
		{
			name:       "relays status, type and body",
			method:     http.MethodGet,
			target:     "/api/florbal/team/detail/matches/41177",
			upstream:   &stubUpstream{page: cache.Page{Status: http.StatusOK, ContentType: "text/html; charset=UTF-8", Body: []byte("<div class=\"Match\"></div>")}},
			wantStatus: http.StatusOK,
			wantBody:   "<div class=\"Match\"></div>",
			wantType:   "text/html; charset=UTF-8",
		},
		{
			name:       "passes upstream errors through",
			method:     http.MethodGet,
			target:     "/api/florbal/match/detail/roster/0",
			upstream:   &stubUpstream{page: cache.Page{Status: http.StatusInternalServerError, Body: []byte("boom")}},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "boom",
		},
		{
			name:       "unreachable upstream",
			method:     http.MethodGet,
			target:     "/api/florbal/",
			upstream:   &stubUpstream{err: errors.New("dial tcp: i/o timeout")},
			wantStatus: http.StatusBadGateway,
			wantBody:   "upstream unreachable\n",
		},
		{
			name:       "rejects writes",
			method:     http.MethodPost,
			target:     "/api/florbal/directory/teams/",
			upstream:   &stubUpstream{},
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newTestGateway(tt.upstream)
			rec := httptest.NewRecorder()
			gw.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestGateway_ServesRosterClient(t *testing.T) {
	up := &stubUpstream{page: cache.Page{Status: http.StatusOK, Body: []byte(`
		<div id="tab-domaci"><h3>Sokol</h3><table><tbody>
			<tr><td>7</td><td><a href="/p/1">Jan Novák</a></td><td>U</td><td>2001</td></tr>
		</tbody></table></div>`)}}
	log, _ := test.NewNullLogger()
	client := florbal.NewClient(newTestGateway(up), florbal.WithLogger(log))

	res := client.LoadRoster(context.Background(), "1227627")
	require.True(t, res.OK, res.Error)
	assert.Equal(t, "Sokol", res.Data.Home.TeamName)
	assert.Equal(t, 1, res.Data.PlayerCount())
}

func TestHTTPUpstream(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nenalezeno"))
	}))
	defer srv.Close()

	up := NewHTTPUpstream(srv.URL, 0)
	page, err := up.Get(context.Background(), "/team/detail/overview/1", url.Values{"season": {"2024"}})
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, page.Status)
	assert.Equal(t, "nenalezeno", string(page.Body))
	assert.Equal(t, "text/html; charset=UTF-8", page.ContentType)

	require.NotNil(t, got)
	assert.Equal(t, "/team/detail/overview/1", got.URL.Path)
	assert.Equal(t, "2024", got.URL.Query().Get("season"))
	assert.Equal(t, florbal.UserAgent, got.Header.Get("User-Agent"))
	assert.Equal(t, acceptLanguageHeader, got.Header.Get("Accept-Language"))
}

func TestHTTPUpstream_LimiterHonoursContext(t *testing.T) {
	up := NewHTTPUpstream("http://127.0.0.1:1", 0.001)
	// Drain the single burst token so the next call must wait.
	require.True(t, up.limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := up.Get(ctx, "/", nil)
	assert.Error(t, err)
}
