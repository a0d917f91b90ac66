package florbal

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

const (
	// UpstreamBaseURL is the federation site; the gateway mirrors its path layout.
	UpstreamBaseURL = "https://www.ceskyflorbal.cz"

	// UserAgent is sent on every request to the gateway and by the gateway upstream.
	UserAgent = "Mozilla/5.0 (compatible; florbal-stats)"

	// Timeout applies to GatewayFetcher requests.
	Timeout = 30 * time.Second

	MinQueryLength = 2
	SearchPageSize = 50
)

const (
	opLoadRoster      = "load_roster"
	opLoadTeamMatches = "load_team_matches"
	opSearchTeams     = "search_teams"
)

var numericID = regexp.MustCompile(`^\d+$`)

var fetchResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "florbal",
	Name:      "fetch_results_total",
	Help:      "Outcomes of roster, match list and team search fetches.",
}, []string{"operation", "outcome"})

// Fetcher issues a GET against the gateway and returns the raw status and body.
// A non-nil error means the request never produced a response.
type Fetcher interface {
	Fetch(ctx context.Context, path string, query url.Values) (status int, body []byte, err error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, path string, query url.Values) (int, []byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, path string, query url.Values) (int, []byte, error) {
	return f(ctx, path, query)
}

// Client validates input, fetches federation pages through the gateway and turns
// every outcome into a Result. No error or panic escapes its public methods.
type Client struct {
	fetcher Fetcher
	now     func() time.Time
	log     logrus.FieldLogger
}

// Option customises a Client.
type Option func(*Client)

// WithClock overrides the clock used for year inference of match dates.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithLogger overrides the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a Client fetching through fetcher.
func NewClient(fetcher Fetcher, opts ...Option) *Client {
	c := &Client{
		fetcher: fetcher,
		now:     time.Now,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("component", "florbal-client")
	return c
}

// LoadRoster fetches and parses the rosters of a match.
func (c *Client) LoadRoster(ctx context.Context, matchID string) Result[MatchRoster] {
	if !numericID.MatchString(matchID) {
		return reject[MatchRoster](c, opLoadRoster, ErrInvalidMatchID)
	}

	path := "/match/detail/roster/" + matchID
	return fetchAndParse(ctx, c, opLoadRoster, path, nil, func(doc Node) (MatchRoster, error) {
		return ExtractRoster(doc, matchID)
	})
}

// LoadTeamMatches fetches and parses a team's match list.
func (c *Client) LoadTeamMatches(ctx context.Context, teamID string) Result[[]MatchListItem] {
	if !numericID.MatchString(teamID) {
		return reject[[]MatchListItem](c, opLoadTeamMatches, ErrInvalidTeamID)
	}

	path := "/team/detail/matches/" + teamID
	now := c.now()
	return fetchAndParse(ctx, c, opLoadTeamMatches, path, nil, func(doc Node) ([]MatchListItem, error) {
		return ExtractMatchList(doc, now)
	})
}

// SearchTeams searches the team directory by name.
func (c *Client) SearchTeams(ctx context.Context, query string) Result[[]TeamSearchResult] {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return reject[[]TeamSearchResult](c, opSearchTeams, ErrQueryTooShort)
	}

	params := url.Values{}
	params.Set("filter[search]", query)
	params.Set("itemsPerPage", fmt.Sprint(SearchPageSize))

	return fetchAndParse(ctx, c, opSearchTeams, "/directory/teams/", params, ExtractTeamSearch)
}

func reject[T any](c *Client, op string, err *Error) Result[T] {
	c.log.WithFields(logrus.Fields{"operation": op}).Debug("rejected input")
	fetchResults.WithLabelValues(op, string(err.Kind)).Inc()
	return Fail[T](err)
}

func fetchAndParse[T any](ctx context.Context, c *Client, op, path string, query url.Values, extract func(Node) (T, error)) Result[T] {
	start := time.Now()
	log := c.log.WithFields(logrus.Fields{"operation": op, "path": path})

	status, body, err := c.fetcher.Fetch(ctx, path, query)
	if err != nil {
		log.WithError(err).Warn("gateway request failed")
		return finish[T](op, ErrUnreachable.withCause(err))
	}
	if status < 200 || status > 299 {
		log.WithField("status", status).Warn("gateway returned error status")
		return finish[T](op, httpError(status))
	}

	data, err := parsePage(body, extract)
	if err != nil {
		log.WithError(err).WithField("kind", KindOf(err)).Info("page did not yield results")
		return finish[T](op, err)
	}

	log.WithField("duration", time.Since(start)).Debug("fetched")
	fetchResults.WithLabelValues(op, "ok").Inc()
	return Ok(data)
}

func finish[T any](op string, err error) Result[T] {
	fetchResults.WithLabelValues(op, string(KindOf(err))).Inc()
	return Fail[T](err)
}

// parsePage turns a panicking extractor into a parse failure.
func parsePage[T any](body []byte, extract func(Node) (T, error)) (data T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = parseError(fmt.Errorf("extractor panic: %v", r))
		}
	}()

	doc, err := ParseHTML(bytes.NewReader(body))
	if err != nil {
		return data, parseError(err)
	}
	return extract(doc)
}

// GatewayFetcher fetches pages over HTTP from a gateway (or the upstream host itself,
// which shares the same path layout).
type GatewayFetcher struct {
	http *resty.Client
}

// NewGatewayFetcher creates a fetcher rooted at baseURL, e.g.
// "http://localhost:8080/api/florbal".
func NewGatewayFetcher(baseURL string) *GatewayFetcher {
	if baseURL == "" {
		baseURL = UpstreamBaseURL
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(Timeout).
		SetHeader("User-Agent", UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "cs,en;q=0.9")

	return &GatewayFetcher{http: httpClient}
}

func (f *GatewayFetcher) Fetch(ctx context.Context, path string, query url.Values) (int, []byte, error) {
	req := f.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	res, err := req.Get(path)
	if err != nil {
		return 0, nil, err
	}
	return res.StatusCode(), res.Body(), nil
}
