// Package naver provides a client for the Naver Local Search API.
package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://openapi.naver.com"

// mapx/mapy carry WGS84 degrees scaled by 1e7.
const coordScale = 1e7

// Client defines the Naver Local Search operations.
type Client interface {
	LocalSearch(ctx context.Context, q LocalQuery) (*LocalSearchResponse, error)
}

// LocalQuery holds parameters for GET /v1/search/local.json.
type LocalQuery struct {
	Query   string
	Display int // 1-5, defaults to 5
	Start   int // defaults to 1
	Sort    string
}

// LocalSearchResponse is the local search response.
type LocalSearchResponse struct {
	Total   int    `json:"total"`
	Start   int    `json:"start"`
	Display int    `json:"display"`
	Items   []Item `json:"items"`
}

// Item is a single local search result. Titles may embed <b> highlight
// tags around matched terms.
type Item struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Telephone   string `json:"telephone"`
	Address     string `json:"address"`
	RoadAddress string `json:"roadAddress"`
	MapX        string `json:"mapx"`
	MapY        string `json:"mapy"`
}

// Coord parses the item's mapx/mapy fields into longitude and latitude.
func (it Item) Coord() (lon, lat float64, err error) {
	x, err := strconv.ParseFloat(it.MapX, 64)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "naver: parse mapx %q", it.MapX)
	}
	y, err := strconv.ParseFloat(it.MapY, 64)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "naver: parse mapy %q", it.MapY)
	}
	return x / coordScale, y / coordScale, nil
}

// APIError is returned when Naver responds with a non-2xx status.
type APIError struct {
	StatusCode int
	ErrorCode  string
	Message    string
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("naver: HTTP %d %s: %s", e.StatusCode, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("naver: HTTP %d: %s", e.StatusCode, e.Message)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the requests-per-second limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

type httpClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	http         *http.Client
	limiter      *rate.Limiter
}

// NewClient creates a Naver search client authenticated with application
// credentials.
func NewClient(clientID, clientSecret string, opts ...Option) Client {
	c := &httpClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(10, 10),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) LocalSearch(ctx context.Context, q LocalQuery) (*LocalSearchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "naver: rate limit")
	}

	params := url.Values{"query": {q.Query}}
	if q.Display > 0 {
		params.Set("display", strconv.Itoa(q.Display))
	}
	if q.Start > 0 {
		params.Set("start", strconv.Itoa(q.Start))
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/search/local.json?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "naver: create request")
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "naver: execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "naver: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, data)
	}

	var result LocalSearchResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, eris.Wrap(err, "naver: decode response")
	}
	return &result, nil
}

func newAPIError(status int, body []byte) *APIError {
	var parsed struct {
		ErrorMessage string `json:"errorMessage"`
		ErrorCode    string `json:"errorCode"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.ErrorMessage != "" {
		return &APIError{StatusCode: status, ErrorCode: parsed.ErrorCode, Message: parsed.ErrorMessage}
	}
	return &APIError{StatusCode: status, Message: string(body)}
}
