// Package kakao provides a client for the Kakao Local REST API:
// keyword search, category search, and coordinate-to-address lookup.
package kakao

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

const defaultBaseURL = "https://dapi.kakao.com"

// Client defines the Kakao Local API operations.
type Client interface {
	SearchKeyword(ctx context.Context, q KeywordQuery) (*SearchResponse, error)
	SearchCategory(ctx context.Context, q CategoryQuery) (*SearchResponse, error)
	ReverseGeocode(ctx context.Context, longitude, latitude float64) (*Coord2AddressResponse, error)
}

// KeywordQuery holds parameters for GET /v2/local/search/keyword.json.
type KeywordQuery struct {
	Query     string
	Longitude float64
	Latitude  float64
	RadiusM   int // 0-20000; 0 omits the radius filter
	Page      int // 1-45, defaults to 1
	Size      int // 1-15, defaults to 15
	Sort      string
}

// CategoryQuery holds parameters for GET /v2/local/search/category.json.
type CategoryQuery struct {
	GroupCode string // e.g. "CE7", "FD6"
	Longitude float64
	Latitude  float64
	RadiusM   int
	Page      int
	Size      int
	Sort      string
}

// Meta describes pagination state for a search response.
type Meta struct {
	TotalCount    int  `json:"total_count"`
	PageableCount int  `json:"pageable_count"`
	IsEnd         bool `json:"is_end"`
}

// Document is a single place in a search response. Kakao serializes
// coordinates and distance as strings.
type Document struct {
	ID                string `json:"id"`
	PlaceName         string `json:"place_name"`
	CategoryName      string `json:"category_name"`
	CategoryGroupCode string `json:"category_group_code"`
	CategoryGroupName string `json:"category_group_name"`
	Phone             string `json:"phone"`
	AddressName       string `json:"address_name"`
	RoadAddressName   string `json:"road_address_name"`
	X                 string `json:"x"`
	Y                 string `json:"y"`
	PlaceURL          string `json:"place_url"`
	Distance          string `json:"distance"`
}

// Coord parses the document's x/y fields into longitude and latitude.
func (d Document) Coord() (lon, lat float64, err error) {
	lon, err = strconv.ParseFloat(d.X, 64)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "kakao: parse x %q", d.X)
	}
	lat, err = strconv.ParseFloat(d.Y, 64)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "kakao: parse y %q", d.Y)
	}
	return lon, lat, nil
}

// DistanceMeters parses the distance field. The field is empty when the
// request carried no center point.
func (d Document) DistanceMeters() (float64, bool) {
	if d.Distance == "" {
		return 0, false
	}
	m, err := strconv.ParseFloat(d.Distance, 64)
	if err != nil {
		return 0, false
	}
	return m, true
}

// SearchResponse is the response for keyword and category searches.
type SearchResponse struct {
	Meta      Meta       `json:"meta"`
	Documents []Document `json:"documents"`
}

// Coord2AddressResponse is the response from coord2address.
type Coord2AddressResponse struct {
	Meta struct {
		TotalCount int `json:"total_count"`
	} `json:"meta"`
	Documents []AddressDocument `json:"documents"`
}

// AddressDocument holds the road and lot addresses for a coordinate.
// Either may be null.
type AddressDocument struct {
	RoadAddress *RoadAddress `json:"road_address"`
	Address     *LotAddress  `json:"address"`
}

// PrimaryAddress returns the best human-readable address for the looked-up
// coordinate: the road address when present, the lot address otherwise.
func (r *Coord2AddressResponse) PrimaryAddress() string {
	if r == nil || len(r.Documents) == 0 {
		return ""
	}
	d := r.Documents[0]
	if d.RoadAddress != nil && d.RoadAddress.AddressName != "" {
		return d.RoadAddress.AddressName
	}
	if d.Address != nil {
		return d.Address.AddressName
	}
	return ""
}

// RoadAddress is a road-name address.
type RoadAddress struct {
	AddressName  string `json:"address_name"`
	Region1Depth string `json:"region_1depth_name"`
	Region2Depth string `json:"region_2depth_name"`
	Region3Depth string `json:"region_3depth_name"`
	RoadName     string `json:"road_name"`
	BuildingName string `json:"building_name"`
}

// LotAddress is a land-lot address.
type LotAddress struct {
	AddressName  string `json:"address_name"`
	Region1Depth string `json:"region_1depth_name"`
	Region2Depth string `json:"region_2depth_name"`
	Region3Depth string `json:"region_3depth_name"`
}

// APIError is returned when Kakao responds with a non-2xx status.
type APIError struct {
	StatusCode int
	ErrorType  string
	Message    string
}

func (e *APIError) Error() string {
	if e.ErrorType != "" {
		return fmt.Sprintf("kakao: HTTP %d %s: %s", e.StatusCode, e.ErrorType, e.Message)
	}
	return fmt.Sprintf("kakao: HTTP %d: %s", e.StatusCode, e.Message)
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
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Kakao Local API client authenticated with a REST key.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
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

func (c *httpClient) SearchKeyword(ctx context.Context, q KeywordQuery) (*SearchResponse, error) {
	params := url.Values{"query": {q.Query}}
	addGeoParams(params, q.Longitude, q.Latitude, q.RadiusM)
	addPageParams(params, q.Page, q.Size, q.Sort)

	var resp SearchResponse
	if err := c.get(ctx, "/v2/local/search/keyword.json", params, &resp); err != nil {
		return nil, eris.Wrap(err, "kakao: keyword search")
	}
	return &resp, nil
}

func (c *httpClient) SearchCategory(ctx context.Context, q CategoryQuery) (*SearchResponse, error) {
	params := url.Values{"category_group_code": {q.GroupCode}}
	addGeoParams(params, q.Longitude, q.Latitude, q.RadiusM)
	addPageParams(params, q.Page, q.Size, q.Sort)

	var resp SearchResponse
	if err := c.get(ctx, "/v2/local/search/category.json", params, &resp); err != nil {
		return nil, eris.Wrap(err, "kakao: category search")
	}
	return &resp, nil
}

func (c *httpClient) ReverseGeocode(ctx context.Context, longitude, latitude float64) (*Coord2AddressResponse, error) {
	params := url.Values{
		"x":           {formatCoord(longitude)},
		"y":           {formatCoord(latitude)},
		"input_coord": {"WGS84"},
	}

	var resp Coord2AddressResponse
	if err := c.get(ctx, "/v2/local/geo/coord2address.json", params, &resp); err != nil {
		return nil, eris.Wrap(err, "kakao: reverse geocode")
	}
	return &resp, nil
}

func addGeoParams(params url.Values, lon, lat float64, radiusM int) {
	if lon != 0 || lat != 0 {
		params.Set("x", formatCoord(lon))
		params.Set("y", formatCoord(lat))
	}
	if radiusM > 0 {
		params.Set("radius", strconv.Itoa(radiusM))
	}
}

func addPageParams(params url.Values, page, size int, sort string) {
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		params.Set("size", strconv.Itoa(size))
	}
	if sort != "" {
		params.Set("sort", sort)
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var parsed struct {
		ErrorType string `json:"errorType"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return &APIError{StatusCode: status, ErrorType: parsed.ErrorType, Message: parsed.Message}
	}
	return &APIError{StatusCode: status, Message: string(body)}
}
