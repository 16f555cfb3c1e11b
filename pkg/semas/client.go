// Package semas provides a client for the small-business administration
// store directory API (상가업소정보, data.go.kr B553077).
package semas

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

const defaultBaseURL = "https://apis.data.go.kr/B553077/api/open/sdsc2"

// resultOK is the resultCode for a successful response. "03" means the
// query matched no data and still carries an empty body.
const resultOK = "00"

// Client defines the store directory operations.
type Client interface {
	StoreListInRadius(ctx context.Context, q RadiusQuery) (*StoreListResponse, error)
}

// RadiusQuery holds parameters for GET /storeListInRadius.
type RadiusQuery struct {
	Longitude float64
	Latitude  float64
	RadiusM   int

	// Industry class filters, coarse to fine. Empty filters are omitted.
	IndsLclsCd string
	IndsMclsCd string
	IndsSclsCd string

	NumOfRows int // defaults to 100
	PageNo    int // defaults to 1
}

// Store is a single registered business.
type Store struct {
	BizesID    string  `json:"bizesId"`
	BizesNm    string  `json:"bizesNm"`
	BrchNm     string  `json:"brchNm"`
	IndsLclsCd string  `json:"indsLclsCd"`
	IndsLclsNm string  `json:"indsLclsNm"`
	IndsMclsCd string  `json:"indsMclsCd"`
	IndsMclsNm string  `json:"indsMclsNm"`
	IndsSclsCd string  `json:"indsSclsCd"`
	IndsSclsNm string  `json:"indsSclsNm"`
	LnoAdr     string  `json:"lnoAdr"`
	RdnmAdr    string  `json:"rdnmAdr"`
	Lon        float64 `json:"lon"`
	Lat        float64 `json:"lat"`
}

// Header carries the service result code for a response.
type Header struct {
	ResultCode string `json:"resultCode"`
	ResultMsg  string `json:"resultMsg"`
}

// Body holds the paged store list.
type Body struct {
	Items      []Store `json:"items"`
	NumOfRows  int     `json:"numOfRows"`
	PageNo     int     `json:"pageNo"`
	TotalCount int     `json:"totalCount"`
}

// StoreListResponse is the storeListInRadius envelope.
type StoreListResponse struct {
	Header Header `json:"header"`
	Body   Body   `json:"body"`
}

// APIError is returned when the service answers with a non-OK result code
// or the gateway rejects the request.
type APIError struct {
	StatusCode int
	ResultCode string
	ResultMsg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("semas: HTTP %d result %s: %s", e.StatusCode, e.ResultCode, e.ResultMsg)
}

// gatewayError is the envelope data.go.kr uses for key and quota failures.
// It arrives with HTTP 200 and ignores the requested response type.
type gatewayError struct {
	Response struct {
		Header struct {
			ErrMsg        string `json:"errMsg"`
			ReturnAuthMsg string `json:"returnAuthMsg"`
			ReasonCode    string `json:"returnReasonCode"`
		} `json:"cmmMsgHeader"`
	} `json:"OpenAPI_ServiceResponse"`
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
	serviceKey string
	baseURL    string
	http       *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a store directory client using a data.go.kr service key.
// The default rate limit stays under the data.go.kr per-key throttle.
func NewClient(serviceKey string, opts ...Option) Client {
	c := &httpClient{
		serviceKey: serviceKey,
		baseURL:    defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(5, 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) StoreListInRadius(ctx context.Context, q RadiusQuery) (*StoreListResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "semas: rate limit")
	}

	params := url.Values{
		"serviceKey": {c.serviceKey},
		"type":       {"json"},
		"cx":         {strconv.FormatFloat(q.Longitude, 'f', -1, 64)},
		"cy":         {strconv.FormatFloat(q.Latitude, 'f', -1, 64)},
		"radius":     {strconv.Itoa(q.RadiusM)},
	}
	if q.IndsLclsCd != "" {
		params.Set("indsLclsCd", q.IndsLclsCd)
	}
	if q.IndsMclsCd != "" {
		params.Set("indsMclsCd", q.IndsMclsCd)
	}
	if q.IndsSclsCd != "" {
		params.Set("indsSclsCd", q.IndsSclsCd)
	}
	if q.NumOfRows > 0 {
		params.Set("numOfRows", strconv.Itoa(q.NumOfRows))
	}
	if q.PageNo > 0 {
		params.Set("pageNo", strconv.Itoa(q.PageNo))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/storeListInRadius?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "semas: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "semas: execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "semas: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, ResultMsg: string(data)}
	}

	var result StoreListResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, eris.Wrap(err, "semas: decode response")
	}

	if result.Header.ResultCode == "" {
		// Gateway failures keep HTTP 200 but swap the envelope.
		var gw gatewayError
		if err := json.Unmarshal(data, &gw); err == nil && gw.Response.Header.ReasonCode != "" {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				ResultCode: gw.Response.Header.ReasonCode,
				ResultMsg:  gw.Response.Header.ReturnAuthMsg,
			}
		}
		return nil, eris.Errorf("semas: unrecognized response: %s", truncate(data, 200))
	}

	if result.Header.ResultCode != resultOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ResultCode: result.Header.ResultCode,
			ResultMsg:  result.Header.ResultMsg,
		}
	}

	return &result, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
