package semas

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreListInRadius_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/storeListInRadius", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("serviceKey"))
		assert.Equal(t, "json", q.Get("type"))
		assert.Equal(t, "127.0276", q.Get("cx"))
		assert.Equal(t, "37.4979", q.Get("cy"))
		assert.Equal(t, "500", q.Get("radius"))
		assert.Equal(t, "I212", q.Get("indsMclsCd"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"header": {"resultCode": "00", "resultMsg": "NORMAL SERVICE"},
			"body": {
				"items": [{
					"bizesId": "MA010120220800001",
					"bizesNm": "커피한약방",
					"indsLclsCd": "I2", "indsLclsNm": "음식",
					"indsMclsCd": "I212", "indsMclsNm": "카페",
					"indsSclsCd": "I21201", "indsSclsNm": "카페",
					"lnoAdr": "서울특별시 강남구 역삼동 823",
					"rdnmAdr": "서울특별시 강남구 강남대로 392",
					"lon": 127.0285, "lat": 37.4972
				}],
				"numOfRows": 100, "pageNo": 1, "totalCount": 15
			}
		}`)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.StoreListInRadius(context.Background(), RadiusQuery{
		Longitude:  127.0276,
		Latitude:   37.4979,
		RadiusM:    500,
		IndsMclsCd: "I212",
	})

	require.NoError(t, err)
	assert.Equal(t, 15, resp.Body.TotalCount)
	require.Len(t, resp.Body.Items, 1)
	assert.Equal(t, "커피한약방", resp.Body.Items[0].BizesNm)
	assert.Equal(t, "카페", resp.Body.Items[0].IndsMclsNm)
	assert.InDelta(t, 127.0285, resp.Body.Items[0].Lon, 0.0001)
}

func TestStoreListInRadius_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"header": {"resultCode": "99", "resultMsg": "INVALID REQUEST PARAMETER ERROR"},
			"body": {"items": [], "totalCount": 0}
		}`)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.StoreListInRadius(context.Background(), RadiusQuery{})

	require.Error(t, err)
	assert.Nil(t, resp)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "99", apiErr.ResultCode)
	assert.Contains(t, apiErr.ResultMsg, "INVALID REQUEST")
}

func TestStoreListInRadius_GatewayKeyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// The gateway answers HTTP 200 with its own envelope.
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"OpenAPI_ServiceResponse": {
				"cmmMsgHeader": {
					"errMsg": "SERVICE ERROR",
					"returnAuthMsg": "SERVICE_KEY_IS_NOT_REGISTERED_ERROR",
					"returnReasonCode": "30"
				}
			}
		}`)
	}))
	defer srv.Close()

	client := NewClient("unregistered-key", WithBaseURL(srv.URL))
	_, err := client.StoreListInRadius(context.Background(), RadiusQuery{Longitude: 127, Latitude: 37.5, RadiusM: 500})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "30", apiErr.ResultCode)
	assert.Contains(t, apiErr.ResultMsg, "SERVICE_KEY_IS_NOT_REGISTERED")
}

func TestStoreListInRadius_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "internal error")
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.StoreListInRadius(context.Background(), RadiusQuery{Longitude: 127, Latitude: 37.5, RadiusM: 500})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestStoreListInRadius_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		_, _ = io.WriteString(w, `<OpenAPI_ServiceResponse>not json</OpenAPI_ServiceResponse>`)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.StoreListInRadius(context.Background(), RadiusQuery{Longitude: 127, Latitude: 37.5, RadiusM: 500})
	assert.Error(t, err)
}

func TestStoreListInRadius_NoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"header": {"resultCode": "03", "resultMsg": "NODATA ERROR"},
			"body": {"items": [], "totalCount": 0}
		}`)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.StoreListInRadius(context.Background(), RadiusQuery{Longitude: 127, Latitude: 37.5, RadiusM: 500})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "03", apiErr.ResultCode)
}
