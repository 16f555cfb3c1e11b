package provider

import (
	"context"
	"sync"
	"time"

	"github.com/ikjoobang/xivix-best-map/internal/category"
	"github.com/ikjoobang/xivix-best-map/internal/model"
	"github.com/ikjoobang/xivix-best-map/internal/resilience"
	"github.com/ikjoobang/xivix-best-map/pkg/kakao"
	"github.com/ikjoobang/xivix-best-map/pkg/naver"
	"github.com/ikjoobang/xivix-best-map/pkg/semas"
)

// testRetry keeps adapter retries near-instant.
func testRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func testQuery(cat category.Category) Query {
	return Query{
		Center:   model.Coordinate{Lon: 127.0, Lat: 37.5},
		RadiusM:  500,
		Category: cat,
	}
}

func cafeCategory() category.Category {
	return category.Category{
		Key:            "cafe",
		Display:        "카페",
		KakaoGroupCode: "CE7",
		SemasCodes:     []string{"I212"},
		Keywords:       []string{"카페", "커피", "cafe", "coffee"},
	}
}

func chickenCategory() category.Category {
	return category.Category{
		Key:              "chicken",
		Display:          "치킨",
		KakaoGroupCode:   "FD6",
		KakaoNameFilters: []string{"치킨"},
		SemasCodes:       []string{"I205"},
		Keywords:         []string{"치킨", "통닭", "chicken"},
	}
}

// mockKakaoClient implements kakao.Client for testing. Pages are keyed by
// the requested page number; errs are consumed per call before pages.
type mockKakaoClient struct {
	keywordPages []*kakao.SearchResponse
	keywordErrs  []error
	keywordCalls []kakao.KeywordQuery

	categoryPages []*kakao.SearchResponse
	categoryErrs  []error
	categoryCalls []kakao.CategoryQuery
}

func (m *mockKakaoClient) SearchKeyword(_ context.Context, q kakao.KeywordQuery) (*kakao.SearchResponse, error) {
	call := len(m.keywordCalls)
	m.keywordCalls = append(m.keywordCalls, q)
	if call < len(m.keywordErrs) && m.keywordErrs[call] != nil {
		return nil, m.keywordErrs[call]
	}
	if q.Page >= 1 && q.Page <= len(m.keywordPages) {
		return m.keywordPages[q.Page-1], nil
	}
	return &kakao.SearchResponse{Meta: kakao.Meta{IsEnd: true}}, nil
}

func (m *mockKakaoClient) SearchCategory(_ context.Context, q kakao.CategoryQuery) (*kakao.SearchResponse, error) {
	call := len(m.categoryCalls)
	m.categoryCalls = append(m.categoryCalls, q)
	if call < len(m.categoryErrs) && m.categoryErrs[call] != nil {
		return nil, m.categoryErrs[call]
	}
	if q.Page >= 1 && q.Page <= len(m.categoryPages) {
		return m.categoryPages[q.Page-1], nil
	}
	return &kakao.SearchResponse{Meta: kakao.Meta{IsEnd: true}}, nil
}

func (m *mockKakaoClient) ReverseGeocode(_ context.Context, _, _ float64) (*kakao.Coord2AddressResponse, error) {
	return &kakao.Coord2AddressResponse{}, nil
}

// mockNaverClient implements naver.Client for testing.
type mockNaverClient struct {
	resp  *naver.LocalSearchResponse
	errs  []error
	calls []naver.LocalQuery
}

func (m *mockNaverClient) LocalSearch(_ context.Context, q naver.LocalQuery) (*naver.LocalSearchResponse, error) {
	call := len(m.calls)
	m.calls = append(m.calls, q)
	if call < len(m.errs) && m.errs[call] != nil {
		return nil, m.errs[call]
	}
	if m.resp != nil {
		return m.resp, nil
	}
	return &naver.LocalSearchResponse{}, nil
}

// mockSemasClient implements semas.Client for testing. The store adapter
// fans its calls out concurrently, so call recording is mutex-guarded.
// Responses are keyed by IndsMclsCd; the empty key serves the unfiltered
// neighborhood-mix call.
type mockSemasClient struct {
	mu        sync.Mutex
	byCode    map[string]*semas.StoreListResponse
	errByCode map[string]error
	calls     []semas.RadiusQuery
}

func (m *mockSemasClient) StoreListInRadius(_ context.Context, q semas.RadiusQuery) (*semas.StoreListResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, q)
	if err := m.errByCode[q.IndsMclsCd]; err != nil {
		return nil, err
	}
	if resp, ok := m.byCode[q.IndsMclsCd]; ok {
		return resp, nil
	}
	return &semas.StoreListResponse{Header: semas.Header{ResultCode: "00"}}, nil
}

func (m *mockSemasClient) recordedCalls() []semas.RadiusQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]semas.RadiusQuery(nil), m.calls...)
}

func semasOK(total int, stores ...semas.Store) *semas.StoreListResponse {
	return &semas.StoreListResponse{
		Header: semas.Header{ResultCode: "00", ResultMsg: "NORMAL SERVICE."},
		Body:   semas.Body{Items: stores, NumOfRows: len(stores), PageNo: 1, TotalCount: total},
	}
}
