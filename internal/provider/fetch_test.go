package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikjoobang/xivix-best-map/internal/model"
)

type stubAdapter struct {
	source model.SourceID
	result *Result
	err    error
	delay  time.Duration
}

func (s *stubAdapter) Source() model.SourceID { return s.source }

func (s *stubAdapter) Fetch(ctx context.Context, _ Query) (*Result, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestFetchAll_IsolatesFailedSources(t *testing.T) {
	total := 15
	adapters := []Adapter{
		&stubAdapter{source: model.SourceSemasStore, result: &Result{ReportedTotal: &total}},
		&stubAdapter{source: model.SourceKakaoKeyword, err: &AdapterError{
			Source: model.SourceKakaoKeyword, Kind: ErrStatus, Err: errors.New("HTTP 500"),
		}},
		&stubAdapter{source: model.SourceNaverLocal, err: errors.New("dial tcp: connection refused")},
	}

	outcomes := FetchAll(context.Background(), adapters, testQuery(cafeCategory()), time.Second)
	require.Len(t, outcomes, 3)

	// Outcomes keep adapter order.
	semas := outcomes[0]
	assert.Equal(t, model.SourceSemasStore, semas.Source)
	require.NotNil(t, semas.Result)
	assert.Nil(t, semas.Err)
	assert.Equal(t, 15, *semas.Result.ReportedTotal)

	// A pre-classified failure passes through untouched.
	kakao := outcomes[1]
	assert.Nil(t, kakao.Result)
	require.NotNil(t, kakao.Err)
	assert.Equal(t, ErrStatus, kakao.Err.Kind)
	assert.Equal(t, model.SourceKakaoKeyword, kakao.Err.Source)

	// A raw error gets classified on the way out.
	naver := outcomes[2]
	require.NotNil(t, naver.Err)
	assert.Equal(t, ErrNetwork, naver.Err.Kind)
	assert.Equal(t, model.SourceNaverLocal, naver.Err.Source)
}

func TestFetchAll_TimesOutSlowSource(t *testing.T) {
	adapters := []Adapter{
		&stubAdapter{source: model.SourceSemasStore, result: &Result{}},
		&stubAdapter{source: model.SourceNaverLocal, delay: 500 * time.Millisecond, result: &Result{}},
	}

	outcomes := FetchAll(context.Background(), adapters, testQuery(cafeCategory()), 20*time.Millisecond)
	require.Len(t, outcomes, 2)

	assert.NotNil(t, outcomes[0].Result)
	assert.Nil(t, outcomes[0].Err)

	// The slow source times out without holding up the fast one.
	require.NotNil(t, outcomes[1].Err)
	assert.Equal(t, ErrTimeout, outcomes[1].Err.Kind)
	assert.Nil(t, outcomes[1].Result)
}

func TestFetchAll_NoAdapters(t *testing.T) {
	outcomes := FetchAll(context.Background(), nil, testQuery(cafeCategory()), time.Second)
	assert.Empty(t, outcomes)
}
