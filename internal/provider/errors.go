package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/ikjoobang/xivix-best-map/internal/model"
	"github.com/ikjoobang/xivix-best-map/internal/resilience"
	"github.com/ikjoobang/xivix-best-map/pkg/kakao"
	"github.com/ikjoobang/xivix-best-map/pkg/naver"
	"github.com/ikjoobang/xivix-best-map/pkg/semas"
)

// ErrorKind labels what stage of a provider fetch failed.
type ErrorKind string

const (
	// ErrNetwork covers dial, TLS, and transport failures.
	ErrNetwork ErrorKind = "network"
	// ErrStatus covers non-2xx HTTP answers.
	ErrStatus ErrorKind = "status"
	// ErrProvider covers error codes embedded in otherwise-OK responses.
	ErrProvider ErrorKind = "provider"
	// ErrPayload covers undecodable or malformed response bodies.
	ErrPayload ErrorKind = "payload"
	// ErrTimeout covers deadline expiry, including the per-adapter budget.
	ErrTimeout ErrorKind = "timeout"
)

// AdapterError wraps a fetch failure with its source and failure kind so the
// aggregation layer can report degraded sources precisely.
type AdapterError struct {
	Source model.SourceID
	Kind   ErrorKind
	Err    error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Source, e.Kind, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// Classify wraps err as an AdapterError for source, inferring the failure
// kind from the error chain. An error that already is an AdapterError passes
// through unchanged.
func Classify(source model.SourceID, err error) *AdapterError {
	var aerr *AdapterError
	if errors.As(err, &aerr) {
		return aerr
	}
	return &AdapterError{Source: source, Kind: kindOf(err), Err: err}
}

func kindOf(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	var kkErr *kakao.APIError
	if errors.As(err, &kkErr) {
		return ErrStatus
	}
	var nvErr *naver.APIError
	if errors.As(err, &nvErr) {
		return ErrStatus
	}
	var smErr *semas.APIError
	if errors.As(err, &smErr) {
		// The directory embeds failure codes in HTTP 200 answers.
		if smErr.ResultCode != "" {
			return ErrProvider
		}
		return ErrStatus
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return ErrPayload
	}

	return ErrNetwork
}

// retryable retries transient transport faults and upstream 5xx/429 answers.
// Provider-embedded error codes are answers, not faults, and never retry.
func retryable(err error) bool {
	if resilience.IsTransient(err) {
		return true
	}
	var kkErr *kakao.APIError
	if errors.As(err, &kkErr) {
		return resilience.IsTransientHTTPStatus(kkErr.StatusCode)
	}
	var nvErr *naver.APIError
	if errors.As(err, &nvErr) {
		return resilience.IsTransientHTTPStatus(nvErr.StatusCode)
	}
	var smErr *semas.APIError
	if errors.As(err, &smErr) {
		return smErr.ResultCode == "" && resilience.IsTransientHTTPStatus(smErr.StatusCode)
	}
	return false
}
