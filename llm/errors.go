package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jvbleek/docsearch/config"
)

// Kind classifies a remote service failure. Rate limits, unavailability and
// generic API errors are worth retrying; bad requests and broken credentials
// are not.
type Kind int

const (
	KindRateLimited Kind = iota
	KindServiceUnavailable
	KindTransientAPI
	KindInvalidRequest
	KindAuthentication
)

func (k Kind) Retryable() bool {
	switch k {
	case KindRateLimited, KindServiceUnavailable, KindTransientAPI:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "RateLimited"
	case KindServiceUnavailable:
		return "ServiceUnavailable"
	case KindTransientAPI:
		return "TransientAPIError"
	case KindInvalidRequest:
		return "InvalidRequest"
	case KindAuthentication:
		return "AuthenticationFailure"
	default:
		return "Unknown"
	}
}

// RemoteError is the final, user-facing failure of a remote call, after the
// retry budget is spent or for kinds that never retry.
type RemoteError struct {
	Kind Kind
	Err  error
}

func (e *RemoteError) Error() string {
	switch e.Kind {
	case KindRateLimited:
		return "RateLimited: the model is currently overloaded. Please retry your request."
	case KindServiceUnavailable:
		return "ServiceUnavailable: the server is overloaded or not ready yet."
	case KindTransientAPI:
		return "TransientAPIError: the server had an error while processing your request. Sorry about that! Please retry your request."
	case KindInvalidRequest:
		return fmt.Sprintf("InvalidRequest: %v", e.Err)
	case KindAuthentication:
		return "AuthenticationFailure: there seems to be a problem with the configured API key. Please report the error so it can be fixed."
	default:
		return e.Err.Error()
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

// StatusError carries a bare HTTP status from providers without typed errors.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote service returned status %d: %s", e.Code, e.Message)
}

// Classify maps a provider error onto the failure taxonomy. Unrecognized
// errors (including plain transport failures) count as transient.
func Classify(err error) Kind {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode)
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return classifyStatus(statusErr.Code)
	}
	return KindTransientAPI
}

func classifyStatus(code int) Kind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthentication
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindServiceUnavailable
	case http.StatusBadRequest, http.StatusNotFound, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		return KindInvalidRequest
	default:
		return KindTransientAPI
	}
}

// WithRetries runs call up to attempts times. Retryable failures emit a
// randomized notice through notify and retry immediately; non-retryable
// failures and exhausted budgets surface as a *RemoteError. Context
// cancellation stops retrying at once.
func WithRetries(ctx context.Context, attempts int, notify func(string), call func() error) error {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		kind := Classify(err)
		if !kind.Retryable() || attempt == attempts-1 {
			return &RemoteError{Kind: kind, Err: err}
		}
		if notify != nil {
			notify(config.RetryNotices[rand.Intn(len(config.RetryNotices))])
		}
	}
	return nil
}
