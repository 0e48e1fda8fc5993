// File: internal/services/ai/errors.go
package ai

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

// Kind says which side a classification failure came from.
type Kind string

const (
	KindConfig   Kind = "config"
	KindUpstream Kind = "upstream"
	KindResponse Kind = "response"
)

// AIError is the only error type this package returns. Status is the HTTP
// status of the upstream answer, 0 when there was none.
type AIError struct {
	Kind   Kind
	Op     string
	Model  string
	Status int
	Detail string
	Err    error
}

func (e *AIError) Error() string {
	msg := fmt.Sprintf("llm %s: %s: %s", e.Op, e.Kind, e.Detail)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AIError) Unwrap() error {
	return e.Err
}

// Transient reports whether the same request may succeed later.
func (e *AIError) Transient() bool {
	return e.Kind == KindUpstream &&
		(e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError)
}

func configError(detail string) *AIError {
	return &AIError{Kind: KindConfig, Op: "config", Detail: detail}
}

func responseError(op, detail string, err error) *AIError {
	return &AIError{Kind: KindResponse, Op: op, Detail: detail, Err: err}
}

// upstreamError wraps a client error and lifts the HTTP status out of it.
func upstreamError(op, model string, err error) *AIError {
	e := &AIError{Kind: KindUpstream, Op: op, Model: model, Detail: "request failed", Err: err}
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		e.Status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		e.Status = reqErr.HTTPStatusCode
	}
	return e
}
