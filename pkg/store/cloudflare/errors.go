package cloudflare

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingToken      = errors.New("cloudflare api token is required")
	ErrMissingAccount    = errors.New("cloudflare account id is required")
	ErrMalformedResponse = errors.New("malformed cloudflare response")
)

// APIError is returned for non-2xx responses and for payloads with success=false.
type APIError struct {
	StatusCode int
	Errors     []Message
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("cloudflare api error status=%d: %s", e.StatusCode, joinMessages(e.Errors))
}

// GraphQLError carries the errors list of a GraphQL response.
type GraphQLError struct {
	Errors []Message
}

func (e *GraphQLError) Error() string {
	if e == nil {
		return ""
	}
	return "cloudflare graphql error: " + joinMessages(e.Errors)
}

func joinMessages(msgs []Message) string {
	if len(msgs) == 0 {
		return "no error details"
	}
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Code != 0 {
			parts = append(parts, fmt.Sprintf("%d %s", m.Code, m.Message))
			continue
		}
		parts = append(parts, m.Message)
	}
	return strings.Join(parts, "; ")
}
