// Package graphql holds the query descriptor exchanged with the store API,
// the upstream schema used to validate descriptors and the HTTP transport.
package graphql

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUpstream marks failures reported by, or on the way to, the store API.
var ErrUpstream = errors.New("store api request failed")

// Request is a query descriptor: a constant document plus the variables bound to it.
// Caller supplied values only ever travel in Variables.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// CacheKey identifies the request by operation and variables.
func (r Request) CacheKey() string {
	vars, err := json.Marshal(r.Variables)
	if err != nil {
		return ""
	}
	return r.OperationName + ":" + string(vars)
}

// Response is the standard GraphQL response envelope.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []ErrorEntry    `json:"errors,omitempty"`
}

// ErrorEntry is a single entry of the response errors list.
type ErrorEntry struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// ResponseError is returned when the store API answered with GraphQL errors.
type ResponseError struct {
	OperationName string
	Errors        []ErrorEntry
}

func (e *ResponseError) Error() string {
	messages := make([]string, 0, len(e.Errors))
	for _, entry := range e.Errors {
		messages = append(messages, entry.Message)
	}
	return fmt.Sprintf("%s: %s", e.OperationName, strings.Join(messages, "; "))
}

func (e *ResponseError) Unwrap() error {
	return ErrUpstream
}
