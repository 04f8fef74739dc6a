package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/store-directory/api/internal/graphql"
	"github.com/sngm3741/store-directory/api/internal/public/application"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid argument", err: fmt.Errorf("%w: store URI is required", application.ErrInvalidArgument), want: http.StatusBadRequest},
		{name: "not found", err: fmt.Errorf("%w: x", application.ErrStoreNotFound), want: http.StatusNotFound},
		{name: "upstream", err: &graphql.ResponseError{OperationName: "Store"}, want: http.StatusBadGateway},
		{name: "upstream timeout", err: fmt.Errorf("%w: %w", graphql.ErrUpstream, context.DeadlineExceeded), want: http.StatusBadGateway},
		{name: "validation", err: &graphql.ValidationError{OperationName: "Store", Err: errors.New("bad")}, want: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(nil, rec, errors.New("mongo: secret detail"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteError(nil, rec, fmt.Errorf("%w: store URI is required", application.ErrInvalidArgument))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid argument: store URI is required"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestParseBool(t *testing.T) {
	v, err := ParseBool("")
	require.NoError(t, err)
	assert.False(t, v)

	v, err = ParseBool(" true ")
	require.NoError(t, err)
	assert.True(t, v)

	_, err = ParseBool("maybe")
	assert.Error(t, err)
}

func TestParsePositiveInt(t *testing.T) {
	v, ok := ParsePositiveInt("15", 20)
	assert.True(t, ok)
	assert.Equal(t, 15, v)

	v, ok = ParsePositiveInt("-1", 20)
	assert.False(t, ok)
	assert.Equal(t, 20, v)
}
