package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestCount(t *testing.T, registry *prometheus.Registry, operation, outcome string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "store_directory_store_api_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := make(map[string]string)
			for _, label := range metric.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}
			if labels["operation"] == operation && labels["outcome"] == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestExecuteSendsDescriptor(t *testing.T) {
	var got Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":{"storesCount":3}}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{Endpoint: server.URL})
	var out struct {
		StoresCount int `json:"storesCount"`
	}
	err := client.ExecuteInto(context.Background(), Request{
		Query:         `query Stores($skip: Int) { storesCount }`,
		OperationName: "Stores",
		Variables:     map[string]any{"skip": 24},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, out.StoresCount)
	assert.Equal(t, "Stores", got.OperationName)
	assert.EqualValues(t, 24, got.Variables["skip"])
}

func TestExecuteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"featuredStores":[]}}`))
	}))
	defer server.Close()

	registry := prometheus.NewRegistry()
	client := NewClient(ClientConfig{Endpoint: server.URL, Attempts: 3, RetryDelay: time.Millisecond, Metrics: NewMetrics(registry)})

	data, err := client.Execute(context.Background(), Request{OperationName: "FeaturedStores", Query: "{ featuredStores { name } }"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"featuredStores":[]}`, string(data))
	assert.EqualValues(t, 3, calls.Load())
	assert.Equal(t, 1.0, requestCount(t, registry, "FeaturedStores", "ok"))
}

func TestExecuteDoesNotRetryGraphQLErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"store exploded","path":["store"]}]}`))
	}))
	defer server.Close()

	registry := prometheus.NewRegistry()
	client := NewClient(ClientConfig{Endpoint: server.URL, Attempts: 3, Metrics: NewMetrics(registry)})
	_, err := client.Execute(context.Background(), Request{OperationName: "Store"})

	require.ErrorIs(t, err, ErrUpstream)
	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "store exploded", respErr.Errors[0].Message)
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, 1.0, requestCount(t, registry, "Store", "graphql_error"))
}

func TestExecuteClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`bad request`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{Endpoint: server.URL, Attempts: 3})
	_, err := client.Execute(context.Background(), Request{OperationName: "Stores"})
	require.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "status=400")
	assert.EqualValues(t, 1, calls.Load())
}

func TestExecuteHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(ClientConfig{Endpoint: server.URL, Attempts: 5, RetryDelay: time.Second})
	_, err := client.Execute(ctx, Request{OperationName: "Stores"})
	require.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, context.Canceled)
}
