package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostmon/internal/config"
	"hostmon/internal/model"
)

// newTestClient points a Client at the given test server.
func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	return NewClient(
		&config.GatewayConfig{Host: u.Hostname(), Port: port, Timeout: 2 * time.Second},
		&config.RetryConfig{MaxRetries: 2, BaseDelay: 10 * time.Millisecond},
		zerolog.Nop(),
	)
}

func TestSendEvent(t *testing.T) {
	var received model.AlertEvent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/events", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	metric := 0.97
	event := &model.AlertEvent{
		Service:     "cpu",
		State:       model.SeverityCritical,
		Metric:      &metric,
		Description: "CPU 利用率: 97.0%",
	}

	err := client.SendEvent(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, "cpu", received.Service)
	assert.Equal(t, model.SeverityCritical, received.State)
	require.NotNil(t, received.Metric)
	assert.InDelta(t, 0.97, *received.Metric, 1e-9)
}

func TestSendEvent_OmitsNilMetric(t *testing.T) {
	var raw map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	event := model.NewUnknownEvent("cpu", "CPU 利用率不可读")

	require.NoError(t, client.SendEvent(context.Background(), event))
	assert.NotContains(t, raw, "metric")
}

func TestSendEvent_RetriesOn5xx(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	event := model.NewAlertEvent("memory", model.SeverityOK, 0.5, "内存利用率: 50.0%")

	err := client.SendEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestSendEvent_NoRetryOn4xx(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	event := model.NewAlertEvent("disk /", model.SeverityWarning, 0.91, "磁盘利用率: 91.0%")

	err := client.SendEvent(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, 1, attempts)
}

func TestSendEvent_ExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	event := model.NewAlertEvent("load", model.SeverityOK, 0.5, "负载: 0.50")

	err := client.SendEvent(context.Background(), event)
	require.Error(t, err)
}

func TestNewClient_Endpoint(t *testing.T) {
	client := NewClient(
		&config.GatewayConfig{Host: "alerts.example.com", Port: 5667},
		nil,
		zerolog.Nop(),
	)
	assert.Equal(t, "http://alerts.example.com:5667", client.Endpoint())
}
