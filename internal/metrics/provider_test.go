package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	t.Run("Success_CreateProviderWithNamespace", func(t *testing.T) {
		provider, err := NewProvider("planexec")

		require.NoError(t, err)
		assert.NotNil(t, provider)
		assert.NotNil(t, provider.meterProvider)
		assert.NotNil(t, provider.exporter)
		assert.NotNil(t, provider.registry)
	})

	t.Run("Success_CreateProviderWithEmptyNamespace", func(t *testing.T) {
		provider, err := NewProvider("")

		require.NoError(t, err)
		assert.NotNil(t, provider)
	})
}

func TestProvider_Handler(t *testing.T) {
	provider, err := NewProvider("planexec")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "planexec")
	require.NoError(t, err)

	bm.RecordOperation(context.Background(), "plans", "plan_execute", "success")
	bm.RecordDuration(context.Background(), "plans", "plan_execute", 10*time.Millisecond, "success")

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "planexec_operations_total")
}

func TestProvider_Shutdown(t *testing.T) {
	t.Run("Success_ShutdownProvider", func(t *testing.T) {
		provider, err := NewProvider("planexec")
		require.NoError(t, err)

		err = provider.Shutdown(context.Background())
		assert.NoError(t, err)
	})

	t.Run("Success_ShutdownNilProvider", func(t *testing.T) {
		provider := &Provider{meterProvider: nil}

		err := provider.Shutdown(context.Background())
		assert.NoError(t, err)
	})
}

func TestBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("planexec")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "planexec")
	require.NoError(t, err)

	t.Run("Success_RecordOperation", func(t *testing.T) {
		bm.RecordOperation(context.Background(), "tokens", "token_issue", "success")
		bm.RecordOperation(context.Background(), "tokens", "token_issue", "error")
	})

	t.Run("Success_RecordDuration", func(t *testing.T) {
		bm.RecordDuration(context.Background(), "audit", "chain_verify", 5*time.Millisecond, "success")
	})

	t.Run("Success_NoOpImplementation", func(t *testing.T) {
		noop := NewNoOpBusinessMetrics()
		noop.RecordOperation(context.Background(), "plans", "plan_execute", "success")
		noop.RecordDuration(context.Background(), "plans", "plan_execute", time.Millisecond, "success")
	})
}
