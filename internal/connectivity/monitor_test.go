package connectivity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/field-ledger/internal/logging"
)

func TestMonitor_InitialStateFromProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	monitor := NewMonitor(server.URL, time.Hour, logging.SetupLogging(), nil)
	monitor.Start(context.Background())
	defer monitor.Stop()

	assert.True(t, monitor.IsOnline())
}

func TestMonitor_StartsOfflineWhenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	monitor := NewMonitor(server.URL, time.Hour, logging.SetupLogging(), nil)
	monitor.Start(context.Background())
	defer monitor.Stop()

	assert.False(t, monitor.IsOnline())
}

func TestMonitor_FiresCallbackOncePerTransition(t *testing.T) {
	var healthy atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			// Simulate an unreachable authority at the transport level by
			// hijacking and dropping the connection.
			if hj, ok := w.(http.Hijacker); ok {
				conn, _, err := hj.Hijack()
				if err == nil {
					conn.Close()
					return
				}
			}
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var fired atomic.Int64
	monitor := NewMonitor(server.URL, 10*time.Millisecond, logging.SetupLogging(), func() {
		fired.Add(1)
	})
	monitor.Start(context.Background())
	defer monitor.Stop()

	require.False(t, monitor.IsOnline())

	healthy.Store(true)
	require.Eventually(t, monitor.IsOnline, time.Second, 5*time.Millisecond)

	// Exactly one callback for the transition, not one per healthy probe.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), fired.Load())

	// Going offline and back online fires again.
	healthy.Store(false)
	require.Eventually(t, func() bool { return !monitor.IsOnline() }, time.Second, 5*time.Millisecond)
	healthy.Store(true)
	require.Eventually(t, monitor.IsOnline, time.Second, 5*time.Millisecond)

	assert.Equal(t, int64(2), fired.Load())
}

func TestMonitor_ServerErrorCountsAsOffline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	monitor := NewMonitor(server.URL, time.Hour, logging.SetupLogging(), nil)
	monitor.Start(context.Background())
	defer monitor.Stop()

	assert.False(t, monitor.IsOnline())
}
