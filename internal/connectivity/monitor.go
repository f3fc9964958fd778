package connectivity

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Monitor tracks whether the remote authority is reachable. It probes the
// health endpoint on an interval and fires the onOnline callback once per
// offline-to-online transition. IsOnline is safe from any goroutine.
type Monitor struct {
	probeURL string
	interval time.Duration
	client   *http.Client
	logger   *logrus.Logger
	onOnline func()

	online   atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewMonitor(probeURL string, interval time.Duration, logger *logrus.Logger, onOnline func()) *Monitor {
	return &Monitor{
		probeURL: probeURL,
		interval: interval,
		client:   &http.Client{Timeout: 3 * time.Second},
		logger:   logger,
		onOnline: onOnline,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs one synchronous probe to seed the initial state, then keeps
// probing in the background until Stop or ctx cancellation. The seed probe
// does not fire the callback; only a transition does.
func (m *Monitor) Start(ctx context.Context) {
	m.online.Store(m.probe(ctx))
	m.logger.WithField("online", m.online.Load()).Info("ConnectivityMonitor.Start")

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				wasOnline := m.online.Load()
				isOnline := m.probe(ctx)
				m.online.Store(isOnline)

				if !wasOnline && isOnline {
					m.logger.Info("ConnectivityMonitor.transition online")
					if m.onOnline != nil {
						m.onOnline()
					}
				} else if wasOnline && !isOnline {
					m.logger.Info("ConnectivityMonitor.transition offline")
				}
			case <-m.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts probing and waits for the background goroutine to exit.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	<-m.done
}

// IsOnline reports the state observed by the most recent probe.
func (m *Monitor) IsOnline() bool {
	return m.online.Load()
}

func (m *Monitor) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.probeURL, nil)
	if err != nil {
		return false
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < http.StatusInternalServerError
}
