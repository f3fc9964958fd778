package shellcache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// State is the worker lifecycle: New -> Installing -> Installed -> Active.
// Interception only happens once Active; before that every request passes
// through to the origin untouched.
type State int32

const (
	StateNew State = iota
	StateInstalling
	StateInstalled
	StateActive
)

// Worker is the offline cache: a reverse proxy in front of the application
// origin that precaches the shell at install time, cuts over cache
// namespaces at activation, and serves cached responses when the network
// cannot. It runs on its own listener and shares no state with the
// interactive side.
type Worker struct {
	manifest *Manifest
	root     string
	origin   *url.URL
	client   *http.Client
	logger   *logrus.Logger
	state    atomic.Int32
	cache    *diskCache
}

func NewWorker(manifest *Manifest, cacheRoot, originURL string, logger *logrus.Logger) (*Worker, error) {
	origin, err := url.Parse(originURL)
	if err != nil {
		return nil, fmt.Errorf("parse origin url: %w", err)
	}

	return &Worker{
		manifest: manifest,
		root:     cacheRoot,
		origin:   origin,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
		cache:    newDiskCache(cacheRoot, manifest.Namespace()),
	}, nil
}

// State returns the worker's lifecycle state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Install fetches every manifest URL into this version's namespace. Any
// failed fetch fails the whole install: the namespace is removed, any
// previously active cache stays current, and Activate must not be called.
// There is no automatic retry.
func (w *Worker) Install(ctx context.Context) error {
	w.state.Store(int32(StateInstalling))

	if err := w.cache.init(); err != nil {
		w.state.Store(int32(StateNew))
		return fmt.Errorf("init cache namespace: %w", err)
	}

	for _, rawURL := range w.manifest.URLs {
		status, header, body, err := w.fetch(ctx, rawURL)
		if err == nil && status != http.StatusOK {
			err = fmt.Errorf("origin returned %d", status)
		}
		if err == nil {
			err = w.cache.put(rawURL, status, header, body)
		}
		if err != nil {
			_ = w.cache.destroy()
			w.state.Store(int32(StateNew))
			return fmt.Errorf("precache %s: %w", rawURL, err)
		}
	}

	w.state.Store(int32(StateInstalled))
	w.logger.WithFields(logrus.Fields{
		"version": w.manifest.Version,
		"urls":    len(w.manifest.URLs),
	}).Info("ShellCache.Install.complete")
	return nil
}

// Activate cuts over to this version's namespace: every other namespace
// directory is deleted, then interception begins. After Activate returns
// there are no mixed-version reads.
func (w *Worker) Activate() error {
	if w.State() != StateInstalled {
		return fmt.Errorf("activate from state %d: install has not completed", w.State())
	}

	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("enumerate cache namespaces: %w", err)
	}
	for _, dirEntry := range entries {
		if !dirEntry.IsDir() || dirEntry.Name() == w.manifest.Namespace() {
			continue
		}
		if err := os.RemoveAll(filepath.Join(w.root, dirEntry.Name())); err != nil {
			return fmt.Errorf("remove stale namespace %s: %w", dirEntry.Name(), err)
		}
		w.logger.WithField("namespace", dirEntry.Name()).Info("ShellCache.Activate.removed stale namespace")
	}

	w.state.Store(int32(StateActive))
	w.logger.WithField("version", w.manifest.Version).Info("ShellCache.Activate.active")
	return nil
}

// Recover adopts an existing namespace after a failed install, so the
// previous deployment's shell keeps serving. No
// cutover happens; the stale namespace stays until a later install succeeds.
// Returns false when there is no namespace to adopt.
func (w *Worker) Recover() bool {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return false
	}

	for _, dirEntry := range entries {
		if !dirEntry.IsDir() || !strings.HasPrefix(dirEntry.Name(), "shell-") {
			continue
		}
		w.cache = newDiskCache(w.root, dirEntry.Name())
		w.state.Store(int32(StateActive))
		w.logger.WithField("namespace", dirEntry.Name()).Info("ShellCache.Recover.adopted previous namespace")
		return true
	}
	return false
}

// ServeHTTP intercepts application traffic:
//   - navigation requests are network-first, falling back to the cached shell;
//   - same-origin GET assets are cache-first with opportunistic store;
//   - cross-origin and non-GET requests pass through untouched.
//
// Non-200 responses are never stored.
func (w *Worker) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	if w.State() != StateActive || req.Method != http.MethodGet || w.crossOrigin(req) {
		w.passThrough(rw, req)
		return
	}

	if isNavigation(req) {
		w.serveNavigation(rw, req)
		return
	}
	w.serveAsset(rw, req)
}

func (w *Worker) serveNavigation(rw http.ResponseWriter, req *http.Request) {
	status, header, body, err := w.fetch(req.Context(), req.URL.Path)
	if err == nil {
		if status == http.StatusOK {
			// The body was buffered once; the cache keeps its own copy and
			// the response writer gets the other use.
			if cacheErr := w.cache.put(req.URL.Path, status, header, body); cacheErr != nil {
				w.logger.WithError(cacheErr).Warn("ShellCache.navigation.cache store failed")
			}
		}
		writeEntry(rw, status, header, body)
		return
	}

	cached, ok := w.cache.get(w.manifest.Shell())
	if !ok {
		http.Error(rw, "offline and no cached shell", http.StatusServiceUnavailable)
		return
	}
	w.logger.WithField("path", req.URL.Path).Info("ShellCache.navigation.serving cached shell")
	writeEntry(rw, cached.Status, cached.Header, cached.Body)
}

func (w *Worker) serveAsset(rw http.ResponseWriter, req *http.Request) {
	if cached, ok := w.cache.get(req.URL.Path); ok {
		writeEntry(rw, cached.Status, cached.Header, cached.Body)
		return
	}

	status, header, body, err := w.fetch(req.Context(), req.URL.Path)
	if err != nil {
		http.Error(rw, "offline and not cached", http.StatusBadGateway)
		return
	}

	if status == http.StatusOK {
		if cacheErr := w.cache.put(req.URL.Path, status, header, body); cacheErr != nil {
			w.logger.WithError(cacheErr).Warn("ShellCache.asset.cache store failed")
		}
	}
	writeEntry(rw, status, header, body)
}

// passThrough proxies the request without touching any cache. The body is
// streamed, not buffered.
func (w *Worker) passThrough(rw http.ResponseWriter, req *http.Request) {
	target := *req.URL
	if target.Host == "" {
		target.Scheme = w.origin.Scheme
		target.Host = w.origin.Host
	}

	outbound, err := http.NewRequestWithContext(req.Context(), req.Method, target.String(), req.Body)
	if err != nil {
		http.Error(rw, "bad request", http.StatusBadRequest)
		return
	}
	copyHeader(outbound.Header, req.Header)

	resp, err := w.client.Do(outbound)
	if err != nil {
		http.Error(rw, "upstream unreachable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	copyHeader(rw.Header(), resp.Header)
	rw.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(rw, resp.Body)
}

// fetch performs an origin GET and buffers the body exactly once, so the
// same bytes can back both the cache entry and the client response.
func (w *Worker) fetch(ctx context.Context, path string) (int, http.Header, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.origin.ResolveReference(&url.URL{Path: path}).String(), nil)
	if err != nil {
		return 0, nil, nil, err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, err
	}

	header := make(http.Header)
	copyHeader(header, resp.Header)
	return resp.StatusCode, header, body, nil
}

func (w *Worker) crossOrigin(req *http.Request) bool {
	return req.URL.Host != "" && req.URL.Host != w.origin.Host
}

func isNavigation(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "text/html")
}

func writeEntry(rw http.ResponseWriter, status int, header http.Header, body []byte) {
	copyHeader(rw.Header(), header)
	rw.WriteHeader(status)
	_, _ = rw.Write(body)
}

var hopByHopHeaders = map[string]struct{}{
	"Connection":        {},
	"Keep-Alive":        {},
	"Transfer-Encoding": {},
	"Upgrade":           {},
}

func copyHeader(dst, src http.Header) {
	for key, values := range src {
		if _, skip := hopByHopHeaders[key]; skip {
			continue
		}
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}
