// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about linearization runs, cache operations, and API requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLinearizeHooks(&myLinearizeHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Linearize().OnLinearizeStart(ctx, root)
//	// ... merge ...
//	observability.Linearize().OnLinearizeComplete(ctx, root, len(order), duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Linearize Hooks
// =============================================================================

// LinearizeHooks receives events from the linearization runner.
type LinearizeHooks interface {
	// Single-root events
	OnLinearizeStart(ctx context.Context, root string)
	OnLinearizeComplete(ctx context.Context, root string, length int, duration time.Duration, err error)

	// Whole-hierarchy check events
	OnCheckStart(ctx context.Context, nodeCount, workers int)
	OnCheckComplete(ctx context.Context, nodeCount, failures int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)

	// OnError records a request that failed with an error code.
	OnError(ctx context.Context, method, path, code string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLinearizeHooks is a no-op implementation of LinearizeHooks.
type NoopLinearizeHooks struct{}

func (NoopLinearizeHooks) OnLinearizeStart(context.Context, string) {}
func (NoopLinearizeHooks) OnLinearizeComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopLinearizeHooks) OnCheckStart(context.Context, int, int)                          {}
func (NoopLinearizeHooks) OnCheckComplete(context.Context, int, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)         {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	linearizeHooks LinearizeHooks = NoopLinearizeHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetLinearizeHooks registers custom linearization hooks.
// This should be called once at application startup before any runner operations.
func SetLinearizeHooks(h LinearizeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		linearizeHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before serving requests.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Linearize returns the registered linearization hooks.
func Linearize() LinearizeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return linearizeHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	linearizeHooks = NoopLinearizeHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
