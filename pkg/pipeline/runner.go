package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/moose/Algorithm-C3/pkg/c3"
	"github.com/moose/Algorithm-C3/pkg/cache"
	apperrors "github.com/moose/Algorithm-C3/pkg/errors"
	"github.com/moose/Algorithm-C3/pkg/hierarchy"
	"github.com/moose/Algorithm-C3/pkg/observability"
)

// Runner encapsulates linearization with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Linearize computes the linearization of root within h.
//
// Successful results are cached under the hierarchy's content hash and
// root; opts.Refresh skips the lookup but still stores the fresh result.
// Linearization failures are returned unchanged (match them with
// errors.Is against the c3 sentinels) and are never cached.
func (r *Runner) Linearize(ctx context.Context, h *hierarchy.Hierarchy, root string, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := r.admit(ctx, h, opts); err != nil {
		return nil, err
	}

	hash, err := hierarchy.Hash(h)
	if err != nil {
		return nil, fmt.Errorf("hash hierarchy: %w", err)
	}
	key := r.Keyer.LinearizationKey(hash, root)
	start := time.Now()

	if !opts.Refresh {
		if order, ok := r.cachedOrder(ctx, key); ok {
			opts.Logger.Debug("linearization cache hit", "root", root)
			return &Result{
				Root:          root,
				Order:         order,
				HierarchyHash: hash,
				Cached:        true,
				Duration:      time.Since(start),
			}, nil
		}
	}

	observability.Linearize().OnLinearizeStart(ctx, root)
	order, err := c3.Merge[string](root, h)
	elapsed := time.Since(start)
	observability.Linearize().OnLinearizeComplete(ctx, root, len(order), elapsed, err)
	if err != nil {
		opts.Logger.Debug("linearization failed", "root", root, "error", err)
		return nil, err
	}

	if data, err := json.Marshal(order); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLinearization); err != nil {
			opts.Logger.Warn("cache write failed", "root", root, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "linearization", len(data))
		}
	}

	opts.Logger.Info("linearized", "root", root, "length", len(order), "duration", elapsed)
	return &Result{
		Root:          root,
		Order:         order,
		HierarchyHash: hash,
		Duration:      elapsed,
	}, nil
}

// Check linearizes every node of h using up to opts.Workers goroutines.
// The workers share one [c3.SharedSource], so each node's parents are read
// from h once for the whole run.
//
// Per-node failures are collected in the report rather than aborting the
// run. The returned error is non-nil only for invalid input or a cancelled
// context. Reports with failures are not cached.
func (r *Runner) Check(ctx context.Context, h *hierarchy.Hierarchy, opts Options) (*Report, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := r.admit(ctx, h, opts); err != nil {
		return nil, err
	}

	hash, err := hierarchy.Hash(h)
	if err != nil {
		return nil, fmt.Errorf("hash hierarchy: %w", err)
	}
	key := r.Keyer.ReportKey(hash)
	start := time.Now()

	if !opts.Refresh {
		if report, ok := r.cachedReport(ctx, key); ok {
			opts.Logger.Debug("report cache hit", "nodes", report.NodeCount)
			report.Cached = true
			report.Duration = time.Since(start)
			return report, nil
		}
	}

	ids := h.IDs()
	observability.Linearize().OnCheckStart(ctx, len(ids), opts.Workers)

	var structural []Failure
	for _, p := range h.CheckParents() {
		structural = append(structural, Failure{
			Node:    p.Node,
			Code:    string(apperrors.ErrCodeInvalidHierarchy),
			Message: p.Error(),
			Err:     p,
		})
	}

	shared := c3.NewSharedSource[string](h)
	orders := make([][]string, len(ids))
	errs := make([]error, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, id := range ids {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			orders[i], errs[i] = c3.Merge[string](id, shared)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		observability.Linearize().OnCheckComplete(ctx, len(ids), 0, time.Since(start), err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		HierarchyHash:  hash,
		NodeCount:      len(ids),
		Linearizations: make([]Linearization, 0, len(ids)),
		Structural:     structural,
	}
	for i, id := range ids {
		if errs[i] != nil {
			classified := apperrors.Classify(errs[i])
			report.Failures = append(report.Failures, Failure{
				Node:    id,
				Code:    string(apperrors.GetCode(classified)),
				Message: errs[i].Error(),
				Err:     errs[i],
			})
			continue
		}
		report.Linearizations = append(report.Linearizations, Linearization{Node: id, Order: orders[i]})
	}
	report.Duration = time.Since(start)

	stats := shared.Stats()
	observability.Linearize().OnCheckComplete(ctx, len(ids), len(report.Failures), report.Duration, nil)
	opts.Logger.Info("checked hierarchy",
		"nodes", len(ids),
		"failures", len(report.Failures),
		"structural", len(report.Structural),
		"parent_lookups", stats.Misses,
		"shared_hits", stats.Hits,
		"duration", report.Duration)

	if report.OK() {
		if data, err := json.Marshal(report); err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.TTLReport); err != nil {
				opts.Logger.Warn("cache write failed", "error", err)
			} else {
				observability.Cache().OnCacheSet(ctx, "report", len(data))
			}
		}
	}
	return report, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// admit rejects nil or oversized hierarchies and cancelled contexts.
func (r *Runner) admit(ctx context.Context, h *hierarchy.Hierarchy, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h == nil {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "hierarchy is required")
	}
	if n := h.NodeCount(); n > opts.MaxNodes {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, ErrTooManyNodes, "%d nodes, limit %d", n, opts.MaxNodes)
	}
	return nil
}

// cachedOrder returns a cached linearization. Undecodable entries count as misses.
func (r *Runner) cachedOrder(ctx context.Context, key string) ([]string, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "linearization")
		return nil, false
	}
	var order []string
	if err := json.Unmarshal(data, &order); err != nil || len(order) == 0 {
		observability.Cache().OnCacheMiss(ctx, "linearization")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "linearization")
	return order, true
}

// cachedReport returns a cached report. Undecodable entries count as misses.
func (r *Runner) cachedReport(ctx context.Context, key string) (*Report, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "report")
		return nil, false
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		observability.Cache().OnCacheMiss(ctx, "report")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "report")
	return &report, true
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
