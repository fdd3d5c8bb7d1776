// Package pipeline runs C3 linearizations over hierarchies with result caching.
//
// The Runner is shared by the CLI and the HTTP API so that both entry points
// validate options, consult the cache, and log the same way.
//
// # Usage
//
// Linearize a single node:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Linearize(ctx, h, "D", pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Order) // [D B C A]
//
// Check every node of a hierarchy concurrently:
//
//	report, err := runner.Check(ctx, h, pipeline.Options{Workers: 8})
//	for _, f := range report.Failures {
//	    fmt.Println(f.Node, f.Code, f.Message)
//	}
//
// Failed linearizations are returned as errors (see [github.com/moose/Algorithm-C3/pkg/c3])
// and are never written to the cache.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWorkers is the number of concurrent linearizations in Check.
	DefaultWorkers = 8

	// MaxWorkers caps Options.Workers.
	MaxWorkers = 256

	// DefaultMaxNodes is the largest hierarchy a run accepts.
	DefaultMaxNodes = 100_000
)

// ErrTooManyNodes is returned when a hierarchy exceeds Options.MaxNodes.
var ErrTooManyNodes = errors.New("hierarchy exceeds node limit")

// =============================================================================
// Options - Runner Configuration
// =============================================================================

// Options configures a Linearize or Check run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Workers  int  `json:"workers,omitempty"`
	MaxNodes int  `json:"max_nodes,omitempty"`
	Refresh  bool `json:"refresh,omitempty"` // skip cache reads, still write

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks option ranges and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", o.Workers)
	}
	if o.Workers > MaxWorkers {
		return fmt.Errorf("workers must be at most %d, got %d", MaxWorkers, o.Workers)
	}
	if o.MaxNodes < 0 {
		return fmt.Errorf("max_nodes must not be negative, got %d", o.MaxNodes)
	}

	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result is the outcome of a single linearization.
type Result struct {
	Root          string        `json:"root"`
	Order         []string      `json:"order"`
	HierarchyHash string        `json:"hierarchy_hash"`
	Cached        bool          `json:"cached"`
	Duration      time.Duration `json:"-"`
}

// Report is the outcome of checking every node of a hierarchy.
// Entries follow the hierarchy's declaration order.
//
// Structural lists undeclared and repeated parents found before merging;
// Failures lists the nodes whose linearization failed.
type Report struct {
	HierarchyHash  string          `json:"hierarchy_hash"`
	NodeCount      int             `json:"node_count"`
	Linearizations []Linearization `json:"linearizations"`
	Structural     []Failure       `json:"structural,omitempty"`
	Failures       []Failure       `json:"failures,omitempty"`
	Cached         bool            `json:"cached"`
	Duration       time.Duration   `json:"-"`
}

// Linearization pairs a node with its method resolution order.
type Linearization struct {
	Node  string   `json:"node"`
	Order []string `json:"order"`
}

// Failure records a node whose linearization could not be computed, or
// whose parent list is malformed.
type Failure struct {
	Node    string `json:"node"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// OK reports whether every node linearized and no parent list is malformed.
func (r *Report) OK() bool { return len(r.Failures) == 0 && len(r.Structural) == 0 }

// Order returns the linearization of node from the report, if present.
func (r *Report) Order(node string) ([]string, bool) {
	for _, l := range r.Linearizations {
		if l.Node == node {
			return l.Order, true
		}
	}
	return nil, false
}
