// Package pkg provides the libraries behind the c3 command.
//
// # Overview
//
// c3 computes C3 linearizations (method resolution orders) of
// multiple-inheritance hierarchies. The pkg directory is organized as:
//
//  1. [c3] - The merge algorithm over any comparable node type
//  2. [hierarchy] - Declared nodes and parent lists, with JSON/TOML/YAML codecs
//  3. [pipeline] - Cached single-node and whole-hierarchy linearization
//  4. [cache], [store] - Result caching (file, Redis) and MongoDB hierarchy storage
//  5. [render] - Text, JSON, DOT and SVG output
//  6. [server] - The HTTP API
//
// # Architecture
//
//	hierarchy file / MongoDB
//	         ↓
//	    [hierarchy] package (validate, hash)
//	         ↓
//	    [pipeline] package (cache lookup, worker pool)
//	         ↓
//	    [c3] package (merge)
//	         ↓
//	    text / JSON / DOT / SVG / HTTP response
//
// # Quick Start
//
// Linearize a node programmatically:
//
//	h, err := hierarchy.Import("classes.json")
//	if err != nil {
//		return err
//	}
//	order, err := c3.Merge[string]("D", h)
//	// order: [D B C A]
//
// The [errors] package classifies failures into stable codes shared by the
// CLI and the HTTP API. [observability] exposes hooks for metrics and tracing.
//
// [c3]: https://pkg.go.dev/github.com/moose/Algorithm-C3/pkg/c3
// [hierarchy]: https://pkg.go.dev/github.com/moose/Algorithm-C3/pkg/hierarchy
// [pipeline]: https://pkg.go.dev/github.com/moose/Algorithm-C3/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/moose/Algorithm-C3/pkg/cache
// [store]: https://pkg.go.dev/github.com/moose/Algorithm-C3/pkg/store
// [render]: https://pkg.go.dev/github.com/moose/Algorithm-C3/pkg/render
// [server]: https://pkg.go.dev/github.com/moose/Algorithm-C3/pkg/server
// [errors]: https://pkg.go.dev/github.com/moose/Algorithm-C3/pkg/errors
// [observability]: https://pkg.go.dev/github.com/moose/Algorithm-C3/pkg/observability
package pkg
