// Package c3 computes C3 linearizations of directed acyclic hierarchies.
//
// # Overview
//
// C3 is the method-resolution-order strategy used by several object systems
// to merge a multiple-inheritance graph into a single ancestor ordering. Given
// a root node and a way to obtain each node's immediate parents, [Merge]
// returns every ancestor of the root (the root included) such that:
//
//   - every node precedes all of its ancestors
//   - the order of parents declared on any single node is preserved
//   - the order is consistent across the whole graph, or an error is returned
//
// Nodes are opaque: any comparable type works, and the package never looks
// inside a node.
//
// # Parent Sources
//
// The Linearizer depends on a single capability, [ParentSource], which maps a
// node to the accessor that yields its ordered parents. Three implementations
// ship with the package:
//
//   - [ParentFunc]: a plain function value
//   - [Registry]: accessors looked up per node kind, for hierarchies where the
//     parent accessor depends on what the node is
//   - [SharedSource]: an explicit, synchronized memo of parent lookups that
//     may be reused across calls
//
// A node whose accessor cannot be resolved fails the call with a
// [ConfigError] naming that node.
//
// # Basic Usage
//
//	parents := map[string][]string{
//	    "D": {"B", "C"},
//	    "B": {"A"},
//	    "C": {"A"},
//	}
//	order, err := c3.MergeFunc("D", func(n string) []string { return parents[n] })
//	// order == [D B C A]
//
// # Errors
//
// Three structured errors can be returned, each matching a sentinel with
// [errors.Is]:
//
//   - [ConfigError] / [ErrConfiguration]: no parent accessor for a node
//   - [InconsistentError] / [ErrInconsistentHierarchy]: declared precedence
//     contradicts itself and no consistent order exists
//   - [CycleError] / [ErrCyclicHierarchy]: a node is its own ancestor
//
// None of them is transient; retrying without changing the hierarchy yields
// the same error.
//
// # Caching
//
// Each call builds its own fetch cache (one parent lookup per node) and merge
// cache (one linearization per node, reused across diamond paths). Nothing is
// retained once the call returns. Cross-call reuse of parent lookups is
// opt-in through [SharedSource].
//
// # Concurrency
//
// [Merge] keeps no package-level state, so concurrent calls are safe as long
// as the supplied source is. [SharedSource] is safe for concurrent use.
//
// The traversal uses an explicit stack of frames instead of recursion, so
// hierarchy depth is bounded by memory rather than the goroutine stack.
package c3
