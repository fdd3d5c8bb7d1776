// Package hierarchy provides an in-memory inheritance hierarchy that can be
// linearized with [c3.Merge].
//
// # Overview
//
// A [Hierarchy] maps node IDs to their ordered immediate parents. The order
// of parents is significant: it is the local precedence order that C3
// preserves. A *Hierarchy implements [c3.ParentSource], so it can be handed to
// the Linearizer directly:
//
//	h := hierarchy.New(nil)
//	_ = h.AddNode(hierarchy.Node{ID: "A"})
//	_ = h.AddNode(hierarchy.Node{ID: "B", Parents: []string{"A"}})
//	_ = h.AddNode(hierarchy.Node{ID: "C", Parents: []string{"A"}})
//	_ = h.AddNode(hierarchy.Node{ID: "D", Parents: []string{"B", "C"}})
//	order, err := c3.Merge[string]("D", h) // [D B C A]
//
// A parent may be referenced before it is declared. Referencing an ID that is
// never declared is allowed while building; [Hierarchy.CheckParents] reports it,
// and linearizing through it fails with a [c3.ConfigError].
//
// # File Formats
//
// Hierarchies are read from JSON, TOML or YAML documents with a single
// "nodes" list:
//
//	{
//	  "nodes": [
//	    {"id": "A"},
//	    {"id": "B", "parents": ["A"]},
//	    {"id": "D", "parents": ["B", "C"], "meta": {"file": "d.go"}}
//	  ]
//	}
//
// [Import] picks the codec from the file extension; [ReadJSON], [ReadTOML] and
// [ReadYAML] read from any io.Reader. [WriteJSON] and [Export] produce the
// canonical JSON form, which [Hash] digests for cache keys.
//
// # Concurrency
//
// Hierarchy instances are not safe for concurrent mutation. Concurrent reads,
// including concurrent linearizations, are safe once building is finished.
//
// [c3.Merge]: github.com/moose/Algorithm-C3/pkg/c3.Merge
// [c3.ParentSource]: github.com/moose/Algorithm-C3/pkg/c3.ParentSource
// [c3.ConfigError]: github.com/moose/Algorithm-C3/pkg/c3.ConfigError
package hierarchy
