package hierarchy

import (
	"errors"
	"fmt"
	"slices"

	"github.com/moose/Algorithm-C3/pkg/c3"
)

var (
	// ErrInvalidNodeID is returned by [Hierarchy.AddNode] when the node ID is
	// empty, or when a parent ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Hierarchy.AddNode] when a node with
	// the same ID has already been declared.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownParent is returned by [Hierarchy.Validate] when a node lists a
	// parent that is never declared.
	ErrUnknownParent = errors.New("unknown parent")

	// ErrDuplicateParent is returned by [Hierarchy.Validate] when a node lists
	// the same parent twice. Such a node has no C3 linearization.
	ErrDuplicateParent = errors.New("duplicate parent")

	// ErrHierarchyCycle is returned by [Hierarchy.Validate] when a node is its
	// own ancestor.
	ErrHierarchyCycle = errors.New("hierarchy contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or to the
// hierarchy. Metadata maps are never nil after creation.
type Metadata map[string]any

// Node is a declared member of the hierarchy.
type Node struct {
	ID      string   // Unique identifier
	Parents []string // Immediate parents in local precedence order
	Meta    Metadata // Arbitrary metadata (never nil after AddNode)
}

// Hierarchy is a set of nodes with ordered parents. Declaration order is
// preserved by [Hierarchy.Nodes] and [Hierarchy.IDs].
//
// The zero value is not usable; use [New].
type Hierarchy struct {
	nodes    map[string]*Node
	order    []string
	children map[string][]string
	meta     Metadata
}

// New creates an empty hierarchy with optional hierarchy-level metadata.
func New(meta Metadata) *Hierarchy {
	if meta == nil {
		meta = Metadata{}
	}
	return &Hierarchy{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the hierarchy-level metadata map.
func (h *Hierarchy) Meta() Metadata { return h.meta }

// AddNode declares a node. The parents slice is copied.
// Returns ErrInvalidNodeID for an empty ID or parent ID, and
// ErrDuplicateNodeID if the ID was already declared.
func (h *Hierarchy) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := h.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	for _, p := range n.Parents {
		if p == "" {
			return fmt.Errorf("parent of %s: %w", n.ID, ErrInvalidNodeID)
		}
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	n.Parents = slices.Clone(n.Parents)
	h.nodes[n.ID] = &n
	h.order = append(h.order, n.ID)
	for _, p := range n.Parents {
		h.children[p] = append(h.children[p], n.ID)
	}
	return nil
}

// Node returns the node with the given ID.
func (h *Hierarchy) Node(id string) (*Node, bool) {
	n, ok := h.nodes[id]
	return n, ok
}

// Has reports whether id has been declared.
func (h *Hierarchy) Has(id string) bool {
	_, ok := h.nodes[id]
	return ok
}

// Nodes returns all nodes in declaration order.
func (h *Hierarchy) Nodes() []*Node {
	nodes := make([]*Node, len(h.order))
	for i, id := range h.order {
		nodes[i] = h.nodes[id]
	}
	return nodes
}

// IDs returns all node IDs in declaration order.
func (h *Hierarchy) IDs() []string { return slices.Clone(h.order) }

// NodeCount returns the number of declared nodes.
func (h *Hierarchy) NodeCount() int { return len(h.nodes) }

// EdgeCount returns the number of node-to-parent links.
func (h *Hierarchy) EdgeCount() int {
	count := 0
	for _, n := range h.nodes {
		count += len(n.Parents)
	}
	return count
}

// Parents returns the ordered parents of id, or nil if it is not declared.
// The returned slice must not be modified.
func (h *Hierarchy) Parents(id string) []string {
	if n, ok := h.nodes[id]; ok {
		return n.Parents
	}
	return nil
}

// Children returns the IDs of nodes that list id as a parent, in
// declaration order. The returned slice must not be modified.
func (h *Hierarchy) Children(id string) []string { return h.children[id] }

// Resolve implements [c3.ParentSource]. Only declared IDs resolve.
func (h *Hierarchy) Resolve(id string) (c3.ParentFunc[string], bool) {
	if _, ok := h.nodes[id]; !ok {
		return nil, false
	}
	return h.Parents, true
}

// Roots returns the nodes that no other node inherits from, in declaration
// order. These are the most derived members of the hierarchy.
func (h *Hierarchy) Roots() []*Node {
	var roots []*Node
	for _, id := range h.order {
		if len(h.children[id]) == 0 {
			roots = append(roots, h.nodes[id])
		}
	}
	return roots
}

// Bases returns the nodes without parents, in declaration order.
func (h *Hierarchy) Bases() []*Node {
	var bases []*Node
	for _, id := range h.order {
		if n := h.nodes[id]; len(n.Parents) == 0 {
			bases = append(bases, n)
		}
	}
	return bases
}

// Validate checks that every parent is declared, that no node lists the same
// parent twice, and that the hierarchy is acyclic. Errors are wrapped with
// the offending node.
func (h *Hierarchy) Validate() error {
	if problems := h.CheckParents(); len(problems) > 0 {
		return problems[0]
	}
	return h.detectCycles()
}

// ParentError reports an undeclared or repeated parent of a node. It
// unwraps to [ErrUnknownParent] or [ErrDuplicateParent].
type ParentError struct {
	Node   string
	Parent string
	Err    error
}

func (e *ParentError) Error() string {
	return fmt.Sprintf("node %s: %v %s", e.Node, e.Err, e.Parent)
}

func (e *ParentError) Unwrap() error { return e.Err }

// CheckParents returns every parent problem in declaration order, or nil.
func (h *Hierarchy) CheckParents() []*ParentError {
	var problems []*ParentError
	for _, id := range h.order {
		n := h.nodes[id]
		seen := make(map[string]bool, len(n.Parents))
		for _, p := range n.Parents {
			switch {
			case !h.Has(p):
				problems = append(problems, &ParentError{Node: id, Parent: p, Err: ErrUnknownParent})
			case seen[p]:
				problems = append(problems, &ParentError{Node: id, Parent: p, Err: ErrDuplicateParent})
			}
			seen[p] = true
		}
	}
	return problems
}

func (h *Hierarchy) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(h.nodes))
	var cycleAt string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		for _, p := range h.Parents(id) {
			switch color[p] {
			case white:
				if dfs(p) {
					return true
				}
			case gray:
				cycleAt = p
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range h.order {
		if color[id] == white && dfs(id) {
			return fmt.Errorf("node %s: %w", cycleAt, ErrHierarchyCycle)
		}
	}
	return nil
}
