package c3

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration is matched by [ConfigError]. It indicates a caller-side
	// setup defect: the parent source has no accessor for a visited node.
	ErrConfiguration = errors.New("parent accessor not resolvable")

	// ErrInconsistentHierarchy is matched by [InconsistentError]. The declared
	// parent orders contradict each other and no C3 order exists.
	ErrInconsistentHierarchy = errors.New("inconsistent hierarchy")

	// ErrCyclicHierarchy is matched by [CycleError]. A node was reached again
	// while its own linearization was still being computed.
	ErrCyclicHierarchy = errors.New("cyclic hierarchy")
)

// ConfigError reports a node whose parent accessor could not be resolved.
type ConfigError[N comparable] struct {
	Node N
}

func (e *ConfigError[N]) Error() string {
	return fmt.Sprintf("could not resolve parent accessor for %v", e.Node)
}

// Is reports whether target is [ErrConfiguration].
func (e *ConfigError[N]) Is(target error) bool { return target == ErrConfiguration }

// InconsistentError reports a merge step that could not select a next node.
type InconsistentError[N comparable] struct {
	Root    N   // node being linearized when the merge failed
	Partial []N // merge output accumulated before the failure, root first
	Blocked N   // head that could not be selected
}

func (e *InconsistentError[N]) Error() string {
	parts := make([]string, len(e.Partial))
	for i, n := range e.Partial {
		parts[i] = fmt.Sprint(n)
	}
	return fmt.Sprintf("inconsistent hierarchy while merging %v: merged [%s], failed on %v",
		e.Root, strings.Join(parts, ", "), e.Blocked)
}

// Is reports whether target is [ErrInconsistentHierarchy].
func (e *InconsistentError[N]) Is(target error) bool { return target == ErrInconsistentHierarchy }

// CycleError reports a node that is its own ancestor.
type CycleError[N comparable] struct {
	Node N   // node reached twice
	Path []N // descent path from Node back to Node
}

func (e *CycleError[N]) Error() string {
	parts := make([]string, len(e.Path))
	for i, n := range e.Path {
		parts[i] = fmt.Sprint(n)
	}
	return fmt.Sprintf("cyclic hierarchy at %v: %s", e.Node, strings.Join(parts, " -> "))
}

// Is reports whether target is [ErrCyclicHierarchy].
func (e *CycleError[N]) Is(target error) bool { return target == ErrCyclicHierarchy }
