package c3_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/moose/Algorithm-C3/pkg/c3"
)

// graph is a parent table that counts lookups per node.
type graph struct {
	parents map[string][]string
	mu      sync.Mutex
	calls   map[string]int
}

func newGraph(parents map[string][]string) *graph {
	return &graph{parents: parents, calls: make(map[string]int)}
}

func (g *graph) Resolve(n string) (c3.ParentFunc[string], bool) {
	if _, ok := g.parents[n]; !ok {
		return nil, false
	}
	return func(n string) []string {
		g.mu.Lock()
		g.calls[n]++
		g.mu.Unlock()
		return g.parents[n]
	}, true
}

// index returns the position of v in order or -1.
func index(order []string, v string) int {
	for i, x := range order {
		if x == v {
			return i
		}
	}
	return -1
}

func diamond() map[string][]string {
	return map[string][]string{
		"D": {"B", "C"},
		"B": {"A"},
		"C": {"A"},
		"A": {},
	}
}

func wikipedia() map[string][]string {
	return map[string][]string{
		"O":  {},
		"A":  {"O"},
		"B":  {"O"},
		"C":  {"O"},
		"D":  {"O"},
		"E":  {"O"},
		"K1": {"A", "B", "C"},
		"K2": {"D", "B", "E"},
		"K3": {"D", "A"},
		"Z":  {"K1", "K2", "K3"},
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name    string
		parents map[string][]string
		root    string
		want    []string
	}{
		{"diamond", diamond(), "D", []string{"D", "B", "C", "A"}},
		{"leaf", map[string][]string{"A": nil}, "A", []string{"A"}},
		{"chain", map[string][]string{"D": {"C"}, "C": {"B"}, "B": {"A"}, "A": {}}, "D", []string{"D", "C", "B", "A"}},
		{"wikipedia K1", wikipedia(), "K1", []string{"K1", "A", "B", "C", "O"}},
		{"wikipedia K2", wikipedia(), "K2", []string{"K2", "D", "B", "E", "O"}},
		{"wikipedia K3", wikipedia(), "K3", []string{"K3", "D", "A", "O"}},
		{"wikipedia Z", wikipedia(), "Z", []string{"Z", "K1", "K2", "K3", "D", "A", "B", "C", "E", "O"}},
		{
			// The hierarchy from the Python 2.3 MRO notes.
			name: "python",
			parents: map[string][]string{
				"O": {},
				"F": {"O"},
				"E": {"O"},
				"D": {"O"},
				"C": {"D", "F"},
				"B": {"D", "E"},
				"A": {"B", "C"},
			},
			root: "A",
			want: []string{"A", "B", "C", "D", "E", "F", "O"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := c3.Merge[string](tt.root, newGraph(tt.parents))
			if err != nil {
				t.Fatalf("Merge(%s) error: %v", tt.root, err)
			}
			if diff := cmp.Diff(tt.want, order); diff != "" {
				t.Errorf("Merge(%s) mismatch (-want +got):\n%s", tt.root, diff)
			}
		})
	}
}

func TestMergeDeterministic(t *testing.T) {
	first, err := c3.Merge[string]("D", newGraph(diamond()))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := c3.Merge[string]("D", newGraph(diamond()))
		if err != nil {
			t.Fatal(err)
		}
		if !cmp.Equal(first, again) {
			t.Errorf("run %d = %v, want %v", i, again, first)
		}
	}
}

func TestMergeLocalPrecedence(t *testing.T) {
	parents := map[string][]string{
		"O": {},
		"F": {"O"},
		"E": {"O"},
		"D": {"O"},
		"C": {"D", "F"},
		"B": {"D", "E"},
		"A": {"B", "C"},
	}
	order, err := c3.Merge[string]("A", newGraph(parents))
	if err != nil {
		t.Fatal(err)
	}

	for node, ps := range parents {
		for i := 1; i < len(ps); i++ {
			if index(order, ps[i-1]) > index(order, ps[i]) {
				t.Errorf("%s declares %v but order is %v", node, ps, order)
			}
		}
		for _, p := range ps {
			if index(order, node) > index(order, p) {
				t.Errorf("%s must precede %s in %v", node, p, order)
			}
		}
	}
}

// TestMergeMonotonic checks that every parent linearization is a
// subsequence of the final order.
func TestMergeMonotonic(t *testing.T) {
	g := newGraph(wikipedia())
	final, err := c3.Merge[string]("Z", g)
	if err != nil {
		t.Fatal(err)
	}

	for _, k := range []string{"K1", "K2", "K3"} {
		lin, err := c3.Merge[string](k, g)
		if err != nil {
			t.Fatal(err)
		}
		for i := 1; i < len(lin); i++ {
			if index(final, lin[i-1]) > index(final, lin[i]) {
				t.Errorf("L(%s) = %v not preserved in %v", k, lin, final)
			}
		}
	}
}

func TestMergeInconsistent(t *testing.T) {
	g := newGraph(map[string][]string{
		"A": {},
		"B": {},
		"X": {"A", "B"},
		"Y": {"B", "A"},
		"Z": {"X", "Y"},
	})

	order, err := c3.Merge[string]("Z", g)
	if order != nil {
		t.Errorf("order = %v, want nil", order)
	}
	if !errors.Is(err, c3.ErrInconsistentHierarchy) {
		t.Fatalf("error = %v, want ErrInconsistentHierarchy", err)
	}

	var ie *c3.InconsistentError[string]
	if !errors.As(err, &ie) {
		t.Fatalf("error = %T, want *InconsistentError", err)
	}
	if ie.Root != "Z" {
		t.Errorf("Root = %s, want Z", ie.Root)
	}
	if diff := cmp.Diff([]string{"Z", "X", "Y"}, ie.Partial); diff != "" {
		t.Errorf("Partial mismatch (-want +got):\n%s", diff)
	}
	if ie.Blocked != "B" {
		t.Errorf("Blocked = %s, want B", ie.Blocked)
	}
	if !strings.Contains(err.Error(), "merging Z") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestMergeInconsistentShapes(t *testing.T) {
	tests := []struct {
		name    string
		parents map[string][]string
		root    string
	}{
		// A parent listed before its own subclass cannot be ordered.
		{"parent before subclass", map[string][]string{"O": {}, "X": {"O"}, "Y": {"O", "X"}}, "Y"},
		{"duplicate parent", map[string][]string{"A": {}, "B": {"A", "A"}}, "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c3.Merge[string](tt.root, newGraph(tt.parents))
			if !errors.Is(err, c3.ErrInconsistentHierarchy) {
				t.Errorf("error = %v, want ErrInconsistentHierarchy", err)
			}
		})
	}
}

func TestMergeConfigError(t *testing.T) {
	g := newGraph(map[string][]string{
		"D": {"B", "C"},
		"B": {"A"},
		"C": {"A"},
		// A has no accessor
	})

	order, err := c3.Merge[string]("D", g)
	if order != nil {
		t.Errorf("order = %v, want nil", order)
	}
	if !errors.Is(err, c3.ErrConfiguration) {
		t.Fatalf("error = %v, want ErrConfiguration", err)
	}

	var ce *c3.ConfigError[string]
	if !errors.As(err, &ce) || ce.Node != "A" {
		t.Errorf("error = %v, want ConfigError for A", err)
	}
	if g.calls["A"] != 0 {
		t.Errorf("unresolvable node fetched %d times", g.calls["A"])
	}
}

func TestMergeConfigErrorRoot(t *testing.T) {
	_, err := c3.Merge[string]("missing", newGraph(map[string][]string{}))
	var ce *c3.ConfigError[string]
	if !errors.As(err, &ce) || ce.Node != "missing" {
		t.Errorf("error = %v, want ConfigError for missing", err)
	}
}

func TestMergeNilFunc(t *testing.T) {
	_, err := c3.MergeFunc[string]("A", nil)
	if !errors.Is(err, c3.ErrConfiguration) {
		t.Errorf("error = %v, want ErrConfiguration", err)
	}
}

func TestMergeCycle(t *testing.T) {
	tests := []struct {
		name     string
		parents  map[string][]string
		root     string
		wantNode string
		wantPath []string
	}{
		{
			name:     "self parent",
			parents:  map[string][]string{"A": {"A"}},
			root:     "A",
			wantNode: "A",
			wantPath: []string{"A", "A"},
		},
		{
			name:     "two cycle",
			parents:  map[string][]string{"A": {"B"}, "B": {"A"}},
			root:     "A",
			wantNode: "A",
			wantPath: []string{"A", "B", "A"},
		},
		{
			name: "cycle below root",
			parents: map[string][]string{
				"R": {"X"},
				"X": {"Y"},
				"Y": {"Z"},
				"Z": {"X"},
			},
			root:     "R",
			wantNode: "X",
			wantPath: []string{"X", "Y", "Z", "X"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c3.Merge[string](tt.root, newGraph(tt.parents))
			if !errors.Is(err, c3.ErrCyclicHierarchy) {
				t.Fatalf("error = %v, want ErrCyclicHierarchy", err)
			}

			var ce *c3.CycleError[string]
			if !errors.As(err, &ce) {
				t.Fatalf("error = %T, want *CycleError", err)
			}
			if ce.Node != tt.wantNode {
				t.Errorf("Node = %s, want %s", ce.Node, tt.wantNode)
			}
			if diff := cmp.Diff(tt.wantPath, ce.Path); diff != "" {
				t.Errorf("Path mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeFetchOnce(t *testing.T) {
	// Stacked diamonds: every node below the top is reachable by many paths.
	parents := map[string][]string{"L0": {}}
	for i := 1; i <= 6; i++ {
		prev := fmt.Sprintf("L%d", i-1)
		left, right, join := fmt.Sprintf("A%d", i), fmt.Sprintf("B%d", i), fmt.Sprintf("L%d", i)
		parents[left] = []string{prev}
		parents[right] = []string{prev}
		parents[join] = []string{left, right}
	}
	g := newGraph(parents)

	order, err := c3.Merge[string]("L6", g)
	if err != nil {
		t.Fatal(err)
	}
	if len(order) != len(parents) {
		t.Fatalf("len(order) = %d, want %d", len(order), len(parents))
	}
	if order[0] != "L6" || order[len(order)-1] != "L0" {
		t.Errorf("order = %v, want L6 ... L0", order)
	}

	for n := range parents {
		if g.calls[n] != 1 {
			t.Errorf("parents of %s fetched %d times, want 1", n, g.calls[n])
		}
	}
}

func TestMergeDeepChain(t *testing.T) {
	const depth = 2000
	order, err := c3.MergeFunc(0, func(n int) []int {
		if n == depth {
			return nil
		}
		return []int{n + 1}
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(order) != depth+1 {
		t.Fatalf("len(order) = %d, want %d", len(order), depth+1)
	}
	if order[0] != 0 || order[depth] != depth {
		t.Errorf("order ends = %d, %d", order[0], order[depth])
	}
}

func TestMergeNoDuplicates(t *testing.T) {
	order, err := c3.Merge[string]("Z", newGraph(wikipedia()))
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)
	for _, n := range order {
		if seen[n] {
			t.Errorf("duplicate %s in %v", n, order)
		}
		seen[n] = true
	}
}

func TestMergeStructNodes(t *testing.T) {
	type class struct {
		pkg, name string
	}
	base := class{"core", "Base"}
	mixin := class{"ext", "Mixin"}
	leaf := class{"app", "Leaf"}

	table := map[class][]class{
		leaf:  {base, mixin},
		base:  nil,
		mixin: nil,
	}
	order, err := c3.MergeFunc(leaf, func(c class) []class { return table[c] })
	if err != nil {
		t.Fatal(err)
	}
	want := []class{leaf, base, mixin}
	if !cmp.Equal(want, order, cmp.AllowUnexported(class{})) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestMergeConcurrentCalls(t *testing.T) {
	g := newGraph(diamond())
	roots := []string{"A", "B", "C", "D"}
	var wg sync.WaitGroup
	results := make([][]string, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c3.Merge[string](roots[i%4], g)
		}(i)
	}
	wg.Wait()

	for i, order := range results {
		if errs[i] != nil {
			t.Fatalf("Merge(%s) error: %v", roots[i%4], errs[i])
		}
		if order[0] != roots[i%4] {
			t.Errorf("Merge(%s) starts with %s", roots[i%4], order[0])
		}
	}
}

func TestErrorMessages(t *testing.T) {
	ce := &c3.ConfigError[string]{Node: "A"}
	if got, want := ce.Error(), "could not resolve parent accessor for A"; got != want {
		t.Errorf("ConfigError = %q, want %q", got, want)
	}

	ie := &c3.InconsistentError[string]{Root: "Z", Partial: []string{"Z", "X"}, Blocked: "B"}
	if !strings.HasPrefix(ie.Error(), "inconsistent hierarchy while merging Z") || !strings.Contains(ie.Error(), "[Z, X]") {
		t.Errorf("InconsistentError = %q", ie.Error())
	}

	cy := &c3.CycleError[string]{Node: "A", Path: []string{"A", "B", "A"}}
	if got, want := cy.Error(), "cyclic hierarchy at A: A -> B -> A"; got != want {
		t.Errorf("CycleError = %q, want %q", got, want)
	}
}
