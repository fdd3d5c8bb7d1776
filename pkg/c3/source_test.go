package c3_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/moose/Algorithm-C3/pkg/c3"
)

func TestParentFuncResolve(t *testing.T) {
	var nilFn c3.ParentFunc[string]
	if _, ok := nilFn.Resolve("A"); ok {
		t.Error("nil ParentFunc should not resolve")
	}

	fn := c3.ParentFunc[string](func(string) []string { return []string{"X"} })
	got, ok := fn.Resolve("A")
	if !ok {
		t.Fatal("ParentFunc should resolve")
	}
	if diff := cmp.Diff([]string{"X"}, got("A")); diff != "" {
		t.Errorf("parents mismatch (-want +got):\n%s", diff)
	}
}

// kind classifies nodes by prefix: "iface:Reader" has kind "iface".
func kind(n string) string {
	k, _, _ := strings.Cut(n, ":")
	return k
}

func TestRegistry(t *testing.T) {
	classes := map[string][]string{
		"class:File":   {"class:Object", "iface:Reader"},
		"class:Object": {},
	}
	ifaces := map[string][]string{
		"iface:Reader": {},
	}

	r := c3.NewRegistry(kind)
	r.Register("class", func(n string) []string { return classes[n] })
	r.Register("iface", func(n string) []string { return ifaces[n] })

	order, err := c3.Merge[string]("class:File", r)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"class:File", "class:Object", "iface:Reader"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryMissingKind(t *testing.T) {
	r := c3.NewRegistry(kind)
	r.Register("class", func(n string) []string {
		if n == "class:File" {
			return []string{"trait:Closer"}
		}
		return nil
	})

	_, err := c3.Merge[string]("class:File", r)
	var ce *c3.ConfigError[string]
	if !errors.As(err, &ce) || ce.Node != "trait:Closer" {
		t.Errorf("error = %v, want ConfigError for trait:Closer", err)
	}
}

func TestRegistryUnregister(t *testing.T) {
	r := c3.NewRegistry(kind)
	r.Register("class", func(string) []string { return nil })
	r.Register("class", nil)

	if _, ok := r.Resolve("class:Object"); ok {
		t.Error("unregistered kind should not resolve")
	}
}

func TestSharedSourceMemoizes(t *testing.T) {
	g := newGraph(diamond())
	shared := c3.NewSharedSource[string](g)

	for i := 0; i < 3; i++ {
		order, err := c3.Merge[string]("D", shared)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"D", "B", "C", "A"}, order); diff != "" {
			t.Errorf("run %d mismatch (-want +got):\n%s", i, diff)
		}
	}

	for _, n := range []string{"A", "B", "C", "D"} {
		if g.calls[n] != 1 {
			t.Errorf("parents of %s fetched %d times, want 1", n, g.calls[n])
		}
	}
	want := c3.SharedStats{Entries: 4, Hits: 8, Misses: 4}
	if got := shared.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestSharedSourceInvalidate(t *testing.T) {
	parents := diamond()
	g := newGraph(parents)
	shared := c3.NewSharedSource[string](g)

	if _, err := c3.Merge[string]("D", shared); err != nil {
		t.Fatal(err)
	}

	parents["D"] = []string{"C", "B"}
	shared.Invalidate("D")

	order, err := c3.Merge[string]("D", shared)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"D", "C", "B", "A"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if g.calls["D"] != 2 || g.calls["A"] != 1 {
		t.Errorf("calls D=%d A=%d, want 2 and 1", g.calls["D"], g.calls["A"])
	}

	shared.Reset()
	if got := shared.Stats(); got != (c3.SharedStats{}) {
		t.Errorf("Stats() after Reset = %+v, want zero", got)
	}
}

func TestSharedSourceUnresolvable(t *testing.T) {
	shared := c3.NewSharedSource[string](newGraph(map[string][]string{"B": {"A"}}))
	_, err := c3.Merge[string]("B", shared)
	if !errors.Is(err, c3.ErrConfiguration) {
		t.Errorf("error = %v, want ErrConfiguration", err)
	}
	if got := shared.Stats().Entries; got != 1 {
		t.Errorf("Entries = %d, want 1", got)
	}
}

func TestSharedSourceConcurrent(t *testing.T) {
	g := newGraph(wikipedia())
	shared := c3.NewSharedSource[string](g)

	var wg sync.WaitGroup
	errs := make([]error, 32)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c3.Merge[string]("Z", shared)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
	if got := shared.Stats().Entries; got != 10 {
		t.Errorf("Entries = %d, want 10", got)
	}
}

// Once warm, concurrent lookups only read the memo; every hit must still be
// counted.
func TestSharedSourceConcurrentHits(t *testing.T) {
	g := newGraph(wikipedia())
	shared := c3.NewSharedSource[string](g)
	if _, err := c3.Merge[string]("Z", shared); err != nil {
		t.Fatal(err)
	}

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c3.Merge[string]("Z", shared)
		}()
	}
	wg.Wait()

	// Each Merge of Z resolves its ten nodes once.
	want := c3.SharedStats{Entries: 10, Hits: workers * 10, Misses: 10}
	if got := shared.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
	for n, c := range g.calls {
		if c != 1 {
			t.Errorf("parents of %s fetched %d times, want 1", n, c)
		}
	}
}
