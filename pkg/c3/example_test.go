package c3_test

import (
	"errors"
	"fmt"

	"github.com/moose/Algorithm-C3/pkg/c3"
)

func ExampleMergeFunc() {
	// Diamond: D inherits from B and C, both of which inherit from A.
	parents := map[string][]string{
		"D": {"B", "C"},
		"B": {"A"},
		"C": {"A"},
	}
	order, err := c3.MergeFunc("D", func(n string) []string { return parents[n] })
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(order)
	// Output:
	// [D B C A]
}

func ExampleMerge_inconsistent() {
	parents := map[string][]string{
		"X": {"A", "B"},
		"Y": {"B", "A"},
		"Z": {"X", "Y"},
	}
	_, err := c3.MergeFunc("Z", func(n string) []string { return parents[n] })

	var ie *c3.InconsistentError[string]
	if errors.As(err, &ie) {
		fmt.Println("root:", ie.Root)
		fmt.Println("merged so far:", ie.Partial)
		fmt.Println("blocked on:", ie.Blocked)
	}
	// Output:
	// root: Z
	// merged so far: [Z X Y]
	// blocked on: B
}

func ExampleRegistry() {
	r := c3.NewRegistry(func(n string) string {
		if n == "Comparable" {
			return "interface"
		}
		return "class"
	})
	r.Register("class", func(n string) []string {
		if n == "Integer" {
			return []string{"Number", "Comparable"}
		}
		return nil
	})

	_, err := c3.Merge[string]("Integer", r)
	fmt.Println(errors.Is(err, c3.ErrConfiguration))

	r.Register("interface", func(string) []string { return nil })
	order, _ := c3.Merge[string]("Integer", r)
	fmt.Println(order)
	// Output:
	// true
	// [Integer Number Comparable]
}
