package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/moose/Algorithm-C3/pkg/hierarchy"
)

// Options configures diagram generation.
type Options struct {
	// Root restricts the diagram to Root and its ancestors. Empty draws the
	// whole hierarchy.
	Root string

	// Order highlights a linearization; each listed node is labelled with
	// its 1-based rank.
	Order []string
}

// ToDOT converts a hierarchy to Graphviz DOT format.
// The resulting DOT string can be rendered with [RenderSVG].
//
// Parents referenced but never declared are drawn with dashed outlines.
func ToDOT(h *hierarchy.Hierarchy, opts Options) string {
	rank := make(map[string]int, len(opts.Order))
	for i, id := range opts.Order {
		rank[id] = i + 1
	}
	ids := visible(h, opts.Root)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=empty, fontsize=10];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range ids {
		fmt.Fprintf(&buf, "  %s [%s];\n", quoteDOT(id), strings.Join(fmtAttrs(h, id, rank[id], id == opts.Root), ", "))
	}

	buf.WriteString("\n")
	for _, id := range ids {
		parents := h.Parents(id)
		for i, p := range parents {
			if len(parents) > 1 {
				fmt.Fprintf(&buf, "  %s -> %s [label=\"%d\"];\n", quoteDOT(id), quoteDOT(p), i+1)
			} else {
				fmt.Fprintf(&buf, "  %s -> %s;\n", quoteDOT(id), quoteDOT(p))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// visible returns the nodes to draw: every declared node in declaration
// order, or root followed by its ancestors in breadth-first order.
func visible(h *hierarchy.Hierarchy, root string) []string {
	if root == "" {
		ids := h.IDs()
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			seen[id] = true
		}
		for _, id := range h.IDs() {
			for _, p := range h.Parents(id) {
				if !seen[p] {
					seen[p] = true
					ids = append(ids, p)
				}
			}
		}
		return ids
	}

	seen := map[string]bool{root: true}
	queue := []string{root}
	for i := 0; i < len(queue); i++ {
		for _, p := range h.Parents(queue[i]) {
			if !seen[p] {
				seen[p] = true
				queue = append(queue, p)
			}
		}
	}
	return queue
}

// dotEscaper escapes backslashes and double quotes for quoted DOT strings.
// Other runes are written as-is.
var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quoteDOT(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

func fmtAttrs(h *hierarchy.Hierarchy, id string, rank int, isRoot bool) []string {
	label := dotEscaper.Replace(id)
	if rank > 0 {
		label += `\n#` + strconv.Itoa(rank)
	}
	attrs := []string{`label="` + label + `"`}
	switch {
	case !h.Has(id):
		attrs = append(attrs, "style=\"rounded,dashed\"", "fontcolor=grey40")
	case rank > 0:
		attrs = append(attrs, "fillcolor=lightsteelblue")
	}
	if isRoot {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
