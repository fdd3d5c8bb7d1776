// Package render formats linearizations and hierarchies for output.
//
// # Overview
//
// Linearizations are rendered as plain text or JSON. Hierarchies are rendered
// as Graphviz diagrams, optionally annotated with a linearization:
//
//   - [FormatText]: the order on one line, for terminals and scripts
//   - [FormatJSON]: indented JSON of any result value
//   - [FormatDOT]: Graphviz DOT source from [ToDOT]
//   - [FormatSVG]: DOT rendered with the embedded Graphviz via [RenderSVG]
//
// # Diagrams
//
// [ToDOT] draws inheritance edges from child to parent with parents above
// their children. Edges out of nodes with several parents are labelled with
// the parent's declaration position, since that order drives the merge.
// When [Options.Order] is set, nodes in the linearization are filled and
// labelled with their rank:
//
//	dot := render.ToDOT(h, render.Options{Root: "D", Order: order})
//	svg, err := render.RenderSVG(dot)
package render
