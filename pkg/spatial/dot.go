package spatial

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

var quadrantNames = [...]string{NE: "NE", NW: "NW", SW: "SW", SE: "SE"}

// ToDOT describes the node structure of q in Graphviz DOT format. Leaves
// are filled in proportion to how full they are.
func ToDOT[T Item](q *Quadtree[T]) string {
	var buf bytes.Buffer
	buf.WriteString("digraph Q {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"monospace\", fontsize=12];\n")
	buf.WriteString("\n")

	q.Walk(func(n Node) {
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(n.Path), nodeAttrs(n, q.cfg.capacity))
		if n.Path != "" {
			parent := n.Path[:len(n.Path)-1]
			quad := int(n.Path[len(n.Path)-1] - '0')
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", nodeID(parent), nodeID(n.Path), quadrantNames[quad])
		}
	})

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(path string) string { return "n" + path }

func nodeAttrs(n Node, capacity int) string {
	label := fmt.Sprintf("depth %d\\n%.0f,%.0f %.0fx%.0f", n.Depth, n.Bounds.X, n.Bounds.Y, n.Bounds.W, n.Bounds.H)
	if !n.Leaf {
		return fmt.Sprintf("label=\"%s\", fillcolor=lightgrey", label)
	}
	label += fmt.Sprintf("\\n%d items", n.Items)
	fill := "white"
	switch {
	case n.Items > capacity:
		fill = "\"#f87171\""
	case n.Items > capacity/2:
		fill = "\"#fbbf24\""
	case n.Items > 0:
		fill = "\"#86efac\""
	}
	return fmt.Sprintf("label=\"%s\", fillcolor=%s", label, fill)
}

// RenderSVG lays out a DOT graph with Graphviz and returns SVG bytes.
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
	return buf.Bytes(), nil
}
