package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/stackcanvas/pkg/resources"
	"github.com/matzehuels/stackcanvas/pkg/stack"
	"github.com/matzehuels/stackcanvas/pkg/units"
)

// Options configures diagram output.
type Options struct {
	// Resources adds the displayed resource profile to container labels.
	Resources bool

	// Positions pins nodes to their canvas coordinates instead of letting
	// Graphviz lay them out.
	Positions bool
}

// kindColors fills container clusters by kind.
var kindColors = map[stack.Kind]string{
	stack.KindDocker:     "#e3f2fd",
	stack.KindKubernetes: "#ede7f6",
	stack.KindCustom:     "#f1f8e9",
}

// edgeStyles maps connection types to DOT edge styles.
var edgeStyles = map[stack.ConnectionType]string{
	stack.ConnectionDependsOn: "solid",
	stack.ConnectionDataFlow:  "dashed",
	stack.ConnectionNetwork:   "dotted",
}

// ToDOT converts a stack to Graphviz DOT format.
// The resulting string can be rendered with [RenderSVG].
//
// Containers render as "cluster_<id>" subgraphs so Graphviz draws a box
// around their members. Connections that end on a container attach to an
// invisible anchor node inside its cluster.
func ToDOT(s stack.State, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if s.Name != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", s.Name)
	}
	buf.WriteString("\n")

	for _, c := range s.Containers {
		writeCluster(&buf, c, opts)
	}

	for _, n := range s.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(componentAttrs(n, opts), ", "))
	}

	if len(s.Connections) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range s.Connections {
		from, fromCluster := endpoint(s, e.From)
		to, toCluster := endpoint(s, e.To)
		attrs := []string{fmt.Sprintf("style=%s", edgeStyle(e.Type))}
		if e.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
		}
		if fromCluster != "" {
			attrs = append(attrs, fmt.Sprintf("ltail=%q", fromCluster))
		}
		if toCluster != "" {
			attrs = append(attrs, fmt.Sprintf("lhead=%q", toCluster))
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", from, to, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeCluster(buf *bytes.Buffer, c stack.Container, opts Options) {
	fmt.Fprintf(buf, "  subgraph %q {\n", clusterName(c.ID))
	fmt.Fprintf(buf, "    label=%q;\n", containerLabel(c, opts))
	buf.WriteString("    style=\"rounded,filled\";\n")
	fmt.Fprintf(buf, "    fillcolor=%q;\n", kindColor(c.Kind))
	fmt.Fprintf(buf, "    %q [shape=point, style=invis, width=0];\n", anchorName(c.ID))
	for _, m := range c.Members {
		fmt.Fprintf(buf, "    %q [%s];\n", m.ID, strings.Join(componentAttrs(m, Options{Resources: opts.Resources}), ", "))
	}
	buf.WriteString("  }\n\n")
}

func containerLabel(c stack.Container, opts Options) string {
	lines := []string{fmt.Sprintf("%s (%s)", c.Name, c.Kind)}
	if c.Kind == stack.KindKubernetes && c.Replicas > 0 {
		lines[0] += fmt.Sprintf(" x%d", c.Replicas)
	}
	if len(c.Ports) > 0 {
		lines = append(lines, "ports: "+strings.Join(c.Ports, ", "))
	}
	if opts.Resources {
		lines = append(lines, profileLine(stack.DisplayProfile(c)))
		if c.ResourceMode == resources.ModeManual {
			lines[len(lines)-1] += " (manual)"
		}
	}
	return strings.Join(lines, "\n")
}

func profileLine(p resources.Profile) string {
	parts := make([]string, 0, len(units.Dimensions))
	for _, d := range units.Dimensions {
		parts = append(parts, units.Format(p.Get(d)))
	}
	return strings.Join(parts, " / ")
}

func componentAttrs(n stack.Component, opts Options) []string {
	label := n.Name
	if n.Technology != "" && n.Technology != n.Name {
		label += "\n" + n.Technology
	}
	if opts.Resources && n.Resources != nil {
		var parts []string
		for _, d := range units.Dimensions {
			if t := n.Resources.Text(d); t != "" {
				parts = append(parts, t)
			}
		}
		if len(parts) > 0 {
			label += "\n" + strings.Join(parts, " / ")
		}
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Category != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", string(n.Category)))
	}
	if opts.Positions {
		// Graphviz positions are in points with y growing upwards.
		attrs = append(attrs, fmt.Sprintf("pos=\"%g,%g!\"", n.Bounds.X, -n.Bounds.Y))
	}
	return attrs
}

// endpoint resolves a connection end to a DOT node and, for containers, the
// cluster to clip the edge at.
func endpoint(s stack.State, id string) (node, cluster string) {
	if s.FindContainer(id) >= 0 {
		return anchorName(id), clusterName(id)
	}
	return id, ""
}

func clusterName(id string) string { return "cluster_" + id }
func anchorName(id string) string  { return "anchor_" + id }

func kindColor(k stack.Kind) string {
	if c, ok := kindColors[k]; ok {
		return c
	}
	return "#f5f5f5"
}

func edgeStyle(t stack.ConnectionType) string {
	if s, ok := edgeStyles[t]; ok {
		return s
	}
	return "solid"
}
