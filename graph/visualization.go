package graph

import (
	"fmt"
	"sort"
	"strings"
)

// MermaidOptions configures DrawMermaidWithOptions.
type MermaidOptions struct {
	// Direction of the flowchart, "TD" or "LR".
	Direction string
}

// DrawMermaid renders t as a Mermaid flowchart. Conditional edges are
// dashed and labelled with their condition.
func DrawMermaid(t Topology) string {
	return DrawMermaidWithOptions(t, MermaidOptions{Direction: "TD"})
}

func DrawMermaidWithOptions(t Topology, opts MermaidOptions) string {
	var sb strings.Builder

	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}
	fmt.Fprintf(&sb, "flowchart %s\n", direction)

	entry := t.Entry()
	sb.WriteString("    START([\"START\"])\n")
	sb.WriteString("    style START fill:#90EE90\n")

	edges := t.Edges()
	seen := map[State]bool{entry: true}
	var states []State
	hasEnd := false
	for _, e := range edges {
		for _, s := range []State{e.From, e.To} {
			if s == StateDone {
				hasEnd = true
				continue
			}
			if !seen[s] {
				seen[s] = true
				states = append(states, s)
			}
		}
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })

	fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", entry, entry)
	for _, s := range states {
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", s, s)
	}
	if hasEnd {
		sb.WriteString("    END([\"END\"])\n")
		sb.WriteString("    style END fill:#FFB6C1\n")
	}

	fmt.Fprintf(&sb, "    START --> %s\n", entry)
	for _, e := range edges {
		from, to := mermaidID(e.From), mermaidID(e.To)
		if e.Label == "" {
			fmt.Fprintf(&sb, "    %s --> %s\n", from, to)
		} else {
			fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", from, e.Label, to)
		}
	}
	fmt.Fprintf(&sb, "    style %s fill:#87CEEB\n", entry)

	return sb.String()
}

func mermaidID(s State) string {
	if s == StateDone {
		return "END"
	}
	return string(s)
}
