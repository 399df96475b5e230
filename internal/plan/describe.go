package plan

import (
	"fmt"
	"strings"
)

// Describe renders the plan's edges one per line, for debug output.
func (p *Plan) Describe() string {
	var sb strings.Builder
	for _, e := range p.edges {
		fmt.Fprintf(&sb, "%s -> %s (%s", e.From, e.To, e.Kind)
		if len(e.Resources) > 0 {
			parts := make([]string, len(e.Resources))
			for i, r := range e.Resources {
				parts[i] = string(r)
			}
			fmt.Fprintf(&sb, ": %s", strings.Join(parts, ", "))
		}
		sb.WriteString(")\n")
	}
	return sb.String()
}
