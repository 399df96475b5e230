package plan

import (
	"context"

	"github.com/specialistvlad/tickgrid/internal/ctxlog"
)

// linkExplicit adds an edge predecessor -> stage for every After entry.
// Predecessor names were validated beforehand.
func linkExplicit(ctx context.Context, p *Plan) {
	logger := ctxlog.FromContext(ctx)
	for to, d := range p.stages {
		for _, name := range d.After {
			from := p.index[name]
			if p.addEdge(from, to, Explicit, nil) {
				logger.Debug("Linking explicit dependency.", "from", name, "to", d.Name)
			}
		}
	}
}
