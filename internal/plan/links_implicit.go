package plan

import (
	"context"

	"github.com/specialistvlad/tickgrid/internal/ctxlog"
)

// linkImplicit orders every conflicting pair that is not already ordered.
//
// Pairs are visited by ascending later index j, then ascending earlier index
// i, which makes the result independent of map iteration or timing. For each
// conflicting pair with no path in either direction, the earlier-declared
// stage i becomes a predecessor of j. A pair already connected by a path keeps
// that order, even when it runs against declaration order.
func linkImplicit(ctx context.Context, p *Plan) int {
	logger := ctxlog.FromContext(ctx)
	added := 0
	for j := 1; j < len(p.stages); j++ {
		for i := 0; i < j; i++ {
			shared := p.table.Shared(i, j)
			if len(shared) == 0 {
				continue
			}
			if reachable(p.succ, i, j) || reachable(p.succ, j, i) {
				continue
			}
			if p.addEdge(i, j, Implicit, shared) {
				added++
				logger.Debug("Linking implicit dependency.",
					"from", p.stages[i].Name,
					"to", p.stages[j].Name,
					"resources", shared,
				)
			}
		}
	}
	return added
}
