package delay

import (
	"context"

	"golang.org/x/sync/errgroup"

	"deliverycore/internal/graph"
	"deliverycore/internal/snapshot"
)

// Propagation is the memoised result of a critical-path propagation pass
// over one graph: each work item's own-delay and its propagated
// (critical-path) delay.
type Propagation struct {
	Own         map[string]OwnDelay
	Propagated  map[string]float64
}

// Propagate computes own-delay for every work item in g (in parallel, via
// errgroup, since the six-signal evaluation for one item never depends on
// another item's own-delay) and then the max-plus propagated delay in
// strict topological order (sequential: propagation reads memoised
// upstream results and must not race).
func Propagate(ctx context.Context, g *graph.Graph, delayCtx Context) (*Propagation, error) {
	order := g.TopoOrder()
	items := make([]snapshot.WorkItem, len(order))
	for i, id := range order {
		w, ok := delayCtx.Snapshot.WorkItem(id)
		if !ok {
			return nil, snapshot.InternalInvariantf("delay.Propagate", "graph node %q missing from snapshot", id)
		}
		items[i] = w
	}

	own := make([]OwnDelay, len(items))
	group, _ := errgroup.WithContext(ctx)
	for i := range items {
		i := i
		group.Go(func() error {
			own[i] = ComputeOwnDelay(items[i], delayCtx)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	ownByID := make(map[string]OwnDelay, len(items))
	for i, w := range items {
		ownByID[w.ID] = own[i]
	}

	propagated := make(map[string]float64, len(items))
	for _, id := range order {
		maxUpstream := 0.0
		for _, up := range g.Upstream(id) {
			if v := propagated[up]; v > maxUpstream {
				maxUpstream = v
			}
		}
		propagated[id] = ownByID[id].Days + maxUpstream
	}

	return &Propagation{Own: ownByID, Propagated: propagated}, nil
}
