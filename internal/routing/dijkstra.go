package routing

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/pedroute/pedroute_core/internal/graph"
)

// ErrNoPath is returned when a requested target is unreachable.
var ErrNoPath = errors.New("no path to target")

// NoTarget runs the search exhaustively (or up to the cutoff).
const NoTarget int32 = -1

// getMaxExploredNodes reads MAX_EXPLORED_NODES from env or returns default
func getMaxExploredNodes() int {
	if val := os.Getenv("MAX_EXPLORED_NODES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return 500000
}

// Result holds finalised distances and reconstructed paths keyed by node.
type Result struct {
	Dist  map[int32]float64
	Paths map[int32][]int32
}

// ShortestPaths runs a multi-source Dijkstra over the network. All sources
// start at distance 0; entry costs for mid-edge matches are added by the
// assembler, not here, so both halves of a split origin are explored
// simultaneously.
//
// A target of NoTarget searches until the queue drains. A cutoff > 0 stops
// relaxation past that total cost. Edges whose cost is +Inf are skipped. A
// strictly negative improvement to a finalised node means the cost model
// produced a negative weight and is reported as an error.
func ShortestPaths(ctx context.Context, net *graph.Network, sources []int32, costFn CostFn, target int32, cutoff float64) (*Result, error) {
	dist := make(map[int32]float64)
	seen := make(map[int32]float64)
	paths := make(map[int32][]int32, len(sources))

	// Heap entries carry an insertion counter so ties are popped in insert
	// order and nodes are never compared.
	counter := 0
	fringe := &priorityQueue{}
	heap.Init(fringe)
	for _, source := range sources {
		seen[source] = 0
		paths[source] = []int32{source}
		heap.Push(fringe, queueItem{dist: 0, count: counter, node: source})
		counter++
	}

	exploredCount := 0
	maxNodes := getMaxExploredNodes()

	for fringe.Len() > 0 {
		if exploredCount%1000 == 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("search cancelled after exploring %d nodes: %w", exploredCount, ctx.Err())
			default:
			}
		}
		if exploredCount > maxNodes {
			return nil, fmt.Errorf("explored too many nodes (%d), giving up", exploredCount)
		}

		item := heap.Pop(fringe).(queueItem)
		v := item.node
		if _, done := dist[v]; done {
			continue // stale duplicate entry
		}
		dist[v] = item.dist
		exploredCount++
		if v == target {
			break
		}

		for _, arc := range net.Neighbors(v) {
			e := net.EdgeAt(arc.Edge)
			cost := costFn(v, arc.To, e)
			if math.IsInf(cost, 1) {
				continue
			}
			newDist := dist[v] + cost
			if cutoff > 0 && newDist > cutoff {
				continue
			}
			u := arc.To
			if final, done := dist[u]; done {
				if newDist < final {
					return nil, fmt.Errorf("contradictory paths found: negative weights?")
				}
				continue
			}
			if best, ok := seen[u]; !ok || newDist < best {
				seen[u] = newDist
				heap.Push(fringe, queueItem{dist: newDist, count: counter, node: u})
				counter++
				next := make([]int32, len(paths[v])+1)
				copy(next, paths[v])
				next[len(paths[v])] = u
				paths[u] = next
			}
		}
	}

	if target != NoTarget {
		if _, ok := dist[target]; !ok {
			return nil, ErrNoPath
		}
	}
	return &Result{Dist: dist, Paths: paths}, nil
}

// queueItem is one heap entry: tentative distance, insertion counter, node.
type queueItem struct {
	dist  float64
	count int
	node  int32
}

// priorityQueue implements heap.Interface for the search fringe
type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].count < pq[j].count
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x interface{}) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}
