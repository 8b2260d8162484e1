package routing

import (
	"context"
	"log"
	"os"
	"sort"
	"strconv"

	geojson "github.com/paulmach/go.geojson"

	"github.com/pedroute/pedroute_core/internal/graph"
	"github.com/pedroute/pedroute_core/internal/models"
	"github.com/pedroute/pedroute_core/internal/spatial"
)

// DefaultCutoff reads WALKSHED_CUTOFF from env or returns the 300 second
// default bounding walkshed searches.
func DefaultCutoff() float64 {
	if val := os.Getenv("WALKSHED_CUTOFF"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil && f > 0 {
			return f
		}
	}
	return 300
}

// Walkshed materialises the set of edges reachable from a point within the
// cost cutoff. Every edge appearing in any reconstructed path is emitted
// once, with its traversal cost attached; the origin's synthetic half-edge
// is included when the match split an edge.
func Walkshed(ctx context.Context, net *graph.Network, index *spatial.Index, lon, lat, cutoff float64, params models.CostParams) *models.WalkshedResponse {
	if cutoff <= 0 {
		cutoff = DefaultCutoff()
	}
	costFn := Cost(params)

	entries := ClosestValidEntries(net, index, lon, lat, getSearchRadius(), costFn, false)
	if len(entries) == 0 {
		return &models.WalkshedResponse{Code: models.CodeNoValidNearby}
	}

	sources := make([]int32, 0, len(entries))
	seenSource := make(map[int32]bool, len(entries))
	for _, entry := range entries {
		if !seenSource[entry.Node] {
			seenSource[entry.Node] = true
			sources = append(sources, entry.Node)
		}
	}

	result, err := ShortestPaths(ctx, net, sources, costFn, NoTarget, cutoff)
	if err != nil {
		log.Printf("Walkshed search failed: %v", err)
		return &models.WalkshedResponse{Code: models.CodeInternalError}
	}

	fc := geojson.NewFeatureCollection()
	for _, entry := range entries {
		if entry.InitialEdge != nil && entry.InitialCost <= cutoff {
			fc.AddFeature(edgeFeature(entry.InitialEdge, entry.InitialCost, false))
		}
	}

	// Walk destinations in id order so repeated queries emit edges in the
	// same order.
	destinations := make([]int32, 0, len(result.Paths))
	for node := range result.Paths {
		destinations = append(destinations, node)
	}
	sort.Slice(destinations, func(i, j int) bool { return destinations[i] < destinations[j] })

	seen := make(map[[2]int32]bool)
	for _, node := range destinations {
		path := result.Paths[node]
		for i := 0; i+1 < len(path); i++ {
			u, v := path[i], path[i+1]
			key := [2]int32{u, v}
			if u > v {
				key = [2]int32{v, u}
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			e, ok := net.Edge(u, v)
			if !ok {
				continue
			}
			fc.AddFeature(edgeFeature(e, costFn(u, v, e), u != e.U))
		}
	}

	if len(fc.Features) == 0 {
		return &models.WalkshedResponse{Code: models.CodeNoPath}
	}
	return &models.WalkshedResponse{Code: models.CodeOk, Walkshed: fc}
}
