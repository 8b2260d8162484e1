package routing

import (
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/pedroute/pedroute_core/internal/geo"
	"github.com/pedroute/pedroute_core/internal/graph"
	"github.com/pedroute/pedroute_core/internal/models"
	"github.com/pedroute/pedroute_core/internal/spatial"
)

const (
	// VirtualNode is the off-graph endpoint of a synthetic half-edge. It
	// never enters the graph or the search.
	VirtualNode int32 = -2

	// Snaps closer than this to a geometry end collapse onto the endpoint
	// node instead of splitting the edge.
	endpointSnapTolerance = 0.1
)

// getSearchRadius reads SEARCH_RADIUS_M from env or returns default
func getSearchRadius() float64 {
	if val := os.Getenv("SEARCH_RADIUS_M"); val != "" {
		if r, err := strconv.ParseFloat(val, 64); err == nil && r > 0 {
			return r
		}
	}
	return 100
}

type candidate struct {
	edgeID  int32
	utmLine [][2]float64
	utmLen  float64
	snap    [2]float64
	dist    float64
	arc     float64
}

// ClosestValidEntries map-matches a query point onto the network, returning
// the viable entry nodes with their initial cost and, for mid-edge matches,
// a synthetic half-edge oriented away from the point for origins
// (dest=false) or toward it for destinations (dest=true).
//
// Candidates come from the spatial index within a metric bbox, are refined
// with exact perpendicular distances in the local UTM zone, and are tried
// in ascending distance order. A candidate whose snap segment crosses a
// closer candidate is rejected, which prevents matching through a parallel
// way. An empty result means nothing within the radius is reachable under
// the cost function.
func ClosestValidEntries(net *graph.Network, index *spatial.Index, lon, lat, radius float64, costFn CostFn, dest bool) []models.Entry {
	point, err := geo.ToUTM(lon, lat)
	if err != nil {
		return nil
	}

	ids := index.SearchBBox(geo.BBoxFromCenter(lon, lat, radius))
	cands := make([]candidate, 0, len(ids))
	for _, id := range ids {
		e := net.EdgeAt(id)
		utmLine, err := geo.LineToUTM(e.Geometry)
		if err != nil {
			continue
		}
		snap, dist, arc := geo.NearestPointOnLine(utmLine, point)
		if dist > radius {
			continue
		}
		cands = append(cands, candidate{
			edgeID:  id,
			utmLine: utmLine,
			utmLen:  geo.PlanarLength(utmLine),
			snap:    snap,
			dist:    dist,
			arc:     arc,
		})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].edgeID < cands[j].edgeID
	})

	for i, c := range cands {
		blocked := false
		for j := 0; j < i; j++ {
			if geo.SegmentIntersectsLine(point, c.snap, cands[j].utmLine) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}

		e := net.EdgeAt(c.edgeID)

		// Endpoint case: the snap collapses onto a graph node.
		if c.arc < endpointSnapTolerance || c.utmLen-c.arc < endpointSnapTolerance {
			node := e.U
			if c.utmLen-c.arc < endpointSnapTolerance {
				node = e.V
			}
			if hasTraversableEdge(net, node, costFn, dest) {
				return []models.Entry{{Node: node, EdgeU: -1, EdgeV: -1}}
			}
			continue
		}

		// Mid-edge case: split at the snap offset and synthesise two
		// oriented half-edges.
		offset := 0.0
		if c.utmLen > 0 {
			offset = c.arc / c.utmLen * e.Length
		}
		first, second := geo.Cut(e.Geometry, offset)
		if second == nil {
			continue
		}

		var entries []models.Entry
		for _, half := range []struct {
			node     int32
			geometry [][]float64
			uSide    bool // the half between U and the snap point
		}{
			{node: e.U, geometry: first, uSide: true},
			{node: e.V, geometry: second, uSide: false},
		} {
			synth := syntheticHalfEdge(e, half.geometry, half.uSide, dest)
			cost := costFn(synth.U, synth.V, synth)
			if math.IsInf(cost, 1) {
				continue
			}
			entries = append(entries, models.Entry{
				Node:        half.node,
				InitialCost: cost,
				InitialEdge: synth,
				EdgeU:       e.U,
				EdgeV:       e.V,
				Offset:      offset,
			})
		}
		if len(entries) > 0 {
			return entries
		}
	}

	return nil
}

// hasTraversableEdge reports whether any edge incident to node has finite
// cost, entering the node for destinations and leaving it for origins.
func hasTraversableEdge(net *graph.Network, node int32, costFn CostFn, dest bool) bool {
	for _, arc := range net.Neighbors(node) {
		e := net.EdgeAt(arc.Edge)
		var cost float64
		if dest {
			cost = costFn(arc.To, node, e)
		} else {
			cost = costFn(node, arc.To, e)
		}
		if !math.IsInf(cost, 1) {
			return true
		}
	}
	return false
}

// syntheticHalfEdge builds the request-local half-edge for one side of a
// mid-edge split. The half geometry arrives in stored order (U-half runs
// U->snap, V-half runs snap->V). For origins the edge points from the snap
// point out to the graph node; for destinations it points inward. A half
// whose traversal runs against stored order gets its geometry flipped and
// incline negated, so evaluating cost from the synthetic U endpoint always
// resolves the right effective grade.
func syntheticHalfEdge(e *models.Edge, half [][]float64, uSide bool, dest bool) *models.Edge {
	synth := *e

	node := e.V
	if uSide {
		node = e.U
	}

	// Origin U-half (snap->U) and destination V-half (V->snap) run against
	// stored geometry order.
	alongStorage := !uSide
	if dest {
		alongStorage = uSide
	}

	geometry := half
	if !alongStorage {
		geometry = reverseCoords(half)
		synth.Incline = -e.Incline
	}
	synth.Geometry = geometry
	synth.Length = geo.Haversine(geometry)

	if dest {
		synth.U = node
		synth.V = VirtualNode
	} else {
		synth.U = VirtualNode
		synth.V = node
	}
	return &synth
}

func reverseCoords(coords [][]float64) [][]float64 {
	out := make([][]float64, len(coords))
	for i, c := range coords {
		out[len(coords)-1-i] = c
	}
	return out
}
