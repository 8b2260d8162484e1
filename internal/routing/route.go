package routing

import (
	"context"
	"log"
	"math"

	geojson "github.com/paulmach/go.geojson"

	"github.com/pedroute/pedroute_core/internal/geo"
	"github.com/pedroute/pedroute_core/internal/graph"
	"github.com/pedroute/pedroute_core/internal/models"
	"github.com/pedroute/pedroute_core/internal/spatial"
)

// routeCandidate is one assembled origin-destination path awaiting
// lowest-cost selection.
type routeCandidate struct {
	features  []*geojson.Feature
	totalCost float64
}

// FindRoute computes the lowest-cost accessible route between two lon/lat
// points and assembles the response envelope. It is the single place where
// matcher and search outcomes translate into response codes.
func FindRoute(ctx context.Context, net *graph.Network, index *spatial.Index, originLon, originLat, destLon, destLat float64, params models.CostParams) *models.RouteResponse {
	// A query routed back onto itself resolves to NoRoute rather than a
	// zero-length route.
	if originLon == destLon && originLat == destLat {
		return errorResponse(models.CodeNoRoute)
	}

	costFn := Cost(params)
	radius := getSearchRadius()

	originEntries := ClosestValidEntries(net, index, originLon, originLat, radius, costFn, false)
	destEntries := ClosestValidEntries(net, index, destLon, destLat, radius, costFn, true)

	switch {
	case len(originEntries) == 0 && len(destEntries) == 0:
		return errorResponse(models.CodeBothFarAway)
	case len(originEntries) == 0:
		return errorResponse(models.CodeOriginFarAway)
	case len(destEntries) == 0:
		return errorResponse(models.CodeDestinationFarAway)
	}

	// Keep the cheapest entry per origin node; all of them seed the search
	// at distance 0 and their initial cost is added back during assembly.
	originByNode := make(map[int32]models.Entry, len(originEntries))
	sources := make([]int32, 0, len(originEntries))
	for _, entry := range originEntries {
		if prev, ok := originByNode[entry.Node]; !ok || entry.InitialCost < prev.InitialCost {
			if !ok {
				sources = append(sources, entry.Node)
			}
			originByNode[entry.Node] = entry
		}
	}

	var candidates []routeCandidate
	seenDest := make(map[int32]bool, len(destEntries))
	for _, destEntry := range destEntries {
		if seenDest[destEntry.Node] {
			continue
		}
		seenDest[destEntry.Node] = true

		result, err := ShortestPaths(ctx, net, sources, costFn, destEntry.Node, 0)
		if err == ErrNoPath {
			continue
		}
		if err != nil {
			log.Printf("Route search failed: %v", err)
			return errorResponse(models.CodeInternalError)
		}

		path := result.Paths[destEntry.Node]
		origin := originByNode[path[0]]

		features := make([]*geojson.Feature, 0, len(path)+1)
		if origin.InitialEdge != nil {
			features = append(features, edgeFeature(origin.InitialEdge, origin.InitialCost, false))
		}
		for i := 0; i+1 < len(path); i++ {
			u, v := path[i], path[i+1]
			e, ok := net.Edge(u, v)
			if !ok {
				log.Printf("Route search produced unknown edge %d-%d", u, v)
				return errorResponse(models.CodeInternalError)
			}
			features = append(features, edgeFeature(e, costFn(u, v, e), u != e.U))
		}
		if destEntry.InitialEdge != nil {
			features = append(features, edgeFeature(destEntry.InitialEdge, destEntry.InitialCost, false))
		}
		if len(features) == 0 {
			continue
		}

		candidates = append(candidates, routeCandidate{
			features:  features,
			totalCost: origin.InitialCost + result.Dist[destEntry.Node] + destEntry.InitialCost,
		})
	}

	// Same-edge special case: both points snapped mid-edge onto the same
	// original edge; the direct sub-segment between the snap points can
	// beat any graph-routed alternative.
	if direct := sameEdgeCandidate(net, originEntries, destEntries, costFn); direct != nil {
		candidates = append(candidates, *direct)
	}

	best := -1
	for i, c := range candidates {
		if math.IsInf(c.totalCost, 1) {
			continue
		}
		if best < 0 || c.totalCost < candidates[best].totalCost {
			best = i
		}
	}
	if best < 0 {
		return errorResponse(models.CodeNoRoute)
	}

	return assembleResponse(candidates[best], originLon, originLat, destLon, destLat)
}

// sameEdgeCandidate builds the direct sub-segment candidate when an origin
// entry and a destination entry split the same stored edge. Reversal is
// cost-symmetric: the traversal direction only flips the effective incline
// sign through the shared cost function.
func sameEdgeCandidate(net *graph.Network, originEntries, destEntries []models.Entry, costFn CostFn) *routeCandidate {
	for _, o := range originEntries {
		if o.InitialEdge == nil {
			continue
		}
		for _, d := range destEntries {
			if d.InitialEdge == nil || o.EdgeU != d.EdgeU || o.EdgeV != d.EdgeV {
				continue
			}
			e, ok := net.Edge(o.EdgeU, o.EdgeV)
			if !ok {
				continue
			}
			lo, hi := o.Offset, d.Offset
			if math.Abs(hi-lo) < 1e-6 {
				// Coincident snap points resolve to NoRoute, not a
				// zero-length route.
				continue
			}

			reversed := lo > hi
			if reversed {
				lo, hi = hi, lo
			}
			_, tail := geo.Cut(e.Geometry, lo)
			if tail == nil {
				tail = e.Geometry
			}
			sub, _ := geo.Cut(tail, hi-lo)

			synth := *e
			if reversed {
				synth.Geometry = reverseCoords(sub)
				synth.Incline = -e.Incline
			} else {
				synth.Geometry = sub
			}
			synth.Length = geo.Haversine(synth.Geometry)
			synth.U = VirtualNode
			synth.V = VirtualNode

			cost := costFn(synth.U, synth.V, &synth)
			if math.IsInf(cost, 1) {
				continue
			}
			return &routeCandidate{
				features:  []*geojson.Feature{edgeFeature(&synth, cost, false)},
				totalCost: cost,
			}
		}
	}
	return nil
}

// edgeFeature converts a traversed edge into a GeoJSON feature with its
// cost attached. When the traversal runs against stored geometry order the
// emitted geometry is reversed and the incline sign flipped.
func edgeFeature(e *models.Edge, cost float64, reverse bool) *geojson.Feature {
	coords := make([][]float64, len(e.Geometry))
	copy(coords, e.Geometry)
	incline := e.Incline
	if reverse {
		coords = reverseCoords(coords)
		incline = -incline
	}

	f := geojson.NewLineStringFeature(coords)
	f.SetProperty("way", string(e.Way))
	f.SetProperty("length", e.Length)
	f.SetProperty("cost", cost)
	if e.Way == models.WaySidewalk {
		f.SetProperty("incline", incline)
	}
	if e.Way == models.WayCrossing {
		f.SetProperty("curbramps", string(e.CurbRamps))
		if e.Marked != nil {
			f.SetProperty("marked", *e.Marked)
		}
	}
	if e.OpeningHours != "" {
		f.SetProperty("opening_hours", e.OpeningHours)
	}
	if e.StreetName != "" {
		f.SetProperty("street_name", e.StreetName)
	}
	if e.Side != "" {
		f.SetProperty("side", e.Side)
	}
	if e.Surface != "" {
		f.SetProperty("surface", e.Surface)
	}
	if e.Indoor != "" {
		f.SetProperty("indoor", e.Indoor)
	}
	if e.Via != "" {
		f.SetProperty("via", e.Via)
	}
	for k, v := range e.Extra {
		f.SetProperty(k, v)
	}
	return f
}

func assembleResponse(best routeCandidate, originLon, originLat, destLon, destLat float64) *models.RouteResponse {
	segments := geojson.NewFeatureCollection()
	var coords [][]float64
	distance := 0.0
	for _, f := range best.features {
		segments.AddFeature(f)
		line := f.Geometry.LineString
		if len(coords) > 0 {
			// The first vertex repeats the previous segment's last one
			line = line[1:]
		}
		coords = append(coords, line...)
		if length, ok := f.Properties["length"].(float64); ok {
			distance += length
		}
	}

	route := models.Route{
		Geometry:  geojson.NewLineStringGeometry(coords),
		Segments:  segments,
		Legs:      [][]*geojson.Feature{MergeSteps(best.features)},
		Duration:  int(math.Round(best.totalCost)),
		Distance:  distance,
		TotalCost: best.totalCost,
		Summary:   "",
	}

	originFeature := geojson.NewPointFeature([]float64{originLon, originLat})
	destFeature := geojson.NewPointFeature([]float64{destLon, destLat})

	return &models.RouteResponse{
		Code:        models.CodeOk,
		Origin:      originFeature,
		Destination: destFeature,
		Waypoints:   []*geojson.Feature{originFeature, destFeature},
		Routes:      []models.Route{route},
	}
}

func errorResponse(code string) *models.RouteResponse {
	return &models.RouteResponse{
		Code:      code,
		Waypoints: []*geojson.Feature{},
		Routes:    []models.Route{},
	}
}
