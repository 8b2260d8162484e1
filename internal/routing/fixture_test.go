package routing

import (
	"strconv"
	"testing"

	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/require"

	"github.com/pedroute/pedroute_core/internal/graph"
	"github.com/pedroute/pedroute_core/internal/spatial"
)

// The test network is a small University District block grid:
//
//	H (-122.3130, 47.6580) -- flat sidewalk -- E (-122.3120, 47.6580)
//	                                           |  steep sidewalk (5%)
//	C (-122.3120, 47.6570)
//	|  sidewalk
//	B (-122.3120, 47.6560) --crossing-- D (-122.3110, 47.6560) --elevator-- F (-122.3100, 47.6560) -- G (-122.3090, 47.6560)
//	|  sidewalk                              (no curb ramps)        (Mo-Fr 06:00-22:00)
//	A (-122.3120, 47.6550)
var fixtureCoords = map[string][]float64{
	"A": {-122.3120, 47.6550},
	"B": {-122.3120, 47.6560},
	"C": {-122.3120, 47.6570},
	"D": {-122.3110, 47.6560},
	"E": {-122.3120, 47.6580},
	"F": {-122.3100, 47.6560},
	"G": {-122.3090, 47.6560},
	"H": {-122.3130, 47.6580},
}

func feature(coords [][]float64, props map[string]interface{}) *geojson.Feature {
	f := geojson.NewLineStringFeature(coords)
	for k, v := range props {
		f.SetProperty(k, v)
	}
	return f
}

func buildFixture(t *testing.T) (*graph.Network, *spatial.Index, map[string]int32) {
	t.Helper()

	sidewalks := geojson.NewFeatureCollection()
	sidewalks.AddFeature(feature([][]float64{fixtureCoords["A"], fixtureCoords["B"]},
		map[string]interface{}{"incline": 0.012, "street_name": "University Way", "side": "east"}))
	sidewalks.AddFeature(feature([][]float64{fixtureCoords["B"], fixtureCoords["C"]},
		map[string]interface{}{"incline": 0.008, "street_name": "University Way", "side": "east"}))
	sidewalks.AddFeature(feature([][]float64{fixtureCoords["C"], fixtureCoords["E"]},
		map[string]interface{}{"incline": 0.05, "street_name": "University Way", "side": "east"}))
	sidewalks.AddFeature(feature([][]float64{fixtureCoords["F"], fixtureCoords["G"]},
		map[string]interface{}{"incline": 0.0, "street_name": "NE 45th St", "side": "north"}))
	sidewalks.AddFeature(feature([][]float64{fixtureCoords["E"], fixtureCoords["H"]},
		map[string]interface{}{"incline": 0.0, "street_name": "NE 47th St", "side": "north"}))

	crossings := geojson.NewFeatureCollection()
	crossings.AddFeature(feature([][]float64{fixtureCoords["B"], fixtureCoords["D"]},
		map[string]interface{}{"curbramps": false, "marked": true}))

	elevators := geojson.NewFeatureCollection()
	elevators.AddFeature(feature([][]float64{fixtureCoords["D"], fixtureCoords["F"]},
		map[string]interface{}{"opening_hours": "Mo-Fr 06:00-22:00", "indoor": "yes"}))

	net, index := graph.BuildFromLayers(&graph.Layers{
		Sidewalks:     sidewalks,
		Crossings:     crossings,
		ElevatorPaths: elevators,
	})

	ids := make(map[string]int32, len(fixtureCoords))
	for name, c := range fixtureCoords {
		key := strconv.FormatFloat(c[0], 'f', 7, 64) + "," + strconv.FormatFloat(c[1], 'f', 7, 64)
		id, ok := net.NodeByKey(key)
		require.True(t, ok, "fixture node %s not in network", name)
		ids[name] = id
	}
	return net, index, ids
}
