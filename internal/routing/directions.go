package routing

import (
	"math"

	geojson "github.com/paulmach/go.geojson"
)

// Segments shorter than this are navigation noise and are dropped before
// merging.
const minStepLength = 3.0

// Attributes that force a new step when they change between segments.
var trackedStepProperties = []string{
	"street_name",
	"side",
	"incline",
	"curbramps",
	"marked",
	"indoor",
	"surface",
	"via",
}

// MergeSteps folds a route's segment features into human-readable steps: a
// sidewalk split by a mid-block joint stays one step as long as its way
// category and tracked attributes do not change. Merged steps concatenate
// geometries (dropping the duplicate joint vertex) and sum lengths.
func MergeSteps(features []*geojson.Feature) []*geojson.Feature {
	steps := []*geojson.Feature{}
	for _, f := range features {
		if length, ok := f.Properties["length"].(float64); ok && length < minStepLength {
			continue
		}

		props := stepProperties(f)
		var last *geojson.Feature
		if len(steps) > 0 {
			last = steps[len(steps)-1]
		}

		if last != nil && !stepChanged(last.Properties, props) {
			mergeInto(last, f)
			continue
		}

		coords := make([][]float64, len(f.Geometry.LineString))
		copy(coords, f.Geometry.LineString)
		step := geojson.NewLineStringFeature(coords)
		step.Properties = props
		steps = append(steps, step)
	}
	return steps
}

// stepProperties extracts the way category, the tracked attributes and the
// length from a segment, bucketing incline so that float noise does not
// split steps.
func stepProperties(f *geojson.Feature) map[string]interface{} {
	props := map[string]interface{}{
		"way": f.Properties["way"],
	}
	if length, ok := f.Properties["length"].(float64); ok {
		props["length"] = length
	}
	for _, key := range trackedStepProperties {
		v, ok := f.Properties[key]
		if !ok {
			continue
		}
		if key == "incline" {
			if incline, ok := v.(float64); ok {
				v = math.Round(incline*100) / 100
			}
		}
		props[key] = v
	}
	return props
}

func stepChanged(prev, next map[string]interface{}) bool {
	if prev["way"] != next["way"] {
		return true
	}
	for _, key := range trackedStepProperties {
		pv, pok := prev[key]
		nv, nok := next[key]
		if pok != nok || pv != nv {
			return true
		}
	}
	return false
}

func mergeInto(step *geojson.Feature, f *geojson.Feature) {
	if prev, ok := step.Properties["length"].(float64); ok {
		if add, ok := f.Properties["length"].(float64); ok {
			step.Properties["length"] = prev + add
		}
	}
	line := f.Geometry.LineString
	if len(line) > 1 {
		step.Geometry.LineString = append(step.Geometry.LineString, line[1:]...)
	}
}
