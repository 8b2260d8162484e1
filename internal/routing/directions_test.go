package routing

import (
	"testing"

	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func segment(way string, length float64, coords [][]float64, props map[string]interface{}) *geojson.Feature {
	f := geojson.NewLineStringFeature(coords)
	f.SetProperty("way", way)
	f.SetProperty("length", length)
	f.SetProperty("cost", length)
	for k, v := range props {
		f.SetProperty(k, v)
	}
	return f
}

func TestMergeSteps(t *testing.T) {
	t.Run("Consecutive segments of the same way merge", func(t *testing.T) {
		steps := MergeSteps([]*geojson.Feature{
			segment("sidewalk", 50, [][]float64{{0, 0}, {0, 1}},
				map[string]interface{}{"street_name": "University Way", "incline": 0.012}),
			segment("sidewalk", 60, [][]float64{{0, 1}, {0, 2}},
				map[string]interface{}{"street_name": "University Way", "incline": 0.008}),
		})

		require.Len(t, steps, 1)
		assert.Equal(t, 110.0, steps[0].Properties["length"])
		assert.Equal(t, [][]float64{{0, 0}, {0, 1}, {0, 2}}, steps[0].Geometry.LineString)
	})

	t.Run("Way change starts a new step", func(t *testing.T) {
		steps := MergeSteps([]*geojson.Feature{
			segment("sidewalk", 50, [][]float64{{0, 0}, {0, 1}}, nil),
			segment("crossing", 20, [][]float64{{0, 1}, {0, 2}},
				map[string]interface{}{"curbramps": "yes"}),
			segment("sidewalk", 50, [][]float64{{0, 2}, {0, 3}}, nil),
		})
		require.Len(t, steps, 3)
		assert.Equal(t, "crossing", steps[1].Properties["way"])
	})

	t.Run("Tracked attribute change starts a new step", func(t *testing.T) {
		steps := MergeSteps([]*geojson.Feature{
			segment("sidewalk", 50, [][]float64{{0, 0}, {0, 1}},
				map[string]interface{}{"street_name": "University Way"}),
			segment("sidewalk", 50, [][]float64{{0, 1}, {0, 2}},
				map[string]interface{}{"street_name": "42nd St"}),
		})
		assert.Len(t, steps, 2)
	})

	t.Run("Incline differences inside a bucket still merge", func(t *testing.T) {
		steps := MergeSteps([]*geojson.Feature{
			segment("sidewalk", 50, [][]float64{{0, 0}, {0, 1}},
				map[string]interface{}{"incline": 0.012}),
			segment("sidewalk", 50, [][]float64{{0, 1}, {0, 2}},
				map[string]interface{}{"incline": 0.008}),
			segment("sidewalk", 50, [][]float64{{0, 2}, {0, 3}},
				map[string]interface{}{"incline": 0.03}),
		})
		require.Len(t, steps, 2)
		assert.Equal(t, 100.0, steps[0].Properties["length"])
	})

	t.Run("Short segments are dropped", func(t *testing.T) {
		steps := MergeSteps([]*geojson.Feature{
			segment("sidewalk", 50, [][]float64{{0, 0}, {0, 1}}, nil),
			segment("crossing", 2.5, [][]float64{{0, 1}, {0, 1.1}}, nil),
			segment("sidewalk", 50, [][]float64{{0, 1.1}, {0, 2}}, nil),
		})
		// The sub-3m crossing vanishes and the sidewalk continues as one step
		require.Len(t, steps, 1)
		assert.Equal(t, 100.0, steps[0].Properties["length"])
	})

	t.Run("Concatenation preserves the traversed coordinates", func(t *testing.T) {
		features := []*geojson.Feature{
			segment("sidewalk", 50, [][]float64{{0, 0}, {0, 1}, {0, 2}}, nil),
			segment("sidewalk", 50, [][]float64{{0, 2}, {0, 3}}, nil),
			segment("sidewalk", 60, [][]float64{{0, 3}, {1, 3}, {2, 3}}, nil),
		}
		steps := MergeSteps(features)
		require.Len(t, steps, 1)

		var want [][]float64
		for i, f := range features {
			line := f.Geometry.LineString
			if i > 0 {
				line = line[1:]
			}
			want = append(want, line...)
		}
		assert.Equal(t, want, steps[0].Geometry.LineString)
	})

	t.Run("Empty input produces no steps", func(t *testing.T) {
		assert.Empty(t, MergeSteps(nil))
	})

	t.Run("Input features are not mutated", func(t *testing.T) {
		first := segment("sidewalk", 50, [][]float64{{0, 0}, {0, 1}}, nil)
		second := segment("sidewalk", 50, [][]float64{{0, 1}, {0, 2}}, nil)
		MergeSteps([]*geojson.Feature{first, second})
		assert.Equal(t, [][]float64{{0, 0}, {0, 1}}, first.Geometry.LineString)
		assert.Equal(t, 50.0, first.Properties["length"])
	})
}
