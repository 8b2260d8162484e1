package routing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedroute/pedroute_core/internal/models"
)

func TestShortestPaths(t *testing.T) {
	net, _, ids := buildFixture(t)
	costFn := Cost(models.DefaultCostParams())
	ctx := context.Background()

	t.Run("Finds the target", func(t *testing.T) {
		result, err := ShortestPaths(ctx, net, []int32{ids["A"]}, costFn, ids["C"], 0)
		require.NoError(t, err)
		assert.Equal(t, []int32{ids["A"], ids["B"], ids["C"]}, result.Paths[ids["C"]])
		assert.Greater(t, result.Dist[ids["C"]], 0.0)
	})

	t.Run("Distances accumulate along the path", func(t *testing.T) {
		result, err := ShortestPaths(ctx, net, []int32{ids["A"]}, costFn, ids["C"], 0)
		require.NoError(t, err)

		ab, _ := net.Edge(ids["A"], ids["B"])
		bc, _ := net.Edge(ids["B"], ids["C"])
		want := costFn(ids["A"], ids["B"], ab) + costFn(ids["B"], ids["C"], bc)
		assert.InDelta(t, want, result.Dist[ids["C"]], 1e-9)
	})

	t.Run("Exhaustive search reaches every connected node", func(t *testing.T) {
		result, err := ShortestPaths(ctx, net, []int32{ids["A"]}, costFn, NoTarget, 0)
		require.NoError(t, err)
		for _, name := range []string{"A", "B", "C", "D", "E", "F"} {
			assert.Contains(t, result.Dist, ids[name])
		}
	})

	t.Run("Deterministic across runs", func(t *testing.T) {
		a, err := ShortestPaths(ctx, net, []int32{ids["A"], ids["B"]}, costFn, NoTarget, 0)
		require.NoError(t, err)
		b, err := ShortestPaths(ctx, net, []int32{ids["A"], ids["B"]}, costFn, NoTarget, 0)
		require.NoError(t, err)
		assert.Equal(t, a.Dist, b.Dist)
		assert.Equal(t, a.Paths, b.Paths)
	})

	t.Run("Cutoff bounds the reachable set", func(t *testing.T) {
		full, err := ShortestPaths(ctx, net, []int32{ids["A"]}, costFn, NoTarget, 0)
		require.NoError(t, err)
		cutoff := full.Dist[ids["B"]] + 1
		bounded, err := ShortestPaths(ctx, net, []int32{ids["A"]}, costFn, NoTarget, cutoff)
		require.NoError(t, err)

		for node, d := range bounded.Dist {
			assert.LessOrEqual(t, d, cutoff, "node %d beyond cutoff", node)
		}
		assert.Contains(t, bounded.Dist, ids["B"])
		assert.NotContains(t, bounded.Dist, ids["E"])
	})

	t.Run("Infinite edges are never traversed", func(t *testing.T) {
		avoiding := models.DefaultCostParams()
		avoiding.AvoidCurbs = true
		result, err := ShortestPaths(ctx, net, []int32{ids["A"]}, Cost(avoiding), NoTarget, 0)
		require.NoError(t, err)
		// D and F sit behind the ramp-less crossing
		assert.NotContains(t, result.Dist, ids["D"])
		assert.NotContains(t, result.Dist, ids["F"])
	})

	t.Run("Unreachable target is ErrNoPath", func(t *testing.T) {
		avoiding := models.DefaultCostParams()
		avoiding.AvoidCurbs = true
		_, err := ShortestPaths(ctx, net, []int32{ids["A"]}, Cost(avoiding), ids["F"], 0)
		assert.ErrorIs(t, err, ErrNoPath)
	})

	t.Run("Multi-source starts every source at zero", func(t *testing.T) {
		result, err := ShortestPaths(ctx, net, []int32{ids["A"], ids["C"]}, costFn, NoTarget, 0)
		require.NoError(t, err)
		assert.Equal(t, 0.0, result.Dist[ids["A"]])
		assert.Equal(t, 0.0, result.Dist[ids["C"]])
		// B is reached from whichever source is cheaper
		ab, _ := net.Edge(ids["A"], ids["B"])
		cb, _ := net.Edge(ids["C"], ids["B"])
		want := math.Min(costFn(ids["A"], ids["B"], ab), costFn(ids["C"], ids["B"], cb))
		assert.InDelta(t, want, result.Dist[ids["B"]], 1e-9)
	})

	t.Run("Negative improvement is an integrity error", func(t *testing.T) {
		// A direction-dependent cost that undercuts a finalised node can
		// only come from a broken cost model; the search must refuse it.
		bad := func(u, v int32, e *models.Edge) float64 {
			if u == ids["B"] && v == ids["A"] {
				return -500
			}
			if u == ids["A"] && v == ids["B"] {
				return 1
			}
			return 2
		}
		_, err := ShortestPaths(ctx, net, []int32{ids["A"]}, bad, NoTarget, 0)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoPath)
	})

	t.Run("Cancelled context aborts the search", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := ShortestPaths(cancelled, net, []int32{ids["A"]}, costFn, NoTarget, 0)
		assert.Error(t, err)
	})
}
