package routing

import (
	"math"
	"time"

	"github.com/pedroute/pedroute_core/internal/hours"
	"github.com/pedroute/pedroute_core/internal/models"
)

// CostFn computes the traversal time in seconds of an edge entered at node
// u and left at node v. +Inf marks a hard accessibility barrier; the
// function never returns a negative value.
type CostFn func(u, v int32, e *models.Edge) float64

const (
	// idealGrade is the easiest walking grade, slightly downhill.
	idealGrade = -0.0087

	// crossingDelay models signal and traffic wait at street crossings.
	crossingDelay = 30.0

	surfaceStairs = "stairs"
)

// Cost builds the pure per-edge cost function for one request. The closure
// captures only the immutable params; it holds no shared state and is safe
// to call from the search at any point.
func Cost(params models.CostParams) CostFn {
	// Decay rates chosen so that walking speed falls to base/5 at the hard
	// grade limits, a soft cutoff just inside them.
	kUp := math.Log(5) / math.Abs(params.InclineMax-idealGrade)
	kDown := math.Log(5) / math.Abs(params.InclineMin-idealGrade)

	return func(u, v int32, e *models.Edge) float64 {
		// Effective grade along the traversal direction. Crossings and
		// elevator paths are flat.
		g := 0.0
		if e.Way == models.WaySidewalk {
			g = e.Incline
			if u != e.U {
				g = -g
			}
		}

		if g < params.InclineMin || g > params.InclineMax {
			return math.Inf(1)
		}
		if params.AvoidCurbs && e.Way == models.WayCrossing && e.CurbRamps == models.CurbRampsNo {
			return math.Inf(1)
		}
		if params.AvoidStairs && e.Surface == surfaceStairs {
			return math.Inf(1)
		}
		if e.OpeningHours != "" && params.Timestamp != nil {
			if expr, err := hours.Parse(e.OpeningHours); err == nil {
				at := time.Unix(*params.Timestamp, 0).UTC()
				if !expr.OpenAt(at) {
					return math.Inf(1)
				}
			}
		}

		k := kDown
		if g > idealGrade {
			k = kUp
		}
		speed := params.BaseSpeed * math.Exp(-k*math.Abs(g-idealGrade))

		t := e.Length / speed
		if e.Way == models.WayCrossing {
			t += crossingDelay
		}
		return t
	}
}
