// Package spatial provides the static R-tree over edge bounding boxes used
// by the map-matcher. The index is built once at startup and never mutated;
// queries return a bbox-level superset of the true geometric hits, which
// callers refine with exact distances in a projected metric space.
package spatial

import (
	"github.com/tidwall/rtree"

	"github.com/pedroute/pedroute_core/internal/models"
)

// Index is a static R-tree keyed by edge index in the network edge table.
type Index struct {
	tree rtree.RTree
	size int
}

// NewIndex builds the index from edge geometry bounding boxes.
func NewIndex(edges []models.Edge) *Index {
	ix := &Index{}
	for i := range edges {
		min, max := geometryBounds(edges[i].Geometry)
		ix.tree.Insert(min, max, int32(i))
		ix.size++
	}
	return ix
}

// Size returns the number of indexed edges.
func (ix *Index) Size() int {
	return ix.size
}

// SearchBBox returns the indices of all edges whose bounding box intersects
// the [w, s, e, n] query box.
func (ix *Index) SearchBBox(box [4]float64) []int32 {
	var hits []int32
	ix.tree.Search(
		[2]float64{box[0], box[1]},
		[2]float64{box[2], box[3]},
		func(min, max [2]float64, data interface{}) bool {
			hits = append(hits, data.(int32))
			return true
		},
	)
	return hits
}

func geometryBounds(coords [][]float64) ([2]float64, [2]float64) {
	min := [2]float64{coords[0][0], coords[0][1]}
	max := min
	for _, c := range coords[1:] {
		if c[0] < min[0] {
			min[0] = c[0]
		}
		if c[1] < min[1] {
			min[1] = c[1]
		}
		if c[0] > max[0] {
			max[0] = c[0]
		}
		if c[1] > max[1] {
			max[1] = c[1]
		}
	}
	return min, max
}
