// Package geo provides the small set of spherical and planar primitives the
// routing engine needs: great-circle lengths, line cutting, metric bounding
// boxes and UTM projection for local metric work.
package geo

import (
	"math"

	"github.com/im7mortal/UTM"
)

// EarthRadius is the great-circle radius constant, in meters. Every length
// in the network is derived from this same constant.
const EarthRadius = 6371000.0

// HaversinePoint returns the great-circle distance in meters between two
// WGS84 lon/lat points.
func HaversinePoint(lon1, lat1, lon2, lat2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c
}

// Haversine returns the summed great-circle length in meters of a lon/lat
// polyline.
func Haversine(coords [][]float64) float64 {
	d := 0.0
	for i := 1; i < len(coords); i++ {
		d += HaversinePoint(coords[i-1][0], coords[i-1][1], coords[i][0], coords[i][1])
	}
	return d
}

// Cut splits a lon/lat polyline at arc-length distance (great-circle meters)
// from its start. If distance falls at or outside the line's ends, the
// original line is returned with a nil second part. Otherwise the two parts
// share the split point, which is interpolated when distance falls between
// vertices.
func Cut(line [][]float64, distance float64) ([][]float64, [][]float64) {
	total := Haversine(line)
	if distance <= 0 || distance >= total {
		return line, nil
	}

	cum := 0.0
	for i := 1; i < len(line); i++ {
		seg := HaversinePoint(line[i-1][0], line[i-1][1], line[i][0], line[i][1])
		if cum+seg < distance {
			cum += seg
			continue
		}
		if cum+seg == distance {
			first := append([][]float64{}, line[:i+1]...)
			second := append([][]float64{}, line[i:]...)
			return first, second
		}
		frac := 0.0
		if seg > 0 {
			frac = (distance - cum) / seg
		}
		cp := []float64{
			line[i-1][0] + frac*(line[i][0]-line[i-1][0]),
			line[i-1][1] + frac*(line[i][1]-line[i-1][1]),
		}
		first := append(append([][]float64{}, line[:i]...), cp)
		second := append([][]float64{cp}, line[i:]...)
		return first, second
	}

	return line, nil
}

// BBoxFromCenter returns a [w, s, e, n] box enclosing a circle of the given
// radius in meters around a lon/lat center.
func BBoxFromCenter(lon, lat, meters float64) [4]float64 {
	dLat := meters / EarthRadius * 180 / math.Pi
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 1e-12 {
		cosLat = 1e-12
	}
	dLon := meters / (EarthRadius * cosLat) * 180 / math.Pi
	return [4]float64{lon - dLon, lat - dLat, lon + dLon, lat + dLat}
}

// UTMZoneEPSG returns the EPSG code of the UTM zone containing the lon/lat
// point, suitable for accurate local metric projection.
func UTMZoneEPSG(lon, lat float64) int {
	zone := int((lon+180)/6) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	if lat >= 0 {
		return 32600 + zone
	}
	return 32700 + zone
}

// ToUTM projects a WGS84 lon/lat point into its UTM zone, returning easting
// and northing in meters.
func ToUTM(lon, lat float64) ([2]float64, error) {
	easting, northing, _, _, err := UTM.FromLatLon(lat, lon, false)
	if err != nil {
		return [2]float64{}, err
	}
	return [2]float64{easting, northing}, nil
}

// LineToUTM projects every vertex of a lon/lat polyline into UTM.
func LineToUTM(coords [][]float64) ([][2]float64, error) {
	out := make([][2]float64, len(coords))
	for i, c := range coords {
		p, err := ToUTM(c[0], c[1])
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// PlanarLength returns the length of a projected polyline in meters.
func PlanarLength(line [][2]float64) float64 {
	d := 0.0
	for i := 1; i < len(line); i++ {
		d += math.Hypot(line[i][0]-line[i-1][0], line[i][1]-line[i-1][1])
	}
	return d
}

// NearestPointOnLine projects p onto a projected polyline. It returns the
// snapped point, the perpendicular distance to it, and the arc-length from
// the line's start to the snapped point, all in meters.
func NearestPointOnLine(line [][2]float64, p [2]float64) (snap [2]float64, dist, arc float64) {
	dist = math.Inf(1)
	cum := 0.0
	for i := 1; i < len(line); i++ {
		a, b := line[i-1], line[i]
		segLen := math.Hypot(b[0]-a[0], b[1]-a[1])
		cp, t := closestPointOnSegment(a, b, p)
		d := math.Hypot(p[0]-cp[0], p[1]-cp[1])
		if d < dist {
			dist = d
			snap = cp
			arc = cum + t*segLen
		}
		cum += segLen
	}
	return snap, dist, arc
}

// closestPointOnSegment returns the closest point to p on segment a-b and
// the clamped projection parameter t in [0, 1].
func closestPointOnSegment(a, b, p [2]float64) ([2]float64, float64) {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return a, 0
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return [2]float64{a[0] + t*dx, a[1] + t*dy}, t
}

// SegmentIntersectsLine reports whether segment a-b intersects any segment
// of a projected polyline.
func SegmentIntersectsLine(a, b [2]float64, line [][2]float64) bool {
	for i := 1; i < len(line); i++ {
		if segmentsIntersect(a, b, line[i-1], line[i]) {
			return true
		}
	}
	return false
}

func segmentsIntersect(p1, p2, q1, q2 [2]float64) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	if d1 == 0 && onSegment(q1, q2, p1) {
		return true
	}
	if d2 == 0 && onSegment(q1, q2, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, q2) {
		return true
	}

	return false
}

func cross(a, b, c [2]float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, p [2]float64) bool {
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}
