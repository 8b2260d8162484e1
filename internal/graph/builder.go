package graph

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"

	json "github.com/goccy/go-json"
	geojson "github.com/paulmach/go.geojson"
	"golang.org/x/sync/errgroup"

	"github.com/pedroute/pedroute_core/internal/geo"
	"github.com/pedroute/pedroute_core/internal/models"
)

// Coordinate rounding precision for node identity, in decimal digits.
const precision = 7

// Layer file names expected under the data directory.
const (
	SidewalksFile     = "sidewalks.geojson"
	CrossingsFile     = "crossings.geojson"
	ElevatorPathsFile = "elevator_paths.geojson"
)

// Layers holds the three input feature streams.
type Layers struct {
	Sidewalks     *geojson.FeatureCollection
	Crossings     *geojson.FeatureCollection
	ElevatorPaths *geojson.FeatureCollection
}

// LoadLayers reads the three layer files from the data directory
// concurrently.
func LoadLayers(datadir string) (*Layers, error) {
	layers := &Layers{}

	var g errgroup.Group
	load := func(name string, dst **geojson.FeatureCollection) func() error {
		return func() error {
			data, err := os.ReadFile(filepath.Join(datadir, name))
			if err != nil {
				return fmt.Errorf("failed to read layer %s: %w", name, err)
			}
			fc := &geojson.FeatureCollection{}
			if err := json.Unmarshal(data, fc); err != nil {
				return fmt.Errorf("failed to decode layer %s: %w", name, err)
			}
			*dst = fc
			return nil
		}
	}
	g.Go(load(SidewalksFile, &layers.Sidewalks))
	g.Go(load(CrossingsFile, &layers.Crossings))
	g.Go(load(ElevatorPathsFile, &layers.ElevatorPaths))

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return layers, nil
}

// Build assembles the network from the three feature layers. Malformed
// features are skipped with a log event; the build always completes.
func Build(layers *Layers) *Network {
	b := &builder{
		nodeKeys: make(map[string]int32),
		edgeIdx:  make(map[[2]int32]bool),
	}

	b.addLayer(layers.Sidewalks, models.WaySidewalk)
	b.addLayer(layers.Crossings, models.WayCrossing)
	b.addLayer(layers.ElevatorPaths, models.WayElevatorPath)

	log.Printf("Built network: %d nodes, %d edges (%d features skipped)",
		len(b.nodes), len(b.edges), b.skipped)

	return fromTables(b.nodes, b.edges, b.nodeKeys)
}

type builder struct {
	nodes    []models.Node
	edges    []models.Edge
	nodeKeys map[string]int32
	edgeIdx  map[[2]int32]bool
	skipped  int
}

func (b *builder) addLayer(fc *geojson.FeatureCollection, way models.WayType) {
	if fc == nil {
		return
	}
	count := 0
	for _, f := range fc.Features {
		if f.Geometry == nil || !f.Geometry.IsLineString() || len(f.Geometry.LineString) < 2 {
			b.skipped++
			log.Printf("Warning: skipping %s feature with bad geometry", way)
			continue
		}
		coords := f.Geometry.LineString

		start := roundCoord(coords[0])
		end := roundCoord(coords[len(coords)-1])
		u := b.nodeID(start)
		v := b.nodeID(end)

		if u == v {
			b.skipped++
			log.Printf("Warning: skipping degenerate %s feature (loops onto its own endpoint)", way)
			continue
		}
		key := canonical(u, v)
		if b.edgeIdx[key] {
			b.skipped++
			log.Printf("Warning: skipping parallel %s edge between nodes %d and %d", way, u, v)
			continue
		}
		b.edgeIdx[key] = true

		edge := models.Edge{
			U:        u,
			V:        v,
			Way:      way,
			Geometry: coords,
			Length:   geo.Haversine(coords),
		}
		applyProperties(&edge, f, way)
		b.edges = append(b.edges, edge)
		count++
	}
	log.Printf("Loaded %d %s edges", count, way)
}

func (b *builder) nodeID(coord []float64) int32 {
	key := nodeKey(coord[0], coord[1])
	if id, ok := b.nodeKeys[key]; ok {
		return id
	}
	id := int32(len(b.nodes))
	b.nodeKeys[key] = id
	b.nodes = append(b.nodes, models.Node{ID: id, Lon: coord[0], Lat: coord[1]})
	return id
}

func roundCoord(c []float64) []float64 {
	scale := math.Pow10(precision)
	return []float64{
		math.Round(c[0]*scale) / scale,
		math.Round(c[1]*scale) / scale,
	}
}

func nodeKey(lon, lat float64) string {
	return strconv.FormatFloat(lon, 'f', precision, 64) + "," +
		strconv.FormatFloat(lat, 'f', precision, 64)
}

// Property keys consumed into Edge fields; anything else a feature carries
// is passed through in Extra.
var knownProperties = map[string]bool{
	"incline":       true,
	"curbramps":     true,
	"marked":        true,
	"opening_hours": true,
	"street_name":   true,
	"side":          true,
	"surface":       true,
	"indoor":        true,
	"via":           true,
	"length":        true,
	"way":           true,
}

func applyProperties(e *models.Edge, f *geojson.Feature, way models.WayType) {
	switch way {
	case models.WaySidewalk:
		e.Incline = normalizeIncline(propFloat(f, "incline"))
	case models.WayCrossing:
		e.CurbRamps = propCurbRamps(f)
		if marked, err := f.PropertyBool("marked"); err == nil {
			e.Marked = &marked
		}
	case models.WayElevatorPath:
		if s, err := f.PropertyString("opening_hours"); err == nil {
			e.OpeningHours = s
		}
	}

	if s, err := f.PropertyString("street_name"); err == nil {
		e.StreetName = s
	}
	if s, err := f.PropertyString("side"); err == nil {
		e.Side = s
	}
	if s, err := f.PropertyString("surface"); err == nil {
		e.Surface = s
	}
	if s, err := f.PropertyString("indoor"); err == nil {
		e.Indoor = s
	}
	if s, err := f.PropertyString("via"); err == nil {
		e.Via = s
	}
	for k, v := range f.Properties {
		if knownProperties[k] {
			continue
		}
		if e.Extra == nil {
			e.Extra = make(map[string]interface{})
		}
		e.Extra[k] = v
	}
}

func propFloat(f *geojson.Feature, key string) float64 {
	v, err := f.PropertyFloat64(key)
	if err != nil {
		return 0
	}
	return v
}

// normalizeIncline converts grade-times-1000 integer inputs back to raw
// grade; the two encodings coexist in upstream data.
func normalizeIncline(incline float64) float64 {
	if math.Abs(incline) > 1 {
		return incline / 1000
	}
	return incline
}

func propCurbRamps(f *geojson.Feature) models.CurbRamps {
	if v, ok := f.Properties["curbramps"]; ok {
		switch t := v.(type) {
		case bool:
			if t {
				return models.CurbRampsYes
			}
			return models.CurbRampsNo
		case float64:
			if t != 0 {
				return models.CurbRampsYes
			}
			return models.CurbRampsNo
		case string:
			switch t {
			case "yes":
				return models.CurbRampsYes
			case "no":
				return models.CurbRampsNo
			}
		}
	}
	return models.CurbRampsUnknown
}
