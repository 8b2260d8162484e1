package models

import (
	geojson "github.com/paulmach/go.geojson"
)

// WayType represents the category of a pedestrian path segment
type WayType string

const (
	WaySidewalk     WayType = "sidewalk"
	WayCrossing     WayType = "crossing"
	WayElevatorPath WayType = "elevator_path"
)

// CurbRamps is the tri-state curb ramp attribute on crossings
type CurbRamps string

const (
	CurbRampsYes     CurbRamps = "yes"
	CurbRampsNo      CurbRamps = "no"
	CurbRampsUnknown CurbRamps = "unknown"
)

// Response codes returned by the route and walkshed assemblers
const (
	CodeOk                   = "Ok"
	CodeNoRoute              = "NoRoute"
	CodeOriginFarAway        = "OriginFarAway"
	CodeDestinationFarAway   = "DestinationFarAway"
	CodeBothFarAway          = "BothFarAway"
	CodeGraphNotReady        = "GraphNotReady"
	CodeSpatialIndexNotReady = "SpatialIndexNotReady"
	CodeBadInput             = "BadInput"
	CodeNoValidNearby        = "NoValidNearby"
	CodeNoPath               = "NoPath"
	CodeInternalError        = "InternalError"
)

// Node is a network vertex. IDs are a dense contiguous range starting at 0.
type Node struct {
	ID  int32   `json:"id"`
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Edge is an undirected pedestrian path segment between nodes U and V.
// Geometry is stored in build order: the first coordinate corresponds to U,
// the last to V. Incline is signed along that order; traversing V->U
// negates it.
type Edge struct {
	U int32 `json:"u"`
	V int32 `json:"v"`

	Way      WayType     `json:"way"`
	Geometry [][]float64 `json:"geometry"`
	Length   float64     `json:"length"`
	Incline  float64     `json:"incline,omitempty"`

	// Crossing attributes
	CurbRamps CurbRamps `json:"curbramps,omitempty"`
	Marked    *bool     `json:"marked,omitempty"`

	// Elevator attributes
	OpeningHours string `json:"opening_hours,omitempty"`

	// Pass-through metadata, emitted on route steps
	StreetName string                 `json:"street_name,omitempty"`
	Side       string                 `json:"side,omitempty"`
	Surface    string                 `json:"surface,omitempty"`
	Indoor     string                 `json:"indoor,omitempty"`
	Via        string                 `json:"via,omitempty"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

// CostParams are the user mobility parameters recognised by the cost model.
type CostParams struct {
	InclineMin  float64
	InclineMax  float64
	BaseSpeed   float64 // m/s
	AvoidCurbs  bool
	AvoidStairs bool
	Timestamp   *int64 // epoch seconds, evaluated against opening hours
}

// DefaultCostParams returns the parameter set used when a request does not
// override anything. The base speed is Tobler's walking speed for hikers
// on the ideal grade.
func DefaultCostParams() CostParams {
	return CostParams{
		InclineMin: -0.1,
		InclineMax: 0.085,
		BaseSpeed:  10.0 / 6.0,
	}
}

// Entry is one viable network entry point produced by the map-matcher.
// InitialEdge is set only when the query point snapped mid-edge and a
// synthetic half-edge was created; it is carried through the response and
// never inserted into the graph.
type Entry struct {
	Node        int32
	InitialCost float64
	InitialEdge *Edge

	// Original matched edge and the snap offset along its stored geometry,
	// used for the same-edge shortcut. EdgeU/EdgeV are -1 for entries that
	// matched a node directly.
	EdgeU  int32
	EdgeV  int32
	Offset float64
}

// Route is a single computed route inside a RouteResponse.
type Route struct {
	Geometry  *geojson.Geometry          `json:"geometry"`
	Segments  *geojson.FeatureCollection `json:"segments"`
	Legs      [][]*geojson.Feature       `json:"legs"`
	Duration  int                        `json:"duration"`
	Distance  float64                    `json:"distance"`
	TotalCost float64                    `json:"total_cost"`
	Summary   string                     `json:"summary"`
}

// RouteResponse is the GeoJSON-shaped envelope for /v2/route.json.
type RouteResponse struct {
	Code        string             `json:"code"`
	Origin      *geojson.Feature   `json:"origin,omitempty"`
	Destination *geojson.Feature   `json:"destination,omitempty"`
	Waypoints   []*geojson.Feature `json:"waypoints"`
	Routes      []Route            `json:"routes"`
}

// WalkshedResponse is the envelope for /v2/walkshed.json.
type WalkshedResponse struct {
	Code     string                     `json:"code"`
	Walkshed *geojson.FeatureCollection `json:"walkshed,omitempty"`
}
