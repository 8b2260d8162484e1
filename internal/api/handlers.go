package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pedroute/pedroute_core/internal/graph"
	"github.com/pedroute/pedroute_core/internal/models"
	"github.com/pedroute/pedroute_core/internal/routing"
)

// RouteJSON handles the /v2/route.json endpoint
func RouteJSON(c *fiber.Ctx) error {
	originStr := c.Query("origin")
	destinationStr := c.Query("destination")

	if originStr == "" || destinationStr == "" {
		return badInput(c, "origin and destination parameters are required")
	}

	originLat, originLon, err := parseCoordinates(originStr)
	if err != nil {
		return badInput(c, fmt.Sprintf("invalid 'origin' coordinates: %v", err))
	}
	destLat, destLon, err := parseCoordinates(destinationStr)
	if err != nil {
		return badInput(c, fmt.Sprintf("invalid 'destination' coordinates: %v", err))
	}

	params, err := parseCostParams(c)
	if err != nil {
		return badInput(c, err.Error())
	}

	svc := graph.Shared()
	net, ok := svc.Network()
	if !ok {
		return notReady(c, models.CodeGraphNotReady)
	}
	index, ok := svc.Index()
	if !ok {
		return notReady(c, models.CodeSpatialIndexNotReady)
	}

	resp := routing.FindRoute(c.Context(), net, index, originLon, originLat, destLon, destLat, params)
	if resp.Code == models.CodeInternalError {
		return c.Status(fiber.StatusInternalServerError).JSON(resp)
	}
	return c.JSON(resp)
}

// WalkshedJSON handles the /v2/walkshed.json endpoint
func WalkshedJSON(c *fiber.Ctx) error {
	lonStr := c.Query("lon")
	latStr := c.Query("lat")
	if lonStr == "" || latStr == "" {
		return badInput(c, "lon and lat parameters are required")
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return badInput(c, "invalid longitude")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return badInput(c, "invalid latitude")
	}

	cutoff := routing.DefaultCutoff()
	if cutoffStr := c.Query("cutoff"); cutoffStr != "" {
		cutoff, err = strconv.ParseFloat(cutoffStr, 64)
		if err != nil || cutoff <= 0 {
			return badInput(c, "cutoff must be a positive number")
		}
	}

	params, err := parseCostParams(c)
	if err != nil {
		return badInput(c, err.Error())
	}

	svc := graph.Shared()
	net, ok := svc.Network()
	if !ok {
		return notReady(c, models.CodeGraphNotReady)
	}
	index, ok := svc.Index()
	if !ok {
		return notReady(c, models.CodeSpatialIndexNotReady)
	}

	resp := routing.Walkshed(c.Context(), net, index, lon, lat, cutoff, params)
	if resp.Code == models.CodeInternalError {
		return c.Status(fiber.StatusInternalServerError).JSON(resp)
	}
	return c.JSON(resp)
}

// Health handles the /health endpoint
func Health(c *fiber.Ctx) error {
	svc := graph.Shared()
	_, netReady := svc.Network()
	_, indexReady := svc.Index()

	status := "healthy"
	httpStatus := fiber.StatusOK
	if !netReady || !indexReady {
		status = "building"
		httpStatus = fiber.StatusServiceUnavailable
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checks": fiber.Map{
			"graph":         readiness(netReady),
			"spatial_index": readiness(indexReady),
		},
	})
}

func readiness(ready bool) string {
	if ready {
		return "ok"
	}
	return "not ready"
}

// parseCoordinates parses a "lat,lon" string into floats
func parseCoordinates(coordStr string) (lat, lon float64, err error) {
	parts := strings.Split(coordStr, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected format: lat,lon")
	}

	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude: %w", err)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude: %w", err)
	}

	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("latitude must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("longitude must be between -180 and 180")
	}

	return lat, lon, nil
}

// parseCostParams reads the recognised cost options from the query string.
func parseCostParams(c *fiber.Ctx) (models.CostParams, error) {
	params := models.DefaultCostParams()

	if avoid := c.Query("avoid"); avoid != "" {
		for _, token := range strings.Split(avoid, "|") {
			switch token {
			case "curbs":
				params.AvoidCurbs = true
			case "stairs":
				params.AvoidStairs = true
			default:
				return params, fmt.Errorf("unknown avoid token: %q", token)
			}
		}
	}

	if v := c.Query("incline_min"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return params, fmt.Errorf("incline_min must be a number")
		}
		params.InclineMin = f
	}
	if v := c.Query("incline_max"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return params, fmt.Errorf("incline_max must be a number")
		}
		params.InclineMax = f
	}
	if v := c.Query("speed"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return params, fmt.Errorf("speed must be a positive number")
		}
		params.BaseSpeed = f
	}
	if v := c.Query("timestamp"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return params, fmt.Errorf("timestamp must be integer milliseconds")
		}
		seconds := ms / 1000
		params.Timestamp = &seconds
	}

	return params, nil
}

func badInput(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"code":  models.CodeBadInput,
		"error": message,
	})
}

func notReady(c *fiber.Ctx, code string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"code":      code,
		"waypoints": []interface{}{},
		"routes":    []interface{}{},
	})
}
