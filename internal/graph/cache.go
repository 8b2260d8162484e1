package graph

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/pedroute/pedroute_core/internal/models"
)

// CacheFile is the on-disk graph cache name inside the data directory. The
// cache is a rebuild-on-read-failure hint, never authoritative.
const CacheFile = "graph-cache.json"

type cachedNetwork struct {
	Nodes []models.Node `json:"nodes"`
	Edges []models.Edge `json:"edges"`
}

// SaveCache writes the built network to the cache path.
func SaveCache(path string, n *Network) error {
	data, err := json.Marshal(cachedNetwork{Nodes: n.Nodes(), Edges: n.Edges()})
	if err != nil {
		return fmt.Errorf("failed to encode graph cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write graph cache: %w", err)
	}
	return nil
}

// LoadCache reads a previously saved network. Any failure is returned to
// the caller, which falls back to a full rebuild.
func LoadCache(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph cache: %w", err)
	}
	var cached cachedNetwork
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to decode graph cache: %w", err)
	}
	if err := validateCache(&cached); err != nil {
		return nil, err
	}

	nodeKeys := make(map[string]int32, len(cached.Nodes))
	for _, node := range cached.Nodes {
		nodeKeys[nodeKey(node.Lon, node.Lat)] = node.ID
	}
	return fromTables(cached.Nodes, cached.Edges, nodeKeys), nil
}

func validateCache(c *cachedNetwork) error {
	for i, node := range c.Nodes {
		if int(node.ID) != i {
			return fmt.Errorf("graph cache corrupt: node id %d at index %d", node.ID, i)
		}
	}
	count := int32(len(c.Nodes))
	for _, e := range c.Edges {
		if e.U < 0 || e.U >= count || e.V < 0 || e.V >= count || e.U == e.V {
			return fmt.Errorf("graph cache corrupt: edge %d-%d out of range", e.U, e.V)
		}
		if len(e.Geometry) < 2 {
			return fmt.Errorf("graph cache corrupt: edge %d-%d has bad geometry", e.U, e.V)
		}
	}
	return nil
}
