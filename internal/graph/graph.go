package graph

import (
	"github.com/pedroute/pedroute_core/internal/models"
)

// Arc is one adjacency entry: the neighbour node and the index of the
// connecting edge in the edge table.
type Arc struct {
	To   int32
	Edge int32
}

// Network is the immutable in-memory pedestrian network. It is built once
// at startup and read-shared across request handlers without locking.
type Network struct {
	nodes     []models.Node
	edges     []models.Edge
	adjacency [][]Arc
	edgeIdx   map[[2]int32]int32 // canonical (min, max) endpoint pair -> edge index
	nodeKeys  map[string]int32   // rounded-coordinate key -> node id
}

// NodesCount returns the number of nodes in the network.
func (n *Network) NodesCount() int {
	return len(n.nodes)
}

// EdgesCount returns the number of edges in the network.
func (n *Network) EdgesCount() int {
	return len(n.edges)
}

// Node returns the node with the given id.
func (n *Network) Node(id int32) (models.Node, bool) {
	if id < 0 || int(id) >= len(n.nodes) {
		return models.Node{}, false
	}
	return n.nodes[id], true
}

// Edge returns the edge between u and v, in either endpoint order.
func (n *Network) Edge(u, v int32) (*models.Edge, bool) {
	idx, ok := n.edgeIdx[canonical(u, v)]
	if !ok {
		return nil, false
	}
	return &n.edges[idx], true
}

// EdgeAt returns the edge at the given index in the edge table.
func (n *Network) EdgeAt(idx int32) *models.Edge {
	return &n.edges[idx]
}

// Neighbors returns the adjacency list of u. The returned slice must not be
// modified.
func (n *Network) Neighbors(u int32) []Arc {
	if u < 0 || int(u) >= len(n.adjacency) {
		return nil
	}
	return n.adjacency[u]
}

// Nodes returns the node table. The returned slice must not be modified.
func (n *Network) Nodes() []models.Node {
	return n.nodes
}

// Edges returns the edge table. The returned slice must not be modified.
func (n *Network) Edges() []models.Edge {
	return n.edges
}

// NodeByKey returns the node id for a rounded-coordinate key, for external
// joins against the build inputs.
func (n *Network) NodeByKey(key string) (int32, bool) {
	id, ok := n.nodeKeys[key]
	return id, ok
}

func canonical(u, v int32) [2]int32 {
	if u < v {
		return [2]int32{u, v}
	}
	return [2]int32{v, u}
}

// fromTables reconstructs a Network (adjacency and lookup maps included)
// from node and edge tables, shared by the builder and the cache reader.
func fromTables(nodes []models.Node, edges []models.Edge, nodeKeys map[string]int32) *Network {
	n := &Network{
		nodes:     nodes,
		edges:     edges,
		adjacency: make([][]Arc, len(nodes)),
		edgeIdx:   make(map[[2]int32]int32, len(edges)),
		nodeKeys:  nodeKeys,
	}
	for i := range edges {
		e := &edges[i]
		n.edgeIdx[canonical(e.U, e.V)] = int32(i)
		n.adjacency[e.U] = append(n.adjacency[e.U], Arc{To: e.V, Edge: int32(i)})
		n.adjacency[e.V] = append(n.adjacency[e.V], Arc{To: e.U, Edge: int32(i)})
	}
	return n
}
