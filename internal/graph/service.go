package graph

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/pedroute/pedroute_core/internal/spatial"
)

// Service holds the shared network and spatial index. Both are built once
// (usually on a background worker at startup) and read-shared afterwards;
// Load sets readiness once and never clears it (SetForTesting can).
type Service struct {
	mu         sync.RWMutex
	net        *Network
	index      *spatial.Index
	netReady   bool
	indexReady bool
}

var (
	shared     *Service
	sharedOnce sync.Once
)

// Shared returns the singleton service
func Shared() *Service {
	sharedOnce.Do(func() {
		shared = &Service{}
	})
	return shared
}

// Load builds or restores the network from the data directory and then
// builds the spatial index, publishing each as soon as it is ready.
func (s *Service) Load(datadir string) error {
	startTime := time.Now()
	cachePath := filepath.Join(datadir, CacheFile)

	net, err := LoadCache(cachePath)
	if err != nil {
		log.Printf("Graph cache unusable (%v), rebuilding from layers...", err)
		layers, lerr := LoadLayers(datadir)
		if lerr != nil {
			return lerr
		}
		net = Build(layers)
		if serr := SaveCache(cachePath, net); serr != nil {
			log.Printf("Warning: failed to write graph cache: %v", serr)
		}
	} else {
		log.Printf("Restored network from cache: %d nodes, %d edges",
			net.NodesCount(), net.EdgesCount())
	}

	s.mu.Lock()
	s.net = net
	s.netReady = true
	s.mu.Unlock()

	index := spatial.NewIndex(net.Edges())

	s.mu.Lock()
	s.index = index
	s.indexReady = true
	s.mu.Unlock()

	log.Printf("Graph loaded in %v (%d nodes, %d edges, %d indexed)",
		time.Since(startTime), net.NodesCount(), net.EdgesCount(), index.Size())

	return nil
}

// SetForTesting installs a prebuilt network and index, marking each ready
// when it is non-nil and not ready when it is nil.
func (s *Service) SetForTesting(net *Network, index *spatial.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.net = net
	s.index = index
	s.netReady = net != nil
	s.indexReady = index != nil
}

// Network returns the shared network, or false while the build is running.
func (s *Service) Network() (*Network, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.net, s.netReady
}

// Index returns the shared spatial index, or false while it is being built.
func (s *Service) Index() (*spatial.Index, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index, s.indexReady
}

// BuildFromLayers builds a standalone network+index pair without touching
// the shared service; used by tests and offline tools.
func BuildFromLayers(layers *Layers) (*Network, *spatial.Index) {
	net := Build(layers)
	return net, spatial.NewIndex(net.Edges())
}
