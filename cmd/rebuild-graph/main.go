package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pedroute/pedroute_core/internal/graph"
)

func main() {
	log.Println("🔄 Pedroute Core - Graph Rebuild Tool")
	log.Println("=====================================")

	datadir := os.Getenv("PEDDATADIR")
	if datadir == "" {
		log.Fatal("❌ PEDDATADIR must point to the pedestrian data directory")
	}

	cachePath := filepath.Join(datadir, graph.CacheFile)
	if err := os.Remove(cachePath); err == nil {
		log.Println("🗑  Removed stale graph cache")
	}

	log.Println("📡 Reading feature layers...")
	layers, err := graph.LoadLayers(datadir)
	if err != nil {
		log.Fatalf("❌ Failed to read layers: %v", err)
	}
	log.Printf("📊 Layer statistics:")
	log.Printf("   Sidewalks: %d", len(layers.Sidewalks.Features))
	log.Printf("   Crossings: %d", len(layers.Crossings.Features))
	log.Printf("   Elevator paths: %d", len(layers.ElevatorPaths.Features))

	log.Println("🔄 Starting graph rebuild...")
	startTime := time.Now()

	net := graph.Build(layers)
	if err := graph.SaveCache(cachePath, net); err != nil {
		log.Fatalf("❌ Failed to write graph cache: %v", err)
	}

	duration := time.Since(startTime)

	log.Println("✅ Graph rebuild completed!")
	log.Printf("⏱️  Duration: %v", duration)
	log.Printf("📊 Graph statistics:")
	log.Printf("   Nodes: %d", net.NodesCount())
	log.Printf("   Edges: %d", net.EdgesCount())

	log.Println("🚀 Graph is ready for routing!")
}
