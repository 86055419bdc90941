// Command cluster-display clusters a toy calorimeter event and writes a text
// summary, a layer-occupancy PNG and an interactive r-z scatter.
//
// Usage:
//
//	cluster-display -seed 7 -showers 4 -tracks 3 -out plots/
//	cluster-display -config config/clustering.example.yaml -html=false
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/particleflow/internal/config"
	"github.com/banshee-data/particleflow/internal/pflow/display"
	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
	"github.com/banshee-data/particleflow/internal/pflow/l2hits"
	"github.com/banshee-data/particleflow/internal/pflow/l4clustering"
	"github.com/banshee-data/particleflow/internal/pflow/l5fragments"
	"github.com/banshee-data/particleflow/internal/testutil"
	"github.com/banshee-data/particleflow/internal/version"
)

// Config holds the command-line options.
type Config struct {
	TuningFile   string
	GeometryFile string
	Seed         int64
	Showers      int
	Tracks       int
	Noise        int
	OutputDir    string
	HTML         bool
	PNG          bool
	Verbose      bool
	Version      bool
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.TuningFile, "config", "", "Tuning file (.json or .yaml); built-in defaults when empty")
	flag.StringVar(&cfg.GeometryFile, "geometry", "", "Geometry file (.json or .yaml); synthetic detector when empty")
	flag.Int64Var(&cfg.Seed, "seed", 1, "Random seed for the toy event")
	flag.IntVar(&cfg.Showers, "showers", 4, "Number of photon showers")
	flag.IntVar(&cfg.Tracks, "tracks", 3, "Number of charged hadrons")
	flag.IntVar(&cfg.Noise, "noise", 10, "Number of noise hits")
	flag.StringVar(&cfg.OutputDir, "out", ".", "Output directory for plots")
	flag.BoolVar(&cfg.HTML, "html", true, "Write the interactive event scatter")
	flag.BoolVar(&cfg.PNG, "png", true, "Write the layer-occupancy plot")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Enable diagnostic logging")
	flag.BoolVar(&cfg.Version, "version", false, "Print version and exit")

	flag.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()
	if cfg.Version {
		fmt.Println(version.String("cluster-display"))
		return
	}

	if cfg.Verbose {
		l1geometry.SetLogWriters(os.Stderr, os.Stderr, nil)
		l4clustering.SetLogWriters(os.Stderr, os.Stderr, nil)
		l5fragments.SetLogWriters(os.Stderr, os.Stderr, nil)
	}

	tuning := config.EmptyTuningConfig()
	if cfg.TuningFile != "" {
		var err error
		if tuning, err = config.LoadTuningConfig(cfg.TuningFile); err != nil {
			log.Fatalf("Failed to load tuning config: %v", err)
		}
	}

	geometry := testutil.SyntheticGeometry()
	if cfg.GeometryFile != "" {
		g, err := config.LoadGeometry(cfg.GeometryFile)
		if err != nil {
			log.Fatalf("Failed to load geometry: %v", err)
		}
		geometry = *g
	}
	calc, err := l1geometry.NewPseudoLayerCalculator(geometry)
	if err != nil {
		log.Fatalf("Failed to initialise pseudo-layers: %v", err)
	}
	if ipLayer, err := calc.GetPseudoLayerAtIP(); err != nil {
		log.Printf("No pseudo-layer at the interaction point: %v", err)
	} else {
		fmt.Printf("interaction point at pseudo-layer %d, track projections at %d\n", ipLayer, l1geometry.TrackProjectionLayer)
	}

	ev := testutil.GenerateEvent(testutil.EventConfig{
		Seed:    cfg.Seed,
		Photons: cfg.Showers,
		Tracks:  cfg.Tracks,
		Noise:   cfg.Noise,
	})
	index, err := l2hits.BuildOrderedHitIndex(ev.Hits, calc)
	if err != nil {
		log.Fatalf("Failed to index hits: %v", err)
	}

	engine, err := l4clustering.NewEngine(l4clustering.ConfigFromTuning(tuning))
	if err != nil {
		log.Fatalf("Invalid clustering config: %v", err)
	}
	resolver, err := l5fragments.NewResolver(l5fragments.FragmentConfigFromTuning(tuning))
	if err != nil {
		log.Fatalf("Invalid fragment config: %v", err)
	}

	start := time.Now()
	res, err := engine.Run(context.Background(), index, ev.Tracks)
	if err != nil {
		log.Fatalf("Clustering failed: %v", err)
	}
	report, err := resolver.Resolve(res.Arena, index)
	if err != nil {
		log.Fatalf("Fragment resolution failed: %v", err)
	}
	elapsed := time.Since(start)

	clusters := res.Clusters()
	unclustered := display.Unclustered(index)

	fmt.Printf("run %s: %d hits in %d layers, %d tracks -> %d clusters, %d unclustered hits (%v)\n",
		res.RunID, index.Len(), index.NLayers(), len(ev.Tracks), len(clusters), len(unclustered), elapsed)
	fmt.Printf("engine: %+v\n", res.Stats)
	fmt.Printf("fragments: %+v\n\n", report)
	if err := display.WriteSummary(os.Stdout, display.Summarize(clusters)); err != nil {
		log.Fatalf("Failed to write summary: %v", err)
	}

	if !cfg.PNG && !cfg.HTML {
		return
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	if cfg.PNG {
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("occupancy_seed%d.png", cfg.Seed))
		if err := display.SaveLayerOccupancy(path, clusters, unclustered); err != nil {
			log.Fatalf("Failed to write occupancy plot: %v", err)
		}
		fmt.Printf("\nwrote %s\n", path)
	}
	if cfg.HTML {
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("event_seed%d.html", cfg.Seed))
		title := fmt.Sprintf("Toy event seed=%d", cfg.Seed)
		if err := display.SaveEventHTML(path, title, clusters, unclustered); err != nil {
			log.Fatalf("Failed to write event scatter: %v", err)
		}
		fmt.Printf("wrote %s\n", path)
	}
}
