package l4clustering

import (
	"fmt"

	"github.com/banshee-data/particleflow/internal/config"
	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
)

// SeedStrategy selects which tracks seed clusters before any hit is processed.
type SeedStrategy int

const (
	SeedNone         SeedStrategy = 0 // no track seeding
	SeedEndCapTracks SeedStrategy = 1 // only tracks projecting to the endcap
	SeedAllTracks    SeedStrategy = 2 // every track allowed to seed
)

// FormationStrategy selects how the lookback phase picks a cluster.
type FormationStrategy int

const (
	// FormationFirstMatch accepts the best cluster of the first stepback
	// layer that yields any match.
	FormationFirstMatch FormationStrategy = 0
	// FormationGlobalBest searches the whole stepback window and accepts
	// the single best match.
	FormationGlobalBest FormationStrategy = 1
)

// HitSortingStrategy orders the candidate hits of a layer.
type HitSortingStrategy int

const (
	SortByInputEnergy    HitSortingStrategy = 0 // input energy, descending
	SortByEMEnergy       HitSortingStrategy = 1 // electromagnetic energy, descending
	SortByDistanceFromIP HitSortingStrategy = 2 // distance from the origin, ascending
)

// ClusteringConfig holds every parameter of the clustering engine and its
// default distance metric. An engine is constructed with one config and
// never consults global state.
type ClusteringConfig struct {
	// Seeding and candidate selection
	ClusterSeedStrategy   SeedStrategy       // default: 2
	ShouldUseOnlyECalHits bool               // default: false
	ShouldUseIsolatedHits bool               // default: false
	HitSortingStrategy    HitSortingStrategy // default: 0

	// Lookback
	LayersToStepBackFine     int               // default: 3
	LayersToStepBackCoarse   int               // default: 3
	ClusterFormationStrategy FormationStrategy // default: 0
	GenericDistanceCut       float64           // accept threshold, exclusive (default: 1.0)

	// Generic distance
	MinHitTrackCosAngle          float64                // default: 0.0
	ShouldUseTrackSeed           bool                   // default: true
	TrackSeedCutOffLayer         l1geometry.PseudoLayer // default: 0
	ShouldFollowInitialDirection bool                   // default: false
	SameLayerPadWidthsFine       float64                // default: 2.8
	SameLayerPadWidthsCoarse     float64                // default: 1.8
	ConeApproachMaxSeparation    float64                // mm (default: 1000)
	TanConeAngleFine             float64                // default: 0.3
	TanConeAngleCoarse           float64                // default: 0.5
	AdditionalPadWidthsFine      float64                // default: 2.5
	AdditionalPadWidthsCoarse    float64                // default: 2.5
	MaxClusterDirProjection      float64                // mm (default: 200)
	MinClusterDirProjection      float64                // mm (default: -10)
	TrackPathWidth               float64                // default: 2
	MaxTrackSeedSeparation       float64                // mm (default: 250)
	MaxLayersToTrackSeed         l1geometry.PseudoLayer // default: 3
	MaxLayersToTrackLikeHit      l1geometry.PseudoLayer // default: 3

	// Cluster property refresh
	NLayersSpannedForFit         int     // default: 6
	NLayersSpannedForApproxFit   int     // default: 3
	NLayersToFit                 int     // default: 8
	NLayersToFitLowMipCut        float64 // default: 0.5
	NLayersToFitLowMipMultiplier int     // default: 2
	FitSuccessDotProductCut1     float64 // default: 0.75
	FitSuccessChi2Cut1           float64 // default: 5.0
	FitSuccessDotProductCut2     float64 // default: 0.5
	FitSuccessChi2Cut2           float64 // default: 2.5
	MipTrackChi2Cut              float64 // default: 2.5
}

// DefaultClusteringConfig returns the built-in defaults. They match
// config/clustering.defaults.json.
func DefaultClusteringConfig() ClusteringConfig {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a ClusteringConfig from a loaded TuningConfig.
// Use this in production code where the TuningConfig is already loaded.
func ConfigFromTuning(cfg *config.TuningConfig) ClusteringConfig {
	return ClusteringConfig{
		ClusterSeedStrategy:   SeedStrategy(cfg.GetClusterSeedStrategy()),
		ShouldUseOnlyECalHits: cfg.GetShouldUseOnlyECalHits(),
		ShouldUseIsolatedHits: cfg.GetShouldUseIsolatedHits(),
		HitSortingStrategy:    HitSortingStrategy(cfg.GetHitSortingStrategy()),

		LayersToStepBackFine:     cfg.GetLayersToStepBackFine(),
		LayersToStepBackCoarse:   cfg.GetLayersToStepBackCoarse(),
		ClusterFormationStrategy: FormationStrategy(cfg.GetClusterFormationStrategy()),
		GenericDistanceCut:       cfg.GetGenericDistanceCut(),

		MinHitTrackCosAngle:          cfg.GetMinHitTrackCosAngle(),
		ShouldUseTrackSeed:           cfg.GetShouldUseTrackSeed(),
		TrackSeedCutOffLayer:         layer(cfg.GetTrackSeedCutOffLayer()),
		ShouldFollowInitialDirection: cfg.GetShouldFollowInitialDirection(),
		SameLayerPadWidthsFine:       cfg.GetSameLayerPadWidthsFine(),
		SameLayerPadWidthsCoarse:     cfg.GetSameLayerPadWidthsCoarse(),
		ConeApproachMaxSeparation:    cfg.GetConeApproachMaxSeparation(),
		TanConeAngleFine:             cfg.GetTanConeAngleFine(),
		TanConeAngleCoarse:           cfg.GetTanConeAngleCoarse(),
		AdditionalPadWidthsFine:      cfg.GetAdditionalPadWidthsFine(),
		AdditionalPadWidthsCoarse:    cfg.GetAdditionalPadWidthsCoarse(),
		MaxClusterDirProjection:      cfg.GetMaxClusterDirProjection(),
		MinClusterDirProjection:      cfg.GetMinClusterDirProjection(),
		TrackPathWidth:               cfg.GetTrackPathWidth(),
		MaxTrackSeedSeparation:       cfg.GetMaxTrackSeedSeparation(),
		MaxLayersToTrackSeed:         layer(cfg.GetMaxLayersToTrackSeed()),
		MaxLayersToTrackLikeHit:      layer(cfg.GetMaxLayersToTrackLikeHit()),

		NLayersSpannedForFit:         cfg.GetNLayersSpannedForFit(),
		NLayersSpannedForApproxFit:   cfg.GetNLayersSpannedForApproxFit(),
		NLayersToFit:                 cfg.GetNLayersToFit(),
		NLayersToFitLowMipCut:        cfg.GetNLayersToFitLowMipCut(),
		NLayersToFitLowMipMultiplier: cfg.GetNLayersToFitLowMipMultiplier(),
		FitSuccessDotProductCut1:     cfg.GetFitSuccessDotProductCut1(),
		FitSuccessChi2Cut1:           cfg.GetFitSuccessChi2Cut1(),
		FitSuccessDotProductCut2:     cfg.GetFitSuccessDotProductCut2(),
		FitSuccessChi2Cut2:           cfg.GetFitSuccessChi2Cut2(),
		MipTrackChi2Cut:              cfg.GetMipTrackChi2Cut(),
	}
}

// layer converts a validated non-negative count; negatives clamp to zero.
func layer(v int) l1geometry.PseudoLayer {
	if v < 0 {
		return 0
	}
	return l1geometry.PseudoLayer(v)
}

// Validate checks if the configuration is valid.
// Zero pad widths are allowed here; a zero tolerance is reported when a
// distance is actually evaluated with it.
func (c *ClusteringConfig) Validate() error {
	if c.ClusterSeedStrategy < SeedNone || c.ClusterSeedStrategy > SeedAllTracks {
		return fmt.Errorf("ClusterSeedStrategy must be 0, 1 or 2, got %d: %w", c.ClusterSeedStrategy, l1geometry.ErrInvalidParameter)
	}
	if c.HitSortingStrategy < SortByInputEnergy || c.HitSortingStrategy > SortByDistanceFromIP {
		return fmt.Errorf("HitSortingStrategy must be 0, 1 or 2, got %d: %w", c.HitSortingStrategy, l1geometry.ErrInvalidParameter)
	}
	if c.ClusterFormationStrategy != FormationFirstMatch && c.ClusterFormationStrategy != FormationGlobalBest {
		return fmt.Errorf("ClusterFormationStrategy must be 0 or 1, got %d: %w", c.ClusterFormationStrategy, l1geometry.ErrInvalidParameter)
	}
	if c.LayersToStepBackFine < 0 || c.LayersToStepBackCoarse < 0 {
		return fmt.Errorf("LayersToStepBack must be non-negative, got fine=%d coarse=%d: %w",
			c.LayersToStepBackFine, c.LayersToStepBackCoarse, l1geometry.ErrInvalidParameter)
	}
	if c.GenericDistanceCut <= 0 {
		return fmt.Errorf("GenericDistanceCut must be positive, got %f: %w", c.GenericDistanceCut, l1geometry.ErrInvalidParameter)
	}
	if c.ConeApproachMaxSeparation <= 0 {
		return fmt.Errorf("ConeApproachMaxSeparation must be positive, got %f: %w", c.ConeApproachMaxSeparation, l1geometry.ErrInvalidParameter)
	}
	if c.MaxTrackSeedSeparation <= 0 {
		return fmt.Errorf("MaxTrackSeedSeparation must be positive, got %f: %w", c.MaxTrackSeedSeparation, l1geometry.ErrInvalidParameter)
	}
	if c.MinClusterDirProjection >= c.MaxClusterDirProjection {
		return fmt.Errorf("MinClusterDirProjection %f must be below MaxClusterDirProjection %f: %w",
			c.MinClusterDirProjection, c.MaxClusterDirProjection, l1geometry.ErrInvalidParameter)
	}
	for name, v := range map[string]float64{
		"SameLayerPadWidthsFine":    c.SameLayerPadWidthsFine,
		"SameLayerPadWidthsCoarse":  c.SameLayerPadWidthsCoarse,
		"TanConeAngleFine":          c.TanConeAngleFine,
		"TanConeAngleCoarse":        c.TanConeAngleCoarse,
		"AdditionalPadWidthsFine":   c.AdditionalPadWidthsFine,
		"AdditionalPadWidthsCoarse": c.AdditionalPadWidthsCoarse,
		"TrackPathWidth":            c.TrackPathWidth,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f: %w", name, v, l1geometry.ErrInvalidParameter)
		}
	}
	if c.NLayersToFit < 2 {
		return fmt.Errorf("NLayersToFit must be at least 2, got %d: %w", c.NLayersToFit, l1geometry.ErrInvalidParameter)
	}
	if c.NLayersToFitLowMipMultiplier < 1 {
		return fmt.Errorf("NLayersToFitLowMipMultiplier must be at least 1, got %d: %w", c.NLayersToFitLowMipMultiplier, l1geometry.ErrInvalidParameter)
	}
	if c.NLayersSpannedForApproxFit < 0 || c.NLayersSpannedForFit < c.NLayersSpannedForApproxFit {
		return fmt.Errorf("need 0 <= NLayersSpannedForApproxFit (%d) <= NLayersSpannedForFit (%d): %w",
			c.NLayersSpannedForApproxFit, c.NLayersSpannedForFit, l1geometry.ErrInvalidParameter)
	}
	return nil
}

// stepBackLayers returns the lookback window for a hit's granularity.
func (c *ClusteringConfig) stepBackLayers(fine bool) int {
	if fine {
		return c.LayersToStepBackFine
	}
	return c.LayersToStepBackCoarse
}
