package l5fragments

import (
	"fmt"

	"github.com/banshee-data/particleflow/internal/config"
	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
)

// FragmentConfig holds the thresholds of every resolver step.
type FragmentConfig struct {
	// Small-cluster dissolution
	MinHitsInCluster int // default: 4

	// Mip/photon separation
	MinMipSegmentLayers int // default: 4
	MaxMipHitsPerLayer  int // default: 2
	MinGapLayers        int // default: 2

	// Mip fragment merging
	MinMipFitLayers             int     // default: 4
	MaxLayerGap                 int     // default: 4
	MaxMipExtrapolationDistance float64 // mm (default: 50)

	// Photon fragment merging
	MaxFragmentEnergy        float64 // GeV (default: 0.2)
	MaxFragmentHits          int     // default: 10
	MaxFragmentMergeDistance float64 // mm (default: 100)

	// Isolated-hit redistribution
	MinCosOpeningAngle       float64 // default: 0.7
	MaxRecombinationDistance float64 // mm (default: 250)
}

// DefaultFragmentConfig returns the built-in defaults.
func DefaultFragmentConfig() FragmentConfig {
	return FragmentConfigFromTuning(config.EmptyTuningConfig())
}

// FragmentConfigFromTuning builds a FragmentConfig from a loaded TuningConfig.
func FragmentConfigFromTuning(cfg *config.TuningConfig) FragmentConfig {
	return FragmentConfig{
		MinHitsInCluster:            cfg.GetMinHitsInCluster(),
		MinMipSegmentLayers:         cfg.GetMinMipSegmentLayers(),
		MaxMipHitsPerLayer:          cfg.GetMaxMipHitsPerLayer(),
		MinGapLayers:                cfg.GetMinGapLayers(),
		MinMipFitLayers:             cfg.GetMinMipFitLayers(),
		MaxLayerGap:                 cfg.GetMaxLayerGap(),
		MaxMipExtrapolationDistance: cfg.GetMaxMipExtrapolationDistance(),
		MaxFragmentEnergy:           cfg.GetMaxFragmentEnergy(),
		MaxFragmentHits:             cfg.GetMaxFragmentHits(),
		MaxFragmentMergeDistance:    cfg.GetMaxFragmentMergeDistance(),
		MinCosOpeningAngle:          cfg.GetMinCosOpeningAngle(),
		MaxRecombinationDistance:    cfg.GetMaxRecombinationDistance(),
	}
}

// Validate checks if the configuration is valid.
func (c *FragmentConfig) Validate() error {
	if c.MinHitsInCluster < 0 || c.MaxLayerGap < 0 || c.MaxFragmentHits < 0 {
		return fmt.Errorf("hit and layer counts must be non-negative: %w", l1geometry.ErrInvalidParameter)
	}
	if c.MinMipSegmentLayers < 1 || c.MaxMipHitsPerLayer < 1 || c.MinGapLayers < 1 {
		return fmt.Errorf("mip segment needs at least one layer, one hit per layer and a gap of one layer, got %d/%d/%d: %w",
			c.MinMipSegmentLayers, c.MaxMipHitsPerLayer, c.MinGapLayers, l1geometry.ErrInvalidParameter)
	}
	if c.MinMipFitLayers < 2 {
		return fmt.Errorf("MinMipFitLayers must be at least 2, got %d: %w", c.MinMipFitLayers, l1geometry.ErrInvalidParameter)
	}
	if c.MaxMipExtrapolationDistance <= 0 || c.MaxFragmentMergeDistance <= 0 || c.MaxRecombinationDistance <= 0 {
		return fmt.Errorf("merge distances must be positive: %w", l1geometry.ErrInvalidParameter)
	}
	if c.MaxFragmentEnergy < 0 {
		return fmt.Errorf("MaxFragmentEnergy must be non-negative, got %f: %w", c.MaxFragmentEnergy, l1geometry.ErrInvalidParameter)
	}
	if c.MinCosOpeningAngle < -1 || c.MinCosOpeningAngle > 1 {
		return fmt.Errorf("MinCosOpeningAngle must be in [-1, 1], got %f: %w", c.MinCosOpeningAngle, l1geometry.ErrInvalidParameter)
	}
	return nil
}
