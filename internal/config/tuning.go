package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/clustering.defaults.json"

// maxFileSize bounds every configuration file read by this package.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// TuningConfig represents the root configuration for clustering and fragment
// resolution. Every field is optional; the Get* methods supply the default
// for anything a file leaves out, so partial configs are safe.
type TuningConfig struct {
	// Seeding and candidate selection
	ClusterSeedStrategy   *int  `json:"cluster_seed_strategy,omitempty" yaml:"cluster_seed_strategy,omitempty"`
	ShouldUseOnlyECalHits *bool `json:"should_use_only_ecal_hits,omitempty" yaml:"should_use_only_ecal_hits,omitempty"`
	ShouldUseIsolatedHits *bool `json:"should_use_isolated_hits,omitempty" yaml:"should_use_isolated_hits,omitempty"`
	HitSortingStrategy    *int  `json:"hit_sorting_strategy,omitempty" yaml:"hit_sorting_strategy,omitempty"`

	// Lookback
	LayersToStepBackFine     *int     `json:"layers_to_step_back_fine,omitempty" yaml:"layers_to_step_back_fine,omitempty"`
	LayersToStepBackCoarse   *int     `json:"layers_to_step_back_coarse,omitempty" yaml:"layers_to_step_back_coarse,omitempty"`
	ClusterFormationStrategy *int     `json:"cluster_formation_strategy,omitempty" yaml:"cluster_formation_strategy,omitempty"`
	GenericDistanceCut       *float64 `json:"generic_distance_cut,omitempty" yaml:"generic_distance_cut,omitempty"`

	// Generic distance
	MinHitTrackCosAngle          *float64 `json:"min_hit_track_cos_angle,omitempty" yaml:"min_hit_track_cos_angle,omitempty"`
	ShouldUseTrackSeed           *bool    `json:"should_use_track_seed,omitempty" yaml:"should_use_track_seed,omitempty"`
	TrackSeedCutOffLayer         *int     `json:"track_seed_cut_off_layer,omitempty" yaml:"track_seed_cut_off_layer,omitempty"`
	ShouldFollowInitialDirection *bool    `json:"should_follow_initial_direction,omitempty" yaml:"should_follow_initial_direction,omitempty"`
	SameLayerPadWidthsFine       *float64 `json:"same_layer_pad_widths_fine,omitempty" yaml:"same_layer_pad_widths_fine,omitempty"`
	SameLayerPadWidthsCoarse     *float64 `json:"same_layer_pad_widths_coarse,omitempty" yaml:"same_layer_pad_widths_coarse,omitempty"`
	ConeApproachMaxSeparation    *float64 `json:"cone_approach_max_separation,omitempty" yaml:"cone_approach_max_separation,omitempty"`
	TanConeAngleFine             *float64 `json:"tan_cone_angle_fine,omitempty" yaml:"tan_cone_angle_fine,omitempty"`
	TanConeAngleCoarse           *float64 `json:"tan_cone_angle_coarse,omitempty" yaml:"tan_cone_angle_coarse,omitempty"`
	AdditionalPadWidthsFine      *float64 `json:"additional_pad_widths_fine,omitempty" yaml:"additional_pad_widths_fine,omitempty"`
	AdditionalPadWidthsCoarse    *float64 `json:"additional_pad_widths_coarse,omitempty" yaml:"additional_pad_widths_coarse,omitempty"`
	MaxClusterDirProjection      *float64 `json:"max_cluster_dir_projection,omitempty" yaml:"max_cluster_dir_projection,omitempty"`
	MinClusterDirProjection      *float64 `json:"min_cluster_dir_projection,omitempty" yaml:"min_cluster_dir_projection,omitempty"`
	TrackPathWidth               *float64 `json:"track_path_width,omitempty" yaml:"track_path_width,omitempty"`
	MaxTrackSeedSeparation       *float64 `json:"max_track_seed_separation,omitempty" yaml:"max_track_seed_separation,omitempty"`
	MaxLayersToTrackSeed         *int     `json:"max_layers_to_track_seed,omitempty" yaml:"max_layers_to_track_seed,omitempty"`
	MaxLayersToTrackLikeHit      *int     `json:"max_layers_to_track_like_hit,omitempty" yaml:"max_layers_to_track_like_hit,omitempty"`

	// Cluster property refresh
	NLayersSpannedForFit         *int     `json:"n_layers_spanned_for_fit,omitempty" yaml:"n_layers_spanned_for_fit,omitempty"`
	NLayersSpannedForApproxFit   *int     `json:"n_layers_spanned_for_approx_fit,omitempty" yaml:"n_layers_spanned_for_approx_fit,omitempty"`
	NLayersToFit                 *int     `json:"n_layers_to_fit,omitempty" yaml:"n_layers_to_fit,omitempty"`
	NLayersToFitLowMipCut        *float64 `json:"n_layers_to_fit_low_mip_cut,omitempty" yaml:"n_layers_to_fit_low_mip_cut,omitempty"`
	NLayersToFitLowMipMultiplier *int     `json:"n_layers_to_fit_low_mip_multiplier,omitempty" yaml:"n_layers_to_fit_low_mip_multiplier,omitempty"`
	FitSuccessDotProductCut1     *float64 `json:"fit_success_dot_product_cut1,omitempty" yaml:"fit_success_dot_product_cut1,omitempty"`
	FitSuccessChi2Cut1           *float64 `json:"fit_success_chi2_cut1,omitempty" yaml:"fit_success_chi2_cut1,omitempty"`
	FitSuccessDotProductCut2     *float64 `json:"fit_success_dot_product_cut2,omitempty" yaml:"fit_success_dot_product_cut2,omitempty"`
	FitSuccessChi2Cut2           *float64 `json:"fit_success_chi2_cut2,omitempty" yaml:"fit_success_chi2_cut2,omitempty"`
	MipTrackChi2Cut              *float64 `json:"mip_track_chi2_cut,omitempty" yaml:"mip_track_chi2_cut,omitempty"`

	// Fragment resolution
	MinHitsInCluster            *int     `json:"min_hits_in_cluster,omitempty" yaml:"min_hits_in_cluster,omitempty"`
	MinMipSegmentLayers         *int     `json:"min_mip_segment_layers,omitempty" yaml:"min_mip_segment_layers,omitempty"`
	MaxMipHitsPerLayer          *int     `json:"max_mip_hits_per_layer,omitempty" yaml:"max_mip_hits_per_layer,omitempty"`
	MinGapLayers                *int     `json:"min_gap_layers,omitempty" yaml:"min_gap_layers,omitempty"`
	MinMipFitLayers             *int     `json:"min_mip_fit_layers,omitempty" yaml:"min_mip_fit_layers,omitempty"`
	MaxLayerGap                 *int     `json:"max_layer_gap,omitempty" yaml:"max_layer_gap,omitempty"`
	MaxMipExtrapolationDistance *float64 `json:"max_mip_extrapolation_distance,omitempty" yaml:"max_mip_extrapolation_distance,omitempty"`
	MaxFragmentEnergy           *float64 `json:"max_fragment_energy,omitempty" yaml:"max_fragment_energy,omitempty"`
	MaxFragmentHits             *int     `json:"max_fragment_hits,omitempty" yaml:"max_fragment_hits,omitempty"`
	MaxFragmentMergeDistance    *float64 `json:"max_fragment_merge_distance,omitempty" yaml:"max_fragment_merge_distance,omitempty"`
	MinCosOpeningAngle          *float64 `json:"min_cos_opening_angle,omitempty" yaml:"min_cos_opening_angle,omitempty"`
	MaxRecombinationDistance    *float64 `json:"max_recombination_distance,omitempty" yaml:"max_recombination_distance,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// readConfigFile checks the extension and size of a config file and returns
// its contents together with the cleaned extension.
func readConfigFile(path string) ([]byte, string, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, "", fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, "", fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config file: %w", err)
	}
	return data, ext, nil
}

func decode(data []byte, ext string, v interface{}) error {
	if ext == ".json" {
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse config JSON: %w", err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return nil
}

// LoadTuningConfig loads a TuningConfig from a JSON or YAML file.
// The file must have a .json, .yaml or .yml extension and be under 1MB.
// Fields omitted from the file retain their default values.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	data, ext, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	cfg := EmptyTuningConfig()
	if err := decode(data, ext, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,          // from internal/config/
		"../../../" + DefaultConfigPath,       // from internal/pflow/l4clustering/
		"../../../../" + DefaultConfigPath,    // deeper packages
		"../../../../../" + DefaultConfigPath, // even deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.ClusterSeedStrategy != nil && (*c.ClusterSeedStrategy < 0 || *c.ClusterSeedStrategy > 2) {
		return fmt.Errorf("cluster_seed_strategy must be 0, 1 or 2, got %d", *c.ClusterSeedStrategy)
	}
	if c.HitSortingStrategy != nil && (*c.HitSortingStrategy < 0 || *c.HitSortingStrategy > 2) {
		return fmt.Errorf("hit_sorting_strategy must be 0, 1 or 2, got %d", *c.HitSortingStrategy)
	}
	if c.ClusterFormationStrategy != nil && (*c.ClusterFormationStrategy < 0 || *c.ClusterFormationStrategy > 1) {
		return fmt.Errorf("cluster_formation_strategy must be 0 or 1, got %d", *c.ClusterFormationStrategy)
	}
	if c.GenericDistanceCut != nil && *c.GenericDistanceCut <= 0 {
		return fmt.Errorf("generic_distance_cut must be positive, got %f", *c.GenericDistanceCut)
	}

	nonNegative := map[string]*int{
		"layers_to_step_back_fine":           c.LayersToStepBackFine,
		"layers_to_step_back_coarse":         c.LayersToStepBackCoarse,
		"track_seed_cut_off_layer":           c.TrackSeedCutOffLayer,
		"max_layers_to_track_seed":           c.MaxLayersToTrackSeed,
		"max_layers_to_track_like_hit":       c.MaxLayersToTrackLikeHit,
		"n_layers_spanned_for_fit":           c.NLayersSpannedForFit,
		"n_layers_spanned_for_approx_fit":    c.NLayersSpannedForApproxFit,
		"n_layers_to_fit":                    c.NLayersToFit,
		"n_layers_to_fit_low_mip_multiplier": c.NLayersToFitLowMipMultiplier,
		"min_hits_in_cluster":                c.MinHitsInCluster,
		"min_mip_segment_layers":             c.MinMipSegmentLayers,
		"max_mip_hits_per_layer":             c.MaxMipHitsPerLayer,
		"min_gap_layers":                     c.MinGapLayers,
		"min_mip_fit_layers":                 c.MinMipFitLayers,
		"max_layer_gap":                      c.MaxLayerGap,
		"max_fragment_hits":                  c.MaxFragmentHits,
	}
	for name, v := range nonNegative {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", name, *v)
		}
	}

	if c.ConeApproachMaxSeparation != nil && *c.ConeApproachMaxSeparation <= 0 {
		return fmt.Errorf("cone_approach_max_separation must be positive, got %f", *c.ConeApproachMaxSeparation)
	}
	if c.MaxTrackSeedSeparation != nil && *c.MaxTrackSeedSeparation <= 0 {
		return fmt.Errorf("max_track_seed_separation must be positive, got %f", *c.MaxTrackSeedSeparation)
	}
	if c.MinCosOpeningAngle != nil && (*c.MinCosOpeningAngle < -1 || *c.MinCosOpeningAngle > 1) {
		return fmt.Errorf("min_cos_opening_angle must be in [-1, 1], got %f", *c.MinCosOpeningAngle)
	}
	return nil
}

// GetClusterSeedStrategy returns the cluster_seed_strategy value or the default.
func (c *TuningConfig) GetClusterSeedStrategy() int {
	if c.ClusterSeedStrategy == nil {
		return 2 // all qualifying tracks
	}
	return *c.ClusterSeedStrategy
}

// GetShouldUseOnlyECalHits returns the should_use_only_ecal_hits value or the default.
func (c *TuningConfig) GetShouldUseOnlyECalHits() bool {
	if c.ShouldUseOnlyECalHits == nil {
		return false
	}
	return *c.ShouldUseOnlyECalHits
}

// GetShouldUseIsolatedHits returns the should_use_isolated_hits value or the default.
func (c *TuningConfig) GetShouldUseIsolatedHits() bool {
	if c.ShouldUseIsolatedHits == nil {
		return false
	}
	return *c.ShouldUseIsolatedHits
}

// GetHitSortingStrategy returns the hit_sorting_strategy value or the default.
func (c *TuningConfig) GetHitSortingStrategy() int {
	if c.HitSortingStrategy == nil {
		return 0 // input energy, descending
	}
	return *c.HitSortingStrategy
}

// GetLayersToStepBackFine returns the layers_to_step_back_fine value or the default.
func (c *TuningConfig) GetLayersToStepBackFine() int {
	if c.LayersToStepBackFine == nil {
		return 3
	}
	return *c.LayersToStepBackFine
}

// GetLayersToStepBackCoarse returns the layers_to_step_back_coarse value or the default.
func (c *TuningConfig) GetLayersToStepBackCoarse() int {
	if c.LayersToStepBackCoarse == nil {
		return 3
	}
	return *c.LayersToStepBackCoarse
}

// GetClusterFormationStrategy returns the cluster_formation_strategy value or the default.
func (c *TuningConfig) GetClusterFormationStrategy() int {
	if c.ClusterFormationStrategy == nil {
		return 0 // accept first stepback layer with a match
	}
	return *c.ClusterFormationStrategy
}

// GetGenericDistanceCut returns the generic_distance_cut value or the default.
func (c *TuningConfig) GetGenericDistanceCut() float64 {
	if c.GenericDistanceCut == nil {
		return 1.0
	}
	return *c.GenericDistanceCut
}

// GetMinHitTrackCosAngle returns the min_hit_track_cos_angle value or the default.
func (c *TuningConfig) GetMinHitTrackCosAngle() float64 {
	if c.MinHitTrackCosAngle == nil {
		return 0.0
	}
	return *c.MinHitTrackCosAngle
}

// GetShouldUseTrackSeed returns the should_use_track_seed value or the default.
func (c *TuningConfig) GetShouldUseTrackSeed() bool {
	if c.ShouldUseTrackSeed == nil {
		return true
	}
	return *c.ShouldUseTrackSeed
}

// GetTrackSeedCutOffLayer returns the track_seed_cut_off_layer value or the default.
func (c *TuningConfig) GetTrackSeedCutOffLayer() int {
	if c.TrackSeedCutOffLayer == nil {
		return 0
	}
	return *c.TrackSeedCutOffLayer
}

// GetShouldFollowInitialDirection returns the should_follow_initial_direction value or the default.
func (c *TuningConfig) GetShouldFollowInitialDirection() bool {
	if c.ShouldFollowInitialDirection == nil {
		return false
	}
	return *c.ShouldFollowInitialDirection
}

// GetSameLayerPadWidthsFine returns the same_layer_pad_widths_fine value or the default.
func (c *TuningConfig) GetSameLayerPadWidthsFine() float64 {
	if c.SameLayerPadWidthsFine == nil {
		return 2.8
	}
	return *c.SameLayerPadWidthsFine
}

// GetSameLayerPadWidthsCoarse returns the same_layer_pad_widths_coarse value or the default.
func (c *TuningConfig) GetSameLayerPadWidthsCoarse() float64 {
	if c.SameLayerPadWidthsCoarse == nil {
		return 1.8
	}
	return *c.SameLayerPadWidthsCoarse
}

// GetConeApproachMaxSeparation returns the cone_approach_max_separation value or the default.
func (c *TuningConfig) GetConeApproachMaxSeparation() float64 {
	if c.ConeApproachMaxSeparation == nil {
		return 1000
	}
	return *c.ConeApproachMaxSeparation
}

// GetTanConeAngleFine returns the tan_cone_angle_fine value or the default.
func (c *TuningConfig) GetTanConeAngleFine() float64 {
	if c.TanConeAngleFine == nil {
		return 0.3
	}
	return *c.TanConeAngleFine
}

// GetTanConeAngleCoarse returns the tan_cone_angle_coarse value or the default.
func (c *TuningConfig) GetTanConeAngleCoarse() float64 {
	if c.TanConeAngleCoarse == nil {
		return 0.5
	}
	return *c.TanConeAngleCoarse
}

// GetAdditionalPadWidthsFine returns the additional_pad_widths_fine value or the default.
func (c *TuningConfig) GetAdditionalPadWidthsFine() float64 {
	if c.AdditionalPadWidthsFine == nil {
		return 2.5
	}
	return *c.AdditionalPadWidthsFine
}

// GetAdditionalPadWidthsCoarse returns the additional_pad_widths_coarse value or the default.
func (c *TuningConfig) GetAdditionalPadWidthsCoarse() float64 {
	if c.AdditionalPadWidthsCoarse == nil {
		return 2.5
	}
	return *c.AdditionalPadWidthsCoarse
}

// GetMaxClusterDirProjection returns the max_cluster_dir_projection value or the default.
func (c *TuningConfig) GetMaxClusterDirProjection() float64 {
	if c.MaxClusterDirProjection == nil {
		return 200
	}
	return *c.MaxClusterDirProjection
}

// GetMinClusterDirProjection returns the min_cluster_dir_projection value or the default.
func (c *TuningConfig) GetMinClusterDirProjection() float64 {
	if c.MinClusterDirProjection == nil {
		return -10
	}
	return *c.MinClusterDirProjection
}

// GetTrackPathWidth returns the track_path_width value or the default.
func (c *TuningConfig) GetTrackPathWidth() float64 {
	if c.TrackPathWidth == nil {
		return 2
	}
	return *c.TrackPathWidth
}

// GetMaxTrackSeedSeparation returns the max_track_seed_separation value or the default.
func (c *TuningConfig) GetMaxTrackSeedSeparation() float64 {
	if c.MaxTrackSeedSeparation == nil {
		return 250
	}
	return *c.MaxTrackSeedSeparation
}

// GetMaxLayersToTrackSeed returns the max_layers_to_track_seed value or the default.
func (c *TuningConfig) GetMaxLayersToTrackSeed() int {
	if c.MaxLayersToTrackSeed == nil {
		return 3
	}
	return *c.MaxLayersToTrackSeed
}

// GetMaxLayersToTrackLikeHit returns the max_layers_to_track_like_hit value or the default.
func (c *TuningConfig) GetMaxLayersToTrackLikeHit() int {
	if c.MaxLayersToTrackLikeHit == nil {
		return 3
	}
	return *c.MaxLayersToTrackLikeHit
}

// GetNLayersSpannedForFit returns the n_layers_spanned_for_fit value or the default.
func (c *TuningConfig) GetNLayersSpannedForFit() int {
	if c.NLayersSpannedForFit == nil {
		return 6
	}
	return *c.NLayersSpannedForFit
}

// GetNLayersSpannedForApproxFit returns the n_layers_spanned_for_approx_fit value or the default.
func (c *TuningConfig) GetNLayersSpannedForApproxFit() int {
	if c.NLayersSpannedForApproxFit == nil {
		return 3
	}
	return *c.NLayersSpannedForApproxFit
}

// GetNLayersToFit returns the n_layers_to_fit value or the default.
func (c *TuningConfig) GetNLayersToFit() int {
	if c.NLayersToFit == nil {
		return 8
	}
	return *c.NLayersToFit
}

// GetNLayersToFitLowMipCut returns the n_layers_to_fit_low_mip_cut value or the default.
func (c *TuningConfig) GetNLayersToFitLowMipCut() float64 {
	if c.NLayersToFitLowMipCut == nil {
		return 0.5
	}
	return *c.NLayersToFitLowMipCut
}

// GetNLayersToFitLowMipMultiplier returns the n_layers_to_fit_low_mip_multiplier value or the default.
func (c *TuningConfig) GetNLayersToFitLowMipMultiplier() int {
	if c.NLayersToFitLowMipMultiplier == nil {
		return 2
	}
	return *c.NLayersToFitLowMipMultiplier
}

// GetFitSuccessDotProductCut1 returns the fit_success_dot_product_cut1 value or the default.
func (c *TuningConfig) GetFitSuccessDotProductCut1() float64 {
	if c.FitSuccessDotProductCut1 == nil {
		return 0.75
	}
	return *c.FitSuccessDotProductCut1
}

// GetFitSuccessChi2Cut1 returns the fit_success_chi2_cut1 value or the default.
func (c *TuningConfig) GetFitSuccessChi2Cut1() float64 {
	if c.FitSuccessChi2Cut1 == nil {
		return 5.0
	}
	return *c.FitSuccessChi2Cut1
}

// GetFitSuccessDotProductCut2 returns the fit_success_dot_product_cut2 value or the default.
func (c *TuningConfig) GetFitSuccessDotProductCut2() float64 {
	if c.FitSuccessDotProductCut2 == nil {
		return 0.5
	}
	return *c.FitSuccessDotProductCut2
}

// GetFitSuccessChi2Cut2 returns the fit_success_chi2_cut2 value or the default.
func (c *TuningConfig) GetFitSuccessChi2Cut2() float64 {
	if c.FitSuccessChi2Cut2 == nil {
		return 2.5
	}
	return *c.FitSuccessChi2Cut2
}

// GetMipTrackChi2Cut returns the mip_track_chi2_cut value or the default.
func (c *TuningConfig) GetMipTrackChi2Cut() float64 {
	if c.MipTrackChi2Cut == nil {
		return 2.5
	}
	return *c.MipTrackChi2Cut
}

// GetMinHitsInCluster returns the min_hits_in_cluster value or the default.
func (c *TuningConfig) GetMinHitsInCluster() int {
	if c.MinHitsInCluster == nil {
		return 4
	}
	return *c.MinHitsInCluster
}

// GetMinMipSegmentLayers returns the min_mip_segment_layers value or the default.
func (c *TuningConfig) GetMinMipSegmentLayers() int {
	if c.MinMipSegmentLayers == nil {
		return 4
	}
	return *c.MinMipSegmentLayers
}

// GetMaxMipHitsPerLayer returns the max_mip_hits_per_layer value or the default.
func (c *TuningConfig) GetMaxMipHitsPerLayer() int {
	if c.MaxMipHitsPerLayer == nil {
		return 2
	}
	return *c.MaxMipHitsPerLayer
}

// GetMinGapLayers returns the min_gap_layers value or the default.
func (c *TuningConfig) GetMinGapLayers() int {
	if c.MinGapLayers == nil {
		return 2
	}
	return *c.MinGapLayers
}

// GetMinMipFitLayers returns the min_mip_fit_layers value or the default.
func (c *TuningConfig) GetMinMipFitLayers() int {
	if c.MinMipFitLayers == nil {
		return 4
	}
	return *c.MinMipFitLayers
}

// GetMaxLayerGap returns the max_layer_gap value or the default.
func (c *TuningConfig) GetMaxLayerGap() int {
	if c.MaxLayerGap == nil {
		return 4
	}
	return *c.MaxLayerGap
}

// GetMaxMipExtrapolationDistance returns the max_mip_extrapolation_distance value or the default.
func (c *TuningConfig) GetMaxMipExtrapolationDistance() float64 {
	if c.MaxMipExtrapolationDistance == nil {
		return 50
	}
	return *c.MaxMipExtrapolationDistance
}

// GetMaxFragmentEnergy returns the max_fragment_energy value or the default.
func (c *TuningConfig) GetMaxFragmentEnergy() float64 {
	if c.MaxFragmentEnergy == nil {
		return 0.2
	}
	return *c.MaxFragmentEnergy
}

// GetMaxFragmentHits returns the max_fragment_hits value or the default.
func (c *TuningConfig) GetMaxFragmentHits() int {
	if c.MaxFragmentHits == nil {
		return 10
	}
	return *c.MaxFragmentHits
}

// GetMaxFragmentMergeDistance returns the max_fragment_merge_distance value or the default.
func (c *TuningConfig) GetMaxFragmentMergeDistance() float64 {
	if c.MaxFragmentMergeDistance == nil {
		return 100
	}
	return *c.MaxFragmentMergeDistance
}

// GetMinCosOpeningAngle returns the min_cos_opening_angle value or the default.
func (c *TuningConfig) GetMinCosOpeningAngle() float64 {
	if c.MinCosOpeningAngle == nil {
		return 0.7
	}
	return *c.MinCosOpeningAngle
}

// GetMaxRecombinationDistance returns the max_recombination_distance value or the default.
func (c *TuningConfig) GetMaxRecombinationDistance() float64 {
	if c.MaxRecombinationDistance == nil {
		return 250
	}
	return *c.MaxRecombinationDistance
}
