package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGetterDefaults(t *testing.T) {
	t.Parallel()
	cfg := EmptyTuningConfig()

	assert.Equal(t, 2, cfg.GetClusterSeedStrategy())
	assert.False(t, cfg.GetShouldUseOnlyECalHits())
	assert.False(t, cfg.GetShouldUseIsolatedHits())
	assert.Equal(t, 0, cfg.GetHitSortingStrategy())
	assert.Equal(t, 3, cfg.GetLayersToStepBackFine())
	assert.Equal(t, 3, cfg.GetLayersToStepBackCoarse())
	assert.Equal(t, 0, cfg.GetClusterFormationStrategy())
	assert.Equal(t, 1.0, cfg.GetGenericDistanceCut())
	assert.Equal(t, 0.0, cfg.GetMinHitTrackCosAngle())
	assert.True(t, cfg.GetShouldUseTrackSeed())
	assert.Equal(t, 0, cfg.GetTrackSeedCutOffLayer())
	assert.False(t, cfg.GetShouldFollowInitialDirection())
	assert.Equal(t, 2.8, cfg.GetSameLayerPadWidthsFine())
	assert.Equal(t, 1.8, cfg.GetSameLayerPadWidthsCoarse())
	assert.Equal(t, 1000.0, cfg.GetConeApproachMaxSeparation())
	assert.Equal(t, 0.3, cfg.GetTanConeAngleFine())
	assert.Equal(t, 0.5, cfg.GetTanConeAngleCoarse())
	assert.Equal(t, 2.5, cfg.GetAdditionalPadWidthsFine())
	assert.Equal(t, 2.5, cfg.GetAdditionalPadWidthsCoarse())
	assert.Equal(t, 200.0, cfg.GetMaxClusterDirProjection())
	assert.Equal(t, -10.0, cfg.GetMinClusterDirProjection())
	assert.Equal(t, 2.0, cfg.GetTrackPathWidth())
	assert.Equal(t, 250.0, cfg.GetMaxTrackSeedSeparation())
	assert.Equal(t, 3, cfg.GetMaxLayersToTrackSeed())
	assert.Equal(t, 3, cfg.GetMaxLayersToTrackLikeHit())
	assert.Equal(t, 6, cfg.GetNLayersSpannedForFit())
	assert.Equal(t, 3, cfg.GetNLayersSpannedForApproxFit())
	assert.Equal(t, 8, cfg.GetNLayersToFit())
	assert.Equal(t, 0.5, cfg.GetNLayersToFitLowMipCut())
	assert.Equal(t, 2, cfg.GetNLayersToFitLowMipMultiplier())
	assert.Equal(t, 0.75, cfg.GetFitSuccessDotProductCut1())
	assert.Equal(t, 5.0, cfg.GetFitSuccessChi2Cut1())
	assert.Equal(t, 0.5, cfg.GetFitSuccessDotProductCut2())
	assert.Equal(t, 2.5, cfg.GetFitSuccessChi2Cut2())
	assert.Equal(t, 2.5, cfg.GetMipTrackChi2Cut())

	assert.Equal(t, 4, cfg.GetMinHitsInCluster())
	assert.Equal(t, 4, cfg.GetMinMipSegmentLayers())
	assert.Equal(t, 2, cfg.GetMaxMipHitsPerLayer())
	assert.Equal(t, 2, cfg.GetMinGapLayers())
	assert.Equal(t, 4, cfg.GetMinMipFitLayers())
	assert.Equal(t, 4, cfg.GetMaxLayerGap())
	assert.Equal(t, 50.0, cfg.GetMaxMipExtrapolationDistance())
	assert.Equal(t, 0.2, cfg.GetMaxFragmentEnergy())
	assert.Equal(t, 10, cfg.GetMaxFragmentHits())
	assert.Equal(t, 100.0, cfg.GetMaxFragmentMergeDistance())
	assert.Equal(t, 0.7, cfg.GetMinCosOpeningAngle())
	assert.Equal(t, 250.0, cfg.GetMaxRecombinationDistance())
}

func TestLoadDefaultConfigFileMatchesGetters(t *testing.T) {
	t.Parallel()
	cfg, err := LoadTuningConfig("../../" + DefaultConfigPath)
	require.NoError(t, err)

	// Every field is present in the defaults file.
	require.NotNil(t, cfg.ClusterSeedStrategy)
	require.NotNil(t, cfg.MaxRecombinationDistance)

	empty := EmptyTuningConfig()
	assert.Equal(t, empty.GetClusterSeedStrategy(), cfg.GetClusterSeedStrategy())
	assert.Equal(t, empty.GetSameLayerPadWidthsFine(), cfg.GetSameLayerPadWidthsFine())
	assert.Equal(t, empty.GetMinClusterDirProjection(), cfg.GetMinClusterDirProjection())
	assert.Equal(t, empty.GetNLayersToFit(), cfg.GetNLayersToFit())
	assert.Equal(t, empty.GetMipTrackChi2Cut(), cfg.GetMipTrackChi2Cut())
	assert.Equal(t, empty.GetMinHitsInCluster(), cfg.GetMinHitsInCluster())
	assert.Equal(t, empty.GetMaxFragmentEnergy(), cfg.GetMaxFragmentEnergy())
	assert.Equal(t, empty.GetMinCosOpeningAngle(), cfg.GetMinCosOpeningAngle())
}

func TestMustLoadDefaultConfig(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() {
		cfg := MustLoadDefaultConfig()
		assert.Equal(t, 2, cfg.GetClusterSeedStrategy())
	})
}

func TestLoadTuningConfigPartial(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "partial.json", `{"generic_distance_cut": 0.8, "should_use_track_seed": false}`)

	cfg, err := LoadTuningConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0.8, cfg.GetGenericDistanceCut())
	assert.False(t, cfg.GetShouldUseTrackSeed())
	// Untouched fields keep their defaults.
	assert.Equal(t, 2, cfg.GetClusterSeedStrategy())
	assert.Equal(t, 0.3, cfg.GetTanConeAngleFine())
	assert.Nil(t, cfg.TanConeAngleFine)
}

func TestLoadTuningConfigYAML(t *testing.T) {
	t.Parallel()

	t.Run("inline", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, "tuning.yml", "cluster_formation_strategy: 1\nmax_layer_gap: 6\nmin_cos_opening_angle: 0.9\n")
		cfg, err := LoadTuningConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.GetClusterFormationStrategy())
		assert.Equal(t, 6, cfg.GetMaxLayerGap())
		assert.Equal(t, 0.9, cfg.GetMinCosOpeningAngle())
	})

	t.Run("example file", func(t *testing.T) {
		t.Parallel()
		cfg, err := LoadTuningConfig("../../config/clustering.example.yaml")
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.GetClusterFormationStrategy())
		assert.Equal(t, 2, cfg.GetHitSortingStrategy())
		assert.Equal(t, 2.0, cfg.GetSameLayerPadWidthsFine())
		assert.True(t, cfg.GetShouldUseIsolatedHits())
		assert.Equal(t, 3, cfg.GetMinHitsInCluster())
	})
}

func TestLoadTuningConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return "/nonexistent/path/to/config.json" }},
		{"bad extension", func(t *testing.T) string { return writeFile(t, "config.toml", "x = 1") }},
		{"no extension", func(t *testing.T) string { return "../../etc/passwd" }},
		{"invalid json", func(t *testing.T) string { return writeFile(t, "bad.json", `{"generic_distance_cut": "x"`) }},
		{"invalid yaml", func(t *testing.T) string { return writeFile(t, "bad.yaml", "generic_distance_cut: [1,\n") }},
		{"too large", func(t *testing.T) string {
			return writeFile(t, "large.json", string(make([]byte, 2*1024*1024)))
		}},
		{"fails validation", func(t *testing.T) string { return writeFile(t, "v.json", `{"cluster_seed_strategy": 3}`) }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadTuningConfig(tt.path(t))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	intp := func(v int) *int { return &v }
	f64p := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		cfg     TuningConfig
		wantErr string
	}{
		{"empty", TuningConfig{}, ""},
		{"seed strategy", TuningConfig{ClusterSeedStrategy: intp(-1)}, "cluster_seed_strategy"},
		{"sorting strategy", TuningConfig{HitSortingStrategy: intp(3)}, "hit_sorting_strategy"},
		{"formation strategy", TuningConfig{ClusterFormationStrategy: intp(2)}, "cluster_formation_strategy"},
		{"zero cut", TuningConfig{GenericDistanceCut: f64p(0)}, "generic_distance_cut"},
		{"negative stepback", TuningConfig{LayersToStepBackFine: intp(-1)}, "layers_to_step_back_fine"},
		{"negative fragment hits", TuningConfig{MaxFragmentHits: intp(-2)}, "max_fragment_hits"},
		{"cone separation", TuningConfig{ConeApproachMaxSeparation: f64p(0)}, "cone_approach_max_separation"},
		{"seed separation", TuningConfig{MaxTrackSeedSeparation: f64p(-1)}, "max_track_seed_separation"},
		{"cos angle", TuningConfig{MinCosOpeningAngle: f64p(1.5)}, "min_cos_opening_angle"},
		{"valid overrides", TuningConfig{ClusterFormationStrategy: intp(1), GenericDistanceCut: f64p(0.5)}, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadGeometry(t *testing.T) {
	t.Parallel()

	geom, err := LoadGeometry("testdata/geometry.yaml")
	require.NoError(t, err)
	assert.Equal(t, "two-region test detector", geom.Name)
	require.Len(t, geom.SubDetectors, 2)

	barrel, ok := geom.SubDetector(l1geometry.ECalBarrel)
	require.True(t, ok)
	assert.Equal(t, 8, barrel.InnerSymmetryOrder)
	assert.True(t, barrel.MirroredInZ)
	require.Len(t, barrel.Layers, 3)
	assert.Equal(t, 1020.0, barrel.Layers[2].ClosestDistanceToIP)

	calc, err := l1geometry.NewPseudoLayerCalculator(*geom)
	require.NoError(t, err)
	assert.Equal(t, []float64{1000, 1010, 1020, 1100}, calc.BarrelLayerPositions())
}

func TestLoadGeometryErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadGeometry(writeFile(t, "empty.json", `{"name": "nothing"}`))
	assert.ErrorIs(t, err, l1geometry.ErrNotInitialized)

	_, err = LoadGeometry(writeFile(t, "dup.json", `{"sub_detectors": [{"type": "ecal_barrel"}, {"type": "ecal_barrel"}]}`))
	assert.ErrorIs(t, err, l1geometry.ErrInvalidParameter)

	_, err = LoadGeometry(writeFile(t, "geom.xml", `<geometry/>`))
	assert.Error(t, err)
}
