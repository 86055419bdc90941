package l4clustering

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
	"github.com/banshee-data/particleflow/internal/pflow/l2hits"
	"github.com/banshee-data/particleflow/internal/pflow/l3clusters"
	"github.com/banshee-data/particleflow/internal/testutil"
)

func clusterOf(t *testing.T, hits ...*l2hits.CaloHit) *l3clusters.Cluster {
	t.Helper()
	c, err := l3clusters.NewClusterFromHit(hits[0])
	require.NoError(t, err)
	for _, h := range hits[1:] {
		require.NoError(t, c.AddHit(h))
	}
	return c
}

func trackClusterOf(t *testing.T, track *l2hits.Track, hits ...*l2hits.CaloHit) *l3clusters.Cluster {
	t.Helper()
	c, err := l3clusters.NewClusterFromTrack(track)
	require.NoError(t, err)
	for _, h := range hits {
		require.NoError(t, c.AddHit(h))
	}
	return c
}

func TestSameLayerDistance(t *testing.T) {
	t.Parallel()
	m := NewConeDistanceMetric(DefaultClusteringConfig())
	c := clusterOf(t, testutil.HitAt(t, 1, 3, l1geometry.V(0, 1000, 0), 1))

	// Fine granularity: tolerance 2.8 pads of 10 mm.
	atCut := testutil.HitAt(t, 2, 3, l1geometry.V(28, 1000, 0), 1)
	d, ok, err := m.GenericDistance(c, atCut, 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1.0, d)

	inside := testutil.HitAt(t, 3, 3, l1geometry.V(0, 1000, 14), 1)
	d, ok, err = m.GenericDistance(c, inside, 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 0.5, d, 1e-12)

	coarse := testutil.HitAt(t, 4, 3, l1geometry.V(18, 1000, 0), 1)
	coarse.Type = l2hits.HitTypeHCal
	d, ok, err = m.GenericDistance(c, coarse, 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 1.0, d, 1e-12)

	otherRegion := testutil.HitAt(t, 5, 3, l1geometry.V(5, 1000, 0), 1)
	otherRegion.Region = l2hits.RegionEndCap
	_, ok, err = m.GenericDistance(c, otherRegion, 3)
	require.NoError(t, err)
	assert.False(t, ok, "hits in another region give no opinion")
}

func TestZeroToleranceIsHardFailure(t *testing.T) {
	t.Parallel()
	m := NewConeDistanceMetric(DefaultClusteringConfig())
	c := clusterOf(t, testutil.HitAt(t, 1, 3, l1geometry.V(0, 1000, 0), 1))

	noCell := testutil.HitAt(t, 2, 3, l1geometry.V(10, 1000, 0), 1)
	noCell.CellLengthScale = 0
	_, _, err := m.GenericDistance(c, noCell, 3)
	assert.ErrorIs(t, err, ErrZeroTolerance)
	assert.True(t, errors.Is(err, l1geometry.ErrFailure))

	// The cone tolerance is zero only when dAlong is zero as well.
	cfg := DefaultClusteringConfig()
	cfg.AdditionalPadWidthsFine = 0
	m = NewConeDistanceMetric(cfg)
	sideways := testutil.HitAt(t, 3, 4, l1geometry.V(10, 1000, 0), 1)
	_, _, err = m.GenericDistance(c, sideways, 3)
	assert.ErrorIs(t, err, ErrZeroTolerance)
}

func TestConeApproachDistance(t *testing.T) {
	t.Parallel()
	m := NewConeDistanceMetric(DefaultClusteringConfig())
	c := clusterOf(t, testutil.HitAt(t, 1, 2, l1geometry.V(0, 1000, 0), 1))

	tests := []struct {
		name   string
		pos    l1geometry.Vector
		wantOK bool
		want   float64
	}{
		// dAlong 20, dCut 20*0.3 + 2.5*10 = 31, dPerp 10.
		{"inside cone", l1geometry.V(10, 1020, 0), true, 10.0 / 31.0},
		{"on axis", l1geometry.V(0, 1050, 0), true, 0},
		{"behind window", l1geometry.V(0, 985, 0), false, 0},
		{"beyond window", l1geometry.V(0, 1250, 0), false, 0},
		{"too far", l1geometry.V(900, 1000, 500), false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := testutil.HitAt(t, 9, 4, tt.pos, 1)
			d, ok, err := m.GenericDistance(c, hit, 2)
			require.NoError(t, err)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.InDelta(t, tt.want, d, 1e-12)
			}
		})
	}

	t.Run("empty search layer", func(t *testing.T) {
		hit := testutil.HitAt(t, 9, 4, l1geometry.V(0, 1020, 0), 1)
		_, ok, err := m.GenericDistance(c, hit, 3)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestFitDirectionDiscountForMipTracks(t *testing.T) {
	t.Parallel()
	m := NewConeDistanceMetric(DefaultClusteringConfig())

	seed := testutil.HitAt(t, 1, 2, l1geometry.V(0, 1000, 0), 1)
	seed.PossibleMIP = true
	c := clusterOf(t, seed)
	require.True(t, c.IsMipTrack())

	hit := testutil.HitAt(t, 2, 4, l1geometry.V(10, 1020, 0), 1)
	d, ok, err := m.GenericDistance(c, hit, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 10.0/31.0, d, 1e-12)

	c.SetCurrentFit(l3clusters.FitResult{Direction: l1geometry.V(0, 1, 0), Successful: true})
	d, ok, err = m.GenericDistance(c, hit, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 10.0/31.0/5, d, 1e-12)

	c.SetIsMipTrack(false)
	d, _, err = m.GenericDistance(c, hit, 2)
	require.NoError(t, err)
	assert.InDelta(t, 10.0/31.0, d, 1e-12)
}

func TestTrackProjectionLayer(t *testing.T) {
	t.Parallel()
	m := NewConeDistanceMetric(DefaultClusteringConfig())
	track := &l2hits.Track{ID: 1, PositionAtCalorimeter: l1geometry.V(0, 1000, 0), DirectionAtCalorimeter: l1geometry.V(0, 1, 0)}
	c := trackClusterOf(t, track)

	hit := testutil.HitAt(t, 1, 1, l1geometry.V(3, 1000, 4), 1)
	d, ok, err := m.GenericDistance(c, hit, l1geometry.TrackProjectionLayer)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 5.0/25.0, d, 1e-12)

	backwards := testutil.HitAt(t, 2, 1, l1geometry.V(3, 1000, 4), 1)
	backwards.ExpectedDirection = l1geometry.V(0, -1, 0)
	_, ok, err = m.GenericDistance(c, backwards, l1geometry.TrackProjectionLayer)
	require.NoError(t, err)
	assert.False(t, ok, "hit pointing away from the track")

	plain := clusterOf(t, testutil.HitAt(t, 3, 1, l1geometry.V(0, 1000, 0), 1))
	_, ok, err = m.GenericDistance(plain, hit, l1geometry.TrackProjectionLayer)
	require.NoError(t, err)
	assert.False(t, ok, "only track-seeded clusters occupy the projection layer")
}

func TestTrackSeedDistance(t *testing.T) {
	t.Parallel()
	cfg := DefaultClusteringConfig()
	m := NewConeDistanceMetric(cfg)
	track := &l2hits.Track{ID: 1, PositionAtCalorimeter: l1geometry.V(0, 1000, 0), DirectionAtCalorimeter: l1geometry.V(0, 1, 0)}
	c := trackClusterOf(t, track, testutil.HitAt(t, 1, 1, l1geometry.V(0, 1000, 0), 1))

	hit := testutil.HitAt(t, 2, 2, l1geometry.V(5, 1010, 0), 1)
	d, ok, err := m.GenericDistance(c, hit, 1)
	require.NoError(t, err)
	require.True(t, ok)

	sep2 := 5.0*5.0 + 10.0*10.0
	flexibility := 1 + cfg.TrackPathWidth*math.Sqrt(sep2/(cfg.MaxTrackSeedSeparation*cfg.MaxTrackSeedSeparation))
	seedDistance := 5.0 / (flexibility * cfg.AdditionalPadWidthsFine * 10)
	assert.InDelta(t, seedDistance/5, d, 1e-12, "track-consistent hits are discounted")
}

func TestTrackSeedHorizon(t *testing.T) {
	t.Parallel()
	cfg := DefaultClusteringConfig()
	// Keep the cone sub-distance out of the way.
	cfg.TrackSeedCutOffLayer = 20
	m := NewConeDistanceMetric(cfg)
	track := &l2hits.Track{ID: 1, PositionAtCalorimeter: l1geometry.V(0, 1000, 0), DirectionAtCalorimeter: l1geometry.V(0, 1, 0)}

	offTrack := testutil.HitAt(t, 1, 5, l1geometry.V(40, 1050, 0), 1)
	c := trackClusterOf(t, track, offTrack)
	hit := testutil.HitAt(t, 2, 6, l1geometry.V(2, 1060, 0), 1)

	_, ok, err := m.GenericDistance(c, hit, 5)
	require.NoError(t, err)
	assert.False(t, ok, "beyond the horizon without track-like hits in the trailing window")

	require.NoError(t, c.AddHit(testutil.HitAt(t, 3, 3, l1geometry.V(0, 1030, 0), 1)))
	d, ok, err := m.GenericDistance(c, hit, 5)
	require.NoError(t, err)
	require.True(t, ok, "a track-like hit in the trailing window extends the horizon")
	assert.Less(t, d, cfg.GenericDistanceCut)
}

func TestFollowInitialDirection(t *testing.T) {
	t.Parallel()
	cfg := DefaultClusteringConfig()
	cfg.ShouldFollowInitialDirection = true
	m := NewConeDistanceMetric(cfg)
	track := &l2hits.Track{ID: 1, PositionAtCalorimeter: l1geometry.V(0, 990, 0), DirectionAtCalorimeter: l1geometry.V(0, 1, 0)}
	c := trackClusterOf(t, track, testutil.HitAt(t, 1, 2, l1geometry.V(0, 1000, 0), 1))

	hit := testutil.HitAt(t, 2, 4, l1geometry.V(10, 1020, 0), 1)
	d, ok, err := m.GenericDistance(c, hit, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 10.0/31.0/5, d, 1e-12, "cone distance along the initial direction is discounted")
}
