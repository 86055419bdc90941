package l5fragments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
	"github.com/banshee-data/particleflow/internal/pflow/l2hits"
	"github.com/banshee-data/particleflow/internal/pflow/l3clusters"
	"github.com/banshee-data/particleflow/internal/pflow/l4clustering"
	"github.com/banshee-data/particleflow/internal/testutil"
)

func mustResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver(DefaultFragmentConfig())
	require.NoError(t, err)
	return r
}

func insertCluster(t *testing.T, arena *l3clusters.Arena, hits ...*l2hits.CaloHit) (l3clusters.ClusterID, *l3clusters.Cluster) {
	t.Helper()
	c, err := l3clusters.NewClusterFromHit(hits[0])
	require.NoError(t, err)
	for _, h := range hits[1:] {
		require.NoError(t, c.AddHit(h))
	}
	return arena.Insert(c), c
}

func insertTrackCluster(t *testing.T, arena *l3clusters.Arena, hits ...*l2hits.CaloHit) (l3clusters.ClusterID, *l3clusters.Cluster) {
	t.Helper()
	c, err := l3clusters.NewClusterFromTrack(&l2hits.Track{
		ID:                     1,
		PositionAtCalorimeter:  l1geometry.V(0, 990, 0),
		DirectionAtCalorimeter: l1geometry.V(0, 1, 0),
		CanSeedCluster:         true,
	})
	require.NoError(t, err)
	for _, h := range hits {
		require.NoError(t, c.AddHit(h))
	}
	return arena.Insert(c), c
}

// line returns one hit per layer in [first, last] along +y, 10 mm apart, with
// the given x offset.
func line(t *testing.T, firstID int, first, last l1geometry.PseudoLayer, x float64, mip bool) []*l2hits.CaloHit {
	var hits []*l2hits.CaloHit
	for layer := first; layer <= last; layer++ {
		h := testutil.HitAt(t, firstID+len(hits), layer, l1geometry.V(x, 1000+10*float64(layer-1), 0), 1)
		h.PossibleMIP = mip
		hits = append(hits, h)
	}
	return hits
}

func TestDissolveSmallClusters(t *testing.T) {
	t.Parallel()
	arena := l3clusters.NewArena()
	small := line(t, 1, 1, 2, 0, false)
	insertCluster(t, arena, small...)
	insertCluster(t, arena, line(t, 10, 1, 4, 100, false)...)
	insertTrackCluster(t, arena, line(t, 20, 1, 1, 200, true)...)

	var report Report
	require.NoError(t, mustResolver(t).dissolveSmallClusters(arena, &report))

	assert.Equal(t, 1, report.SmallClustersDissolved)
	assert.Equal(t, 2, report.HitsReleased)
	assert.Equal(t, 2, arena.Len(), "track-seeded clusters are never dissolved")
	for _, h := range small {
		assert.True(t, h.IsAvailable(), "hit %d", h.ID)
	}
}

func TestSeparateMipPhotons(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mipLayers   l1geometry.PseudoLayer
		showerStart l1geometry.PseudoLayer
		trackSeeded bool
		wantSplit   bool
	}{
		{"segment then gap", 5, 8, true, true},
		{"minimal segment and gap", 4, 7, true, true},
		{"gap too short", 5, 7, true, false},
		{"no gap", 5, 6, true, false},
		{"segment too short", 3, 6, true, false},
		{"not track seeded", 5, 8, false, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hits := line(t, 1, 1, tt.mipLayers, 0, true)
			var shower []*l2hits.CaloHit
			for layer := tt.showerStart; layer < tt.showerStart+3; layer++ {
				for _, dx := range []float64{-10, 0, 10} {
					shower = append(shower, testutil.HitAt(t, 100+len(shower), layer, l1geometry.V(dx, 1000+10*float64(layer-1), 0), 1))
				}
			}
			hits = append(hits, shower...)

			arena := l3clusters.NewArena()
			var parent *l3clusters.Cluster
			if tt.trackSeeded {
				_, parent = insertTrackCluster(t, arena, hits...)
			} else {
				_, parent = insertCluster(t, arena, hits...)
			}

			var report Report
			require.NoError(t, mustResolver(t).separateMipPhotons(arena, &report))

			if !tt.wantSplit {
				assert.Zero(t, report.MipPhotonSplits)
				assert.Equal(t, 1, arena.Len())
				assert.Equal(t, len(hits), parent.NHits())
				return
			}
			assert.Equal(t, 1, report.MipPhotonSplits)
			require.Equal(t, 2, arena.Len())
			assert.Equal(t, int(tt.mipLayers), parent.NHits())
			assert.Equal(t, tt.mipLayers, parent.OuterLayer())

			photon := arena.Clusters()[1]
			assert.False(t, photon.IsTrackSeeded())
			assert.False(t, photon.IsMipTrack())
			assert.Equal(t, len(shower), photon.NHits())
			assert.Equal(t, tt.showerStart, photon.InnerLayer())
			for _, h := range hits {
				assert.False(t, h.IsAvailable(), "hit %d stays claimed", h.ID)
			}
		})
	}
}

func TestResolveKeepsSplitPhotonApart(t *testing.T) {
	t.Parallel()
	hits := line(t, 1, 1, 4, 0, true)
	var shower []*l2hits.CaloHit
	for layer := l1geometry.PseudoLayer(7); layer <= 9; layer++ {
		for _, dx := range []float64{-10, 0, 10} {
			shower = append(shower, testutil.HitAt(t, 100+len(shower), layer, l1geometry.V(dx, 1000+10*float64(layer-1), 0), 1))
		}
	}
	shower[1].PossibleMIP = true
	hits = append(hits, shower...)

	arena := l3clusters.NewArena()
	_, parent := insertTrackCluster(t, arena, hits...)

	report, err := mustResolver(t).Resolve(arena, testutil.IndexOf(t, hits...))
	require.NoError(t, err)

	assert.Equal(t, 1, report.MipPhotonSplits)
	assert.Zero(t, report.MipFragmentsMerged)
	require.Equal(t, 2, arena.Len())
	assert.Equal(t, 4, parent.NHits())

	photon := arena.Clusters()[1]
	assert.False(t, photon.IsMipTrack())
	assert.Equal(t, len(shower), photon.NHits())
}

func TestMergeMipFragments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		parentLayers  l1geometry.PseudoLayer
		daughterStart l1geometry.PseudoLayer
		daughterX     float64
		daughterMip   bool
		wantMerge     bool
	}{
		{"aligned daughter", 5, 8, 3, true, true},
		{"largest gap", 5, 9, 3, true, true},
		{"gap too large", 5, 10, 3, true, false},
		{"off the extrapolated line", 5, 8, 80, true, false},
		{"daughter not mip-like", 5, 8, 3, false, false},
		{"parent too short to fit", 3, 6, 3, true, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			arena := l3clusters.NewArena()
			_, parent := insertCluster(t, arena, line(t, 1, 1, tt.parentLayers, 0, true)...)
			require.True(t, parent.IsMipTrack())
			insertCluster(t, arena, line(t, 50, tt.daughterStart, tt.daughterStart+1, tt.daughterX, tt.daughterMip)...)

			var report Report
			require.NoError(t, mustResolver(t).mergeMipFragments(arena, &report))

			if tt.wantMerge {
				assert.Equal(t, 1, report.MipFragmentsMerged)
				assert.Equal(t, 1, arena.Len())
				assert.Equal(t, int(tt.parentLayers)+2, parent.NHits())
				return
			}
			assert.Zero(t, report.MipFragmentsMerged)
			assert.Equal(t, 2, arena.Len())
		})
	}
}

func TestMergeMipFragmentsChains(t *testing.T) {
	t.Parallel()
	arena := l3clusters.NewArena()
	_, parent := insertCluster(t, arena, line(t, 1, 1, 5, 0, true)...)
	insertCluster(t, arena, line(t, 20, 8, 9, 2, true)...)
	insertCluster(t, arena, line(t, 30, 12, 13, -2, true)...)

	var report Report
	require.NoError(t, mustResolver(t).mergeMipFragments(arena, &report))

	assert.Equal(t, 2, report.MipFragmentsMerged, "the second fragment is in reach once the first is absorbed")
	assert.Equal(t, 1, arena.Len())
	assert.Equal(t, 9, parent.NHits())
}

func TestMergePhotonFragments(t *testing.T) {
	t.Parallel()
	arena := l3clusters.NewArena()
	_, main := insertCluster(t, arena, line(t, 1, 1, 5, 0, false)...)

	fragment := func(id int, x float64) []*l2hits.CaloHit {
		return []*l2hits.CaloHit{
			testutil.HitAt(t, id, 2, l1geometry.V(x, 1010, 0), 0.05),
			testutil.HitAt(t, id+1, 3, l1geometry.V(x, 1020, 0), 0.05),
		}
	}
	insertCluster(t, arena, fragment(10, 50)...)
	insertCluster(t, arena, fragment(20, 500)...)
	insertCluster(t, arena, fragment(30, 560)...)

	var report Report
	require.NoError(t, mustResolver(t).mergePhotonFragments(arena, &report))

	assert.Equal(t, 1, report.PhotonFragmentsMerged)
	assert.Equal(t, 3, arena.Len(), "fragments never merge into each other")
	assert.Equal(t, 7, main.NHits())
}

func TestRedistributeHits(t *testing.T) {
	t.Parallel()

	t.Run("distance and angle limits", func(t *testing.T) {
		t.Parallel()
		arena := l3clusters.NewArena()
		a1 := testutil.HitAt(t, 1, 1, l1geometry.V(100, 100, 0), 1)
		a2 := testutil.HitAt(t, 2, 2, l1geometry.V(100, 110, 0), 1)
		_, c := insertCluster(t, arena, a1, a2)

		joiner := testutil.HitAt(t, 3, 3, l1geometry.V(130, 120, 0), 1)
		tooFar := testutil.HitAt(t, 4, 3, l1geometry.V(300, 315, 0), 1)
		wrongAngle := testutil.HitAt(t, 5, 3, l1geometry.V(-50, 150, 0), 1)
		index := testutil.IndexOf(t, a1, a2, joiner, tooFar, wrongAngle)

		var report Report
		require.NoError(t, mustResolver(t).redistributeHits(arena, index, &report))

		assert.Equal(t, 1, report.HitsRedistributed)
		assert.Equal(t, 3, c.NHits())
		assert.False(t, joiner.IsAvailable())
		assert.True(t, tooFar.IsAvailable())
		assert.True(t, wrongAngle.IsAvailable())
	})

	t.Run("closest cluster wins", func(t *testing.T) {
		t.Parallel()
		arena := l3clusters.NewArena()
		_, a := insertCluster(t, arena,
			testutil.HitAt(t, 1, 1, l1geometry.V(100, 100, 0), 1),
			testutil.HitAt(t, 2, 2, l1geometry.V(100, 110, 0), 1))
		_, b := insertCluster(t, arena,
			testutil.HitAt(t, 3, 1, l1geometry.V(200, 180, 0), 1),
			testutil.HitAt(t, 4, 2, l1geometry.V(200, 190, 0), 1))

		h := testutil.HitAt(t, 5, 3, l1geometry.V(160, 150, 0), 1)
		var report Report
		require.NoError(t, mustResolver(t).redistributeHits(arena, testutil.IndexOf(t, h), &report))

		assert.Equal(t, 2, a.NHits())
		assert.Equal(t, 3, b.NHits())
	})
}

func TestResolveGeneratedEvent(t *testing.T) {
	t.Parallel()
	ev := testutil.GenerateEvent(testutil.EventConfig{Seed: 11, Photons: 4, Tracks: 3, Noise: 20})
	index := testutil.MustBuildIndex(t, ev, testutil.MustCalculator(t))

	engine, err := l4clustering.NewEngine(l4clustering.DefaultClusteringConfig())
	require.NoError(t, err)
	res, err := engine.Run(context.Background(), index, ev.Tracks)
	require.NoError(t, err)
	before := res.Arena.Len()

	report, err := mustResolver(t).Resolve(res.Arena, index)
	require.NoError(t, err)

	assert.Equal(t, before-report.SmallClustersDissolved+report.MipPhotonSplits-
		report.MipFragmentsMerged-report.PhotonFragmentsMerged, res.Arena.Len())

	owner := make(map[int]bool)
	for _, c := range res.Clusters() {
		assert.NotZero(t, c.NHits())
		for _, h := range c.Hits().Hits() {
			require.False(t, owner[h.ID], "hit %d in two clusters", h.ID)
			owner[h.ID] = true
		}
	}
	for _, h := range ev.Hits {
		assert.Equal(t, owner[h.ID], !h.IsAvailable(), "hit %d claim state", h.ID)
	}
}
