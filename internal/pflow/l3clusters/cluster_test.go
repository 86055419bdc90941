package l3clusters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
	"github.com/banshee-data/particleflow/internal/pflow/l2hits"
)

func newHit(t *testing.T, id int, layer l1geometry.PseudoLayer, pos l1geometry.Vector) *l2hits.CaloHit {
	t.Helper()
	h := &l2hits.CaloHit{
		ID:                    id,
		Position:              pos,
		ExpectedDirection:     pos,
		CellLengthScale:       10,
		Type:                  l2hits.HitTypeECal,
		Region:                l2hits.RegionBarrel,
		InputEnergy:           0.1,
		ElectromagneticEnergy: 0.1,
		HadronicEnergy:        0.2,
	}
	require.NoError(t, h.SetPseudoLayer(layer))
	return h
}

func TestNewClusterFromHit(t *testing.T) {
	h := newHit(t, 1, 3, l1geometry.V(0, 1000, 0))
	h.PossibleMIP = true

	c, err := NewClusterFromHit(h)
	require.NoError(t, err)
	assert.False(t, h.IsAvailable())
	assert.Equal(t, 1, c.NHits())
	assert.Equal(t, l1geometry.V(0, 1, 0), c.InitialDirection())
	assert.True(t, c.IsMipTrack())
	assert.False(t, c.IsTrackSeeded())
	assert.Equal(t, 1.0, c.MipFraction())

	// A claimed hit cannot seed a second cluster.
	_, err = NewClusterFromHit(h)
	assert.ErrorIs(t, err, l2hits.ErrAlreadyClaimed)
}

func TestNewClusterFromHit_FallsBackToPosition(t *testing.T) {
	h := newHit(t, 1, 3, l1geometry.V(0, 0, 500))
	h.ExpectedDirection = l1geometry.Vector{}

	c, err := NewClusterFromHit(h)
	require.NoError(t, err)
	assert.Equal(t, l1geometry.V(0, 0, 1), c.InitialDirection())

	origin := newHit(t, 2, 1, l1geometry.Vector{})
	_, err = NewClusterFromHit(origin)
	assert.ErrorIs(t, err, l1geometry.ErrInvalidParameter)
	assert.True(t, origin.IsAvailable(), "failed seed leaves hit available")
}

func TestNewClusterFromTrack(t *testing.T) {
	track := &l2hits.Track{ID: 7, DirectionAtCalorimeter: l1geometry.V(0, 2, 0)}
	c, err := NewClusterFromTrack(track)
	require.NoError(t, err)
	assert.True(t, c.IsTrackSeeded())
	assert.Same(t, track, c.TrackSeed())
	assert.Equal(t, l1geometry.V(0, 1, 0), c.InitialDirection())
	assert.Equal(t, 0, c.NHits())
	assert.Equal(t, 0, c.NLayersSpanned())
	assert.Equal(t, l1geometry.LayerMax, c.InnerLayer())

	_, err = NewClusterFromTrack(&l2hits.Track{ID: 8})
	assert.ErrorIs(t, err, l1geometry.ErrInvalidParameter)
}

func TestCluster_AddRemoveEnergyBookkeeping(t *testing.T) {
	a := newHit(t, 1, 2, l1geometry.V(0, 1000, 0))
	b := newHit(t, 2, 5, l1geometry.V(0, 1030, 0))
	b.PossibleMIP = true

	c, err := NewClusterFromHit(a)
	require.NoError(t, err)
	require.NoError(t, c.AddHit(b))

	assert.InDelta(t, 0.4, c.HadronicEnergy(), 1e-12)
	assert.InDelta(t, 0.2, c.ElectromagneticEnergy(), 1e-12)
	assert.Equal(t, l1geometry.PseudoLayer(2), c.InnerLayer())
	assert.Equal(t, l1geometry.PseudoLayer(5), c.OuterLayer())
	assert.Equal(t, 4, c.NLayersSpanned())
	assert.Equal(t, 0.5, c.MipFraction())

	assert.ErrorIs(t, c.AddHit(b), l2hits.ErrAlreadyClaimed)
	assert.Equal(t, 2, c.NHits(), "rejected add leaves cluster unchanged")

	require.NoError(t, c.RemoveHit(b))
	assert.True(t, b.IsAvailable())
	assert.InDelta(t, 0.2, c.HadronicEnergy(), 1e-12)
	assert.Equal(t, 0.0, c.MipFraction())
}

func TestCluster_Centroid(t *testing.T) {
	a := newHit(t, 1, 4, l1geometry.V(10, 1000, 0))
	b := newHit(t, 2, 4, l1geometry.V(30, 1000, 20))

	c, err := NewClusterFromHit(a)
	require.NoError(t, err)
	require.NoError(t, c.AddHit(b))

	centroid, ok := c.Centroid(4)
	require.True(t, ok)
	assert.Equal(t, l1geometry.V(20, 1000, 10), centroid)

	_, ok = c.Centroid(5)
	assert.False(t, ok)

	mean, ok := c.MeanPosition()
	require.True(t, ok)
	assert.Equal(t, centroid, mean)
}

func TestCluster_AbsorbAndDissolve(t *testing.T) {
	track := &l2hits.Track{ID: 1, DirectionAtCalorimeter: l1geometry.V(0, 1, 0)}
	parent, err := NewClusterFromTrack(track)
	require.NoError(t, err)
	require.NoError(t, parent.AddHit(newHit(t, 1, 1, l1geometry.V(0, 1000, 0))))

	daughter, err := NewClusterFromHit(newHit(t, 2, 3, l1geometry.V(5, 1020, 0)))
	require.NoError(t, err)
	require.NoError(t, daughter.AddHit(newHit(t, 3, 4, l1geometry.V(5, 1030, 0))))

	require.NoError(t, parent.Absorb(daughter))
	assert.Equal(t, 3, parent.NHits())
	assert.Equal(t, 0, daughter.NHits())
	assert.Zero(t, daughter.HadronicEnergy())
	assert.Same(t, track, parent.TrackSeed())
	for _, h := range parent.Hits().Hits() {
		assert.False(t, h.IsAvailable(), "absorbed hits stay claimed")
	}

	assert.ErrorIs(t, parent.Absorb(parent), l1geometry.ErrInvalidParameter)

	released, err := parent.Dissolve()
	require.NoError(t, err)
	assert.Len(t, released, 3)
	assert.Equal(t, 0, parent.NHits())
	for _, h := range released {
		assert.True(t, h.IsAvailable())
	}
}

func TestCluster_HitsSharingAnID(t *testing.T) {
	first := newHit(t, 0, 1, l1geometry.V(0, 1000, 0))
	second := newHit(t, 0, 1, l1geometry.V(10, 1000, 0))
	other, err := NewClusterFromHit(first)
	require.NoError(t, err)
	require.NoError(t, other.AddHit(second))

	c, err := NewClusterFromHit(newHit(t, 1, 2, l1geometry.V(0, 1010, 0)))
	require.NoError(t, err)
	require.NoError(t, c.Absorb(other))
	assert.Equal(t, 3, c.NHits())
	assert.Equal(t, 0, other.NHits())

	require.NoError(t, c.RemoveHit(second))
	assert.True(t, second.IsAvailable())
	assert.True(t, c.Hits().Contains(first))

	released, err := c.Dissolve()
	require.NoError(t, err)
	assert.Len(t, released, 2)
	assert.True(t, first.IsAvailable())
}
