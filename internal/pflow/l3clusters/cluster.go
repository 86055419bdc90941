package l3clusters

import (
	"fmt"

	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
	"github.com/banshee-data/particleflow/internal/pflow/l2hits"
)

// Cluster is an owned aggregate of hits keyed by pseudo-layer, optionally
// seeded by a track. Every hit in a cluster is claimed (unavailable) and
// belongs to exactly this cluster.
type Cluster struct {
	hits *l2hits.OrderedHitIndex

	hadronicEnergy        float64
	electromagneticEnergy float64
	nPossibleMIP          int

	trackSeed        *l2hits.Track
	initialDirection l1geometry.Vector
	currentFit       FitResult
	isMipTrack       bool
}

// NewClusterFromHit creates a single-hit cluster. The hit is claimed; its
// expected direction (or, failing that, its position) becomes the initial
// direction.
func NewClusterFromHit(h *l2hits.CaloHit) (*Cluster, error) {
	dir, err := h.ExpectedDirection.Unit()
	if err != nil {
		if dir, err = h.Position.Unit(); err != nil {
			return nil, fmt.Errorf("hit %d has no usable direction: %w", h.ID, err)
		}
	}

	c := &Cluster{
		hits:             l2hits.NewOrderedHitIndex(),
		initialDirection: dir,
		isMipTrack:       h.PossibleMIP,
	}
	if err := c.AddHit(h); err != nil {
		return nil, err
	}
	return c, nil
}

// NewClusterFromTrack creates an empty cluster that uses the track's
// calorimeter-face direction as its seed direction.
func NewClusterFromTrack(t *l2hits.Track) (*Cluster, error) {
	dir, err := t.DirectionAtCalorimeter.Unit()
	if err != nil {
		return nil, fmt.Errorf("track %d has no direction: %w", t.ID, err)
	}
	return &Cluster{
		hits:             l2hits.NewOrderedHitIndex(),
		trackSeed:        t,
		initialDirection: dir,
		isMipTrack:       true,
	}, nil
}

// AddHit claims a hit and adds it. An unavailable hit is rejected and the
// cluster is left unchanged.
func (c *Cluster) AddHit(h *l2hits.CaloHit) error {
	if err := h.Claim(); err != nil {
		return err
	}
	if err := c.hits.Add(h); err != nil {
		h.Release()
		return err
	}
	c.accumulate(h, 1)
	return nil
}

// RemoveHit removes a hit and makes it available again.
func (c *Cluster) RemoveHit(h *l2hits.CaloHit) error {
	if err := c.hits.Remove(h); err != nil {
		return err
	}
	h.Release()
	c.accumulate(h, -1)
	return nil
}

// Absorb moves every hit of other into c, leaving other empty. Hits stay
// claimed throughout. The track seed of other is dropped when c already has
// one.
func (c *Cluster) Absorb(other *Cluster) error {
	if other == c {
		return fmt.Errorf("cluster cannot absorb itself: %w", l1geometry.ErrInvalidParameter)
	}
	for _, h := range other.hits.Hits() {
		if err := other.hits.Remove(h); err != nil {
			return err
		}
		other.accumulate(h, -1)
		if err := c.hits.Add(h); err != nil {
			return err
		}
		c.accumulate(h, 1)
	}
	if c.trackSeed == nil && other.trackSeed != nil {
		c.trackSeed = other.trackSeed
		c.initialDirection = other.initialDirection
	}
	other.trackSeed = nil
	return nil
}

// Dissolve removes and releases every hit, returning them in layer order.
func (c *Cluster) Dissolve() ([]*l2hits.CaloHit, error) {
	released := c.hits.Hits()
	for _, h := range released {
		if err := c.hits.Remove(h); err != nil {
			return nil, err
		}
		h.Release()
	}
	c.hadronicEnergy = 0
	c.electromagneticEnergy = 0
	c.nPossibleMIP = 0
	return released, nil
}

func (c *Cluster) accumulate(h *l2hits.CaloHit, sign float64) {
	c.hadronicEnergy += sign * h.HadronicEnergy
	c.electromagneticEnergy += sign * h.ElectromagneticEnergy
	if h.PossibleMIP {
		c.nPossibleMIP += int(sign)
	}
}

// Hits returns the cluster's ordered hits. The index is owned by the cluster
// and must only be read.
func (c *Cluster) Hits() *l2hits.OrderedHitIndex { return c.hits }

// NHits returns the number of hits.
func (c *Cluster) NHits() int { return c.hits.Len() }

// InnerLayer returns the innermost occupied pseudo-layer, or LayerMax.
func (c *Cluster) InnerLayer() l1geometry.PseudoLayer { return c.hits.InnerLayer() }

// OuterLayer returns the outermost occupied pseudo-layer, or LayerMax.
func (c *Cluster) OuterLayer() l1geometry.PseudoLayer { return c.hits.OuterLayer() }

// NLayersSpanned returns outer - inner + 1, or 0 for an empty cluster.
func (c *Cluster) NLayersSpanned() int {
	if c.hits.Len() == 0 {
		return 0
	}
	return int(c.OuterLayer()-c.InnerLayer()) + 1
}

// HadronicEnergy returns the summed hadronic energy estimate.
func (c *Cluster) HadronicEnergy() float64 { return c.hadronicEnergy }

// ElectromagneticEnergy returns the summed electromagnetic energy estimate.
func (c *Cluster) ElectromagneticEnergy() float64 { return c.electromagneticEnergy }

// MipFraction returns the fraction of hits flagged as possible MIPs.
func (c *Cluster) MipFraction() float64 {
	if c.hits.Len() == 0 {
		return 0
	}
	return float64(c.nPossibleMIP) / float64(c.hits.Len())
}

// TrackSeed returns the seeding track, or nil.
func (c *Cluster) TrackSeed() *l2hits.Track { return c.trackSeed }

// IsTrackSeeded reports whether a track seeded the cluster.
func (c *Cluster) IsTrackSeeded() bool { return c.trackSeed != nil }

// InitialDirection returns the seed direction (unit vector).
func (c *Cluster) InitialDirection() l1geometry.Vector { return c.initialDirection }

// CurrentFit returns the most recent working-direction fit.
func (c *Cluster) CurrentFit() FitResult { return c.currentFit }

// SetCurrentFit replaces the working-direction fit.
func (c *Cluster) SetCurrentFit(f FitResult) { c.currentFit = f }

// IsMipTrack reports whether the cluster still looks like a minimum-ionising
// track.
func (c *Cluster) IsMipTrack() bool { return c.isMipTrack }

// SetIsMipTrack sets the mip-track classification.
func (c *Cluster) SetIsMipTrack(v bool) { c.isMipTrack = v }

// Centroid returns the unweighted mean position of the hits in a layer.
func (c *Cluster) Centroid(layer l1geometry.PseudoLayer) (l1geometry.Vector, bool) {
	hits := c.hits.HitsInLayer(layer)
	if len(hits) == 0 {
		return l1geometry.Vector{}, false
	}
	var sum l1geometry.Vector
	for _, h := range hits {
		sum = sum.Add(h.Position)
	}
	return sum.Scale(1 / float64(len(hits))), true
}

// MeanPosition returns the unweighted mean position of all hits.
func (c *Cluster) MeanPosition() (l1geometry.Vector, bool) {
	if c.hits.Len() == 0 {
		return l1geometry.Vector{}, false
	}
	var sum l1geometry.Vector
	c.hits.Each(func(_ l1geometry.PseudoLayer, hits []*l2hits.CaloHit) bool {
		for _, h := range hits {
			sum = sum.Add(h.Position)
		}
		return true
	})
	return sum.Scale(1 / float64(c.hits.Len())), true
}
