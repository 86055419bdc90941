package l5fragments

import (
	"fmt"
	"math"

	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
	"github.com/banshee-data/particleflow/internal/pflow/l2hits"
	"github.com/banshee-data/particleflow/internal/pflow/l3clusters"
)

// Report counts what one Resolve call changed.
type Report struct {
	SmallClustersDissolved int
	HitsReleased           int // hits freed by dissolution
	MipPhotonSplits        int // photon clusters cut from track-seeded mip segments
	MipFragmentsMerged     int
	PhotonFragmentsMerged  int
	HitsRedistributed      int // available hits attached in the last step
}

// Resolver applies the fragment split and merge steps to the clusters of one
// event.
type Resolver struct {
	cfg FragmentConfig
}

// NewResolver validates cfg and creates a resolver.
func NewResolver(cfg FragmentConfig) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		opsf("invalid fragment config: %v", err)
		return nil, err
	}
	return &Resolver{cfg: cfg}, nil
}

// Config returns the resolver's configuration.
func (r *Resolver) Config() FragmentConfig {
	return r.cfg
}

// Resolve runs, in order, small-cluster dissolution, mip/photon separation,
// mip fragment merging, photon fragment merging and redistribution of the
// hits of index that are still available. The arena is modified in place.
func (r *Resolver) Resolve(arena *l3clusters.Arena, index *l2hits.OrderedHitIndex) (Report, error) {
	var report Report

	if err := r.dissolveSmallClusters(arena, &report); err != nil {
		return report, fmt.Errorf("dissolve small clusters: %w", err)
	}
	if err := r.separateMipPhotons(arena, &report); err != nil {
		return report, fmt.Errorf("mip/photon separation: %w", err)
	}
	if err := r.mergeMipFragments(arena, &report); err != nil {
		return report, fmt.Errorf("mip fragment merging: %w", err)
	}
	if err := r.mergePhotonFragments(arena, &report); err != nil {
		return report, fmt.Errorf("photon fragment merging: %w", err)
	}
	if err := r.redistributeHits(arena, index, &report); err != nil {
		return report, fmt.Errorf("hit redistribution: %w", err)
	}

	diagf("resolved %d clusters: %d dissolved (%d hits), %d mip/photon splits, %d mip merges, %d photon merges, %d hits redistributed",
		arena.Len(), report.SmallClustersDissolved, report.HitsReleased, report.MipPhotonSplits,
		report.MipFragmentsMerged, report.PhotonFragmentsMerged, report.HitsRedistributed)
	return report, nil
}

func (r *Resolver) dissolveSmallClusters(arena *l3clusters.Arena, report *Report) error {
	var err error
	arena.Each(func(id l3clusters.ClusterID, c *l3clusters.Cluster) bool {
		if c.IsTrackSeeded() || c.NHits() >= r.cfg.MinHitsInCluster {
			return true
		}
		var released []*l2hits.CaloHit
		if released, err = arena.Remove(id); err != nil {
			return false
		}
		report.SmallClustersDissolved++
		report.HitsReleased += len(released)
		tracef("cluster %v dissolved, %d hits released", id, len(released))
		return true
	})
	return err
}

func (r *Resolver) separateMipPhotons(arena *l3clusters.Arena, report *Report) error {
	for _, id := range arena.Live() {
		c, ok := arena.Get(id)
		if !ok || !c.IsTrackSeeded() {
			continue
		}
		photon, err := r.splitPhotonFromMip(c)
		if err != nil {
			return fmt.Errorf("cluster %v: %w", id, err)
		}
		if photon == nil {
			continue
		}
		photonID := arena.Insert(photon)
		report.MipPhotonSplits++
		tracef("cluster %v: %d hits split into photon cluster %v", id, photon.NHits(), photonID)
	}
	return nil
}

// splitPhotonFromMip moves every hit after the gap that ends the cluster's
// inner mip segment into a new cluster. It returns nil when the cluster has
// no such segment and gap.
func (r *Resolver) splitPhotonFromMip(c *l3clusters.Cluster) (*l3clusters.Cluster, error) {
	layers := c.Hits().Layers()
	segment := 0
	for i, layer := range layers {
		if i > 0 && layer != layers[i-1]+1 {
			break
		}
		if !r.isMipLayer(c.Hits().HitsInLayer(layer)) {
			break
		}
		segment++
	}
	if segment < r.cfg.MinMipSegmentLayers || segment == len(layers) {
		return nil, nil
	}
	segmentEnd, next := layers[segment-1], layers[segment]
	if int(next-segmentEnd)-1 < r.cfg.MinGapLayers {
		return nil, nil
	}

	var moved []*l2hits.CaloHit
	c.Hits().Range(next, l1geometry.LayerMax, func(_ l1geometry.PseudoLayer, hits []*l2hits.CaloHit) bool {
		moved = append(moved, hits...)
		return true
	})
	for _, h := range moved {
		if err := c.RemoveHit(h); err != nil {
			return nil, err
		}
	}

	photon, err := l3clusters.NewClusterFromHit(moved[0])
	if err != nil {
		return nil, err
	}
	for _, h := range moved[1:] {
		if err := photon.AddHit(h); err != nil {
			return nil, err
		}
	}
	// A shower is never a mip daughter, whatever its first hit looks like.
	photon.SetIsMipTrack(false)
	return photon, nil
}

func (r *Resolver) isMipLayer(hits []*l2hits.CaloHit) bool {
	if len(hits) == 0 || len(hits) > r.cfg.MaxMipHitsPerLayer {
		return false
	}
	for _, h := range hits {
		if !h.PossibleMIP {
			return false
		}
	}
	return true
}

func (r *Resolver) mergeMipFragments(arena *l3clusters.Arena, report *Report) error {
	for _, parentID := range arena.Live() {
		parent, ok := arena.Get(parentID)
		if !ok || !parent.IsMipTrack() || parent.Hits().NLayers() < r.cfg.MinMipFitLayers {
			continue
		}

		for {
			fit, err := l3clusters.FitLayerCentroids(parent, parent.InnerLayer(), parent.OuterLayer())
			if err != nil {
				tracef("cluster %v: no mip extrapolation: %v", parentID, err)
				break
			}
			daughterID, daughter, found := r.closestMipDaughter(arena, parentID, parent, fit)
			if !found {
				break
			}
			if err := parent.Absorb(daughter); err != nil {
				return fmt.Errorf("cluster %v absorbing %v: %w", parentID, daughterID, err)
			}
			if _, err := arena.Remove(daughterID); err != nil {
				return err
			}
			report.MipFragmentsMerged++
			tracef("cluster %v absorbed mip fragment %v", parentID, daughterID)
		}
	}
	return nil
}

// closestMipDaughter finds the mip-like non-track cluster starting just after
// the parent whose inner-layer centroid lies closest to the parent's fitted
// line.
func (r *Resolver) closestMipDaughter(arena *l3clusters.Arena, parentID l3clusters.ClusterID, parent *l3clusters.Cluster, fit l3clusters.FitResult) (l3clusters.ClusterID, *l3clusters.Cluster, bool) {
	var (
		bestID l3clusters.ClusterID
		best   *l3clusters.Cluster
	)
	bestDistance := r.cfg.MaxMipExtrapolationDistance
	arena.Each(func(id l3clusters.ClusterID, c *l3clusters.Cluster) bool {
		if id == parentID || c.IsTrackSeeded() || !c.IsMipTrack() || c.NHits() == 0 {
			return true
		}
		gap := int(c.InnerLayer()) - int(parent.OuterLayer())
		if gap < 1 || gap > r.cfg.MaxLayerGap {
			return true
		}
		centroid, _ := c.Centroid(c.InnerLayer())
		d := fit.Direction.Cross(centroid.Sub(fit.Intercept)).Magnitude()
		if d < bestDistance {
			bestID, best, bestDistance = id, c, d
		}
		return true
	})
	return bestID, best, best != nil
}

func (r *Resolver) isPhotonFragment(c *l3clusters.Cluster) bool {
	return !c.IsTrackSeeded() && c.NHits() > 0 && c.NHits() <= r.cfg.MaxFragmentHits &&
		c.ElectromagneticEnergy() < r.cfg.MaxFragmentEnergy
}

func (r *Resolver) mergePhotonFragments(arena *l3clusters.Arena, report *Report) error {
	var fragments, targets []l3clusters.ClusterID
	arena.Each(func(id l3clusters.ClusterID, c *l3clusters.Cluster) bool {
		if r.isPhotonFragment(c) {
			fragments = append(fragments, id)
		} else {
			targets = append(targets, id)
		}
		return true
	})

	for _, fragmentID := range fragments {
		fragment, ok := arena.Get(fragmentID)
		if !ok {
			continue
		}
		var (
			bestID l3clusters.ClusterID
			best   *l3clusters.Cluster
		)
		bestDistance := r.cfg.MaxFragmentMergeDistance
		for _, targetID := range targets {
			target, ok := arena.Get(targetID)
			if !ok {
				continue
			}
			if d, ok := closestHitDistance(fragment, target); ok && d < bestDistance {
				bestID, best, bestDistance = targetID, target, d
			}
		}
		if best == nil {
			continue
		}
		if err := best.Absorb(fragment); err != nil {
			return fmt.Errorf("cluster %v absorbing %v: %w", bestID, fragmentID, err)
		}
		if _, err := arena.Remove(fragmentID); err != nil {
			return err
		}
		report.PhotonFragmentsMerged++
		tracef("cluster %v absorbed photon fragment %v (d=%.1f)", bestID, fragmentID, bestDistance)
	}
	return nil
}

func (r *Resolver) redistributeHits(arena *l3clusters.Arena, index *l2hits.OrderedHitIndex, report *Report) error {
	for _, h := range index.Hits() {
		if !h.IsAvailable() {
			continue
		}

		var best *l3clusters.Cluster
		bestDistance := r.cfg.MaxRecombinationDistance
		arena.Each(func(_ l3clusters.ClusterID, c *l3clusters.Cluster) bool {
			centroid, ok := c.MeanPosition()
			if !ok {
				return true
			}
			cos, err := h.Position.CosOpeningAngle(centroid)
			if err != nil || cos < r.cfg.MinCosOpeningAngle {
				return true
			}
			if d, ok := distanceToClosestHit(h.Position, c); ok && d < bestDistance {
				best, bestDistance = c, d
			}
			return true
		})
		if best == nil {
			continue
		}
		if err := best.AddHit(h); err != nil {
			return fmt.Errorf("hit %d: %w", h.ID, err)
		}
		report.HitsRedistributed++
	}
	return nil
}

// closestHitDistance is the smallest separation between any hit of a and any
// hit of b.
func closestHitDistance(a, b *l3clusters.Cluster) (float64, bool) {
	smallest := math.MaxFloat64
	found := false
	for _, h := range a.Hits().Hits() {
		if d, ok := distanceToClosestHit(h.Position, b); ok && d < smallest {
			smallest, found = d, true
		}
	}
	return smallest, found
}

func distanceToClosestHit(p l1geometry.Vector, c *l3clusters.Cluster) (float64, bool) {
	smallest2 := math.MaxFloat64
	c.Hits().Each(func(_ l1geometry.PseudoLayer, hits []*l2hits.CaloHit) bool {
		for _, h := range hits {
			if d2 := p.Sub(h.Position).MagnitudeSquared(); d2 < smallest2 {
				smallest2 = d2
			}
		}
		return true
	})
	if smallest2 == math.MaxFloat64 {
		return 0, false
	}
	return math.Sqrt(smallest2), true
}
