package l4clustering

import (
	"fmt"
	"math"

	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
	"github.com/banshee-data/particleflow/internal/pflow/l2hits"
	"github.com/banshee-data/particleflow/internal/pflow/l3clusters"
)

// ErrZeroTolerance is returned when a distance tolerance evaluates to zero.
// It wraps l1geometry.ErrFailure and aborts the clustering run.
var ErrZeroTolerance = fmt.Errorf("zero distance tolerance: %w", l1geometry.ErrFailure)

// trackSeedDiscount divides a sub-distance that is already considered
// direction- or track-consistent.
const trackSeedDiscount = 5.0

// DistanceMetric scores the compatibility of a candidate hit with a cluster,
// comparing against the cluster's hits in searchLayer. Lower is better.
//
// ok=false means the metric has no opinion (the pair is simply not a match).
// A non-nil error is a hard failure that aborts the run.
type DistanceMetric interface {
	GenericDistance(c *l3clusters.Cluster, hit *l2hits.CaloHit, searchLayer l1geometry.PseudoLayer) (distance float64, ok bool, err error)
}

// ConeDistanceMetric is the default generic distance: the minimum of the
// cone-approach, same-layer and track-seed sub-distances.
type ConeDistanceMetric struct {
	cfg ClusteringConfig

	coneApproachMaxSeparation2 float64
	maxTrackSeedSeparation2    float64
}

// NewConeDistanceMetric creates a metric from the distance fields of cfg.
func NewConeDistanceMetric(cfg ClusteringConfig) *ConeDistanceMetric {
	return &ConeDistanceMetric{
		cfg:                        cfg,
		coneApproachMaxSeparation2: cfg.ConeApproachMaxSeparation * cfg.ConeApproachMaxSeparation,
		maxTrackSeedSeparation2:    cfg.MaxTrackSeedSeparation * cfg.MaxTrackSeedSeparation,
	}
}

// GenericDistance implements DistanceMetric. Layer 0 is the only track
// projection layer; the interaction-point layer reported by the calculator
// is a physical layer and is handled like any other.
func (m *ConeDistanceMetric) GenericDistance(c *l3clusters.Cluster, hit *l2hits.CaloHit, searchLayer l1geometry.PseudoLayer) (float64, bool, error) {
	if searchLayer == l1geometry.TrackProjectionLayer && c.IsTrackSeeded() {
		return m.trackProjectionDistance(c, hit)
	}

	layerHits := c.Hits().HitsInLayer(searchLayer)
	if len(layerHits) == 0 {
		return 0, false, nil
	}
	if hit.PseudoLayer() == searchLayer {
		return m.sameLayerDistance(hit, layerHits)
	}

	useTrackSeed := m.cfg.ShouldUseTrackSeed && c.IsTrackSeeded()
	followInitialDirection := m.cfg.ShouldFollowInitialDirection && useTrackSeed && searchLayer > m.cfg.TrackSeedCutOffLayer

	smallest := math.MaxFloat64
	found := false
	consider := func(d float64) {
		found = true
		if d < smallest {
			smallest = d
		}
	}

	if !useTrackSeed || searchLayer > m.cfg.TrackSeedCutOffLayer {
		d, ok, err := m.coneApproachToHits(hit, layerHits, c.InitialDirection())
		if err != nil {
			return 0, false, err
		}
		if ok {
			if followInitialDirection {
				d /= trackSeedDiscount
			}
			consider(d)
		}

		if fit := c.CurrentFit(); fit.Successful {
			d, ok, err := m.coneApproachToHits(hit, layerHits, fit.Direction)
			if err != nil {
				return 0, false, err
			}
			if ok {
				if c.IsMipTrack() {
					d /= trackSeedDiscount
				}
				consider(d)
			}
		}
	}

	if useTrackSeed && !followInitialDirection {
		d, ok, err := m.trackSeedDistance(c, hit, searchLayer)
		if err != nil {
			return 0, false, err
		}
		if ok {
			if d < m.cfg.GenericDistanceCut {
				d /= trackSeedDiscount
			}
			consider(d)
		}
	}

	if !found {
		return 0, false, nil
	}
	return smallest, true, nil
}

// trackProjectionDistance handles a search of the track projection layer:
// the cone starts at the track's calorimeter-face position.
func (m *ConeDistanceMetric) trackProjectionDistance(c *l3clusters.Cluster, hit *l2hits.CaloHit) (float64, bool, error) {
	track := c.TrackSeed()
	trackDirection := c.InitialDirection()

	hitDirection := hit.ExpectedDirection
	if hitDirection.IsZero() {
		hitDirection = hit.Position
	}
	cos, err := hitDirection.CosOpeningAngle(trackDirection)
	if err != nil || cos < m.cfg.MinHitTrackCosAngle {
		return 0, false, nil
	}
	return m.coneApproach(hit, track.PositionAtCalorimeter, trackDirection)
}

// sameLayerDistance is the smallest separation to a same-region cluster hit
// divided by the same-layer pad-width tolerance.
func (m *ConeDistanceMetric) sameLayerDistance(hit *l2hits.CaloHit, layerHits []*l2hits.CaloHit) (float64, bool, error) {
	padWidths := m.cfg.SameLayerPadWidthsCoarse
	if hit.Granularity().IsFine() {
		padWidths = m.cfg.SameLayerPadWidthsFine
	}
	dCut := padWidths * hit.CellLengthScale
	if dCut == 0 {
		return 0, false, fmt.Errorf("same-layer tolerance for hit %d: %w", hit.ID, ErrZeroTolerance)
	}

	smallest2 := math.MaxFloat64
	for _, h := range layerHits {
		if h.Region != hit.Region {
			continue
		}
		if d2 := hit.Position.Sub(h.Position).MagnitudeSquared(); d2 < smallest2 {
			smallest2 = d2
		}
	}
	if smallest2 == math.MaxFloat64 {
		return 0, false, nil
	}
	return math.Sqrt(smallest2) / dCut, true, nil
}

// coneApproachToHits is the smallest cone-approach distance from any
// same-region cluster hit along direction.
func (m *ConeDistanceMetric) coneApproachToHits(hit *l2hits.CaloHit, layerHits []*l2hits.CaloHit, direction l1geometry.Vector) (float64, bool, error) {
	smallest := math.MaxFloat64
	found := false
	for _, h := range layerHits {
		if h.Region != hit.Region {
			continue
		}
		d, ok, err := m.coneApproach(hit, h.Position, direction)
		if err != nil {
			return 0, false, err
		}
		if ok && d < smallest {
			smallest = d
			found = true
		}
	}
	return smallest, found, nil
}

// coneApproach decomposes hit - from into components along and across
// direction. The tolerance opens linearly with the distance along the cone.
func (m *ConeDistanceMetric) coneApproach(hit *l2hits.CaloHit, from, direction l1geometry.Vector) (float64, bool, error) {
	diff := hit.Position.Sub(from)
	if diff.MagnitudeSquared() > m.coneApproachMaxSeparation2 {
		return 0, false, nil
	}

	dAlong := direction.Dot(diff)
	if dAlong >= m.cfg.MaxClusterDirProjection || dAlong <= m.cfg.MinClusterDirProjection {
		return 0, false, nil
	}

	tanConeAngle, padWidths := m.cfg.TanConeAngleCoarse, m.cfg.AdditionalPadWidthsCoarse
	if hit.Granularity().IsFine() {
		tanConeAngle, padWidths = m.cfg.TanConeAngleFine, m.cfg.AdditionalPadWidthsFine
	}
	dCut := math.Abs(dAlong)*tanConeAngle + padWidths*hit.CellLengthScale
	if dCut == 0 {
		return 0, false, fmt.Errorf("cone tolerance for hit %d: %w", hit.ID, ErrZeroTolerance)
	}

	dPerp := direction.Cross(diff).Magnitude()
	return dPerp / dCut, true, nil
}

// trackSeedDistance applies the track-seed horizon. Beyond
// MaxLayersToTrackSeed the distance is only evaluated when the cluster
// already holds a track-consistent hit in the trailing window before
// searchLayer.
func (m *ConeDistanceMetric) trackSeedDistance(c *l3clusters.Cluster, hit *l2hits.CaloHit, searchLayer l1geometry.PseudoLayer) (float64, bool, error) {
	if searchLayer < m.cfg.MaxLayersToTrackSeed {
		return m.distanceToTrackSeed(c, hit)
	}
	if searchLayer == 0 {
		return 0, false, nil
	}

	var startLayer l1geometry.PseudoLayer
	if searchLayer > m.cfg.MaxLayersToTrackLikeHit {
		startLayer = searchLayer - m.cfg.MaxLayersToTrackLikeHit
	}

	var (
		trackLike bool
		scanErr   error
	)
	c.Hits().Range(startLayer, searchLayer-1, func(_ l1geometry.PseudoLayer, hits []*l2hits.CaloHit) bool {
		for _, h := range hits {
			d, ok, err := m.distanceToTrackSeed(c, h)
			if err != nil {
				scanErr = err
				return false
			}
			if ok && d < m.cfg.GenericDistanceCut {
				trackLike = true
				return false
			}
		}
		return true
	})
	if scanErr != nil {
		return 0, false, scanErr
	}
	if !trackLike {
		return 0, false, nil
	}
	return m.distanceToTrackSeed(c, hit)
}

// distanceToTrackSeed is the perpendicular distance from hit to the line
// through the track's calorimeter-face position along the initial direction.
// The tolerance widens with separation from the seed point.
func (m *ConeDistanceMetric) distanceToTrackSeed(c *l3clusters.Cluster, hit *l2hits.CaloHit) (float64, bool, error) {
	track := c.TrackSeed()
	diff := hit.Position.Sub(track.PositionAtCalorimeter)
	separation2 := diff.MagnitudeSquared()
	if separation2 >= m.maxTrackSeedSeparation2 {
		return 0, false, nil
	}

	flexibility := 1 + m.cfg.TrackPathWidth*math.Sqrt(separation2/m.maxTrackSeedSeparation2)
	padWidths := m.cfg.AdditionalPadWidthsCoarse
	if hit.Granularity().IsFine() {
		padWidths = m.cfg.AdditionalPadWidthsFine
	}
	dCut := flexibility * padWidths * hit.CellLengthScale
	if dCut == 0 {
		return 0, false, fmt.Errorf("track-seed tolerance for hit %d: %w", hit.ID, ErrZeroTolerance)
	}

	dPerp := c.InitialDirection().Cross(diff).Magnitude()
	return dPerp / dCut, true, nil
}
