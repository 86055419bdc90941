package l4clustering

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
	"github.com/banshee-data/particleflow/internal/pflow/l2hits"
	"github.com/banshee-data/particleflow/internal/pflow/l3clusters"
)

// Engine partitions the hits of one event into clusters, visiting
// pseudo-layers in ascending order.
type Engine struct {
	cfg    ClusteringConfig
	metric DistanceMetric
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDistanceMetric replaces the default ConeDistanceMetric.
func WithDistanceMetric(m DistanceMetric) EngineOption {
	return func(e *Engine) {
		e.metric = m
	}
}

// NewEngine validates cfg and creates an engine.
func NewEngine(cfg ClusteringConfig, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		opsf("invalid clustering config: %v", err)
		return nil, err
	}
	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.metric == nil {
		e.metric = NewConeDistanceMetric(cfg)
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() ClusteringConfig {
	return e.cfg
}

// Stats counts what a run did.
type Stats struct {
	Layers           int // populated pseudo-layers visited
	Candidates       int // hits considered across all layers
	LookbackAttached int // hits attached by the lookback phase
	SameLayerPasses  int // fixed-point passes of the same-layer phase
	SameLayerAttach  int // hits attached by the same-layer phase
	SeededFromTracks int
	SeededFromHits   int
	Refits           int // successful full fits adopted
	ApproxFits       int // centroid-to-centroid directions adopted
	RejectedFits     int // fits failing the direction/chi2 criteria
	EmptyRemoved     int // clusters deleted in cleanup
}

// Result is the outcome of one clustering run. The arena owns the clusters;
// their hits remain claimed until a cluster is removed.
type Result struct {
	RunID uuid.UUID
	Arena *l3clusters.Arena
	Stats Stats
}

// Clusters returns the live clusters in creation order.
func (r *Result) Clusters() []*l3clusters.Cluster {
	return r.Arena.Clusters()
}

// match tracks the best cluster seen for one candidate hit.
type match struct {
	id       l3clusters.ClusterID
	cluster  *l3clusters.Cluster
	distance float64
	energy   float64
	found    bool
}

func newMatch(cut float64) match {
	return match{distance: cut}
}

// consider applies the acceptance rule: strictly below the best distance so
// far (initially the cut), or equal to an existing best with more hadronic
// energy.
func (m *match) consider(id l3clusters.ClusterID, c *l3clusters.Cluster, distance float64) {
	energy := c.HadronicEnergy()
	if distance < m.distance || (m.found && distance == m.distance && energy > m.energy) {
		m.id, m.cluster, m.distance, m.energy, m.found = id, c, distance, energy, true
	}
}

// Run clusters the hits of index. Tracks may seed clusters according to the
// seed strategy. ctx is checked between layers; cancellation aborts the run
// with ctx.Err().
func (e *Engine) Run(ctx context.Context, index *l2hits.OrderedHitIndex, tracks []*l2hits.Track) (*Result, error) {
	res := &Result{
		RunID: uuid.New(),
		Arena: l3clusters.NewArena(),
	}

	e.seedFromTracks(res, tracks)

	for _, layer := range index.Layers() {
		if err := ctx.Err(); err != nil {
			opsf("run %s aborted before layer %d: %v", res.RunID, layer, err)
			return nil, err
		}
		res.Stats.Layers++

		candidates := e.candidates(index.HitsInLayer(layer))
		res.Stats.Candidates += len(candidates)

		remaining, err := e.findHitsInPreviousLayers(res, layer, candidates)
		if err != nil {
			opsf("run %s aborted in layer %d lookback: %v", res.RunID, layer, err)
			return nil, fmt.Errorf("layer %d lookback: %w", layer, err)
		}
		if err := e.findHitsInSameLayer(res, layer, remaining); err != nil {
			opsf("run %s aborted in layer %d same-layer association: %v", res.RunID, layer, err)
			return nil, fmt.Errorf("layer %d same-layer: %w", layer, err)
		}
		e.updateClusterProperties(res)

		tracef("run %s layer %d: %d candidates, %d clusters", res.RunID, layer, len(candidates), res.Arena.Len())
	}

	e.removeEmptyClusters(res)

	diagf("run %s: %d layers, %d candidates, %d clusters (%d track seeds, %d hit seeds, %d empty removed), %d same-layer passes",
		res.RunID, res.Stats.Layers, res.Stats.Candidates, res.Arena.Len(),
		res.Stats.SeededFromTracks, res.Stats.SeededFromHits, res.Stats.EmptyRemoved, res.Stats.SameLayerPasses)
	return res, nil
}

func (e *Engine) seedFromTracks(res *Result, tracks []*l2hits.Track) {
	if e.cfg.ClusterSeedStrategy == SeedNone {
		return
	}
	for _, track := range tracks {
		if !track.CanSeedCluster {
			continue
		}
		if e.cfg.ClusterSeedStrategy == SeedEndCapTracks && !track.ProjectsToEndCap {
			continue
		}
		c, err := l3clusters.NewClusterFromTrack(track)
		if err != nil {
			opsf("run %s: track %d cannot seed a cluster: %v", res.RunID, track.ID, err)
			continue
		}
		res.Arena.Insert(c)
		res.Stats.SeededFromTracks++
	}
}

// candidates returns the available hits of a layer that pass the hit-type
// and isolation filters, in the configured processing order.
func (e *Engine) candidates(hits []*l2hits.CaloHit) []*l2hits.CaloHit {
	out := make([]*l2hits.CaloHit, 0, len(hits))
	for _, h := range hits {
		if !h.IsAvailable() {
			continue
		}
		if !e.cfg.ShouldUseIsolatedHits && h.Isolated {
			continue
		}
		if e.cfg.ShouldUseOnlyECalHits && h.Type != l2hits.HitTypeECal {
			continue
		}
		out = append(out, h)
	}
	sortHits(out, e.cfg.HitSortingStrategy)
	return out
}

// sortHits orders hits by the given strategy, breaking ties by hit ID.
func sortHits(hits []*l2hits.CaloHit, strategy HitSortingStrategy) {
	key := func(h *l2hits.CaloHit) float64 {
		switch strategy {
		case SortByEMEnergy:
			return -h.ElectromagneticEnergy
		case SortByDistanceFromIP:
			return h.Position.MagnitudeSquared()
		default:
			return -h.InputEnergy
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		ki, kj := key(hits[i]), key(hits[j])
		if ki != kj {
			return ki < kj
		}
		return hits[i].ID < hits[j].ID
	})
}

// scanClusters evaluates every live cluster against hit at searchLayer and
// folds the results into best.
func (e *Engine) scanClusters(arena *l3clusters.Arena, hit *l2hits.CaloHit, searchLayer l1geometry.PseudoLayer, best *match) error {
	var scanErr error
	arena.Each(func(id l3clusters.ClusterID, c *l3clusters.Cluster) bool {
		d, ok, err := e.metric.GenericDistance(c, hit, searchLayer)
		if err != nil {
			scanErr = fmt.Errorf("hit %d vs cluster %v in layer %d: %w", hit.ID, id, searchLayer, err)
			return false
		}
		if ok {
			best.consider(id, c, d)
		}
		return true
	})
	return scanErr
}

// findHitsInPreviousLayers attaches candidates to clusters found in the
// lookback window and returns the candidates left over, order preserved.
func (e *Engine) findHitsInPreviousLayers(res *Result, layer l1geometry.PseudoLayer, candidates []*l2hits.CaloHit) ([]*l2hits.CaloHit, error) {
	remaining := make([]*l2hits.CaloHit, 0, len(candidates))
	for _, hit := range candidates {
		best := newMatch(e.cfg.GenericDistanceCut)
		stepBack := l1geometry.PseudoLayer(e.cfg.stepBackLayers(hit.Granularity().IsFine()))

		for s := l1geometry.PseudoLayer(1); s <= stepBack && s <= layer; s++ {
			if err := e.scanClusters(res.Arena, hit, layer-s, &best); err != nil {
				return nil, err
			}
			if e.cfg.ClusterFormationStrategy == FormationFirstMatch && best.found {
				break
			}
		}

		if !best.found {
			remaining = append(remaining, hit)
			continue
		}
		if err := best.cluster.AddHit(hit); err != nil {
			return nil, fmt.Errorf("attach hit %d to cluster %v: %w", hit.ID, best.id, err)
		}
		res.Stats.LookbackAttached++
		tracef("hit %d -> cluster %v (lookback, d=%.3f)", hit.ID, best.id, best.distance)
	}
	return remaining, nil
}

// findHitsInSameLayer runs fixed-point passes over the remaining candidates,
// attaching each to its best cluster in this layer. When a pass attaches
// nothing, the first remaining candidate seeds a new cluster and the passes
// resume. Every pass either attaches a hit or is followed by a seed, so the
// number of passes never exceeds the number of candidates.
func (e *Engine) findHitsInSameLayer(res *Result, layer l1geometry.PseudoLayer, candidates []*l2hits.CaloHit) error {
	for len(candidates) > 0 {
		for attached := true; attached && len(candidates) > 0; {
			attached = false
			res.Stats.SameLayerPasses++

			remaining := candidates[:0]
			for _, hit := range candidates {
				best := newMatch(e.cfg.GenericDistanceCut)
				if err := e.scanClusters(res.Arena, hit, layer, &best); err != nil {
					return err
				}
				if !best.found {
					remaining = append(remaining, hit)
					continue
				}
				if err := best.cluster.AddHit(hit); err != nil {
					return fmt.Errorf("attach hit %d to cluster %v: %w", hit.ID, best.id, err)
				}
				attached = true
				res.Stats.SameLayerAttach++
				tracef("hit %d -> cluster %v (same layer, d=%.3f)", hit.ID, best.id, best.distance)
			}
			candidates = remaining
		}

		if len(candidates) == 0 {
			break
		}
		seed := candidates[0]
		candidates = candidates[1:]
		c, err := l3clusters.NewClusterFromHit(seed)
		if err != nil {
			return fmt.Errorf("seed cluster from hit %d: %w", seed.ID, err)
		}
		id := res.Arena.Insert(c)
		res.Stats.SeededFromHits++
		tracef("hit %d seeds cluster %v", seed.ID, id)
	}
	return nil
}

// updateClusterProperties refreshes the working direction of every cluster
// that spans enough layers.
func (e *Engine) updateClusterProperties(res *Result) {
	res.Arena.Each(func(id l3clusters.ClusterID, c *l3clusters.Cluster) bool {
		if c.NHits() < 2 {
			return true
		}

		var fit l3clusters.FitResult
		span := c.NLayersSpanned()
		switch {
		case span > e.cfg.NLayersSpannedForFit:
			f, err := l3clusters.FitLayerCentroids(c, e.fitStartLayer(c), c.OuterLayer())
			if err != nil {
				tracef("cluster %v: fit skipped: %v", id, err)
				return true
			}
			dot := f.Direction.Dot(c.InitialDirection())
			if (dot < e.cfg.FitSuccessDotProductCut1 && f.Chi2 > e.cfg.FitSuccessChi2Cut1) ||
				(dot < e.cfg.FitSuccessDotProductCut2 && f.Chi2 > e.cfg.FitSuccessChi2Cut2) {
				res.Stats.RejectedFits++
				tracef("cluster %v: fit rejected (dot=%.3f chi2=%.3f)", id, dot, f.Chi2)
				return true
			}
			fit = f
			res.Stats.Refits++

		case span > e.cfg.NLayersSpannedForApproxFit:
			inner, _ := c.Centroid(c.InnerLayer())
			outer, _ := c.Centroid(c.OuterLayer())
			dir, err := outer.Sub(inner).Unit()
			if err != nil {
				return true
			}
			fit = l3clusters.FitResult{Direction: dir, Intercept: inner, Successful: true}
			res.Stats.ApproxFits++

		default:
			return true
		}

		c.SetCurrentFit(fit)
		if c.IsMipTrack() && fit.Chi2 > e.cfg.MipTrackChi2Cut {
			c.SetIsMipTrack(false)
			tracef("cluster %v: no longer mip-like (chi2=%.3f)", id, fit.Chi2)
		}
		return true
	})
}

// fitStartLayer returns the first layer of the fit window: the most recent
// NLayersToFit layers, or fewer for clusters with a low mip fraction.
func (e *Engine) fitStartLayer(c *l3clusters.Cluster) l1geometry.PseudoLayer {
	nLayersToFit := e.cfg.NLayersToFit
	if c.MipFraction() < e.cfg.NLayersToFitLowMipCut {
		nLayersToFit /= e.cfg.NLayersToFitLowMipMultiplier
		if nLayersToFit < 2 {
			nLayersToFit = 2
		}
	}
	if c.NLayersSpanned() <= nLayersToFit {
		return c.InnerLayer()
	}
	return c.OuterLayer() - l1geometry.PseudoLayer(nLayersToFit) + 1
}

func (e *Engine) removeEmptyClusters(res *Result) {
	res.Arena.Each(func(id l3clusters.ClusterID, c *l3clusters.Cluster) bool {
		if c.NHits() == 0 {
			if _, err := res.Arena.Remove(id); err == nil {
				res.Stats.EmptyRemoved++
			}
		}
		return true
	})
}
