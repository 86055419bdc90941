// Package testutil provides shared test utilities and fixtures.
//
// This package centralises the synthetic detector geometry and toy event
// generator used by the clustering tests and the developer tools, so every
// package exercises the same detector description.
package testutil

import (
	"testing"

	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
	"github.com/banshee-data/particleflow/internal/pflow/l2hits"
	"github.com/banshee-data/particleflow/internal/pflow/l3clusters"
)

// MustCalculator builds a pseudo-layer calculator for SyntheticGeometry.
func MustCalculator(t testing.TB) *l1geometry.PseudoLayerCalculator {
	t.Helper()
	calc, err := l1geometry.NewPseudoLayerCalculator(SyntheticGeometry())
	if err != nil {
		t.Fatalf("synthetic geometry rejected: %v", err)
	}
	return calc
}

// MustBuildIndex indexes the hits of ev with calc.
func MustBuildIndex(t testing.TB, ev *Event, calc l1geometry.PseudoLayerLookup) *l2hits.OrderedHitIndex {
	t.Helper()
	idx, err := l2hits.BuildOrderedHitIndex(ev.Hits, calc)
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	return idx
}

// HitAt returns an ECAL barrel hit with the given ID and pseudo-layer already
// cached, for tests that build indices by hand.
func HitAt(t testing.TB, id int, layer l1geometry.PseudoLayer, pos l1geometry.Vector, energy float64) *l2hits.CaloHit {
	t.Helper()
	h := &l2hits.CaloHit{
		ID:                    id,
		Position:              pos,
		ExpectedDirection:     pos,
		CellLengthScale:       10,
		Type:                  l2hits.HitTypeECal,
		Region:                l2hits.RegionBarrel,
		InputEnergy:           energy,
		ElectromagneticEnergy: energy,
		HadronicEnergy:        energy,
	}
	if err := h.SetPseudoLayer(layer); err != nil {
		t.Fatalf("hit %d: %v", id, err)
	}
	return h
}

// IndexOf builds an index from hits whose pseudo-layers are already cached.
func IndexOf(t testing.TB, hits ...*l2hits.CaloHit) *l2hits.OrderedHitIndex {
	t.Helper()
	idx := l2hits.NewOrderedHitIndex()
	for _, h := range hits {
		if err := idx.Add(h); err != nil {
			t.Fatalf("index hit %d: %v", h.ID, err)
		}
	}
	return idx
}

// Membership returns the hit IDs of each cluster, clusters in arena order and
// hits in layer then ID order. It is the comparison key for determinism tests.
func Membership(clusters []*l3clusters.Cluster) [][]int {
	out := make([][]int, 0, len(clusters))
	for _, c := range clusters {
		hits := c.Hits().Hits()
		ids := make([]int, 0, len(hits))
		for _, h := range hits {
			ids = append(ids, h.ID)
		}
		out = append(out, ids)
	}
	return out
}
