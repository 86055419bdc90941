package l2hits

import (
	"fmt"
	"sort"

	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
)

// OrderedHitIndex maps pseudo-layers to the hits they contain. Layers are
// always visited in ascending order and hits within a layer in ascending ID
// order, so iteration is deterministic. Hits sharing an ID keep their
// insertion order.
//
// The zero value is an empty index ready to use.
type OrderedHitIndex struct {
	layers  []l1geometry.PseudoLayer // sorted, only populated layers
	byLayer map[l1geometry.PseudoLayer][]*CaloHit
	nHits   int
}

// NewOrderedHitIndex creates an empty index.
func NewOrderedHitIndex() *OrderedHitIndex {
	return &OrderedHitIndex{byLayer: make(map[l1geometry.PseudoLayer][]*CaloHit)}
}

// BuildOrderedHitIndex computes and caches the pseudo-layer of every hit and
// indexes them. A hit outside the detector fails the build.
func BuildOrderedHitIndex(hits []*CaloHit, lookup l1geometry.PseudoLayerLookup) (*OrderedHitIndex, error) {
	idx := NewOrderedHitIndex()
	for _, h := range hits {
		layer, err := lookup.GetPseudoLayer(h.Position)
		if err != nil {
			return nil, fmt.Errorf("hit %d at %v: %w", h.ID, h.Position, err)
		}
		if err := h.SetPseudoLayer(layer); err != nil {
			return nil, err
		}
		if err := idx.Add(h); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Add inserts a hit into its cached pseudo-layer.
func (idx *OrderedHitIndex) Add(h *CaloHit) error {
	layer := h.PseudoLayer()
	if layer == l1geometry.LayerMax {
		return fmt.Errorf("hit %d has no pseudo-layer: %w", h.ID, l1geometry.ErrInvalidParameter)
	}
	if idx.byLayer == nil {
		idx.byLayer = make(map[l1geometry.PseudoLayer][]*CaloHit)
	}

	hits, exists := idx.byLayer[layer]
	if position(hits, h) >= 0 {
		return fmt.Errorf("hit %d already indexed in layer %d: %w", h.ID, layer, l1geometry.ErrFailure)
	}
	pos := sort.Search(len(hits), func(i int) bool { return hits[i].ID > h.ID })
	hits = append(hits, nil)
	copy(hits[pos+1:], hits[pos:])
	hits[pos] = h
	idx.byLayer[layer] = hits
	idx.nHits++

	if !exists {
		lpos := sort.Search(len(idx.layers), func(i int) bool { return idx.layers[i] >= layer })
		idx.layers = append(idx.layers, 0)
		copy(idx.layers[lpos+1:], idx.layers[lpos:])
		idx.layers[lpos] = layer
	}
	return nil
}

// Remove deletes a hit. Layers left empty disappear from the index.
func (idx *OrderedHitIndex) Remove(h *CaloHit) error {
	layer := h.PseudoLayer()
	hits := idx.byLayer[layer]
	pos := position(hits, h)
	if pos < 0 {
		return fmt.Errorf("hit %d not in layer %d: %w", h.ID, layer, l1geometry.ErrNotFound)
	}

	hits = append(hits[:pos], hits[pos+1:]...)
	idx.nHits--
	if len(hits) > 0 {
		idx.byLayer[layer] = hits
		return nil
	}

	delete(idx.byLayer, layer)
	lpos := sort.Search(len(idx.layers), func(i int) bool { return idx.layers[i] >= layer })
	idx.layers = append(idx.layers[:lpos], idx.layers[lpos+1:]...)
	return nil
}

// Contains reports whether h is indexed.
func (idx *OrderedHitIndex) Contains(h *CaloHit) bool {
	return position(idx.byLayer[h.PseudoLayer()], h) >= 0
}

// position finds h by identity within the run of hits sharing its ID, or
// returns -1. IDs are caller-assigned and need not be unique.
func position(hits []*CaloHit, h *CaloHit) int {
	for i := sort.Search(len(hits), func(i int) bool { return hits[i].ID >= h.ID }); i < len(hits) && hits[i].ID == h.ID; i++ {
		if hits[i] == h {
			return i
		}
	}
	return -1
}

// Len returns the total number of hits.
func (idx *OrderedHitIndex) Len() int {
	return idx.nHits
}

// NLayers returns the number of populated layers.
func (idx *OrderedHitIndex) NLayers() int {
	return len(idx.layers)
}

// Layers returns the populated layers in ascending order.
func (idx *OrderedHitIndex) Layers() []l1geometry.PseudoLayer {
	return append([]l1geometry.PseudoLayer(nil), idx.layers...)
}

// InnerLayer returns the lowest populated layer, or LayerMax when empty.
func (idx *OrderedHitIndex) InnerLayer() l1geometry.PseudoLayer {
	if len(idx.layers) == 0 {
		return l1geometry.LayerMax
	}
	return idx.layers[0]
}

// OuterLayer returns the highest populated layer, or LayerMax when empty.
func (idx *OrderedHitIndex) OuterLayer() l1geometry.PseudoLayer {
	if len(idx.layers) == 0 {
		return l1geometry.LayerMax
	}
	return idx.layers[len(idx.layers)-1]
}

// HitsInLayer returns the hits in a layer ordered by ID, or nil for an absent
// layer. The returned slice is owned by the index and must not be modified.
func (idx *OrderedHitIndex) HitsInLayer(layer l1geometry.PseudoLayer) []*CaloHit {
	return idx.byLayer[layer]
}

// NHitsInLayer returns the number of hits in a layer.
func (idx *OrderedHitIndex) NHitsInLayer(layer l1geometry.PseudoLayer) int {
	return len(idx.byLayer[layer])
}

// Each calls fn for every populated layer in ascending order until fn returns
// false.
func (idx *OrderedHitIndex) Each(fn func(layer l1geometry.PseudoLayer, hits []*CaloHit) bool) {
	for _, layer := range idx.layers {
		if !fn(layer, idx.byLayer[layer]) {
			return
		}
	}
}

// Range calls fn for every populated layer in [lo, hi], ascending, until fn
// returns false.
func (idx *OrderedHitIndex) Range(lo, hi l1geometry.PseudoLayer, fn func(layer l1geometry.PseudoLayer, hits []*CaloHit) bool) {
	start := sort.Search(len(idx.layers), func(i int) bool { return idx.layers[i] >= lo })
	for _, layer := range idx.layers[start:] {
		if layer > hi {
			return
		}
		if !fn(layer, idx.byLayer[layer]) {
			return
		}
	}
}

// Hits returns every hit as a flat list in layer order.
func (idx *OrderedHitIndex) Hits() []*CaloHit {
	out := make([]*CaloHit, 0, idx.nHits)
	for _, layer := range idx.layers {
		out = append(out, idx.byLayer[layer]...)
	}
	return out
}

// Merge adds every hit of other into idx. A hit present in both fails the
// merge; hits added before the failure stay in idx.
func (idx *OrderedHitIndex) Merge(other *OrderedHitIndex) error {
	for _, layer := range other.layers {
		for _, h := range other.byLayer[layer] {
			if err := idx.Add(h); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clone returns an index holding the same hits. The hits themselves are
// shared.
func (idx *OrderedHitIndex) Clone() *OrderedHitIndex {
	out := &OrderedHitIndex{
		layers:  append([]l1geometry.PseudoLayer(nil), idx.layers...),
		byLayer: make(map[l1geometry.PseudoLayer][]*CaloHit, len(idx.byLayer)),
		nHits:   idx.nHits,
	}
	for layer, hits := range idx.byLayer {
		out.byLayer[layer] = append([]*CaloHit(nil), hits...)
	}
	return out
}
