package l1geometry

import "math"

// PseudoLayer is a discretised radial/longitudinal depth index that can be
// used uniformly across barrel, endcap and sub-detector boundaries.
type PseudoLayer uint32

const (
	// TrackProjectionLayer sits below the first physical layer and is only
	// ever used to represent track projections onto the calorimeter face.
	// Real hits never populate it.
	TrackProjectionLayer PseudoLayer = 0

	// LayerMax means "undefined" or "not found".
	LayerMax PseudoLayer = math.MaxUint32
)

// PseudoLayerLookup maps a position onto its pseudo-layer.
type PseudoLayerLookup interface {
	GetPseudoLayer(position Vector) (PseudoLayer, error)
}
