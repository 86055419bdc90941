package l2hits

import (
	"errors"
	"fmt"

	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
)

// ErrAlreadyClaimed is returned when a hit that already belongs to a cluster
// is claimed again.
var ErrAlreadyClaimed = errors.New("hit already claimed")

// HitType identifies the detector subsystem that recorded a hit.
type HitType string

const (
	HitTypeTracker HitType = "tracker"
	HitTypeECal    HitType = "ecal"
	HitTypeHCal    HitType = "hcal"
	HitTypeMuon    HitType = "muon"
)

// HitRegion distinguishes barrel hits from endcap hits.
type HitRegion string

const (
	RegionBarrel HitRegion = "barrel"
	RegionEndCap HitRegion = "endcap"
)

// Granularity is the coarse-vs-fine cell size class used to select distance
// tolerances. Values are ordered from finest to coarsest.
type Granularity int

const (
	GranularityVeryFine Granularity = iota
	GranularityFine
	GranularityCoarse
	GranularityVeryCoarse
)

// IsFine reports whether g selects the fine-granularity tolerances.
func (g Granularity) IsFine() bool {
	return g <= GranularityFine
}

func (g Granularity) String() string {
	switch g {
	case GranularityVeryFine:
		return "very_fine"
	case GranularityFine:
		return "fine"
	case GranularityCoarse:
		return "coarse"
	case GranularityVeryCoarse:
		return "very_coarse"
	}
	return fmt.Sprintf("granularity(%d)", int(g))
}

// GranularityForHitType returns the granularity class of a subsystem.
func GranularityForHitType(t HitType) Granularity {
	switch t {
	case HitTypeTracker:
		return GranularityVeryFine
	case HitTypeECal:
		return GranularityFine
	case HitTypeHCal:
		return GranularityCoarse
	default:
		return GranularityVeryCoarse
	}
}

// CaloHit is one calorimeter energy deposit. It is created by the
// event-input stage; the clustering packages only change its availability.
type CaloHit struct {
	ID                    int // input order, used for deterministic tie-breaks
	Position              l1geometry.Vector
	ExpectedDirection     l1geometry.Vector
	CellLengthScale       float64 // mm
	Type                  HitType
	Region                HitRegion
	InputEnergy           float64 // GeV
	ElectromagneticEnergy float64 // GeV
	HadronicEnergy        float64 // GeV
	PossibleMIP           bool
	Isolated              bool

	pseudoLayer    l1geometry.PseudoLayer
	hasPseudoLayer bool
	claimed        bool
}

// Granularity returns the hit's granularity class.
func (h *CaloHit) Granularity() Granularity {
	return GranularityForHitType(h.Type)
}

// PseudoLayer returns the cached pseudo-layer, or LayerMax before the hit
// has been indexed.
func (h *CaloHit) PseudoLayer() l1geometry.PseudoLayer {
	if !h.hasPseudoLayer {
		return l1geometry.LayerMax
	}
	return h.pseudoLayer
}

// SetPseudoLayer caches the hit's pseudo-layer. It is computed once; a second
// call with a different value fails.
func (h *CaloHit) SetPseudoLayer(layer l1geometry.PseudoLayer) error {
	if h.hasPseudoLayer && h.pseudoLayer != layer {
		return fmt.Errorf("hit %d already in pseudo-layer %d, cannot move to %d: %w",
			h.ID, h.pseudoLayer, layer, l1geometry.ErrFailure)
	}
	h.pseudoLayer = layer
	h.hasPseudoLayer = true
	return nil
}

// IsAvailable reports whether no cluster has claimed the hit.
func (h *CaloHit) IsAvailable() bool {
	return !h.claimed
}

// Claim marks the hit as owned by a cluster. A hit may never be claimed twice.
func (h *CaloHit) Claim() error {
	if h.claimed {
		return fmt.Errorf("hit %d: %w", h.ID, ErrAlreadyClaimed)
	}
	h.claimed = true
	return nil
}

// Release makes the hit available again, used when its cluster is dissolved.
func (h *CaloHit) Release() {
	h.claimed = false
}

// Track is a reconstructed charged-particle trajectory projected onto the
// calorimeter face.
type Track struct {
	ID                     int
	PositionAtCalorimeter  l1geometry.Vector
	DirectionAtCalorimeter l1geometry.Vector // unit vector
	EnergyAtDCA            float64           // GeV
	CanSeedCluster         bool
	ProjectsToEndCap       bool
}
