package l1geometry

import "fmt"

// SubDetectorType identifies one concentric detector region.
type SubDetectorType string

const (
	InnerDetectorBarrel SubDetectorType = "inner_detector_barrel"
	InnerDetectorEndCap SubDetectorType = "inner_detector_endcap"
	ECalBarrel          SubDetectorType = "ecal_barrel"
	ECalEndCap          SubDetectorType = "ecal_endcap"
	HCalBarrel          SubDetectorType = "hcal_barrel"
	HCalEndCap          SubDetectorType = "hcal_endcap"
	MuonBarrel          SubDetectorType = "muon_barrel"
	MuonEndCap          SubDetectorType = "muon_endcap"
)

// IsBarrel reports whether t describes a barrel region.
func (t SubDetectorType) IsBarrel() bool {
	switch t {
	case InnerDetectorBarrel, ECalBarrel, HCalBarrel, MuonBarrel:
		return true
	}
	return false
}

// IsEndCap reports whether t describes an endcap region.
func (t SubDetectorType) IsEndCap() bool {
	switch t {
	case InnerDetectorEndCap, ECalEndCap, HCalEndCap, MuonEndCap:
		return true
	}
	return false
}

// SubDetectorLayer is one declared layer of a sub-detector.
type SubDetectorLayer struct {
	ClosestDistanceToIP float64 `json:"closest_distance_to_ip" yaml:"closest_distance_to_ip"`
	NRadiationLengths   float64 `json:"n_radiation_lengths,omitempty" yaml:"n_radiation_lengths,omitempty"`
	NInteractionLengths float64 `json:"n_interaction_lengths,omitempty" yaml:"n_interaction_lengths,omitempty"`
}

// SubDetector describes the envelope and layering of one detector region.
// Barrel regions use R for their radial extent; endcap regions use Z.
type SubDetector struct {
	Type SubDetectorType `json:"type" yaml:"type"`

	InnerR             float64 `json:"inner_r" yaml:"inner_r"`
	InnerZ             float64 `json:"inner_z" yaml:"inner_z"`
	InnerPhi           float64 `json:"inner_phi" yaml:"inner_phi"`
	InnerSymmetryOrder int     `json:"inner_symmetry_order" yaml:"inner_symmetry_order"`
	OuterR             float64 `json:"outer_r" yaml:"outer_r"`
	OuterZ             float64 `json:"outer_z" yaml:"outer_z"`
	OuterPhi           float64 `json:"outer_phi" yaml:"outer_phi"`
	OuterSymmetryOrder int     `json:"outer_symmetry_order" yaml:"outer_symmetry_order"`
	MirroredInZ        bool    `json:"mirrored_in_z" yaml:"mirrored_in_z"`

	Layers []SubDetectorLayer `json:"layers" yaml:"layers"`
}

// Geometry is a snapshot of the detector description supplied by the
// geometry provider. The pseudo-layer calculator copies what it needs, so
// later changes to a Geometry value do not affect an initialised calculator.
type Geometry struct {
	Name         string        `json:"name,omitempty" yaml:"name,omitempty"`
	SubDetectors []SubDetector `json:"sub_detectors" yaml:"sub_detectors"`
}

// SubDetector returns the sub-detector of the given type.
func (g *Geometry) SubDetector(t SubDetectorType) (SubDetector, bool) {
	for _, sd := range g.SubDetectors {
		if sd.Type == t {
			return sd, true
		}
	}
	return SubDetector{}, false
}

// Validate checks structural properties that do not depend on the
// pseudo-layer construction: known types, no duplicate regions, sane extents.
func (g *Geometry) Validate() error {
	seen := make(map[SubDetectorType]bool, len(g.SubDetectors))
	for _, sd := range g.SubDetectors {
		if !sd.Type.IsBarrel() && !sd.Type.IsEndCap() {
			return fmt.Errorf("unknown sub-detector type %q: %w", sd.Type, ErrInvalidParameter)
		}
		if seen[sd.Type] {
			return fmt.Errorf("sub-detector %q declared twice: %w", sd.Type, ErrInvalidParameter)
		}
		seen[sd.Type] = true
		if sd.OuterR < sd.InnerR {
			return fmt.Errorf("sub-detector %q: outer_r %.3f < inner_r %.3f: %w", sd.Type, sd.OuterR, sd.InnerR, ErrInvalidParameter)
		}
		if sd.OuterZ < sd.InnerZ {
			return fmt.Errorf("sub-detector %q: outer_z %.3f < inner_z %.3f: %w", sd.Type, sd.OuterZ, sd.InnerZ, ErrInvalidParameter)
		}
	}
	return nil
}
