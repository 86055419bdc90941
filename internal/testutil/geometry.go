package testutil

import (
	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
)

// Synthetic detector dimensions, in mm.
const (
	ECalInnerR      = 1000.0
	ECalLayerPitch  = 5.0
	ECalLayers      = 30
	ECalCellSize    = 5.0
	HCalInnerR      = 1200.0
	HCalLayerPitch  = 20.0
	HCalLayers      = 40
	HCalCellSize    = 30.0
	MuonInnerR      = 2100.0
	MuonLayerPitch  = 50.0
	MuonLayers      = 10
	ECalEndCapInner = 2000.0
	HCalEndCapInner = 2200.0
	MuonEndCapInner = 3100.0
)

func layers(first, pitch float64, n int) []l1geometry.SubDetectorLayer {
	out := make([]l1geometry.SubDetectorLayer, n)
	for i := range out {
		out[i] = l1geometry.SubDetectorLayer{ClosestDistanceToIP: first + pitch*float64(i)}
	}
	return out
}

// SyntheticGeometry returns an octagonal barrel-plus-endcap detector with a
// fine ECAL, a coarse HCAL and a muon system. Barrel and endcap of each
// calorimeter have the same number of layers, so pseudo-layers line up.
func SyntheticGeometry() l1geometry.Geometry {
	return l1geometry.Geometry{
		Name: "synthetic",
		SubDetectors: []l1geometry.SubDetector{
			{
				Type: l1geometry.ECalBarrel, InnerR: ECalInnerR, OuterR: 1150, OuterZ: 1990,
				InnerSymmetryOrder: 8, OuterSymmetryOrder: 8, MirroredInZ: true,
				Layers: layers(ECalInnerR, ECalLayerPitch, ECalLayers),
			},
			{
				Type: l1geometry.ECalEndCap, InnerR: 200, OuterR: 1150, InnerZ: ECalEndCapInner, OuterZ: 2150,
				InnerSymmetryOrder: 8, OuterSymmetryOrder: 8, MirroredInZ: true,
				Layers: layers(ECalEndCapInner, ECalLayerPitch, ECalLayers),
			},
			{
				Type: l1geometry.HCalBarrel, InnerR: HCalInnerR, OuterR: 2000, OuterZ: 2150,
				InnerSymmetryOrder: 8, OuterSymmetryOrder: 8, MirroredInZ: true,
				Layers: layers(HCalInnerR, HCalLayerPitch, HCalLayers),
			},
			{
				Type: l1geometry.HCalEndCap, InnerR: 200, OuterR: 2000, InnerZ: HCalEndCapInner, OuterZ: 3000,
				InnerSymmetryOrder: 8, OuterSymmetryOrder: 8, MirroredInZ: true,
				Layers: layers(HCalEndCapInner, HCalLayerPitch, HCalLayers),
			},
			{
				Type: l1geometry.MuonBarrel, InnerR: MuonInnerR, OuterR: 2600, OuterZ: 3050,
				InnerSymmetryOrder: 8, OuterSymmetryOrder: 8, MirroredInZ: true,
				Layers: layers(MuonInnerR, MuonLayerPitch, MuonLayers),
			},
			{
				Type: l1geometry.MuonEndCap, InnerR: 200, OuterR: 2600, InnerZ: MuonEndCapInner, OuterZ: 3600,
				InnerSymmetryOrder: 8, OuterSymmetryOrder: 8, MirroredInZ: true,
				Layers: layers(MuonEndCapInner, MuonLayerPitch, MuonLayers),
			},
		},
	}
}

// ECalLayerRadius returns the radius of ECAL barrel layer i (0-based).
func ECalLayerRadius(i int) float64 { return ECalInnerR + ECalLayerPitch*float64(i) }

// HCalLayerRadius returns the radius of HCAL barrel layer i (0-based).
func HCalLayerRadius(i int) float64 { return HCalInnerR + HCalLayerPitch*float64(i) }
