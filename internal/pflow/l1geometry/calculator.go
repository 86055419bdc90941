package l1geometry

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// polygonAngle holds the unit normal of one polygon face in the x-y plane.
type polygonAngle struct {
	cos, sin float64
}

// regionTables holds the envelope, polygon and overlap-correction values used
// to resolve a layer within one nested region (the calorimeters or the muon
// system).
type regionTables struct {
	barrelInnerR float64
	endCapInnerZ float64
	rCorrection  float64
	zCorrection  float64
	angles       []polygonAngle
}

// PseudoLayerCalculator converts 3-D positions into pseudo-layers for a
// layered barrel + endcap detector with polygonal cross-section. It holds no
// mutable state after construction apart from the lazily cached IP layer,
// so one calculator may be shared by concurrent event workers.
type PseudoLayerCalculator struct {
	barrelLayerPositions []float64
	endCapLayerPositions []float64

	barrelEdgeR float64
	endCapEdgeZ float64

	primary regionTables
	muon    regionTables

	ipOnce  sync.Once
	ipLayer PseudoLayer
	ipErr   error
}

// Verify at compile time that *PseudoLayerCalculator implements PseudoLayerLookup.
var _ PseudoLayerLookup = (*PseudoLayerCalculator)(nil)

// NewPseudoLayerCalculator initialises a calculator from a geometry snapshot.
//
// Fails with ErrNotInitialized when the ECAL barrel/endcap are missing or no
// layers are declared, ErrInvalidParameter when a layered sub-detector is not
// mirrored in z, and ErrFailure when layer boundaries are duplicated or lie
// beyond the detector's outer edge.
func NewPseudoLayerCalculator(geom Geometry) (*PseudoLayerCalculator, error) {
	if err := geom.Validate(); err != nil {
		opsf("geometry %q rejected: %v", geom.Name, err)
		return nil, err
	}

	c := &PseudoLayerCalculator{}
	steps := []func(*Geometry) error{
		c.storeLayerPositions,
		c.storeDetectorOuterEdge,
		c.storePolygonAngles,
		c.storeOverlapCorrections,
	}
	for _, step := range steps {
		if err := step(&geom); err != nil {
			opsf("geometry %q rejected: %v", geom.Name, err)
			return nil, err
		}
	}

	diagf("geometry %q: %d barrel positions (edge r=%.1f), %d endcap positions (edge z=%.1f), rCorr=%.3f zCorr=%.3f",
		geom.Name, len(c.barrelLayerPositions), c.barrelEdgeR, len(c.endCapLayerPositions), c.endCapEdgeZ,
		c.primary.rCorrection, c.primary.zCorrection)
	return c, nil
}

func (c *PseudoLayerCalculator) storeLayerPositions(geom *Geometry) error {
	for _, sd := range geom.SubDetectors {
		if len(sd.Layers) == 0 {
			continue
		}
		if !sd.MirroredInZ {
			return fmt.Errorf("sub-detector %q is not mirrored in z: %w", sd.Type, ErrInvalidParameter)
		}
		for _, layer := range sd.Layers {
			if sd.Type.IsBarrel() {
				c.barrelLayerPositions = append(c.barrelLayerPositions, layer.ClosestDistanceToIP)
			} else {
				c.endCapLayerPositions = append(c.endCapLayerPositions, layer.ClosestDistanceToIP)
			}
		}
	}

	if len(c.barrelLayerPositions) == 0 || len(c.endCapLayerPositions) == 0 {
		return fmt.Errorf("no barrel or endcap layers declared: %w", ErrNotInitialized)
	}

	sort.Float64s(c.barrelLayerPositions)
	sort.Float64s(c.endCapLayerPositions)

	if i := adjacentDuplicate(c.barrelLayerPositions); i >= 0 {
		return fmt.Errorf("duplicate barrel layer position %.3f: %w", c.barrelLayerPositions[i], ErrFailure)
	}
	if i := adjacentDuplicate(c.endCapLayerPositions); i >= 0 {
		return fmt.Errorf("duplicate endcap layer position %.3f: %w", c.endCapLayerPositions[i], ErrFailure)
	}
	return nil
}

func (c *PseudoLayerCalculator) storeDetectorOuterEdge(geom *Geometry) error {
	for _, sd := range geom.SubDetectors {
		if sd.Type.IsBarrel() {
			c.barrelEdgeR = math.Max(c.barrelEdgeR, sd.OuterR)
		} else {
			c.endCapEdgeZ = math.Max(c.endCapEdgeZ, math.Abs(sd.OuterZ))
		}
	}

	if last := c.barrelLayerPositions[len(c.barrelLayerPositions)-1]; last > c.barrelEdgeR {
		return fmt.Errorf("barrel layer at %.3f beyond outer edge %.3f: %w", last, c.barrelEdgeR, ErrFailure)
	}
	if last := c.endCapLayerPositions[len(c.endCapLayerPositions)-1]; last > c.endCapEdgeZ {
		return fmt.Errorf("endcap layer at %.3f beyond outer edge %.3f: %w", last, c.endCapEdgeZ, ErrFailure)
	}

	c.barrelLayerPositions = append(c.barrelLayerPositions, c.barrelEdgeR)
	c.endCapLayerPositions = append(c.endCapLayerPositions, c.endCapEdgeZ)
	return nil
}

func (c *PseudoLayerCalculator) storePolygonAngles(geom *Geometry) error {
	ecalBarrel, ok := geom.SubDetector(ECalBarrel)
	if !ok {
		return fmt.Errorf("ecal barrel missing: %w", ErrNotInitialized)
	}
	c.primary.angles = fillAngleVector(ecalBarrel.InnerSymmetryOrder, ecalBarrel.InnerPhi)

	if muonBarrel, ok := geom.SubDetector(MuonBarrel); ok {
		c.muon.angles = fillAngleVector(muonBarrel.InnerSymmetryOrder, muonBarrel.InnerPhi)
	} else {
		c.muon.angles = c.primary.angles
	}
	return nil
}

func (c *PseudoLayerCalculator) storeOverlapCorrections(geom *Geometry) error {
	ecalBarrel, okBarrel := geom.SubDetector(ECalBarrel)
	ecalEndCap, okEndCap := geom.SubDetector(ECalEndCap)
	if !okBarrel || !okEndCap {
		return fmt.Errorf("ecal barrel and endcap are both required: %w", ErrNotInitialized)
	}
	if err := fillOverlapCorrection(&c.primary, ecalBarrel, ecalEndCap); err != nil {
		return err
	}

	muonBarrel, okBarrel := geom.SubDetector(MuonBarrel)
	muonEndCap, okEndCap := geom.SubDetector(MuonEndCap)
	if !okBarrel || !okEndCap {
		// Without a muon system its envelope never contains a point, so the
		// calorimeter tables always apply.
		c.muon.barrelInnerR = math.Inf(1)
		c.muon.endCapInnerZ = math.Inf(1)
		c.muon.rCorrection = c.primary.rCorrection
		c.muon.zCorrection = c.primary.zCorrection
		return nil
	}
	return fillOverlapCorrection(&c.muon, muonBarrel, muonEndCap)
}

func fillOverlapCorrection(t *regionTables, barrel, endCap SubDetector) error {
	barrelOuterZ := math.Abs(barrel.OuterZ)
	endCapInnerZ := math.Abs(endCap.InnerZ)
	if barrelOuterZ == 0 || endCap.OuterR == 0 {
		return fmt.Errorf("zero-sized %q/%q envelope: %w", barrel.Type, endCap.Type, ErrInvalidParameter)
	}

	t.barrelInnerR = barrel.InnerR
	t.endCapInnerZ = endCapInnerZ

	if endCap.OuterR > barrel.InnerR {
		// Enclosing endcap: the endcap covers the end of the barrel.
		t.rCorrection = barrel.InnerR * ((endCapInnerZ / barrelOuterZ) - 1)
		t.zCorrection = 0
	} else {
		t.rCorrection = 0
		t.zCorrection = endCapInnerZ * ((barrel.InnerR / endCap.OuterR) - 1)
	}
	return nil
}

func fillAngleVector(symmetryOrder int, phi0 float64) []polygonAngle {
	angles := make([]polygonAngle, 0, symmetryOrder)
	for i := 0; i < symmetryOrder; i++ {
		phi := phi0 + (2*math.Pi*float64(i))/float64(symmetryOrder)
		angles = append(angles, polygonAngle{cos: math.Cos(phi), sin: math.Sin(phi)})
	}
	return angles
}

// maximumRadius projects (x, y) onto every polygon face normal and returns the
// largest projection. With fewer than three faces the barrel is treated as a
// cylinder.
func maximumRadius(angles []polygonAngle, x, y float64) float64 {
	if len(angles) <= 2 {
		return math.Sqrt(x*x + y*y)
	}
	var maxRadius float64
	for _, a := range angles {
		if radius := x*a.cos + y*a.sin; radius > maxRadius {
			maxRadius = radius
		}
	}
	return maxRadius
}

// adjacentDuplicate returns the index of the first element equal to its
// successor in a sorted slice, or -1.
func adjacentDuplicate(sorted []float64) int {
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return i - 1
		}
	}
	return -1
}

// GetPseudoLayer returns the pseudo-layer for a position. Positions outside the
// detector's outer edge fail with ErrNotFound.
func (c *PseudoLayerCalculator) GetPseudoLayer(position Vector) (PseudoLayer, error) {
	z := math.Abs(position.Z)
	if z > c.endCapEdgeZ {
		return LayerMax, fmt.Errorf("position %v beyond endcap edge z=%.3f: %w", position, c.endCapEdgeZ, ErrNotFound)
	}

	r := maximumRadius(c.primary.angles, position.X, position.Y)
	rMuon := maximumRadius(c.muon.angles, position.X, position.Y)
	if r > c.barrelEdgeR || rMuon > c.barrelEdgeR {
		return LayerMax, fmt.Errorf("position %v beyond barrel edge r=%.3f: %w", position, c.barrelEdgeR, ErrNotFound)
	}

	var (
		layer PseudoLayer
		ok    bool
	)
	if z < c.muon.endCapInnerZ && rMuon < c.muon.barrelInnerR {
		layer, ok = c.resolveLayer(r, z, &c.primary)
	} else {
		layer, ok = c.resolveLayer(rMuon, z, &c.muon)
	}
	if !ok {
		return LayerMax, fmt.Errorf("no layer matches position %v: %w", position, ErrNotFound)
	}

	// Layer 0 is reserved for track projections.
	return layer + 1, nil
}

// GetPseudoLayerAtIP returns the pseudo-layer of the interaction point. It is
// computed once and reused as the first physical layer reference.
func (c *PseudoLayerCalculator) GetPseudoLayerAtIP() (PseudoLayer, error) {
	c.ipOnce.Do(func() {
		c.ipLayer, c.ipErr = c.GetPseudoLayer(Vector{})
	})
	return c.ipLayer, c.ipErr
}

// BarrelLayerPositions returns a copy of the sorted barrel layer radii,
// including the outer-edge sentinel.
func (c *PseudoLayerCalculator) BarrelLayerPositions() []float64 {
	return append([]float64(nil), c.barrelLayerPositions...)
}

// EndCapLayerPositions returns a copy of the sorted endcap layer z positions,
// including the outer-edge sentinel.
func (c *PseudoLayerCalculator) EndCapLayerPositions() []float64 {
	return append([]float64(nil), c.endCapLayerPositions...)
}

func (c *PseudoLayerCalculator) resolveLayer(r, z float64, t *regionTables) (PseudoLayer, bool) {
	if z < t.endCapInnerZ {
		return findMatchingLayer(r, c.barrelLayerPositions)
	}
	if r < t.barrelInnerR {
		return findMatchingLayer(z, c.endCapLayerPositions)
	}

	// Overlap region: the hit is assigned to whichever projection implies it
	// penetrated deeper.
	barrelLayer, barrelOK := findMatchingLayer(r-t.rCorrection, c.barrelLayerPositions)
	endCapLayer, endCapOK := findMatchingLayer(z-t.zCorrection, c.endCapLayerPositions)
	if !barrelOK && !endCapOK {
		return LayerMax, false
	}
	tracef("overlap r=%.3f z=%.3f barrel=%d(%v) endcap=%d(%v)", r, z, barrelLayer, barrelOK, endCapLayer, endCapOK)

	switch {
	case !barrelOK:
		return endCapLayer, true
	case !endCapOK:
		return barrelLayer, true
	case barrelLayer > endCapLayer:
		return barrelLayer, true
	default:
		return endCapLayer, true
	}
}

// findMatchingLayer snaps position to the nearest entry of a sorted position
// list. Positions before the first entry map to layer 0; positions at or
// beyond the last entry are not found. An exact midpoint resolves outward.
func findMatchingLayer(position float64, positions []float64) (PseudoLayer, bool) {
	upper := sort.Search(len(positions), func(i int) bool { return positions[i] > position })
	if upper == len(positions) {
		return LayerMax, false
	}
	if upper == 0 {
		return 0, true
	}
	lower := upper - 1
	if math.Abs(position-positions[lower]) < math.Abs(position-positions[upper]) {
		return PseudoLayer(lower), true
	}
	return PseudoLayer(upper), true
}
