package testutil

import (
	"math"
	"math/rand"

	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
	"github.com/banshee-data/particleflow/internal/pflow/l2hits"
)

// EventConfig controls GenerateEvent.
type EventConfig struct {
	Seed    int64
	Photons int // neutral electromagnetic showers in the ECAL
	Tracks  int // charged hadrons: a track, a mip segment, then an HCAL shower
	Noise   int // single HCAL hits, about half of them flagged isolated
}

// Event is a toy collision event.
type Event struct {
	Hits   []*l2hits.CaloHit
	Tracks []*l2hits.Track
}

// GenerateEvent produces a reproducible toy event in the barrel of
// SyntheticGeometry. Every particle points into the octagon face at phi=90°,
// and lateral spread is applied in x and z only, so each hit lies exactly on
// a declared layer radius.
func GenerateEvent(cfg EventConfig) *Event {
	g := &generator{rng: rand.New(rand.NewSource(cfg.Seed)), event: &Event{}}
	for i := 0; i < cfg.Tracks; i++ {
		g.chargedHadron()
	}
	for i := 0; i < cfg.Photons; i++ {
		g.photon()
	}
	for i := 0; i < cfg.Noise; i++ {
		g.noiseHit()
	}
	return g.event
}

type generator struct {
	rng   *rand.Rand
	event *Event
}

func (g *generator) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.rng.Float64()
}

// direction draws a barrel direction facing the phi=90° octagon face.
func (g *generator) direction() l1geometry.Vector {
	phi := g.uniform(70, 110) * math.Pi / 180
	theta := g.uniform(60, 120) * math.Pi / 180
	return l1geometry.NewVectorFromSpherical(1, phi, theta)
}

// atRadius returns the point along dir at depth r, offset laterally in x and z.
func atRadius(dir l1geometry.Vector, r, dx, dz float64) l1geometry.Vector {
	base := dir.Scale(r / dir.Y)
	return base.Add(l1geometry.V(dx, 0, dz))
}

func (g *generator) addHit(h *l2hits.CaloHit) {
	h.ID = len(g.event.Hits)
	g.event.Hits = append(g.event.Hits, h)
}

// showerProfile is a gamma-like longitudinal profile normalised to one over
// n layers.
func showerProfile(n int, a, b float64) []float64 {
	w := make([]float64, n)
	var sum float64
	for l := range w {
		x := float64(l) + 0.5
		w[l] = math.Pow(x, a) * math.Exp(-x/b)
		sum += w[l]
	}
	for l := range w {
		w[l] /= sum
	}
	return w
}

func (g *generator) photon() {
	dir := g.direction()
	energy := g.uniform(0.5, 10)
	profile := showerProfile(25, 2, 3)

	for l, w := range profile {
		n := 1 + int(w*40)
		sigma := 4 + 0.8*float64(l)
		for i := 0; i < n; i++ {
			e := energy * w / float64(n)
			if e < 5e-4 {
				continue
			}
			pos := atRadius(dir, ECalLayerRadius(l), sigma*g.rng.NormFloat64(), sigma*g.rng.NormFloat64())
			g.addHit(&l2hits.CaloHit{
				Position:              pos,
				ExpectedDirection:     dir,
				CellLengthScale:       ECalCellSize,
				Type:                  l2hits.HitTypeECal,
				Region:                l2hits.RegionBarrel,
				InputEnergy:           e,
				ElectromagneticEnergy: e,
				HadronicEnergy:        1.1 * e,
			})
		}
	}
}

func (g *generator) chargedHadron() {
	dir := g.direction()
	energy := g.uniform(2, 20)

	g.event.Tracks = append(g.event.Tracks, &l2hits.Track{
		ID:                     len(g.event.Tracks),
		PositionAtCalorimeter:  atRadius(dir, ECalInnerR, 0, 0),
		DirectionAtCalorimeter: dir,
		EnergyAtDCA:            energy,
		CanSeedCluster:         true,
	})

	// Minimum-ionising segment through the first part of the ECAL.
	mipLayers := 8 + g.rng.Intn(ECalLayers-8)
	const mipEnergy = 0.008
	for l := 0; l < mipLayers; l++ {
		pos := atRadius(dir, ECalLayerRadius(l), g.rng.NormFloat64(), g.rng.NormFloat64())
		g.addHit(&l2hits.CaloHit{
			Position:              pos,
			ExpectedDirection:     dir,
			CellLengthScale:       ECalCellSize,
			Type:                  l2hits.HitTypeECal,
			Region:                l2hits.RegionBarrel,
			InputEnergy:           mipEnergy,
			ElectromagneticEnergy: mipEnergy,
			HadronicEnergy:        mipEnergy,
			PossibleMIP:           true,
		})
	}

	// Hadronic shower in the HCAL.
	profile := showerProfile(20, 1.5, 4)
	for l, w := range profile {
		n := 1 + int(w*25)
		sigma := 20 + 5*float64(l)
		for i := 0; i < n; i++ {
			e := energy * w / float64(n)
			pos := atRadius(dir, HCalLayerRadius(l), sigma*g.rng.NormFloat64(), sigma*g.rng.NormFloat64())
			g.addHit(&l2hits.CaloHit{
				Position:              pos,
				ExpectedDirection:     dir,
				CellLengthScale:       HCalCellSize,
				Type:                  l2hits.HitTypeHCal,
				Region:                l2hits.RegionBarrel,
				InputEnergy:           e,
				ElectromagneticEnergy: 0.8 * e,
				HadronicEnergy:        e,
			})
		}
	}
}

func (g *generator) noiseHit() {
	dir := g.direction()
	pos := atRadius(dir, HCalLayerRadius(g.rng.Intn(HCalLayers)), 0, 0)
	g.addHit(&l2hits.CaloHit{
		Position:              pos,
		ExpectedDirection:     dir,
		CellLengthScale:       HCalCellSize,
		Type:                  l2hits.HitTypeHCal,
		Region:                l2hits.RegionBarrel,
		InputEnergy:           0.01,
		ElectromagneticEnergy: 0.008,
		HadronicEnergy:        0.01,
		Isolated:              g.rng.Intn(2) == 0,
	})
}
