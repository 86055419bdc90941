package display

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
	"github.com/banshee-data/particleflow/internal/pflow/l2hits"
	"github.com/banshee-data/particleflow/internal/pflow/l3clusters"
)

// ClusterSummary is a flat view of one cluster.
type ClusterSummary struct {
	Index                 int
	NHits                 int
	InnerLayer            l1geometry.PseudoLayer
	OuterLayer            l1geometry.PseudoLayer
	ElectromagneticEnergy float64
	HadronicEnergy        float64
	TrackID               int // -1 when not track-seeded
	MipTrack              bool
	FitDirection          l1geometry.Vector // zero without a successful fit
}

// Summarize builds one summary per cluster, in the order given.
func Summarize(clusters []*l3clusters.Cluster) []ClusterSummary {
	out := make([]ClusterSummary, 0, len(clusters))
	for i, c := range clusters {
		s := ClusterSummary{
			Index:                 i,
			NHits:                 c.NHits(),
			InnerLayer:            c.InnerLayer(),
			OuterLayer:            c.OuterLayer(),
			ElectromagneticEnergy: c.ElectromagneticEnergy(),
			HadronicEnergy:        c.HadronicEnergy(),
			TrackID:               -1,
			MipTrack:              c.IsMipTrack(),
		}
		if c.IsTrackSeeded() {
			s.TrackID = c.TrackSeed().ID
		}
		if fit := c.CurrentFit(); fit.Successful {
			s.FitDirection = fit.Direction
		}
		out = append(out, s)
	}
	return out
}

// Unclustered returns the hits of index that no cluster claimed.
func Unclustered(index *l2hits.OrderedHitIndex) []*l2hits.CaloHit {
	var out []*l2hits.CaloHit
	for _, h := range index.Hits() {
		if h.IsAvailable() {
			out = append(out, h)
		}
	}
	return out
}

// WriteSummary prints summaries as an aligned table.
func WriteSummary(w io.Writer, summaries []ClusterSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "cluster\thits\tlayers\tem (GeV)\thad (GeV)\ttrack\tmip\tdirection")
	for _, s := range summaries {
		track := "-"
		if s.TrackID >= 0 {
			track = fmt.Sprintf("%d", s.TrackID)
		}
		direction := "-"
		if !s.FitDirection.IsZero() {
			direction = s.FitDirection.String()
		}
		fmt.Fprintf(tw, "%d\t%d\t%d-%d\t%.3f\t%.3f\t%s\t%t\t%s\n",
			s.Index, s.NHits, s.InnerLayer, s.OuterLayer,
			s.ElectromagneticEnergy, s.HadronicEnergy, track, s.MipTrack, direction)
	}
	return tw.Flush()
}
