package display

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/particleflow/internal/pflow/l1geometry"
	"github.com/banshee-data/particleflow/internal/pflow/l2hits"
	"github.com/banshee-data/particleflow/internal/pflow/l3clusters"
)

// ErrNothingToPlot is returned when there are no hits to draw.
var ErrNothingToPlot = errors.New("nothing to plot")

// SaveLayerOccupancy writes a PNG with one line per cluster showing hits per
// pseudo-layer. Unclustered hits are drawn in grey.
func SaveLayerOccupancy(path string, clusters []*l3clusters.Cluster, unclustered []*l2hits.CaloHit) error {
	p := plot.New()
	p.Title.Text = "Layer occupancy by cluster"
	p.X.Label.Text = "Pseudo-layer"
	p.Y.Label.Text = "Hits"

	colors := generateColors(len(clusters))
	drawn := 0
	for i, c := range clusters {
		if c.NHits() == 0 {
			continue
		}
		line, err := plotter.NewLine(occupancy(c.Hits()))
		if err != nil {
			return fmt.Errorf("cluster %d: %w", i, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("c%d (%d hits)", i, c.NHits()), line)
		drawn++
	}

	if len(unclustered) > 0 {
		idx := l2hits.NewOrderedHitIndex()
		for _, h := range unclustered {
			if err := idx.Add(h); err != nil {
				return err
			}
		}
		line, err := plotter.NewLine(occupancy(idx))
		if err != nil {
			return fmt.Errorf("unclustered hits: %w", err)
		}
		line.Color = color.Gray{Y: 128}
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(line)
		p.Legend.Add("unclustered", line)
		drawn++
	}

	if drawn == 0 {
		return ErrNothingToPlot
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save occupancy plot: %w", err)
	}
	return nil
}

func occupancy(idx *l2hits.OrderedHitIndex) plotter.XYs {
	pts := make(plotter.XYs, 0, idx.NLayers())
	idx.Each(func(layer l1geometry.PseudoLayer, hits []*l2hits.CaloHit) bool {
		pts = append(pts, plotter.XY{X: float64(layer), Y: float64(len(hits))})
		return true
	})
	return pts
}
