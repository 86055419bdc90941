package display

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/particleflow/internal/pflow/l2hits"
	"github.com/banshee-data/particleflow/internal/pflow/l3clusters"
)

// RenderEventHTML writes an interactive r-z scatter of the event: one series
// per cluster plus one for unclustered hits. Each point carries its energy.
func RenderEventHTML(w io.Writer, title string, clusters []*l3clusters.Cluster, unclustered []*l2hits.CaloHit) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "1200px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("clusters=%d unclustered=%d", len(clusters), len(unclustered))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Right: "10"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "z (mm)", NameLocation: "middle", NameGap: 25, Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "r (mm)", NameLocation: "middle", NameGap: 40, Scale: opts.Bool(true)}),
	)

	for i, c := range clusters {
		if c.NHits() == 0 {
			continue
		}
		name := fmt.Sprintf("c%d", i)
		if c.IsTrackSeeded() {
			name = fmt.Sprintf("c%d track %d", i, c.TrackSeed().ID)
		}
		scatter.AddSeries(name, scatterData(c.Hits().Hits()), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
	}
	if len(unclustered) > 0 {
		scatter.AddSeries("unclustered", scatterData(unclustered), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	}

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return fmt.Errorf("render event scatter: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// SaveEventHTML renders the event scatter into a file.
func SaveEventHTML(path, title string, clusters []*l3clusters.Cluster, unclustered []*l2hits.CaloHit) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := RenderEventHTML(f, title, clusters, unclustered); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func scatterData(hits []*l2hits.CaloHit) []opts.ScatterData {
	data := make([]opts.ScatterData, 0, len(hits))
	for _, h := range hits {
		r := math.Hypot(h.Position.X, h.Position.Y)
		data = append(data, opts.ScatterData{
			Name:  fmt.Sprintf("hit %d", h.ID),
			Value: []interface{}{h.Position.Z, r, h.InputEnergy},
		})
	}
	return data
}
