package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/viktorklochkov/PFSimple/internal/finder"
)

// viridis ramp for the chi-square colouring of the scatter.
var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// RenderHTML writes a self-contained report page: the invariant-mass
// spectrum as a bar chart and decay length against mass as a scatter
// coloured by the geometric fit chi-square.
func RenderHTML(w io.Writer, title string, sum Summary, hist *Hist, cands []finder.Candidate) error {
	if hist == nil || len(hist.Counts) == 0 {
		return fmt.Errorf("mass histogram is empty")
	}

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(massChart(title, sum, hist), lengthChart(cands))
	return page.Render(w)
}

func massChart(title string, sum Summary, hist *Hist) *charts.Bar {
	centers := hist.Centers()
	labels := make([]string, len(hist.Counts))
	data := make([]opts.BarData, len(hist.Counts))
	for i := range hist.Counts {
		labels[i] = fmt.Sprintf("%.4f", centers[i])
		data[i] = opts.BarData{Value: hist.Counts[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title: "Invariant mass",
			Subtitle: fmt.Sprintf("%d candidates, mean %.4f GeV/c2, sigma %.4f (underflow %d, overflow %d)",
				sum.Candidates, sum.MassMean, sum.MassStdDev, hist.Underflow, hist.Overflow),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "m (GeV/c2)", NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: "candidates"}),
	)
	bar.SetXAxis(labels).AddSeries("mass", data)
	return bar
}

func lengthChart(cands []finder.Candidate) *charts.Scatter {
	pts := make([]opts.ScatterData, 0, len(cands))
	var maxL, maxChi2 float64
	for i := range cands {
		c := &cands[i]
		pts = append(pts, opts.ScatterData{Value: []interface{}{c.Mass, c.L, c.Chi2Geo}})
		if c.L > maxL {
			maxL = c.L
		}
		if c.Chi2Geo > maxChi2 {
			maxChi2 = c.Chi2Geo
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Decay length vs mass", Subtitle: fmt.Sprintf("%d candidates", len(pts))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "m (GeV/c2)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: maxL * 1.05, Name: "L (cm)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxChi2),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("candidates", pts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	return scatter
}
