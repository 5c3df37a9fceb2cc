// Package plotter renders diagnostic bandpass plots from a calibration
// container: amplitude and phase vs channel, one curve per antenna. The
// plots are visual QA only and simply reflect what is stored.
package plotter

import (
	"fmt"
	"math"
	"math/cmplx"
	"os"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"caltab-archiver/internal/calfile"
)

const chartHeight = "500px"

// RenderBandpass reads the gain array for one polarization from a
// container and writes side-by-side amplitude and phase charts as an HTML
// page.
func RenderBandpass(containerPath, outPath string, pol int) error {
	f, err := calfile.ReadFile(containerPath)
	if err != nil {
		return fmt.Errorf("failed to read container: %w", err)
	}

	gain, ok := f.Dataset(calfile.PathGain)
	if !ok {
		return fmt.Errorf("container has no gain dataset %s", calfile.PathGain)
	}
	if len(gain.Dims) != 3 {
		return fmt.Errorf("gain dataset has rank %d, expected 3", len(gain.Dims))
	}
	antennaEntry, ok := f.Dataset(calfile.PathAntenna)
	if !ok {
		return fmt.Errorf("container has no antenna dataset %s", calfile.PathAntenna)
	}

	nants := int(gain.Dims[0])
	nchans := int(gain.Dims[1])
	npol := int(gain.Dims[2])
	if pol < 0 || pol >= npol {
		return fmt.Errorf("polarization index %d out of range (container has %d)", pol, npol)
	}

	amps := make([][]float64, nants)
	phases := make([][]float64, nants)
	for a := 0; a < nants; a++ {
		amps[a] = make([]float64, nchans)
		phases[a] = make([]float64, nchans)
		for c := 0; c < nchans; c++ {
			g := gain.Complex[(a*nchans+c)*npol+pol]
			amps[a][c] = cmplx.Abs(g)
			phases[a][c] = cmplx.Phase(g) * 180 / math.Pi
		}
	}

	// Order antennas by mean gain magnitude so the legend groups weak and
	// strong antennas together.
	order := make([]int, nants)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return meanOf(amps[order[i]]) < meanOf(amps[order[j]])
	})

	labels := make([]string, nchans)
	for c := range labels {
		labels[c] = strconv.Itoa(c)
	}

	ampChart := newBandpassChart("Amplitude", "Gain Amplitude", labels)
	phsChart := newBandpassChart("Phase (degrees)", "Gain Phase", labels)
	for _, a := range order {
		name := antennaEntry.Strings[a]
		ampChart.AddSeries(name, lineData(amps[a]))
		phsChart.AddSeries(name, lineData(phases[a]))
	}

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(ampChart, phsChart)

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	defer out.Close()

	if err := page.Render(out); err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	return nil
}

func newBandpassChart(title, yName string, labels []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "48vw", Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Channel Index"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll"}),
	)
	line.SetXAxis(labels)
	return line
}

func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
	}
	return data
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
