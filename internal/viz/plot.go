package viz

import (
	"github.com/guptarohit/asciigraph"
)

// Curves plots each series against its index. Series longer than width are
// resampled by asciigraph.
func Curves(caption string, height, width int, series ...[]float64) string {
	if len(series) == 0 {
		return ""
	}
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	}
	if len(series) > 1 {
		opts = append(opts, asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Red, asciigraph.Green, asciigraph.Yellow))
	}
	return asciigraph.PlotMany(series, opts...)
}
