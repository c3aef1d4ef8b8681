package dataprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"incidentcli/pkg/contracts/domain"
)

// HistogramBins is the number of equal-width resolution histogram bins.
const HistogramBins = 30

// histogramClipQuantile bounds the histogram so a handful of long
// incidents do not flatten every other bin.
const histogramClipQuantile = 0.99

// BuildChartData prepares the series plotted in the report workbook from a
// cleaned table.
func BuildChartData(t *Table, th FeatureThresholds) domain.ChartData {
	data := domain.ChartData{
		Stages: append([]string(nil), StageNames...),
	}

	if priorities := t.Column(domain.ColumnPriority); priorities != nil {
		data.PriorityCounts = countCategories(priorities, func(cell string) string {
			if IsMissing(cell) {
				return "Unknown"
			}
			return cell
		})
		sort.SliceStable(data.PriorityCounts, func(i, j int) bool {
			return data.PriorityCounts[i].Label < data.PriorityCounts[j].Label
		})
	}

	if flags := t.Column(domain.ColumnSLABreached); flags != nil {
		met := fmt.Sprintf("Met (<=%gh)", th.SLAHours)
		breached := fmt.Sprintf("Breached (>%gh)", th.SLAHours)
		data.SLACounts = countCategories(flags, func(cell string) string {
			switch flag := ParseNumber(cell); {
			case flag == nil:
				return "Missing"
			case *flag != 0:
				return breached
			default:
				return met
			}
		})
		sortByCount(data.SLACounts)
	}

	values := numericValues(t.Column(domain.ColumnResolutionHours))
	if len(values) > 0 {
		sort.Float64s(values)
		clip := quantileSorted(values, histogramClipQuantile)
		for i, v := range values {
			values[i] = math.Min(v, clip)
		}
		data.ResolutionClip = &clip
		data.ResolutionBins = Histogram(values, HistogramBins)
	}

	return data
}

// Histogram counts sorted values into n equal-width bins spanning their
// range. A single distinct value gets a unit-wide range centred on it.
func Histogram(sorted []float64, n int) []domain.HistogramBin {
	if len(sorted) == 0 || n <= 0 {
		return nil
	}

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	dividers := floats.Span(make([]float64, n+1), lo, hi)
	// The last bin is closed on the right.
	dividers[n] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)

	bins := make([]domain.HistogramBin, n)
	for i := range bins {
		bins[i] = domain.HistogramBin{
			Lower: dividers[i],
			Upper: dividers[i+1],
			Count: int(counts[i]),
		}
	}
	bins[n-1].Upper = hi
	return bins
}
