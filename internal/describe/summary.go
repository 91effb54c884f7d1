// Package describe computes the descriptive summaries shown with every
// result, plus the data series the plotting layer consumes (histogram bins,
// per-group quartiles, level counts).
package describe

import (
	"context"
	"math"

	"hypolab/domain/dataset"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// Bin is one histogram bucket over [Lo, Hi)
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// QuantSummary describes a quantitative column
type QuantSummary struct {
	N         int     `json:"n"`
	Missing   int     `json:"missing"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
	Min       float64 `json:"min"`
	Q25       float64 `json:"q25"`
	Median    float64 `json:"median"`
	Q75       float64 `json:"q75"`
	Max       float64 `json:"max"`
	Histogram []Bin   `json:"histogram"`
}

// LevelCount is one level's frequency in a qualitative column
type LevelCount struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

// QualSummary describes a qualitative column
type QualSummary struct {
	N       int          `json:"n"`
	Missing int          `json:"missing"`
	Levels  []LevelCount `json:"levels"`
}

// ColumnSummary is the per-column descriptive block; exactly one of Quant
// and Qual is set, matching the column's declared type.
type ColumnSummary struct {
	Name  string          `json:"name"`
	Type  dataset.VarType `json:"type"`
	Quant *QuantSummary   `json:"quantitative,omitempty"`
	Qual  *QualSummary    `json:"qualitative,omitempty"`
}

// Column summarizes a single column according to its declared type
func Column(col dataset.Column) (ColumnSummary, error) {
	summary := ColumnSummary{Name: col.Name, Type: col.Type}

	if col.Type == dataset.TypeQualitative {
		summary.Qual = summarizeQualitative(col)
		return summary, nil
	}

	quant, err := summarizeQuantitative(col)
	if err != nil {
		return ColumnSummary{}, err
	}
	summary.Quant = quant
	return summary, nil
}

// Dataset summarizes every column, one goroutine per column. Profiles are
// computed once at load time so selection changes render instantly.
func Dataset(ctx context.Context, ds *dataset.Dataset) ([]ColumnSummary, error) {
	cols := ds.Columns()
	summaries := make([]ColumnSummary, len(cols))

	g, _ := errgroup.WithContext(ctx)
	for i, col := range cols {
		i, col := i, col
		g.Go(func() error {
			s, err := Column(col)
			if err != nil {
				return err
			}
			summaries[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func summarizeQualitative(col dataset.Column) *QualSummary {
	counts := make(map[string]int)
	for _, v := range col.Raw {
		if v != "" {
			counts[v]++
		}
	}
	levels := col.Levels()
	out := make([]LevelCount, len(levels))
	n := 0
	for i, level := range levels {
		out[i] = LevelCount{Level: level, Count: counts[level]}
		n += counts[level]
	}
	return &QualSummary{
		N:       n,
		Missing: col.MissingCount(),
		Levels:  out,
	}
}

func summarizeQuantitative(col dataset.Column) (*QuantSummary, error) {
	sample, err := col.Numeric()
	if err != nil {
		return nil, err
	}
	if len(sample) == 0 {
		return &QuantSummary{Missing: col.MissingCount()}, nil
	}

	mean, _ := stats.Mean(sample)
	sd, _ := stats.StandardDeviationSample(sample)
	min, _ := stats.Min(sample)
	max, _ := stats.Max(sample)
	median, _ := stats.Median(sample)
	q25, _ := stats.Percentile(sample, 25)
	q75, _ := stats.Percentile(sample, 75)

	return &QuantSummary{
		N:         len(sample),
		Missing:   col.MissingCount(),
		Mean:      mean,
		StdDev:    sd,
		Min:       min,
		Q25:       q25,
		Median:    median,
		Q75:       q75,
		Max:       max,
		Histogram: histogram(sample, min, max),
	}, nil
}

// histogram bins the sample with Sturges' rule
func histogram(sample []float64, min, max float64) []Bin {
	n := len(sample)
	if n == 0 || min == max {
		return nil
	}
	k := int(math.Ceil(math.Log2(float64(n)))) + 1
	width := (max - min) / float64(k)

	bins := make([]Bin, k)
	for i := range bins {
		bins[i] = Bin{Lo: min + float64(i)*width, Hi: min + float64(i+1)*width}
	}
	for _, v := range sample {
		idx := int((v - min) / width)
		if idx >= k {
			idx = k - 1
		}
		bins[idx].Count++
	}
	return bins
}

// GroupBox holds the quartile data the plotting layer needs for one group's
// box in a grouped boxplot.
type GroupBox struct {
	Level  string  `json:"level"`
	N      int     `json:"n"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// GroupedBoxes computes per-level quartiles of the variable partitioned by
// the group, levels in first-appearance order.
func GroupedBoxes(ds *dataset.Dataset, varName, groupName string) ([]GroupBox, error) {
	grouped, levels, err := ds.GroupedNumeric(varName, groupName)
	if err != nil {
		return nil, err
	}

	boxes := make([]GroupBox, 0, len(levels))
	for _, level := range levels {
		sample := grouped[level]
		if len(sample) == 0 {
			continue
		}
		min, _ := stats.Min(sample)
		max, _ := stats.Max(sample)
		median, _ := stats.Median(sample)
		q25, _ := stats.Percentile(sample, 25)
		q75, _ := stats.Percentile(sample, 75)
		boxes = append(boxes, GroupBox{
			Level:  level,
			N:      len(sample),
			Min:    min,
			Q25:    q25,
			Median: median,
			Q75:    q75,
			Max:    max,
		})
	}
	return boxes, nil
}
