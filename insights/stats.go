package insights

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultIQRMultiplier is the conventional Tukey fence multiplier.
const DefaultIQRMultiplier = 1.5

// ColumnSummary holds descriptive statistics of one numeric column.
// Statistics of a column without values are NaN.
type ColumnSummary struct {
	Name   string
	Count  int
	Mean   float64
	Std    float64 // sample standard deviation
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// Describe summarizes every numeric column, skipping nulls.
func (d *Dataset) Describe() []ColumnSummary {
	var out []ColumnSummary
	for _, name := range d.NumericColumns() {
		vals, _ := d.values(name)
		out = append(out, summarize(name, vals))
	}
	return out
}

func summarize(name string, vals []float64) ColumnSummary {
	s := ColumnSummary{Name: name, Count: len(vals)}
	if len(vals) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Q1, s.Median, s.Q3, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	s.Mean = stat.Mean(sorted, nil)
	s.Std = math.NaN()
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	s.Min = floats.Min(sorted)
	s.Max = floats.Max(sorted)
	s.Q1 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q3 = quantile(sorted, 0.75)
	return s
}

// quantile returns the p-quantile of sorted by linear interpolation between
// the closest ranks, (n-1)*p.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// Fence is the inclusive range of non-outlying values of a column.
type Fence struct {
	Name  string
	Lower float64
	Upper float64
}

// Fences returns the IQR fences [Q1 - m*IQR, Q3 + m*IQR] of every numeric
// column that has values.
func (d *Dataset) Fences(multiplier float64) []Fence {
	var out []Fence
	for _, name := range d.NumericColumns() {
		vals, _ := d.values(name)
		if len(vals) == 0 {
			continue
		}
		sort.Float64s(vals)
		q1, q3 := quantile(vals, 0.25), quantile(vals, 0.75)
		iqr := q3 - q1
		out = append(out, Fence{Name: name, Lower: q1 - multiplier*iqr, Upper: q3 + multiplier*iqr})
	}
	return out
}

// Outliers returns the ascending indices of rows with a value outside its
// column's fence in any numeric column. Nulls never flag a row.
func (d *Dataset) Outliers(multiplier float64) []int {
	flagged := make(map[int]bool)
	for _, f := range d.Fences(multiplier) {
		vals, rows := d.values(f.Name)
		for i, v := range vals {
			if v < f.Lower || v > f.Upper {
				flagged[rows[i]] = true
			}
		}
	}

	out := make([]int, 0, len(flagged))
	for r := range flagged {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

// Matrix is a symmetric matrix over named columns.
type Matrix struct {
	Names  []string
	Values [][]float64
}

// At returns the entry for columns a and b, or NaN if either is unknown.
func (m Matrix) At(a, b string) float64 {
	i, j := indexOf(m.Names, a), indexOf(m.Names, b)
	if i < 0 || j < 0 {
		return math.NaN()
	}
	return m.Values[i][j]
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// Correlation returns the pairwise Pearson correlation of the numeric
// columns. Each pair only uses rows where both values are present; pairs with
// fewer than two such rows or zero variance are NaN.
func (d *Dataset) Correlation() Matrix {
	names := d.NumericColumns()
	m := Matrix{Names: names, Values: make([][]float64, len(names))}
	for i := range m.Values {
		m.Values[i] = make([]float64, len(names))
	}

	for i := range names {
		for j := i; j < len(names); j++ {
			r := d.pearson(names[i], names[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

func (d *Dataset) pearson(a, b string) float64 {
	ca, _ := d.Table.ColumnByName(a)
	cb, _ := d.Table.ColumnByName(b)

	var xs, ys []float64
	for i := 0; i < d.Table.NumRows(); i++ {
		x, okx := ca.Numeric(i)
		y, oky := cb.Numeric(i)
		if okx && oky {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	return r
}
