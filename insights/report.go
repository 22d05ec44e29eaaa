package insights

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Report bundles the analyses of a dataset.
type Report struct {
	Rows        int
	Multiplier  float64
	Summary     []ColumnSummary
	Fences      []Fence
	Outliers    []int
	Correlation Matrix
}

// Generate runs every analysis using the given IQR multiplier.
func (d *Dataset) Generate(multiplier float64) Report {
	return Report{
		Rows:        d.Table.NumRows(),
		Multiplier:  multiplier,
		Summary:     d.Describe(),
		Fences:      d.Fences(multiplier),
		Outliers:    d.Outliers(multiplier),
		Correlation: d.Correlation(),
	}
}

// Render writes the report as aligned text tables.
func (r Report) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.Debug)

	fmt.Fprintf(tw, "Summary (%d rows)\n", r.Rows)
	fmt.Fprintln(tw, "column\tcount\tmean\tstd\tmin\t25%\t50%\t75%\tmax\t")
	for _, s := range r.Summary {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			s.Name, s.Count, num(s.Mean), num(s.Std), num(s.Min),
			num(s.Q1), num(s.Median), num(s.Q3), num(s.Max))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(tw, "\nOutliers (IQR x %s)\n", num(r.Multiplier))
	if len(r.Outliers) == 0 {
		fmt.Fprintln(tw, "No outliers detected.")
	} else {
		rows := make([]string, len(r.Outliers))
		for i, o := range r.Outliers {
			rows[i] = strconv.Itoa(o)
		}
		fmt.Fprintf(tw, "%d rows: %s\n", len(r.Outliers), strings.Join(rows, ", "))
		fmt.Fprintln(tw, "column\tlower\tupper\t")
		for _, f := range r.Fences {
			fmt.Fprintf(tw, "%s\t%s\t%s\t\n", f.Name, num(f.Lower), num(f.Upper))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(tw, "\nCorrelation")
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(r.Correlation.Names, "\t"))
	for i, name := range r.Correlation.Names {
		cells := make([]string, len(r.Correlation.Values[i]))
		for j, v := range r.Correlation.Values[i] {
			cells[j] = num(v)
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", name, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
