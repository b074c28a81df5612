package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

const DefaultDecimals = 4

// Row is one dataset in a statistics table.
type Row struct {
	Source      string  `json:"source"`
	Label       string  `json:"label"`
	Environment string  `json:"environment"`
	Stress      bool    `json:"stress"`
	Summary     Summary `json:"summary"`
}

func format(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// LaTeXRow renders a row ready to be pasted into a tabular environment:
//
//	& \textbf{src} & mean & median & std & Q1 & Q3 & min & max \\ \cline{2-9}
func LaTeXRow(source string, s Summary, decimals int) string {
	return fmt.Sprintf(`& \textbf{%s} & %s & %s & %s & %s & %s & %s & %s \\ \cline{2-9}`,
		source,
		format(s.Mean, decimals),
		format(s.Median, decimals),
		format(s.StdDev, decimals),
		format(s.Q1, decimals),
		format(s.Q3, decimals),
		format(s.Min, decimals),
		format(s.Max, decimals),
	)
}

func WriteLaTeX(w io.Writer, rows []Row, decimals int) error {
	for _, r := range rows {
		if _, err := fmt.Fprintln(w, LaTeXRow(r.Source, r.Summary, decimals)); err != nil {
			return err
		}
	}
	return nil
}

// WriteTable renders rows as a terminal table.
func WriteTable(w io.Writer, title string, rows []Row, decimals int) {
	if title != "" {
		fmt.Fprintln(w, title)
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Source", "Label", "Environment", "Stress", "Mean", "Median", "Std", "Q1", "Q3", "Min", "Max"})
	for _, r := range rows {
		s := r.Summary
		table.Append([]string{
			r.Source,
			r.Label,
			r.Environment,
			strconv.FormatBool(r.Stress),
			format(s.Mean, decimals),
			format(s.Median, decimals),
			format(s.StdDev, decimals),
			format(s.Q1, decimals),
			format(s.Q3, decimals),
			format(s.Min, decimals),
			format(s.Max, decimals),
		})
	}
	table.Render()
}
