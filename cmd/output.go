package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fundmatch/internal/model"
)

// renderResult writes a match result as pretty JSON or a rank table.
func renderResult(w io.Writer, result *model.MatchResult, format string) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(result), "encode result")
	case "table":
		return renderTable(w, result)
	default:
		return eris.Errorf("unknown output format %q", format)
	}
}

func renderTable(w io.Writer, result *model.MatchResult) error {
	fmt.Fprintf(w, "Company: %s\n", result.Profile.Name)
	if len(result.Profile.Industries) > 0 {
		fmt.Fprintf(w, "Industries: %s\n", strings.Join(result.Profile.Industries, ", "))
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tFUND\tSCORE\tDEAL TYPE\tTOP FACTOR")
	for i, item := range result.Shortlist {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%s\t%s\n",
			i+1, item.Fund, item.Score, dealTypeLabel(item), topFactor(item))
	}
	return eris.Wrap(tw.Flush(), "flush table")
}

func dealTypeLabel(item model.ShortlistItem) string {
	if s := item.Subscore(model.FactorDealType); s != nil {
		return string(s.Classification)
	}
	return ""
}

// topFactor names the subscore contributing the most to the total. Ties
// keep the earlier factor, matching the fixed subscore order.
func topFactor(item model.ShortlistItem) string {
	best := ""
	bestContribution := 0.0
	for _, s := range item.Subscores {
		if s.Contribution > bestContribution {
			best = s.Factor
			bestContribution = s.Contribution
		}
	}
	if best == "" {
		return "none"
	}
	return best
}

// writeOutput routes rendered output to a file or stdout.
func writeOutput(result *model.MatchResult, format, outPath string) error {
	if outPath == "" {
		return renderResult(os.Stdout, result, format)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return eris.Wrapf(err, "create output file %s", outPath)
	}
	defer f.Close()
	return renderResult(f, result, format)
}
