package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/okian/sentiscope/internal/domain/model"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderReports(w io.Writer, format string, reports []FileReport) error {
	if format == OutputJSON {
		if len(reports) == 1 && reports[0].Error == "" {
			return writeJSON(w, reports[0].Report)
		}
		return writeJSON(w, reports)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for i, fr := range reports {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		if fr.Name != "" {
			fmt.Fprintf(tw, "file:\t%s\n", fr.Name)
		}
		if fr.Error != "" {
			fmt.Fprintf(tw, "error:\t%s\n", fr.Error)
			continue
		}
		r := fr.Report
		fmt.Fprintf(tw, "label:\t%s\n", r.Label)
		fmt.Fprintf(tw, "polarity:\t%s\n", formatFloat(r.Document.Polarity))
		fmt.Fprintf(tw, "subjectivity:\t%s\n", formatFloat(r.Document.Subjectivity))
		fmt.Fprintf(tw, "thresholds:\t(%s, %s)\n", formatFloat(r.Thresholds.Low), formatFloat(r.Thresholds.High))
		fmt.Fprintf(tw, "tokens:\t%d\n", r.TokenCount)
		writeBuckets(tw, r.Tokens)
	}
	return tw.Flush()
}

func renderScore(w io.Writer, format string, s ScoreResult) error {
	if format == OutputJSON {
		return writeJSON(w, s)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "label:\t%s\n", s.Label)
	fmt.Fprintf(tw, "polarity:\t%s\n", formatFloat(s.Polarity))
	fmt.Fprintf(tw, "subjectivity:\t%s\n", formatFloat(s.Subjectivity))
	return tw.Flush()
}

func renderTokens(w io.Writer, format string, b model.TokenBuckets) error {
	if format == OutputJSON {
		return writeJSON(w, b)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	writeBuckets(tw, b)
	return tw.Flush()
}

func writeBuckets(w io.Writer, b model.TokenBuckets) {
	fmt.Fprintf(w, "positives:\t%s\n", joinScores(b.Positives))
	fmt.Fprintf(w, "negatives:\t%s\n", joinScores(b.Negatives))
	fmt.Fprintf(w, "neutral:\t%s\n", strings.Join(b.Neutral, " "))
}

func joinScores(scores []model.TokenScore) string {
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = s.Token + "(" + formatFloat(s.Compound) + ")"
	}
	return strings.Join(parts, " ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
