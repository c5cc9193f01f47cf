package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aristath/vigil/internal/modules/analysis"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	formatJSON    = "json"
	formatMsgpack = "msgpack"
	formatTable   = "table"
)

func checkFormat(format string, allowed ...string) error {
	for _, f := range allowed {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want one of %v)", format, allowed)
}

// encode writes v as indented JSON or msgpack.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatMsgpack:
		return msgpack.NewEncoder(w).Encode(v)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// writeTable prints one summary row per report.
func writeTable(w io.Writer, reports []*analysis.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tACTION\tCONF\tSTRENGTH\tTREND\tRISK\tSIZE\tSTOP\tTARGET\tALERTS")
	for _, r := range reports {
		trend, level, size, stop, target := "-", "-", "-", "-", "-"
		if r.Trend != nil {
			trend = string(r.Trend.Direction)
		}
		if r.RiskMetrics != nil {
			level = fmt.Sprintf("%s(%.0f)", r.RiskMetrics.Level, r.RiskMetrics.Score)
		}
		if r.PositionRecommendation != nil {
			size = fmt.Sprintf("%.1f%%", r.PositionRecommendation.Fraction*100)
		}
		if r.StopLossTarget != nil {
			stop = fmt.Sprintf("%.2f", r.StopLossTarget.Stop)
			target = fmt.Sprintf("%.2f", r.StopLossTarget.Target)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%+d\t%s\t%s\t%s\t%s\t%s\t%d\n",
			r.Symbol, r.Signal.Action, r.Signal.Confidence, r.Signal.Strength,
			trend, level, size, stop, target, len(r.Alerts))
	}
	return tw.Flush()
}
