package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"corocheck/internal/data/history"
)

func RenderTrendTSV(trends []history.PathTrend) []byte {
	var buf strings.Builder
	buf.WriteString("Path\tRuns\tMismatches\tDeltaMismatches\tStatus\n")
	for _, t := range trends {
		fmt.Fprintf(&buf, "%s\t%d\t%d\t%+d\t%s\n", t.Path, t.Runs, t.LastMismatches, t.DeltaMismatch, t.LastStatus)
	}
	return []byte(buf.String())
}

func RenderTrendJSON(trends []history.PathTrend) ([]byte, error) {
	return json.MarshalIndent(trends, "", "  ")
}

// RenderVerdictTSV lists the stored verdicts of one run.
func RenderVerdictTSV(verdicts []history.Verdict) []byte {
	var buf strings.Builder
	buf.WriteString("Line\tColumn\tCallee\tCoroutine\tDelegated\tTier\tUsage\n")
	for _, v := range verdicts {
		fmt.Fprintf(&buf, "%d\t%d\t%s\t%t\t%t\t%s\t%s\n", v.Line, v.Column, v.Callee, v.Coroutine, v.Delegated, v.Tier, v.Usage)
	}
	return []byte(buf.String())
}

func RenderVerdictJSON(verdicts []history.Verdict) ([]byte, error) {
	return json.MarshalIndent(verdicts, "", "  ")
}
