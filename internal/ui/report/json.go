package report

import (
	"encoding/json"
	"io"
	"log/slog"

	"corocheck/internal/engine/event"
)

// JSONReporter writes one JSON object per line.
type JSONReporter struct {
	enc *json.Encoder
}

func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{enc: json.NewEncoder(w)}
}

func (r *JSONReporter) Emit(e event.Event) {
	r.write(e)
}

type summaryLine struct {
	Kind string `json:"kind"`
	Summary
}

func (r *JSONReporter) Finish(s Summary) {
	r.write(summaryLine{Kind: "summary", Summary: s})
}

func (r *JSONReporter) write(v any) {
	if err := r.enc.Encode(v); err != nil {
		slog.Error("write report line", "error", err)
	}
}
