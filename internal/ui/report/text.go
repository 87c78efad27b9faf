package report

import (
	"fmt"
	"io"
	"strings"

	"corocheck/internal/engine/event"
	"corocheck/internal/shared/util"

	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	notice  lipgloss.Style
	keyword lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	muted   lipgloss.Style
}

func newPalette(w io.Writer, color bool) palette {
	if !color {
		plain := lipgloss.NewStyle()
		return palette{notice: plain, keyword: plain, good: plain, bad: plain, muted: plain}
	}
	r := lipgloss.NewRenderer(w)
	return palette{
		notice:  r.NewStyle().Foreground(lipgloss.Color("#FBBF24")),
		keyword: r.NewStyle().Foreground(lipgloss.Color("#FBBF24")).Bold(true),
		good:    r.NewStyle().Foreground(lipgloss.Color("#10B981")),
		bad:     r.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#64748B")).Italic(true),
	}
}

// TextReporter writes one block per event. Coroutine definitions, delegation
// keywords and callee echoes are highlighted; verdicts are green when usage
// is correct and red when the call looks like a bug.
type TextReporter struct {
	w       io.Writer
	style   palette
	pending string
}

func NewTextReporter(w io.Writer, color bool) *TextReporter {
	return &TextReporter{w: w, style: newPalette(w, color)}
}

func (r *TextReporter) Emit(e event.Event) {
	switch e.Kind {
	case event.KindSignature:
		r.flushPending()
		fmt.Fprintf(r.w, "%s %s\n", r.location(e), r.style.notice.Render(e.Name))
	case event.KindDelegation:
		// The keyword prefixes the echo of the call it gates.
		r.flushPending()
		r.pending = e.Name
	case event.KindCall:
		r.writeCall(e)
	}
}

func (r *TextReporter) writeCall(e event.Event) {
	echo := r.style.notice.Render(e.Name)
	if r.pending != "" {
		echo = r.style.keyword.Render(r.pending) + " " + echo
		r.pending = ""
	}
	fmt.Fprintf(r.w, "%s %s\n", r.location(e), echo)

	verdict := e.Name + " is not coroutine"
	if e.Coroutine {
		verdict = e.Name + " is coroutine"
	}
	style := r.style.good
	if e.Mismatch() {
		style = r.style.bad
	}
	line := "  " + style.Render(verdict)
	if e.Mismatch() {
		line += " " + style.Render("("+string(e.Usage)+")")
	}
	fmt.Fprintf(r.w, "%s %s\n", line, r.style.muted.Render("["+string(e.Tier)+"]"))
}

func (r *TextReporter) flushPending() {
	if r.pending == "" {
		return
	}
	fmt.Fprintln(r.w, r.style.keyword.Render(r.pending))
	r.pending = ""
}

func (r *TextReporter) location(e event.Event) string {
	return r.style.muted.Render(e.Location.String())
}

func (r *TextReporter) Finish(s Summary) {
	r.flushPending()

	parts := []string{
		fmt.Sprintf("%d %s", s.Calls, util.Plural(s.Calls, "call", "calls")),
		fmt.Sprintf("%d %s", s.Coroutines, util.Plural(s.Coroutines, "coroutine", "coroutines")),
	}
	if s.Unresolved > 0 {
		parts = append(parts, fmt.Sprintf("%d unresolved", s.Unresolved))
	}
	mismatches := fmt.Sprintf("%d %s", s.Mismatches, util.Plural(s.Mismatches, "mismatch", "mismatches"))
	if s.Mismatches > 0 {
		mismatches = r.style.bad.Render(mismatches)
	} else {
		mismatches = r.style.good.Render(mismatches)
	}
	parts = append(parts, mismatches)

	fmt.Fprintf(r.w, "%s: %s\n", s.Path, strings.Join(parts, ", "))
}
