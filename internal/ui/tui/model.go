// Package tui is an interactive browser over the verdicts of watched files.
package tui

import (
	"fmt"
	"time"

	"corocheck/internal/core/app"
	"corocheck/internal/engine/event"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	mismatchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	faultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type panel int

const (
	panelMismatches panel = iota
	panelCalls
)

type item struct {
	title, desc string
	file        string
	line        int
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list       list.Model
	mode       panel
	results    []app.Result
	lastUpdate time.Time
	status     string
}

type updateMsg struct {
	update app.Update
}

type editorResultMsg struct {
	target string
	err    error
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Likely bugs"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{list: l, lastUpdate: time.Now()}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering {
			if next, cmd, handled := handleKey(msg, m); handled {
				return next, cmd
			}
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.results = msg.update.Results
		m.lastUpdate = msg.update.At
		m.refreshItems()
	case editorResultMsg:
		if msg.err != nil {
			m.status = mismatchStyle.Render(fmt.Sprintf("open %s: %v", msg.target, msg.err))
		} else {
			m.status = statusStyle.Render("returned from " + msg.target)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) refreshItems() {
	items := []list.Item{}
	for _, res := range m.results {
		if res.Err != nil {
			items = append(items, item{
				title: "Analysis fault",
				desc:  fmt.Sprintf("%s: %v", res.Path, res.Err),
				file:  res.Path,
				line:  1,
			})
		}
		for _, call := range res.Calls() {
			if m.mode == panelMismatches && !call.Mismatch() {
				continue
			}
			items = append(items, callItem(call))
		}
	}
	m.list.SetItems(items)
}

func callItem(e event.Event) item {
	verdict := "is not coroutine"
	if e.Coroutine {
		verdict = "is coroutine"
	}
	title := e.Name + " " + verdict
	if e.Delegated {
		title = "yield from " + title
	}
	desc := fmt.Sprintf("%s [%s]", e.Location, e.Tier)
	if e.Mismatch() {
		desc = fmt.Sprintf("%s: %s", e.Usage, desc)
	}
	return item{title: title, desc: desc, file: e.Location.File, line: e.Location.Line}
}

func (m model) counts() (files, mismatches, faults int) {
	for _, res := range m.results {
		files++
		if res.Err != nil {
			faults++
		}
		for _, call := range res.Calls() {
			if call.Mismatch() {
				mismatches++
			}
		}
	}
	return files, mismatches, faults
}

func (m model) View() string {
	files, mismatches, faults := m.counts()
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | tab: toggle view, o: open",
		m.lastUpdate.Format("15:04:05"), files))

	var summary string
	if mismatches == 0 && faults == 0 {
		summary = successStyle.Render("No mismatches")
	} else {
		summary = fmt.Sprintf("%s | %s",
			mismatchStyle.Render(fmt.Sprintf("%d Mismatches", mismatches)),
			faultStyle.Render(fmt.Sprintf("%d Faults", faults)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Coroutine Delegation Monitor"), status, summary)
	if m.status != "" {
		header += m.status + "\n"
	}
	return docStyle.Render(header + "\n" + m.list.View())
}
