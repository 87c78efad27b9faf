package tui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func handleKey(msg tea.KeyMsg, m model) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit, true
	case "tab":
		if m.mode == panelMismatches {
			m.mode = panelCalls
			m.list.Title = "All calls"
		} else {
			m.mode = panelMismatches
			m.list.Title = "Likely bugs"
		}
		m.refreshItems()
		return m, nil, true
	case "o":
		selected, ok := m.list.SelectedItem().(item)
		if !ok || selected.file == "" {
			m.status = statusStyle.Render("Nothing selected.")
			return m, nil, true
		}
		return m, openEditorCmd(selected.file, selected.line), true
	}
	return m, nil, false
}

func openEditorCmd(file string, line int) tea.Cmd {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	args := []string{file}
	if strings.Contains(editor, "vim") || strings.HasSuffix(editor, "vi") {
		args = []string{fmt.Sprintf("+%d", line), file}
	}
	label := fmt.Sprintf("%s:%d", file, line)
	return tea.ExecProcess(exec.Command(editor, args...), func(err error) tea.Msg {
		return editorResultMsg{target: label, err: err}
	})
}
