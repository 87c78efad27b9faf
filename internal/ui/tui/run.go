package tui

import (
	"context"
	"errors"
	"log/slog"

	"corocheck/internal/core/app"

	tea "github.com/charmbracelet/bubbletea"
)

// Run watches paths and shows the verdicts until the user quits. It returns
// after watching has stopped.
func Run(ctx context.Context, a *app.App, paths []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(initialModel(), tea.WithAltScreen(), tea.WithContext(ctx))
	a.SetUpdateHandler(func(update app.Update) {
		p.Send(updateMsg{update: update})
	})
	defer a.SetUpdateHandler(nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := a.Watch(ctx, paths, nil); err != nil {
			slog.Error("watch failed", "error", err)
		}
	}()

	_, err := p.Run()
	cancel()
	<-done
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
