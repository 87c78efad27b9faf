package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// configureLogging installs the default slog logger. In UI mode logs go to a
// file under the state directory so they do not corrupt the screen.
func configureLogging(ui, verbose bool, stderr io.Writer) func() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	output := stderr
	cleanup := func() {}
	if ui {
		if f := openLogFile(resolveLogPath(), stderr); f != nil {
			output = f
			cleanup = func() { _ = f.Close() }
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level})))
	return cleanup
}

func openLogFile(logPath string, stderr io.Writer) *os.File {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		fmt.Fprintf(stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		return nil
	}
	if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
		fmt.Fprintf(stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
		return nil
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		fmt.Fprintf(stderr, "warning: failed to open log file %s: %v\n", logPath, err)
		return nil
	}
	return f
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "corocheck", "corocheck.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "corocheck", "corocheck.log")
	}

	return "corocheck.log"
}
