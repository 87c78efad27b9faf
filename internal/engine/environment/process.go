package environment

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"corocheck/internal/core/errors"
)

//go:embed helper.py
var helperScript string

const maxStderr = 16 << 10

type importRequest struct {
	Filename string          `json:"filename"`
	Imports  []importPayload `json:"imports"`
}

type importPayload struct {
	Source string `json:"source"`
	Line   int    `json:"line"`
}

type evalRequest struct {
	Expr string `json:"expr"`
}

type evalResponse struct {
	Status    string `json:"status"`
	Coroutine bool   `json:"coroutine"`
	Error     string `json:"error"`
	Line      int    `json:"line"`
}

// ProcessEnvironment evaluates expressions inside a Python interpreter that
// has executed the subject file's imports in a fresh namespace.
type ProcessEnvironment struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	enc    *json.Encoder
	dec    *json.Decoder
	stderr *limitedBuffer

	mu     sync.Mutex
	closed bool
}

// StartProcess launches python with the helper script and executes imports.
// The interpreter runs in the subject file's directory so sibling modules
// resolve. A fault while importing is returned as CodeEnvironment.
func StartProcess(ctx context.Context, python, path string, imports []Import) (*ProcessEnvironment, error) {
	if strings.TrimSpace(python) == "" {
		python = "python3"
	}

	cmd := exec.CommandContext(ctx, python, "-c", helperScript)
	if dir := filepath.Dir(path); dir != "" {
		cmd.Dir = dir
	}
	stderr := &limitedBuffer{limit: maxStderr}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeEnvironment, "open interpreter stdin")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeEnvironment, "open interpreter stdout")
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeEnvironment, "start interpreter"), "python", python)
	}

	env := &ProcessEnvironment{
		cmd:    cmd,
		stdin:  stdin,
		enc:    json.NewEncoder(stdin),
		dec:    json.NewDecoder(bufio.NewReader(stdout)),
		stderr: stderr,
	}

	req := importRequest{Filename: path, Imports: make([]importPayload, 0, len(imports))}
	for _, imp := range imports {
		req.Imports = append(req.Imports, importPayload{Source: imp.Source, Line: imp.Line})
	}
	slog.Debug("executing imports", "path", path, "count", len(imports), "python", python)

	if err := env.enc.Encode(req); err != nil {
		_ = env.Close()
		return nil, env.fault("send imports", err)
	}
	var ready evalResponse
	if err := env.dec.Decode(&ready); err != nil {
		_ = env.Close()
		return nil, env.fault("read import status", err)
	}
	if ready.Status != "ready" {
		_ = env.Close()
		err := errors.New(errors.CodeEnvironment, fmt.Sprintf("import execution failed: %s", ready.Error))
		err = errors.AddContext(err, errors.CtxPath, path)
		return nil, errors.AddContext(err, errors.CtxLine, ready.Line)
	}
	return env, nil
}

func (e *ProcessEnvironment) Evaluate(ctx context.Context, expr string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false, errors.New(errors.CodeEnvironment, "interpreter already closed")
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if err := e.enc.Encode(evalRequest{Expr: expr}); err != nil {
		return false, e.fault("send expression", err)
	}
	var resp evalResponse
	if err := e.dec.Decode(&resp); err != nil {
		return false, e.fault("read evaluation", err)
	}

	switch resp.Status {
	case "ok":
		return resp.Coroutine, nil
	case "name_error":
		return false, nameError(expr, resp.Error)
	default:
		err := errors.New(errors.CodeEnvironment, fmt.Sprintf("evaluation failed: %s", resp.Error))
		return false, errors.AddContext(err, errors.CtxSymbol, expr)
	}
}

func (e *ProcessEnvironment) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	_ = e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		slog.Debug("interpreter exited", "error", err, "stderr", e.stderr.String())
	}
	return nil
}

func (e *ProcessEnvironment) fault(op string, err error) error {
	wrapped := errors.Wrap(err, errors.CodeEnvironment, op)
	if tail := strings.TrimSpace(e.stderr.String()); tail != "" {
		wrapped = errors.AddContext(wrapped, "stderr", tail)
	}
	return wrapped
}

// limitedBuffer keeps the first limit bytes written to it.
type limitedBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
