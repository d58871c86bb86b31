package suiexec

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	clierr "github.com/afuentes/suicoin/internal/errors"
)

const (
	// DefaultBinary is the chain CLI this tool orchestrates.
	DefaultBinary = "sui"

	defaultTimeout = 60 * time.Second
	maxOutputBytes = 10 << 20
)

// Options tune one invocation.
type Options struct {
	Dir        string
	Timeout    time.Duration
	JSONOutput bool
}

// Runner is the process boundary the orchestrator depends on; tests swap in
// fakes.
type Runner interface {
	Run(ctx context.Context, args []string, opts Options) (string, error)
}

// Executor invokes the external binary with a bounded output buffer and a
// deadline. It never retries; callers decide.
type Executor struct {
	binary  string
	timeout time.Duration
	log     zerolog.Logger
}

func New(binary string, log zerolog.Logger) *Executor {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return &Executor{binary: binary, timeout: defaultTimeout, log: log}
}

func (e *Executor) Run(ctx context.Context, args []string, opts Options) (string, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = e.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	argv := append([]string(nil), args...)
	if opts.JSONOutput {
		argv = append(argv, "--json")
	}

	binary, err := e.resolveBinary()
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, binary, argv...)
	cmd.Dir = opts.Dir
	cmd.Env = environWithPath(augmentedSearchPath())

	stdout := newCappedBuffer(maxOutputBytes)
	stderr := newCappedBuffer(maxOutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	runErr := cmd.Run()
	e.log.Debug().Str("binary", e.binary).Strs("args", argv).Dur("took", time.Since(start)).Msg("process finished")

	if ctx.Err() == context.DeadlineExceeded {
		return "", clierr.New(clierr.CodeTimeout, e.binary+" command timed out")
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			detail := strings.TrimSpace(stderr.String())
			if detail == "" {
				detail = strings.TrimSpace(stdout.String())
			}
			if detail == "" {
				detail = runErr.Error()
			}
			return "", clierr.New(clierr.CodeProcess, detail)
		}
		return "", clierr.Wrap(clierr.CodeProcess, "run "+e.binary, runErr)
	}

	// Some subcommands print their result to stderr.
	out := strings.TrimSpace(stdout.String())
	if out == "" {
		out = strings.TrimSpace(stderr.String())
	}
	return out, nil
}

// resolveBinary probes PATH first, then the common per-OS install
// directories, so the tool works even when launched outside a login shell.
func (e *Executor) resolveBinary() (string, error) {
	if strings.ContainsRune(e.binary, os.PathSeparator) {
		return e.binary, nil
	}
	if path, err := exec.LookPath(e.binary); err == nil {
		return path, nil
	}
	for _, dir := range candidateDirs() {
		candidate := filepath.Join(dir, e.binary)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", clierr.New(clierr.CodeProcess, e.binary+" binary not found in PATH")
}

func candidateDirs() []string {
	var dirs []string
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(home, ".cargo", "bin"),
			filepath.Join(home, ".local", "bin"),
			filepath.Join(home, ".sui", "bin"),
		)
	}
	dirs = append(dirs, "/usr/local/bin", "/opt/homebrew/bin")
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	return dirs
}

func augmentedSearchPath() string {
	parts := []string{os.Getenv("PATH")}
	seen := map[string]bool{}
	for _, dir := range candidateDirs() {
		if dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true
		parts = append(parts, dir)
	}
	return strings.Join(parts, string(os.PathListSeparator))
}

func environWithPath(path string) []string {
	env := os.Environ()
	out := env[:0]
	for _, kv := range env {
		if !strings.HasPrefix(kv, "PATH=") {
			out = append(out, kv)
		}
	}
	return append(out, "PATH="+path)
}

// cappedBuffer keeps at most max bytes and silently drops the rest, so a
// runaway subprocess cannot exhaust memory.
type cappedBuffer struct {
	buf bytes.Buffer
	max int
}

func newCappedBuffer(max int) *cappedBuffer {
	return &cappedBuffer{max: max}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	remaining := b.max - b.buf.Len()
	if remaining <= 0 {
		return len(p), nil
	}
	if len(p) > remaining {
		b.buf.Write(p[:remaining])
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) String() string { return b.buf.String() }
