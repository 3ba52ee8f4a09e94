package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/practicearena/coachcore/internal/errors"
	"github.com/practicearena/coachcore/internal/model"
)

// maxOutputBytes caps stdout/stderr captured from any one container run.
// Student code that floods stdout should not be able to exhaust memory here.
const maxOutputBytes = 1 * 1024 * 1024 // 1MB

// gracefulShutdownTimeout is how long Run waits after SIGINT before
// escalating to SIGKILL against the docker CLI's process group.
const gracefulShutdownTimeout = 3 * time.Second

// RawRun is what a single container invocation produced, before EXEC
// classifies it into a model.ExecutionResult.
type RawRun struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Duration  time.Duration
	TimedOut  bool
	Truncated bool
}

// Runner drives the container runtime CLI to execute one source file inside
// an isolated, network-disabled container and captures its output.
type Runner struct {
	security *SecurityChecker
	log      *logrus.Entry
}

// NewRunner creates a Runner that resolves the docker binary through a
// SecurityChecker before every invocation.
func NewRunner(log *logrus.Entry) *Runner {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Runner{security: NewSecurityChecker(), log: log}
}

// Run writes sourceCode to a fresh temp workdir, launches spec's image
// against it with the given stdin, and enforces timeout as a wall-clock
// deadline on the container. It never returns an error for student-code
// failures (non-zero exit, timeout) — those are reported in RawRun. It
// returns an error only for sandbox-infrastructure failures: the docker
// binary not resolving, the workdir not being writable, and the like.
func (r *Runner) Run(ctx context.Context, spec *LanguageSpec, sourceCode, stdin string, timeout time.Duration) (*RawRun, error) {
	start := time.Now()

	binPath, err := r.security.ResolveBinary("docker")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeServiceUnavailable, "container runtime not available").WithDetailsf("%v", err)
	}
	if err := r.security.VerifyBinary(binPath); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeServiceUnavailable, "container runtime failed verification")
	}

	workdir, err := os.MkdirTemp("", "coachcore-sandbox-*")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "create sandbox workdir")
	}
	defer os.RemoveAll(workdir)

	sourcePath := filepath.Join(workdir, spec.FileName)
	if err := os.WriteFile(sourcePath, []byte(sourceCode), 0o644); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "write sandbox source file")
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := r.buildDockerArgs(spec, workdir, timeout)

	cmd := exec.Command(binPath, args...)
	cmd.Env = r.security.SanitizeEnv()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdin = bytesReader(stdin)

	var stdout, stderr bytes.Buffer
	stdoutLW := &LimitedWriter{W: &stdout, N: maxOutputBytes}
	stderrLW := &LimitedWriter{W: &stderr, N: maxOutputBytes}
	cmd.Stdout = stdoutLW
	cmd.Stderr = stderrLW

	if err := cmd.Start(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeServiceUnavailable, "start container runtime")
	}

	done := make(chan error, 1)
	exited := make(chan struct{})
	go func() {
		err := cmd.Wait()
		done <- err
		close(exited)
	}()

	go func() {
		select {
		case <-runCtx.Done():
			pgid := cmd.Process.Pid
			if err := syscall.Kill(-pgid, syscall.SIGINT); err != nil {
				_ = cmd.Process.Signal(syscall.SIGINT)
			}
			select {
			case <-exited:
			case <-time.After(gracefulShutdownTimeout):
				_ = syscall.Kill(-pgid, syscall.SIGKILL)
				_ = cmd.Process.Signal(os.Kill)
			}
		case <-exited:
		}
	}()

	waitErr := <-done
	elapsed := time.Since(start)

	raw := &RawRun{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Duration:  elapsed,
		Truncated: stdoutLW.Truncated || stderrLW.Truncated,
	}

	if cmd.ProcessState != nil {
		raw.ExitCode = cmd.ProcessState.ExitCode()
	} else {
		raw.ExitCode = model.InfrastructureExitCode
	}

	r.log.WithFields(logrus.Fields{
		"language":  spec.Language,
		"exit_code": raw.ExitCode,
		"duration":  elapsed.Seconds(),
		"truncated": raw.Truncated,
	}).Debug("sandbox run finished")

	if runCtx.Err() == context.DeadlineExceeded {
		raw.TimedOut = true
		return raw, nil
	}

	if waitErr != nil {
		if _, ok := waitErr.(*exec.ExitError); ok {
			return raw, nil
		}
		return nil, apperrors.Wrap(waitErr, apperrors.ErrorTypeExecutionFailed, "container runtime exited abnormally")
	}

	return raw, nil
}

func (r *Runner) buildDockerArgs(spec *LanguageSpec, workdir string, timeout time.Duration) []string {
	args := []string{
		"run", "--rm",
		"--network=none",
		"--memory=" + spec.MemoryLimit,
		"--cpus=" + spec.CPUQuota,
		"--pids-limit=" + strconv.Itoa(spec.PidsLimit),
		"--user=" + dockerUID,
		"--read-only",
		"--tmpfs=/tmp:size=16m,mode=1777",
		"--security-opt=no-new-privileges",
		"--cap-drop=ALL",
		"-v", fmt.Sprintf("%s:/workdir:ro", workdir),
		"-w", "/workdir",
		spec.Image,
	}
	args = append(args, spec.BuildArgs("/workdir")...)
	return args
}

// bytesReader adapts a string to an io.Reader without pulling in strings
// just for this one call site.
func bytesReader(s string) *bytes.Reader {
	return bytes.NewReader([]byte(s))
}

// LimitedWriter wraps a buffer with a byte ceiling; once the ceiling is
// reached, further writes are discarded but reported as consumed so the
// container's write calls never block on a full pipe.
type LimitedWriter struct {
	W         *bytes.Buffer
	N         int64
	written   int64
	Truncated bool
}

func (lw *LimitedWriter) Write(p []byte) (int, error) {
	if lw.written >= lw.N {
		lw.Truncated = true
		return len(p), nil
	}
	remaining := lw.N - lw.written
	if int64(len(p)) > remaining {
		n, err := lw.W.Write(p[:remaining])
		lw.written += int64(n)
		lw.Truncated = true
		return len(p), err
	}
	n, err := lw.W.Write(p)
	lw.written += int64(n)
	return n, err
}
