package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"autograde/internal/config"
	"autograde/internal/errors"
	"autograde/internal/lang"
	"autograde/internal/logging"
	"autograde/internal/paths"
	"autograde/internal/project"
)

// ExecutionResult is the captured outcome of one subprocess run.
type ExecutionResult struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Elapsed   time.Duration
	Truncated bool
}

// Runner compiles and executes one project. Obtain instances through For so
// compilation is shared across all graders of the same project.
type Runner struct {
	project *project.Project
	cfg     *config.Config
	logger  *logging.Logger

	compileOnce sync.Once
	compileErr  error
}

var (
	registryMu sync.Mutex
	registry   = map[*project.Project]*Runner{}
)

// For returns the runner bound to p, creating it on first call. The first
// caller's configuration and logger win; later arguments are ignored so the
// compile-once guarantee holds across graders.
func For(p *project.Project, cfg *config.Config, logger *logging.Logger) *Runner {
	registryMu.Lock()
	defer registryMu.Unlock()
	if r, ok := registry[p]; ok {
		return r
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	r := &Runner{project: p, cfg: cfg, logger: logger}
	registry[p] = r
	return r
}

func (r *Runner) buildDir() string {
	return paths.BuildDir(r.project.Root())
}

func (r *Runner) classpath() string {
	parts := []string{r.buildDir(), r.project.Root()}
	parts = append(parts, libJars(r.project.Root(), r.cfg.Toolchain.LibDir)...)
	return strings.Join(parts, string(filepath.ListSeparator))
}

// Compile compiles every Java file in the project into the build directory.
// The first call does the work; all later calls return the memoized result.
// Compiler diagnostics are preserved verbatim on the error.
func (r *Runner) Compile(ctx context.Context) error {
	r.compileOnce.Do(func() {
		r.compileErr = r.compile(ctx)
	})
	return r.compileErr
}

func (r *Runner) compile(ctx context.Context) error {
	var sources []string
	for _, f := range r.project.Files() {
		if f.Language() == lang.LangJava {
			sources = append(sources, f.Path())
		}
	}
	if len(sources) == 0 {
		return nil
	}

	tc, err := FindToolchain(r.cfg)
	if err != nil {
		return err
	}

	args := []string{
		"-g",
		"-encoding", "utf8",
		"-d", r.buildDir(),
		"-cp", r.classpath(),
		"--source-path", r.project.Root(),
	}
	args = append(args, sources...)

	res, err := r.execute(ctx, r.cfg.CompileTimeout(), tc.Javac, args, "")
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return errors.New(errors.CompileError, "compilation failed", nil).
			WithDetails(strings.TrimSpace(res.Stderr + "\n" + res.Stdout))
	}

	if r.logger != nil {
		r.logger.Debug("compiled project", map[string]interface{}{
			"files": len(sources), "elapsed": res.Elapsed.String(),
		})
	}
	return nil
}

// DocCheck compiles one source file with doclint enabled and returns the
// combined compiler output, which carries a warning line per javadoc
// problem. A compilation failure is a CompileError with the diagnostics
// preserved, as in Compile.
func (r *Runner) DocCheck(ctx context.Context, sourcePath string) (string, error) {
	tc, err := FindToolchain(r.cfg)
	if err != nil {
		return "", err
	}

	args := []string{
		"-g",
		"-encoding", "utf8",
		"-d", r.buildDir(),
		"-cp", r.classpath(),
		"--source-path", r.project.Root(),
		"-Xdiags:verbose",
		"-Xdoclint",
		sourcePath,
	}

	res, err := r.execute(ctx, r.cfg.CompileTimeout(), tc.Javac, args, "")
	if err != nil {
		return "", err
	}
	output := strings.TrimSpace(res.Stderr + "\n" + res.Stdout)
	if res.ExitCode != 0 {
		return "", errors.New(errors.CompileError, "compilation failed", nil).
			WithDetails(output)
	}
	return output, nil
}

// Run compiles if needed and executes the class with the given
// package-qualified name, feeding stdin to the process. A run exceeding the
// configured timeout returns a Timeout error together with the output
// captured so far.
func (r *Runner) Run(ctx context.Context, mainClass, stdin string) (*ExecutionResult, error) {
	if err := r.Compile(ctx); err != nil {
		return nil, err
	}
	tc, err := FindToolchain(r.cfg)
	if err != nil {
		return nil, err
	}
	args := []string{"-cp", r.classpath(), mainClass}
	return r.execute(ctx, r.cfg.RunTimeout(), tc.Java, args, stdin)
}

// execute runs one subprocess with a deadline and capped output capture.
func (r *Runner) execute(ctx context.Context, timeout time.Duration, bin string, args []string, stdin string) (*ExecutionResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, args...)
	cmd.Dir = r.project.Root()
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	stdout := newCappedBuffer(r.cfg.Runner.OutputCapBytes)
	stderr := newCappedBuffer(r.cfg.Runner.OutputCapBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	res := &ExecutionResult{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Elapsed:   elapsed,
		Truncated: stdout.truncated || stderr.truncated,
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return res, errors.Newf(errors.Timeout,
			"%s did not finish within %s", filepath.Base(bin), timeout)
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if stderrors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, errors.New(errors.InternalError, "starting "+filepath.Base(bin), runErr)
	}
	return res, nil
}

type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func newCappedBuffer(limit int) *cappedBuffer {
	return &cappedBuffer{limit: limit}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	remaining := b.limit - b.buf.Len()
	if remaining <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		b.buf.Write(p[:remaining])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) String() string { return b.buf.String() }
