package runner

import (
	"context"
)

const consoleLauncherClass = "org.junit.platform.console.ConsoleLauncher"

// RunTests compiles if needed and launches the JUnit console for the given
// selectors. Class selectors are package-qualified class names; method
// selectors use the Class#method form. The launcher's exit code reflects
// test failures, so a non-zero exit is not an execution error here.
func (r *Runner) RunTests(ctx context.Context, classSelectors []string, methodSelectors []string) (*ExecutionResult, error) {
	if err := r.Compile(ctx); err != nil {
		return nil, err
	}
	tc, err := FindToolchain(r.cfg)
	if err != nil {
		return nil, err
	}

	args := []string{
		"-cp", r.classpath(),
		consoleLauncherClass,
		"--disable-banner",
		"--disable-ansi-colors",
		"--details=tree",
	}
	for _, c := range classSelectors {
		args = append(args, "--select-class="+c)
	}
	for _, m := range methodSelectors {
		args = append(args, "--select-method="+m)
	}

	return r.execute(ctx, r.cfg.RunTimeout(), tc.Java, args, "")
}
