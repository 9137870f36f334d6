package vcs

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	git "gopkg.in/src-d/go-git.v4"

	"github.com/vendroo/repomirror/pkg/errors"
)

// execCommand is swapped out in tests.
var execCommand = exec.CommandContext

// InWorkTree reports whether path sits inside a git work tree. It only reads
// repository metadata and never mutates anything.
func InWorkTree(path string) bool {
	_, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// StageConfig stages the configuration artifact so registry changes show up
// in the user's next commit. It's best-effort bookkeeping: callers treat
// failures as warnings, not command errors.
func StageConfig(ctx context.Context, rootPath, artifactPath string) error {
	if err := run(ctx, rootPath, "add", "--", artifactPath); err != nil {
		return errors.WithContext(err, "git add")
	}
	return nil
}

// run invokes git as a subprocess. Only the exit status and standard error
// text are consumed; no assumptions are made about git's internal state.
func run(ctx context.Context, dir string, args ...string) error {
	gitArgs := append([]string{"-C", dir}, args...)
	cmd := execCommand(ctx, "git", gitArgs...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return errors.New(msg)
		}
		return err
	}
	return nil
}
