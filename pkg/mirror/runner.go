package mirror

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/vendroo/repomirror/pkg/errors"
	"github.com/vendroo/repomirror/pkg/rules"
)

// Request describes one invocation of the external mirroring tool.
type Request struct {
	// Source is the submodule's directory inside the monorepo.
	Source string

	// Destination is the resolved sibling directory.
	Destination string

	// Rules is the compiled rule list, catch-all included.
	Rules []rules.Rule

	// DryRun asks the tool to report what it would transfer without
	// touching the destination.
	DryRun bool
}

// Runner is the external file-mirroring collaborator. Implementations
// consume only the process exit status and standard error text.
type Runner interface {
	Mirror(ctx context.Context, req Request) error
}

// execCommand is swapped out in tests.
var execCommand = exec.CommandContext

// rsyncRunner shells out to rsync. Extraneous destination entries are
// deleted so the sibling reflects the rules rather than accumulating, and
// destination permissions and ownership are left alone beyond file content
// and modification times.
type rsyncRunner struct{}

// NewRsyncRunner returns the production Runner.
func NewRsyncRunner() Runner {
	return rsyncRunner{}
}

var baseArgs = []string{
	"--archive",
	"--delete",
	"--times",
	"--no-perms",
	"--no-owner",
	"--no-group",
}

func (rsyncRunner) Mirror(ctx context.Context, req Request) error {
	args := append([]string{}, baseArgs...)
	if req.DryRun {
		args = append(args, "--dry-run")
	}
	args = append(args, rules.RsyncArgs(req.Rules)...)

	// The trailing slash makes rsync mirror the directory's contents rather
	// than the directory itself.
	args = append(args, strings.TrimSuffix(req.Source, "/")+"/", req.Destination)

	cmd := execCommand(ctx, "rsync", args...)
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
