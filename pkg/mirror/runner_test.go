package mirror

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendroo/repomirror/pkg/rules"
)

func TestRsyncRunnerArguments(t *testing.T) {
	var gotName string
	var gotArgs []string
	execCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		gotName = name
		gotArgs = args
		return exec.CommandContext(ctx, "true")
	}
	defer func() { execCommand = exec.CommandContext }()

	compiled, err := rules.Compile([]rules.Rule{
		{Pattern: "lib/***", Kind: rules.Include},
		{Pattern: "pubspec.yaml", Kind: rules.Include},
	})
	require.NoError(t, err)

	err = NewRsyncRunner().Mirror(context.Background(), Request{
		Source:      "/repos/vendroo-monorepo/user_app",
		Destination: "/repos/user_app",
		Rules:       compiled,
	})
	require.NoError(t, err)

	assert.Equal(t, "rsync", gotName)
	assert.Equal(t, []string{
		"--archive",
		"--delete",
		"--times",
		"--no-perms",
		"--no-owner",
		"--no-group",
		"--include=pubspec.yaml",
		"--include=lib/***",
		"--exclude=*",
		"/repos/vendroo-monorepo/user_app/",
		"/repos/user_app",
	}, gotArgs)
}

func TestRsyncRunnerDryRun(t *testing.T) {
	var gotArgs []string
	execCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		gotArgs = args
		return exec.CommandContext(ctx, "true")
	}
	defer func() { execCommand = exec.CommandContext }()

	err := NewRsyncRunner().Mirror(context.Background(), Request{
		Source:      "/src",
		Destination: "/dst",
		Rules:       []rules.Rule{rules.CatchAll},
		DryRun:      true,
	})
	require.NoError(t, err)
	assert.Contains(t, gotArgs, "--dry-run")
}

func TestRsyncRunnerSurfacesStderr(t *testing.T) {
	execCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c",
			"echo 'rsync: failed to set times' >&2; exit 23")
	}
	defer func() { execCommand = exec.CommandContext }()

	err := NewRsyncRunner().Mirror(context.Background(), Request{
		Source:      "/src",
		Destination: "/dst",
		Rules:       []rules.Rule{rules.CatchAll},
	})
	require.Error(t, err)
	assert.Equal(t, "rsync: failed to set times", err.Error())
}
