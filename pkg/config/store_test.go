package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendroo/repomirror/pkg/errors"
	"github.com/vendroo/repomirror/pkg/rules"
)

func TestLoadNotInitialized(t *testing.T) {
	fs = afero.NewMemMapFs()
	store := NewStore("/repos/vendroo-monorepo")

	_, err := store.Load()
	assert.Equal(t, errors.NotInitialized{
		Path: "/repos/vendroo-monorepo/.repomirror/config.yaml",
	}, err)
}

func TestInit(t *testing.T) {
	fs = afero.NewMemMapFs()
	store := NewStore("/repos/vendroo-monorepo")

	require.NoError(t, store.Init())

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, MonorepoConfig{
		Version:  SupportedConfigVersion,
		RootPath: "/repos/vendroo-monorepo",
	}, cfg)

	// A second init must not clobber the existing configuration.
	err = store.Init()
	require.Error(t, err)
	_, friendly := err.(errors.FriendlyError)
	assert.True(t, friendly)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	fs = afero.NewMemMapFs()
	store := NewStore("/repos/vendroo-monorepo")

	exp := MonorepoConfig{
		Version:  SupportedConfigVersion,
		RootPath: "/repos/vendroo-monorepo",
		Submodules: []Submodule{
			{
				Name: "user_app",
				Rules: []rules.Rule{
					{Pattern: "lib/***", Kind: rules.Include},
					{Pattern: "pubspec.yaml", Kind: rules.Include},
					{Pattern: "*", Kind: rules.Exclude},
				},
			},
			{
				Name: "driver_app",
				Rules: []rules.Rule{
					{Pattern: "lib/***", Kind: rules.Include},
				},
			},
		},
	}

	require.NoError(t, store.Save(exp))

	// A fresh store simulates a process restart.
	reloaded, err := NewStore("/repos/vendroo-monorepo").Load()
	require.NoError(t, err)
	assert.Equal(t, exp, reloaded)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	fs = afero.NewMemMapFs()
	store := NewStore("/repos/vendroo-monorepo")

	require.NoError(t, store.Save(MonorepoConfig{RootPath: "/repos/vendroo-monorepo"}))

	infos, err := afero.ReadDir(fs, "/repos/vendroo-monorepo/.repomirror")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, FileName, infos[0].Name())
}

// renameFailFs delegates to the wrapped filesystem but fails every Rename,
// simulating a disk error at the final step of an atomic save.
type renameFailFs struct {
	afero.Fs
}

func (f renameFailFs) Rename(_, _ string) error {
	return errors.New("device error")
}

func TestSaveFailureLeavesArtifactIntact(t *testing.T) {
	memFs := afero.NewMemMapFs()
	fs = memFs
	store := NewStore("/repos/vendroo-monorepo")
	require.NoError(t, store.Init())

	original, err := afero.ReadFile(memFs, store.Path())
	require.NoError(t, err)

	// A read-only filesystem rejects every write of the save cycle before
	// the artifact is touched.
	fs = afero.NewReadOnlyFs(memFs)
	err = store.Save(MonorepoConfig{
		RootPath:   "/repos/vendroo-monorepo",
		Submodules: []Submodule{{Name: "user_app"}},
	})
	require.Error(t, err)
	fs = memFs

	onDisk, err := afero.ReadFile(memFs, store.Path())
	require.NoError(t, err)
	assert.Equal(t, original, onDisk)
}

func TestSaveRenameFailureCleansUp(t *testing.T) {
	memFs := afero.NewMemMapFs()
	fs = memFs
	store := NewStore("/repos/vendroo-monorepo")
	require.NoError(t, store.Init())

	original, err := afero.ReadFile(memFs, store.Path())
	require.NoError(t, err)

	fs = renameFailFs{memFs}
	err = store.Save(MonorepoConfig{
		RootPath:   "/repos/vendroo-monorepo",
		Submodules: []Submodule{{Name: "user_app"}},
	})
	require.Error(t, err)
	fs = memFs

	// The previous artifact is untouched and the temp file was removed.
	onDisk, err := afero.ReadFile(memFs, store.Path())
	require.NoError(t, err)
	assert.Equal(t, original, onDisk)

	infos, err := afero.ReadDir(memFs, "/repos/vendroo-monorepo/.repomirror")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, FileName, infos[0].Name())
}

func TestLoadCorrupt(t *testing.T) {
	fs = afero.NewMemMapFs()
	store := NewStore("/repos/vendroo-monorepo")

	original := []byte("{{{ not yaml")
	require.NoError(t, afero.WriteFile(fs, store.Path(), original, 0644))

	_, err := store.Load()
	_, corrupt := err.(errors.ConfigCorrupt)
	assert.True(t, corrupt)

	// The artifact is left untouched for manual inspection.
	onDisk, readErr := afero.ReadFile(fs, store.Path())
	require.NoError(t, readErr)
	assert.Equal(t, original, onDisk)
}

func TestLoadNewerVersion(t *testing.T) {
	fs = afero.NewMemMapFs()
	store := NewStore("/repos/vendroo-monorepo")

	artifact := []byte("version: v2alpha1\nrootPath: /repos/vendroo-monorepo\n")
	require.NoError(t, afero.WriteFile(fs, store.Path(), artifact, 0644))

	_, err := store.Load()
	_, corrupt := err.(errors.ConfigCorrupt)
	assert.True(t, corrupt)
}

func TestLoadMissingVersion(t *testing.T) {
	fs = afero.NewMemMapFs()
	store := NewStore("/repos/vendroo-monorepo")

	artifact := []byte("rootPath: /repos/vendroo-monorepo\n")
	require.NoError(t, afero.WriteFile(fs, store.Path(), artifact, 0644))

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "/repos/vendroo-monorepo", cfg.RootPath)
}

func TestMutateErrorPersistsNothing(t *testing.T) {
	fs = afero.NewMemMapFs()
	store := NewStore("/repos/vendroo-monorepo")
	require.NoError(t, store.Init())

	boom := errors.New("mutation rejected")
	err := store.Mutate(func(cfg *MonorepoConfig) error {
		cfg.Submodules = append(cfg.Submodules, Submodule{Name: "user_app"})
		return boom
	})
	assert.Equal(t, boom, err)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Submodules)
}
