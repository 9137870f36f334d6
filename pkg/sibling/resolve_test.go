package sibling

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendroo/repomirror/pkg/errors"
)

func TestResolve(t *testing.T) {
	root := "/repos/vendroo-monorepo"

	tests := []struct {
		name       string
		dirs       []string
		files      []string
		submodule  string
		expBinding Binding
		expError   error
	}{
		{
			name:      "SiblingExists",
			dirs:      []string{"/repos/vendroo-monorepo/user_app", "/repos/user_app"},
			submodule: "user_app",
			expBinding: Binding{
				Name:       "user_app",
				SourcePath: "/repos/vendroo-monorepo/user_app",
				TargetPath: "/repos/user_app",
			},
		},
		{
			name:      "SiblingMissing",
			dirs:      []string{"/repos/vendroo-monorepo/user_app"},
			submodule: "user_app",
			expError:  errors.SiblingNotFound{Name: "user_app", Path: "/repos/user_app"},
		},
		{
			name:      "SiblingIsAFile",
			dirs:      []string{"/repos/vendroo-monorepo/user_app"},
			files:     []string{"/repos/user_app"},
			submodule: "user_app",
			expError:  errors.SiblingNotFound{Name: "user_app", Path: "/repos/user_app"},
		},
		{
			name:      "EmptyName",
			submodule: "",
			expError:  errors.InvalidName{Name: "", Reason: "name is empty"},
		},
		{
			name:      "NameWithSeparator",
			submodule: "foo/bar",
			expError: errors.InvalidName{
				Name:   "foo/bar",
				Reason: "name must not contain path separators",
			},
		},
		{
			name:      "NameEscapesParent",
			submodule: "..",
			expError: errors.InvalidName{
				Name:   "..",
				Reason: "name must not be a relative path element",
			},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			fs = afero.NewMemMapFs()
			for _, dir := range test.dirs {
				require.NoError(t, fs.MkdirAll(dir, 0755))
			}
			for _, file := range test.files {
				require.NoError(t, afero.WriteFile(fs, file, []byte("contents"), 0644))
			}

			binding, err := Resolve(root, test.submodule)
			assert.Equal(t, test.expError, err)
			assert.Equal(t, test.expBinding, binding)
		})
	}
}

func TestCreateTarget(t *testing.T) {
	fs = afero.NewMemMapFs()
	root := "/repos/vendroo-monorepo"
	require.NoError(t, fs.MkdirAll(root+"/user_app", 0755))

	binding, err := CreateTarget(root, "user_app")
	require.NoError(t, err)
	assert.Equal(t, "/repos/user_app", binding.TargetPath)

	isDir, err := afero.IsDir(fs, "/repos/user_app")
	require.NoError(t, err)
	assert.True(t, isDir)
}
