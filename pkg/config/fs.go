package config

import "github.com/spf13/afero"

// fs is used for mock tests. It will be overridden by afero.NewMemMapFs()
// in the tests.
var fs = afero.NewOsFs()

// SetFs overrides the backing filesystem so tests in other packages can run
// the store against an in-memory filesystem.
func SetFs(newFs afero.Fs) {
	fs = newFs
}
