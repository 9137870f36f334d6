package fswatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/vendroo/repomirror/pkg/errors"
	"github.com/vendroo/repomirror/pkg/rules"
)

var fs = afero.NewOsFs()

// Watch watches for changes to the files a submodule's compiled ruleset
// mirrors. It sends an event on the returned channel whenever something
// within the watched paths changes. The caller should re-run the sync on
// each event.
func Watch(sourceRoot string, compiled []rules.Rule) (chan struct{}, error) {
	pathsToWatch, err := getPathsToWatch(sourceRoot, compiled)
	if err != nil {
		return nil, errors.WithContext(err, "get paths")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WithContext(err, "create watcher")
	}

	for _, path := range pathsToWatch {
		if err := watcher.Add(path); err != nil {
			// Close the watcher so that we release the file handles for the
			// previously added paths.
			if err := watcher.Close(); err != nil {
				log.WithError(err).Warn("Failed to close file watcher")
			}

			return nil, errors.WithContext(err, fmt.Sprintf("watch %q", path))
		}
	}
	return combineUpdates(watcher.Events), nil
}

// IsWatchLimit reports whether err means the kernel refused to install
// another file watch. Linux surfaces the inotify instance limit as "too many
// open files" and the per-instance watch limit as "no space left on device".
// Callers degrade to polling when the limit is hit.
func IsWatchLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := errors.RootCause(err).Error()
	return strings.Contains(msg, "too many open files") ||
		strings.Contains(msg, "no space left on device")
}

func combineUpdates(updates <-chan fsnotify.Event) chan struct{} {
	combined := make(chan struct{}, 1)
	go func() {
		for range updates {
			select {
			case combined <- struct{}{}:
			default:
			}
		}
	}()
	return combined
}

// getPathsToWatch walks the submodule's source tree and collects the root,
// every directory, and every file the ruleset mirrors. fsnotify doesn't
// watch directories recursively, so each one is added individually.
func getPathsToWatch(sourceRoot string, compiled []rules.Rule) (paths []string, err error) {
	if _, err := fs.Stat(sourceRoot); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFound{Path: sourceRoot}
		}
		return nil, errors.WithContext(err, "stat")
	}

	err = afero.Walk(fs, sourceRoot, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return errors.WithContext(err, "walk error")
		}

		if path == sourceRoot {
			paths = append(paths, path)
			return nil
		}

		relativePath, err := filepath.Rel(sourceRoot, path)
		if err != nil || strings.HasPrefix(relativePath, "..") {
			// This shouldn't happen because `path` is always a child of
			// `sourceRoot`.
			return errors.WithContext(err, "normalize path")
		}

		if rules.Match(compiled, filepath.ToSlash(relativePath)) {
			paths = append(paths, path)
		} else if fi.IsDir() {
			// Don't descend into subtrees the rules can never mirror.
			return filepath.SkipDir
		}
		return nil
	})
	return paths, err
}
