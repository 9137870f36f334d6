package mirror

import (
	"fmt"
	"time"

	"github.com/vendroo/repomirror/pkg/errors"
)

// Status classifies the outcome of syncing a single submodule.
type Status string

const (
	// StatusSucceeded means the mirroring tool exited zero.
	StatusSucceeded Status = "succeeded"

	// StatusFailed means the mirroring tool exited non-zero.
	StatusFailed Status = "failed"

	// StatusSkipped means pre-invocation validation failed, such as a
	// missing sibling directory. Skips aren't fatal to a batch run.
	StatusSkipped Status = "skipped"
)

// Result is the outcome of syncing one submodule.
type Result struct {
	Submodule string
	Status    Status

	// Reason explains a skip or failure. Nil on success.
	Reason error

	// Duration is how long the sync took, including the external process.
	Duration time.Duration
}

func (res Result) String() string {
	switch res.Status {
	case StatusSucceeded:
		return fmt.Sprintf("%s: synced in %s", res.Submodule, res.Duration.Round(time.Millisecond))
	case StatusSkipped:
		return fmt.Sprintf("%s: skipped (%s)", res.Submodule, errors.RootCause(res.Reason))
	default:
		return fmt.Sprintf("%s: failed (%s)", res.Submodule, res.Reason)
	}
}

// Summary aggregates the per-submodule outcomes of a batch run, in registry
// order.
type Summary struct {
	Results []Result
}

// Counts tallies the outcomes.
func (s Summary) Counts() (succeeded, failed, skipped int) {
	for _, res := range s.Results {
		switch res.Status {
		case StatusSucceeded:
			succeeded++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return
}

// Err reports whether the batch failed as a whole. Individual failures are
// isolated: the batch only fails when there was nothing to process, or when
// at least one submodule failed and none succeeded.
func (s Summary) Err() error {
	if len(s.Results) == 0 {
		return errors.New("no submodules to sync")
	}

	succeeded, failed, _ := s.Counts()
	if failed > 0 && succeeded == 0 {
		return errors.New("all attempted submodule syncs failed")
	}
	return nil
}
