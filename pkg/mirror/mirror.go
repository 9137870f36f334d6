package mirror

import (
	"context"
	goSync "sync"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/vendroo/repomirror/pkg/config"
	"github.com/vendroo/repomirror/pkg/errors"
	"github.com/vendroo/repomirror/pkg/rules"
	"github.com/vendroo/repomirror/pkg/sibling"
)

// All selects every registered submodule.
const All = "all"

// Options tune a sync run.
type Options struct {
	// DryRun reports what would be mirrored without touching siblings.
	DryRun bool

	// CreateMissing creates absent sibling directories instead of skipping
	// their submodules.
	CreateMissing bool

	// Workers is the number of submodules mirrored concurrently. Distinct
	// submodules always have distinct sibling targets, and same-target
	// invocations are serialized by a per-target lock regardless.
	Workers int
}

// Syncer turns the submodule registry into mirroring runs. It reads the
// configuration but never writes it, so an interrupted sync can't corrupt
// the registry.
type Syncer struct {
	store  *config.Store
	runner Runner
	clock  clockwork.Clock
	opts   Options
}

// NewSyncer returns a Syncer using the given collaborator.
func NewSyncer(store *config.Store, runner Runner, opts Options) Syncer {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return Syncer{
		store:  store,
		runner: runner,
		clock:  clockwork.NewRealClock(),
		opts:   opts,
	}
}

// Sync mirrors the named submodules, or every registered submodule when
// names is empty or the single word "all". Submodules are processed in
// registry order, and one submodule's failure never aborts the others.
func (s Syncer) Sync(ctx context.Context, names []string) (Summary, error) {
	cfg, err := s.store.Load()
	if err != nil {
		return Summary{}, err
	}

	targets, err := selectTargets(cfg, names)
	if err != nil {
		return Summary{}, err
	}

	numWorkers := s.opts.Workers
	if len(targets) < numWorkers {
		numWorkers = len(targets)
	}

	locks := newPathLocks()
	results := make([]Result, len(targets))

	if numWorkers <= 1 {
		for i, sm := range targets {
			results[i] = s.syncOne(ctx, cfg, sm, locks)
		}
		return Summary{Results: results}, nil
	}

	indexes := make(chan int, len(targets))
	for i := range targets {
		indexes <- i
	}
	close(indexes)

	var wg goSync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = s.syncOne(ctx, cfg, targets[i], locks)
			}
		}()
	}
	wg.Wait()

	return Summary{Results: results}, nil
}

// syncOne resolves, compiles, and mirrors one submodule. Validation failures
// become skips; a non-zero exit from the collaborator becomes a failure.
func (s Syncer) syncOne(ctx context.Context, cfg config.MonorepoConfig,
	sm config.Submodule, locks *pathLocks) Result {

	start := s.clock.Now()
	skipped := func(reason error) Result {
		return Result{
			Submodule: sm.Name,
			Status:    StatusSkipped,
			Reason:    reason,
			Duration:  s.clock.Since(start),
		}
	}

	if err := ctx.Err(); err != nil {
		// The run was cancelled before this submodule started. Already
		// completed submodules keep their results.
		return skipped(err)
	}

	binding, err := sibling.Resolve(cfg.RootPath, sm.Name)
	if err != nil {
		_, notFound := errors.RootCause(err).(errors.SiblingNotFound)
		if !notFound || !s.opts.CreateMissing {
			return skipped(err)
		}

		log.WithField("submodule", sm.Name).Info("Creating missing sibling directory")
		binding, err = sibling.CreateTarget(cfg.RootPath, sm.Name)
		if err != nil {
			return skipped(err)
		}
	}

	compiled, err := rules.Compile(sm.Rules)
	if err != nil {
		return skipped(err)
	}

	// Two invocations must never race on the same destination directory.
	lock := locks.get(binding.TargetPath)
	lock.Lock()
	defer lock.Unlock()

	log.WithFields(log.Fields{
		"submodule": sm.Name,
		"target":    binding.TargetPath,
	}).Debug("Mirroring submodule")

	err = s.runner.Mirror(ctx, Request{
		Source:      binding.SourcePath,
		Destination: binding.TargetPath,
		Rules:       compiled,
		DryRun:      s.opts.DryRun,
	})
	duration := s.clock.Since(start)
	if err != nil {
		return Result{
			Submodule: sm.Name,
			Status:    StatusFailed,
			Reason:    errors.SyncFailed{Submodule: sm.Name, Output: err.Error()},
			Duration:  duration,
		}
	}

	return Result{
		Submodule: sm.Name,
		Status:    StatusSucceeded,
		Duration:  duration,
	}
}

// selectTargets picks the submodules to process, preserving registry order.
func selectTargets(cfg config.MonorepoConfig, names []string) ([]config.Submodule, error) {
	if len(names) == 0 || (len(names) == 1 && names[0] == All) {
		return cfg.Submodules, nil
	}

	wanted := map[string]bool{}
	for _, name := range names {
		wanted[name] = false
	}

	var targets []config.Submodule
	for _, sm := range cfg.Submodules {
		if _, ok := wanted[sm.Name]; ok {
			wanted[sm.Name] = true
			targets = append(targets, sm)
		}
	}

	for _, name := range names {
		if !wanted[name] {
			return nil, errors.UnknownSubmodule{Name: name}
		}
	}
	return targets, nil
}

// pathLocks hands out one mutex per sibling target path.
type pathLocks struct {
	mu    goSync.Mutex
	locks map[string]*goSync.Mutex
}

func newPathLocks() *pathLocks {
	return &pathLocks{locks: map[string]*goSync.Mutex{}}
}

func (p *pathLocks) get(path string) *goSync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	lock, ok := p.locks[path]
	if !ok {
		lock = &goSync.Mutex{}
		p.locks[path] = lock
	}
	return lock
}
