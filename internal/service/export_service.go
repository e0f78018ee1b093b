package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/Skino1337/PyPoE/internal/corrections"
	"github.com/Skino1337/PyPoE/internal/etl"
	"github.com/Skino1337/PyPoE/internal/repository"
	"github.com/Skino1337/PyPoE/internal/storage"
	"github.com/Skino1337/PyPoE/internal/translate"
)

// ─────────────────────────────────────────────────────────────
// Export Service: runs datasets on demand, on a schedule or
// when the source files change
// ─────────────────────────────────────────────────────────────

const runTimeout = 10 * time.Minute

// RepoOpener loads a fresh repository for one run.
type RepoOpener func(ctx context.Context) (*repository.Memory, error)

// Options configures an ExportService. Log and Emitter may be nil.
// KeepRuns > 0 prunes the run log of each dataset after every run.
type Options struct {
	Language    string
	Corrections corrections.Provider
	Translator  translate.Translator
	Dest        etl.Destination
	Verify      bool
	Log         *storage.ExportLogStore
	KeepRuns    int
	Emitter     EventEmitter
}

// ExportService runs exporters against a repository loaded per run.
type ExportService struct {
	open    RepoOpener
	opts    Options
	engine  *etl.Engine
	running runningJobsGuard

	// watcher / cron lifecycle
	watchCancel context.CancelFunc
	watcher     *fsnotify.Watcher
	cronSched   *cron.Cron
}

// NewExportService creates an ExportService ready for use.
func NewExportService(open RepoOpener, opts Options) *ExportService {
	if opts.Emitter == nil {
		opts.Emitter = LogEmitter{}
	}
	engine := &etl.Engine{Dest: opts.Dest}
	if opts.Verify {
		engine.Check = verifyArtifact
	}
	return &ExportService{
		open:   open,
		opts:   opts,
		engine: engine,
	}
}

// ── Run ────────────────────────────────────────────────────

// Run loads the repository once and exports the named datasets in order.
// A dataset that is already running is reported as failed and skipped.
func (s *ExportService) Run(ctx context.Context, trigger string, names []string) ([]*etl.ExportResult, error) {
	var (
		locked []string
		errs   []error
	)
	for _, name := range names {
		if _, err := etl.GetExporter(name); err != nil {
			errs = append(errs, err)
			continue
		}
		if !s.running.TryLock(name) {
			errs = append(errs, fmt.Errorf("export %s is already running", name))
			continue
		}
		locked = append(locked, name)
	}
	defer func() {
		for _, name := range locked {
			s.running.Unlock(name)
		}
	}()
	if len(locked) == 0 {
		return nil, errors.Join(errs...)
	}

	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	repo, err := s.open(runCtx)
	if err != nil {
		return nil, errors.Join(append(errs, fmt.Errorf("open repository: %w", err))...)
	}

	env := etl.Env{
		Repo:        repo,
		Language:    s.opts.Language,
		Corrections: s.opts.Corrections,
		Translator:  s.opts.Translator,
	}
	results, runErr := s.engine.RunAll(runCtx, locked, env)
	if runErr != nil {
		errs = append(errs, runErr)
	}

	for _, res := range results {
		if s.opts.Log != nil {
			s.logRun(res, trigger)
		}
		if res.Status == "success" {
			s.opts.Emitter.Emit(ctx, "export:completed", map[string]any{
				"dataset":   res.Dataset,
				"artifacts": len(res.Artifacts),
				"warnings":  len(res.Warnings),
			})
		}
	}
	return results, errors.Join(errs...)
}

func (s *ExportService) logRun(res *etl.ExportResult, trigger string) {
	if _, err := s.opts.Log.RecordRun(res, s.opts.Language, trigger, time.Now()); err != nil {
		log.Printf("export: failed to log run of %s: %v", res.Dataset, err)
		return
	}
	if s.opts.KeepRuns <= 0 {
		return
	}
	n, err := s.opts.Log.Prune(res.Dataset, s.opts.KeepRuns)
	if err != nil {
		log.Printf("export: failed to prune runs of %s: %v", res.Dataset, err)
		return
	}
	if n > 0 {
		log.Printf("export: pruned %d old run(s) of %s", n, res.Dataset)
	}
}

// ── Watchers (cron + file_watch) ──────────────────────────

// Watch re-exports names on the cron schedule and whenever a file under
// paths changes. Either trigger may be empty. It returns once the
// triggers are installed; call Stop to tear them down.
func (s *ExportService) Watch(ctx context.Context, names []string, schedule string, paths []string) error {
	s.stopWatchers()

	if schedule == "" && len(paths) == 0 {
		return fmt.Errorf("nothing to watch: no schedule and no paths")
	}

	if schedule != "" {
		c := cron.New()
		_, err := c.AddFunc(schedule, func() {
			log.Printf("export cron: running %v", names)
			if _, err := s.Run(ctx, "schedule", names); err != nil {
				log.Printf("export cron: run failed: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid schedule %q: %w", schedule, err)
		}
		c.Start()
		s.cronSched = c
		log.Printf("export cron: scheduled %q", schedule)
	}

	if len(paths) == 0 {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.stopWatchers()
		return fmt.Errorf("create watcher: %w", err)
	}
	s.watcher = watcher

	// A watched directory matches every file in it; a file matches itself.
	files := make(map[string]bool)
	dirs := make(map[string]bool)
	watchedDirs := make(map[string]bool)
	for _, p := range paths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			log.Printf("export watcher: bad path %q: %v", p, err)
			continue
		}
		dir := filepath.Dir(absPath)
		if info, err := os.Stat(absPath); err == nil && info.IsDir() {
			dirs[absPath] = true
			dir = absPath
		} else {
			files[absPath] = true
		}
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				log.Printf("export watcher: failed to watch dir %q: %v", dir, err)
			} else {
				watchedDirs[dir] = true
			}
		}
	}

	watchCtx, cancel := context.WithCancel(ctx)
	s.watchCancel = cancel

	go func() {
		var timer *time.Timer
		for {
			select {
			case <-watchCtx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
					continue
				}
				absPath, _ := filepath.Abs(event.Name)
				if !files[absPath] && !dirs[filepath.Dir(absPath)] {
					continue
				}
				// Editors write in bursts; one run per quiet period.
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(500*time.Millisecond, func() {
					log.Printf("export watcher: %q changed, running %v", absPath, names)
					if _, err := s.Run(watchCtx, "file_watch", names); err != nil {
						log.Printf("export watcher: run failed: %v", err)
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("export watcher: error: %v", err)
			}
		}
	}()

	log.Printf("export watcher: watching %d path(s)", len(files)+len(dirs))
	return nil
}

// WaitRunning blocks until all running exports finish or ctx is cancelled.
// Used for graceful shutdown.
func (s *ExportService) WaitRunning(ctx context.Context) {
	s.running.WaitAll(ctx)
}

// Stop tears down all watchers and schedulers.
func (s *ExportService) Stop() {
	s.stopWatchers()
}

func (s *ExportService) stopWatchers() {
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}
