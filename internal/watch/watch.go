// Package watch regenerates type support whenever interface files,
// templates or declared dependencies change.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/okra-platform/typesupport/internal/config"
	"github.com/okra-platform/typesupport/internal/generate"
	"github.com/okra-platform/typesupport/internal/idl"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the runner waits for changes to settle
const DefaultDebounce = 200 * time.Millisecond

// Generator runs one generation pass
type Generator interface {
	Generate(ctx context.Context) (*generate.Result, error)
}

// Runner regenerates on changes, coalescing bursts of events into one pass
type Runner struct {
	config    *config.Config
	generator Generator
	debounce  time.Duration
	logger    zerolog.Logger
}

// NewRunner creates a runner. A zero debounce selects DefaultDebounce.
func NewRunner(cfg *config.Config, gen Generator, debounce time.Duration, logger zerolog.Logger) *Runner {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Runner{
		config:    cfg,
		generator: gen,
		debounce:  debounce,
		logger:    logger.With().Str("component", "watch").Logger(),
	}
}

// Run generates once and then after every settled burst of changes until
// ctx is cancelled. Failed passes are logged and do not stop watching.
func (r *Runner) Run(ctx context.Context) error {
	r.regenerate(ctx)

	changes := make(chan string, 1)
	onChange := func(path string, op fsnotify.Op) {
		r.logger.Debug().Str("path", path).Str("op", op.String()).Msg("change detected")
		select {
		case changes <- path:
		default:
		}
	}

	fw, err := NewFileWatcher(Patterns(r.config), r.config.Watch.Exclude, onChange, r.logger)
	if err != nil {
		return err
	}
	defer fw.Close()

	recursive, flat := Directories(r.config)
	for _, dir := range recursive {
		if err := fw.AddDirectory(dir); err != nil {
			return err
		}
	}
	for _, dir := range flat {
		if err := fw.watcher.Add(dir); err != nil {
			r.logger.Warn().Err(err).Str("dir", dir).Msg("failed to watch dependency directory")
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- fw.Start(ctx)
	}()

	r.logger.Info().Dur("debounce", r.debounce).Msg("watching for changes")

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if ctx.Err() != nil {
				return nil
			}
			return err
		case <-changes:
			if timer == nil {
				timer = time.NewTimer(r.debounce)
			} else {
				timer.Reset(r.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			r.regenerate(ctx)
		}
	}
}

func (r *Runner) regenerate(ctx context.Context) {
	result, err := r.generator.Generate(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("generation failed")
		return
	}
	r.logger.Info().
		Int("written", len(result.Written)).
		Int("skipped", len(result.Skipped)).
		Msg("regenerated")
}

// Patterns returns the base-name patterns whose changes trigger a pass:
// interface files, templates and the declared dependency files
func Patterns(cfg *config.Config) []string {
	seen := map[string]bool{"*.msg": true, "*.srv": true, "*.tmpl": true}
	for _, p := range cfg.WatchedFiles() {
		if idl.Classify(p) == idl.KindUnknown {
			seen[filepath.Base(p)] = true
		}
	}
	return sortedKeys(seen)
}

// Directories returns the directories to watch: interface and template
// directories recursively, dependency directories on their own
func Directories(cfg *config.Config) (recursive []string, flat []string) {
	rec := make(map[string]bool)
	for _, f := range cfg.InterfaceFiles {
		rec[filepath.Dir(f)] = true
	}
	if cfg.TemplateDir != "" {
		rec[cfg.TemplateDir] = true
	}

	fl := make(map[string]bool)
	for _, f := range append(append([]string{}, cfg.TargetDependencies...), cfg.AdditionalFiles...) {
		if dir := filepath.Dir(f); !rec[dir] {
			fl[dir] = true
		}
	}
	return sortedKeys(rec), sortedKeys(fl)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
