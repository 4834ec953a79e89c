package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/typesupport/internal/config"
	"github.com/okra-platform/typesupport/internal/generate"
	"github.com/okra-platform/typesupport/internal/watch"
	"github.com/rs/zerolog"
)

// WatchOptions are the flags and arguments of the watch command
type WatchOptions struct {
	// ArgsFile is the arguments file; empty means search upward
	ArgsFile string
	Debounce time.Duration
}

// WatchDependencies for the watch command
type WatchDependencies struct {
	ConfigLoader   ConfigLoader
	RunnerFactory  RunnerFactory
	SignalNotifier SignalNotifier
	Output         Output
}

// Interfaces for dependency injection
type ConfigLoader interface {
	LoadConfig(path string) (*config.Config, error)
}

type RunnerFactory interface {
	NewRunner(cfg *config.Config, debounce time.Duration, logger zerolog.Logger) (Runner, error)
}

type Runner interface {
	Run(ctx context.Context) error
}

type SignalNotifier interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

type Output interface {
	Printf(format string, a ...any)
	Println(a ...any)
}

// Default implementations
type defaultConfigLoader struct{}

func (l *defaultConfigLoader) LoadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfigFromPath(path)
	}
	cfg, _, err := config.LoadConfig()
	return cfg, err
}

type defaultRunnerFactory struct{}

func (f *defaultRunnerFactory) NewRunner(cfg *config.Config, debounce time.Duration, logger zerolog.Logger) (Runner, error) {
	gen, err := generate.NewGenerator(cfg, logger)
	if err != nil {
		return nil, err
	}
	return watch.NewRunner(cfg, gen, debounce, logger), nil
}

type defaultSignalNotifier struct{}

func (n *defaultSignalNotifier) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (n *defaultSignalNotifier) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

type defaultOutput struct{}

func (o *defaultOutput) Printf(format string, a ...any) {
	fmt.Printf(format, a...)
}

func (o *defaultOutput) Println(a ...any) {
	fmt.Println(a...)
}

// WatchCommand encapsulates the watch logic with injected dependencies
type WatchCommand struct {
	deps   WatchDependencies
	logger zerolog.Logger
}

// NewWatchCommand creates a new watch command with default dependencies
func NewWatchCommand(logger zerolog.Logger) *WatchCommand {
	return &WatchCommand{
		deps: WatchDependencies{
			ConfigLoader:   &defaultConfigLoader{},
			RunnerFactory:  &defaultRunnerFactory{},
			SignalNotifier: &defaultSignalNotifier{},
			Output:         &defaultOutput{},
		},
		logger: logger,
	}
}

// WithDependencies allows injecting custom dependencies for testing
func (wc *WatchCommand) WithDependencies(deps WatchDependencies) *WatchCommand {
	wc.deps = deps
	return wc
}

// Execute runs the watch command until interrupted
func (wc *WatchCommand) Execute(ctx context.Context, opts WatchOptions) error {
	cfg, err := wc.deps.ConfigLoader.LoadConfig(opts.ArgsFile)
	if err != nil {
		return errors.Wrap(err, "failed to load arguments file")
	}

	runner, err := wc.deps.RunnerFactory.NewRunner(cfg, opts.Debounce, wc.logger)
	if err != nil {
		return errors.Wrapf(err, "invalid arguments for package %s", cfg.PackageName)
	}

	wc.deps.Output.Printf("Watching %s (%d interface files)\n", cfg.PackageName, len(cfg.InterfaceFiles))
	wc.deps.Output.Printf("Templates: %s\n", cfg.TemplateDir)
	wc.deps.Output.Printf("Output: %s\n", cfg.OutputDir)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	wc.deps.SignalNotifier.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer wc.deps.SignalNotifier.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			wc.deps.Output.Println("\nStopping watch...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := runner.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return errors.Wrap(err, "watch failed")
	}
	return nil
}

// Watch regenerates type support on every change until interrupted
func (c *Controller) Watch(ctx context.Context, opts WatchOptions) error {
	return NewWatchCommand(c.logger()).Execute(ctx, opts)
}
