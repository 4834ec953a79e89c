package commands

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/typesupport/internal/config"
	"github.com/okra-platform/typesupport/internal/generate"
	"golang.org/x/sync/errgroup"
)

// GenerateOptions are the flags and arguments of the generate command
type GenerateOptions struct {
	// ArgsFiles are arguments files; empty means search upward from the
	// working directory
	ArgsFiles []string
	// TypeSupport overrides the binding of every arguments file when set
	TypeSupport string
	// DescriptorSet forces descriptor set output on
	DescriptorSet bool
}

// Generate runs one generation pass per arguments file. Passes share
// nothing and run in parallel; the first failure is returned.
func (c *Controller) Generate(ctx context.Context, opts GenerateOptions) error {
	configs, err := loadConfigs(opts.ArgsFiles)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, cfg := range configs {
		if opts.TypeSupport != "" {
			cfg.TypeSupport = opts.TypeSupport
		}
		if opts.DescriptorSet {
			cfg.DescriptorSet = true
		}

		g.Go(func() error {
			gen, err := generate.NewGenerator(cfg, c.logger())
			if err != nil {
				return errors.Wrapf(err, "invalid arguments for package %s", cfg.PackageName)
			}
			_, err = gen.Generate(ctx)
			return err
		})
	}
	return g.Wait()
}

func loadConfigs(paths []string) ([]*config.Config, error) {
	if len(paths) == 0 {
		cfg, _, err := config.LoadConfig()
		if err != nil {
			return nil, err
		}
		return []*config.Config{cfg}, nil
	}

	configs := make([]*config.Config, 0, len(paths))
	for _, p := range paths {
		cfg, err := config.LoadConfigFromPath(p)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
