// Package generate drives one type support generation pass over the
// interface files of a package.
package generate

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/typesupport/internal/codegen"
	"github.com/okra-platform/typesupport/internal/config"
	"github.com/okra-platform/typesupport/internal/descriptor"
	"github.com/okra-platform/typesupport/internal/idl"
	"github.com/okra-platform/typesupport/internal/naming"
	"github.com/okra-platform/typesupport/internal/templates"
	"github.com/rs/zerolog"
)

// Renderer renders templates and writes the results, skipping outputs
// that are already up to date with respect to a timestamp floor
type Renderer interface {
	Render(templatePath string, data map[string]any) ([]byte, error)
	Write(outputPath string, content []byte, floor time.Time) (bool, error)
}

// Result lists the outputs of a pass
type Result struct {
	// Written holds the files that were created or replaced
	Written []string
	// Skipped holds the files that were already up to date
	Skipped []string
}

// Generator runs generation passes for one arguments record
type Generator struct {
	config   *config.Config
	binding  *codegen.Binding
	renderer Renderer
	logger   zerolog.Logger
}

// NewGenerator creates a generator for cfg using the binding cfg selects
func NewGenerator(cfg *config.Config, logger zerolog.Logger) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	binding, err := codegen.DefaultRegistry.Get(cfg.TypeSupport)
	if err != nil {
		return nil, err
	}

	logger = logger.With().
		Str("package", cfg.PackageName).
		Str("typesupport", binding.Identifier).
		Logger()

	return &Generator{
		config:   cfg,
		binding:  binding,
		renderer: templates.NewEngine(logger, binding.Funcs),
		logger:   logger,
	}, nil
}

// WithRenderer replaces the template engine
func (g *Generator) WithRenderer(r Renderer) *Generator {
	g.renderer = r
	return g
}

// Binding returns the binding the generator renders for
func (g *Generator) Binding() *codegen.Binding {
	return g.binding
}

// artifact is one rendered output waiting to be written
type artifact struct {
	path    string
	content []byte
}

// Generate runs one pass. Any failure aborts the pass; there is no partial
// success. ctx is only consulted before the pass starts: a started pass
// runs to completion or to its first failure.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	cfg := g.config

	if err := g.checkTemplates(); err != nil {
		return nil, err
	}

	known, err := idl.ExtractMessageTypes(cfg.PackageName, cfg.InterfaceFiles, cfg.InterfaceDependencies)
	if err != nil {
		return nil, err
	}

	floor, err := NewestModificationTime(cfg.TargetDependencies, cfg.AdditionalFiles)
	if err != nil {
		return nil, err
	}

	loader := &Loader{PackageName: cfg.PackageName, Known: known}
	result := &Result{}

	var (
		messages []*idl.MessageSpecification
		services []*idl.ServiceSpecification
	)

	for _, file := range cfg.InterfaceFiles {
		kind := idl.Classify(file)

		var (
			name string
			data map[string]any
		)
		switch kind {
		case idl.KindMessage:
			loaded, err := loader.LoadMessage(file)
			if err != nil {
				return nil, err
			}
			messages = append(messages, loaded.Spec)
			name = loaded.Spec.MsgName
			data = map[string]any{
				"spec": loaded.Spec,
				"pkg":  loaded.Spec.BaseType.PkgName,
				"msg":  loaded.Spec.MsgName,
				"type": loaded.Spec.BaseType.Type,
			}
		case idl.KindService:
			loaded, err := loader.LoadService(file)
			if err != nil {
				return nil, err
			}
			services = append(services, loaded.Spec)
			name = loaded.Spec.SrvName
			data = map[string]any{
				"spec": loaded.Spec,
				"pkg":  loaded.Spec.PkgName,
				"srv":  loaded.Spec.SrvName,
			}
		default:
			g.logger.Debug().Str("file", file).Msg("skipping non-interface file")
			continue
		}

		subfolder := codegen.Subfolder(kind, file)
		data["subfolder"] = subfolder
		data["identifier"] = g.binding.Identifier
		data["headerFilename"] = naming.LowerUnderscore

		if err := g.generateInterface(kind, name, subfolder, data, floor, result); err != nil {
			return nil, err
		}
	}

	if cfg.DescriptorSet {
		if err := g.writeDescriptor(messages, services, floor, result); err != nil {
			return nil, err
		}
	}

	g.logger.Info().
		Int("written", len(result.Written)).
		Int("skipped", len(result.Skipped)).
		Dur("duration", time.Since(start)).
		Msg("type support generated")

	return result, nil
}

// generateInterface renders every artifact of one interface before writing
// any of them. If a write fails, the artifacts already written for this
// interface in this pass are removed again.
func (g *Generator) generateInterface(kind idl.Kind, name, subfolder string, data map[string]any, floor time.Time, result *Result) error {
	stem := naming.LowerUnderscore(name)

	var artifacts []artifact
	for _, m := range g.binding.MappingsFor(kind) {
		out := g.binding.ResolveOutputPath(m, subfolder, stem, g.config.OutputDir)
		content, err := g.renderer.Render(filepath.Join(g.config.TemplateDir, m.Template), data)
		if err != nil {
			return errors.Wrapf(err, "failed to generate %s of %s/%s", m.Artifact, g.config.PackageName, name)
		}
		artifacts = append(artifacts, artifact{path: out, content: content})
	}

	var written []string
	for _, a := range artifacts {
		ok, err := g.renderer.Write(a.path, a.content, floor)
		if err != nil {
			for _, p := range written {
				if rmErr := os.Remove(p); rmErr != nil {
					g.logger.Warn().Err(rmErr).Str("path", p).Msg("failed to remove partial output")
				}
			}
			return errors.Wrapf(err, "failed to write %s", a.path)
		}
		if ok {
			written = append(written, a.path)
			result.Written = append(result.Written, a.path)
		} else {
			result.Skipped = append(result.Skipped, a.path)
		}
	}

	g.logger.Debug().
		Str("interface", name).
		Str("subfolder", subfolder).
		Int("written", len(written)).
		Msg("interface generated")
	return nil
}

func (g *Generator) writeDescriptor(messages []*idl.MessageSpecification, services []*idl.ServiceSpecification, floor time.Time, result *Result) error {
	set, err := descriptor.Build(g.config.PackageName, messages, services)
	if err != nil {
		return err
	}

	out := filepath.Join(g.config.OutputDir, g.config.PackageName+descriptor.Extension)
	written, err := descriptor.Write(out, set, floor)
	if err != nil {
		return err
	}
	if written {
		result.Written = append(result.Written, out)
	} else {
		result.Skipped = append(result.Skipped, out)
	}
	return nil
}

// checkTemplates verifies that every template of the binding exists,
// collecting all missing ones
func (g *Generator) checkTemplates() error {
	var missing []string
	for _, p := range g.binding.TemplatePaths(g.config.TemplateDir) {
		info, err := os.Stat(p)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			missing = append(missing, p)
		case err != nil:
			return errors.Wrapf(err, "failed to check template %s", p)
		case info.IsDir():
			missing = append(missing, p)
		}
	}

	if len(missing) > 0 {
		return errors.WithHint(
			&MissingTemplatesError{TemplateDir: g.config.TemplateDir, Paths: missing},
			"run 'typesupport init' to extract the default templates or point template_dir at them",
		)
	}
	return nil
}
