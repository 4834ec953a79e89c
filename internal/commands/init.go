package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"
	"github.com/okra-platform/typesupport/internal/config"
	"github.com/okra-platform/typesupport/internal/idl"
	"github.com/okra-platform/typesupport/internal/templates"
	"gopkg.in/yaml.v3"
)

type InitOptions struct {
	PackageName string
	TypeSupport string
}

type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(name string, data []byte, perm os.FileMode) error
}

type osFileSystem struct{}

func (fs *osFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (fs *osFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (fs *osFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// languageLabels are the form labels of the bindings with built-in templates
var languageLabels = map[string]string{
	"c":   "C (rosidl_typesupport_fastrtps_c)",
	"cpp": "C++ (rosidl_typesupport_fastrtps_cpp)",
}

const (
	exampleMessage = "Greeting"
	exampleService = "Greet"
	templateDir    = "templates"
	outputDir      = "build/typesupport"
)

type InitCommand struct {
	filesystem FileSystem
	builtin    func(lang string) (fs.FS, error)
	root       string
	out        io.Writer
	// For testing: if set, skip prompting
	testOptions *InitOptions
}

func NewInitCommand() *InitCommand {
	return &InitCommand{
		filesystem: &osFileSystem{},
		builtin:    templates.Builtin,
		root:       ".",
		out:        os.Stdout,
	}
}

// Init scaffolds a new interface package in the working directory
func (c *Controller) Init(ctx context.Context) error {
	cmd := NewInitCommand()
	cmd.out = c.stdout()
	return cmd.Run(ctx)
}

func (ic *InitCommand) Run(ctx context.Context) error {
	return ic.RunWithOptions(ctx)
}

func (ic *InitCommand) RunWithOptions(ctx context.Context, opts ...tea.ProgramOption) error {
	var options *InitOptions
	var err error

	// For testing: use provided options instead of prompting
	if ic.testOptions != nil {
		options = ic.testOptions
	} else {
		options, err = ic.promptInitOptions(opts...)
		if err != nil {
			return errors.Wrap(err, "failed to get init options")
		}
	}

	if err := ic.validatePackageName(options.PackageName); err != nil {
		return err
	}

	pkgDir := filepath.Join(ic.root, options.PackageName)
	if err := ic.scaffold(pkgDir, options); err != nil {
		return errors.Wrapf(err, "failed to scaffold package %s", options.PackageName)
	}

	fmt.Fprintf(ic.out, "✅ Created interface package %s with %s type support\n", options.PackageName, options.TypeSupport)
	fmt.Fprintf(ic.out, "   Run: typesupport generate %s\n", filepath.Join(pkgDir, "typesupport.yaml"))
	return nil
}

func (ic *InitCommand) promptInitOptions(opts ...tea.ProgramOption) (*InitOptions, error) {
	var packageName string
	var typeSupport string

	form := ic.createInitForm(&packageName, &typeSupport)

	if len(opts) > 0 {
		// For testing: run with provided options
		program := tea.NewProgram(form, opts...)
		if _, err := program.Run(); err != nil {
			return nil, err
		}
	} else {
		// Normal execution
		if err := form.Run(); err != nil {
			return nil, err
		}
	}

	return &InitOptions{
		PackageName: packageName,
		TypeSupport: typeSupport,
	}, nil
}

func (ic *InitCommand) createInitForm(packageName *string, typeSupport *string) *huh.Form {
	var options []huh.Option[string]
	for _, lang := range templates.BuiltinLanguages() {
		label, ok := languageLabels[lang]
		if !ok {
			label = lang
		}
		options = append(options, huh.NewOption(label, lang))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Package name").
				Description("Name of your new interface package, e.g. demo_msgs").
				Value(packageName).
				Validate(ic.validatePackageName),

			huh.NewSelect[string]().
				Title("Type support").
				Description("Choose the binding to generate").
				Options(options...).
				Value(typeSupport),
		),
	)
}

func (ic *InitCommand) validatePackageName(s string) error {
	if s == "" {
		return errors.New("package name cannot be empty")
	}
	if !idl.IsValidPackageName(s) {
		return errors.Newf("invalid package name '%s'", s)
	}
	if _, err := ic.filesystem.Stat(filepath.Join(ic.root, s)); err == nil {
		return errors.Newf("directory %s already exists", s)
	}
	return nil
}

// scaffold lays out msg/, srv/, the example interfaces, the built-in
// templates and the arguments file under pkgDir
func (ic *InitCommand) scaffold(pkgDir string, options *InitOptions) error {
	for _, dir := range []string{"msg", "srv", templateDir} {
		if err := ic.filesystem.MkdirAll(filepath.Join(pkgDir, dir), 0755); err != nil {
			return err
		}
	}

	msgFile := filepath.Join("msg", exampleMessage+".msg")
	srvFile := filepath.Join("srv", exampleService+".srv")

	files := map[string]string{
		msgFile: "# A greeting and how often it was sent\nstring text\nuint32 count 0\n",
		srvFile: "string name\n---\n" + exampleMessage + " greeting\n",
	}
	for name, body := range files {
		if err := ic.filesystem.WriteFile(filepath.Join(pkgDir, name), []byte(body), 0644); err != nil {
			return err
		}
	}

	if err := ic.extractTemplates(options.TypeSupport, filepath.Join(pkgDir, templateDir)); err != nil {
		return errors.Wrap(err, "failed to extract templates")
	}

	cfg := config.Config{
		PackageName:    options.PackageName,
		InterfaceFiles: []string{filepath.ToSlash(msgFile), filepath.ToSlash(srvFile)},
		TemplateDir:    templateDir,
		OutputDir:      outputDir,
		TypeSupport:    options.TypeSupport,
	}
	data, err := marshalConfig(&cfg)
	if err != nil {
		return err
	}
	return ic.filesystem.WriteFile(filepath.Join(pkgDir, "typesupport.yaml"), data, 0644)
}

func (ic *InitCommand) extractTemplates(lang, destDir string) error {
	src, err := ic.builtin(lang)
	if err != nil {
		return err
	}

	return fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == "." {
			return nil
		}

		destPath := filepath.Join(destDir, filepath.FromSlash(path))

		if d.IsDir() {
			return ic.filesystem.MkdirAll(destPath, 0755)
		}

		data, err := fs.ReadFile(src, path)
		if err != nil {
			return err
		}

		return ic.filesystem.WriteFile(destPath, data, 0644)
	})
}

func marshalConfig(cfg *config.Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to encode arguments file")
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
