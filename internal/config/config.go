package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/typesupport/internal/codegen"
	"github.com/okra-platform/typesupport/internal/idl"
	"gopkg.in/yaml.v3"
)

// FileNames are the arguments file names LoadConfig looks for, in order
var FileNames = []string{"typesupport.json", "typesupport.yaml", "typesupport.yml"}

// DefaultTypeSupport is used when the arguments file names no binding
const DefaultTypeSupport = "c"

// Config is the arguments record of one generation pass
type Config struct {
	PackageName           string      `json:"package_name" yaml:"package_name"`
	InterfaceFiles        []string    `json:"ros_interface_files" yaml:"ros_interface_files"`
	InterfaceDependencies []string    `json:"ros_interface_dependencies,omitempty" yaml:"ros_interface_dependencies,omitempty"`
	TemplateDir           string      `json:"template_dir" yaml:"template_dir"`
	OutputDir             string      `json:"output_dir" yaml:"output_dir"`
	TargetDependencies    []string    `json:"target_dependencies,omitempty" yaml:"target_dependencies,omitempty"`
	AdditionalFiles       []string    `json:"additional_files,omitempty" yaml:"additional_files,omitempty"`
	TypeSupport           string      `json:"typesupport,omitempty" yaml:"typesupport,omitempty"`
	DescriptorSet         bool        `json:"descriptor_set,omitempty" yaml:"descriptor_set,omitempty"`
	Watch                 WatchConfig `json:"watch,omitempty" yaml:"watch,omitempty"`
}

// WatchConfig contains watch mode configuration
type WatchConfig struct {
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// LoadConfig loads the arguments file from the current directory or a parent directory
func LoadConfig() (*Config, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to get current directory")
	}

	return loadConfigFromDir(dir)
}

// LoadConfigFromPath loads an arguments file. Files ending in .yaml or .yml
// are decoded as YAML, anything else as JSON. Relative paths inside the
// file are resolved against the file's directory.
func LoadConfigFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var config Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}

	// Set defaults
	if config.TypeSupport == "" {
		config.TypeSupport = DefaultTypeSupport
	}
	if len(config.Watch.Exclude) == 0 {
		config.Watch.Exclude = []string{".git/", "build/", "install/", "log/"}
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve config directory")
	}
	config.resolve(base)

	return &config, nil
}

// Validate reports the first problem that would prevent a generation pass
func (c *Config) Validate() error {
	if c.PackageName == "" {
		return errors.WithHint(errors.New("package_name is required"), "set package_name in the arguments file")
	}
	if !idl.IsValidPackageName(c.PackageName) {
		return errors.WithHint(
			errors.Newf("invalid package_name '%s'", c.PackageName),
			"package names are lowercase, start with a letter and may contain digits and single underscores",
		)
	}
	if c.TemplateDir == "" {
		return errors.New("template_dir is required")
	}
	if c.OutputDir == "" {
		return errors.New("output_dir is required")
	}
	if _, err := codegen.DefaultRegistry.Get(c.TypeSupport); err != nil {
		return err
	}
	for _, dep := range c.InterfaceDependencies {
		if _, _, err := idl.ParseDependency(dep); err != nil {
			return err
		}
	}
	return nil
}

// WatchedFiles returns every input whose change should trigger regeneration
func (c *Config) WatchedFiles() []string {
	files := make([]string, 0, len(c.InterfaceFiles)+len(c.TargetDependencies)+len(c.AdditionalFiles))
	files = append(files, c.InterfaceFiles...)
	files = append(files, c.TargetDependencies...)
	files = append(files, c.AdditionalFiles...)
	return files
}

// resolve makes every relative path of the record absolute against base
func (c *Config) resolve(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	all := func(paths []string) {
		for i, p := range paths {
			paths[i] = abs(p)
		}
	}

	c.TemplateDir = abs(c.TemplateDir)
	c.OutputDir = abs(c.OutputDir)
	all(c.InterfaceFiles)
	all(c.TargetDependencies)
	all(c.AdditionalFiles)

	for i, dep := range c.InterfaceDependencies {
		if pkg, path, err := idl.ParseDependency(dep); err == nil {
			c.InterfaceDependencies[i] = pkg + ":" + abs(path)
		}
	}
}

// loadConfigFromDir searches for an arguments file in the given directory and its parents
func loadConfigFromDir(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range FileNames {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				config, err := LoadConfigFromPath(configPath)
				if err != nil {
					return nil, "", err
				}
				return config, dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return nil, "", errors.Newf("no typesupport.json or typesupport.yaml found in %s or any parent directory", startDir)
}
