package commands

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"testing/fstest"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/okra-platform/typesupport/internal/config"
	"github.com/okra-platform/typesupport/internal/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test plan:
// 1. Test successful scaffold flow with test options
// 2. Test package name validation (empty, invalid, existing directory)
// 3. Test template extraction from the built-in set
// 4. Test filesystem errors are reported
// 5. Test the scaffolded package generates end to end
// 6. Test form input with tea.WithInput

type mockFileSystem struct {
	statCalls    []string
	mkdirAllErr  error
	writeFileErr error
	files        map[string]bool
	dirs         []string
	written      map[string][]byte
}

func (m *mockFileSystem) Stat(name string) (os.FileInfo, error) {
	m.statCalls = append(m.statCalls, name)
	if m.files != nil && m.files[name] {
		return nil, nil
	}
	return nil, os.ErrNotExist
}

func (m *mockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	m.dirs = append(m.dirs, path)
	return m.mkdirAllErr
}

func (m *mockFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	if m.writeFileErr != nil {
		return m.writeFileErr
	}
	if m.written == nil {
		m.written = make(map[string][]byte)
	}
	m.written[name] = data
	return nil
}

func (m *mockFileSystem) writtenNames() []string {
	names := make([]string, 0, len(m.written))
	for name := range m.written {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func testTemplates() fstest.MapFS {
	return fstest.MapFS{
		"_message_c.tmpl":                           {Data: []byte(`{{define "x"}}{{end}}`)},
		"msg__rosidl_typesupport_fastrtps_c.h.tmpl": {Data: []byte(`// {{.msg}}`)},
	}
}

func newTestInitCommand(fsys FileSystem, opts *InitOptions) (*InitCommand, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &InitCommand{
		filesystem: fsys,
		builtin: func(lang string) (fs.FS, error) {
			return testTemplates(), nil
		},
		root:        "/work",
		out:         out,
		testOptions: opts,
	}, out
}

func TestInitCommand_Run_FullFlow(t *testing.T) {
	// Test: complete successful flow with test options
	mockFS := &mockFileSystem{}
	cmd, out := newTestInitCommand(mockFS, &InitOptions{PackageName: "demo_msgs", TypeSupport: "c"})

	err := cmd.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/work/demo_msgs/msg",
		"/work/demo_msgs/srv",
		"/work/demo_msgs/templates",
	}, mockFS.dirs)

	assert.Equal(t, []string{
		"/work/demo_msgs/msg/Greeting.msg",
		"/work/demo_msgs/srv/Greet.srv",
		"/work/demo_msgs/templates/_message_c.tmpl",
		"/work/demo_msgs/templates/msg__rosidl_typesupport_fastrtps_c.h.tmpl",
		"/work/demo_msgs/typesupport.yaml",
	}, mockFS.writtenNames())

	assert.Equal(t, `package_name: demo_msgs
ros_interface_files:
  - msg/Greeting.msg
  - srv/Greet.srv
template_dir: templates
output_dir: build/typesupport
typesupport: c
`, string(mockFS.written["/work/demo_msgs/typesupport.yaml"]))

	assert.Contains(t, out.String(), "Created interface package demo_msgs with c type support")
	assert.Contains(t, out.String(), "typesupport generate /work/demo_msgs/typesupport.yaml")
}

func TestInitCommand_Run_InvalidOptions(t *testing.T) {
	tests := []struct {
		name    string
		pkg     string
		files   map[string]bool
		wantErr string
	}{
		{name: "empty", pkg: "", wantErr: "package name cannot be empty"},
		{name: "invalid", pkg: "Demo-Msgs", wantErr: "invalid package name 'Demo-Msgs'"},
		{name: "existing directory", pkg: "demo_msgs", files: map[string]bool{"/work/demo_msgs": true}, wantErr: "directory demo_msgs already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockFS := &mockFileSystem{files: tt.files}
			cmd, _ := newTestInitCommand(mockFS, &InitOptions{PackageName: tt.pkg, TypeSupport: "c"})

			err := cmd.Run(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, mockFS.written)
		})
	}
}

func TestInitCommand_Run_FileSystemError(t *testing.T) {
	mockFS := &mockFileSystem{writeFileErr: errors.New("disk full")}
	cmd, _ := newTestInitCommand(mockFS, &InitOptions{PackageName: "demo_msgs", TypeSupport: "c"})

	err := cmd.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to scaffold package demo_msgs")
	assert.Contains(t, err.Error(), "disk full")
}

func TestInitCommand_extractTemplates_UnknownLanguage(t *testing.T) {
	cmd := &InitCommand{
		filesystem: &mockFileSystem{},
		builtin:    templates.Builtin,
	}

	err := cmd.extractTemplates("rust", "/dest")
	assert.Error(t, err)
}

func TestInitCommand_extractTemplates_Builtin(t *testing.T) {
	mockFS := &mockFileSystem{}
	cmd := &InitCommand{
		filesystem: mockFS,
		builtin:    templates.Builtin,
	}

	require.NoError(t, cmd.extractTemplates("cpp", "/dest"))
	assert.Contains(t, mockFS.writtenNames(), "/dest/msg__type_support.cpp.tmpl")
	assert.Contains(t, mockFS.writtenNames(), "/dest/_message_cpp.tmpl")
}

func TestInitCommand_FormValidation(t *testing.T) {
	mockFS := &mockFileSystem{files: map[string]bool{"/work/existing_msgs": true}}
	cmd, _ := newTestInitCommand(mockFS, nil)

	var pkg, lang string
	assert.NotNil(t, cmd.createInitForm(&pkg, &lang))

	assert.NoError(t, cmd.validatePackageName("demo_msgs"))
	assert.Error(t, cmd.validatePackageName("existing_msgs"))
	assert.Contains(t, mockFS.statCalls, "/work/existing_msgs")
}

func TestInitCommand_ScaffoldGenerates(t *testing.T) {
	// Test: a scaffolded package is a valid generation input
	for _, lang := range templates.BuiltinLanguages() {
		t.Run(lang, func(t *testing.T) {
			root := t.TempDir()
			cmd := NewInitCommand()
			cmd.root = root
			cmd.out = &bytes.Buffer{}
			cmd.testOptions = &InitOptions{PackageName: "demo_msgs", TypeSupport: lang}

			require.NoError(t, cmd.Run(context.Background()))

			argsFile := filepath.Join(root, "demo_msgs", "typesupport.yaml")
			cfg, err := config.LoadConfigFromPath(argsFile)
			require.NoError(t, err)
			assert.Equal(t, lang, cfg.TypeSupport)

			ctrl := &Controller{Flags: &Flags{}}
			require.NoError(t, ctrl.Generate(context.Background(), GenerateOptions{ArgsFiles: []string{argsFile}}))

			entries, err := os.ReadDir(filepath.Join(cfg.OutputDir, "msg"))
			require.NoError(t, err)
			assert.NotEmpty(t, entries)

			entries, err = os.ReadDir(filepath.Join(cfg.OutputDir, "srv"))
			require.NoError(t, err)
			assert.NotEmpty(t, entries)
		})
	}
}

// Integration test for the form - skip in CI but useful for local development
func TestInitCommand_promptInitOptions_Interactive(t *testing.T) {
	// Always skip this test in automated runs to prevent deadlocks
	if os.Getenv("INTERACTIVE_TEST") != "true" {
		t.Skip("Skipping interactive test. Set INTERACTIVE_TEST=true to run")
	}

	cmd, _ := newTestInitCommand(&mockFileSystem{}, nil)

	// Simulate user input: package name + enter + arrow down + enter
	input := strings.NewReader("demo_msgs\n\x1b[B\n")

	options, err := cmd.promptInitOptions(
		tea.WithInput(input),
		tea.WithoutRenderer(),
	)
	require.NoError(t, err)
	assert.Equal(t, "demo_msgs", options.PackageName)
	assert.Equal(t, "cpp", options.TypeSupport)
}
