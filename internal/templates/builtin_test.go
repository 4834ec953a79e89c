package templates

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	tests := []struct {
		lang  string
		files []string
	}{
		{
			lang: "c",
			files: []string{
				"_message_c.tmpl",
				"msg__rosidl_typesupport_fastrtps_c.h.tmpl",
				"msg__type_support_c.cpp.tmpl",
				"srv__rosidl_typesupport_fastrtps_c.h.tmpl",
				"srv__type_support_c.cpp.tmpl",
			},
		},
		{
			lang: "cpp",
			files: []string{
				"_message_cpp.tmpl",
				"msg__rosidl_typesupport_fastrtps_cpp.hpp.tmpl",
				"msg__type_support.cpp.tmpl",
				"srv__rosidl_typesupport_fastrtps_cpp.hpp.tmpl",
				"srv__type_support.cpp.tmpl",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			src, err := Builtin(tt.lang)
			require.NoError(t, err)

			entries, err := fs.ReadDir(src, ".")
			require.NoError(t, err)

			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			assert.Equal(t, tt.files, names)
		})
	}
}

func TestBuiltin_Unknown(t *testing.T) {
	_, err := Builtin("rust")
	assert.Error(t, err)
}

func TestBuiltinLanguages(t *testing.T) {
	assert.Equal(t, []string{"c", "cpp"}, BuiltinLanguages())
}

func TestExtractBuiltin(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "templates")
	require.NoError(t, ExtractBuiltin("cpp", dir))

	data, err := os.ReadFile(filepath.Join(dir, "msg__type_support.cpp.tmpl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `template "cpp_message_type_support"`)

	_, err = os.Stat(filepath.Join(dir, "_message_cpp.tmpl"))
	assert.NoError(t, err)
}
