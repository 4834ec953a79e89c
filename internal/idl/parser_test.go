package idl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"pkg/msg/Foo.msg", KindMessage},
		{"pkg/srv/DoThing.srv", KindService},
		{"pkg/action/Fibonacci.action", KindUnknown},
		{"pkg/msg/README.md", KindUnknown},
		{"Foo", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.path))
		})
	}
}

func TestParseMessageString_Fields(t *testing.T) {
	// Test plan:
	// - primitive, compound, qualified and Header fields
	// - dynamic, fixed and bounded arrays
	// - bounded strings and comments
	input := `# A pose with metadata
Header header
int32 count
float64[3] covariance   # row major
geometry_msgs/Point[] points
Pose[<=5] poses
string<=10 label
`

	spec, err := ParseMessageString("nav_msgs", "Path", input)
	require.NoError(t, err)

	assert.Equal(t, "nav_msgs", spec.BaseType.PkgName)
	assert.Equal(t, "Path", spec.BaseType.Type)
	assert.Equal(t, "Path", spec.MsgName)
	assert.Empty(t, spec.Constants)
	require.Len(t, spec.Fields, 6)

	header := spec.Fields[0]
	assert.Equal(t, "header", header.Name)
	assert.Equal(t, "std_msgs/Header", header.Type.String())
	assert.False(t, header.Type.IsPrimitive())

	count := spec.Fields[1]
	assert.Equal(t, "int32", count.Type.String())
	assert.True(t, count.Type.IsPrimitive())
	assert.False(t, count.HasDefault())

	covariance := spec.Fields[2]
	assert.True(t, covariance.Type.IsFixedArray())
	assert.Equal(t, 3, covariance.Type.ArraySize)

	points := spec.Fields[3]
	assert.True(t, points.Type.IsDynamicArray())
	assert.Equal(t, "geometry_msgs", points.Type.PkgName)
	assert.Equal(t, "geometry_msgs/Point[]", points.Type.String())

	poses := spec.Fields[4]
	assert.True(t, poses.Type.IsDynamicArray())
	assert.True(t, poses.Type.IsUpperBound)
	assert.Equal(t, "nav_msgs/Pose[<=5]", poses.Type.String())

	label := spec.Fields[5]
	assert.Equal(t, 10, label.Type.StringUpperBound)
	assert.Equal(t, "string<=10", label.Type.String())
}

func TestParseMessageString_ConstantsAndDefaults(t *testing.T) {
	input := `int8 MIN=-128
uint8 MAX=255
string GREETING=hello # world
bool enabled true
float32 ratio 0.5
int32[] values [1, 2, 3]
string name "robot"
`

	spec, err := ParseMessageString("test_msgs", "Settings", input)
	require.NoError(t, err)

	require.Len(t, spec.Constants, 3)
	assert.Equal(t, Constant{Type: "int8", Name: "MIN", Value: int64(-128)}, spec.Constants[0])
	assert.Equal(t, Constant{Type: "uint8", Name: "MAX", Value: uint64(255)}, spec.Constants[1])
	assert.Equal(t, "hello # world", spec.Constants[2].Value)

	require.Len(t, spec.Fields, 4)
	assert.Equal(t, true, spec.Fields[0].DefaultValue)
	assert.Equal(t, 0.5, spec.Fields[1].DefaultValue)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, spec.Fields[2].DefaultValue)
	assert.Equal(t, "robot", spec.Fields[3].DefaultValue)
}

func TestParseMessageString_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		line    int
		message string
	}{
		{"missing field name", "int32", 1, "missing name"},
		{"invalid field name", "int32 Count", 1, "invalid field name"},
		{"double underscore", "int32 a__b", 1, "invalid field name"},
		{"duplicate field", "int32 a\nint32 a", 2, "duplicate member"},
		{"invalid constant name", "int32 lower=1", 1, "invalid constant name"},
		{"array constant", "int32[] VALUES=1", 1, "primitive, non-array"},
		{"compound constant", "Foo VALUE=1", 1, "primitive, non-array"},
		{"out of range", "uint8 x 256", 1, "out of range"},
		{"negative unsigned", "uint16 X=-1", 1, "out of range"},
		{"hex constant", "int32 X=0x10", 1, "not a decimal int32"},
		{"octal default", "uint8 x 0o7", 1, "not a decimal uint8"},
		{"binary array default", "int16[] v [1, 0b1]", 1, "not a decimal int16"},
		{"leading zero prefix", "uint64 X=0X1F", 1, "not a decimal uint64"},
		{"not a bool", "bool flag maybe", 1, "not a bool"},
		{"compound default", "Foo foo 1", 1, "only allowed for primitive"},
		{"fixed array default size", "int8[2] v [1, 2, 3]", 1, "expected 2"},
		{"bounded array default size", "int8[<=1] v [1, 2]", 1, "upper bound is 1"},
		{"zero array size", "int8[0] v", 1, "invalid array size"},
		{"bad upper bound", "int8[<=x] v", 1, "invalid array upper bound"},
		{"bounded non string", "int32<=3 v", 1, "only allowed on strings"},
		{"bad message name", "foo_msgs/lower v", 1, "invalid message name"},
		{"bad package name", "Foo/Bar v", 1, "invalid package name"},
		{"too many slashes", "a/b/C v", 1, "invalid type"},
		{"string too long", "string<=2 s abc", 1, "exceeds upper bound"},
		{"error after comments", "# header\n\nint32 a\nint32 Bad", 4, "invalid field name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMessageString("test_msgs", "Sample", tt.input)
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected ParseError, got %T", err)
			assert.Equal(t, tt.line, pe.Line)
			assert.Contains(t, pe.Error(), tt.message)
		})
	}
}

func TestParseMessageString_InvalidNames(t *testing.T) {
	_, err := ParseMessageString("Bad", "Foo", "")
	assert.ErrorContains(t, err, "invalid package name")

	_, err = ParseMessageString("good_msgs", "foo", "")
	assert.ErrorContains(t, err, "invalid interface name")
}

func TestParseServiceString(t *testing.T) {
	input := `int64 a
int64 b
---
int64 sum
`

	spec, err := ParseServiceString("example_interfaces", "AddTwoInts", input)
	require.NoError(t, err)

	assert.Equal(t, "example_interfaces/AddTwoInts", spec.FullName())
	assert.Equal(t, "AddTwoInts_Request", spec.Request.MsgName)
	assert.Equal(t, "AddTwoInts_Response", spec.Response.MsgName)
	assert.Len(t, spec.Request.Fields, 2)
	assert.Len(t, spec.Response.Fields, 1)
	assert.Len(t, spec.Messages(), 2)
}

func TestParseServiceString_EmptyHalves(t *testing.T) {
	spec, err := ParseServiceString("std_srvs", "Empty", "---\n")
	require.NoError(t, err)
	assert.Empty(t, spec.Request.Fields)
	assert.Empty(t, spec.Response.Fields)
}

func TestParseServiceString_Errors(t *testing.T) {
	_, err := ParseServiceString("pkg", "NoSeparator", "int32 a\n")
	assert.ErrorContains(t, err, "found 0")

	_, err = ParseServiceString("pkg", "TwoSeparators", "---\n---\n")
	assert.ErrorContains(t, err, "found 2")

	// response line numbers count from the start of the file
	_, err = ParseServiceString("pkg", "BadResponse", "int32 a\n---\nint32 Bad\n")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Line)
}

func TestParseMessageFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "msg", "Foo.msg")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("int32 data\nBar bar\n"), 0644))

	spec, err := ParseMessageFile("test_msgs", path)
	require.NoError(t, err)
	assert.Equal(t, "test_msgs/Foo", spec.FullName())
	assert.Equal(t, "test_msgs/Bar", spec.Fields[1].Type.String())

	require.NoError(t, os.WriteFile(path, []byte("int32 Data\n"), 0644))
	_, err = ParseMessageFile("test_msgs", path)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, path, pe.File)
	assert.Equal(t, path+":1: invalid field name 'Data'", pe.Error())

	_, err = ParseMessageFile("test_msgs", filepath.Join(dir, "missing.msg"))
	assert.ErrorContains(t, err, "failed to read message file")
}

func TestParseServiceFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "DoThing.srv")
	require.NoError(t, os.WriteFile(path, []byte("string goal\n---\nbool ok\n"), 0644))

	spec, err := ParseServiceFile("test_msgs", path)
	require.NoError(t, err)
	assert.Equal(t, "DoThing", spec.SrvName)
	assert.Equal(t, "DoThing_Request", spec.Request.BaseType.Type)
}
