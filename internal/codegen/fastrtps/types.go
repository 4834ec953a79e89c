// Package fastrtps maps interface types to the C and C++ declarations used
// by the Fast-RTPS type support templates.
package fastrtps

import (
	"fmt"
	"sort"
	"text/template"

	"github.com/okra-platform/typesupport/internal/idl"
)

const (
	// CIdentifier names the C type support in generated symbols
	CIdentifier = "rosidl_typesupport_fastrtps_c"
	// CPPIdentifier names the C++ type support in generated symbols
	CPPIdentifier = "rosidl_typesupport_fastrtps_cpp"
	// CBackendSubfolder holds the C translation units below each interface subfolder
	CBackendSubfolder = "dds_fastrtps_c"
	// CPPBackendSubfolder holds the C++ translation units below each interface subfolder
	CPPBackendSubfolder = "dds_fastrtps"
)

var cPrimitives = map[string]string{
	"bool":     "bool",
	"byte":     "uint8_t",
	"char":     "signed char",
	"float32":  "float",
	"float64":  "double",
	"int8":     "int8_t",
	"uint8":    "uint8_t",
	"int16":    "int16_t",
	"uint16":   "uint16_t",
	"int32":    "int32_t",
	"uint32":   "uint32_t",
	"int64":    "int64_t",
	"uint64":   "uint64_t",
	"string":   "rosidl_generator_c__String",
	"duration": "builtin_interfaces__msg__Duration",
	"time":     "builtin_interfaces__msg__Time",
}

var cppPrimitives = map[string]string{
	"bool":     "bool",
	"byte":     "uint8_t",
	"char":     "char",
	"float32":  "float",
	"float64":  "double",
	"int8":     "int8_t",
	"uint8":    "uint8_t",
	"int16":    "int16_t",
	"uint16":   "uint16_t",
	"int32":    "int32_t",
	"uint32":   "uint32_t",
	"int64":    "int64_t",
	"uint64":   "uint64_t",
	"string":   "std::string",
	"duration": "builtin_interfaces::msg::Duration",
	"time":     "builtin_interfaces::msg::Time",
}

// CName returns the C identifier of an interface, e.g. pkg__msg__Foo
func CName(pkg, subfolder, name string) string {
	return pkg + "__" + subfolder + "__" + name
}

// CPPName returns the C++ qualified name of an interface, e.g. pkg::msg::Foo
func CPPName(pkg, subfolder, name string) string {
	return pkg + "::" + subfolder + "::" + name
}

// CElementType returns the C type of a single element of t
func CElementType(t idl.Type) string {
	if t.IsPrimitive() {
		return cPrimitives[t.Type]
	}
	return CName(t.PkgName, "msg", t.Type)
}

// CType returns the C member type of t. Fixed arrays are declared with
// their element type and a size suffix, so they map to the element type.
func CType(t idl.Type) string {
	if !t.IsDynamicArray() {
		return CElementType(t)
	}
	if !t.IsPrimitive() {
		return CElementType(t) + "__Sequence"
	}
	if t.Type == "string" {
		return "rosidl_generator_c__String__Sequence"
	}
	return "rosidl_generator_c__" + t.Type + "__Sequence"
}

// CPPElementType returns the C++ type of a single element of t
func CPPElementType(t idl.Type) string {
	if t.IsPrimitive() {
		return cppPrimitives[t.Type]
	}
	return CPPName(t.PkgName, "msg", t.Type)
}

// CPPType returns the C++ member type of t
func CPPType(t idl.Type) string {
	elem := CPPElementType(t)
	switch {
	case !t.IsArray:
		return elem
	case t.IsFixedArray():
		return fmt.Sprintf("std::array<%s, %d>", elem, t.ArraySize)
	case t.IsUpperBound:
		return fmt.Sprintf("rosidl_generator_cpp::BoundedVector<%s, %d>", elem, t.ArraySize)
	default:
		return fmt.Sprintf("std::vector<%s>", elem)
	}
}

// IsCDRPrimitive reports whether values of t are written to the CDR stream
// directly rather than through a nested type support
func IsCDRPrimitive(t idl.Type) bool {
	return t.IsPrimitive() && t.Type != "duration" && t.Type != "time"
}

// Nested returns the message type whose type support serializes values of
// t. It is only meaningful when IsCDRPrimitive(t) is false.
func Nested(t idl.Type) idl.BaseType {
	if b, ok := idl.BuiltinMessageType(t.BaseType); ok {
		return b
	}
	return t.BaseType
}

// NestedTypes returns the distinct message types referenced by the fields
// of msgs, sorted by pkg/Name
func NestedTypes(msgs ...*idl.MessageSpecification) []idl.BaseType {
	seen := make(map[string]bool)
	var out []idl.BaseType
	for _, msg := range msgs {
		for _, f := range msg.Fields {
			if IsCDRPrimitive(f.Type) {
				continue
			}
			n := Nested(f.Type)
			if key := n.String(); !seen[key] {
				seen[key] = true
				out = append(out, n)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// CDRSize returns the encoded width in bytes of a fixed-width primitive, or
// 0 for strings and nested types
func CDRSize(t idl.Type) int {
	if !t.IsPrimitive() {
		return 0
	}
	switch t.Type {
	case "bool", "byte", "char", "int8", "uint8":
		return 1
	case "int16", "uint16":
		return 2
	case "int32", "uint32", "float32":
		return 4
	case "int64", "uint64", "float64":
		return 8
	default:
		return 0
	}
}

// CFuncs returns the template helpers of the C binding
func CFuncs() template.FuncMap {
	return template.FuncMap{
		"cName":        CName,
		"cType":        CType,
		"cElementType": CElementType,
		"isPrimitive":  IsCDRPrimitive,
		"nested":       Nested,
		"nestedTypes":  NestedTypes,
		"cdrSize":      CDRSize,
	}
}

// CPPFuncs returns the template helpers of the C++ binding
func CPPFuncs() template.FuncMap {
	return template.FuncMap{
		"cppName":        CPPName,
		"cppType":        CPPType,
		"cppElementType": CPPElementType,
		"isPrimitive":    IsCDRPrimitive,
		"nested":         Nested,
		"nestedTypes":    NestedTypes,
		"cdrSize":        CDRSize,
	}
}
