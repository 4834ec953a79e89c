package idl

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// PrimitiveTypes lists the built-in field types
var PrimitiveTypes = []string{
	"bool",
	"byte",
	"char",
	"float32",
	"float64",
	"int8",
	"uint8",
	"int16",
	"uint16",
	"int32",
	"uint32",
	"int64",
	"uint64",
	"string",
	// kept for compatibility with older interface files
	"duration",
	"time",
}

// builtinMessageTypes maps the legacy time primitives to the messages
// that carry them on the wire
var builtinMessageTypes = map[string]BaseType{
	"time":     {PkgName: "builtin_interfaces", Type: "Time"},
	"duration": {PkgName: "builtin_interfaces", Type: "Duration"},
}

// BuiltinMessageType returns the message type standing in for the
// primitive b, if b is time or duration
func BuiltinMessageType(b BaseType) (BaseType, bool) {
	if !b.IsPrimitive() {
		return BaseType{}, false
	}
	m, ok := builtinMessageTypes[b.Type]
	return m, ok
}

var (
	validPackageName  = regexp.MustCompile(`^[a-z]([a-z0-9_]?[a-z0-9]+)*$`)
	validFieldName    = regexp.MustCompile(`^[a-z]([a-z0-9_]?[a-z0-9]+)*$`)
	validMessageName  = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	validConstantName = regexp.MustCompile(`^[A-Z]([A-Z0-9_]?[A-Z0-9]+)*$`)
)

// IsPrimitiveType reports whether name is a built-in type
func IsPrimitiveType(name string) bool {
	return slices.Contains(PrimitiveTypes, name)
}

// IsValidPackageName reports whether name is a valid package name
func IsValidPackageName(name string) bool {
	return validPackageName.MatchString(name)
}

// IsValidFieldName reports whether name is a valid field name
func IsValidFieldName(name string) bool {
	return validFieldName.MatchString(name)
}

// IsValidMessageName reports whether name is a valid message or service name
func IsValidMessageName(name string) bool {
	return validMessageName.MatchString(name)
}

// IsValidConstantName reports whether name is a valid constant name
func IsValidConstantName(name string) bool {
	return validConstantName.MatchString(name)
}

// ParseType parses a field type string such as "int32", "string<=10",
// "geometry_msgs/Point[3]" or "Pose[<=5]". Unqualified compound types
// resolve to contextPkg, except "Header" which always means std_msgs/Header.
func ParseType(typeString, contextPkg string) (Type, error) {
	var t Type
	base := typeString

	if strings.HasSuffix(typeString, "]") {
		open := strings.LastIndex(typeString, "[")
		if open < 0 {
			return Type{}, parseErrorf(0, "invalid array type '%s'", typeString)
		}
		base = typeString[:open]
		inner := typeString[open+1 : len(typeString)-1]
		t.IsArray = true

		switch {
		case inner == "":
		case strings.HasPrefix(inner, "<="):
			n, err := positiveInt(inner[2:])
			if err != nil {
				return Type{}, parseErrorf(0, "invalid array upper bound in '%s'", typeString)
			}
			t.ArraySize = n
			t.IsUpperBound = true
		default:
			n, err := positiveInt(inner)
			if err != nil {
				return Type{}, parseErrorf(0, "invalid array size in '%s'", typeString)
			}
			t.ArraySize = n
		}
	}

	bt, err := parseBaseType(base, contextPkg)
	if err != nil {
		return Type{}, err
	}
	t.BaseType = bt
	return t, nil
}

func parseBaseType(base, contextPkg string) (BaseType, error) {
	if name, bound, ok := strings.Cut(base, "<="); ok {
		if name != "string" {
			return BaseType{}, parseErrorf(0, "upper bound is only allowed on strings, not '%s'", name)
		}
		n, err := positiveInt(bound)
		if err != nil {
			return BaseType{}, parseErrorf(0, "invalid string upper bound in '%s'", base)
		}
		return BaseType{Type: name, StringUpperBound: n}, nil
	}

	if IsPrimitiveType(base) {
		return BaseType{Type: base}, nil
	}

	pkg, name := contextPkg, base
	if strings.Contains(base, "/") {
		parts := strings.Split(base, "/")
		if len(parts) != 2 {
			return BaseType{}, parseErrorf(0, "invalid type '%s'", base)
		}
		pkg, name = parts[0], parts[1]
	} else if base == "Header" {
		pkg = "std_msgs"
	}

	if !IsValidPackageName(pkg) {
		return BaseType{}, parseErrorf(0, "invalid package name '%s' in type '%s'", pkg, base)
	}
	if !IsValidMessageName(name) {
		return BaseType{}, parseErrorf(0, "invalid message name '%s' in type '%s'", name, base)
	}
	return BaseType{PkgName: pkg, Type: name}, nil
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
