package idl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

var integerBounds = map[string]struct {
	bits   int
	signed bool
}{
	"byte":   {8, false},
	"char":   {8, false},
	"int8":   {8, true},
	"uint8":  {8, false},
	"int16":  {16, true},
	"uint16": {16, false},
	"int32":  {32, true},
	"uint32": {32, false},
	"int64":  {64, true},
	"uint64": {64, false},
}

// ParsePrimitiveValue converts the literal s to a value of the primitive
// type typ. Integers are decimal only and become int64 or uint64, floats
// float64, strings lose their surrounding quotes.
func ParsePrimitiveValue(bt BaseType, s string) (any, error) {
	switch bt.Type {
	case "bool":
		switch s {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return nil, errors.Newf("value '%s' is not a bool", s)

	case "float32", "float64":
		bits := 64
		if bt.Type == "float32" {
			bits = 32
		}
		v, err := strconv.ParseFloat(s, bits)
		if err != nil {
			return nil, errors.Newf("value '%s' is not a %s", s, bt.Type)
		}
		return v, nil

	case "string":
		v := unquote(s)
		if bt.StringUpperBound > 0 && len(v) > bt.StringUpperBound {
			return nil, errors.Newf("string value exceeds upper bound of %d characters", bt.StringUpperBound)
		}
		return v, nil
	}

	if b, ok := integerBounds[bt.Type]; ok {
		if b.signed {
			v, err := strconv.ParseInt(s, 10, b.bits)
			if err != nil {
				return nil, integerError(err, s, bt.Type)
			}
			return v, nil
		}
		v, err := strconv.ParseUint(s, 10, b.bits)
		if err != nil {
			if strings.HasPrefix(s, "-") && isDecimal(s[1:]) {
				return nil, errors.Newf("value '%s' is out of range for %s", s, bt.Type)
			}
			return nil, integerError(err, s, bt.Type)
		}
		return v, nil
	}

	return nil, errors.Newf("values of type '%s' are not supported", bt.Type)
}

// parseDefaultValue parses the default of a field, which for arrays is a
// bracketed, comma separated list of primitive literals.
func parseDefaultValue(t Type, s string) (any, error) {
	if !t.IsPrimitive() {
		return nil, errors.Newf("default values are only allowed for primitive types, not '%s'", t)
	}
	if !t.IsArray {
		return ParsePrimitiveValue(t.BaseType, s)
	}

	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, errors.New("array default value must be enclosed in brackets")
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])

	values := []any{}
	if inner != "" {
		for _, item := range strings.Split(inner, ",") {
			v, err := ParsePrimitiveValue(t.BaseType, strings.TrimSpace(item))
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
	}

	switch {
	case t.IsFixedArray() && len(values) != t.ArraySize:
		return nil, errors.Newf("array default value has %d elements, expected %d", len(values), t.ArraySize)
	case t.IsUpperBound && len(values) > t.ArraySize:
		return nil, errors.Newf("array default value has %d elements, upper bound is %d", len(values), t.ArraySize)
	}
	return values, nil
}

// FormatValue renders a parsed value back to interface-file syntax. Strings
// are always double quoted so empty values and surrounding blanks survive.
func FormatValue(v any) string {
	switch val := v.(type) {
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case []any:
		items := make([]string, len(val))
		for i, item := range val {
			items[i] = FormatValue(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case string:
		return `"` + val + `"`
	default:
		return fmt.Sprint(val)
	}
}

func integerError(err error, s, typ string) error {
	if errors.Is(err, strconv.ErrRange) {
		return errors.Newf("value '%s' is out of range for %s", s, typ)
	}
	return errors.Newf("value '%s' is not a decimal %s", s, typ)
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}
