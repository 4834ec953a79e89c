package idl

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	commentDelimiter   = "#"
	constantSeparator  = "="
	serviceSeparator   = "---"
	requestNameSuffix  = "_Request"
	responseNameSuffix = "_Response"
)

// Classify returns the interface kind of path based on its extension
func Classify(path string) Kind {
	switch filepath.Ext(path) {
	case ".msg":
		return KindMessage
	case ".srv":
		return KindService
	default:
		return KindUnknown
	}
}

// InterfaceName returns the type name an interface file declares, which is
// its base name without extension
func InterfaceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseMessageFile parses the .msg file at path as a message of package pkgName
func ParseMessageFile(pkgName, path string) (*MessageSpecification, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read message file %s", path)
	}

	spec, err := ParseMessageString(pkgName, InterfaceName(path), string(content))
	if err != nil {
		return nil, inFile(err, path)
	}
	return spec, nil
}

// ParseServiceFile parses the .srv file at path as a service of package pkgName
func ParseServiceFile(pkgName, path string) (*ServiceSpecification, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read service file %s", path)
	}

	spec, err := ParseServiceString(pkgName, InterfaceName(path), string(content))
	if err != nil {
		return nil, inFile(err, path)
	}
	return spec, nil
}

// ParseMessageString parses the body of a message definition
func ParseMessageString(pkgName, msgName, text string) (*MessageSpecification, error) {
	if err := checkNames(pkgName, msgName); err != nil {
		return nil, err
	}
	return parseMessageLines(pkgName, msgName, splitLines(text), 1)
}

// ParseServiceString parses the body of a service definition. The request
// and the response are separated by a line holding only "---".
func ParseServiceString(pkgName, srvName, text string) (*ServiceSpecification, error) {
	if err := checkNames(pkgName, srvName); err != nil {
		return nil, err
	}

	lines := splitLines(text)
	separator, count := -1, 0
	for i, line := range lines {
		if strings.TrimSpace(line) == serviceSeparator {
			count++
			if separator < 0 {
				separator = i
			}
		}
	}
	if count != 1 {
		return nil, parseErrorf(0, "expected exactly one '%s' separator in service, found %d", serviceSeparator, count)
	}

	request, err := parseMessageLines(pkgName, srvName+requestNameSuffix, lines[:separator], 1)
	if err != nil {
		return nil, err
	}
	response, err := parseMessageLines(pkgName, srvName+responseNameSuffix, lines[separator+1:], separator+2)
	if err != nil {
		return nil, err
	}

	return &ServiceSpecification{
		PkgName:  pkgName,
		SrvName:  srvName,
		Request:  request,
		Response: response,
	}, nil
}

func parseMessageLines(pkgName, msgName string, lines []string, firstLine int) (*MessageSpecification, error) {
	spec := &MessageSpecification{
		BaseType:  BaseType{PkgName: pkgName, Type: msgName},
		MsgName:   msgName,
		Fields:    []Field{},
		Constants: []Constant{},
	}
	members := make(map[string]bool)

	for i, raw := range lines {
		lineNo := firstLine + i
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}

		typeString, rest := splitWord(line)
		if rest == "" {
			return nil, parseErrorf(lineNo, "missing name after type '%s'", typeString)
		}

		if strings.Contains(rest, constantSeparator) {
			constant, err := parseConstant(pkgName, typeString, rest, raw)
			if err != nil {
				return nil, atLine(err, lineNo)
			}
			if members[constant.Name] {
				return nil, parseErrorf(lineNo, "duplicate member name '%s'", constant.Name)
			}
			members[constant.Name] = true
			spec.Constants = append(spec.Constants, constant)
			continue
		}

		name, defaultValue := splitWord(rest)
		if !IsValidFieldName(name) {
			return nil, parseErrorf(lineNo, "invalid field name '%s'", name)
		}
		if members[name] {
			return nil, parseErrorf(lineNo, "duplicate member name '%s'", name)
		}

		typ, err := ParseType(typeString, pkgName)
		if err != nil {
			return nil, atLine(err, lineNo)
		}

		field := Field{Type: typ, Name: name}
		if defaultValue != "" {
			v, err := parseDefaultValue(typ, defaultValue)
			if err != nil {
				return nil, atLine(err, lineNo)
			}
			field.DefaultValue = v
		}

		members[name] = true
		spec.Fields = append(spec.Fields, field)
	}

	return spec, nil
}

// parseConstant parses "NAME=VALUE". String constants take their value
// from the raw line so that '#' may appear inside them.
func parseConstant(pkgName, typeString, rest, raw string) (Constant, error) {
	name, value, _ := strings.Cut(rest, constantSeparator)
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)

	if !IsValidConstantName(name) {
		return Constant{}, parseErrorf(0, "invalid constant name '%s'", name)
	}

	typ, err := ParseType(typeString, pkgName)
	if err != nil {
		return Constant{}, err
	}
	if typ.IsArray || !typ.IsPrimitive() {
		return Constant{}, parseErrorf(0, "constant '%s' must have a primitive, non-array type", name)
	}

	if typ.Type == "string" {
		_, value, _ = strings.Cut(raw, constantSeparator)
		value = strings.TrimSpace(value)
	}

	v, err := ParsePrimitiveValue(typ.BaseType, value)
	if err != nil {
		return Constant{}, err
	}

	return Constant{Type: typ.BaseType.String(), Name: name, Value: v}, nil
}

func checkNames(pkgName, name string) error {
	if !IsValidPackageName(pkgName) {
		return parseErrorf(0, "invalid package name '%s'", pkgName)
	}
	if !IsValidMessageName(name) {
		return parseErrorf(0, "invalid interface name '%s'", name)
	}
	return nil
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func stripComment(line string) string {
	if idx := strings.Index(line, commentDelimiter); idx >= 0 {
		return line[:idx]
	}
	return line
}

// splitWord splits s at the first run of whitespace
func splitWord(s string) (string, string) {
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx+1:])
}

// atLine attaches a line number to err, converting it to a ParseError
func atLine(err error, line int) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		if pe.Line == 0 {
			pe.Line = line
		}
		return pe
	}
	return &ParseError{Line: line, Msg: err.Error()}
}

func inFile(err error, path string) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.File = path
		return pe
	}
	return errors.Wrapf(err, "%s", path)
}
