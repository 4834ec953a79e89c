package idl

import "fmt"

// ParseError is returned for interface files that are not valid for their kind
type ParseError struct {
	File string
	// Line is 1-based, 0 when the error concerns the whole file
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	case e.File != "":
		return fmt.Sprintf("%s: %s", e.File, e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	default:
		return e.Msg
	}
}

// UnknownTypeError is returned when a field references a type outside the known-type set
type UnknownTypeError struct {
	// Interface is the pkg/Name of the message declaring the field
	Interface string
	Field     string
	Type      string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("%s: field '%s' references unknown message type '%s'", e.Interface, e.Field, e.Type)
}

func parseErrorf(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
