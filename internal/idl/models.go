package idl

import (
	"fmt"
	"strings"
)

// Kind classifies an interface file by its extension
type Kind int

const (
	// KindUnknown is any file that is not an interface definition
	KindUnknown Kind = iota
	// KindMessage is a .msg file
	KindMessage
	// KindService is a .srv file
	KindService
)

// String returns the conventional subfolder name of the kind
func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "msg"
	case KindService:
		return "srv"
	default:
		return "unknown"
	}
}

// BaseType is a field type without its array qualifier
type BaseType struct {
	// PkgName is empty for primitive types
	PkgName string `json:"pkg_name,omitempty"`
	Type    string `json:"type"`
	// StringUpperBound is the maximum length of a bounded string, 0 when unbounded
	StringUpperBound int `json:"string_upper_bound,omitempty"`
}

// IsPrimitive reports whether the type is one of the built-in types
func (b BaseType) IsPrimitive() bool {
	return b.PkgName == ""
}

// String returns the type as written in an interface file
func (b BaseType) String() string {
	if b.IsPrimitive() {
		if b.StringUpperBound > 0 {
			return fmt.Sprintf("%s<=%d", b.Type, b.StringUpperBound)
		}
		return b.Type
	}
	return b.PkgName + "/" + b.Type
}

// Type is a field type, optionally an array
type Type struct {
	BaseType
	IsArray bool `json:"is_array,omitempty"`
	// ArraySize is the fixed size or the upper bound, 0 for unbounded arrays
	ArraySize    int  `json:"array_size,omitempty"`
	IsUpperBound bool `json:"is_upper_bound,omitempty"`
}

// IsDynamicArray reports whether the array length is only known at runtime
func (t Type) IsDynamicArray() bool {
	return t.IsArray && (t.ArraySize == 0 || t.IsUpperBound)
}

// IsFixedArray reports whether the array has a fixed length
func (t Type) IsFixedArray() bool {
	return t.IsArray && t.ArraySize > 0 && !t.IsUpperBound
}

// String returns the type as written in an interface file
func (t Type) String() string {
	s := t.BaseType.String()
	if !t.IsArray {
		return s
	}
	switch {
	case t.ArraySize == 0:
		return s + "[]"
	case t.IsUpperBound:
		return fmt.Sprintf("%s[<=%d]", s, t.ArraySize)
	default:
		return fmt.Sprintf("%s[%d]", s, t.ArraySize)
	}
}

// Field is a named, typed member of a message
type Field struct {
	Type Type   `json:"type"`
	Name string `json:"name"`
	// DefaultValue is nil when the field declares no default
	DefaultValue any `json:"default_value,omitempty"`
}

// HasDefault reports whether the field declares a default value
func (f Field) HasDefault() bool {
	return f.DefaultValue != nil
}

// Constant is a named primitive value declared in a message
type Constant struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// MessageSpecification is the parsed form of a .msg file or of one half of a .srv file
type MessageSpecification struct {
	BaseType  BaseType   `json:"base_type"`
	MsgName   string     `json:"msg_name"`
	Fields    []Field    `json:"fields"`
	Constants []Constant `json:"constants"`
}

// FullName returns the pkg/Name identity of the message
func (m *MessageSpecification) FullName() string {
	return m.BaseType.String()
}

// Messages implements Specification
func (m *MessageSpecification) Messages() []*MessageSpecification {
	return []*MessageSpecification{m}
}

// ServiceSpecification is the parsed form of a .srv file
type ServiceSpecification struct {
	PkgName  string                `json:"pkg_name"`
	SrvName  string                `json:"srv_name"`
	Request  *MessageSpecification `json:"request"`
	Response *MessageSpecification `json:"response"`
}

// FullName returns the pkg/Name identity of the service
func (s *ServiceSpecification) FullName() string {
	return s.PkgName + "/" + s.SrvName
}

// Messages implements Specification
func (s *ServiceSpecification) Messages() []*MessageSpecification {
	return []*MessageSpecification{s.Request, s.Response}
}

// Specification is implemented by message and service specifications
type Specification interface {
	FullName() string
	// Messages returns the message specifications whose fields must resolve
	Messages() []*MessageSpecification
}

// splitFullName splits "pkg/Name" into its parts
func splitFullName(name string) (string, string) {
	pkg, typ, ok := strings.Cut(name, "/")
	if !ok {
		return "", name
	}
	return pkg, typ
}
