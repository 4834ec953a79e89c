package idl

import (
	"github.com/okra-platform/typesupport/internal/codegen/writer"
)

// FormatMessage renders spec in canonical interface-file syntax: constants
// first, then fields with aligned types. Compound types are always fully
// qualified, so the output parses back to an equal specification.
func FormatMessage(spec *MessageSpecification) string {
	w := writer.NewWriter(commentDelimiter)
	w.WriteComment(spec.FullName())
	writeMembers(w, spec)
	return w.String()
}

// FormatService renders spec in canonical interface-file syntax
func FormatService(spec *ServiceSpecification) string {
	w := writer.NewWriter(commentDelimiter)
	w.WriteComment(spec.FullName())
	writeMembers(w, spec.Request)
	w.WriteLine(serviceSeparator)
	writeMembers(w, spec.Response)
	return w.String()
}

func writeMembers(w *writer.Writer, spec *MessageSpecification) {
	for _, c := range spec.Constants {
		w.WriteLinef("%s %s%s%s", c.Type, c.Name, constantSeparator, FormatValue(c.Value))
	}

	rows := make([][2]string, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		member := f.Name
		if f.HasDefault() {
			member += " " + FormatValue(f.DefaultValue)
		}
		rows = append(rows, [2]string{f.Type.String(), member})
	}
	w.WriteColumns(rows)
}
