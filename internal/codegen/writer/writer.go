package writer

import (
	"fmt"
	"strings"
)

// Writer accumulates generated text in a target syntax with line comments
type Writer struct {
	sb            strings.Builder
	commentPrefix string
}

// NewWriter creates a writer whose comments start with commentPrefix
func NewWriter(commentPrefix string) *Writer {
	return &Writer{commentPrefix: commentPrefix}
}

// Write writes s without a trailing newline
func (w *Writer) Write(s string) {
	w.sb.WriteString(s)
}

// Writef writes a formatted string without a trailing newline
func (w *Writer) Writef(format string, args ...any) {
	w.Write(fmt.Sprintf(format, args...))
}

// WriteLine writes s followed by a newline
func (w *Writer) WriteLine(s string) {
	w.Write(s)
	w.Newline()
}

// WriteLinef writes a formatted string followed by a newline
func (w *Writer) WriteLinef(format string, args ...any) {
	w.Writef(format, args...)
	w.Newline()
}

// Newline ends the current line
func (w *Writer) Newline() {
	w.sb.WriteString("\n")
}

// String returns the accumulated text
func (w *Writer) String() string {
	return w.sb.String()
}

// WriteComment writes a single-line comment
func (w *Writer) WriteComment(comment string) {
	if comment == "" {
		w.WriteLine(w.commentPrefix)
		return
	}
	w.WriteLinef("%s %s", w.commentPrefix, comment)
}

// WriteColumns writes rows with their first column padded to a common width
func (w *Writer) WriteColumns(rows [][2]string) {
	width := 0
	for _, row := range rows {
		width = max(width, len(row[0]))
	}
	for _, row := range rows {
		if row[1] == "" {
			w.WriteLine(row[0])
			continue
		}
		w.WriteLinef("%-*s %s", width, row[0], row[1])
	}
}
