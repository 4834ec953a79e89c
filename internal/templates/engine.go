// Package templates expands text/template files into generated sources,
// leaving outputs untouched when they are already up to date.
package templates

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// PartialPattern matches the files next to a template that hold shared
// {{define}} blocks. They are parsed together with every template of their
// directory and are never rendered on their own.
const PartialPattern = "_*.tmpl"

// Engine renders template files with a fixed set of helper functions.
// Parsed templates are cached until the template or one of its partials
// changes on disk; an Engine is not safe for concurrent use.
type Engine struct {
	logger zerolog.Logger
	funcs  template.FuncMap
	cache  map[string]*cachedTemplate
}

// cachedTemplate is a parsed template with the state of the files it was
// parsed from
type cachedTemplate struct {
	tmpl  *template.Template
	files map[string]fileStamp
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

// NewEngine creates an engine whose templates can call funcs in addition
// to the built-in helpers
func NewEngine(logger zerolog.Logger, funcs template.FuncMap) *Engine {
	all := template.FuncMap{
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"join":  strings.Join,
		"add":   func(a, b int) int { return a + b },
		"dict":  dict,
	}
	for name, fn := range funcs {
		all[name] = fn
	}

	return &Engine{
		logger: logger.With().Str("component", "template-engine").Logger(),
		funcs:  all,
		cache:  make(map[string]*cachedTemplate),
	}
}

// Render executes the template at templatePath against data. Referencing
// a key that data does not contain is an error.
func (e *Engine) Render(templatePath string, data map[string]any) ([]byte, error) {
	tmpl, err := e.load(templatePath)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrapf(err, "failed to render template %s", templatePath)
	}
	return buf.Bytes(), nil
}

// Write stores content at outputPath unless the file there is at least as
// new as floor and already holds exactly content. It reports whether the
// file was written.
func (e *Engine) Write(outputPath string, content []byte, floor time.Time) (bool, error) {
	written, err := WriteIfStale(outputPath, content, floor)
	if err != nil {
		return false, err
	}
	if written {
		e.logger.Debug().Str("path", outputPath).Int("size", len(content)).Msg("wrote generated file")
	} else {
		e.logger.Debug().Str("path", outputPath).Msg("generated file up to date")
	}
	return written, nil
}

// Expand renders templatePath and writes the result to outputPath, subject
// to the same up-to-date check as Write
func (e *Engine) Expand(templatePath string, data map[string]any, outputPath string, floor time.Time) (bool, error) {
	content, err := e.Render(templatePath, data)
	if err != nil {
		return false, err
	}
	return e.Write(outputPath, content, floor)
}

func (e *Engine) load(templatePath string) (*template.Template, error) {
	partials, err := filepath.Glob(filepath.Join(filepath.Dir(templatePath), PartialPattern))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list partial templates")
	}
	files := stampFiles(append([]string{templatePath}, partials...))

	if cached, ok := e.cache[templatePath]; ok && sameStamps(cached.files, files) {
		return cached.tmpl, nil
	}

	tmpl, err := template.New(filepath.Base(templatePath)).
		Funcs(e.funcs).
		Option("missingkey=error").
		ParseFiles(templatePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse template %s", templatePath)
	}

	if len(partials) > 0 {
		if _, err := tmpl.ParseFiles(partials...); err != nil {
			return nil, errors.Wrapf(err, "failed to parse partial templates for %s", templatePath)
		}
	}

	if _, ok := e.cache[templatePath]; ok {
		e.logger.Debug().Str("template", templatePath).Msg("template changed, reparsed")
	}
	e.cache[templatePath] = &cachedTemplate{tmpl: tmpl, files: files}
	return tmpl, nil
}

// stampFiles records modification time and size of every path that can be
// stat'ed; unreadable files are left out and fail at parse time instead
func stampFiles(paths []string) map[string]fileStamp {
	stamps := make(map[string]fileStamp, len(paths))
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			stamps[p] = fileStamp{modTime: info.ModTime(), size: info.Size()}
		}
	}
	return stamps
}

func sameStamps(a, b map[string]fileStamp) bool {
	if len(a) != len(b) {
		return false
	}
	for p, sa := range a {
		sb, ok := b[p]
		if !ok || !sa.modTime.Equal(sb.modTime) || sa.size != sb.size {
			return false
		}
	}
	return true
}

// WriteIfStale writes content to path unless path exists, has a
// modification time at or after floor, and holds identical content. A zero
// floor reduces the check to a content comparison. Missing parent
// directories are created.
func WriteIfStale(path string, content []byte, floor time.Time) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.ModTime().Before(floor) {
			existing, err := os.ReadFile(path)
			if err != nil {
				return false, errors.Wrapf(err, "failed to read %s", path)
			}
			if bytes.Equal(existing, content) {
				return false, nil
			}
		}
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return false, errors.Wrapf(err, "failed to create directory for %s", path)
		}
	default:
		return false, errors.Wrapf(err, "failed to stat %s", path)
	}

	if err := writeAtomic(path, content); err != nil {
		return false, err
	}
	return true, nil
}

// writeAtomic replaces path through a temporary file in the same directory
// so readers never see partial output
func writeAtomic(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary file for %s", path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to set permissions on %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to move generated file into place at %s", path)
	}
	return nil
}

// dict builds a map from alternating keys and values so a {{template}} call
// can receive more than one value
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict expects an even number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, errors.Newf("dict key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}
