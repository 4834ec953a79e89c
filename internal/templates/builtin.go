package templates

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// builtinFS holds the default Fast-RTPS templates, one directory per
// binding language. all: keeps the _*.tmpl partials.
//
//go:embed all:fastrtps
var builtinFS embed.FS

// Builtin returns the default templates of the binding named lang
func Builtin(lang string) (fs.FS, error) {
	dir := path.Join("fastrtps", lang)
	if _, err := fs.Stat(builtinFS, dir); err != nil {
		return nil, errors.Newf("no built-in templates for type support %s", lang)
	}
	return fs.Sub(builtinFS, dir)
}

// BuiltinLanguages lists the bindings that ship default templates
func BuiltinLanguages() []string {
	entries, _ := fs.ReadDir(builtinFS, "fastrtps")
	langs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			langs = append(langs, e.Name())
		}
	}
	return langs
}

// ExtractBuiltin copies the default templates of lang into destDir
func ExtractBuiltin(lang, destDir string) error {
	src, err := Builtin(lang)
	if err != nil {
		return err
	}

	return fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		dest := filepath.Join(destDir, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(dest, 0755)
		}

		data, err := fs.ReadFile(src, p)
		if err != nil {
			return err
		}
		return os.WriteFile(dest, data, 0644)
	})
}
