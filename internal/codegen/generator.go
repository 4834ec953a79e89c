package codegen

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/typesupport/internal/idl"
)

// ArtifactKind distinguishes the two files generated per interface
type ArtifactKind int

const (
	// ArtifactDeclaration is the header placed directly in the interface subfolder
	ArtifactDeclaration ArtifactKind = iota
	// ArtifactDefinition is the translation unit placed in the backend subfolder
	ArtifactDefinition
)

func (a ArtifactKind) String() string {
	if a == ArtifactDefinition {
		return "definition"
	}
	return "declaration"
}

// Mapping binds one template to the output file it produces for one
// interface kind
type Mapping struct {
	Kind     idl.Kind
	Artifact ArtifactKind
	// Template is the file name inside the template directory
	Template string
	// Filename is a pattern with a single %s replaced by the interface stem
	Filename string
}

// Binding describes one serialization backend and host language pairing:
// where its translation units go, which templates it renders, in which
// order, and which helpers those templates may call
type Binding struct {
	// Identifier is the type support identifier, e.g. rosidl_typesupport_fastrtps_c
	Identifier string
	// Language is the short binding name used on the command line
	Language string
	// BackendSubfolder holds definition artifacts below the interface subfolder
	BackendSubfolder string
	Mappings         []Mapping
	Funcs            template.FuncMap
}

// MappingsFor returns the mappings applicable to kind in table order
func (b *Binding) MappingsFor(kind idl.Kind) []Mapping {
	var out []Mapping
	for _, m := range b.Mappings {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// TemplatePaths returns the full path of every template the binding uses
func (b *Binding) TemplatePaths(templateDir string) []string {
	paths := make([]string, len(b.Mappings))
	for i, m := range b.Mappings {
		paths[i] = filepath.Join(templateDir, m.Template)
	}
	return paths
}

// Subfolder returns the output subfolder of an interface file: "srv" for
// services wherever they live, the name of the containing directory for
// messages
func Subfolder(kind idl.Kind, sourcePath string) string {
	if kind == idl.KindService {
		return "srv"
	}
	return filepath.Base(filepath.Dir(sourcePath))
}

// ResolveOutputPath computes where the artifact of m for the interface with
// file stem stem is written
func (b *Binding) ResolveOutputPath(m Mapping, subfolder, stem, outputRoot string) string {
	dir := filepath.Join(outputRoot, subfolder)
	if m.Artifact == ArtifactDefinition {
		dir = filepath.Join(dir, b.BackendSubfolder)
	}
	return filepath.Join(dir, fmt.Sprintf(m.Filename, stem))
}

// Validate checks the mapping table: every interface kind needs exactly one
// declaration and one definition, and every filename pattern takes the stem
// exactly once
func (b *Binding) Validate() error {
	seen := make(map[idl.Kind]map[ArtifactKind]bool)
	for _, m := range b.Mappings {
		if strings.Count(m.Filename, "%s") != 1 || strings.Count(m.Filename, "%") != 1 {
			return errors.Newf("binding %s: filename pattern %q must contain exactly one %%s", b.Language, m.Filename)
		}
		if m.Template == "" {
			return errors.Newf("binding %s: %s %s mapping has no template", b.Language, m.Kind, m.Artifact)
		}
		if seen[m.Kind] == nil {
			seen[m.Kind] = make(map[ArtifactKind]bool)
		}
		if seen[m.Kind][m.Artifact] {
			return errors.Newf("binding %s: duplicate %s mapping for %s", b.Language, m.Artifact, m.Kind)
		}
		seen[m.Kind][m.Artifact] = true
	}

	for _, kind := range []idl.Kind{idl.KindMessage, idl.KindService} {
		if !seen[kind][ArtifactDeclaration] || !seen[kind][ArtifactDefinition] {
			return errors.Newf("binding %s: %s needs both a declaration and a definition mapping", b.Language, kind)
		}
	}
	return nil
}
