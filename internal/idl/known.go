package idl

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// KnownTypes is the set of pkg/Name message identities visible to a package
type KnownTypes map[string]struct{}

// Add records pkg/name as known
func (k KnownTypes) Add(pkg, name string) {
	k[pkg+"/"+name] = struct{}{}
}

// Contains reports whether pkg/name is known
func (k KnownTypes) Contains(pkg, name string) bool {
	_, ok := k[pkg+"/"+name]
	return ok
}

// Sorted returns the identities in lexical order
func (k KnownTypes) Sorted() []string {
	names := make([]string, 0, len(k))
	for name := range k {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByPackage groups the message names of the set by package
func (k KnownTypes) ByPackage() map[string][]string {
	out := make(map[string][]string)
	for _, full := range k.Sorted() {
		pkg, name := splitFullName(full)
		out[pkg] = append(out[pkg], name)
	}
	return out
}

// ParseDependency splits a dependency identifier of the form
// "pkg:path/to/Name.msg" into its package and path
func ParseDependency(dep string) (string, string, error) {
	pkg, path, ok := strings.Cut(dep, ":")
	if !ok || pkg == "" || path == "" {
		return "", "", errors.WithHint(
			errors.Newf("invalid interface dependency '%s'", dep),
			"dependencies are written as <package>:<path to interface file>",
		)
	}
	return pkg, path, nil
}

// ExtractMessageTypes builds the known-type set of pkgName from its own
// interface files and the interface files of its dependencies. Only
// message files contribute types.
func ExtractMessageTypes(pkgName string, interfaceFiles, dependencies []string) (KnownTypes, error) {
	known := make(KnownTypes)
	for _, file := range interfaceFiles {
		if Classify(file) == KindMessage {
			known.Add(pkgName, InterfaceName(file))
		}
	}

	for _, dep := range dependencies {
		pkg, path, err := ParseDependency(dep)
		if err != nil {
			return nil, err
		}
		if Classify(path) == KindMessage {
			known.Add(pkg, InterfaceName(path))
		}
	}

	return known, nil
}

// ValidateFieldTypes checks that every compound field type of spec is in
// known. It returns an *UnknownTypeError for the first one that is not.
func ValidateFieldTypes(spec Specification, known KnownTypes) error {
	for _, msg := range spec.Messages() {
		for _, field := range msg.Fields {
			if field.Type.IsPrimitive() {
				continue
			}
			if !known.Contains(field.Type.PkgName, field.Type.Type) {
				return &UnknownTypeError{
					Interface: msg.FullName(),
					Field:     field.Name,
					Type:      field.Type.BaseType.String(),
				}
			}
		}
	}
	return nil
}
