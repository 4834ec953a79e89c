package generate

import (
	"github.com/okra-platform/typesupport/internal/idl"
)

// LoadedMessage is a message specification together with the file it came
// from, whose directory decides the output subfolder
type LoadedMessage struct {
	Path string
	Spec *idl.MessageSpecification
}

// LoadedService is a service specification together with its source file
type LoadedService struct {
	Path string
	Spec *idl.ServiceSpecification
}

// Loader parses interface files of one package and validates them against
// the package's known types
type Loader struct {
	PackageName string
	Known       idl.KnownTypes
}

// LoadMessage parses and validates the message file at path. Validation
// failures are returned as *idl.UnknownTypeError.
func (l *Loader) LoadMessage(path string) (*LoadedMessage, error) {
	spec, err := idl.ParseMessageFile(l.PackageName, path)
	if err != nil {
		return nil, err
	}
	if err := idl.ValidateFieldTypes(spec, l.Known); err != nil {
		return nil, err
	}
	return &LoadedMessage{Path: path, Spec: spec}, nil
}

// LoadService parses and validates the service file at path
func (l *Loader) LoadService(path string) (*LoadedService, error) {
	spec, err := idl.ParseServiceFile(l.PackageName, path)
	if err != nil {
		return nil, err
	}
	if err := idl.ValidateFieldTypes(spec, l.Known); err != nil {
		return nil, err
	}
	return &LoadedService{Path: path, Spec: spec}, nil
}
