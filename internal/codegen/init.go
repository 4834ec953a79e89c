package codegen

import (
	"github.com/okra-platform/typesupport/internal/codegen/fastrtps"
	"github.com/okra-platform/typesupport/internal/idl"
	"github.com/okra-platform/typesupport/internal/naming"
)

// DefaultRegistry is the global registry with the Fast-RTPS bindings registered
var DefaultRegistry = NewRegistry()

func init() {
	c := CBinding()
	cpp := CPPBinding()

	for _, b := range []*Binding{c, cpp} {
		for _, name := range []string{b.Language, b.Identifier} {
			if err := DefaultRegistry.Register(name, b); err != nil {
				panic(err)
			}
		}
	}
}

// CBinding returns the Fast-RTPS binding for C interfaces
func CBinding() *Binding {
	funcs := fastrtps.CFuncs()
	funcs["headerFilename"] = naming.LowerUnderscore

	return &Binding{
		Identifier:       fastrtps.CIdentifier,
		Language:         "c",
		BackendSubfolder: fastrtps.CBackendSubfolder,
		Mappings: []Mapping{
			{idl.KindMessage, ArtifactDeclaration, "msg__rosidl_typesupport_fastrtps_c.h.tmpl", "%s__rosidl_typesupport_fastrtps_c.h"},
			{idl.KindMessage, ArtifactDefinition, "msg__type_support_c.cpp.tmpl", "%s__type_support_c.cpp"},
			{idl.KindService, ArtifactDeclaration, "srv__rosidl_typesupport_fastrtps_c.h.tmpl", "%s__rosidl_typesupport_fastrtps_c.h"},
			{idl.KindService, ArtifactDefinition, "srv__type_support_c.cpp.tmpl", "%s__type_support_c.cpp"},
		},
		Funcs: funcs,
	}
}

// CPPBinding returns the Fast-RTPS binding for C++ interfaces
func CPPBinding() *Binding {
	funcs := fastrtps.CPPFuncs()
	funcs["headerFilename"] = naming.LowerUnderscore

	return &Binding{
		Identifier:       fastrtps.CPPIdentifier,
		Language:         "cpp",
		BackendSubfolder: fastrtps.CPPBackendSubfolder,
		Mappings: []Mapping{
			{idl.KindMessage, ArtifactDeclaration, "msg__rosidl_typesupport_fastrtps_cpp.hpp.tmpl", "%s__rosidl_typesupport_fastrtps_cpp.hpp"},
			{idl.KindMessage, ArtifactDefinition, "msg__type_support.cpp.tmpl", "%s__type_support.cpp"},
			{idl.KindService, ArtifactDeclaration, "srv__rosidl_typesupport_fastrtps_cpp.hpp.tmpl", "%s__rosidl_typesupport_fastrtps_cpp.hpp"},
			{idl.KindService, ArtifactDefinition, "srv__type_support.cpp.tmpl", "%s__type_support.cpp"},
		},
		Funcs: funcs,
	}
}
