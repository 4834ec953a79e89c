// Package descriptor describes the interfaces of a package as a protobuf
// FileDescriptorSet, so tools that speak protobuf reflection can inspect
// message layouts without parsing .msg files.
package descriptor

import (
	"os"
	"path"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/typesupport/internal/idl"
	"github.com/okra-platform/typesupport/internal/templates"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Extension is appended to the package name to form the output file name
const Extension = ".desc"

var scalarTypes = map[string]descriptorpb.FieldDescriptorProto_Type{
	"bool":    descriptorpb.FieldDescriptorProto_TYPE_BOOL,
	"byte":    descriptorpb.FieldDescriptorProto_TYPE_UINT32,
	"char":    descriptorpb.FieldDescriptorProto_TYPE_UINT32,
	"uint8":   descriptorpb.FieldDescriptorProto_TYPE_UINT32,
	"uint16":  descriptorpb.FieldDescriptorProto_TYPE_UINT32,
	"uint32":  descriptorpb.FieldDescriptorProto_TYPE_UINT32,
	"uint64":  descriptorpb.FieldDescriptorProto_TYPE_UINT64,
	"int8":    descriptorpb.FieldDescriptorProto_TYPE_INT32,
	"int16":   descriptorpb.FieldDescriptorProto_TYPE_INT32,
	"int32":   descriptorpb.FieldDescriptorProto_TYPE_INT32,
	"int64":   descriptorpb.FieldDescriptorProto_TYPE_INT64,
	"float32": descriptorpb.FieldDescriptorProto_TYPE_FLOAT,
	"float64": descriptorpb.FieldDescriptorProto_TYPE_DOUBLE,
	"string":  descriptorpb.FieldDescriptorProto_TYPE_STRING,
}

// builder accumulates the files of one set
type builder struct {
	pkgName string
	files   map[string]*descriptorpb.FileDescriptorProto
}

// Build describes the messages and services of pkgName. Every message type
// referenced from another package gets a placeholder file holding an empty
// message of that name. The result is checked with protodesc before it is
// returned.
func Build(pkgName string, messages []*idl.MessageSpecification, services []*idl.ServiceSpecification) (*descriptorpb.FileDescriptorSet, error) {
	b := &builder{pkgName: pkgName, files: make(map[string]*descriptorpb.FileDescriptorProto)}

	for _, msg := range messages {
		file := b.file(pkgName, "msg", msg.MsgName)
		file.MessageType = append(file.MessageType, b.message(msg, file))
	}

	for _, srv := range services {
		file := b.file(pkgName, "srv", srv.SrvName)
		file.MessageType = append(file.MessageType, b.message(srv.Request, file), b.message(srv.Response, file))
		file.Service = append(file.Service, &descriptorpb.ServiceDescriptorProto{
			Name: proto.String(srv.SrvName),
			Method: []*descriptorpb.MethodDescriptorProto{{
				Name:       proto.String("Call"),
				InputType:  proto.String(fullName(pkgName, "srv", srv.Request.MsgName)),
				OutputType: proto.String(fullName(pkgName, "srv", srv.Response.MsgName)),
			}},
		})
	}

	names := make([]string, 0, len(b.files))
	for name := range b.files {
		names = append(names, name)
	}
	sort.Strings(names)

	set := &descriptorpb.FileDescriptorSet{}
	for _, name := range names {
		set.File = append(set.File, b.files[name])
	}

	if _, err := protodesc.NewFiles(set); err != nil {
		return nil, errors.Wrapf(err, "invalid descriptor set for package %s", pkgName)
	}
	return set, nil
}

// Marshal encodes set deterministically so unchanged interfaces yield
// byte-identical output
func Marshal(set *descriptorpb.FileDescriptorSet) ([]byte, error) {
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(set)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode descriptor set")
	}
	return data, nil
}

// Write stores set at outputPath, subject to the same up-to-date check as
// generated sources. It reports whether the file was written.
func Write(outputPath string, set *descriptorpb.FileDescriptorSet, floor time.Time) (bool, error) {
	data, err := Marshal(set)
	if err != nil {
		return false, err
	}
	return templates.WriteIfStale(outputPath, data, floor)
}

// Load reads a descriptor set written by Write
func Load(path string) (*descriptorpb.FileDescriptorSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read descriptor set %s", path)
	}

	set := &descriptorpb.FileDescriptorSet{}
	if err := proto.Unmarshal(data, set); err != nil {
		return nil, errors.Wrapf(err, "failed to decode descriptor set %s", path)
	}
	return set, nil
}

func (b *builder) file(pkg, subfolder, name string) *descriptorpb.FileDescriptorProto {
	fileName := path.Join(pkg, subfolder, name+".proto")
	if f, ok := b.files[fileName]; ok {
		return f
	}

	f := &descriptorpb.FileDescriptorProto{
		Name:    proto.String(fileName),
		Package: proto.String(pkg + "." + subfolder),
		Syntax:  proto.String("proto3"),
	}
	b.files[fileName] = f
	return f
}

func (b *builder) message(msg *idl.MessageSpecification, file *descriptorpb.FileDescriptorProto) *descriptorpb.DescriptorProto {
	out := &descriptorpb.DescriptorProto{Name: proto.String(msg.MsgName)}

	for i, field := range msg.Fields {
		fd := &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(field.Name),
			Number: proto.Int32(int32(i + 1)),
			Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		}
		if field.Type.IsArray {
			fd.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
		}

		if scalar, ok := scalarTypes[field.Type.Type]; ok && field.Type.IsPrimitive() {
			fd.Type = scalar.Enum()
		} else {
			ref := field.Type.BaseType
			if builtin, ok := idl.BuiltinMessageType(ref); ok {
				ref = builtin
			}
			fd.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
			fd.TypeName = proto.String(fullName(ref.PkgName, "msg", ref.Type))
			b.depend(file, ref)
		}

		out.Field = append(out.Field, fd)
	}
	return out
}

// depend records that file imports the file declaring ref, creating a
// placeholder for types outside the package
func (b *builder) depend(file *descriptorpb.FileDescriptorProto, ref idl.BaseType) {
	target := b.file(ref.PkgName, "msg", ref.Type)
	if target == file {
		return
	}
	if ref.PkgName != b.pkgName && len(target.MessageType) == 0 {
		target.MessageType = []*descriptorpb.DescriptorProto{{Name: proto.String(ref.Type)}}
	}

	for _, dep := range file.Dependency {
		if dep == target.GetName() {
			return
		}
	}
	file.Dependency = append(file.Dependency, target.GetName())
}

func fullName(pkg, subfolder, name string) string {
	return "." + pkg + "." + subfolder + "." + name
}
