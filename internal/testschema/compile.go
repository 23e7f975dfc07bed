// Package testschema turns an inline .proto2 source string into a
// *schema.Table, for tests that want to define a message shape the way
// a real producer would (in proto syntax) instead of building
// schema.FieldSpec literals field by field.
package testschema

import (
	"context"
	"fmt"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/corvusproto/dynwire/schema"
)

// Compile compiles src (the body of a single .proto2 file named
// filename) and returns a *schema.Table holding every message and enum
// it declares. It is test-only: production schema.Table construction
// goes through schema.DefineMessage/DefineEnum directly, since a
// decoder call site already knows the wire shape it expects and has no
// general need for a .proto front end.
func Compile(filename, src string) (*schema.Table, error) {
	acc := protocompile.SourceAccessorFromMap(map[string]string{filename: src})
	compiler := protocompile.Compiler{
		Resolver: &protocompile.SourceResolver{Accessor: acc},
	}
	files, err := compiler.Compile(context.Background(), filename)
	if err != nil {
		return nil, fmt.Errorf("testschema: compiling %s: %w", filename, err)
	}

	table := schema.NewTable()
	fd := files[0]
	for i := 0; i < fd.Enums().Len(); i++ {
		defineEnum(table, fd.Enums().Get(i))
	}
	for i := 0; i < fd.Messages().Len(); i++ {
		defineMessageTree(table, fd.Messages().Get(i))
	}
	return table, nil
}

func defineMessageTree(table *schema.Table, md protoreflect.MessageDescriptor) {
	defineMessage(table, md)
	for i := 0; i < md.Enums().Len(); i++ {
		defineEnum(table, md.Enums().Get(i))
	}
	for i := 0; i < md.Messages().Len(); i++ {
		defineMessageTree(table, md.Messages().Get(i))
	}
}

func defineEnum(table *schema.Table, ed protoreflect.EnumDescriptor) {
	values := make(map[string]int64, ed.Values().Len())
	for i := 0; i < ed.Values().Len(); i++ {
		v := ed.Values().Get(i)
		values[string(v.Name())] = int64(v.Number())
	}
	table.DefineEnum(string(ed.Name()), values)
}

func defineMessage(table *schema.Table, md protoreflect.MessageDescriptor) {
	fields := md.Fields()
	specs := make([]schema.FieldSpec, 0, fields.Len())
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		spec := schema.FieldSpec{
			Name:       string(fd.Name()),
			Num:        int32(fd.Number()),
			Slot:       i + 1,
			Occurrence: occurrenceOf(fd),
			Packed:     fd.IsPacked(),
		}
		spec.Type, spec.TypeName = kindOf(fd)
		specs = append(specs, spec)
	}
	table.DefineMessage(string(md.Name()), specs)
}

func occurrenceOf(fd protoreflect.FieldDescriptor) schema.Occurrence {
	switch {
	case fd.Cardinality() == protoreflect.Repeated:
		return schema.Repeated
	case fd.Cardinality() == protoreflect.Required:
		return schema.Required
	default:
		return schema.Optional
	}
}

func kindOf(fd protoreflect.FieldDescriptor) (schema.Kind, string) {
	switch fd.Kind() {
	case protoreflect.Sint32Kind:
		return schema.KindSint32, ""
	case protoreflect.Sint64Kind:
		return schema.KindSint64, ""
	case protoreflect.Int32Kind:
		return schema.KindInt32, ""
	case protoreflect.Int64Kind:
		return schema.KindInt64, ""
	case protoreflect.Uint32Kind:
		return schema.KindUint32, ""
	case protoreflect.Uint64Kind:
		return schema.KindUint64, ""
	case protoreflect.BoolKind:
		return schema.KindBool, ""
	case protoreflect.Fixed64Kind:
		return schema.KindFixed64, ""
	case protoreflect.Sfixed64Kind:
		return schema.KindSfixed64, ""
	case protoreflect.DoubleKind:
		return schema.KindDouble, ""
	case protoreflect.Fixed32Kind:
		return schema.KindFixed32, ""
	case protoreflect.Sfixed32Kind:
		return schema.KindSfixed32, ""
	case protoreflect.FloatKind:
		return schema.KindFloat, ""
	case protoreflect.StringKind:
		return schema.KindString, ""
	case protoreflect.BytesKind:
		return schema.KindBytes, ""
	case protoreflect.EnumKind:
		return schema.KindEnum, string(fd.Enum().Name())
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return schema.KindMessage, string(fd.Message().Name())
	default:
		return schema.KindInvalid, ""
	}
}
