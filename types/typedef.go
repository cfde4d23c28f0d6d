// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package types

import (
	"fmt"

	"github.com/pk910/merkleized-metadata/scaleutils"
)

// DefKind is the discriminant of a TypeDef. The numeric values are the wire tags.
type DefKind uint8

const (
	DefComposite   DefKind = 0
	DefEnumeration DefKind = 1
	DefSequence    DefKind = 2
	DefArray       DefKind = 3
	DefTuple       DefKind = 4
	DefBitSequence DefKind = 5
)

var defKindNames = [...]string{
	DefComposite:   "composite",
	DefEnumeration: "enumeration",
	DefSequence:    "sequence",
	DefArray:       "array",
	DefTuple:       "tuple",
	DefBitSequence: "bitsequence",
}

func (k DefKind) String() string {
	if int(k) < len(defKindNames) {
		return defKindNames[k]
	}
	return fmt.Sprintf("defkind(%d)", uint8(k))
}

// ParseDefKind resolves a definition kind by its name as returned by DefKind.String.
func ParseDefKind(name string) (DefKind, bool) {
	for i, n := range defKindNames {
		if n == name {
			return DefKind(i), true
		}
	}
	return 0, false
}

// Field is a named or unnamed member of a composite type or enumeration variant.
type Field struct {
	Name     *string `msgpack:"n,omitempty"`
	Ty       TypeRef `msgpack:"t"`
	TypeName *string `msgpack:"tn,omitempty"`
}

// NewField returns a named field.
func NewField(name string, ty TypeRef) Field {
	return Field{Name: &name, Ty: ty}
}

// UnnamedField returns a positional field.
func UnnamedField(ty TypeRef) Field {
	return Field{Ty: ty}
}

// WithTypeName returns a copy of f carrying the human readable type name.
func (f Field) WithTypeName(typeName string) Field {
	f.TypeName = &typeName
	return f
}

func (f *Field) MarshalSCALETo(enc scaleutils.Encoder) {
	enc.EncodeOptionString(f.Name)
	f.Ty.MarshalSCALETo(enc)
	enc.EncodeOptionString(f.TypeName)
}

// EnumerationVariant is the shape of one resolved enum variant.
type EnumerationVariant struct {
	Name   string  `msgpack:"n"`
	Fields []Field `msgpack:"f,omitempty"`
	Index  uint32  `msgpack:"i"`
}

func (v *EnumerationVariant) MarshalSCALETo(enc scaleutils.Encoder) {
	enc.EncodeString(v.Name)
	marshalFields(enc, v.Fields)
	enc.EncodeCompact(v.Index)
}

// TypeDefArray is a fixed length array.
type TypeDefArray struct {
	Len       uint32  `msgpack:"l"`
	TypeParam TypeRef `msgpack:"t"`
}

func (a *TypeDefArray) MarshalSCALETo(enc scaleutils.Encoder) {
	enc.EncodeUint32(a.Len)
	a.TypeParam.MarshalSCALETo(enc)
}

// TypeDefBitSequence is a sequence of bits stored in NumBytes wide words.
type TypeDefBitSequence struct {
	NumBytes                 uint8 `msgpack:"b"`
	LeastSignificantBitFirst bool  `msgpack:"l"`
}

func (b *TypeDefBitSequence) MarshalSCALETo(enc scaleutils.Encoder) {
	enc.EncodeUint8(b.NumBytes)
	enc.EncodeBool(b.LeastSignificantBitFirst)
}

// TypeDef is the definition bound to a type. Kind selects which payload is set:
//   - DefComposite: Fields
//   - DefEnumeration: Variant
//   - DefSequence: Element
//   - DefArray: Array
//   - DefTuple: Tuple
//   - DefBitSequence: BitSequence
type TypeDef struct {
	Kind        DefKind             `msgpack:"k"`
	Fields      []Field             `msgpack:"f,omitempty"`
	Variant     *EnumerationVariant `msgpack:"v,omitempty"`
	Element     TypeRef             `msgpack:"e,omitempty"`
	Array       *TypeDefArray       `msgpack:"a,omitempty"`
	Tuple       []TypeRef           `msgpack:"t,omitempty"`
	BitSequence *TypeDefBitSequence `msgpack:"b,omitempty"`
}

// Composite returns a struct-like definition.
func Composite(fields ...Field) TypeDef {
	return TypeDef{Kind: DefComposite, Fields: fields}
}

// Enumeration returns a definition for one resolved enum variant.
func Enumeration(variant EnumerationVariant) TypeDef {
	return TypeDef{Kind: DefEnumeration, Variant: &variant}
}

// Sequence returns a runtime length sequence of elem.
func Sequence(elem TypeRef) TypeDef {
	return TypeDef{Kind: DefSequence, Element: elem}
}

// Array returns a fixed length array of elem.
func Array(length uint32, elem TypeRef) TypeDef {
	return TypeDef{Kind: DefArray, Array: &TypeDefArray{Len: length, TypeParam: elem}}
}

// Tuple returns an unnamed product of refs.
func Tuple(refs ...TypeRef) TypeDef {
	return TypeDef{Kind: DefTuple, Tuple: refs}
}

// BitSequence returns a bit sequence definition.
func BitSequence(numBytes uint8, lsbFirst bool) TypeDef {
	return TypeDef{Kind: DefBitSequence, BitSequence: &TypeDefBitSequence{NumBytes: numBytes, LeastSignificantBitFirst: lsbFirst}}
}

// Validate checks that the payload selected by Kind is present.
func (d *TypeDef) Validate() error {
	switch d.Kind {
	case DefComposite, DefSequence, DefTuple:
		return nil
	case DefEnumeration:
		if d.Variant == nil {
			return fmt.Errorf("enumeration definition without variant")
		}
	case DefArray:
		if d.Array == nil {
			return fmt.Errorf("array definition without array payload")
		}
	case DefBitSequence:
		if d.BitSequence == nil {
			return fmt.Errorf("bitsequence definition without payload")
		}
	default:
		return fmt.Errorf("unknown definition kind %d", d.Kind)
	}
	return nil
}

// References returns all type references of the definition in declaration order.
func (d *TypeDef) References() []TypeRef {
	switch d.Kind {
	case DefComposite:
		return fieldRefs(d.Fields)
	case DefEnumeration:
		if d.Variant != nil {
			return fieldRefs(d.Variant.Fields)
		}
	case DefSequence:
		return []TypeRef{d.Element}
	case DefArray:
		if d.Array != nil {
			return []TypeRef{d.Array.TypeParam}
		}
	case DefTuple:
		return append([]TypeRef(nil), d.Tuple...)
	}
	return nil
}

func fieldRefs(fields []Field) []TypeRef {
	refs := make([]TypeRef, len(fields))
	for i := range fields {
		refs[i] = fields[i].Ty
	}
	return refs
}

// MapRefs returns a deep copy of the definition with every type reference replaced by fn(ref).
func (d *TypeDef) MapRefs(fn func(TypeRef) TypeRef) TypeDef {
	res := TypeDef{Kind: d.Kind}
	switch d.Kind {
	case DefComposite:
		res.Fields = mapFields(d.Fields, fn)
	case DefEnumeration:
		if d.Variant != nil {
			res.Variant = &EnumerationVariant{
				Name:   d.Variant.Name,
				Fields: mapFields(d.Variant.Fields, fn),
				Index:  d.Variant.Index,
			}
		}
	case DefSequence:
		res.Element = fn(d.Element)
	case DefArray:
		if d.Array != nil {
			res.Array = &TypeDefArray{Len: d.Array.Len, TypeParam: fn(d.Array.TypeParam)}
		}
	case DefTuple:
		if d.Tuple != nil {
			res.Tuple = make([]TypeRef, len(d.Tuple))
			for i, r := range d.Tuple {
				res.Tuple[i] = fn(r)
			}
		}
	case DefBitSequence:
		if d.BitSequence != nil {
			bs := *d.BitSequence
			res.BitSequence = &bs
		}
	}
	return res
}

func mapFields(fields []Field, fn func(TypeRef) TypeRef) []Field {
	if fields == nil {
		return nil
	}
	res := make([]Field, len(fields))
	for i, f := range fields {
		res[i] = Field{Name: f.Name, Ty: fn(f.Ty), TypeName: f.TypeName}
	}
	return res
}

func marshalFields(enc scaleutils.Encoder, fields []Field) {
	scaleutils.MarshalVector(enc, fields, func(enc scaleutils.Encoder, f *Field) {
		f.MarshalSCALETo(enc)
	})
}

// MarshalSCALETo writes the one byte discriminant followed by the selected payload.
func (d *TypeDef) MarshalSCALETo(enc scaleutils.Encoder) {
	enc.EncodeUint8(uint8(d.Kind))
	switch d.Kind {
	case DefComposite:
		marshalFields(enc, d.Fields)
	case DefEnumeration:
		variant := d.Variant
		if variant == nil {
			variant = &EnumerationVariant{}
		}
		variant.MarshalSCALETo(enc)
	case DefSequence:
		d.Element.MarshalSCALETo(enc)
	case DefArray:
		array := d.Array
		if array == nil {
			array = &TypeDefArray{}
		}
		array.MarshalSCALETo(enc)
	case DefTuple:
		scaleutils.MarshalVector(enc, d.Tuple, func(enc scaleutils.Encoder, r *TypeRef) {
			r.MarshalSCALETo(enc)
		})
	case DefBitSequence:
		bits := d.BitSequence
		if bits == nil {
			bits = &TypeDefBitSequence{}
		}
		bits.MarshalSCALETo(enc)
	}
}
