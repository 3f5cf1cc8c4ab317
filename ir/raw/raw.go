// Package raw models the low-level PDF object layer: the typed values that
// appear between "obj" and "endobj" in a serialized file. Both the writer
// and the parser speak this layer; everything above it works on the
// semantic model instead.
package raw

import "fmt"

// ObjectRef uniquely identifies an indirect PDF object.
type ObjectRef struct {
	Num int
	Gen int
}

func (r ObjectRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// Object is the base interface for all raw PDF objects.
type Object interface {
	Kind() string
}

// Name is a PDF name object (/Foo).
type Name struct{ Val string }

func (Name) Kind() string { return "name" }

// Number is a PDF numeric value, integer or real.
type Number struct {
	I     int64
	F     float64
	IsInt bool
}

func (Number) Kind() string { return "number" }

// Float returns the numeric value regardless of representation.
func (n Number) Float() float64 {
	if n.IsInt {
		return float64(n.I)
	}
	return n.F
}

// Bool is a PDF boolean.
type Bool struct{ V bool }

func (Bool) Kind() string { return "boolean" }

// Null is the PDF null object.
type Null struct{}

func (Null) Kind() string { return "null" }

// String is a PDF string. Hex controls the serialized form only.
type String struct {
	Bytes []byte
	Hex   bool
}

func (String) Kind() string { return "string" }

// Array is a PDF array.
type Array struct{ Items []Object }

func (*Array) Kind() string { return "array" }

func (a *Array) Len() int { return len(a.Items) }

func (a *Array) At(i int) (Object, bool) {
	if i < 0 || i >= len(a.Items) {
		return nil, false
	}
	return a.Items[i], true
}

func (a *Array) Append(items ...Object) { a.Items = append(a.Items, items...) }

// Dict is a PDF dictionary.
type Dict struct{ KV map[string]Object }

func (*Dict) Kind() string { return "dict" }

func (d *Dict) Get(key string) (Object, bool) {
	o, ok := d.KV[key]
	return o, ok
}

func (d *Dict) Set(key string, value Object) {
	if d.KV == nil {
		d.KV = make(map[string]Object)
	}
	d.KV[key] = value
}

func (d *Dict) Len() int { return len(d.KV) }

// Stream is a dictionary with an attached byte payload.
type Stream struct {
	Dict *Dict
	Data []byte
}

func (*Stream) Kind() string { return "stream" }

// Ref is an indirect object reference.
type Ref struct{ R ObjectRef }

func (Ref) Kind() string { return "ref" }

// Constructors keep call sites terse.

func NewName(v string) Name        { return Name{Val: v} }
func NewInt(i int64) Number        { return Number{I: i, IsInt: true} }
func NewReal(f float64) Number     { return Number{F: f} }
func NewBool(v bool) Bool          { return Bool{V: v} }
func NewString(b []byte) String    { return String{Bytes: b} }
func NewHexString(b []byte) String { return String{Bytes: b, Hex: true} }
func NewArray(items ...Object) *Array {
	return &Array{Items: items}
}
func NewDict() *Dict { return &Dict{KV: make(map[string]Object)} }
func NewStream(dict *Dict, data []byte) *Stream {
	return &Stream{Dict: dict, Data: data}
}
func NewRef(num, gen int) Ref { return Ref{R: ObjectRef{Num: num, Gen: gen}} }

// Permissions describes the actions an encrypted document allows.
type Permissions struct {
	Print             bool
	Modify            bool
	Copy              bool
	ModifyAnnotations bool
	FillForms         bool
	ExtractAccessible bool
	Assemble          bool
	PrintHighQuality  bool
}

// AllPermissions grants everything; the usual choice for generated output.
func AllPermissions() Permissions {
	return Permissions{
		Print: true, Modify: true, Copy: true, ModifyAnnotations: true,
		FillForms: true, ExtractAccessible: true, Assemble: true, PrintHighQuality: true,
	}
}

// Document is a parsed file: the full object table plus the trailer.
type Document struct {
	Version   string
	Objects   map[ObjectRef]Object
	Trailer   *Dict
	Encrypted bool
}

// Resolve follows an object through at most one level of indirection.
func (d *Document) Resolve(o Object) Object {
	for i := 0; i < 32; i++ {
		ref, ok := o.(Ref)
		if !ok {
			return o
		}
		next, ok := d.Objects[ref.R]
		if !ok {
			return Null{}
		}
		o = next
	}
	return Null{}
}

// ResolveDict resolves o and returns it as a dictionary when possible.
// Streams expose their dictionaries.
func (d *Document) ResolveDict(o Object) (*Dict, bool) {
	switch v := d.Resolve(o).(type) {
	case *Dict:
		return v, true
	case *Stream:
		return v.Dict, true
	default:
		return nil, false
	}
}
