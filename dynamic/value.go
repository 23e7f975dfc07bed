package dynamic

import "github.com/corvusproto/dynwire/schema"

// ValueKind identifies which field of Value is populated: Value is an
// explicit tagged union rather than an interface{}, so a caller can
// switch on Kind instead of doing a type assertion.
type ValueKind int

const (
	// Unset is the sentinel for a singular field whose wire bytes were
	// absent.
	Unset ValueKind = iota
	KindInt64
	KindUint64
	KindBool
	KindFloat32
	KindFloat64
	KindString
	KindBytes
	KindEnum
	KindMessage
	KindSeq
)

// Value is a single decoded field value. Exactly one accessor is
// meaningful for a given Kind; the rest hold their zero value.
type Value struct {
	Kind ValueKind

	i   int64
	u   uint64
	f32 float32
	f64 float64
	s   string
	b   []byte
	msg *Message
	seq []Value
}

func unsetValue() Value              { return Value{Kind: Unset} }
func int64Value(v int64) Value       { return Value{Kind: KindInt64, i: v} }
func uint64Value(v uint64) Value     { return Value{Kind: KindUint64, u: v} }
func float32Value(v float32) Value   { return Value{Kind: KindFloat32, f32: v} }
func float64Value(v float64) Value   { return Value{Kind: KindFloat64, f64: v} }
func stringValue(v string) Value     { return Value{Kind: KindString, s: v} }
func bytesValue(v []byte) Value      { return Value{Kind: KindBytes, b: v} }
func enumValue(v string) Value       { return Value{Kind: KindEnum, s: v} }
func messageValue(v *Message) Value  { return Value{Kind: KindMessage, msg: v} }
func seqValue(v []Value) Value       { return Value{Kind: KindSeq, seq: v} }

func boolValue(v bool) Value {
	if v {
		return Value{Kind: KindBool, u: 1}
	}
	return Value{Kind: KindBool, u: 0}
}

// IsUnset reports whether this is the UNSET sentinel.
func (v Value) IsUnset() bool { return v.Kind == Unset }

// Int64 returns this value as a signed 64-bit integer. Valid for
// KindInt64. Panics otherwise; callers that branch on Kind never hit
// that path.
func (v Value) Int64() int64 {
	v.mustBe(KindInt64)
	return v.i
}

// Uint64 returns this value as an unsigned 64-bit integer, also used
// for Bool (0 or 1). Valid for KindUint64 and KindBool.
func (v Value) Uint64() uint64 {
	if v.Kind != KindUint64 && v.Kind != KindBool {
		v.mustBe(KindUint64)
	}
	return v.u
}

// Bool returns this value as a boolean. Valid for KindBool.
func (v Value) Bool() bool {
	v.mustBe(KindBool)
	return v.u != 0
}

// Float32 returns this value as a 32-bit float. Valid for KindFloat32.
func (v Value) Float32() float32 {
	v.mustBe(KindFloat32)
	return v.f32
}

// Float64 returns this value as a 64-bit float. Valid for KindFloat64.
func (v Value) Float64() float64 {
	v.mustBe(KindFloat64)
	return v.f64
}

// Str returns this value's text. Valid for KindString and KindEnum (the
// enum's symbolic name). Named Str rather than String to avoid
// accidentally satisfying fmt.Stringer: a Value of any other Kind would
// panic if the fmt package called it implicitly during formatting.
func (v Value) Str() string {
	if v.Kind != KindString && v.Kind != KindEnum {
		v.mustBe(KindString)
	}
	return v.s
}

// Bytes returns this value's byte payload. Valid for KindBytes.
func (v Value) Bytes() []byte {
	v.mustBe(KindBytes)
	return v.b
}

// Message returns this value's sub-message. Valid for KindMessage.
func (v Value) Message() *Message {
	v.mustBe(KindMessage)
	return v.msg
}

// Seq returns this value's element sequence, in stream order. Valid for
// KindSeq (the value of any Repeated field).
func (v Value) Seq() []Value {
	v.mustBe(KindSeq)
	return v.seq
}

func (v Value) mustBe(k ValueKind) {
	if v.Kind != k {
		panic("dynamic: Value accessor called on wrong Kind")
	}
}

// emptyValueFor returns the value a field descriptor's slot holds
// before any wire bytes for it have been seen: the empty sequence for
// Repeated fields, a freshly constructed empty sub-message for
// singular message-typed fields, and Unset for everything else.
func emptyValueFor(f *schema.Field, table *schema.Table) Value {
	if f.Occurrence == schema.Repeated {
		return seqValue(nil)
	}
	if f.Type == schema.KindMessage {
		return messageValue(newEmptyMessage(f.TypeName, table))
	}
	return unsetValue()
}
