package dynamic

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/corvusproto/dynwire/schema"
	"github.com/corvusproto/dynwire/wire"
	"github.com/corvusproto/dynwire/wireerr"
)

// Decode interprets data as a complete serialized proto2 message of
// type msgName against table, producing a decoded Message value.
func Decode(data []byte, msgName string, table *schema.Table) (*Message, error) {
	return decodeMessage(wire.NewReader(data), msgName, table)
}

// decodeMessage runs the message decoder's read-dispatch-install loop
// and finalizes this message instance's repeated fields before
// returning, regardless of whether this call is the outermost one or
// was reached recursively while decoding a message-typed field: each
// call to decodeMessage owns exactly one message instance's
// finalization, and a recursive call always returns an already
// finalized sub-message.
func decodeMessage(r *wire.Reader, msgName string, table *schema.Table) (*Message, error) {
	m := newEmptyMessage(msgName, table)

	for !r.EOF() {
		fnum, wt, err := r.DecodeTagAndWireType()
		if err != nil {
			if errors.Is(err, wire.ErrTruncated) {
				err = truncated(err)
			}
			return nil, err
		}

		f := m.def.FieldByNumber(fnum)
		if f == nil {
			if err := r.Skip(wt); err != nil {
				return nil, wrapSkipErr(err)
			}
			continue
		}

		if wt == wire.GroupStart || wt == wire.GroupEnd {
			return nil, fmt.Errorf("field %q (#%d): %w", f.Name, fnum, wireerr.UnsupportedWireType)
		}

		val, err := decodeFieldValue(r, f, wt, table)
		if err != nil {
			return nil, fmt.Errorf("field %q (#%d): %w", f.Name, fnum, err)
		}
		install(m, f, val, table)
	}

	finalize(m)
	return m, nil
}

func wrapSkipErr(err error) error {
	if err == wire.ErrUnsupportedWireType {
		return fmt.Errorf("skipping unknown field: %w", wireerr.UnsupportedWireType)
	}
	return fmt.Errorf("skipping unknown field: %w: %v", wireerr.Truncated, err)
}

// decodeFieldValue decodes one occurrence of a known field's value off
// r, given the wire type actually observed on the tag. It does not
// install the value into m; that is install's job.
func decodeFieldValue(r *wire.Reader, f *schema.Field, wt wire.Type, table *schema.Table) (Value, error) {
	switch wt {
	case wire.Varint:
		v, err := r.DecodeVarint()
		if err != nil {
			return Value{}, truncated(err)
		}
		return decodeSimpleScalar(f, v, table)

	case wire.Fixed64:
		v, err := r.DecodeFixed64()
		if err != nil {
			return Value{}, truncated(err)
		}
		return decodeSimpleScalar(f, v, table)

	case wire.Fixed32:
		v, err := r.DecodeFixed32()
		if err != nil {
			return Value{}, truncated(err)
		}
		return decodeSimpleScalar(f, v, table)

	case wire.LengthDelimited:
		return decodeLengthDelimited(r, f, table)

	default:
		return Value{}, wireerr.UnsupportedWireType
	}
}

// decodeSimpleScalar interprets a varint- or fixed-width-framed raw
// integer per the field's declared logical type. It dispatches purely
// on f.Type, so a numeric, bool or enum field whose declared type does
// not match the wire type that actually produced v is not rejected.
// Unknown enumerators are rejected, and so are string, bytes and
// message fields, which cannot be read from a numeric wire value.
func decodeSimpleScalar(f *schema.Field, v uint64, table *schema.Table) (Value, error) {
	switch f.Type {
	case schema.KindBool:
		return boolValue(v != 0), nil
	case schema.KindUint32, schema.KindUint64, schema.KindFixed32, schema.KindFixed64:
		return uint64Value(v), nil
	case schema.KindInt32, schema.KindInt64, schema.KindSfixed64:
		return int64Value(int64(v)), nil
	case schema.KindSfixed32:
		return int64Value(int64(int32(uint32(v)))), nil
	case schema.KindSint32, schema.KindSint64:
		// sint32 is not narrowed to 32 bits here; both widths share the
		// same arbitrary-precision-safe zigzag decode.
		return int64Value(wire.DecodeZigZag64(v)), nil
	case schema.KindEnum:
		n := int64(v)
		enum := table.Enum(f.TypeName)
		sym, ok := enum.Lookup(n)
		if !ok {
			return Value{}, fmt.Errorf("%w: %d is not a valid value of enum %q", wireerr.UnknownEnumerator, n, f.TypeName)
		}
		return enumValue(sym), nil
	case schema.KindFloat:
		return float32Value(math.Float32frombits(uint32(v))), nil
	case schema.KindDouble:
		return float64Value(math.Float64frombits(v)), nil
	default:
		return Value{}, fmt.Errorf("field of type %v cannot be read from a simple numeric wire value", f.Type)
	}
}

func decodeLengthDelimited(r *wire.Reader, f *schema.Field, table *schema.Table) (Value, error) {
	switch f.Type {
	case schema.KindBytes:
		b, err := r.DecodeBytes()
		if err != nil {
			return Value{}, truncated(err)
		}
		return bytesValue(b), nil

	case schema.KindString:
		b, err := r.DecodeBytes()
		if err != nil {
			return Value{}, truncated(err)
		}
		if !utf8.Valid(b) {
			return Value{}, fmt.Errorf("%w", wireerr.InvalidUTF8)
		}
		return stringValue(string(b)), nil

	case schema.KindMessage:
		sub, err := r.DecodeLengthDelimited()
		if err != nil {
			return Value{}, truncated(err)
		}
		subMsg, err := decodeMessage(sub, f.TypeName, table)
		if err != nil {
			return Value{}, err
		}
		return messageValue(subMsg), nil

	default:
		return decodePacked(r, f, table)
	}
}

// decodePacked interprets a single length-delimited frame as a
// concatenation of primitive values of f's declared type. For a
// Repeated field it returns the whole sequence, in frame order, for
// install to reverse-prepend. For a singular field hit by a
// length-delimited frame anyway (the only input that can produce this
// path is a misbehaving or legacy producer), the last value in the
// frame wins, same as any other singular scalar. An empty frame yields
// an empty, non-nil sequence for Repeated fields: a present but empty
// packed frame is not the same as an absent field, though installing
// zero elements is a no-op either way.
func decodePacked(r *wire.Reader, f *schema.Field, table *schema.Table) (Value, error) {
	sub, err := r.DecodeLengthDelimited()
	if err != nil {
		return Value{}, truncated(err)
	}

	values := make([]Value, 0)
	for !sub.EOF() {
		raw, err := decodePackedElement(sub, f.Type)
		if err != nil {
			return Value{}, truncated(err)
		}
		v, err := decodeSimpleScalar(f, raw, table)
		if err != nil {
			return Value{}, err
		}
		values = append(values, v)
	}
	if f.Occurrence != schema.Repeated {
		if len(values) == 0 {
			return unsetValue(), nil
		}
		return values[len(values)-1], nil
	}
	return seqValue(values), nil
}

func decodePackedElement(r *wire.Reader, k schema.Kind) (uint64, error) {
	switch k {
	case schema.KindSint32, schema.KindSint64, schema.KindInt32, schema.KindInt64,
		schema.KindUint32, schema.KindUint64, schema.KindBool, schema.KindEnum:
		return r.DecodeVarint()
	case schema.KindFixed32, schema.KindSfixed32, schema.KindFloat:
		return r.DecodeFixed32()
	case schema.KindFixed64, schema.KindSfixed64, schema.KindDouble:
		return r.DecodeFixed64()
	default:
		return 0, fmt.Errorf("field of type %v cannot appear in a packed frame", k)
	}
}

func truncated(err error) error {
	if err == wire.ErrOverflow {
		return err
	}
	return fmt.Errorf("%w: %v", wireerr.Truncated, err)
}

// install places a freshly decoded value into m's slot for f, applying
// this field's cardinality rule.
func install(m *Message, f *schema.Field, val Value, table *schema.Table) {
	slot := f.Slot
	switch {
	case f.Occurrence == schema.Repeated && val.Kind == KindSeq:
		// A packed frame: reverse-prepend its elements so the final
		// whole-message reversal (see finalize) restores stream order.
		existing := m.Get(slot).Seq()
		reversed := make([]Value, len(val.seq))
		for i, v := range val.seq {
			reversed[len(val.seq)-1-i] = v
		}
		m.set(slot, seqValue(append(reversed, existing...)))

	case f.Occurrence == schema.Repeated:
		existing := m.Get(slot).Seq()
		m.set(slot, seqValue(append([]Value{val}, existing...)))

	case f.Type == schema.KindMessage:
		merged := mergeMessages(m.Get(slot).Message(), val.Message(), table)
		m.set(slot, messageValue(merged))

	default:
		// singular scalar/enum/string/bytes: last value wins.
		m.set(slot, val)
	}
}

// finalize reverses every repeated field's sequence in place, undoing
// the prepend-at-install order so slots end up in stream order. Each
// install copies the existing sequence, so an install costs time
// linear in the sequence's current length.
func finalize(m *Message) {
	for _, f := range m.def.Fields {
		if f.Occurrence != schema.Repeated {
			continue
		}
		seq := m.Get(f.Slot).Seq()
		rev := make([]Value, len(seq))
		for i, v := range seq {
			rev[len(seq)-1-i] = v
		}
		m.set(f.Slot, seqValue(rev))
	}
}
