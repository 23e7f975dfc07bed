package dynamic

import (
	"fmt"

	"github.com/corvusproto/dynwire/schema"
	"github.com/corvusproto/dynwire/wireerr"
)

// Merge combines prev and next, two already-decoded messages of the
// same type, per proto2 merge semantics. Neither input is mutated; the
// result is a fresh Message.
func Merge(prev, next *Message, table *schema.Table) (*Message, error) {
	if prev.typeName != next.typeName {
		return nil, fmt.Errorf("%w: cannot merge %q into %q", wireerr.TypeMismatch, next.typeName, prev.typeName)
	}
	return mergeMessages(prev, next, table), nil
}

// mergeMessages is Merge's internal, panic-on-mismatch counterpart used
// by the installer when a singular message-typed field is set twice in
// one stream: that call site already knows, by construction, that both
// messages share a type (both came from the same field descriptor), so
// there is nothing for a caller to recover from.
func mergeMessages(prev, next *Message, table *schema.Table) *Message {
	if prev.typeName != next.typeName {
		panic(fmt.Errorf("%w: cannot merge %q into %q", wireerr.TypeMismatch, next.typeName, prev.typeName))
	}

	def := prev.def
	out := &Message{typeName: prev.typeName, slots: make([]Value, len(prev.slots)), def: def}

	for _, f := range def.Fields {
		slot := f.Slot
		switch {
		case f.Occurrence == schema.Repeated:
			// Concatenation, in order: prev's elements, then next's.
			merged := append(append([]Value{}, prev.Get(slot).Seq()...), next.Get(slot).Seq()...)
			out.set(slot, seqValue(merged))

		case f.Type == schema.KindMessage:
			out.set(slot, messageValue(mergeMessages(prev.Get(slot).Message(), next.Get(slot).Message(), table)))

		default:
			nv := next.Get(slot)
			if nv.IsUnset() {
				out.set(slot, prev.Get(slot))
			} else {
				out.set(slot, nv)
			}
		}
	}
	return out
}
