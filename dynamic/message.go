// Package dynamic implements the schema-driven decoder and merge
// engine: a message value is a positional record produced by
// interpreting wire bytes against a *schema.Table supplied at call
// time, rather than against a compiled-in Go struct.
package dynamic

import "github.com/corvusproto/dynwire/schema"

// Message is a position-addressable record: slot 0 holds the message's
// type name, and slots 1..SlotCount()-1 hold one Value per field, in
// the order the message's schema.Message fields declare. It is the
// dynamic stand-in for a compiled protobuf struct.
type Message struct {
	typeName string
	slots    []Value
	def      *schema.Message
}

// Tag returns this message's type name, the value carried in slot 0.
func (m *Message) Tag() string { return m.typeName }

// Descriptor returns the schema.Message this Message was decoded
// against.
func (m *Message) Descriptor() *schema.Message { return m.def }

// Get returns the value in the given slot. Slot 0 is not a Value; use
// Tag for it. Panics if slot is out of range, the same contract as
// indexing past the end of a slice.
func (m *Message) Get(slot int) Value {
	return m.slots[slot]
}

// GetField returns the value of the field with wire number fnum, or the zero Value and
// false if no field with that number exists in this message's
// definition.
func (m *Message) GetField(fnum int32) (Value, bool) {
	f := m.def.FieldByNumber(fnum)
	if f == nil {
		return Value{}, false
	}
	return m.slots[f.Slot], true
}

func (m *Message) set(slot int, v Value) {
	m.slots[slot] = v
}

// newEmptyMessage builds a freshly constructed message value with slot
// 0 set to name and every field slot initialized: Repeated fields to
// the empty sequence, singular message-typed fields to a recursively
// constructed empty sub-message, everything else to Unset.
func newEmptyMessage(name string, table *schema.Table) *Message {
	def := table.Message(name)
	m := &Message{
		typeName: name,
		slots:    make([]Value, def.SlotCount()),
		def:      def,
	}
	for _, f := range def.Fields {
		m.slots[f.Slot] = emptyValueFor(f, table)
	}
	return m
}
