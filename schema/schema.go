// Package schema holds the message-definition table a caller supplies
// to the dynamic decoder. It is a deliberately minimal descriptor model
// compared to a full protobuf FileDescriptor: just enough structure to
// bind wire bytes to typed, position-addressable slots.
//
// A Table is built once, then treated as read-only and shared freely
// across goroutines and decode calls; Validate is the only
// method that mutates nothing but may reject a malformed Table before
// first use.
package schema

import (
	"fmt"
	"sync"

	"github.com/corvusproto/dynwire/wireerr"
)

// Kind enumerates the wire-level logical types a field can have.
type Kind int

const (
	KindInvalid Kind = iota
	KindSint32
	KindSint64
	KindInt32
	KindInt64
	KindUint32
	KindUint64
	KindBool
	KindFixed64
	KindSfixed64
	KindDouble
	KindFixed32
	KindSfixed32
	KindFloat
	KindString
	KindBytes
	KindEnum
	KindMessage
)

// Occurrence is a field's cardinality.
type Occurrence int

const (
	Required Occurrence = iota
	Optional
	Repeated
)

// Field is an immutable field descriptor.
type Field struct {
	// Name is the field's symbolic identifier.
	Name string
	// Num is the wire field number; positive, unique within a Message.
	Num int32
	// Slot is the position of this field's value inside a decoded
	// Message's value slice; positive, unique and contiguous within a
	// Message starting at 1 (slot 0 is reserved for the type tag).
	Slot int
	// Type is this field's wire-level logical type.
	Type Kind
	// TypeName is the symbolic message or enum name this field refers
	// to; set only when Type is KindMessage or KindEnum.
	TypeName string
	// Occurrence is this field's cardinality.
	Occurrence Occurrence
	// Packed records the packed option, meaningful only for Repeated
	// fields of a primitive type. The decoder does not consult it: a
	// length-delimited frame on any primitive field is decoded as a
	// concatenation of values whether or not Packed is set.
	Packed bool
}

// Message is a finite ordered list of field descriptors for one message
// type.
type Message struct {
	Name   string
	Fields []*Field

	byNum  map[int32]*Field
	maxSlot int
}

// FieldByNumber looks up a field by its wire field number, or returns
// nil if fnum names no field in this message (an unknown field, which
// is skipped during decode, not an error).
func (m *Message) FieldByNumber(fnum int32) *Field {
	return m.byNum[fnum]
}

// SlotCount returns one past the highest field slot in this message,
// i.e. the length a Message value's slice must have (slot 0 plus one
// slot per field).
func (m *Message) SlotCount() int {
	return m.maxSlot + 1
}

func newMessage(name string, fields []*Field) *Message {
	m := &Message{Name: name, Fields: fields, byNum: make(map[int32]*Field, len(fields))}
	for _, f := range fields {
		m.byNum[f.Num] = f
		if f.Slot > m.maxSlot {
			m.maxSlot = f.Slot
		}
	}
	return m
}

// Enum is a bijective mapping between symbolic enumerators and their
// integer wire codes.
type Enum struct {
	Name string

	byNumber map[int64]string
	byName   map[string]int64
}

// Lookup returns the symbolic enumerator for a wire-encoded integer, or
// ("", false) if the integer has no mapping (an unknown enumerator).
func (e *Enum) Lookup(n int64) (string, bool) {
	s, ok := e.byNumber[n]
	return s, ok
}

// Number returns the wire-encoded integer for a symbolic enumerator.
func (e *Enum) Number(name string) (int64, bool) {
	n, ok := e.byName[name]
	return n, ok
}

func newEnum(name string, values map[string]int64) *Enum {
	e := &Enum{Name: name, byNumber: make(map[int64]string, len(values)), byName: values}
	for k, v := range values {
		e.byNumber[v] = k
	}
	return e
}

// Table is the keyed collection of message and enum definitions a
// decode or merge call is run against. Create one with NewTable and add
// entries with DefineMessage/DefineEnum; a zero-value Table has no maps
// allocated, so DefineMessage/DefineEnum on it panic.
type Table struct {
	mu       sync.RWMutex
	messages map[string]*Message
	enums    map[string]*Enum
}

// NewTable returns an empty, ready-to-populate Table.
func NewTable() *Table {
	return &Table{
		messages: make(map[string]*Message),
		enums:    make(map[string]*Enum),
	}
}

// FieldSpec is the caller-facing shape used to define a message's
// fields with DefineMessage, matching Field's attributes without
// exposing Message's internal lookup index.
type FieldSpec struct {
	Name       string
	Num        int32
	Slot       int
	Type       Kind
	TypeName   string
	Occurrence Occurrence
	Packed     bool
}

// DefineMessage adds a (msg, name) entry to the table. It does not
// validate the fields; call Table.Validate after populating a Table if
// you want invariant violations caught eagerly rather than surfacing as
// confusing behavior partway through a decode.
func (t *Table) DefineMessage(name string, fields []FieldSpec) {
	fds := make([]*Field, len(fields))
	for i, fs := range fields {
		fds[i] = &Field{
			Name: fs.Name, Num: fs.Num, Slot: fs.Slot, Type: fs.Type,
			TypeName: fs.TypeName, Occurrence: fs.Occurrence, Packed: fs.Packed,
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages[name] = newMessage(name, fds)
}

// DefineEnum adds an (enum, name) entry to the table, mapping symbolic
// enumerator names to their wire-encoded integer codes.
func (t *Table) DefineEnum(name string, values map[string]int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enums[name] = newEnum(name, values)
}

// Message looks up a (msg, name) entry. A missing key is a programmer
// error: Message panics rather than returning an error, because there
// is no sane way to keep decoding against a schema that does not
// exist.
func (t *Table) Message(name string) *Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.messages[name]
	if !ok {
		panic(fmt.Errorf("%w: no message definition named %q", wireerr.NoSuchKey, name))
	}
	return m
}

// Enum looks up an (enum, name) entry; see Message for the panic policy
// on a missing key.
func (t *Table) Enum(name string) *Enum {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.enums[name]
	if !ok {
		panic(fmt.Errorf("%w: no enum definition named %q", wireerr.NoSuchKey, name))
	}
	return e
}

// Validate checks the per-message invariants this package requires:
// field numbers unique within a message, and value slots unique and
// contiguous starting at 1 (slot 0 is reserved for the type tag). It is
// not called automatically by Message/Enum/decode/merge; a caller that
// wants a builder mistake reported as an error rather than discovered
// lazily (as a panic, or as a silently wrong slot) should call it once
// after populating a Table.
func (t *Table) Validate() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for name, m := range t.messages {
		seenNum := make(map[int32]bool, len(m.Fields))
		seenSlot := make(map[int]bool, len(m.Fields))
		for _, f := range m.Fields {
			if f.Num <= 0 {
				return fmt.Errorf("schema: message %q: field %q has non-positive field number %d", name, f.Name, f.Num)
			}
			if seenNum[f.Num] {
				return fmt.Errorf("schema: message %q: field number %d used more than once", name, f.Num)
			}
			seenNum[f.Num] = true
			if f.Slot <= 0 {
				return fmt.Errorf("schema: message %q: field %q has non-positive slot %d (slot 0 is reserved for the type tag)", name, f.Name, f.Slot)
			}
			if seenSlot[f.Slot] {
				return fmt.Errorf("schema: message %q: slot %d used more than once", name, f.Slot)
			}
			seenSlot[f.Slot] = true
			if (f.Type == KindMessage || f.Type == KindEnum) && f.TypeName == "" {
				return fmt.Errorf("schema: message %q: field %q of type %v has no TypeName", name, f.Name, f.Type)
			}
		}
		for slot := 1; slot <= m.maxSlot; slot++ {
			if !seenSlot[slot] {
				return fmt.Errorf("schema: message %q: slots are not contiguous: slot %d is unused", name, slot)
			}
		}
	}
	return nil
}
