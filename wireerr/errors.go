// Package wireerr collects the sentinel errors shared across schema
// and dynamic, so a caller of Decode, Merge or a Table lookup can
// errors.Is/errors.As against one of these error kinds regardless of
// what positional context got wrapped around it with fmt.Errorf along
// the way. Package wire keeps its own sentinels (wire.ErrTruncated,
// wire.ErrUnsupportedWireType, wire.ErrOverflow); dynamic wraps the
// first two in Truncated and UnsupportedWireType.
package wireerr

import "errors"

var (
	// Truncated means the input ended mid-value. dynamic wraps it around
	// wire.ErrTruncated failures; wire.ErrOverflow from a value being
	// decoded is passed through without it.
	Truncated = errors.New("wire-format error: input truncated")

	// UnsupportedWireType means a known field used wire type 3 or 4
	// (group start/end), which this decoder does not support.
	UnsupportedWireType = errors.New("wire-format error: unsupported wire type (groups)")

	// UnknownEnumerator means a decoded integer has no mapping in the
	// enum's symbol table.
	UnknownEnumerator = errors.New("wire-format error: unknown enumerator value")

	// InvalidUTF8 means a string field's payload was not valid UTF-8.
	InvalidUTF8 = errors.New("wire-format error: invalid UTF-8 in string field")

	// TypeMismatch means Merge was asked to combine two messages with
	// different type tags.
	TypeMismatch = errors.New("merge error: message type mismatch")

	// NoSuchKey means a schema table lookup failed. This is a programmer
	// error, not a wire-format error: callers of Table.Message/Table.Enum
	// see it as a panic value, not an error return.
	NoSuchKey = errors.New("schema error: no such key")
)
