package cbor

import "bytes"

// Value is a decoded CBOR data item.
// It is one of Unsigned, Negative, ByteString, TextString, Array, Map or Tag.
type Value interface {
	isValue()
}

// Unsigned is an unsigned integer (major type 0).
type Unsigned uint64

// Negative is a negative integer (major type 1).
// It is always less than or equal to -1.
type Negative int64

// ByteString is a byte string (major type 2).
type ByteString []byte

// TextString is a text string (major type 3).
// The decoder never produces it; decoding major type 3 fails with ErrUnimplemented.
type TextString string

// Array is an array of data items (major type 4).
type Array []Value

// Map is a map (major type 5).
// Pairs are kept in the order they appear in the input.
type Map []Pair

// Pair is a key/value pair of a Map.
type Pair struct {
	Key   Value
	Value Value
}

// Tag is a tagged data item (major type 6).
// Content is nil when the tag is decoded with TagTerminal.
type Tag struct {
	Number  TagNumber
	Content Value
}

func (Unsigned) isValue()   {}
func (Negative) isValue()   {}
func (ByteString) isValue() {}
func (TextString) isValue() {}
func (Array) isValue()      {}
func (Map) isValue()        {}
func (Tag) isValue()        {}

// Get returns the value of the first pair whose key equals key.
func (m Map) Get(key Value) (Value, bool) {
	for _, p := range m {
		if Equal(p.Key, key) {
			return p.Value, true
		}
	}
	return nil, false
}

// Document is a sequence of top-level data items decoded from one buffer.
type Document []Value

// Equal reports whether d and other hold structurally equal items.
func (d Document) Equal(other Document) bool {
	if len(d) != len(other) {
		return false
	}
	for i := range d {
		if !Equal(d[i], other[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether a and b are the same variant with recursively equal contents.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case Unsigned:
		b, ok := b.(Unsigned)
		return ok && a == b
	case Negative:
		b, ok := b.(Negative)
		return ok && a == b
	case ByteString:
		b, ok := b.(ByteString)
		return ok && bytes.Equal(a, b)
	case TextString:
		b, ok := b.(TextString)
		return ok && a == b
	case Array:
		b, ok := b.(Array)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case Map:
		b, ok := b.(Map)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i].Key, b[i].Key) || !Equal(a[i].Value, b[i].Value) {
				return false
			}
		}
		return true
	case Tag:
		b, ok := b.(Tag)
		return ok && a.Number == b.Number && Equal(a.Content, b.Content)
	}
	return false
}
