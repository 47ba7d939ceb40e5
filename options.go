package cbor

import (
	"fmt"
	"io"
)

// DefaultMaxNestedLevels is the nesting ceiling used when Options.MaxNestedLevels is zero.
const DefaultMaxNestedLevels = 256

const maxMaxNestedLevels = 65535

// DupMapKeyMode specifies how duplicate map keys are handled.
type DupMapKeyMode int

const (
	// DupMapKeyQuiet accepts duplicate keys and keeps every pair.
	DupMapKeyQuiet DupMapKeyMode = iota

	// DupMapKeyEnforced rejects a map holding two equal keys with ErrMalformedInput.
	DupMapKeyEnforced
)

// TagMode specifies how tags (major type 6) are decoded.
type TagMode int

const (
	// TagTerminal decodes a tag as a value carrying only its number.
	// The item following the tag is decoded as a separate value.
	TagTerminal TagMode = iota

	// TagWrapsItem decodes a tag together with the item it qualifies,
	// which becomes Tag.Content.
	TagWrapsItem
)

// Options specifies the decoding behavior.
// The zero value is ready to use.
type Options struct {
	// MaxNestedLevels is the maximum nesting depth of arrays, maps and
	// (with TagWrapsItem) tags. Zero means DefaultMaxNestedLevels.
	MaxNestedLevels int

	DupMapKey DupMapKeyMode

	TagMode TagMode
}

// Validate reports whether opts holds valid settings.
func (opts Options) Validate() error {
	if opts.MaxNestedLevels < 0 || opts.MaxNestedLevels > maxMaxNestedLevels {
		return fmt.Errorf("%w: MaxNestedLevels %d is not in [0, %d]", ErrInvalidOptions, opts.MaxNestedLevels, maxMaxNestedLevels)
	}
	switch opts.DupMapKey {
	case DupMapKeyQuiet, DupMapKeyEnforced:
	default:
		return fmt.Errorf("%w: unknown DupMapKeyMode %d", ErrInvalidOptions, opts.DupMapKey)
	}
	switch opts.TagMode {
	case TagTerminal, TagWrapsItem:
	default:
		return fmt.Errorf("%w: unknown TagMode %d", ErrInvalidOptions, opts.TagMode)
	}
	return nil
}

func (opts Options) maxNestedLevels() int {
	if opts.MaxNestedLevels == 0 {
		return DefaultMaxNestedLevels
	}
	return opts.MaxNestedLevels
}

// Decode decodes the first data item in data.
// The returned Document holds exactly one value.
// Bytes following the first item are not examined.
func (opts Options) Decode(data []byte) (Document, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	d := newDecodeState(data, opts)
	v, err := d.decodeItem()
	if err != nil {
		return nil, err
	}
	return Document{v}, nil
}

// DecodeAll decodes every data item in data.
func (opts Options) DecodeAll(data []byte) (Document, error) {
	dec := opts.NewDecoder(data)
	var doc Document
	for {
		v, err := dec.Decode()
		if err == io.EOF {
			return doc, nil
		}
		if err != nil {
			return nil, err
		}
		doc = append(doc, v)
	}
}

// NewDecoder returns a new decoder that reads data items from data.
func (opts Options) NewDecoder(data []byte) *Decoder {
	dec := &Decoder{}
	if err := opts.Validate(); err != nil {
		dec.err = err
		return dec
	}
	dec.d = newDecodeState(data, opts)
	return dec
}

// Decode decodes the first data item in data with the default options.
func Decode(data []byte) (Document, error) {
	return Options{}.Decode(data)
}

// DecodeAll decodes every data item in data with the default options.
func DecodeAll(data []byte) (Document, error) {
	return Options{}.DecodeAll(data)
}

// NewDecoder returns a new decoder with the default options.
func NewDecoder(data []byte) *Decoder {
	return Options{}.NewDecoder(data)
}
