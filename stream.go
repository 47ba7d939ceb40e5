package cbor

import "io"

// A Decoder reads a sequence of CBOR data items from a byte buffer.
type Decoder struct {
	d   *decodeState
	err error
}

// Decode decodes the next data item.
// It returns io.EOF when no bytes remain.
// Once Decode fails, every later call returns the same error.
func (dec *Decoder) Decode() (Value, error) {
	if dec.err != nil {
		return nil, dec.err
	}
	if !dec.More() {
		return nil, io.EOF
	}

	v, err := dec.d.decodeItem()
	if err != nil {
		dec.err = err
		return nil, err
	}
	return v, nil
}

// More reports whether there are bytes left to decode.
func (dec *Decoder) More() bool {
	return dec.d != nil && dec.d.off < len(dec.d.data)
}

// Offset returns the position of the next unread byte.
func (dec *Decoder) Offset() int {
	if dec.d == nil {
		return 0
	}
	return dec.d.off
}
