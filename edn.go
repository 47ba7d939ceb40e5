package cbor

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strconv"
)

// EncodeEDN returns the Extended Diagnostic Notation of v.
// A tag decoded with TagTerminal is written as "n(_)".
func EncodeEDN(v Value) []byte {
	var s ednState
	s.encode(v)
	return s.buf.Bytes()
}

// EncodeEDN returns the Extended Diagnostic Notation of the document,
// with top-level items separated by ", ".
func (d Document) EncodeEDN() []byte {
	var s ednState
	for i, v := range d {
		if i > 0 {
			s.buf.WriteByte(',')
			s.buf.WriteByte(' ')
		}
		s.encode(v)
	}
	return s.buf.Bytes()
}

type ednState struct {
	buf bytes.Buffer
}

func (s *ednState) encode(v Value) {
	switch v := v.(type) {
	case Unsigned:
		b := s.buf.AvailableBuffer()
		b = strconv.AppendUint(b, uint64(v), 10)
		s.buf.Write(b)

	case Negative:
		b := s.buf.AvailableBuffer()
		b = strconv.AppendInt(b, int64(v), 10)
		s.buf.Write(b)

	case ByteString:
		s.convertBytes(v)

	case TextString:
		// json.Marshal of a string never fails
		data, _ := json.Marshal(string(v))
		s.buf.Write(data)

	case Array:
		s.convertArray(v)

	case Map:
		s.convertMap(v)

	case Tag:
		s.convertTag(v)

	default:
		s.buf.WriteString("undefined")
	}
}

func (s *ednState) convertBytes(v ByteString) {
	s.buf.WriteByte('h')
	s.buf.WriteByte('\'')
	b := s.buf.AvailableBuffer()
	if cap(b) >= len(v)*2 {
		b = b[:len(v)*2]
	} else {
		b = make([]byte, len(v)*2)
	}
	hex.Encode(b, v)
	s.buf.Write(b)
	s.buf.WriteByte('\'')
}

func (s *ednState) convertArray(v Array) {
	s.buf.WriteByte('[')
	for i, elem := range v {
		if i > 0 {
			s.buf.WriteByte(',')
			s.buf.WriteByte(' ')
		}
		s.encode(elem)
	}
	s.buf.WriteByte(']')
}

func (s *ednState) convertMap(v Map) {
	s.buf.WriteByte('{')
	for i, p := range v {
		if i > 0 {
			s.buf.WriteByte(',')
			s.buf.WriteByte(' ')
		}
		s.encode(p.Key)
		s.buf.WriteByte(':')
		s.buf.WriteByte(' ')
		s.encode(p.Value)
	}
	s.buf.WriteByte('}')
}

func (s *ednState) convertTag(v Tag) {
	b := s.buf.AvailableBuffer()
	b = strconv.AppendUint(b, uint64(v.Number), 10)
	s.buf.Write(b)
	s.buf.WriteByte('(')
	if v.IsTerminal() {
		s.buf.WriteByte('_')
	} else {
		s.encode(v.Content)
	}
	s.buf.WriteByte(')')
}
