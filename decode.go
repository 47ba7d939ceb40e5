package cbor

import (
	"encoding/binary"
	"math"
	"strconv"
)

type majorType byte

const (
	majorTypePositiveInt majorType = 0
	majorTypeNegativeInt majorType = 1
	majorTypeBytes       majorType = 2
	majorTypeString      majorType = 3
	majorTypeArray       majorType = 4
	majorTypeMap         majorType = 5
	majorTypeTag         majorType = 6
	majorTypeOther       majorType = 7
)

func (mt majorType) String() string {
	switch mt {
	case majorTypePositiveInt:
		return "unsigned integer"
	case majorTypeNegativeInt:
		return "negative integer"
	case majorTypeBytes:
		return "byte string"
	case majorTypeString:
		return "text string"
	case majorTypeArray:
		return "array"
	case majorTypeMap:
		return "map"
	case majorTypeTag:
		return "tag"
	case majorTypeOther:
		return "float or simple value"
	}
	return "major type " + strconv.Itoa(int(mt))
}

func newDecodeState(data []byte, opts Options) *decodeState {
	return &decodeState{
		data:     data,
		opts:     opts,
		maxDepth: opts.maxNestedLevels(),
	}
}

type decodeState struct {
	data     []byte
	off      int // next read offset
	opts     Options
	maxDepth int
	depth    int
}

func (s *decodeState) isAvailable(n uint64) bool {
	if n > math.MaxInt {
		// int(n) will overflow
		return false
	}
	newOffset := s.off + int(n)
	if newOffset < s.off {
		// overflow
		return false
	}
	return newOffset <= len(s.data)
}

func (s *decodeState) peekByte() (byte, error) {
	if !s.isAvailable(1) {
		return 0, ErrUnexpectedEnd
	}
	return s.data[s.off], nil
}

func (s *decodeState) advance(n uint64) error {
	if !s.isAvailable(n) {
		return ErrUnexpectedEnd
	}
	s.off += int(n)
	return nil
}

func (s *decodeState) readByte() (byte, error) {
	b, err := s.peekByte()
	if err != nil {
		return 0, err
	}
	s.off++
	return b, nil
}

func (s *decodeState) readUint16() (uint16, error) {
	if !s.isAvailable(2) {
		return 0, ErrUnexpectedEnd
	}
	b := binary.BigEndian.Uint16(s.data[s.off:])
	s.off += 2
	return b, nil
}

func (s *decodeState) readUint32() (uint32, error) {
	if !s.isAvailable(4) {
		return 0, ErrUnexpectedEnd
	}
	b := binary.BigEndian.Uint32(s.data[s.off:])
	s.off += 4
	return b, nil
}

func (s *decodeState) readUint64() (uint64, error) {
	if !s.isAvailable(8) {
		return 0, ErrUnexpectedEnd
	}
	b := binary.BigEndian.Uint64(s.data[s.off:])
	s.off += 8
	return b, nil
}

// readExact returns the next n bytes without copying them.
func (s *decodeState) readExact(n uint64) ([]byte, error) {
	off := s.off
	if err := s.advance(n); err != nil {
		return nil, err
	}
	return s.data[off:s.off], nil
}

func (s *decodeState) remaining() uint64 {
	return uint64(len(s.data) - s.off)
}

// readHead consumes the head of the data item starting at s.off.
// It returns the major type and the argument encoded by the additional information.
func (s *decodeState) readHead() (majorType, uint64, error) {
	start := s.off
	typ, err := s.readByte()
	if err != nil {
		return 0, 0, newDecodeError(ErrUnexpectedEnd, start, "missing head")
	}
	mt := majorType(typ >> 5)
	w, err := s.readArgument(typ & 0x1f)
	if err != nil {
		if kind, ok := err.(ErrorKind); ok {
			return 0, 0, newDecodeError(kind, start, "reading the argument of "+mt.String())
		}
		return 0, 0, err
	}
	return mt, w, nil
}

// readArgument decodes the argument of a head whose initial byte has already been consumed.
func (s *decodeState) readArgument(ai byte) (uint64, error) {
	switch {
	// the argument is the additional information itself
	case ai < 24:
		return uint64(ai), nil

	// one-byte uint8_t follows
	case ai == 24:
		w, err := s.readByte()
		return uint64(w), err

	// two-byte uint16_t follows
	case ai == 25:
		w, err := s.readUint16()
		return uint64(w), err

	// four-byte uint32_t follows
	case ai == 26:
		w, err := s.readUint32()
		return uint64(w), err

	// eight-byte uint64_t follows
	case ai == 27:
		return s.readUint64()

	// reserved
	case ai <= 30:
		return 0, ErrMalformedInput
	}
	return 0, ErrIndefiniteLength
}

// decodeItem decodes the data item starting at s.off.
// On success s.off points one byte past the item.
func (s *decodeState) decodeItem() (Value, error) {
	start := s.off
	typ, err := s.peekByte()
	if err != nil {
		return nil, newDecodeError(ErrUnexpectedEnd, start, "expected a data item")
	}

	switch mt := majorType(typ >> 5); mt {
	case majorTypePositiveInt:
		return s.decodeUnsigned()
	case majorTypeNegativeInt:
		return s.decodeNegative()
	case majorTypeBytes:
		return s.decodeBytes()
	case majorTypeArray:
		return s.decodeArray()
	case majorTypeMap:
		return s.decodeMap()
	case majorTypeTag:
		return s.decodeTag()
	case majorTypeString, majorTypeOther:
		return nil, newDecodeError(ErrUnimplemented, start, mt.String())
	}
	return nil, newDecodeError(ErrMalformedInput, start, "unknown major type")
}

func (s *decodeState) decodeUnsigned() (Value, error) {
	_, w, err := s.readHead()
	if err != nil {
		return nil, err
	}
	return Unsigned(w), nil
}

func (s *decodeState) decodeNegative() (Value, error) {
	start := s.off
	_, w, err := s.readHead()
	if err != nil {
		return nil, err
	}
	if w > math.MaxInt64 {
		return nil, newDecodeError(ErrMalformedInput, start, "negative integer overflows int64")
	}
	return Negative(-1 - int64(w)), nil
}

func (s *decodeState) decodeBytes() (Value, error) {
	start := s.off
	_, n, err := s.readHead()
	if err != nil {
		return nil, err
	}
	if n > math.MaxInt {
		return nil, newDecodeError(ErrMalformedInput, start, "byte string length "+strconv.FormatUint(n, 10)+" is too large")
	}
	raw, err := s.readExact(n)
	if err != nil {
		return nil, newDecodeError(ErrUnexpectedEnd, start, "byte string of length "+strconv.FormatUint(n, 10))
	}

	// allocate only after the bytes are known to be present
	b := make(ByteString, len(raw))
	copy(b, raw)
	return b, nil
}

func (s *decodeState) enter(start int) error {
	s.depth++
	if s.depth > s.maxDepth {
		return newDecodeError(ErrRecursionLimit, start, "nesting deeper than "+strconv.Itoa(s.maxDepth))
	}
	return nil
}

func (s *decodeState) leave() {
	s.depth--
}

func (s *decodeState) decodeArray() (Value, error) {
	start := s.off
	_, n, err := s.readHead()
	if err != nil {
		return nil, err
	}
	if err := s.enter(start); err != nil {
		return nil, err
	}
	defer s.leave()

	// each element takes at least one byte
	a := make(Array, 0, min(n, s.remaining()))
	for i := uint64(0); i < n; i++ {
		v, err := s.decodeItem()
		if err != nil {
			return nil, err
		}
		a = append(a, v)
	}
	return a, nil
}

func (s *decodeState) decodeMap() (Value, error) {
	start := s.off
	_, n, err := s.readHead()
	if err != nil {
		return nil, err
	}
	if err := s.enter(start); err != nil {
		return nil, err
	}
	defer s.leave()

	var seen map[string]struct{}
	if s.opts.DupMapKey == DupMapKeyEnforced {
		seen = make(map[string]struct{})
	}

	// each pair takes at least two bytes
	m := make(Map, 0, min(n, s.remaining()/2))
	for i := uint64(0); i < n; i++ {
		keyOffset := s.off
		k, err := s.decodeItem()
		if err != nil {
			return nil, err
		}
		if seen != nil {
			// diagnostic notation is unique per structurally equal value
			edn := string(EncodeEDN(k))
			if _, ok := seen[edn]; ok {
				return nil, newDecodeError(ErrMalformedInput, keyOffset, "duplicate map key "+edn)
			}
			seen[edn] = struct{}{}
		}
		v, err := s.decodeItem()
		if err != nil {
			return nil, err
		}
		m = append(m, Pair{Key: k, Value: v})
	}
	return m, nil
}

func (s *decodeState) decodeTag() (Value, error) {
	start := s.off
	_, n, err := s.readHead()
	if err != nil {
		return nil, err
	}
	if s.opts.TagMode != TagWrapsItem {
		return Tag{Number: TagNumber(n)}, nil
	}

	if err := s.enter(start); err != nil {
		return nil, err
	}
	defer s.leave()
	content, err := s.decodeItem()
	if err != nil {
		return nil, err
	}
	return Tag{Number: TagNumber(n), Content: content}, nil
}
