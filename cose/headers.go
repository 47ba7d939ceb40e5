package cose

import (
	"fmt"
	"math"

	cbor "github.com/shogo82148/go-cose-decoder"
)

// Header labels from the IANA COSE Header Parameters registry.
const (
	HeaderLabelAlgorithm = 1
	HeaderLabelKeyID     = 4
	HeaderLabelX5Chain   = 33
)

// header labels must be unique within a protected bucket
var protectedOptions = cbor.Options{
	DupMapKey: cbor.DupMapKeyEnforced,
}

// decodeProtected decodes a serialized protected header bucket.
// A zero length byte string stands for an empty map.
func decodeProtected(b []byte) (cbor.Map, error) {
	if len(b) == 0 {
		return cbor.Map{}, nil
	}

	dec := protectedOptions.NewDecoder(b)
	v, err := dec.Decode()
	if err != nil {
		return nil, decodingFailure(err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data in protected header", ErrMalformedInput)
	}
	m, ok := v.(cbor.Map)
	if !ok {
		return nil, fmt.Errorf("%w: protected header is not a map", ErrUnexpectedType)
	}
	return m, nil
}

func unprotectedHeader(v cbor.Value) (cbor.Map, error) {
	m, ok := v.(cbor.Map)
	if !ok {
		return nil, fmt.Errorf("%w: unprotected header is not a map", ErrUnexpectedType)
	}
	return m, nil
}

func lookup(m cbor.Map, label int) (cbor.Value, bool) {
	return m.Get(cbor.Unsigned(label))
}

func algorithm(headers cbor.Map) (SignatureAlgorithm, error) {
	v, ok := lookup(headers, HeaderLabelAlgorithm)
	if !ok {
		return 0, fmt.Errorf("%w: alg", ErrMissingHeader)
	}

	var id int64
	switch v := v.(type) {
	case cbor.Negative:
		id = int64(v)
	case cbor.Unsigned:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("%w: alg %d", ErrUnknownSignatureScheme, uint64(v))
		}
		id = int64(v)
	default:
		return 0, fmt.Errorf("%w: alg is not an integer", ErrUnexpectedHeaderValue)
	}

	alg := SignatureAlgorithm(id)
	if _, err := alg.goCOSE(); err != nil {
		return 0, err
	}
	return alg, nil
}

// certificates interprets v as a single certificate or an array of certificates.
func certificates(v cbor.Value, name string) ([][]byte, error) {
	switch v := v.(type) {
	case cbor.ByteString:
		return [][]byte{[]byte(v)}, nil
	case cbor.Array:
		certs := make([][]byte, 0, len(v))
		for _, elem := range v {
			b, ok := elem.(cbor.ByteString)
			if !ok {
				return nil, fmt.Errorf("%w: %s holds a non byte string", ErrUnexpectedHeaderValue, name)
			}
			certs = append(certs, []byte(b))
		}
		return certs, nil
	}
	return nil, fmt.Errorf("%w: %s is neither a byte string nor an array", ErrUnexpectedHeaderValue, name)
}
