// Package cose parses and verifies COSE_Sign and COSE_Sign1 signatures (RFC 8152)
// on top of the CBOR decoder in the parent package.
package cose

import (
	"fmt"
	"strconv"

	gocose "github.com/veraison/go-cose"

	cbor "github.com/shogo82148/go-cose-decoder"
)

// Error is a COSE parsing or verification failure.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrDecodingFailure        Error = "cose: decoding failure"
	ErrMalformedInput         Error = "cose: malformed input"
	ErrMissingHeader          Error = "cose: missing header"
	ErrUnexpectedHeaderValue  Error = "cose: unexpected header value"
	ErrUnexpectedTag          Error = "cose: unexpected tag"
	ErrUnexpectedType         Error = "cose: unexpected type"
	ErrUnimplemented          Error = "cose: unimplemented"
	ErrVerificationFailed     Error = "cose: verification failed"
	ErrUnknownSignatureScheme Error = "cose: unknown signature scheme"
	ErrInvalidArgument        Error = "cose: invalid argument"
)

// SignatureAlgorithm is a COSE algorithm identifier of a supported signature scheme.
type SignatureAlgorithm int64

const (
	// ES256 is ECDSA w/ SHA-256.
	ES256 SignatureAlgorithm = -7

	// ES384 is ECDSA w/ SHA-384.
	ES384 SignatureAlgorithm = -35

	// ES512 is ECDSA w/ SHA-512.
	ES512 SignatureAlgorithm = -36

	// PS256 is RSASSA-PSS w/ SHA-256.
	PS256 SignatureAlgorithm = -37
)

func (alg SignatureAlgorithm) String() string {
	switch alg {
	case ES256:
		return "ES256"
	case ES384:
		return "ES384"
	case ES512:
		return "ES512"
	case PS256:
		return "PS256"
	}
	return "SignatureAlgorithm(" + strconv.FormatInt(int64(alg), 10) + ")"
}

func (alg SignatureAlgorithm) goCOSE() (gocose.Algorithm, error) {
	switch alg {
	case ES256:
		return gocose.AlgorithmES256, nil
	case ES384:
		return gocose.AlgorithmES384, nil
	case ES512:
		return gocose.AlgorithmES512, nil
	case PS256:
		return gocose.AlgorithmPS256, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownSignatureScheme, alg)
}

// Signature is one signature found in a COSE envelope.
type Signature struct {
	Algorithm SignatureAlgorithm

	// SignerCertificate is the DER encoded certificate of the signer.
	// It is nil when the envelope does not carry one.
	SignerCertificate []byte

	// Intermediates are DER encoded certificates to build the chain from.
	Intermediates [][]byte

	Signature []byte

	// ToBeSigned is the encoded Sig_structure the signature is computed over.
	ToBeSigned []byte
}

func decodingFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrDecodingFailure, err)
}

// decodeEnvelope decodes a COSE message of the given size.
// With the default options the tag is decoded as its own item followed by the message array.
func decodeEnvelope(data []byte, tag cbor.TagNumber, size int, allowUntagged bool) (cbor.Array, error) {
	doc, err := cbor.DecodeAll(data)
	if err != nil {
		return nil, decodingFailure(err)
	}

	var msg cbor.Value
	switch len(doc) {
	case 0:
		return nil, decodingFailure(cbor.ErrUnexpectedEnd)
	case 1:
		if !allowUntagged {
			return nil, fmt.Errorf("%w: missing %s tag", ErrUnexpectedTag, tag)
		}
		msg = doc[0]
	case 2:
		t, ok := doc[0].(cbor.Tag)
		if !ok {
			return nil, fmt.Errorf("%w: trailing data after the message", ErrMalformedInput)
		}
		if t.Number != tag {
			return nil, fmt.Errorf("%w: got %s, want %s", ErrUnexpectedTag, t.Number, tag)
		}
		msg = doc[1]
	default:
		return nil, fmt.Errorf("%w: expected one message, got %d items", ErrMalformedInput, len(doc))
	}

	arr, ok := msg.(cbor.Array)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an array", ErrUnexpectedType, tag)
	}
	if len(arr) != size {
		return nil, fmt.Errorf("%w: %s has %d elements, want %d", ErrMalformedInput, tag, len(arr), size)
	}
	return arr, nil
}

func byteString(v cbor.Value, name string) ([]byte, error) {
	b, ok := v.(cbor.ByteString)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a byte string", ErrUnexpectedType, name)
	}
	return []byte(b), nil
}

// payloadOf returns the payload carried by the envelope unless detached overrides it.
func payloadOf(v cbor.Value, detached []byte) ([]byte, error) {
	payload, err := byteString(v, "payload")
	if err != nil {
		return nil, err
	}
	if detached != nil {
		return detached, nil
	}
	return payload, nil
}
