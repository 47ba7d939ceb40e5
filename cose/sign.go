package cose

import (
	"fmt"

	fxcbor "github.com/fxamacker/cbor/v2"

	cbor "github.com/shogo82148/go-cose-decoder"
)

// ParseSign parses a COSE_Sign message (tag 98).
//
// COSE_Sign structure: [protected, unprotected, payload, signatures]
// and each signature is [protected, unprotected, signature].
// The body protected header may carry intermediate certificates under kid.
// Each signer protected header must carry alg and kid, the DER encoded signer certificate.
//
// If payload is not nil, it is used in place of the payload in the message.
func ParseSign(data, payload []byte) ([]*Signature, error) {
	msg, err := decodeEnvelope(data, cbor.TagNumberCOSESign, 4, false)
	if err != nil {
		return nil, err
	}

	bodyProtected, err := byteString(msg[0], "protected header")
	if err != nil {
		return nil, err
	}
	bodyHeaders, err := decodeProtected(bodyProtected)
	if err != nil {
		return nil, err
	}
	if _, err := unprotectedHeader(msg[1]); err != nil {
		return nil, err
	}
	payload, err = payloadOf(msg[2], payload)
	if err != nil {
		return nil, err
	}

	var intermediates [][]byte
	if v, ok := lookup(bodyHeaders, HeaderLabelKeyID); ok {
		intermediates, err = certificates(v, "kid")
		if err != nil {
			return nil, err
		}
	}

	signers, ok := msg[3].(cbor.Array)
	if !ok {
		return nil, fmt.Errorf("%w: signatures is not an array", ErrUnexpectedType)
	}
	if len(signers) == 0 {
		return nil, fmt.Errorf("%w: no signatures", ErrMalformedInput)
	}

	sigs := make([]*Signature, 0, len(signers))
	for i, signer := range signers {
		sig, err := parseSigner(signer, bodyProtected, payload)
		if err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}
		sig.Intermediates = intermediates
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

func parseSigner(v cbor.Value, bodyProtected, payload []byte) (*Signature, error) {
	signer, ok := v.(cbor.Array)
	if !ok {
		return nil, fmt.Errorf("%w: COSE_Signature is not an array", ErrUnexpectedType)
	}
	if len(signer) != 3 {
		return nil, fmt.Errorf("%w: COSE_Signature has %d elements, want 3", ErrMalformedInput, len(signer))
	}

	protected, err := byteString(signer[0], "protected header")
	if err != nil {
		return nil, err
	}
	headers, err := decodeProtected(protected)
	if err != nil {
		return nil, err
	}
	if _, err := unprotectedHeader(signer[1]); err != nil {
		return nil, err
	}
	signature, err := byteString(signer[2], "signature")
	if err != nil {
		return nil, err
	}

	alg, err := algorithm(headers)
	if err != nil {
		return nil, err
	}
	kid, ok := lookup(headers, HeaderLabelKeyID)
	if !ok {
		return nil, fmt.Errorf("%w: kid", ErrMissingHeader)
	}
	cert, ok := kid.(cbor.ByteString)
	if !ok {
		return nil, fmt.Errorf("%w: kid is not a byte string", ErrUnexpectedHeaderValue)
	}

	// Sig_structure: ["Signature", body_protected, sign_protected, external_aad, payload]
	tbs, err := fxcbor.Marshal([]any{
		"Signature",
		bodyProtected,
		protected,
		[]byte{}, // empty external_aad
		payload,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal Sig_structure: %w", err)
	}

	return &Signature{
		Algorithm:         alg,
		SignerCertificate: []byte(cert),
		Signature:         signature,
		ToBeSigned:        tbs,
	}, nil
}
