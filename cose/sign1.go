package cose

import (
	"fmt"

	fxcbor "github.com/fxamacker/cbor/v2"

	cbor "github.com/shogo82148/go-cose-decoder"
)

// ParseSign1 parses a COSE_Sign1 message, tagged 18 or untagged as AWS Nitro returns it.
//
// COSE_Sign1 structure: [protected, unprotected, payload, signature].
// The signer certificate is taken from x5chain, or from kid when x5chain is absent,
// looking in the protected bucket first.
//
// If payload is not nil, it is used in place of the payload in the message.
func ParseSign1(data, payload []byte) (*Signature, error) {
	msg, err := decodeEnvelope(data, cbor.TagNumberCOSESign1, 4, true)
	if err != nil {
		return nil, err
	}

	protected, err := byteString(msg[0], "protected header")
	if err != nil {
		return nil, err
	}
	headers, err := decodeProtected(protected)
	if err != nil {
		return nil, err
	}
	unprotected, err := unprotectedHeader(msg[1])
	if err != nil {
		return nil, err
	}
	payload, err = payloadOf(msg[2], payload)
	if err != nil {
		return nil, err
	}
	signature, err := byteString(msg[3], "signature")
	if err != nil {
		return nil, err
	}

	alg, err := algorithm(headers)
	if err != nil {
		return nil, err
	}
	chain, err := certificateChain(headers, unprotected)
	if err != nil {
		return nil, err
	}

	// Sig_structure for COSE_Sign1: ["Signature1", protected, external_aad, payload]
	tbs, err := fxcbor.Marshal([]any{
		"Signature1",
		protected,
		[]byte{}, // empty external_aad
		payload,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal Sig_structure: %w", err)
	}

	sig := &Signature{
		Algorithm:  alg,
		Signature:  signature,
		ToBeSigned: tbs,
	}
	if len(chain) > 0 {
		sig.SignerCertificate = chain[0]
		sig.Intermediates = chain[1:]
	}
	return sig, nil
}

func certificateChain(buckets ...cbor.Map) ([][]byte, error) {
	for _, label := range []int{HeaderLabelX5Chain, HeaderLabelKeyID} {
		for _, headers := range buckets {
			v, ok := lookup(headers, label)
			if !ok {
				continue
			}
			name := "x5chain"
			if label == HeaderLabelKeyID {
				name = "kid"
			}
			return certificates(v, name)
		}
	}
	return nil, nil
}
