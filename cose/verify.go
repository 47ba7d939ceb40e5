package cose

import (
	"crypto"
	"crypto/x509"
	"errors"
	"fmt"

	gocose "github.com/veraison/go-cose"
)

// Verifier checks one signature over its Sig_structure.
type Verifier interface {
	Verify(alg SignatureAlgorithm, certificate, toBeSigned, signature []byte) error
}

// VerifierFunc adapts an ordinary function to a Verifier.
type VerifierFunc func(alg SignatureAlgorithm, certificate, toBeSigned, signature []byte) error

func (f VerifierFunc) Verify(alg SignatureAlgorithm, certificate, toBeSigned, signature []byte) error {
	return f(alg, certificate, toBeSigned, signature)
}

// X509Verifier verifies with the public key of the DER encoded signer certificate.
// It does not validate the certificate chain.
type X509Verifier struct{}

func (X509Verifier) Verify(alg SignatureAlgorithm, certificate, toBeSigned, signature []byte) error {
	if len(certificate) == 0 {
		return fmt.Errorf("%w: no signer certificate", ErrInvalidArgument)
	}
	cert, err := x509.ParseCertificate(certificate)
	if err != nil {
		return fmt.Errorf("%w: parse certificate: %w", ErrInvalidArgument, err)
	}
	return verifyWithKey(alg, cert.PublicKey, toBeSigned, signature)
}

// KeyVerifier verifies with a fixed public key and ignores the certificate in the message.
type KeyVerifier struct {
	Key crypto.PublicKey
}

func (v KeyVerifier) Verify(alg SignatureAlgorithm, _, toBeSigned, signature []byte) error {
	if v.Key == nil {
		return fmt.Errorf("%w: no public key", ErrInvalidArgument)
	}
	return verifyWithKey(alg, v.Key, toBeSigned, signature)
}

func verifyWithKey(alg SignatureAlgorithm, key crypto.PublicKey, toBeSigned, signature []byte) error {
	galg, err := alg.goCOSE()
	if err != nil {
		return err
	}
	verifier, err := gocose.NewVerifier(galg, key)
	if err != nil {
		return fmt.Errorf("%w: create verifier: %w", ErrVerificationFailed, err)
	}
	if err := verifier.Verify(toBeSigned, signature); err != nil {
		if errors.Is(err, gocose.ErrVerification) {
			return fmt.Errorf("%w: %s signature mismatch", ErrVerificationFailed, alg)
		}
		return fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}
	return nil
}

// VerifySignature parses a COSE_Sign message and verifies every signature in it.
// A message that fails to parse is an error, never a message without signatures.
func VerifySignature(data, payload []byte, v Verifier) error {
	if v == nil {
		return fmt.Errorf("%w: nil verifier", ErrInvalidArgument)
	}
	sigs, err := ParseSign(data, payload)
	if err != nil {
		return err
	}
	for i, sig := range sigs {
		if err := v.Verify(sig.Algorithm, sig.SignerCertificate, sig.ToBeSigned, sig.Signature); err != nil {
			return fmt.Errorf("signature %d: %w", i, err)
		}
	}
	return nil
}

// VerifySign1 parses a COSE_Sign1 message and verifies its signature.
func VerifySign1(data, payload []byte, v Verifier) error {
	if v == nil {
		return fmt.Errorf("%w: nil verifier", ErrInvalidArgument)
	}
	sig, err := ParseSign1(data, payload)
	if err != nil {
		return err
	}
	return v.Verify(sig.Algorithm, sig.SignerCertificate, sig.ToBeSigned, sig.Signature)
}
