package cose

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	fxcbor "github.com/fxamacker/cbor/v2"
	"github.com/peterldowns/testy/assert"
	gocose "github.com/veraison/go-cose"
)

type testSigner struct {
	alg  SignatureAlgorithm
	key  crypto.Signer
	cert []byte
}

func newTestSigner(t *testing.T, alg SignatureAlgorithm) *testSigner {
	t.Helper()

	var key crypto.Signer
	var err error
	switch alg {
	case ES256:
		key, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	case ES384:
		key, err = ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	case ES512:
		key, err = ecdsa.GenerateKey(elliptic.P521(), rand.Reader)
	case PS256:
		key, err = rsa.GenerateKey(rand.Reader, 2048)
	default:
		t.Fatalf("unsupported algorithm %s", alg)
	}
	assert.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "cose test " + alg.String()},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	cert, err := x509.CreateCertificate(rand.Reader, template, template, key.Public(), key)
	assert.NoError(t, err)

	return &testSigner{alg: alg, key: key, cert: cert}
}

func (s *testSigner) sign(t *testing.T, toBeSigned []byte) []byte {
	t.Helper()
	galg, err := s.alg.goCOSE()
	assert.NoError(t, err)
	signer, err := gocose.NewSigner(galg, s.key)
	assert.NoError(t, err)
	sig, err := signer.Sign(rand.Reader, toBeSigned)
	assert.NoError(t, err)
	return sig
}

func marshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := fxcbor.Marshal(v)
	assert.NoError(t, err)
	return data
}

// signMessage builds a COSE_Sign message with one signature per signer.
func signMessage(t *testing.T, payload []byte, intermediates [][]byte, signers ...*testSigner) []byte {
	t.Helper()

	bodyProtected := []byte{}
	if intermediates != nil {
		bodyProtected = marshal(t, map[int]any{HeaderLabelKeyID: intermediates})
	}

	sigs := make([]any, 0, len(signers))
	for _, s := range signers {
		protected := marshal(t, map[int]any{
			HeaderLabelAlgorithm: int64(s.alg),
			HeaderLabelKeyID:     s.cert,
		})
		tbs := marshal(t, []any{"Signature", bodyProtected, protected, []byte{}, payload})
		sigs = append(sigs, []any{protected, map[int]any{}, s.sign(t, tbs)})
	}

	return marshal(t, fxcbor.Tag{
		Number:  98,
		Content: []any{bodyProtected, map[int]any{}, payload, sigs},
	})
}

// sign1Message builds a COSE_Sign1 message with the given headers.
// The algorithm is added to the protected bucket.
func sign1Message(t *testing.T, s *testSigner, payload []byte, protected, unprotected map[int]any, tagged bool) []byte {
	t.Helper()

	if protected == nil {
		protected = map[int]any{}
	}
	if unprotected == nil {
		unprotected = map[int]any{}
	}
	protected[HeaderLabelAlgorithm] = int64(s.alg)
	p := marshal(t, protected)

	tbs := marshal(t, []any{"Signature1", p, []byte{}, payload})
	msg := []any{p, unprotected, payload, s.sign(t, tbs)}
	if tagged {
		return marshal(t, fxcbor.Tag{Number: 18, Content: msg})
	}
	return marshal(t, msg)
}

// rawSign wraps the given body protected header and signatures into a COSE_Sign message.
func rawSign(bodyProtected []byte, signatures []any) fxcbor.Tag {
	return fxcbor.Tag{
		Number:  98,
		Content: []any{bodyProtected, map[int]any{}, []byte("payload"), signatures},
	}
}
