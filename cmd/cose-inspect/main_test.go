package main

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	fxcbor "github.com/fxamacker/cbor/v2"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	gocose "github.com/veraison/go-cose"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func runCLI(t *testing.T, stdin []byte, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, bytes.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Formats(t *testing.T) {
	// 98(_), [h'', {1: -7}]
	input := []byte{0xd8, 0x62, 0x82, 0x40, 0xa1, 0x01, 0x26}
	path := writeFile(t, "input.cbor", input)

	t.Run("edn", func(t *testing.T) {
		code, stdout, _ := runCLI(t, nil, "-input", path, "-format", "edn")
		check.Equal(t, exitOK, code)
		check.Equal(t, "98(_), [h'', {1: -7}]\n", stdout)
	})

	t.Run("json", func(t *testing.T) {
		code, stdout, _ := runCLI(t, nil, "-input", path, "-format", "json", "-bytes", "hex")
		check.Equal(t, exitOK, code)
		check.True(t, strings.Contains(stdout, `"tag": 98`))
		check.True(t, strings.Contains(stdout, `-7`))
	})

	t.Run("text", func(t *testing.T) {
		code, stdout, _ := runCLI(t, nil, "-input", path)
		check.Equal(t, exitOK, code)
		check.True(t, strings.Contains(stdout, "7 bytes"))
		check.True(t, strings.Contains(stdout, "#0 [0:2] tag COSE_Sign: 98(_)"))
		check.True(t, strings.Contains(stdout, "#1 [2:7] array(2): [h'', {1: -7}]"))
	})

	t.Run("wrap tags from stdin as hex", func(t *testing.T) {
		code, stdout, _ := runCLI(t, []byte("d862 8240 a10126\n"), "-input", "-", "-hex", "-wrap-tags", "-format", "edn")
		check.Equal(t, exitOK, code)
		check.Equal(t, "98([h'', {1: -7}])\n", stdout)
	})
}

func TestRun_Errors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		code, _, stderr := runCLI(t, nil)
		check.Equal(t, exitBadInput, code)
		check.True(t, strings.Contains(stderr, "-input is required"))
	})

	t.Run("help", func(t *testing.T) {
		code, stdout, _ := runCLI(t, nil, "-help")
		check.Equal(t, exitOK, code)
		check.True(t, strings.Contains(stdout, "Usage:"))
	})

	t.Run("unknown format", func(t *testing.T) {
		code, _, _ := runCLI(t, nil, "-input", "-", "-format", "yaml")
		check.Equal(t, exitBadInput, code)
	})

	t.Run("invalid max depth", func(t *testing.T) {
		code, _, _ := runCLI(t, nil, "-input", "-", "-max-depth", "-1")
		check.Equal(t, exitBadInput, code)
	})

	t.Run("malformed input", func(t *testing.T) {
		code, _, stderr := runCLI(t, []byte{0x1c}, "-input", "-")
		check.Equal(t, exitBadInput, code)
		check.True(t, strings.Contains(stderr, "malformed input"))
	})

	t.Run("duplicate keys", func(t *testing.T) {
		input := []byte{0xa2, 0x01, 0x00, 0x01, 0x00}
		code, _, _ := runCLI(t, input, "-input", "-")
		check.Equal(t, exitOK, code)
		code, _, _ = runCLI(t, input, "-input", "-", "-strict-keys")
		check.Equal(t, exitBadInput, code)
	})

	t.Run("too deep", func(t *testing.T) {
		input := []byte{0x81, 0x81, 0x81, 0x00}
		code, _, stderr := runCLI(t, input, "-input", "-", "-max-depth", "2")
		check.Equal(t, exitBadInput, code)
		check.True(t, strings.Contains(stderr, "exceeded max nested levels"))
	})

	t.Run("missing file", func(t *testing.T) {
		code, _, _ := runCLI(t, nil, "-input", filepath.Join(t.TempDir(), "missing.cbor"))
		check.Equal(t, exitBadInput, code)
	})

	t.Run("payload without verify", func(t *testing.T) {
		code, _, _ := runCLI(t, nil, "-input", "-", "-payload", "payload.bin")
		check.Equal(t, exitBadInput, code)
	})
}

func newSign1(t *testing.T, payload []byte) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	assert.NoError(t, err)
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "cose-inspect"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	cert, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	assert.NoError(t, err)

	protected, err := fxcbor.Marshal(map[int]any{1: -7, 33: cert})
	assert.NoError(t, err)
	tbs, err := fxcbor.Marshal([]any{"Signature1", protected, []byte{}, payload})
	assert.NoError(t, err)

	signer, err := gocose.NewSigner(gocose.AlgorithmES256, key)
	assert.NoError(t, err)
	sig, err := signer.Sign(rand.Reader, tbs)
	assert.NoError(t, err)

	data, err := fxcbor.Marshal(fxcbor.Tag{
		Number:  18,
		Content: []any{protected, map[int]any{}, payload, sig},
	})
	assert.NoError(t, err)
	return data
}

func TestRun_Verify(t *testing.T) {
	payload := []byte("payload")
	path := writeFile(t, "sign1.cbor", newSign1(t, payload))

	t.Run("passed", func(t *testing.T) {
		code, stdout, _ := runCLI(t, nil, "-input", path, "-verify", "sign1")
		check.Equal(t, exitOK, code)
		check.True(t, strings.Contains(stdout, "PASSED"))
	})

	t.Run("detached payload", func(t *testing.T) {
		payloadPath := writeFile(t, "payload.bin", []byte("forged"))
		code, stdout, _ := runCLI(t, nil, "-input", path, "-verify", "sign1", "-payload", payloadPath)
		check.Equal(t, exitFailed, code)
		check.True(t, strings.Contains(stdout, "FAILED"))
	})

	t.Run("wrong envelope", func(t *testing.T) {
		code, _, stderr := runCLI(t, nil, "-input", path, "-verify", "sign")
		check.Equal(t, exitBadInput, code)
		check.True(t, strings.Contains(stderr, "unexpected tag"))
	})
}
