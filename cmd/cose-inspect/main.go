package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	cbor "github.com/shogo82148/go-cose-decoder"
	"github.com/shogo82148/go-cose-decoder/cose"
)

// plainTextHandler is a simple slog handler that writes plain text
// without timestamps or log levels - appropriate for CLI output
type plainTextHandler struct {
	w io.Writer
}

func (*plainTextHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *plainTextHandler) Handle(_ context.Context, r slog.Record) error {
	_, err := fmt.Fprintln(h.w, r.Message)
	return err
}

func (h *plainTextHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *plainTextHandler) WithGroup(_ string) slog.Handler {
	return h
}

const (
	exitOK       = 0
	exitFailed   = 1
	exitBadInput = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type config struct {
	input       string
	isHex       bool
	format      string
	bytes       cbor.BytesEncoding
	opts        cbor.Options
	verify      string
	payloadPath string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := slog.New(&plainTextHandler{w: stdout})
	errLogger := slog.New(&plainTextHandler{w: stderr})

	cfg, err := parseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		showUsage(logger)
		return exitOK
	}
	if err != nil {
		errLogger.Error(fmt.Sprintf("Error: %v", err))
		showUsage(errLogger)
		return exitBadInput
	}

	data, err := readInput(cfg.input, cfg.isHex, stdin)
	if err != nil {
		errLogger.Error(fmt.Sprintf("Error reading input: %v", err))
		return exitBadInput
	}

	if cfg.verify != "" {
		return verify(logger, errLogger, cfg, data)
	}

	doc, err := cfg.opts.DecodeAll(data)
	if err != nil {
		errLogger.Error(fmt.Sprintf("Decode error: %v", err))
		return exitBadInput
	}

	switch cfg.format {
	case "edn":
		logger.Info(string(doc.EncodeEDN()))
	case "json":
		if err := outputJSON(logger, doc, cfg.bytes); err != nil {
			errLogger.Error(fmt.Sprintf("Error marshaling JSON: %v", err))
			return exitBadInput
		}
	default:
		outputText(logger, cfg, data)
	}
	return exitOK
}

func parseFlags(args []string) (*config, error) {
	fs := flag.NewFlagSet("cose-inspect", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		input       = fs.String("input", "", "Path to the CBOR input, - for stdin (required)")
		isHex       = fs.Bool("hex", false, "Input is hex text")
		format      = fs.String("format", "text", "Output format: text, edn or json")
		bytesEnc    = fs.String("bytes", "base64url", "Byte string encoding in JSON: base64url, base64 or hex")
		maxDepth    = fs.Int("max-depth", cbor.DefaultMaxNestedLevels, "Maximum nesting depth")
		strictKeys  = fs.Bool("strict-keys", false, "Reject maps with duplicate keys")
		wrapTags    = fs.Bool("wrap-tags", false, "Decode a tag together with the item it qualifies")
		verifyMode  = fs.String("verify", "", "Verify a COSE envelope: sign or sign1")
		payloadPath = fs.String("payload", "", "Path to a detached payload")
		help        = fs.Bool("help", false, "Show usage information")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *help {
		return nil, flag.ErrHelp
	}
	if *input == "" {
		return nil, errors.New("-input is required")
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	switch *format {
	case "text", "edn", "json":
	default:
		return nil, fmt.Errorf("unknown format %q", *format)
	}
	switch *verifyMode {
	case "", "sign", "sign1":
	default:
		return nil, fmt.Errorf("unknown verify mode %q", *verifyMode)
	}
	if *payloadPath != "" && *verifyMode == "" {
		return nil, errors.New("-payload requires -verify")
	}

	enc, err := cbor.ParseBytesEncoding(*bytesEnc)
	if err != nil {
		return nil, err
	}

	cfg := &config{
		input:       *input,
		isHex:       *isHex,
		format:      *format,
		bytes:       enc,
		verify:      *verifyMode,
		payloadPath: *payloadPath,
		opts: cbor.Options{
			MaxNestedLevels: *maxDepth,
		},
	}
	if *strictKeys {
		cfg.opts.DupMapKey = cbor.DupMapKeyEnforced
	}
	if *wrapTags {
		cfg.opts.TagMode = cbor.TagWrapsItem
	}
	if err := cfg.opts.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readInput(path string, isHex bool, stdin io.Reader) ([]byte, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	if isHex {
		data, err = hex.DecodeString(strings.Join(strings.Fields(string(data)), ""))
		if err != nil {
			return nil, fmt.Errorf("failed to decode hex: %w", err)
		}
	}
	return data, nil
}

func verify(logger, errLogger *slog.Logger, cfg *config, data []byte) int {
	var payload []byte
	if cfg.payloadPath != "" {
		var err error
		payload, err = os.ReadFile(cfg.payloadPath)
		if err != nil {
			errLogger.Error(fmt.Sprintf("Error reading payload: %v", err))
			return exitBadInput
		}
	}

	var err error
	switch cfg.verify {
	case "sign":
		err = cose.VerifySignature(data, payload, cose.X509Verifier{})
	case "sign1":
		err = cose.VerifySign1(data, payload, cose.X509Verifier{})
	}

	if errors.Is(err, cose.ErrVerificationFailed) {
		logger.Info(fmt.Sprintf("VERIFICATION: ✗ FAILED (%v)", err))
		return exitFailed
	}
	if err != nil {
		errLogger.Error(fmt.Sprintf("Verification error: %v", err))
		return exitBadInput
	}
	logger.Info("VERIFICATION: ✓ PASSED")
	return exitOK
}

func outputText(logger *slog.Logger, cfg *config, data []byte) {
	logger.Info(fmt.Sprintf("%d bytes", len(data)))
	dec := cfg.opts.NewDecoder(data)
	for i := 0; dec.More(); i++ {
		start := dec.Offset()
		// the whole buffer has already been decoded once
		v, _ := dec.Decode()
		logger.Info(fmt.Sprintf("  #%d [%d:%d] %s: %s", i, start, dec.Offset(), kindOf(v), cbor.EncodeEDN(v)))
	}
}

func kindOf(v cbor.Value) string {
	switch v := v.(type) {
	case cbor.Unsigned:
		return "unsigned"
	case cbor.Negative:
		return "negative"
	case cbor.ByteString:
		return fmt.Sprintf("bytes(%d)", len(v))
	case cbor.Array:
		return fmt.Sprintf("array(%d)", len(v))
	case cbor.Map:
		return fmt.Sprintf("map(%d)", len(v))
	case cbor.Tag:
		return "tag " + v.Number.String()
	}
	return "unknown"
}

func outputJSON(logger *slog.Logger, doc cbor.Document, enc cbor.BytesEncoding) error {
	items := make([]cbor.JSONValue, len(doc))
	for i, v := range doc {
		items[i] = cbor.JSONValue{Value: v, Encoding: enc}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	logger.Info(string(data))
	return nil
}

func showUsage(logger *slog.Logger) {
	logger.Info("COSE/CBOR Inspector")
	logger.Info("")
	logger.Info("Usage:")
	logger.Info("  cose-inspect -input <path|-> [options]")
	logger.Info("")
	logger.Info("Flags:")
	logger.Info("  -input <path>        Path to the CBOR input, - for stdin (required)")
	logger.Info("  -hex                 Input is hex text")
	logger.Info("  -format <fmt>        Output format: text, edn or json (default: text)")
	logger.Info("  -bytes <enc>         Byte strings in JSON: base64url, base64 or hex (default: base64url)")
	logger.Info("  -max-depth <n>       Maximum nesting depth (default: 256)")
	logger.Info("  -strict-keys         Reject maps with duplicate keys")
	logger.Info("  -wrap-tags           Decode a tag together with the item it qualifies")
	logger.Info("  -verify <sign|sign1> Verify a COSE envelope with the certificate it carries")
	logger.Info("  -payload <path>      Detached payload to verify against")
	logger.Info("  -help                Show this help message")
	logger.Info("")
	logger.Info("Exit Codes:")
	logger.Info("  0 - Success")
	logger.Info("  1 - Verification failed")
	logger.Info("  2 - Invalid input or runtime error")
}
