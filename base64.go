package cbor

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

var b64 = base64.StdEncoding.Strict()
var b64url = base64.RawURLEncoding.Strict()

// BytesEncoding specifies how byte strings are written in JSON.
type BytesEncoding int

const (
	// EncodingBase64URL is base64url with no padding.
	EncodingBase64URL BytesEncoding = iota

	// EncodingBase64 is base64 with padding.
	EncodingBase64

	// EncodingBase16 is lower case hex.
	EncodingBase16
)

// ParseBytesEncoding parses "base64url", "base64" or "hex".
func ParseBytesEncoding(s string) (BytesEncoding, error) {
	switch s {
	case "base64url":
		return EncodingBase64URL, nil
	case "base64":
		return EncodingBase64, nil
	case "hex", "base16":
		return EncodingBase16, nil
	}
	return 0, fmt.Errorf("cbor: unknown bytes encoding %q", s)
}

func (enc BytesEncoding) Encode(data []byte) string {
	switch enc {
	case EncodingBase64:
		return b64.EncodeToString(data)
	case EncodingBase64URL:
		return b64url.EncodeToString(data)
	case EncodingBase16:
		return hex.EncodeToString(data)
	}
	return ""
}

type b64ctx struct {
	mode BytesEncoding
}

func (ctx b64ctx) Convert(v Value) any {
	switch v := v.(type) {
	case Unsigned:
		return uint64(v)

	case Negative:
		return int64(v)

	case ByteString:
		return ctx.mode.Encode(v)

	case TextString:
		return string(v)

	case Array:
		ret := make([]any, len(v))
		for i, elem := range v {
			ret[i] = ctx.Convert(elem)
		}
		return ret

	case Map:
		// keys are not necessarily strings, so pairs are kept as [key, value]
		ret := make([]any, len(v))
		for i, p := range v {
			ret[i] = []any{ctx.Convert(p.Key), ctx.Convert(p.Value)}
		}
		return ret

	case Tag:
		ret := map[string]any{
			"tag": uint64(v.Number),
		}
		if !v.IsTerminal() {
			ret["content"] = ctx.Convert(v.Content)
		}
		return ret
	}
	return nil
}

var _ json.Marshaler = JSONValue{}

// JSONValue is a Value rendered as JSON with byte strings in the given encoding.
type JSONValue struct {
	Value    Value
	Encoding BytesEncoding
}

func (v JSONValue) MarshalJSON() ([]byte, error) {
	ctx := b64ctx{mode: v.Encoding}
	data := ctx.Convert(v.Value)
	return json.Marshal(data)
}
