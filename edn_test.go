package cbor

import (
	"testing"
)

func TestEncodeEDN(t *testing.T) {
	tests := []struct {
		in  []byte
		out string
	}{
		// positive integers
		{
			in:  []byte{0x00},
			out: "0",
		},
		{
			in:  []byte{0x17},
			out: "23",
		},
		{
			in:  []byte{0x18, 0x18},
			out: "24",
		},
		{
			in:  []byte{0x19, 0x01, 0x00},
			out: "256",
		},
		{
			in:  []byte{0x1a, 0x00, 0x01, 0x00, 0x00},
			out: "65536",
		},
		{
			in:  []byte{0x1b, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00},
			out: "4294967296",
		},
		{
			in:  []byte{0x1b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
			out: "18446744073709551615",
		},

		// negative integers
		{
			in:  []byte{0x20},
			out: "-1",
		},
		{
			in:  []byte{0x37},
			out: "-24",
		},
		{
			in:  []byte{0x38, 0x18},
			out: "-25",
		},
		{
			in:  []byte{0x39, 0x01, 0x00},
			out: "-257",
		},
		{
			in:  []byte{0x3a, 0x00, 0x01, 0x00, 0x00},
			out: "-65537",
		},
		{
			in:  []byte{0x3b, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00},
			out: "-4294967297",
		},
		{
			in:  []byte{0x3b, 0x7f, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
			out: "-9223372036854775808",
		},

		// byte strings
		{
			in:  []byte{0x40},
			out: "h''",
		},
		{
			in:  []byte{0x44, 0x01, 0x02, 0x03, 0x04},
			out: "h'01020304'",
		},

		// arrays
		{
			in:  []byte{0x80},
			out: "[]",
		},
		{
			in:  []byte{0x83, 0x01, 0x82, 0x02, 0x03, 0x82, 0x04, 0x05},
			out: "[1, [2, 3], [4, 5]]",
		},

		// maps
		{
			in:  []byte{0xa0},
			out: "{}",
		},
		{
			in:  []byte{0xa2, 0x01, 0x02, 0x03, 0x04},
			out: "{1: 2, 3: 4}",
		},
		{
			in:  []byte{0xa1, 0x41, 0xff, 0x81, 0x20},
			out: "{h'ff': [-1]}",
		},

		// tags
		{
			in:  []byte{0xd8, 0x62, 0x80},
			out: "98(_), []",
		},
		{
			in:  []byte{0x82, 0xc1, 0x00},
			out: "[1(_), 0]",
		},
	}

	for _, tt := range tests {
		doc, err := DecodeAll(tt.in)
		if err != nil {
			t.Errorf("DecodeAll(%x) error = %v", tt.in, err)
			continue
		}
		got := doc.EncodeEDN()
		if string(got) != tt.out {
			t.Errorf("EncodeEDN() = %s, want %s", got, tt.out)
		}
	}
}

func TestEncodeEDN_Value(t *testing.T) {
	tests := []struct {
		in  Value
		out string
	}{
		{
			in:  Tag{Number: TagNumberEpochDatetime, Content: Unsigned(1363896240)},
			out: "1(1363896240)",
		},
		{
			in:  Tag{Number: TagNumberSelfDescribe, Content: Tag{Number: TagNumberCOSESign1, Content: Array{}}},
			out: "55799(18([]))",
		},
		{
			in:  TextString("IETF\n"),
			out: `"IETF\n"`,
		},
		{
			in:  nil,
			out: "undefined",
		},
	}

	for _, tt := range tests {
		got := EncodeEDN(tt.in)
		if string(got) != tt.out {
			t.Errorf("EncodeEDN() = %s, want %s", got, tt.out)
		}
	}
}
