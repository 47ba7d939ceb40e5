package cbor

import "strconv"

// TagNumber is a CBOR tag number type.
type TagNumber uint64

const (
	TagNumberDatetimeString  TagNumber = 0
	TagNumberEpochDatetime   TagNumber = 1
	TagNumberPositiveBignum  TagNumber = 2
	TagNumberNegativeBignum  TagNumber = 3
	TagNumberDecimalFraction TagNumber = 4
	TagNumberBigfloat        TagNumber = 5

	// RFC 8152
	TagNumberCOSEEncrypt0 TagNumber = 16
	TagNumberCOSEMac0     TagNumber = 17
	TagNumberCOSESign1    TagNumber = 18
	TagNumberCOSEEncrypt  TagNumber = 96
	TagNumberCOSEMac      TagNumber = 97
	TagNumberCOSESign     TagNumber = 98

	TagNumberEncodedData TagNumber = 24

	// RFC 8392
	TagNumberCWT TagNumber = 61

	TagNumberSelfDescribe TagNumber = 55799
)

var tagNames = map[TagNumber]string{
	TagNumberDatetimeString:  "datetime string",
	TagNumberEpochDatetime:   "epoch datetime",
	TagNumberPositiveBignum:  "positive bignum",
	TagNumberNegativeBignum:  "negative bignum",
	TagNumberDecimalFraction: "decimal fraction",
	TagNumberBigfloat:        "bigfloat",
	TagNumberCOSEEncrypt0:    "COSE_Encrypt0",
	TagNumberCOSEMac0:        "COSE_Mac0",
	TagNumberCOSESign1:       "COSE_Sign1",
	TagNumberCOSEEncrypt:     "COSE_Encrypt",
	TagNumberCOSEMac:         "COSE_Mac",
	TagNumberCOSESign:        "COSE_Sign",
	TagNumberEncodedData:     "encoded CBOR data item",
	TagNumberCWT:             "CWT",
	TagNumberSelfDescribe:    "self-described CBOR",
}

// String returns the registered name of the tag number, or the number itself.
func (n TagNumber) String() string {
	if name, ok := tagNames[n]; ok {
		return name
	}
	return strconv.FormatUint(uint64(n), 10)
}

// IsTerminal reports whether the tag was decoded without its content.
func (tag Tag) IsTerminal() bool {
	return tag.Content == nil
}
