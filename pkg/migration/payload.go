package migration

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Algorithm is the hash enum of an exported entry.
type Algorithm int32

const (
	AlgorithmUnspecified Algorithm = 0
	AlgorithmSHA1        Algorithm = 1
	AlgorithmSHA256      Algorithm = 2
	AlgorithmSHA512      Algorithm = 3
	AlgorithmMD5         Algorithm = 4
)

// DigitCount is the code length enum of an exported entry. Only six and
// eight digits have a wire value; anything else is exported as unspecified.
type DigitCount int32

const (
	DigitCountUnspecified DigitCount = 0
	DigitCountSix         DigitCount = 1
	DigitCountEight       DigitCount = 2
)

// DigitCountOf maps a code length to its enum value.
func DigitCountOf(digits uint) DigitCount {
	switch digits {
	case 6:
		return DigitCountSix
	case 8:
		return DigitCountEight
	default:
		return DigitCountUnspecified
	}
}

// Digits maps the enum back to a code length, 0 when unspecified.
func (d DigitCount) Digits() uint {
	switch d {
	case DigitCountSix:
		return 6
	case DigitCountEight:
		return 8
	default:
		return 0
	}
}

// Type is the OTP kind enum of an exported entry.
type Type int32

const (
	TypeUnspecified Type = 0
	TypeHOTP        Type = 1
	TypeTOTP        Type = 2
)

// Field numbers of the MigrationPayload message.
const (
	fieldOtpParameters protowire.Number = 1
	fieldVersion       protowire.Number = 2
	fieldBatchSize     protowire.Number = 3
	fieldBatchIndex    protowire.Number = 4
	fieldBatchID       protowire.Number = 5
)

// Field numbers of the OtpParameters message.
const (
	fieldSecret    protowire.Number = 1
	fieldName      protowire.Number = 2
	fieldIssuer    protowire.Number = 3
	fieldAlgorithm protowire.Number = 4
	fieldDigits    protowire.Number = 5
	fieldType      protowire.Number = 6
	fieldCounter   protowire.Number = 7
)

// Parameters is one exported authenticator entry (OtpParameters).
// An empty Issuer and a zero Counter are omitted from the wire.
type Parameters struct {
	Secret    []byte
	Name      string
	Issuer    string
	Algorithm Algorithm
	Digits    DigitCount
	Type      Type
	Counter   int64
}

// Payload is a batch of exported entries (MigrationPayload).
type Payload struct {
	Parameters []Parameters
	Version    int32
	BatchSize  int32
	BatchIndex int32
	BatchID    int32
}

// Marshal encodes p in protobuf wire format, fields in ascending order.
func (p Payload) Marshal() []byte {
	var b []byte
	for _, param := range p.Parameters {
		b = protowire.AppendTag(b, fieldOtpParameters, protowire.BytesType)
		b = protowire.AppendBytes(b, param.marshal())
	}
	b = appendInt32(b, fieldVersion, p.Version)
	b = appendInt32(b, fieldBatchSize, p.BatchSize)
	b = appendInt32(b, fieldBatchIndex, p.BatchIndex)
	b = appendInt32(b, fieldBatchID, p.BatchID)
	return b
}

func (p Parameters) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldSecret, protowire.BytesType)
	b = protowire.AppendBytes(b, p.Secret)
	b = protowire.AppendTag(b, fieldName, protowire.BytesType)
	b = protowire.AppendString(b, p.Name)
	if p.Issuer != "" {
		b = protowire.AppendTag(b, fieldIssuer, protowire.BytesType)
		b = protowire.AppendString(b, p.Issuer)
	}
	b = appendInt32(b, fieldAlgorithm, int32(p.Algorithm))
	b = appendInt32(b, fieldDigits, int32(p.Digits))
	b = appendInt32(b, fieldType, int32(p.Type))
	if p.Counter != 0 {
		b = protowire.AppendTag(b, fieldCounter, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(p.Counter))
	}
	return b
}

// int32 values are sign extended to 64 bits on the wire
func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

// UnmarshalPayload decodes a MigrationPayload. Unknown fields are skipped.
func UnmarshalPayload(b []byte) (Payload, error) {
	var p Payload
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldOtpParameters && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, protowire.ParseError(n))
			}
			param, err := unmarshalParameters(v)
			if err != nil {
				return Payload{}, err
			}
			p.Parameters = append(p.Parameters, param)
			b = b[n:]
		case typ == protowire.VarintType && num >= fieldVersion && num <= fieldBatchID:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, protowire.ParseError(n))
			}
			switch num {
			case fieldVersion:
				p.Version = int32(v)
			case fieldBatchSize:
				p.BatchSize = int32(v)
			case fieldBatchIndex:
				p.BatchIndex = int32(v)
			case fieldBatchID:
				p.BatchID = int32(v)
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return p, nil
}

func unmarshalParameters(b []byte) (Parameters, error) {
	var p Parameters
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Parameters{}, fmt.Errorf("%w: %v", ErrMalformedPayload, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case typ == protowire.BytesType && num >= fieldSecret && num <= fieldIssuer:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Parameters{}, fmt.Errorf("%w: %v", ErrMalformedPayload, protowire.ParseError(n))
			}
			switch num {
			case fieldSecret:
				p.Secret = append([]byte(nil), v...)
			case fieldName:
				p.Name = string(v)
			case fieldIssuer:
				p.Issuer = string(v)
			}
			b = b[n:]
		case typ == protowire.VarintType && num >= fieldAlgorithm && num <= fieldCounter:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Parameters{}, fmt.Errorf("%w: %v", ErrMalformedPayload, protowire.ParseError(n))
			}
			switch num {
			case fieldAlgorithm:
				p.Algorithm = Algorithm(int32(v))
			case fieldDigits:
				p.Digits = DigitCount(int32(v))
			case fieldType:
				p.Type = Type(int32(v))
			case fieldCounter:
				p.Counter = int64(v)
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Parameters{}, fmt.Errorf("%w: %v", ErrMalformedPayload, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return p, nil
}
