package migration

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"

	"github.com/jeremyhahn/go-totp-recover/pkg/otp"
)

const (
	// Scheme is the URI scheme of migration links.
	Scheme = "otpauth-migration"
	// Host is the fixed host of migration links.
	Host = "offline"
	// QRSize is the edge length in pixels of rendered migration QR codes.
	QRSize = 512
)

// Common errors returned by the migration exporter.
var (
	// ErrNoCodes indicates an export was requested for an empty batch.
	ErrNoCodes = errors.New("migration: no codes to export")
	// ErrInvalidURI indicates a link is not an otpauth-migration URI.
	ErrInvalidURI = errors.New("migration: invalid migration uri")
	// ErrMalformedPayload indicates the encoded payload could not be decoded.
	ErrMalformedPayload = errors.New("migration: malformed payload")
)

// Code is one TOTP entry to export.
type Code struct {
	Secret      []byte
	Issuer      string
	AccountName string
	Digits      uint
}

// NewPayload builds the single-batch payload for codes. Every entry is
// exported as SHA1 TOTP.
func NewPayload(codes []Code) Payload {
	params := make([]Parameters, 0, len(codes))
	for _, c := range codes {
		params = append(params, Parameters{
			Secret:    c.Secret,
			Name:      c.AccountName,
			Issuer:    c.Issuer,
			Algorithm: AlgorithmSHA1,
			Digits:    DigitCountOf(c.Digits),
			Type:      TypeTOTP,
		})
	}
	return Payload{
		Parameters: params,
		Version:    1,
		BatchSize:  1,
		BatchIndex: 0,
		BatchID:    1,
	}
}

// URI returns the otpauth-migration://offline?data=... link for codes.
func URI(codes []Code) (string, error) {
	if len(codes) == 0 {
		return "", ErrNoCodes
	}
	data := base64.StdEncoding.EncodeToString(NewPayload(codes).Marshal())
	return fmt.Sprintf("%s://%s?data=%s", Scheme, Host, url.QueryEscape(data)), nil
}

// ParseURI decodes a migration link back into its entries.
func ParseURI(uri string) ([]Code, error) {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	if u.Scheme != Scheme || u.Host != Host {
		return nil, fmt.Errorf("%w: expected %s://%s", ErrInvalidURI, Scheme, Host)
	}
	data := u.Query().Get("data")
	if data == "" {
		return nil, fmt.Errorf("%w: missing data parameter", ErrInvalidURI)
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	p, err := UnmarshalPayload(raw)
	if err != nil {
		return nil, err
	}

	codes := make([]Code, 0, len(p.Parameters))
	for _, param := range p.Parameters {
		codes = append(codes, Code{
			Secret:      param.Secret,
			Issuer:      param.Issuer,
			AccountName: param.Name,
			Digits:      param.Digits.Digits(),
		})
	}
	return codes, nil
}

// QR renders the migration link for codes as a base64 encoded PNG.
func QR(codes []Code) (string, error) {
	uri, err := URI(codes)
	if err != nil {
		return "", err
	}

	code, err := qr.Encode(uri, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("migration: failed to encode qr code: %w", err)
	}
	code, err = barcode.Scale(code, QRSize, QRSize)
	if err != nil {
		return "", fmt.Errorf("migration: failed to scale qr code: %w", err)
	}
	return otp.EncodePNG(code)
}
