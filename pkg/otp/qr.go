package otp

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"net/url"
	"strings"

	"github.com/pquerna/otp"
)

// DefaultQRSize is the edge length in pixels of rendered QR codes.
const DefaultQRSize = 256

// ProvisioningURI returns the otpauth://totp URI for secret.
// The issuer is optional; when set it prefixes the label and is repeated
// as a query parameter.
func ProvisioningURI(secret []byte, issuer, accountName string, cfg Config) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("%w: secret must not be empty", ErrInvalidSecret)
	}
	if strings.TrimSpace(accountName) == "" {
		return "", fmt.Errorf("%w: account name must not be empty", ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return "", err
	}
	cfg = cfg.withDefaults()

	v := url.Values{}
	v.Set("secret", b32.EncodeToString(secret))
	if issuer != "" {
		v.Set("issuer", issuer)
	}
	v.Set("algorithm", string(cfg.Algorithm))
	v.Set("digits", fmt.Sprintf("%d", cfg.Digits))
	v.Set("period", fmt.Sprintf("%d", cfg.Period))

	label := accountName
	if issuer != "" {
		label = issuer + ":" + accountName
	}
	return fmt.Sprintf("otpauth://totp/%s?%s", url.PathEscape(label), v.Encode()), nil
}

// RenderQR renders the provisioning URI of secret as a QR code and returns
// the PNG image base64 encoded.
func RenderQR(secret []byte, issuer, accountName string, digits uint) (string, error) {
	uri, err := ProvisioningURI(secret, issuer, accountName, Config{Digits: digits})
	if err != nil {
		return "", err
	}

	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return "", fmt.Errorf("otp: failed to parse provisioning uri: %w", err)
	}
	img, err := key.Image(DefaultQRSize, DefaultQRSize)
	if err != nil {
		return "", fmt.Errorf("otp: failed to render qr code: %w", err)
	}
	return EncodePNG(img)
}

// EncodePNG encodes img as PNG and returns it base64 encoded.
func EncodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("otp: failed to encode png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
