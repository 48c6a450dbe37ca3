// Package otp generates and verifies TOTP (RFC 6238) codes for raw secrets
// and renders them as provisioning QR codes.
//
// The package is a thin adapter over github.com/pquerna/otp. Unlike an
// authenticator, a Generator is not bound to a single secret: every call
// takes the secret bytes and an explicit instant, which makes it suitable for
// scanning many candidate secrets at one point in time.
//
// # Generating Codes
//
//	gen, err := otp.NewGenerator(otp.Config{
//	    Digits:    8,
//	    Period:    30,
//	    Algorithm: otp.AlgorithmSHA1,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	code, err := gen.Code([]byte("12345678901234567890"), 59)
//	// code == "94287082"
//
// # Verifying Codes
//
// Verify accepts Config.Skew time steps of drift on either side of the
// target instant (default 1):
//
//	ok := gen.Verify(secret, "94287082", 59)
//
// # QR Codes
//
// RenderQR returns a base64 encoded PNG of the otpauth:// provisioning URI,
// ready to embed in a data: URL or write to disk after decoding:
//
//	img, err := otp.RenderQR(secret, "MyApp", "user@example.com", 6)
//
// The issuer is optional.
//
// # Thread Safety
//
// Generator is immutable after construction and safe for concurrent use.
package otp
