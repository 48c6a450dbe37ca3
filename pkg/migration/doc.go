// Package migration exports TOTP entries in the otpauth-migration format
// understood by Google Authenticator's "Transfer accounts" import.
//
// A batch of entries is encoded as a MigrationPayload protobuf message,
// base64 encoded, URL escaped and wrapped as
//
//	otpauth-migration://offline?data=<encoded>
//
// The link can be rendered as a QR code with QR. ParseURI reverses the
// process for links exported by an authenticator app.
package migration
