package token

import "encoding/base64"

// EncodeSegment encodes b with the URL-safe base64 alphabet and no padding,
// so the result never contains '+', '/', '=' or '.'.
func EncodeSegment(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeSegment reverses EncodeSegment. Padded input is rejected, so every
// segment has exactly one accepted spelling.
func DecodeSegment(s string) ([]byte, error) {
	return base64.RawURLEncoding.Strict().DecodeString(s)
}
