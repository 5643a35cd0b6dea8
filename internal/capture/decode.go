package capture

import "encoding/base64"

// decodeBase64 decodes the body the CDP Network.getResponseBody call
// returns when Base64Encoded is set (binary or non-UTF8 script bodies).
func decodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
