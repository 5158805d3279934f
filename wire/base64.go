package wire

import "encoding/base64"

// encodeSASLBase64 encodes data for an AUTHENTICATE initial response or a
// ContinuationResponsePart, per RFC 4648 standard encoding.
func encodeSASLBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
