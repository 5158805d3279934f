package imapengine

import "encoding/base64"

// decodeContinuationBase64 decodes the text of a continuation request per
// the AUTHENTICATE convention: standard base64, no padding requirement
// relaxed by trying both the standard and raw encodings a server might use.
func decodeContinuationBase64(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
