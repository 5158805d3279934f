package imapclient

import "crypto/tls"

// StartTLS negotiates STARTTLS on an already-connected, still-plaintext
// Client (one created via DialInsecure or New). config may be nil, in
// which case Options.TLSConfig (or a minimal default) is used.
//
// Most callers should prefer DialStartTLS, which does this as part of
// connecting; this method exists for callers that need to inspect the
// server's capabilities (or issue commands legal before STARTTLS) on the
// plaintext connection first.
func (c *Client) StartTLS(config *tls.Config) error {
	if config == nil {
		config = c.options.tlsConfig()
	}
	return c.startTLS(config)
}
