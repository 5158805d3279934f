package imapclient

import "github.com/kvio/imapengine"

// Login authenticates with a plaintext username and password. Most servers
// advertise LOGINDISABLED until STARTTLS has run; callers that need to
// check should inspect Capability's result first.
func (c *Client) Login(username, password string) error {
	_, err := c.do(imapengine.CommandLogin{Username: username, Password: password})
	return err
}

// Logout sends LOGOUT and waits for the server's tagged response. The
// server closes the connection right after, so a subsequent Close call
// commonly races a clean EOF rather than failing.
func (c *Client) Logout() error {
	_, err := c.do(imapengine.CommandLogout{})
	return err
}

// Noop sends NOOP, a round-trip that also flushes any mailbox updates the
// server has queued for this connection (new EXISTS/EXPUNGE/FLAGS) to the
// UnilateralDataHandler.
func (c *Client) Noop() error {
	_, err := c.do(imapengine.CommandNoop{})
	return err
}

// Capability returns the server's advertised capability set.
func (c *Client) Capability() (imapengine.CapSet, error) {
	var caps imapengine.CapSet
	_, err := c.doCollecting(imapengine.CommandCapability{}, func(p imapengine.UntaggedPayload) {
		if v, ok := p.(imapengine.UntaggedCapability); ok {
			caps = v.Caps
		}
	})
	if err != nil {
		return nil, err
	}
	return caps, nil
}

// ID exchanges client/server identification data, RFC 2971.
func (c *Client) ID(data imapengine.IDData) (imapengine.IDData, error) {
	var result imapengine.IDData
	_, err := c.doCollecting(imapengine.CommandID{Data: data}, func(p imapengine.UntaggedPayload) {
		if v, ok := p.(imapengine.UntaggedID); ok {
			result = v.Data
		}
	})
	if err != nil {
		return imapengine.IDData{}, err
	}
	return result, nil
}

// Namespace returns the server's personal, other-users', and shared
// namespaces, RFC 2342.
func (c *Client) Namespace() (imapengine.NamespaceData, error) {
	var result imapengine.NamespaceData
	_, err := c.doCollecting(imapengine.CommandNamespace{}, func(p imapengine.UntaggedPayload) {
		if v, ok := p.(imapengine.UntaggedNamespace); ok {
			result = v.Data
		}
	})
	if err != nil {
		return imapengine.NamespaceData{}, err
	}
	return result, nil
}

// Enable requests the server enable the given capabilities for the rest of
// the connection, RFC 5161, returning the subset it actually enabled.
func (c *Client) Enable(caps ...imapengine.Cap) ([]imapengine.Cap, error) {
	var enabled []imapengine.Cap
	_, err := c.doCollecting(imapengine.CommandEnable{Caps: caps}, func(p imapengine.UntaggedPayload) {
		if v, ok := p.(imapengine.UntaggedEnabled); ok {
			enabled = v.Caps
		}
	})
	if err != nil {
		return nil, err
	}
	return enabled, nil
}
