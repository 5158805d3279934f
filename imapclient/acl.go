package imapclient

import "github.com/kvio/imapengine"

// GetACL returns a mailbox's access control list, RFC 4314.
func (c *Client) GetACL(mailbox string) (imapengine.GetACLData, error) {
	var data imapengine.GetACLData
	_, err := c.doCollecting(imapengine.CommandGetACL{Mailbox: mailbox}, func(p imapengine.UntaggedPayload) {
		if v, ok := p.(imapengine.UntaggedACL); ok {
			data = v.Data
		}
	})
	if err != nil {
		return imapengine.GetACLData{}, err
	}
	return data, nil
}

// SetACL modifies a mailbox's access control list for one identifier.
func (c *Client) SetACL(mailbox string, identifier imapengine.RightsIdentifier, mod imapengine.RightModification, rights imapengine.RightSet) error {
	_, err := c.do(imapengine.CommandSetACL{Mailbox: mailbox, Identifier: identifier, Modification: mod, Rights: rights})
	return err
}

// DeleteACL removes an identifier's access control entry from a mailbox.
func (c *Client) DeleteACL(mailbox string, identifier imapengine.RightsIdentifier) error {
	_, err := c.do(imapengine.CommandDeleteACL{Mailbox: mailbox, Identifier: identifier})
	return err
}

// ListRights issues LISTRIGHTS for a mailbox and identifier. This engine's
// response model has no structured payload for the LISTRIGHTS data line
// yet (see response_event.go: UntaggedACL and UntaggedMyRights exist,
// UntaggedListRights does not), so only the tagged completion is reported;
// a caller that needs the rights data itself must watch for it via a
// lower-level Response sink until that payload is added.
func (c *Client) ListRights(mailbox string, identifier imapengine.RightsIdentifier) error {
	_, err := c.do(imapengine.CommandListRights{Mailbox: mailbox, Identifier: identifier})
	return err
}

// MyRights returns the rights the current user holds on a mailbox.
func (c *Client) MyRights(mailbox string) (imapengine.MyRightsData, error) {
	data := imapengine.MyRightsData{Mailbox: mailbox}
	_, err := c.doCollecting(imapengine.CommandMyRights{Mailbox: mailbox}, func(p imapengine.UntaggedPayload) {
		if v, ok := p.(imapengine.UntaggedMyRights); ok {
			data = v.Data
		}
	})
	if err != nil {
		return imapengine.MyRightsData{}, err
	}
	return data, nil
}
