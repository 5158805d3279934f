package imapclient

import "github.com/kvio/imapengine"

// Create creates a mailbox, optionally tagging it with one or more
// special-use attributes (requires CREATE-SPECIAL-USE).
func (c *Client) Create(mailbox string, specialUse ...imapengine.MailboxAttr) error {
	_, err := c.do(imapengine.CommandCreate{Mailbox: mailbox, SpecialUse: specialUse})
	return err
}

// Delete removes a mailbox.
func (c *Client) Delete(mailbox string) error {
	_, err := c.do(imapengine.CommandDelete{Mailbox: mailbox})
	return err
}

// Rename renames a mailbox.
func (c *Client) Rename(from, to string) error {
	_, err := c.do(imapengine.CommandRename{From: from, To: to})
	return err
}

// Subscribe marks a mailbox as subscribed.
func (c *Client) Subscribe(mailbox string) error {
	_, err := c.do(imapengine.CommandSubscribe{Mailbox: mailbox})
	return err
}

// Unsubscribe marks a mailbox as not subscribed.
func (c *Client) Unsubscribe(mailbox string) error {
	_, err := c.do(imapengine.CommandUnsubscribe{Mailbox: mailbox})
	return err
}

// selectLike runs SELECT or EXAMINE, assembling the SelectData the wire
// layer can actually hand back: Flags from an untagged FLAGS response and
// NumMessages from an untagged EXISTS. PermanentFlags, UIDNext, UIDValidity
// and HighestModSeq are carried on the tagged OK's response-code argument
// list ("* OK [UIDVALIDITY 123] ..."), which this engine's parser records
// only by Code name (see ResponseCode), not argument value, so those
// fields are left zero; a client that needs them should follow up with
// STATUS.
func (c *Client) selectLike(cmd imapengine.Command) (imapengine.SelectData, error) {
	var data imapengine.SelectData
	_, err := c.doCollecting(cmd, func(p imapengine.UntaggedPayload) {
		switch v := p.(type) {
		case imapengine.UntaggedFlags:
			data.Flags = v.Flags
		case imapengine.UntaggedExists:
			data.NumMessages = v.Count
		case imapengine.UntaggedList:
			data.List = &v.Data
		}
	})
	if err != nil {
		return imapengine.SelectData{}, err
	}
	return data, nil
}

// Select opens a mailbox for read-write access.
func (c *Client) Select(mailbox string, options imapengine.SelectOptions) (imapengine.SelectData, error) {
	return c.selectLike(imapengine.CommandSelect{Mailbox: mailbox, Options: options})
}

// Examine opens a mailbox read-only.
func (c *Client) Examine(mailbox string, options imapengine.SelectOptions) (imapengine.SelectData, error) {
	return c.selectLike(imapengine.CommandExamine{Mailbox: mailbox, Options: options})
}

// Status requests the given data items about a mailbox without selecting
// it.
func (c *Client) Status(mailbox string, options imapengine.StatusOptions) (imapengine.StatusData, error) {
	data := imapengine.StatusData{Mailbox: mailbox}
	_, err := c.doCollecting(imapengine.CommandStatus{Mailbox: mailbox, Options: options}, func(p imapengine.UntaggedPayload) {
		if v, ok := p.(imapengine.UntaggedStatus); ok {
			data = v.Data
		}
	})
	if err != nil {
		return imapengine.StatusData{}, err
	}
	return data, nil
}

// Check requests a mailbox checkpoint.
func (c *Client) Check() error {
	_, err := c.do(imapengine.CommandCheck{})
	return err
}

// CloseMailbox closes the currently selected mailbox, expunging messages
// flagged Deleted unless it was opened read-only. Named CloseMailbox, not
// Close, so it does not collide with the connection-closing method.
func (c *Client) CloseMailbox() error {
	_, err := c.do(imapengine.CommandClose{})
	return err
}

// Unselect closes the currently selected mailbox without expunging it,
// RFC 3691.
func (c *Client) Unselect() error {
	_, err := c.do(imapengine.CommandUnselect{})
	return err
}

// Expunge permanently removes messages flagged Deleted from the selected
// mailbox. If uids is non-nil, only those UIDs are expunged (UID EXPUNGE,
// requires UIDPLUS).
func (c *Client) Expunge(uids *imapengine.UIDSet) error {
	_, err := c.do(imapengine.CommandExpunge{UIDs: uids})
	return err
}

// List returns mailboxes matching reference and pattern, RFC 5258.
func (c *Client) List(reference, pattern string, options imapengine.ListOptions) ([]imapengine.ListData, error) {
	var mailboxes []imapengine.ListData
	_, err := c.doCollecting(imapengine.CommandList{Reference: reference, Pattern: pattern, Options: options}, func(p imapengine.UntaggedPayload) {
		if v, ok := p.(imapengine.UntaggedList); ok {
			mailboxes = append(mailboxes, v.Data)
		}
	})
	if err != nil {
		return nil, err
	}
	return mailboxes, nil
}

// LSub returns subscribed mailboxes matching reference and pattern (the
// legacy pre-LIST-EXTENDED way of doing so).
func (c *Client) LSub(reference, pattern string) ([]imapengine.ListData, error) {
	var mailboxes []imapengine.ListData
	_, err := c.doCollecting(imapengine.CommandLSub{Reference: reference, Pattern: pattern}, func(p imapengine.UntaggedPayload) {
		if v, ok := p.(imapengine.UntaggedLSub); ok {
			mailboxes = append(mailboxes, v.Data)
		}
	})
	if err != nil {
		return nil, err
	}
	return mailboxes, nil
}
