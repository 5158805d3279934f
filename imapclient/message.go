package imapclient

import "github.com/kvio/imapengine"

// Search returns the sequence numbers or UIDs of messages matching
// criteria.
func (c *Client) Search(uid bool, charset string, criteria imapengine.SearchCriteria, options imapengine.SearchOptions) (imapengine.SearchData, error) {
	var data imapengine.SearchData
	_, err := c.doCollecting(imapengine.CommandSearch{UID: uid, Charset: charset, Criteria: criteria, Options: options}, func(p imapengine.UntaggedPayload) {
		if v, ok := p.(imapengine.UntaggedSearch); ok {
			data = v.Data
		}
	})
	if err != nil {
		return imapengine.SearchData{}, err
	}
	return data, nil
}

// Store modifies flags on the given messages. If flags.Silent is false,
// the server's untagged FETCH responses describing the new flag state are
// delivered to the UnilateralDataHandler's Fetch callback, the same as any
// other server-initiated FETCH push.
func (c *Client) Store(uid bool, seq imapengine.NumSet, flags imapengine.StoreFlags, options imapengine.StoreOptions) error {
	_, err := c.do(imapengine.CommandStore{UID: uid, Seq: seq, Flags: flags, Options: options})
	return err
}

// Copy copies the given messages into another mailbox.
func (c *Client) Copy(uid bool, seq imapengine.NumSet, mailbox string) error {
	_, err := c.do(imapengine.CommandCopy{UID: uid, Seq: seq, Mailbox: mailbox})
	return err
}

// Move moves the given messages into another mailbox, requires the MOVE
// extension (RFC 6851).
func (c *Client) Move(uid bool, seq imapengine.NumSet, mailbox string) error {
	_, err := c.do(imapengine.CommandMove{UID: uid, Seq: seq, Mailbox: mailbox})
	return err
}
