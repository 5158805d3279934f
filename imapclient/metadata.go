package imapclient

import "github.com/kvio/imapengine"

// GetMetadata retrieves annotations on a mailbox (or the server, if
// mailbox is ""), RFC 5464. maxSize of 0 means unset.
func (c *Client) GetMetadata(mailbox string, entries []string, depth imapengine.MetadataDepth, maxSize int64) (map[string]*string, error) {
	result := make(map[string]*string)
	_, err := c.doCollecting(imapengine.CommandGetMetadata{Mailbox: mailbox, Entries: entries, Depth: depth, MaxSize: maxSize}, func(p imapengine.UntaggedPayload) {
		if v, ok := p.(imapengine.UntaggedMetadata); ok {
			for k, val := range v.Entries {
				result[k] = val
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetMetadata sets or deletes annotations on a mailbox (or the server, if
// mailbox is ""). A nil map value deletes that entry.
func (c *Client) SetMetadata(mailbox string, entries map[string]*string) error {
	_, err := c.do(imapengine.CommandSetMetadata{Mailbox: mailbox, Entries: entries})
	return err
}
