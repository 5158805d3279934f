package imapclient

import "github.com/kvio/imapengine"

// GetQuota returns the usage and limit for a quota root, RFC 9208.
func (c *Client) GetQuota(root string) (imapengine.QuotaData, error) {
	var data imapengine.QuotaData
	_, err := c.doCollecting(imapengine.CommandGetQuota{Root: root}, func(p imapengine.UntaggedPayload) {
		if v, ok := p.(imapengine.UntaggedQuota); ok {
			data = v.Data
		}
	})
	if err != nil {
		return imapengine.QuotaData{}, err
	}
	return data, nil
}

// GetQuotaRoot returns the quota roots that apply to a mailbox, along with
// each root's usage and limit.
func (c *Client) GetQuotaRoot(mailbox string) ([]string, []imapengine.QuotaData, error) {
	var roots []string
	var quotas []imapengine.QuotaData
	_, err := c.doCollecting(imapengine.CommandGetQuotaRoot{Mailbox: mailbox}, func(p imapengine.UntaggedPayload) {
		switch v := p.(type) {
		case imapengine.UntaggedQuotaRoot:
			roots = v.Roots
		case imapengine.UntaggedQuota:
			quotas = append(quotas, v.Data)
		}
	})
	if err != nil {
		return nil, nil, err
	}
	return roots, quotas, nil
}

// SetQuota sets resource limits on a quota root.
func (c *Client) SetQuota(root string, resources map[imapengine.QuotaResourceType]int64) error {
	_, err := c.do(imapengine.CommandSetQuota{Root: root, Resources: resources})
	return err
}
