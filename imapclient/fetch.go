package imapclient

import (
	"strconv"
	"strings"
	"time"

	"github.com/kvio/imapengine"
)

// decodeWord decodes a single RFC 2047 encoded-word if a WordDecoder was
// configured; otherwise it returns s unchanged, matching servers that have
// already done the decoding or clients that don't need it.
func (c *Client) decodeWord(s string) string {
	if c.options.WordDecoder == nil || s == "" {
		return s
	}
	decoded, err := c.options.WordDecoder.DecodeHeader(s)
	if err != nil {
		return s
	}
	return decoded
}

func (c *Client) decodeEnvelope(e imapengine.Envelope) imapengine.Envelope {
	if c.options.WordDecoder == nil {
		return e
	}
	e.Subject = c.decodeWord(e.Subject)
	decodeAddrs := func(addrs []imapengine.Address) {
		for i := range addrs {
			addrs[i].Name = c.decodeWord(addrs[i].Name)
		}
	}
	decodeAddrs(e.From)
	decodeAddrs(e.Sender)
	decodeAddrs(e.ReplyTo)
	decodeAddrs(e.To)
	decodeAddrs(e.Cc)
	decodeAddrs(e.Bcc)
	return e
}

// FetchMessageData collects one message's worth of FETCH attributes,
// assembled from the FetchResponsePart event stream (FetchStart through
// FetchFinish). Section keys are the raw section spec the server echoed
// back, e.g. "BODY[TEXT]" or "BODY[1.2]<0>".
type FetchMessageData struct {
	SeqNum            uint32
	Flags             []imapengine.Flag
	UID               imapengine.UID
	InternalDate      time.Time
	RFC822Size        uint32
	Envelope          *imapengine.Envelope
	BodyStructure     imapengine.BodyStructure
	ModSeq            uint64
	BodySection       map[string][]byte
	BinarySection     map[string][]byte
	BinarySectionSize map[string]uint32
	GmailMsgID        *uint64
	GmailThrID        *uint64
	GmailLabels       []string
}

// Fetch retrieves attributes for the messages named by seq (UIDs if uid is
// true, sequence numbers otherwise), returning one FetchMessageData per
// message in the order the server sent them.
func (c *Client) Fetch(uid bool, seq imapengine.NumSet, items imapengine.FetchOptions) ([]FetchMessageData, error) {
	var results []FetchMessageData
	var cur *FetchMessageData
	var curSection string
	var curBuf []byte

	onPart := func(part imapengine.FetchResponsePart) {
		switch p := part.(type) {
		case imapengine.FetchStart:
			cur = &FetchMessageData{SeqNum: p.SeqNum}
		case imapengine.FetchSimpleAttribute:
			if cur == nil {
				return
			}
			c.applyFetchAttr(cur, p.Attr)
		case imapengine.FetchStreamingBegin:
			curSection = p.Section
			curBuf = make([]byte, 0, p.Size)
		case imapengine.FetchStreamingBytes:
			curBuf = append(curBuf, p.Data...)
		case imapengine.FetchStreamingEnd:
			if cur != nil {
				storeFetchSection(cur, curSection, curBuf)
			}
			curSection = ""
			curBuf = nil
		case imapengine.FetchFinish:
			if cur != nil {
				results = append(results, *cur)
			}
			cur = nil
		}
	}

	_, err := c.doFetch(imapengine.CommandFetch{UID: uid, Seq: seq, Items: items}, onPart)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) applyFetchAttr(m *FetchMessageData, attr imapengine.FetchAttributeValue) {
	switch v := attr.(type) {
	case imapengine.FetchAttrFlags:
		m.Flags = v.Flags
	case imapengine.FetchAttrUID:
		m.UID = v.UID
	case imapengine.FetchAttrInternalDate:
		m.InternalDate = v.Date
	case imapengine.FetchAttrRFC822Size:
		m.RFC822Size = v.Size
	case imapengine.FetchAttrEnvelope:
		e := c.decodeEnvelope(v.Envelope)
		m.Envelope = &e
	case imapengine.FetchAttrBodyStructure:
		m.BodyStructure = v.BodyStructure
	case imapengine.FetchAttrModSeq:
		m.ModSeq = v.ModSeq
	case imapengine.FetchAttrBinarySectionSize:
		if m.BinarySectionSize == nil {
			m.BinarySectionSize = make(map[string]uint32)
		}
		m.BinarySectionSize[binarySectionKey(v.Part)] = v.Size
	case imapengine.FetchAttrGmailMsgID:
		id := v.MsgID
		m.GmailMsgID = &id
	case imapengine.FetchAttrGmailThrID:
		id := v.ThrID
		m.GmailThrID = &id
	case imapengine.FetchAttrGmailLabels:
		m.GmailLabels = v.Labels
	}
}

func storeFetchSection(m *FetchMessageData, section string, data []byte) {
	if len(section) >= 6 && section[:6] == "BINARY" {
		if m.BinarySection == nil {
			m.BinarySection = make(map[string][]byte)
		}
		m.BinarySection[section] = data
		return
	}
	if m.BodySection == nil {
		m.BodySection = make(map[string][]byte)
	}
	m.BodySection[section] = data
}

func binarySectionKey(part []int) string {
	fields := make([]string, len(part))
	for i, p := range part {
		fields[i] = strconv.Itoa(p)
	}
	return "BINARY.SIZE[" + strings.Join(fields, ".") + "]"
}
