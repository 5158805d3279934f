package wire

import (
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/kvio/imapengine"
)

// parseMsgID extracts a single Message-ID from a raw envelope field value,
// using RFC 5322 message-id parsing rather than a bare angle-bracket trim
// so folded whitespace and malformed-but-common forms still come out clean.
func parseMsgID(s string) string {
	var h mail.Header
	h.Set("Message-Id", s)
	if id, err := h.MessageID(); err == nil {
		return id
	}
	return strings.Trim(s, "<>")
}

// parseMsgIDList extracts the list of Message-IDs from a raw In-Reply-To
// field value, which may name more than one parent message.
func parseMsgIDList(s string) []string {
	var h mail.Header
	h.Set("In-Reply-To", s)
	if ids, err := h.MsgIDList("In-Reply-To"); err == nil && len(ids) > 0 {
		return ids
	}
	return []string{strings.Trim(s, "<>")}
}

func (p *Parser) parseCapabilityList() (imapengine.CapSet, error) {
	caps := imapengine.CapSet{}
	for {
		b, err := p.dec.PeekByte()
		if err != nil {
			return nil, err
		}
		if b == '\r' {
			break
		}
		if err := p.dec.ReadSP(); err != nil {
			return nil, err
		}
		c, err := p.dec.ReadAtom()
		if err != nil {
			return nil, err
		}
		caps[imapengine.Cap(c)] = struct{}{}
	}
	if err := p.dec.ReadCRLF(); err != nil {
		return nil, err
	}
	return caps, nil
}

// parseListData parses the remainder of a "* LIST"/"* LSUB" response after
// the name has already been consumed: "(" mbx-list-flags ")" SP
// mailbox-delim SP mailbox CRLF.
func (p *Parser) parseListData() (imapengine.ListData, error) {
	var data imapengine.ListData
	if err := p.dec.ReadSP(); err != nil {
		return data, err
	}
	flags, err := p.dec.ReadFlags()
	if err != nil {
		return data, err
	}
	for _, f := range flags {
		data.Attrs = append(data.Attrs, imapengine.MailboxAttr(f))
	}
	if err := p.dec.ReadSP(); err != nil {
		return data, err
	}
	delimStr, ok, err := p.dec.ReadNString()
	if err != nil {
		return data, err
	}
	if ok && len(delimStr) > 0 {
		data.Delim = rune(delimStr[0])
	}
	if err := p.dec.ReadSP(); err != nil {
		return data, err
	}
	mailbox, err := p.dec.ReadAString()
	if err != nil {
		return data, err
	}
	data.Mailbox = mailbox
	if err := p.dec.ReadCRLF(); err != nil {
		return data, err
	}
	return data, nil
}

// parseSearchData parses "SEARCH" (already consumed) SP-separated numbers
// CRLF, with an optional trailing "(MODSEQ n)".
func (p *Parser) parseSearchData() (imapengine.SearchData, error) {
	var data imapengine.SearchData
	var seq imapengine.SeqSet
	for {
		b, err := p.dec.PeekByte()
		if err != nil {
			return data, err
		}
		if b == '\r' {
			break
		}
		if err := p.dec.ReadSP(); err != nil {
			return data, err
		}
		if b2, _ := p.dec.PeekByte(); b2 == '(' {
			if err := p.dec.ReadList(func() error {
				_, err := p.dec.ReadAtom()
				return err
			}); err != nil {
				return data, err
			}
			continue
		}
		n, err := p.dec.ReadNumber()
		if err != nil {
			return data, err
		}
		seq.AddNum(n)
	}
	if err := p.dec.ReadCRLF(); err != nil {
		return data, err
	}
	data.All = seq
	return data, nil
}

// parseESearchData parses an ESEARCH response (RFC 4731): "(TAG "t")"? SP?
// "UID"? (SP return-opt SP value)* CRLF.
func (p *Parser) parseESearchData() (imapengine.SearchData, error) {
	var data imapengine.SearchData
	if b, _ := p.dec.PeekByte(); b == '(' {
		if err := p.dec.ReadList(func() error {
			if _, err := p.dec.ReadAtom(); err != nil {
				return err
			}
			if err := p.dec.ReadSP(); err != nil {
				return err
			}
			_, err := p.dec.ReadQuotedString()
			return err
		}); err != nil {
			return data, err
		}
	}
	var uidSet imapengine.UIDSet
	for {
		b, err := p.dec.PeekByte()
		if err != nil {
			return data, err
		}
		if b == '\r' {
			break
		}
		if err := p.dec.ReadSP(); err != nil {
			return data, err
		}
		name, err := p.dec.ReadAtom()
		if err != nil {
			return data, err
		}
		switch strings.ToUpper(name) {
		case "UID":
			data.UID = true
		case "MIN":
			if err := p.dec.ReadSP(); err != nil {
				return data, err
			}
			n, err := p.dec.ReadNumber()
			if err != nil {
				return data, err
			}
			data.Min = n
		case "MAX":
			if err := p.dec.ReadSP(); err != nil {
				return data, err
			}
			n, err := p.dec.ReadNumber()
			if err != nil {
				return data, err
			}
			data.Max = n
		case "COUNT":
			if err := p.dec.ReadSP(); err != nil {
				return data, err
			}
			n, err := p.dec.ReadNumber()
			if err != nil {
				return data, err
			}
			data.Count = n
		case "ALL":
			if err := p.dec.ReadSP(); err != nil {
				return data, err
			}
			s, err := p.dec.ReadAtom()
			if err != nil {
				return data, err
			}
			for _, tok := range strings.Split(s, ",") {
				addSeqOrRange(&uidSet, tok)
			}
		case "MODSEQ":
			if err := p.dec.ReadSP(); err != nil {
				return data, err
			}
			n, err := p.dec.ReadNumber64()
			if err != nil {
				return data, err
			}
			data.ModSeq = n
		}
	}
	if err := p.dec.ReadCRLF(); err != nil {
		return data, err
	}
	data.All = uidSet
	return data, nil
}

func addSeqOrRange(s *imapengine.UIDSet, tok string) {
	if i := strings.IndexByte(tok, ':'); i >= 0 {
		lo, _ := strconv.ParseUint(tok[:i], 10, 32)
		hi, _ := strconv.ParseUint(tok[i+1:], 10, 32)
		s.AddRange(imapengine.UID(lo), imapengine.UID(hi))
		return
	}
	n, _ := strconv.ParseUint(tok, 10, 32)
	s.AddNum(imapengine.UID(n))
}

// parseStatusData parses "STATUS" (consumed) SP mailbox SP "(" att-list ")" CRLF.
func (p *Parser) parseStatusData() (imapengine.StatusData, error) {
	var data imapengine.StatusData
	if err := p.dec.ReadSP(); err != nil {
		return data, err
	}
	mailbox, err := p.dec.ReadAString()
	if err != nil {
		return data, err
	}
	data.Mailbox = mailbox
	if err := p.dec.ReadSP(); err != nil {
		return data, err
	}
	err = p.dec.ReadList(func() error {
		name, err := p.dec.ReadAtom()
		if err != nil {
			return err
		}
		if err := p.dec.ReadSP(); err != nil {
			return err
		}
		switch strings.ToUpper(name) {
		case "MESSAGES":
			n, err := p.dec.ReadNumber()
			if err != nil {
				return err
			}
			data.NumMessages = &n
		case "UIDNEXT":
			n, err := p.dec.ReadNumber()
			if err != nil {
				return err
			}
			data.UIDNext = imapengine.UID(n)
		case "UIDVALIDITY":
			n, err := p.dec.ReadNumber()
			if err != nil {
				return err
			}
			data.UIDValidity = n
		case "UNSEEN":
			n, err := p.dec.ReadNumber()
			if err != nil {
				return err
			}
			data.NumUnseen = &n
		case "DELETED":
			n, err := p.dec.ReadNumber()
			if err != nil {
				return err
			}
			data.NumDeleted = &n
		case "SIZE":
			n, err := p.dec.ReadNumber64()
			if err != nil {
				return err
			}
			size := int64(n)
			data.Size = &size
		case "HIGHESTMODSEQ":
			n, err := p.dec.ReadNumber64()
			if err != nil {
				return err
			}
			data.HighestModSeq = n
		case "APPENDLIMIT":
			n, err := p.dec.ReadNumber()
			if err != nil {
				return err
			}
			data.AppendLimit = &n
		default:
			_, err := p.dec.ReadAtom()
			return err
		}
		return nil
	})
	if err != nil {
		return data, err
	}
	if err := p.dec.ReadCRLF(); err != nil {
		return data, err
	}
	return data, nil
}

func (p *Parser) parseNamespaceData() (imapengine.NamespaceData, error) {
	var data imapengine.NamespaceData
	groups := []*[]imapengine.NamespaceDescriptor{&data.Personal, &data.Other, &data.Shared}
	for _, g := range groups {
		if err := p.dec.ReadSP(); err != nil {
			return data, err
		}
		b, err := p.dec.PeekByte()
		if err != nil {
			return data, err
		}
		if b == 'N' || b == 'n' {
			if _, ok, err := p.dec.ReadNString(); err != nil || ok {
				if err != nil {
					return data, err
				}
			}
			continue
		}
		if err := p.dec.ReadList(func() error {
			var desc imapengine.NamespaceDescriptor
			if err := p.dec.ReadList(func() error {
				prefix, err := p.dec.ReadString()
				if err != nil {
					return err
				}
				desc.Prefix = prefix
				if err := p.dec.ReadSP(); err != nil {
					return err
				}
				delim, ok, err := p.dec.ReadNString()
				if err != nil {
					return err
				}
				if ok && len(delim) > 0 {
					desc.Delim = rune(delim[0])
				}
				return nil
			}); err != nil {
				return err
			}
			*g = append(*g, desc)
			return nil
		}); err != nil {
			return data, err
		}
	}
	if err := p.dec.ReadCRLF(); err != nil {
		return data, err
	}
	return data, nil
}

// parseEnvelope parses an ENVELOPE structure value, already positioned at
// its opening '('.
func (p *Parser) parseEnvelope() (imapengine.Envelope, error) {
	var env imapengine.Envelope
	err := p.dec.ReadList(func() error {
		dateStr, ok, err := p.dec.ReadNString()
		if err != nil {
			return err
		}
		if ok {
			if t, perr := time.Parse("Mon, 2 Jan 2006 15:04:05 -0700", dateStr); perr == nil {
				env.Date = t
			} else if t, perr := time.Parse("2 Jan 2006 15:04:05 -0700", dateStr); perr == nil {
				env.Date = t
			}
		}
		if err := p.dec.ReadSP(); err != nil {
			return err
		}
		subj, ok, err := p.dec.ReadNString()
		if err != nil {
			return err
		}
		if ok {
			env.Subject = subj
		}
		fields := []*[]imapengine.Address{&env.From, &env.Sender, &env.ReplyTo, &env.To, &env.Cc, &env.Bcc}
		for _, f := range fields {
			if err := p.dec.ReadSP(); err != nil {
				return err
			}
			addrs, err := p.parseAddressList()
			if err != nil {
				return err
			}
			*f = addrs
		}
		if err := p.dec.ReadSP(); err != nil {
			return err
		}
		inReplyTo, ok, err := p.dec.ReadNString()
		if err != nil {
			return err
		}
		if ok && inReplyTo != "" {
			env.InReplyTo = parseMsgIDList(inReplyTo)
		}
		if err := p.dec.ReadSP(); err != nil {
			return err
		}
		msgID, ok, err := p.dec.ReadNString()
		if err != nil {
			return err
		}
		if ok {
			env.MessageID = parseMsgID(msgID)
		}
		return nil
	})
	return env, err
}

func (p *Parser) parseAddressList() ([]imapengine.Address, error) {
	if b, err := p.dec.PeekByte(); err != nil {
		return nil, err
	} else if b != '(' {
		if _, ok, err := p.dec.ReadNString(); err != nil {
			return nil, err
		} else if ok {
			return nil, &ParseError{Kind: "expected NIL or address list", Offset: p.dec.Pos()}
		}
		return nil, nil
	}
	var addrs []imapengine.Address
	err := p.dec.ReadList(func() error {
		var a imapengine.Address
		if err := p.dec.ReadList(func() error {
			name, ok, err := p.dec.ReadNString()
			if err != nil {
				return err
			}
			if ok {
				a.Name = name
			}
			if err := p.dec.ReadSP(); err != nil {
				return err
			}
			if _, _, err := p.dec.ReadNString(); err != nil { // adl, unused
				return err
			}
			if err := p.dec.ReadSP(); err != nil {
				return err
			}
			mailbox, ok, err := p.dec.ReadNString()
			if err != nil {
				return err
			}
			if ok {
				a.Mailbox = mailbox
			}
			if err := p.dec.ReadSP(); err != nil {
				return err
			}
			host, ok, err := p.dec.ReadNString()
			if err != nil {
				return err
			}
			if ok {
				a.Host = host
			}
			return nil
		}); err != nil {
			return err
		}
		addrs = append(addrs, a)
		return nil
	})
	return addrs, err
}

// parseBodyStructure parses a BODY/BODYSTRUCTURE value, already positioned
// at its opening '('.
func (p *Parser) parseBodyStructure() (imapengine.BodyStructure, error) {
	start := p.dec.Pos()
	if err := p.dec.Expect('('); err != nil {
		return nil, err
	}
	if b, err := p.dec.PeekByte(); err == nil && b == '(' {
		p.dec.pos = start
		return p.parseMultiPartBodyStructure()
	}
	p.dec.pos = start
	return p.parseSinglePartBodyStructure()
}

func (p *Parser) parseMultiPartBodyStructure() (imapengine.BodyStructure, error) {
	bs := &imapengine.BodyStructureMultiPart{}
	err := p.dec.ReadList(func() error {
		for {
			if b, err := p.dec.PeekByte(); err != nil {
				return err
			} else if b != '(' {
				break
			}
			child, err := p.parseBodyStructure()
			if err != nil {
				return err
			}
			bs.Children = append(bs.Children, child)
			if b, err := p.dec.PeekByte(); err != nil {
				return err
			} else if b == ' ' {
				p.dec.pos++
			}
		}
		subtype, err := p.dec.ReadString()
		if err != nil {
			return err
		}
		bs.Subtype = subtype
		// Extended data (params, disposition, language, location) is
		// optional and, if present, mechanically skipped here.
		return p.skipRemainingListItems()
	})
	return bs, err
}

func (p *Parser) parseSinglePartBodyStructure() (imapengine.BodyStructure, error) {
	bs := &imapengine.BodyStructureSinglePart{}
	err := p.dec.ReadList(func() error {
		typ, err := p.dec.ReadString()
		if err != nil {
			return err
		}
		bs.Type = typ
		if err := p.dec.ReadSP(); err != nil {
			return err
		}
		subtype, err := p.dec.ReadString()
		if err != nil {
			return err
		}
		bs.Subtype = subtype
		if err := p.dec.ReadSP(); err != nil {
			return err
		}
		params, err := p.parseParamList()
		if err != nil {
			return err
		}
		bs.Params = params
		if err := p.dec.ReadSP(); err != nil {
			return err
		}
		id, ok, err := p.dec.ReadNString()
		if err != nil {
			return err
		}
		if ok {
			bs.ID = id
		}
		if err := p.dec.ReadSP(); err != nil {
			return err
		}
		desc, ok, err := p.dec.ReadNString()
		if err != nil {
			return err
		}
		if ok {
			bs.Description = desc
		}
		if err := p.dec.ReadSP(); err != nil {
			return err
		}
		enc, err := p.dec.ReadString()
		if err != nil {
			return err
		}
		bs.Encoding = enc
		if err := p.dec.ReadSP(); err != nil {
			return err
		}
		size, err := p.dec.ReadNumber()
		if err != nil {
			return err
		}
		bs.Size = size
		// Optional trailing fields (envelope+bodystructure+lines for
		// message/rfc822, lines for text/*, extended data) are skipped
		// mechanically: they follow a fixed, leaf-level grammar.
		return p.skipRemainingListItems()
	})
	return bs, err
}

// parseParamList parses a body-fld-param: NIL, or a parenthesized list of
// alternating attribute/value string pairs.
func (p *Parser) parseParamList() (map[string]string, error) {
	b, err := p.dec.PeekByte()
	if err != nil {
		return nil, err
	}
	if b != '(' {
		_, ok, err := p.dec.ReadNString()
		if err != nil {
			return nil, err
		}
		if ok {
			return nil, &ParseError{Kind: "expected NIL or param list", Offset: p.dec.Pos()}
		}
		return nil, nil
	}
	params := map[string]string{}
	var key string
	first := true
	err = p.dec.ReadList(func() error {
		s, err := p.dec.ReadString()
		if err != nil {
			return err
		}
		if first {
			key = s
			first = false
			return nil
		}
		params[strings.ToLower(key)] = s
		first = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return params, nil
}

// skipRemainingListItems consumes tokens up to (not including) the closing
// ')' of the list currently being read, without interpreting them. It is
// used for BODYSTRUCTURE extension data this parser does not model field
// by field.
func (p *Parser) skipRemainingListItems() error {
	for {
		b, err := p.dec.PeekByte()
		if err != nil {
			return err
		}
		if b == ')' {
			return nil
		}
		if b == ' ' {
			p.dec.pos++
			continue
		}
		if err := p.skipOneValue(); err != nil {
			return err
		}
	}
}

func (p *Parser) skipOneValue() error {
	b, err := p.dec.PeekByte()
	if err != nil {
		return err
	}
	if b == '(' {
		return p.dec.ReadList(func() error { return p.skipRemainingListItems() })
	}
	_, _, err = p.dec.ReadNString()
	return err
}

// parseQuotaData parses "QUOTA" (consumed) SP quota-root SP "(" resource*
// ")" CRLF, RFC 9208 section 5.
func (p *Parser) parseQuotaData() (imapengine.QuotaData, error) {
	data := imapengine.QuotaData{Resources: map[imapengine.QuotaResourceType]imapengine.QuotaResourceData{}}
	if err := p.dec.ReadSP(); err != nil {
		return data, err
	}
	root, err := p.dec.ReadAString()
	if err != nil {
		return data, err
	}
	data.Root = root
	if err := p.dec.ReadSP(); err != nil {
		return data, err
	}
	err = p.dec.ReadList(func() error {
		name, err := p.dec.ReadAtom()
		if err != nil {
			return err
		}
		if err := p.dec.ReadSP(); err != nil {
			return err
		}
		usage, err := p.dec.ReadNumber64()
		if err != nil {
			return err
		}
		if err := p.dec.ReadSP(); err != nil {
			return err
		}
		limit, err := p.dec.ReadNumber64()
		if err != nil {
			return err
		}
		data.Resources[imapengine.QuotaResourceType(name)] = imapengine.QuotaResourceData{
			Usage: int64(usage),
			Limit: int64(limit),
		}
		return nil
	})
	if err != nil {
		return data, err
	}
	if err := p.dec.ReadCRLF(); err != nil {
		return data, err
	}
	return data, nil
}

// parseQuotaRootData parses "QUOTAROOT" (consumed) SP mailbox (SP
// quota-root)* CRLF, RFC 9208 section 5.
func (p *Parser) parseQuotaRootData() (imapengine.UntaggedQuotaRoot, error) {
	var data imapengine.UntaggedQuotaRoot
	if err := p.dec.ReadSP(); err != nil {
		return data, err
	}
	mailbox, err := p.dec.ReadAString()
	if err != nil {
		return data, err
	}
	data.Mailbox = mailbox
	for {
		b, err := p.dec.PeekByte()
		if err != nil {
			return data, err
		}
		if b == '\r' {
			break
		}
		if err := p.dec.ReadSP(); err != nil {
			return data, err
		}
		root, err := p.dec.ReadAString()
		if err != nil {
			return data, err
		}
		data.Roots = append(data.Roots, root)
	}
	if err := p.dec.ReadCRLF(); err != nil {
		return data, err
	}
	return data, nil
}

// parseACLData parses "ACL" (consumed) SP mailbox (SP identifier SP
// rights)* CRLF, RFC 4314 section 3.6.
func (p *Parser) parseACLData() (imapengine.GetACLData, error) {
	data := imapengine.GetACLData{Rights: map[imapengine.RightsIdentifier]imapengine.RightSet{}}
	if err := p.dec.ReadSP(); err != nil {
		return data, err
	}
	mailbox, err := p.dec.ReadAString()
	if err != nil {
		return data, err
	}
	data.Mailbox = mailbox
	for {
		b, err := p.dec.PeekByte()
		if err != nil {
			return data, err
		}
		if b == '\r' {
			break
		}
		if err := p.dec.ReadSP(); err != nil {
			return data, err
		}
		ident, err := p.dec.ReadAString()
		if err != nil {
			return data, err
		}
		if err := p.dec.ReadSP(); err != nil {
			return data, err
		}
		rights, err := p.dec.ReadAString()
		if err != nil {
			return data, err
		}
		data.Rights[imapengine.RightsIdentifier(ident)] = imapengine.RightSet(rights)
	}
	if err := p.dec.ReadCRLF(); err != nil {
		return data, err
	}
	return data, nil
}

// parseMyRightsData parses "MYRIGHTS" (consumed) SP mailbox SP rights CRLF,
// RFC 4314 section 3.8.
func (p *Parser) parseMyRightsData() (imapengine.MyRightsData, error) {
	var data imapengine.MyRightsData
	if err := p.dec.ReadSP(); err != nil {
		return data, err
	}
	mailbox, err := p.dec.ReadAString()
	if err != nil {
		return data, err
	}
	data.Mailbox = mailbox
	if err := p.dec.ReadSP(); err != nil {
		return data, err
	}
	rights, err := p.dec.ReadAString()
	if err != nil {
		return data, err
	}
	data.Rights = imapengine.RightSet(rights)
	if err := p.dec.ReadCRLF(); err != nil {
		return data, err
	}
	return data, nil
}

// parseMetadataData parses "METADATA" (consumed) SP mailbox SP "(" (entry
// SP value)* ")" CRLF, RFC 5464 section 4.4.1. A value of NIL records the
// entry with a nil pointer, distinguishing "present but NIL" (a GETMETADATA
// hit that returns no value) from "absent" (no map entry at all).
func (p *Parser) parseMetadataData() (imapengine.UntaggedMetadata, error) {
	data := imapengine.UntaggedMetadata{Entries: map[string]*string{}}
	if err := p.dec.ReadSP(); err != nil {
		return data, err
	}
	mailbox, err := p.dec.ReadAString()
	if err != nil {
		return data, err
	}
	data.Mailbox = mailbox
	if err := p.dec.ReadSP(); err != nil {
		return data, err
	}
	err = p.dec.ReadList(func() error {
		entry, err := p.dec.ReadAString()
		if err != nil {
			return err
		}
		if err := p.dec.ReadSP(); err != nil {
			return err
		}
		value, ok, err := p.dec.ReadNString()
		if err != nil {
			return err
		}
		if ok {
			data.Entries[entry] = &value
		} else {
			data.Entries[entry] = nil
		}
		return nil
	})
	if err != nil {
		return data, err
	}
	if err := p.dec.ReadCRLF(); err != nil {
		return data, err
	}
	return data, nil
}

// parseIDData parses "ID" (consumed) SP ( NIL / "(" (string SP nstring)*
// ")" ) CRLF, RFC 2971 section 3.
func (p *Parser) parseIDData() (imapengine.IDData, error) {
	var data imapengine.IDData
	if err := p.dec.ReadSP(); err != nil {
		return data, err
	}
	b, err := p.dec.PeekByte()
	if err != nil {
		return data, err
	}
	if b == 'N' || b == 'n' {
		if _, ok, err := p.dec.ReadNString(); err != nil {
			return data, err
		} else if ok {
			return data, &ParseError{Kind: "expected NIL or ID parameter list", Offset: p.dec.Pos()}
		}
	} else {
		fields := map[string]*string{}
		err = p.dec.ReadList(func() error {
			key, err := p.dec.ReadAString()
			if err != nil {
				return err
			}
			if err := p.dec.ReadSP(); err != nil {
				return err
			}
			value, ok, err := p.dec.ReadNString()
			if err != nil {
				return err
			}
			if ok {
				fields[strings.ToLower(key)] = &value
			}
			return nil
		})
		if err != nil {
			return data, err
		}
		assignIDField(&data.Name, fields["name"])
		assignIDField(&data.Version, fields["version"])
		assignIDField(&data.OS, fields["os"])
		assignIDField(&data.OSVersion, fields["os-version"])
		assignIDField(&data.Vendor, fields["vendor"])
		assignIDField(&data.SupportURL, fields["support-url"])
		assignIDField(&data.Address, fields["address"])
		assignIDField(&data.Date, fields["date"])
		assignIDField(&data.Command, fields["command"])
		assignIDField(&data.Arguments, fields["arguments"])
		assignIDField(&data.Environment, fields["environment"])
	}
	if err := p.dec.ReadCRLF(); err != nil {
		return data, err
	}
	return data, nil
}

func assignIDField(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
