package wire

import (
	"github.com/kvio/imapengine"
)

// Event is the union of everything Parser.Next can hand to the client
// state machine: a tagged/untagged/fatal response, a continuation request,
// or one part of a FETCH response's streamed sub-sequence.
type Event interface {
	isEvent()
}

// EventResponse wraps a fully-parsed, non-FETCH Response.
type EventResponse struct {
	Response imapengine.Response
}

// EventContinuation wraps a "+" continuation request line.
type EventContinuation struct {
	Continuation imapengine.ContinuationRequest
}

// EventFetch wraps one event of an in-progress FETCH response's
// sub-stream. See imapengine.FetchResponsePart.
type EventFetch struct {
	Part imapengine.FetchResponsePart
}

func (EventResponse) isEvent()     {}
func (EventContinuation) isEvent() {}
func (EventFetch) isEvent()        {}

// Parser is an incremental response parser: Feed appends inbound bytes,
// Next returns the next complete Event or ErrNeedMoreData. It never
// buffers a whole FETCH body: large literals are streamed out as a
// sequence of EventFetch{FetchStreamingBytes{...}}.
type Parser struct {
	dec   *Decoder
	fetch *fetchState
}

// NewParser returns an empty Parser.
func NewParser() *Parser {
	return &Parser{dec: NewDecoder()}
}

// Feed appends newly-received bytes.
func (p *Parser) Feed(b []byte) { p.dec.Feed(b) }

// Compact discards already-consumed bytes, bounding memory growth.
func (p *Parser) Compact() { p.dec.Compact() }

// Remaining returns the bytes fed but not yet consumed by Next. A STARTTLS
// upgrade uses this to carry any bytes read ahead of the negotiated TLS
// handshake over to the new connection, since the server must not send
// plaintext past the STARTTLS OK but a buffered read may have grabbed some.
func (p *Parser) Remaining() []byte { return p.dec.Remaining() }

// DiscardRemaining drops the bytes Remaining last returned. A STARTTLS
// upgrade calls this once it has taken those bytes for itself, so Next does
// not try to parse them a second time as plaintext once new bytes arrive
// from the upgraded connection.
func (p *Parser) DiscardRemaining() { p.dec.pos = len(p.dec.buf) }

// Next returns the next complete event, or ErrNeedMoreData if the buffer
// does not yet hold one, or a *ParseError on malformed input. On either
// error the parser's position is left where it was before the call; a
// ParseError's Offset names the offending byte.
func (p *Parser) Next() (Event, error) {
	if p.fetch != nil {
		return p.nextFetchEvent()
	}

	start := p.dec.pos
	b, err := p.dec.PeekByte()
	if err != nil {
		return nil, err
	}

	switch b {
	case '+':
		return p.parseContinuation()
	case '*':
		ev, err := p.parseUntagged()
		if err != nil {
			p.dec.pos = start
		}
		return ev, err
	default:
		ev, err := p.parseTagged()
		if err != nil {
			p.dec.pos = start
		}
		return ev, err
	}
}

func (p *Parser) parseContinuation() (Event, error) {
	start := p.dec.pos
	if err := p.dec.Expect('+'); err != nil {
		return nil, err
	}
	// "+" may be followed directly by CRLF, or by " text".
	var text string
	if b, err := p.dec.PeekByte(); err == nil && b == ' ' {
		p.dec.pos++
		s, err := p.dec.ReadLineRemainder()
		if err != nil {
			p.dec.pos = start
			return nil, err
		}
		text = s
	}
	if err := p.dec.ReadCRLF(); err != nil {
		p.dec.pos = start
		return nil, err
	}
	return EventContinuation{Continuation: imapengine.ContinuationRequest{Text: text}}, nil
}

func (p *Parser) parseTagged() (Event, error) {
	tag, err := p.dec.ReadAtom()
	if err != nil {
		return nil, err
	}
	if err := p.dec.ReadSP(); err != nil {
		return nil, err
	}
	kind, err := p.dec.ReadAtom()
	if err != nil {
		return nil, err
	}
	code, text, err := p.parseRespTextAfterStatus()
	if err != nil {
		return nil, err
	}
	return EventResponse{Response: imapengine.TaggedResponse{
		Tag:  imapengine.Tag(tag),
		Kind: imapengine.StatusResponseType(kind),
		Code: code,
		Text: text,
	}}, nil
}

// parseRespTextAfterStatus parses [SP "[" resp-text-code "]"] [SP text]
// CRLF, having already consumed the status atom.
func (p *Parser) parseRespTextAfterStatus() (imapengine.ResponseCode, string, error) {
	var code imapengine.ResponseCode
	if b, err := p.dec.PeekByte(); err == nil && b == ' ' {
		p.dec.pos++
		if b2, err := p.dec.PeekByte(); err == nil && b2 == '[' {
			p.dec.pos++
			c, err := p.dec.ReadAtom()
			if err != nil {
				return "", "", err
			}
			code = imapengine.ResponseCode(c)
			// Skip any response-code arguments up to ']'.
			for {
				b3, err := p.dec.ReadByte()
				if err != nil {
					return "", "", err
				}
				if b3 == ']' {
					break
				}
			}
			if b4, err := p.dec.PeekByte(); err == nil && b4 == ' ' {
				p.dec.pos++
			}
		}
		text, err := p.dec.ReadLineRemainder()
		if err != nil {
			return "", "", err
		}
		if err := p.dec.ReadCRLF(); err != nil {
			return "", "", err
		}
		return code, text, nil
	}
	if err := p.dec.ReadCRLF(); err != nil {
		return "", "", err
	}
	return code, "", nil
}

func (p *Parser) parseUntagged() (Event, error) {
	if err := p.dec.Expect('*'); err != nil {
		return nil, err
	}
	if err := p.dec.ReadSP(); err != nil {
		return nil, err
	}

	// "* <number> <name>" forms: EXISTS, RECENT, EXPUNGE, FETCH.
	if b, err := p.dec.PeekByte(); err == nil && b >= '0' && b <= '9' {
		num, err := p.dec.ReadNumber()
		if err != nil {
			return nil, err
		}
		if err := p.dec.ReadSP(); err != nil {
			return nil, err
		}
		name, err := p.dec.ReadAtom()
		if err != nil {
			return nil, err
		}
		switch name {
		case "EXISTS":
			if err := p.dec.ReadCRLF(); err != nil {
				return nil, err
			}
			return EventResponse{Response: imapengine.UntaggedResponse{Payload: imapengine.UntaggedExists{Count: num}}}, nil
		case "RECENT":
			if err := p.dec.ReadCRLF(); err != nil {
				return nil, err
			}
			return EventResponse{Response: imapengine.UntaggedResponse{Payload: imapengine.UntaggedRecent{Count: num}}}, nil
		case "EXPUNGE":
			if err := p.dec.ReadCRLF(); err != nil {
				return nil, err
			}
			return EventResponse{Response: imapengine.UntaggedResponse{Payload: imapengine.UntaggedExpunge{SeqNum: num}}}, nil
		case "FETCH":
			if err := p.dec.ReadSP(); err != nil {
				return nil, err
			}
			if err := p.dec.Expect('('); err != nil {
				return nil, err
			}
			p.fetch = &fetchState{seq: num, atStart: true}
			return EventFetch{Part: imapengine.FetchStart{SeqNum: num}}, nil
		default:
			return nil, &ParseError{Kind: "unknown numeric untagged response " + name, Offset: p.dec.pos}
		}
	}

	name, err := p.dec.ReadAtom()
	if err != nil {
		return nil, err
	}

	switch name {
	case "OK", "NO", "BAD", "PREAUTH":
		code, text, err := p.parseRespTextAfterStatus()
		if err != nil {
			return nil, err
		}
		return EventResponse{Response: imapengine.UntaggedResponse{Payload: untaggedStatus(name, code, text)}}, nil
	case "BYE":
		_, text, err := p.parseRespTextAfterStatus()
		if err != nil {
			return nil, err
		}
		return EventResponse{Response: imapengine.FatalResponse{Text: text}}, nil
	case "CAPABILITY":
		caps, err := p.parseCapabilityList()
		if err != nil {
			return nil, err
		}
		return EventResponse{Response: imapengine.UntaggedResponse{Payload: imapengine.UntaggedCapability{Caps: caps}}}, nil
	case "FLAGS":
		flags, err := p.dec.ReadFlags()
		if err != nil {
			return nil, err
		}
		if err := p.dec.ReadCRLF(); err != nil {
			return nil, err
		}
		return EventResponse{Response: imapengine.UntaggedResponse{Payload: imapengine.UntaggedFlags{Flags: toFlags(flags)}}}, nil
	case "LIST", "LSUB":
		data, err := p.parseListData()
		if err != nil {
			return nil, err
		}
		if name == "LIST" {
			return EventResponse{Response: imapengine.UntaggedResponse{Payload: imapengine.UntaggedList{Data: data}}}, nil
		}
		return EventResponse{Response: imapengine.UntaggedResponse{Payload: imapengine.UntaggedLSub{Data: data}}}, nil
	case "SEARCH":
		data, err := p.parseSearchData()
		if err != nil {
			return nil, err
		}
		return EventResponse{Response: imapengine.UntaggedResponse{Payload: imapengine.UntaggedSearch{Data: data}}}, nil
	case "ESEARCH":
		data, err := p.parseESearchData()
		if err != nil {
			return nil, err
		}
		return EventResponse{Response: imapengine.UntaggedResponse{Payload: imapengine.UntaggedSearch{Data: data}}}, nil
	case "STATUS":
		data, err := p.parseStatusData()
		if err != nil {
			return nil, err
		}
		return EventResponse{Response: imapengine.UntaggedResponse{Payload: imapengine.UntaggedStatus{Data: data}}}, nil
	case "NAMESPACE":
		data, err := p.parseNamespaceData()
		if err != nil {
			return nil, err
		}
		return EventResponse{Response: imapengine.UntaggedResponse{Payload: imapengine.UntaggedNamespace{Data: data}}}, nil
	case "ENABLED":
		var caps []imapengine.Cap
		for {
			if b, err := p.dec.PeekByte(); err != nil {
				return nil, err
			} else if b == '\r' {
				break
			}
			if err := p.dec.ReadSP(); err != nil {
				return nil, err
			}
			c, err := p.dec.ReadAtom()
			if err != nil {
				return nil, err
			}
			caps = append(caps, imapengine.Cap(c))
		}
		if err := p.dec.ReadCRLF(); err != nil {
			return nil, err
		}
		return EventResponse{Response: imapengine.UntaggedResponse{Payload: imapengine.UntaggedEnabled{Caps: caps}}}, nil
	case "QUOTA":
		data, err := p.parseQuotaData()
		if err != nil {
			return nil, err
		}
		return EventResponse{Response: imapengine.UntaggedResponse{Payload: imapengine.UntaggedQuota{Data: data}}}, nil
	case "QUOTAROOT":
		data, err := p.parseQuotaRootData()
		if err != nil {
			return nil, err
		}
		return EventResponse{Response: imapengine.UntaggedResponse{Payload: data}}, nil
	case "ACL":
		data, err := p.parseACLData()
		if err != nil {
			return nil, err
		}
		return EventResponse{Response: imapengine.UntaggedResponse{Payload: imapengine.UntaggedACL{Data: data}}}, nil
	case "MYRIGHTS":
		data, err := p.parseMyRightsData()
		if err != nil {
			return nil, err
		}
		return EventResponse{Response: imapengine.UntaggedResponse{Payload: imapengine.UntaggedMyRights{Data: data}}}, nil
	case "METADATA":
		data, err := p.parseMetadataData()
		if err != nil {
			return nil, err
		}
		return EventResponse{Response: imapengine.UntaggedResponse{Payload: data}}, nil
	case "ID":
		data, err := p.parseIDData()
		if err != nil {
			return nil, err
		}
		return EventResponse{Response: imapengine.UntaggedResponse{Payload: imapengine.UntaggedID{Data: data}}}, nil
	default:
		// Unknown/unimplemented untagged payload: discard the remainder of
		// the line rather than fail the whole connection on a leaf this
		// parser doesn't yet model. Reported as UntaggedUnknown rather than
		// impersonating a real payload type such as an empty UntaggedFlags.
		if _, err := p.dec.ReadLineRemainder(); err != nil {
			return nil, err
		}
		if err := p.dec.ReadCRLF(); err != nil {
			return nil, err
		}
		return EventResponse{Response: imapengine.UntaggedResponse{Payload: imapengine.UntaggedUnknown{Keyword: name}}}, nil
	}
}

func untaggedStatus(name string, code imapengine.ResponseCode, text string) imapengine.UntaggedPayload {
	return imapengine.UntaggedStatusResponse{Kind: imapengine.StatusResponseType(name), Code: code, Text: text}
}

func toFlags(names []string) []imapengine.Flag {
	out := make([]imapengine.Flag, len(names))
	for i, n := range names {
		out[i] = imapengine.Flag(n)
	}
	return out
}
