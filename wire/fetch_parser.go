package wire

import (
	"strconv"
	"strings"
	"time"

	"github.com/kvio/imapengine"
)

// fetchState tracks an in-progress FETCH response's sub-stream: which
// message it belongs to, whether the next attribute is the list's first
// (no leading separator), and the streamed literal currently in flight, if
// any.
type fetchState struct {
	seq     uint32
	atStart bool
	stream  *fetchStream
}

// fetchStream represents one streamed section value in flight. Either
// remaining tracks an unread literal payload, or buffered holds a value
// (NIL or quoted string) that was small enough to decode whole but is still
// re-surfaced as Begin/Bytes/End to keep the attribute's event shape
// uniform regardless of wire form.
type fetchStream struct {
	remaining       int64
	buffered        []byte
	bufferedEmitted bool
}

func (p *Parser) nextFetchEvent() (Event, error) {
	fs := p.fetch

	if fs.stream != nil {
		return p.nextStreamEvent(fs)
	}

	b, err := p.dec.PeekByte()
	if err != nil {
		return nil, err
	}
	if b == ')' {
		start := p.dec.pos
		p.dec.pos++
		if err := p.dec.ReadCRLF(); err != nil {
			p.dec.pos = start
			return nil, err
		}
		p.fetch = nil
		return EventFetch{Part: imapengine.FetchFinish{}}, nil
	}

	start := p.dec.pos
	if !fs.atStart {
		if err := p.dec.ReadSP(); err != nil {
			return nil, err
		}
	}
	part, err := p.parseFetchAttribute(fs)
	if err != nil {
		p.dec.pos = start
		return nil, err
	}
	fs.atStart = false
	return part, nil
}

func (p *Parser) nextStreamEvent(fs *fetchState) (Event, error) {
	st := fs.stream
	if st.remaining > 0 {
		if p.dec.available() == 0 {
			return nil, ErrNeedMoreData
		}
		n := p.dec.available()
		if int64(n) > st.remaining {
			n = int(st.remaining)
		}
		data := p.dec.ReadSome(n)
		st.remaining -= int64(len(data))
		return EventFetch{Part: imapengine.FetchStreamingBytes{Data: data}}, nil
	}
	if !st.bufferedEmitted {
		st.bufferedEmitted = true
		if len(st.buffered) == 0 {
			fs.stream = nil
			return EventFetch{Part: imapengine.FetchStreamingEnd{}}, nil
		}
		return EventFetch{Part: imapengine.FetchStreamingBytes{Data: st.buffered}}, nil
	}
	fs.stream = nil
	return EventFetch{Part: imapengine.FetchStreamingEnd{}}, nil
}

// readFetchAttrName reads one attribute token, e.g. "FLAGS", "UID",
// "BODY[HEADER.FIELDS (FROM TO)]<0.100>", tracking bracket depth so that
// spaces and parens inside a section specifier don't end the token early.
func (d *Decoder) readFetchAttrName() (string, error) {
	start := d.pos
	depth := 0
	i := d.pos
	for i < len(d.buf) {
		c := d.buf[i]
		if depth == 0 && (c == ' ' || c == ')') {
			break
		}
		if c == '[' {
			depth++
		} else if c == ']' && depth > 0 {
			depth--
		}
		i++
	}
	if i >= len(d.buf) {
		return "", ErrNeedMoreData
	}
	if i == start {
		return "", &ParseError{Kind: "expected fetch attribute", Offset: start}
	}
	s := string(d.buf[start:i])
	d.pos = i
	return s, nil
}

func (p *Parser) parseFetchAttribute(fs *fetchState) (Event, error) {
	name, err := p.dec.readFetchAttrName()
	if err != nil {
		return nil, err
	}
	upper := strings.ToUpper(name)

	switch {
	case upper == "FLAGS":
		if err := p.dec.ReadSP(); err != nil {
			return nil, err
		}
		flags, err := p.dec.ReadFlags()
		if err != nil {
			return nil, err
		}
		return EventFetch{Part: imapengine.FetchSimpleAttribute{Attr: imapengine.FetchAttrFlags{Flags: toFlags(flags)}}}, nil

	case upper == "UID":
		if err := p.dec.ReadSP(); err != nil {
			return nil, err
		}
		n, err := p.dec.ReadNumber()
		if err != nil {
			return nil, err
		}
		return EventFetch{Part: imapengine.FetchSimpleAttribute{Attr: imapengine.FetchAttrUID{UID: imapengine.UID(n)}}}, nil

	case upper == "INTERNALDATE":
		if err := p.dec.ReadSP(); err != nil {
			return nil, err
		}
		s, err := p.dec.ReadQuotedString()
		if err != nil {
			return nil, err
		}
		t, _ := time.Parse("_2-Jan-2006 15:04:05 -0700", s)
		return EventFetch{Part: imapengine.FetchSimpleAttribute{Attr: imapengine.FetchAttrInternalDate{Date: t}}}, nil

	case upper == "RFC822.SIZE":
		if err := p.dec.ReadSP(); err != nil {
			return nil, err
		}
		n, err := p.dec.ReadNumber()
		if err != nil {
			return nil, err
		}
		return EventFetch{Part: imapengine.FetchSimpleAttribute{Attr: imapengine.FetchAttrRFC822Size{Size: n}}}, nil

	case upper == "ENVELOPE":
		if err := p.dec.ReadSP(); err != nil {
			return nil, err
		}
		env, err := p.parseEnvelope()
		if err != nil {
			return nil, err
		}
		return EventFetch{Part: imapengine.FetchSimpleAttribute{Attr: imapengine.FetchAttrEnvelope{Envelope: env}}}, nil

	case upper == "BODYSTRUCTURE" || upper == "BODY":
		if err := p.dec.ReadSP(); err != nil {
			return nil, err
		}
		bs, err := p.parseBodyStructure()
		if err != nil {
			return nil, err
		}
		return EventFetch{Part: imapengine.FetchSimpleAttribute{Attr: imapengine.FetchAttrBodyStructure{BodyStructure: bs}}}, nil

	case upper == "MODSEQ":
		if err := p.dec.ReadSP(); err != nil {
			return nil, err
		}
		var modSeq uint64
		err := p.dec.ReadList(func() error {
			n, err := p.dec.ReadNumber64()
			if err != nil {
				return err
			}
			modSeq = n
			return nil
		})
		if err != nil {
			return nil, err
		}
		return EventFetch{Part: imapengine.FetchSimpleAttribute{Attr: imapengine.FetchAttrModSeq{ModSeq: modSeq}}}, nil

	case upper == "X-GM-MSGID":
		if err := p.dec.ReadSP(); err != nil {
			return nil, err
		}
		n, err := p.dec.ReadNumber64()
		if err != nil {
			return nil, err
		}
		return EventFetch{Part: imapengine.FetchSimpleAttribute{Attr: imapengine.FetchAttrGmailMsgID{MsgID: n}}}, nil

	case upper == "X-GM-THRID":
		if err := p.dec.ReadSP(); err != nil {
			return nil, err
		}
		n, err := p.dec.ReadNumber64()
		if err != nil {
			return nil, err
		}
		return EventFetch{Part: imapengine.FetchSimpleAttribute{Attr: imapengine.FetchAttrGmailThrID{ThrID: n}}}, nil

	case upper == "X-GM-LABELS":
		if err := p.dec.ReadSP(); err != nil {
			return nil, err
		}
		var labels []string
		err := p.dec.ReadList(func() error {
			s, err := p.dec.ReadAString()
			if err != nil {
				return err
			}
			labels = append(labels, s)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return EventFetch{Part: imapengine.FetchSimpleAttribute{Attr: imapengine.FetchAttrGmailLabels{Labels: labels}}}, nil

	case strings.HasPrefix(upper, "BINARY.SIZE"):
		if err := p.dec.ReadSP(); err != nil {
			return nil, err
		}
		n, err := p.dec.ReadNumber()
		if err != nil {
			return nil, err
		}
		return EventFetch{Part: imapengine.FetchSimpleAttribute{Attr: imapengine.FetchAttrBinarySectionSize{
			Part: parseSectionPart(name),
			Size: n,
		}}}, nil

	case strings.HasPrefix(upper, "BODY[") || strings.HasPrefix(upper, "BODY.PEEK[") || strings.HasPrefix(upper, "BINARY["):
		if err := p.dec.ReadSP(); err != nil {
			return nil, err
		}
		return p.beginStreamingSection(fs, name)

	default:
		return nil, &ParseError{Kind: "unknown fetch attribute " + name, Offset: p.dec.Pos()}
	}
}

func (p *Parser) beginStreamingSection(fs *fetchState, section string) (Event, error) {
	b, err := p.dec.PeekByte()
	if err != nil {
		return nil, err
	}
	switch b {
	case 'N', 'n':
		_, ok, err := p.dec.ReadNString()
		if err != nil {
			return nil, err
		}
		if ok {
			return nil, &ParseError{Kind: "expected NIL", Offset: p.dec.Pos()}
		}
		fs.stream = &fetchStream{buffered: []byte{}}
		return EventFetch{Part: imapengine.FetchStreamingBegin{Section: section, Size: 0}}, nil
	case '"':
		s, err := p.dec.ReadQuotedString()
		if err != nil {
			return nil, err
		}
		fs.stream = &fetchStream{buffered: []byte(s)}
		return EventFetch{Part: imapengine.FetchStreamingBegin{Section: section, Size: int64(len(s))}}, nil
	case '{', '~':
		info, err := p.dec.ReadLiteralInfo()
		if err != nil {
			return nil, err
		}
		fs.stream = &fetchStream{remaining: info.Size}
		return EventFetch{Part: imapengine.FetchStreamingBegin{Section: section, Size: info.Size}}, nil
	default:
		return nil, &ParseError{Kind: "expected section value", Offset: p.dec.Pos()}
	}
}

// parseSectionPart extracts the numeric part-path from an attribute name
// such as "BINARY.SIZE[1.2]", returning nil if the bracketed content isn't
// a plain numeric path (e.g. it names HEADER/TEXT/MIME instead).
func parseSectionPart(name string) []int {
	i := strings.IndexByte(name, '[')
	j := strings.IndexByte(name, ']')
	if i < 0 || j < 0 || j <= i+1 {
		return nil
	}
	inside := name[i+1 : j]
	var out []int
	for _, s := range strings.Split(inside, ".") {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil
		}
		out = append(out, n)
	}
	return out
}
