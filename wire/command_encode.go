package wire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kvio/imapengine"
)

// DriveCommand encodes one complete tagged command line into buf, ready to
// be read out with EncodeBuffer.NextChunk. For AUTHENTICATE and IDLE it
// writes only the opening line; their later rounds (continuation responses,
// DONE) and the whole of APPEND are encoded via DriveCommandStreamPart.
func DriveCommand(buf *EncodeBuffer, options imapengine.EncodingOptions, tc imapengine.TaggedCommand) error {
	e := NewEncoder(buf, options)
	e.Atom(string(tc.Tag))
	e.SP()
	if err := encodeCommandVerb(e, tc.Command); err != nil {
		return err
	}
	e.CRLF()
	return nil
}

func encodeCommandVerb(e *Encoder, cmd imapengine.Command) error {
	switch c := cmd.(type) {
	case imapengine.CommandCapability:
		e.Atom("CAPABILITY")
	case imapengine.CommandNoop:
		e.Atom("NOOP")
	case imapengine.CommandLogout:
		e.Atom("LOGOUT")
	case imapengine.CommandStartTLS:
		e.Atom("STARTTLS")
	case imapengine.CommandLogin:
		e.Atom("LOGIN")
		e.SP()
		e.String(c.Username)
		e.SP()
		e.String(c.Password)
	case imapengine.CommandAuthenticate:
		e.Atom("AUTHENTICATE")
		e.SP()
		e.Atom(c.Mechanism)
		if c.HasInitial {
			e.SP()
			if len(c.Initial) == 0 {
				e.Atom("=")
			} else {
				e.Atom(encodeSASLBase64(c.Initial))
			}
		}
	case imapengine.CommandSelect:
		e.Atom("SELECT")
		e.SP()
		e.Mailbox(c.Mailbox)
		encodeSelectOptions(e, c.Options)
	case imapengine.CommandExamine:
		e.Atom("EXAMINE")
		e.SP()
		e.Mailbox(c.Mailbox)
		encodeSelectOptions(e, c.Options)
	case imapengine.CommandCreate:
		e.Atom("CREATE")
		e.SP()
		e.Mailbox(c.Mailbox)
		if len(c.SpecialUse) > 0 {
			e.Atom(" (USE (")
			for i, u := range c.SpecialUse {
				if i > 0 {
					e.SP()
				}
				e.Atom(string(u))
			}
			e.Atom("))")
		}
	case imapengine.CommandDelete:
		e.Atom("DELETE")
		e.SP()
		e.Mailbox(c.Mailbox)
	case imapengine.CommandRename:
		e.Atom("RENAME")
		e.SP()
		e.Mailbox(c.From)
		e.SP()
		e.Mailbox(c.To)
	case imapengine.CommandSubscribe:
		e.Atom("SUBSCRIBE")
		e.SP()
		e.Mailbox(c.Mailbox)
	case imapengine.CommandUnsubscribe:
		e.Atom("UNSUBSCRIBE")
		e.SP()
		e.Mailbox(c.Mailbox)
	case imapengine.CommandList:
		encodeList(e, c)
	case imapengine.CommandLSub:
		e.Atom("LSUB")
		e.SP()
		e.Mailbox(c.Reference)
		e.SP()
		e.String(c.Pattern)
	case imapengine.CommandStatus:
		e.Atom("STATUS")
		e.SP()
		e.Mailbox(c.Mailbox)
		e.SP()
		encodeStatusAttrs(e, c.Options)
	case imapengine.CommandCheck:
		e.Atom("CHECK")
	case imapengine.CommandClose:
		e.Atom("CLOSE")
	case imapengine.CommandUnselect:
		e.Atom("UNSELECT")
	case imapengine.CommandExpunge:
		if c.UIDs != nil {
			e.Atom("UID EXPUNGE")
			e.SP()
			e.Atom(c.UIDs.String())
		} else {
			e.Atom("EXPUNGE")
		}
	case imapengine.CommandIdleStart:
		e.Atom("IDLE")
	case imapengine.CommandSearch:
		encodeSearch(e, c)
	case imapengine.CommandFetch:
		encodeFetch(e, c)
	case imapengine.CommandStore:
		encodeStore(e, c)
	case imapengine.CommandCopy:
		encodeSeqCommand(e, "COPY", c.UID, c.Seq)
		e.SP()
		e.Mailbox(c.Mailbox)
	case imapengine.CommandMove:
		encodeSeqCommand(e, "MOVE", c.UID, c.Seq)
		e.SP()
		e.Mailbox(c.Mailbox)
	case imapengine.CommandID:
		e.Atom("ID")
		e.SP()
		encodeIDData(e, c.Data)
	case imapengine.CommandNamespace:
		e.Atom("NAMESPACE")
	case imapengine.CommandEnable:
		e.Atom("ENABLE")
		for _, capability := range c.Caps {
			e.SP()
			e.Atom(string(capability))
		}
	case imapengine.CommandGetQuota:
		e.Atom("GETQUOTA")
		e.SP()
		e.AString(c.Root)
	case imapengine.CommandGetQuotaRoot:
		e.Atom("GETQUOTAROOT")
		e.SP()
		e.Mailbox(c.Mailbox)
	case imapengine.CommandSetQuota:
		e.Atom("SETQUOTA")
		e.SP()
		e.AString(c.Root)
		e.SP()
		e.BeginList()
		first := true
		for res, limit := range c.Resources {
			if !first {
				e.SP()
			}
			first = false
			e.Atom(string(res))
			e.SP()
			e.Number64(uint64(limit))
		}
		e.EndList()
	case imapengine.CommandGetMetadata:
		encodeGetMetadata(e, c)
	case imapengine.CommandSetMetadata:
		encodeSetMetadata(e, c)
	case imapengine.CommandGetACL:
		e.Atom("GETACL")
		e.SP()
		e.Mailbox(c.Mailbox)
	case imapengine.CommandSetACL:
		e.Atom("SETACL")
		e.SP()
		e.Mailbox(c.Mailbox)
		e.SP()
		e.AString(string(c.Identifier))
		e.SP()
		encodeRightModification(e, c.Modification, c.Rights)
	case imapengine.CommandDeleteACL:
		e.Atom("DELETEACL")
		e.SP()
		e.Mailbox(c.Mailbox)
		e.SP()
		e.AString(string(c.Identifier))
	case imapengine.CommandListRights:
		e.Atom("LISTRIGHTS")
		e.SP()
		e.Mailbox(c.Mailbox)
		e.SP()
		e.AString(string(c.Identifier))
	case imapengine.CommandMyRights:
		e.Atom("MYRIGHTS")
		e.SP()
		e.Mailbox(c.Mailbox)
	default:
		return fmt.Errorf("imapengine/wire: unencodable command %T", cmd)
	}
	return nil
}

func encodeRightModification(e *Encoder, mod imapengine.RightModification, rights imapengine.RightSet) {
	switch mod {
	case imapengine.RightModificationAdd:
		e.Atom("+" + rights.String())
	case imapengine.RightModificationRemove:
		e.Atom("-" + rights.String())
	default:
		e.Atom(rights.String())
	}
}

func encodeSelectOptions(e *Encoder, opts imapengine.SelectOptions) {
	if !opts.CondStore {
		return
	}
	e.Atom(" (CONDSTORE)")
}

func encodeList(e *Encoder, c imapengine.CommandList) {
	e.Atom("LIST")
	opts := c.Options
	var selectors []string
	if opts.SelectSubscribed {
		selectors = append(selectors, "SUBSCRIBED")
	}
	if opts.SelectRemote {
		selectors = append(selectors, "REMOTE")
	}
	if opts.SelectRecursiveMatch {
		selectors = append(selectors, "RECURSIVEMATCH")
	}
	if opts.SelectSpecialUse {
		selectors = append(selectors, "SPECIAL-USE")
	}
	if len(selectors) > 0 {
		e.SP()
		e.BeginList()
		e.Atom(strings.Join(selectors, " "))
		e.EndList()
	}
	e.SP()
	e.Mailbox(c.Reference)
	e.SP()
	e.String(c.Pattern)

	var ret []string
	if opts.ReturnSubscribed {
		ret = append(ret, "SUBSCRIBED")
	}
	if opts.ReturnChildren {
		ret = append(ret, "CHILDREN")
	}
	if opts.ReturnSpecialUse {
		ret = append(ret, "SPECIAL-USE")
	}
	if opts.ReturnStatus != nil {
		var sb strings.Builder
		sb.WriteString("STATUS (")
		sb.WriteString(statusAttrString(*opts.ReturnStatus))
		sb.WriteByte(')')
		ret = append(ret, sb.String())
	}
	if len(ret) > 0 {
		e.Atom(" RETURN (")
		e.Atom(strings.Join(ret, " "))
		e.Atom(")")
	}
}

func statusAttrString(opts imapengine.StatusOptions) string {
	buf := NewEncodeBuffer()
	e := NewEncoder(buf, imapengine.DefaultEncodingOptions())
	encodeStatusAttrNames(e, opts)
	return string(buf.Bytes())
}

func encodeStatusAttrs(e *Encoder, opts imapengine.StatusOptions) {
	e.BeginList()
	encodeStatusAttrNames(e, opts)
	e.EndList()
}

func encodeStatusAttrNames(e *Encoder, opts imapengine.StatusOptions) {
	first := true
	write := func(name string) {
		if !first {
			e.SP()
		}
		first = false
		e.Atom(name)
	}
	if opts.NumMessages {
		write("MESSAGES")
	}
	if opts.UIDNext {
		write("UIDNEXT")
	}
	if opts.UIDValidity {
		write("UIDVALIDITY")
	}
	if opts.NumUnseen {
		write("UNSEEN")
	}
	if opts.NumDeleted {
		write("DELETED")
	}
	if opts.Size {
		write("SIZE")
	}
	if opts.AppendLimit {
		write("APPENDLIMIT")
	}
	if opts.DeletedStorage {
		write("DELETED-STORAGE")
	}
	if opts.HighestModSeq {
		write("HIGHESTMODSEQ")
	}
}

func encodeSeqCommand(e *Encoder, verb string, uid bool, seq imapengine.NumSet) {
	if uid {
		e.Atom("UID " + verb)
	} else {
		e.Atom(verb)
	}
	e.SP()
	e.Atom(seq.String())
}

func encodeStore(e *Encoder, c imapengine.CommandStore) {
	encodeSeqCommand(e, "STORE", c.UID, c.Seq)
	e.SP()
	if c.Options.UnchangedSince != 0 {
		e.Atom("(UNCHANGEDSINCE ")
		e.Number64(c.Options.UnchangedSince)
		e.Atom(") ")
	}
	switch c.Flags.Op {
	case imapengine.StoreFlagsAdd:
		e.Atom("+FLAGS")
	case imapengine.StoreFlagsDel:
		e.Atom("-FLAGS")
	default:
		e.Atom("FLAGS")
	}
	if c.Flags.Silent {
		e.Atom(".SILENT")
	}
	e.SP()
	names := make([]string, len(c.Flags.Flags))
	for i, f := range c.Flags.Flags {
		names[i] = string(f)
	}
	e.Flags(names)
}

func encodeIDData(e *Encoder, data imapengine.IDData) {
	fields := []struct{ key, val string }{
		{"name", data.Name}, {"version", data.Version}, {"os", data.OS},
		{"os-version", data.OSVersion}, {"vendor", data.Vendor},
		{"support-url", data.SupportURL}, {"address", data.Address},
		{"date", data.Date}, {"command", data.Command},
		{"arguments", data.Arguments}, {"environment", data.Environment},
	}
	var present []struct{ key, val string }
	for _, f := range fields {
		if f.val != "" {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		e.Nil()
		return
	}
	e.BeginList()
	for i, f := range present {
		if i > 0 {
			e.SP()
		}
		e.String(f.key)
		e.SP()
		e.String(f.val)
	}
	e.EndList()
}

func encodeGetMetadata(e *Encoder, c imapengine.CommandGetMetadata) {
	e.Atom("GETMETADATA")
	e.SP()
	var opts []string
	if c.Depth == imapengine.MetadataDepthOne {
		opts = append(opts, "DEPTH 1")
	} else if c.Depth == imapengine.MetadataDepthInfinity {
		opts = append(opts, "DEPTH infinity")
	}
	if c.MaxSize != 0 {
		opts = append(opts, "MAXSIZE "+strconv.FormatInt(c.MaxSize, 10))
	}
	if len(opts) > 0 {
		e.BeginList()
		e.Atom(strings.Join(opts, " "))
		e.EndList()
		e.SP()
	}
	e.Mailbox(c.Mailbox)
	e.SP()
	e.BeginList()
	for i, entry := range c.Entries {
		if i > 0 {
			e.SP()
		}
		e.String(entry)
	}
	e.EndList()
}

func encodeSetMetadata(e *Encoder, c imapengine.CommandSetMetadata) {
	e.Atom("SETMETADATA")
	e.SP()
	e.Mailbox(c.Mailbox)
	e.SP()
	e.BeginList()
	first := true
	for name, val := range c.Entries {
		if !first {
			e.SP()
		}
		first = false
		e.String(name)
		e.SP()
		e.NString(val)
	}
	e.EndList()
}

// encodeSearch writes a SEARCH/UID SEARCH command line, including RFC 4731
// RETURN options when any are requested.
func encodeSearch(e *Encoder, c imapengine.CommandSearch) {
	if c.UID {
		e.Atom("UID SEARCH")
	} else {
		e.Atom("SEARCH")
	}
	var ret []string
	if c.Options.ReturnMin {
		ret = append(ret, "MIN")
	}
	if c.Options.ReturnMax {
		ret = append(ret, "MAX")
	}
	if c.Options.ReturnAll {
		ret = append(ret, "ALL")
	}
	if c.Options.ReturnCount {
		ret = append(ret, "COUNT")
	}
	if c.Options.ReturnSave {
		ret = append(ret, "SAVE")
	}
	if len(ret) > 0 {
		e.Atom(" RETURN (")
		e.Atom(strings.Join(ret, " "))
		e.Atom(")")
	}
	e.SP()
	if c.Charset != "" {
		e.Atom("CHARSET " + c.Charset)
		e.SP()
	}
	encodeSearchCriteria(e, c.Criteria, true)
}

func encodeSearchCriteria(e *Encoder, crit imapengine.SearchCriteria, top bool) {
	var terms []func()
	add := func(fn func()) { terms = append(terms, fn) }

	for _, s := range crit.SeqNum {
		s := s
		add(func() { e.Atom(s.String()) })
	}
	for _, u := range crit.UID {
		u := u
		add(func() { e.Atom("UID " + u.String()) })
	}
	if !crit.Since.IsZero() {
		t := crit.Since
		add(func() { e.Atom("SINCE "); e.Date(t) })
	}
	if !crit.Before.IsZero() {
		t := crit.Before
		add(func() { e.Atom("BEFORE "); e.Date(t) })
	}
	if !crit.SentSince.IsZero() {
		t := crit.SentSince
		add(func() { e.Atom("SENTSINCE "); e.Date(t) })
	}
	if !crit.SentBefore.IsZero() {
		t := crit.SentBefore
		add(func() { e.Atom("SENTBEFORE "); e.Date(t) })
	}
	for _, h := range crit.Header {
		h := h
		add(func() {
			e.Atom("HEADER ")
			e.AString(h.Key)
			e.SP()
			e.String(h.Value)
		})
	}
	for _, b := range crit.Body {
		b := b
		add(func() { e.Atom("BODY "); e.String(b) })
	}
	for _, t := range crit.Text {
		t := t
		add(func() { e.Atom("TEXT "); e.String(t) })
	}
	for _, f := range crit.Flag {
		f := f
		add(func() { e.Atom(searchFlagKeyword(f, false)) })
	}
	for _, f := range crit.NotFlag {
		f := f
		add(func() { e.Atom(searchFlagKeyword(f, true)) })
	}
	if crit.Larger != 0 {
		n := crit.Larger
		add(func() { e.Atom("LARGER "); e.Number64(uint64(n)) })
	}
	if crit.Smaller != 0 {
		n := crit.Smaller
		add(func() { e.Atom("SMALLER "); e.Number64(uint64(n)) })
	}
	for _, not := range crit.Not {
		not := not
		add(func() { e.Atom("NOT "); encodeSearchCriteria(e, not, false) })
	}
	for _, or := range crit.Or {
		or := or
		add(func() {
			e.Atom("OR ")
			encodeSearchCriteria(e, or[0], false)
			e.SP()
			encodeSearchCriteria(e, or[1], false)
		})
	}
	if crit.ModSeq != nil {
		m := crit.ModSeq
		add(func() {
			e.Atom("MODSEQ ")
			e.Number64(m.ModSeq)
		})
	}

	if len(terms) == 0 {
		e.Atom("ALL")
		return
	}
	if !top {
		e.BeginList()
	}
	for i, fn := range terms {
		if i > 0 {
			e.SP()
		}
		fn()
	}
	if !top {
		e.EndList()
	}
}

// searchFlagKeyword maps a message flag to its dedicated SEARCH key
// (ANSWERED, SEEN, ...) for the standard system flags, falling back to the
// generic KEYWORD/UNKEYWORD form for anything else (custom keywords, $-flags).
func searchFlagKeyword(f imapengine.Flag, negate bool) string {
	neg := func(pos, negPrefix string) string {
		if negate {
			return negPrefix
		}
		return pos
	}
	switch f {
	case imapengine.FlagAnswered:
		return neg("ANSWERED", "UNANSWERED")
	case imapengine.FlagDeleted:
		return neg("DELETED", "UNDELETED")
	case imapengine.FlagDraft:
		return neg("DRAFT", "UNDRAFT")
	case imapengine.FlagFlagged:
		return neg("FLAGGED", "UNFLAGGED")
	case imapengine.FlagSeen:
		return neg("SEEN", "UNSEEN")
	default:
		if negate {
			return "UNKEYWORD " + string(f)
		}
		return "KEYWORD " + string(f)
	}
}

func encodeFetch(e *Encoder, c imapengine.CommandFetch) {
	if c.UID {
		e.Atom("UID FETCH")
	} else {
		e.Atom("FETCH")
	}
	e.SP()
	e.Atom(c.Seq.String())
	e.SP()
	encodeFetchItems(e, c.Items)
	if c.Items.ChangedSince != 0 {
		e.Atom(" (CHANGEDSINCE ")
		e.Number64(c.Items.ChangedSince)
		e.Atom(")")
	}
}

func encodeFetchItems(e *Encoder, items imapengine.FetchOptions) {
	var parts []string
	if items.Envelope {
		parts = append(parts, "ENVELOPE")
	}
	if items.Flags {
		parts = append(parts, "FLAGS")
	}
	if items.InternalDate {
		parts = append(parts, "INTERNALDATE")
	}
	if items.RFC822Size {
		parts = append(parts, "RFC822.SIZE")
	}
	if items.UID {
		parts = append(parts, "UID")
	}
	if items.ModSeq {
		parts = append(parts, "MODSEQ")
	}
	if items.BodyStructure != nil {
		if items.BodyStructure.Extended {
			parts = append(parts, "BODYSTRUCTURE")
		} else {
			parts = append(parts, "BODY")
		}
	}
	for _, s := range items.BodySection {
		parts = append(parts, fetchBodySectionString(s))
	}
	for _, s := range items.BinarySection {
		parts = append(parts, fetchBinarySectionString(s))
	}
	for _, s := range items.BinarySectionSize {
		parts = append(parts, "BINARY.SIZE"+sectionBracket(s.Part, nil))
	}
	if items.Gmail.MsgID {
		parts = append(parts, "X-GM-MSGID")
	}
	if items.Gmail.ThrID {
		parts = append(parts, "X-GM-THRID")
	}
	if items.Gmail.Labels {
		parts = append(parts, "X-GM-LABELS")
	}

	if len(parts) == 1 {
		e.Atom(parts[0])
		return
	}
	e.BeginList()
	e.Atom(strings.Join(parts, " "))
	e.EndList()
}

func sectionBracket(part []int, trailer *string) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, p := range part {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.Itoa(p))
	}
	if trailer != nil {
		if len(part) > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(*trailer)
	}
	sb.WriteByte(']')
	return sb.String()
}

func fetchBodySectionString(s *imapengine.FetchItemBodySection) string {
	var trailer *string
	switch s.Specifier {
	case imapengine.PartSpecifierHeader:
		if len(s.HeaderFields) > 0 {
			v := "HEADER.FIELDS (" + strings.Join(s.HeaderFields, " ") + ")"
			trailer = &v
		} else if len(s.HeaderFieldsNot) > 0 {
			v := "HEADER.FIELDS.NOT (" + strings.Join(s.HeaderFieldsNot, " ") + ")"
			trailer = &v
		} else {
			v := "HEADER"
			trailer = &v
		}
	case imapengine.PartSpecifierMIME:
		v := "MIME"
		trailer = &v
	case imapengine.PartSpecifierText:
		v := "TEXT"
		trailer = &v
	}
	name := "BODY"
	if s.Peek {
		name = "BODY.PEEK"
	}
	out := name + sectionBracket(s.Part, trailer)
	if s.Partial != nil {
		out += "<" + strconv.FormatInt(s.Partial.Offset, 10) + "." + strconv.FormatInt(s.Partial.Size, 10) + ">"
	}
	return out
}

func fetchBinarySectionString(s *imapengine.FetchItemBinarySection) string {
	name := "BINARY"
	if s.Peek {
		name = "BINARY.PEEK"
	}
	out := name + sectionBracket(s.Part, nil)
	if s.Partial != nil {
		out += "<" + strconv.FormatInt(s.Partial.Offset, 10) + "." + strconv.FormatInt(s.Partial.Size, 10) + ">"
	}
	return out
}
