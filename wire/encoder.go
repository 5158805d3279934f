package wire

import (
	"strconv"
	"strings"
	"time"

	"github.com/kvio/imapengine"
)

// Encoder writes IMAP grammar leaves into an EncodeBuffer, deciding per the
// active EncodingOptions whether a string is sent as a quoted string, a
// synchronizing literal, or a non-synchronizing literal.
type Encoder struct {
	Buf     *EncodeBuffer
	Options imapengine.EncodingOptions
}

// NewEncoder returns an Encoder writing into buf under the given options.
func NewEncoder(buf *EncodeBuffer, options imapengine.EncodingOptions) *Encoder {
	return &Encoder{Buf: buf, Options: options}
}

func (e *Encoder) Atom(s string) { e.Buf.WriteString(s) }
func (e *Encoder) SP()           { e.Buf.WriteByte(' ') }
func (e *Encoder) CRLF()         { e.Buf.WriteString("\r\n") }
func (e *Encoder) Nil()          { e.Buf.WriteString("NIL") }

func (e *Encoder) Number(n uint32) { e.Buf.WriteString(strconv.FormatUint(uint64(n), 10)) }
func (e *Encoder) Number64(n uint64) { e.Buf.WriteString(strconv.FormatUint(n, 10)) }

func (e *Encoder) BeginList() { e.Buf.WriteByte('(') }
func (e *Encoder) EndList()   { e.Buf.WriteByte(')') }

// isAtomChar reports whether b may appear unquoted in an atom.
func isAtomChar(b byte) bool {
	if b < 0x20 || b > 0x7e {
		return false
	}
	switch b {
	case '(', ')', '{', ' ', '%', '*', '"', '\\', ']':
		return false
	}
	return true
}

// isQuotable reports whether s may be sent as a quoted string at all. Per
// the grammar, quoted-string text excludes '"' and '\\' outright (TEXT-CHAR
// minus those two); a string containing either must go out as a literal
// instead of a backslash-escaped quoted string.
func isQuotable(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == '"' || b == '\\' || b == '\r' || b == '\n' || b == 0 || b > 0x7e {
			return false
		}
	}
	return true
}

func isPlainAtom(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isAtomChar(s[i]) {
			return false
		}
	}
	return true
}

// QuotedString writes s as a quoted string, escaping '\\' and '"'.
func (e *Encoder) QuotedString(s string) {
	e.Buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			e.Buf.WriteByte('\\')
		}
		e.Buf.WriteByte(c)
	}
	e.Buf.WriteByte('"')
}

// literalHeader writes the "{N}" / "{N+}" / "~{N}" / "~{N+}" header and
// CRLF. It marks no stop point; callers writing a synchronizing literal
// mark one after the header.
func (e *Encoder) literalHeader(n int, nonSync, binary bool) {
	e.literalHeader64(int64(n), nonSync, binary)
}

func (e *Encoder) literalHeader64(n int64, nonSync, binary bool) {
	if binary {
		e.Buf.WriteByte('~')
	}
	e.Buf.WriteByte('{')
	e.Buf.WriteString(strconv.FormatInt(n, 10))
	if nonSync {
		e.Buf.WriteByte('+')
	}
	e.Buf.WriteByte('}')
	e.CRLF()
}

// BeginStreamedLiteral writes a literal header of n bytes for a payload
// that will arrive in a separate streaming step (the encoder cannot
// inspect its bytes up front, so the binary/literal8 form never applies
// here — only size and the active options decide synchronizing vs.
// non-synchronizing). A stop point is marked after the header only for the
// synchronizing form.
func (e *Encoder) BeginStreamedLiteral(n int64) {
	switch {
	case e.Options.UseNonSynchronizingLiteralPlus:
		e.literalHeader64(n, true, false)
	case e.Options.UseNonSynchronizingLiteralMinus && n <= 4096:
		e.literalHeader64(n, true, false)
	default:
		e.literalHeader64(n, false, false)
		e.Buf.MarkStopPoint()
	}
}

// Literal writes data as a literal, choosing the synchronizing /
// non-synchronizing / binary form from the active encoding options, and
// inserting a stop point when (and only when) the server must grant
// permission before the payload may follow.
func (e *Encoder) Literal(data []byte) {
	e.literalBytes(data, containsNUL(data))
}

func containsNUL(data []byte) bool {
	for _, b := range data {
		if b == 0 {
			return true
		}
	}
	return false
}

func asciiSafe(data []byte) bool {
	for _, b := range data {
		if b == 0 || b > 0x7e {
			return false
		}
	}
	return true
}

func (e *Encoder) literalBytes(data []byte, hasNUL bool) {
	n := len(data)
	switch {
	case hasNUL && e.Options.UseBinaryLiteral:
		e.literalHeader(n, true, true)
		e.Buf.WriteBytes(data)
	case e.Options.UseNonSynchronizingLiteralPlus && asciiSafe(data):
		e.literalHeader(n, true, false)
		e.Buf.WriteBytes(data)
	case e.Options.UseNonSynchronizingLiteralMinus && n <= 4096 && asciiSafe(data):
		e.literalHeader(n, true, false)
		e.Buf.WriteBytes(data)
	default:
		e.literalHeader(n, false, false)
		e.Buf.MarkStopPoint()
		e.Buf.WriteBytes(data)
	}
}

// String writes s using the best available encoding: quoted string if
// short, printable, and UseQuotedString is enabled; literal otherwise. If
// the quoted form would be longer than the literal form, the literal form
// is preferred.
func (e *Encoder) String(s string) {
	if e.Options.UseQuotedString && isQuotable(s) {
		quotedLen := len(s) + 2 // isQuotable guarantees no '"'/'\\' to escape
		if quotedLen <= len(s)+len("{}\r\n")+intDigits(len(s)) {
			e.QuotedString(s)
			return
		}
	}
	e.literalBytes([]byte(s), containsNUL([]byte(s)))
}

func intDigits(n int) int {
	if n == 0 {
		return 1
	}
	d := 0
	for n > 0 {
		d++
		n /= 10
	}
	return d
}

// AString writes an astring: a bare atom if s is non-empty and entirely
// atom-safe, otherwise a quoted string or literal via String.
func (e *Encoder) AString(s string) {
	if isPlainAtom(s) {
		e.Atom(s)
		return
	}
	e.String(s)
}

// NString writes s as a string, or NIL if s is nil.
func (e *Encoder) NString(s *string) {
	if s == nil {
		e.Nil()
		return
	}
	e.String(*s)
}

// Mailbox writes a mailbox name, special-casing INBOX per RFC 3501 §5.1.
func (e *Encoder) Mailbox(name string) {
	if strings.EqualFold(name, "INBOX") {
		e.Atom("INBOX")
		return
	}
	e.AString(name)
}

// Date writes a date in "DD-Mon-YYYY" form.
func (e *Encoder) Date(t time.Time) {
	e.QuotedString(t.Format("02-Jan-2006"))
}

// DateTime writes a date-time in "DD-Mon-YYYY HH:MM:SS +ZZZZ" form.
func (e *Encoder) DateTime(t time.Time) {
	e.QuotedString(t.Format("02-Jan-2006 15:04:05 -0700"))
}

// Flags writes a parenthesized flag list.
func (e *Encoder) Flags(flags []string) {
	e.BeginList()
	for i, f := range flags {
		if i > 0 {
			e.SP()
		}
		e.Atom(f)
	}
	e.EndList()
}
