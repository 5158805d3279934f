package wire

import (
	"fmt"

	"github.com/kvio/imapengine"
)

// AppendEncoder drives the ordered APPEND/CATENATE sub-state machine
// (imapengine.AppendSubcommand) onto an EncodeBuffer. Unlike a simple
// command, APPEND's wire form is built incrementally: the byte count of
// each message literal is known before its bytes arrive, but the bytes
// themselves stream in separately, so state must be threaded across calls.
type AppendEncoder struct {
	options  imapengine.EncodingOptions
	catFirst bool
}

// NewAppendEncoder returns an AppendEncoder for one APPEND command.
func NewAppendEncoder(options imapengine.EncodingOptions) *AppendEncoder {
	return &AppendEncoder{options: options}
}

// Drive encodes one AppendSubcommand step into buf.
func (a *AppendEncoder) Drive(buf *EncodeBuffer, sub imapengine.AppendSubcommand) error {
	e := NewEncoder(buf, a.options)
	switch s := sub.(type) {
	case imapengine.AppendStart:
		e.Atom(string(s.Tag))
		e.SP()
		e.Atom("APPEND")
		e.SP()
		e.Mailbox(s.Mailbox)

	case imapengine.AppendBeginMessage:
		e.SP()
		encodeAppendOptions(e, s.Options)
		e.BeginStreamedLiteral(s.ByteCount)

	case imapengine.AppendMessageBytes:
		buf.WriteBytes(s.Data)

	case imapengine.AppendEndMessage:
		// The literal payload is exactly ByteCount bytes with no trailing
		// delimiter of its own; nothing to write here.

	case imapengine.AppendBeginCatenate:
		e.SP()
		encodeAppendOptions(e, s.Options)
		e.Atom("CATENATE (")
		a.catFirst = true

	case imapengine.AppendCatenateURL:
		a.writeCatSeparator(e)
		e.Atom("URL ")
		e.String(string(s.URL))

	case imapengine.AppendCatenateDataBegin:
		a.writeCatSeparator(e)
		e.Atom("TEXT ")
		e.BeginStreamedLiteral(s.Size)

	case imapengine.AppendCatenateDataBytes:
		buf.WriteBytes(s.Data)

	case imapengine.AppendCatenateDataEnd:
		// No trailing delimiter; the next cat-part (if any) writes its own
		// leading separator.

	case imapengine.AppendEndCatenate:
		e.Atom(")")

	case imapengine.AppendFinish:
		e.CRLF()

	default:
		return fmt.Errorf("imapengine/wire: unencodable append subcommand %T", sub)
	}
	return nil
}

func (a *AppendEncoder) writeCatSeparator(e *Encoder) {
	if !a.catFirst {
		e.SP()
	}
	a.catFirst = false
}

func encodeAppendOptions(e *Encoder, opts imapengine.AppendOptions) {
	if len(opts.Flags) > 0 {
		names := make([]string, len(opts.Flags))
		for i, f := range opts.Flags {
			names[i] = string(f)
		}
		e.Flags(names)
		e.SP()
	}
	if !opts.Time.IsZero() {
		e.DateTime(opts.Time)
		e.SP()
	}
}

// DriveCommandStreamPart encodes one CommandStreamPart into buf. For
// TaggedPart it writes a complete simple command line via DriveCommand. For
// AppendPart it delegates to appendEnc, which the caller must supply (one
// per in-progress APPEND) and reuse across the whole sub-state-machine. For
// IdleDonePart and ContinuationResponsePart it writes the fixed forms RFC
// 3501/4959 define for them.
func DriveCommandStreamPart(buf *EncodeBuffer, options imapengine.EncodingOptions, part imapengine.CommandStreamPart, appendEnc *AppendEncoder) error {
	switch p := part.(type) {
	case imapengine.TaggedPart:
		return DriveCommand(buf, options, p.Cmd)
	case imapengine.AppendPart:
		if appendEnc == nil {
			return fmt.Errorf("imapengine/wire: AppendPart requires an in-progress AppendEncoder")
		}
		return appendEnc.Drive(buf, p.Sub)
	case imapengine.IdleDonePart:
		buf.WriteString("DONE\r\n")
		return nil
	case imapengine.ContinuationResponsePart:
		buf.WriteString(encodeSASLBase64(p.Data))
		buf.WriteString("\r\n")
		return nil
	default:
		return fmt.Errorf("imapengine/wire: unencodable command stream part %T", part)
	}
}
