package engine

import "github.com/kvio/imapengine"

// mode is the engine's top-level state, excluding the transient
// mid-literal-wait overlay (tracked separately by Engine.literalWait so
// that a literal wait nested inside Idle/Authenticating/Appending can
// "return" to the right outer mode once the continuation arrives).
type mode int

const (
	modeNormal mode = iota
	modeIdleAwaitingStart
	modeIdleStarted
	modeAuthenticating
	modeAppending
)

func (m mode) String() string {
	switch m {
	case modeNormal:
		return "Normal"
	case modeIdleAwaitingStart:
		return "Idle(AwaitingStart)"
	case modeIdleStarted:
		return "Idle(Started)"
	case modeAuthenticating:
		return "Authenticating"
	case modeAppending:
		return "Appending"
	default:
		return "Unknown"
	}
}

// appendState tracks legal next steps within the APPEND/CATENATE
// sub-state-machine, matching the regular expression in AppendSubcommand's
// doc comment:
//
//	Start (BeginMessage MessageBytes* EndMessage
//	     | BeginCatenate (CatenateURL | CatenateData[Begin Bytes* End])* EndCatenate)*
//	Finish
type appendState int

const (
	appendReady         appendState = iota // after Start/EndMessage/EndCatenate, or before Finish
	appendInMessage                        // after BeginMessage, before EndMessage
	appendInCatenate                       // after BeginCatenate, before EndCatenate
	appendInCatenateData                   // after CatenateDataBegin, before CatenateDataEnd
)

// nextAppendState validates sub against the current appendState, returning
// the state to transition to and whether sub is legal here.
func nextAppendState(cur appendState, sub imapengine.AppendSubcommand) (appendState, bool) {
	switch s := sub.(type) {
	case imapengine.AppendBeginMessage:
		if cur != appendReady {
			return cur, false
		}
		return appendInMessage, true
	case imapengine.AppendMessageBytes:
		return cur, cur == appendInMessage
	case imapengine.AppendEndMessage:
		if cur != appendInMessage {
			return cur, false
		}
		return appendReady, true
	case imapengine.AppendBeginCatenate:
		if cur != appendReady {
			return cur, false
		}
		return appendInCatenate, true
	case imapengine.AppendCatenateURL:
		return cur, cur == appendInCatenate
	case imapengine.AppendCatenateDataBegin:
		if cur != appendInCatenate {
			return cur, false
		}
		return appendInCatenateData, true
	case imapengine.AppendCatenateDataBytes:
		return cur, cur == appendInCatenateData
	case imapengine.AppendCatenateDataEnd:
		if cur != appendInCatenateData {
			return cur, false
		}
		return appendInCatenate, true
	case imapengine.AppendEndCatenate:
		if cur != appendInCatenate {
			return cur, false
		}
		return appendReady, true
	case imapengine.AppendFinish:
		return cur, cur == appendReady
	default:
		_ = s
		return cur, false
	}
}

// engineChunk is one slice of wire bytes produced by encoding a single
// CommandStreamPart, annotated with what the engine must do when the chunk
// is actually released to the transport.
type engineChunk struct {
	bytes               []byte
	waitForContinuation bool
	last                bool // final chunk produced for its part
	done                *imapengine.CompletionHandle
	tag                 imapengine.Tag // command this chunk belongs to, for literalWait bookkeeping
}

func (c engineChunk) toOutgoing() imapengine.OutgoingChunk {
	return imapengine.OutgoingChunk{
		Bytes:               c.bytes,
		Done:                c.done,
		ShouldSucceedHandle: c.last && !c.waitForContinuation,
	}
}
