// Package engine implements the client-side IMAP4rev1 state machine: it
// sequences outgoing command chunks against inbound responses, enforces
// mode transitions (normal / IDLE / AUTHENTICATE / APPEND), and exposes a
// synchronous, non-blocking API (SendCommand / ReceiveResponse /
// ReceiveContinuation / Flush) that a transport owner drives in a loop. The
// engine itself never touches a network connection and never suspends.
package engine

import (
	"fmt"

	"github.com/kvio/imapengine"
)

// ParseError wraps a malformed-input error surfaced by the wire decoder.
// The engine treats any ParseError as fatal to the connection.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("imapengine: parse error: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// UnexpectedResponse reports a response that is well-formed but illegal in
// the engine's current state, e.g. an AuthenticationChallenge event while
// not Authenticating.
type UnexpectedResponse struct {
	Reason string
}

func (e *UnexpectedResponse) Error() string {
	return "imapengine: unexpected response: " + e.Reason
}

// UnexpectedContinuationRequest reports a "+" line arriving when the engine
// has nothing pending that a continuation could apply to.
type UnexpectedContinuationRequest struct {
	Reason string
}

func (e *UnexpectedContinuationRequest) Error() string {
	return "imapengine: unexpected continuation request: " + e.Reason
}

// InvalidCommandForState reports a command submitted while the engine's
// mode forbids it (e.g. a normal command while idling or authenticating).
type InvalidCommandForState struct {
	State string
	Part  imapengine.CommandStreamPart
}

func (e *InvalidCommandForState) Error() string {
	return fmt.Sprintf("imapengine: invalid command for state %s: %T", e.State, e.Part)
}

// DuplicateCommandTag reports a TaggedPart whose tag is already outstanding.
type DuplicateCommandTag struct {
	Tag imapengine.Tag
}

func (e *DuplicateCommandTag) Error() string {
	return fmt.Sprintf("imapengine: duplicate command tag %q", e.Tag)
}

// InvalidClientState reports an invariant breach the engine detected in its
// own bookkeeping. It should never occur from valid inputs; seeing one
// indicates a bug in the engine, not in the caller.
type InvalidClientState struct {
	Reason string
}

func (e *InvalidClientState) Error() string {
	return "imapengine: invalid client state: " + e.Reason
}
