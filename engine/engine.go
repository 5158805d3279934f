package engine

import (
	"github.com/kvio/imapengine"
	"github.com/kvio/imapengine/wire"
)

// Engine is a synchronous, non-blocking, single-connection IMAP4rev1 client
// state machine. A transport owner drives it by calling SendCommand for
// every outgoing CommandStreamPart, ReceiveResponse/ReceiveContinuation for
// every inbound wire.Event, and Flush whenever it wants to collect queued
// chunks that are not blocked on a continuation request. The engine never
// reads or writes a socket itself.
type Engine struct {
	Autotuner *Autotuner

	mode      mode
	modeTag   imapengine.Tag // tag owning the current Idle/Authenticating/Appending mode
	appendAt  appendState
	appendEnc *wire.AppendEncoder

	outstanding map[imapengine.Tag]struct{}

	pendingQueue []engineChunk
	literalWait  *imapengine.Tag // non-nil iff blocked awaiting a literal continuation
}

// New returns an Engine in Normal mode with no outstanding commands.
func New() *Engine {
	return &Engine{
		Autotuner:   NewAutotuner(),
		outstanding: make(map[imapengine.Tag]struct{}),
	}
}

// ContinuationAction is the result of ReceiveContinuation: either a batch of
// now-releasable outgoing chunks, or a synthesized event (IdleStartedEvent
// or AuthenticationChallengeEvent) for the caller to deliver to the user.
// Exactly one of Chunks or Event is populated.
type ContinuationAction struct {
	Chunks []imapengine.OutgoingChunk
	Event  imapengine.Response
}

// SendCommand submits one step of an outgoing command. It returns the first
// OutgoingChunk if the part's bytes (or its leading portion, up to the
// first literal stop point) can be released immediately; otherwise it
// returns nil and the chunk is queued for release by a later Flush or
// ReceiveContinuation call.
func (e *Engine) SendCommand(part imapengine.CommandStreamPart) (*imapengine.OutgoingChunk, error) {
	tag, ok := partTag(part)
	if ok {
		if _, dup := e.outstanding[tag]; dup {
			return nil, &DuplicateCommandTag{Tag: tag}
		}
	}

	if err := e.checkModeAllows(part); err != nil {
		return nil, err
	}

	e.applyModeTransition(part)

	chunks, err := e.encodeChunks(part)
	if err != nil {
		return nil, err
	}

	if ok {
		e.outstanding[tag] = struct{}{}
	}

	e.pendingQueue = append(e.pendingQueue, chunks...)

	if e.literalWait != nil || len(e.pendingQueue) != len(chunks) {
		// Blocked, or earlier parts still have unreleased chunks ahead of
		// this one in submission order: everything stays queued.
		return nil, nil
	}

	c := e.popPending()
	out := c.toOutgoing()
	if c.waitForContinuation {
		tag := c.tag
		e.literalWait = &tag
	}
	return &out, nil
}

// Flush releases every chunk at the front of the pending queue that does
// not require waiting for a Continuation Request, stopping at (and
// including) the next literal stop point, or returning nil if the engine
// is currently blocked on one.
func (e *Engine) Flush() []imapengine.OutgoingChunk {
	if e.literalWait != nil {
		return nil
	}
	return e.release()
}

// release pops chunks off the pending queue, stopping once a chunk that
// waits for continuation has been popped (and blocking on it) or the queue
// empties.
func (e *Engine) release() []imapengine.OutgoingChunk {
	var out []imapengine.OutgoingChunk
	for len(e.pendingQueue) > 0 {
		c := e.popPending()
		out = append(out, c.toOutgoing())
		if c.waitForContinuation {
			tag := c.tag
			e.literalWait = &tag
			break
		}
	}
	return out
}

func (e *Engine) popPending() engineChunk {
	c := e.pendingQueue[0]
	e.pendingQueue = e.pendingQueue[1:]
	return c
}

// ReceiveContinuation processes a "+" line.
func (e *Engine) ReceiveContinuation(cont imapengine.ContinuationRequest) (ContinuationAction, error) {
	if e.literalWait != nil {
		e.literalWait = nil
		return ContinuationAction{Chunks: e.release()}, nil
	}

	switch e.mode {
	case modeIdleAwaitingStart:
		e.mode = modeIdleStarted
		return ContinuationAction{Event: imapengine.IdleStartedEvent{}}, nil
	case modeIdleStarted:
		return ContinuationAction{}, &UnexpectedContinuationRequest{Reason: "IDLE already started"}
	case modeAuthenticating:
		return ContinuationAction{Event: imapengine.AuthenticationChallengeEvent{Data: cont.DecodeBase64()}}, nil
	default:
		return ContinuationAction{}, &UnexpectedContinuationRequest{Reason: "no literal or SASL exchange pending"}
	}
}

// ReceiveResponse applies the bookkeeping side effects of an inbound
// Response: completing outstanding tagged commands, resetting mode when the
// owning command completes, rejecting events that are illegal in the
// current mode, and feeding capability data to the Autotuner.
func (e *Engine) ReceiveResponse(resp imapengine.Response) error {
	switch v := resp.(type) {
	case imapengine.TaggedResponse:
		if e.literalWait != nil && v.Tag == *e.literalWait {
			return &UnexpectedResponse{Reason: "tagged response for a command whose literal is still awaited"}
		}
		if _, ok := e.outstanding[v.Tag]; !ok {
			return &UnexpectedResponse{Reason: "tagged response for unknown tag " + string(v.Tag)}
		}
		delete(e.outstanding, v.Tag)
		if e.mode != modeNormal && v.Tag == e.modeTag {
			e.mode = modeNormal
			e.modeTag = ""
			e.appendAt = appendReady
			e.appendEnc = nil
		}
		return nil

	case imapengine.UntaggedResponse:
		e.Autotuner.Observe(resp)
		return nil

	case imapengine.FatalResponse:
		return nil

	case imapengine.AuthenticationChallengeEvent:
		return &UnexpectedResponse{Reason: "AuthenticationChallengeEvent must be produced by ReceiveContinuation, not fed back in"}

	case imapengine.IdleStartedEvent:
		return &UnexpectedResponse{Reason: "IdleStartedEvent must be produced by ReceiveContinuation, not fed back in"}

	default:
		return &InvalidClientState{Reason: "unrecognized Response implementation"}
	}
}

// partTag returns the tag a part is submitted under, if any (IdleDonePart
// and ContinuationResponsePart have none of their own — they belong to the
// tag already recorded in modeTag).
func partTag(part imapengine.CommandStreamPart) (imapengine.Tag, bool) {
	switch p := part.(type) {
	case imapengine.TaggedPart:
		return p.Cmd.Tag, true
	case imapengine.AppendPart:
		if start, ok := p.Sub.(imapengine.AppendStart); ok {
			return start.Tag, true
		}
	}
	return "", false
}

func (e *Engine) checkModeAllows(part imapengine.CommandStreamPart) error {
	switch p := part.(type) {
	case imapengine.TaggedPart:
		if e.mode != modeNormal {
			return &InvalidCommandForState{State: e.mode.String(), Part: part}
		}
		return nil
	case imapengine.AppendPart:
		if _, isStart := p.Sub.(imapengine.AppendStart); isStart {
			if e.mode != modeNormal {
				return &InvalidCommandForState{State: e.mode.String(), Part: part}
			}
			return nil
		}
		if e.mode != modeAppending {
			return &InvalidCommandForState{State: e.mode.String(), Part: part}
		}
		if _, ok := nextAppendState(e.appendAt, p.Sub); !ok {
			return &InvalidCommandForState{State: e.mode.String(), Part: part}
		}
		return nil
	case imapengine.IdleDonePart:
		if e.mode != modeIdleStarted {
			return &InvalidCommandForState{State: e.mode.String(), Part: part}
		}
		return nil
	case imapengine.ContinuationResponsePart:
		if e.mode != modeAuthenticating {
			return &InvalidCommandForState{State: e.mode.String(), Part: part}
		}
		return nil
	default:
		return &InvalidClientState{Reason: "unrecognized CommandStreamPart implementation"}
	}
}

// applyModeTransition updates e.mode/e.modeTag/e.appendAt for parts that
// change mode. It assumes checkModeAllows has already approved part.
func (e *Engine) applyModeTransition(part imapengine.CommandStreamPart) {
	switch p := part.(type) {
	case imapengine.TaggedPart:
		switch p.Cmd.Command.(type) {
		case imapengine.CommandIdleStart:
			e.mode = modeIdleAwaitingStart
			e.modeTag = p.Cmd.Tag
		case imapengine.CommandAuthenticate:
			e.mode = modeAuthenticating
			e.modeTag = p.Cmd.Tag
		}
	case imapengine.AppendPart:
		next, _ := nextAppendState(e.appendAt, p.Sub)
		if start, isStart := p.Sub.(imapengine.AppendStart); isStart {
			e.mode = modeAppending
			e.modeTag = start.Tag
			e.appendEnc = wire.NewAppendEncoder(e.Autotuner.Options())
		}
		e.appendAt = next
	}
}

// encodeChunks drives part's wire form through a fresh EncodeBuffer, fully
// drained into engineChunks. Each CommandStreamPart gets its own buffer:
// EncodeBuffer.NextChunk only knows about literal stop points, not part
// boundaries, so sharing one buffer across unrelated parts would let a
// part with no stop points of its own silently absorb the next part's
// bytes into its trailing chunk.
func (e *Engine) encodeChunks(part imapengine.CommandStreamPart) ([]engineChunk, error) {
	tag, _ := partTag(part)
	if tag == "" {
		tag = e.modeTag
	}

	buf := wire.NewEncodeBuffer()
	if err := wire.DriveCommandStreamPart(buf, e.Autotuner.Options(), part, e.appendEnc); err != nil {
		return nil, err
	}

	var chunks []engineChunk
	for buf.HasMore() {
		c := buf.NextChunk()
		chunks = append(chunks, engineChunk{
			bytes:               c.Bytes,
			waitForContinuation: c.WaitForContinuation,
			tag:                 tag,
		})
	}
	if len(chunks) == 0 || chunks[len(chunks)-1].waitForContinuation {
		// A part that ends on a literal stop point gets an empty trailing
		// chunk, released after the continuation, to carry its handle.
		chunks = append(chunks, engineChunk{tag: tag})
	}
	last := &chunks[len(chunks)-1]
	last.last = true
	last.done = doneHandle(part)
	return chunks, nil
}

func doneHandle(part imapengine.CommandStreamPart) *imapengine.CompletionHandle {
	switch p := part.(type) {
	case imapengine.TaggedPart:
		return p.Done
	case imapengine.AppendPart:
		return p.Done
	case imapengine.IdleDonePart:
		return p.Done
	case imapengine.ContinuationResponsePart:
		return p.Done
	default:
		return nil
	}
}
