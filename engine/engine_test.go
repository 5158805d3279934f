package engine

import (
	"testing"

	"github.com/kvio/imapengine"
)

func TestSendCommandSimple(t *testing.T) {
	e := New()
	part := imapengine.TaggedPart{Cmd: imapengine.TaggedCommand{Tag: "A1", Command: imapengine.CommandNoop{}}}

	chunk, err := e.SendCommand(part)
	if err != nil {
		t.Fatalf("SendCommand() error = %v", err)
	}
	if chunk == nil {
		t.Fatalf("SendCommand() returned nil chunk for a command with no literal")
	}
	if string(chunk.Bytes) != "A1 NOOP\r\n" {
		t.Errorf("chunk = %q, want %q", chunk.Bytes, "A1 NOOP\r\n")
	}

	if err := e.ReceiveResponse(imapengine.TaggedResponse{Tag: "A1", Kind: imapengine.StatusResponseTypeOK}); err != nil {
		t.Fatalf("ReceiveResponse() error = %v", err)
	}
}

func TestDuplicateTagRejected(t *testing.T) {
	e := New()
	part := imapengine.TaggedPart{Cmd: imapengine.TaggedCommand{Tag: "A1", Command: imapengine.CommandNoop{}}}
	if _, err := e.SendCommand(part); err != nil {
		t.Fatalf("first SendCommand() error = %v", err)
	}
	if _, err := e.SendCommand(part); err == nil {
		t.Fatalf("second SendCommand() with the same tag should fail")
	}
}

func TestUnknownTaggedResponseRejected(t *testing.T) {
	e := New()
	err := e.ReceiveResponse(imapengine.TaggedResponse{Tag: "ZZZ", Kind: imapengine.StatusResponseTypeOK})
	if err == nil {
		t.Fatalf("ReceiveResponse() for an unknown tag should fail")
	}
}

func TestIdleModeRejectsOrdinaryCommandMidIdle(t *testing.T) {
	e := New()
	idlePart := imapengine.TaggedPart{Cmd: imapengine.TaggedCommand{Tag: "A1", Command: imapengine.CommandIdleStart{}}}
	if _, err := e.SendCommand(idlePart); err != nil {
		t.Fatalf("SendCommand(IDLE) error = %v", err)
	}

	action, err := e.ReceiveContinuation(imapengine.ContinuationRequest{})
	if err != nil {
		t.Fatalf("ReceiveContinuation() error = %v", err)
	}
	if _, ok := action.Event.(imapengine.IdleStartedEvent); !ok {
		t.Fatalf("ReceiveContinuation() action = %#v, want IdleStartedEvent", action)
	}

	noop := imapengine.TaggedPart{Cmd: imapengine.TaggedCommand{Tag: "A2", Command: imapengine.CommandNoop{}}}
	if _, err := e.SendCommand(noop); err == nil {
		t.Fatalf("SendCommand(NOOP) while idling should be rejected")
	}

	done := imapengine.IdleDonePart{}
	if _, err := e.SendCommand(done); err != nil {
		t.Fatalf("SendCommand(DONE) error = %v", err)
	}
	if err := e.ReceiveResponse(imapengine.TaggedResponse{Tag: "A1", Kind: imapengine.StatusResponseTypeOK}); err != nil {
		t.Fatalf("ReceiveResponse() error = %v", err)
	}

	// Mode reverts to Normal once the owning tag's tagged response arrives.
	if _, err := e.SendCommand(noop); err != nil {
		t.Fatalf("SendCommand(NOOP) after IDLE ended = %v", err)
	}
}

func TestLiteralBlocksFurtherChunksUntilContinuation(t *testing.T) {
	e := New()

	// A password byte sequence outside the quotable ASCII range (here, a
	// UTF-8 encoded "é") forces the encoder to fall back to a synchronizing
	// literal instead of a quoted string, per the Autotuner's default
	// encoding options.
	part := imapengine.TaggedPart{Cmd: imapengine.TaggedCommand{Tag: "A1", Command: imapengine.CommandLogin{
		Username: "tim", Password: "sékrit",
	}}}

	chunk, err := e.SendCommand(part)
	if err != nil {
		t.Fatalf("SendCommand() error = %v", err)
	}
	if chunk == nil {
		t.Fatalf("expected a first chunk")
	}
	if chunk.ShouldSucceedHandle {
		t.Fatalf("expected the first chunk to stop at the literal's synchronizing boundary")
	}

	second := imapengine.TaggedPart{Cmd: imapengine.TaggedCommand{Tag: "A2", Command: imapengine.CommandNoop{}}}
	if got, err := e.SendCommand(second); err != nil || got != nil {
		t.Fatalf("SendCommand() while literal-blocked: chunk=%v err=%v, want nil,nil", got, err)
	}

	action, err := e.ReceiveContinuation(imapengine.ContinuationRequest{})
	if err != nil {
		t.Fatalf("ReceiveContinuation() error = %v", err)
	}
	if len(action.Chunks) == 0 {
		t.Fatalf("expected releasable chunks once the continuation arrives")
	}
}
