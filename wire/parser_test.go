package wire

import (
	"errors"
	"testing"

	"github.com/kvio/imapengine"
)

func TestParserTaggedOK(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("A1 OK LOGIN completed\r\n"))

	ev, err := p.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	resp, ok := ev.(EventResponse)
	if !ok {
		t.Fatalf("Next() = %#v, want EventResponse", ev)
	}
	tagged, ok := resp.Response.(imapengine.TaggedResponse)
	if !ok {
		t.Fatalf("Response = %#v, want TaggedResponse", resp.Response)
	}
	if tagged.Tag != "A1" || tagged.Kind != imapengine.StatusResponseTypeOK || tagged.Text != "LOGIN completed" {
		t.Errorf("got %#v", tagged)
	}
}

func TestParserTaggedWithResponseCode(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("A2 OK [READ-WRITE] SELECT completed\r\n"))

	ev, err := p.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	tagged := ev.(EventResponse).Response.(imapengine.TaggedResponse)
	if tagged.Code != imapengine.ResponseCodeReadWrite {
		t.Errorf("Code = %q, want READ-WRITE", tagged.Code)
	}
	if tagged.Text != "SELECT completed" {
		t.Errorf("Text = %q", tagged.Text)
	}
}

func TestParserNeedsMoreData(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("A1 O"))

	if _, err := p.Next(); !errors.Is(err, ErrNeedMoreData) {
		t.Fatalf("Next() error = %v, want ErrNeedMoreData", err)
	}

	p.Feed([]byte("K done\r\n"))
	if _, err := p.Next(); err != nil {
		t.Fatalf("Next() error after refeed = %v", err)
	}
}

func TestParserUntaggedExists(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("* 23 EXISTS\r\n"))

	ev, err := p.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	untagged := ev.(EventResponse).Response.(imapengine.UntaggedResponse)
	exists, ok := untagged.Payload.(imapengine.UntaggedExists)
	if !ok || exists.Count != 23 {
		t.Errorf("Payload = %#v, want UntaggedExists{23}", untagged.Payload)
	}
}

func TestParserContinuation(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("+ ready for literal\r\n"))

	ev, err := p.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	cont, ok := ev.(EventContinuation)
	if !ok || cont.Continuation.Text != "ready for literal" {
		t.Errorf("got %#v", ev)
	}
}

func TestParserBareContinuation(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("+\r\n"))

	ev, err := p.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	cont := ev.(EventContinuation)
	if cont.Continuation.Text != "" {
		t.Errorf("Text = %q, want empty", cont.Continuation.Text)
	}
}

func TestParserFetchLiteral(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("* 1 FETCH (BODY[TEXT] {5}\r\nhello)\r\n"))

	var parts []Event
	for {
		ev, err := p.Next()
		if errors.Is(err, ErrNeedMoreData) {
			t.Fatalf("unexpected ErrNeedMoreData mid-message: %#v", parts)
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		parts = append(parts, ev)
		if _, ok := ev.(EventFetch); ok {
			if _, done := ev.(EventFetch).Part.(imapengine.FetchFinish); done {
				break
			}
			continue
		}
		break
	}

	if len(parts) < 5 {
		t.Fatalf("got %d events, want at least Start/Begin/Bytes/End/Finish", len(parts))
	}
	start := parts[0].(EventFetch).Part.(imapengine.FetchStart)
	if start.SeqNum != 1 {
		t.Errorf("SeqNum = %d, want 1", start.SeqNum)
	}

	var gotBytes []byte
	for _, ev := range parts {
		if b, ok := ev.(EventFetch).Part.(imapengine.FetchStreamingBytes); ok {
			gotBytes = append(gotBytes, b.Data...)
		}
	}
	if string(gotBytes) != "hello" {
		t.Errorf("streamed bytes = %q, want %q", gotBytes, "hello")
	}
}

func TestParserRemainingAndDiscard(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("A1 OK done\r\ntrailing"))

	if _, err := p.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if got := string(p.Remaining()); got != "trailing" {
		t.Fatalf("Remaining() = %q, want %q", got, "trailing")
	}
	p.DiscardRemaining()
	if got := string(p.Remaining()); got != "" {
		t.Fatalf("Remaining() after discard = %q, want empty", got)
	}

	p.Feed([]byte("A2 OK done\r\n"))
	ev, err := p.Next()
	if err != nil {
		t.Fatalf("Next() after discard error = %v", err)
	}
	tagged := ev.(EventResponse).Response.(imapengine.TaggedResponse)
	if tagged.Tag != "A2" {
		t.Errorf("Tag = %q, want A2 (the 'trailing' bytes must not have been reparsed)", tagged.Tag)
	}
}
