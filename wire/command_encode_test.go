package wire

import (
	"testing"

	"github.com/kvio/imapengine"
)

func encodeAll(t *testing.T, tc imapengine.TaggedCommand, options imapengine.EncodingOptions) string {
	t.Helper()
	buf := NewEncodeBuffer()
	if err := DriveCommand(buf, options, tc); err != nil {
		t.Fatalf("DriveCommand() error = %v", err)
	}
	var out []byte
	for buf.HasMore() {
		out = append(out, buf.NextChunk().Bytes...)
	}
	return string(out)
}

func TestDriveCommandLogin(t *testing.T) {
	tc := imapengine.TaggedCommand{Tag: "A1", Command: imapengine.CommandLogin{Username: "tim", Password: "sekrit"}}
	got := encodeAll(t, tc, imapengine.DefaultEncodingOptions())
	want := "A1 LOGIN \"tim\" \"sekrit\"\r\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDriveCommandSimple(t *testing.T) {
	tests := []struct {
		name string
		cmd  imapengine.Command
		want string
	}{
		{"capability", imapengine.CommandCapability{}, "A1 CAPABILITY\r\n"},
		{"noop", imapengine.CommandNoop{}, "A1 NOOP\r\n"},
		{"logout", imapengine.CommandLogout{}, "A1 LOGOUT\r\n"},
		{"starttls", imapengine.CommandStartTLS{}, "A1 STARTTLS\r\n"},
		{"check", imapengine.CommandCheck{}, "A1 CHECK\r\n"},
		{"close", imapengine.CommandClose{}, "A1 CLOSE\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := imapengine.TaggedCommand{Tag: "A1", Command: tt.cmd}
			got := encodeAll(t, tc, imapengine.DefaultEncodingOptions())
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDriveCommandSelect(t *testing.T) {
	tc := imapengine.TaggedCommand{Tag: "A1", Command: imapengine.CommandSelect{Mailbox: "INBOX"}}
	got := encodeAll(t, tc, imapengine.DefaultEncodingOptions())
	want := "A1 SELECT INBOX\r\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDriveCommandAuthenticateWithInitial(t *testing.T) {
	tc := imapengine.TaggedCommand{Tag: "A1", Command: imapengine.CommandAuthenticate{
		Mechanism: "PLAIN", Initial: []byte("\x00tim\x00sekrit"), HasInitial: true,
	}}
	got := encodeAll(t, tc, imapengine.DefaultEncodingOptions())
	want := "A1 AUTHENTICATE PLAIN " + encodeSASLBase64([]byte("\x00tim\x00sekrit")) + "\r\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDriveCommandAuthenticateEmptyInitial(t *testing.T) {
	tc := imapengine.TaggedCommand{Tag: "A1", Command: imapengine.CommandAuthenticate{
		Mechanism: "EXTERNAL", Initial: nil, HasInitial: true,
	}}
	got := encodeAll(t, tc, imapengine.DefaultEncodingOptions())
	want := "A1 AUTHENTICATE EXTERNAL =\r\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDriveCommandLoginSynchronizingLiteral(t *testing.T) {
	options := imapengine.EncodingOptions{UseSynchronizingLiteral: true}
	tc := imapengine.TaggedCommand{Tag: "A1", Command: imapengine.CommandLogin{Username: "tim", Password: "sekrit"}}
	buf := NewEncodeBuffer()
	if err := DriveCommand(buf, options, tc); err != nil {
		t.Fatalf("DriveCommand() error = %v", err)
	}

	first := buf.NextChunk()
	if !first.WaitForContinuation {
		t.Fatalf("first chunk should stop for a continuation: %q", first.Bytes)
	}
	if !buf.HasMore() {
		t.Fatalf("expected a remaining chunk after the literal size")
	}
}
