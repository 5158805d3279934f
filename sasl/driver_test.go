package sasl

import (
	"bytes"
	"testing"

	gosasl "github.com/emersion/go-sasl"
)

func TestDriverPlainInlineInitialResponse(t *testing.T) {
	d, err := NewDriver(gosasl.NewPlainClient("", "tim", "sekrit"))
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}
	if d.Mechanism() != "PLAIN" {
		t.Fatalf("Mechanism() = %q, want PLAIN", d.Mechanism())
	}

	ir, ok := d.InlineInitialResponse(true)
	if !ok {
		t.Fatalf("InlineInitialResponse(true) ok = false, want true")
	}
	want := []byte("\x00tim\x00sekrit")
	if !bytes.Equal(ir, want) {
		t.Errorf("InlineInitialResponse = %q, want %q", ir, want)
	}

	// Consumed: a second call must report nothing left to inline.
	if _, ok := d.InlineInitialResponse(true); ok {
		t.Errorf("InlineInitialResponse should be consumed after first call")
	}
}

func TestDriverPlainFallbackOnEmptyChallenge(t *testing.T) {
	d, err := NewDriver(gosasl.NewPlainClient("", "tim", "sekrit"))
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}

	// Server without SASL-IR solicits the initial response via an empty
	// continuation instead of inlining it on the command line.
	got, err := d.Respond(nil)
	if err != nil {
		t.Fatalf("Respond(nil) error = %v", err)
	}
	want := []byte("\x00tim\x00sekrit")
	if !bytes.Equal(got, want) {
		t.Errorf("Respond(nil) = %q, want %q", got, want)
	}
}

func TestDriverExternalEmptyInitial(t *testing.T) {
	d, err := NewDriver(gosasl.NewExternalClient(""))
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}
	if d.Mechanism() != "EXTERNAL" {
		t.Fatalf("Mechanism() = %q, want EXTERNAL", d.Mechanism())
	}
	if _, ok := d.InlineInitialResponse(true); !ok {
		t.Errorf("InlineInitialResponse should report the (empty) initial response as present")
	}
}
