package engine

import (
	"testing"

	"github.com/kvio/imapengine"
)

func TestAutotunerDerivesFromCapability(t *testing.T) {
	a := NewAutotuner()
	if a.Options().UseNonSynchronizingLiteralPlus {
		t.Fatalf("UseNonSynchronizingLiteralPlus should start false")
	}

	caps := imapengine.CapSet{imapengine.CapLiteralPlus: {}, imapengine.CapBinary: {}}
	a.Observe(imapengine.UntaggedResponse{Payload: imapengine.UntaggedCapability{Caps: caps}})

	opts := a.Options()
	if !opts.UseNonSynchronizingLiteralPlus {
		t.Errorf("UseNonSynchronizingLiteralPlus = false, want true after observing LITERAL+")
	}
	if !opts.UseBinaryLiteral {
		t.Errorf("UseBinaryLiteral = false, want true after observing BINARY")
	}
}

func TestAutotunerFixedProfileIgnoresDerived(t *testing.T) {
	a := NewAutotuner()
	fixed := imapengine.EncodingOptions{UseQuotedString: true}
	a.SetProfile(imapengine.FixedEncodingProfile{Options: fixed})

	caps := imapengine.CapSet{imapengine.CapLiteralPlus: {}}
	a.Observe(imapengine.UntaggedResponse{Payload: imapengine.UntaggedCapability{Caps: caps}})

	if a.Options().UseNonSynchronizingLiteralPlus {
		t.Errorf("a Fixed profile should not pick up derived options")
	}

	a.SetProfile(imapengine.AutomaticEncodingProfile{})
	if !a.Options().UseNonSynchronizingLiteralPlus {
		t.Errorf("switching back to Automatic should apply the last derived options")
	}
}

func TestAutotunerIgnoresNonCapabilityResponses(t *testing.T) {
	a := NewAutotuner()
	before := a.Options()
	a.Observe(imapengine.UntaggedResponse{Payload: imapengine.UntaggedExists{Count: 5}})
	if a.Options() != before {
		t.Errorf("Observe() of a non-capability payload should not change Options()")
	}
}
