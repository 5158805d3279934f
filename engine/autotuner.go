package engine

import "github.com/kvio/imapengine"

// Autotuner derives EncodingOptions from the capabilities most recently
// advertised by the server, and applies them to an AutomaticEncodingProfile.
// It is fed every Response the engine receives; non-capability responses are
// no-ops.
//
// When the caller has pinned a FixedEncodingProfile, observed capabilities
// are still recorded (so a later switch to Automatic picks them up
// immediately) but are not applied to the options in effect.
type Autotuner struct {
	profile imapengine.EncodingProfile
	fixed   imapengine.EncodingOptions // used when profile is Fixed
	derived imapengine.EncodingOptions // last capability-derived options
	caps    imapengine.CapSet
}

// NewAutotuner returns an Autotuner starting in Automatic mode with the
// conservative RFC 3501 baseline in effect until capabilities are observed.
func NewAutotuner() *Autotuner {
	base := imapengine.DefaultEncodingOptions()
	return &Autotuner{
		profile: imapengine.AutomaticEncodingProfile{},
		fixed:   base,
		derived: base,
	}
}

// SetProfile changes the active profile. Switching to Automatic immediately
// applies the most recently derived options.
func (a *Autotuner) SetProfile(p imapengine.EncodingProfile) {
	a.profile = p
	if fp, ok := p.(imapengine.FixedEncodingProfile); ok {
		a.fixed = fp.Options
	}
}

// Options returns the EncodingOptions currently in effect.
func (a *Autotuner) Options() imapengine.EncodingOptions {
	if _, ok := a.profile.(imapengine.FixedEncodingProfile); ok {
		return a.fixed
	}
	return a.derived
}

// Observe updates the autotuner's view of server capabilities from resp,
// deriving a new EncodingOptions when resp carries a CAPABILITY data set.
//
// Only the untagged "* CAPABILITY" form is recognized: a tagged OK response
// may also carry a "[CAPABILITY ...]" response code per RFC 3501 section
// 7.1, but this engine's response model records only the code's name (see
// ResponseCode), not its argument list, so that form cannot update the
// autotuner. A client that needs to react to it should issue an explicit
// CAPABILITY command instead, the same fallback RFC 3501 recommends for
// servers that omit the optional response code entirely.
func (a *Autotuner) Observe(resp imapengine.Response) {
	untagged, ok := resp.(imapengine.UntaggedResponse)
	if !ok {
		return
	}
	capData, ok := untagged.Payload.(imapengine.UntaggedCapability)
	if !ok {
		return
	}
	a.caps = capData.Caps
	a.derived = deriveOptions(capData.Caps)
}

func deriveOptions(caps imapengine.CapSet) imapengine.EncodingOptions {
	opts := imapengine.DefaultEncodingOptions()
	opts.UseNonSynchronizingLiteralPlus = caps.Has(imapengine.CapLiteralPlus)
	opts.UseNonSynchronizingLiteralMinus = caps.Has(imapengine.CapLiteralMinus)
	opts.UseBinaryLiteral = caps.Has(imapengine.CapBinary)
	return opts
}

// Capabilities returns the last-observed capability set, or nil if none has
// been observed yet.
func (a *Autotuner) Capabilities() imapengine.CapSet { return a.caps }
