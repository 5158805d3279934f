// Package sasl adapts a github.com/emersion/go-sasl client to the opaque
// challenge/response contract the engine exposes during Authenticating
// mode: AuthenticationChallengeEvent in, ContinuationResponsePart out.
package sasl

import (
	gosasl "github.com/emersion/go-sasl"
)

// Driver sequences one SASL exchange for a single AUTHENTICATE command. It
// holds no network state; the caller feeds it challenge bytes decoded from
// the engine and writes the returned response bytes back as a
// ContinuationResponsePart.
type Driver struct {
	client         gosasl.Client
	mech           string
	initial        []byte
	initialPending bool
}

// NewDriver starts client and captures its mechanism name and (possibly
// nil) initial response.
func NewDriver(client gosasl.Client) (*Driver, error) {
	mech, ir, err := client.Start()
	if err != nil {
		return nil, err
	}
	return &Driver{client: client, mech: mech, initial: ir, initialPending: ir != nil}, nil
}

// Mechanism is the SASL mechanism name to place after "AUTHENTICATE ".
func (d *Driver) Mechanism() string { return d.mech }

// InlineInitialResponse returns the initial response to embed directly in
// the AUTHENTICATE command line (RFC 4959 SASL-IR), consuming it, when
// useSASLIR is true and the mechanism produced one. The caller should only
// pass useSASLIR true when the server has advertised the SASL-IR
// capability; servers without it never expect an initial response inline.
func (d *Driver) InlineInitialResponse(useSASLIR bool) ([]byte, bool) {
	if !d.initialPending || !useSASLIR {
		return nil, false
	}
	d.initialPending = false
	return d.initial, true
}

// Respond computes the bytes to answer a server challenge with.
//
// A zero-length challenge on the first round, while an initial response is
// still pending, is the server asking for it per the SASL-IR fallback
// convention (RFC 4422 section 3): a server that lacks SASL-IR still
// solicits the same bytes via an ordinary empty continuation instead.
func (d *Driver) Respond(challenge []byte) ([]byte, error) {
	if d.initialPending && len(challenge) == 0 {
		d.initialPending = false
		return d.initial, nil
	}
	return d.client.Next(challenge)
}
