package imapclient

import (
	"github.com/kvio/imapengine"
	"github.com/kvio/imapengine/sasl"
)

// Authenticate drives a SASL exchange to completion using driver, RFC 4959
// SASL-IR is used to inline the initial response on the AUTHENTICATE line
// when useSASLIR is true (the caller should only pass true when the server
// has advertised the SASL-IR capability).
//
// Challenges the server sends arrive on c.authChal, fed by handleContinuation
// on the read loop; this call computes the response with driver and writes
// it back as a ContinuationResponsePart until the tagged response arrives.
func (c *Client) Authenticate(driver *sasl.Driver, useSASLIR bool) error {
	tag := c.tagGen.Next()
	pc := &pendingCommand{done: make(chan struct{})}

	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return c.closeErr
	}
	c.pending[tag] = pc
	c.mutex.Unlock()

	chal := make(chan []byte, 1)
	c.idleMu.Lock()
	c.authChal = chal
	c.idleMu.Unlock()
	defer func() {
		c.idleMu.Lock()
		c.authChal = nil
		c.idleMu.Unlock()
	}()

	cmd := imapengine.CommandAuthenticate{Mechanism: driver.Mechanism()}
	if ir, ok := driver.InlineInitialResponse(useSASLIR); ok {
		cmd.Initial = ir
		cmd.HasInitial = true
	}

	part := imapengine.TaggedPart{Cmd: imapengine.TaggedCommand{Tag: tag, Command: cmd}}
	if err := c.submit(part); err != nil {
		c.mutex.Lock()
		delete(c.pending, tag)
		c.mutex.Unlock()
		return err
	}

	for {
		select {
		case challenge := <-chal:
			resp, err := driver.Respond(challenge)
			if err != nil {
				return err
			}
			if err := c.submit(imapengine.ContinuationResponsePart{Data: resp}); err != nil {
				return err
			}
		case <-pc.done:
			if pc.err != nil {
				return pc.err
			}
			if pc.resp.Kind != imapengine.StatusResponseTypeOK {
				return (*imapengine.Error)(&imapengine.StatusResponse{Type: pc.resp.Kind, Code: pc.resp.Code, Text: pc.resp.Text})
			}
			return nil
		}
	}
}
