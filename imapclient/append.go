package imapclient

import (
	"io"

	"github.com/kvio/imapengine"
)

// appendChunkSize bounds how much of a message literal is buffered in
// memory at once while streaming it to the engine.
const appendChunkSize = 32 * 1024

// AppendCatenatePart is one element of a CATENATE part list (RFC 4469):
// either a URL referencing existing message data, or inline literal bytes.
// Exactly one of URL or Reader must be set.
type AppendCatenatePart struct {
	URL    imapengine.IMAPURL
	Reader io.Reader
	Size   int64 // required when Reader is set
}

// AppendMessage is one message to append within a single APPEND command.
// Submitting more than one to AppendMulti performs MULTIAPPEND (RFC 3502).
// Exactly one of Reader or Catenate must be set: a plain message literal,
// or a CATENATE part list (RFC 4469) assembling the message from URLs
// and/or literal text without re-uploading bytes the server already has.
type AppendMessage struct {
	Options  imapengine.AppendOptions
	Reader   io.Reader
	Size     int64
	Catenate []AppendCatenatePart
}

// Append uploads a single message to mailbox. size must be the exact byte
// count r will yield; the engine needs it up front to announce the
// literal.
//
// This engine has no UntaggedAppend payload and no APPENDUID response code
// (see response.go's ResponseCode list), so the returned AppendData is
// always zero; a caller that needs the assigned UID should follow up with
// a SEARCH or STATUS (UIDNEXT) once the tagged OK arrives.
func (c *Client) Append(mailbox string, r io.Reader, size int64, options imapengine.AppendOptions) (imapengine.AppendData, error) {
	return c.AppendMulti(mailbox, []AppendMessage{{Options: options, Reader: r, Size: size}})
}

// AppendMulti uploads one or more messages to mailbox in a single APPEND
// command. A message whose Catenate field is set is assembled server-side
// from URLs and/or literal text instead of being uploaded as one literal
// (RFC 4469); the rest stream as plain message literals the same way
// Append does. See Append's doc comment for why AppendData is always zero.
func (c *Client) AppendMulti(mailbox string, messages []AppendMessage) (imapengine.AppendData, error) {
	tag := c.tagGen.Next()
	pc := &pendingCommand{done: make(chan struct{})}

	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return imapengine.AppendData{}, c.closeErr
	}
	c.pending[tag] = pc
	c.mutex.Unlock()

	fail := func(err error) (imapengine.AppendData, error) {
		c.mutex.Lock()
		delete(c.pending, tag)
		c.mutex.Unlock()
		return imapengine.AppendData{}, err
	}

	if err := c.submit(imapengine.AppendPart{Sub: imapengine.AppendStart{Tag: tag, Mailbox: mailbox}}); err != nil {
		return fail(err)
	}

	for _, m := range messages {
		if len(m.Catenate) > 0 {
			if err := c.appendCatenate(m); err != nil {
				return fail(err)
			}
			continue
		}
		if err := c.submit(imapengine.AppendPart{Sub: imapengine.AppendBeginMessage{Options: m.Options, ByteCount: m.Size}}); err != nil {
			return fail(err)
		}
		if err := c.appendLiteralBytes(m.Reader, m.Size, func(chunk []byte) error {
			return c.submit(imapengine.AppendPart{Sub: imapengine.AppendMessageBytes{Data: chunk}})
		}); err != nil {
			return fail(err)
		}
		if err := c.submit(imapengine.AppendPart{Sub: imapengine.AppendEndMessage{}}); err != nil {
			return fail(err)
		}
	}

	done := imapengine.NewCompletionHandle()
	if err := c.submit(imapengine.AppendPart{Sub: imapengine.AppendFinish{}, Done: done}); err != nil {
		return fail(err)
	}
	if err := done.Wait(); err != nil {
		return imapengine.AppendData{}, err
	}

	<-pc.done
	if pc.err != nil {
		return imapengine.AppendData{}, pc.err
	}
	if pc.resp.Kind != imapengine.StatusResponseTypeOK {
		return imapengine.AppendData{}, (*imapengine.Error)(&imapengine.StatusResponse{Type: pc.resp.Kind, Code: pc.resp.Code, Text: pc.resp.Text})
	}
	return imapengine.AppendData{}, nil
}

func (c *Client) appendCatenate(m AppendMessage) error {
	if err := c.submit(imapengine.AppendPart{Sub: imapengine.AppendBeginCatenate{Options: m.Options}}); err != nil {
		return err
	}
	for _, part := range m.Catenate {
		if part.Reader == nil {
			if err := c.submit(imapengine.AppendPart{Sub: imapengine.AppendCatenateURL{URL: []byte(part.URL.String())}}); err != nil {
				return err
			}
			continue
		}
		if err := c.submit(imapengine.AppendPart{Sub: imapengine.AppendCatenateDataBegin{Size: part.Size}}); err != nil {
			return err
		}
		if err := c.appendLiteralBytes(part.Reader, part.Size, func(chunk []byte) error {
			return c.submit(imapengine.AppendPart{Sub: imapengine.AppendCatenateDataBytes{Data: chunk}})
		}); err != nil {
			return err
		}
		if err := c.submit(imapengine.AppendPart{Sub: imapengine.AppendCatenateDataEnd{}}); err != nil {
			return err
		}
	}
	return c.submit(imapengine.AppendPart{Sub: imapengine.AppendEndCatenate{}})
}

// appendLiteralBytes reads exactly size bytes from r, chunking at
// appendChunkSize and handing each chunk to submit.
func (c *Client) appendLiteralBytes(r io.Reader, size int64, submit func([]byte) error) error {
	buf := make([]byte, appendChunkSize)
	var sent int64
	for sent < size {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			if err := submit(chunk); err != nil {
				return err
			}
			sent += int64(n)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
	}
	if sent != size {
		return io.ErrUnexpectedEOF
	}
	return nil
}
