// Package imapclient is a transport-owning IMAP4rev1 client: it dials (or
// wraps) a net.Conn, runs a single background goroutine that feeds inbound
// bytes through wire.Parser and drives imapengine/engine.Engine, and
// exposes blocking convenience methods that submit CommandStreamParts and
// wait for completion. The engine itself never touches the network; this
// package is the thin owner that does.
//
// # Charset decoding
//
// By default only basic charset decoding is performed. To decode non-UTF-8
// subjects and address names, set Options.WordDecoder, e.g. using
// go-message's charset table:
//
//	import (
//		"mime"
//
//		"github.com/emersion/go-message/charset"
//	)
//
//	options := &imapclient.Options{
//		WordDecoder: &mime.WordDecoder{CharsetReader: charset.Reader},
//	}
//	client, err := imapclient.DialTLS("imap.example.org:993", options)
package imapclient

import (
	"bufio"
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kvio/imapengine"
	"github.com/kvio/imapengine/engine"
	"github.com/kvio/imapengine/wire"
)

var dialer = &net.Dialer{Timeout: 30 * time.Second}

// Options configures a Client.
type Options struct {
	// TLSConfig is used by DialTLS and DialStartTLS. Nil means defaults.
	TLSConfig *tls.Config
	// DebugWriter, if set, receives a copy of every raw byte read from and
	// written to the connection. This may include sensitive data exchanged
	// during authentication.
	DebugWriter io.Writer
	// WordDecoder decodes RFC 2047 encoded-words in FETCH envelope Subject
	// and address Name fields. Other response text is not decoded.
	WordDecoder *mime.WordDecoder
	// Logger receives structured connection-lifecycle events. Nil disables
	// logging.
	Logger *slog.Logger
	// TagGenerator assigns tags to outgoing commands. Defaults to a
	// CounterTagGenerator.
	TagGenerator engine.TagGenerator
	// UnilateralData receives server-initiated data that does not belong
	// to any outstanding command.
	UnilateralData *UnilateralDataHandler
}

func (o *Options) wrapReadWriter(rw io.ReadWriter) io.ReadWriter {
	if o.DebugWriter == nil {
		return rw
	}
	return struct {
		io.Reader
		io.Writer
	}{
		Reader: io.TeeReader(rw, o.DebugWriter),
		Writer: io.MultiWriter(rw, o.DebugWriter),
	}
}

func (o *Options) tlsConfig() *tls.Config {
	if o != nil && o.TLSConfig != nil {
		return o.TLSConfig.Clone()
	}
	return new(tls.Config)
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

func (o *Options) tagGenerator() engine.TagGenerator {
	if o.TagGenerator == nil {
		return &engine.CounterTagGenerator{}
	}
	return o.TagGenerator
}

func (o *Options) unilateralData() *UnilateralDataHandler {
	if o.UnilateralData == nil {
		return &UnilateralDataHandler{}
	}
	return o.UnilateralData
}

// UnilateralDataHandler receives server data that does not belong to any
// particular outstanding command: mailbox updates while idling, FETCH
// pushes for other connections' changes, METADATA pushes, and the like.
type UnilateralDataHandler struct {
	Exists   func(count uint32)
	Expunge  func(seqNum uint32)
	Fetch    func(part imapengine.FetchResponsePart)
	Status   func(data imapengine.UntaggedStatusResponse)
	Metadata func(mailbox string, entries map[string]*string)
}

// pendingCommand tracks one outstanding tagged command awaiting its final
// status response.
type pendingCommand struct {
	done chan struct{}
	resp imapengine.TaggedResponse
	err  error // set on a connection failure before any tagged response arrived
}

// Client is an IMAP4rev1 client. Every method that submits a command
// blocks until that command's tagged response arrives (or the connection
// fails), but never blocks waiting for unrelated commands: the connection
// may be driven from multiple goroutines, subject to the same ambiguity
// caveats RFC 9051 section 5.5 describes for command pipelining.
type Client struct {
	conn    net.Conn
	options Options
	log     *slog.Logger
	traceID string

	writeMutex sync.Mutex
	bw         *bufio.Writer

	eng    *engine.Engine
	tagGen engine.TagGenerator
	parser *wire.Parser

	mutex   sync.Mutex
	pending map[imapengine.Tag]*pendingCommand
	closed  bool
	closeErr error

	dataMutex sync.Mutex
	dataSink  func(imapengine.UntaggedPayload)
	fetchSink func(imapengine.FetchResponsePart)

	greetingCh   chan struct{}
	greetingOnce sync.Once
	greetingErr  error

	idleMu      sync.Mutex
	idleStarted chan struct{} // recreated per IDLE, closed on IdleStartedEvent
	authChal    chan []byte   // recreated per AUTHENTICATE round, delivers decoded challenges

	pendingStartTLSTag    imapengine.Tag // tag of an in-flight STARTTLS command, if any
	pendingStartTLSConfig *tls.Config
	tlsConn               *tls.Conn // set once STARTTLS (or DialTLS) has upgraded the connection

	decCh chan struct{}
}

// New wraps conn in a Client and starts its background read loop. A nil
// options pointer is equivalent to a zero Options value.
func New(conn net.Conn, options *Options) *Client {
	if options == nil {
		options = &Options{}
	}

	rw := options.wrapReadWriter(conn)
	c := &Client{
		conn:       conn,
		options:    *options,
		log:        options.logger(),
		traceID:    uuid.NewString(),
		bw:         bufio.NewWriter(rw),
		eng:        engine.New(),
		tagGen:     options.tagGenerator(),
		parser:     wire.NewParser(),
		pending:    make(map[imapengine.Tag]*pendingCommand),
		greetingCh: make(chan struct{}),
		decCh:      make(chan struct{}),
	}
	c.log = c.log.With("conn", c.traceID)
	go c.readLoop(rw)
	return c
}

// DialInsecure connects to an unencrypted IMAP server.
func DialInsecure(address string, options *Options) (*Client, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, err
	}
	return New(conn, options), nil
}

// DialTLS connects to an IMAP server over implicit TLS.
func DialTLS(address string, options *Options) (*Client, error) {
	if options == nil {
		options = &Options{}
	}
	tlsConfig := options.tlsConfig()
	if tlsConfig.NextProtos == nil {
		tlsConfig.NextProtos = []string{"imap"}
	}
	conn, err := tls.DialWithDialer(dialer, "tcp", address, tlsConfig)
	if err != nil {
		return nil, err
	}
	return New(conn, options), nil
}

// DialStartTLS connects to an IMAP server and immediately negotiates
// STARTTLS before returning.
func DialStartTLS(address string, options *Options) (*Client, error) {
	if options == nil {
		options = &Options{}
	}
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}
	conn, err := dialer.Dial("tcp", address)
	if err != nil {
		return nil, err
	}
	tlsConfig := options.tlsConfig()
	if tlsConfig.ServerName == "" {
		tlsConfig.ServerName = host
	}
	newOptions := *options
	newOptions.TLSConfig = tlsConfig
	return NewStartTLS(conn, &newOptions)
}

// NewStartTLS wraps conn and immediately negotiates STARTTLS.
func NewStartTLS(conn net.Conn, options *Options) (*Client, error) {
	c := New(conn, options)
	if err := c.WaitGreeting(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.startTLS(options.tlsConfig()); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// WaitGreeting blocks until the server's initial greeting has been
// received (or the connection fails before one arrives).
func (c *Client) WaitGreeting() error {
	<-c.greetingCh
	return c.greetingErr
}

// startTLS issues STARTTLS and blocks until the connection has been
// upgraded. The handshake itself, along with the buffer swap that makes the
// read loop and writer use the new TLS connection, happens on the read
// loop goroutine via beginTLSUpgrade, triggered the moment the command's
// tagged OK is observed; this call only waits for that tagged response.
func (c *Client) startTLS(config *tls.Config) error {
	tag := c.tagGen.Next()
	pc := &pendingCommand{done: make(chan struct{})}

	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return c.closeErr
	}
	c.pending[tag] = pc
	c.pendingStartTLSTag = tag
	c.pendingStartTLSConfig = config
	c.mutex.Unlock()

	part := imapengine.TaggedPart{Cmd: imapengine.TaggedCommand{Tag: tag, Command: imapengine.CommandStartTLS{}}}
	if err := c.submit(part); err != nil {
		c.mutex.Lock()
		delete(c.pending, tag)
		c.pendingStartTLSTag = ""
		c.pendingStartTLSConfig = nil
		c.mutex.Unlock()
		return err
	}

	<-pc.done
	if pc.err != nil {
		return pc.err
	}
	if pc.resp.Kind != imapengine.StatusResponseTypeOK {
		return (*imapengine.Error)(&imapengine.StatusResponse{Type: pc.resp.Kind, Code: pc.resp.Code, Text: pc.resp.Text})
	}
	return nil
}

// Close immediately closes the underlying connection.
func (c *Client) Close() error {
	err := c.conn.Close()
	<-c.decCh
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return c.closeErr
}

// readLoop is the connection's sole reader. It feeds inbound bytes to the
// parser, drives the engine with each decoded Event, and dispatches the
// results to waiting commands or the UnilateralDataHandler. It also
// performs the STARTTLS socket upgrade in place, since that upgrade must
// happen between two reads on the same goroutine that owns the decoder.
func (c *Client) readLoop(initial io.ReadWriter) {
	defer close(c.decCh)
	rw := initial
	buf := make([]byte, 8192)
	for {
		n, err := rw.(io.Reader).Read(buf)
		if n > 0 {
			c.parser.Feed(buf[:n])
			for {
				ev, perr := c.parser.Next()
				if errors.Is(perr, wire.ErrNeedMoreData) {
					break
				}
				if perr != nil {
					c.fail(&engine.ParseError{Err: perr})
					return
				}
				if upgrade := c.handleEvent(ev); upgrade != nil {
					rw = upgrade
				}
			}
			c.parser.Compact()
		}
		if err != nil {
			if !c.markGreetingFailed(err) {
				c.fail(nil)
			}
			return
		}
	}
}

func (c *Client) markGreetingFailed(err error) bool {
	var did bool
	c.greetingOnce.Do(func() {
		c.greetingErr = err
		close(c.greetingCh)
		did = true
	})
	return did
}

// handleEvent applies one parsed wire.Event and returns a replacement
// io.ReadWriter when the event triggered a STARTTLS upgrade.
func (c *Client) handleEvent(ev wire.Event) io.ReadWriter {
	switch e := ev.(type) {
	case wire.EventContinuation:
		c.handleContinuation(e.Continuation)
	case wire.EventFetch:
		c.dataMutex.Lock()
		sink := c.fetchSink
		c.dataMutex.Unlock()
		if sink != nil {
			sink(e.Part)
		} else if h := c.options.unilateralData().Fetch; h != nil {
			h(e.Part)
		}
	case wire.EventResponse:
		return c.handleResponse(e.Response)
	}
	return nil
}

func (c *Client) handleContinuation(cont imapengine.ContinuationRequest) {
	action, err := c.eng.ReceiveContinuation(cont)
	if err != nil {
		c.log.Warn("unexpected continuation request", "error", err)
		return
	}
	switch {
	case action.Event != nil:
		switch action.Event.(type) {
		case imapengine.IdleStartedEvent:
			c.idleMu.Lock()
			started := c.idleStarted
			c.idleMu.Unlock()
			if started != nil {
				close(started)
			}
		case imapengine.AuthenticationChallengeEvent:
			ch := action.Event.(imapengine.AuthenticationChallengeEvent)
			c.idleMu.Lock()
			ch2 := c.authChal
			c.idleMu.Unlock()
			if ch2 != nil {
				ch2 <- ch.Data
			}
		}
	default:
		c.writeChunks(action.Chunks)
	}
}

func (c *Client) handleResponse(resp imapengine.Response) io.ReadWriter {
	var startTLSTag imapengine.Tag
	if untagged, ok := resp.(imapengine.UntaggedResponse); ok {
		c.deliverUntagged(untagged.Payload)
	}
	if _, ok := resp.(imapengine.TaggedResponse); ok {
		startTLSTag = c.pendingStartTLSTag
	}

	if err := c.eng.ReceiveResponse(resp); err != nil {
		c.log.Warn("protocol error processing response", "error", err)
	}

	switch v := resp.(type) {
	case imapengine.TaggedResponse:
		c.completeCommand(v)
		if startTLSTag != "" && v.Tag == startTLSTag && v.Kind == imapengine.StatusResponseTypeOK {
			return c.beginTLSUpgrade()
		}
	case imapengine.UntaggedResponse:
		if status, ok := v.Payload.(imapengine.UntaggedStatusResponse); ok {
			c.greetingOnce.Do(func() {
				if status.Kind == imapengine.StatusResponseTypeBye {
					c.greetingErr = &imapengine.Error{Type: status.Kind, Code: status.Code, Text: status.Text}
				}
				close(c.greetingCh)
			})
		}
	case imapengine.FatalResponse:
		c.greetingOnce.Do(func() { close(c.greetingCh) })
		c.fail(fmt.Errorf("imapclient: server sent BYE: %s", v.Text))
	}
	return nil
}

// beginTLSUpgrade performs the TLS handshake in place over the existing
// connection and returns the new read/write source for the read loop to
// swap to. It runs on the read loop goroutine itself, right after the
// STARTTLS command's tagged OK is parsed: the handshake blocks the read
// loop until it completes, which is fine since no other traffic is legal
// on this connection until negotiation finishes anyway.
func (c *Client) beginTLSUpgrade() io.ReadWriter {
	buffered := append([]byte(nil), c.parser.Remaining()...)
	c.parser.DiscardRemaining()

	var cleartextConn net.Conn = c.conn
	if len(buffered) > 0 {
		cleartextConn = startTLSConn{c.conn, io.MultiReader(bytes.NewReader(buffered), c.conn)}
	}

	tlsConn := tls.Client(cleartextConn, c.pendingStartTLSConfig)
	if err := tlsConn.Handshake(); err != nil {
		c.fail(fmt.Errorf("imapclient: STARTTLS handshake: %w", err))
		return nil
	}
	rw := c.options.wrapReadWriter(tlsConn)

	c.writeMutex.Lock()
	c.bw = bufio.NewWriter(rw)
	c.writeMutex.Unlock()

	c.pendingStartTLSTag = ""
	c.pendingStartTLSConfig = nil
	c.tlsConn = tlsConn

	return rw
}

// startTLSConn substitutes r for Conn's own Read, so that plaintext bytes
// already read off the socket ahead of the TLS handshake are replayed to
// it instead of lost.
type startTLSConn struct {
	net.Conn
	r io.Reader
}

func (sc startTLSConn) Read(b []byte) (int, error) { return sc.r.Read(b) }

// doCollecting runs cmd like do, but additionally routes every untagged
// payload received while it is outstanding to collect, so command wrappers
// that return mailbox data (LIST, SEARCH, STATUS, ACL, ...) can assemble a
// result. Only one data-returning command should be outstanding at a time:
// an untagged response is not itself tagged to any command, so pipelining
// two data-returning commands makes their results ambiguous (see RFC 9051
// section 5.5), the same caveat Client's own doc comment already carries.
func (c *Client) doCollecting(cmd imapengine.Command, collect func(imapengine.UntaggedPayload)) (imapengine.TaggedResponse, error) {
	c.dataMutex.Lock()
	c.dataSink = collect
	c.dataMutex.Unlock()
	defer func() {
		c.dataMutex.Lock()
		c.dataSink = nil
		c.dataMutex.Unlock()
	}()
	return c.do(cmd)
}

// doFetch runs cmd like do, routing every FetchResponsePart event received
// while it is outstanding to onPart.
func (c *Client) doFetch(cmd imapengine.Command, onPart func(imapengine.FetchResponsePart)) (imapengine.TaggedResponse, error) {
	c.dataMutex.Lock()
	c.fetchSink = onPart
	c.dataMutex.Unlock()
	defer func() {
		c.dataMutex.Lock()
		c.fetchSink = nil
		c.dataMutex.Unlock()
	}()
	return c.do(cmd)
}

func (c *Client) deliverUntagged(payload imapengine.UntaggedPayload) {
	c.dataMutex.Lock()
	sink := c.dataSink
	c.dataMutex.Unlock()
	if sink != nil {
		sink(payload)
	}

	h := c.options.unilateralData()
	switch v := payload.(type) {
	case imapengine.UntaggedExists:
		if h.Exists != nil {
			h.Exists(v.Count)
		}
	case imapengine.UntaggedExpunge:
		if h.Expunge != nil {
			h.Expunge(v.SeqNum)
		}
	case imapengine.UntaggedStatusResponse:
		if h.Status != nil {
			h.Status(v)
		}
	case imapengine.UntaggedMetadata:
		if h.Metadata != nil {
			h.Metadata(v.Mailbox, v.Entries)
		}
	}
}

func (c *Client) completeCommand(resp imapengine.TaggedResponse) {
	c.mutex.Lock()
	pc, ok := c.pending[resp.Tag]
	if ok {
		delete(c.pending, resp.Tag)
	}
	c.mutex.Unlock()
	if !ok {
		c.log.Warn("tagged response for unknown tag", "tag", string(resp.Tag))
		return
	}
	pc.resp = resp
	close(pc.done)
}

// fail marks the connection dead, closing the socket and failing every
// outstanding command. A nil cause means a clean EOF/close.
func (c *Client) fail(cause error) {
	if cause == nil {
		cause = io.ErrUnexpectedEOF
	}
	c.conn.Close()

	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return
	}
	c.closed = true
	c.closeErr = cause
	pending := c.pending
	c.pending = nil
	c.mutex.Unlock()

	for _, pc := range pending {
		pc.err = cause
		close(pc.done)
	}
	c.markGreetingFailed(cause)
}

// --- send path ---

// do submits a TaggedCommand, writes every chunk it produces (waiting for
// continuation releases along the way is handled by the read loop; this
// call only performs the initial synchronous write), and blocks until the
// tagged response arrives.
func (c *Client) do(cmd imapengine.Command) (imapengine.TaggedResponse, error) {
	tag := c.tagGen.Next()
	pc := &pendingCommand{done: make(chan struct{})}

	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return imapengine.TaggedResponse{}, c.closeErr
	}
	c.pending[tag] = pc
	c.mutex.Unlock()

	part := imapengine.TaggedPart{Cmd: imapengine.TaggedCommand{Tag: tag, Command: cmd}}
	if err := c.submit(part); err != nil {
		c.mutex.Lock()
		delete(c.pending, tag)
		c.mutex.Unlock()
		return imapengine.TaggedResponse{}, err
	}

	<-pc.done
	if pc.err != nil {
		return imapengine.TaggedResponse{}, pc.err
	}
	if pc.resp.Kind == imapengine.StatusResponseTypeNo || pc.resp.Kind == imapengine.StatusResponseTypeBad {
		return pc.resp, (*imapengine.Error)(&imapengine.StatusResponse{Type: pc.resp.Kind, Code: pc.resp.Code, Text: pc.resp.Text})
	}
	return pc.resp, nil
}

// submit pushes part through the engine and writes whatever bytes it
// releases immediately. Chunks released later (by a Continuation Request)
// are written by the read loop via writeChunks.
func (c *Client) submit(part imapengine.CommandStreamPart) error {
	chunk, err := c.eng.SendCommand(part)
	if err != nil {
		return err
	}
	if chunk != nil {
		return c.writeChunk(*chunk)
	}
	return nil
}

func (c *Client) writeChunk(chunk imapengine.OutgoingChunk) error {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()
	if _, err := c.bw.Write(chunk.Bytes); err != nil {
		chunk.Done.Fail(err)
		return err
	}
	if err := c.bw.Flush(); err != nil {
		chunk.Done.Fail(err)
		return err
	}
	if chunk.ShouldSucceedHandle {
		chunk.Done.Succeed()
	}
	return nil
}

func (c *Client) writeChunks(chunks []imapengine.OutgoingChunk) {
	for _, ch := range chunks {
		if err := c.writeChunk(ch); err != nil {
			c.log.Warn("write failed releasing pending chunk", "error", err)
			return
		}
	}
}
