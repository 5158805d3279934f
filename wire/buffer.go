// Package wire implements the byte-level IMAP4rev1 encoder and decoder:
// an append-only encode buffer with explicit stop points, an incremental
// response parser whose Decoder frames inbound literals by their byte
// counts (there is no separate framing scanner), and the command encoder
// driver. None of this package blocks on I/O; every function takes
// and returns plain byte slices, leaving transport scheduling to the
// caller (ultimately imapengine/engine and imapengine/imapclient).
package wire

// EncodeBuffer is an append-only byte buffer with a side-queue of *stop
// points*: monotonically increasing byte offsets marking where the client
// must await a Continuation Request before writing further bytes.
type EncodeBuffer struct {
	buf          []byte
	stopPoints   []int // offsets into buf, strictly increasing
	returned     int   // bytes already handed out via NextChunk
	stopReturned int   // number of stop points already consumed by NextChunk
}

// NewEncodeBuffer returns an empty encode buffer.
func NewEncodeBuffer() *EncodeBuffer {
	return &EncodeBuffer{}
}

// WriteBytes appends raw bytes.
func (b *EncodeBuffer) WriteBytes(p []byte) {
	b.buf = append(b.buf, p...)
}

// WriteString appends a UTF-8 string verbatim. The buffer performs no IMAP
// quoting; callers use the grammar leaf writers in encoder.go for that.
func (b *EncodeBuffer) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteByte appends a single byte.
func (b *EncodeBuffer) WriteByte(c byte) {
	b.buf = append(b.buf, c)
}

// MarkStopPoint records the current end of the buffer as a stop point: the
// boundary at which the caller must await a Continuation Request before the
// next chunk may be sent.
func (b *EncodeBuffer) MarkStopPoint() {
	n := len(b.buf)
	if len(b.stopPoints) > 0 && b.stopPoints[len(b.stopPoints)-1] == n {
		return // no bytes written since the last stop point; don't duplicate
	}
	b.stopPoints = append(b.stopPoints, n)
}

// Chunk is a slice of bytes produced by NextChunk.
type Chunk struct {
	Bytes              []byte
	WaitForContinuation bool
}

// HasMore reports whether there are unreturned bytes or stop points left.
func (b *EncodeBuffer) HasMore() bool {
	return b.returned < len(b.buf)
}

// NextChunk consumes and returns all bytes up to (and including) the
// earliest unreturned stop point, or all remaining bytes if no stop point
// remains. WaitForContinuation is true iff this chunk ends at a stop point,
// meaning the caller must await a Continuation Request before further
// buffered bytes (written after the continuation is granted) may be sent.
func (b *EncodeBuffer) NextChunk() Chunk {
	if b.stopReturned < len(b.stopPoints) {
		end := b.stopPoints[b.stopReturned]
		b.stopReturned++
		out := append([]byte(nil), b.buf[b.returned:end]...)
		b.returned = end
		return Chunk{Bytes: out, WaitForContinuation: true}
	}

	out := append([]byte(nil), b.buf[b.returned:]...)
	b.returned = len(b.buf)
	return Chunk{Bytes: out, WaitForContinuation: false}
}

// Reset discards all buffered content, for reuse across commands.
func (b *EncodeBuffer) Reset() {
	b.buf = b.buf[:0]
	b.stopPoints = b.stopPoints[:0]
	b.returned = 0
	b.stopReturned = 0
}

// Bytes returns the full buffer contents written so far (for tests).
func (b *EncodeBuffer) Bytes() []byte {
	return b.buf
}
