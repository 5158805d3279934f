package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kvio/imapengine"
)

// TagGenerator produces the Tag for the engine's next TaggedCommand. It is
// the caller's responsibility to pass the generated tag back through a
// TaggedPart; the engine itself never generates tags, it only rejects
// duplicates.
type TagGenerator interface {
	Next() imapengine.Tag
}

// CounterTagGenerator produces tags "T1", "T2", … from a monotonic counter,
// the same scheme as a single-connection sequential client.
type CounterTagGenerator struct {
	n uint64
}

// Next returns the next tag in sequence.
func (g *CounterTagGenerator) Next() imapengine.Tag {
	g.n++
	return imapengine.Tag(fmt.Sprintf("T%v", g.n))
}

// UUIDTagGenerator produces collision-proof tags derived from random UUIDs,
// for callers that multiplex many engines without a shared counter. The
// IMAP tag grammar forbids '+', '(', ')', '{', space, and control bytes;
// a UUID's canonical hyphenated hex form contains none of these, so it is
// used as-is with a short fixed prefix for readability in logs.
type UUIDTagGenerator struct{}

// Next returns a new random tag, e.g. "U-3b1f2e44-...".
func (UUIDTagGenerator) Next() imapengine.Tag {
	return imapengine.Tag("U-" + uuid.NewString())
}
