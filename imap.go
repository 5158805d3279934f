// Package imapengine implements a client-side IMAP4rev1 protocol engine.
//
// The package is split into three layers: this root package holds the
// shared data model and the grammar leaves (mailbox attributes, flags,
// search criteria, fetch items, body structures, and the rest of the types
// that a value-to-bytes writer or a byte-to-value reader needs); the wire
// subpackage holds the encoder and the decoder, which frames inbound
// literals itself by reading their byte counts (there is no separate
// framing scanner); the engine subpackage holds the client state machine
// that sequences commands and responses over those two layers.
//
// This package does not perform any I/O and does not depend on net.Conn.
// A transport-owning convenience client lives in the imapclient
// subpackage.
package imapengine

import (
	"fmt"
	"io"
)

// ConnState describes the state of a connection, per RFC 3501 section 3.
type ConnState int

const (
	ConnStateNone ConnState = iota
	ConnStateNotAuthenticated
	ConnStateAuthenticated
	ConnStateSelected
	ConnStateLogout
)

func (state ConnState) String() string {
	switch state {
	case ConnStateNone:
		return "none"
	case ConnStateNotAuthenticated:
		return "not authenticated"
	case ConnStateAuthenticated:
		return "authenticated"
	case ConnStateSelected:
		return "selected"
	case ConnStateLogout:
		return "logout"
	default:
		panic(fmt.Errorf("imapengine: unknown connection state %v", int(state)))
	}
}

// MailboxAttr is a mailbox attribute, defined in RFC 3501 section 7.2.2
// and elaborated by RFC 6154 (SPECIAL-USE).
type MailboxAttr string

const (
	MailboxAttrNonExistent   MailboxAttr = "\\NonExistent"
	MailboxAttrNoInferiors   MailboxAttr = "\\Noinferiors"
	MailboxAttrNoSelect      MailboxAttr = "\\Noselect"
	MailboxAttrHasChildren   MailboxAttr = "\\HasChildren"
	MailboxAttrHasNoChildren MailboxAttr = "\\HasNoChildren"
	MailboxAttrMarked        MailboxAttr = "\\Marked"
	MailboxAttrUnmarked      MailboxAttr = "\\Unmarked"
	MailboxAttrSubscribed    MailboxAttr = "\\Subscribed"
	MailboxAttrRemote        MailboxAttr = "\\Remote"

	// Special-use (role) attributes.
	MailboxAttrAll       MailboxAttr = "\\All"
	MailboxAttrArchive   MailboxAttr = "\\Archive"
	MailboxAttrDrafts    MailboxAttr = "\\Drafts"
	MailboxAttrFlagged   MailboxAttr = "\\Flagged"
	MailboxAttrJunk      MailboxAttr = "\\Junk"
	MailboxAttrSent      MailboxAttr = "\\Sent"
	MailboxAttrTrash     MailboxAttr = "\\Trash"
	MailboxAttrImportant MailboxAttr = "\\Important"
)

// Flag is a message flag, defined in RFC 3501 section 2.3.2.
type Flag string

const (
	FlagSeen     Flag = "\\Seen"
	FlagAnswered Flag = "\\Answered"
	FlagFlagged  Flag = "\\Flagged"
	FlagDeleted  Flag = "\\Deleted"
	FlagDraft    Flag = "\\Draft"

	FlagForwarded Flag = "$Forwarded"
	FlagMDNSent   Flag = "$MDNSent"
	FlagJunk      Flag = "$Junk"
	FlagNotJunk   Flag = "$NotJunk"
	FlagPhishing  Flag = "$Phishing"
	FlagImportant Flag = "$Important"

	FlagWildcard Flag = "\\*"
)

// LiteralReader reads the payload of an IMAP literal; Size reports the
// number of bytes the literal header announced.
type LiteralReader interface {
	io.Reader
	Size() int64
}

// UID is a message's unique identifier, scoped to its mailbox's UIDVALIDITY.
type UID uint32
