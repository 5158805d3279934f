package imapengine

import (
	"errors"
	"strings"
)

// IMAP4 ACL extension, RFC 4314 (obsoleting RFC 2086).

// Right describes a single operation governed by the IMAP ACL extension.
type Right byte

const (
	RightLookup     = Right('l') // mailbox visible to LIST/LSUB
	RightRead       = Right('r') // select mailbox, perform CHECK/FETCH/PARTIAL/SEARCH/COPY from it
	RightSeen       = Right('s') // keep seen/unseen information across sessions (STORE SEEN flag)
	RightWrite      = Right('w') // STORE flags other than SEEN and DELETED
	RightInsert     = Right('i') // perform APPEND, COPY into the mailbox
	RightPost       = Right('p') // submit mail to the mailbox's submission address (unenforced by IMAP4 itself)
	RightCreate     = Right('c') // create new sub-mailboxes in any implementation-defined hierarchy
	RightDelete     = Right('d') // STORE DELETED flag, perform EXPUNGE
	RightAdminister = Right('a') // perform SETACL
)

// RightSetAll contains every standard right.
var RightSetAll = RightSet("lrswipcda")

// RightsIdentifier is an ACL identifier.
type RightsIdentifier string

// RightsIdentifierAnyone is the generic identity matching everyone.
const RightsIdentifierAnyone = RightsIdentifier("anyone")

var errReservedRightsIdentifier = errors.New("imapengine: reserved rights identifier")

// NewRightsIdentifierUsername returns a rights identifier referencing a
// username, rejecting reserved values.
func NewRightsIdentifierUsername(username string) (RightsIdentifier, error) {
	if username == string(RightsIdentifierAnyone) || strings.HasPrefix(username, "-") {
		return "", errReservedRightsIdentifier
	}
	return RightsIdentifier(username), nil
}

// RightModification describes how to modify a right set.
type RightModification byte

const (
	RightModificationReplace = RightModification(0)
	RightModificationAdd     = RightModification('+')
	RightModificationRemove  = RightModification('-')
)

// RightSet is a set of rights.
type RightSet []Right

func (r RightSet) String() string {
	return string(r)
}

// Add returns a new right set containing the rights of both sets.
func (r RightSet) Add(rights RightSet) RightSet {
	newRights := make(RightSet, len(r), len(r)+len(rights))
	copy(newRights, r)
	for _, right := range rights {
		if !strings.ContainsRune(string(r), rune(right)) {
			newRights = append(newRights, right)
		}
	}
	return newRights
}

// Remove returns a new right set containing the rights of r absent from
// rights.
func (r RightSet) Remove(rights RightSet) RightSet {
	newRights := make(RightSet, 0, len(r))
	for _, right := range r {
		if !strings.ContainsRune(string(rights), rune(right)) {
			newRights = append(newRights, right)
		}
	}
	return newRights
}

// Equal reports whether two right sets contain exactly the same rights.
func (rs1 RightSet) Equal(rs2 RightSet) bool {
	for _, r := range rs1 {
		if !strings.ContainsRune(string(rs2), rune(r)) {
			return false
		}
	}
	for _, r := range rs2 {
		if !strings.ContainsRune(string(rs1), rune(r)) {
			return false
		}
	}
	return true
}

// GetACLData is the data returned by a GETACL command.
type GetACLData struct {
	Mailbox string
	Rights  map[RightsIdentifier]RightSet
}

// MyRightsData is the data returned by a MYRIGHTS command.
type MyRightsData struct {
	Mailbox string
	Rights  RightSet
}
