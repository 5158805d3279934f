package imapengine

// SelectOptions holds the SELECT or EXAMINE command's options.
type SelectOptions struct {
	ReadOnly  bool
	CondStore bool // requires CONDSTORE
}

// SelectData is the data returned by the SELECT command.
//
// Under the older RFC 2060, PermanentFlags, UIDNext, and UIDValidity are
// optional.
type SelectData struct {
	// Flags defined for this mailbox.
	Flags []Flag
	// Flags the client may change permanently.
	PermanentFlags []Flag
	// Number of messages in this mailbox (i.e. "EXISTS").
	NumMessages uint32
	UIDNext     UID
	UIDValidity uint32

	List *ListData // requires IMAP4rev2

	HighestModSeq uint64 // requires CONDSTORE
}
