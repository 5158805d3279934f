package imapengine

// ListOptions holds the LIST command's options.
type ListOptions struct {
	SelectSubscribed     bool // select subscribed mailboxes
	SelectRemote         bool // select remote mailboxes
	SelectRecursiveMatch bool // recursive match, requires SelectSubscribed
	SelectSpecialUse     bool // select special-use mailboxes, requires SPECIAL-USE

	ReturnSubscribed bool           // return subscription status
	ReturnChildren   bool           // return child mailbox info
	ReturnStatus     *StatusOptions // return STATUS data, requires IMAP4rev2 or LIST-STATUS
	ReturnSpecialUse bool           // return special-use attributes, requires SPECIAL-USE
}

// ListData is the mailbox data returned by the LIST command.
type ListData struct {
	Attrs   []MailboxAttr
	Delim   rune
	Mailbox string

	// Extended data.
	ChildInfo *ListDataChildInfo
	OldName   string
	Status    *StatusData
}

// ListDataChildInfo carries information about a mailbox's children.
type ListDataChildInfo struct {
	Subscribed bool
}
