package imapengine

// CopyData is the data returned by the COPY command.
type CopyData struct {
	UIDValidity uint32 // requires UIDPLUS or IMAP4rev2
	SourceUIDs  UIDSet
	DestUIDs    UIDSet
}
