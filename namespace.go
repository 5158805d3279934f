package imapengine

// NamespaceData is the data returned by the NAMESPACE command, RFC 2342.
type NamespaceData struct {
	Personal []NamespaceDescriptor
	Other    []NamespaceDescriptor
	Shared   []NamespaceDescriptor
}

// NamespaceDescriptor describes a single namespace.
type NamespaceDescriptor struct {
	Prefix string
	Delim  rune
}
