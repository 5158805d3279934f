package imapengine

// IDData carries client/server identification fields for the ID command,
// RFC 2971. All fields are optional (a server or client may leave the whole
// map empty to mean NIL).
type IDData struct {
	Name        string
	Version     string
	OS          string
	OSVersion   string
	Vendor      string
	SupportURL  string
	Address     string
	Date        string
	Command     string
	Arguments   string
	Environment string
}
