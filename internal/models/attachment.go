package models

// Attachment is the metadata row for a file attached to a ticket. The
// bytes themselves live in the file store; identity is (ticket, filename).
//
// The address column is named ipnr in the schema; both IP and IPNR carry
// the same value so older consumers keep working.
type Attachment struct {
	Ticket      int64  `json:"ticket"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	Time        int64  `json:"time"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author"`
	IP          string `json:"ip"`
	IPNR        string `json:"ipnr"`
}
