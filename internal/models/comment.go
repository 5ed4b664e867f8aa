package models

// FieldChange is the (old, new) value pair recorded for one field within
// a comment group.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// Comment is a derived grouping of change-log rows that share one
// timestamp. It is never stored directly; it is computed on read.
//
// Number is a string because reply numbers are dotted ("12.1"). ReplyTo
// is empty for top-level comments. Followups lists the numbers of later
// comments that declared this one as their reply target.
type Comment struct {
	Ticket    int64                  `json:"ticket"`
	Time      int64                  `json:"time"`
	Author    string                 `json:"author"`
	Text      string                 `json:"comment"`
	Number    string                 `json:"number"`
	ReplyTo   string                 `json:"replyto,omitempty"`
	Followups []string               `json:"followups"`
	Changes   map[string]FieldChange `json:"changes"`
}
