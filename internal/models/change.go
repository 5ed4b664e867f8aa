package models

// FieldComment is the pseudo-field name marking a change-log row that
// carries comment text rather than a field mutation. For such rows
// OldValue holds the comment number (possibly dotted, e.g. "12.1" for a
// reply to comment 12) and NewValue holds the comment body.
const FieldComment = "comment"

// ChangeRecord is one row of the append-only ticket_change log: a single
// field mutation (or comment entry) made to a ticket at a point in time.
// Rows are never updated or deleted.
type ChangeRecord struct {
	Ticket   int64  `json:"ticket"`
	Time     int64  `json:"time"`
	Author   string `json:"author"`
	Field    string `json:"field"`
	OldValue string `json:"oldvalue"`
	NewValue string `json:"newvalue"`
}

// IsComment reports whether the record is a comment entry rather than a
// field mutation.
func (c *ChangeRecord) IsComment() bool {
	return c.Field == FieldComment
}
