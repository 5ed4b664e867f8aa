// Package models defines the domain types for the frack issue tracker,
// mirroring the classic Trac ticket schema.
package models

// StatusNew is the only status a ticket can be created with.
const StatusNew = "new"

// EditableFields lists the normal ticket columns a caller may set, in
// schema order. Any input key outside this set is treated as a custom
// field and stored in the ticket_custom table.
var EditableFields = []string{
	"type", "component", "severity", "priority", "owner", "cc", "version",
	"milestone", "status", "resolution", "summary", "description", "keywords",
}

// IsEditableField reports whether name is one of the normal ticket columns.
func IsEditableField(name string) bool {
	for _, f := range EditableFields {
		if f == name {
			return true
		}
	}
	return false
}

// Ticket represents one row of the ticket table. Timestamps are unix
// seconds, as in Trac. Optional columns read back as empty strings when
// the stored value is NULL.
type Ticket struct {
	ID          int64  `json:"id"`
	Type        string `json:"type,omitempty"`
	Component   string `json:"component,omitempty"`
	Severity    string `json:"severity,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Reporter    string `json:"reporter"`
	Cc          string `json:"cc,omitempty"`
	Version     string `json:"version,omitempty"`
	Milestone   string `json:"milestone,omitempty"`
	Status      string `json:"status"`
	Resolution  string `json:"resolution,omitempty"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`

	// Time is the creation timestamp; Changetime advances on every update.
	Time       int64 `json:"time"`
	Changetime int64 `json:"changetime"`
}

// Field returns the value of the named editable column. It returns the
// empty string for names outside the editable set.
func (t *Ticket) Field(name string) string {
	switch name {
	case "type":
		return t.Type
	case "component":
		return t.Component
	case "severity":
		return t.Severity
	case "priority":
		return t.Priority
	case "owner":
		return t.Owner
	case "cc":
		return t.Cc
	case "version":
		return t.Version
	case "milestone":
		return t.Milestone
	case "status":
		return t.Status
	case "resolution":
		return t.Resolution
	case "summary":
		return t.Summary
	case "description":
		return t.Description
	case "keywords":
		return t.Keywords
	}
	return ""
}

// SetField assigns the named editable column. Names outside the editable
// set are ignored.
func (t *Ticket) SetField(name, value string) {
	switch name {
	case "type":
		t.Type = value
	case "component":
		t.Component = value
	case "severity":
		t.Severity = value
	case "priority":
		t.Priority = value
	case "owner":
		t.Owner = value
	case "cc":
		t.Cc = value
	case "version":
		t.Version = value
	case "milestone":
		t.Milestone = value
	case "status":
		t.Status = value
	case "resolution":
		t.Resolution = value
	case "summary":
		t.Summary = value
	case "description":
		t.Description = value
	case "keywords":
		t.Keywords = value
	}
}

// TicketDetail is the composite read view of a ticket: the normal columns,
// the custom fields merged alongside, the ordered attachments, and the
// change log grouped into comments.
type TicketDetail struct {
	Ticket
	Custom      map[string]string `json:"custom"`
	Attachments []Attachment      `json:"attachments"`
	Comments    []Comment         `json:"comments"`
}
