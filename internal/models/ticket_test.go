package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEditableField(t *testing.T) {
	for _, f := range EditableFields {
		assert.True(t, IsEditableField(f), "expected %q to be editable", f)
	}

	assert.False(t, IsEditableField("reporter"))
	assert.False(t, IsEditableField("time"))
	assert.False(t, IsEditableField("changetime"))
	assert.False(t, IsEditableField("branch"))
	assert.False(t, IsEditableField(""))
}

func TestTicketFieldRoundTrip(t *testing.T) {
	ticket := &Ticket{}
	for i, f := range EditableFields {
		ticket.SetField(f, f+"-value")
		assert.Equal(t, f+"-value", ticket.Field(f), "field %d (%s)", i, f)
	}

	// Names outside the editable set are ignored on write and empty on read.
	ticket.SetField("reporter", "alice")
	assert.Equal(t, "", ticket.Field("reporter"))
}

func TestChangeRecordIsComment(t *testing.T) {
	rec := &ChangeRecord{Field: FieldComment}
	assert.True(t, rec.IsComment())

	rec.Field = "owner"
	assert.False(t, rec.IsComment())
}
