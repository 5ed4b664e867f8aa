package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/frackdev/frack/internal/models"
)

func change(ts int64, author, field, old, new string) models.ChangeRecord {
	return models.ChangeRecord{
		Ticket: 1, Time: ts, Author: author,
		Field: field, OldValue: old, NewValue: new,
	}
}

func TestGroupCommentsEmpty(t *testing.T) {
	comments := GroupComments(1, nil)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)
}

func TestGroupCommentsSingleComment(t *testing.T) {
	comments := GroupComments(1, []models.ChangeRecord{
		change(100, "alice", "comment", "1", "first post"),
	})

	assert.Len(t, comments, 1)
	c := comments[0]
	assert.Equal(t, int64(1), c.Ticket)
	assert.Equal(t, int64(100), c.Time)
	assert.Equal(t, "alice", c.Author)
	assert.Equal(t, "first post", c.Text)
	assert.Equal(t, "1", c.Number)
	assert.Empty(t, c.ReplyTo)
	assert.Empty(t, c.Followups)
	assert.Empty(t, c.Changes)
}

func TestGroupCommentsGroupsByTimestamp(t *testing.T) {
	comments := GroupComments(1, []models.ChangeRecord{
		change(100, "alice", "status", "new", "accepted"),
		change(100, "alice", "owner", "", "alice"),
		change(100, "alice", "comment", "1", "taking this"),
		change(200, "bob", "comment", "2", "thanks"),
	})

	assert.Len(t, comments, 2)

	first := comments[0]
	assert.Equal(t, "taking this", first.Text)
	assert.Equal(t, "alice", first.Author)
	assert.Equal(t, models.FieldChange{Old: "new", New: "accepted"}, first.Changes["status"])
	assert.Equal(t, models.FieldChange{Old: "", New: "alice"}, first.Changes["owner"])

	second := comments[1]
	assert.Equal(t, "thanks", second.Text)
	assert.Equal(t, "2", second.Number)
	assert.Empty(t, second.Changes)
}

func TestGroupCommentsFieldOnlyGroup(t *testing.T) {
	comments := GroupComments(1, []models.ChangeRecord{
		change(100, "alice", "priority", "minor", "critical"),
	})

	assert.Len(t, comments, 1)
	assert.Empty(t, comments[0].Text)
	assert.Equal(t, "alice", comments[0].Author)
	assert.Equal(t, "1", comments[0].Number)
	assert.Equal(t, models.FieldChange{Old: "minor", New: "critical"}, comments[0].Changes["priority"])
}

func TestGroupCommentsRepliesAndFollowups(t *testing.T) {
	comments := GroupComments(1, []models.ChangeRecord{
		change(100, "alice", "comment", "1", "original"),
		change(200, "bob", "comment", "1.2", "reply to alice"),
		change(300, "carol", "comment", "1.3", "another reply"),
	})

	assert.Len(t, comments, 3)

	assert.Equal(t, "1", comments[0].Number)
	assert.Equal(t, []string{"2", "3"}, comments[0].Followups)

	assert.Equal(t, "2", comments[1].Number)
	assert.Equal(t, "1", comments[1].ReplyTo)

	assert.Equal(t, "3", comments[2].Number)
	assert.Equal(t, "1", comments[2].ReplyTo)
}

func TestGroupCommentsMalformedReplyTarget(t *testing.T) {
	comments := GroupComments(1, []models.ChangeRecord{
		change(100, "alice", "comment", "1", "original"),
		change(200, "bob", "comment", "9.2", "reply to nothing"),
		change(300, "carol", "comment", "x.3", "reply to nonsense"),
	})

	assert.Len(t, comments, 3)
	assert.Empty(t, comments[0].Followups)
	assert.Equal(t, "9", comments[1].ReplyTo)
	assert.Equal(t, "2", comments[1].Number)
	assert.Equal(t, "x", comments[2].ReplyTo)
	assert.Equal(t, "3", comments[2].Number)
}

func TestGroupCommentsSameSecondCollapse(t *testing.T) {
	// Two authors landing on the same second merge into one comment;
	// the later comment row wins the text and author.
	comments := GroupComments(1, []models.ChangeRecord{
		change(100, "alice", "comment", "1", "from alice"),
		change(100, "bob", "comment", "2", "from bob"),
	})

	assert.Len(t, comments, 1)
	assert.Equal(t, "bob", comments[0].Author)
	assert.Equal(t, "from bob", comments[0].Text)
	assert.Equal(t, "2", comments[0].Number)
}

func TestNextCommentNumber(t *testing.T) {
	tests := []struct {
		name    string
		numbers []string
		want    int
	}{
		{"empty", nil, 1},
		{"sequential", []string{"1", "2", "3"}, 4},
		{"unordered", []string{"3", "1", "2"}, 4},
		{"reply prefix stripped", []string{"1", "1.2", "1.3"}, 4},
		{"non numeric skipped", []string{"1", "garbage", "2"}, 3},
		{"gap", []string{"1", "5"}, 6},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextCommentNumber(tc.numbers))
		})
	}
}
