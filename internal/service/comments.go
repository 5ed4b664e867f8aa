package service

import (
	"strconv"
	"strings"

	"github.com/frackdev/frack/internal/models"
)

// GroupComments groups a ticket's change records, ordered by timestamp
// ascending, into comments. Every run of records sharing one timestamp
// becomes exactly one comment, so a group holding only field changes is
// still surfaced as a comment with empty text.
//
// Grouping keys on timestamp equality, not insertion order: two writers
// landing on the same integer second collapse into a single comment.
// That is an inherited limitation of the schema, not something this
// function can repair.
func GroupComments(ticketID int64, changes []models.ChangeRecord) []models.Comment {
	comments := []models.Comment{}
	cur := -1
	var last int64

	for _, ch := range changes {
		if cur < 0 || ch.Time != last {
			comments = append(comments, models.Comment{
				Ticket:    ticketID,
				Time:      ch.Time,
				Author:    ch.Author,
				Number:    strconv.Itoa(len(comments) + 1),
				Followups: []string{},
				Changes:   map[string]models.FieldChange{},
			})
			cur = len(comments) - 1
			last = ch.Time
		}
		c := &comments[cur]

		if ch.IsComment() {
			c.Author = ch.Author
			c.Text = ch.NewValue

			// The stored number uses the in-reply-to syntax: a plain
			// number for top-level comments, "replyto.number" for
			// replies.
			number := ch.OldValue
			if i := strings.Index(number, "."); i >= 0 {
				replyTo := number[:i]
				number = number[i+1:]
				c.ReplyTo = replyTo

				// Reply targets are positional: replyto names the
				// sequential position of an earlier comment. Malformed
				// or out-of-range targets keep their replyto/number but
				// record no followup backlink.
				if pos, err := strconv.Atoi(replyTo); err == nil && pos >= 1 && pos <= cur {
					comments[pos-1].Followups = append(comments[pos-1].Followups, number)
				}
			}
			c.Number = number
		} else {
			c.Changes[ch.Field] = models.FieldChange{Old: ch.OldValue, New: ch.NewValue}
		}
	}

	return comments
}

// NextCommentNumber computes the own-number of the next comment from the
// stored numbers of the existing ones: the numeric tail of each number
// (the part after the reply prefix, if any), maxed, plus one.
//
// The scan-then-increment approach has an inherent race: two concurrent
// updates can compute the same next number. Writes must be serialized by
// the storage layer (a single SQLite writer connection does this); no
// stronger guarantee is provided.
func NextCommentNumber(numbers []string) int {
	max := 0
	for _, n := range numbers {
		if i := strings.Index(n, "."); i >= 0 {
			n = n[i+1:]
		}
		v, err := strconv.Atoi(n)
		if err != nil {
			continue
		}
		if v > max {
			max = v
		}
	}
	return max + 1
}
