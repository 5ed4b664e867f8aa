package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	sqlite "modernc.org/sqlite"

	ferrors "github.com/frackdev/frack/internal/errors"
	"github.com/frackdev/frack/internal/models"
)

// attachmentKindTicket is the attachment.type value for ticket
// attachments. The table is shared with other kinds in Trac (wiki pages),
// so every query filters on it.
const attachmentKindTicket = "ticket"

// AttachmentRepo provides access to attachment metadata rows. File bytes
// are stored elsewhere; only (ticket, filename, size, time, description,
// author, address) live here.
type AttachmentRepo struct {
	q Querier
}

// NewAttachmentRepo creates a new AttachmentRepo over a database
// connection or transaction.
func NewAttachmentRepo(q Querier) *AttachmentRepo {
	return &AttachmentRepo{q: q}
}

// Insert creates one attachment metadata row. A duplicate filename on the
// same ticket violates the table's primary key and is reported as a
// Collision.
func (r *AttachmentRepo) Insert(ctx context.Context, a *models.Attachment) error {
	query := `
		INSERT INTO attachment (type, id, filename, size, time, description, author, ipnr)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.q.ExecContext(ctx, query,
		attachmentKindTicket, strconv.FormatInt(a.Ticket, 10), a.Filename,
		a.Size, a.Time, nullString(a.Description), a.Author, a.IP,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ferrors.Collision("attachment %q already exists on ticket %d", a.Filename, a.Ticket)
		}
		return fmt.Errorf("failed to insert attachment: %w", err)
	}
	return nil
}

// ListByTicket retrieves all attachment metadata rows for a ticket,
// ordered by time then filename. Both IP and the legacy IPNR field are
// populated from the ipnr column.
func (r *AttachmentRepo) ListByTicket(ctx context.Context, ticketID int64) ([]models.Attachment, error) {
	query := `
		SELECT filename, size, time, description, author, ipnr
		FROM attachment
		WHERE type = ? AND id = ?
		ORDER BY time, filename
	`
	rows, err := r.q.QueryContext(ctx, query, attachmentKindTicket, strconv.FormatInt(ticketID, 10))
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []models.Attachment
	for rows.Next() {
		a := models.Attachment{Ticket: ticketID}
		var size, tm sql.NullInt64
		var description, author, ipnr sql.NullString
		if err := rows.Scan(&a.Filename, &size, &tm, &description, &author, &ipnr); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		a.Size = size.Int64
		a.Time = tm.Int64
		a.Description = description.String
		a.Author = author.String
		a.IP = ipnr.String
		a.IPNR = ipnr.String
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachments: %w", err)
	}
	return attachments, nil
}

// isConstraintViolation reports whether err is a SQLite constraint error
// (SQLITE_CONSTRAINT or one of its extended codes).
func isConstraintViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return serr.Code()&0xff == 19
	}
	return false
}
