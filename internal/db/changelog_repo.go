package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/frackdev/frack/internal/models"
)

// ChangeLogRepo provides access to the append-only ticket_change log.
// Rows are only ever inserted; history is never rewritten.
type ChangeLogRepo struct {
	q Querier
}

// NewChangeLogRepo creates a new ChangeLogRepo over a database connection
// or transaction.
func NewChangeLogRepo(q Querier) *ChangeLogRepo {
	return &ChangeLogRepo{q: q}
}

// Append inserts one change record.
func (r *ChangeLogRepo) Append(ctx context.Context, rec *models.ChangeRecord) error {
	query := `
		INSERT INTO ticket_change (ticket, time, author, field, oldvalue, newvalue)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.q.ExecContext(ctx, query,
		rec.Ticket, rec.Time, rec.Author, rec.Field, rec.OldValue, rec.NewValue,
	)
	if err != nil {
		return fmt.Errorf("failed to append change record: %w", err)
	}
	return nil
}

// ListByTicket retrieves all change records for a ticket ordered by
// timestamp ascending, which is the order comment grouping depends on.
func (r *ChangeLogRepo) ListByTicket(ctx context.Context, ticketID int64) ([]models.ChangeRecord, error) {
	query := `
		SELECT time, author, field, oldvalue, newvalue
		FROM ticket_change
		WHERE ticket = ?
		ORDER BY time
	`
	rows, err := r.q.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list change records: %w", err)
	}
	defer rows.Close()

	var records []models.ChangeRecord
	for rows.Next() {
		rec := models.ChangeRecord{Ticket: ticketID}
		var author, oldvalue, newvalue sql.NullString
		if err := rows.Scan(&rec.Time, &author, &rec.Field, &oldvalue, &newvalue); err != nil {
			return nil, fmt.Errorf("failed to scan change record: %w", err)
		}
		rec.Author = author.String
		rec.OldValue = oldvalue.String
		rec.NewValue = newvalue.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating change records: %w", err)
	}
	return records, nil
}

// CommentNumbers retrieves the stored comment numbers for a ticket: the
// oldvalue of every field='comment' row that carries one. Dotted reply
// numbers are returned as stored ("12.1").
func (r *ChangeLogRepo) CommentNumbers(ctx context.Context, ticketID int64) ([]string, error) {
	query := `
		SELECT oldvalue
		FROM ticket_change
		WHERE ticket = ?
			AND field = 'comment'
			AND oldvalue != ''
	`
	rows, err := r.q.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comment numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan comment number: %w", err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment numbers: %w", err)
	}
	return numbers, nil
}
