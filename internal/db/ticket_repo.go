package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/frackdev/frack/internal/models"
)

// TicketRepo provides storage for a ticket's current field values: the
// normal columns of the ticket table plus the open-ended name/value rows
// of ticket_custom.
type TicketRepo struct {
	q Querier
}

// NewTicketRepo creates a new TicketRepo over a database connection or
// transaction.
func NewTicketRepo(q Querier) *TicketRepo {
	return &TicketRepo{q: q}
}

const ticketColumns = `id, type, time, changetime, component, severity,
	priority, owner, reporter, cc, version, milestone, status, resolution,
	summary, description, keywords`

// Insert creates the ticket row and returns the assigned id. Optional
// columns left empty on the model are stored as NULL.
func (r *TicketRepo) Insert(ctx context.Context, t *models.Ticket) (int64, error) {
	query := `
		INSERT INTO ticket (
			type, time, changetime, component, severity, priority, owner,
			reporter, cc, version, milestone, status, resolution, summary,
			description, keywords
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.q.ExecContext(ctx, query,
		nullString(t.Type), t.Time, t.Changetime, nullString(t.Component),
		nullString(t.Severity), nullString(t.Priority), nullString(t.Owner),
		t.Reporter, nullString(t.Cc), nullString(t.Version),
		nullString(t.Milestone), t.Status, nullString(t.Resolution),
		t.Summary, nullString(t.Description), nullString(t.Keywords),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create ticket: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get ticket id: %w", err)
	}

	t.ID = id
	return id, nil
}

// Get retrieves the normal columns of a ticket. It returns (nil, nil)
// when no ticket with that id exists.
func (r *TicketRepo) Get(ctx context.Context, id int64) (*models.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM ticket WHERE id = ?`, ticketColumns)

	var t models.Ticket
	var typ, component, severity, priority, owner, reporter sql.NullString
	var cc, version, milestone, status, resolution, summary sql.NullString
	var description, keywords sql.NullString
	var tm, changetime sql.NullInt64

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &typ, &tm, &changetime, &component, &severity,
		&priority, &owner, &reporter, &cc, &version, &milestone,
		&status, &resolution, &summary, &description, &keywords,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan ticket: %w", err)
	}

	t.Type = typ.String
	t.Time = tm.Int64
	t.Changetime = changetime.Int64
	t.Component = component.String
	t.Severity = severity.String
	t.Priority = priority.String
	t.Owner = owner.String
	t.Reporter = reporter.String
	t.Cc = cc.String
	t.Version = version.String
	t.Milestone = milestone.String
	t.Status = status.String
	t.Resolution = resolution.String
	t.Summary = summary.String
	t.Description = description.String
	t.Keywords = keywords.String
	return &t, nil
}

// UpdateFields writes the given normal-column values and advances
// changetime in one UPDATE. The set may be empty; changetime is written
// regardless. Field names outside the editable set are rejected.
func (r *TicketRepo) UpdateFields(ctx context.Context, id int64, set map[string]string, changetime int64) error {
	var parts []string
	var args []interface{}

	// Iterate the schema order so the generated SQL is deterministic.
	for _, name := range models.EditableFields {
		value, ok := set[name]
		if !ok {
			continue
		}
		parts = append(parts, name+" = ?")
		args = append(args, nullString(value))
	}
	for name := range set {
		if !models.IsEditableField(name) {
			return fmt.Errorf("not a ticket column: %s", name)
		}
	}

	parts = append(parts, "changetime = ?")
	args = append(args, changetime, id)

	query := fmt.Sprintf(`UPDATE ticket SET %s WHERE id = ?`, strings.Join(parts, ", "))
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("ticket not found")
	}
	return nil
}

// GetCustom retrieves all custom fields for a ticket as a name/value map.
func (r *TicketRepo) GetCustom(ctx context.Context, id int64) (map[string]string, error) {
	query := `SELECT name, value FROM ticket_custom WHERE ticket = ?`
	rows, err := r.q.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom fields: %w", err)
	}
	defer rows.Close()

	custom := make(map[string]string)
	for rows.Next() {
		var name string
		var value sql.NullString
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan custom field: %w", err)
		}
		custom[name] = value.String
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating custom fields: %w", err)
	}
	return custom, nil
}

// InsertCustom creates a custom-field row for a ticket.
func (r *TicketRepo) InsertCustom(ctx context.Context, id int64, name, value string) error {
	query := `INSERT INTO ticket_custom (ticket, name, value) VALUES (?, ?, ?)`
	if _, err := r.q.ExecContext(ctx, query, id, name, value); err != nil {
		return fmt.Errorf("failed to insert custom field %s: %w", name, err)
	}
	return nil
}

// UpsertCustom updates a custom-field value, inserting the row if the
// ticket has never carried that field.
func (r *TicketRepo) UpsertCustom(ctx context.Context, id int64, name, value string) error {
	update := `UPDATE ticket_custom SET value = ? WHERE ticket = ? AND name = ?`
	if _, err := r.q.ExecContext(ctx, update, value, id, name); err != nil {
		return fmt.Errorf("failed to update custom field %s: %w", name, err)
	}

	insert := `
		INSERT INTO ticket_custom (value, ticket, name)
		SELECT ?, ?, ? WHERE NOT EXISTS
			(SELECT 1 FROM ticket_custom WHERE ticket = ? AND name = ?)
	`
	if _, err := r.q.ExecContext(ctx, insert, value, id, name, id, name); err != nil {
		return fmt.Errorf("failed to insert custom field %s: %w", name, err)
	}
	return nil
}
