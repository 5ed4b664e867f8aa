package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/frackdev/frack/internal/models"
)

// LookupRepo provides the read-only reference-data queries consumed by
// the presentation layer: components, milestones, and enum values.
type LookupRepo struct {
	q Querier
}

// NewLookupRepo creates a new LookupRepo over a database connection or
// transaction.
func NewLookupRepo(q Querier) *LookupRepo {
	return &LookupRepo{q: q}
}

// Components retrieves all components ordered by name.
func (r *LookupRepo) Components(ctx context.Context) ([]models.Component, error) {
	query := `SELECT name, owner, description FROM component ORDER BY name`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	defer rows.Close()

	var components []models.Component
	for rows.Next() {
		var c models.Component
		var owner, description sql.NullString
		if err := rows.Scan(&c.Name, &owner, &description); err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		c.Owner = owner.String
		c.Description = description.String
		components = append(components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating components: %w", err)
	}
	return components, nil
}

// Milestones retrieves all milestones ordered by name.
func (r *LookupRepo) Milestones(ctx context.Context) ([]models.Milestone, error) {
	query := `SELECT name, due, completed, description FROM milestone ORDER BY name`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	defer rows.Close()

	var milestones []models.Milestone
	for rows.Next() {
		var m models.Milestone
		var due, completed sql.NullInt64
		var description sql.NullString
		if err := rows.Scan(&m.Name, &due, &completed, &description); err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		m.Due = due.Int64
		m.Completed = completed.Int64
		m.Description = description.String
		milestones = append(milestones, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating milestones: %w", err)
	}
	return milestones, nil
}

// Enum retrieves the key-value pairs for one enum type (priority,
// ticket_type, severity, resolution) ordered by value then name.
func (r *LookupRepo) Enum(ctx context.Context, enumType string) ([]models.EnumValue, error) {
	query := `SELECT name, value FROM enum WHERE type = ? ORDER BY value, name`
	rows, err := r.q.QueryContext(ctx, query, enumType)
	if err != nil {
		return nil, fmt.Errorf("failed to list enum %s: %w", enumType, err)
	}
	defer rows.Close()

	var values []models.EnumValue
	for rows.Next() {
		var v models.EnumValue
		var value sql.NullString
		if err := rows.Scan(&v.Name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan enum value: %w", err)
		}
		v.Value = value.String
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enum values: %w", err)
	}
	return values, nil
}
