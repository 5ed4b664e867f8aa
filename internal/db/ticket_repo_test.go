package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frackdev/frack/internal/models"
)

func TestTicketInsertAndGet(t *testing.T) {
	database := NewTestDB(t)
	defer database.Close()
	repo := NewTicketRepo(database)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &models.Ticket{
		Type:       "defect",
		Time:       1000,
		Changetime: 1000,
		Component:  "core",
		Reporter:   "alice",
		Status:     models.StatusNew,
		Summary:    "broken",
	})
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "defect", got.Type)
	assert.Equal(t, "core", got.Component)
	assert.Equal(t, "alice", got.Reporter)
	assert.Equal(t, models.StatusNew, got.Status)
	assert.Equal(t, int64(1000), got.Time)
}

func TestTicketGetMissing(t *testing.T) {
	database := NewTestDB(t)
	defer database.Close()
	repo := NewTicketRepo(database)

	got, err := repo.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTicketNullColumnsScanAsEmpty(t *testing.T) {
	database := NewTestDB(t)
	defer database.Close()
	repo := NewTicketRepo(database)
	ctx := context.Background()

	// Empty optional fields are stored as NULL and must come back as "".
	id, err := repo.Insert(ctx, &models.Ticket{
		Reporter: "alice",
		Status:   models.StatusNew,
		Summary:  "broken",
	})
	require.NoError(t, err)

	var owner any
	err = database.QueryRow(`SELECT owner FROM ticket WHERE id = ?`, id).Scan(&owner)
	require.NoError(t, err)
	assert.Nil(t, owner)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.Owner)
	assert.Empty(t, got.Milestone)
}

func TestTicketUpdateFields(t *testing.T) {
	database := NewTestDB(t)
	defer database.Close()
	repo := NewTicketRepo(database)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &models.Ticket{
		Reporter: "alice", Status: models.StatusNew, Summary: "broken",
		Time: 1000, Changetime: 1000,
	})
	require.NoError(t, err)

	err = repo.UpdateFields(ctx, id, map[string]string{
		"status": "accepted",
		"owner":  "bob",
	}, 2000)
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "accepted", got.Status)
	assert.Equal(t, "bob", got.Owner)
	assert.Equal(t, int64(2000), got.Changetime)
	assert.Equal(t, int64(1000), got.Time)
}

func TestTicketUpdateFieldsEmptySetStillTouchesChangetime(t *testing.T) {
	database := NewTestDB(t)
	defer database.Close()
	repo := NewTicketRepo(database)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &models.Ticket{
		Reporter: "alice", Status: models.StatusNew, Summary: "broken",
		Time: 1000, Changetime: 1000,
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateFields(ctx, id, nil, 3000))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), got.Changetime)
}

func TestTicketUpdateFieldsRejectsUnknownColumn(t *testing.T) {
	database := NewTestDB(t)
	defer database.Close()
	repo := NewTicketRepo(database)

	err := repo.UpdateFields(context.Background(), 1, map[string]string{"id": "7"}, 1000)
	assert.Error(t, err)
}

func TestTicketUpdateFieldsMissingTicket(t *testing.T) {
	database := NewTestDB(t)
	defer database.Close()
	repo := NewTicketRepo(database)

	err := repo.UpdateFields(context.Background(), 42, map[string]string{"owner": "bob"}, 1000)
	assert.Error(t, err)
}

func TestTicketCustomFields(t *testing.T) {
	database := NewTestDB(t)
	defer database.Close()
	repo := NewTicketRepo(database)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &models.Ticket{
		Reporter: "alice", Status: models.StatusNew, Summary: "broken",
	})
	require.NoError(t, err)

	require.NoError(t, repo.InsertCustom(ctx, id, "branch", "main"))

	custom, err := repo.GetCustom(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"branch": "main"}, custom)

	// Upsert over an existing row updates in place.
	require.NoError(t, repo.UpsertCustom(ctx, id, "branch", "hotfix"))
	// Upsert of a new name inserts.
	require.NoError(t, repo.UpsertCustom(ctx, id, "launchpad_bug", "12345"))

	custom, err = repo.GetCustom(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"branch":        "hotfix",
		"launchpad_bug": "12345",
	}, custom)

	var count int
	err = database.QueryRow(
		`SELECT COUNT(*) FROM ticket_custom WHERE ticket = ? AND name = 'branch'`, id,
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
