package project

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only against a disposable database named by AGROINSIGHT_TEST_DATABASE_URL.
func TestPostgresStore(t *testing.T) {
	url := os.Getenv("AGROINSIGHT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("AGROINSIGHT_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := OpenPostgres(ctx, url)
	require.NoError(t, err)
	defer s.Close()

	owner := "test-" + uuid.NewString()
	p, err := s.DefaultProject(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, DefaultProjectName, p.Name)
	assert.ErrorIs(t, s.CreateProject(ctx, NewProject(DefaultProjectName, "", owner, "")), ErrExists)

	d := &Dataset{ProjectID: p.ID, Name: "x", Filename: "x.csv", Status: StatusValidated,
		Data: json.RawMessage(`{"totalRows":1}`), Metadata: Metadata{UploadedBy: owner, TotalRows: 1}}
	require.NoError(t, s.CreateDataset(ctx, d))

	got, err := s.FindDataset(ctx, d.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Metadata.TotalRows)
	assert.JSONEq(t, `{"totalRows":1}`, string(got.Data))

	_, err = s.FindDataset(ctx, d.ID, "someone-else")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.ListDatasets(ctx, owner, StatusValidated)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteDataset(ctx, d.ID, owner))
	assert.ErrorIs(t, s.DeleteDataset(ctx, d.ID, owner), ErrNotFound)
}
