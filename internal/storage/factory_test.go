package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskDefinitionRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	repo, err := NewTaskDefinitionRepository(ctx, Options{
		Type:       "sqlite",
		DSN:        filepath.Join(t.TempDir(), "dataflow.db"),
		InitSchema: true,
	})
	require.NoError(t, err)
	defer repo.Close()

	def, err := repo.FindByTaskName(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, def)
}

func TestNewTaskDefinitionRepository_Unsupported(t *testing.T) {
	_, err := NewTaskDefinitionRepository(context.Background(), Options{Type: "oracle"})
	assert.ErrorContains(t, err, "unsupported database type")
}
