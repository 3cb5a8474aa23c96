package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReindexCmd(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("reindex")
	require.NoError(t, err)

	assert.False(t, svc.maintenance.pruned)
	assert.NotContains(t, out, "Pruned")
	assert.Contains(t, out, "Documents: 4")
	assert.Contains(t, out, "Indexed:   3")
	assert.Contains(t, out, "d9: index rejected")
}

func TestReindexCmd_Prune(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("reindex", "--prune")
	require.NoError(t, err)

	assert.True(t, svc.maintenance.pruned)
	assert.Contains(t, out, "Pruned:    2 documents")
}

func TestReindexCmd_NoService(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(nil)

	_, err := execute("reindex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maintenance service not configured")
}
